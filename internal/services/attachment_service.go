package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Content types accepted for forum attachments. Machine diagnostics
// and maintenance reports dominate real uploads.
var allowedAttachmentTypes = map[string]bool{
	"image/png":          true,
	"image/jpeg":         true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"text/csv":           true,
	"text/plain":         true,
	"application/zip":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
}

// AttachmentService stores attachment metadata and coordinates
// presigned transfers with the blob store.
type AttachmentService struct {
	db          database.Database
	blobs       BlobStore
	maxUploadMB int
}

func NewAttachmentService(db database.Database, blobs BlobStore, maxUploadMB int) *AttachmentService {
	return &AttachmentService{db: db, blobs: blobs, maxUploadMB: maxUploadMB}
}

type RequestUploadInput struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required"`
	SHA256      string `json:"sha256"`
}

type UploadTicket struct {
	Attachment *models.Attachment `json:"attachment"`
	UploadURL  string             `json:"upload_url"`
}

// RequestUpload validates the file, records its metadata and returns a
// presigned PUT URL the client uploads directly to.
func (s *AttachmentService) RequestUpload(ctx context.Context, user *models.User, input RequestUploadInput) (*UploadTicket, error) {
	name := path.Base(strings.TrimSpace(input.FileName))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("%w: invalid file name", ErrValidation)
	}
	if !allowedAttachmentTypes[input.ContentType] {
		return nil, fmt.Errorf("%w: content type %q is not allowed", ErrValidation, input.ContentType)
	}
	maxBytes := int64(s.maxUploadMB) * 1024 * 1024
	if input.SizeBytes <= 0 || input.SizeBytes > maxBytes {
		return nil, fmt.Errorf("%w: file size must be between 1 byte and %d MB", ErrValidation, s.maxUploadMB)
	}

	id := uuid.New().String()
	attachment := &models.Attachment{
		UUID:           id,
		OrganizationID: user.OrganizationID,
		UploadedByID:   user.ID,
		FileName:       name,
		ContentType:    input.ContentType,
		SizeBytes:      input.SizeBytes,
		SHA256:         input.SHA256,
		StorageKey:     fmt.Sprintf("org-%d/%s/%s", user.OrganizationID, id, name),
	}

	uploadURL, err := s.blobs.PresignUpload(ctx, attachment.StorageKey, attachment.ContentType, attachment.SizeBytes)
	if err != nil {
		return nil, err
	}

	if err := s.db.DB().WithContext(ctx).Create(attachment).Error; err != nil {
		return nil, err
	}

	return &UploadTicket{Attachment: attachment, UploadURL: uploadURL}, nil
}

// AttachToTopic links an uploaded file to a topic. Only the uploader
// may link, and only once.
func (s *AttachmentService) AttachToTopic(ctx context.Context, user *models.User, attachmentID, topicID uint) error {
	return s.attach(ctx, user, attachmentID, &topicID, nil)
}

func (s *AttachmentService) AttachToReply(ctx context.Context, user *models.User, attachmentID, replyID uint) error {
	return s.attach(ctx, user, attachmentID, nil, &replyID)
}

func (s *AttachmentService) attach(ctx context.Context, user *models.User, attachmentID uint, topicID, replyID *uint) error {
	return s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attachment models.Attachment
		if err := tx.Where("id = ? AND organization_id = ?", attachmentID, user.OrganizationID).
			First(&attachment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: attachment %d", ErrNotFound, attachmentID)
			}
			return err
		}
		if attachment.UploadedByID != user.ID {
			return fmt.Errorf("%w: only the uploader may link an attachment", ErrPermissionDenied)
		}
		if attachment.TopicID != nil || attachment.ReplyID != nil {
			return fmt.Errorf("%w: attachment is already linked", ErrConflict)
		}

		if topicID != nil {
			var topic models.ForumTopic
			if err := tx.Where("id = ? AND organization_id = ? AND status = ?",
				*topicID, user.OrganizationID, models.TopicStatusActive).
				First(&topic).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: topic %d", ErrNotFound, *topicID)
				}
				return err
			}
		}
		if replyID != nil {
			var reply models.ForumReply
			if err := tx.Where("id = ? AND organization_id = ? AND is_deleted = ?",
				*replyID, user.OrganizationID, false).
				First(&reply).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: reply %d", ErrNotFound, *replyID)
				}
				return err
			}
		}

		return tx.Model(&attachment).Updates(map[string]interface{}{
			"topic_id": topicID,
			"reply_id": replyID,
		}).Error
	})
}

// DownloadURL returns a short-lived presigned GET URL.
func (s *AttachmentService) DownloadURL(ctx context.Context, user *models.User, attachmentID uint) (string, error) {
	var attachment models.Attachment
	err := s.db.DB().WithContext(ctx).
		Where("id = ? AND organization_id = ?", attachmentID, user.OrganizationID).
		First(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: attachment %d", ErrNotFound, attachmentID)
		}
		return "", err
	}

	return s.blobs.PresignDownload(ctx, attachment.StorageKey)
}

func (s *AttachmentService) ListForTopic(ctx context.Context, orgID, topicID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := s.db.DB().WithContext(ctx).
		Where("organization_id = ? AND topic_id = ?", orgID, topicID).
		Order("created_at ASC").
		Find(&attachments).Error
	return attachments, err
}

// Delete removes the metadata row and the stored object. Uploader or
// admin only.
func (s *AttachmentService) Delete(ctx context.Context, user *models.User, attachmentID uint) error {
	var attachment models.Attachment
	err := s.db.DB().WithContext(ctx).
		Where("id = ? AND organization_id = ?", attachmentID, user.OrganizationID).
		First(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: attachment %d", ErrNotFound, attachmentID)
		}
		return err
	}
	if attachment.UploadedByID != user.ID && !user.IsAdmin() {
		return fmt.Errorf("%w: only the uploader or an admin may delete an attachment", ErrPermissionDenied)
	}

	if err := s.db.DB().WithContext(ctx).Delete(&attachment).Error; err != nil {
		return err
	}

	// Blob removal is best effort; the metadata row is the source of
	// truth and orphaned objects are swept separately.
	if err := s.blobs.DeleteObject(ctx, attachment.StorageKey); err != nil {
		utils.GetLogger().Warn("Failed to delete attachment blob", utils.LogFields{
			"attachment_id": attachment.ID,
			"storage_key":   attachment.StorageKey,
			"error":         err.Error(),
		})
	}
	return nil
}
