package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"

	"gorm.io/gorm"
)

// EngagementService records likes, bookmarks and views. Likes and
// bookmarks are idempotent per-(user, target) toggles backed by unique
// indexes; views are append-only events. Toggles take a row lock on
// the target so concurrent calls for the same pair serialize instead
// of racing the existence check, and decrements only run when a row
// was actually deleted.
type EngagementService struct {
	db database.Database
}

func NewEngagementService(db database.Database) *EngagementService {
	return &EngagementService{db: db}
}

// ToggleTopicLike likes the topic, or removes the like if one exists.
// Returns the resulting liked state.
func (s *EngagementService) ToggleTopicLike(ctx context.Context, user *models.User, topicID uint) (bool, error) {
	liked := false

	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic models.ForumTopic
		if err := lockForUpdate(tx).
			Where("id = ? AND organization_id = ? AND status = ?",
				topicID, user.OrganizationID, models.TopicStatusActive).
			First(&topic).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
			}
			return err
		}

		var existing models.ForumTopicLike
		err := tx.Where("topic_id = ? AND user_id = ?", topicID, user.ID).First(&existing).Error
		switch {
		case err == nil:
			// Second toggle by the same user removes the like. The
			// decrement is tied to the delete actually removing a row.
			result := tx.Delete(&existing)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return nil
			}
			return tx.Model(&models.ForumTopic{}).
				Where("id = ?", topicID).
				Update("like_count", gorm.Expr("like_count - 1")).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			like := models.ForumTopicLike{
				OrganizationID: user.OrganizationID,
				TopicID:        topicID,
				UserID:         user.ID,
			}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			liked = true
			return tx.Model(&models.ForumTopic{}).
				Where("id = ?", topicID).
				Update("like_count", gorm.Expr("like_count + 1")).Error
		default:
			return err
		}
	})

	return liked, err
}

// ToggleReplyLike mirrors ToggleTopicLike for replies.
func (s *EngagementService) ToggleReplyLike(ctx context.Context, user *models.User, replyID uint) (bool, error) {
	liked := false

	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reply models.ForumReply
		if err := lockForUpdate(tx).
			Where("id = ? AND organization_id = ? AND is_deleted = ?",
				replyID, user.OrganizationID, false).
			First(&reply).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reply %d", ErrNotFound, replyID)
			}
			return err
		}

		var existing models.ForumReplyLike
		err := tx.Where("reply_id = ? AND user_id = ?", replyID, user.ID).First(&existing).Error
		switch {
		case err == nil:
			result := tx.Delete(&existing)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return nil
			}
			return tx.Model(&models.ForumReply{}).
				Where("id = ?", replyID).
				Update("like_count", gorm.Expr("like_count - 1")).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			like := models.ForumReplyLike{
				OrganizationID: user.OrganizationID,
				ReplyID:        replyID,
				UserID:         user.ID,
			}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			liked = true
			return tx.Model(&models.ForumReply{}).
				Where("id = ?", replyID).
				Update("like_count", gorm.Expr("like_count + 1")).Error
		default:
			return err
		}
	})

	return liked, err
}

// RecordView appends a view event and bumps the topic counter. Every
// page load counts; per-user deduplication happens at read time via
// UniqueViewers, not here, to keep the hot path to a single insert.
func (s *EngagementService) RecordView(ctx context.Context, orgID, topicID uint, userID *uint, ip, userAgent string) error {
	return s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		view := models.ForumTopicView{
			OrganizationID: orgID,
			TopicID:        topicID,
			UserID:         userID,
			IPAddress:      ip,
			UserAgent:      userAgent,
		}
		if err := tx.Create(&view).Error; err != nil {
			return err
		}
		return tx.Model(&models.ForumTopic{}).
			Where("id = ?", topicID).
			Update("view_count", gorm.Expr("view_count + 1")).Error
	})
}

// UniqueViewers counts distinct authenticated viewers of a topic.
func (s *EngagementService) UniqueViewers(ctx context.Context, topicID uint) (int64, error) {
	var count int64
	err := s.db.DB().WithContext(ctx).Model(&models.ForumTopicView{}).
		Where("topic_id = ? AND user_id IS NOT NULL", topicID).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

// ToggleBookmark bookmarks the topic, or removes the bookmark.
func (s *EngagementService) ToggleBookmark(ctx context.Context, user *models.User, topicID uint) (bool, error) {
	bookmarked := false

	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic models.ForumTopic
		if err := lockForUpdate(tx).
			Where("id = ? AND organization_id = ? AND status = ?",
				topicID, user.OrganizationID, models.TopicStatusActive).
			First(&topic).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
			}
			return err
		}

		var existing models.ForumBookmark
		err := tx.Where("topic_id = ? AND user_id = ?", topicID, user.ID).First(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			bookmark := models.ForumBookmark{
				OrganizationID: user.OrganizationID,
				TopicID:        topicID,
				UserID:         user.ID,
			}
			if err := tx.Create(&bookmark).Error; err != nil {
				return err
			}
			bookmarked = true
			return nil
		default:
			return err
		}
	})

	return bookmarked, err
}

func (s *EngagementService) ListBookmarks(ctx context.Context, user *models.User, page, limit int) ([]models.ForumBookmark, int64, error) {
	query := s.db.DB().WithContext(ctx).Model(&models.ForumBookmark{}).
		Where("user_id = ?", user.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookmarks []models.ForumBookmark
	err := query.
		Preload("Topic").
		Preload("Topic.Category").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&bookmarks).Error
	return bookmarks, total, err
}
