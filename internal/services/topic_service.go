package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TopicService is the post/reply store: threaded content plus the
// denormalized counters that hang off it. Every multi-row write runs in
// a single transaction so counters cannot drift from the rows that
// caused them.
type TopicService struct {
	db         database.Database
	categories *CategoryService
	reputation *ReputationService
}

func NewTopicService(db database.Database, categories *CategoryService, reputation *ReputationService) *TopicService {
	return &TopicService{db: db, categories: categories, reputation: reputation}
}

type CreateTopicInput struct {
	CategoryID uint     `json:"category_id" binding:"required"`
	Title      string   `json:"title" binding:"required"`
	Body       string   `json:"body" binding:"required"`
	Tags       []string `json:"tags"`
}

func (s *TopicService) CreateTopic(ctx context.Context, author *models.User, input CreateTopicInput) (*models.ForumTopic, error) {
	if err := utils.ValidateTopicTitle(input.Title); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := utils.ValidateTopicBody(input.Body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	tags, err := utils.ValidateTags(input.Tags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, fmt.Errorf("%w: category %d", ErrNotFound, input.CategoryID)
	}
	if category.RequiresVerification && !author.IsVerified {
		return nil, fmt.Errorf("%w", ErrVerificationNeeded)
	}

	now := time.Now().UTC()
	topic := &models.ForumTopic{
		UUID:           uuid.New().String(),
		OrganizationID: author.OrganizationID,
		CategoryID:     category.ID,
		AuthorID:       author.ID,
		Title:          input.Title,
		Body:           input.Body,
		Tags:           models.StringList(tags),
		Status:         models.TopicStatusActive,
		LastActivityAt: now,
	}

	err = s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(topic).Error; err != nil {
			return err
		}
		if err := s.categories.AdjustCounters(tx, category.ID, 1, 0); err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", author.ID).
			Update("forum_topics_count", gorm.Expr("forum_topics_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	return topic, nil
}

// GetTopic returns an active topic scoped to the organization.
// Soft-deleted topics are reported as not found.
func (s *TopicService) GetTopic(ctx context.Context, orgID, topicID uint) (*models.ForumTopic, error) {
	var topic models.ForumTopic
	err := s.db.DB().WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Where("id = ? AND organization_id = ?", topicID, orgID).
		First(&topic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
		}
		return nil, err
	}
	if topic.IsDeleted() {
		return nil, fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
	}
	return &topic, nil
}

type TopicFilter struct {
	CategorySlug string
	Tag          string
	AuthorID     uint
	Sort         string // newest | active | popular
	Page         int
	Limit        int
}

func (s *TopicService) ListTopics(ctx context.Context, orgID uint, filter TopicFilter) ([]models.ForumTopic, int64, error) {
	query := s.db.DB().WithContext(ctx).Model(&models.ForumTopic{}).
		Where("forum_topics.organization_id = ? AND forum_topics.status = ?", orgID, models.TopicStatusActive)

	if filter.CategorySlug != "" {
		query = query.Joins("JOIN forum_categories ON forum_categories.id = forum_topics.category_id").
			Where("forum_categories.slug = ?", filter.CategorySlug)
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array; a quoted LIKE matches both
		// the postgres jsonb text form and the sqlite text column.
		query = query.Where("forum_topics.tags LIKE ?", fmt.Sprintf("%%\"%s\"%%", filter.Tag))
	}
	if filter.AuthorID != 0 {
		query = query.Where("forum_topics.author_id = ?", filter.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "forum_topics.is_pinned DESC, "
	switch filter.Sort {
	case "active", "":
		order += "forum_topics.last_activity_at DESC"
	case "newest":
		order += "forum_topics.created_at DESC"
	case "popular":
		order += "forum_topics.like_count DESC, forum_topics.view_count DESC"
	default:
		return nil, 0, fmt.Errorf("%w: unknown sort %q", ErrValidation, filter.Sort)
	}

	var topics []models.ForumTopic
	err := query.
		Preload("Author").
		Preload("Category").
		Order(order).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&topics).Error
	return topics, total, err
}

type CreateReplyInput struct {
	Content       string `json:"content" binding:"required"`
	ParentReplyID *uint  `json:"parent_reply_id"`
}

func (s *TopicService) CreateReply(ctx context.Context, author *models.User, topicID uint, input CreateReplyInput) (*models.ForumReply, error) {
	if err := utils.ValidateReplyContent(input.Content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	reply := &models.ForumReply{
		UUID:           uuid.New().String(),
		OrganizationID: author.OrganizationID,
		TopicID:        topicID,
		AuthorID:       author.ID,
		Content:        input.Content,
		ParentReplyID:  input.ParentReplyID,
	}

	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic models.ForumTopic
		if err := lockForUpdate(tx).
			Where("id = ? AND organization_id = ?", topicID, author.OrganizationID).
			First(&topic).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
			}
			return err
		}
		if topic.IsDeleted() {
			return fmt.Errorf("%w: topic %d", ErrTopicDeleted, topicID)
		}
		if topic.IsLocked {
			return fmt.Errorf("%w: topic %d", ErrTopicLocked, topicID)
		}

		parentPath := ""
		if input.ParentReplyID != nil {
			var parent models.ForumReply
			if err := tx.Where("id = ? AND is_deleted = ?", *input.ParentReplyID, false).
				First(&parent).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: parent reply %d", ErrNotFound, *input.ParentReplyID)
				}
				return err
			}
			if parent.TopicID != topicID {
				return fmt.Errorf("%w: parent reply belongs to a different topic", ErrValidation)
			}

			parentPath = parent.ReplyPath
			reply.Depth = parent.Depth + 1

			if err := tx.Model(&models.ForumReply{}).
				Where("id = ?", parent.ID).
				Update("child_reply_count", gorm.Expr("child_reply_count + 1")).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(reply).Error; err != nil {
			return err
		}

		// The path ends in the reply's own ID, which only exists after
		// the insert, so it is written in a second statement.
		reply.ReplyPath = reply.PathUnder(parentPath)
		if err := tx.Model(&models.ForumReply{}).
			Where("id = ?", reply.ID).
			Update("reply_path", reply.ReplyPath).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.ForumTopic{}).
			Where("id = ?", topic.ID).
			Updates(map[string]interface{}{
				"reply_count":          gorm.Expr("reply_count + 1"),
				"last_activity_at":     now,
				"last_reply_id":        reply.ID,
				"last_reply_author_id": reply.AuthorID,
			}).Error; err != nil {
			return err
		}

		if err := s.categories.AdjustCounters(tx, topic.CategoryID, 0, 1); err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", author.ID).
			Update("forum_replies_count", gorm.Expr("forum_replies_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	return reply, nil
}

// ListReplies returns a topic's replies. The default order is oldest
// first; threaded order sorts by the zero-padded materialized path so
// every subtree stays contiguous. Soft-deleted replies are included so
// threads keep their shape; callers mask their content.
func (s *TopicService) ListReplies(ctx context.Context, orgID, topicID uint, order string) ([]models.ForumReply, error) {
	if _, err := s.GetTopic(ctx, orgID, topicID); err != nil {
		return nil, err
	}

	query := s.db.DB().WithContext(ctx).
		Preload("Author").
		Where("topic_id = ?", topicID)

	switch order {
	case "threaded":
		query = query.Order("reply_path ASC")
	case "oldest", "":
		query = query.Order("created_at ASC")
	case "newest":
		query = query.Order("created_at DESC")
	case "likes":
		query = query.Order("like_count DESC, created_at ASC")
	default:
		return nil, fmt.Errorf("%w: unknown order %q", ErrValidation, order)
	}

	var replies []models.ForumReply
	err := query.Find(&replies).Error
	return replies, err
}

// EditReply updates a reply's content. Only the original author may
// edit; likes and best-answer status are untouched.
func (s *TopicService) EditReply(ctx context.Context, editor *models.User, replyID uint, content string) (*models.ForumReply, error) {
	if err := utils.ValidateReplyContent(content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var reply models.ForumReply
	err := s.db.DB().WithContext(ctx).
		Where("id = ? AND organization_id = ?", replyID, editor.OrganizationID).
		First(&reply).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reply %d", ErrNotFound, replyID)
		}
		return nil, err
	}
	if reply.IsDeleted {
		return nil, fmt.Errorf("%w: reply %d", ErrNotFound, replyID)
	}
	if reply.AuthorID != editor.ID {
		return nil, fmt.Errorf("%w: only the author may edit a reply", ErrPermissionDenied)
	}

	now := time.Now().UTC()
	err = s.db.DB().WithContext(ctx).Model(&models.ForumReply{}).
		Where("id = ?", reply.ID).
		Updates(map[string]interface{}{
			"content":   content,
			"edited_at": now,
		}).Error
	if err != nil {
		return nil, err
	}

	reply.Content = content
	reply.EditedAt = &now
	return &reply, nil
}

// SoftDeleteTopic marks the topic and all of its replies deleted and
// rolls the category counters back exactly once. Rows are never
// physically removed.
func (s *TopicService) SoftDeleteTopic(ctx context.Context, requester *models.User, topicID uint) error {
	return s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic models.ForumTopic
		if err := lockForUpdate(tx).
			Where("id = ? AND organization_id = ?", topicID, requester.OrganizationID).
			First(&topic).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
			}
			return err
		}
		if topic.IsDeleted() {
			return fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
		}
		if topic.AuthorID != requester.ID && !requester.IsAdmin() {
			return fmt.Errorf("%w: only the author or an admin may delete a topic", ErrPermissionDenied)
		}

		var liveReplies int64
		if err := tx.Model(&models.ForumReply{}).
			Where("topic_id = ? AND is_deleted = ?", topic.ID, false).
			Count(&liveReplies).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		if liveReplies > 0 {
			if err := tx.Model(&models.ForumReply{}).
				Where("topic_id = ? AND is_deleted = ?", topic.ID, false).
				Updates(map[string]interface{}{
					"is_deleted": true,
					"deleted_at": now,
				}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.ForumTopic{}).
			Where("id = ?", topic.ID).
			Update("status", models.TopicStatusDeleted).Error; err != nil {
			return err
		}

		return s.categories.AdjustCounters(tx, topic.CategoryID, -1, -int(liveReplies))
	})
}

// SoftDeleteReply marks a reply and its descendant subtree deleted,
// keeping the rows for thread rendering. Counters are decremented by
// the number of rows actually transitioned, and the best-answer state
// is cleared (with its bonus revoked) if the selected answer is in the
// deleted subtree.
func (s *TopicService) SoftDeleteReply(ctx context.Context, requester *models.User, replyID uint) error {
	return s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reply models.ForumReply
		if err := tx.Where("id = ? AND organization_id = ?", replyID, requester.OrganizationID).
			First(&reply).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reply %d", ErrNotFound, replyID)
			}
			return err
		}
		if reply.IsDeleted {
			return fmt.Errorf("%w: reply %d", ErrNotFound, replyID)
		}
		if reply.AuthorID != requester.ID && !requester.IsAdmin() {
			return fmt.Errorf("%w: only the author or an admin may delete a reply", ErrPermissionDenied)
		}

		var topic models.ForumTopic
		if err := lockForUpdate(tx).First(&topic, reply.TopicID).Error; err != nil {
			return err
		}

		subtree := tx.Model(&models.ForumReply{}).
			Where("topic_id = ? AND is_deleted = ? AND (id = ? OR reply_path LIKE ?)",
				reply.TopicID, false, reply.ID, reply.SubtreePrefix())

		var affectedIDs []uint
		if err := subtree.Pluck("id", &affectedIDs).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.ForumReply{}).
			Where("id IN ?", affectedIDs).
			Updates(map[string]interface{}{
				"is_deleted": true,
				"deleted_at": now,
			}).Error; err != nil {
			return err
		}

		if reply.ParentReplyID != nil {
			if err := tx.Model(&models.ForumReply{}).
				Where("id = ?", *reply.ParentReplyID).
				Update("child_reply_count", gorm.Expr("child_reply_count - 1")).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.ForumTopic{}).
			Where("id = ?", topic.ID).
			Update("reply_count", gorm.Expr("reply_count - ?", len(affectedIDs))).Error; err != nil {
			return err
		}

		if err := s.categories.AdjustCounters(tx, topic.CategoryID, 0, -len(affectedIDs)); err != nil {
			return err
		}

		if topic.HasBestAnswer && topic.BestAnswerReplyID != nil && containsID(affectedIDs, *topic.BestAnswerReplyID) {
			var best models.ForumReply
			if err := tx.First(&best, *topic.BestAnswerReplyID).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.ForumReply{}).
				Where("id = ?", best.ID).
				Update("is_best_answer", false).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.ForumTopic{}).
				Where("id = ?", topic.ID).
				Updates(map[string]interface{}{
					"has_best_answer":      false,
					"best_answer_reply_id": nil,
				}).Error; err != nil {
				return err
			}
			if err := s.reputation.RevokeBestAnswer(tx, topic.OrganizationID, best.AuthorID, topic.ID, best.ID); err != nil {
				return err
			}
		}

		return s.refreshLastReply(tx, topic.ID)
	})
}

// refreshLastReply repoints the topic's last-reply columns at the most
// recent surviving reply. last_activity_at is left alone so it stays
// monotonic.
func (s *TopicService) refreshLastReply(tx *gorm.DB, topicID uint) error {
	var last models.ForumReply
	err := tx.Where("topic_id = ? AND is_deleted = ?", topicID, false).
		Order("created_at DESC").
		First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Model(&models.ForumTopic{}).
				Where("id = ?", topicID).
				Updates(map[string]interface{}{
					"last_reply_id":        nil,
					"last_reply_author_id": nil,
				}).Error
		}
		return err
	}

	return tx.Model(&models.ForumTopic{}).
		Where("id = ?", topicID).
		Updates(map[string]interface{}{
			"last_reply_id":        last.ID,
			"last_reply_author_id": last.AuthorID,
		}).Error
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
