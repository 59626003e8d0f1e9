package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"gorm.io/gorm"
)

// CategoryService maintains the global forum category registry and its
// write-through denormalized counters.
type CategoryService struct {
	db database.Database
}

func NewCategoryService(db database.Database) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) ListActive(ctx context.Context) ([]models.ForumCategory, error) {
	var categories []models.ForumCategory
	err := s.db.DB().WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.ForumCategory, error) {
	var category models.ForumCategory
	err := s.db.DB().WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %q", ErrNotFound, slug)
		}
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id uint) (*models.ForumCategory, error) {
	var category models.ForumCategory
	err := s.db.DB().WithContext(ctx).First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Create(ctx context.Context, category *models.ForumCategory) error {
	if category.Name == "" {
		return fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if category.Slug == "" {
		category.Slug = utils.Slugify(category.Name)
	}
	return s.db.DB().WithContext(ctx).Create(category).Error
}

// AdjustCounters bumps the denormalized topic/post counters. It must be
// called with the same transaction that writes the topic or reply row,
// so a failed counter write rolls the content write back too.
func (s *CategoryService) AdjustCounters(tx *gorm.DB, categoryID uint, topicDelta, postDelta int) error {
	updates := map[string]interface{}{}
	if topicDelta != 0 {
		updates["topic_count"] = gorm.Expr("topic_count + ?", topicDelta)
	}
	if postDelta != 0 {
		updates["post_count"] = gorm.Expr("post_count + ?", postDelta)
	}
	if len(updates) == 0 {
		return nil
	}

	result := tx.Model(&models.ForumCategory{}).
		Where("id = ?", categoryID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: category %d", ErrNotFound, categoryID)
	}
	return nil
}

// CategoryDrift reports a category whose stored counters diverged from
// the live row counts.
type CategoryDrift struct {
	CategoryID   uint   `json:"category_id"`
	Slug         string `json:"slug"`
	StoredTopics int    `json:"stored_topics"`
	ActualTopics int    `json:"actual_topics"`
	StoredPosts  int    `json:"stored_posts"`
	ActualPosts  int    `json:"actual_posts"`
}

// Reconcile recomputes topic_count and post_count from live rows and
// corrects any drift. It is the safety net behind the write-through
// increments and runs on the reconciler schedule.
func (s *CategoryService) Reconcile(ctx context.Context) ([]CategoryDrift, error) {
	var categories []models.ForumCategory
	if err := s.db.DB().WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, err
	}

	var corrected []CategoryDrift
	for _, category := range categories {
		var topicCount, postCount int64

		err := s.db.DB().WithContext(ctx).Model(&models.ForumTopic{}).
			Where("category_id = ? AND status = ?", category.ID, models.TopicStatusActive).
			Count(&topicCount).Error
		if err != nil {
			return corrected, err
		}

		err = s.db.DB().WithContext(ctx).Model(&models.ForumReply{}).
			Joins("JOIN forum_topics ON forum_topics.id = forum_replies.topic_id").
			Where("forum_topics.category_id = ? AND forum_topics.status = ? AND forum_replies.is_deleted = ?",
				category.ID, models.TopicStatusActive, false).
			Count(&postCount).Error
		if err != nil {
			return corrected, err
		}

		if int(topicCount) == category.TopicCount && int(postCount) == category.PostCount {
			continue
		}

		err = s.db.DB().WithContext(ctx).Model(&models.ForumCategory{}).
			Where("id = ?", category.ID).
			Updates(map[string]interface{}{
				"topic_count": topicCount,
				"post_count":  postCount,
			}).Error
		if err != nil {
			return corrected, err
		}

		corrected = append(corrected, CategoryDrift{
			CategoryID:   category.ID,
			Slug:         category.Slug,
			StoredTopics: category.TopicCount,
			ActualTopics: int(topicCount),
			StoredPosts:  category.PostCount,
			ActualPosts:  int(postCount),
		})
	}

	return corrected, nil
}
