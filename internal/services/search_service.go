package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
)

// Relevance weights, version 1. These are a product decision: changing
// them requires bumping RankingVersion, never silent tuning.
const (
	RankingVersion = "v1"

	rankingWeightViews      = 0.1
	rankingWeightReplies    = 2.0
	rankingWeightLikes      = 3.0
	rankingWeightBestAnswer = 10.0
	rankingWeightFeatured   = 20.0
)

// SearchService ranks topics with a deterministic weighted sum over the
// denormalized engagement counters.
type SearchService struct {
	db database.Database
}

func NewSearchService(db database.Database) *SearchService {
	return &SearchService{db: db}
}

type SearchFilter struct {
	Query         string
	CategorySlug  string
	Tag           string
	From          *time.Time
	To            *time.Time
	VerifiedOnly  bool
	HasBestAnswer bool
	Page          int
	Limit         int
}

type RankedTopic struct {
	models.ForumTopic
	Score float64 `json:"score" gorm:"column:score"`
}

func (s *SearchService) SearchTopics(ctx context.Context, orgID uint, filter SearchFilter) ([]RankedTopic, int64, error) {
	// CASE keeps the boolean terms portable between postgres and the
	// sqlite databases used in tests.
	scoreExpr := fmt.Sprintf(
		"(%v * forum_topics.view_count + %v * forum_topics.reply_count + %v * forum_topics.like_count"+
			" + CASE WHEN forum_topics.has_best_answer THEN %v ELSE 0 END"+
			" + CASE WHEN forum_topics.is_featured THEN %v ELSE 0 END)",
		rankingWeightViews, rankingWeightReplies, rankingWeightLikes,
		rankingWeightBestAnswer, rankingWeightFeatured,
	)

	query := s.db.DB().WithContext(ctx).Model(&models.ForumTopic{}).
		Where("forum_topics.organization_id = ? AND forum_topics.status = ?", orgID, models.TopicStatusActive)

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		// A topic matches on its own text or on the text of any live reply.
		query = query.Where(
			"LOWER(forum_topics.title) LIKE ? OR LOWER(forum_topics.body) LIKE ? OR EXISTS ("+
				"SELECT 1 FROM forum_replies WHERE forum_replies.topic_id = forum_topics.id"+
				" AND forum_replies.is_deleted = ? AND LOWER(forum_replies.content) LIKE ?)",
			pattern, pattern, false, pattern,
		)
	}
	if filter.CategorySlug != "" {
		query = query.Joins("JOIN forum_categories ON forum_categories.id = forum_topics.category_id").
			Where("forum_categories.slug = ?", filter.CategorySlug)
	}
	if filter.Tag != "" {
		query = query.Where("forum_topics.tags LIKE ?", fmt.Sprintf("%%\"%s\"%%", filter.Tag))
	}
	if filter.From != nil {
		query = query.Where("forum_topics.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("forum_topics.created_at <= ?", *filter.To)
	}
	if filter.VerifiedOnly {
		query = query.Joins("JOIN users ON users.id = forum_topics.author_id").
			Where("users.is_verified = ?", true)
	}
	if filter.HasBestAnswer {
		query = query.Where("forum_topics.has_best_answer = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []RankedTopic
	err := query.
		Select("forum_topics.*, " + scoreExpr + " AS score").
		Order("score DESC, forum_topics.created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&results).Error
	return results, total, err
}
