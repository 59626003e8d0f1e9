package handlers

import (
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/middleware"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	search *services.SearchService
}

func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// SearchTopics handles GET /api/v1/search/topics.
func (h *SearchHandler) SearchTopics(c *gin.Context) {
	orgID := middleware.CurrentOrganizationID(c)
	page, limit := utils.ParsePagination(c)

	filter := services.SearchFilter{
		Query:         c.Query("q"),
		CategorySlug:  c.Query("category"),
		Tag:           c.Query("tag"),
		VerifiedOnly:  c.Query("verified_only") == "true",
		HasBestAnswer: c.Query("has_best_answer") == "true",
		Page:          page,
		Limit:         limit,
	}

	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.To = &to
	}

	results, total, err := h.search.SearchTopics(c.Request.Context(), orgID, filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("X-Ranking-Version", services.RankingVersion)
	utils.Paginated(c, results, page, limit, total)
}
