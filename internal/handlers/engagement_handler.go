package handlers

import (
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/middleware"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type EngagementHandler struct {
	engagement *services.EngagementService
}

func NewEngagementHandler(engagement *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagement: engagement}
}

// ToggleTopicLike handles POST /api/v1/topics/:id/like.
func (h *EngagementHandler) ToggleTopicLike(c *gin.Context) {
	user := middleware.CurrentUser(c)

	topicID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid topic id")
		return
	}

	liked, err := h.engagement.ToggleTopicLike(c.Request.Context(), user, topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, gin.H{"liked": liked})
}

// ToggleReplyLike handles POST /api/v1/replies/:id/like.
func (h *EngagementHandler) ToggleReplyLike(c *gin.Context) {
	user := middleware.CurrentUser(c)

	replyID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid reply id")
		return
	}

	liked, err := h.engagement.ToggleReplyLike(c.Request.Context(), user, replyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, gin.H{"liked": liked})
}

// ToggleBookmark handles POST /api/v1/topics/:id/bookmark.
func (h *EngagementHandler) ToggleBookmark(c *gin.Context) {
	user := middleware.CurrentUser(c)

	topicID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid topic id")
		return
	}

	bookmarked, err := h.engagement.ToggleBookmark(c.Request.Context(), user, topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, gin.H{"bookmarked": bookmarked})
}

// ListBookmarks handles GET /api/v1/bookmarks.
func (h *EngagementHandler) ListBookmarks(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, limit := utils.ParsePagination(c)

	bookmarks, total, err := h.engagement.ListBookmarks(c.Request.Context(), user, page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Paginated(c, bookmarks, page, limit, total)
}

// UniqueViewers handles GET /api/v1/topics/:id/viewers.
func (h *EngagementHandler) UniqueViewers(c *gin.Context) {
	topicID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid topic id")
		return
	}

	count, err := h.engagement.UniqueViewers(c.Request.Context(), topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, gin.H{"unique_viewers": count})
}
