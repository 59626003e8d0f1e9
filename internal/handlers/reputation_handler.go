package handlers

import (
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/middleware"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ReputationHandler struct {
	reputation *services.ReputationService
	tenants    *services.TenantService
}

func NewReputationHandler(reputation *services.ReputationService, tenants *services.TenantService) *ReputationHandler {
	return &ReputationHandler{reputation: reputation, tenants: tenants}
}

// GetScore handles GET /api/v1/users/:id/reputation.
func (h *ReputationHandler) GetScore(c *gin.Context) {
	userID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid user id")
		return
	}

	target, err := h.tenants.GetUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if target.OrganizationID != middleware.CurrentOrganizationID(c) {
		utils.NotFound(c, "user not found")
		return
	}

	score, err := h.reputation.GetScore(c.Request.Context(), target.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, gin.H{
		"user_id":          target.ID,
		"reputation_score": score,
	})
}

// History handles GET /api/v1/users/:id/reputation/history.
func (h *ReputationHandler) History(c *gin.Context) {
	userID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid user id")
		return
	}

	target, err := h.tenants.GetUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if target.OrganizationID != middleware.CurrentOrganizationID(c) {
		utils.NotFound(c, "user not found")
		return
	}

	page, limit := utils.ParsePagination(c)
	events, total, err := h.reputation.History(c.Request.Context(), target.ID, page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Paginated(c, events, page, limit, total)
}
