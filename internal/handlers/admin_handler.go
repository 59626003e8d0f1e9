package handlers

import (
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/middleware"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler groups the organization-admin operations: membership
// management, invitations, reputation adjustments and counter
// reconciliation.
type AdminHandler struct {
	tenants     *services.TenantService
	invitations *services.InvitationService
	reputation  *services.ReputationService
	categories  *services.CategoryService
}

func NewAdminHandler(tenants *services.TenantService, invitations *services.InvitationService, reputation *services.ReputationService, categories *services.CategoryService) *AdminHandler {
	return &AdminHandler{
		tenants:     tenants,
		invitations: invitations,
		reputation:  reputation,
		categories:  categories,
	}
}

// Invite handles POST /api/v1/admin/invitations.
func (h *AdminHandler) Invite(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input services.InviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "email is required")
		return
	}

	invitation, err := h.invitations.Invite(c.Request.Context(), user, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Created(c, "Invitation created", invitation)
}

// ListInvitations handles GET /api/v1/admin/invitations.
func (h *AdminHandler) ListInvitations(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, limit := utils.ParsePagination(c)

	invitations, total, err := h.invitations.List(c.Request.Context(), user, page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Paginated(c, invitations, page, limit, total)
}

// RevokeInvitation handles DELETE /api/v1/admin/invitations/:id.
func (h *AdminHandler) RevokeInvitation(c *gin.Context) {
	user := middleware.CurrentUser(c)

	invitationID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid invitation id")
		return
	}

	if err := h.invitations.Revoke(c.Request.Context(), user, invitationID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetMemberRole handles PUT /api/v1/admin/members/:id/role.
func (h *AdminHandler) SetMemberRole(c *gin.Context) {
	user := middleware.CurrentUser(c)

	memberID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid member id")
		return
	}

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "role is required")
		return
	}

	if err := h.tenants.SetUserRole(c.Request.Context(), user, memberID, req.Role); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}

type setVerifiedRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

// SetMemberVerified handles PUT /api/v1/admin/members/:id/verified.
func (h *AdminHandler) SetMemberVerified(c *gin.Context) {
	user := middleware.CurrentUser(c)

	memberID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid member id")
		return
	}

	var req setVerifiedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Verified == nil {
		utils.BadRequest(c, "verified is required")
		return
	}

	if err := h.tenants.SetUserVerified(c.Request.Context(), user, memberID, *req.Verified); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}

type adjustReputationRequest struct {
	Delta int    `json:"delta" binding:"required"`
	Note  string `json:"note"`
}

// AdjustReputation handles POST /api/v1/admin/members/:id/reputation.
func (h *AdminHandler) AdjustReputation(c *gin.Context) {
	user := middleware.CurrentUser(c)

	memberID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid member id")
		return
	}

	var req adjustReputationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "delta is required and must be non-zero")
		return
	}

	if err := h.reputation.AdminAdjust(c.Request.Context(), user, memberID, req.Delta, req.Note); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}

// ReconcileCounters handles POST /api/v1/admin/reconcile. The cron
// job runs the same routine on a schedule; this endpoint exists for
// on-demand repair after support interventions.
func (h *AdminHandler) ReconcileCounters(c *gin.Context) {
	drifts, err := h.categories.Reconcile(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, gin.H{
		"corrected": len(drifts),
		"drifts":    drifts,
	})
}
