package handlers

import (
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/middleware"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrganizationHandler covers tenant onboarding and the member
// directory.
type OrganizationHandler struct {
	tenants  *services.TenantService
	auth     *services.AuthService
	verifier services.SessionVerifier
}

func NewOrganizationHandler(tenants *services.TenantService, auth *services.AuthService, verifier services.SessionVerifier) *OrganizationHandler {
	return &OrganizationHandler{
		tenants:  tenants,
		auth:     auth,
		verifier: verifier,
	}
}

type registerOrganizationRequest struct {
	services.CreateOrganizationInput
	SessionToken string `json:"session_token" binding:"required"`
}

// Register handles POST /api/v1/organizations. The caller becomes the
// organization's first admin, identified through the identity
// provider.
func (h *OrganizationHandler) Register(c *gin.Context) {
	var req registerOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "name, contact_email and session_token are required")
		return
	}

	identity, err := h.verifier.VerifySession(c.Request.Context(), req.SessionToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	org, err := h.tenants.CreateOrganization(c.Request.Context(), req.CreateOrganizationInput)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	externalID := identity.ExternalID
	founder := &models.User{
		OrganizationID: org.ID,
		Email:          identity.Email,
		FirstName:      identity.FirstName,
		LastName:       identity.LastName,
		Role:           models.RoleAdmin,
		Status:         models.UserStatusActive,
		ExternalID:     &externalID,
	}
	if err := h.tenants.CreateUser(c.Request.Context(), founder); err != nil {
		handleServiceError(c, err)
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.SessionToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Created(c, "Organization created", gin.H{
		"organization": org,
		"tokens":       pair,
	})
}

// Get handles GET /api/v1/organization.
func (h *OrganizationHandler) Get(c *gin.Context) {
	org, err := h.tenants.GetOrganization(c.Request.Context(), middleware.CurrentOrganizationID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.OK(c, org)
}

// Update handles PUT /api/v1/organization.
func (h *OrganizationHandler) Update(c *gin.Context) {
	var input services.UpdateOrganizationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	org, err := h.tenants.UpdateOrganization(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.OK(c, org)
}

// ListMembers handles GET /api/v1/organization/members.
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	page, limit := utils.ParsePagination(c)

	members, total, err := h.tenants.ListMembers(c.Request.Context(), middleware.CurrentOrganizationID(c), page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Paginated(c, members, page, limit, total)
}
