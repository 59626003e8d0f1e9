package handlers

import (
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/middleware"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler exchanges identity-provider sessions for platform
// tokens and serves the current user's profile.
type AuthHandler struct {
	auth        *services.AuthService
	tenants     *services.TenantService
	invitations *services.InvitationService
	verifier    services.SessionVerifier
}

func NewAuthHandler(auth *services.AuthService, tenants *services.TenantService, invitations *services.InvitationService, verifier services.SessionVerifier) *AuthHandler {
	return &AuthHandler{
		auth:        auth,
		tenants:     tenants,
		invitations: invitations,
		verifier:    verifier,
	}
}

type loginRequest struct {
	SessionToken string `json:"session_token" binding:"required"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "session_token is required")
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.SessionToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "refresh_token is required")
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, pair)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "refresh_token is required")
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}

type acceptInvitationRequest struct {
	Token        string `json:"token" binding:"required"`
	SessionToken string `json:"session_token" binding:"required"`
}

// AcceptInvitation handles POST /api/v1/auth/invitations/accept. The
// invitee authenticates with the identity provider first, then
// redeems the invitation token; a fresh token pair comes back.
func (h *AuthHandler) AcceptInvitation(c *gin.Context) {
	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "token and session_token are required")
		return
	}

	identity, err := h.verifier.VerifySession(c.Request.Context(), req.SessionToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if _, err := h.invitations.Accept(c.Request.Context(), req.Token, identity); err != nil {
		handleServiceError(c, err)
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.SessionToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Created(c, "Invitation accepted", pair)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.Unauthorized(c, "Authentication required")
		return
	}
	utils.OK(c, user)
}

// UpdateProfile handles PUT /api/v1/auth/me.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.Unauthorized(c, "Authentication required")
		return
	}

	var input services.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Invalid profile payload")
		return
	}

	updated, err := h.tenants.UpdateProfile(c.Request.Context(), user.ID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, updated)
}
