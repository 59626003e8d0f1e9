package middleware

import (
	"strings"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	jwtService    *services.JWTService
	tenantService *services.TenantService
}

func NewAuthMiddleware(jwtService *services.JWTService, tenantService *services.TenantService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:    jwtService,
		tenantService: tenantService,
	}
}

// RequireAuth validates the bearer token and loads the current user.
// Role and verification come from the database, not the token, so
// demotions take effect immediately.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.parseBearer(c)
		if !ok {
			utils.Unauthorized(c, "Invalid or missing authorization token")
			c.Abort()
			return
		}

		user, err := m.tenantService.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			utils.Unauthorized(c, "Account no longer exists")
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("organization_id", user.OrganizationID)
		c.Set("current_user", user)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present and
// continues anonymously otherwise. Used on public read endpoints that
// record viewer identity when they can.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.parseBearer(c)
		if !ok {
			c.Next()
			return
		}

		user, err := m.tenantService.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("organization_id", user.OrganizationID)
		c.Set("current_user", user)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			utils.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) parseBearer(c *gin.Context) (*services.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, false
	}

	claims, err := m.jwtService.ValidateToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}
