package middleware

import (
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"

	"github.com/gin-gonic/gin"
)

// CurrentUser returns the authenticated user set by RequireAuth, or
// nil on anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get("current_user")
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// CurrentOrganizationID returns the tenant scope of the request, or 0
// when unauthenticated. Every query in the handlers below filters on
// this value; data from other organizations is never reachable.
func CurrentOrganizationID(c *gin.Context) uint {
	value, exists := c.Get("organization_id")
	if !exists {
		return 0
	}
	orgID, ok := value.(uint)
	if !ok {
		return 0
	}
	return orgID
}

// CurrentUserID returns the authenticated user's ID, or nil for
// anonymous requests. The pointer form feeds the view ledger, which
// stores anonymous views with a null user.
func CurrentUserID(c *gin.Context) *uint {
	user := CurrentUser(c)
	if user == nil {
		return nil
	}
	return &user.ID
}
