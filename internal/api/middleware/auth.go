package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shopstack/internal/api/requestctx"
	"shopstack/internal/response"
	"shopstack/internal/services/auth"
	"shopstack/internal/services/user"
)

// Authenticated validates the bearer token and applies the account-status
// gate. allowRecovery marks the password-update and logout routes, which
// stay reachable for accounts that must rotate their password first.
func Authenticated(authSvc *auth.Service, allowRecovery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.SendError(c, response.NewError(http.StatusUnauthorized, response.InvalidToken))
			return
		}

		state, svcErr := authSvc.Authenticate(strings.TrimPrefix(header, "Bearer "))
		if svcErr != nil {
			response.SendError(c, svcErr)
			return
		}
		if svcErr := authSvc.GateStatus(state.User, allowRecovery); svcErr != nil {
			response.SendError(c, svcErr)
			return
		}

		requestctx.Set(c, state)
		c.Next()
	}
}

// RequireAdmin runs after Authenticated and admits only admin accounts.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := requestctx.Get(c)
		if state.User == nil || (!state.User.IsAdmin && !state.User.IsSuperAdmin) {
			response.SendError(c, response.NewError(http.StatusForbidden, response.InvalidPermission))
			return
		}
		c.Next()
	}
}

// RequireRole admits admins and holders of any of the given roles.
func RequireRole(userSvc *user.Service, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := requestctx.Get(c)
		if state.User == nil {
			response.SendError(c, response.NewError(http.StatusUnauthorized, response.InvalidToken))
			return
		}
		if state.User.IsAdmin || state.User.IsSuperAdmin {
			c.Next()
			return
		}
		ok, svcErr := userSvc.HasRole(state.User, roles...)
		if svcErr != nil {
			response.SendError(c, svcErr)
			return
		}
		if !ok {
			response.SendError(c, response.NewError(http.StatusForbidden, response.InvalidPermission))
			return
		}
		c.Next()
	}
}
