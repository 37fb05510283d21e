package middleware

import (
	"servicedesk/apperrors"
	"servicedesk/models"
	"servicedesk/utils"

	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through only when the authenticated user has
// one of the given roles. It must run after JWTAuthMiddleware.
func RequireRoles(roles ...models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.RespondError(c, apperrors.NewAuthError("authentication required"))
			return
		}
		for _, r := range roles {
			if user.UserType == r {
				c.Next()
				return
			}
		}
		utils.RespondError(c, apperrors.NewForbiddenError("insufficient permissions"))
	}
}
