package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

// Allowed reports whether role is one of allowed.
func Allowed(role entity.Role, allowed []entity.Role) bool {
	return slices.Contains(allowed, role)
}

// Authorize must run after Protect. It answers 403 when the user's role is
// not in roles.
func Authorize(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			_ = c.Error(apperror.Unauthenticated("Not authorized to access this resource"))
			c.Abort()
			return
		}
		if !Allowed(u.Role, roles) {
			_ = c.Error(apperror.Forbidden("User role %s is not authorized to access this resource", u.Role))
			c.Abort()
			return
		}
		c.Next()
	}
}
