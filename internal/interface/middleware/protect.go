package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

// Authenticator turns a session token into the user it was issued to.
type Authenticator interface {
	Identify(ctx context.Context, token string) (*entity.User, error)
}

// Protect requires a valid session token. A Bearer header wins over the
// token cookie.
func Protect(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := auth.Identify(c.Request.Context(), TokenFrom(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(CtxUser, u)
		c.Set(CtxUserID, u.ID)
		c.Next()
	}
}

// TokenFrom extracts the session token from the request, or "".
func TokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); tok != "" {
			return tok
		}
	}
	if tok, err := c.Cookie(helpers.TokenCookie); err == nil {
		return tok
	}
	return ""
}
