package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/pkg/query"
)

// Gin context keys set by this package.
const (
	CtxUser            = "user"
	CtxUserID          = "userID"
	CtxRequestID       = "request_id"
	CtxRealIP          = "real_ip"
	CtxAdvancedResults = "advancedResults"
)

// CurrentUser returns the user attached by Protect, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxUser); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}

// Results returns the envelope built by AdvancedResults.
func Results(c *gin.Context) *query.Result {
	if v, ok := c.Get(CtxAdvancedResults); ok {
		if r, ok := v.(*query.Result); ok {
			return r
		}
	}
	return nil
}
