package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
)

// Recovery turns a handler panic into the standard 500 envelope.
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		helpers.LogError(logger, "panic recovered", fmt.Errorf("%v", rec), logrus.Fields{
			"request_id": c.GetString(CtxRequestID),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
		response.Error(c, http.StatusInternalServerError, serverError)
	})
}
