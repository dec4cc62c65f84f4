package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
	"github.com/oksasatya/bootcamp-directory/pkg/validation"
)

const serverError = "Server Error"

// ErrorHandler writes the error envelope for the last error a handler
// pushed with c.Error. Server-side failures are logged.
func ErrorHandler(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, msg := Translate(err)
		if status >= http.StatusInternalServerError {
			helpers.LogError(logger, "request failed", err, logrus.Fields{
				"request_id": c.GetString(CtxRequestID),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"status":     status,
			})
		}
		if c.Writer.Written() {
			return
		}
		response.Error(c, status, msg)
	}
}

// Translate maps err onto a status and client-facing message. Store errors
// are normalized into the same taxonomy as application errors.
func Translate(err error) (int, string) {
	if ae := apperror.From(err); ae != nil {
		if ae.Kind == apperror.KindUnhandled {
			return http.StatusInternalServerError, serverError
		}
		return ae.Status, ae.Message
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return translatePg(pgErr)
	}

	if errors.Is(err, io.EOF) {
		return http.StatusBadRequest, "Request body is required"
	}
	if validation.IsBindingError(err) {
		return http.StatusBadRequest, validation.Message(err)
	}
	return http.StatusInternalServerError, serverError
}

func translatePg(e *pgconn.PgError) (int, string) {
	switch e.Code {
	case pgerrcode.UniqueViolation:
		return http.StatusBadRequest, "Duplicate field value entered: " + constraintField(e.TableName, e.ConstraintName)
	case pgerrcode.InvalidTextRepresentation, pgerrcode.ForeignKeyViolation:
		return http.StatusNotFound, "Resource not found"
	case pgerrcode.NotNullViolation:
		return http.StatusBadRequest, fmt.Sprintf("%s is required", e.ColumnName)
	case pgerrcode.CheckViolation:
		return http.StatusBadRequest, "Invalid value for " + constraintField(e.TableName, e.ConstraintName)
	case pgerrcode.StringDataRightTruncationDataException:
		return http.StatusBadRequest, "Value is too long"
	}
	return http.StatusInternalServerError, serverError
}

// constraintField recovers the column from a default constraint name such
// as users_email_key or reviews_rating_check.
func constraintField(table, constraint string) string {
	name := constraint
	if table != "" {
		name = strings.TrimPrefix(name, table+"_")
	} else if i := strings.Index(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	for _, suffix := range []string{"_key", "_check", "_idx"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}
