package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/pkg/query"
)

// AdvancedResults runs the request's query string against store and leaves
// the paginated envelope in the context for the list handler.
func AdvancedResults(store query.Store, populate ...query.Populate) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := query.Parse(c.Request.URL.Query())
		q.Populate = populate

		res, err := query.Execute(c.Request.Context(), store, q)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(CtxAdvancedResults, res)
		c.Next()
	}
}
