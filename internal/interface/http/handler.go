// Package handlers adapts HTTP requests to the application services.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/pkg/query"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
)

// DocumentFinder loads one record as a document, optionally with references
// populated.
type DocumentFinder interface {
	FindByID(ctx context.Context, id string, populate ...query.Populate) (query.Document, error)
}

// sendResults writes the envelope prepared by middleware.AdvancedResults.
func sendResults(c *gin.Context) {
	res := middleware.Results(c)
	if res == nil {
		res = &query.Result{Success: true, Data: []query.Document{}}
	}
	c.JSON(http.StatusOK, res)
}

func sendDocument(c *gin.Context, finder DocumentFinder, id string, populate ...query.Populate) {
	doc, err := finder.FindByID(c.Request.Context(), id, populate...)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, doc)
}
