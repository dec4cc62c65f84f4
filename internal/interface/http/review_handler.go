package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
)

type ReviewService interface {
	ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Review, error)
}

// ReviewHandler exposes reviews read-only.
type ReviewHandler struct {
	Svc    ReviewService
	Finder DocumentFinder
}

func NewReviewHandler(svc ReviewService, finder DocumentFinder) *ReviewHandler {
	return &ReviewHandler{Svc: svc, Finder: finder}
}

// GET /reviews
func (h *ReviewHandler) List(c *gin.Context) {
	sendResults(c)
}

// GET /bootcamps/:id/reviews
func (h *ReviewHandler) ListByBootcamp(c *gin.Context) {
	list, err := h.Svc.ListByBootcamp(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, list)
}

// GET /reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	sendDocument(c, h.Finder, c.Param("id"), postgres.PopulateBootcamp)
}
