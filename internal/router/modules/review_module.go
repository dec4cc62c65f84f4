package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/bootcamp-directory/internal/interface/http"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/pkg/query"
)

// ReviewModule is read-only.
type ReviewModule struct {
	Handler *handlers.ReviewHandler
	Store   query.Store
}

func NewReviewModule(h *handlers.ReviewHandler, store query.Store) *ReviewModule {
	return &ReviewModule{Handler: h, Store: store}
}

func (m *ReviewModule) Register(rg *gin.RouterGroup) {
	rg.GET("/reviews", middleware.AdvancedResults(m.Store, postgres.PopulateBootcamp), m.Handler.List)
	rg.GET("/reviews/:id", m.Handler.Get)
}
