package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/bootcamp-directory/internal/interface/http"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/pkg/query"
)

type CourseModule struct {
	Handler *handlers.CourseHandler
	Auth    middleware.Authenticator
	Store   query.Store
}

func NewCourseModule(h *handlers.CourseHandler, auth middleware.Authenticator, store query.Store) *CourseModule {
	return &CourseModule{Handler: h, Auth: auth, Store: store}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/courses")
	g.GET("", middleware.AdvancedResults(m.Store, postgres.PopulateBootcamp), m.Handler.List)
	g.GET("/:id", m.Handler.Get)

	w := g.Group("", middleware.Protect(m.Auth), middleware.Authorize(entity.RolePublisher, entity.RoleAdmin))
	{
		w.PUT("/:id", m.Handler.Update)
		w.DELETE("/:id", m.Handler.Delete)
	}
}
