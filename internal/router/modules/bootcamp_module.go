package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/bootcamp-directory/internal/interface/http"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/pkg/query"
)

// BootcampModule owns /bootcamps and the course and review routes nested
// under a bootcamp.
type BootcampModule struct {
	Bootcamps *handlers.BootcampHandler
	Courses   *handlers.CourseHandler
	Reviews   *handlers.ReviewHandler
	Auth      middleware.Authenticator
	Store     query.Store
}

func NewBootcampModule(b *handlers.BootcampHandler, c *handlers.CourseHandler, r *handlers.ReviewHandler, auth middleware.Authenticator, store query.Store) *BootcampModule {
	return &BootcampModule{Bootcamps: b, Courses: c, Reviews: r, Auth: auth, Store: store}
}

func (m *BootcampModule) Register(rg *gin.RouterGroup) {
	publish := []gin.HandlerFunc{
		middleware.Protect(m.Auth),
		middleware.Authorize(entity.RolePublisher, entity.RoleAdmin),
	}

	g := rg.Group("/bootcamps")
	g.GET("", middleware.AdvancedResults(m.Store, postgres.PopulateCourses), m.Bootcamps.List)
	g.GET("/search", m.Bootcamps.Search)
	g.GET("/radius/:zipcode/:distance", m.Bootcamps.Radius)
	g.GET("/:id", m.Bootcamps.Get)
	g.GET("/:id/courses", m.Courses.ListByBootcamp)
	g.GET("/:id/reviews", m.Reviews.ListByBootcamp)

	w := g.Group("", publish...)
	{
		w.POST("", m.Bootcamps.Create)
		w.PUT("/:id", m.Bootcamps.Update)
		w.DELETE("/:id", m.Bootcamps.Delete)
		w.PUT("/:id/photos", m.Bootcamps.Photo)
		w.POST("/:id/courses", m.Courses.Create)
	}
}
