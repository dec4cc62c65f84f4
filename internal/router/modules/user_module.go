package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	handlers "github.com/oksasatya/bootcamp-directory/internal/interface/http"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/pkg/query"
)

// UserModule exposes user management to admins only:
// GET/POST /users, GET/PUT/DELETE /users/:id
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    middleware.Authenticator
	Store   query.Store
}

func NewUserModule(h *handlers.UserHandler, auth middleware.Authenticator, store query.Store) *UserModule {
	return &UserModule{Handler: h, Auth: auth, Store: store}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/users")
	g.Use(middleware.Protect(m.Auth), middleware.Authorize(entity.RoleAdmin))
	{
		g.GET("", middleware.AdvancedResults(m.Store), m.Handler.List)
		g.POST("", m.Handler.Create)
		g.GET("/:id", m.Handler.Get)
		g.PUT("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
