package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/bootcamp-directory/internal/interface/http"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    middleware.Authenticator
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, auth middleware.Authenticator, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetInitLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	g := rg.Group("/auth")
	g.POST("/register", loginLimiter, m.Handler.Register)
	g.POST("/login", loginLimiter, m.Handler.Login)
	g.GET("/logout", m.Handler.Logout)
	g.POST("/forgotpassword", resetInitLimiter, m.Handler.ForgotPassword)
	g.PUT("/resetpassword/:token", resetConfirmLimiter, m.Handler.ResetPassword)

	auth := g.Group("/")
	auth.Use(middleware.Protect(m.Auth))
	auth.Use(middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/me", m.Handler.Me)
		auth.PUT("/updatedetails", m.Handler.UpdateDetails)
		auth.PUT("/updatepassword", m.Handler.UpdatePassword)
	}
}
