package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	app "github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
)

type AuthService interface {
	Register(ctx context.Context, in app.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*entity.User, error)
	IssueToken(u *entity.User) (string, time.Time, error)
	Me(ctx context.Context, id string) (*entity.User, error)
	ForgotPassword(ctx context.Context, email, resetBase string) error
	ResetPassword(ctx context.Context, token, password string) (*entity.User, error)
	UpdateDetails(ctx context.Context, id string, in app.DetailsInput) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, current, next string) (*entity.User, error)
}

type AuthHandler struct {
	Svc       AuthService
	Cookies   *helpers.Manager
	CookieTTL time.Duration
	// BaseURL roots reset links; empty falls back to the request origin.
	BaseURL string
}

func NewAuthHandler(svc AuthService, cookies *helpers.Manager, cookieTTL time.Duration, baseURL string) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, CookieTTL: cookieTTL, BaseURL: baseURL}
}

type registerRequest struct {
	Name     string      `json:"name" binding:"required,max=50"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,pwd"`
	Role     entity.Role `json:"role" binding:"omitempty,signuprole"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

type updateDetailsRequest struct {
	Name  string `json:"name" binding:"omitempty,max=50"`
	Email string `json:"email" binding:"omitempty,email"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), app.RegisterInput{
		Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.sendToken(c, http.StatusCreated, u)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.sendToken(c, http.StatusOK, u)
}

// GET /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{})
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Svc.Me(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// POST /auth/forgotpassword
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	origin := h.BaseURL
	if origin == "" {
		origin = requestOrigin(c)
	}
	base := origin + "/api/v1/auth/resetpassword/"
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email, base); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Email sent")
}

// PUT /auth/resetpassword/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.sendToken(c, http.StatusOK, u)
}

// PUT /auth/updatedetails
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	var req updateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.Svc.UpdateDetails(c.Request.Context(), middleware.CurrentUser(c).ID, app.DetailsInput{Name: req.Name, Email: req.Email})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// PUT /auth/updatepassword
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.Svc.UpdatePassword(c.Request.Context(), middleware.CurrentUser(c).ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.sendToken(c, http.StatusOK, u)
}

// sendToken answers with a fresh session token and mirrors it in the cookie.
func (h *AuthHandler) sendToken(c *gin.Context, status int, u *entity.User) {
	token, exp, err := h.Svc.IssueToken(u)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if h.CookieTTL > 0 {
		exp = time.Now().Add(h.CookieTTL)
	}
	h.Cookies.SetToken(c, token, exp)
	response.Token(c, status, token)
}

func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + c.Request.Host
}
