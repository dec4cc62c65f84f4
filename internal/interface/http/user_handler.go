package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	app "github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
)

type UserService interface {
	Create(ctx context.Context, in app.UserInput) (*entity.User, error)
	Get(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, id string, in app.UserInput) (*entity.User, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler serves the admin user management endpoints.
type UserHandler struct {
	Svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{Svc: svc}
}

type createUserRequest struct {
	Name     string      `json:"name" binding:"required,max=50"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,pwd"`
	Role     entity.Role `json:"role" binding:"omitempty,role"`
}

type updateUserRequest struct {
	Name     string      `json:"name" binding:"omitempty,max=50"`
	Email    string      `json:"email" binding:"omitempty,email"`
	Password string      `json:"password" binding:"omitempty,pwd"`
	Role     entity.Role `json:"role" binding:"omitempty,role"`
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	sendResults(c)
}

// GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), app.UserInput(req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, u)
}

// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), c.Param("id"), app.UserInput(req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
