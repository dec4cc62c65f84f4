package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	app "github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
)

type CourseService interface {
	ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Course, error)
	Create(ctx context.Context, user *entity.User, bootcampID string, in app.CourseInput) (*entity.Course, error)
	Update(ctx context.Context, user *entity.User, id string, in app.CourseInput) (*entity.Course, error)
	Delete(ctx context.Context, user *entity.User, id string) error
	Owned(ctx context.Context, user *entity.User, id, action string) (*entity.Course, error)
}

type CourseHandler struct {
	Svc    CourseService
	Finder DocumentFinder
}

func NewCourseHandler(svc CourseService, finder DocumentFinder) *CourseHandler {
	return &CourseHandler{Svc: svc, Finder: finder}
}

type createCourseRequest struct {
	Title                string       `json:"title" binding:"required"`
	Description          string       `json:"description" binding:"required"`
	Weeks                string       `json:"weeks" binding:"required"`
	Tuition              *float64     `json:"tuition" binding:"required,gte=0"`
	MinimumSkill         entity.Skill `json:"minimumSkill" binding:"required,skill"`
	ScholarshipAvailable *bool        `json:"scholarshipAvailable"`
}

type updateCourseRequest struct {
	Title                *string       `json:"title" binding:"omitempty,min=1"`
	Description          *string       `json:"description" binding:"omitempty,min=1"`
	Weeks                *string       `json:"weeks" binding:"omitempty,min=1"`
	Tuition              *float64      `json:"tuition" binding:"omitempty,gte=0"`
	MinimumSkill         *entity.Skill `json:"minimumSkill" binding:"omitempty,skill"`
	ScholarshipAvailable *bool         `json:"scholarshipAvailable"`
}

// GET /courses
func (h *CourseHandler) List(c *gin.Context) {
	sendResults(c)
}

// GET /bootcamps/:id/courses
func (h *CourseHandler) ListByBootcamp(c *gin.Context) {
	list, err := h.Svc.ListByBootcamp(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, list)
}

// GET /courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	sendDocument(c, h.Finder, c.Param("id"), postgres.PopulateBootcamp)
}

// POST /bootcamps/:id/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	course, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), app.CourseInput{
		Title:                &req.Title,
		Description:          &req.Description,
		Weeks:                &req.Weeks,
		Tuition:              req.Tuition,
		MinimumSkill:         &req.MinimumSkill,
		ScholarshipAvailable: req.ScholarshipAvailable,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, course)
}

// PUT /courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	ctx, user := c.Request.Context(), middleware.CurrentUser(c)
	if _, err := h.Svc.Owned(ctx, user, c.Param("id"), "update"); err != nil {
		_ = c.Error(err)
		return
	}
	var req updateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	course, err := h.Svc.Update(ctx, user, c.Param("id"), app.CourseInput(req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, course)
}

// DELETE /courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
