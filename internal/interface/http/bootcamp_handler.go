package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	app "github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
)

const (
	defaultSearchSize = 10
	// multipartOverhead covers boundaries and part headers around the file.
	multipartOverhead = 64 << 10
)

type BootcampService interface {
	Create(ctx context.Context, user *entity.User, in app.BootcampInput) (*entity.Bootcamp, error)
	Update(ctx context.Context, user *entity.User, id string, in app.BootcampInput) (*entity.Bootcamp, error)
	Delete(ctx context.Context, user *entity.User, id string) error
	Owned(ctx context.Context, user *entity.User, id, action string) (*entity.Bootcamp, error)
	WithinRadius(ctx context.Context, zipcode string, distance float64) ([]entity.Bootcamp, error)
	UploadPhoto(ctx context.Context, user *entity.User, id string, p app.PhotoUpload) (string, error)
	SearchText(ctx context.Context, q string, size int) ([]map[string]any, error)
}

type BootcampHandler struct {
	Svc       BootcampService
	Finder    DocumentFinder
	MaxUpload int64
}

func NewBootcampHandler(svc BootcampService, finder DocumentFinder, maxUpload int64) *BootcampHandler {
	return &BootcampHandler{Svc: svc, Finder: finder, MaxUpload: maxUpload}
}

type createBootcampRequest struct {
	Name          string `json:"name" binding:"required,max=50"`
	Description   string `json:"description" binding:"required,max=500"`
	Website       string `json:"website" binding:"omitempty,url"`
	Phone         string `json:"phone" binding:"omitempty,max=20"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address" binding:"required"`
	Housing       *bool  `json:"housing"`
	JobAssistance *bool  `json:"jobAssistance"`
	JobGuarantee  *bool  `json:"jobGuarantee"`
	AcceptGi      *bool  `json:"acceptGi"`
}

type updateBootcampRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=50"`
	Description   *string `json:"description" binding:"omitempty,min=1,max=500"`
	Website       *string `json:"website" binding:"omitempty,url"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Address       *string `json:"address" binding:"omitempty,min=1"`
	Housing       *bool   `json:"housing"`
	JobAssistance *bool   `json:"jobAssistance"`
	JobGuarantee  *bool   `json:"jobGuarantee"`
	AcceptGi      *bool   `json:"acceptGi"`
}

// GET /bootcamps
func (h *BootcampHandler) List(c *gin.Context) {
	sendResults(c)
}

// GET /bootcamps/:id
func (h *BootcampHandler) Get(c *gin.Context) {
	sendDocument(c, h.Finder, c.Param("id"), postgres.PopulateCourses)
}

// POST /bootcamps
func (h *BootcampHandler) Create(c *gin.Context) {
	var req createBootcampRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), app.BootcampInput{
		Name:          &req.Name,
		Description:   &req.Description,
		Website:       &req.Website,
		Phone:         &req.Phone,
		Email:         &req.Email,
		Address:       &req.Address,
		Housing:       req.Housing,
		JobAssistance: req.JobAssistance,
		JobGuarantee:  req.JobGuarantee,
		AcceptGi:      req.AcceptGi,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

// PUT /bootcamps/:id
func (h *BootcampHandler) Update(c *gin.Context) {
	ctx, user := c.Request.Context(), middleware.CurrentUser(c)
	// A non-owner is refused before the body is looked at.
	if _, err := h.Svc.Owned(ctx, user, c.Param("id"), "update"); err != nil {
		_ = c.Error(err)
		return
	}
	var req updateBootcampRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	b, err := h.Svc.Update(ctx, user, c.Param("id"), app.BootcampInput(req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// DELETE /bootcamps/:id
func (h *BootcampHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// GET /bootcamps/radius/:zipcode/:distance
func (h *BootcampHandler) Radius(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		_ = c.Error(apperror.Validation("Distance must be a number"))
		return
	}
	list, err := h.Svc.WithinRadius(c.Request.Context(), c.Param("zipcode"), distance)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, list)
}

// PUT /bootcamps/:id/photos
func (h *BootcampHandler) Photo(c *gin.Context) {
	ctx, user := c.Request.Context(), middleware.CurrentUser(c)
	if _, err := h.Svc.Owned(ctx, user, c.Param("id"), "update"); err != nil {
		_ = c.Error(err)
		return
	}
	if h.MaxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUpload+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(apperror.Validation("Please upload an image less than %d", h.MaxUpload))
			return
		}
		_ = c.Error(apperror.Validation("Please upload a file"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		_ = c.Error(apperror.Upstream(err, "Problem with file upload"))
		return
	}
	defer f.Close()

	name, err := h.Svc.UploadPhoto(ctx, user, c.Param("id"), app.PhotoUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, name)
}

// GET /bootcamps/search?q=&limit=
func (h *BootcampHandler) Search(c *gin.Context) {
	size, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSearchSize)))
	if err != nil || size < 1 {
		size = defaultSearchSize
	}
	hits, err := h.Svc.SearchText(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, hits)
}
