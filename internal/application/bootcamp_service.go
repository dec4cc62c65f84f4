package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	repo "github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/geocoder"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

type BootcampService struct {
	Bootcamps repo.BootcampRepository
	Geocoder  Geocoder
	Photos    PhotoStore
	Search    SearchIndex
	MaxUpload int64
	Logger    logrus.FieldLogger
}

func NewBootcampService(bootcamps repo.BootcampRepository, geo Geocoder, photos PhotoStore, search SearchIndex, maxUpload int64, logger logrus.FieldLogger) *BootcampService {
	return &BootcampService{
		Bootcamps: bootcamps,
		Geocoder:  geo,
		Photos:    photos,
		Search:    search,
		MaxUpload: maxUpload,
		Logger:    logger,
	}
}

// BootcampInput carries the writable fields; nil fields are left untouched.
type BootcampInput struct {
	Name          *string
	Description   *string
	Website       *string
	Phone         *string
	Email         *string
	Address       *string
	Housing       *bool
	JobAssistance *bool
	JobGuarantee  *bool
	AcceptGi      *bool
}

func (in BootcampInput) apply(b *entity.Bootcamp) {
	setString(&b.Name, in.Name)
	setString(&b.Description, in.Description)
	setString(&b.Website, in.Website)
	setString(&b.Phone, in.Phone)
	setString(&b.Email, in.Email)
	setString(&b.Address, in.Address)
	setBool(&b.Housing, in.Housing)
	setBool(&b.JobAssistance, in.JobAssistance)
	setBool(&b.JobGuarantee, in.JobGuarantee)
	setBool(&b.AcceptGi, in.AcceptGi)
}

// Create publishes a bootcamp owned by user. Publishers get one bootcamp;
// admins are not limited.
func (s *BootcampService) Create(ctx context.Context, user *entity.User, in BootcampInput) (*entity.Bootcamp, error) {
	if !user.IsAdmin() {
		has, err := s.Bootcamps.HasBootcamp(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if has {
			return nil, apperror.Validation("The user with ID %s has already published a bootcamp", user.ID)
		}
	}

	b := &entity.Bootcamp{UserID: user.ID}
	in.apply(b)
	b.Slug = helpers.Slugify(b.Name)

	loc, err := s.locate(ctx, b.Address)
	if err != nil {
		return nil, err
	}
	b.Location = &loc

	if err := s.Bootcamps.Create(ctx, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

// Owned loads a bootcamp that user may modify.
func (s *BootcampService) Owned(ctx context.Context, user *entity.User, id, action string) (*entity.Bootcamp, error) {
	b, err := s.Bootcamps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Owns(b.UserID) && !user.IsAdmin() {
		return nil, apperror.NotOwner("User %s is not authorized to %s this bootcamp", user.ID, action)
	}
	return b, nil
}

func (s *BootcampService) Update(ctx context.Context, user *entity.User, id string, in BootcampInput) (*entity.Bootcamp, error) {
	b, err := s.Owned(ctx, user, id, "update")
	if err != nil {
		return nil, err
	}
	name, address := b.Name, b.Address
	in.apply(b)

	if b.Name != name {
		b.Slug = helpers.Slugify(b.Name)
	}
	if b.Address != address {
		loc, err := s.locate(ctx, b.Address)
		if err != nil {
			return nil, err
		}
		b.Location = &loc
	}

	if err := s.Bootcamps.Update(ctx, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

// Delete removes the bootcamp together with its courses and reviews.
func (s *BootcampService) Delete(ctx context.Context, user *entity.User, id string) error {
	b, err := s.Owned(ctx, user, id, "delete")
	if err != nil {
		return err
	}
	if err := s.Bootcamps.Delete(ctx, b.ID); err != nil {
		return err
	}
	if s.Search != nil {
		if err := s.Search.Delete(ctx, b.ID); err != nil {
			helpers.LogWarn(s.Logger, "search delete failed", err, logrus.Fields{"bootcamp_id": b.ID})
		}
	}
	return nil
}

// WithinRadius lists bootcamps within distance miles of the zipcode.
func (s *BootcampService) WithinRadius(ctx context.Context, zipcode string, distance float64) ([]entity.Bootcamp, error) {
	if distance < 0 {
		return nil, apperror.Validation("Distance must not be negative")
	}
	loc, err := s.locate(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	return s.Bootcamps.WithinRadius(ctx, loc.Latitude(), loc.Longitude(), distance)
}

type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadPhoto stores the image as photo_<id><ext> and returns that name.
func (s *BootcampService) UploadPhoto(ctx context.Context, user *entity.User, id string, p PhotoUpload) (string, error) {
	b, err := s.Owned(ctx, user, id, "update")
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(p.ContentType, "image") {
		return "", apperror.Validation("Please upload an image file")
	}
	if p.Size > s.MaxUpload {
		return "", apperror.Validation("Please upload an image less than %d", s.MaxUpload)
	}

	name := fmt.Sprintf("photo_%s%s", b.ID, strings.ToLower(filepath.Ext(p.Filename)))
	url, err := s.Photos.Put(ctx, name, p.ContentType, p.Body)
	if err != nil {
		return "", apperror.Upstream(err, "Problem with file upload")
	}
	if err := s.Bootcamps.SetPhoto(ctx, b.ID, name); err != nil {
		return "", err
	}
	helpers.LogInfo(s.Logger, "bootcamp photo uploaded", logrus.Fields{"bootcamp_id": b.ID, "url": url})
	return name, nil
}

// SearchText runs a full-text query against the search index.
func (s *BootcampService) SearchText(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Search == nil || strings.TrimSpace(q) == "" {
		return []map[string]any{}, nil
	}
	hits, err := s.Search.Search(ctx, q, size)
	if err != nil {
		return nil, apperror.Upstream(err, "Search is unavailable")
	}
	return hits, nil
}

func (s *BootcampService) locate(ctx context.Context, address string) (entity.Location, error) {
	if strings.TrimSpace(address) == "" {
		return entity.Location{}, apperror.Validation("Please add an address")
	}
	loc, err := s.Geocoder.Geocode(ctx, address)
	if errors.Is(err, geocoder.ErrNoMatch) {
		return entity.Location{}, apperror.Validation("Could not geocode address %s", address)
	}
	if err != nil {
		return entity.Location{}, apperror.Upstream(err, "Geocoding failed")
	}
	return loc, nil
}

func (s *BootcampService) index(ctx context.Context, b *entity.Bootcamp) {
	if s.Search == nil {
		return
	}
	if err := s.Search.Index(ctx, b); err != nil {
		helpers.LogWarn(s.Logger, "search index failed", err, logrus.Fields{"bootcamp_id": b.ID})
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
