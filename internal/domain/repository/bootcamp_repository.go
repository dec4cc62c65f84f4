package repository

import (
	"context"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
)

type BootcampRepository interface {
	Create(ctx context.Context, b *entity.Bootcamp) error
	GetByID(ctx context.Context, id string) (*entity.Bootcamp, error)
	Update(ctx context.Context, b *entity.Bootcamp) error
	Delete(ctx context.Context, id string) error
	// HasBootcamp reports whether userID already published a bootcamp.
	HasBootcamp(ctx context.Context, userID string) (bool, error)
	// WithinRadius lists bootcamps whose location lies within radiusMiles of
	// the given point.
	WithinRadius(ctx context.Context, lat, lng, radiusMiles float64) ([]entity.Bootcamp, error)
	// SetAverageCost writes the derived aggregate; nil clears it.
	SetAverageCost(ctx context.Context, id string, cost *float64) error
	SetPhoto(ctx context.Context, id, photo string) error
}
