package repository

import (
	"context"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
)

type CourseRepository interface {
	Create(ctx context.Context, c *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	Update(ctx context.Context, c *entity.Course) error
	Delete(ctx context.Context, id string) error
	ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Course, error)
	// AverageTuition returns the mean tuition of the bootcamp's courses and
	// false when it has none.
	AverageTuition(ctx context.Context, bootcampID string) (float64, bool, error)
}
