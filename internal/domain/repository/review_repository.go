package repository

import (
	"context"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
)

type ReviewRepository interface {
	ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Review, error)
}
