package application

import (
	"context"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	repo "github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

// ReviewService is read-only.
type ReviewService struct {
	Reviews   repo.ReviewRepository
	Bootcamps repo.BootcampRepository
}

func NewReviewService(reviews repo.ReviewRepository, bootcamps repo.BootcampRepository) *ReviewService {
	return &ReviewService{Reviews: reviews, Bootcamps: bootcamps}
}

func (s *ReviewService) ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Review, error) {
	if _, err := s.Bootcamps.GetByID(ctx, bootcampID); err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("No bootcamp with the id of %s", bootcampID)
		}
		return nil, err
	}
	return s.Reviews.ListByBootcamp(ctx, bootcampID)
}
