package postgres

import (
	"context"
	"database/sql"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Review, error) {
	if err := checkID("Bootcamp", bootcampID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id::text, title, text, rating, bootcamp_id::text, user_id::text, created_at
		FROM reviews
		WHERE bootcamp_id = $1
		ORDER BY created_at DESC
	`, bootcampID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Review{}
	for rows.Next() {
		var rv entity.Review
		if err := rows.Scan(&rv.ID, &rv.Title, &rv.Text, &rv.Rating, &rv.BootcampID, &rv.UserID, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)
