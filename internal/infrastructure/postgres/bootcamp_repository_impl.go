package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
)

// EarthRadiusMiles is the sphere radius used for radius searches.
const EarthRadiusMiles = 3963.0

const bootcampColumns = `id::text, name, slug, description, website, phone, email, address,
	location::text, housing, job_assistance, job_guarantee, accept_gi, photo, average_cost,
	user_id::text, created_at`

type BootcampRepository struct {
	db *sql.DB
}

func NewBootcampRepository(db *sql.DB) *BootcampRepository {
	return &BootcampRepository{db: db}
}

func (r *BootcampRepository) Create(ctx context.Context, b *entity.Bootcamp) error {
	loc, lat, lng, err := locationArgs(b.Location)
	if err != nil {
		return err
	}
	if b.Photo == "" {
		b.Photo = entity.DefaultPhoto
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO bootcamps (name, slug, description, website, phone, email, address,
			location, latitude, longitude, housing, job_assistance, job_guarantee, accept_gi,
			photo, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id::text, created_at
	`, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email, b.Address,
		loc, lat, lng, b.Housing, b.JobAssistance, b.JobGuarantee, b.AcceptGi,
		b.Photo, b.UserID)

	return row.Scan(&b.ID, &b.CreatedAt)
}

func (r *BootcampRepository) GetByID(ctx context.Context, id string) (*entity.Bootcamp, error) {
	if err := checkID("Bootcamp", id); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+bootcampColumns+` FROM bootcamps WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	list, err := scanBootcamps(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, notFoundOr(sql.ErrNoRows, "Bootcamp not found with id of %s", id)
	}
	return &list[0], nil
}

func (r *BootcampRepository) Update(ctx context.Context, b *entity.Bootcamp) error {
	if err := checkID("Bootcamp", b.ID); err != nil {
		return err
	}
	loc, lat, lng, err := locationArgs(b.Location)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE bootcamps
		SET name = $1, slug = $2, description = $3, website = $4, phone = $5, email = $6,
		    address = $7, location = $8, latitude = $9, longitude = $10, housing = $11,
		    job_assistance = $12, job_guarantee = $13, accept_gi = $14
		WHERE id = $15
	`, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email,
		b.Address, loc, lat, lng, b.Housing,
		b.JobAssistance, b.JobGuarantee, b.AcceptGi, b.ID)
	if err != nil {
		return err
	}
	return expectAffected(res, "Bootcamp not found with id of %s", b.ID)
}

// Delete removes the bootcamp; its courses and reviews go with it through
// the foreign-key cascade.
func (r *BootcampRepository) Delete(ctx context.Context, id string) error {
	if err := checkID("Bootcamp", id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM bootcamps WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "Bootcamp not found with id of %s", id)
}

func (r *BootcampRepository) HasBootcamp(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM bootcamps WHERE user_id = $1)`, userID).Scan(&exists)
	return exists, err
}

// WithinRadius uses the haversine great-circle distance.
func (r *BootcampRepository) WithinRadius(ctx context.Context, lat, lng, radiusMiles float64) ([]entity.Bootcamp, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bootcampColumns+`
		FROM bootcamps
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		  AND $4 * 2 * ASIN(SQRT(
		        POWER(SIN(RADIANS(latitude - $1) / 2), 2) +
		        COS(RADIANS($1)) * COS(RADIANS(latitude)) *
		        POWER(SIN(RADIANS(longitude - $2) / 2), 2)
		      )) <= $3
		ORDER BY created_at DESC
	`, lat, lng, radiusMiles, EarthRadiusMiles)
	if err != nil {
		return nil, err
	}
	return scanBootcamps(rows)
}

func (r *BootcampRepository) SetAverageCost(ctx context.Context, id string, cost *float64) error {
	if err := checkID("Bootcamp", id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE bootcamps SET average_cost = $1 WHERE id = $2`, cost, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "Bootcamp not found with id of %s", id)
}

func (r *BootcampRepository) SetPhoto(ctx context.Context, id, photo string) error {
	if err := checkID("Bootcamp", id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE bootcamps SET photo = $1 WHERE id = $2`, photo, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "Bootcamp not found with id of %s", id)
}

func locationArgs(loc *entity.Location) (raw any, lat, lng any, err error) {
	if loc == nil || len(loc.Coordinates) < 2 {
		return nil, nil, nil, nil
	}
	b, err := json.Marshal(loc)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode location: %w", err)
	}
	return string(b), loc.Latitude(), loc.Longitude(), nil
}

func scanBootcamps(rows *sql.Rows) ([]entity.Bootcamp, error) {
	defer rows.Close()

	out := []entity.Bootcamp{}
	for rows.Next() {
		var (
			b    entity.Bootcamp
			loc  sql.NullString
			cost sql.NullFloat64
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.Website, &b.Phone,
			&b.Email, &b.Address, &loc, &b.Housing, &b.JobAssistance, &b.JobGuarantee,
			&b.AcceptGi, &b.Photo, &cost, &b.UserID, &b.CreatedAt); err != nil {
			return nil, err
		}
		if loc.Valid {
			var l entity.Location
			if err := json.Unmarshal([]byte(loc.String), &l); err != nil {
				return nil, fmt.Errorf("decode location of bootcamp %s: %w", b.ID, err)
			}
			b.Location = &l
		}
		if cost.Valid {
			c := cost.Float64
			b.AverageCost = &c
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

var _ repository.BootcampRepository = (*BootcampRepository)(nil)
