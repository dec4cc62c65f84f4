package postgres

import (
	"context"
	"database/sql"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
)

const courseColumnList = `id::text, title, description, weeks, tuition, minimum_skill,
	scholarship_available, bootcamp_id::text, user_id::text, created_at`

type CourseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *entity.Course) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO courses (title, description, weeks, tuition, minimum_skill,
			scholarship_available, bootcamp_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text, created_at
	`, c.Title, c.Description, c.Weeks, c.Tuition, string(c.MinimumSkill),
		c.ScholarshipAvailable, c.BootcampID, c.UserID)

	return row.Scan(&c.ID, &c.CreatedAt)
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	if err := checkID("Course", id); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+courseColumnList+` FROM courses WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	list, err := scanCourses(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, notFoundOr(sql.ErrNoRows, "No course with the id of %s", id)
	}
	return &list[0], nil
}

func (r *CourseRepository) Update(ctx context.Context, c *entity.Course) error {
	if err := checkID("Course", c.ID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE courses
		SET title = $1, description = $2, weeks = $3, tuition = $4, minimum_skill = $5,
		    scholarship_available = $6
		WHERE id = $7
	`, c.Title, c.Description, c.Weeks, c.Tuition, string(c.MinimumSkill), c.ScholarshipAvailable, c.ID)
	if err != nil {
		return err
	}
	return expectAffected(res, "No course with the id of %s", c.ID)
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if err := checkID("Course", id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "No course with the id of %s", id)
}

func (r *CourseRepository) ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Course, error) {
	if err := checkID("Bootcamp", bootcampID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+courseColumnList+`
		FROM courses
		WHERE bootcamp_id = $1
		ORDER BY created_at
	`, bootcampID)
	if err != nil {
		return nil, err
	}
	return scanCourses(rows)
}

func (r *CourseRepository) AverageTuition(ctx context.Context, bootcampID string) (float64, bool, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `SELECT AVG(tuition) FROM courses WHERE bootcamp_id = $1`, bootcampID).Scan(&avg)
	if err != nil {
		return 0, false, err
	}
	return avg.Float64, avg.Valid, nil
}

func scanCourses(rows *sql.Rows) ([]entity.Course, error) {
	defer rows.Close()

	out := []entity.Course{}
	for rows.Next() {
		var (
			c     entity.Course
			skill string
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Weeks, &c.Tuition, &skill,
			&c.ScholarshipAvailable, &c.BootcampID, &c.UserID, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.MinimumSkill = entity.Skill(skill)
		out = append(out, c)
	}
	return out, rows.Err()
}

var _ repository.CourseRepository = (*CourseRepository)(nil)
