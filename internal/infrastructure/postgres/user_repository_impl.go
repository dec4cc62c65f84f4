package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

const userColumns = `id::text, name, email, role, password, reset_password_token, reset_password_expire, created_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, role, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at
	`, u.Name, u.Email, string(u.Role), u.Password)

	return row.Scan(&u.ID, &u.CreatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := checkID("User", id); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, "User not found with id of %s", id)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, "There is no user with email %s", email)
	}
	return u, nil
}

func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE reset_password_token = $1 AND reset_password_expire > $2
	`, tokenHash, now)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, "Invalid token")
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if err := checkID("User", u.ID); err != nil {
		return err
	}
	var token sql.NullString
	if u.ResetPasswordToken != "" {
		token = sql.NullString{String: u.ResetPasswordToken, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, email = $2, role = $3, password = $4,
		    reset_password_token = $5, reset_password_expire = $6
		WHERE id = $7
	`, u.Name, u.Email, string(u.Role), u.Password, token, u.ResetPasswordExpire, u.ID)
	if err != nil {
		return err
	}
	return expectAffected(res, "User not found with id of %s", u.ID)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := checkID("User", id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "User not found with id of %s", id)
}

func scanUser(row *sql.Row) (*entity.User, error) {
	var (
		u      entity.User
		role   string
		token  sql.NullString
		expire sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Password, &token, &expire, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	u.ResetPasswordToken = token.String
	if expire.Valid {
		t := expire.Time
		u.ResetPasswordExpire = &t
	}
	return &u, nil
}

// checkID rejects ids that cannot be a primary key, so malformed ids read as
// missing resources instead of store errors.
func checkID(resource, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NotFound("%s not found with id of %s", resource, id)
	}
	return nil
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(format, args...)
	}
	return err
}

func expectAffected(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound(format, args...)
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
