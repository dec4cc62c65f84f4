package application

import (
	"context"
	"strings"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	repo "github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

// UserService is the admin-only account management. Listing goes through the
// generic finder.
type UserService struct {
	Users repo.UserRepository
}

func NewUserService(users repo.UserRepository) *UserService {
	return &UserService{Users: users}
}

type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:     in.Name,
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Role:     in.Role,
		Password: hash,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.Users.GetByID(ctx, id)
}

// Update applies the non-empty fields of in.
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Email != "" {
		u.Email = strings.ToLower(strings.TrimSpace(in.Email))
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	if in.Password != "" {
		if u.Password, err = helpers.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.Users.Delete(ctx, id)
}
