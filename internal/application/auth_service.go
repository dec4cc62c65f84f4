package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	repo "github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
	"github.com/oksasatya/bootcamp-directory/pkg/mailer"
	"github.com/oksasatya/bootcamp-directory/pkg/mailer/templates"
)

const notAuthorized = "Not authorized to access this resource"

// AuthService covers sign-up, sign-in, session tokens and the password
// reset exchange.
type AuthService struct {
	Users    repo.UserRepository
	JWT      *helpers.JWTManager
	Mail     mailer.Sender
	AppName  string
	ResetTTL time.Duration
	Logger   logrus.FieldLogger

	now func() time.Time
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, mail mailer.Sender, appName string, resetTTL time.Duration, logger logrus.FieldLogger) *AuthService {
	return &AuthService{
		Users:    users,
		JWT:      jwt,
		Mail:     mail,
		AppName:  appName,
		ResetTTL: resetTTL,
		Logger:   logger,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

// Register creates an account. Admins are only made through the user
// management endpoints.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if in.Role == entity.RoleAdmin {
		return nil, apperror.Validation("Role %s cannot be self-assigned", in.Role)
	}
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

func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	if email == "" || password == "" {
		return nil, apperror.Validation("Please provide an email and password")
	}
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, apperror.Unauthenticated("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !helpers.MatchPassword(u.Password, password) {
		return nil, apperror.Unauthenticated("Invalid credentials")
	}
	return u, nil
}

// IssueToken signs a session token for u.
func (s *AuthService) IssueToken(u *entity.User) (string, time.Time, error) {
	return s.JWT.GenerateToken(u.ID)
}

// Identify verifies a session token and loads the user it names.
func (s *AuthService) Identify(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, apperror.Unauthenticated(notAuthorized)
	}
	claims, err := s.JWT.ParseToken(token)
	if err != nil {
		return nil, apperror.Unauthenticated(notAuthorized)
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, apperror.Unauthenticated(notAuthorized)
	}
	return u, err
}

func (s *AuthService) Me(ctx context.Context, id string) (*entity.User, error) {
	return s.Users.GetByID(ctx, id)
}

// ForgotPassword stores a hashed reset token and mails the plain one,
// appended to resetBase. The token is cleared again if the mail fails.
func (s *AuthService) ForgotPassword(ctx context.Context, email, resetBase string) error {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if apperror.Is(err, apperror.KindNotFound) {
		return apperror.NotFound("There is no user with that email")
	}
	if err != nil {
		return err
	}

	plain, hashed, err := helpers.NewResetToken()
	if err != nil {
		return err
	}
	expire := s.now().Add(s.ResetTTL)
	u.ResetPasswordToken = hashed
	u.ResetPasswordExpire = &expire
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}

	data := templates.NewEmailData(s.AppName, u.Name, u.Email,
		templates.WithResetURL(resetBase+plain),
		templates.WithExpiresAt(expire),
	)
	subject, text, html, err := templates.Render(templates.ResetPassword, data)
	if err == nil {
		err = s.Mail.Send(ctx, mailer.Message{To: u.Email, Subject: subject, Text: text, HTML: html})
	}
	if err != nil {
		helpers.LogError(s.Logger, "reset password email failed", err, logrus.Fields{"user_id": u.ID})
		u.ResetPasswordToken = ""
		u.ResetPasswordExpire = nil
		if uErr := s.Users.Update(ctx, u); uErr != nil {
			helpers.LogError(s.Logger, "clear reset token failed", uErr, logrus.Fields{"user_id": u.ID})
		}
		return apperror.Upstream(err, "Email could not be sent")
	}
	return nil
}

// ResetPassword exchanges a plain reset token for a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (*entity.User, error) {
	u, err := s.Users.GetByResetToken(ctx, helpers.HashResetToken(token), s.now())
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, apperror.Validation("Invalid token")
	}
	if err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.Password = hash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type DetailsInput struct {
	Name  string
	Email string
}

// UpdateDetails changes name and email; empty fields are left as they are.
func (s *AuthService) UpdateDetails(ctx context.Context, id string, in DetailsInput) (*entity.User, error) {
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
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, id, current, next string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !helpers.MatchPassword(u.Password, current) {
		return nil, apperror.Unauthenticated("Password is incorrect")
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return nil, err
	}
	u.Password = hash
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
