package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bmi-service/internal/domain/entity"
	repo "github.com/oksasatya/bmi-service/internal/domain/repository"
	"github.com/oksasatya/bmi-service/pkg/helpers"
)

type AuthService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Hasher *helpers.PasswordHasher
	Events EventPublisher
	Logger *logrus.Logger
}

func NewAuthService(repo repo.UserRepository, jwt *helpers.JWTManager, hasher *helpers.PasswordHasher, events EventPublisher, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Repo:   repo,
		JWT:    jwt,
		Hasher: hasher,
		Events: events,
		Logger: logger,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an account. Emails are compared case-sensitively.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, invalid("name")
	case strings.TrimSpace(in.Email) == "":
		return nil, invalid("email")
	case in.Password == "":
		return nil, invalid("password")
	case len(in.Password) > 72:
		return nil, ErrPasswordTooLong
	}

	existing, err := s.Repo.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Name: in.Name, Email: in.Email, Password: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metricUsersRegistered.Add(1)
	view := u.View()
	publish(ctx, s.Events, s.Logger, Event{Type: EventUserRegistered, User: &view})
	return u, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	if email == "" {
		return "", time.Time{}, missing("email")
	}
	if password == "" {
		return "", time.Time{}, missing("password")
	}

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return "", time.Time{}, fmt.Errorf("lookup user: %w", err)
		}
		metricLoginsFailed.Add(1)
		return "", time.Time{}, ErrInvalidCredentials
	}
	if !s.Hasher.Compare(u.Password, password) {
		metricLoginsFailed.Add(1)
		return "", time.Time{}, ErrInvalidCredentials
	}

	tok, exp, err := s.JWT.GenerateAccessToken(u.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// ResolveCaller maps a bearer token back to its account.
func (s *AuthService) ResolveCaller(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	u, err := s.Repo.GetByEmail(ctx, claims.Email())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}
