// Package auth регистрация, вход и проверка JWT. Заблокированные пользователи
// не могут войти, а их токены перестают приниматься.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/bizplan/internal/lib/jwt"
	"github.com/magabrotheeeer/bizplan/internal/lib/password"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/storage/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBanned             = errors.New("account is banned")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// UserRepository хранилище учётных записей.
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GrantRole(ctx context.Context, userID, role string) error
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users      UserRepository
	jwtMaker   jwt.Maker
	adminEmail string
	log        *slog.Logger
}

// New создает сервис. Пользователь, зарегистрированный с адресом adminEmail,
// сразу получает роль администратора.
func New(users UserRepository, jwtMaker jwt.Maker, adminEmail string, log *slog.Logger) *Service {
	return &Service{
		users:      users,
		jwtMaker:   jwtMaker,
		adminEmail: normalizeEmail(adminEmail),
		log:        log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает пользователя с профилем и ролью user.
func (s *Service) Register(ctx context.Context, email, rawPassword, fullName string) (string, error) {
	const op = "services.auth.Register"

	email = normalizeEmail(email)
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.users.CreateUser(ctx, email, hashed, strings.TrimSpace(fullName))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if s.adminEmail != "" && email == s.adminEmail {
		if err := s.users.GrantRole(ctx, id, models.RoleAdmin); err != nil {
			return "", fmt.Errorf("%s: grant admin: %w", op, err)
		}
		s.log.Info("bootstrap admin registered", sl.UserID(id))
	}
	return id, nil
}

// Login проверяет пароль и выдаёт JWT.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", ErrInvalidCredentials
	}
	if user.Banned {
		return "", ErrBanned
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ValidateToken проверяет JWT и текущее состояние учётной записи.
func (s *Service) ValidateToken(ctx context.Context, token string) (*models.Principal, error) {
	const op = "services.auth.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.Banned {
		return nil, ErrBanned
	}
	return &models.Principal{UserID: user.ID, Email: user.Email}, nil
}
