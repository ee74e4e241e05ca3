// Package profile профиль пользователя: имя и аватар.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/storage/repository"
)

const maxFullName = 100

var (
	ErrNotFound          = errors.New("Profile not found")
	ErrInvalidName       = errors.New("full_name must be less than 100 characters")
	ErrAvatarsDisabled   = errors.New("Avatar upload is not available")
	ErrAvatarTooLarge    = errors.New("Avatar must be smaller than 2 MB")
	ErrAvatarUnsupported = errors.New("Avatar must be a PNG, JPEG or WebP image")
)

var avatarTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

// Repository хранилище профилей.
type Repository interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateFullName(ctx context.Context, userID, fullName string) error
	SetAvatarURL(ctx context.Context, userID, url string) error
}

// ObjectStore хранилище файлов аватаров.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Service сервис профилей.
type Service struct {
	repo    Repository
	store   ObjectStore
	maxSize int64
	log     *slog.Logger
}

// New создаёт сервис. store может быть nil, если хранилище аватаров не настроено.
func New(repo Repository, store ObjectStore, maxSize int64, log *slog.Logger) *Service {
	return &Service{repo: repo, store: store, maxSize: maxSize, log: log}
}

// Get профиль пользователя.
func (s *Service) Get(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "services.profile.Get"
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdateFullName меняет отображаемое имя и возвращает обновлённый профиль.
func (s *Service) UpdateFullName(ctx context.Context, userID, fullName string) (*models.Profile, error) {
	const op = "services.profile.UpdateFullName"

	fullName = strings.TrimSpace(fullName)
	if utf8.RuneCountInString(fullName) > maxFullName {
		return nil, ErrInvalidName
	}
	if err := s.repo.UpdateFullName(ctx, userID, fullName); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.Get(ctx, userID)
}

// UploadAvatar проверяет размер и тип изображения, загружает его и сохраняет URL.
// Тип определяется по содержимому, а не по заголовку клиента.
func (s *Service) UploadAvatar(ctx context.Context, userID string, data []byte) (string, error) {
	const op = "services.profile.UploadAvatar"

	if s.store == nil {
		return "", ErrAvatarsDisabled
	}
	if int64(len(data)) > s.maxSize {
		return "", ErrAvatarTooLarge
	}
	contentType := http.DetectContentType(data)
	ext, ok := avatarTypes[contentType]
	if !ok {
		return "", ErrAvatarUnsupported
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", userID, uuid.NewString(), ext)
	url, err := s.store.Put(ctx, key, contentType, data)
	if err != nil {
		s.log.Error("failed to upload avatar", sl.UserID(userID), sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetAvatarURL(ctx, userID, url); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}
