package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/bizplan/internal/models"
)

// GetProfile возвращает профиль пользователя.
func (s *Storage) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var p models.Profile
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, email, full_name, avatar_url, created_at, updated_at
		FROM profiles WHERE id = $1`, userID).
		Scan(&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// UpdateFullName меняет отображаемое имя.
func (s *Storage) UpdateFullName(ctx context.Context, userID, fullName string) error {
	const op = "storage.UpdateFullName"
	return s.updateProfile(ctx, op, `full_name`, userID, fullName)
}

// SetAvatarURL сохраняет адрес аватара.
func (s *Storage) SetAvatarURL(ctx context.Context, userID, url string) error {
	const op = "storage.SetAvatarURL"
	return s.updateProfile(ctx, op, `avatar_url`, userID, url)
}

func (s *Storage) updateProfile(ctx context.Context, op, column, userID, value string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE profiles SET `+column+` = $2, updated_at = NOW() WHERE id = $1`, userID, value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, res)
}
