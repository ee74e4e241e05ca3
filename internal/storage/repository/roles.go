package repository

import (
	"context"
	"fmt"
)

// HasRole проверяет наличие роли role у пользователя.
func (s *Storage) HasRole(ctx context.Context, userID, role string) (bool, error) {
	const op = "storage.HasRole"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`,
		userID, role).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// GrantRole выдаёт роль. Повторная выдача не ошибка.
func (s *Storage) GrantRole(ctx context.Context, userID, role string) error {
	const op = "storage.GrantRole"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING`, userID, role)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RevokeRole отзывает роль. Отсутствие роли не ошибка.
func (s *Storage) RevokeRole(ctx context.Context, userID, role string) error {
	const op = "storage.RevokeRole"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, userID, role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
