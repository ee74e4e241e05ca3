package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/bizplan/internal/models"
)

// CreateUser создаёт учётную запись, профиль и роль user. Возвращает ID.
func (s *Storage) CreateUser(ctx context.Context, email, passwordHash, fullName string) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id`,
			email, passwordHash).Scan(&id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO profiles (id, email, full_name) VALUES ($1, $2, $3)`,
			id, email, fullName); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, id, models.RoleUser)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	return s.getUser(ctx, op, `WHERE email = $1`, email)
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.GetUser"
	return s.getUser(ctx, op, `WHERE id = $1`, userID)
}

func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, password_hash, banned, banned_at, created_at FROM users ` + where
	u := &models.User{}
	var bannedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Banned, &bannedAt, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if bannedAt.Valid {
		u.BannedAt = &bannedAt.Time
	}
	return u, nil
}

// SetBanned выставляет или снимает блокировку учётной записи.
func (s *Storage) SetBanned(ctx context.Context, userID string, banned bool) error {
	const op = "storage.SetBanned"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE users
		SET banned = $2,
		    banned_at = CASE WHEN $2 THEN NOW() ELSE NULL END
		WHERE id = $1`, userID, banned)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, res)
}

// DeleteUserCascade удаляет пользователя и все его данные одной транзакцией:
// планы, роли, баланс, профиль и учётную запись. В истории платежей user_id обнуляется.
func (s *Storage) DeleteUserCascade(ctx context.Context, userID string) error {
	const op = "storage.DeleteUserCascade"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		steps := []string{
			`DELETE FROM business_plans WHERE user_id = $1`,
			`DELETE FROM user_roles WHERE user_id = $1`,
			`DELETE FROM user_credits WHERE user_id = $1`,
			`DELETE FROM profiles WHERE id = $1`,
		}
		for _, q := range steps {
			if _, err := tx.ExecContext(ctx, q, userID); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return err
		}
		return expectOneRow(op, res)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListUsers возвращает пользователей с признаком администратора, балансом и числом проектов.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]models.UserSummary, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT u.id, u.email, COALESCE(p.full_name, ''),
		       EXISTS (SELECT 1 FROM user_roles r WHERE r.user_id = u.id AND r.role = 'admin'),
		       u.banned, u.banned_at,
		       COALESCE(c.credits, 0),
		       (SELECT COUNT(*) FROM business_plans b WHERE b.user_id = u.id),
		       u.created_at
		FROM users u
		LEFT JOIN profiles p ON p.id = u.id
		LEFT JOIN user_credits c ON c.user_id = u.id
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.UserSummary, 0)
	for rows.Next() {
		var u models.UserSummary
		var bannedAt sql.NullTime
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.IsAdmin, &u.Banned, &bannedAt,
			&u.Credits, &u.ProjectCount, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if bannedAt.Valid {
			u.BannedAt = &bannedAt.Time
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func expectOneRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
