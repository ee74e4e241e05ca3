package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const upsertCredits = `
	INSERT INTO user_credits (user_id, credits) VALUES ($1, $2)
	ON CONFLICT (user_id) DO UPDATE
	SET credits = user_credits.credits + EXCLUDED.credits, updated_at = NOW()
	RETURNING credits`

// GetCredits возвращает баланс пользователя. Нет записи значит 0.
func (s *Storage) GetCredits(ctx context.Context, userID string) (int, error) {
	const op = "storage.GetCredits"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var credits int
	err := s.DB.QueryRowContext(ctx,
		`SELECT credits FROM user_credits WHERE user_id = $1`, userID).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return credits, nil
}

// AddCredits атомарно увеличивает баланс (создаёт запись при отсутствии). Возвращает новый баланс.
func (s *Storage) AddCredits(ctx context.Context, userID string, amount int) (int, error) {
	const op = "storage.AddCredits"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var balance int
	if err := s.DB.QueryRowContext(ctx, upsertCredits, userID, amount).Scan(&balance); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return balance, nil
}

// ReserveCredit списывает один кредит, только если баланс положительный.
// Возвращает остаток или ErrNoCredits.
func (s *Storage) ReserveCredit(ctx context.Context, userID string) (int, error) {
	const op = "storage.ReserveCredit"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var balance int
	err := s.DB.QueryRowContext(ctx, `
		UPDATE user_credits SET credits = credits - 1, updated_at = NOW()
		WHERE user_id = $1 AND credits > 0
		RETURNING credits`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", op, ErrNoCredits)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return balance, nil
}

// RefundCredit возвращает зарезервированный кредит.
func (s *Storage) RefundCredit(ctx context.Context, userID string) (int, error) {
	return s.AddCredits(ctx, userID, 1)
}
