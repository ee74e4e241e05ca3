package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/bizplan/internal/models"
)

const paymentColumns = `id, reference, pack_type, amount, currency, credits_added, status, user_id, email, created_at`

// FindPaymentByReference ищет платёж по ссылке шлюза.
func (s *Storage) FindPaymentByReference(ctx context.Context, reference string) (*models.PaymentRecord, error) {
	const op = "storage.FindPaymentByReference"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payment_history WHERE reference = $1`, reference)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ApplyPayment в одной транзакции записывает платёж и начисляет кредиты.
// Если платёж с такой ссылкой уже есть, ничего не меняет и возвращает applied=false.
func (s *Storage) ApplyPayment(ctx context.Context, rec models.PaymentRecord) (applied bool, balance int, err error) {
	const op = "storage.ApplyPayment"
	select {
	case <-ctx.Done():
		return false, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if rec.UserID == nil || *rec.UserID == "" {
		return false, 0, fmt.Errorf("%s: payment without user", op)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO payment_history
				(reference, pack_type, amount, currency, credits_added, status, user_id, email)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (reference) DO NOTHING
			RETURNING id`,
			rec.Reference, rec.PackType, rec.Amount, rec.Currency, rec.CreditsAdded,
			rec.Status, *rec.UserID, rec.Email).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		applied = true
		return tx.QueryRowContext(ctx, upsertCredits, *rec.UserID, rec.CreditsAdded).Scan(&balance)
	})
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	return applied, balance, nil
}

// ListPaymentsByUser возвращает платежи пользователя, новые первыми.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userID string, limit int) ([]models.PaymentRecord, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+paymentColumns+`
		FROM payment_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.PaymentRecord, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(row scanner) (*models.PaymentRecord, error) {
	var p models.PaymentRecord
	var userID sql.NullString
	if err := row.Scan(&p.ID, &p.Reference, &p.PackType, &p.Amount, &p.Currency,
		&p.CreditsAdded, &p.Status, &userID, &p.Email, &p.CreatedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		p.UserID = &userID.String
	}
	return &p, nil
}
