package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/bizplan/internal/models"
)

// CreateContact сохраняет обращение. name и email должны быть уже зашифрованы.
func (s *Storage) CreateContact(ctx context.Context, name, email, message string) (string, error) {
	const op = "storage.CreateContact"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id string
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO contact_messages (name, email, message) VALUES ($1, $2, $3)
		RETURNING id`, name, email, message).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListContacts возвращает обращения, новые первыми. Поля не расшифровываются.
func (s *Storage) ListContacts(ctx context.Context, limit, offset int) ([]models.ContactMessage, error) {
	const op = "storage.ListContacts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, email, message, read, anonymized_at, created_at
		FROM contact_messages
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.ContactMessage, 0)
	for rows.Next() {
		var c models.ContactMessage
		var anonymizedAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Message, &c.Read, &anonymizedAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if anonymizedAt.Valid {
			c.AnonymizedAt = &anonymizedAt.Time
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkContactRead помечает обращение прочитанным.
func (s *Storage) MarkContactRead(ctx context.Context, id string) error {
	const op = "storage.MarkContactRead"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE contact_messages SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, res)
}

// AnonymizeContacts заменяет имя и email у не более чем limit обращений старше before.
// Возвращает число обработанных записей.
func (s *Storage) AnonymizeContacts(ctx context.Context, before time.Time, limit int, name, email string) (int64, error) {
	const op = "storage.AnonymizeContacts"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE contact_messages
		SET name = $1, email = $2, anonymized_at = NOW()
		WHERE id IN (
			SELECT id FROM contact_messages
			WHERE anonymized_at IS NULL AND created_at < $3
			ORDER BY created_at
			LIMIT $4
		)`, name, email, before, limit)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
