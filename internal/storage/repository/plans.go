package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/bizplan/internal/models"
)

const planColumns = `b.id, b.user_id, COALESCE(u.email, ''), b.project_name, b.sector, b.problem,
	b.solution, b.target_audience, b.business_model, b.resources, b.marketing_strategy,
	b.vision, b.generated_plan, b.created_at`

// SavePlan сохраняет бизнес-план и возвращает его ID.
func (s *Storage) SavePlan(ctx context.Context, plan models.BusinessPlan) (string, error) {
	const op = "storage.SavePlan"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	d := plan.BusinessData
	var id string
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO business_plans
			(user_id, project_name, sector, problem, solution, target_audience,
			 business_model, resources, marketing_strategy, vision, generated_plan)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		plan.UserID, d.ProjectName, d.Sector, d.Problem, d.Solution, d.TargetAudience,
		d.BusinessModel, d.Resources, d.MarketingStrategy, d.Vision, plan.GeneratedPlan).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetPlan возвращает план по ID.
func (s *Storage) GetPlan(ctx context.Context, id string) (*models.BusinessPlan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+planColumns+`
		FROM business_plans b LEFT JOIN users u ON u.id = b.user_id
		WHERE b.id = $1`, id)
	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPlansByUser возвращает планы пользователя, новые первыми.
func (s *Storage) ListPlansByUser(ctx context.Context, userID string, limit, offset int) ([]models.BusinessPlan, error) {
	const op = "storage.ListPlansByUser"
	return s.listPlans(ctx, op, `WHERE b.user_id = $3`, limit, offset, userID)
}

// ListPlans возвращает все планы (админка), новые первыми.
func (s *Storage) ListPlans(ctx context.Context, limit, offset int) ([]models.BusinessPlan, error) {
	const op = "storage.ListPlans"
	return s.listPlans(ctx, op, ``, limit, offset)
}

func (s *Storage) listPlans(ctx context.Context, op, where string, limit, offset int, args ...any) ([]models.BusinessPlan, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + `
		FROM business_plans b LEFT JOIN users u ON u.id = b.user_id
		` + where + `
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, append([]any{limit, offset}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.BusinessPlan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
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

// DeletePlan удаляет план по ID (админка).
func (s *Storage) DeletePlan(ctx context.Context, id string) error {
	const op = "storage.DeletePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM business_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, res)
}

// DeleteUserPlan удаляет план, только если он принадлежит userID.
func (s *Storage) DeleteUserPlan(ctx context.Context, id, userID string) error {
	const op = "storage.DeleteUserPlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM business_plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, res)
}

func scanPlan(row scanner) (*models.BusinessPlan, error) {
	var p models.BusinessPlan
	d := &p.BusinessData
	if err := row.Scan(&p.ID, &p.UserID, &p.UserEmail, &d.ProjectName, &d.Sector, &d.Problem,
		&d.Solution, &d.TargetAudience, &d.BusinessModel, &d.Resources, &d.MarketingStrategy,
		&d.Vision, &p.GeneratedPlan, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
