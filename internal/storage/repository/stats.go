package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/bizplan/internal/models"
)

// DashboardStats собирает статистику для админ-панели относительно момента now.
func (s *Storage) DashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	const op = "storage.DashboardStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	st := &models.DashboardStats{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM business_plans),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM business_plans WHERE created_at >= $1),
			(SELECT COUNT(*) FROM payment_history WHERE status = 'success'),
			(SELECT COALESCE(SUM(credits_added), 0) FROM payment_history WHERE status = 'success'),
			(SELECT COALESCE(SUM(amount), 0) FROM payment_history WHERE status = 'success'),
			(SELECT COUNT(*) FROM contact_messages WHERE NOT read)`,
		now.AddDate(0, 0, -7)).Scan(
		&st.TotalProjects, &st.TotalUsers, &st.RecentProjects,
		&st.TotalPayments, &st.CreditsSold, &st.RevenueMinor, &st.UnreadContacts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if st.LatestProjects, err = s.latestProjects(ctx, 5); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if st.Last30Days, err = s.dailyCounts(ctx, now, 30); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

func (s *Storage) latestProjects(ctx context.Context, limit int) ([]models.RecentProject, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT b.id, b.project_name, b.sector, COALESCE(u.email, ''), b.created_at
		FROM business_plans b LEFT JOIN users u ON u.id = b.user_id
		ORDER BY b.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.RecentProject, 0, limit)
	for rows.Next() {
		var p models.RecentProject
		var createdAt time.Time
		if err := rows.Scan(&p.ID, &p.ProjectName, &p.Sector, &p.UserEmail, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		result = append(result, p)
	}
	return result, rows.Err()
}

// dailyCounts возвращает ровно days точек, включая дни без активности.
func (s *Storage) dailyCounts(ctx context.Context, now time.Time, days int) ([]models.DailyCount, error) {
	start := now.UTC().Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))
	rows, err := s.DB.QueryContext(ctx, `
		SELECT (d AT TIME ZONE 'UTC')::date::text,
		       (SELECT COUNT(*) FROM business_plans b
		         WHERE b.created_at >= d AND b.created_at < d + INTERVAL '1 day'),
		       (SELECT COUNT(*) FROM users u
		         WHERE u.created_at >= d AND u.created_at < d + INTERVAL '1 day')
		FROM generate_series($1::timestamptz, $1::timestamptz + ($2 - 1) * INTERVAL '1 day', INTERVAL '1 day') AS d
		ORDER BY d`, start, days)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.DailyCount, 0, days)
	for rows.Next() {
		var c models.DailyCount
		if err := rows.Scan(&c.Date, &c.Projects, &c.Users); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
