package admin

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/bizplan/internal/models"
)

// RoleChecker проверка ролей пользователя.
type RoleChecker interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// Gate проверяет права администратора. Роль читается из базы на каждый запрос,
// поэтому отзыв роли действует сразу.
type Gate struct {
	roles RoleChecker
}

// NewGate создаёт Gate.
func NewGate(roles RoleChecker) *Gate {
	return &Gate{roles: roles}
}

// IsAdmin true, если у пользователя есть роль admin.
func (g *Gate) IsAdmin(ctx context.Context, userID string) (bool, error) {
	const op = "services.admin.IsAdmin"
	if userID == "" {
		return false, nil
	}
	ok, err := g.roles.HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}
