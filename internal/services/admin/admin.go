// Package admin операции администратора: блокировка и удаление учётных записей,
// роли, список пользователей и статистика дашборда.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/storage/repository"
)

// Действия над учётной записью.
const (
	ActionBan    = "ban"
	ActionUnban  = "unban"
	ActionGrant  = "grant"
	ActionRevoke = "revoke"
)

// Сообщения успешных ответов.
const (
	MsgUserDeleted  = "User deleted successfully"
	MsgUserBanned   = "User banned successfully"
	MsgUserUnbanned = "User unbanned successfully"
	MsgAdminGranted = "Admin role granted successfully"
	MsgAdminRevoked = "Admin role revoked successfully"
)

const (
	dashboardKey = "admin:dashboard"
	dashboardTTL = 5 * time.Minute

	defaultPageSize = 50
	maxPageSize     = 200
)

var (
	ErrUserIDRequired    = errors.New("userId is required")
	ErrSelfDelete        = errors.New("Cannot delete your own account")
	ErrActionRequired    = errors.New("userId and action are required")
	ErrInvalidBanAction  = errors.New(`action must be "ban" or "unban"`)
	ErrSelfBan           = errors.New("Cannot ban your own account")
	ErrInvalidRoleAction = errors.New(`action must be "grant" or "revoke"`)
	ErrSelfRevoke        = errors.New("Cannot revoke your own admin role")
	ErrUserNotFound      = errors.New("User not found")
)

// Repository хранилище для операций администратора.
type Repository interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	DeleteUserCascade(ctx context.Context, userID string) error
	SetBanned(ctx context.Context, userID string, banned bool) error
	GrantRole(ctx context.Context, userID, role string) error
	RevokeRole(ctx context.Context, userID, role string) error
	ListUsers(ctx context.Context, limit, offset int) ([]models.UserSummary, error)
	ListPlansByUser(ctx context.Context, userID string, limit, offset int) ([]models.BusinessPlan, error)
	DashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error)
}

// Cache кэш статистики.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service операции администратора. Права проверяются до вызова (Gate).
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// New создаёт сервис.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// DeleteUser удаляет учётную запись target и все её данные. Удалить себя нельзя.
func (s *Service) DeleteUser(ctx context.Context, actorID, targetID string) error {
	const op = "services.admin.DeleteUser"
	log := s.log.With(slog.String("op", op), slog.String("actor", actorID), slog.String("target", targetID))

	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return ErrUserIDRequired
	}
	if targetID == actorID {
		return ErrSelfDelete
	}

	if err := s.repo.DeleteUserCascade(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Error("failed to delete user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateDashboard(ctx)
	log.Info("user deleted")
	return nil
}

// SetStatus блокирует или разблокирует учётную запись. Возвращает сообщение для ответа.
func (s *Service) SetStatus(ctx context.Context, actorID, targetID, action string) (string, error) {
	const op = "services.admin.SetStatus"
	log := s.log.With(slog.String("op", op), slog.String("actor", actorID), slog.String("target", targetID))

	targetID = strings.TrimSpace(targetID)
	if targetID == "" || action == "" {
		return "", ErrActionRequired
	}
	if action != ActionBan && action != ActionUnban {
		return "", ErrInvalidBanAction
	}
	if action == ActionBan && targetID == actorID {
		return "", ErrSelfBan
	}

	banned := action == ActionBan
	if err := s.repo.SetBanned(ctx, targetID, banned); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		log.Error("failed to change user status", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	log.Info("user status changed", slog.String("action", action))
	if banned {
		return MsgUserBanned, nil
	}
	return MsgUserUnbanned, nil
}

// SetAdmin выдаёт или отзывает роль администратора. Отозвать роль у себя нельзя.
func (s *Service) SetAdmin(ctx context.Context, actorID, targetID, action string) (string, error) {
	const op = "services.admin.SetAdmin"
	log := s.log.With(slog.String("op", op), slog.String("actor", actorID), slog.String("target", targetID))

	targetID = strings.TrimSpace(targetID)
	if targetID == "" || action == "" {
		return "", ErrActionRequired
	}
	if action != ActionGrant && action != ActionRevoke {
		return "", ErrInvalidRoleAction
	}
	if action == ActionRevoke && targetID == actorID {
		return "", ErrSelfRevoke
	}

	if _, err := s.repo.GetUser(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var err error
	msg := MsgAdminGranted
	if action == ActionGrant {
		err = s.repo.GrantRole(ctx, targetID, models.RoleAdmin)
	} else {
		err = s.repo.RevokeRole(ctx, targetID, models.RoleAdmin)
		msg = MsgAdminRevoked
	}
	if err != nil {
		log.Error("failed to change admin role", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	log.Info("admin role changed", slog.String("action", action))
	return msg, nil
}

// ListUsers пользователи с ролью, балансом и числом проектов.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]models.UserSummary, error) {
	const op = "services.admin.ListUsers"
	limit, offset = page(limit, offset)
	users, err := s.repo.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// ListUserPlans планы конкретного пользователя.
func (s *Service) ListUserPlans(ctx context.Context, userID string, limit, offset int) ([]models.BusinessPlan, error) {
	const op = "services.admin.ListUserPlans"
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}
	limit, offset = page(limit, offset)
	plans, err := s.repo.ListPlansByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// Dashboard статистика для админ-панели. Кэшируется на 5 минут.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	const op = "services.admin.Dashboard"

	var cached models.DashboardStats
	found, err := s.cache.Get(ctx, dashboardKey, &cached)
	if err != nil {
		s.log.Warn("dashboard cache read failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	stats, err := s.repo.DashboardStats(ctx, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, dashboardKey, stats, dashboardTTL); err != nil {
		s.log.Warn("dashboard cache write failed", sl.Err(err))
	}
	return stats, nil
}

func (s *Service) invalidateDashboard(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardKey); err != nil {
		s.log.Warn("failed to invalidate dashboard cache", sl.Err(err))
	}
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
