// Package plan генерирует бизнес-планы за кредиты и управляет сохранёнными планами.
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/bizplan/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/metrics"
	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/storage/repository"
	"github.com/magabrotheeeer/bizplan/internal/textgen"
)

const (
	lowCreditTTL    = 24 * time.Hour
	refundTimeout   = 5 * time.Second
	defaultPageSize = 50
	maxPageSize     = 200
)

var (
	ErrInsufficientCredits = errors.New("Crédits insuffisants. Achetez des crédits pour générer un business plan.")
	ErrRateLimited         = errors.New("Trop de requêtes. Veuillez réessayer dans quelques instants.")
	ErrQuotaExceeded       = errors.New("Crédit insuffisant auprès du service de génération. Veuillez réessayer plus tard.")
	ErrUpstream            = errors.New("Erreur lors de la génération du business plan")
	ErrNotFound            = errors.New("Plan not found")
	ErrPlanRequired        = errors.New("generated_plan is required")
)

// Repository хранилище кредитов и планов.
type Repository interface {
	ReserveCredit(ctx context.Context, userID string) (int, error)
	RefundCredit(ctx context.Context, userID string) (int, error)
	SavePlan(ctx context.Context, plan models.BusinessPlan) (string, error)
	GetPlan(ctx context.Context, id string) (*models.BusinessPlan, error)
	ListPlansByUser(ctx context.Context, userID string, limit, offset int) ([]models.BusinessPlan, error)
	ListPlans(ctx context.Context, limit, offset int) ([]models.BusinessPlan, error)
	DeletePlan(ctx context.Context, id string) error
	DeleteUserPlan(ctx context.Context, id, userID string) error
}

// Generator внешний сервис генерации текста.
type Generator interface {
	GeneratePlan(ctx context.Context, data models.BusinessData) (string, error)
}

// Marker однократные отметки с временем жизни.
type Marker interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Notifier публикует события о кредитах.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// Generated результат генерации.
type Generated struct {
	Plan    string
	Credits int
}

// Service сервис бизнес-планов.
type Service struct {
	repo      Repository
	generator Generator
	marker    Marker
	notifier  Notifier
	log       *slog.Logger
}

// New создаёт сервис.
func New(repo Repository, generator Generator, marker Marker, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		generator: generator,
		marker:    marker,
		notifier:  notifier,
		log:       log,
	}
}

// Generate списывает один кредит и генерирует план. Без кредитов сервис
// генерации не вызывается; при ошибке генерации кредит возвращается.
func (s *Service) Generate(ctx context.Context, principal models.Principal, data models.BusinessData) (*Generated, error) {
	const op = "services.plan.Generate"
	log := s.log.With(slog.String("op", op), sl.UserID(principal.UserID))

	balance, err := s.repo.ReserveCredit(ctx, principal.UserID)
	if errors.Is(err, repository.ErrNoCredits) {
		metrics.PlanGenerations.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, ErrInsufficientCredits
	}
	if err != nil {
		metrics.PlanGenerations.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	text, err := s.generator.GeneratePlan(ctx, data)
	if err != nil {
		metrics.PlanGenerations.WithLabelValues(metrics.OutcomeError).Inc()
		log.Error("text generation failed, refunding credit", sl.Err(err))
		s.refund(ctx, log, principal.UserID)
		switch {
		case errors.Is(err, textgen.ErrRateLimited):
			return nil, ErrRateLimited
		case errors.Is(err, textgen.ErrQuotaExceeded):
			return nil, ErrQuotaExceeded
		default:
			return nil, fmt.Errorf("%s: %w: %v", op, ErrUpstream, err)
		}
	}

	metrics.PlanGenerations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info("business plan generated", slog.Int("credits_left", balance))
	s.notifyLow(ctx, principal, balance)
	return &Generated{Plan: text, Credits: balance}, nil
}

func (s *Service) refund(ctx context.Context, log *slog.Logger, userID string) {
	refundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refundTimeout)
	defer cancel()
	if _, err := s.repo.RefundCredit(refundCtx, userID); err != nil {
		log.Error("failed to refund credit", sl.Err(err))
	}
}

// lowLevel уровень предупреждения для баланса: 0, 1, 2 (осталось 2-3) или -1.
func lowLevel(balance int) int {
	switch {
	case balance <= 0:
		return 0
	case balance == 1:
		return 1
	case balance <= 3:
		return 2
	default:
		return -1
	}
}

func (s *Service) notifyLow(ctx context.Context, principal models.Principal, balance int) {
	level := lowLevel(balance)
	if level < 0 {
		return
	}
	key := fmt.Sprintf("credits:low:%s:%d", principal.UserID, level)
	first, err := s.marker.MarkOnce(ctx, key, lowCreditTTL)
	if err != nil {
		s.log.Warn("failed to mark low credit notification", sl.Err(err))
		return
	}
	if !first {
		return
	}
	event := models.CreditEvent{
		Type:    models.EventCreditsLow,
		UserID:  principal.UserID,
		Email:   principal.Email,
		Balance: balance,
	}
	if err := s.notifier.Publish(rabbitmq.CreditsRoutingKey, event); err != nil {
		s.log.Warn("failed to publish low credit event", sl.Err(err))
	}
}

// Save сохраняет сгенерированный план пользователя.
func (s *Service) Save(ctx context.Context, userID string, data models.BusinessData, generated string) (string, error) {
	const op = "services.plan.Save"
	if generated == "" {
		return "", ErrPlanRequired
	}
	id, err := s.repo.SavePlan(ctx, models.BusinessPlan{
		UserID:        userID,
		GeneratedPlan: generated,
		BusinessData:  data,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListOwn планы пользователя, новые первыми.
func (s *Service) ListOwn(ctx context.Context, userID string, limit, offset int) ([]models.BusinessPlan, error) {
	const op = "services.plan.ListOwn"
	limit, offset = page(limit, offset)
	plans, err := s.repo.ListPlansByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// DeleteOwn удаляет план, только если он принадлежит пользователю.
func (s *Service) DeleteOwn(ctx context.Context, userID, id string) error {
	const op = "services.plan.DeleteOwn"
	if err := s.repo.DeleteUserPlan(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// List все планы (админка).
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.BusinessPlan, error) {
	const op = "services.plan.List"
	limit, offset = page(limit, offset)
	plans, err := s.repo.ListPlans(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// Get план по id (админка).
func (s *Service) Get(ctx context.Context, id string) (*models.BusinessPlan, error) {
	const op = "services.plan.Get"
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Delete удаляет любой план (админка).
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "services.plan.Delete"
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
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
