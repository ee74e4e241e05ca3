// Package payment проверяет платежи в шлюзе и начисляет кредиты ровно один раз
// на каждую ссылку транзакции.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/bizplan/internal/catalog"
	"github.com/magabrotheeeer/bizplan/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/metrics"
	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/paymentprovider"
	"github.com/magabrotheeeer/bizplan/internal/storage/repository"
)

// Сообщения успешных ответов.
const (
	MsgAlreadyProcessed = "Payment already processed"
	MsgCreditsAdded     = "Payment verified and credits added"
	MsgFreePackClaimed  = "Free pack claimed"
)

const historyLimit = 100

var (
	ErrReferenceRequired   = errors.New("reference is required")
	ErrUnknownPack         = errors.New("Invalid pack type")
	ErrPackNotPurchasable  = errors.New("This pack cannot be purchased")
	ErrPaymentNotCompleted = errors.New("Payment not completed")
	ErrAmountMismatch      = errors.New("Payment amount does not match pack price")
	ErrUserRequired        = errors.New("userId is required")
	ErrInvalidUserID       = errors.New("userId must be a valid UUID")
	ErrInvalidEmail        = errors.New("Invalid email format")
	ErrGatewayUnavailable  = errors.New("Payment provider unavailable, please retry")
	ErrMissingSecret       = errors.New("Payment provider is not configured")
	ErrFreePackClaimed     = errors.New("Free pack already claimed")
)

// Repository хранилище платежей и баланса.
type Repository interface {
	FindPaymentByReference(ctx context.Context, reference string) (*models.PaymentRecord, error)
	ApplyPayment(ctx context.Context, rec models.PaymentRecord) (bool, int, error)
	ListPaymentsByUser(ctx context.Context, userID string, limit int) ([]models.PaymentRecord, error)
	GetCredits(ctx context.Context, userID string) (int, error)
}

// Gateway проверка транзакции в платёжном шлюзе.
type Gateway interface {
	Verify(ctx context.Context, reference string) (*paymentprovider.Transaction, error)
}

// Cipher шифрование email в истории платежей.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(stored string) (string, error)
}

// Notifier публикует события о кредитах.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// VerifyRequest данные, которые клиент получил после оплаты.
type VerifyRequest struct {
	Reference string
	Pack      string
	Email     string
	UserID    string
}

// Result итог начисления.
type Result struct {
	Credits int
	Message string
	Replay  bool
}

// Service верификатор платежей.
type Service struct {
	repo     Repository
	gateway  Gateway
	cipher   Cipher
	notifier Notifier
	currency string
	validate *validator.Validate
	log      *slog.Logger
}

// New создаёт сервис. currency ожидаемая валюта платежей (XOF).
func New(repo Repository, gateway Gateway, cipher Cipher, notifier Notifier, currency string, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		gateway:  gateway,
		cipher:   cipher,
		notifier: notifier,
		currency: currency,
		validate: validator.New(),
		log:      log,
	}
}

// Verify подтверждает платёж в шлюзе и начисляет кредиты пакета.
// Повторный вызов с той же ссылкой возвращает успех без изменения баланса.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*Result, error) {
	const op = "services.payment.Verify"
	log := s.log.With(slog.String("op", op), slog.String("reference", req.Reference), slog.String("pack", req.Pack))

	req.Reference = strings.TrimSpace(req.Reference)
	if req.Reference == "" {
		return nil, ErrReferenceRequired
	}
	pack, ok := catalog.Lookup(req.Pack)
	if !ok {
		log.Error("unknown pack")
		metrics.PaymentVerifications.WithLabelValues("unknown", metrics.OutcomeRejected).Inc()
		return nil, ErrUnknownPack
	}
	if pack.Free {
		metrics.PaymentVerifications.WithLabelValues(pack.ID, metrics.OutcomeRejected).Inc()
		return nil, ErrPackNotPurchasable
	}
	if err := s.checkPayer(req); err != nil {
		log.Warn("invalid payer data", sl.Err(err))
		metrics.PaymentVerifications.WithLabelValues(pack.ID, metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	tx, err := s.gateway.Verify(ctx, req.Reference)
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues(pack.ID, metrics.OutcomeError).Inc()
		switch {
		case errors.Is(err, paymentprovider.ErrRejected):
			log.Warn("gateway rejected verification", sl.Err(err))
			return nil, ErrPaymentNotCompleted
		case errors.Is(err, paymentprovider.ErrMisconfigured):
			log.Error("gateway is misconfigured", sl.Err(err))
			return nil, fmt.Errorf("%s: %w: %v", op, ErrMissingSecret, err)
		case errors.Is(err, paymentprovider.ErrUnavailable):
			log.Error("gateway unavailable", sl.Err(err))
			return nil, fmt.Errorf("%s: %w: %v", op, ErrGatewayUnavailable, err)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if !tx.Succeeded() {
		log.Warn("payment not completed", slog.String("status", tx.Status))
		metrics.PaymentVerifications.WithLabelValues(pack.ID, metrics.OutcomeRejected).Inc()
		return nil, ErrPaymentNotCompleted
	}
	if tx.Amount != pack.ExpectedAmount() || !strings.EqualFold(tx.Currency, s.currency) {
		log.Error("payment amount mismatch",
			slog.Int64("expected", pack.ExpectedAmount()),
			slog.Int64("actual", tx.Amount),
			slog.String("currency", tx.Currency))
		metrics.PaymentVerifications.WithLabelValues(pack.ID, metrics.OutcomeRejected).Inc()
		return nil, ErrAmountMismatch
	}

	if _, err = s.repo.FindPaymentByReference(ctx, req.Reference); err == nil {
		log.Info("payment already processed")
		metrics.PaymentVerifications.WithLabelValues(pack.ID, metrics.OutcomeReplay).Inc()
		return &Result{Credits: pack.Credits, Message: MsgAlreadyProcessed, Replay: true}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		metrics.PaymentVerifications.WithLabelValues(pack.ID, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(req.UserID) == "" {
		metrics.PaymentVerifications.WithLabelValues(pack.ID, metrics.OutcomeRejected).Inc()
		return nil, ErrUserRequired
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		email = strings.ToLower(tx.Email)
	}
	res, err := s.apply(ctx, pack, req.Reference, req.UserID, email, tx.Amount)
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues(pack.ID, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if res.Replay {
		log.Info("payment applied concurrently, treated as replay")
		metrics.PaymentVerifications.WithLabelValues(pack.ID, metrics.OutcomeReplay).Inc()
		res.Message = MsgAlreadyProcessed
		return res, nil
	}

	log.Info("payment verified, credits added", sl.UserID(req.UserID), slog.Int("credits", pack.Credits))
	metrics.PaymentVerifications.WithLabelValues(pack.ID, metrics.OutcomeApplied).Inc()
	res.Message = MsgCreditsAdded
	return res, nil
}

// checkPayer проверяет userId и email до обращения к шлюзу.
func (s *Service) checkPayer(req VerifyRequest) error {
	if id := strings.TrimSpace(req.UserID); id != "" {
		if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
			return ErrInvalidUserID
		}
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil
	}
	if strings.ContainsAny(email, "\r\n") || s.validate.Var(email, "email,max=255") != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ClaimFree начисляет бесплатный пакет. Один раз на пользователя.
func (s *Service) ClaimFree(ctx context.Context, principal models.Principal) (*Result, error) {
	const op = "services.payment.ClaimFree"

	pack, _ := catalog.Lookup(catalog.Mini)
	res, err := s.apply(ctx, pack, "free-"+principal.UserID, principal.UserID, principal.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if res.Replay {
		return nil, ErrFreePackClaimed
	}
	res.Message = MsgFreePackClaimed
	return res, nil
}

// apply записывает платёж и начисляет кредиты. Replay=true, если ссылка уже занята.
func (s *Service) apply(ctx context.Context, pack catalog.Pack, reference, userID, email string, amount int64) (*Result, error) {
	encEmail, err := s.cipher.Encrypt(email)
	if err != nil {
		return nil, fmt.Errorf("encrypt email: %w", err)
	}
	applied, balance, err := s.repo.ApplyPayment(ctx, models.PaymentRecord{
		Reference:    reference,
		PackType:     pack.ID,
		Amount:       amount,
		Currency:     strings.ToUpper(s.currency),
		CreditsAdded: pack.Credits,
		Status:       models.PaymentSuccess,
		UserID:       &userID,
		Email:        encEmail,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return &Result{Credits: pack.Credits, Replay: true}, nil
	}

	metrics.CreditsGranted.WithLabelValues(pack.ID).Add(float64(pack.Credits))
	s.notify(models.CreditEvent{
		Type:      models.EventCreditsAdded,
		UserID:    userID,
		Email:     email,
		Balance:   balance,
		Added:     pack.Credits,
		Pack:      pack.Name,
		Reference: reference,
	})
	return &Result{Credits: pack.Credits}, nil
}

func (s *Service) notify(event models.CreditEvent) {
	if err := s.notifier.Publish(rabbitmq.CreditsRoutingKey, event); err != nil {
		s.log.Warn("failed to publish credit event", slog.String("type", event.Type), sl.Err(err))
	}
}

// History возвращает платежи пользователя с расшифрованным email.
func (s *Service) History(ctx context.Context, userID string) ([]models.PaymentRecord, error) {
	const op = "services.payment.History"

	records, err := s.repo.ListPaymentsByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range records {
		email, err := s.cipher.Decrypt(records[i].Email)
		if err != nil {
			s.log.Warn("failed to decrypt payment email", slog.String("reference", records[i].Reference), sl.Err(err))
			email = ""
		}
		records[i].Email = email
	}
	return records, nil
}

// Balance текущий баланс пользователя.
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	const op = "services.payment.Balance"

	credits, err := s.repo.GetCredits(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return credits, nil
}
