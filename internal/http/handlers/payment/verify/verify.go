// Package verify реализует HTTP-обработчик подтверждения платежа и начисления кредитов.
//
// Повторный запрос с той же ссылкой возвращает успех без повторного начисления.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/bizplan/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bizplan/internal/http/response"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/services/payment"
)

// Request данные, полученные клиентом от формы оплаты.
type Request struct {
	Reference string `json:"reference" example:"T123456789"`
	Pack      string `json:"pack" example:"starter"`
	Email     string `json:"email" validate:"omitempty,email,max=255" example:"client@example.com"`
	UserID    string `json:"userId,omitempty" validate:"omitempty,uuid"`
}

// Handler обработчик подтверждения платежа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service верификатор платежей.
type Service interface {
	Verify(ctx context.Context, req payment.VerifyRequest) (*payment.Result, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтвердить платеж
// @Description Проверяет транзакцию в платежном шлюзе и начисляет кредиты пакета ровно один раз.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Request true "Ссылка на транзакцию и пакет"
// @Success 200 {object} response.Response "Кредиты начислены или платеж уже обработан"
// @Failure 400 {object} response.ErrorResponse
// @Failure 402 {object} response.ErrorResponse "Платеж не завершен"
// @Failure 502 {object} response.ErrorResponse "Платежный шлюз недоступен"
// @Failure 500 {object} response.ErrorResponse
// @Router /payments/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userID := req.UserID
	if p, ok := middlewarectx.PrincipalFrom(r.Context()); ok {
		userID = p.UserID
	}

	res, err := h.service.Verify(r.Context(), payment.VerifyRequest{
		Reference: req.Reference,
		Pack:      req.Pack,
		Email:     req.Email,
		UserID:    userID,
	})
	if err != nil {
		status := statusFor(err)
		msg := err.Error()
		if status == http.StatusInternalServerError && !errors.Is(err, payment.ErrMissingSecret) {
			msg = "internal error"
		}
		if status >= http.StatusInternalServerError {
			log.Error("payment verification failed", sl.Err(err))
		} else {
			log.Warn("payment verification rejected", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("payment verified", slog.Bool("replay", res.Replay), slog.Int("credits", res.Credits))
	render.JSON(w, r, response.OKWithCredits(res.Message, res.Credits))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, payment.ErrReferenceRequired),
		errors.Is(err, payment.ErrUnknownPack),
		errors.Is(err, payment.ErrPackNotPurchasable),
		errors.Is(err, payment.ErrAmountMismatch),
		errors.Is(err, payment.ErrUserRequired),
		errors.Is(err, payment.ErrInvalidUserID),
		errors.Is(err, payment.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, payment.ErrPaymentNotCompleted):
		return http.StatusPaymentRequired
	case errors.Is(err, payment.ErrGatewayUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
