// Package generate реализует HTTP-обработчик генерации бизнес-плана.
//
// Один запрос списывает один кредит. Если сервис генерации ответил ошибкой,
// кредит возвращается и клиент получает сообщение на французском.
package generate

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
	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/services/plan"
)

// Handler обработчик генерации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service генерация плана со списанием кредита.
type Service interface {
	Generate(ctx context.Context, principal models.Principal, data models.BusinessData) (*plan.Generated, error)
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
// @Summary Сгенерировать бизнес-план
// @Description Списывает один кредит и генерирует план по описанию проекта.
// @Tags Plans
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.BusinessData true "Описание проекта"
// @Success 200 {object} response.Response "План и оставшийся баланс"
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 402 {object} response.ErrorResponse "Недостаточно кредитов"
// @Failure 422 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /plans/generate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.generate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(middlewarectx.MsgUnauthorized))
		return
	}

	var req models.BusinessData
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	gen, err := h.service.Generate(r.Context(), *principal, req)
	if err != nil {
		status := statusFor(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = plan.ErrUpstream.Error()
			log.Error("plan generation failed", sl.UserID(principal.UserID), sl.Err(err))
		} else {
			log.Warn("plan generation rejected", sl.UserID(principal.UserID), sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("plan generated", sl.UserID(principal.UserID), slog.Int("credits", gen.Credits))
	render.JSON(w, r, response.Response{
		Success: true,
		Credits: &gen.Credits,
		Data: map[string]any{
			"generated_plan": gen.Plan,
		},
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, plan.ErrInsufficientCredits), errors.Is(err, plan.ErrQuotaExceeded):
		return http.StatusPaymentRequired
	case errors.Is(err, plan.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, plan.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
