// Package free реализует получение бесплатного пакета кредитов.
package free

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bizplan/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bizplan/internal/http/response"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/services/payment"
)

// Handler обработчик бесплатного пакета.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service начисление бесплатного пакета.
type Service interface {
	ClaimFree(ctx context.Context, principal models.Principal) (*payment.Result, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить бесплатный пакет
// @Description Начисляет кредиты бесплатного пакета один раз на пользователя.
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Пакет уже получен"
// @Failure 500 {object} response.ErrorResponse
// @Router /payments/free [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.free"

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

	res, err := h.service.ClaimFree(r.Context(), *principal)
	if err != nil {
		if errors.Is(err, payment.ErrFreePackClaimed) {
			log.Info("free pack already claimed", sl.UserID(principal.UserID))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to claim free pack", sl.UserID(principal.UserID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithCredits(res.Message, res.Credits))
}
