// Package dashboard отдает статистику админ-панели.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bizplan/internal/http/response"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика
// @Description Итоги по проектам, пользователям и платежам; ряд за 30 дней.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.dashboard"

	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.log.Error("failed to build dashboard",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load dashboard"))
		return
	}
	render.JSON(w, r, response.OKWithData(stats))
}
