// Package userplans отдает планы выбранного пользователя.
package userplans

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bizplan/internal/http/request"
	"github.com/magabrotheeeer/bizplan/internal/http/response"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/services/admin"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	ListUserPlans(ctx context.Context, userID string, limit, offset int) ([]models.BusinessPlan, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Планы пользователя
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/users/{id}/plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userplans"

	userID := chi.URLParam(r, "id")
	if userID != "" && !request.ValidID(userID) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(request.MsgInvalidUserID))
		return
	}
	limit, offset := request.Paging(r)

	plans, err := h.service.ListUserPlans(r.Context(), userID, limit, offset)
	if err != nil {
		if errors.Is(err, admin.ErrUserIDRequired) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		h.log.Error("failed to list user plans",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.UserID(userID),
			sl.Err(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list plans"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"count": len(plans),
		"plans": plans,
	}))
}
