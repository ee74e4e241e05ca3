// Package deleteuser удаляет учетную запись пользователя со всеми данными.
//
// Администратор не может удалить сам себя. Удаление выполняется одной транзакцией:
// при любой ошибке ничего не удаляется.
package deleteuser

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bizplan/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bizplan/internal/http/request"
	"github.com/magabrotheeeer/bizplan/internal/http/response"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/services/admin"
)

// Request пользователь для удаления.
type Request struct {
	UserID string `json:"userId"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	DeleteUser(ctx context.Context, actorID, targetID string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить пользователя
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Пользователь"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/users/delete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.deleteuser"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(middlewarectx.MsgUnauthorized))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if req.UserID != "" && !request.ValidID(req.UserID) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(request.MsgInvalidUserID))
		return
	}

	if err := h.service.DeleteUser(r.Context(), actor.UserID, req.UserID); err != nil {
		switch {
		case errors.Is(err, admin.ErrUserIDRequired), errors.Is(err, admin.ErrSelfDelete):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, admin.ErrUserNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to delete user", slog.String("target", req.UserID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to delete user"))
		}
		return
	}

	render.JSON(w, r, response.OK(admin.MsgUserDeleted))
}
