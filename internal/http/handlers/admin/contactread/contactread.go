// Package contactread отмечает обращение прочитанным.
package contactread

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
	"github.com/magabrotheeeer/bizplan/internal/services/contact"
)

// MsgMarkedRead ответ на успешную отметку.
const MsgMarkedRead = "Message marked as read"

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	MarkRead(ctx context.Context, id string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отметить обращение прочитанным
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID обращения"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/contacts/{id}/read [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.contactread"

	id := chi.URLParam(r, "id")
	if !request.ValidID(id) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(request.MsgInvalidID))
		return
	}
	if err := h.service.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		h.log.Error("failed to mark message read",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("id", id),
			sl.Err(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OK(MsgMarkedRead))
}
