// Package contacts отдает расшифрованные обращения для администратора.
package contacts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bizplan/internal/http/request"
	"github.com/magabrotheeeer/bizplan/internal/http/response"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	List(ctx context.Context, limit, offset int) ([]models.ContactMessage, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обращения пользователей
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/contacts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.contacts"

	limit, offset := request.Paging(r)
	messages, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.log.Error("failed to list contact messages",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list messages"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":    len(messages),
		"messages": messages,
	}))
}
