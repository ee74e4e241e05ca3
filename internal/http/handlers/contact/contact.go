// Package contact реализует HTTP-обработчик формы обратной связи.
package contact

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bizplan/internal/http/response"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	contactservice "github.com/magabrotheeeer/bizplan/internal/services/contact"
)

// Request данные формы.
type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Handler обработчик формы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service прием обращений.
type Service interface {
	Submit(ctx context.Context, in contactservice.Submission) (string, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отправить обращение
// @Description Проверяет поля, шифрует имя и email и сохраняет обращение.
// @Tags Contact
// @Accept  json
// @Produce  json
// @Param request body Request true "Форма обратной связи"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse
// @Router /contact [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact"

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

	msg, err := h.service.Submit(r.Context(), contactservice.Submission{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		var verr *contactservice.ValidationError
		if errors.As(err, &verr) {
			log.Info("contact form rejected", slog.String("reason", verr.Msg))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(verr.Msg))
			return
		}
		log.Error("failed to store contact message", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Failed to send message"))
		return
	}

	render.JSON(w, r, response.OK(msg))
}
