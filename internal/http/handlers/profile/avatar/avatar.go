// Package avatar принимает загрузку аватара (multipart, поле "avatar").
package avatar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bizplan/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bizplan/internal/http/response"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/services/profile"
)

// FormField имя поля формы с файлом.
const FormField = "avatar"

// запас на заголовки multipart сверх размера файла
const multipartOverhead = 64 << 10

type Handler struct {
	log     *slog.Logger
	service Service
	maxSize int64
}

type Service interface {
	UploadAvatar(ctx context.Context, userID string, data []byte) (string, error)
}

// New создает Handler. maxSize максимальный размер файла в байтах.
func New(log *slog.Logger, service Service, maxSize int64) *Handler {
	return &Handler{log: log, service: service, maxSize: maxSize}
}

// ServeHTTP godoc
// @Summary Загрузить аватар
// @Tags Profile
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param avatar formData file true "PNG, JPEG или WebP"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 415 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /profile/avatar [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.avatar"

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

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+multipartOverhead)
	file, _, err := r.FormFile(FormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error(profile.ErrAvatarTooLarge.Error()))
			return
		}
		log.Warn("failed to read avatar form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("avatar file is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		log.Warn("failed to read avatar file", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("avatar file is required"))
		return
	}

	url, err := h.service.UploadAvatar(r.Context(), principal.UserID, data)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "failed to upload avatar"
		switch {
		case errors.Is(err, profile.ErrAvatarTooLarge):
			status, msg = http.StatusRequestEntityTooLarge, err.Error()
		case errors.Is(err, profile.ErrAvatarUnsupported):
			status, msg = http.StatusUnsupportedMediaType, err.Error()
		case errors.Is(err, profile.ErrAvatarsDisabled):
			status, msg = http.StatusServiceUnavailable, err.Error()
		default:
			log.Error("avatar upload failed", sl.UserID(principal.UserID), sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"avatar_url": url,
	}))
}
