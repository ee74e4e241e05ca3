package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bizplan/internal/http/response"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
)

// MsgForbiddenAdmin текст ответа, когда у пользователя нет роли администратора.
const MsgForbiddenAdmin = "Forbidden - Admin access required"

// AdminChecker проверяет роль администратора.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RequireAdmin пропускает запрос дальше только для администратора.
// Без пользователя в контексте 401, без роли или при ошибке проверки 403.
func RequireAdmin(gate AdminChecker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAdmin"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				log.Warn("admin route without principal")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(MsgUnauthorized))
				return
			}

			isAdmin, err := gate.IsAdmin(r.Context(), principal.UserID)
			if err != nil {
				log.Error("failed to check admin role", sl.UserID(principal.UserID), sl.Err(err))
			}
			if err != nil || !isAdmin {
				log.Warn("admin access denied", sl.UserID(principal.UserID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error(MsgForbiddenAdmin))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
