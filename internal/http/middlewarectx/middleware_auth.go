// Package middlewarectx содержит HTTP middleware для аутентификации, проверки прав
// администратора, ограничения частоты запросов и сбора метрик.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization
// через сервис аутентификации и в случае успеха кладет в контекст models.Principal.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bizplan/internal/http/response"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// PrincipalKey — ключ для аутентифицированного пользователя в контексте.
const PrincipalKey Key = "principal"

// MsgUnauthorized текст ответа при отсутствии аутентификации.
const MsgUnauthorized = "Unauthorized"

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Principal, error)
}

// WithPrincipal возвращает контекст с пользователем.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFrom извлекает пользователя из контекста.
func PrincipalFrom(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*models.Principal)
	if !ok || p == nil || p.UserID == "" {
		return nil, false
	}
	return p, true
}

// JWTMiddleware возвращает HTTP middleware, который требует валидный JWT в заголовке Authorization.
// Иначе отвечает 401 Unauthorized.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return authenticate(authService, log, true)
}

// OptionalAuth как JWTMiddleware, но пропускает запросы без заголовка Authorization.
// Присланный, но невалидный токен все равно отклоняется.
func OptionalAuth(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return authenticate(authService, log, false)
}

func authenticate(authService Service, log *slog.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" && !required {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(MsgUnauthorized))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			principal, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(MsgUnauthorized))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}
