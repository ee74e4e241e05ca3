package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/bizplan/internal/models"
)

func TestUserRateLimiter_PerUserBuckets(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewUserRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("u1"))
	assert.True(t, l.Allow("u1"))
	assert.False(t, l.Allow("u1"))

	assert.True(t, l.Allow("u2"), "other user has own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("u1"), "token refilled")
}

func TestUserRateLimiter_SweepsIdle(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewUserRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("u1")
	now = now.Add(limiterIdleTTL + time.Minute)
	l.Allow("u2")

	_, ok := l.visitors["u1"]
	assert.False(t, ok)
	assert.Len(t, l.visitors, 1)
}

func TestRateLimitMiddleware(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := NewUserRateLimiter(0.001, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RateLimitMiddleware(l, log)(next)

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/generate", nil)
		req = req.WithContext(WithPrincipal(req.Context(), &models.Principal{UserID: userID}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("u1"))
	assert.Equal(t, http.StatusTooManyRequests, send("u1"))
	assert.Equal(t, http.StatusOK, send("u2"))
}
