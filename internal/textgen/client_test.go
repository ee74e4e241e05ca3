package textgen

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bizplan/internal/config"
	"github.com/magabrotheeeer/bizplan/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.TextGen{
		APIURL:      srv.URL + "/v1/",
		APIKey:      "key",
		Model:       "test-model",
		MaxTokens:   100,
		Temperature: 0.5,
		Timeout:     time.Second,
	}, newNoopLogger())
}

var sample = models.BusinessData{
	ProjectName:    "Jus Bissap",
	Sector:         "Agroalimentaire",
	Problem:        "Peu de jus locaux",
	Solution:       "Production artisanale",
	TargetAudience: "Dakar",
	BusinessModel:  "Vente directe",
}

func TestGeneratePlan_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "Jus Bissap")
		assert.Contains(t, req.Messages[1].Content, "non précisé")

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"**Résumé exécutif** ..."}}]}`))
	})

	plan, err := c.GeneratePlan(context.Background(), sample)
	require.NoError(t, err)
	assert.Contains(t, plan, "Résumé exécutif")
}

func TestGeneratePlan_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "quota exceeded", status: http.StatusPaymentRequired, wantErr: ErrQuotaExceeded},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantErr: ErrUpstream},
		{name: "empty completion", status: http.StatusOK, body: `{"choices":[]}`, wantErr: ErrUpstream},
		{name: "garbage", status: http.StatusOK, body: `not json`, wantErr: ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.GeneratePlan(context.Background(), sample)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGeneratePlan_BreakerOpensOnRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for range 10 {
		_, err := c.GeneratePlan(context.Background(), sample)
		require.ErrorIs(t, err, ErrUpstream)
	}
	served := calls.Load()

	_, err := c.GeneratePlan(context.Background(), sample)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, served, calls.Load(), "open breaker must not reach the service")
}

func TestGeneratePlan_RateLimitDoesNotOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	for range 12 {
		_, err := c.GeneratePlan(context.Background(), sample)
		require.ErrorIs(t, err, ErrRateLimited)
	}
	assert.Equal(t, int32(12), calls.Load())
}
