package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name           string
		checks         map[string]Pinger
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no checks",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"data":{"status":"ok","components":{}}}`,
		},
		{
			name:           "all healthy",
			checks:         map[string]Pinger{"postgres": ok, "redis": ok},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"data":{"status":"ok","components":{"postgres":"ok","redis":"ok"}}}`,
		},
		{
			name:           "redis down",
			checks:         map[string]Pinger{"postgres": ok, "redis": down},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"success":false,"data":{"status":"degraded","components":{"postgres":"ok","redis":"down"}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), tt.checks)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}
