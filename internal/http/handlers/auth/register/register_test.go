package register

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/bizplan/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, email, password, fullName string) (string, error) {
	args := m.Called(ctx, email, password, fullName)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"email":"a@b.co","password":"secret123","full_name":"Awa"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, "a@b.co", "secret123", "Awa").Return("u1", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"success":true,"data":{"user_id":"u1"}}`,
		},
		{
			name:           "invalid json",
			body:           `{`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"invalid request body"}`,
		},
		{
			name:           "short password",
			body:           `{"email":"a@b.co","password":"short"}`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"success":false,"error":"field Password must be at least 8 characters"}`,
		},
		{
			name: "email taken",
			body: `{"email":"a@b.co","password":"secret123"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, "a@b.co", "secret123", "").Return("", auth.ErrEmailTaken)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"success":false,"error":"email already registered"}`,
		},
		{
			name: "storage error",
			body: `{"email":"a@b.co","password":"secret123"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, "a@b.co", "secret123", "").Return("", errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"success":false,"error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
