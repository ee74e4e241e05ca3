package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/bizplan/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bizplan/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) History(ctx context.Context, userID string) ([]models.PaymentRecord, error) {
	args := m.Called(ctx, userID)
	recs, _ := args.Get(0).([]models.PaymentRecord)
	return recs, args.Error(1)
}

func TestHistoryHandler(t *testing.T) {
	tests := []struct {
		name           string
		withPrincipal  bool
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:          "success",
			withPrincipal: true,
			setupMock: func(m *ServiceMock) {
				m.On("History", mock.Anything, "u1").Return([]models.PaymentRecord{
					{Reference: "ref_1", PackType: "starter", Amount: 500000, Currency: "XOF", CreditsAdded: 6, Status: models.PaymentSuccess, Email: "a@b.co"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"reference":"ref_1"`,
		},
		{
			name:          "service error",
			withPrincipal: true,
			setupMock: func(m *ServiceMock) {
				m.On("History", mock.Anything, "u1").Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to list payments"`,
		},
		{
			name:           "unauthorized",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"Unauthorized"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/history", nil)
			if tt.withPrincipal {
				req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), &models.Principal{UserID: "u1"}))
			}
			rr := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
