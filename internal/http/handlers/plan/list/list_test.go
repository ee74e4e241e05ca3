package list

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

func (m *ServiceMock) ListOwn(ctx context.Context, userID string, limit, offset int) ([]models.BusinessPlan, error) {
	args := m.Called(ctx, userID, limit, offset)
	plans, _ := args.Get(0).([]models.BusinessPlan)
	return plans, args.Error(1)
}

func TestListHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		withPrincipal  bool
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:          "paged",
			url:           "/api/v1/plans?limit=10&offset=20",
			withPrincipal: true,
			setupMock: func(m *ServiceMock) {
				m.On("ListOwn", mock.Anything, "u1", 10, 20).Return([]models.BusinessPlan{
					{ID: "p1", UserID: "u1", GeneratedPlan: "# Plan"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":1`,
		},
		{
			name:          "defaults",
			url:           "/api/v1/plans",
			withPrincipal: true,
			setupMock: func(m *ServiceMock) {
				m.On("ListOwn", mock.Anything, "u1", 0, 0).Return([]models.BusinessPlan{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":0`,
		},
		{
			name:          "service error",
			url:           "/api/v1/plans",
			withPrincipal: true,
			setupMock: func(m *ServiceMock) {
				m.On("ListOwn", mock.Anything, "u1", 0, 0).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to list plans"`,
		},
		{
			name:           "unauthorized",
			url:            "/api/v1/plans",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"Unauthorized"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
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
