package plans

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

	"github.com/magabrotheeeer/bizplan/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context, limit, offset int) ([]models.BusinessPlan, error) {
	args := m.Called(ctx, limit, offset)
	p, _ := args.Get(0).([]models.BusinessPlan)
	return p, args.Error(1)
}

func TestPlansHandler(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "paged list",
			query: "?limit=2&offset=4",
			setupMock: func(m *ServiceMock) {
				m.On("List", mock.Anything, 2, 4).Return([]models.BusinessPlan{{ID: "p1"}, {ID: "p2"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":2`,
		},
		{
			name:  "storage error",
			query: "",
			setupMock: func(m *ServiceMock) {
				m.On("List", mock.Anything, 0, 0).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to list plans"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/plans"+tt.query, nil)
			rr := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
