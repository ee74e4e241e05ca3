package planread

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/services/plan"
)

const (
	testPlanID = "5d2e8f1a-3c4b-4d6e-8f7a-9b0c1d2e3f4a"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Get(ctx context.Context, id string) (*models.BusinessPlan, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.BusinessPlan)
	return p, args.Error(1)
}

func TestPlanReadHandler(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "found",
			setupMock: func(m *ServiceMock) {
				m.On("Get", mock.Anything, testPlanID).Return(&models.BusinessPlan{ID: testPlanID, GeneratedPlan: "# Plan"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"generated_plan":"# Plan"`,
		},
		{
			name: "not found",
			setupMock: func(m *ServiceMock) {
				m.On("Get", mock.Anything, testPlanID).Return(nil, plan.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"Plan not found"`,
		},
		{
			name: "storage error",
			setupMock: func(m *ServiceMock) {
				m.On("Get", mock.Anything, testPlanID).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to read plan"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/plans/p1", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", testPlanID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rr := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestPlanReadHandler_MalformedID(t *testing.T) {
	for _, id := range []string{"p1", "1 OR 1=1", strings.ReplaceAll(testPlanID, "-", "")} {
		t.Run(id, func(t *testing.T) {
			svc := new(ServiceMock)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(ctx)
			rr := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, `{"success":false,"error":"invalid id"}`, rr.Body.String())
			svc.AssertNotCalled(t, "Get")
		})
	}
}
