package contactread

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

	"github.com/magabrotheeeer/bizplan/internal/services/contact"
)

const (
	testContactID = "7b3a9c2d-1e4f-4a5b-8c6d-2e9f1a3b5c7d"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) MarkRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestContactReadHandler(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{name: "marked", expectedStatus: http.StatusOK, expectedBody: `{"success":true,"message":"Message marked as read"}`},
		{name: "not found", err: contact.ErrNotFound, expectedStatus: http.StatusNotFound, expectedBody: `{"success":false,"error":"Message not found"}`},
		{name: "storage error", err: errors.New("db down"), expectedStatus: http.StatusInternalServerError, expectedBody: `{"success":false,"error":"internal error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("MarkRead", mock.Anything, testContactID).Return(tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/contacts/c1/read", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", testContactID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rr := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestContactReadHandler_MalformedID(t *testing.T) {
	for _, id := range []string{"c1", "1 OR 1=1", strings.ReplaceAll(testContactID, "-", "")} {
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
			svc.AssertNotCalled(t, "MarkRead")
		})
	}
}
