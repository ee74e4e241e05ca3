package contact

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

	contactservice "github.com/magabrotheeeer/bizplan/internal/services/contact"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Submit(ctx context.Context, in contactservice.Submission) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func TestContactHandler(t *testing.T) {
	sub := contactservice.Submission{Name: "Awa", Email: "awa@example.com", Message: "Bonjour"}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"name":"Awa","email":"awa@example.com","message":"Bonjour"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Submit", mock.Anything, sub).Return(contactservice.MsgSent, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"message":"Your message has been sent successfully. We will get back to you soon!"}`,
		},
		{
			name: "validation message is returned verbatim",
			body: `{"name":"","email":"awa@example.com","message":"Bonjour"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Submit", mock.Anything, mock.Anything).
					Return("", &contactservice.ValidationError{Msg: "Name cannot be empty"})
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"Name cannot be empty"}`,
		},
		{
			name:           "invalid json",
			body:           `{"name":`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"invalid request body"}`,
		},
		{
			name: "storage failure",
			body: `{"name":"Awa","email":"awa@example.com","message":"Bonjour"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Submit", mock.Anything, sub).Return("", errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"success":false,"error":"Failed to send message"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
