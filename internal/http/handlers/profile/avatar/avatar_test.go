package avatar

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bizplan/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/services/profile"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) UploadAvatar(ctx context.Context, userID string, data []byte) (string, error) {
	args := m.Called(ctx, userID, data)
	return args.String(0), args.Error(1)
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "a.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAvatarHandler(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest")

	tests := []struct {
		name           string
		field          string
		data           []byte
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "uploaded",
			field: FormField,
			data:  png,
			setupMock: func(m *ServiceMock) {
				m.On("UploadAvatar", mock.Anything, "u1", png).Return("http://cdn/avatars/u1/x.png", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"avatar_url":"http://cdn/avatars/u1/x.png"`,
		},
		{
			name:           "missing file field",
			field:          "other",
			data:           png,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"avatar file is required"`,
		},
		{
			name:  "unsupported type",
			field: FormField,
			data:  []byte("plain text"),
			setupMock: func(m *ServiceMock) {
				m.On("UploadAvatar", mock.Anything, "u1", []byte("plain text")).Return("", profile.ErrAvatarUnsupported)
			},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:  "service rejects size",
			field: FormField,
			data:  png,
			setupMock: func(m *ServiceMock) {
				m.On("UploadAvatar", mock.Anything, "u1", png).Return("", profile.ErrAvatarTooLarge)
			},
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:  "storage disabled",
			field: FormField,
			data:  png,
			setupMock: func(m *ServiceMock) {
				m.On("UploadAvatar", mock.Anything, "u1", png).Return("", profile.ErrAvatarsDisabled)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:  "upload failure",
			field: FormField,
			data:  png,
			setupMock: func(m *ServiceMock) {
				m.On("UploadAvatar", mock.Anything, "u1", png).Return("", errors.New("s3 down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to upload avatar"`,
		},
		{
			name:           "body over limit",
			field:          FormField,
			data:           bytes.Repeat([]byte{0}, 1024+multipartOverhead+1),
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			body, contentType := multipartBody(t, tt.field, tt.data)
			req := httptest.NewRequest(http.MethodPut, "/api/v1/profile/avatar", body)
			req.Header.Set("Content-Type", contentType)
			req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), &models.Principal{UserID: "u1"}))
			rr := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, 1024).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}
			svc.AssertExpectations(t)
		})
	}
}
