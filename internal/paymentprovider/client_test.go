package paymentprovider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bizplan/internal/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.Paystack{BaseURL: srv.URL, SecretKey: "sk_test", Timeout: time.Second})
}

func TestVerify_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-123", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful",
			"data":{"status":"success","reference":"ref-123","amount":500000,"currency":"XOF",
			"customer":{"email":"awa@example.sn"}}}`))
	})

	tx, err := c.Verify(context.Background(), "ref-123")
	require.NoError(t, err)
	assert.True(t, tx.Succeeded())
	assert.Equal(t, int64(500000), tx.Amount)
	assert.Equal(t, "XOF", tx.Currency)
	assert.Equal(t, "awa@example.sn", tx.Email)
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   error
		wantCalls int32
	}{
		{
			name:      "reference not found",
			status:    http.StatusBadRequest,
			body:      `{"status":false,"message":"Transaction reference not found"}`,
			wantErr:   ErrRejected,
			wantCalls: 1,
		},
		{
			name:      "bad secret",
			status:    http.StatusUnauthorized,
			body:      `{"status":false,"message":"Invalid key"}`,
			wantErr:   ErrMisconfigured,
			wantCalls: 1,
		},
		{
			name:      "gateway down is retried",
			status:    http.StatusBadGateway,
			body:      `oops`,
			wantErr:   ErrUnavailable,
			wantCalls: 3,
		},
		{
			name:      "status false on 200",
			status:    http.StatusOK,
			body:      `{"status":false,"message":"nope"}`,
			wantErr:   ErrRejected,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			tx, err := c.Verify(context.Background(), "ref-x")
			require.Error(t, err)
			assert.Nil(t, tx)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestVerify_NotSucceeded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":true,"data":{"status":"abandoned","amount":500000,"currency":"XOF"}}`))
	})

	tx, err := c.Verify(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.False(t, tx.Succeeded())
}

func TestVerify_RecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":true,"data":{"status":"success","amount":100,"currency":"XOF"}}`))
	})

	tx, err := c.Verify(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.True(t, tx.Succeeded())
	assert.Equal(t, int32(2), calls.Load())
}

func TestVerify_MissingSecret(t *testing.T) {
	c := NewClient(config.Paystack{BaseURL: "http://127.0.0.1:1"})
	_, err := c.Verify(context.Background(), "ref")
	assert.ErrorIs(t, err, ErrMisconfigured)
}
