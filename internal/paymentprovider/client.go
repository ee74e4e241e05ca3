// Package paymentprovider клиент платёжного шлюза Paystack (серверная проверка транзакций).
package paymentprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/magabrotheeeer/bizplan/internal/config"
)

var (
	// ErrUnavailable шлюз недоступен или ответил 5xx. Клиент может повторить запрос.
	ErrUnavailable = errors.New("payment gateway unavailable")
	// ErrRejected шлюз не подтвердил транзакцию (не найдена, отклонена).
	ErrRejected = errors.New("payment gateway rejected verification")
	// ErrMisconfigured секретный ключ не задан или не принят шлюзом.
	ErrMisconfigured = errors.New("payment gateway misconfigured")
)

const maxBody = 1 << 20

// Client клиент Paystack. Секретный ключ используется только здесь.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
	executor   failsafe.Executor[*Transaction]
}

// NewClient создаёт клиента Paystack.
func NewClient(cfg config.Paystack) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retry := retrypolicy.NewBuilder[*Transaction]().
		HandleIf(func(_ *Transaction, err error) bool {
			return errors.Is(err, ErrUnavailable)
		}).
		WithBackoff(200*time.Millisecond, 2*time.Second).
		WithMaxRetries(2).
		Build()

	return &Client{
		secretKey:  cfg.SecretKey,
		apiURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   failsafe.With[*Transaction](retry),
	}
}

// Verify запрашивает у шлюза статус транзакции reference.
// Ошибки транспорта и 5xx повторяются; статус платежа не повторяется.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	const op = "paymentprovider.Verify"
	if c.secretKey == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMisconfigured)
	}

	var lastErr error
	tx, err := c.executor.WithContext(ctx).Get(func() (*Transaction, error) {
		tx, err := c.verifyOnce(ctx, reference)
		lastErr = err
		return tx, err
	})
	if err != nil {
		if lastErr != nil {
			err = lastErr
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tx, nil
}

func (c *Client) verifyOnce(ctx context.Context, reference string) (*Transaction, error) {
	endpoint := c.apiURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrMisconfigured, resp.StatusCode)
	}

	var vr verifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: invalid response: %v", ErrUnavailable, err)
	}
	if !vr.Status || vr.Data == nil || resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrRejected, vr.Message)
	}

	return &Transaction{
		Reference: vr.Data.Reference,
		Status:    vr.Data.Status,
		Amount:    vr.Data.Amount,
		Currency:  vr.Data.Currency,
		Email:     vr.Data.Customer.Email,
	}, nil
}
