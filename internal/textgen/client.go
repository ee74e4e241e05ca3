// Package textgen клиент внешнего сервиса генерации текста (chat completions).
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"github.com/magabrotheeeer/bizplan/internal/config"
	"github.com/magabrotheeeer/bizplan/internal/models"
)

var (
	// ErrRateLimited сервис ответил 429.
	ErrRateLimited = errors.New("text service rate limited")
	// ErrQuotaExceeded у аккаунта сервиса закончилась квота (402).
	ErrQuotaExceeded = errors.New("text service quota exceeded")
	// ErrUpstream любая другая ошибка сервиса, включая открытый circuit breaker.
	ErrUpstream = errors.New("text service failure")
)

// Client клиент chat-completions API.
type Client struct {
	httpClient  *http.Client
	apiURL      string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	executor    failsafe.Executor[string]
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// NewClient создаёт клиента. Circuit breaker размыкается после 5 ошибок из 10
// и пропускает пробный запрос через 30 секунд.
func NewClient(cfg config.TextGen, log *slog.Logger) *Client {
	breaker := circuitbreaker.NewBuilder[string]().
		HandleIf(func(_ string, err error) bool {
			// 429 и 402 зависят от аккаунта, а не от доступности сервиса.
			return err != nil && !errors.Is(err, ErrRateLimited) && !errors.Is(err, ErrQuotaExceeded) &&
				!errors.Is(err, context.Canceled)
		}).
		WithFailureThresholdRatio(5, 10).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			log.Warn("text service circuit breaker state changed",
				slog.String("from", e.OldState.String()),
				slog.String("to", e.NewState.String()))
		}).
		Build()

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		apiURL:      strings.TrimRight(cfg.APIURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		executor:    failsafe.With[string](breaker),
	}
}

// GeneratePlan генерирует текст бизнес-плана по данным формы.
func (c *Client) GeneratePlan(ctx context.Context, data models.BusinessData) (string, error) {
	const op = "textgen.GeneratePlan"
	plan, err := c.executor.WithContext(ctx).Get(func() (string, error) {
		return c.complete(ctx, []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(data)},
		})
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			err = fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

func (c *Client) complete(ctx context.Context, messages []message) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return "", ErrRateLimited
	case http.StatusPaymentRequired:
		return "", ErrQuotaExceeded
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstream)
	}
	return cr.Choices[0].Message.Content, nil
}
