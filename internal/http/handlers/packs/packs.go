// Package packs отдает каталог пакетов кредитов с параметрами оплаты.
package packs

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bizplan/internal/catalog"
	"github.com/magabrotheeeer/bizplan/internal/http/response"
)

// Handler обработчик каталога.
type Handler struct {
	log       *slog.Logger
	currency  string
	publicKey string
}

// New создает Handler. currency валюта оплаты, publicKey публичный ключ
// Paystack для формы оплаты на клиенте.
func New(log *slog.Logger, currency, publicKey string) *Handler {
	return &Handler{log: log, currency: currency, publicKey: publicKey}
}

// ServeHTTP godoc
// @Summary Каталог пакетов
// @Description Пакеты кредитов; amount_minor, currency и public_key передаются в форму оплаты.
// @Tags Payments
// @Produce  json
// @Success 200 {object} response.Response
// @Router /packs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{
		"currency":   h.currency,
		"public_key": h.publicKey,
		"packs":      catalog.All(),
	}))
}
