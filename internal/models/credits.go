package models

import "time"

// CreditBalance баланс кредитов пользователя.
type CreditBalance struct {
	UserID    string    `json:"user_id"`
	Credits   int       `json:"credits"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Статусы платежа.
const (
	PaymentSuccess = "success"
	PaymentPending = "pending"
	PaymentFailed  = "failed"
)

// PaymentRecord запись истории платежей. Reference уникален.
type PaymentRecord struct {
	ID           int64     `json:"id"`
	Reference    string    `json:"reference"`
	PackType     string    `json:"pack_type"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	CreditsAdded int       `json:"credits_added"`
	Status       string    `json:"status"`
	UserID       *string   `json:"user_id,omitempty"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}
