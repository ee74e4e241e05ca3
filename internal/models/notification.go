package models

// Типы событий о кредитах.
const (
	EventCreditsAdded = "credits.added"
	EventCreditsLow   = "credits.low"
)

// CreditEvent сообщение в очередь уведомлений.
type CreditEvent struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Balance   int    `json:"balance"`
	Added     int    `json:"added,omitempty"`
	Pack      string `json:"pack,omitempty"`
	Reference string `json:"reference,omitempty"`
}
