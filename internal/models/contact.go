package models

import "time"

// ContactMessage обращение из формы обратной связи.
// Name и Email в базе хранятся зашифрованными.
type ContactMessage struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Message      string     `json:"message"`
	Read         bool       `json:"read"`
	AnonymizedAt *time.Time `json:"anonymized_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
