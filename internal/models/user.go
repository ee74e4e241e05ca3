// Package models содержит доменные структуры: пользователи, кредиты, платежи,
// бизнес-планы, обращения и события уведомлений.
package models

import "time"

// Роли пользователей.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User учётная запись (идентичность для аутентификации).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Banned       bool
	BannedAt     *time.Time
	CreatedAt    time.Time
}

// Principal аутентифицированный пользователь текущего запроса.
type Principal struct {
	UserID string
	Email  string
}

// Profile публичные данные пользователя.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary строка списка пользователей в админке.
type UserSummary struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	IsAdmin      bool       `json:"is_admin"`
	Banned       bool       `json:"banned"`
	BannedAt     *time.Time `json:"banned_at,omitempty"`
	Credits      int        `json:"credits"`
	ProjectCount int        `json:"project_count"`
	CreatedAt    time.Time  `json:"created_at"`
}
