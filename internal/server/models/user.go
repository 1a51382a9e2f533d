// Package models defines server-side data models persisted in the database
// and the derived views returned by the services.
package models

import "time"

// User is an account. Email is stored normalised (trimmed, lowercased).
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session binds an opaque bearer token to a user until ExpiresAt.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
