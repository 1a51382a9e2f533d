// Package models defines client-side data models used by the AirPass CLI.
package models

import "time"

// PendingExposure is an exposure logged while the server was unreachable.
// Payload holds the JSON request body exactly as it will be replayed.
type PendingExposure struct {
	ID        string
	UserKey   string
	Payload   []byte
	Timestamp int64
	Attempts  int
	LastError string
	CreatedAt time.Time
}
