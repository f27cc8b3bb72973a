// Package typing tracks short-lived "is typing" presence per chat.
// Entries are soft state: anything older than the freshness window
// reads as not typing, and a background sweep keeps the memory backend
// from accumulating stale entries.
package typing

import "time"

const (
	// Freshness is how long a typing signal stays valid without renewal.
	Freshness = 5 * time.Second
	// SweepInterval is how often stale entries are purged.
	SweepInterval = 10 * time.Second
)

// Status is the poll answer for one chat.
type Status struct {
	Typing   bool   `json:"typing"`
	UserName string `json:"userName,omitempty"`
}

// Store holds who is currently composing a message in which chat.
type Store interface {
	SetTyping(chatID, userName string) error
	ClearTyping(chatID string) error
	IsTyping(chatID string) (Status, error)
	Close() error
}
