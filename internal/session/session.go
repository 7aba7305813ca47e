package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session ID has no stored data.
var ErrNotFound = errors.New("session not found")

// Data is the server-side state bound to a browser cookie.
type Data struct {
	LoggedIn bool   `json:"user_logged_in"`
	Email    string `json:"user_email,omitempty"`
}

// Store persists session data by opaque ID.
type Store interface {
	Load(ctx context.Context, id string) (Data, error)
	Save(ctx context.Context, id string, data Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
