// Package session binds an opaque browser-held token to an authenticated
// phone number. Records live in a pluggable Store; the Manager handles the
// signed cookie and the per-request session state on a gin context.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Record is the persisted part of a session.
type Record struct {
	ID        string
	Phone     string
	ExpiresAt time.Time
}

// Expired reports whether the record is past its expiry at now.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store persists session records. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes records that expired before now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
