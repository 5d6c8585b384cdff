// Package store defines the persistence ports for the tip history and
// creator profile. The record log is append-only and capacity-bounded:
// once the limit is exceeded the oldest records are silently evicted.
package store

import (
	"context"
	"errors"

	"tipjar/internal/core"
)

// DefaultHistoryLimit bounds the retained tip history. Old records
// beyond the cap are dropped, not archived.
const DefaultHistoryLimit = 50

var ErrNotFound = errors.New("record not found")

// RecordRepository is the single writer of the tip history. Implementations
// assign ID and Timestamp on Append; List returns a newest-first snapshot
// that callers may not rely on being live.
type RecordRepository interface {
	Append(ctx context.Context, draft core.RecordDraft) (*core.Record, error)
	List(ctx context.Context) ([]core.Record, error)
	Clear(ctx context.Context) error
	FindByID(ctx context.Context, id string) (*core.Record, error)
}

// ProfileRepository persists the creator profile as a single keyed blob.
// Load returns the default profile when nothing has been saved.
type ProfileRepository interface {
	SaveProfile(ctx context.Context, p core.Profile) error
	LoadProfile(ctx context.Context) (core.Profile, error)
	ClearProfile(ctx context.Context) error
}
