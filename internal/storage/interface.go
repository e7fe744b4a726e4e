// Package storage defines the persistent records of the shortener and the
// store interfaces implemented by the in-memory and Postgres backends.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrConflict is returned when an insert or update violates a uniqueness
// constraint (short code, custom alias, username or email).
var ErrConflict = errors.New("data conflict")

// ErrNotFound is returned when no record matches the lookup filter. For
// ownership-filtered operations a non-owner's request is indistinguishable
// from a missing record.
var ErrNotFound = errors.New("record not found")

// URLStore is the registry of short code to URL mappings.
type URLStore interface {
	// Insert stores a new record. ErrConflict signals that the short code
	// or alias lost a race against a concurrent insert.
	Insert(context.Context, URLRecord) (*URLRecord, error)
	// CodeExists reports whether a code is taken in the combined
	// shortCode/customAlias namespace.
	CodeExists(context.Context, string) (bool, error)
	// FindByCode resolves a visitor-supplied string against shortCode OR
	// customAlias. ErrNotFound when absent.
	FindByCode(context.Context, string) (*URLRecord, error)
	// FindByID returns the record only when it belongs to ownerID.
	FindByID(ctx context.Context, id, ownerID string) (*URLRecord, error)
	// Update applies a partial update, filtered by (id, ownerID).
	Update(ctx context.Context, id, ownerID string, upd URLUpdate) (*URLRecord, error)
	// Delete removes the record and cascades to its click events.
	Delete(ctx context.Context, id, ownerID string) error
	// List pages through an owner's records, newest first, optionally
	// filtered by a case-insensitive substring over originalURL and alias.
	List(ctx context.Context, ownerID string, offset, limit int, search string) ([]URLRecord, int64, error)
	// CountByOwner returns total and active record counts for an owner.
	CountByOwner(ctx context.Context, ownerID string) (total, active int64, err error)
	PingContext(context.Context) error
}

// ClickStore persists click events and serves the aggregates built on them.
type ClickStore interface {
	InsertEvent(context.Context, ClickEvent) error
	// IncrementClicks bumps the denormalized counter on the owning URL.
	IncrementClicks(ctx context.Context, urlID string) error
	// DailyStats returns per-day clicks and distinct visitors for all URLs
	// of an owner, from the given instant onward. Days without events are
	// not emitted here; the aggregator zero-fills them.
	DailyStats(ctx context.Context, ownerID string, from time.Time) ([]DailyBucket, error)
	// WindowTotals computes clicks and distinct visitors over the whole
	// window; the visitor total is not a sum of the daily buckets.
	WindowTotals(ctx context.Context, ownerID string, from time.Time) (clicks, visitors int64, err error)
	// URLSummary aggregates the full history of one URL.
	URLSummary(ctx context.Context, urlID string) (*ClickSummary, error)
}

// UserStore backs the authentication collaborator.
type UserStore interface {
	// CreateUser stores a new account. ErrConflict when username or email
	// are already registered.
	CreateUser(context.Context, UserRecord) (*UserRecord, error)
	FindByUsername(ctx context.Context, username string) (*UserRecord, error)
	FindUserByID(ctx context.Context, id string) (*UserRecord, error)
}
