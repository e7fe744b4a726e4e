package storage

import (
	"encoding/json"
	"time"
)

// URLRecord is the authoritative mapping from a short code (or custom
// alias) to its original URL, together with ownership and click metadata.
type URLRecord struct {
	ID          string     `json:"id"`
	OriginalURL string     `json:"original_url"`
	ShortCode   string     `json:"short_code"`
	CustomAlias string     `json:"custom_alias,omitempty"`
	OwnerID     string     `json:"owner_id"`
	ClickCount  int64      `json:"click_count"`
	IsActive    bool       `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ClickEvent is one resolved visit to a short code. Append-only: events are
// never updated, and are removed only by cascade when the owning URL is deleted.
type ClickEvent struct {
	ID        string    `json:"id"`
	URLID     string    `json:"url_id"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referer   string    `json:"referer,omitempty"`
	ClickedAt time.Time `json:"clicked_at"`
}

// UserRecord is a registered account. Passwords are stored as bcrypt hashes.
type UserRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// OptionalTime distinguishes "field not supplied" from "field supplied as
// null". Set is false when the field was absent; when Set is true a nil
// Value clears the column.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// UnmarshalJSON is only invoked when the key is present in the payload, so
// presence alone flips Set.
func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

// MarshalJSON renders the wrapped value, or null when unset/cleared.
func (o OptionalTime) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// URLUpdate carries a partial update: nil pointer fields are left
// unchanged. ExpiresAt follows OptionalTime semantics and is the only field
// that may be explicitly cleared to null.
type URLUpdate struct {
	CustomAlias *string
	ExpiresAt   OptionalTime
	IsActive    *bool
}

// DailyBucket is one calendar day of click aggregates for an owner.
type DailyBucket struct {
	Day      time.Time
	Clicks   int64
	Visitors int64
}

// ClickSummary aggregates the click history of a single URL.
type ClickSummary struct {
	TotalClicks    int64
	UniqueVisitors int64
	LastClick      *time.Time
}
