// Package models defines the request and response structures shared by the
// HTTP handlers and the gRPC surface.
package models

import (
	"time"

	"github.com/emirkoc/shortlink/internal/storage"
)

// CreateURLRequest is the body of POST /api/urls.
type CreateURLRequest struct {
	OriginalURL string     `json:"originalUrl"`
	CustomAlias string     `json:"customAlias,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// CreateURLResponse echoes the assigned identifiers of a new short URL.
type CreateURLResponse struct {
	ShortURL    string `json:"shortUrl"`
	URLID       string `json:"urlId"`
	ShortCode   string `json:"shortCode"`
	CustomAlias string `json:"customAlias,omitempty"`
}

// UpdateURLRequest is the body of PUT /api/urls/{id}. Omitted fields keep
// their previous value; expiresAt may be sent as null to clear the expiry.
type UpdateURLRequest struct {
	CustomAlias *string              `json:"customAlias"`
	ExpiresAt   storage.OptionalTime `json:"expiresAt"`
	IsActive    *bool                `json:"isActive"`
}

// URLResponse is one record in list and update responses.
type URLResponse struct {
	ID          string     `json:"id"`
	OriginalURL string     `json:"originalUrl"`
	ShortCode   string     `json:"shortCode"`
	CustomAlias string     `json:"customAlias,omitempty"`
	ShortURL    string     `json:"shortUrl"`
	ClickCount  int64      `json:"clickCount"`
	IsActive    bool       `json:"isActive"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Pagination describes an offset-paginated result set.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	Pages    int64 `json:"pages"`
}

// ListURLsResponse is the body of GET /api/urls.
type ListURLsResponse struct {
	URLs       []URLResponse `json:"urls"`
	Pagination Pagination    `json:"pagination"`
}

// DailyPoint is one calendar day in an analytics series, oldest first.
type DailyPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// AnalyticsResponse is the body of GET /api/urls/analytics. Both series
// cover exactly the requested window, zero-filled; the visitor total is
// computed over the whole window, not summed from the buckets.
type AnalyticsResponse struct {
	DailyClicks         []DailyPoint `json:"dailyClicks"`
	DailyUniqueVisitors []DailyPoint `json:"dailyUniqueVisitors"`
	TotalClicks         int64        `json:"totalClicks"`
	TotalUniqueVisitors int64        `json:"totalUniqueVisitors"`
	TotalURLs           int64        `json:"totalUrls"`
	ActiveURLs          int64        `json:"activeUrls"`
}

// URLStatsResponse is the body of GET /api/urls/{id}/stats.
type URLStatsResponse struct {
	URLID          string     `json:"urlId"`
	OriginalURL    string     `json:"originalUrl"`
	ShortCode      string     `json:"shortCode"`
	CustomAlias    string     `json:"customAlias,omitempty"`
	ClickCount     int64      `json:"clickCount"`
	TotalClicks    int64      `json:"totalClicks"`
	UniqueVisitors int64      `json:"uniqueVisitors"`
	LastClick      *time.Time `json:"lastClick,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse carries the account and a bearer token.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// ErrorResponse is the uniform error body of the HTTP API.
type ErrorResponse struct {
	Error string `json:"error"`
}
