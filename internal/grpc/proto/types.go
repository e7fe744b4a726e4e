// Package proto holds the message types of the shortener gRPC service.
package proto

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the account identity and a bearer token.
type AuthResponse struct {
	UserId   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// CreateURLRequest shortens one URL.
type CreateURLRequest struct {
	OriginalUrl string `json:"original_url"`
	CustomAlias string `json:"custom_alias"`
	ExpiresAt   string `json:"expires_at"` // RFC 3339, empty for none
}

// CreateURLResponse echoes the assigned identifiers.
type CreateURLResponse struct {
	UrlId       string `json:"url_id"`
	ShortUrl    string `json:"short_url"`
	ShortCode   string `json:"short_code"`
	CustomAlias string `json:"custom_alias"`
}

// ResolveURLRequest resolves a short code without issuing an HTTP redirect.
type ResolveURLRequest struct {
	ShortCode string `json:"short_code"`
}

// ResolveURLResponse reports the redirect decision for a code.
type ResolveURLResponse struct {
	OriginalUrl string `json:"original_url"`
	Found       bool   `json:"found"`
	IsActive    bool   `json:"is_active"`
	IsExpired   bool   `json:"is_expired"`
}

// ListURLsRequest pages through the caller's short URLs.
type ListURLsRequest struct {
	Page     int32  `json:"page"`
	PageSize int32  `json:"page_size"`
	Search   string `json:"search"`
}

// URLRecord is one short URL in list responses.
type URLRecord struct {
	UrlId       string `json:"url_id"`
	OriginalUrl string `json:"original_url"`
	ShortUrl    string `json:"short_url"`
	ShortCode   string `json:"short_code"`
	CustomAlias string `json:"custom_alias"`
	ClickCount  int64  `json:"click_count"`
	IsActive    bool   `json:"is_active"`
	ExpiresAt   string `json:"expires_at"`
	CreatedAt   string `json:"created_at"`
}

// ListURLsResponse carries one page of records plus the total count.
type ListURLsResponse struct {
	Urls  []*URLRecord `json:"urls"`
	Total int64        `json:"total"`
	Pages int64        `json:"pages"`
}

// UpdateURLRequest changes the mutable fields of a short URL. Empty strings
// keep the stored value; ClearExpiresAt removes the expiry; IsActive is only
// applied when SetIsActive is true.
type UpdateURLRequest struct {
	UrlId          string `json:"url_id"`
	CustomAlias    string `json:"custom_alias"`
	ExpiresAt      string `json:"expires_at"` // RFC 3339
	ClearExpiresAt bool   `json:"clear_expires_at"`
	SetIsActive    bool   `json:"set_is_active"`
	IsActive       bool   `json:"is_active"`
}

// UpdateURLResponse returns the record after the update.
type UpdateURLResponse struct {
	Url *URLRecord `json:"url"`
}

// DeleteURLRequest removes a short URL and its click history.
type DeleteURLRequest struct {
	UrlId string `json:"url_id"`
}

// DeleteURLResponse acknowledges a delete.
type DeleteURLResponse struct {
	Deleted bool `json:"deleted"`
}

// AnalyticsRequest asks for the caller's dashboard over a day window.
type AnalyticsRequest struct {
	Days int32 `json:"days"`
}

// DailyPoint is one calendar day in an analytics series.
type DailyPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// AnalyticsResponse is the dashboard aggregate.
type AnalyticsResponse struct {
	DailyClicks         []*DailyPoint `json:"daily_clicks"`
	DailyUniqueVisitors []*DailyPoint `json:"daily_unique_visitors"`
	TotalClicks         int64         `json:"total_clicks"`
	TotalUniqueVisitors int64         `json:"total_unique_visitors"`
	TotalUrls           int64         `json:"total_urls"`
	ActiveUrls          int64         `json:"active_urls"`
}

// URLStatsRequest asks for the click summary of one short URL.
type URLStatsRequest struct {
	UrlId string `json:"url_id"`
}

// URLStatsResponse is the click summary of one short URL.
type URLStatsResponse struct {
	UrlId          string `json:"url_id"`
	OriginalUrl    string `json:"original_url"`
	ShortCode      string `json:"short_code"`
	ClickCount     int64  `json:"click_count"`
	TotalClicks    int64  `json:"total_clicks"`
	UniqueVisitors int64  `json:"unique_visitors"`
	LastClick      string `json:"last_click"`
}

// PingRequest probes storage health.
type PingRequest struct{}

// PingResponse reports storage health.
type PingResponse struct {
	StorageAvailable bool `json:"storage_available"`
}
