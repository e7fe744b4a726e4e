package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/models"
	"github.com/emirkoc/shortlink/internal/storage"
)

const (
	defaultWindowDays = 7
	maxWindowDays     = 365
)

// ClickService records resolved visits and serves the analytics built on
// them.
type ClickService struct {
	urls   storage.URLStore
	clicks storage.ClickStore
	logger *zap.Logger
	now    func() time.Time
}

func NewClickService(urls storage.URLStore, clicks storage.ClickStore, logger *zap.Logger) *ClickService {
	return &ClickService{
		urls:   urls,
		clicks: clicks,
		logger: logger,
		now:    time.Now,
	}
}

// Record persists one visit. The event row is written before the counter
// update: a lost counter increment can be reconstructed from events, a lost
// event cannot.
func (s *ClickService) Record(ctx context.Context, urlID, ip, userAgent, referer string) error {
	event := storage.ClickEvent{
		ID:        uuid.NewString(),
		URLID:     urlID,
		IPAddress: ip,
		UserAgent: userAgent,
		Referer:   referer,
		ClickedAt: s.now(),
	}

	if err := s.clicks.InsertEvent(ctx, event); err != nil {
		return fmt.Errorf("insert click event: %w", err)
	}

	if err := s.clicks.IncrementClicks(ctx, urlID); err != nil {
		s.logger.Error("increment click count", zap.String("url_id", urlID), zap.Error(err))
		return fmt.Errorf("increment click count: %w", err)
	}
	return nil
}

// Aggregate builds the trailing-window analytics for all URLs of an owner.
// The output always holds exactly windowDays entries per series, oldest
// first, with zero rows for days without events.
func (s *ClickService) Aggregate(ctx context.Context, ownerID string, windowDays int) (*models.AnalyticsResponse, error) {
	if windowDays < 1 {
		windowDays = defaultWindowDays
	}
	if windowDays > maxWindowDays {
		windowDays = maxWindowDays
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(windowDays - 1))

	buckets, err := s.clicks.DailyStats(ctx, ownerID, from)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]storage.DailyBucket, len(buckets))
	for _, b := range buckets {
		byDay[b.Day.UTC().Truncate(24*time.Hour)] = b
	}

	resp := &models.AnalyticsResponse{
		DailyClicks:         make([]models.DailyPoint, 0, windowDays),
		DailyUniqueVisitors: make([]models.DailyPoint, 0, windowDays),
	}
	for day := from; !day.After(today); day = day.AddDate(0, 0, 1) {
		b := byDay[day]
		date := day.Format("2006-01-02")
		resp.DailyClicks = append(resp.DailyClicks, models.DailyPoint{Date: date, Count: b.Clicks})
		resp.DailyUniqueVisitors = append(resp.DailyUniqueVisitors, models.DailyPoint{Date: date, Count: b.Visitors})
	}

	resp.TotalClicks, resp.TotalUniqueVisitors, err = s.clicks.WindowTotals(ctx, ownerID, from)
	if err != nil {
		return nil, err
	}

	resp.TotalURLs, resp.ActiveURLs, err = s.urls.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// URLStats is the per-URL summary, available only to the record's owner.
func (s *ClickService) URLStats(ctx context.Context, urlID, ownerID string) (*models.URLStatsResponse, error) {
	record, err := s.urls.FindByID(ctx, urlID, ownerID)
	if err != nil {
		return nil, err
	}

	summary, err := s.clicks.URLSummary(ctx, urlID)
	if err != nil {
		return nil, err
	}

	return &models.URLStatsResponse{
		URLID:          record.ID,
		OriginalURL:    record.OriginalURL,
		ShortCode:      record.ShortCode,
		CustomAlias:    record.CustomAlias,
		ClickCount:     record.ClickCount,
		TotalClicks:    summary.TotalClicks,
		UniqueVisitors: summary.UniqueVisitors,
		LastClick:      summary.LastClick,
		CreatedAt:      record.CreatedAt,
		ExpiresAt:      record.ExpiresAt,
	}, nil
}
