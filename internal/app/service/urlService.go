package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/storage"
)

// Pagination bounds for listing requests. Out of range values are clamped
// rather than rejected.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// URLService is the URL registry: it owns creation, partial updates,
// deletion, lookup and listing of short URL records.
type URLService struct {
	store    storage.URLStore
	resolver *CodeResolver
	logger   *zap.Logger
}

func NewURLService(store storage.URLStore, resolver *CodeResolver, logger *zap.Logger) *URLService {
	return &URLService{
		store:    store,
		resolver: resolver,
		logger:   logger,
	}
}

// validateOriginalURL accepts only syntactically valid absolute URLs.
func validateOriginalURL(raw string) error {
	if raw == "" {
		return ErrInvalidURL
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// CreateURLRecord validates the original URL, acquires a code through the
// resolver and inserts the record. When a generated code loses the insert
// race against a concurrent creation, generation is retried once; a custom
// alias losing the same race is reported as ErrAliasTaken.
func (s *URLService) CreateURLRecord(ctx context.Context, originalURL, ownerID, customAlias string, expiresAt *time.Time) (*storage.URLRecord, error) {
	if err := validateOriginalURL(originalURL); err != nil {
		return nil, err
	}

	isCustom := customAlias != ""
	code, err := s.resolver.Reserve(ctx, customAlias, isCustom)
	if err != nil {
		return nil, err
	}

	record := storage.URLRecord{
		ID:          uuid.NewString(),
		OriginalURL: originalURL,
		ShortCode:   code,
		OwnerID:     ownerID,
		IsActive:    true,
		ExpiresAt:   expiresAt,
	}
	if isCustom {
		record.CustomAlias = customAlias
	}

	created, err := s.store.Insert(ctx, record)
	if errors.Is(err, storage.ErrConflict) {
		if isCustom {
			return nil, ErrAliasTaken
		}

		// Lost the unique-constraint race on a generated code. One more
		// generation round is enough: a second loss in a row points at a
		// store problem, not bad luck.
		code, err = s.resolver.Reserve(ctx, "", false)
		if err != nil {
			return nil, err
		}
		record.ShortCode = code
		created, err = s.store.Insert(ctx, record)
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrGenerationExhausted
		}
	}
	if err != nil {
		s.logger.Error("unable to insert url record", zap.Error(err))
		return nil, err
	}

	return created, nil
}

// UpdateURLRecord applies a partial update under the (id, ownerID) filter.
// A supplied alias is re-validated against all other records before the
// write; the unique constraint backs the remaining race window.
func (s *URLService) UpdateURLRecord(ctx context.Context, id, ownerID string, upd storage.URLUpdate) (*storage.URLRecord, error) {
	if upd.CustomAlias != nil {
		if *upd.CustomAlias == "" {
			return nil, ErrInvalidAlias
		}
		existing, err := s.store.FindByCode(ctx, *upd.CustomAlias)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrAliasTaken
		}
	}

	record, err := s.store.Update(ctx, id, ownerID, upd)
	if errors.Is(err, storage.ErrConflict) {
		return nil, ErrAliasTaken
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteURLRecord removes the record and, by cascade, its click events.
func (s *URLService) DeleteURLRecord(ctx context.Context, id, ownerID string) error {
	return s.store.Delete(ctx, id, ownerID)
}

// GetURLByCode resolves a visitor-supplied string against the combined
// shortCode/customAlias namespace. storage.ErrNotFound is a normal outcome
// for the redirect path, not a failure.
func (s *URLService) GetURLByCode(ctx context.Context, code string) (*storage.URLRecord, error) {
	return s.store.FindByCode(ctx, code)
}

// GetURLByID returns the record only to its owner.
func (s *URLService) GetURLByID(ctx context.Context, id, ownerID string) (*storage.URLRecord, error) {
	return s.store.FindByID(ctx, id, ownerID)
}

// GetUserURLs lists an owner's records newest first with offset pagination.
func (s *URLService) GetUserURLs(ctx context.Context, ownerID string, page, pageSize int, search string) ([]storage.URLRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	offset := (page - 1) * pageSize
	return s.store.List(ctx, ownerID, offset, pageSize, search)
}

// PingContext reports store health.
func (s *URLService) PingContext(ctx context.Context) error {
	return s.store.PingContext(ctx)
}
