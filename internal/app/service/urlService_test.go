package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/storage"
)

func newTestURLService(t *testing.T) (*URLService, *storage.MemoryStorage) {
	t.Helper()

	store, err := storage.CreateMemoryStorage()
	require.NoError(t, err)

	resolver := NewCodeResolver(store, NewRandomGenerator(), 6)
	return NewURLService(store, resolver, zap.NewNop()), store
}

func TestURLService_CreateURLRecord(t *testing.T) {
	service, _ := newTestURLService(t)

	record, err := service.CreateURLRecord(context.Background(), "http://example.com", "user-id", "", nil)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "http://example.com", record.OriginalURL)
	assert.Equal(t, "user-id", record.OwnerID)
	assert.Len(t, record.ShortCode, 6)
	assert.Empty(t, record.CustomAlias)
	assert.True(t, record.IsActive)

	// round trip through the public lookup
	found, err := service.GetURLByCode(context.Background(), record.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
}

func TestURLService_CreateURLRecordWithAlias(t *testing.T) {
	service, _ := newTestURLService(t)

	record, err := service.CreateURLRecord(context.Background(), "http://example.com", "user-id", "ex1", nil)
	require.NoError(t, err)

	assert.Equal(t, "ex1", record.ShortCode)
	assert.Equal(t, "ex1", record.CustomAlias)

	found, err := service.GetURLByCode(context.Background(), "ex1")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", found.OriginalURL)
}

func TestURLService_CreateURLRecordAliasTaken(t *testing.T) {
	service, _ := newTestURLService(t)

	_, err := service.CreateURLRecord(context.Background(), "http://example.com", "user-id", "dup", nil)
	require.NoError(t, err)

	_, err = service.CreateURLRecord(context.Background(), "http://other.com", "other-user", "dup", nil)
	assert.ErrorIs(t, err, ErrAliasTaken)
}

func TestURLService_CreateURLRecordInvalidURL(t *testing.T) {
	service, _ := newTestURLService(t)

	for _, raw := range []string{"", "not-a-url", "example.com/no-scheme", "http://"} {
		_, err := service.CreateURLRecord(context.Background(), raw, "user-id", "", nil)
		assert.ErrorIs(t, err, ErrInvalidURL, "input %q", raw)
	}
}

func TestURLService_UpdateURLRecord(t *testing.T) {
	service, _ := newTestURLService(t)

	expiry := time.Now().Add(24 * time.Hour)
	record, err := service.CreateURLRecord(context.Background(), "http://example.com", "user-id", "", &expiry)
	require.NoError(t, err)

	alias := "renamed"
	inactive := false
	updated, err := service.UpdateURLRecord(context.Background(), record.ID, "user-id", storage.URLUpdate{
		CustomAlias: &alias,
		IsActive:    &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.CustomAlias)
	assert.False(t, updated.IsActive)
	// untouched fields keep their values
	assert.Equal(t, "http://example.com", updated.OriginalURL)
	require.NotNil(t, updated.ExpiresAt)

	// sending null clears the expiry
	updated, err = service.UpdateURLRecord(context.Background(), record.ID, "user-id", storage.URLUpdate{
		ExpiresAt: storage.OptionalTime{Set: true, Value: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ExpiresAt)
}

func TestURLService_UpdateURLRecordEmptyAlias(t *testing.T) {
	service, _ := newTestURLService(t)

	record, err := service.CreateURLRecord(context.Background(), "http://example.com", "user-id", "", nil)
	require.NoError(t, err)

	empty := ""
	_, err = service.UpdateURLRecord(context.Background(), record.ID, "user-id", storage.URLUpdate{CustomAlias: &empty})
	assert.ErrorIs(t, err, ErrInvalidAlias)
}

func TestURLService_UpdateURLRecordAliasTaken(t *testing.T) {
	service, _ := newTestURLService(t)

	_, err := service.CreateURLRecord(context.Background(), "http://first.com", "user-id", "first", nil)
	require.NoError(t, err)

	second, err := service.CreateURLRecord(context.Background(), "http://second.com", "user-id", "", nil)
	require.NoError(t, err)

	alias := "first"
	_, err = service.UpdateURLRecord(context.Background(), second.ID, "user-id", storage.URLUpdate{CustomAlias: &alias})
	assert.ErrorIs(t, err, ErrAliasTaken)
}

func TestURLService_UpdateURLRecordKeepOwnAlias(t *testing.T) {
	service, _ := newTestURLService(t)

	record, err := service.CreateURLRecord(context.Background(), "http://example.com", "user-id", "mine", nil)
	require.NoError(t, err)

	// re-submitting the current alias is not a conflict
	alias := "mine"
	updated, err := service.UpdateURLRecord(context.Background(), record.ID, "user-id", storage.URLUpdate{CustomAlias: &alias})
	require.NoError(t, err)
	assert.Equal(t, "mine", updated.CustomAlias)
}

func TestURLService_UpdateURLRecordWrongOwner(t *testing.T) {
	service, _ := newTestURLService(t)

	record, err := service.CreateURLRecord(context.Background(), "http://example.com", "user-id", "", nil)
	require.NoError(t, err)

	active := false
	_, err = service.UpdateURLRecord(context.Background(), record.ID, "other-user", storage.URLUpdate{IsActive: &active})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestURLService_DeleteURLRecord(t *testing.T) {
	service, _ := newTestURLService(t)

	record, err := service.CreateURLRecord(context.Background(), "http://example.com", "user-id", "gone", nil)
	require.NoError(t, err)

	require.ErrorIs(t, service.DeleteURLRecord(context.Background(), record.ID, "other-user"), storage.ErrNotFound)

	require.NoError(t, service.DeleteURLRecord(context.Background(), record.ID, "user-id"))

	_, err = service.GetURLByCode(context.Background(), "gone")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestURLService_GetUserURLsPagination(t *testing.T) {
	service, _ := newTestURLService(t)

	for i := 0; i < 25; i++ {
		_, err := service.CreateURLRecord(context.Background(), fmt.Sprintf("http://example.com/%d", i), "user-id", "", nil)
		require.NoError(t, err)
	}

	records, total, err := service.GetUserURLs(context.Background(), "user-id", 2, 10, "")
	require.NoError(t, err)
	assert.Len(t, records, 10)
	assert.Equal(t, int64(25), total)

	records, total, err = service.GetUserURLs(context.Background(), "user-id", 3, 10, "")
	require.NoError(t, err)
	assert.Len(t, records, 5)
	assert.Equal(t, int64(25), total)

	// out of range pages come back empty, not as an error
	records, _, err = service.GetUserURLs(context.Background(), "user-id", 99, 10, "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestURLService_GetUserURLsSearch(t *testing.T) {
	service, _ := newTestURLService(t)

	_, err := service.CreateURLRecord(context.Background(), "http://example.com/docs", "user-id", "", nil)
	require.NoError(t, err)
	_, err = service.CreateURLRecord(context.Background(), "http://other.com/blog", "user-id", "", nil)
	require.NoError(t, err)

	records, total, err := service.GetUserURLs(context.Background(), "user-id", 1, 10, "EXAMPLE")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, "http://example.com/docs", records[0].OriginalURL)
}

func TestURLService_GetUserURLsIsolation(t *testing.T) {
	service, _ := newTestURLService(t)

	_, err := service.CreateURLRecord(context.Background(), "http://example.com", "user-a", "", nil)
	require.NoError(t, err)

	records, total, err := service.GetUserURLs(context.Background(), "user-b", 1, 10, "")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, records)
}

func TestURLService_PingContext(t *testing.T) {
	service, _ := newTestURLService(t)

	assert.NoError(t, service.PingContext(context.Background()))
}
