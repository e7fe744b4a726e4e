package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStorage keeps all records in process memory. It backs the service
// when no database DSN is configured and is the workhorse of the unit tests.
type MemoryStorage struct {
	mu     sync.RWMutex
	urls   map[string]URLRecord    // keyed by record ID
	clicks map[string][]ClickEvent // keyed by URL ID
	users  map[string]UserRecord   // keyed by user ID
}

func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		urls:   make(map[string]URLRecord),
		clicks: make(map[string][]ClickEvent),
		users:  make(map[string]UserRecord),
	}, nil
}

func (m *MemoryStorage) codeTakenLocked(code, excludeID string) bool {
	for _, r := range m.urls {
		if r.ID == excludeID {
			continue
		}
		if r.ShortCode == code || (r.CustomAlias != "" && r.CustomAlias == code) {
			return true
		}
	}
	return false
}

func (m *MemoryStorage) Insert(_ context.Context, rec URLRecord) (*URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.codeTakenLocked(rec.ShortCode, "") {
		return nil, ErrConflict
	}
	if rec.CustomAlias != "" && rec.CustomAlias != rec.ShortCode && m.codeTakenLocked(rec.CustomAlias, "") {
		return nil, ErrConflict
	}

	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = rec.CreatedAt

	m.urls[rec.ID] = rec
	return &rec, nil
}

func (m *MemoryStorage) CodeExists(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.codeTakenLocked(code, ""), nil
}

func (m *MemoryStorage) FindByCode(_ context.Context, code string) (*URLRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.urls {
		if r.ShortCode == code || (r.CustomAlias != "" && r.CustomAlias == code) {
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStorage) FindByID(_ context.Context, id, ownerID string) (*URLRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.urls[id]
	if !ok || r.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryStorage) Update(_ context.Context, id, ownerID string, upd URLUpdate) (*URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.urls[id]
	if !ok || r.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	if upd.CustomAlias != nil {
		if m.codeTakenLocked(*upd.CustomAlias, id) {
			return nil, ErrConflict
		}
		r.CustomAlias = *upd.CustomAlias
	}
	if upd.ExpiresAt.Set {
		r.ExpiresAt = upd.ExpiresAt.Value
	}
	if upd.IsActive != nil {
		r.IsActive = *upd.IsActive
	}
	r.UpdatedAt = time.Now()

	m.urls[id] = r
	return &r, nil
}

func (m *MemoryStorage) Delete(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.urls[id]
	if !ok || r.OwnerID != ownerID {
		return ErrNotFound
	}

	delete(m.urls, id)
	delete(m.clicks, r.ID)
	return nil
}

func (m *MemoryStorage) List(_ context.Context, ownerID string, offset, limit int, search string) ([]URLRecord, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]URLRecord, 0)
	needle := strings.ToLower(search)
	for _, r := range m.urls {
		if r.OwnerID != ownerID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.OriginalURL), needle) &&
			!strings.Contains(strings.ToLower(r.CustomAlias), needle) {
			continue
		}
		matched = append(matched, r)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []URLRecord{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *MemoryStorage) CountByOwner(_ context.Context, ownerID string) (int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total, active int64
	for _, r := range m.urls {
		if r.OwnerID != ownerID {
			continue
		}
		total++
		if r.IsActive {
			active++
		}
	}
	return total, active, nil
}

func (m *MemoryStorage) PingContext(_ context.Context) error {
	return nil
}

func (m *MemoryStorage) InsertEvent(_ context.Context, ev ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ev.ClickedAt.IsZero() {
		ev.ClickedAt = time.Now()
	}
	m.clicks[ev.URLID] = append(m.clicks[ev.URLID], ev)
	return nil
}

func (m *MemoryStorage) IncrementClicks(_ context.Context, urlID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.urls[urlID]
	if !ok {
		return ErrNotFound
	}
	r.ClickCount++
	m.urls[urlID] = r
	return nil
}

// ownerEventsLocked collects the events of all URLs owned by ownerID from
// the given instant onward.
func (m *MemoryStorage) ownerEventsLocked(ownerID string, from time.Time) []ClickEvent {
	events := make([]ClickEvent, 0)
	for urlID, evs := range m.clicks {
		r, ok := m.urls[urlID]
		if !ok || r.OwnerID != ownerID {
			continue
		}
		for _, ev := range evs {
			if ev.ClickedAt.Before(from) {
				continue
			}
			events = append(events, ev)
		}
	}
	return events
}

func (m *MemoryStorage) DailyStats(_ context.Context, ownerID string, from time.Time) ([]DailyBucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type agg struct {
		clicks   int64
		visitors map[string]struct{}
	}
	days := make(map[time.Time]*agg)
	for _, ev := range m.ownerEventsLocked(ownerID, from) {
		day := ev.ClickedAt.UTC().Truncate(24 * time.Hour)
		a, ok := days[day]
		if !ok {
			a = &agg{visitors: make(map[string]struct{})}
			days[day] = a
		}
		a.clicks++
		a.visitors[ev.IPAddress] = struct{}{}
	}

	buckets := make([]DailyBucket, 0, len(days))
	for day, a := range days {
		buckets = append(buckets, DailyBucket{Day: day, Clicks: a.clicks, Visitors: int64(len(a.visitors))})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Day.Before(buckets[j].Day) })
	return buckets, nil
}

func (m *MemoryStorage) WindowTotals(_ context.Context, ownerID string, from time.Time) (int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var clicks int64
	visitors := make(map[string]struct{})
	for _, ev := range m.ownerEventsLocked(ownerID, from) {
		clicks++
		visitors[ev.IPAddress] = struct{}{}
	}
	return clicks, int64(len(visitors)), nil
}

func (m *MemoryStorage) URLSummary(_ context.Context, urlID string) (*ClickSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := &ClickSummary{}
	visitors := make(map[string]struct{})
	for _, ev := range m.clicks[urlID] {
		summary.TotalClicks++
		visitors[ev.IPAddress] = struct{}{}
		if summary.LastClick == nil || ev.ClickedAt.After(*summary.LastClick) {
			t := ev.ClickedAt
			summary.LastClick = &t
		}
	}
	summary.UniqueVisitors = int64(len(visitors))
	return summary, nil
}

func (m *MemoryStorage) CreateUser(_ context.Context, u UserRecord) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, ErrConflict
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	m.users[u.ID] = u
	return &u, nil
}

func (m *MemoryStorage) FindByUsername(_ context.Context, username string) (*UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStorage) FindUserByID(_ context.Context, id string) (*UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}
