package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/app/server"
	"github.com/emirkoc/shortlink/internal/app/service"
	"github.com/emirkoc/shortlink/internal/models"
	"github.com/emirkoc/shortlink/internal/storage"
)

const testBaseURL = "http://sho.rt"

type testEnv struct {
	router *chi.Mux
	store  *storage.MemoryStorage
	token  string
	userID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.CreateMemoryStorage()
	require.NoError(t, err)

	logger := zap.NewNop()
	resolver := service.NewCodeResolver(store, service.NewRandomGenerator(), 6)
	urls := service.NewURLService(store, resolver, logger)
	clicks := service.NewClickService(store, store, logger)
	redirect := service.NewRedirectResolver(store, clicks, logger)
	auth := service.NewAuth(store, "test-secret")

	router := server.Init(testBaseURL, logger, false, urls, clicks, redirect, auth)

	env := &testEnv{router: router, store: store}

	user, token, err := auth.Register(context.Background(), "alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	env.token = token
	env.userID = user.ID

	return env
}

func (e *testEnv) do(t *testing.T, method, target string, body any, authorized bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createURL(t *testing.T, body models.CreateURLRequest) models.CreateURLResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/urls", body, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp models.CreateURLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "hunter22",
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "bob", created.User.Username)
	assert.NotEmpty(t, created.Token)

	rec = env.do(t, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Username: "bob", Password: "hunter22",
	}, false)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Username: "bob", Password: "wrong",
	}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", models.RegisterRequest{Username: "x"}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// duplicate username
	rec = env.do(t, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Username: "alice", Email: "second@example.com", Password: "pw123456",
	}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/profile", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, env.userID, user.ID)
	assert.Equal(t, "alice", user.Username)

	rec = env.do(t, http.MethodGet, "/api/auth/profile", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateURL(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createURL(t, models.CreateURLRequest{OriginalURL: "http://example.com"})

	assert.Len(t, resp.ShortCode, 6)
	assert.Equal(t, testBaseURL+"/"+resp.ShortCode, resp.ShortURL)
	assert.NotEmpty(t, resp.URLID)
	assert.Empty(t, resp.CustomAlias)
}

func TestCreateURLWithAlias(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createURL(t, models.CreateURLRequest{OriginalURL: "http://example.com", CustomAlias: "docs"})
	assert.Equal(t, "docs", resp.ShortCode)
	assert.Equal(t, "docs", resp.CustomAlias)

	rec := env.do(t, http.MethodPost, "/api/urls", models.CreateURLRequest{
		OriginalURL: "http://other.com", CustomAlias: "docs",
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.NotEmpty(t, errResp.Error)
}

func TestCreateURLInvalid(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/urls", models.CreateURLRequest{OriginalURL: "not-a-url"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/urls", models.CreateURLRequest{OriginalURL: "http://example.com"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRedirect(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createURL(t, models.CreateURLRequest{OriginalURL: "http://example.com/target"})

	rec := env.do(t, http.MethodGet, "/"+resp.ShortCode, nil, false)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "http://example.com/target", rec.Header().Get("Location"))

	// the click is recorded behind the response
	require.Eventually(t, func() bool {
		record, err := env.store.FindByID(context.Background(), resp.URLID, env.userID)
		return err == nil && record.ClickCount == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRedirectNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/nosuch", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedirectInactive(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createURL(t, models.CreateURLRequest{OriginalURL: "http://example.com"})

	rec := env.do(t, http.MethodPut, "/api/urls/"+resp.URLID, map[string]any{"isActive": false}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/"+resp.ShortCode, nil, false)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestRedirectExpired(t *testing.T) {
	env := newTestEnv(t)

	past := time.Now().Add(-time.Hour)
	resp := env.createURL(t, models.CreateURLRequest{OriginalURL: "http://example.com", ExpiresAt: &past})

	rec := env.do(t, http.MethodGet, "/"+resp.ShortCode, nil, false)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestListURLs(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 12; i++ {
		env.createURL(t, models.CreateURLRequest{OriginalURL: fmt.Sprintf("http://example.com/%d", i)})
	}

	rec := env.do(t, http.MethodGet, "/api/urls?page=2&pageSize=5", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var list models.ListURLsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))

	assert.Len(t, list.URLs, 5)
	assert.Equal(t, 2, list.Pagination.Page)
	assert.Equal(t, 5, list.Pagination.PageSize)
	assert.Equal(t, int64(12), list.Pagination.Total)
	assert.Equal(t, int64(3), list.Pagination.Pages)

	for _, u := range list.URLs {
		assert.Equal(t, testBaseURL+"/"+u.ShortCode, u.ShortURL)
	}
}

func TestListURLsSearch(t *testing.T) {
	env := newTestEnv(t)

	env.createURL(t, models.CreateURLRequest{OriginalURL: "http://example.com/docs"})
	env.createURL(t, models.CreateURLRequest{OriginalURL: "http://other.org/blog"})

	rec := env.do(t, http.MethodGet, "/api/urls?search=docs", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var list models.ListURLsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.URLs, 1)
	assert.Equal(t, "http://example.com/docs", list.URLs[0].OriginalURL)
}

func TestUpdateURL(t *testing.T) {
	env := newTestEnv(t)

	expiry := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	resp := env.createURL(t, models.CreateURLRequest{OriginalURL: "http://example.com", ExpiresAt: &expiry})

	rec := env.do(t, http.MethodPut, "/api/urls/"+resp.URLID, map[string]any{"customAlias": "fresh"}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.URLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "fresh", updated.CustomAlias)
	// omitted fields keep their stored values
	require.NotNil(t, updated.ExpiresAt)
	assert.True(t, updated.IsActive)

	// explicit null clears the expiry
	rec = env.do(t, http.MethodPut, "/api/urls/"+resp.URLID, map[string]any{"expiresAt": nil}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Nil(t, updated.ExpiresAt)
}

func TestUpdateURLErrors(t *testing.T) {
	env := newTestEnv(t)

	env.createURL(t, models.CreateURLRequest{OriginalURL: "http://example.com", CustomAlias: "first"})
	second := env.createURL(t, models.CreateURLRequest{OriginalURL: "http://other.com"})

	// blank alias
	rec := env.do(t, http.MethodPut, "/api/urls/"+second.URLID, map[string]any{"customAlias": ""}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// alias owned by another record
	rec = env.do(t, http.MethodPut, "/api/urls/"+second.URLID, map[string]any{"customAlias": "first"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown record
	rec = env.do(t, http.MethodPut, "/api/urls/00000000-0000-0000-0000-000000000000", map[string]any{"customAlias": "x"}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteURL(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createURL(t, models.CreateURLRequest{OriginalURL: "http://example.com"})

	rec := env.do(t, http.MethodDelete, "/api/urls/"+resp.URLID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/urls/"+resp.URLID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/"+resp.ShortCode, nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalytics(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createURL(t, models.CreateURLRequest{OriginalURL: "http://example.com"})

	rec := env.do(t, http.MethodGet, "/"+resp.ShortCode, nil, false)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	require.Eventually(t, func() bool {
		record, err := env.store.FindByID(context.Background(), resp.URLID, env.userID)
		return err == nil && record.ClickCount == 1
	}, time.Second, 10*time.Millisecond)

	rec = env.do(t, http.MethodGet, "/api/urls/analytics?days=7", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report models.AnalyticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Len(t, report.DailyClicks, 7)
	assert.Len(t, report.DailyUniqueVisitors, 7)
	assert.Equal(t, int64(1), report.TotalClicks)
	assert.Equal(t, int64(1), report.TotalUniqueVisitors)
	assert.Equal(t, int64(1), report.TotalURLs)
	assert.Equal(t, int64(1), report.ActiveURLs)
	// today's bucket is last
	assert.Equal(t, int64(1), report.DailyClicks[6].Count)
}

func TestURLStats(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createURL(t, models.CreateURLRequest{OriginalURL: "http://example.com", CustomAlias: "tracked"})

	rec := env.do(t, http.MethodGet, "/tracked", nil, false)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	require.Eventually(t, func() bool {
		record, err := env.store.FindByID(context.Background(), resp.URLID, env.userID)
		return err == nil && record.ClickCount == 1
	}, time.Second, 10*time.Millisecond)

	rec = env.do(t, http.MethodGet, "/api/urls/"+resp.URLID+"/stats", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats models.URLStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))

	assert.Equal(t, resp.URLID, stats.URLID)
	assert.Equal(t, "tracked", stats.ShortCode)
	assert.Equal(t, int64(1), stats.TotalClicks)
	assert.Equal(t, int64(1), stats.UniqueVisitors)
	assert.NotNil(t, stats.LastClick)

	rec = env.do(t, http.MethodGet, "/api/urls/00000000-0000-0000-0000-000000000000/stats", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/ping", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/urls", bytes.NewReader([]byte("{broken")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.token)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// wrong media type
	req = httptest.NewRequest(http.MethodPost, "/api/urls", bytes.NewReader([]byte("x")))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+env.token)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
