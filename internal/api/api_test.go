package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/cyberpress/internal/middleware"
	"github.com/bilgisen/cyberpress/internal/models"
	"github.com/bilgisen/cyberpress/internal/scheduler"
	"github.com/bilgisen/cyberpress/internal/storage"
	"github.com/bilgisen/cyberpress/internal/store"
)

const adminKey = "letmein"

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type stubNews struct{ fail bool }

func (s stubNews) get() (models.NewsResponse, error) {
	if s.fail {
		return models.NewsResponse{Source: models.FallbackSource}, errors.New("feeds down")
	}
	return models.NewsResponse{Items: []models.NewsItem{{ID: "n1", Title: "Hello", Source: "Wire", PublishedAt: now}}}, nil
}

func (s stubNews) FetchAINews(context.Context) (models.NewsResponse, error)      { return s.get() }
func (s stubNews) FetchStartupNews(context.Context) (models.NewsResponse, error) { return s.get() }
func (s stubNews) FetchCryptoNews(context.Context) (models.NewsResponse, error)  { return s.get() }

type stubPrices struct{}

func (stubPrices) FetchTopAssets(context.Context, int) ([]models.CryptoAsset, error) {
	return []models.CryptoAsset{{ID: "bitcoin", Name: "Bitcoin"}}, nil
}

func (stubPrices) FetchHistory(_ context.Context, id string, days int) ([]models.PricePoint, error) {
	if id == "unknown" {
		return nil, errors.New("coingecko: status 404: not found")
	}
	points := make([]models.PricePoint, days)
	for i := range points {
		points[i] = models.PricePoint{Timestamp: now.AddDate(0, 0, i-days), Price: float64(100 + i)}
	}
	return points, nil
}

type stubTools struct{}

func (stubTools) FetchListings(context.Context, int) (map[models.ToolCategory][]models.AITool, error) {
	return map[models.ToolCategory][]models.AITool{models.ToolTextGeneration: {{ID: "t", Name: "T", Rank: 1}}}, nil
}

func (stubTools) DiscoverEmerging(context.Context) ([]models.AITool, error) { return nil, nil }

func (stubTools) FetchTools(_ context.Context, category models.ToolCategory, limit int) ([]models.AITool, error) {
	if category == models.ToolResearch {
		return []models.AITool{{ID: "fallback-research", Category: category, Rank: 1}}, errors.New("github: rate limited")
	}
	list := []models.AITool{{ID: "t1", Category: category, Rank: 1}, {ID: "t2", Category: category, Rank: 2}}
	return list[:min(limit, len(list))], nil
}

type stubCreative struct{}

func (stubCreative) Fetch(context.Context) ([]models.CreativeContent, error) { return nil, nil }

type testServer struct {
	app   *fiber.App
	local *storage.Storage
	jobs  *scheduler.Scheduler
	store *store.Store
}

func newTestServer(t *testing.T, newsFails bool) *testServer {
	t.Helper()

	local := storage.New(storage.NewMemoryBackend(), "test_")
	st := store.New(store.Deps{
		News:     stubNews{fail: newsFails},
		Prices:   stubPrices{},
		Tools:    stubTools{},
		Creative: stubCreative{},
		Storage:  local,
		Now:      func() time.Time { return now },
	})
	jobs := scheduler.New()
	t.Cleanup(jobs.ClearAll)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	SetupRoutes(app, NewHandlers(st, stubPrices{}, stubTools{}, jobs, local, zerolog.Nop()), adminKey)
	return &testServer{app: app, local: local, jobs: jobs, store: st}
}

func (s *testServer) do(t *testing.T, method, path, body string, admin bool) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if admin {
		req.Header.Set(middleware.APIKeyHeader, adminKey)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	resp, body := s.do(t, http.MethodGet, "/api/v1/health", "", false)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestUnknownEndpoint(t *testing.T) {
	s := newTestServer(t, false)
	resp, body := s.do(t, http.MethodGet, "/api/v1/nope", "", false)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Endpoint not found", body["error"])
}

func TestRefreshRequiresAdminKey(t *testing.T) {
	s := newTestServer(t, false)
	resp, _ := s.do(t, http.MethodPost, "/api/v1/refresh", "", false)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshAllReportsSectionErrors(t *testing.T) {
	s := newTestServer(t, true)
	resp, body := s.do(t, http.MethodPost, "/api/v1/refresh", "", true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	sections := body["sections"].(map[string]any)
	aiNews := sections[string(models.SectionAINews)].(map[string]any)
	assert.Equal(t, "Failed to fetch AI news", aiNews["error"])
	crypto := sections[string(models.SectionCryptoData)].(map[string]any)
	assert.NotContains(t, crypto, "error")
	assert.Contains(t, crypto, "lastUpdated")

	resp, body = s.do(t, http.MethodGet, "/api/v1/sections/crypto-data", "", false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "crypto-data", body["section"])
	assert.Len(t, body["data"], 1)
	assert.Equal(t, false, body["loading"])
}

func TestRefreshSection(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, http.MethodPost, "/api/v1/refresh/ai-news", "", true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/refresh/weather", "", true)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/sections/weather", "", false)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSectionKeysSurviveLaterRequests(t *testing.T) {
	s := newTestServer(t, false)

	resp, _ := s.do(t, http.MethodPost, "/api/v1/refresh/ai-news", "", true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/v1/sections/startup-news", "", false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Later requests reuse the buffers the earlier params pointed into.
	for range 5 {
		s.do(t, http.MethodGet, "/api/v1/sections/zz-zzzz", "", false)
		s.do(t, http.MethodGet, "/api/v1/saved/abcdefghijklmnop", "", false)
	}

	sections := s.store.Snapshot().Sections
	assert.Len(t, sections, len(models.Sections()))
	for _, sec := range models.Sections() {
		assert.Contains(t, sections, sec)
	}
	assert.NotNil(t, sections[models.SectionAINews].LastUpdated)

	resp, body := s.do(t, http.MethodGet, "/api/v1/sections/ai-news", "", false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "lastUpdated")
}

func TestSavedItemLifecycle(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, http.MethodPost, "/api/v1/saved",
		`{"id":"n1","type":"news","title":"Hello","url":"https://example.com/n1","section":"ai-news"}`, true)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "unread", body["readStatus"])
	assert.True(t, s.local.IsSaved("n1"))

	resp, _ = s.do(t, http.MethodPost, "/api/v1/saved", `{"id":"n2","type":"podcast","title":"x"}`, true)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = s.do(t, http.MethodPatch, "/api/v1/saved/n1/read", `{"status":"read"}`, true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "read", body["readStatus"])

	resp, body = s.do(t, http.MethodGet, "/api/v1/saved", "", false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total"])

	resp, body = s.do(t, http.MethodGet, "/api/v1/saved/n1", "", false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello", body["title"])

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/saved/n1", "", true)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.False(t, s.local.IsSaved("n1"))

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/saved/n1", "", true)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/v1/saved/n1", "", false)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSaveFromSection(t *testing.T) {
	s := newTestServer(t, false)
	resp, _ := s.do(t, http.MethodPost, "/api/v1/refresh/ai-news", "", true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/v1/saved", `{"id":"n1","section":"ai-news"}`, true)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "news", body["type"])
	assert.Equal(t, "Hello", body["title"])
	assert.Equal(t, "Wire", body["source"])
	assert.Equal(t, "ai-news", body["section"])
	assert.True(t, s.local.IsSaved("n1"))

	resp, _ = s.do(t, http.MethodPost, "/api/v1/saved", `{"id":"n9","section":"ai-news"}`, true)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/saved", `{"id":"n1","section":"weather"}`, true)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = s.do(t, http.MethodPost, "/api/v1/saved", `{"id":"n3","type":"news"}`, true)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, map[string]any{"Title": "required_with"}, body["fields"])
}

func TestPreferences(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, http.MethodGet, "/api/v1/preferences", "", false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "daily", body["refreshFrequency"])

	resp, body = s.do(t, http.MethodPut, "/api/v1/preferences",
		`{"theme":"light","refreshFrequency":"hourly","sources":{"trusted":[],"blocked":["Wire"]}}`, true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "hourly", body["refreshFrequency"])
	assert.Equal(t, "hourly", s.local.Preferences().RefreshFrequency)

	resp, _ = s.do(t, http.MethodPut, "/api/v1/preferences", `{"theme":"neon","refreshFrequency":"hourly"}`, true)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCryptoHistory(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, http.MethodGet, "/api/v1/crypto/bitcoin/history?days=3", "", false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["points"], 3)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/crypto/bitcoin/history?days=0", "", false)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/crypto/unknown/history", "", false)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestListTools(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, http.MethodGet, "/api/v1/tools/Text%20Generation?limit=1", "", false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Text Generation", body["category"])
	assert.Len(t, body["tools"], 1)
	assert.Equal(t, false, body["fallback"])

	resp, body = s.do(t, http.MethodGet, "/api/v1/tools/Research", "", false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["fallback"])
	assert.Len(t, body["tools"], 1)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/tools/Gaming", "", false)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/tools/Productivity?limit=0", "", false)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSchedules(t *testing.T) {
	s := newTestServer(t, false)
	require.NoError(t, s.jobs.ScheduleRecurring("crypto-data", s.store.RefreshCryptoData, time.Hour))
	require.NoError(t, s.jobs.ScheduleRecurring("broken", func(context.Context) error { return errors.New("nope") }, time.Hour))

	resp, body := s.do(t, http.MethodGet, "/api/v1/schedules", "", false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["jobs"], 2)

	resp, body = s.do(t, http.MethodPost, "/api/v1/schedules/crypto-data/trigger", "", true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Len(t, s.store.Snapshot().CryptoData, 1)

	resp, body = s.do(t, http.MethodPost, "/api/v1/schedules/broken/trigger", "", true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "failed", body["status"])

	resp, _ = s.do(t, http.MethodPost, "/api/v1/schedules/missing/trigger", "", true)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStorageStatsAndClear(t *testing.T) {
	s := newTestServer(t, false)
	resp, _ := s.do(t, http.MethodPost, "/api/v1/saved", `{"id":"t1","type":"tool","title":"Tool"}`, true)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := s.do(t, http.MethodGet, "/api/v1/storage/stats", "", false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["savedItems"])

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/storage", "", true)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Empty(t, s.store.Snapshot().SavedItems)
	assert.Empty(t, s.local.SavedItems())
}
