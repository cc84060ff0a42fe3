package store

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/bilgisen/cyberpress/internal/models"
	"github.com/bilgisen/cyberpress/internal/storage"
)

var (
	errBoundary = errors.New("boundary unreachable")
	testNow     = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newsItem(id, title, source string) models.NewsItem {
	return models.NewsItem{ID: id, Title: title, Source: source, URL: "https://example.com/" + id, PublishedAt: testNow}
}

type fakeNews struct {
	items []models.NewsItem
	err   error
	calls atomic.Int32
}

func (f *fakeNews) respond() (models.NewsResponse, error) {
	f.calls.Add(1)
	if f.err != nil {
		return models.NewsResponse{
			Items:  []models.NewsItem{newsItem("fallback-ai-0", "AI Technology Update", models.FallbackSource)},
			Source: models.FallbackSource,
		}, f.err
	}
	return models.NewsResponse{Items: f.items, LastUpdated: testNow, Source: "RSS Feeds"}, nil
}

func (f *fakeNews) FetchAINews(context.Context) (models.NewsResponse, error)      { return f.respond() }
func (f *fakeNews) FetchStartupNews(context.Context) (models.NewsResponse, error) { return f.respond() }
func (f *fakeNews) FetchCryptoNews(context.Context) (models.NewsResponse, error)  { return f.respond() }

type fakePrices struct {
	assets []models.CryptoAsset
	err    error
}

func (f *fakePrices) FetchTopAssets(_ context.Context, limit int) ([]models.CryptoAsset, error) {
	if f.err != nil {
		return []models.CryptoAsset{{ID: "bitcoin", Name: "Bitcoin (fallback)"}}, f.err
	}
	if len(f.assets) > limit {
		return f.assets[:limit], nil
	}
	return f.assets, nil
}

type fakeTools struct {
	listings map[models.ToolCategory][]models.AITool
	err      error
}

func (f *fakeTools) FetchListings(context.Context, int) (map[models.ToolCategory][]models.AITool, error) {
	return f.listings, f.err
}

func (f *fakeTools) DiscoverEmerging(context.Context) ([]models.AITool, error) {
	return []models.AITool{{ID: "cursor-ai", Name: "Cursor AI", Rank: 1}}, nil
}

type fakeCreative struct{}

func (fakeCreative) Fetch(context.Context) ([]models.CreativeContent, error) {
	q, err := models.NewQuote("q-1", "Innovation", testNow, models.QuoteContent{Content: "Ship it.", Author: "Anon"})
	return []models.CreativeContent{q}, err
}

// brokenStorage reads like a working storage but fails every write.
type brokenStorage struct {
	*storage.Storage
}

func (brokenStorage) SavePreferences(models.UserPreferences) error { return errors.New("quota exceeded") }
func (brokenStorage) SaveItem(models.SavedItem) error              { return errors.New("quota exceeded") }
func (brokenStorage) RemoveItem(string) error                      { return errors.New("quota exceeded") }
func (brokenStorage) SetReadStatus(string, models.ReadStatus) (bool, error) {
	return false, errors.New("quota exceeded")
}

type fixture struct {
	news    *fakeNews
	prices  *fakePrices
	tools   *fakeTools
	storage *storage.Storage
}

func newFixture() *fixture {
	return &fixture{
		news: &fakeNews{items: []models.NewsItem{
			newsItem("n1", "GPT-6 announced", "OpenAI Blog"),
			newsItem("n2", "New robotics lab opens", "Tabloid Daily"),
		}},
		prices: &fakePrices{assets: []models.CryptoAsset{
			{ID: "bitcoin", Name: "Bitcoin", Rank: 1},
			{ID: "ethereum", Name: "Ethereum", Rank: 2},
		}},
		tools: &fakeTools{listings: map[models.ToolCategory][]models.AITool{
			models.ToolTextGeneration: {
				{ID: "a", Name: "A", Rank: 1},
				{ID: "b", Name: "B", Rank: 2},
			},
		}},
		storage: storage.New(storage.NewMemoryBackend(), "test_"),
	}
}

func (f *fixture) store(p Persistence) *Store {
	if p == nil {
		p = f.storage
	}
	return New(Deps{
		News:     f.news,
		Prices:   f.prices,
		Tools:    f.tools,
		Creative: fakeCreative{},
		Storage:  p,
		Now:      func() time.Time { return testNow },
	})
}
