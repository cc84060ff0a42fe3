package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/cyberpress/internal/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStorage(t *testing.T) (*Storage, *MemoryBackend, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)}
	backend := NewMemoryBackend()
	return New(backend, "cyberpress_", WithClock(clock.Now)), backend, clock
}

func savedItem(id, title string) models.SavedItem {
	return models.SavedItem{
		ID:         id,
		Type:       models.SavedNews,
		Title:      title,
		Source:     "TechCrunch",
		DateSaved:  time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		ReadStatus: models.StatusUnread,
		Section:    string(models.SectionAINews),
	}
}

func TestPreferencesDefaultsAndRoundTrip(t *testing.T) {
	s, backend, _ := newTestStorage(t)

	assert.Equal(t, models.DefaultPreferences(), s.Preferences())

	prefs := models.DefaultPreferences()
	prefs.Theme = "light"
	prefs.RefreshFrequency = models.RefreshHourly
	prefs.Sources.Blocked = []string{"Spam Daily"}
	require.NoError(t, s.SavePreferences(prefs))
	assert.Equal(t, prefs, s.Preferences())

	_, ok, _ := backend.Get("cyberpress_preferences")
	assert.True(t, ok)
}

func TestCorruptEntriesFallBackToDefaults(t *testing.T) {
	s, backend, _ := newTestStorage(t)
	require.NoError(t, backend.Set("cyberpress_preferences", "{not json"))
	require.NoError(t, backend.Set("cyberpress_saved_articles", `"nope"`))

	assert.Equal(t, models.DefaultPreferences(), s.Preferences())
	assert.Empty(t, s.SavedItems())

	require.NoError(t, backend.Set("cyberpress_preferences", `{"theme":"neon"}`))
	assert.Equal(t, models.DefaultPreferences(), s.Preferences())
}

func TestSaveThenRemoveRestoresPriorContent(t *testing.T) {
	s, _, _ := newTestStorage(t)
	require.NoError(t, s.SaveItem(savedItem("a", "First")))
	before := s.SavedItems()

	require.NoError(t, s.SaveItem(savedItem("b", "Second")))
	assert.True(t, s.IsSaved("b"))
	require.NoError(t, s.RemoveItem("b"))

	assert.Equal(t, before, s.SavedItems())
	assert.False(t, s.IsSaved("b"))
}

func TestSaveItemReplacesByIDOrPrepends(t *testing.T) {
	s, _, _ := newTestStorage(t)
	require.NoError(t, s.SaveItem(savedItem("a", "First")))
	require.NoError(t, s.SaveItem(savedItem("b", "Second")))
	require.NoError(t, s.SaveItem(savedItem("a", "First, revised")))

	items := s.SavedItems()
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, "First, revised", items[1].Title)
}

func TestSetReadStatus(t *testing.T) {
	s, _, _ := newTestStorage(t)
	require.NoError(t, s.SaveItem(savedItem("a", "First")))

	found, err := s.SetReadStatus("a", models.StatusRead)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.StatusRead, s.SavedItems()[0].ReadStatus)

	found, err = s.SetReadStatus("missing", models.StatusRead)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheExpiry(t *testing.T) {
	s, backend, clock := newTestStorage(t)

	require.NoError(t, s.SetCache("ai", []string{"one"}, 0))
	var got []string
	assert.False(t, s.GetCache("ai", &got))
	_, ok, _ := backend.Get("cyberpress_cache_ai")
	assert.False(t, ok, "expired entry must be evicted by the read")

	require.NoError(t, s.SetCache("crypto", []string{"btc"}, time.Hour))
	assert.True(t, s.GetCache("crypto", &got))
	assert.Equal(t, []string{"btc"}, got)

	clock.Advance(time.Hour)
	assert.False(t, s.GetCache("crypto", &got))
	_, ok, _ = backend.Get("cyberpress_cache_crypto")
	assert.False(t, ok)
}

func TestClearExpiredCache(t *testing.T) {
	s, backend, clock := newTestStorage(t)
	require.NoError(t, s.SetCache("short", 1, time.Minute))
	require.NoError(t, s.SetCache("long", 2, 2*time.Hour))
	require.NoError(t, backend.Set("cyberpress_cache_broken", "]"))
	require.NoError(t, s.SaveItem(savedItem("a", "First")))

	clock.Advance(time.Hour)
	removed, err := s.ClearExpiredCache()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	keys, _ := backend.Keys()
	assert.Equal(t, []string{"cyberpress_cache_long", "cyberpress_saved_articles"}, keys)
}

func TestStatsAndClearAll(t *testing.T) {
	s, backend, _ := newTestStorage(t)
	require.NoError(t, backend.Set("other_app_key", "keep me"))
	require.NoError(t, s.SaveItem(savedItem("a", "First")))
	require.NoError(t, s.SaveItem(savedItem("b", "Second")))
	require.NoError(t, s.SetCache("x", "y", time.Hour))

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, st.SavedItems)
	assert.Equal(t, 1, st.CacheEntries)
	assert.Regexp(t, `^\d+ KB$`, st.StorageUsed)
	assert.Positive(t, st.Bytes)

	require.NoError(t, s.ClearAll())
	keys, _ := backend.Keys()
	assert.Equal(t, []string{"other_app_key"}, keys)
	assert.Empty(t, s.SavedItems())
}

type failingBackend struct{ *MemoryBackend }

func (failingBackend) Set(string, string) error { return errors.New("quota exceeded") }

func TestWriteFailuresAreReturned(t *testing.T) {
	s := New(failingBackend{NewMemoryBackend()}, "cyberpress_")

	err := s.SaveItem(savedItem("a", "First"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, s.SavedItems())
}

func TestFileBackendPersistsAcrossOpens(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := New(b, "cyberpress_")
	require.NoError(t, s.SaveItem(savedItem("a", "First")))

	reopened, err := NewFileBackend(dir)
	require.NoError(t, err)
	items := New(reopened, "cyberpress_").SavedItems()
	require.Len(t, items, 1)
	assert.Equal(t, "First", items[0].Title)
	assert.Equal(t, filepath.Join(dir, StateFile), reopened.Path())
}

func TestFileBackendToleratesCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFile), []byte("garbage"), 0644))

	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	keys, _ := b.Keys()
	assert.Empty(t, keys)

	require.NoError(t, b.Set("cyberpress_preferences", "{}"))
	raw, err := os.ReadFile(filepath.Join(dir, StateFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "cyberpress_preferences")
}
