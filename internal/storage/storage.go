// Package storage persists the client's local state: preferences, saved
// items and an expiring content cache, all under one key prefix.
package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/cyberpress/internal/models"
)

const (
	keyPreferences   = "preferences"
	keySavedArticles = "saved_articles"
	keyCachePrefix   = "cache_"
)

// cacheEntry is the persisted shape of a cached value. Times are epoch ms.
type cacheEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Expires   int64           `json:"expires"`
}

// Stats summarizes what the local state holds.
type Stats struct {
	SavedItems   int    `json:"savedItems"`
	CacheEntries int    `json:"cacheSize"`
	StorageUsed  string `json:"storageUsed"`
	Bytes        int    `json:"bytes"`
}

type Storage struct {
	backend Backend
	prefix  string
	now     func() time.Time
	log     zerolog.Logger

	// serializes read-modify-write cycles on the saved items list
	mu sync.Mutex
}

type Option func(*Storage)

// WithClock replaces time.Now, for cache expiry in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Storage) { s.log = l }
}

// New returns a Storage writing keys of the form prefix+name to backend.
func New(backend Backend, prefix string, opts ...Option) *Storage {
	s := &Storage{
		backend: backend,
		prefix:  prefix,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) setItem(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.backend.Set(s.prefix+key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// getItem decodes key into dst. It reports false when the key is missing or
// holds something that is not valid JSON for dst; the caller then uses its
// default.
func (s *Storage) getItem(key string, dst any) bool {
	raw, ok, err := s.backend.Get(s.prefix + key)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to load item")
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Ignoring corrupt item")
		return false
	}
	return true
}

func (s *Storage) removeItem(key string) error {
	if err := s.backend.Delete(s.prefix + key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Preferences returns the stored preferences, or the defaults when none are
// stored or the stored document is invalid.
func (s *Storage) Preferences() models.UserPreferences {
	prefs := models.DefaultPreferences()
	if !s.getItem(keyPreferences, &prefs) {
		return models.DefaultPreferences()
	}
	if err := models.Validate(prefs); err != nil {
		s.log.Warn().Err(err).Msg("Stored preferences are invalid, using defaults")
		return models.DefaultPreferences()
	}
	return prefs
}

func (s *Storage) SavePreferences(prefs models.UserPreferences) error {
	return s.setItem(keyPreferences, prefs)
}

// SavedItems returns the saved items, most recently added first.
func (s *Storage) SavedItems() []models.SavedItem {
	var items []models.SavedItem
	if !s.getItem(keySavedArticles, &items) || items == nil {
		return []models.SavedItem{}
	}
	return items
}

// SaveItem replaces the saved item with the same ID in place, or adds item
// at the front of the list.
func (s *Storage) SaveItem(item models.SavedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.SavedItems()
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return s.setItem(keySavedArticles, items)
		}
	}
	return s.setItem(keySavedArticles, append([]models.SavedItem{item}, items...))
}

// RemoveItem deletes the saved item with the given ID. Unknown IDs are not
// an error.
func (s *Storage) RemoveItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.SavedItems()
	kept := make([]models.SavedItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return s.setItem(keySavedArticles, kept)
}

func (s *Storage) IsSaved(id string) bool {
	for _, item := range s.SavedItems() {
		if item.ID == id {
			return true
		}
	}
	return false
}

// SetReadStatus updates one saved item. It reports whether the item exists.
func (s *Storage) SetReadStatus(id string, status models.ReadStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.SavedItems()
	for i := range items {
		if items[i].ID == id {
			items[i].ReadStatus = status
			return true, s.setItem(keySavedArticles, items)
		}
	}
	return false, nil
}

// SetCache stores data under key until ttl has elapsed. A zero ttl produces
// an entry that is already expired.
func (s *Storage) SetCache(key string, data any, ttl time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode cache %s: %w", key, err)
	}
	now := s.now()
	return s.setItem(keyCachePrefix+key, cacheEntry{
		Data:      payload,
		Timestamp: now.UnixMilli(),
		Expires:   now.Add(ttl).UnixMilli(),
	})
}

// GetCache decodes the cached value of key into dst. Expired or corrupt
// entries are evicted and reported as absent.
func (s *Storage) GetCache(key string, dst any) bool {
	var entry cacheEntry
	if !s.getItem(keyCachePrefix+key, &entry) || s.expired(entry) {
		s.evict(key)
		return false
	}
	if err := json.Unmarshal(entry.Data, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cached value does not match the requested type")
		return false
	}
	return true
}

func (s *Storage) expired(e cacheEntry) bool {
	return s.now().UnixMilli() >= e.Expires
}

func (s *Storage) evict(key string) {
	if err := s.removeItem(keyCachePrefix + key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to evict cache entry")
	}
}

// ClearExpiredCache evicts every expired or unreadable cache entry and
// returns how many were removed.
func (s *Storage) ClearExpiredCache() (int, error) {
	keys, err := s.backend.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list keys: %w", err)
	}

	removed := 0
	for _, full := range keys {
		name, ok := strings.CutPrefix(full, s.prefix+keyCachePrefix)
		if !ok {
			continue
		}
		var entry cacheEntry
		if s.getItem(keyCachePrefix+name, &entry) && !s.expired(entry) {
			continue
		}
		if err := s.removeItem(keyCachePrefix + name); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Stats counts saved items, cache entries and the size of all prefixed keys.
func (s *Storage) Stats() (Stats, error) {
	entries, err := s.Export()
	if err != nil {
		return Stats{}, err
	}

	st := Stats{SavedItems: len(s.SavedItems())}
	for key, value := range entries {
		st.Bytes += len(value)
		if strings.HasPrefix(key, s.prefix+keyCachePrefix) {
			st.CacheEntries++
		}
	}
	st.StorageUsed = fmt.Sprintf("%d KB", int(math.Round(float64(st.Bytes)/1024)))
	return st, nil
}

// Export returns every key under the prefix with its raw value.
func (s *Storage) Export() (map[string]string, error) {
	keys, err := s.backend.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	out := make(map[string]string)
	for _, key := range keys {
		if !strings.HasPrefix(key, s.prefix) {
			continue
		}
		value, ok, err := s.backend.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if ok {
			out[key] = value
		}
	}
	return out, nil
}

// ClearAll removes every key under the prefix. Keys of other owners sharing
// the backend are left alone.
func (s *Storage) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.backend.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, s.prefix) {
			continue
		}
		if err := s.backend.Delete(key); err != nil {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
	}
	return nil
}
