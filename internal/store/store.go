// Package store holds the aggregate client state. Reduce is the pure
// transition function; Store performs the boundary calls and applies the
// resulting transitions.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/cyberpress/internal/models"
	"github.com/bilgisen/cyberpress/internal/ranking"
)

// ErrUnknownSection is returned for a section name outside models.Sections.
var ErrUnknownSection = errors.New("unknown section")

// ErrEntityNotFound is returned when a section holds no entity with the given ID.
var ErrEntityNotFound = errors.New("entity not found")

type NewsSource interface {
	FetchAINews(ctx context.Context) (models.NewsResponse, error)
	FetchStartupNews(ctx context.Context) (models.NewsResponse, error)
	FetchCryptoNews(ctx context.Context) (models.NewsResponse, error)
}

type PriceSource interface {
	FetchTopAssets(ctx context.Context, limit int) ([]models.CryptoAsset, error)
}

type ToolSource interface {
	FetchListings(ctx context.Context, limit int) (map[models.ToolCategory][]models.AITool, error)
	DiscoverEmerging(ctx context.Context) ([]models.AITool, error)
}

type CreativeSource interface {
	Fetch(ctx context.Context) ([]models.CreativeContent, error)
}

// Persistence is the local state the store writes through to.
type Persistence interface {
	Preferences() models.UserPreferences
	SavePreferences(prefs models.UserPreferences) error
	SavedItems() []models.SavedItem
	SaveItem(item models.SavedItem) error
	RemoveItem(id string) error
	SetReadStatus(id string, status models.ReadStatus) (bool, error)
}

type Deps struct {
	News     NewsSource
	Prices   PriceSource
	Tools    ToolSource
	Creative CreativeSource
	Storage  Persistence

	// Cache keeps the last good data of each section for Warm. Optional.
	Cache    ContentCache
	CacheTTL time.Duration

	CryptoLimit int
	ToolsLimit  int
	Now         func() time.Time
	Logger      zerolog.Logger
}

type Store struct {
	deps Deps
	log  zerolog.Logger

	mu    sync.RWMutex
	state State

	subsMu sync.Mutex
	subs   []func(models.UserPreferences)
}

// New loads preferences and saved items from storage and returns a store
// with every section empty.
func New(deps Deps) *Store {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.CryptoLimit <= 0 {
		deps.CryptoLimit = 10
	}
	if deps.ToolsLimit <= 0 {
		deps.ToolsLimit = 10
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = time.Hour
	}
	return &Store{
		deps:  deps,
		log:   deps.Logger,
		state: NewState(deps.Storage.Preferences(), deps.Storage.SavedItems()),
	}
}

func (s *Store) dispatch(actions ...Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range actions {
		s.state = Reduce(s.state, a)
	}
}

// Snapshot returns the current state. The result must not be modified.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Section returns the entities and status of one section.
func (s *Store) Section(sec models.Section) (any, SectionStatus, error) {
	if !sec.Valid() {
		return nil, SectionStatus{}, fmt.Errorf("%w: %q", ErrUnknownSection, sec)
	}
	st := s.Snapshot()
	var data any
	switch sec {
	case models.SectionAINews:
		data = st.AINews
	case models.SectionStartupNews:
		data = st.StartupNews
	case models.SectionCryptoNews:
		data = st.CryptoNews
	case models.SectionAITools:
		data = ToolsView{Listings: st.AITools, Emerging: st.EmergingTools}
	case models.SectionCryptoData:
		data = st.CryptoData
	case models.SectionCreative:
		data = st.Creative
	}
	return data, st.Sections[sec], nil
}

func (s *Store) RefreshAINews(ctx context.Context) error {
	return s.RefreshSection(ctx, models.SectionAINews)
}

func (s *Store) RefreshStartupNews(ctx context.Context) error {
	return s.RefreshSection(ctx, models.SectionStartupNews)
}

func (s *Store) RefreshCryptoNews(ctx context.Context) error {
	return s.RefreshSection(ctx, models.SectionCryptoNews)
}

func (s *Store) RefreshAITools(ctx context.Context) error {
	return s.RefreshSection(ctx, models.SectionAITools)
}

func (s *Store) RefreshCryptoData(ctx context.Context) error {
	return s.RefreshSection(ctx, models.SectionCryptoData)
}

func (s *Store) RefreshCreativeContent(ctx context.Context) error {
	return s.RefreshSection(ctx, models.SectionCreative)
}

// RefreshSection fetches one section. A boundary failure is recorded in the
// section's error and also returned; the section keeps its previous data,
// or takes the boundary's fallback data when it had none.
func (s *Store) RefreshSection(ctx context.Context, sec models.Section) error {
	if known, ok := sec.Canonical(); ok {
		sec = known
	}
	fetch, err := s.fetcher(sec)
	if err != nil {
		return err
	}

	s.dispatch(SetLoading{Section: sec, Loading: true}, SetError{Section: sec})
	defer s.dispatch(SetLoading{Section: sec, Loading: false})

	start := time.Now()
	data, err := fetch(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("section", string(sec)).Msg("Section refresh failed")
		actions := []Action{SetError{Section: sec, Message: "Failed to fetch " + sec.Label()}}
		if s.isEmpty(sec) {
			actions = append(actions, data...)
		}
		s.dispatch(actions...)
		return fmt.Errorf("refresh %s: %w", sec, err)
	}

	s.dispatch(append(data, SetLastUpdated{Section: sec, At: s.deps.Now()})...)
	s.cacheSection(sec)
	s.log.Debug().
		Str("section", string(sec)).
		Dur("duration", time.Since(start)).
		Msg("Section refreshed")
	return nil
}

// RefreshAll refreshes every section concurrently and waits for all of them.
// One section failing does not stop the others.
func (s *Store) RefreshAll(ctx context.Context) error {
	sections := models.Sections()
	errs := make([]error, len(sections))

	var wg sync.WaitGroup
	for i, sec := range sections {
		wg.Add(1)
		go func(i int, sec models.Section) {
			defer wg.Done()
			errs[i] = s.RefreshSection(ctx, sec)
		}(i, sec)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// ToolsView is the data of the ai-tools section.
type ToolsView struct {
	Listings map[models.ToolCategory][]models.AITool `json:"listings"`
	Emerging []models.AITool                         `json:"emerging"`
}

type fetchFunc func(ctx context.Context) ([]Action, error)

func (s *Store) fetcher(sec models.Section) (fetchFunc, error) {
	switch sec {
	case models.SectionAINews:
		return s.newsFetcher(sec, s.deps.News.FetchAINews), nil
	case models.SectionStartupNews:
		return s.newsFetcher(sec, s.deps.News.FetchStartupNews), nil
	case models.SectionCryptoNews:
		return s.newsFetcher(sec, s.deps.News.FetchCryptoNews), nil
	case models.SectionAITools:
		return s.fetchTools, nil
	case models.SectionCryptoData:
		return s.fetchCrypto, nil
	case models.SectionCreative:
		return s.fetchCreative, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, sec)
}

func (s *Store) newsFetcher(sec models.Section, fetch func(context.Context) (models.NewsResponse, error)) fetchFunc {
	return func(ctx context.Context) ([]Action, error) {
		resp, err := fetch(ctx)
		items := filterBlocked(resp.Items, s.Snapshot().Preferences.Sources.Blocked)
		return []Action{SetNews{Section: sec, Items: items}}, err
	}
}

func (s *Store) fetchTools(ctx context.Context) ([]Action, error) {
	listings, err := s.deps.Tools.FetchListings(ctx, s.deps.ToolsLimit)

	previous := s.Snapshot().AITools
	marked := make(map[models.ToolCategory][]models.AITool, len(listings))
	for cat, list := range listings {
		marked[cat] = ranking.MarkChanges(previous[cat], list)
	}

	emerging, emergingErr := s.deps.Tools.DiscoverEmerging(ctx)
	actions := []Action{SetTools{Tools: marked}}
	if emergingErr == nil {
		actions = append(actions, SetEmergingTools{Tools: emerging})
	} else {
		s.log.Warn().Err(emergingErr).Msg("Emerging tools unavailable")
	}
	return actions, err
}

func (s *Store) fetchCrypto(ctx context.Context) ([]Action, error) {
	assets, err := s.deps.Prices.FetchTopAssets(ctx, s.deps.CryptoLimit)
	return []Action{SetCryptoData{Assets: assets}}, err
}

func (s *Store) fetchCreative(ctx context.Context) ([]Action, error) {
	items, err := s.deps.Creative.Fetch(ctx)
	return []Action{SetCreative{Items: items}}, err
}

func (s *Store) isEmpty(sec models.Section) bool {
	st := s.Snapshot()
	switch sec {
	case models.SectionAINews:
		return len(st.AINews) == 0
	case models.SectionStartupNews:
		return len(st.StartupNews) == 0
	case models.SectionCryptoNews:
		return len(st.CryptoNews) == 0
	case models.SectionAITools:
		return len(st.AITools) == 0
	case models.SectionCryptoData:
		return len(st.CryptoData) == 0
	case models.SectionCreative:
		return len(st.Creative) == 0
	}
	return true
}

func filterBlocked(items []models.NewsItem, blocked []string) []models.NewsItem {
	if len(blocked) == 0 {
		return items
	}
	return slices.DeleteFunc(slices.Clone(items), func(it models.NewsItem) bool {
		return slices.ContainsFunc(blocked, func(b string) bool { return strings.EqualFold(b, it.Source) })
	})
}

// SaveItem stores item in local storage and then in memory, replacing any
// saved item with the same ID. A storage failure is logged and the item is
// kept in memory.
func (s *Store) SaveItem(item models.SavedItem) error {
	if item.ReadStatus == "" {
		item.ReadStatus = models.StatusUnread
	}
	if item.DateSaved.IsZero() {
		item.DateSaved = s.deps.Now()
	}
	if err := models.Validate(item); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidContent, err)
	}

	if err := s.deps.Storage.SaveItem(item); err != nil {
		s.log.Error().Err(err).Str("id", item.ID).Msg("Failed to persist saved item")
	}
	s.dispatch(AddSavedItem{Item: item})
	return nil
}

// SaveFromSection saves the entity with the given ID currently shown in sec,
// copying its display fields.
func (s *Store) SaveFromSection(sec models.Section, id string) (models.SavedItem, error) {
	known, ok := sec.Canonical()
	if !ok {
		return models.SavedItem{}, fmt.Errorf("%w: %q", ErrUnknownSection, sec)
	}

	item, found := s.lookup(known, id)
	if !found {
		return models.SavedItem{}, fmt.Errorf("%w: %s in %s", ErrEntityNotFound, id, known)
	}
	if err := s.SaveItem(item); err != nil {
		return models.SavedItem{}, err
	}
	return item, nil
}

func (s *Store) lookup(sec models.Section, id string) (models.SavedItem, bool) {
	st := s.Snapshot()
	now := s.deps.Now()

	switch sec {
	case models.SectionAINews, models.SectionStartupNews, models.SectionCryptoNews:
		news := map[models.Section][]models.NewsItem{
			models.SectionAINews:      st.AINews,
			models.SectionStartupNews: st.StartupNews,
			models.SectionCryptoNews:  st.CryptoNews,
		}[sec]
		if i := slices.IndexFunc(news, func(n models.NewsItem) bool { return n.ID == id }); i >= 0 {
			return models.SavedFromNews(news[i], sec, now), true
		}
	case models.SectionAITools:
		for _, list := range st.AITools {
			if i := slices.IndexFunc(list, func(t models.AITool) bool { return t.ID == id }); i >= 0 {
				return models.SavedFromTool(list[i], now), true
			}
		}
		if i := slices.IndexFunc(st.EmergingTools, func(t models.AITool) bool { return t.ID == id }); i >= 0 {
			return models.SavedFromTool(st.EmergingTools[i], now), true
		}
	case models.SectionCryptoData:
		if i := slices.IndexFunc(st.CryptoData, func(a models.CryptoAsset) bool { return a.ID == id }); i >= 0 {
			return models.SavedFromCrypto(st.CryptoData[i], now), true
		}
	case models.SectionCreative:
		if i := slices.IndexFunc(st.Creative, func(c models.CreativeContent) bool { return c.ID == id }); i >= 0 {
			return models.SavedFromCreative(st.Creative[i], now), true
		}
	}
	return models.SavedItem{}, false
}

// RemoveSavedItem removes the item with the given ID and reports whether it was saved.
func (s *Store) RemoveSavedItem(id string) bool {
	if !s.IsItemSaved(id) {
		return false
	}
	if err := s.deps.Storage.RemoveItem(id); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("Failed to remove saved item from storage")
	}
	s.dispatch(RemoveSavedItem{ID: id})
	return true
}

// MarkRead sets the read status of a saved item and reports whether it exists.
func (s *Store) MarkRead(id string, status models.ReadStatus) bool {
	if !s.IsItemSaved(id) {
		return false
	}
	if _, err := s.deps.Storage.SetReadStatus(id, status); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("Failed to persist read status")
	}
	s.dispatch(SetReadStatus{ID: id, Status: status})
	return true
}

func (s *Store) IsItemSaved(id string) bool {
	_, ok := s.SavedItem(id)
	return ok
}

func (s *Store) SavedItem(id string) (models.SavedItem, bool) {
	for _, it := range s.Snapshot().SavedItems {
		if it.ID == id {
			return it, true
		}
	}
	return models.SavedItem{}, false
}

func (s *Store) Preferences() models.UserPreferences {
	return s.Snapshot().Preferences
}

// UpdatePreferences validates and stores prefs, then notifies subscribers.
func (s *Store) UpdatePreferences(prefs models.UserPreferences) error {
	if err := models.Validate(prefs); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidContent, err)
	}
	if prefs.Sources.Trusted == nil {
		prefs.Sources.Trusted = []string{}
	}
	if prefs.Sources.Blocked == nil {
		prefs.Sources.Blocked = []string{}
	}

	if err := s.deps.Storage.SavePreferences(prefs); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist preferences")
	}
	s.dispatch(UpdatePreferences{Preferences: prefs})
	s.log.Info().Str("refresh_frequency", prefs.RefreshFrequency).Msg("Preferences updated")

	s.subsMu.Lock()
	subs := slices.Clone(s.subs)
	s.subsMu.Unlock()
	for _, fn := range subs {
		fn(prefs)
	}
	return nil
}

// OnPreferencesChanged registers fn to run after every successful UpdatePreferences.
func (s *Store) OnPreferencesChanged(fn func(models.UserPreferences)) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.subs = append(s.subs, fn)
}

// Reload replaces saved items and preferences with what storage holds,
// for use after the local state was cleared or restored.
func (s *Store) Reload() {
	s.dispatch(
		SetSavedItems{Items: s.deps.Storage.SavedItems()},
		UpdatePreferences{Preferences: s.deps.Storage.Preferences()},
	)
}
