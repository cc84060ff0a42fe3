package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bilgisen/cyberpress/internal/models"
)

const sectionCachePrefix = "section_"

// ContentCache is the expiring key/value cache of the local state.
type ContentCache interface {
	SetCache(key string, data any, ttl time.Duration) error
	GetCache(key string, dst any) bool
}

type sectionEntry struct {
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// cacheSection stores the current data of sec after a successful refresh.
func (s *Store) cacheSection(sec models.Section) {
	if s.deps.Cache == nil {
		return
	}
	data, status, err := s.Section(sec)
	if err != nil || status.LastUpdated == nil {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		s.log.Warn().Err(err).Str("section", string(sec)).Msg("Section data not cacheable")
		return
	}
	entry := sectionEntry{Data: raw, UpdatedAt: *status.LastUpdated}
	if err := s.deps.Cache.SetCache(sectionCachePrefix+string(sec), entry, s.deps.CacheTTL); err != nil {
		s.log.Warn().Err(err).Str("section", string(sec)).Msg("Failed to cache section")
	}
}

// Warm fills sections from unexpired cached data and returns how many were
// restored. Sections keep the time of the refresh that produced the data.
func (s *Store) Warm() int {
	if s.deps.Cache == nil {
		return 0
	}

	warmed := 0
	for _, sec := range models.Sections() {
		var entry sectionEntry
		if !s.deps.Cache.GetCache(sectionCachePrefix+string(sec), &entry) {
			continue
		}
		actions, err := decodeSection(sec, entry.Data)
		if err != nil {
			s.log.Warn().Err(err).Str("section", string(sec)).Msg("Ignoring unreadable cached section")
			continue
		}
		s.dispatch(append(actions, SetLastUpdated{Section: sec, At: entry.UpdatedAt})...)
		warmed++
	}
	if warmed > 0 {
		s.log.Info().Int("sections", warmed).Msg("Sections restored from cache")
	}
	return warmed
}

func decodeSection(sec models.Section, raw json.RawMessage) ([]Action, error) {
	switch sec {
	case models.SectionAINews, models.SectionStartupNews, models.SectionCryptoNews:
		var items []models.NewsItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return []Action{SetNews{Section: sec, Items: items}}, nil

	case models.SectionAITools:
		var view ToolsView
		if err := json.Unmarshal(raw, &view); err != nil {
			return nil, err
		}
		return []Action{SetTools{Tools: view.Listings}, SetEmergingTools{Tools: view.Emerging}}, nil

	case models.SectionCryptoData:
		var assets []models.CryptoAsset
		if err := json.Unmarshal(raw, &assets); err != nil {
			return nil, err
		}
		return []Action{SetCryptoData{Assets: assets}}, nil

	case models.SectionCreative:
		var items []models.CreativeContent
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		for _, c := range items {
			if err := c.Validate(); err != nil {
				return nil, err
			}
		}
		return []Action{SetCreative{Items: items}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, sec)
}
