package store

import (
	"maps"
	"slices"
	"time"

	"github.com/bilgisen/cyberpress/internal/models"
)

// SectionStatus is the refresh bookkeeping of one section.
type SectionStatus struct {
	Loading     bool       `json:"loading"`
	Error       string     `json:"error,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// State is the whole client state. Values returned by Reduce share
// unchanged slices with their input, so a State must be treated as read-only.
type State struct {
	AINews        []models.NewsItem                       `json:"aiNews"`
	StartupNews   []models.NewsItem                       `json:"startupNews"`
	CryptoNews    []models.NewsItem                       `json:"cryptoNews"`
	AITools       map[models.ToolCategory][]models.AITool `json:"aiTools"`
	EmergingTools []models.AITool                         `json:"emergingTools"`
	CryptoData    []models.CryptoAsset                    `json:"cryptoData"`
	Creative      []models.CreativeContent                `json:"creativeContent"`
	SavedItems    []models.SavedItem                      `json:"savedItems"`
	Preferences   models.UserPreferences                  `json:"preferences"`
	Sections      map[models.Section]SectionStatus        `json:"sections"`
}

// NewState returns the initial state with empty sections.
func NewState(prefs models.UserPreferences, saved []models.SavedItem) State {
	sections := make(map[models.Section]SectionStatus, len(models.Sections()))
	for _, sec := range models.Sections() {
		sections[sec] = SectionStatus{}
	}
	return State{
		AINews:        []models.NewsItem{},
		StartupNews:   []models.NewsItem{},
		CryptoNews:    []models.NewsItem{},
		AITools:       map[models.ToolCategory][]models.AITool{},
		EmergingTools: []models.AITool{},
		CryptoData:    []models.CryptoAsset{},
		Creative:      []models.CreativeContent{},
		SavedItems:    slices.Clone(saved),
		Preferences:   prefs,
		Sections:      sections,
	}
}

// Action is a state transition understood by Reduce.
type Action interface {
	action()
}

type SetLoading struct {
	Section models.Section
	Loading bool
}

// SetError sets the error message of a section; an empty message clears it.
type SetError struct {
	Section models.Section
	Message string
}

type SetNews struct {
	Section models.Section
	Items   []models.NewsItem
}

type SetTools struct {
	Tools map[models.ToolCategory][]models.AITool
}

type SetEmergingTools struct {
	Tools []models.AITool
}

type SetCryptoData struct {
	Assets []models.CryptoAsset
}

type SetCreative struct {
	Items []models.CreativeContent
}

type SetSavedItems struct {
	Items []models.SavedItem
}

// AddSavedItem replaces the saved item with the same ID in place, or
// prepends it when there is none.
type AddSavedItem struct {
	Item models.SavedItem
}

type RemoveSavedItem struct {
	ID string
}

type SetReadStatus struct {
	ID     string
	Status models.ReadStatus
}

type UpdatePreferences struct {
	Preferences models.UserPreferences
}

type SetLastUpdated struct {
	Section models.Section
	At      time.Time
}

func (SetLoading) action()        {}
func (SetError) action()          {}
func (SetNews) action()           {}
func (SetTools) action()          {}
func (SetEmergingTools) action()  {}
func (SetCryptoData) action()     {}
func (SetCreative) action()       {}
func (SetSavedItems) action()     {}
func (AddSavedItem) action()      {}
func (RemoveSavedItem) action()   {}
func (SetReadStatus) action()     {}
func (UpdatePreferences) action() {}
func (SetLastUpdated) action()    {}

// Reduce returns the state that results from applying a to s. It never
// modifies s or anything reachable from it.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetLoading:
		return withStatus(s, a.Section, func(st *SectionStatus) { st.Loading = a.Loading })

	case SetError:
		return withStatus(s, a.Section, func(st *SectionStatus) { st.Error = a.Message })

	case SetLastUpdated:
		at := a.At
		return withStatus(s, a.Section, func(st *SectionStatus) { st.LastUpdated = &at })

	case SetNews:
		items := slices.Clone(a.Items)
		if items == nil {
			items = []models.NewsItem{}
		}
		switch a.Section {
		case models.SectionAINews:
			s.AINews = items
		case models.SectionStartupNews:
			s.StartupNews = items
		case models.SectionCryptoNews:
			s.CryptoNews = items
		}

	case SetTools:
		tools := make(map[models.ToolCategory][]models.AITool, len(a.Tools))
		for cat, list := range a.Tools {
			tools[cat] = slices.Clone(list)
		}
		s.AITools = tools

	case SetEmergingTools:
		s.EmergingTools = nonNil(slices.Clone(a.Tools))

	case SetCryptoData:
		s.CryptoData = nonNil(slices.Clone(a.Assets))

	case SetCreative:
		s.Creative = nonNil(slices.Clone(a.Items))

	case SetSavedItems:
		s.SavedItems = nonNil(slices.Clone(a.Items))

	case AddSavedItem:
		idx := slices.IndexFunc(s.SavedItems, func(it models.SavedItem) bool { return it.ID == a.Item.ID })
		if idx >= 0 {
			saved := slices.Clone(s.SavedItems)
			saved[idx] = a.Item
			s.SavedItems = saved
		} else {
			s.SavedItems = append([]models.SavedItem{a.Item}, s.SavedItems...)
		}

	case RemoveSavedItem:
		s.SavedItems = slices.DeleteFunc(slices.Clone(s.SavedItems), func(it models.SavedItem) bool {
			return it.ID == a.ID
		})

	case SetReadStatus:
		idx := slices.IndexFunc(s.SavedItems, func(it models.SavedItem) bool { return it.ID == a.ID })
		if idx >= 0 {
			saved := slices.Clone(s.SavedItems)
			saved[idx].ReadStatus = a.Status
			s.SavedItems = saved
		}

	case UpdatePreferences:
		prefs := a.Preferences
		prefs.Sources.Trusted = slices.Clone(prefs.Sources.Trusted)
		prefs.Sources.Blocked = slices.Clone(prefs.Sources.Blocked)
		s.Preferences = prefs
	}
	return s
}

func withStatus(s State, sec models.Section, update func(*SectionStatus)) State {
	sec, ok := sec.Canonical()
	if !ok {
		return s
	}
	sections := maps.Clone(s.Sections)
	if sections == nil {
		sections = make(map[models.Section]SectionStatus)
	}
	st := sections[sec]
	update(&st)
	sections[sec] = st
	s.Sections = sections
	return s
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
