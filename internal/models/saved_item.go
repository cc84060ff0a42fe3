package models

import (
	"fmt"
	"strings"
	"time"
)

// SavedType is the kind of entity a saved item was copied from.
type SavedType string

const (
	SavedNews     SavedType = "news"
	SavedTool     SavedType = "tool"
	SavedCrypto   SavedType = "crypto"
	SavedCreative SavedType = "creative"
)

type ReadStatus string

const (
	StatusRead   ReadStatus = "read"
	StatusUnread ReadStatus = "unread"
)

// SavedItem is a user bookmark. It references the original entity by ID only.
type SavedItem struct {
	ID         string     `json:"id" validate:"required"`
	Type       SavedType  `json:"type" validate:"oneof=news tool crypto creative"`
	Title      string     `json:"title" validate:"required"`
	Summary    string     `json:"summary"`
	Source     string     `json:"source"`
	URL        string     `json:"url,omitempty"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	DateSaved  time.Time  `json:"dateSaved"`
	ReadStatus ReadStatus `json:"readStatus" validate:"oneof=read unread"`
	Section    string     `json:"section"`
}

func SavedFromNews(n NewsItem, section Section, now time.Time) SavedItem {
	return SavedItem{
		ID:         n.ID,
		Type:       SavedNews,
		Title:      n.Title,
		Summary:    n.Summary,
		Source:     n.Source,
		URL:        n.URL,
		ImageURL:   n.ImageURL,
		DateSaved:  now,
		ReadStatus: StatusUnread,
		Section:    string(section),
	}
}

func SavedFromTool(t AITool, now time.Time) SavedItem {
	return SavedItem{
		ID:         t.ID,
		Type:       SavedTool,
		Title:      t.Name,
		Summary:    t.Description,
		Source:     string(t.Category),
		URL:        t.URL,
		ImageURL:   t.LogoURL,
		DateSaved:  now,
		ReadStatus: StatusUnread,
		Section:    string(SectionAITools),
	}
}

func SavedFromCrypto(a CryptoAsset, now time.Time) SavedItem {
	return SavedItem{
		ID:         a.ID,
		Type:       SavedCrypto,
		Title:      fmt.Sprintf("%s (%s)", a.Name, a.Symbol),
		Summary:    fmt.Sprintf("Grade %s, target $%.2f: %s", a.BuyGrade, a.TargetPrice, a.GradeReasoning),
		Source:     "CoinGecko",
		DateSaved:  now,
		ReadStatus: StatusUnread,
		Section:    string(SectionCryptoData),
	}
}

func SavedFromCreative(c CreativeContent, now time.Time) SavedItem {
	item := SavedItem{
		ID:         c.ID,
		Type:       SavedCreative,
		Title:      c.Title(),
		Summary:    c.Summary(),
		Source:     c.Category,
		DateSaved:  now,
		ReadStatus: StatusUnread,
		Section:    string(SectionCreative),
	}
	switch c.Kind {
	case KindImage:
		item.Source = c.Image.Source
		item.ImageURL = c.Image.ImageURL
	case KindQuote:
		item.Source = c.Quote.Author
	case KindVideo:
		item.URL = c.Video.URL
	}
	return item
}

func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
