package models

import "time"

// NewsCategory classifies a news item.
type NewsCategory string

const (
	CategoryAI       NewsCategory = "AI"
	CategoryTech     NewsCategory = "Tech"
	CategoryStartup  NewsCategory = "Startup"
	CategoryFunding  NewsCategory = "Funding"
	CategoryResearch NewsCategory = "Research"
)

// FallbackSource marks a placeholder response produced when every source failed.
const FallbackSource = "Fallback"

// NewsItem is a normalized article from any news source
type NewsItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	Content     string       `json:"content,omitempty"`
	Source      string       `json:"source"`
	Author      string       `json:"author,omitempty"`
	URL         string       `json:"url"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	PublishedAt time.Time    `json:"publishedAt"`
	Category    NewsCategory `json:"category"`
	ReadTime    string       `json:"readTime,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

// NewsResponse is the result of one topic fetch.
type NewsResponse struct {
	Items       []NewsItem `json:"items"`
	LastUpdated time.Time  `json:"lastUpdated"`
	Source      string     `json:"source"`
}

// IsFallback reports whether the response is a placeholder set.
func (r NewsResponse) IsFallback() bool {
	return r.Source == FallbackSource
}
