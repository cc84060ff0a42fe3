package news

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/cyberpress/internal/models"
)

// searchSource labels items produced by the search boundary when the reply
// does not name a source.
const searchSource = "Tech News"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         float64       `json:"temperature"`
	MaxTokens           int           `json:"max_tokens"`
	SearchRecencyFilter string        `json:"search_recency_filter,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type searchItem struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

func searchPrompt(limit int) string {
	return fmt.Sprintf(`You are a tech news curator. Return exactly %d recent news items in valid JSON format. `+
		`Use this exact structure: {"items": [{"title": "string", "summary": "string", "source": "string", "url": "string", "publishedAt": "ISO date string"}]}. `+
		`Focus on recent, high-quality news from reputable tech sources. Each summary should be 2-3 sentences.`, limit)
}

// search asks the chat completions boundary for topic news.
func (c *Client) search(ctx context.Context, topic Topic, cfg TopicConfig) ([]models.NewsItem, error) {
	req := chatRequest{
		Model: c.searchModel,
		Messages: []chatMessage{
			{Role: "system", Content: searchPrompt(cfg.Limit)},
			{Role: "user", Content: cfg.Query},
		},
		Temperature:         0.2,
		MaxTokens:           3000,
		SearchRecencyFilter: "week",
	}

	var resp chatResponse
	if err := c.searchAPI.PostJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: no choices in search response", c.searchAPI.Name())
	}

	items, err := parseSearchContent(resp.Choices[0].Message.Content, topic, cfg, c.now())
	if err != nil {
		c.log.Warn().Err(err).Str("topic", string(topic)).Msg("Search reply is not JSON, using a placeholder item")
		return []models.NewsItem{syntheticItem(topic, cfg.Category, c.now())}, nil
	}
	return items, nil
}

// stripCodeFence removes a surrounding markdown code block, which chat
// models often add around JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseSearchContent(content string, topic Topic, cfg TopicConfig, now time.Time) ([]models.NewsItem, error) {
	var payload struct {
		Items []searchItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &payload); err != nil {
		return nil, fmt.Errorf("parse search content: %w", err)
	}

	items := payload.Items
	if len(items) > cfg.Limit {
		items = items[:cfg.Limit]
	}

	out := make([]models.NewsItem, 0, len(items))
	for i, it := range items {
		n := models.NewsItem{
			Title:       it.Title,
			Summary:     truncate(CleanHTML(it.Summary), summaryLength),
			Source:      it.Source,
			URL:         it.URL,
			PublishedAt: now,
			Category:    cfg.Category,
		}
		if n.Title == "" {
			n.Title = fmt.Sprintf("%s News Update %d", cfg.Category, i+1)
		}
		if n.Summary == "" {
			n.Summary = "Latest developments in technology and innovation."
		}
		if n.Source == "" {
			n.Source = searchSource
		}
		if n.URL == "" {
			n.URL = "#"
		}
		if t, err := time.Parse(time.RFC3339, it.PublishedAt); err == nil {
			n.PublishedAt = t.UTC()
		}
		n.ReadTime = ReadTime(n.Summary)
		n.ID = ItemID(n.URL, n.Title)
		out = append(out, n)
	}
	return out, nil
}

func syntheticItem(topic Topic, category models.NewsCategory, now time.Time) models.NewsItem {
	title := fmt.Sprintf("Latest %s Updates", category)
	return models.NewsItem{
		ID:          ItemID(string(topic), title),
		Title:       title,
		Summary:     "Stay tuned for the latest developments in this rapidly evolving space.",
		Source:      searchSource,
		URL:         "#",
		PublishedAt: now,
		Category:    category,
		ReadTime:    "1 min read",
	}
}
