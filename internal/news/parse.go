package news

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/bilgisen/cyberpress/internal/models"
	"github.com/bilgisen/cyberpress/internal/utils"
)

const (
	summaryLength  = 300
	wordsPerMinute = 200
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// CleanHTML removes HTML tags and normalizes whitespace
func CleanHTML(input string) string {
	cleaned := htmlTagRegex.ReplaceAllString(input, " ")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n-3])) + "..."
}

// ReadTime estimates reading time at 200 words per minute, at least one.
func ReadTime(text string) string {
	words := len(strings.Fields(text))
	minutes := max(1, int(math.Ceil(float64(words)/wordsPerMinute)))
	return fmt.Sprintf("%d min read", minutes)
}

// ItemID derives a stable ID from the link and title.
func ItemID(url, title string) string {
	return utils.Hash(url + "|" + title)[:16]
}

// normalizeFeedItem converts one parsed feed entry. Entries without a title
// or link are skipped.
func normalizeFeedItem(item *gofeed.Item, src FeedSource, now time.Time) (models.NewsItem, bool) {
	title := CleanHTML(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return models.NewsItem{}, false
	}

	published := now
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	content := CleanHTML(item.Content)
	summary := CleanHTML(item.Description)
	if summary == "" {
		summary = content
	}

	n := models.NewsItem{
		ID:          ItemID(link, title),
		Title:       title,
		Summary:     truncate(summary, summaryLength),
		Content:     content,
		Source:      src.Name,
		URL:         link,
		ImageURL:    imageOf(item),
		PublishedAt: published.UTC(),
		Category:    src.Category,
		ReadTime:    ReadTime(summary + " " + content),
		Tags:        item.Categories,
	}
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		n.Author = item.Authors[0].Name
	}
	return n, true
}

func imageOf(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// parseFeed parses an RSS or Atom document from src. gofeed parsers keep
// state, so each call gets its own.
func parseFeed(body string, src FeedSource, now time.Time) ([]models.NewsItem, error) {
	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src.Name, err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if n, ok := normalizeFeedItem(entry, src, now); ok {
			items = append(items, n)
		}
	}
	return items, nil
}
