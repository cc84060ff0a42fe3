// Package news aggregates topic news from RSS feeds and an optional
// generative search boundary.
package news

import "github.com/bilgisen/cyberpress/internal/models"

// Topic selects a feed list, a search query and an item cap.
type Topic string

const (
	TopicAI      Topic = "ai"
	TopicStartup Topic = "startup"
	TopicCrypto  Topic = "crypto"
)

// FeedSource is one named RSS feed.
type FeedSource struct {
	Name     string
	URL      string
	Category models.NewsCategory
}

type TopicConfig struct {
	Feeds []FeedSource
	Limit int
	// Category and Query drive the search boundary.
	Category models.NewsCategory
	Query    string
}

// DefaultTopics returns the built-in feed lists.
func DefaultTopics() map[Topic]TopicConfig {
	return map[Topic]TopicConfig{
		TopicAI: {
			Feeds: []FeedSource{
				{Name: "MIT Technology Review", URL: "https://www.technologyreview.com/feed/", Category: models.CategoryTech},
				{Name: "VentureBeat AI", URL: "https://venturebeat.com/category/ai/feed/", Category: models.CategoryAI},
				{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/", Category: models.CategoryAI},
			},
			Limit:    20,
			Category: models.CategoryAI,
			Query:    "Latest AI news, machine learning breakthroughs, and artificial intelligence developments",
		},
		TopicStartup: {
			Feeds: []FeedSource{
				{Name: "TechCrunch Startups", URL: "https://techcrunch.com/category/startups/feed/", Category: models.CategoryStartup},
				{Name: "Y Combinator", URL: "https://blog.ycombinator.com/feed", Category: models.CategoryStartup},
				{Name: "First Round Review", URL: "https://review.firstround.com/feed", Category: models.CategoryStartup},
			},
			Limit:    20,
			Category: models.CategoryStartup,
			Query:    "Recent tech startup funding rounds, acquisitions, and new company launches",
		},
		TopicCrypto: {
			Feeds: []FeedSource{
				{Name: "CoinDesk", URL: "https://www.coindesk.com/arc/outboundfeeds/rss/", Category: models.CategoryTech},
				{Name: "Cointelegraph", URL: "https://cointelegraph.com/rss", Category: models.CategoryTech},
			},
			Limit:    10,
			Category: models.CategoryTech,
			Query:    "Latest cryptocurrency news, blockchain developments, and digital asset market updates",
		},
	}
}
