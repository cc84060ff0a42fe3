package news

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
	"github.com/bilgisen/cyberpress/internal/upstream"
)

const (
	feedsLabel  = "RSS Feeds"
	searchLabel = "Search"
)

type Options struct {
	// Feeds fetches absolute feed URLs.
	Feeds *upstream.Client
	// Search is optional; nil disables the search boundary.
	Search      *upstream.Client
	SearchModel string
	Topics      map[Topic]TopicConfig
	Now         func() time.Time
	Logger      zerolog.Logger
}

type Client struct {
	feedsAPI    *upstream.Client
	searchAPI   *upstream.Client
	searchModel string
	topics      map[Topic]TopicConfig
	now         func() time.Time
	log         zerolog.Logger
}

func New(opts Options) *Client {
	if opts.Topics == nil {
		opts.Topics = DefaultTopics()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{
		feedsAPI:    opts.Feeds,
		searchAPI:   opts.Search,
		searchModel: opts.SearchModel,
		topics:      opts.Topics,
		now:         opts.Now,
		log:         opts.Logger,
	}
}

func (c *Client) FetchAINews(ctx context.Context) (models.NewsResponse, error) {
	return c.FetchTopic(ctx, TopicAI)
}

func (c *Client) FetchStartupNews(ctx context.Context) (models.NewsResponse, error) {
	return c.FetchTopic(ctx, TopicStartup)
}

func (c *Client) FetchCryptoNews(ctx context.Context) (models.NewsResponse, error) {
	return c.FetchTopic(ctx, TopicCrypto)
}

// FetchTopic returns the deduplicated, newest first and capped news of a
// topic. When every source fails it returns a placeholder response marked
// with the fallback source together with the error.
func (c *Client) FetchTopic(ctx context.Context, topic Topic) (models.NewsResponse, error) {
	cfg, ok := c.topics[topic]
	if !ok {
		return models.NewsResponse{}, fmt.Errorf("unknown news topic %q", topic)
	}

	resp, err := upstream.Cached(ctx, c.feedsAPI, "news:"+string(topic), func(ctx context.Context) (models.NewsResponse, error) {
		return c.fetch(ctx, topic, cfg)
	})
	if err != nil {
		c.log.Error().Err(err).Str("topic", string(topic)).Msg("All news sources failed, serving fallback")
		return Fallback(topic, cfg, c.now()), err
	}
	return resp, nil
}

type sourceResult struct {
	items []models.NewsItem
	err   error
}

func (c *Client) fetch(ctx context.Context, topic Topic, cfg TopicConfig) (models.NewsResponse, error) {
	start := time.Now()
	now := c.now()

	// one slot per feed plus the search boundary, so results keep feed order
	results := make([]sourceResult, len(cfg.Feeds)+1)
	var wg sync.WaitGroup

	for i, src := range cfg.Feeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := c.fetchFeed(ctx, src, now)
			results[i] = sourceResult{items: items, err: err}
		}()
	}

	searching := c.searchAPI != nil
	if searching {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := c.search(ctx, topic, cfg)
			results[len(cfg.Feeds)] = sourceResult{items: items, err: err}
		}()
	}
	wg.Wait()

	var (
		all     []models.NewsItem
		errs    []error
		labels  []string
		sources int
	)
	for i, r := range results {
		isSearch := i == len(cfg.Feeds)
		if isSearch && !searching {
			continue
		}
		sources++
		if r.err != nil {
			errs = append(errs, r.err)
			c.log.Warn().Err(r.err).Str("topic", string(topic)).Msg("News source failed")
			continue
		}
		all = append(all, r.items...)
		label := feedsLabel
		if isSearch {
			label = searchLabel
		}
		if !slices.Contains(labels, label) {
			labels = append(labels, label)
		}
	}

	if sources == 0 || len(errs) == sources {
		if len(errs) == 0 {
			errs = append(errs, errors.New("no news sources configured"))
		}
		return models.NewsResponse{}, fmt.Errorf("fetching %s news: %w", topic, errors.Join(errs...))
	}

	items := ranking.DedupeAndSort(all)
	if len(items) > cfg.Limit {
		items = items[:cfg.Limit]
	}

	c.log.Info().
		Str("topic", string(topic)).
		Int("fetched", len(all)).
		Int("kept", len(items)).
		Int("failed_sources", len(errs)).
		Dur("duration", time.Since(start)).
		Msg("Fetched news")

	return models.NewsResponse{
		Items:       items,
		LastUpdated: now,
		Source:      strings.Join(labels, ", "),
	}, nil
}

func (c *Client) fetchFeed(ctx context.Context, src FeedSource, now time.Time) ([]models.NewsItem, error) {
	body, err := c.feedsAPI.GetRaw(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.Name, err)
	}
	return parseFeed(string(body), src, now)
}

// Fallback is the deterministic placeholder set for a topic: up to three
// items whose source is the fallback marker.
func Fallback(topic Topic, cfg TopicConfig, now time.Time) models.NewsResponse {
	n := min(cfg.Limit, 3)
	items := make([]models.NewsItem, 0, n)
	for i := range n {
		items = append(items, models.NewsItem{
			ID:          fmt.Sprintf("fallback-%s-%d", topic, i),
			Title:       fmt.Sprintf("%s Technology Update", strings.ToUpper(string(topic))),
			Summary:     "We're currently updating our news sources. Please check back shortly for the latest updates.",
			Source:      "CyberPress",
			URL:         "#",
			PublishedAt: now,
			Category:    cfg.Category,
			ReadTime:    "2 min read",
		})
	}
	return models.NewsResponse{
		Items:       items,
		LastUpdated: now,
		Source:      models.FallbackSource,
	}
}
