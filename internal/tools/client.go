// Package tools lists AI tools graded from their GitHub repository metadata.
package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/rs/zerolog"

	"github.com/bilgisen/cyberpress/internal/grading"
	"github.com/bilgisen/cyberpress/internal/models"
	"github.com/bilgisen/cyberpress/internal/ranking"
	"github.com/bilgisen/cyberpress/internal/upstream"
)

type Options struct {
	GitHub *github.Client
	// Boundary supplies the deadline, circuit breaker and cache for GitHub calls.
	Boundary *upstream.Client
	Repos    []Repo
	Now      func() time.Time
	Logger   zerolog.Logger
}

type Client struct {
	gh       *github.Client
	boundary *upstream.Client
	repos    []Repo
	now      func() time.Time
	log      zerolog.Logger
}

// NewGitHubClient returns an API client, authenticated when token is set.
// A non-empty baseURL points it at another API host.
func NewGitHubClient(token, baseURL string) (*github.Client, error) {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	if baseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub URL: %w", err)
		}
	}
	return gh, nil
}

func New(opts Options) *Client {
	if opts.Repos == nil {
		opts.Repos = TrackedRepos()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{
		gh:       opts.GitHub,
		boundary: opts.Boundary,
		repos:    opts.Repos,
		now:      opts.Now,
		log:      opts.Logger,
	}
}

// FetchListings reads every tracked repository once and returns the ranked
// listing of each category that has at least one readable repository,
// capped at limit per category.
func (c *Client) FetchListings(ctx context.Context, limit int) (map[models.ToolCategory][]models.AITool, error) {
	all, err := c.readRepos(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("No repository could be read, serving fallback")
		return map[models.ToolCategory][]models.AITool{
			models.ToolTextGeneration: Fallback(models.ToolTextGeneration, c.now()),
		}, err
	}

	listings := make(map[models.ToolCategory][]models.AITool)
	for _, t := range all {
		listings[t.Category] = append(listings[t.Category], t)
	}
	for cat, list := range listings {
		listings[cat] = capTools(ranking.RankTools(list), limit)
	}
	return listings, nil
}

// FetchTools returns the ranked listing of one category.
func (c *Client) FetchTools(ctx context.Context, category models.ToolCategory, limit int) ([]models.AITool, error) {
	all, err := c.readRepos(ctx)
	if err != nil {
		c.log.Error().Err(err).Str("category", string(category)).Msg("No repository could be read, serving fallback")
		return Fallback(category, c.now()), err
	}

	var list []models.AITool
	for _, t := range all {
		if t.Category == category {
			list = append(list, t)
		}
	}
	return capTools(ranking.RankTools(list), limit), nil
}

// DiscoverEmerging returns the curated emerging tools ranked by stars.
func (c *Client) DiscoverEmerging(ctx context.Context) ([]models.AITool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ranking.RankTools(emergingTools(c.now())), nil
}

func capTools(list []models.AITool, limit int) []models.AITool {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

// readRepos reads all tracked repositories concurrently. Unreadable ones are
// logged and skipped; it fails only when none could be read.
func (c *Client) readRepos(ctx context.Context) ([]models.AITool, error) {
	return upstream.Cached(ctx, c.boundary, "repos", func(ctx context.Context) ([]models.AITool, error) {
		results := make([]*models.AITool, len(c.repos))
		errs := make([]error, len(c.repos))

		var wg sync.WaitGroup
		for i, repo := range c.repos {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tool, err := c.readRepo(ctx, repo)
				if err != nil {
					c.log.Warn().Err(err).Str("repo", repo.FullName()).Msg("Skipping repository")
					errs[i] = err
					return
				}
				results[i] = &tool
			}()
		}
		wg.Wait()

		tools := make([]models.AITool, 0, len(c.repos))
		for _, t := range results {
			if t != nil {
				tools = append(tools, *t)
			}
		}
		if len(tools) == 0 {
			return nil, fmt.Errorf("reading repositories: %w", errors.Join(errs...))
		}
		c.log.Info().Int("read", len(tools)).Int("tracked", len(c.repos)).Msg("Fetched AI tools")
		return tools, nil
	})
}

func (c *Client) readRepo(ctx context.Context, repo Repo) (models.AITool, error) {
	var r *github.Repository
	err := c.boundary.Guard(ctx, func(ctx context.Context) error {
		var resp *github.Response
		var err error
		r, resp, err = c.gh.Repositories.Get(ctx, repo.Owner, repo.Name)
		if err != nil {
			status := 0
			if resp != nil && resp.Response != nil {
				status = resp.StatusCode
			}
			if status == 0 || status == http.StatusOK {
				return err
			}
			return &upstream.Error{Boundary: c.boundary.Name(), Status: status, Message: repo.FullName(), Err: err}
		}
		return nil
	})
	if err != nil {
		return models.AITool{}, err
	}
	return toTool(repo, r, c.now()), nil
}

func toTool(repo Repo, r *github.Repository, now time.Time) models.AITool {
	updated := r.GetUpdatedAt().Time
	url := repo.URL
	if url == "" {
		url = r.GetHTMLURL()
	}
	description := r.GetDescription()
	if description == "" {
		description = "AI tool repository"
	}

	t := models.AITool{
		ID:          repo.ID(),
		Name:        repo.Display,
		Description: description,
		Category:    repo.Category,
		URL:         url,
		Grades: grading.GradeTool(grading.RepoMetrics{
			Stars:       r.GetStargazersCount(),
			Forks:       r.GetForksCount(),
			LastUpdated: updated,
		}, now),
		GithubURL: r.GetHTMLURL(),
		Stars:     r.GetStargazersCount(),
		Forks:     r.GetForksCount(),
	}
	if !updated.IsZero() {
		u := updated.UTC()
		t.LastCommit = &u
	}
	return t
}

// Fallback is the single placeholder tool served when GitHub is unreachable.
func Fallback(category models.ToolCategory, now time.Time) []models.AITool {
	return []models.AITool{{
		ID:          "fallback-" + string(category),
		Name:        "Tool listings unavailable",
		Description: "Repository data could not be loaded. Showing a placeholder until the next refresh.",
		Category:    category,
		URL:         "https://github.com",
		Rank:        1,
		Change:      models.ChangeSame,
		Grades:      grading.GradeTool(grading.RepoMetrics{LastUpdated: now}, now),
	}}
}
