// Package prices reads market data from CoinGecko and turns it into graded
// crypto assets.
package prices

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/cyberpress/internal/grading"
	"github.com/bilgisen/cyberpress/internal/models"
	"github.com/bilgisen/cyberpress/internal/ranking"
	"github.com/bilgisen/cyberpress/internal/upstream"
)

// APIKeyHeader carries the CoinGecko demo key.
const APIKeyHeader = "x-cg-demo-api-key"

// market is one row of /coins/markets. Nullable numbers are pointers.
type market struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	TotalVolume              *float64 `json:"total_volume"`
	PriceChange24h           *float64 `json:"price_change_24h"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	LastUpdated              string   `json:"last_updated"`
	SparklineIn7d            *struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

type marketChart struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

type Options struct {
	API    *upstream.Client
	Now    func() time.Time
	Logger zerolog.Logger
}

type Client struct {
	api *upstream.Client
	now func() time.Time
	log zerolog.Logger
}

func New(opts Options) *Client {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{api: opts.API, now: opts.Now, log: opts.Logger}
}

// FetchTopAssets returns the top assets by market cap, graded and ranked.
// On failure it returns the single element fallback with the error.
func (c *Client) FetchTopAssets(ctx context.Context, limit int) ([]models.CryptoAsset, error) {
	assets, err := upstream.Cached(ctx, c.api, "markets:"+strconv.Itoa(limit), func(ctx context.Context) ([]models.CryptoAsset, error) {
		return c.fetchMarkets(ctx, limit)
	})
	if err != nil {
		c.log.Error().Err(err).Int("limit", limit).Msg("Failed to fetch crypto data, serving fallback")
		return Fallback(c.now()), err
	}
	return assets, nil
}

func (c *Client) fetchMarkets(ctx context.Context, limit int) ([]models.CryptoAsset, error) {
	var rows []market
	err := c.api.GetJSON(ctx, "/coins/markets", map[string]string{
		"vs_currency":             "usd",
		"order":                   "market_cap_desc",
		"per_page":                strconv.Itoa(limit),
		"page":                    "1",
		"sparkline":               "true",
		"price_change_percentage": "24h",
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetching markets: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fetching markets: empty response")
	}

	now := c.now()
	assets := make([]models.CryptoAsset, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		a := normalize(row, now)
		if seen[a.Symbol] {
			c.log.Warn().Str("symbol", a.Symbol).Str("id", a.ID).Msg("Skipping duplicate symbol")
			continue
		}
		seen[a.Symbol] = true
		assets = append(assets, a)
	}

	c.log.Info().Int("assets", len(assets)).Msg("Fetched crypto data")
	return ranking.RankAssets(assets), nil
}

// normalize maps a market row to the canonical asset and derives every
// graded field from it.
func normalize(m market, now time.Time) models.CryptoAsset {
	a := models.CryptoAsset{
		ID:             m.ID,
		Symbol:         strings.ToUpper(m.Symbol),
		Name:           m.Name,
		Price:          deref(m.CurrentPrice),
		Change24h:      deref(m.PriceChangePercentage24h),
		ChangeValue24h: deref(m.PriceChange24h),
		MarketCap:      deref(m.MarketCap),
		Volume24h:      deref(m.TotalVolume),
		LastUpdated:    now,
	}
	if m.MarketCapRank != nil {
		a.MarketCapRank = *m.MarketCapRank
	}
	if t, err := time.Parse(time.RFC3339, m.LastUpdated); err == nil {
		a.LastUpdated = t.UTC()
	}

	var sparkline []float64
	if m.SparklineIn7d != nil {
		sparkline = m.SparklineIn7d.Price
	}
	a.PriceHistory = priceHistory(a.Price, sparkline, now)
	a.Indicators = grading.ComputeIndicators(a.Price, a.Change24h, a.Volume24h, sparkline)
	a.RiskAssessment = grading.AssessRisk(a.Change24h, a.Volume24h)
	grading.ApplyCryptoGrade(&a)
	return a
}

// priceHistory turns the hourly 7d sparkline into points ending at now. An
// empty sparkline gives a flat daily history of the current price.
func priceHistory(price float64, sparkline []float64, now time.Time) []models.PricePoint {
	if len(sparkline) == 0 {
		points := make([]models.PricePoint, 0, 7)
		for i := 6; i >= 0; i-- {
			points = append(points, models.PricePoint{
				Timestamp: now.Add(-time.Duration(i) * 24 * time.Hour),
				Price:     price,
			})
		}
		return points
	}

	points := make([]models.PricePoint, len(sparkline))
	for i, p := range sparkline {
		points[i] = models.PricePoint{
			Timestamp: now.Add(-time.Duration(len(sparkline)-1-i) * time.Hour),
			Price:     p,
		}
	}
	return points
}

// FetchHistory returns the price history of one asset over days, oldest
// first, with volumes where the boundary provides them.
func (c *Client) FetchHistory(ctx context.Context, id string, days int) ([]models.PricePoint, error) {
	if id == "" || days <= 0 {
		return nil, fmt.Errorf("invalid history request: id=%q days=%d", id, days)
	}

	key := fmt.Sprintf("history:%s:%d", id, days)
	return upstream.Cached(ctx, c.api, key, func(ctx context.Context) ([]models.PricePoint, error) {
		var chart marketChart
		err := c.api.GetJSON(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", map[string]string{
			"vs_currency": "usd",
			"days":        strconv.Itoa(days),
		}, &chart)
		if err != nil {
			return nil, fmt.Errorf("fetching history of %s: %w", id, err)
		}

		volumes := make(map[int64]float64, len(chart.TotalVolumes))
		for _, v := range chart.TotalVolumes {
			volumes[int64(v[0])] = v[1]
		}

		points := make([]models.PricePoint, 0, len(chart.Prices))
		for _, p := range chart.Prices {
			ms := int64(p[0])
			point := models.PricePoint{Timestamp: time.UnixMilli(ms).UTC(), Price: p[1]}
			if v, ok := volumes[ms]; ok {
				point.Volume = &v
			}
			points = append(points, point)
		}
		return points, nil
	})
}

// Fallback is the deterministic placeholder snapshot: one Bitcoin entry
// graded like any other asset.
func Fallback(now time.Time) []models.CryptoAsset {
	a := models.CryptoAsset{
		ID:             "bitcoin",
		Symbol:         "BTC",
		Name:           "Bitcoin",
		Rank:           1,
		MarketCapRank:  1,
		Price:          67420.50,
		Change24h:      2.4,
		ChangeValue24h: 1580.30,
		MarketCap:      1.32e12,
		Volume24h:      28e9,
		LastUpdated:    now,
	}
	a.PriceHistory = priceHistory(a.Price, nil, now)
	a.Indicators = grading.ComputeIndicators(a.Price, a.Change24h, a.Volume24h, nil)
	a.RiskAssessment = grading.AssessRisk(a.Change24h, a.Volume24h)
	grading.ApplyCryptoGrade(&a)
	return []models.CryptoAsset{a}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
