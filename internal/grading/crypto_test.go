package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeCryptoTopTierCoin(t *testing.T) {
	m := CoinMetrics{MarketCap: 150e9, Change24h: 12, Volume24h: 6e9, MarketCapRank: 3}

	assert.Equal(t, 100, Score(m))

	letter, reasoning := GradeCrypto(m)
	assert.Equal(t, APlus, letter)
	assert.Contains(t, reasoning, "strong bullish momentum")
	assert.Contains(t, reasoning, "high trading volume")
	assert.Contains(t, reasoning, "top tier market cap")
}

func TestGradeCryptoIsDeterministic(t *testing.T) {
	m := CoinMetrics{MarketCap: 3e9, Change24h: -3.2, Volume24h: 700e6, MarketCapRank: 40}
	l1, r1 := GradeCrypto(m)
	l2, r2 := GradeCrypto(m)
	assert.Equal(t, l1, l2)
	assert.Equal(t, r1, r2)
	// 15 + 10 + 15 + 15
	assert.Equal(t, 55, Score(m))
	assert.Equal(t, BPlus, l1)
	assert.Equal(t, "stable price performance, established market presence", r1)
}

func TestScoreBuckets(t *testing.T) {
	tests := []struct {
		name string
		m    CoinMetrics
		want int
	}{
		{"bottom of every bucket", CoinMetrics{MarketCap: 1e6, Change24h: -20, Volume24h: 1e6, MarketCapRank: 500}, 5 + 0 + 5 + 5},
		{"unknown rank", CoinMetrics{MarketCap: 20e9, Change24h: 6, Volume24h: 2e9}, 20 + 20 + 20 + 5},
		{"boundaries are exclusive", CoinMetrics{MarketCap: 100e9, Change24h: 10, Volume24h: 5e9, MarketCapRank: 11}, 20 + 20 + 20 + 20},
		{"small cap slight dip", CoinMetrics{MarketCap: 200e6, Change24h: -7, Volume24h: 200e6, MarketCapRank: 90}, 10 + 5 + 10 + 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.m))
		})
	}
}

func TestLetterForScoreThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  Letter
	}{
		{100, APlus}, {85, APlus}, {84, A}, {75, A}, {74, AMinus}, {65, AMinus},
		{55, BPlus}, {45, B}, {35, BMinus}, {25, CPlus}, {15, C}, {14, D}, {0, D},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LetterForScore(tt.score), "score %d", tt.score)
	}
}

func TestLetterForScoreIsMonotonic(t *testing.T) {
	order := map[Letter]int{D: 0, C: 1, CPlus: 2, BMinus: 3, B: 4, BPlus: 5, AMinus: 6, A: 7, APlus: 8}
	prev := order[LetterForScore(0)]
	for score := 1; score <= 100; score++ {
		cur := order[LetterForScore(score)]
		assert.GreaterOrEqual(t, cur, prev, "grade dropped at score %d", score)
		prev = cur
	}
}

func TestReasoningClauses(t *testing.T) {
	assert.Equal(t, "recent price decline", Reasoning(CoinMetrics{Change24h: -8, Volume24h: 5e6}))
	assert.Equal(t, "positive price action, high trading volume", Reasoning(CoinMetrics{Change24h: 1, Volume24h: 2e9, MarketCapRank: 70}))
}

func TestTargetPrice(t *testing.T) {
	tests := []struct {
		price, change, want float64
	}{
		{100, 10, 112},
		{100, -10, 92},
		{100, 0, 100},
		{67420.50, 2.4, 69362.21},
		{1.2345, 5, 1.31},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, TargetPrice(tt.price, tt.change), 1e-9, "price %v change %v", tt.price, tt.change)
	}
}
