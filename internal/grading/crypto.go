// Package grading turns raw market and repository metrics into letter grades.
// Every function here is pure and deterministic.
package grading

import (
	"math"
	"strings"
)

// Letter is a grade from A+ down to D.
type Letter string

const (
	APlus  Letter = "A+"
	A      Letter = "A"
	AMinus Letter = "A-"
	BPlus  Letter = "B+"
	B      Letter = "B"
	BMinus Letter = "B-"
	CPlus  Letter = "C+"
	C      Letter = "C"
	D      Letter = "D"
)

// CoinMetrics are the inputs of the crypto buy grade.
type CoinMetrics struct {
	MarketCap     float64
	Change24h     float64 // percent
	Volume24h     float64
	MarketCapRank int // 0 when unknown
}

// letterThresholds maps a minimum score to its letter, best first.
var letterThresholds = []struct {
	min    int
	letter Letter
}{
	{85, APlus},
	{75, A},
	{65, AMinus},
	{55, BPlus},
	{45, B},
	{35, BMinus},
	{25, CPlus},
	{15, C},
}

// Score sums four signals worth 0-25 points each.
func Score(m CoinMetrics) int {
	return marketCapPoints(m.MarketCap) +
		changePoints(m.Change24h) +
		volumePoints(m.Volume24h) +
		rankPoints(m.MarketCapRank)
}

func marketCapPoints(marketCap float64) int {
	switch {
	case marketCap > 100e9:
		return 25
	case marketCap > 10e9:
		return 20
	case marketCap > 1e9:
		return 15
	case marketCap > 100e6:
		return 10
	default:
		return 5
	}
}

func changePoints(change float64) int {
	switch {
	case change > 10:
		return 25
	case change > 5:
		return 20
	case change > 0:
		return 15
	case change > -5:
		return 10
	case change > -10:
		return 5
	default:
		return 0
	}
}

func volumePoints(volume float64) int {
	switch {
	case volume > 5e9:
		return 25
	case volume > 1e9:
		return 20
	case volume > 500e6:
		return 15
	case volume > 100e6:
		return 10
	default:
		return 5
	}
}

func rankPoints(rank int) int {
	switch {
	case rank <= 0:
		return 5
	case rank <= 10:
		return 25
	case rank <= 25:
		return 20
	case rank <= 50:
		return 15
	case rank <= 100:
		return 10
	default:
		return 5
	}
}

// LetterForScore maps a 0-100 score to its letter.
func LetterForScore(score int) Letter {
	for _, t := range letterThresholds {
		if score >= t.min {
			return t.letter
		}
	}
	return D
}

// Reasoning explains a grade using the same thresholds as Score.
func Reasoning(m CoinMetrics) string {
	var reasons []string

	switch {
	case m.Change24h > 5:
		reasons = append(reasons, "strong bullish momentum")
	case m.Change24h > 0:
		reasons = append(reasons, "positive price action")
	case m.Change24h > -5:
		reasons = append(reasons, "stable price performance")
	default:
		reasons = append(reasons, "recent price decline")
	}

	if m.Volume24h > 1e9 {
		reasons = append(reasons, "high trading volume")
	}

	if m.MarketCapRank > 0 {
		switch {
		case m.MarketCapRank <= 10:
			reasons = append(reasons, "top tier market cap")
		case m.MarketCapRank <= 50:
			reasons = append(reasons, "established market presence")
		}
	}

	if len(reasons) == 0 {
		return "mixed market signals"
	}
	return strings.Join(reasons, ", ")
}

// GradeCrypto returns the buy grade and its justification.
func GradeCrypto(m CoinMetrics) (Letter, string) {
	return LetterForScore(Score(m)), Reasoning(m)
}

// TargetPrice projects the 24h momentum forward. Gains are scaled by 1.2
// and losses by 0.8 before being applied.
func TargetPrice(price, change24h float64) float64 {
	factor := 0.8
	if change24h > 0 {
		factor = 1.2
	}
	multiplier := 1 + (change24h/100)*factor
	return math.Round(price*multiplier*100) / 100
}
