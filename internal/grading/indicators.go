package grading

import "github.com/bilgisen/cyberpress/internal/models"

const rsiPeriod = 14

// RSI computes the relative strength index over the last 14 moves of prices.
// Fewer than 14 samples yield a neutral 50.
func RSI(prices []float64) float64 {
	if len(prices) < rsiPeriod {
		return 50
	}

	var gains, losses []float64
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := sumLast(gains, rsiPeriod) / rsiPeriod
	avgLoss := sumLast(losses, rsiPeriod) / rsiPeriod
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func sumLast(values []float64, n int) float64 {
	if len(values) > n {
		values = values[len(values)-n:]
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// VolumeTier labels 24h volume.
func VolumeTier(volume float64) string {
	switch {
	case volume > 1e9:
		return "Very High"
	case volume > 500e6:
		return "High"
	default:
		return "Medium"
	}
}

// ComputeIndicators derives the technical indicators of an asset.
func ComputeIndicators(price, change24h, volume float64, sparkline []float64) models.Indicators {
	macd := "Bearish"
	if change24h > 0 {
		macd = "Bullish"
	}
	return models.Indicators{
		RSI:    RSI(sparkline),
		MACD:   macd,
		MA50:   price * 0.95,
		Volume: VolumeTier(volume),
	}
}

// AssessRisk rates volatility from the 24h change and liquidity from volume.
func AssessRisk(change24h, volume float64) models.RiskAssessment {
	abs := change24h
	if abs < 0 {
		abs = -abs
	}

	volatility := models.RiskLow
	switch {
	case abs > 10:
		volatility = models.RiskHigh
	case abs > 5:
		volatility = models.RiskMedium
	}

	liquidity := models.RiskLow
	switch {
	case volume > 1e9:
		liquidity = models.RiskHigh
	case volume > 100e6:
		liquidity = models.RiskMedium
	}

	return models.RiskAssessment{
		Volatility:  volatility,
		Liquidity:   liquidity,
		Correlation: models.RiskMedium,
	}
}

// ApplyCryptoGrade fills every derived field of a from its raw metrics.
func ApplyCryptoGrade(a *models.CryptoAsset) {
	letter, reasoning := GradeCrypto(CoinMetrics{
		MarketCap:     a.MarketCap,
		Change24h:     a.Change24h,
		Volume24h:     a.Volume24h,
		MarketCapRank: a.MarketCapRank,
	})
	a.BuyGrade = string(letter)
	a.GradeReasoning = reasoning
	a.TargetPrice = TargetPrice(a.Price, a.Change24h)
}
