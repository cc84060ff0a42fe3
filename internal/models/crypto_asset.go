package models

import "time"

// RiskLevel is a coarse Low/Medium/High rating.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// PricePoint is one sample of a price history.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    *float64  `json:"volume,omitempty"`
}

// Indicators are derived technical signals.
type Indicators struct {
	RSI    float64 `json:"rsi"`
	MACD   string  `json:"macd"`
	MA50   float64 `json:"ma50"`
	Volume string  `json:"volume"`
}

type RiskAssessment struct {
	Volatility  RiskLevel `json:"volatility"`
	Liquidity   RiskLevel `json:"liquidity"`
	Correlation RiskLevel `json:"correlation"`
}

// CryptoAsset is one coin in a price snapshot.
//
// BuyGrade, GradeReasoning and TargetPrice are outputs of the grading
// package and are never set from upstream data.
type CryptoAsset struct {
	ID             string         `json:"id"`
	Symbol         string         `json:"symbol"`
	Name           string         `json:"name"`
	Rank           int            `json:"rank"`
	MarketCapRank  int            `json:"marketCapRank"`
	Price          float64        `json:"price"`
	Change24h      float64        `json:"change24h"`
	ChangeValue24h float64        `json:"changeValue24h"`
	MarketCap      float64        `json:"marketCap"`
	Volume24h      float64        `json:"volume24h"`
	BuyGrade       string         `json:"buyGrade"`
	TargetPrice    float64        `json:"targetPrice"`
	GradeReasoning string         `json:"gradeReasoning"`
	LastUpdated    time.Time      `json:"lastUpdated"`
	PriceHistory   []PricePoint   `json:"priceHistory"`
	Indicators     Indicators     `json:"indicators"`
	RiskAssessment RiskAssessment `json:"riskAssessment"`
}
