package ranking

import (
	"cmp"
	"slices"

	"github.com/bilgisen/cyberpress/internal/models"
)

// Rank stable sorts a copy of items by popularity, highest first, and
// assigns ranks 1..N in the sorted order through setRank.
func Rank[T any](items []T, popularity func(T) float64, setRank func(*T, int)) []T {
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, func(a, b T) int {
		return cmp.Compare(popularity(b), popularity(a))
	})
	for i := range ranked {
		setRank(&ranked[i], i+1)
	}
	return ranked
}

// RankTools ranks tools by star count.
func RankTools(tools []models.AITool) []models.AITool {
	return Rank(tools,
		func(t models.AITool) float64 { return float64(t.Stars) },
		func(t *models.AITool, rank int) { t.Rank = rank },
	)
}

// RankAssets ranks assets by market capitalization.
func RankAssets(assets []models.CryptoAsset) []models.CryptoAsset {
	return Rank(assets,
		func(a models.CryptoAsset) float64 { return a.MarketCap },
		func(a *models.CryptoAsset, rank int) { a.Rank = rank },
	)
}

// MarkChanges sets the Change field of every tool in next by comparing its
// rank with the listing in previous. Tools absent from previous are new.
func MarkChanges(previous, next []models.AITool) []models.AITool {
	before := make(map[string]int, len(previous))
	for _, t := range previous {
		before[t.ID] = t.Rank
	}

	marked := slices.Clone(next)
	for i := range marked {
		old, ok := before[marked[i].ID]
		switch {
		case !ok:
			marked[i].Change = models.ChangeNew
		case marked[i].Rank < old:
			marked[i].Change = models.ChangeUp
		case marked[i].Rank > old:
			marked[i].Change = models.ChangeDown
		default:
			marked[i].Change = models.ChangeSame
		}
	}
	return marked
}
