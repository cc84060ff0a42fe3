// Package ranking post-processes aggregated collections: title based
// deduplication, recency ordering and popularity ranks.
package ranking

import (
	"slices"
	"strings"

	"github.com/bilgisen/cyberpress/internal/models"
)

// DuplicateThreshold is the title similarity at which a later item is
// considered a copy of an earlier one.
const DuplicateThreshold = 0.8

// TitleSimilarity is the number of words of a that also occur in b divided
// by the word count of the longer title. Comparison is case insensitive.
func TitleSimilarity(a, b string) float64 {
	wordsA := strings.Fields(strings.ToLower(a))
	wordsB := strings.Fields(strings.ToLower(b))
	longest := max(len(wordsA), len(wordsB))
	if longest == 0 {
		return 0
	}

	inB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		inB[w] = struct{}{}
	}
	shared := 0
	for _, w := range wordsA {
		if _, ok := inB[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(longest)
}

// DedupeAndSort keeps the first item of every group of similar titles, in
// input order, then orders the survivors newest first. Items published at
// the same instant keep their relative order. The input is not modified.
func DedupeAndSort(items []models.NewsItem) []models.NewsItem {
	kept := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		if !isDuplicate(item, kept) {
			kept = append(kept, item)
		}
	}
	SortByRecency(kept)
	return kept
}

func isDuplicate(item models.NewsItem, kept []models.NewsItem) bool {
	for _, k := range kept {
		if TitleSimilarity(item.Title, k.Title) >= DuplicateThreshold {
			return true
		}
	}
	return false
}

// SortByRecency stable sorts items by PublishedAt, newest first.
func SortByRecency(items []models.NewsItem) {
	slices.SortStableFunc(items, func(a, b models.NewsItem) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
}
