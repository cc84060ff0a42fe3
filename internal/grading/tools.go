package grading

import (
	"time"

	"github.com/bilgisen/cyberpress/internal/models"
)

// Defaults for grades no repository metric can inform.
const (
	DefaultBarrierToEntry = BPlus
	DefaultCost           = A
)

// RepoMetrics are the inputs of the tool grades.
type RepoMetrics struct {
	Stars       int
	Forks       int
	LastUpdated time.Time
}

type tier struct {
	min    float64
	letter Letter
}

var starTiers = []tier{
	{50000, APlus}, {25000, A}, {10000, AMinus}, {5000, BPlus},
	{2000, B}, {1000, BMinus}, {500, CPlus},
}

var forkTiers = []tier{
	{10000, APlus}, {5000, A}, {2000, AMinus}, {1000, BPlus},
	{500, B}, {200, BMinus}, {100, CPlus},
}

// activityTiers are upper bounds in days since the last update.
var activityTiers = []tier{
	{7, APlus}, {14, A}, {30, AMinus}, {60, BPlus},
	{90, B}, {180, BMinus}, {365, CPlus},
}

func atLeast(value float64, tiers []tier) Letter {
	for _, t := range tiers {
		if value >= t.min {
			return t.letter
		}
	}
	return C
}

// PopularityGrade grades the star count.
func PopularityGrade(stars int) Letter {
	return atLeast(float64(stars), starTiers)
}

// AdoptionGrade grades the fork count.
func AdoptionGrade(forks int) Letter {
	return atLeast(float64(forks), forkTiers)
}

// FreshnessGrade grades the days elapsed since the last update.
func FreshnessGrade(daysSinceUpdate float64) Letter {
	for _, t := range activityTiers {
		if daysSinceUpdate <= t.min {
			return t.letter
		}
	}
	return C
}

// GradeTool derives the five tool grades as of now.
func GradeTool(m RepoMetrics, now time.Time) models.ToolGrades {
	days := now.Sub(m.LastUpdated).Hours() / 24
	if m.LastUpdated.IsZero() {
		days = 10 * 365
	}
	return models.ToolGrades{
		BarrierToEntry: string(DefaultBarrierToEntry),
		Cost:           string(DefaultCost),
		Efficiency:     string(AdoptionGrade(m.Forks)),
		Speed:          string(FreshnessGrade(days)),
		Community:      string(PopularityGrade(m.Stars)),
	}
}
