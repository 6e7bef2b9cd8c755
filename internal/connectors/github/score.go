package github

import (
	"math"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

const (
	day  = 24 * time.Hour
	year = 365 * day

	// activeWindow is how recently a push must land for full activity.
	activeWindow = 7 * day

	// staleAfter is the push age at which activity drops to zero.
	staleAfter = year

	// matureAge is the repository age at which maturity saturates.
	matureAge = 4 * year
)

// Scores rates repo on four metrics, each clamped to 0..100:
//
//	p  popularity: 20*log10(stars + forks/2 + 1), so 100k stars is 100
//	h  hotness:    25*log10(stars per year of age + 1), so 10k/yr is 100
//	a  activity:   100 within a week of the last push, falling linearly to 0 after a year
//	m  maturity:   age as a share of four years
//
// The second return value is the rounded mean of the four.
func Scores(repo *gh.Repository, now time.Time) (map[string]int, int) {
	stars := float64(repo.GetStargazersCount())
	forks := float64(repo.GetForksCount())
	created := repo.GetCreatedAt().Time
	pushed := repo.GetPushedAt().Time

	age := now.Sub(created)
	if created.IsZero() || age < 0 {
		age = 0
	}
	ageYears := math.Max(age.Hours()/year.Hours(), 1.0/12)

	scores := map[string]int{
		driven.ScorePopularity: clamp(20 * math.Log10(stars+forks/2+1)),
		driven.ScoreHotness:    clamp(25 * math.Log10(stars/ageYears+1)),
		driven.ScoreActivity:   activity(pushed, now),
		driven.ScoreMaturity:   clamp(100 * age.Hours() / matureAge.Hours()),
	}

	sum := 0
	for _, v := range scores {
		sum += v
	}
	return scores, int(math.Round(float64(sum) / float64(len(scores))))
}

func activity(pushed, now time.Time) int {
	if pushed.IsZero() {
		return 0
	}
	since := now.Sub(pushed)
	switch {
	case since <= activeWindow:
		return 100
	case since >= staleAfter:
		return 0
	}
	span := (staleAfter - activeWindow).Hours()
	return clamp(100 * (1 - (since-activeWindow).Hours()/span))
}

func clamp(v float64) int {
	return int(math.Round(math.Min(100, math.Max(0, v))))
}
