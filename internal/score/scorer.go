package score

import (
	"math"
	"math/rand"
	"time"

	"github.com/ppiankov/claimaudit/internal/model"
)

// Scorer aggregates claim sets into AnalysisStats
type Scorer struct {
	rng *rand.Rand
}

// NewScorer creates a scorer. rng is only consulted when no document size
// is given; a nil rng is seeded from the clock.
func NewScorer(rng *rand.Rand) *Scorer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scorer{rng: rng}
}

// Calculate tallies claims per verdict and category and derives the
// document trust score. A nil fileSizeMB draws the score uniformly from
// [75,95]. The input slice is never modified.
func (s *Scorer) Calculate(claims []model.Claim, fileSizeMB *float64) model.AnalysisStats {
	stats := model.AnalysisStats{
		TotalClaims:       len(claims),
		AverageTrustScore: model.AverageTrustScoreConstant,
		MeanTrustScore:    MeanTrustScore(claims),
		CategoryStats:     make(map[model.Category]int),
		ConsistencyStats:  make(map[model.Consistency]int),
	}

	for _, c := range claims {
		switch c.Consistency {
		case model.ConsistencySupported:
			stats.SupportedClaims++
		case model.ConsistencyContradicted:
			stats.ContradictedClaims++
		case model.ConsistencyUnverifiable:
			stats.UnverifiableClaims++
		case model.ConsistencyUnsupported:
			stats.UnsupportedClaims++
		}
		stats.CategoryStats[c.Category]++
		stats.ConsistencyStats[c.Consistency]++
	}

	if fileSizeMB != nil {
		stats.DocumentTrustScore = DocumentTrustScore(*fileSizeMB)
	} else {
		stats.DocumentTrustScore = 75 + s.rng.Intn(21)
	}

	return stats
}

// DocumentTrustScore buckets a simulated upload size (MB) into a score:
// <5 -> 83, [5,10) -> 93, [10,20] -> 91, >20 -> 94
func DocumentTrustScore(fileSizeMB float64) int {
	switch {
	case fileSizeMB < 5:
		return 83
	case fileSizeMB < 10:
		return 93
	case fileSizeMB <= 20:
		return 91
	default:
		return 94
	}
}

// MeanTrustScore is the arithmetic mean of the claims' trust scores rounded
// to one decimal place, or 0 for no claims
func MeanTrustScore(claims []model.Claim) float64 {
	if len(claims) == 0 {
		return 0
	}
	sum := 0
	for _, c := range claims {
		sum += c.TrustScore
	}
	mean := float64(sum) / float64(len(claims))
	return math.Round(mean*10) / 10
}

// TrustLevel labels a trust score the way the results view does
func TrustLevel(trustScore int) string {
	if trustScore >= 80 {
		return "High"
	} else if trustScore >= 60 {
		return "Medium"
	}
	return "Low"
}
