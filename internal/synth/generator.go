// Package synth generates synthetic claims, evidence and upload sizes.
//
// Every draw comes from the *rand.Rand the Generator was built with, so a
// fixed seed reproduces the same claims, ids included.
package synth

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/claimaudit/internal/model"
)

// Generator produces synthetic audit data. It is not safe for concurrent
// use; give each goroutine its own.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator drawing from rng. A nil rng is seeded from the clock.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// NewSeeded creates a generator with its own source seeded with seed
func NewSeeded(seed int64) *Generator {
	return New(rand.New(rand.NewSource(seed)))
}

// Claim generates one claim. AnyCategory picks one of the four categories
// uniformly; any other value outside the enumeration panics.
func (g *Generator) Claim(category model.Category) model.Claim {
	if category == model.AnyCategory {
		category = pick(g, model.Categories)
	} else if !category.Valid() {
		panic(fmt.Sprintf("synth: unknown category %q", string(category)))
	}

	consistency := pick(g, model.Consistencies)
	tr := consistency.TrustRange()
	trust := g.between(tr.Min, tr.Max)

	text := g.Fill(pick(g, mustCategory(claimTemplates, category)))
	evidence := g.Evidence(category, consistency)

	source := fallbackSource
	if len(evidence) > 0 {
		source = evidence[0].Source
	}
	detail := fmt.Sprintf("%d%% change in key metrics", g.percentage(5, 50))
	explanation := pick(g, explanationTemplates[consistency])
	explanation = strings.ReplaceAll(explanation, "{source}", source)
	explanation = strings.ReplaceAll(explanation, "{evidence_detail}", detail)

	return model.Claim{
		ID:          "claim-" + g.newID(),
		Text:        text,
		Category:    category,
		Consistency: consistency,
		TrustScore:  trust,
		Explanation: explanation,
		Evidence:    evidence,
		PageNumber:  g.between(1, 50),
	}
}

// Evidence generates 1-3 evidence records consistent with a category and verdict.
// It panics if either label is outside its enumeration.
func (g *Generator) Evidence(category model.Category, consistency model.Consistency) []model.Evidence {
	sources := mustCategory(evidenceSources, category)
	rr := consistency.RelevanceRange()

	n := g.between(1, 3)
	evidence := make([]model.Evidence, 0, n)
	for i := 0; i < n; i++ {
		src := pick(g, sources)
		relevance := g.between(rr.Min, rr.Max)
		evidence = append(evidence, model.Evidence{
			ID:             "ev-" + g.newID(),
			Text:           g.evidenceText(src.Name, consistency),
			Source:         src.Name,
			URL:            src.URL,
			RelevanceScore: relevance,
		})
	}
	return evidence
}

func (g *Generator) evidenceText(source string, consistency model.Consistency) string {
	switch consistency {
	case model.ConsistencySupported:
		return fmt.Sprintf("%s confirms %d%% improvement in reported metrics", source, g.percentage(5, 50))
	case model.ConsistencyContradicted:
		return fmt.Sprintf("%s shows only %d%% change, contradicting claimed figures", source, g.percentage(1, 15))
	case model.ConsistencyUnverifiable:
		return fmt.Sprintf("%s does not contain sufficient public data for verification", source)
	default:
		return fmt.Sprintf("%s provides limited data with %d%% confidence level", source, g.percentage(40, 70))
	}
}

// Analysis generates count independent claims. When categories is non-empty
// each claim's category is drawn uniformly from it.
func (g *Generator) Analysis(count int, categories []model.Category) []model.Claim {
	if count < 0 {
		count = 0
	}
	claims := make([]model.Claim, 0, count)
	for i := 0; i < count; i++ {
		category := model.AnyCategory
		if len(categories) > 0 {
			category = pick(g, categories)
		}
		claims = append(claims, g.Claim(category))
	}
	return claims
}

type sizeBand struct {
	min, max float64
}

var sizeBands = []sizeBand{
	{1, 4.9},
	{5, 9.9},
	{10, 20},
	{20.1, model.MaxFileSizeMB},
}

// FileSizeMB samples a plausible upload size: one of four bands uniformly,
// then a uniform value within it, rounded to one decimal place.
func (g *Generator) FileSizeMB() float64 {
	b := pick(g, sizeBands)
	v := b.min + g.rng.Float64()*(b.max-b.min)
	return math.Round(v*10) / 10
}

// between returns a uniform integer in [lo, hi]
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) newID() string {
	return uuid.Must(uuid.NewRandomFromReader(g.rng)).String()
}

func pick[T any](g *Generator, items []T) T {
	return items[g.rng.Intn(len(items))]
}
