package synth

import (
	"math"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimaudit/internal/model"
)

func TestClaim_TrustScoreWithinVerdictRange(t *testing.T) {
	g := NewSeeded(1)
	for i := 0; i < 2000; i++ {
		c := g.Claim(model.AnyCategory)
		r := c.Consistency.TrustRange()
		if !r.Contains(c.TrustScore) {
			t.Fatalf("claim %d: trust %d outside %v for %s", i, c.TrustScore, r, c.Consistency)
		}
	}
}

func TestClaim_EvidenceInvariants(t *testing.T) {
	g := NewSeeded(2)
	for i := 0; i < 2000; i++ {
		c := g.Claim(model.AnyCategory)

		require.GreaterOrEqual(t, len(c.Evidence), 1)
		require.LessOrEqual(t, len(c.Evidence), 3)

		for _, e := range c.Evidence {
			if c.Consistency == model.ConsistencySupported {
				require.True(t, e.RelevanceScore >= 85 && e.RelevanceScore <= 98, "supported relevance %d", e.RelevanceScore)
			} else {
				require.True(t, e.RelevanceScore >= 60 && e.RelevanceScore <= 85, "relevance %d", e.RelevanceScore)
			}

			url, ok := SourceURL(c.Category, e.Source)
			require.True(t, ok, "source %q not in %s table", e.Source, c.Category)
			require.Equal(t, url, e.URL)
			require.True(t, strings.HasPrefix(e.Text, e.Source))
			require.NotEmpty(t, e.ID)
		}
	}
}

func TestClaim_FieldsPopulated(t *testing.T) {
	g := NewSeeded(3)
	for i := 0; i < 500; i++ {
		c := g.Claim(model.AnyCategory)
		assert.True(t, strings.HasPrefix(c.ID, "claim-"))
		assert.True(t, c.Category.Valid())
		assert.True(t, c.Consistency.Valid())
		assert.GreaterOrEqual(t, c.PageNumber, 1)
		assert.LessOrEqual(t, c.PageNumber, 50)
		assert.NotContains(t, c.Text, "{")
		assert.NotContains(t, c.Explanation, "{")
	}
}

func TestClaim_ExplanationCitesFirstEvidence(t *testing.T) {
	g := NewSeeded(4)
	detail := regexp.MustCompile(`\b(\d+)% change in key metrics`)
	for i := 0; i < 500; i++ {
		c := g.Claim(model.AnyCategory)
		assert.Contains(t, c.Explanation, c.Evidence[0].Source)

		// One unverifiable template has no {evidence_detail}
		if m := detail.FindStringSubmatch(c.Explanation); m != nil {
			n := atoi(t, m[1])
			assert.True(t, n >= 5 && n <= 50, "evidence detail %d", n)
		}
	}
}

func TestClaim_FixedCategory(t *testing.T) {
	g := NewSeeded(5)
	for i := 0; i < 1000; i++ {
		c := g.Claim(model.CategoryEnvironmental)
		require.Equal(t, model.CategoryEnvironmental, c.Category)
	}
}

func TestClaim_UnknownCategoryPanics(t *testing.T) {
	g := NewSeeded(6)
	assert.PanicsWithValue(t, `synth: unknown category "Medical"`, func() {
		g.Claim(model.Category("Medical"))
	})
}

func TestEvidence_UnknownLabelsPanic(t *testing.T) {
	g := NewSeeded(7)
	assert.Panics(t, func() { g.Evidence("Medical", model.ConsistencySupported) })
	assert.Panics(t, func() { g.Evidence(model.CategoryPolicy, "Maybe") })
}

func TestEvidence_TextByVerdict(t *testing.T) {
	g := NewSeeded(8)
	pct := regexp.MustCompile(`(\d+)%`)

	tests := []struct {
		consistency model.Consistency
		contains    string
		lo, hi      int
	}{
		{model.ConsistencySupported, "improvement in reported metrics", 5, 50},
		{model.ConsistencyContradicted, "contradicting claimed figures", 1, 15},
		{model.ConsistencyUnsupported, "confidence level", 40, 70},
		{model.ConsistencyUnverifiable, "does not contain sufficient public data", 0, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.consistency), func(t *testing.T) {
			for i := 0; i < 200; i++ {
				for _, e := range g.Evidence(model.CategoryFinancial, tt.consistency) {
					require.Contains(t, e.Text, tt.contains)
					m := pct.FindStringSubmatch(e.Text)
					if tt.hi == 0 {
						require.Nil(t, m)
						continue
					}
					require.NotNil(t, m)
					n := atoi(t, m[1])
					require.True(t, n >= tt.lo && n <= tt.hi, "%d outside [%d,%d]", n, tt.lo, tt.hi)
				}
			}
		})
	}
}

func TestEvidence_CountCoversRange(t *testing.T) {
	g := NewSeeded(9)
	seen := map[int]bool{}
	for i := 0; i < 300; i++ {
		seen[len(g.Evidence(model.CategoryAcademic, model.ConsistencyUnverifiable))] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, seen)
}

func TestAnalysis_Count(t *testing.T) {
	g := NewSeeded(10)
	assert.Len(t, g.Analysis(5, nil), 5)
	assert.Empty(t, g.Analysis(0, nil))
	assert.Empty(t, g.Analysis(-3, nil))
}

func TestAnalysis_RestrictedCategories(t *testing.T) {
	g := NewSeeded(11)
	allowed := []model.Category{model.CategoryFinancial, model.CategoryPolicy}
	seen := map[model.Category]bool{}
	for _, c := range g.Analysis(500, allowed) {
		require.Contains(t, allowed, c.Category)
		seen[c.Category] = true
	}
	assert.Len(t, seen, 2)
}

func TestAnalysis_UniqueIDs(t *testing.T) {
	g := NewSeeded(12)
	ids := map[string]bool{}
	for _, c := range g.Analysis(300, nil) {
		require.False(t, ids[c.ID], "duplicate claim id %s", c.ID)
		ids[c.ID] = true
		for _, e := range c.Evidence {
			require.False(t, ids[e.ID], "duplicate evidence id %s", e.ID)
			ids[e.ID] = true
		}
	}
}

func TestAnalysis_SameSeedReproduces(t *testing.T) {
	a := NewSeeded(42).Analysis(20, nil)
	b := NewSeeded(42).Analysis(20, nil)
	assert.Equal(t, a, b)

	c := NewSeeded(43).Analysis(20, nil)
	assert.NotEqual(t, a, c)
}

func TestNew_SharedSource(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	g := New(rng)
	first := g.Claim(model.AnyCategory)
	second := g.Claim(model.AnyCategory)
	assert.NotEqual(t, first.ID, second.ID)

	assert.NotEmpty(t, New(nil).Claim(model.AnyCategory).ID)
}

func TestFileSizeMB_Bands(t *testing.T) {
	g := NewSeeded(13)
	hits := make([]int, len(sizeBands))
	for i := 0; i < 4000; i++ {
		v := g.FileSizeMB()
		require.GreaterOrEqual(t, v, 1.0)
		require.LessOrEqual(t, v, 50.0)
		require.InDelta(t, v, math.Round(v*10)/10, 1e-9, "not rounded to one decimal: %v", v)

		for j, b := range sizeBands {
			if v >= b.min && v <= b.max {
				hits[j]++
				break
			}
		}
	}
	for j, n := range hits {
		assert.Greater(t, n, 500, "band %d under-sampled", j)
	}
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
