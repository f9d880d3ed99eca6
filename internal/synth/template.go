package synth

import (
	"fmt"
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\{[a-z_]+\}`)

// Fill substitutes every placeholder in a claim template. Each occurrence is
// drawn independently, left to right. Unknown tokens are left as written.
func (g *Generator) Fill(template string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, g.placeholder)
}

func (g *Generator) placeholder(token string) string {
	switch token {
	case "{percentage}":
		return strconv.Itoa(g.percentage(5, 50))
	case "{number}":
		return strconv.Itoa(g.between(10, 500))
	case "{amount}":
		return strconv.Itoa(g.between(1, 100))
	case "{year}":
		return strconv.Itoa(g.year())
	case "{baseline_year}":
		return strconv.Itoa(g.year() - 1)
	case "{sector}":
		return pick(g, sectors)
	case "{region}":
		return pick(g, regions)
	case "{regulation}":
		return pick(g, regulations)
	case "{ratio}":
		return fmt.Sprintf("%.1f", g.rng.Float64()*2+0.5)
	}
	return token
}

func (g *Generator) percentage(lo, hi int) int {
	return g.between(lo, hi)
}

func (g *Generator) year() int {
	return g.between(2020, 2024)
}
