package model

import (
	"fmt"
	"strings"
)

// Claim is a synthetic assertion with its verdict, trust score and evidence
type Claim struct {
	ID          string      `json:"id" yaml:"id"`
	Text        string      `json:"text" yaml:"text"`
	Category    Category    `json:"category" yaml:"category"`
	Consistency Consistency `json:"consistency" yaml:"consistency"`
	TrustScore  int         `json:"trustScore" yaml:"trustScore"`   // 0-100, range bound to Consistency
	Explanation string      `json:"explanation" yaml:"explanation"` // References the first evidence source
	Evidence    []Evidence  `json:"evidence" yaml:"evidence"`       // 1-3 items, generation order
	PageNumber  int         `json:"pageNumber,omitempty" yaml:"pageNumber,omitempty"`
}

// Category is the subject area a claim belongs to
type Category string

const (
	CategoryEnvironmental Category = "Environmental"
	CategoryAcademic      Category = "Academic"
	CategoryFinancial     Category = "Financial"
	CategoryPolicy        Category = "Policy"

	// AnyCategory asks the generator to pick a category at random
	AnyCategory Category = ""
)

// Categories lists every category in table order
var Categories = []Category{
	CategoryEnvironmental,
	CategoryAcademic,
	CategoryFinancial,
	CategoryPolicy,
}

// Valid reports whether c is one of the four known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryEnvironmental, CategoryAcademic, CategoryFinancial, CategoryPolicy:
		return true
	}
	return false
}

// ParseCategory accepts a category label in any letter case
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (supported: Environmental, Academic, Financial, Policy)", s)
}

// ParseCategories parses a list of labels, dropping duplicates
func ParseCategories(labels []string) ([]Category, error) {
	var out []Category
	seen := make(map[Category]bool)
	for _, l := range labels {
		c, err := ParseCategory(l)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// Consistency is the verdict describing how a claim relates to its evidence
type Consistency string

const (
	ConsistencySupported    Consistency = "Supported"
	ConsistencyContradicted Consistency = "Contradicted"
	ConsistencyUnverifiable Consistency = "Unverifiable"
	ConsistencyUnsupported  Consistency = "Unsupported"
)

// Consistencies lists every verdict in table order
var Consistencies = []Consistency{
	ConsistencySupported,
	ConsistencyContradicted,
	ConsistencyUnverifiable,
	ConsistencyUnsupported,
}

// Valid reports whether c is one of the four known verdicts
func (c Consistency) Valid() bool {
	switch c {
	case ConsistencySupported, ConsistencyContradicted, ConsistencyUnverifiable, ConsistencyUnsupported:
		return true
	}
	return false
}

// ParseConsistency accepts a verdict label in any letter case
func ParseConsistency(s string) (Consistency, error) {
	for _, c := range Consistencies {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown consistency %q (supported: Supported, Contradicted, Unverifiable, Unsupported)", s)
}

// ScoreRange is an inclusive integer range
type ScoreRange struct {
	Min int
	Max int
}

// Contains reports whether v lies within the range
func (r ScoreRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// TrustRange returns the trust score range bound to a verdict.
// It panics on an unknown verdict.
func (c Consistency) TrustRange() ScoreRange {
	switch c {
	case ConsistencySupported:
		return ScoreRange{80, 95}
	case ConsistencyContradicted:
		return ScoreRange{10, 30}
	case ConsistencyUnverifiable:
		return ScoreRange{40, 60}
	case ConsistencyUnsupported:
		return ScoreRange{25, 45}
	}
	panic(fmt.Sprintf("model: unknown consistency %q", string(c)))
}

// RelevanceRange returns the evidence relevance range bound to a verdict.
// It panics on an unknown verdict.
func (c Consistency) RelevanceRange() ScoreRange {
	if !c.Valid() {
		panic(fmt.Sprintf("model: unknown consistency %q", string(c)))
	}
	if c == ConsistencySupported {
		return ScoreRange{85, 98}
	}
	return ScoreRange{60, 85}
}
