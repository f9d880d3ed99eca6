package model

import "time"

// AverageTrustScoreConstant is the fixed value reported as averageTrustScore.
// The audit front end always displays 92 regardless of the claim set;
// MeanTrustScore carries the computed figure.
const AverageTrustScoreConstant = 92

// MaxFileSizeMB is the largest document size an upload may declare
const MaxFileSizeMB = 50.0

// AnalysisStats summarizes a claim set. It is derived on demand and never stored.
type AnalysisStats struct {
	TotalClaims        int `json:"totalClaims" yaml:"totalClaims"`
	SupportedClaims    int `json:"supportedClaims" yaml:"supportedClaims"`
	ContradictedClaims int `json:"contradictedClaims" yaml:"contradictedClaims"`
	UnverifiableClaims int `json:"unverifiableClaims" yaml:"unverifiableClaims"`
	UnsupportedClaims  int `json:"unsupportedClaims" yaml:"unsupportedClaims"`

	AverageTrustScore  int     `json:"averageTrustScore" yaml:"averageTrustScore"`   // Always AverageTrustScoreConstant
	MeanTrustScore     float64 `json:"meanTrustScore" yaml:"meanTrustScore"`         // Arithmetic mean, one decimal
	DocumentTrustScore int     `json:"documentTrustScore" yaml:"documentTrustScore"` // Size bucket or random 75-95

	// Keys are present only for labels observed at least once
	CategoryStats    map[Category]int    `json:"categoryStats" yaml:"categoryStats"`
	ConsistencyStats map[Consistency]int `json:"consistencyStats" yaml:"consistencyStats"`
}

// Report is the complete output of one audit run
type Report struct {
	ID                string            `json:"id" yaml:"id"`
	Title             string            `json:"title" yaml:"title"`
	GeneratedAt       time.Time         `json:"generatedAt" yaml:"generatedAt"`
	Seed              int64             `json:"seed" yaml:"seed"`
	DocumentsAnalyzed int               `json:"documentsAnalyzed" yaml:"documentsAnalyzed"`
	FileSizeMB        *float64          `json:"fileSizeMB,omitempty" yaml:"fileSizeMB,omitempty"`
	Stats             AnalysisStats     `json:"stats" yaml:"stats"`
	Claims            []Claim           `json:"claims" yaml:"claims"`
	Reviews           map[string]Review `json:"reviews,omitempty" yaml:"reviews,omitempty"` // Keyed by claim ID
	ReviewSummary     *ReviewSummary    `json:"reviewSummary,omitempty" yaml:"reviewSummary,omitempty"`
	Feedback          string            `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	Sections          Sections          `json:"sections" yaml:"sections"`

	LLM *LLMSummary `json:"llm,omitempty" yaml:"llm,omitempty"` // Optional narrative, never affects scores
}

// Sections selects which parts of a rendered report are included
type Sections struct {
	ExecutiveSummary bool `json:"executiveSummary" yaml:"executiveSummary" mapstructure:"executiveSummary"`
	DetailedClaims   bool `json:"detailedClaims" yaml:"detailedClaims" mapstructure:"detailedClaims"`
	Evidence         bool `json:"evidence" yaml:"evidence" mapstructure:"evidence"`
	Visualizations   bool `json:"visualizations" yaml:"visualizations" mapstructure:"visualizations"`
	Methodology      bool `json:"methodology" yaml:"methodology" mapstructure:"methodology"`
	RawData          bool `json:"rawData" yaml:"rawData" mapstructure:"rawData"`
}

// DefaultSections returns the recommended section set
func DefaultSections() Sections {
	return Sections{
		ExecutiveSummary: true,
		DetailedClaims:   true,
		Evidence:         true,
		Visualizations:   true,
	}
}

// EstimatedSizeMB approximates the exported document size for the selection
func (s Sections) EstimatedSizeMB() float64 {
	size := 2.0
	if s.DetailedClaims {
		size += 1
	}
	if s.Evidence {
		size += 2
	}
	if s.Visualizations {
		size += 1.5
	}
	if s.Methodology {
		size += 0.5
	}
	if s.RawData {
		size += 3
	}
	return size
}

// LLMSummary contains the optional LLM-generated executive narrative
type LLMSummary struct {
	Enabled        bool     `json:"enabled" yaml:"enabled"`
	Provider       string   `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model          string   `json:"model,omitempty" yaml:"model,omitempty"`
	StrictEvidence bool     `json:"strictEvidence" yaml:"strictEvidence"` // Citations limited to claim evidence URLs
	SummaryMD      string   `json:"summaryMd,omitempty" yaml:"summaryMd,omitempty"`
	Warnings       []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// EvidenceURLs returns the distinct evidence URLs of a report in claim order
func (r *Report) EvidenceURLs() []string {
	seen := make(map[string]bool)
	var urls []string
	for _, c := range r.Claims {
		for _, e := range c.Evidence {
			if !seen[e.URL] {
				seen[e.URL] = true
				urls = append(urls, e.URL)
			}
		}
	}
	return urls
}
