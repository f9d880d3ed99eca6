package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/score"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize writes an executive narrative for an audit report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the audit report to summarize
	Report model.Report

	// EvidenceURLs is the allowlist of URLs the model may cite
	EvidenceURLs []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary    string
	CitedURLs  []string // URLs found in the summary text
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	Model   string
	APIKey  string
	BaseURL string // Any OpenAI-compatible endpoint

	// Timeout for API requests
	Timeout int // seconds

	// StrictEvidence rejects summaries citing URLs outside the allowlist
	StrictEvidence bool

	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:       "", // Disabled by default
		Timeout:        30,
		StrictEvidence: true,
		MaxTokens:      1000,
	}
}

// BuildPrompt constructs the default executive summary prompt
func BuildPrompt(report model.Report, evidenceURLs []string) string {
	stats := report.Stats

	var b strings.Builder
	fmt.Fprintf(&b, `You are writing the executive summary of an institutional claim audit. The audit labels each claim by how consistent it is with the cited evidence. It does not establish whether a claim is true.

CRITICAL RULES:
1. You MUST ONLY cite URLs from this allowed list:
%s

2. DO NOT infer, speculate, or cite external sources beyond this list.
3. Never change or recompute the figures below. Report them as given.
4. Describe consistency with evidence, not truth. Use phrases like:
   - "N claims are supported by the cited sources..."
   - "Evidence contradicts..."
   - "No independent source could verify..."

Audit Summary:
- Title: %s
- Claims Analyzed: %d
- Supported: %d
- Contradicted: %d
- Unverifiable: %d
- Unsupported: %d
- Document Trust Score: %d/100
- Mean Claim Trust Score: %.1f
- Evidence Sources: %s

Lowest-trust claims:
`, joinURLs(evidenceURLs), report.Title, stats.TotalClaims,
		stats.SupportedClaims, stats.ContradictedClaims, stats.UnverifiableClaims, stats.UnsupportedClaims,
		stats.DocumentTrustScore, stats.MeanTrustScore,
		score.FormatBreakdown(score.NewAuthorityClassifier(nil, nil).AuthorityBreakdown(report.Claims)))

	for _, c := range lowestTrust(report.Claims, 3) {
		fmt.Fprintf(&b, "- [%s, %s, %d %s] %s\n", c.Category, c.Consistency, c.TrustScore, score.TrustLevel(c.TrustScore), c.Text)
	}

	b.WriteString("\nProvide a 3-4 sentence summary focusing on where the evidence is weakest.")
	return b.String()
}

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "(No evidence URLs available)"
	}
	var b strings.Builder
	for i, url := range urls {
		if i >= 20 { // Limit to first 20 to avoid token bloat
			fmt.Fprintf(&b, "\n... and %d more URLs", len(urls)-20)
			break
		}
		fmt.Fprintf(&b, "\n- %s", url)
	}
	return b.String()
}

// lowestTrust returns up to n claims with the lowest trust score, earliest first on ties
func lowestTrust(claims []model.Claim, n int) []model.Claim {
	picked := make([]model.Claim, 0, n)
	used := make([]bool, len(claims))
	for len(picked) < n && len(picked) < len(claims) {
		best := -1
		for i, c := range claims {
			if used[i] {
				continue
			}
			if best < 0 || c.TrustScore < claims[best].TrustScore {
				best = i
			}
		}
		used[best] = true
		picked = append(picked, claims[best])
	}
	return picked
}
