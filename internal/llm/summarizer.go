package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/claimaudit/internal/model"
)

// Summarizer attaches an optional narrative to audit reports. Provider
// failures never fail the audit; they surface as warnings.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer. An empty provider yields a disabled summarizer.
func NewSummarizer(config Config, logger *zap.Logger) (*Summarizer, error) {
	provider, err := NewProvider(config, logger)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// NewSummarizerWithProvider wraps an existing provider
func NewSummarizerWithProvider(provider Provider, config Config) *Summarizer {
	return &Summarizer{provider: provider, config: config}
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider's name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary asks the provider for an executive summary of the report.
// It returns nil when disabled. Provider problems are recorded in the
// summary's warnings.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	summary := &model.LLMSummary{
		Provider:       s.provider.Name(),
		Model:          s.config.Model,
		StrictEvidence: s.config.StrictEvidence,
	}

	if !s.provider.IsAvailable(ctx) {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("LLM provider %s is not available; summary skipped", s.provider.Name()))
		return summary, nil
	}
	summary.Enabled = true

	evidenceURLs := report.EvidenceURLs()
	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:       report,
		EvidenceURLs: evidenceURLs,
		Model:        s.config.Model,
		MaxTokens:    s.config.MaxTokens,
	})
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("Summary generation failed: %v", err))
		return summary, nil
	}

	summary.SummaryMD = resp.Summary
	if resp.Model != "" {
		summary.Model = resp.Model
	}
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	if s.config.StrictEvidence {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("Verified %d citations against %d evidence URLs", len(resp.CitedURLs), len(evidenceURLs)))
	}
	return summary, nil
}

// RenderSeparateMarkdown renders the narrative as a standalone markdown document
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# LLM Summary\n\n")
	b.WriteString("> **GENERATED CONTENT.** This narrative was written by a language model. ")
	b.WriteString("Trust scores and consistency labels were determined independently and are not affected by it.\n\n")

	fmt.Fprintf(&b, "- **Provider:** %s\n", summary.Provider)
	if summary.Model != "" {
		fmt.Fprintf(&b, "- **Model:** %s\n", summary.Model)
	}
	fmt.Fprintf(&b, "- **Strict Evidence Mode:** %t\n\n", summary.StrictEvidence)

	b.WriteString("## Summary\n\n")
	if summary.SummaryMD == "" {
		b.WriteString("_No summary generated._\n")
	} else {
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}
