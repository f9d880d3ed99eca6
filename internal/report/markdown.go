package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/score"
)

const (
	reportTitle = "Institutional Claim Audit Report"
	barWidth    = 30
)

// RenderMarkdown writes the report's selected sections as Markdown
func (r *Renderer) RenderMarkdown(w io.Writer, report *model.Report) error {
	var b strings.Builder
	sec := report.Sections
	stats := report.Stats

	fmt.Fprintf(&b, "# %s\n\n", reportTitle)
	if report.Title != "" {
		fmt.Fprintf(&b, "**%s**\n\n", report.Title)
	}
	fmt.Fprintf(&b, "_Generated %s (seed %d)_\n\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), report.Seed)

	if sec.ExecutiveSummary {
		b.WriteString("## Executive Summary\n\n")
		fmt.Fprintf(&b, "Analysis of %d document(s) revealed %d claims with an average trust score of **%d/100**.\n\n",
			report.DocumentsAnalyzed, stats.TotalClaims, stats.AverageTrustScore)
		fmt.Fprintf(&b, "- %d claims were supported by evidence\n", stats.SupportedClaims)
		fmt.Fprintf(&b, "- %d claims were contradicted\n", stats.ContradictedClaims)
		fmt.Fprintf(&b, "- %d claims were unverifiable\n", stats.UnverifiableClaims)
		fmt.Fprintf(&b, "- %d claims lacked sufficient support\n\n", stats.UnsupportedClaims)

		fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Document trust score | %d/100 (%s) |\n", stats.DocumentTrustScore, score.TrustLevel(stats.DocumentTrustScore))
		fmt.Fprintf(&b, "| Mean claim trust score | %.1f |\n", stats.MeanTrustScore)
		if report.FileSizeMB != nil {
			fmt.Fprintf(&b, "| File size | %.1f MB |\n", *report.FileSizeMB)
		}
		b.WriteString("\n")

		if report.LLM != nil && report.LLM.Enabled && report.LLM.SummaryMD != "" {
			fmt.Fprintf(&b, "> %s\n>\n> _Narrative generated by %s; scores are computed independently._\n\n",
				strings.ReplaceAll(report.LLM.SummaryMD, "\n", "\n> "), report.LLM.Provider)
		}
	}

	if sec.Visualizations {
		b.WriteString("## Charts and Visualizations\n\n")
		b.WriteString("### Consistency\n\n```text\n")
		writeBars(&b, consistencyRows(stats))
		b.WriteString("```\n\n### Categories\n\n```text\n")
		writeBars(&b, categoryRows(stats))
		b.WriteString("```\n\n")
	}

	if sec.DetailedClaims {
		b.WriteString("## Detailed Claims Analysis\n\n")
		for i, c := range report.Claims {
			fmt.Fprintf(&b, "### %d. %s Claim", i+1, c.Category)
			if c.PageNumber > 0 {
				fmt.Fprintf(&b, " (page %d)", c.PageNumber)
			}
			b.WriteString("\n\n")
			fmt.Fprintf(&b, "> %s\n\n", c.Text)
			fmt.Fprintf(&b, "- **Status:** %s\n", c.Consistency)
			fmt.Fprintf(&b, "- **Trust Score:** %d/100 (%s)\n", c.TrustScore, score.TrustLevel(c.TrustScore))
			fmt.Fprintf(&b, "- **Explanation:** %s\n", c.Explanation)
			if rv, ok := report.Reviews[c.ID]; ok {
				fmt.Fprintf(&b, "- **Review:** %s", rv.Status)
				if rv.Reason != "" {
					fmt.Fprintf(&b, " (%s)", rv.Reason)
				}
				if rv.Notes != "" {
					fmt.Fprintf(&b, ": %s", rv.Notes)
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	if sec.Evidence {
		b.WriteString("## Supporting Evidence\n\n")
		breakdown := score.NewAuthorityClassifier(nil, nil).AuthorityBreakdown(report.Claims)
		fmt.Fprintf(&b, "Sources by authority: %s.\n\n", score.FormatBreakdown(breakdown))
		for i, c := range report.Claims {
			fmt.Fprintf(&b, "**Claim %d** (%s)\n\n", i+1, c.ID)
			for _, e := range c.Evidence {
				fmt.Fprintf(&b, "- [%s](%s), relevance %d: %s\n", e.Source, e.URL, e.RelevanceScore, e.Text)
			}
			b.WriteString("\n")
		}
	}

	if report.ReviewSummary != nil {
		rs := report.ReviewSummary
		b.WriteString("## Review\n\n")
		fmt.Fprintf(&b, "%d of %d claims reviewed (%.0f%%): %d approved, %d rejected, %d need review.\n\n",
			rs.Reviewed, rs.TotalClaims, rs.Progress, rs.Approved, rs.Rejected, rs.NeedsReview)
		if report.Feedback != "" {
			fmt.Fprintf(&b, "**Reviewer feedback:** %s\n\n", report.Feedback)
		}
	}

	if sec.Methodology {
		b.WriteString("## Methodology\n\n")
		b.WriteString(methodologyText)
		b.WriteString("\n\n")
	}

	if sec.RawData {
		raw, err := json.MarshalIndent(report.Claims, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal raw data: %w", err)
		}
		b.WriteString("## Raw Data Export\n\n```json\n")
		b.Write(raw)
		b.WriteString("\n```\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

const methodologyText = `Each claim is labeled Supported, Contradicted, Unverifiable or Unsupported according to how consistent it is with the cited evidence. ` +
	`Trust scores are drawn from a range bound to the label: Supported 80-95, Contradicted 10-30, Unverifiable 40-60, Unsupported 25-45. ` +
	`The document trust score is derived from the file size band. Labels describe evidence consistency, not truth.`

// barRow is one labeled count in a text chart
type barRow struct {
	Label string
	Count int
	// Percent is the bar length relative to the largest count, 0-100
	Percent int
}

func consistencyRows(stats model.AnalysisStats) []barRow {
	rows := make([]barRow, 0, len(model.Consistencies))
	for _, c := range model.Consistencies {
		rows = append(rows, barRow{Label: string(c), Count: stats.ConsistencyStats[c]})
	}
	return scaleRows(rows)
}

func categoryRows(stats model.AnalysisStats) []barRow {
	rows := make([]barRow, 0, len(model.Categories))
	for _, c := range model.Categories {
		rows = append(rows, barRow{Label: string(c), Count: stats.CategoryStats[c]})
	}
	return scaleRows(rows)
}

func scaleRows(rows []barRow) []barRow {
	peak := 0
	for _, row := range rows {
		peak = max(peak, row.Count)
	}
	if peak == 0 {
		return rows
	}
	for i := range rows {
		rows[i].Percent = rows[i].Count * 100 / peak
	}
	return rows
}

func writeBars(b *strings.Builder, rows []barRow) {
	for _, row := range rows {
		fmt.Fprintf(b, "%-13s %-*s %d\n", row.Label, barWidth, strings.Repeat("#", row.Percent*barWidth/100), row.Count)
	}
}
