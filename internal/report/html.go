package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/score"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"trustLevel": score.TrustLevel,
	"lower":      func(c model.Consistency) string { return strings.ToLower(string(c)) },
	"inc":        func(i int) int { return i + 1 },
	"date":       func(r *model.Report) string { return r.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC") },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Heading}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; line-height: 1.6; }
.header { border-bottom: 2px solid #3B82F6; padding-bottom: 20px; margin-bottom: 30px; }
.summary { background: #F3F4F6; padding: 20px; border-radius: 8px; margin: 20px 0; }
.claim { border-left: 4px solid #10B981; padding: 15px; margin: 15px 0; background: #F9FAFB; }
.contradicted { border-left-color: #EF4444; }
.unverifiable { border-left-color: #F59E0B; }
.unsupported { border-left-color: #9CA3AF; }
.trust-score { font-size: 24px; font-weight: bold; color: #3B82F6; }
.bar { display: inline-block; height: 12px; background: #3B82F6; }
.narrative { font-style: italic; }
</style>
</head>
<body>
<div class="header">
<h1>{{.Heading}}</h1>
{{with .Report.Title}}<p class="subject">{{.}}</p>{{end}}
<p>Generated on {{date .Report}} (seed {{.Report.Seed}})</p>
</div>
{{- $stats := .Report.Stats}}
{{if .Report.Sections.ExecutiveSummary}}
<div class="summary" id="executive-summary">
<h2>Executive Summary</h2>
<p>Analysis of {{.Report.DocumentsAnalyzed}} document(s) revealed {{$stats.TotalClaims}} claims with an average trust score of <span class="trust-score">{{$stats.AverageTrustScore}}/100</span>.</p>
<ul>
<li>{{$stats.SupportedClaims}} claims were supported by evidence</li>
<li>{{$stats.ContradictedClaims}} claims were contradicted</li>
<li>{{$stats.UnverifiableClaims}} claims were unverifiable</li>
<li>{{$stats.UnsupportedClaims}} claims lacked sufficient support</li>
</ul>
<p>Document trust score: {{$stats.DocumentTrustScore}}/100 ({{trustLevel $stats.DocumentTrustScore}}). Mean claim trust score: {{printf "%.1f" $stats.MeanTrustScore}}.</p>
{{with .Narrative}}<p class="narrative">{{.}}</p>{{end}}
</div>
{{end}}
{{if .Report.Sections.Visualizations}}
<div id="visualizations">
<h2>Charts and Visualizations</h2>
<table class="chart">
{{range .Consistency}}<tr><td>{{.Label}}</td><td><span class="bar" style="width: {{.Percent}}%"></span></td><td>{{.Count}}</td></tr>
{{end}}</table>
<table class="chart">
{{range .Categories}}<tr><td>{{.Label}}</td><td><span class="bar" style="width: {{.Percent}}%"></span></td><td>{{.Count}}</td></tr>
{{end}}</table>
</div>
{{end}}
{{if .Report.Sections.DetailedClaims}}
<div id="detailed-claims">
<h2>Detailed Analysis</h2>
{{range $i, $c := .Claims}}
<div class="claim {{lower $c.Claim.Consistency}}" id="{{$c.Claim.ID}}">
<h3>{{inc $i}}. {{$c.Claim.Category}} Claim{{if $c.Claim.PageNumber}} (page {{$c.Claim.PageNumber}}){{end}}</h3>
<p><strong>Claim:</strong> {{$c.Claim.Text}}</p>
<p><strong>Status:</strong> {{$c.Claim.Consistency}}</p>
<p><strong>Trust Score:</strong> {{$c.Claim.TrustScore}}/100 ({{trustLevel $c.Claim.TrustScore}})</p>
<p><strong>Explanation:</strong> {{$c.Claim.Explanation}}</p>
{{if $c.Reviewed}}<p class="review"><strong>Review:</strong> {{$c.Review.Status}}{{with $c.Review.Reason}} ({{.}}){{end}}{{with $c.Review.Notes}}: {{.}}{{end}}</p>{{end}}
</div>
{{end}}
</div>
{{end}}
{{if .Report.Sections.Evidence}}
<div id="evidence">
<h2>Supporting Evidence</h2>
{{range $i, $c := .Claims}}
<h3>Claim {{inc $i}}</h3>
<ul>
{{range $c.Claim.Evidence}}<li><a href="{{.URL}}">{{.Source}}</a> (relevance {{.RelevanceScore}}): {{.Text}}</li>
{{end}}</ul>
{{end}}
</div>
{{end}}
{{with .Report.ReviewSummary}}
<div id="review">
<h2>Review</h2>
<p>{{.Reviewed}} of {{.TotalClaims}} claims reviewed ({{printf "%.0f" .Progress}}%): {{.Approved}} approved, {{.Rejected}} rejected, {{.NeedsReview}} need review.</p>
{{with $.Report.Feedback}}<p><strong>Reviewer feedback:</strong> {{.}}</p>{{end}}
</div>
{{end}}
{{if .Report.Sections.Methodology}}
<div id="methodology">
<h2>Methodology</h2>
<p>{{.Methodology}}</p>
</div>
{{end}}
{{if .Report.Sections.RawData}}
<div id="raw-data">
<h2>Raw Data Export</h2>
<pre>{{.RawData}}</pre>
</div>
{{end}}
</body>
</html>
`))

type htmlClaim struct {
	Claim    model.Claim
	Review   model.Review
	Reviewed bool
}

type htmlView struct {
	Heading     string
	Report      *model.Report
	Claims      []htmlClaim
	Consistency []barRow
	Categories  []barRow
	Narrative   string
	Methodology string
	RawData     string
}

// RenderHTML writes the report's selected sections as a standalone HTML document
func (r *Renderer) RenderHTML(w io.Writer, report *model.Report) error {
	view := htmlView{
		Heading:     reportTitle,
		Report:      report,
		Claims:      make([]htmlClaim, len(report.Claims)),
		Consistency: consistencyRows(report.Stats),
		Categories:  categoryRows(report.Stats),
		Methodology: methodologyText,
	}
	for i, c := range report.Claims {
		rv, ok := report.Reviews[c.ID]
		view.Claims[i] = htmlClaim{Claim: c, Review: rv, Reviewed: ok}
	}
	if report.LLM != nil && report.LLM.Enabled {
		view.Narrative = report.LLM.SummaryMD
	}
	if report.Sections.RawData {
		raw, err := json.MarshalIndent(report.Claims, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal raw data: %w", err)
		}
		view.RawData = string(raw)
	}

	if err := htmlTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	return nil
}
