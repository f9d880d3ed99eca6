// Package report renders audit reports as JSON, YAML, Markdown or HTML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/claimaudit/internal/model"
)

// ErrUnknownFormat is returned for output formats the renderer cannot produce
var ErrUnknownFormat = errors.New("unknown report format")

// ErrUnknownSection is returned for section names ParseSections does not know
var ErrUnknownSection = errors.New("unknown report section")

// Format is a report output format
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat maps a user-supplied format name to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q (supported: json, yaml, markdown, html)", ErrUnknownFormat, s)
}

// Extension returns the file extension for the format, without the dot
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	default:
		return string(f)
	}
}

// ContentType returns the HTTP media type for the format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}

// ParseSections builds a section selection from names such as
// "executive-summary", "detailedClaims" or "raw_data". "all" selects every
// section and "none" clears the selection. An empty list yields the defaults.
func ParseSections(names []string) (model.Sections, error) {
	if len(names) == 0 {
		return model.DefaultSections(), nil
	}

	var s model.Sections
	for _, name := range names {
		key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(name)))
		switch key {
		case "":
			continue
		case "all":
			s = model.Sections{ExecutiveSummary: true, DetailedClaims: true, Evidence: true, Visualizations: true, Methodology: true, RawData: true}
		case "none":
			s = model.Sections{}
		case "executivesummary", "summary":
			s.ExecutiveSummary = true
		case "detailedclaims", "claims":
			s.DetailedClaims = true
		case "evidence":
			s.Evidence = true
		case "visualizations", "charts":
			s.Visualizations = true
		case "methodology":
			s.Methodology = true
		case "rawdata", "raw":
			s.RawData = true
		default:
			return model.Sections{}, fmt.Errorf("%w: %q", ErrUnknownSection, name)
		}
	}
	return s, nil
}

// Renderer writes reports in the supported formats
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render writes the report to w in the given format. Markdown and HTML
// include only the sections selected on the report.
func (r *Renderer) Render(w io.Writer, report *model.Report, format Format) error {
	switch format {
	case FormatJSON:
		return r.RenderJSON(w, report)
	case FormatYAML:
		return r.RenderYAML(w, report)
	case FormatMarkdown:
		return r.RenderMarkdown(w, report)
	case FormatHTML:
		return r.RenderHTML(w, report)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// RenderFile writes the report to path, creating parent directories
func (r *Renderer) RenderFile(path string, report *model.Report, format Format) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := r.Render(f, report, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return nil
}

// RenderYAML writes the full report as YAML
func (r *Renderer) RenderYAML(w io.Writer, report *model.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("marshal YAML: %w", err)
	}
	return enc.Close()
}
