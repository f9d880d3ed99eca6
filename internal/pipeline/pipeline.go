package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/claimaudit/internal/llm"
	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/report"
	"github.com/ppiankov/claimaudit/internal/score"
	"github.com/ppiankov/claimaudit/internal/synth"
)

// DefaultTitle is used when a run does not name its document
const DefaultTitle = "Institutional Claim Audit"

// ErrInvalidOptions is returned for run options that cannot produce a report
var ErrInvalidOptions = errors.New("invalid options")

// Options describes one audit run
type Options struct {
	Seed           int64 // 0 = seed from the clock
	Claims         int
	Categories     []model.Category // Empty = all four
	FileSizeMB     *float64         // Known size; takes precedence over SampleFileSize
	SampleFileSize bool
	Title          string
}

// Pipeline orchestrates generation, scoring and the optional narrative
type Pipeline struct {
	renderer   *report.Renderer
	summarizer *llm.Summarizer // Optional LLM summarizer (nil if disabled)
	sections   model.Sections
	logger     *zap.Logger
	now        func() time.Time
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM), logger)
		if err != nil {
			logger.Warn("failed to initialize LLM provider", zap.Error(err))
		} else {
			summarizer = s
			logger.Debug("llm summaries enabled",
				zap.String("provider", s.ProviderName()),
				zap.String("model", cfg.LLM.Model))
		}
	}

	return &Pipeline{
		renderer:   report.NewRenderer(),
		summarizer: summarizer,
		sections:   cfg.Output.Sections,
		logger:     logger,
		now:        time.Now,
	}
}

// WithSummarizer replaces the pipeline's summarizer
func (p *Pipeline) WithSummarizer(s *llm.Summarizer) *Pipeline {
	p.summarizer = s
	return p
}

// Validate checks run options at the boundary
func (o Options) Validate() error {
	if o.Claims < 0 {
		return fmt.Errorf("%w: claims must be non-negative, got %d", ErrInvalidOptions, o.Claims)
	}
	if o.FileSizeMB != nil {
		if size := *o.FileSizeMB; size < 0 || size > model.MaxFileSizeMB {
			return fmt.Errorf("%w: file size must be between 0 and %v MB, got %v", ErrInvalidOptions, model.MaxFileSizeMB, size)
		}
	}
	for _, c := range o.Categories {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidOptions, c)
		}
	}
	return nil
}

// Run generates and scores one synthetic document
func (p *Pipeline) Run(ctx context.Context, opts Options) (*model.Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = p.now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	gen := synth.New(rng)

	// 1. File size
	fileSize := opts.FileSizeMB
	if fileSize == nil && opts.SampleFileSize {
		v := gen.FileSizeMB()
		fileSize = &v
	}

	// 2. Claims
	claims := gen.Analysis(opts.Claims, opts.Categories)

	// 3. Aggregate
	stats := score.NewScorer(rng).Calculate(claims, fileSize)

	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	rep := &model.Report{
		ID:                "report-" + uuid.NewString(),
		Title:             title,
		Seed:              seed,
		DocumentsAnalyzed: 1,
		FileSizeMB:        fileSize,
		Stats:             stats,
		Claims:            claims,
		Sections:          p.sections,
	}

	// 4. Narrative (after scoring, never affects scores)
	if p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, *rep)
		if err != nil {
			p.logger.Warn("LLM summary generation failed", zap.Error(err))
		} else if summary != nil {
			for _, w := range summary.Warnings {
				p.logger.Debug("llm note", zap.String("note", w))
			}
			rep.LLM = summary
		}
	}

	rep.GeneratedAt = p.now().UTC()

	p.logger.Debug("audit complete",
		zap.String("report", rep.ID),
		zap.Int64("seed", seed),
		zap.Int("claims", stats.TotalClaims),
		zap.Int("document_trust", stats.DocumentTrustScore))

	return rep, nil
}

// RenderReport writes the report to path and, when a narrative is present,
// a separate <name>.llm.md next to it. It returns the paths written.
func (p *Pipeline) RenderReport(rep *model.Report, path string, format report.Format) ([]string, error) {
	if err := p.renderer.RenderFile(path, rep, format); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	written := []string{path}

	if md := llm.RenderSeparateMarkdown(rep.LLM); md != "" {
		llmPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".llm.md"
		if err := writeFile(llmPath, md); err != nil {
			p.logger.Warn("failed to write LLM summary", zap.String("path", llmPath), zap.Error(err))
		} else {
			written = append(written, llmPath)
		}
	}
	return written, nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
