package worker

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/pipeline"
)

// Auditor defines the interface for producing one report
type Auditor interface {
	Run(ctx context.Context, opts pipeline.Options) (*model.Report, error)
}

// Plan describes one synthetic document in a batch
type Plan struct {
	Name       string           `yaml:"name"`
	Seed       int64            `yaml:"seed"`   // 0 = base seed + index
	Claims     *int             `yaml:"claims"` // nil = batch default
	Categories []model.Category `yaml:"categories"`
	FileSizeMB *float64         `yaml:"file_size_mb"`
	Title      string           `yaml:"title"`
}

// AuditJob runs one plan
type AuditJob struct {
	Plan           Plan
	Claims         int // Resolved claim count
	Auditor        Auditor
	SampleFileSize bool
	index          int
	limiter        *Limiter
}

// Execute executes the audit job
func (j *AuditJob) Execute(ctx context.Context) Result {
	if j.limiter != nil {
		if err := j.limiter.Wait(ctx, "batch"); err != nil {
			return &AuditResult{Plan: j.Plan, Error: fmt.Errorf("rate limit: %w", err), index: j.index}
		}
	}

	title := j.Plan.Title
	if title == "" {
		title = j.Plan.Name
	}
	report, err := j.Auditor.Run(ctx, pipeline.Options{
		Seed:           j.Plan.Seed,
		Claims:         j.Claims,
		Categories:     j.Plan.Categories,
		FileSizeMB:     j.Plan.FileSizeMB,
		SampleFileSize: j.SampleFileSize,
		Title:          title,
	})
	if err != nil {
		return &AuditResult{Plan: j.Plan, Error: err, index: j.index}
	}
	return &AuditResult{Plan: j.Plan, Report: report, index: j.index}
}

// AuditResult represents the result of an audit job
type AuditResult struct {
	Plan   Plan
	Report *model.Report
	Error  error
	index  int
}

// GetError returns the error from the audit result
func (r *AuditResult) GetError() error {
	return r.Error
}

// BatchConfig controls a batch run
type BatchConfig struct {
	Concurrency    int
	BaseSeed       int64 // Plans without a seed get BaseSeed + index + 1
	DefaultClaims  int
	SampleFileSize bool

	// RequestsPerSecond throttles job starts; 0 disables throttling
	RequestsPerSecond float64
	Burst             int
}

// BatchProcessor audits multiple plans concurrently
type BatchProcessor struct {
	auditor Auditor
	config  BatchConfig
	limiter *Limiter
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(auditor Auditor, config BatchConfig) *BatchProcessor {
	b := &BatchProcessor{
		auditor: auditor,
		config:  config,
	}
	if config.RequestsPerSecond > 0 {
		b.limiter = NewLimiter(config.RequestsPerSecond, config.Burst)
	}
	return b
}

// ProcessPlans audits the plans concurrently and returns one result per
// plan, in plan order. Plans that never ran because ctx ended carry the
// context error.
func (b *BatchProcessor) ProcessPlans(ctx context.Context, plans []Plan) []*AuditResult {
	if len(plans) == 0 {
		return []*AuditResult{}
	}

	pool := NewPoolWithContext(ctx, b.config.Concurrency)
	pool.Start()

	resolved := make([]Plan, len(plans))
	for i, plan := range plans {
		if plan.Seed == 0 && b.config.BaseSeed != 0 {
			plan.Seed = b.config.BaseSeed + int64(i) + 1
		}
		resolved[i] = plan
		claims := b.config.DefaultClaims
		if plan.Claims != nil {
			claims = *plan.Claims
		}
		pool.Submit(&AuditJob{
			Plan:           plan,
			Claims:         claims,
			Auditor:        b.auditor,
			SampleFileSize: b.config.SampleFileSize,
			index:          i,
			limiter:        b.limiter,
		})
	}

	auditResults := make([]*AuditResult, len(plans))
	for _, result := range pool.Wait() {
		r := result.(*AuditResult)
		auditResults[r.index] = r
	}

	for i, r := range auditResults {
		if r != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		auditResults[i] = &AuditResult{Plan: resolved[i], Error: fmt.Errorf("not run: %w", err), index: i}
	}
	return auditResults
}

// ProcessFile reads plans from a file and audits them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AuditResult, error) {
	plans, err := ReadPlansFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read plans: %w", err)
	}

	return b.ProcessPlans(ctx, plans), nil
}

// planFile accepts either a bare list of plans or a {documents: [...]} mapping
type planFile struct {
	Documents []rawPlan `yaml:"documents"`
}

type rawPlan struct {
	Name       string   `yaml:"name"`
	Seed       int64    `yaml:"seed"`
	Claims     *int     `yaml:"claims"`
	Categories []string `yaml:"categories"`
	FileSizeMB *float64 `yaml:"file_size_mb"`
	Title      string   `yaml:"title"`
}

// ReadPlansFromFile reads a YAML list of plans. Unnamed plans are called
// document-<n> (1-based); later plans reusing a name are dropped.
func ReadPlansFromFile(filePath string) ([]Plan, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return []Plan{}, nil
	}

	var raw []rawPlan
	if err := yaml.Unmarshal(data, &raw); err != nil {
		var wrapped planFile
		if err2 := yaml.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("parse plans: %w", err)
		}
		raw = wrapped.Documents
	}

	plans := make([]Plan, 0, len(raw))
	seen := make(map[string]bool)
	for i, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = fmt.Sprintf("document-%d", i+1)
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		categories, err := model.ParseCategories(r.Categories)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", name, err)
		}
		if r.Claims != nil && *r.Claims < 0 {
			return nil, fmt.Errorf("plan %s: claims must be non-negative", name)
		}

		plans = append(plans, Plan{
			Name:       name,
			Seed:       r.Seed,
			Claims:     r.Claims,
			Categories: categories,
			FileSizeMB: r.FileSizeMB,
			Title:      r.Title,
		})
	}

	return plans, nil
}
