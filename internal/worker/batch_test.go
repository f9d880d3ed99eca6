package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/pipeline"
)

// MockAuditor implements Auditor and records the options it saw
type MockAuditor struct {
	ShouldError bool
	mu          sync.Mutex
	seen        []pipeline.Options
}

func (m *MockAuditor) Run(ctx context.Context, opts pipeline.Options) (*model.Report, error) {
	time.Sleep(5 * time.Millisecond) // Simulate work
	m.mu.Lock()
	m.seen = append(m.seen, opts)
	m.mu.Unlock()
	if m.ShouldError {
		return nil, errors.New("audit error")
	}
	return &model.Report{Title: opts.Title, Seed: opts.Seed}, nil
}

// slowAuditor takes delay per report unless ctx ends first
type slowAuditor struct {
	delay time.Duration
}

func (s slowAuditor) Run(ctx context.Context, opts pipeline.Options) (*model.Report, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
	}
	return &model.Report{Title: opts.Title}, nil
}

func intPtr(v int) *int { return &v }

func writePlans(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessPlans(t *testing.T) {
	auditor := &MockAuditor{}
	processor := NewBatchProcessor(auditor, BatchConfig{Concurrency: 3, BaseSeed: 100, DefaultClaims: 5})

	plans := []Plan{{Name: "a"}, {Name: "b", Seed: 7, Claims: intPtr(2)}, {Name: "c", Title: "Gamma"}, {Name: "d"}}
	results := processor.ProcessPlans(context.Background(), plans)

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	wantSeeds := []int64{101, 7, 103, 104}
	wantTitles := []string{"a", "b", "Gamma", "d"}
	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Plan.Name, res.Error)
			continue
		}
		if res.Plan.Name != plans[i].Name {
			t.Errorf("result %d: expected plan %s, got %s", i, plans[i].Name, res.Plan.Name)
		}
		if res.Report.Seed != wantSeeds[i] {
			t.Errorf("result %d: expected seed %d, got %d", i, wantSeeds[i], res.Report.Seed)
		}
		if res.Report.Title != wantTitles[i] {
			t.Errorf("result %d: expected title %s, got %s", i, wantTitles[i], res.Report.Title)
		}
	}

	for _, opts := range auditor.seen {
		if opts.Seed == 7 && opts.Claims != 2 {
			t.Errorf("explicit claims overridden: %d", opts.Claims)
		}
		if opts.Seed != 7 && opts.Claims != 5 {
			t.Errorf("expected default claims 5, got %d", opts.Claims)
		}
	}
}

func TestBatchProcessor_ProcessPlans_Error(t *testing.T) {
	processor := NewBatchProcessor(&MockAuditor{ShouldError: true}, BatchConfig{Concurrency: 2})

	results := processor.ProcessPlans(context.Background(), []Plan{{Name: "a"}})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].GetError() == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Report != nil {
		t.Error("expected nil report on error")
	}
}

func TestBatchProcessor_ProcessPlans_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockAuditor{}, BatchConfig{Concurrency: 2})

	if results := processor.ProcessPlans(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessPlans_DeadlineKeepsEveryPlan(t *testing.T) {
	processor := NewBatchProcessor(slowAuditor{delay: 50 * time.Millisecond}, BatchConfig{Concurrency: 1})

	plans := make([]Plan, 10)
	for i := range plans {
		plans[i] = Plan{Name: fmt.Sprintf("doc-%d", i)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	results := processor.ProcessPlans(ctx, plans)

	if len(results) != len(plans) {
		t.Fatalf("expected %d results, got %d", len(plans), len(results))
	}
	for i, res := range results {
		if res == nil {
			t.Fatalf("result %d is nil", i)
		}
		if res.Plan.Name != plans[i].Name {
			t.Errorf("result %d: expected plan %s, got %s", i, plans[i].Name, res.Plan.Name)
		}
		if !errors.Is(res.GetError(), context.DeadlineExceeded) {
			t.Errorf("result %d: expected deadline error, got %v", i, res.GetError())
		}
		if res.Report != nil {
			t.Errorf("result %d: expected no report", i)
		}
	}
}

func TestBatchProcessor_ProcessPlans_Canceled(t *testing.T) {
	processor := NewBatchProcessor(&MockAuditor{}, BatchConfig{Concurrency: 2, BaseSeed: 50})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := processor.ProcessPlans(ctx, []Plan{{Name: "a"}, {Name: "b"}, {Name: "c"}})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if !errors.Is(res.GetError(), context.Canceled) {
			t.Errorf("result %d: expected canceled, got %v", i, res.GetError())
		}
		if want := int64(51 + i); res.Plan.Seed != want {
			t.Errorf("result %d: expected resolved seed %d, got %d", i, want, res.Plan.Seed)
		}
	}
}

func TestBatchProcessor_ProcessPlans_ZeroClaims(t *testing.T) {
	auditor := &MockAuditor{}
	processor := NewBatchProcessor(auditor, BatchConfig{Concurrency: 1, DefaultClaims: 5})

	results := processor.ProcessPlans(context.Background(), []Plan{{Name: "empty", Claims: intPtr(0)}, {Name: "default"}})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(auditor.seen) != 2 || auditor.seen[0].Claims != 0 || auditor.seen[1].Claims != 5 {
		t.Errorf("unexpected claim counts %+v", auditor.seen)
	}
}

func TestBatchProcessor_RateLimited(t *testing.T) {
	processor := NewBatchProcessor(&MockAuditor{}, BatchConfig{Concurrency: 4, RequestsPerSecond: 50, Burst: 1})

	start := time.Now()
	results := processor.ProcessPlans(context.Background(), []Plan{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// Burst 1 at 50/s spaces the last start at least ~40ms after the first
	if d := time.Since(start); d < 30*time.Millisecond {
		t.Errorf("expected throttled batch, finished in %v", d)
	}
}

func TestBatchProcessor_RealPipeline(t *testing.T) {
	p := pipeline.NewPipeline(model.DefaultConfig(), nil)
	processor := NewBatchProcessor(p, BatchConfig{Concurrency: 4, BaseSeed: 10, DefaultClaims: 6, SampleFileSize: true})

	plans := []Plan{
		{Name: "env", Categories: []model.Category{model.CategoryEnvironmental}},
		{Name: "all"},
	}
	first := processor.ProcessPlans(context.Background(), plans)
	second := processor.ProcessPlans(context.Background(), plans)

	for i := range plans {
		if first[i].Error != nil {
			t.Fatalf("plan %s failed: %v", plans[i].Name, first[i].Error)
		}
		if len(first[i].Report.Claims) != 6 {
			t.Errorf("plan %s: expected 6 claims, got %d", plans[i].Name, len(first[i].Report.Claims))
		}
		if first[i].Report.Stats.DocumentTrustScore != second[i].Report.Stats.DocumentTrustScore {
			t.Errorf("plan %s: document trust differs between identical batches", plans[i].Name)
		}
		for j := range first[i].Report.Claims {
			if first[i].Report.Claims[j].ID != second[i].Report.Claims[j].ID {
				t.Errorf("plan %s: claim %d differs between identical batches", plans[i].Name, j)
			}
		}
	}
	for _, c := range first[0].Report.Claims {
		if c.Category != model.CategoryEnvironmental {
			t.Errorf("expected Environmental, got %s", c.Category)
		}
	}
}

func TestReadPlansFromFile(t *testing.T) {
	path := writePlans(t, `
- name: annual-report
  seed: 42
  claims: 10
  categories: [environmental, Financial]
  file_size_mb: 12.5
- claims: 3
- name: annual-report
  claims: 99
- title: Policy review
  categories: [policy, Policy]
`)

	plans, err := ReadPlansFromFile(path)
	if err != nil {
		t.Fatalf("ReadPlansFromFile failed: %v", err)
	}

	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}

	first := plans[0]
	if first.Name != "annual-report" || first.Seed != 42 || first.Claims == nil || *first.Claims != 10 {
		t.Errorf("unexpected first plan %+v", first)
	}
	if len(first.Categories) != 2 || first.Categories[0] != model.CategoryEnvironmental || first.Categories[1] != model.CategoryFinancial {
		t.Errorf("unexpected categories %v", first.Categories)
	}
	if first.FileSizeMB == nil || *first.FileSizeMB != 12.5 {
		t.Errorf("unexpected file size %v", first.FileSizeMB)
	}

	if plans[1].Name != "document-2" || plans[1].FileSizeMB != nil || plans[1].Claims == nil || *plans[1].Claims != 3 {
		t.Errorf("unexpected second plan %+v", plans[1])
	}
	if plans[2].Name != "document-4" || plans[2].Title != "Policy review" || len(plans[2].Categories) != 1 {
		t.Errorf("unexpected third plan %+v", plans[2])
	}
}

func TestReadPlansFromFile_ExplicitZeroClaims(t *testing.T) {
	plans, err := ReadPlansFromFile(writePlans(t, "- name: empty\n  claims: 0\n- name: default\n"))
	if err != nil {
		t.Fatalf("ReadPlansFromFile failed: %v", err)
	}
	if plans[0].Claims == nil || *plans[0].Claims != 0 {
		t.Errorf("expected explicit zero claims, got %v", plans[0].Claims)
	}
	if plans[1].Claims != nil {
		t.Errorf("expected unset claims, got %v", *plans[1].Claims)
	}
}

func TestReadPlansFromFile_DocumentsKey(t *testing.T) {
	path := writePlans(t, "documents:\n  - name: one\n  - name: two\n")

	plans, err := ReadPlansFromFile(path)
	if err != nil {
		t.Fatalf("ReadPlansFromFile failed: %v", err)
	}
	if len(plans) != 2 || plans[1].Name != "two" {
		t.Errorf("unexpected plans %+v", plans)
	}
}

func TestReadPlansFromFile_Errors(t *testing.T) {
	if _, err := ReadPlansFromFile("non_existent_file.yaml"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}

	bad := map[string]string{
		"unknown category": "- name: x\n  categories: [Medical]\n",
		"negative claims":  "- name: x\n  claims: -2\n",
		"not yaml":         "- name: [unclosed\n",
	}
	for name, content := range bad {
		if _, err := ReadPlansFromFile(writePlans(t, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestReadPlansFromFile_Empty(t *testing.T) {
	plans, err := ReadPlansFromFile(writePlans(t, "\n  \n"))
	if err != nil {
		t.Fatalf("ReadPlansFromFile failed: %v", err)
	}
	if len(plans) != 0 {
		t.Errorf("expected 0 plans for empty file, got %d", len(plans))
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writePlans(t, "- name: a\n- name: b\n- name: c\n")

	processor := NewBatchProcessor(&MockAuditor{}, BatchConfig{Concurrency: 2})
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.yaml"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestAuditResult_GetError(t *testing.T) {
	r1 := &AuditResult{Plan: Plan{Name: "a"}}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("audit failed")
	r2 := &AuditResult{Plan: Plan{Name: "a"}, Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
