package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimaudit/internal/pipeline"
	"github.com/ppiankov/claimaudit/internal/report"
	"github.com/ppiankov/claimaudit/internal/worker"
)

var (
	concurrency   int
	outputDir     string
	batchTimeout  time.Duration
	batchFormat   string
	batchSeed     int64
	batchClaims   int
	batchSections []string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <plans.yaml>",
	Short: "Generate reports for multiple documents in parallel",
	Long: `Batch generates one report per document plan:
- Read plans from a YAML file (a list, or a "documents:" key)
- Generate plans in parallel with configurable worker count
- Plans without a seed get --seed + position, so a batch is reproducible
- Write one report per plan into the output directory

A plan looks like:
  - name: annual-report
    seed: 42
    claims: 10
    categories: [Environmental, Financial]
    file_size_mb: 12.5

Example:
  claimaudit batch plans.yaml
  claimaudit batch plans.yaml --concurrency 8 --output-dir ./reports --format markdown
  claimaudit batch plans.yaml --seed 1000 --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./claimaudit-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Generator and output flags
	batchCmd.Flags().Int64Var(&batchSeed, "seed", 0, "base seed for plans without one (0 = seed each from the clock)")
	batchCmd.Flags().IntVar(&batchClaims, "claims", 5, "claims per document for plans without a count")
	batchCmd.Flags().StringVar(&batchFormat, "format", "json", "output format (json, yaml, markdown, html)")
	batchCmd.Flags().StringSliceVar(&batchSections, "sections", nil, "report sections (see generate --help)")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM executive summary")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("format") {
		cfg.Output.Format = batchFormat
	}
	if flags.Changed("claims") {
		cfg.Generator.Claims = batchClaims
	}
	if flags.Changed("seed") {
		cfg.Generator.Seed = batchSeed
	}
	if flags.Changed("sections") {
		sections, err := report.ParseSections(batchSections)
		if err != nil {
			return err
		}
		cfg.Output.Sections = sections
	}
	if err := applyLLMFlags(cmd, cfg); err != nil {
		return err
	}

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  claimaudit Batch Generation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Plan file:    %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "  Format:       %s\n", format)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := pipeline.NewPipeline(cfg, logger)
	processor := worker.NewBatchProcessor(p, worker.BatchConfig{
		Concurrency:    cfg.Concurrency.Workers,
		BaseSeed:       cfg.Generator.Seed,
		DefaultClaims:  cfg.Generator.Claims,
		SampleFileSize: cfg.Generator.SampleFileSize,
		// Only the LLM calls need pacing
		RequestsPerSecond: llmRate(cfg.LLM.Provider, cfg.RateLimiting.RequestsPerSecond),
		Burst:             cfg.RateLimiting.BurstSize,
	})

	fmt.Fprintf(os.Stderr, "⚙️  Generating plans with %d workers...\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	plans := make([]worker.Plan, len(results))
	for i, result := range results {
		plans[i] = result.Plan
	}
	names := reportNames(plans)

	for i, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Plan.Name, result.Error)
			continue
		}

		path := filepath.Join(cfg.Output.Dir, names[i]+"."+format.Extension())
		if _, err := p.RenderReport(result.Report, path, format); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Plan.Name, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%d claims, document trust: %d/100, seed %d)\n",
			result.Plan.Name, result.Report.Stats.TotalClaims, result.Report.Stats.DocumentTrustScore, result.Report.Seed)
		if names[i] != sanitizeFilename(result.Plan.Name) {
			fmt.Fprintf(os.Stderr, "  ↳ written as %s (file name already taken)\n", filepath.Base(path))
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d documents failed", failureCount, len(results))
	}
	return nil
}

// llmRate returns the batch start rate: throttled when a provider is
// called, unlimited otherwise
func llmRate(provider string, rps float64) float64 {
	if provider == "" {
		return 0
	}
	return rps
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename turns a plan name into a safe file name
func sanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	s = unsafeFilenameChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, ".-")
	if s == "" {
		s = "document"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// reportNames assigns each plan a distinct file stem, in plan order. Stems
// are compared case-insensitively; a repeat gets the first free -2, -3, ...
// suffix.
func reportNames(plans []worker.Plan) []string {
	used := make(map[string]bool, len(plans))
	names := make([]string, len(plans))
	for i, plan := range plans {
		base := sanitizeFilename(plan.Name)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}
