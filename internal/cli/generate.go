package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/pipeline"
	"github.com/ppiankov/claimaudit/internal/report"
	"github.com/ppiankov/claimaudit/internal/score"
)

var (
	genClaims     int
	genCategories []string
	genSeed       int64
	genFileSize   float64
	genSampleSize bool
	genTitle      string
	outFormat     string
	outPath       string
	outSections   []string
	genTimeout    time.Duration
	llmEnabled    bool
	llmProvider   string
	llmModel      string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one synthetic claim audit report",
	Long: `Generate produces a simulated audit of one institutional document:
- Draw claims from per-category templates
- Attach 1-3 evidence items from fixed source tables
- Score every claim within the range bound to its consistency label
- Aggregate counts, trust scores and a document trust score
- Render the report as JSON, YAML, Markdown or HTML

Example:
  claimaudit generate --claims 10 --seed 42
  claimaudit generate --category environmental --category policy --format markdown --out audit.md
  claimaudit generate --file-size 12.5 --sections all --format html --out audit.html
  claimaudit generate --llm --llm-provider openai --llm-model gpt-4o-mini --out audit.json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	// Generator flags
	generateCmd.Flags().IntVar(&genClaims, "claims", 5, "number of claims to generate")
	generateCmd.Flags().StringSliceVar(&genCategories, "category", nil, "restrict claims to these categories (repeatable; default all)")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed (0 = seed from the clock)")
	generateCmd.Flags().Float64Var(&genFileSize, "file-size", 0, "simulated document size in MB, at most 50 (drives the document trust score)")
	generateCmd.Flags().BoolVar(&genSampleSize, "sample-size", false, "sample a document size between 1 and 50 MB")
	generateCmd.Flags().StringVar(&genTitle, "title", "", "document title")
	generateCmd.MarkFlagsMutuallyExclusive("file-size", "sample-size")

	// Output flags
	generateCmd.Flags().StringVar(&outFormat, "format", "json", "output format (json, yaml, markdown, html)")
	generateCmd.Flags().StringVar(&outPath, "out", "", "output path (default: stdout)")
	generateCmd.Flags().StringSliceVar(&outSections, "sections", nil, "report sections (executive-summary, detailed-claims, evidence, visualizations, methodology, raw-data, all, none)")
	generateCmd.Flags().DurationVar(&genTimeout, "timeout", 2*time.Minute, "overall timeout (only matters with --llm)")

	// LLM flags
	generateCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM executive summary")
	generateCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	generateCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), genTimeout)
	defer cancel()

	cfg := loadConfig()
	flags := cmd.Flags()

	if flags.Changed("claims") {
		cfg.Generator.Claims = genClaims
	}
	if flags.Changed("category") {
		cfg.Generator.Categories = genCategories
	}
	if flags.Changed("seed") {
		cfg.Generator.Seed = genSeed
	}
	if flags.Changed("sample-size") {
		cfg.Generator.SampleFileSize = genSampleSize
	}
	if flags.Changed("format") {
		cfg.Output.Format = outFormat
	}
	if flags.Changed("sections") {
		sections, err := report.ParseSections(outSections)
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
	categories, err := model.ParseCategories(cfg.Generator.Categories)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Seed:           cfg.Generator.Seed,
		Claims:         cfg.Generator.Claims,
		Categories:     categories,
		SampleFileSize: cfg.Generator.SampleFileSize,
		Title:          genTitle,
	}
	if flags.Changed("file-size") {
		size := genFileSize
		opts.FileSizeMB = &size
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Generating: %d claims\n", opts.Claims)
		fmt.Fprintf(os.Stderr, "Format: %s\n", format)
		if cfg.LLM.Provider != "" {
			fmt.Fprintf(os.Stderr, "LLM: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, logger)
	rep, err := p.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Seed %d\n", rep.Seed)
		fmt.Fprintf(os.Stderr, "✓ Generated %d claims (%d contradicted)\n", rep.Stats.TotalClaims, rep.Stats.ContradictedClaims)
		fmt.Fprintf(os.Stderr, "✓ Document trust score: %d/100 (%s)\n", rep.Stats.DocumentTrustScore, score.TrustLevel(rep.Stats.DocumentTrustScore))
		if rep.LLM != nil && rep.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", rep.LLM.Provider, rep.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if outPath == "" {
		if err := report.NewRenderer().Render(cmd.OutOrStdout(), rep, format); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		return nil
	}

	written, err := p.RenderReport(rep, outPath, format)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	for _, path := range written {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}
	return nil
}

// applyLLMFlags turns on the narrative when --llm is given. A provider set
// in the config file or environment is honored without the flag.
func applyLLMFlags(cmd *cobra.Command, cfg *model.Config) error {
	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		if cmd.Flags().Changed("llm-model") || cfg.LLM.Model == "" {
			cfg.LLM.Model = llmModel
		}
		cfg.LLM.StrictEvidence = true // Always enforce from the CLI
	}
	if cfg.LLM.Provider == "" {
		return nil
	}
	return llmAPIKey(&cfg.LLM)
}
