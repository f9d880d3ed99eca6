package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/claimaudit/internal/pipeline"
	"github.com/ppiankov/claimaudit/internal/server"
)

var (
	serveAddr       string
	serveRPS        float64
	serveBurst      int
	serveSessionTTL time.Duration
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the audit API over HTTP",
	Long: `Serve exposes generation, review and report rendering as a JSON API:
  POST /api/analyses                               generate an analysis
  GET  /api/analyses/{id}                          analysis with current reviews
  DELETE /api/analyses/{id}                        drop an analysis
  GET  /api/analyses/{id}/claims                   search, filter and sort claims
  GET  /api/analyses/{id}/claims/{claimID}         one claim with its review
  PUT  /api/analyses/{id}/claims/{claimID}/review  record a review decision
  PUT  /api/analyses/{id}/feedback                 store reviewer feedback
  GET  /api/analyses/{id}/report?format=html       rendered report
  GET  /healthz

Analyses are kept in memory and expire after the session TTL.

Example:
  claimaudit serve
  claimaudit serve --addr :9090 --rps 5 --burst 10 --session-ttl 30m`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().Float64Var(&serveRPS, "rps", 10, "requests per second per client (0 = unlimited)")
	serveCmd.Flags().IntVar(&serveBurst, "burst", 20, "burst size per client")
	serveCmd.Flags().DurationVar(&serveSessionTTL, "session-ttl", time.Hour, "how long an analysis and its reviews are kept")

	// LLM flags
	serveCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM executive summary")
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if flags.Changed("rps") {
		cfg.RateLimiting.RequestsPerSecond = serveRPS
	}
	if flags.Changed("burst") {
		cfg.RateLimiting.BurstSize = serveBurst
	}
	if flags.Changed("session-ttl") {
		cfg.Server.SessionTTL = serveSessionTTL
	}
	if err := applyLLMFlags(cmd, cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "claimaudit %s listening on %s\n", version, cfg.Server.Addr)
	logger.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.Float64("rps", cfg.RateLimiting.RequestsPerSecond),
		zap.Duration("session_ttl", cfg.Server.SessionTTL),
		zap.String("llm", cfg.LLM.Provider))

	srv := server.New(cfg, pipeline.NewPipeline(cfg, logger), logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
