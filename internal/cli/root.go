package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/claimaudit/internal/model"
)

// version is overridden at build time with -ldflags "-X ...cli.version=..."
var version = "v0.2.0"

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// envKeys are the settings that may be supplied as CLAIMAUDIT_* variables
var envKeys = []string{
	"generator.seed",
	"generator.claims",
	"generator.sample_file_size",
	"server.addr",
	"server.max_claims",
	"rate_limiting.requests_per_second",
	"rate_limiting.burst_size",
	"concurrency.workers",
	"output.format",
	"output.dir",
	"llm.provider",
	"llm.model",
	"llm.api_key",
	"llm.base_url",
	"log.level",
	"log.development",
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimaudit",
	Short: "claimaudit - Synthetic institutional claim audits (demonstration data)",
	Long: `claimaudit produces simulated audits of the claims made in institutional
documents: categorized claims, consistency labels, trust scores and
supporting evidence drawn from fixed source tables.

Nothing is read from the documents themselves and no evidence is retrieved.
Every claim, score and citation is generated from a seed, so the same seed
reproduces the same audit.

claimaudit is a demonstration, not a verdict.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(loadConfig().Log, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of claimaudit.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "claimaudit %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimaudit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".claimaudit"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// CLAIMAUDIT_LLM_API_KEY -> llm.api_key
	viper.SetEnvPrefix("CLAIMAUDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults.
// A file that fails to decode leaves the defaults in place.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring invalid configuration: %v\n", err)
		return model.DefaultConfig()
	}
	return cfg
}

// newLogger builds the structured logger. Verbose output forces debug level.
func newLogger(cfg model.LogConfig, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if cfg.Development {
		config = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		config.Level = zap.NewAtomicLevelAt(level)
	}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// llmAPIKey fills in the provider credential from the usual environment
// variables when the config does not carry one
func llmAPIKey(cfg *model.LLMConfig) error {
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.BaseURL == "" {
			cfg.BaseURL = baseURL
		}
	}
	return nil
}
