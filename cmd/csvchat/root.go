package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/csvchat/internal/config"
	"github.com/kalambet/csvchat/internal/intent"
)

var (
	cfgFile     string
	dataPath    string
	profileName string
	noColor     bool
)

var rootCmd = &cobra.Command{
	Use:   "csvchat",
	Short: "Ask keyword questions about a CSV dataset",
	Long: `csvchat answers keyword questions about a tabular dataset, such as
agricultural sales records or a movie catalog.

Examples:
  csvchat chat --data sales.csv
  csvchat ask show all crops in INDORE zone
  csvchat serve --mcp`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("NO_COLOR") != "" {
			noColor = true
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/csvchat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "dataset file, overrides dataset.path")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "dataset profile (agri or movies), overrides dataset.profile")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config layers and applies the global flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if dataPath != "" {
		cfg.Dataset.Path = dataPath
	}
	if profileName != "" {
		cfg.Dataset.Profile = profileName
	}
	setupLogging(cfg)
	return cfg, nil
}

func setupLogging(cfg config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Log.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// openInterpreter loads the configured dataset and builds the interpreter
// for its profile. Any failure here is fatal to the calling command.
func openInterpreter(ctx context.Context, cfg config.Config) (*intent.Interpreter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := intent.LookupProfile(cfg.Dataset.Profile)
	if err != nil {
		return nil, err
	}
	headers, err := cfg.Headers()
	if err != nil {
		return nil, err
	}

	in, err := intent.Open(ctx, cfg.Source(), p, headers)
	if err != nil {
		return nil, err
	}
	slog.Info("dataset loaded",
		"profile", in.Profile(),
		"format", cfg.Dataset.Format,
		"rows", in.Rows(),
		"columns", in.Columns(),
	)
	return in, nil
}
