package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"agentforce/pkg/config"
	"agentforce/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "agentforce",
	Short:         "Talk to an Agentforce agent from the terminal or a test script",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config.json or config.yaml file")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the --config file, else the default search path, else
// falls back to AGENTFORCE_* variables alone.
func loadConfig() (*config.Config, error) {
	if path := strings.TrimSpace(configPath); path != "" {
		return config.LoadFile(path)
	}

	cfg, err := config.LoadConfig()
	if errors.Is(err, config.ErrNotFound) {
		return config.FromEnv()
	}
	return cfg, err
}

// setup loads config and installs the configured logger as the default.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	slog.SetDefault(log)

	return cfg, log, nil
}
