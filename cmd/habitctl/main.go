// Command habitctl is the operator CLI for habitflow: offline reports over exported
// records, dev tokens for the API, and schema migrations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"habitflow/config"
	pkgconfig "habitflow/pkg/config"
	"habitflow/pkg/logger"
)

var (
	configDir string
	configEnv string

	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "habitctl",
	Short:         "habitflow operator tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", pkgconfig.GetEnv("CONFIG_DIR", "config"), "directory holding base.yaml and per-env overrides")
	rootCmd.PersistentFlags().StringVar(&configEnv, "env", pkgconfig.GetConfigEnv(), "config environment (local, production)")

	rootCmd.AddCommand(reportCmd, tokenCmd, migrateCmd)
}

// loadConfig reads the shared service config and swaps in a real logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configEnv, configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log = logger.NewLogger(cfg.Log)
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
