// Package cli implements pontoctl, the operator command line for the
// attendance engine.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cmlabs-hris/ponto-backend-go/internal/app"
	"github.com/cmlabs-hris/ponto-backend-go/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pontoctl",
	Short: "pontoctl operates the attendance calculation engine",
	Long: `pontoctl runs maintenance tasks against the same database as the API:
recalculating days, draining the retry queue, importing holiday calendars
and minting operator tokens. Configuration is read from the environment
and an optional .env file.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(recalculateCmd)
	rootCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(importICSCmd)
	rootCmd.AddCommand(importSchedulesCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app.SetupLogger(cfg)
	return cfg, nil
}

// withApp opens the configured store for the duration of fn.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
