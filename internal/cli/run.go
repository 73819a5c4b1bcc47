package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/newsdigest/internal/control"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily digest job once and exit",
	Run:   runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := control.NewService(cfg)
	if err != nil {
		slog.Error("Failed to initialize service", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	result, err := app.TriggerDaily(context.Background())
	if err != nil {
		slog.Error("Digest job error", "error", err)
		os.Exit(1)
	}

	slog.Info("Digest job finished",
		"success", result.Success,
		"partialSuccess", result.PartialSuccess,
		"attempts", result.AttemptCount,
		"retries", result.TotalRetries,
		"worldArticles", result.WorldArticles,
		"japanArticles", result.JapanArticles,
		"durationMs", result.TotalProcessingTimeMs,
	)

	if result.Failed() {
		os.Exit(1)
	}
}
