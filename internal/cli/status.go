package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/newsdigest/internal/infra/storage/postgres"
	"github.com/vietddude/newsdigest/internal/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent digest job runs",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	runs, err := postgres.NewJobRunRepo(db).GetRecent(ctx, pipeline.JobName, 20)
	if err != nil {
		slog.Error("Failed to query job runs", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "DATE\tRESULT\tATTEMPTS\tWORLD\tJAPAN\tDURATION\tSTARTED")

	for _, run := range runs {
		result := "failure"
		switch {
		case run.Success:
			result = "success"
		case run.PartialSuccess:
			result = "partial"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%dms\t%s\n",
			run.Date, result, run.Attempts, run.WorldArticles, run.JapanArticles,
			run.DurationMs, run.StartedAt.Format("2006-01-02 15:04:05"))
	}
	_ = w.Flush()
}
