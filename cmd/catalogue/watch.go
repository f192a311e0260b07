package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/catalogue-search/internal/async"
	"github.com/joseph-ayodele/catalogue-search/internal/ingest"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir...]",
	Short: "Watch directories and index new or changed PDFs as they appear",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

var (
	watchInitial  bool
	watchDebounce time.Duration
	watchQueue    int
)

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial-scan", false, "index PDFs already present when the watch starts")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "coalesce bursts of events for the same file")
	watchCmd.Flags().IntVar(&watchQueue, "queue-size", 256, "pending job capacity")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	svc, err := a.ingestService(ctx)
	if err != nil {
		return err
	}

	q := async.NewProcessorQueue(svc, logger,
		async.WithWorkers(cfg.Ingest.Workers),
		async.WithQueueSize(watchQueue),
		async.WithProcessTimeout(cfg.Ingest.DocumentTimeout),
	)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Ingest.DocumentTimeout)
		defer cancel()
		q.Shutdown(shutdownCtx)
	}()

	return ingest.Watch(ctx, ingest.WatchConfig{
		Roots:       args,
		InitialScan: watchInitial,
		Debounce:    watchDebounce,
		Logger:      logger,
	}, q)
}
