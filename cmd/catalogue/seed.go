package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/catalogue-search/internal/ingest"
)

var seedCmd = &cobra.Command{
	Use:   "seed [products.csv]",
	Short: "Replace the store contents with product rows from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	opts := []ingest.Option{ingest.WithMetrics(a.metrics)}
	if a.cache != nil {
		opts = append(opts, ingest.WithInvalidator(a.cache))
	}
	n, err := ingest.NewService(nil, nil, a.store, logger, opts...).SeedCSV(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products into the %s store\n", n, cfg.Store.Backend)
	return nil
}
