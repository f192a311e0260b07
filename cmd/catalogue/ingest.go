package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/catalogue-search/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Ingest every PDF under a directory, replacing the previous batch",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

var (
	ingestDPI  int
	ingestLang string
	ingestFile bool
)

func init() {
	ingestCmd.Flags().IntVar(&ingestDPI, "dpi", ingest.DefaultDPI, "rasterization DPI for scanned pages")
	ingestCmd.Flags().StringVar(&ingestLang, "lang", ingest.DefaultLang, "OCR language code")
	ingestCmd.Flags().BoolVar(&ingestFile, "file", false, "treat the argument as a single PDF and index it without clearing the store")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
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
	opts := ingest.Options{DPI: ingestDPI, Lang: ingestLang}
	out := cmd.OutOrStdout()

	if ingestFile {
		res, err := svc.IngestFile(ctx, args[0], "", opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[1/1] Inserted: %s (%s, %d records)\n", res.FileName, res.Status, res.Records)
		return nil
	}

	_, stats, err := svc.IngestDirectory(ctx, args[0], opts, func(i, n int, r ingest.DocumentResult) {
		if r.Status.Degraded() {
			fmt.Fprintf(out, "[%d/%d] Inserted: %s (%s)\n", i, n, r.FileName, r.Status)
			return
		}
		fmt.Fprintf(out, "[%d/%d] Inserted: %s\n", i, n, r.FileName)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Done: %d matched, %d ok, %d degraded, %d records\n", stats.Matched, stats.Succeeded, stats.Degraded, stats.Records)
	return nil
}
