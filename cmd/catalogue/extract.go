package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/catalogue-search/internal/ingest"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file.pdf]",
	Short: "Run one PDF through extraction and structuring and print the result without storing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var (
	extractDPI  int
	extractLang string
)

func init() {
	extractCmd.Flags().IntVar(&extractDPI, "dpi", ingest.DefaultDPI, "rasterization DPI for scanned pages")
	extractCmd.Flags().StringVar(&extractLang, "lang", ingest.DefaultLang, "OCR language code")
	rootCmd.AddCommand(extractCmd)
}

type extractOutput struct {
	Result  ingest.DocumentResult `json:"result"`
	Payload string                `json:"structured_json"`
	Records any                   `json:"records"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()
	svc, err := a.ingestService(ctx)
	if err != nil {
		return err
	}

	entry, res := svc.ProcessFile(ctx, args[0], "", ingest.Options{DPI: extractDPI, Lang: extractLang})
	b, err := json.MarshalIndent(extractOutput{Result: res, Payload: entry.Payload, Records: entry.Records}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
