package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/catalogue-search/internal/ingest"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [in-dir] [out-dir]",
	Short: "Extract the text of every PDF under in-dir into out-dir/<name>.txt",
	Args:  cobra.ExactArgs(2),
	RunE:  runOCR,
}

var (
	ocrDPI  int
	ocrLang string
)

func init() {
	ocrCmd.Flags().IntVar(&ocrDPI, "dpi", ingest.DefaultDPI, "rasterization DPI for scanned pages")
	ocrCmd.Flags().StringVar(&ocrLang, "lang", ingest.DefaultLang, "OCR language code")
	rootCmd.AddCommand(ocrCmd)
}

func runOCR(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()
	ex, err := a.ocrExtractor()
	if err != nil {
		return err
	}
	svc := ingest.NewService(ingest.OCRFactory(ex), nil, nil, logger, ingest.WithDocumentTimeout(cfg.Ingest.DocumentTimeout))

	results, err := svc.DumpText(cmd.Context(), args[0], args[1], ingest.Options{DPI: ocrDPI, Lang: ocrLang})
	out := cmd.OutOrStdout()
	for i, r := range results {
		if r.Err != "" {
			fmt.Fprintf(out, "[%d/%d] Failed: %s: %s\n", i+1, len(results), r.Path, r.Err)
			continue
		}
		fmt.Fprintf(out, "[%d/%d] Wrote: %s (%s)\n", i+1, len(results), r.OutPath, r.Method)
	}
	return err
}
