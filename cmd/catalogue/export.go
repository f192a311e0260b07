package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/catalogue-search/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Write the products matching a query to an XLSX workbook",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExport,
}

var exportOut string

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "products.xlsx", "output XLSX file path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	b, n, err := export.NewService(a.searchPipeline(), logger).ExportSearchXLSX(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := os.WriteFile(exportOut, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d products to %s\n", n, exportOut)
	return nil
}
