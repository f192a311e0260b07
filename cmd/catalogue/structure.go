package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
	"github.com/joseph-ayodele/catalogue-search/internal/extract"
	"github.com/joseph-ayodele/catalogue-search/internal/language"
)

var structureCmd = &cobra.Command{
	Use:   "structure [text-file|-]",
	Short: "Structure extracted text into product records and print them as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runStructure,
}

var structureName string

func init() {
	structureCmd.Flags().StringVar(&structureName, "name", "", "file name recorded as the catalogue link (defaults to the input name)")
	rootCmd.AddCommand(structureCmd)
}

func runStructure(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var (
		text []byte
		err  error
	)
	if args[0] == "-" {
		text, err = io.ReadAll(cmd.InOrStdin())
	} else {
		text, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}
	name := structureName
	if name == "" {
		name = args[0]
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()
	s, err := a.structurer(ctx)
	if err != nil {
		return err
	}

	doc := entity.RawDocument{FileName: name, Text: string(text), Language: language.Detect(string(text))}
	out, err := extract.NewRecordExtractor(s, logger).ExtractRecords(ctx, doc)
	if err != nil && !errors.Is(err, common.ErrDecode) {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	b, mErr := json.MarshalIndent(out.Records, "", "  ")
	if mErr != nil {
		return mErr
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
