package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/catalogue-search/constants"
)

// DumpResult is the outcome of DumpText for one PDF.
type DumpResult struct {
	Path    string
	OutPath string
	Method  string
	Err     string
}

// DumpText extracts every PDF under inDir and writes its text to
// outDir/<name>.txt. Nothing is structured or stored. Files that fail
// extraction are reported and skipped.
func (s *Service) DumpText(ctx context.Context, inDir, outDir string, opts Options) ([]DumpResult, error) {
	paths, _, err := Discover(inDir, true)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	extractor := s.extractors(opts.withDefaults())
	out := make([]DumpResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		r := DumpResult{Path: path}
		dctx, cancel := context.WithTimeout(ctx, s.docTimeout)
		res, err := extractor.Extract(dctx, path)
		cancel()
		r.Method = res.Method
		if err != nil {
			r.Err = err.Error()
			s.logger.Warn("ingest.dump.failed", "path", path, "error", err)
			out = append(out, r)
			continue
		}

		r.OutPath = filepath.Join(outDir, constants.BaseName(path)+".txt")
		if err := os.WriteFile(r.OutPath, []byte(res.Text), 0o644); err != nil {
			return out, fmt.Errorf("write %s: %w", r.OutPath, err)
		}
		s.logger.Info("ingest.dump.ok", "path", path, "out", r.OutPath, "method", res.Method, "chars", len(res.Text))
		out = append(out, r)
	}
	return out, nil
}
