package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/catalogue-search/constants"
	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

// ProgressFunc is called once per stored document, in discovery order.
type ProgressFunc func(i, n int, r DocumentResult)

// Discover walks root and returns the ingestible files in lexical order,
// along with the number of entries visited.
func Discover(root string, skipHidden bool) ([]string, uint32, error) {
	if strings.TrimSpace(root) == "" {
		return nil, 0, fmt.Errorf("%w: root path is required", common.ErrInvalidInput)
	}
	var (
		paths   []string
		scanned uint32
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			return nil
		}
		if path != root && skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		scanned++
		if constants.IsAllowed(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, scanned, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(paths)
	return paths, scanned, nil
}

// IngestDirectory processes every PDF under root with a bounded number of
// workers and stores the batch with a single Replace. One document failing
// to extract or decode never affects the others.
func (s *Service) IngestDirectory(ctx context.Context, root string, opts Options, progress ProgressFunc) ([]DocumentResult, DirStats, error) {
	start := time.Now()
	paths, scanned, err := Discover(root, true)
	if err != nil {
		return nil, DirStats{}, err
	}
	stats := DirStats{Scanned: scanned, Matched: uint32(len(paths))}
	s.logger.Info("ingest.batch.start", "root", root, "files", len(paths), "workers", s.workers)
	if len(paths) == 0 {
		s.logger.Warn("ingest.batch.empty", "root", root)
		return []DocumentResult{}, stats, nil
	}

	entries := make([]entity.CatalogueEntry, len(paths))
	results := make([]DocumentResult, len(paths))
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			dctx, cancel := context.WithTimeout(gctx, s.docTimeout)
			defer cancel()
			entries[i], results[i] = s.ProcessFile(dctx, path, "", opts)
			s.logger.Debug("ingest.document.processed",
				"file", results[i].FileName,
				"status", results[i].Status,
				"done", done.Add(1),
				"total", len(paths),
			)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		s.logger.Warn("ingest.batch.cancelled", "root", root, "error", err)
		return results, stats, err
	}

	if err := s.store.Replace(ctx, entries); err != nil {
		for i := range results {
			results[i].Status = constants.DocumentStatusStoreFailed
			results[i].Err = err.Error()
		}
		stats.Failed = uint32(len(results))
		s.logger.Error("ingest.batch.failed", "root", root, "error", err)
		return results, stats, err
	}
	s.invalidate(ctx)

	for i, r := range results {
		stats.add(r)
		if progress != nil {
			progress(i+1, len(results), r)
		}
	}
	s.logger.Info("ingest.batch.ok",
		"root", root,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"degraded", stats.Degraded,
		"records", stats.Records,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results, stats, nil
}
