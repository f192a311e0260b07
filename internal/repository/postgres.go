package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

const (
	upsertDocumentSQL = `
INSERT INTO catalogue_documents (file_name, language, method, raw_text, structured_json, indexed_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (file_name) DO UPDATE SET
    language        = EXCLUDED.language,
    method          = EXCLUDED.method,
    raw_text        = EXCLUDED.raw_text,
    structured_json = EXCLUDED.structured_json,
    indexed_at      = EXCLUDED.indexed_at`

	searchDocumentsSQL = `
SELECT file_name, structured_json
FROM catalogue_documents
WHERE raw_tsv @@ plainto_tsquery('simple', $1)
ORDER BY file_name
LIMIT $2`
)

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a document-shaped store: one row per file holding the raw
// text (tsvector indexed) and the undecoded structuring output.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{pool: pool, logger: logger}
}

func (s *PostgresStore) Shape() Shape { return ShapeDocument }

// Index upserts the document for entry.FileName.
func (s *PostgresStore) Index(ctx context.Context, entry entity.CatalogueEntry) error {
	if err := upsertDocument(ctx, s.pool, entry); err != nil {
		s.logger.Error("store.index.failed", "file", entry.FileName, "error", err)
		return storeErr(BackendPostgres, "index", err)
	}
	s.logger.Debug("store.index.ok", "file", entry.FileName)
	return nil
}

// Replace upserts every entry in one transaction. Documents not in entries
// are kept.
func (s *PostgresStore) Replace(ctx context.Context, entries []entity.CatalogueEntry) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, e := range entries {
			if err := upsertDocument(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("store.replace.failed", "entries", len(entries), "error", err)
		return storeErr(BackendPostgres, "replace", err)
	}
	s.logger.Info("store.replace.ok", "entries", len(entries))
	return nil
}

func (s *PostgresStore) CandidateSearch(ctx context.Context, query string) ([]Candidate, error) {
	rows, err := s.pool.Query(ctx, searchDocumentsSQL, query, CandidateLimit)
	if err != nil {
		return nil, storeErr(BackendPostgres, "search", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.FileName, &c.Payload); err != nil {
			return nil, storeErr(BackendPostgres, "search", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(BackendPostgres, "search", err)
	}
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return storeErr(BackendPostgres, "ping", HealthCheck(ctx, s.pool, 0, s.logger))
}

func (s *PostgresStore) Close() error {
	ClosePool(s.pool, s.logger)
	return nil
}

func upsertDocument(ctx context.Context, q execer, e entity.CatalogueEntry) error {
	_, err := q.Exec(ctx, upsertDocumentSQL, e.FileName, e.Language, string(e.Method), e.RawText, e.Payload, indexedAt(e))
	return err
}

func indexedAt(e entity.CatalogueEntry) time.Time {
	if e.IndexedAt.IsZero() {
		return time.Now().UTC()
	}
	return e.IndexedAt
}
