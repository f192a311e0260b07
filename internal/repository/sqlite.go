package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

// file_name ties rows back to their source document.
const (
	createProductsFTS = `CREATE VIRTUAL TABLE IF NOT EXISTS products_fts USING fts5(
    product_name,
    company_name,
    seller_contact,
    website,
    catalogue_link,
    description,
    file_name UNINDEXED
)`

	insertProductSQL = `INSERT INTO products_fts
    (product_name, company_name, seller_contact, website, catalogue_link, description, file_name)
    VALUES (?, ?, ?, ?, ?, ?, ?)`

	searchProductsSQL = `SELECT product_name, company_name, seller_contact, website, catalogue_link, description, file_name
FROM products_fts WHERE products_fts MATCH ? LIMIT ?`
)

// SQLiteStore is a row-shaped store on an FTS5 virtual table.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

func NewSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = "products.db"
	}
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, storeErr(BackendSQLite, "open", fmt.Errorf("creating data directory: %w", err))
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storeErr(BackendSQLite, "open", err)
	}
	if path == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &SQLiteStore{db: db, path: path, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createProductsFTS); err != nil {
		return storeErr(BackendSQLite, "migrate", err)
	}
	// Tables created before file_name existed cannot be replaced per file.
	if _, err := s.db.ExecContext(ctx, `SELECT file_name FROM products_fts LIMIT 0`); err != nil {
		return storeErr(BackendSQLite, "migrate", fmt.Errorf("products_fts in %s has no file_name column; reseed into a fresh database: %w", s.path, err))
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Shape() Shape { return ShapeRow }

// Index replaces the rows of entry.FileName with entry.Records.
func (s *SQLiteStore) Index(ctx context.Context, entry entity.CatalogueEntry) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM products_fts WHERE file_name = ?`, entry.FileName); err != nil {
			return err
		}
		return insertRows(ctx, tx, entry)
	})
	if err != nil {
		s.logger.Error("store.index.failed", "file", entry.FileName, "error", err)
		return storeErr(BackendSQLite, "index", err)
	}
	s.logger.Debug("store.index.ok", "file", entry.FileName, "rows", len(entry.Records))
	return nil
}

// Replace clears the table and inserts every entry in one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, entries []entity.CatalogueEntry) error {
	rows := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM products_fts`); err != nil {
			return err
		}
		for _, e := range entries {
			if err := insertRows(ctx, tx, e); err != nil {
				return err
			}
			rows += len(e.Records)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("store.replace.failed", "entries", len(entries), "error", err)
		return storeErr(BackendSQLite, "replace", err)
	}
	s.logger.Info("store.replace.ok", "entries", len(entries), "rows", rows)
	return nil
}

func (s *SQLiteStore) CandidateSearch(ctx context.Context, query string) ([]Candidate, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, searchProductsSQL, match, CandidateLimit)
	if err != nil {
		return nil, storeErr(BackendSQLite, "search", err)
	}
	defer rows.Close()

	var out []Candidate
	byFile := map[string]int{}
	for rows.Next() {
		var r entity.ProductRecord
		var file string
		if err := rows.Scan(&r.ProductName, &r.CompanyName, &r.ContactNumber, &r.Website, &r.CatalogueLink, &r.Description, &file); err != nil {
			return nil, storeErr(BackendSQLite, "search", err)
		}
		i, ok := byFile[file]
		if !ok {
			i = len(out)
			byFile[file] = i
			out = append(out, Candidate{FileName: file})
		}
		out[i].Records = append(out[i].Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(BackendSQLite, "search", err)
	}
	return out, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return storeErr(BackendSQLite, "ping", s.db.PingContext(ctx))
}

func (s *SQLiteStore) Close() error {
	return storeErr(BackendSQLite, "close", s.db.Close())
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertRows(ctx context.Context, tx *sql.Tx, e entity.CatalogueEntry) error {
	stmt, err := tx.PrepareContext(ctx, insertProductSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range e.Records {
		if _, err := stmt.ExecContext(ctx, r.ProductName, r.CompanyName, r.ContactNumber, r.Website, r.CatalogueLink, r.Description, e.FileName); err != nil {
			return err
		}
	}
	return nil
}

// ftsQuery quotes every word so user input never hits FTS5 query syntax.
// Quoted words are ANDed.
func ftsQuery(q string) string {
	words := strings.Fields(q)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}
