package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const registrySchema = `
CREATE TABLE IF NOT EXISTS documents (
	source      TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	pages       INTEGER NOT NULL,
	chunks      INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);`

type sqliteRegistry struct {
	db *sql.DB
}

// NewSQLiteRegistry opens (and if needed bootstraps) the fingerprint
// database at path.
func NewSQLiteRegistry(path string) (Registry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open registry %s failed, err: %w", path, err)
	}
	// the registry is low-traffic; a single connection avoids
	// SQLITE_BUSY on concurrent ingests
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(registrySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init registry schema failed, err: %w", err)
	}
	return &sqliteRegistry{db: db}, nil
}

func (r *sqliteRegistry) Get(ctx context.Context, source string) (*Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT source, fingerprint, pages, chunks, updated_at FROM documents WHERE source = ?`, source)
	var rec Record
	var updated int64
	if err := row.Scan(&rec.Source, &rec.Fingerprint, &rec.Pages, &rec.Chunks, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("registry lookup failed, err: %w", err)
	}
	rec.UpdatedAt = time.Unix(updated, 0)
	return &rec, nil
}

func (r *sqliteRegistry) Put(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (source, fingerprint, pages, chunks, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			pages = excluded.pages,
			chunks = excluded.chunks,
			updated_at = excluded.updated_at`,
		rec.Source, rec.Fingerprint, rec.Pages, rec.Chunks, rec.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("registry upsert failed, err: %w", err)
	}
	return nil
}

func (r *sqliteRegistry) Delete(ctx context.Context, source string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE source = ?`, source); err != nil {
		return fmt.Errorf("registry delete failed, err: %w", err)
	}
	return nil
}

func (r *sqliteRegistry) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT source, fingerprint, pages, chunks, updated_at FROM documents ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("registry list failed, err: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var updated int64
		if err := rows.Scan(&rec.Source, &rec.Fingerprint, &rec.Pages, &rec.Chunks, &updated); err != nil {
			return nil, fmt.Errorf("registry scan failed, err: %w", err)
		}
		rec.UpdatedAt = time.Unix(updated, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *sqliteRegistry) Close() error { return r.db.Close() }
