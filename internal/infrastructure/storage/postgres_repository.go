// Package storage persists the posted-article record in Postgres.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"NewsSentry/internal/domain"
	"NewsSentry/internal/ports"
)

// Schema:
//
//	CREATE TABLE posted_articles (
//	    hash       TEXT PRIMARY KEY,
//	    title      TEXT NOT NULL,
//	    source     TEXT NOT NULL,
//	    url        TEXT NOT NULL DEFAULT '',
//	    posted_at  TIMESTAMPTZ NOT NULL,
//	    category   TEXT NOT NULL DEFAULT 'general',
//	    score      INT NOT NULL DEFAULT 0
//	);

// PostgresRepository implements the durable posted-article record.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.PostedStore = (*PostgresRepository)(nil)

// Open connects to Postgres with sensible pool settings.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// AlreadyPosted returns the subset of hashes that exist in the record.
func (r *PostgresRepository) AlreadyPosted(ctx context.Context, hashes []string) (map[string]bool, error) {
	result := make(map[string]bool, len(hashes))
	if r.db == nil || len(hashes) == 0 {
		return result, nil
	}

	query, args, err := r.builder.
		Select("hash").
		From("posted_articles").
		Where(sq.Eq{"hash": hashes}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build posted query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posted: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scan hash: %w", err)
		}
		result[hash] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// Exists reports whether a single hash has already been posted.
func (r *PostgresRepository) Exists(ctx context.Context, hash string) (bool, error) {
	if r.db == nil {
		return false, nil
	}

	query, args, err := r.builder.
		Select("1").
		From("posted_articles").
		Where(sq.Eq{"hash": hash}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// Insert appends the posted record. Idempotent: a duplicate hash is a
// silent no-op so a reconciliation retry can never double-insert.
func (r *PostgresRepository) Insert(ctx context.Context, record domain.PostedRecord) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("posted_articles").
		Columns("hash", "title", "source", "url", "posted_at", "category", "score").
		Values(record.Hash, record.Title, record.Source, record.URL, record.PostedAt, string(record.Category), record.Score).
		Suffix("ON CONFLICT (hash) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert posted record: %w", err)
	}
	return nil
}

// RecentTitles returns the most recently posted records, newest first, for
// warming the recency window after a restart.
func (r *PostgresRepository) RecentTitles(ctx context.Context, limit int) ([]domain.PostedRecord, error) {
	if r.db == nil || limit <= 0 {
		return nil, nil
	}

	query, args, err := r.builder.
		Select("hash", "title", "source", "url", "posted_at", "category", "score").
		From("posted_articles").
		OrderBy("posted_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var records []domain.PostedRecord
	for rows.Next() {
		var rec domain.PostedRecord
		var category string
		if err := rows.Scan(&rec.Hash, &rec.Title, &rec.Source, &rec.URL, &rec.PostedAt, &category, &rec.Score); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Category = domain.Category(category)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}
