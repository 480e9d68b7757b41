/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package journal keeps a history of compile jobs in SQLite (default, one
// file next to the levels) or Postgres (shared, selected by a postgres:// DSN).
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	applog "smllc/internal/log"
	"smllc/internal/version"

	"github.com/google/uuid"

	// database/sql drivers: pgx for postgres:// DSNs, pure-Go SQLite otherwise
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// schemaVersion is the journal schema this build writes. Bump it together
// with a new step in runMigrations.
const schemaVersion = 2

// Compile outcomes stored in Entry.Status.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusNotFound = "not_found"
)

// tsLayout is fixed-width so timestamps sort as text on both backends.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one finished compile job.
type Entry struct {
	ID       uuid.UUID
	Path     string
	Level    string
	Status   string
	Kind     string // error kind name, empty unless the compile failed
	Line     int
	Message  string
	Duration time.Duration

	CreatedAt time.Time
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Journal is safe for concurrent use.
type Journal struct {
	db      *sql.DB
	dialect dialect
	log     *slog.Logger
}

// IsPostgres reports whether dsn selects the Postgres backend.
func IsPostgres(dsn string) bool {
	d := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://")
}

// Open opens or creates the journal at dsn and brings its schema up to date.
func Open(dsn string) (*Journal, error) {
	l := applog.WithOperation(applog.WithComponent("journal"), "open")
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("journal dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		j   *Journal
		err error
	)
	if IsPostgres(dsn) {
		j, err = openPostgres(ctx, dsn)
	} else {
		j, err = openSQLite(ctx, dsn)
	}
	if err != nil {
		l.Error("open journal failed", slog.Any("err", err))
		return nil, err
	}
	j.log = applog.WithComponent("journal")

	if err := j.ensureMetaAndVersion(ctx); err != nil {
		_ = j.db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := j.runMigrations(ctx); err != nil {
		_ = j.db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("journal ready", slog.Bool("postgres", j.dialect == dialectPostgres))
	return j, nil
}

func openSQLite(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	return &Journal{db: db, dialect: dialectSQLite}, nil
}

func openPostgres(ctx context.Context, dsn string) (*Journal, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &Journal{db: db, dialect: dialectPostgres}, nil
}

// Close releases the database handle.
func (j *Journal) Close() error { return j.db.Close() }

// rebind rewrites ? placeholders to $n for Postgres.
func (j *Journal) rebind(q string) string {
	if j.dialect != dialectPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (j *Journal) exec(ctx context.Context, q string, args ...any) error {
	_, err := j.db.ExecContext(ctx, j.rebind(q), args...)
	return err
}

func (j *Journal) ensureMetaAndVersion(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
	}
	for _, q := range ddl {
		if err := j.exec(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var cur int
	err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// fresh database: migrations start from zero
		if err := j.exec(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES (1, 0, ?, ?, ?)`, version.String(), now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if err := j.exec(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, version.String(), now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// migrations[i] brings the schema from version i to i+1.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS compiles (
			id          TEXT PRIMARY KEY,
			path        TEXT NOT NULL,
			level       TEXT NOT NULL,
			status      TEXT NOT NULL,
			kind        TEXT NOT NULL DEFAULT '',
			line        INTEGER NOT NULL DEFAULT 0,
			message     TEXT NOT NULL DEFAULT '',
			duration_us INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL
		)`,
	},
	{
		`CREATE INDEX IF NOT EXISTS idx_compiles_created ON compiles(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_compiles_path ON compiles(path, created_at)`,
	},
}

func (j *Journal) runMigrations(ctx context.Context) error {
	cur, err := j.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if cur > schemaVersion {
		j.log.Warn("journal schema is newer than this build", slog.Int("schema", cur), slog.Int("supported", schemaVersion))
		return nil
	}
	for ; cur < schemaVersion; cur++ {
		next := cur + 1
		tx, err := j.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range migrations[cur] {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, j.rebind(`UPDATE version SET schema=?, updated_at=? WHERE id=1`), next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
	}
	return nil
}

// SchemaVersion returns the schema version recorded in the database.
func (j *Journal) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Record appends e. A zero ID or CreatedAt is filled in.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	err := j.exec(ctx,
		`INSERT INTO compiles (id, path, level, status, kind, line, message, duration_us, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.Path, e.Level, e.Status, e.Kind, e.Line, e.Message, e.Duration.Microseconds(), e.CreatedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return fmt.Errorf("record compile %s: %w", e.ID, err)
	}
	return nil
}

const selectEntries = `SELECT id, path, level, status, kind, line, message, duration_us, created_at FROM compiles`

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return j.query(ctx, selectEntries+` ORDER BY created_at DESC LIMIT ?`, limit)
}

// Failures returns up to limit unsuccessful entries for path, newest first.
func (j *Journal) Failures(ctx context.Context, path string, limit int) ([]Entry, error) {
	return j.query(ctx, selectEntries+` WHERE path = ? AND status <> ? ORDER BY created_at DESC LIMIT ?`, path, StatusOK, limit)
}

func (j *Journal) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, j.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e      Entry
			id, ts string
			durUS  int64
		)
		if err := rows.Scan(&id, &e.Path, &e.Level, &e.Status, &e.Kind, &e.Line, &e.Message, &durUS, &ts); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("journal row id %q: %w", id, err)
		}
		if e.CreatedAt, err = time.Parse(tsLayout, ts); err != nil {
			return nil, fmt.Errorf("journal row %s timestamp: %w", id, err)
		}
		e.Duration = time.Duration(durUS) * time.Microsecond
		out = append(out, e)
	}
	return out, rows.Err()
}
