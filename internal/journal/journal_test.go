/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTemp(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".smllc", "journal.sqlite")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j, path
}

func TestOpenCreatesSchema(t *testing.T) {
	j, path := openTemp(t)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("journal file missing: %v", err)
	}
	v, err := j.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != schemaVersion {
		t.Fatalf("schema = %d, want %d", v, schemaVersion)
	}
}

func TestRecordRecentAndFailures(t *testing.T) {
	j, _ := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Path: "levels/a.smll", Level: "a", Status: StatusOK, Duration: 1500 * time.Microsecond, CreatedAt: base},
		{Path: "levels/a.smll", Level: "a", Status: StatusFailed, Kind: "undefined_value", Line: 7,
			Message: "[line 7 in collider 'unknown'] 'command' is not defined", CreatedAt: base.Add(time.Second)},
		{Path: "levels/b.smll", Level: "b", Status: StatusNotFound, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Level != "b" || recent[1].Status != StatusFailed {
		t.Fatalf("unexpected recent entries: %+v", recent)
	}
	if recent[0].ID == uuid.Nil {
		t.Fatalf("Record must assign an ID")
	}
	if !recent[1].CreatedAt.Equal(base.Add(time.Second)) {
		t.Fatalf("CreatedAt = %v", recent[1].CreatedAt)
	}

	fails, err := j.Failures(ctx, "levels/a.smll", 10)
	if err != nil {
		t.Fatalf("Failures: %v", err)
	}
	if len(fails) != 1 || fails[0].Kind != "undefined_value" || fails[0].Line != 7 {
		t.Fatalf("unexpected failures: %+v", fails)
	}

	all, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if got := all[2].Duration; got != 1500*time.Microsecond {
		t.Fatalf("Duration = %v", got)
	}
}

func TestMigratesVersionOneJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.sqlite")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	// roll back to a version 1 journal: drop the indexes, mark schema 1
	for _, q := range []string{
		`DROP INDEX idx_compiles_created`,
		`DROP INDEX idx_compiles_path`,
		`UPDATE version SET schema=1 WHERE id=1`,
	} {
		if _, err := j.db.ExecContext(ctx, q); err != nil {
			t.Fatalf("exec %q: %v", q, err)
		}
	}
	_ = j.Close()

	j, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = j.Close() }()
	if v, _ := j.SchemaVersion(ctx); v != schemaVersion {
		t.Fatalf("schema after migration = %d", v)
	}
	var name string
	err = j.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='index' AND name='idx_compiles_path'`).Scan(&name)
	if err == sql.ErrNoRows {
		t.Fatalf("index not recreated by migration")
	} else if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
}

func TestRebind(t *testing.T) {
	pg := &Journal{dialect: dialectPostgres}
	if got := pg.rebind("a = ? AND b <> ? LIMIT ?"); got != "a = $1 AND b <> $2 LIMIT $3" {
		t.Fatalf("rebind = %q", got)
	}
	lite := &Journal{dialect: dialectSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}
	if !IsPostgres("postgresql://u@h/db") || IsPostgres("/tmp/j.sqlite") {
		t.Fatalf("IsPostgres misdetects")
	}
}

func TestPostgresJournal(t *testing.T) {
	dsn := os.Getenv("SMLL_PG_DSN")
	if dsn == "" {
		t.Skip("SMLL_PG_DSN not set")
	}
	j, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open postgres: %v", err)
	}
	defer func() { _ = j.Close() }()
	ctx := context.Background()
	path := "pg-test/" + uuid.NewString() + ".smll"
	if err := j.Record(ctx, Entry{Path: path, Level: "pg", Status: StatusFailed, Kind: "syntax", Line: 2}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	fails, err := j.Failures(ctx, path, 5)
	if err != nil || len(fails) != 1 || fails[0].Kind != "syntax" {
		t.Fatalf("Failures = %+v, %v", fails, err)
	}
}
