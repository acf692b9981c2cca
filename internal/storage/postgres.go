/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	applog "drilldesigner/internal/log"
	"drilldesigner/internal/store"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresPersister stores documents in drill_kv. It is meant for a shared
// server setup; the desktop default is the file or SQLite persister.
type PostgresPersister struct {
	db *sql.DB
}

// OpenPostgres connects, pings and applies the embedded migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresPersister, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresPersister{db: db}, nil
}

func (p *PostgresPersister) Close() error { return p.db.Close() }

// Ping reports whether the database is reachable.
func (p *PostgresPersister) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *PostgresPersister) Get(ctx context.Context, key string) ([]byte, error) {
	var s string
	// dialect=PostgreSQL
	err := p.db.QueryRowContext(ctx, `SELECT value::text FROM drill_kv WHERE key = $1`, key).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(s), nil
}

func (p *PostgresPersister) Set(ctx context.Context, key string, data []byte) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set: %w", err)
	}
	// dialect=PostgreSQL
	if _, err := tx.ExecContext(ctx, `INSERT INTO drill_kv(key, value, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, key, string(data)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("set %s: %w", key, err)
	}
	if key == store.Key {
		if d, err := store.Decode(data); err == nil {
			for _, st := range d.Steps {
				if st.CanvasData == nil {
					continue
				}
				b, err := json.Marshal(st.CanvasData.Elements)
				if err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("encode layout %s: %w", st.ID, err)
				}
				// Only record a row when the step's latest history entry differs.
				// dialect=PostgreSQL
				if _, err := tx.ExecContext(ctx, `INSERT INTO drill_layout_history(drill_id, step_id, elements)
					SELECT $1, $2, $3::jsonb
					WHERE NOT EXISTS (
						SELECT 1 FROM (
							SELECT elements FROM drill_layout_history WHERE step_id = $2 ORDER BY ts DESC, id DESC LIMIT 1
						) last WHERE last.elements = $3::jsonb
					)`, d.ID, st.ID, string(b)); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("record layout %s: %w", st.ID, err)
				}
			}
		}
	}
	return tx.Commit()
}

func (p *PostgresPersister) Delete(ctx context.Context, key string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM drill_kv WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// applyMigrations applies embedded SQL migrations in filename order.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	l := applog.WithOperation(applog.WithComponent("storage"), "pg_migrate")
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, name := range files {
		v, err := parseMigrationVersion(name)
		if err != nil {
			return err
		}
		if applied[v] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", name))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		l.Info("applying migration", slog.String("file", name))
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

func parseMigrationVersion(name string) (int64, error) {
	base := path.Base(name)
	head, _, ok := strings.Cut(base, "_")
	if !ok {
		return 0, errors.New("invalid migration filename: " + name)
	}
	v, err := strconv.ParseInt(head, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}
