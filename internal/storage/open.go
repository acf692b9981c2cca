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
	"fmt"
	"io"
	"strings"

	"drilldesigner/internal/config"
	"drilldesigner/internal/store"
)

// Backend names accepted in config.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Opened is a persister plus whatever must be closed when done with it.
type Opened struct {
	store.Persister
	io.Closer
	// WatchPath is the file to watch for external edits; empty for database backends.
	WatchPath string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenPersister selects the backend named in cfg.Storage.Backend.
func OpenPersister(ctx context.Context, cfg config.AppConfig, dsn string) (*Opened, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "", BackendFile:
		fp, err := NewFilePersister(cfg.StoragePath())
		if err != nil {
			return nil, err
		}
		return &Opened{Persister: fp, Closer: nopCloser{}, WatchPath: fp.Path(store.Key)}, nil
	case BackendSQLite:
		sp, err := OpenSQLite(ctx, cfg.StoragePath())
		if err != nil {
			return nil, err
		}
		return &Opened{Persister: sp, Closer: sp}, nil
	case BackendPostgres:
		pp, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &Opened{Persister: pp, Closer: pp}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// OpenStore opens the persister and a validating store on top of it.
func OpenStore(ctx context.Context, cfg config.AppConfig, dsn string) (*store.Store, *Opened, error) {
	op, err := OpenPersister(ctx, cfg, dsn)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(ctx, op, store.WithValidator(ValidateDrill))
	if err != nil {
		_ = op.Close()
		return nil, nil, err
	}
	return s, op, nil
}
