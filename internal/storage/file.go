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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	applog "drilldesigner/internal/log"
	"drilldesigner/internal/store"
)

const (
	BackupsDirName = "backups"
	// DefaultKeepBackups is how many .bak files FilePersister keeps per key.
	DefaultKeepBackups = 10
	backupStamp        = "20060102-150405.000000000"
)

// FilePersister stores each key as <Dir>/<key>.json. Writes go to a temp file
// that is synced and renamed over the target; the previous version is copied
// to <Dir>/backups/<key>.json.<stamp>.bak first.
type FilePersister struct {
	Dir  string
	Keep int // backups kept per key; <= 0 means DefaultKeepBackups

	mu  sync.Mutex
	now func() time.Time
}

// NewFilePersister creates dir (and its backups folder) if needed.
func NewFilePersister(dir string) (*FilePersister, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FilePersister{Dir: dir, Keep: DefaultKeepBackups, now: time.Now}, nil
}

// Path returns the document file for key.
func (f *FilePersister) Path(key string) string { return filepath.Join(f.Dir, key+".json") }

func (f *FilePersister) backupDir() string { return filepath.Join(f.Dir, BackupsDirName) }

// Get returns the document for key. When the file exists but cannot be read
// or is not valid JSON, the newest backup is returned instead.
func (f *FilePersister) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	if err == nil && json.Valid(b) {
		return b, nil
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "file_get")
	bb, berr := f.latestBackup(key)
	if berr != nil {
		if err == nil {
			// Let the caller see the corrupt bytes and decide.
			return b, nil
		}
		return nil, fmt.Errorf("read %s: %w; backup attempt: %v", key, err, berr)
	}
	l.Warn("primary document unreadable; using latest backup", slog.String("key", key), slog.Any("err", err))
	return bb, nil
}

// Set writes data transactionally, backing up the previous version.
func (f *FilePersister) Set(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := f.Path(key)
	if err := os.MkdirAll(f.backupDir(), 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, err := os.Stat(target); err == nil {
		bpath := filepath.Join(f.backupDir(), fmt.Sprintf("%s.json.%s.bak", key, f.clock().Format(backupStamp)))
		if err := copyFile(target, bpath); err != nil {
			return fmt.Errorf("backup %s: %w", key, err)
		}
		f.pruneBackups(key)
	}
	temp := filepath.Join(f.Dir, fmt.Sprintf(".%s.json.tmp-%d-%d", key, os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp %s: %w", key, err)
	}
	if err := os.Rename(temp, target); err != nil {
		// Windows refuses to rename over an existing file.
		_ = os.Remove(target)
		if err2 := os.Rename(temp, target); err2 != nil {
			_ = os.Remove(temp)
			return fmt.Errorf("replace %s: %w", key, err2)
		}
	}
	return nil
}

// Delete removes the document; backups are kept so RestoreLatestBackup can undo it.
func (f *FilePersister) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return store.ErrNotFound
	}
	return err
}

// Backups lists backup files for key, oldest first.
func (f *FilePersister) Backups(key string) ([]string, error) {
	ents, err := os.ReadDir(f.backupDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, key+".json.") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(f.backupDir(), name))
		}
	}
	sort.Strings(out) // the stamp sorts lexicographically
	return out, nil
}

// RestoreLatestBackup replaces the document with its newest backup and returns the backup path.
func (f *FilePersister) RestoreLatestBackup(ctx context.Context, key string) (string, error) {
	list, err := f.Backups(key)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", errors.New("no backups found")
	}
	latest := list[len(list)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return "", fmt.Errorf("read backup: %w", err)
	}
	if !json.Valid(b) {
		return "", fmt.Errorf("backup %s is not valid JSON", filepath.Base(latest))
	}
	if err := f.Set(ctx, key, b); err != nil {
		return "", err
	}
	return latest, nil
}

func (f *FilePersister) latestBackup(key string) ([]byte, error) {
	list, err := f.Backups(key)
	if err != nil {
		return nil, err
	}
	for i := len(list) - 1; i >= 0; i-- {
		b, err := os.ReadFile(list[i])
		if err == nil && json.Valid(b) {
			return b, nil
		}
	}
	return nil, errors.New("no usable backups")
}

func (f *FilePersister) pruneBackups(key string) {
	keep := f.Keep
	if keep <= 0 {
		keep = DefaultKeepBackups
	}
	list, err := f.Backups(key)
	if err != nil || len(list) <= keep {
		return
	}
	for _, p := range list[:len(list)-keep] {
		_ = os.Remove(p)
	}
}

func (f *FilePersister) clock() time.Time {
	if f.now == nil {
		return time.Now()
	}
	return f.now()
}

func writeFileSync(path string, data []byte) (err error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := fh.Write(data); err != nil {
		return err
	}
	return fh.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = sf.Close() }()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
