/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report plus an autosave of the
// drill being edited.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"drilldesigner/internal/domain"
	applog "drilldesigner/internal/log"
	"drilldesigner/internal/store"
	"drilldesigner/internal/telemetry"
	"drilldesigner/internal/version"
)

// DirName is the folder under the data dir that receives reports and autosaves.
const DirName = "crash"

var (
	exitFn = os.Exit
	now    = time.Now
)

// Recover must be deferred directly:
//
//	defer crash.Recover(s, cfg.General.DataDir)
//
// Both arguments may be zero; the report then goes to os.TempDir and
// nothing is autosaved.
func Recover(s *store.Store, dataDir string) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	dir := reportDir(dataDir)
	stamp := now().Format("20060102-150405")
	reportPath, err := writeReport(dir, stamp, s, r, stack)
	if err != nil {
		l.Error("crash report write failed", slog.Any("err", err), slog.String("path", reportPath))
	}
	if path, err := autosave(dir, stamp, s); err != nil {
		l.Error("autosave failed", slog.Any("err", err))
	} else if path != "" {
		l.Info("autosave written", slog.String("path", path))
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func reportDir(dataDir string) string {
	if dataDir == "" {
		return os.TempDir()
	}
	dir := filepath.Join(dataDir, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.TempDir()
	}
	return dir
}

func writeReport(dir, stamp string, s *store.Store, panicVal any, stack []byte) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Drill Designer Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if d := current(s); d != nil {
		_, _ = fmt.Fprintf(&buf, "Drill: %s (%d steps)\n", d.ID, len(d.Steps))
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	// The report carries no drill content, only its id.
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

// autosave writes the current drill as JSON next to the report. It returns
// "" when there is nothing to save.
func autosave(dir, stamp string, s *store.Store) (string, error) {
	d := current(s)
	if d == nil {
		return "", nil
	}
	b, err := store.Encode(d)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("autosave-%s.json", stamp))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func current(s *store.Store) *domain.Drill {
	if s == nil {
		return nil
	}
	return s.Current()
}
