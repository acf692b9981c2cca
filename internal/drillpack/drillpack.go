/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package drillpack bundles a drill into a single zip for sharing: the drill
// document, a human readable manifest and a PNG preview per step.
package drillpack

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drilldesigner/internal/domain"
	"drilldesigner/internal/export"
	applog "drilldesigner/internal/log"
	"drilldesigner/internal/storage"
	"drilldesigner/internal/store"
	"drilldesigner/internal/version"
)

const (
	DrillFile    = "drill.json"
	ManifestFile = "manifest.txt"
	StepsDir     = "steps"

	maxDrillSize = 16 << 20
)

// ErrNoDrill is returned by Import when the archive has no drill.json.
var ErrNoDrill = errors.New("pack contains no " + DrillFile)

// Export writes d to destZipPath, replacing any existing file.
func Export(d *domain.Drill, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("drillpack"), "export").With(slog.String("zip", destZipPath))
	if d == nil {
		return errors.New("drill is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	doc, err := store.Encode(d)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	zw := zip.NewWriter(zf)
	if err := writePack(zw, d, doc); err != nil {
		_ = zw.Close()
		_ = zf.Close()
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	if err := zw.Close(); err != nil {
		_ = zf.Close()
		return fmt.Errorf("finish zip: %w", err)
	}
	if err := zf.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	l.Info("drill pack exported", slog.Int("steps", len(d.Steps)))
	return nil
}

func writePack(zw *zip.Writer, d *domain.Drill, doc []byte) error {
	add := func(name string, b []byte) error {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	if err := add(ManifestFile, []byte(Manifest(d, time.Now()))); err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if err := add(DrillFile, doc); err != nil {
		return fmt.Errorf("add drill: %w", err)
	}
	for i, st := range d.Steps {
		var buf bytes.Buffer
		if err := export.PNG(&buf, export.Build(d, st, export.Options{}), export.PNGOptions{}); err != nil {
			return err
		}
		if err := add(StepsDir+"/"+export.StepFileName(i, export.FormatPNG), buf.Bytes()); err != nil {
			return fmt.Errorf("add preview %d: %w", i+1, err)
		}
	}
	return nil
}

// Manifest is the plain text summary stored next to the drill.
func Manifest(d *domain.Drill, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Drill Designer pack\nCreated: %s\nApp: %s\n\n", now.Format(time.RFC3339), version.String())
	fmt.Fprintf(&b, "Title: %s\nDate: %s\nObjective: %s\n", d.Title, d.Date, d.Objective)
	if d.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", d.Category)
	}
	ft, w, ln := d.Pitch()
	fmt.Fprintf(&b, "Field: %s (%gm x %gm)\n\nSteps:\n", ft, w, ln)
	if len(d.Steps) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, st := range d.Steps {
		fmt.Fprintf(&b, "  %d. %s (%d elements)\n", i+1, st.Title, len(st.Elements()))
	}
	return b.String()
}

// Import reads and schema-validates the drill stored in a pack.
func Import(packZipPath string) (*domain.Drill, error) {
	l := applog.WithOperation(applog.WithComponent("drillpack"), "import").With(slog.String("zip", packZipPath))
	if strings.TrimSpace(packZipPath) == "" {
		return nil, errors.New("packZipPath is required")
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return nil, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if f.Name != DrillFile {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", DrillFile, err)
		}
		b, err := io.ReadAll(io.LimitReader(rc, maxDrillSize+1))
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", DrillFile, err)
		}
		if len(b) > maxDrillSize {
			return nil, fmt.Errorf("%s exceeds %d bytes", DrillFile, maxDrillSize)
		}
		if err := storage.ValidateDrill(b); err != nil {
			l.Warn("pack drill rejected", slog.Any("err", err))
			return nil, err
		}
		d, err := store.Decode(b)
		if err != nil {
			return nil, err
		}
		l.Info("drill pack imported", slog.String("drill", d.ID), slog.Int("steps", len(d.Steps)))
		return d, nil
	}
	return nil, ErrNoDrill
}
