/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"drilldesigner/internal/domain"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"   // png + svg per step
	PresetPrint PresetName = "print" // one pdf, pngs at 2x
)

// Formats accepted by BatchExport.
const (
	FormatPDF = "pdf"
	FormatPNG = "png"
	FormatSVG = "svg"
)

// BatchOptions controls a multi-format export of one drill.
//
// Path semantics:
//   - A relative OutDir resolves under <dataDir>/exports; empty means the preset name.
//   - PDF is written as <OutDir>/pdf/drill.pdf.
//   - PNG and SVG are per step: <OutDir>/<format>/step-<n>.<format>, n starting at 1.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // empty means preset defaults
	Steps   []int    // zero-based; empty means all
	Scale   float64  // PNG scale; zero means the preset default
	OutDir  string
	Options Options
}

// ResolveDir maps a relative output directory under <dataDir>/exports.
func ResolveDir(dataDir, out string) string {
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(dataDir, "exports", out)
}

// StepFileName is the per-step output name, e.g. step-2.png.
func StepFileName(index int, format string) string {
	return fmt.Sprintf("step-%d.%s", index+1, format)
}

// BatchExport writes the drill in every requested format and returns the
// files written.
func BatchExport(d *domain.Drill, dataDir string, opt BatchOptions) ([]string, error) {
	if d == nil {
		return nil, fmt.Errorf("drill is nil")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	base := opt.OutDir
	if base == "" {
		base = string(opt.Preset)
		if base == "" {
			base = string(PresetWeb)
		}
	}
	base = ResolveDir(dataDir, base)
	scale := opt.Scale
	if scale <= 0 {
		scale = presetScale(opt.Preset)
	}

	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case FormatPDF:
			out := filepath.Join(base, "pdf", "drill.pdf")
			var buf bytes.Buffer
			if err := PDF(&buf, d, PDFOptions{Options: opt.Options, Steps: opt.Steps}); err != nil {
				return written, err
			}
			if err := writeFile(out, buf.Bytes()); err != nil {
				return written, err
			}
			written = append(written, out)
		case FormatPNG, FormatSVG:
			dir := filepath.Join(base, f)
			for _, i := range stepIndexes(len(d.Steps), opt.Steps) {
				if i < 0 || i >= len(d.Steps) {
					continue
				}
				b, err := StepBytes(d, d.Steps[i], f, opt.Options, scale)
				if err != nil {
					return written, fmt.Errorf("%s step %d: %w", f, i+1, err)
				}
				out := filepath.Join(dir, StepFileName(i, f))
				if err := writeFile(out, b); err != nil {
					return written, err
				}
				written = append(written, out)
			}
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
	}
	return written, nil
}

// StepBytes renders one step as svg or png.
func StepBytes(d *domain.Drill, st domain.DrillStep, format string, o Options, scale float64) ([]byte, error) {
	sc := Build(d, st, o)
	switch format {
	case FormatSVG:
		return SVG(sc)
	case FormatPNG:
		var buf bytes.Buffer
		if err := PNG(&buf, sc, PNGOptions{Scale: scale}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetPrint:
		return []string{FormatPDF, FormatPNG}
	default:
		return []string{FormatPNG, FormatSVG}
	}
}

func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 2
	}
	return 1
}
