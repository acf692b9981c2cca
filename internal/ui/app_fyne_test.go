//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Run locally with a working Fyne driver:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"drilldesigner/internal/catalog"
	"drilldesigner/internal/domain"
	"drilldesigner/internal/editor"
)

func almostEqual(a, b, eps float32) bool {
	if a > b {
		return a-b <= eps
	}
	return b-a <= eps
}

func TestPitchCanvas_Defaults(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	pc := NewPitchCanvas()
	if sz := pc.PreferredSize(); sz.Width != 600 || sz.Height != 800 {
		t.Fatalf("unexpected PreferredSize: %v", sz)
	}
	r := pc.CreateRenderer().(*pitchRenderer)
	r.Layout(fyne.NewSize(600, 800))
	if !r.raster.Hidden || r.hint.Hidden {
		t.Fatalf("unbound canvas should show the hint only")
	}
	if r.bbox.Visible() {
		t.Fatalf("no selection box expected")
	}
}

func TestPitchCanvas_SelectionOverlay(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	d := &domain.Drill{ID: "d", FieldType: domain.Field7v7, FieldWidth: 50, FieldLength: 70,
		Steps: []domain.DrillStep{{ID: "s1", Title: "Warm up"}}}
	ed := editor.New()
	tpl, _ := catalog.Default().ByID("player")
	el := ed.PlaceCentered(tpl)
	ed.Select(el.InstanceID)

	pc := NewPitchCanvas()
	pc.Show(d, d.Steps[0], ed)
	r := pc.CreateRenderer().(*pitchRenderer)
	size := fyne.NewSize(500, 700)
	r.Layout(size)
	if r.raster.Hidden || !r.hint.Hidden {
		t.Fatalf("bound canvas should show the raster")
	}

	b := editor.Frame(el, pc.pl.box).Bounds()
	if !almostEqual(r.bbox.Position().X, float32(b.X), 0.5) || !almostEqual(r.bbox.Size().Width, float32(b.W), 0.5) {
		t.Fatalf("bbox at %v size %v, want %+v", r.bbox.Position(), r.bbox.Size(), b)
	}
	gs := grips(el, pc.pl.box)
	se := gs[4].rect()
	if !almostEqual(r.handles[4].Position().X, float32(se.X), 0.5) || !almostEqual(r.handles[4].Position().Y, float32(se.Y), 0.5) {
		t.Fatalf("SE handle at %v, want %+v", r.handles[4].Position(), se)
	}
	if !r.rot.Visible() {
		t.Fatalf("rotate handle hidden")
	}

	img := r.draw(250, 350)
	if got := img.Bounds().Dx(); got != 250 {
		t.Fatalf("raster width = %d", got)
	}

	ed.ClearSelection()
	r.Layout(size)
	if r.bbox.Visible() || r.rot.Visible() {
		t.Fatalf("overlay should hide without a selection")
	}
}

func TestPitchCanvas_DragMovesElement(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	d := &domain.Drill{ID: "d", FieldType: domain.Field7v7, FieldWidth: 50, FieldLength: 70,
		Steps: []domain.DrillStep{{ID: "s1", Title: "Warm up"}}}
	ed := editor.New()
	tpl, _ := catalog.Default().ByID("cone")
	el := ed.PlaceCentered(tpl)

	pc := NewPitchCanvas()
	changes := 0
	pc.OnChange = func() { changes++ }
	pc.Resize(fyne.NewSize(500, 700))
	pc.Show(d, d.Steps[0], ed)
	pc.relayout(pc.Size())

	start := pc.pl.box.Pixel(el.X, el.Y)
	step := fyne.Delta{DX: float32(pc.pl.box.Width / 10), DY: 0}
	pc.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(float32(start.X)+step.DX, float32(start.Y))},
		Dragged:    step,
	})
	pc.DragEnd()

	moved, ok := ed.Element(el.InstanceID)
	if !ok {
		t.Fatalf("element vanished")
	}
	if moved.X < el.X+9 || moved.X > el.X+11 {
		t.Fatalf("x = %v, want about %v", moved.X, el.X+10)
	}
	if changes == 0 {
		t.Fatalf("OnChange not called")
	}
}
