/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"
	"testing"

	"drilldesigner/internal/domain"
	"drilldesigner/internal/editor"
	"drilldesigner/internal/vector"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestLayoutPitchUsesFieldAsContainer(t *testing.T) {
	d := &domain.Drill{ID: "d", FieldType: domain.FieldFull, FieldWidth: 68, FieldLength: 105}
	els := []domain.PlacedElement{{InstanceID: 1, ID: "player", Type: domain.TypePlayer, X: 50, Y: 50, Width: 5, Height: 5}}
	pl := layoutPitch(d, domain.DrillStep{ID: "s"}, els, 600, 900)
	f := pl.scene.Field
	if pl.box.Left != f.X || pl.box.Top != f.Y || pl.box.Width != f.W || pl.box.Height != f.H {
		t.Fatalf("box %+v != field %+v", pl.box, f)
	}
	if len(pl.scene.Elements) != 1 {
		t.Fatalf("elements = %d", len(pl.scene.Elements))
	}
}

func TestGripsFollowFrame(t *testing.T) {
	c := editor.Box(200, 200)
	el := domain.PlacedElement{X: 50, Y: 50, Width: 15, Height: 8}
	gs := grips(el, c)
	if len(gs) != 9 {
		t.Fatalf("grips = %d, want 9", len(gs))
	}
	se := gs[4]
	if se.dir != editor.SE || !near(se.at.X, 115) || !near(se.at.Y, 108) {
		t.Fatalf("SE grip = %+v", se)
	}
	rot := gs[8]
	if rot.kind != gripRotate || !near(rot.at.X, 100) || !near(rot.at.Y, 92-rotateOffset) {
		t.Fatalf("rotate grip = %+v", rot)
	}

	el.Rotation = 90
	rot = grips(el, c)[8]
	if !near(rot.at.X, 100+8+rotateOffset) || !near(rot.at.Y, 100) {
		t.Fatalf("rotated grip = %+v", rot.at)
	}
	if _, ok := gripAt(gs, vector.Pt{X: 100, Y: 100}); ok {
		t.Fatalf("centre must not hit a grip")
	}
}

func newGestureEditor(t *testing.T) (*editor.Editor, int64) {
	t.Helper()
	ed := editor.New()
	el, err := ed.PlaceByID("rect", 50, 50)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	return ed, el.InstanceID
}

func TestGesturesResizeFromGrip(t *testing.T) {
	ed, id := newGestureEditor(t)
	c := editor.Box(200, 200)
	g := &gestures{ed: ed}
	ok, err := g.start(c, vector.Pt{X: 115, Y: 108})
	if err != nil || !ok {
		t.Fatalf("start = %v, %v", ok, err)
	}
	if g.sess.Kind() != editor.KindResize {
		t.Fatalf("kind = %v", g.sess.Kind())
	}
	if err := g.move(vector.Pt{X: 135, Y: 108}); err != nil {
		t.Fatalf("move: %v", err)
	}
	g.end()
	el, _ := ed.Element(id)
	if !near(el.Width, 25) || !near(el.Height, 8) {
		t.Fatalf("size = %vx%v, want 25x8", el.Width, el.Height)
	}
	if g.active() {
		t.Fatalf("session still active")
	}
}

func TestGesturesRotateAndDrag(t *testing.T) {
	ed, id := newGestureEditor(t)
	c := editor.Box(200, 200)
	g := &gestures{ed: ed}

	if ok, err := g.start(c, vector.Pt{X: 100, Y: 92 - rotateOffset}); !ok || err != nil {
		t.Fatalf("rotate start = %v, %v", ok, err)
	}
	_ = g.move(vector.Pt{X: 150, Y: 100})
	g.end()
	el, _ := ed.Element(id)
	if !near(el.Rotation, 90) {
		t.Fatalf("rotation = %v, want 90", el.Rotation)
	}

	ed.ClearSelection()
	if ok, err := g.start(c, vector.Pt{X: 100, Y: 100}); !ok || err != nil {
		t.Fatalf("drag start = %v, %v", ok, err)
	}
	if sel, _ := ed.Selected(); sel != id {
		t.Fatalf("drag must select the element")
	}
	_ = g.move(vector.Pt{X: 20, Y: -50})
	g.end()
	el, _ = ed.Element(id)
	if el.X != 10 || el.Y != 0 {
		t.Fatalf("position = %v,%v, want 10,0", el.X, el.Y)
	}

	ed.ClearSelection()
	if ok, _ := g.start(c, vector.Pt{X: 5, Y: 5}); ok {
		t.Fatalf("background drag must not start a session")
	}
}

func TestStepLabel(t *testing.T) {
	if got := stepLabel(0, domain.DrillStep{Title: "Warm up"}); got != "1. Warm up" {
		t.Fatalf("label = %q", got)
	}
	st := domain.DrillStep{Title: "Game", CanvasData: &domain.CanvasData{Elements: make([]domain.PlacedElement, 3)}}
	if got := stepLabel(1, st); got != "2. Game (3 items)" {
		t.Fatalf("label = %q", got)
	}
}
