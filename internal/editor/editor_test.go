/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"drilldesigner/internal/catalog"
	"drilldesigner/internal/domain"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func tpl(t *testing.T, id string) catalog.Template {
	t.Helper()
	tp, ok := catalog.Default().ByID(id)
	if !ok {
		t.Fatalf("template %q missing", id)
	}
	return tp
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestPlacePlayerAtCentreOfPitch(t *testing.T) {
	ed := New(WithClock(fixedClock(1000)))
	c := Box(1000, 600)
	el := ed.Place(tpl(t, "player"), c, 500, 300)
	if el.X != 50 || el.Y != 50 || el.Width != 5 || el.Height != 5 || el.Rotation != 0 {
		t.Fatalf("unexpected element: %#v", el)
	}
	if el.Color != catalog.DefaultColor() || el.Label != "Player" || el.Type != domain.TypePlayer {
		t.Fatalf("template fields not stamped: %#v", el)
	}
	if sel, ok := ed.Selected(); !ok || sel != el.InstanceID {
		t.Fatalf("new element should be selected")
	}
	if !ed.Dirty() {
		t.Fatalf("editor should be dirty after placement")
	}
}

func TestPlacementClampsForAnyPointer(t *testing.T) {
	ed := New()
	c := Container{Left: 40, Top: 80, Width: 800, Height: 500}
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		px := (r.Float64() - 0.5) * 1e5
		py := (r.Float64() - 0.5) * 1e5
		el := ed.Place(tpl(t, "cone"), c, px, py)
		if el.X < 0 || el.X > 100 || el.Y < 0 || el.Y > 100 {
			t.Fatalf("placement (%v,%v) escaped pitch: %v,%v", px, py, el.X, el.Y)
		}
		s, err := ed.BeginDrag(el.InstanceID, c, px, py)
		if err != nil {
			t.Fatalf("BeginDrag: %v", err)
		}
		if err := s.Move(-px, py*3); err != nil {
			t.Fatalf("Move: %v", err)
		}
		s.End()
		got, _ := ed.Element(el.InstanceID)
		if got.X < 0 || got.X > 100 || got.Y < 0 || got.Y > 100 {
			t.Fatalf("drag escaped pitch: %v,%v", got.X, got.Y)
		}
	}

	for _, tc := range []struct{ px, want float64 }{
		{math.NaN(), 0},
		{math.Inf(1), 100},
		{math.Inf(-1), 0},
	} {
		if el := ed.Place(tpl(t, "cone"), c, tc.px, 300); el.X != tc.want {
			t.Fatalf("Place(px=%v) x = %v, want %v", tc.px, el.X, tc.want)
		}
	}
	el := ed.PlaceAt(tpl(t, "cone"), math.NaN(), math.Inf(1))
	if el.X != 0 || el.Y != 100 {
		t.Fatalf("PlaceAt(NaN,+Inf) = %v,%v", el.X, el.Y)
	}
	rs, err := ed.BeginResize(el.InstanceID, SE, c, 0, 0)
	if err != nil {
		t.Fatalf("BeginResize: %v", err)
	}
	_ = rs.Move(math.Inf(1), math.NaN())
	rs.End()
	rot, err := ed.BeginRotate(el.InstanceID, c, 0, 0)
	if err != nil {
		t.Fatalf("BeginRotate: %v", err)
	}
	_ = rot.Move(math.NaN(), 0)
	rot.End()
	got, _ := ed.Element(el.InstanceID)
	if got.Width != el.Width || got.Height != el.Height || got.Rotation != 0 {
		t.Fatalf("non-finite pointer changed the element: %#v", got)
	}
}

func TestDegenerateContainerDoesNotProduceNaN(t *testing.T) {
	ed := New()
	el := ed.Place(tpl(t, "cone"), Container{}, 10, 10)
	if el.X != 0 || el.Y != 0 {
		t.Fatalf("expected 0,0 for empty container, got %v,%v", el.X, el.Y)
	}
}

func TestDistinctInstanceIDsWithinSameMillisecond(t *testing.T) {
	ed := New(WithClock(fixedClock(42)))
	a := ed.PlaceCentered(tpl(t, "cone"))
	b := ed.PlaceCentered(tpl(t, "cone"))
	if a.InstanceID == b.InstanceID {
		t.Fatalf("duplicate instance ids %d", a.InstanceID)
	}
	s, _ := ed.BeginDrag(a.InstanceID, Box(100, 100), 50, 50)
	_ = s.Move(10, 10)
	s.End()
	gotB, _ := ed.Element(b.InstanceID)
	if gotB.X != 50 || gotB.Y != 50 {
		t.Fatalf("moving one placement must not move the other: %#v", gotB)
	}
}

func TestFixedColourAndPaletteChangesAreNotRetroactive(t *testing.T) {
	ed := New()
	ball := ed.PlaceCentered(tpl(t, "ball"))
	if ball.Color != "" {
		t.Fatalf("ball has fixed colour, got %q", ball.Color)
	}
	p := ed.PlaceCentered(tpl(t, "player"))
	if err := ed.SetColor("red"); err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	ball2 := ed.PlaceCentered(tpl(t, "ball"))
	p2 := ed.PlaceCentered(tpl(t, "player"))

	gotP, _ := ed.Element(p.InstanceID)
	gotBall, _ := ed.Element(ball.InstanceID)
	if gotP.Color != "#10b981" || gotBall.Color != "" || ball2.Color != "" || p2.Color != "#ef4444" {
		t.Fatalf("palette change leaked: player=%q ball=%q ball2=%q p2=%q", gotP.Color, gotBall.Color, ball2.Color, p2.Color)
	}
	if err := ed.SetColor("mauve"); !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("expected ErrUnknownColor, got %v", err)
	}
}

func TestResizeFloorAndCumulativeDelta(t *testing.T) {
	ed := New()
	c := Box(1000, 500)
	el := ed.PlaceCentered(tpl(t, "rect")) // 15 x 8
	s, err := ed.BeginResize(el.InstanceID, SE, c, 600, 300)
	if err != nil {
		t.Fatalf("BeginResize: %v", err)
	}
	// +100px = +10% width, +50px = +10% height; deltas are from session start.
	for _, step := range []float64{20, 60, 100} {
		if err := s.Move(600+step, 300+step/2); err != nil {
			t.Fatalf("Move: %v", err)
		}
	}
	got, _ := ed.Element(el.InstanceID)
	if !approx(got.Width, 25) || !approx(got.Height, 18) {
		t.Fatalf("after SE drag got %vx%v, want 25x18", got.Width, got.Height)
	}

	r := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		if err := s.Move(600-r.Float64()*5000, 300-r.Float64()*5000); err != nil {
			t.Fatalf("Move: %v", err)
		}
		got, _ = ed.Element(el.InstanceID)
		if got.Width < MinSize || got.Height < MinSize {
			t.Fatalf("resize went below floor: %vx%v", got.Width, got.Height)
		}
	}
	s.End()
}

func TestResizeDirectionMultipliers(t *testing.T) {
	ed := New()
	c := Box(100, 100)
	el := ed.PlaceCentered(tpl(t, "square")) // 10 x 10
	s, err := ed.BeginResize(el.InstanceID, W, c, 45, 50)
	if err != nil {
		t.Fatalf("BeginResize: %v", err)
	}
	_ = s.Move(40, 90)
	s.End()
	got, _ := ed.Element(el.InstanceID)
	if !approx(got.Width, 15) || got.Height != 10 {
		t.Fatalf("west resize: %vx%v, want 15x10", got.Width, got.Height)
	}
	if d, err := ParseDirection("NW"); err != nil || d != NW {
		t.Fatalf("ParseDirection: %v %v", d, err)
	}
	if _, err := ParseDirection("up"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRotateFromPointerAngle(t *testing.T) {
	ed := New()
	c := Box(1000, 600)
	el := ed.Place(tpl(t, "arrow"), c, 500, 300)
	s, err := ed.BeginRotate(el.InstanceID, c, 500, 250)
	if err != nil {
		t.Fatalf("BeginRotate: %v", err)
	}
	_ = s.Move(500, 100) // straight up
	got, _ := ed.Element(el.InstanceID)
	if !approx(got.Rotation, 0) {
		t.Fatalf("up: rotation %v, want 0", got.Rotation)
	}
	_ = s.Move(800, 300) // right
	got, _ = ed.Element(el.InstanceID)
	if !approx(got.Rotation, 90) {
		t.Fatalf("right: rotation %v, want 90", got.Rotation)
	}
	_ = s.Move(500, 500) // down: absolute, not accumulated
	got, _ = ed.Element(el.InstanceID)
	if !approx(got.Rotation, 180) {
		t.Fatalf("down: rotation %v, want 180", got.Rotation)
	}
	s.End()
}

func TestRotateAnchorIsFixedAtSessionStart(t *testing.T) {
	ed := New()
	c := Box(100, 100)
	el := ed.PlaceAt(tpl(t, "arrow"), 50, 50)
	s, _ := ed.BeginRotate(el.InstanceID, c, 50, 40)
	ed.elements[0].X = 10 // moved behind the session's back
	_ = s.Move(60, 50)
	got, _ := ed.Element(el.InstanceID)
	if !approx(got.Rotation, 90) {
		t.Fatalf("rotation should use start anchor, got %v", got.Rotation)
	}
}

func TestSingleActiveSession(t *testing.T) {
	ed := New()
	c := Box(100, 100)
	a := ed.PlaceAt(tpl(t, "cone"), 20, 20)
	b := ed.PlaceAt(tpl(t, "cone"), 80, 80)
	s, err := ed.BeginDrag(a.InstanceID, c, 20, 20)
	if err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if _, err := ed.BeginDrag(b.InstanceID, c, 80, 80); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	s.End()
	s.End()
	if err := s.Move(1, 1); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("expected ErrSessionEnded, got %v", err)
	}
	if _, ok := ed.ActiveSession(); ok {
		t.Fatalf("no session should be active")
	}
	if _, err := ed.BeginDrag(b.InstanceID, c, 80, 80); err != nil {
		t.Fatalf("new session after End: %v", err)
	}
}

func TestHandlesRequireSelection(t *testing.T) {
	ed := New()
	c := Box(100, 100)
	a := ed.PlaceAt(tpl(t, "cone"), 20, 20)
	ed.PlaceAt(tpl(t, "cone"), 80, 80) // selects the second one
	if _, err := ed.BeginResize(a.InstanceID, SE, c, 0, 0); !errors.Is(err, ErrNotSelected) {
		t.Fatalf("resize on unselected: %v", err)
	}
	if _, err := ed.BeginRotate(a.InstanceID, c, 0, 0); !errors.Is(err, ErrNotSelected) {
		t.Fatalf("rotate on unselected: %v", err)
	}
	if _, err := ed.BeginDrag(999, c, 0, 0); !errors.Is(err, ErrElementNotFound) {
		t.Fatalf("drag on missing: %v", err)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	ed := New()
	c := Box(200, 200)
	el := ed.PlaceAt(tpl(t, "minigoal"), 30, 70)
	s, _ := ed.BeginResize(el.InstanceID, SE, c, 0, 0)
	_ = s.Move(90, 40)
	s.End()
	s, _ = ed.BeginRotate(el.InstanceID, c, 0, 0)
	_ = s.Move(10, 190)
	s.End()

	if !ed.Reset(el.InstanceID) {
		t.Fatalf("reset failed")
	}
	once, _ := ed.Element(el.InstanceID)
	ed.Reset(el.InstanceID)
	twice, _ := ed.Element(el.InstanceID)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("reset not idempotent (-once +twice):\n%s", diff)
	}
	if once.Width != 10 || once.Height != 6 || once.Rotation != 0 || once.X != 30 || once.Y != 70 {
		t.Fatalf("reset result: %#v", once)
	}
}

func TestResetFallsBackToTypeVariantAndMissesSilently(t *testing.T) {
	ed := New()
	ed.Load(domain.DrillStep{CanvasData: &domain.CanvasData{Elements: []domain.PlacedElement{
		{InstanceID: 1, ID: "legacy-cone", Type: domain.TypeEquipment, Variant: "cone", Width: 30, Height: 30, Rotation: 45},
		{InstanceID: 2, ID: "zone", Type: domain.TypeShape, Variant: "zone", Width: 30, Height: 30, Rotation: 45},
	}}})
	if !ed.Reset(1) {
		t.Fatalf("secondary lookup should match")
	}
	got, _ := ed.Element(1)
	if got.Width != 4 || got.Height != 4 || got.Rotation != 0 {
		t.Fatalf("fallback reset: %#v", got)
	}
	if ed.Reset(2) {
		t.Fatalf("unknown template should not reset")
	}
	got, _ = ed.Element(2)
	if got.Width != 30 || got.Rotation != 45 {
		t.Fatalf("miss must be a no-op: %#v", got)
	}
}

func TestSelectionExclusivity(t *testing.T) {
	ed := New()
	a := ed.PlaceAt(tpl(t, "player"), 10, 10)
	b := ed.PlaceAt(tpl(t, "player"), 90, 90)
	ed.Select(a.InstanceID)
	ed.Select(b.InstanceID)
	if sel, ok := ed.Selected(); !ok || sel != b.InstanceID {
		t.Fatalf("expected only B selected, got %d %v", sel, ok)
	}
	if ed.Select(12345) {
		t.Fatalf("selecting unknown id should fail")
	}
	if sel, _ := ed.Selected(); sel != b.InstanceID {
		t.Fatalf("failed select must keep selection")
	}
}

func TestTapSelectsTopmostOrClears(t *testing.T) {
	ed := New()
	c := Box(1000, 1000)
	a := ed.PlaceAt(tpl(t, "rect"), 50, 50)
	b := ed.PlaceAt(tpl(t, "player"), 50, 50)
	if id, ok := ed.Tap(c, 500, 500); !ok || id != b.InstanceID {
		t.Fatalf("tap should hit topmost, got %d", id)
	}
	if id, ok := ed.Tap(c, 560, 500); !ok || id != a.InstanceID {
		t.Fatalf("tap should hit rect, got %d", id)
	}
	if _, ok := ed.Tap(c, 10, 10); ok {
		t.Fatalf("background tap should miss")
	}
	if _, ok := ed.Selected(); ok {
		t.Fatalf("background tap should clear selection")
	}
}

func TestDeleteAndClear(t *testing.T) {
	ed := New()
	a := ed.PlaceAt(tpl(t, "player"), 10, 10)
	b := ed.PlaceAt(tpl(t, "gk"), 20, 20)
	c := ed.PlaceAt(tpl(t, "cone"), 30, 30)
	ed.Select(b.InstanceID)
	before := ed.Elements()

	if !ed.Delete(b.InstanceID) {
		t.Fatalf("delete failed")
	}
	after := ed.Elements()
	if len(after) != len(before)-1 {
		t.Fatalf("count %d -> %d", len(before), len(after))
	}
	if diff := cmp.Diff([]domain.PlacedElement{before[0], before[2]}, after); diff != "" {
		t.Fatalf("other elements changed (-want +got):\n%s", diff)
	}
	if _, ok := ed.Selected(); ok {
		t.Fatalf("deleting selected element must clear selection")
	}

	ed.Select(a.InstanceID)
	ed.Delete(c.InstanceID)
	if sel, ok := ed.Selected(); !ok || sel != a.InstanceID {
		t.Fatalf("deleting another element must keep selection")
	}
	if ed.Delete(c.InstanceID) {
		t.Fatalf("second delete should report false")
	}
	if ed.PlayerCount() != 1 {
		t.Fatalf("PlayerCount = %d", ed.PlayerCount())
	}

	ed.Clear()
	if ed.Len() != 0 {
		t.Fatalf("clear left %d elements", ed.Len())
	}
	if _, ok := ed.Selected(); ok {
		t.Fatalf("clear must drop selection")
	}
}

func TestDeleteEndsSessionOnTarget(t *testing.T) {
	ed := New()
	a := ed.PlaceAt(tpl(t, "player"), 10, 10)
	s, _ := ed.BeginDrag(a.InstanceID, Box(100, 100), 10, 10)
	ed.Delete(a.InstanceID)
	if s.Active() {
		t.Fatalf("session should end with its element")
	}
}

type fakeSteps struct {
	saved map[string]domain.CanvasData
}

func (f *fakeSteps) UpdateStep(_ context.Context, id string, p domain.StepPatch) (bool, error) {
	if id == "missing" {
		return false, nil
	}
	f.saved[id] = *p.CanvasData.Clone()
	return true, nil
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ed := New(WithClock(fixedClock(1_700_000_000_000)))
	ed.PlaceAt(tpl(t, "player"), 10, 20)
	ed.PlaceAt(tpl(t, "ball"), 30, 40)
	ed.PlaceAt(tpl(t, "arrow-dash"), 50, 60)
	want := ed.Elements()

	f := &fakeSteps{saved: map[string]domain.CanvasData{}}
	if err := ed.Save(context.Background(), f, "s1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ed.Dirty() {
		t.Fatalf("save should clear dirty flag")
	}
	if err := ed.Save(context.Background(), f, "missing"); !errors.Is(err, ErrStepMissing) {
		t.Fatalf("expected ErrStepMissing, got %v", err)
	}

	cd := f.saved["s1"]
	fresh := New(WithClock(fixedClock(1)))
	fresh.Load(domain.DrillStep{ID: "s1", CanvasData: &cd})
	if diff := cmp.Diff(want, fresh.Elements()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	// New placements after load never collide with loaded ids even with a slow clock.
	n := fresh.PlaceCentered(tpl(t, "cone"))
	for _, el := range want {
		if el.InstanceID == n.InstanceID {
			t.Fatalf("instance id collision after load: %d", n.InstanceID)
		}
	}
}

func TestSnapshotOfEmptyEditorHasEmptySlice(t *testing.T) {
	if New().Snapshot().Elements == nil {
		t.Fatalf("empty snapshot should carry an empty, non-nil slice")
	}
}
