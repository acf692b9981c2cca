/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package designer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"drilldesigner/internal/domain"
	"drilldesigner/internal/editor"
	"drilldesigner/internal/store"
)

type eventLog struct{ names []string }

func (e *eventLog) Event(name string, _ map[string]any) { e.names = append(e.names, name) }

func newDesigner(t *testing.T) (*Designer, *eventLog) {
	t.Helper()
	s, err := store.Open(context.Background(), store.NewMemory())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ev := &eventLog{}
	clock := func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	tick := int64(0)
	edClock := func() time.Time { tick++; return time.UnixMilli(1_700_000_000_000 + tick) }
	return New(s, WithEvents(ev), WithClock(clock), WithEditorOptions(editor.WithClock(edClock))), ev
}

func validDrill(d *Designer) domain.DrillForm {
	f := d.NewDrillForm()
	f.Title, f.Objective = "Rondo", "Keep possession"
	return f
}

func TestNewDrillFormDefaultsToToday(t *testing.T) {
	d, _ := newDesigner(t)
	f := d.NewDrillForm()
	if f.Date != "2025-03-01" || f.FieldType != domain.FieldFull || f.GroundSize != domain.GroundWhole {
		t.Fatalf("form defaults = %+v", f)
	}
}

func TestCreateDrillValidation(t *testing.T) {
	d, ev := newDesigner(t)
	_, err := d.CreateDrill(context.Background(), domain.DrillForm{Title: "  "})
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}
	want := domain.ValidationErrors{"title": "Title is required", "date": "Date is required", "objective": "Objective is required"}
	if diff := cmp.Diff(want, verrs); diff != "" {
		t.Fatalf("messages (-want +got):\n%s", diff)
	}
	if d.Store().Current() != nil || len(ev.names) != 0 {
		t.Fatalf("invalid form must not create a drill")
	}
}

func TestCreateDrillReplacesCurrent(t *testing.T) {
	d, ev := newDesigner(t)
	ctx := context.Background()
	first, err := d.CreateDrill(ctx, validDrill(d))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := d.CreateStep(ctx, domain.StepForm{Title: "Warm up"}); err != nil {
		t.Fatalf("step: %v", err)
	}
	second, err := d.CreateDrill(ctx, validDrill(d))
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	cur := d.Store().Current()
	if cur.ID != second.ID || cur.ID == first.ID || len(cur.Steps) != 0 {
		t.Fatalf("current = %+v", cur)
	}
	want := []string{"drill_created", "step_created", "drill_created"}
	if diff := cmp.Diff(want, ev.names); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestCreateStepNeedsDrill(t *testing.T) {
	d, _ := newDesigner(t)
	ctx := context.Background()
	if _, err := d.CreateStep(ctx, domain.StepForm{Title: "Warm up"}); !errors.Is(err, store.ErrNoCurrentDrill) {
		t.Fatalf("err = %v, want ErrNoCurrentDrill", err)
	}
	var verrs domain.ValidationErrors
	if _, err := d.CreateStep(ctx, domain.StepForm{}); !errors.As(err, &verrs) || verrs["title"] != "Title is required" {
		t.Fatalf("err = %v, want title required", err)
	}
}

func TestStepsEmptyState(t *testing.T) {
	d, _ := newDesigner(t)
	ctx := context.Background()
	if _, err := d.Steps(); !errors.Is(err, store.ErrNoCurrentDrill) {
		t.Fatalf("err = %v, want ErrNoCurrentDrill", err)
	}
	if _, err := d.CreateDrill(ctx, validDrill(d)); err != nil {
		t.Fatalf("create: %v", err)
	}
	list, err := d.Steps()
	if err != nil {
		t.Fatalf("steps: %v", err)
	}
	if !list.Empty() || list.Drill == nil {
		t.Fatalf("expected empty list for new drill: %+v", list)
	}
	for _, title := range []string{"One", "Two"} {
		if _, err := d.CreateStep(ctx, domain.StepForm{Title: title}); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	list, _ = d.Steps()
	if list.Empty() || list.Steps[0].Title != "One" || list.Steps[1].Title != "Two" {
		t.Fatalf("steps out of order: %+v", list.Steps)
	}
}

func TestOpenEditorUnknownStep(t *testing.T) {
	d, _ := newDesigner(t)
	if _, _, err := d.OpenEditor("nope"); !errors.Is(err, store.ErrNoCurrentDrill) {
		t.Fatalf("err = %v, want ErrNoCurrentDrill", err)
	}
	if _, err := d.CreateDrill(context.Background(), validDrill(d)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := d.OpenEditor("nope"); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("err = %v, want ErrStepNotFound", err)
	}
	if err := d.DeleteStep(context.Background(), "nope"); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("delete err = %v, want ErrStepNotFound", err)
	}
}

func TestEditorRoundTrip(t *testing.T) {
	d, ev := newDesigner(t)
	ctx := context.Background()
	if _, err := d.CreateDrill(ctx, validDrill(d)); err != nil {
		t.Fatalf("create: %v", err)
	}
	st, err := d.CreateStep(ctx, domain.StepForm{Title: "Build up"})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	ed, loaded, err := d.OpenEditor(st.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if loaded.CanvasData != nil || ed.Len() != 0 {
		t.Fatalf("fresh step should have no layout")
	}
	for _, id := range []string{"player", "ball", "cone", "arrow-dash"} {
		if _, err := ed.PlaceByID(id, 30, 40); err != nil {
			t.Fatalf("place %s: %v", id, err)
		}
	}
	want := ed.Elements()
	if err := d.SaveEditor(ctx, ed, st.ID); err != nil {
		t.Fatalf("save: %v", err)
	}

	again, _, err := d.OpenEditor(st.ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if diff := cmp.Diff(want, again.Elements()); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if _, ok := again.Selected(); ok {
		t.Fatalf("reloaded editor must have no selection")
	}
	if ev.names[len(ev.names)-1] != "editor_saved" {
		t.Fatalf("events = %v", ev.names)
	}
}

func TestSaveEditorAfterStepDeleted(t *testing.T) {
	d, _ := newDesigner(t)
	ctx := context.Background()
	if _, err := d.CreateDrill(ctx, validDrill(d)); err != nil {
		t.Fatalf("create: %v", err)
	}
	st, _ := d.CreateStep(ctx, domain.StepForm{Title: "Gone"})
	ed, _, err := d.OpenEditor(st.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := d.DeleteStep(ctx, st.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := d.SaveEditor(ctx, ed, st.ID); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("err = %v, want ErrStepNotFound", err)
	}
}

func TestEditSavesOnSuccessOnly(t *testing.T) {
	d, _ := newDesigner(t)
	ctx := context.Background()
	if _, err := d.CreateDrill(ctx, validDrill(d)); err != nil {
		t.Fatalf("create: %v", err)
	}
	st, _ := d.CreateStep(ctx, domain.StepForm{Title: "Edit"})

	if _, err := d.Edit(ctx, st.ID, func(ed *editor.Editor) error {
		_, err := ed.PlaceByID("gk", 10, 10)
		return err
	}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	boom := errors.New("boom")
	if _, err := d.Edit(ctx, st.ID, func(ed *editor.Editor) error {
		ed.Clear()
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	saved, _ := d.Store().Step(st.ID)
	if n := len(saved.Elements()); n != 1 {
		t.Fatalf("saved elements = %d, want 1", n)
	}
}
