/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package designer implements the page flows of the drill designer on top of
// the drill store: create a drill, add steps, list them, and open or save the
// canvas editor of one step.
package designer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"drilldesigner/internal/domain"
	"drilldesigner/internal/editor"
	applog "drilldesigner/internal/log"
	"drilldesigner/internal/store"
	"drilldesigner/internal/telemetry"
)

// ErrStepNotFound is returned when an editor route names a step that is not
// part of the current drill.
var ErrStepNotFound = errors.New("designer: step not found")

// EmptyStepsMessage is shown by step list presenters for a drill without steps.
const EmptyStepsMessage = "No steps added yet"

// Events receives anonymous usage events. *telemetry.Client implements it.
type Events interface {
	Event(name string, props map[string]any)
}

type Designer struct {
	store      *store.Store
	events     Events
	now        func() time.Time
	editorOpts []editor.Option
	log        *slog.Logger
}

type Option func(*Designer)

// WithEvents replaces the package telemetry client.
func WithEvents(ev Events) Option { return func(d *Designer) { d.events = ev } }

// WithClock sets the clock used for default dates.
func WithClock(now func() time.Time) Option { return func(d *Designer) { d.now = now } }

// WithEditorOptions is applied to every editor OpenEditor returns.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(d *Designer) { d.editorOpts = append(d.editorOpts, opts...) }
}

func New(s *store.Store, opts ...Option) *Designer {
	d := &Designer{store: s, now: time.Now}
	for _, o := range opts {
		o(d)
	}
	if d.events == nil {
		d.events = telemetry.Default()
	}
	d.log = applog.WithComponent("designer")
	return d
}

// Store returns the underlying drill store.
func (d *Designer) Store() *store.Store { return d.store }

// NewDrillForm returns the create-drill form with today's date filled in.
func (d *Designer) NewDrillForm() domain.DrillForm {
	return domain.DrillForm{Date: domain.Today(d.now()), FieldType: domain.FieldFull, GroundSize: domain.GroundWhole}
}

// CreateDrill validates form and makes the new drill current, replacing any
// previous one. Validation failures are domain.ValidationErrors.
func (d *Designer) CreateDrill(ctx context.Context, form domain.DrillForm) (*domain.Drill, error) {
	dr, err := form.Build()
	if err != nil {
		return nil, err
	}
	if err := d.store.SetCurrentDrill(ctx, dr); err != nil {
		return nil, fmt.Errorf("create drill: %w", err)
	}
	d.log.Info("drill created", slog.String("drill", dr.ID), slog.String("field", string(dr.FieldType)))
	d.events.Event(telemetry.EventDrillCreated, map[string]any{
		"field":    string(dr.FieldType),
		"category": string(dr.Category),
	})
	return dr, nil
}

// CreateStep validates form and appends the step to the current drill.
// Validation runs first, so an invalid form reports ValidationErrors even
// without a drill.
func (d *Designer) CreateStep(ctx context.Context, form domain.StepForm) (domain.DrillStep, error) {
	st, err := form.Build()
	if err != nil {
		return domain.DrillStep{}, err
	}
	ok, err := d.store.AddStep(ctx, st)
	if err != nil {
		return domain.DrillStep{}, fmt.Errorf("create step: %w", err)
	}
	if !ok {
		return domain.DrillStep{}, store.ErrNoCurrentDrill
	}
	n := 0
	if cur := d.store.Current(); cur != nil {
		n = len(cur.Steps)
	}
	d.log.Info("step created", slog.String("step", st.ID), slog.Int("steps", n))
	d.events.Event(telemetry.EventStepCreated, map[string]any{"steps": n})
	return st, nil
}

// StepList is what the step list page renders.
type StepList struct {
	Drill *domain.Drill
	Steps []domain.DrillStep
}

// Empty reports whether the empty-state message should be shown.
func (l StepList) Empty() bool { return len(l.Steps) == 0 }

// Steps returns the current drill and its steps, or store.ErrNoCurrentDrill
// so callers can send the user back to the start page.
func (d *Designer) Steps() (StepList, error) {
	cur := d.store.Current()
	if cur == nil {
		return StepList{}, store.ErrNoCurrentDrill
	}
	return StepList{Drill: cur, Steps: cur.Steps}, nil
}

// DeleteStep removes a step from the current drill.
func (d *Designer) DeleteStep(ctx context.Context, stepID string) error {
	if d.store.Current() == nil {
		return store.ErrNoCurrentDrill
	}
	ok, err := d.store.DeleteStep(ctx, stepID)
	if err != nil {
		return fmt.Errorf("delete step %s: %w", stepID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
	}
	return nil
}

// OpenEditor returns an editor loaded with the step's saved layout.
func (d *Designer) OpenEditor(stepID string) (*editor.Editor, domain.DrillStep, error) {
	if d.store.Current() == nil {
		return nil, domain.DrillStep{}, store.ErrNoCurrentDrill
	}
	st, ok := d.store.Step(stepID)
	if !ok {
		return nil, domain.DrillStep{}, fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
	}
	ed := editor.New(d.editorOpts...)
	ed.Load(st)
	return ed, st, nil
}

// SaveEditor stores the editor's layout as the step's canvas data.
func (d *Designer) SaveEditor(ctx context.Context, ed *editor.Editor, stepID string) error {
	if err := ed.Save(ctx, d.store, stepID); err != nil {
		if errors.Is(err, editor.ErrStepMissing) {
			if d.store.Current() == nil {
				return store.ErrNoCurrentDrill
			}
			return fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
		}
		return err
	}
	d.events.Event(telemetry.EventEditorSaved, map[string]any{
		"elements": ed.Len(),
		"players":  ed.PlayerCount(),
	})
	return nil
}

// Edit opens the step's editor, runs fn on it and saves the result. It is
// the one-shot path the CLI uses for single element commands.
func (d *Designer) Edit(ctx context.Context, stepID string, fn func(*editor.Editor) error) (*editor.Editor, error) {
	ed, _, err := d.OpenEditor(stepID)
	if err != nil {
		return nil, err
	}
	if err := fn(ed); err != nil {
		return ed, err
	}
	if err := d.SaveEditor(ctx, ed, stepID); err != nil {
		return ed, err
	}
	return ed, nil
}
