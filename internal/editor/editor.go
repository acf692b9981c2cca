/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the canvas editing model for one drill step: placing
// catalog assets, single selection, drag/resize/rotate gesture sessions,
// reset-to-default, and saving the layout back to the drill store.
//
// All positions are percentages of the pitch container, so the model is
// independent of the widget or exporter that displays it.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"drilldesigner/internal/catalog"
	"drilldesigner/internal/domain"
	applog "drilldesigner/internal/log"
	"drilldesigner/internal/vector"
)

// MinSize is the smallest width or height, in percent, a resize can produce.
const MinSize = 2.0

var (
	ErrUnknownAsset    = errors.New("editor: unknown asset")
	ErrElementNotFound = errors.New("editor: element not found")
	ErrNotSelected     = errors.New("editor: element is not selected")
	ErrSessionActive   = errors.New("editor: another gesture session is active")
	ErrSessionEnded    = errors.New("editor: gesture session has ended")
	ErrUnknownColor    = errors.New("editor: unknown colour")
	ErrStepMissing     = errors.New("editor: step not found in current drill")
)

// StepUpdater is the part of the drill store the editor writes to.
type StepUpdater interface {
	UpdateStep(ctx context.Context, id string, patch domain.StepPatch) (bool, error)
}

// Editor owns the element list of one step. It is not safe for concurrent use;
// callers drive it from a single UI or command goroutine.
type Editor struct {
	cat      *catalog.Catalog
	now      func() time.Time
	log      *slog.Logger
	elements []domain.PlacedElement
	selected int64
	hasSel   bool
	color    string
	lastID   int64
	session  *Session
	dirty    bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithCatalog replaces the built-in catalog.
func WithCatalog(c *catalog.Catalog) Option { return func(e *Editor) { e.cat = c } }

// WithClock replaces time.Now for instance id generation.
func WithClock(now func() time.Time) Option { return func(e *Editor) { e.now = now } }

// WithColor sets the initial palette colour; invalid values are ignored.
func WithColor(c string) Option {
	return func(e *Editor) {
		if v, ok := catalog.ResolveColor(c); ok {
			e.color = v
		}
	}
}

// New returns an empty editor with the default palette colour selected.
func New(opts ...Option) *Editor {
	e := &Editor{cat: catalog.Default(), now: time.Now, color: catalog.DefaultColor()}
	for _, o := range opts {
		o(e)
	}
	e.log = applog.WithComponent("editor")
	return e
}

// Catalog returns the catalog the editor stamps elements from.
func (e *Editor) Catalog() *catalog.Catalog { return e.cat }

// Elements returns a copy of the element list in paint order.
func (e *Editor) Elements() []domain.PlacedElement {
	return append([]domain.PlacedElement(nil), e.elements...)
}

// Len is the number of placed elements.
func (e *Editor) Len() int { return len(e.elements) }

// Element returns the element with the given instance id.
func (e *Editor) Element(id int64) (domain.PlacedElement, bool) {
	if i := e.index(id); i >= 0 {
		return e.elements[i], true
	}
	return domain.PlacedElement{}, false
}

func (e *Editor) index(id int64) int {
	for i := range e.elements {
		if e.elements[i].InstanceID == id {
			return i
		}
	}
	return -1
}

// Dirty reports whether the layout changed since the last Load or Save.
func (e *Editor) Dirty() bool { return e.dirty }

// Color is the palette colour applied to newly placed elements.
func (e *Editor) Color() string { return e.color }

// SetColor changes the palette selection. Elements already placed keep their colour.
func (e *Editor) SetColor(c string) error {
	v, ok := catalog.ResolveColor(c)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColor, c)
	}
	e.color = v
	return nil
}

func (e *Editor) nextID() int64 {
	id := e.now().UnixMilli()
	if id <= e.lastID {
		id = e.lastID + 1
	}
	e.lastID = id
	return id
}

// Place stamps tpl at the pointer position (px,py) inside c, appends it and selects it.
func (e *Editor) Place(tpl catalog.Template, c Container, px, py float64) domain.PlacedElement {
	x, y := c.Percent(px, py)
	return e.PlaceAt(tpl, x, y)
}

// PlaceCentered places tpl in the middle of the pitch, as a click in the picker does.
func (e *Editor) PlaceCentered(tpl catalog.Template) domain.PlacedElement {
	return e.PlaceAt(tpl, 50, 50)
}

// PlaceAt places tpl at percentage coordinates, clamped to [0,100].
func (e *Editor) PlaceAt(tpl catalog.Template, x, y float64) domain.PlacedElement {
	w, h := tpl.Size()
	el := domain.PlacedElement{
		InstanceID: e.nextID(),
		ID:         tpl.ID,
		Type:       tpl.Type,
		X:          vector.Clamp(x, 0, 100),
		Y:          vector.Clamp(y, 0, 100),
		Width:      w,
		Height:     h,
		Label:      tpl.Label,
		IsGK:       tpl.IsGK,
		Icon:       tpl.Icon,
		Variant:    tpl.Variant,
		Dashed:     tpl.Dashed,
	}
	if !tpl.FixedColor {
		el.Color = e.color
	}
	e.elements = append(e.elements, el)
	e.selected, e.hasSel = el.InstanceID, true
	e.dirty = true
	e.log.Debug("placed", slog.String("asset", tpl.ID), slog.Int64("instance", el.InstanceID),
		slog.Float64("x", el.X), slog.Float64("y", el.Y))
	return el
}

// PlaceByID looks up assetID in the catalog and places it at percentage coordinates.
func (e *Editor) PlaceByID(assetID string, x, y float64) (domain.PlacedElement, error) {
	tpl, ok := e.cat.ByID(assetID)
	if !ok {
		return domain.PlacedElement{}, fmt.Errorf("%w: %q", ErrUnknownAsset, assetID)
	}
	return e.PlaceAt(tpl, x, y), nil
}

// Selected returns the selected instance id, if any.
func (e *Editor) Selected() (int64, bool) { return e.selected, e.hasSel }

// Select makes id the only selected element. Unknown ids are ignored.
func (e *Editor) Select(id int64) bool {
	if e.index(id) < 0 {
		return false
	}
	e.selected, e.hasSel = id, true
	return true
}

// ClearSelection deselects, as a click on the pitch background does.
func (e *Editor) ClearSelection() { e.selected, e.hasSel = 0, false }

// Delete removes the element. Selection is cleared when it pointed at it.
func (e *Editor) Delete(id int64) bool {
	i := e.index(id)
	if i < 0 {
		return false
	}
	e.elements = append(e.elements[:i], e.elements[i+1:]...)
	if e.hasSel && e.selected == id {
		e.ClearSelection()
	}
	e.endSessionFor(id)
	e.dirty = true
	return true
}

// Clear removes every element and the selection.
func (e *Editor) Clear() {
	e.elements = nil
	e.ClearSelection()
	if e.session != nil {
		e.session.End()
	}
	e.dirty = true
}

// Reset restores the element's template size and zero rotation. Position and
// colour are kept. It reports false when the element or its template is unknown.
func (e *Editor) Reset(id int64) bool {
	i := e.index(id)
	if i < 0 {
		return false
	}
	tpl, ok := e.cat.Lookup(e.elements[i])
	if !ok {
		return false
	}
	w, h := tpl.Size()
	el := &e.elements[i]
	el.Width, el.Height, el.Rotation = w, h, 0
	e.dirty = true
	return true
}

// PlayerCount counts elements of type player.
func (e *Editor) PlayerCount() int {
	n := 0
	for _, el := range e.elements {
		if el.Type == domain.TypePlayer {
			n++
		}
	}
	return n
}

// Frame returns the element's pixel-space box inside c.
func Frame(el domain.PlacedElement, c Container) vector.Frame {
	return vector.Frame{
		Center:   c.Pixel(el.X, el.Y),
		W:        el.Width / 100 * c.Width,
		H:        el.Height / 100 * c.Height,
		Rotation: el.Rotation,
	}
}

// HitTest returns the topmost element whose rotated box contains the pointer.
func (e *Editor) HitTest(c Container, px, py float64) (int64, bool) {
	p := vector.Pt{X: px, Y: py}
	for i := len(e.elements) - 1; i >= 0; i-- {
		if Frame(e.elements[i], c).Contains(p) {
			return e.elements[i].InstanceID, true
		}
	}
	return 0, false
}

// Tap selects the element under the pointer, or clears the selection when the
// pointer is over the background.
func (e *Editor) Tap(c Container, px, py float64) (int64, bool) {
	id, ok := e.HitTest(c, px, py)
	if !ok {
		e.ClearSelection()
		return 0, false
	}
	e.Select(id)
	return id, true
}

// Load replaces the editor state with a copy of the step's saved layout.
func (e *Editor) Load(step domain.DrillStep) {
	if e.session != nil {
		e.session.End()
	}
	e.elements = append([]domain.PlacedElement(nil), step.Elements()...)
	e.ClearSelection()
	for _, el := range e.elements {
		if el.InstanceID > e.lastID {
			e.lastID = el.InstanceID
		}
	}
	e.dirty = false
}

// Snapshot returns the layout as it would be saved.
func (e *Editor) Snapshot() domain.CanvasData {
	els := e.Elements()
	if els == nil {
		els = []domain.PlacedElement{}
	}
	return domain.CanvasData{Elements: els}
}

// Save writes the current layout into the step's canvas data.
func (e *Editor) Save(ctx context.Context, s StepUpdater, stepID string) error {
	cd := e.Snapshot()
	found, err := s.UpdateStep(ctx, stepID, domain.StepPatch{CanvasData: &cd})
	if err != nil {
		return fmt.Errorf("save step %s: %w", stepID, err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrStepMissing, stepID)
	}
	e.dirty = false
	e.log.Info("saved", slog.String("step", stepID), slog.Int("elements", len(cd.Elements)))
	return nil
}
