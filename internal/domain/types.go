/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain holds the drill data model shared by the store, the editor
// and the exporters. JSON tags keep the document compatible with the
// camelCase layout used by earlier versions of the tool.
package domain

// ElementType is the coarse kind of a placed element; it selects the renderer.
type ElementType string

const (
	TypePlayer    ElementType = "player"
	TypeIcon      ElementType = "icon"
	TypeShape     ElementType = "shape"
	TypeEquipment ElementType = "equipment"
)

// Valid reports whether t is one of the known element types.
func (t ElementType) Valid() bool {
	switch t {
	case TypePlayer, TypeIcon, TypeShape, TypeEquipment:
		return true
	}
	return false
}

// PlacedElement is one catalog asset positioned on a step's pitch.
// X and Y are the centre as a percentage (0..100) of the pitch container;
// Width and Height are percentages of the container dimensions.
type PlacedElement struct {
	InstanceID int64       `json:"instanceId"`
	ID         string      `json:"id"`
	Type       ElementType `json:"type"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Rotation   float64     `json:"rotation"`
	Color      string      `json:"color,omitempty"`
	Label      string      `json:"label,omitempty"`
	IsGK       bool        `json:"isGK,omitempty"`
	Icon       string      `json:"icon,omitempty"`
	Variant    string      `json:"variant,omitempty"`
	Dashed     bool        `json:"dashed,omitempty"`
}

// CanvasData is the saved pitch layout of a step.
type CanvasData struct {
	Elements []PlacedElement `json:"elements"`
}

// Clone returns a deep copy; nil stays nil.
func (c *CanvasData) Clone() *CanvasData {
	if c == nil {
		return nil
	}
	out := &CanvasData{Elements: make([]PlacedElement, len(c.Elements))}
	copy(out.Elements, c.Elements)
	return out
}

// DrillStep is one stage of a drill. CanvasData stays nil until the editor
// has been saved for the step at least once.
type DrillStep struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Objective  string      `json:"objective,omitempty"`
	CanvasData *CanvasData `json:"canvasData,omitempty"`

	// Per-step field settings written by older versions; read and preserved only.
	FieldType   FieldType  `json:"fieldType,omitempty"`
	GroundSize  GroundSize `json:"groundSize,omitempty"`
	FieldWidth  float64    `json:"fieldWidth,omitempty"`
	FieldLength float64    `json:"fieldLength,omitempty"`
}

// Clone returns a deep copy of the step.
func (s DrillStep) Clone() DrillStep {
	s.CanvasData = s.CanvasData.Clone()
	return s
}

// Elements returns the saved layout, or nil when the step was never saved.
func (s DrillStep) Elements() []PlacedElement {
	if s.CanvasData == nil {
		return nil
	}
	return s.CanvasData.Elements
}

// Drill is a coaching session: metadata plus steps in creation order.
type Drill struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Date        string      `json:"date"`
	Objective   string      `json:"objective"`
	Category    Category    `json:"category,omitempty"`
	FieldType   FieldType   `json:"fieldType,omitempty"`
	GroundSize  GroundSize  `json:"groundSize,omitempty"`
	FieldWidth  float64     `json:"fieldWidth,omitempty"`
	FieldLength float64     `json:"fieldLength,omitempty"`
	Steps       []DrillStep `json:"steps"`
}

// Clone returns a deep copy of the drill including every step's layout.
func (d *Drill) Clone() *Drill {
	if d == nil {
		return nil
	}
	out := *d
	out.Steps = make([]DrillStep, len(d.Steps))
	for i, s := range d.Steps {
		out.Steps[i] = s.Clone()
	}
	return &out
}

// StepIndex returns the position of the step with the given id, or -1.
func (d *Drill) StepIndex(id string) int {
	if d == nil {
		return -1
	}
	for i := range d.Steps {
		if d.Steps[i].ID == id {
			return i
		}
	}
	return -1
}

// Pitch returns the field dimensions in metres, falling back to the preset
// for the drill's field type when explicit dimensions are missing.
func (d *Drill) Pitch() (FieldType, float64, float64) {
	ft := FieldFull
	if d != nil && d.FieldType != "" {
		ft = d.FieldType
	}
	p := PresetFor(ft)
	w, l := p.Width, p.Length
	if d != nil && d.FieldWidth > 0 {
		w = d.FieldWidth
	}
	if d != nil && d.FieldLength > 0 {
		l = d.FieldLength
	}
	return ft, w, l
}

// StepPatch is a partial step update; nil fields are left unchanged.
type StepPatch struct {
	Title      *string
	Objective  *string
	CanvasData *CanvasData
}

// Apply merges p into s. CanvasData is copied, not aliased.
func (p StepPatch) Apply(s *DrillStep) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Objective != nil {
		s.Objective = *p.Objective
	}
	if p.CanvasData != nil {
		s.CanvasData = p.CanvasData.Clone()
	}
}
