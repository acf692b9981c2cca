/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog is the static, read-only table of placeable assets and the
// colour palette offered by the editor.
package catalog

import (
	"drilldesigner/internal/domain"
)

// Tab groups templates in the asset picker.
type Tab string

const (
	TabPlayers   Tab = "players"
	TabEquipment Tab = "equipment"
	TabShapes    Tab = "shapes"
)

// DefaultSize is used when a template does not declare a width or height.
const DefaultSize = 5.0

// Template is an immutable catalog entry used to stamp new elements and to
// restore defaults on reset.
type Template struct {
	ID         string             `json:"id"`
	Tab        Tab                `json:"tab"`
	Type       domain.ElementType `json:"type"`
	Label      string             `json:"label"`
	Icon       string             `json:"icon,omitempty"`
	Variant    string             `json:"variant,omitempty"`
	Dashed     bool               `json:"dashed,omitempty"`
	IsGK       bool               `json:"isGK,omitempty"`
	FixedColor bool               `json:"fixedColor,omitempty"`
	Width      float64            `json:"width"`
	Height     float64            `json:"height"`
}

// Size returns the template's default size with the catalog fallback applied.
func (t Template) Size() (w, h float64) {
	w, h = t.Width, t.Height
	if w <= 0 {
		w = DefaultSize
	}
	if h <= 0 {
		h = DefaultSize
	}
	return w, h
}

var templates = []Template{
	{ID: "player", Tab: TabPlayers, Type: domain.TypePlayer, Label: "Player", Width: 5, Height: 5},
	{ID: "gk", Tab: TabPlayers, Type: domain.TypePlayer, Label: "GK", IsGK: true, Width: 5, Height: 5},

	{ID: "ball", Tab: TabEquipment, Type: domain.TypeIcon, Icon: "⚽", Label: "Ball", FixedColor: true, Width: 4, Height: 4},
	{ID: "cone", Tab: TabEquipment, Type: domain.TypeEquipment, Variant: "cone", Label: "Cone", Width: 4, Height: 4},
	{ID: "marker", Tab: TabEquipment, Type: domain.TypeEquipment, Variant: "marker", Label: "Marker", Width: 4, Height: 4},
	{ID: "pole", Tab: TabEquipment, Type: domain.TypeEquipment, Variant: "pole", Label: "Pole", Width: 2, Height: 4},
	{ID: "hurdle", Tab: TabEquipment, Type: domain.TypeEquipment, Variant: "hurdle", Label: "Hurdle", Width: 6, Height: 4},
	{ID: "minigoal", Tab: TabEquipment, Type: domain.TypeEquipment, Variant: "minigoal", Label: "Goal", Width: 10, Height: 6},
	{ID: "ladder", Tab: TabEquipment, Type: domain.TypeEquipment, Variant: "ladder", Label: "Ladder", Width: 15, Height: 5},

	{ID: "arrow", Tab: TabShapes, Type: domain.TypeShape, Variant: "arrow", Label: "Arrow", Width: 10, Height: 10},
	{ID: "arrow-dash", Tab: TabShapes, Type: domain.TypeShape, Variant: "arrow", Label: "Arr Dot", Dashed: true, Width: 10, Height: 10},
	{ID: "square", Tab: TabShapes, Type: domain.TypeShape, Variant: "square", Label: "Square", Width: 10, Height: 10},
	{ID: "square-dash", Tab: TabShapes, Type: domain.TypeShape, Variant: "square", Label: "Sq Dot", Dashed: true, Width: 10, Height: 10},
	{ID: "circle", Tab: TabShapes, Type: domain.TypeShape, Variant: "circle", Label: "Circle", Width: 10, Height: 10},
	{ID: "circle-dash", Tab: TabShapes, Type: domain.TypeShape, Variant: "circle", Label: "Cir Dot", Dashed: true, Width: 10, Height: 10},
	{ID: "rect", Tab: TabShapes, Type: domain.TypeShape, Variant: "rect", Label: "Rect", Width: 15, Height: 8},
	{ID: "rect-dash", Tab: TabShapes, Type: domain.TypeShape, Variant: "rect", Label: "Rec Dot", Dashed: true, Width: 15, Height: 8},
	{ID: "cross", Tab: TabShapes, Type: domain.TypeShape, Variant: "cross", Label: "X", Width: 8, Height: 8},
}

type typeVariant struct {
	typ     domain.ElementType
	variant string
}

// Catalog indexes templates by id and, as a fallback, by (type, variant).
// The zero value is not usable; call New or Default.
type Catalog struct {
	list      []Template
	byID      map[string]int
	byVariant map[typeVariant]int
}

// New builds a catalog over ts. When several templates share a (type, variant)
// pair the first one wins the secondary index, so "arrow" rather than
// "arrow-dash" is the generic arrow.
func New(ts []Template) *Catalog {
	c := &Catalog{
		list:      append([]Template(nil), ts...),
		byID:      make(map[string]int, len(ts)),
		byVariant: make(map[typeVariant]int, len(ts)),
	}
	for i, t := range c.list {
		if _, dup := c.byID[t.ID]; !dup {
			c.byID[t.ID] = i
		}
		k := typeVariant{t.Type, t.Variant}
		if _, dup := c.byVariant[k]; !dup {
			c.byVariant[k] = i
		}
	}
	return c
}

var std = New(templates)

// Default returns the built-in catalog.
func Default() *Catalog { return std }

// All returns every template in picker order.
func (c *Catalog) All() []Template { return append([]Template(nil), c.list...) }

// Tab returns the templates shown under tab.
func (c *Catalog) Tab(tab Tab) []Template {
	var out []Template
	for _, t := range c.list {
		if t.Tab == tab {
			out = append(out, t)
		}
	}
	return out
}

// ByID looks up a template by its catalog id.
func (c *Catalog) ByID(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.list[i], true
}

// Lookup finds the template an element was stamped from: first by id, then
// by (type, variant).
func (c *Catalog) Lookup(el domain.PlacedElement) (Template, bool) {
	if t, ok := c.ByID(el.ID); ok {
		return t, true
	}
	i, ok := c.byVariant[typeVariant{el.Type, el.Variant}]
	if !ok {
		return Template{}, false
	}
	return c.list[i], true
}

// Tabs lists the picker tabs in display order.
func Tabs() []Tab { return []Tab{TabPlayers, TabEquipment, TabShapes} }
