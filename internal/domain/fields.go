/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// FieldType selects the pitch preset.
type FieldType string

const (
	FieldFull FieldType = "full"
	FieldHalf FieldType = "half"
	Field7v7  FieldType = "7v7"
)

// GroundSize is how much of the pitch the drill uses.
type GroundSize string

const (
	GroundWhole GroundSize = "whole"
	GroundHalf  GroundSize = "half"
)

// FieldPreset holds default dimensions in metres.
type FieldPreset struct {
	Type   FieldType
	Label  string
	Width  float64
	Length float64
}

var presets = []FieldPreset{
	{Type: FieldFull, Label: "Full Field", Width: 68, Length: 105},
	{Type: FieldHalf, Label: "Half Field", Width: 68, Length: 52.5},
	{Type: Field7v7, Label: "7v7 Field", Width: 50, Length: 70},
}

// Presets lists the field presets in display order.
func Presets() []FieldPreset { return append([]FieldPreset(nil), presets...) }

// PresetFor returns the preset for t, or the full field for unknown types.
func PresetFor(t FieldType) FieldPreset {
	for _, p := range presets {
		if p.Type == t {
			return p
		}
	}
	return presets[0]
}

// Valid reports whether t names a preset.
func (t FieldType) Valid() bool {
	for _, p := range presets {
		if p.Type == t {
			return true
		}
	}
	return false
}

// Valid reports whether g is whole or half.
func (g GroundSize) Valid() bool { return g == GroundWhole || g == GroundHalf }

// Category groups drills on the start screen.
type Category string

const (
	CategoryAttacking   Category = "attacking"
	CategoryDefence     Category = "defence"
	CategoryOverlapping Category = "overlapping"
)

// CategoryInfo is the display data for a category.
type CategoryInfo struct {
	ID          Category `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

var categories = []CategoryInfo{
	{ID: CategoryAttacking, Title: "Attacking", Description: "Offensive drills and strategies"},
	{ID: CategoryDefence, Title: "Defence", Description: "Defensive formations and tactics"},
	{ID: CategoryOverlapping, Title: "Overlapping", Description: "Overlapping runs and movements"},
}

// Categories lists the start-screen categories.
func Categories() []CategoryInfo { return append([]CategoryInfo(nil), categories...) }

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, ci := range categories {
		if ci.ID == c {
			return true
		}
	}
	return false
}
