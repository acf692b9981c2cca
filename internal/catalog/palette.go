/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import "strings"

// Color is a palette swatch.
type Color struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Label string `json:"label"`
}

var palette = []Color{
	{ID: "green", Value: "#10b981", Label: "Green"},
	{ID: "blue", Value: "#3b82f6", Label: "Blue"},
	{ID: "yellow", Value: "#fbbf24", Label: "Yellow"},
	{ID: "red", Value: "#ef4444", Label: "Red"},
	{ID: "black", Value: "#000000", Label: "Black"},
	{ID: "white", Value: "#ffffff", Label: "White"},
}

// Palette returns the swatches in display order; the first is the default.
func Palette() []Color { return append([]Color(nil), palette...) }

// DefaultColor is the swatch selected when the editor opens.
func DefaultColor() string { return palette[0].Value }

// ResolveColor accepts a swatch id or a #rrggbb value and returns the hex value.
func ResolveColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range palette {
		if c.ID == s || c.Value == s {
			return c.Value, true
		}
	}
	if len(s) == 7 && s[0] == '#' && strings.Trim(s[1:], "0123456789abcdef") == "" {
		return s, true
	}
	return "", false
}
