/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an 8-bit RGBA colour.
type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// ParseHex parses #rgb or #rrggbb. Invalid input returns ok=false.
func ParseHex(s string) (Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// MustHex is ParseHex for package-level constants.
func MustHex(s string) Color {
	c, ok := ParseHex(s)
	if !ok {
		panic("vector: bad colour " + s)
	}
	return c
}

// Hex renders #rrggbb (alpha ignored).
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// WithAlpha returns c with alpha a.
func (c Color) WithAlpha(a uint8) Color { c.A = a; return c }

type Fill struct {
	Color   Color
	Enabled bool
}

// Solid is an enabled fill of colour c.
func Solid(c Color) Fill { return Fill{Color: c, Enabled: true} }

type Stroke struct {
	Color   Color
	Width   float64
	Dash    []float64 // on/off lengths; nil is a solid line
	Enabled bool
}

// Line is an enabled solid stroke.
func Line(c Color, w float64) Stroke { return Stroke{Color: c, Width: w, Enabled: true} }

// Dashed returns s with the given dash pattern.
func (s Stroke) Dashed(pattern ...float64) Stroke {
	s.Dash = append([]float64(nil), pattern...)
	return s
}
