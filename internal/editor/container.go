/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"math"

	"drilldesigner/internal/vector"
)

// Container is the on-screen bounding box of the pitch, in pixels.
// Element positions and sizes are stored as percentages of it.
type Container struct {
	Left, Top     float64
	Width, Height float64
}

// Box is a convenience constructor for a container at the origin.
func Box(w, h float64) Container { return Container{Width: w, Height: h} }

// Rect returns the container as a vector rect.
func (c Container) Rect() vector.Rect { return vector.R(c.Left, c.Top, c.Width, c.Height) }

// Percent maps a pointer position to container percentages, clamped to [0,100].
// A degenerate container maps everything to 0.
func (c Container) Percent(px, py float64) (x, y float64) {
	return pct(px-c.Left, c.Width), pct(py-c.Top, c.Height)
}

// Delta converts a pixel displacement to percentage deltas without clamping.
// Non-finite displacements count as no movement.
func (c Container) Delta(dx, dy float64) (float64, float64) {
	return finite(ratio(dx, c.Width)), finite(ratio(dy, c.Height))
}

// Pixel maps container percentages back to a pointer position.
func (c Container) Pixel(x, y float64) vector.Pt {
	return vector.Pt{X: c.Left + x/100*c.Width, Y: c.Top + y/100*c.Height}
}

// ratio keeps the sign of an infinite offset so clamping sends it to an edge.
func ratio(d, size float64) float64 {
	if size <= 0 || math.IsNaN(d) {
		return 0
	}
	return d / size * 100
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func pct(d, size float64) float64 {
	return vector.Clamp(ratio(d, size), 0, 100)
}
