/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package vector holds the 2D geometry shared by the editor, the renderer and
// the exporters: points, rectangles, affine transforms and rotated frames.
package vector

import "math"

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

// Rect is an axis-aligned rectangle defined by its min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt    { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt    { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Center() Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset shrinks r by dx,dy on every side (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the smallest rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX, minY := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	maxX, maxY := math.Max(r.X+r.W, o.X+o.W), math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Fit returns the largest rect with aspect w:h centred inside r after
// removing pad on every side.
func (r Rect) Fit(w, h, pad float64) Rect {
	inner := r.Inset(pad, pad)
	if w <= 0 || h <= 0 || inner.W <= 0 || inner.H <= 0 {
		return Rect{X: inner.X, Y: inner.Y}
	}
	s := math.Min(inner.W/w, inner.H/h)
	fw, fh := w*s, h*s
	return Rect{X: inner.X + (inner.W-fw)/2, Y: inner.Y + (inner.H-fh)/2, W: fw, H: fh}
}

// Affine2D is the matrix
//
//	| a c e |
//	| b d f |
//	| 0 0 1 |
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

// Mul returns m·n (n is applied first).
func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{X: m.A*p.X + m.C*p.Y + m.E, Y: m.B*p.X + m.D*p.Y + m.F}
}

// Invert returns the inverse transform; a singular matrix yields Identity.
func (m Affine2D) Invert() Affine2D {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Identity
	}
	inv := 1 / det
	return Affine2D{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }

// Rotate rotates by rad radians; with y pointing down this is clockwise on screen.
func Rotate(rad float64) Affine2D {
	c, s := math.Cos(rad), math.Sin(rad)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// RotateDeg is Rotate for degrees.
func RotateDeg(deg float64) Affine2D { return Rotate(deg * math.Pi / 180) }

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Round rounds v to n decimal places.
func Round(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// Frame is a box of size W×H centred on Center and rotated by Rotation
// degrees about its centre.
type Frame struct {
	Center   Pt
	W, H     float64
	Rotation float64
}

// Transform maps frame-local coordinates (origin at the centre) to the parent space.
func (f Frame) Transform() Affine2D {
	return Translate(f.Center.X, f.Center.Y).Mul(RotateDeg(f.Rotation))
}

// Local returns the unrotated box in frame-local coordinates.
func (f Frame) Local() Rect { return Rect{X: -f.W / 2, Y: -f.H / 2, W: f.W, H: f.H} }

// Contains reports whether p (parent space) lies inside the rotated box.
func (f Frame) Contains(p Pt) bool {
	return f.Local().Contains(f.Transform().Invert().Apply(p))
}

// Corner returns the parent-space position of the local point (sx·W/2, sy·H/2);
// sx and sy are usually -1, 0 or 1.
func (f Frame) Corner(sx, sy float64) Pt {
	return f.Transform().Apply(Pt{sx * f.W / 2, sy * f.H / 2})
}

// Bounds returns the axis-aligned bounding box of the rotated frame.
func (f Frame) Bounds() Rect {
	var b Rect
	for i, c := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		p := f.Corner(c[0], c[1])
		if i == 0 {
			b = Rect{X: p.X, Y: p.Y}
			continue
		}
		b = b.Union(Rect{X: p.X, Y: p.Y})
	}
	return b
}
