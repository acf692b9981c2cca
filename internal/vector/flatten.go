/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Polyline is a flattened subpath.
type Polyline struct {
	Pts    []Pt
	Closed bool
}

// Length is the total length including the closing segment.
func (pl Polyline) Length() float64 {
	var n float64
	for i := 1; i < len(pl.Pts); i++ {
		n += dist(pl.Pts[i-1], pl.Pts[i])
	}
	if pl.Closed && len(pl.Pts) > 1 {
		n += dist(pl.Pts[len(pl.Pts)-1], pl.Pts[0])
	}
	return n
}

func dist(a, b Pt) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Flatten converts p into polylines, subdividing cubics until each chord is
// within tol of the curve.
func (p Path) Flatten(tol float64) []Polyline {
	if tol <= 0 {
		tol = 0.25
	}
	var out []Polyline
	var cur *Polyline
	var last Pt
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo:
			out = append(out, Polyline{})
			cur = &out[len(out)-1]
			last = Pt{c.Data[0], c.Data[1]}
			cur.Pts = append(cur.Pts, last)
		case LineTo:
			if cur == nil {
				continue
			}
			last = Pt{c.Data[0], c.Data[1]}
			cur.Pts = append(cur.Pts, last)
		case CubicTo:
			if cur == nil {
				continue
			}
			p1, p2, p3 := Pt{c.Data[0], c.Data[1]}, Pt{c.Data[2], c.Data[3]}, Pt{c.Data[4], c.Data[5]}
			n := cubicSteps(last, p1, p2, p3, tol)
			for i := 1; i <= n; i++ {
				cur.Pts = append(cur.Pts, cubicAt(last, p1, p2, p3, float64(i)/float64(n)))
			}
			last = p3
		case Close:
			if cur != nil {
				cur.Closed = true
			}
		}
	}
	return out
}

func cubicAt(p0, p1, p2, p3 Pt, t float64) Pt {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return Pt{a*p0.X + b*p1.X + c*p2.X + d*p3.X, a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y}
}

// cubicSteps bounds the segment count from the control polygon's second differences.
func cubicSteps(p0, p1, p2, p3 Pt, tol float64) int {
	dd := math.Max(
		math.Hypot(p0.X-2*p1.X+p2.X, p0.Y-2*p1.Y+p2.Y),
		math.Hypot(p1.X-2*p2.X+p3.X, p1.Y-2*p2.Y+p3.Y),
	)
	n := int(math.Ceil(math.Sqrt(0.75 * dd / tol)))
	if n < 1 {
		n = 1
	}
	if n > 256 {
		n = 256
	}
	return n
}

// Dash splits pl into the "on" pieces of pattern (alternating on/off
// lengths). An empty or non-positive pattern returns pl unchanged.
func Dash(pl Polyline, pattern []float64) []Polyline {
	var total float64
	for _, v := range pattern {
		if v < 0 {
			return []Polyline{pl}
		}
		total += v
	}
	if len(pattern) == 0 || total <= 0 {
		return []Polyline{pl}
	}
	if len(pattern)%2 == 1 {
		pattern = append(append([]float64(nil), pattern...), pattern...)
	}
	pts := pl.Pts
	if pl.Closed && len(pts) > 1 {
		pts = append(append([]Pt(nil), pts...), pts[0])
	}
	var out []Polyline
	idx, left, on := 0, pattern[0], true
	var piece []Pt
	if on && len(pts) > 0 {
		piece = []Pt{pts[0]}
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		seg := dist(a, b)
		pos := 0.0
		for seg-pos > left {
			pos += left
			t := pos / seg
			q := Pt{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
			if on {
				piece = append(piece, q)
				out = append(out, Polyline{Pts: piece})
				piece = nil
			} else {
				piece = []Pt{q}
			}
			on = !on
			idx = (idx + 1) % len(pattern)
			left = pattern[idx]
		}
		left -= seg - pos
		if on {
			piece = append(piece, b)
		}
	}
	if on && len(piece) > 1 {
		out = append(out, Polyline{Pts: piece})
	}
	return out
}
