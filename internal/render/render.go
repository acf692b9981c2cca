/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render maps placed elements to drawable vector primitives. It is
// pure: the same element and canvas box always give the same shapes, and the
// exporters and the desktop canvas paint the result.
package render

import (
	"math"

	"drilldesigner/internal/domain"
	"drilldesigner/internal/vector"
)

// Kind names the visual form chosen for an element.
type Kind string

const (
	KindPlayer   Kind = "player"
	KindGlyph    Kind = "glyph"
	KindCone     Kind = "cone"
	KindMarker   Kind = "marker"
	KindPole     Kind = "pole"
	KindHurdle   Kind = "hurdle"
	KindMiniGoal Kind = "minigoal"
	KindLadder   Kind = "ladder"
	KindArrow    Kind = "arrow"
	KindSquare   Kind = "square"
	KindCircle   Kind = "circle"
	KindRect     Kind = "rect"
	KindCross    Kind = "cross"
)

// LadderRungs is the number of rungs drawn across a ladder.
const LadderRungs = 5

// Primitive is the drawable form of one element in canvas pixel space.
type Primitive struct {
	InstanceID int64
	Kind       Kind
	Frame      vector.Frame
	Shapes     []vector.Shape
	Texts      []vector.Text
}

var equipmentKinds = map[string]Kind{
	"cone":     KindCone,
	"marker":   KindMarker,
	"pole":     KindPole,
	"hurdle":   KindHurdle,
	"minigoal": KindMiniGoal,
	"ladder":   KindLadder,
}

var shapeKinds = map[string]Kind{
	"arrow":  KindArrow,
	"square": KindSquare,
	"circle": KindCircle,
	"rect":   KindRect,
	"zone":   KindRect,
	"cross":  KindCross,
}

// Classify picks the primitive kind from the element's type and variant.
// Unknown combinations report ok=false and are not drawn.
func Classify(el domain.PlacedElement) (Kind, bool) {
	var k Kind
	var ok bool
	switch el.Type {
	case domain.TypePlayer:
		k, ok = KindPlayer, true
	case domain.TypeIcon:
		k, ok = KindGlyph, true
	case domain.TypeEquipment:
		k, ok = equipmentKinds[el.Variant]
	case domain.TypeShape:
		k, ok = shapeKinds[el.Variant]
	}
	return k, ok
}

// FrameIn returns the element's rotated box inside box, where the element's
// percentages are relative to box.
func FrameIn(el domain.PlacedElement, box vector.Rect) vector.Frame {
	return vector.Frame{
		Center:   vector.Pt{X: box.X + el.X/100*box.W, Y: box.Y + el.Y/100*box.H},
		W:        el.Width / 100 * box.W,
		H:        el.Height / 100 * box.H,
		Rotation: el.Rotation,
	}
}

// ElementColor resolves the element colour, white when unset or unparsable.
func ElementColor(el domain.PlacedElement) vector.Color {
	if c, ok := vector.ParseHex(el.Color); ok {
		return c
	}
	return vector.White
}

// Element builds the primitive for el inside box.
func Element(el domain.PlacedElement, box vector.Rect) (Primitive, bool) {
	k, ok := Classify(el)
	if !ok {
		return Primitive{}, false
	}
	f := FrameIn(el, box)
	p := Primitive{InstanceID: el.InstanceID, Kind: k, Frame: f}
	b := builder{w: f.W, h: f.H, col: ElementColor(el), dashed: el.Dashed}
	switch k {
	case KindPlayer:
		b.player(el.IsGK)
	case KindGlyph:
		b.texts = append(b.texts, vector.Text{Size: math.Min(f.W, f.H) * 0.8, Content: el.Icon, Color: b.col})
	case KindCone:
		b.cone()
	case KindMarker:
		b.marker()
	case KindPole:
		b.pole()
	case KindHurdle:
		b.hurdle()
	case KindMiniGoal:
		b.miniGoal()
	case KindLadder:
		b.ladder()
	case KindArrow:
		b.arrow()
	case KindSquare, KindRect:
		b.outline(vector.RectPath(f.Local()))
	case KindCircle:
		b.outline(vector.EllipsePath(f.Local()))
	case KindCross:
		b.cross()
	}
	m := f.Transform()
	for _, s := range b.shapes {
		s.Path = s.Path.Transform(m)
		p.Shapes = append(p.Shapes, s)
	}
	for _, t := range b.texts {
		t.At = m.Apply(t.At)
		p.Texts = append(p.Texts, t)
	}
	return p, true
}

// Layout renders every drawable element in paint order.
func Layout(els []domain.PlacedElement, box vector.Rect) []Primitive {
	out := make([]Primitive, 0, len(els))
	for _, el := range els {
		if p, ok := Element(el, box); ok {
			out = append(out, p)
		}
	}
	return out
}

// builder works in frame-local coordinates: origin at the element centre,
// x in [-w/2, w/2], y in [-h/2, h/2].
type builder struct {
	w, h   float64
	col    vector.Color
	dashed bool
	shapes []vector.Shape
	texts  []vector.Text
}

func (b *builder) add(p vector.Path, f vector.Fill, s vector.Stroke) {
	b.shapes = append(b.shapes, vector.Shape{Path: p, Fill: f, Stroke: s})
}

// icon maps a point of a 24×24 icon grid into the box.
func (b *builder) icon(x, y float64) vector.Pt {
	return vector.Pt{X: (x/24 - 0.5) * b.w, Y: (y/24 - 0.5) * b.h}
}

// iconStroke scales a stroke width given on the 24×24 grid.
func (b *builder) iconStroke(w float64) float64 { return w * math.Min(b.w, b.h) / 24 }

func (b *builder) box() vector.Rect { return vector.Rect{X: -b.w / 2, Y: -b.h / 2, W: b.w, H: b.h} }

func (b *builder) player(gk bool) {
	b.add(vector.EllipsePath(b.box()), vector.Solid(b.col), vector.Line(vector.White, 2))
	d := math.Min(b.w, b.h)
	head := vector.Rect{X: -d * 0.12, Y: -d * 0.28, W: d * 0.24, H: d * 0.24}
	b.add(vector.EllipsePath(head), vector.Fill{}, vector.Line(vector.White, 1.5))
	var body vector.Path
	body.MoveTo(-d*0.22, d*0.26)
	body.CubicTo(-d*0.22, d*0.06, d*0.22, d*0.06, d*0.22, d*0.26)
	b.add(body, vector.Fill{}, vector.Line(vector.White, 1.5))
	if gk {
		b.texts = append(b.texts, vector.Text{At: vector.Pt{Y: b.h/2 + d*0.3}, Size: d * 0.4, Content: "GK", Color: vector.White, Bold: true})
	}
}

func (b *builder) cone() {
	b.add(vector.Polygon(b.icon(12, 2), b.icon(2, 22), b.icon(22, 22)), vector.Solid(b.col), vector.Stroke{})
}

func (b *builder) marker() {
	b.add(vector.EllipsePath(b.box()), vector.Solid(b.col), vector.Line(vector.Black.WithAlpha(51), 2))
}

func (b *builder) pole() {
	stick := vector.Rect{X: -b.w * 0.05, Y: -b.h / 2, W: b.w * 0.1, H: b.h}
	b.add(vector.RectPath(stick), vector.Solid(vector.White.WithAlpha(230)), vector.Stroke{})
	base := vector.Rect{X: -b.w / 2, Y: b.h/2 - b.h*0.2, W: b.w, H: b.h * 0.2}
	b.add(vector.EllipsePath(base), vector.Solid(b.col), vector.Stroke{})
}

func (b *builder) hurdle() {
	x, y := b.w/2, b.h/2
	b.add(vector.OpenPath(vector.Pt{X: -x, Y: y}, vector.Pt{X: -x, Y: -y}, vector.Pt{X: x, Y: -y}, vector.Pt{X: x, Y: y}),
		vector.Fill{}, vector.Line(b.col, 6))
}

func (b *builder) miniGoal() {
	r := b.box()
	b.add(vector.RectPath(r), vector.Solid(vector.Black.WithAlpha(26)), vector.Line(b.col, 4))
	// Net: diagonals every 10px, clipped to the frame by construction.
	net := vector.Line(b.col.WithAlpha(77), 1)
	for off := 10.0; off < r.W+r.H; off += 10 {
		x0, y0 := r.X+off, r.Y
		x1, y1 := r.X, r.Y+off
		if x0 > r.X+r.W {
			y0 += x0 - (r.X + r.W)
			x0 = r.X + r.W
		}
		if y1 > r.Y+r.H {
			x1 += y1 - (r.Y + r.H)
			y1 = r.Y + r.H
		}
		b.add(vector.OpenPath(vector.Pt{X: x0, Y: y0}, vector.Pt{X: x1, Y: y1}), vector.Fill{}, net)
	}
}

func (b *builder) ladder() {
	x, y := b.w/2, b.h/2
	rail := vector.Line(b.col, 3)
	b.add(vector.OpenPath(vector.Pt{X: -x, Y: -y}, vector.Pt{X: x, Y: -y}), vector.Fill{}, rail)
	b.add(vector.OpenPath(vector.Pt{X: -x, Y: y}, vector.Pt{X: x, Y: y}), vector.Fill{}, rail)
	for i := 0; i < LadderRungs; i++ {
		rx := -x + (float64(i)+0.5)*b.w/LadderRungs
		b.add(vector.OpenPath(vector.Pt{X: rx, Y: -y}, vector.Pt{X: rx, Y: y}), vector.Fill{}, rail)
	}
}

func (b *builder) arrow() {
	s := vector.Line(b.col, b.iconStroke(3))
	if b.dashed {
		s = vector.Line(b.col, b.iconStroke(1)).Dashed(b.iconStroke(4), b.iconStroke(4))
	}
	b.add(vector.OpenPath(b.icon(7, 17), b.icon(17, 7)), vector.Fill{}, s)
	b.add(vector.OpenPath(b.icon(7, 7), b.icon(17, 7), b.icon(17, 17)), vector.Fill{}, s)
}

func (b *builder) outline(p vector.Path) {
	s := vector.Line(b.col, 4)
	if b.dashed {
		s = s.Dashed(8, 6)
	}
	b.add(p, vector.Fill{}, s)
}

func (b *builder) cross() {
	s := vector.Line(b.col, b.iconStroke(4))
	b.add(vector.OpenPath(b.icon(18, 6), b.icon(6, 18)), vector.Fill{}, s)
	b.add(vector.OpenPath(b.icon(6, 6), b.icon(18, 18)), vector.Fill{}, s)
}
