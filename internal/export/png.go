/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	"drilldesigner/internal/vector"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	xvector "golang.org/x/image/vector"
)

// PNGOptions controls raster output. Scale multiplies the scene size
// (zero means 1).
type PNGOptions struct {
	Scale float64
}

// Raster paints the scene into a new RGBA image.
func Raster(sc Scene, opt PNGOptions) *image.RGBA {
	s := opt.Scale
	if s <= 0 {
		s = 1
	}
	w, h := int(math.Ceil(sc.W*s)), int(math.Ceil(sc.H*s))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(toNRGBA(sc.Background)), image.Point{}, draw.Src)
	r := &rasterizer{img: img, z: xvector.NewRasterizer(w, h), m: vector.Scale(s, s), scale: s}
	for _, sh := range sc.Pitch {
		r.shape(sh)
	}
	for _, t := range sc.Labels {
		r.text(t)
	}
	for _, p := range sc.Elements {
		for _, sh := range p.Shapes {
			r.shape(sh)
		}
		for _, t := range p.Texts {
			r.text(t)
		}
	}
	return img
}

// PNG encodes the rasterised scene.
func PNG(w io.Writer, sc Scene, opt PNGOptions) error {
	if err := png.Encode(w, Raster(sc, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

type rasterizer struct {
	img   *image.RGBA
	z     *xvector.Rasterizer
	m     vector.Affine2D
	scale float64
}

func (r *rasterizer) reset() {
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
}

func (r *rasterizer) paint(c vector.Color) {
	r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(toNRGBA(c)), image.Point{})
}

func (r *rasterizer) shape(s vector.Shape) {
	pls := s.Path.Transform(r.m).Flatten(0.25)
	if s.Fill.Enabled && s.Fill.Color.A > 0 {
		r.reset()
		for _, pl := range pls {
			r.polygon(pl.Pts)
		}
		r.paint(s.Fill.Color)
	}
	if !s.Stroke.Enabled || s.Stroke.Width <= 0 || s.Stroke.Color.A == 0 {
		return
	}
	hw := s.Stroke.Width * r.scale / 2
	dash := make([]float64, len(s.Stroke.Dash))
	for i, d := range s.Stroke.Dash {
		dash[i] = d * r.scale
	}
	r.reset()
	for _, pl := range pls {
		for _, piece := range vector.Dash(pl, dash) {
			r.strokePolyline(piece, hw)
		}
	}
	r.paint(s.Stroke.Color)
}

func (r *rasterizer) polygon(pts []vector.Pt) {
	if len(pts) < 3 {
		return
	}
	r.z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.z.LineTo(float32(p.X), float32(p.Y))
	}
	r.z.ClosePath()
}

// strokePolyline adds one quad per segment plus a disc at every joint. All
// pieces are wound the same way so overlaps do not cancel.
func (r *rasterizer) strokePolyline(pl vector.Polyline, hw float64) {
	pts := pl.Pts
	if pl.Closed && len(pts) > 1 {
		pts = append(append([]vector.Pt(nil), pts...), pts[0])
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		r.polygon([]vector.Pt{{X: a.X + nx, Y: a.Y + ny}, {X: b.X + nx, Y: b.Y + ny}, {X: b.X - nx, Y: b.Y - ny}, {X: a.X - nx, Y: a.Y - ny}})
	}
	if hw < 0.75 {
		return
	}
	for i, p := range pts {
		if !pl.Closed && (i == 0 || i == len(pts)-1) {
			continue
		}
		r.polygon(disc(p, hw))
	}
}

func disc(c vector.Pt, rad float64) []vector.Pt {
	const n = 12
	out := make([]vector.Pt, n)
	for i := range out {
		// Same winding as the segment quads.
		a := -2 * math.Pi * float64(i) / n
		out[i] = vector.Pt{X: c.X + rad*math.Cos(a), Y: c.Y + rad*math.Sin(a)}
	}
	return out
}

// text draws with the fixed 7×13 face; sizes are approximate.
func (r *rasterizer) text(t vector.Text) {
	content := strings.ReplaceAll(t.Content, "×", "x")
	if content == "" {
		return
	}
	if !asciiOnly(content) {
		r.shape(glyphStandIn(t))
		return
	}
	at := r.m.Apply(t.At)
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: r.img, Src: image.NewUniform(toNRGBA(t.Color)), Face: face}
	w := d.MeasureString(content).Round()
	d.Dot = fixed.P(int(math.Round(at.X))-w/2, int(math.Round(at.Y))+face.Ascent/2)
	d.DrawString(content)
	if t.Bold {
		d.Dot = fixed.P(int(math.Round(at.X))-w/2+1, int(math.Round(at.Y))+face.Ascent/2)
		d.DrawString(content)
	}
}

func toNRGBA(c vector.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
