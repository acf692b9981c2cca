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

	"drilldesigner/internal/domain"
	"drilldesigner/internal/render"
	"drilldesigner/internal/vector"
)

// Pitch marking dimensions in metres.
const (
	CentreCircleRadius = 9.15
	SpotRadius         = 0.3
	PenaltyAreaWidth   = 40.3
	PenaltyAreaDepth   = 16.5
	GoalAreaWidth      = 18.3
	GoalAreaDepth      = 5.5
	PenaltySpotDist    = 11.0
)

var (
	GrassColor = vector.MustHex("#4ade80")
	LineColor  = vector.White
	LabelColor = vector.MustHex("#94a3b8")
)

// Options sizes the drawing canvas in pixels (points for PDF).
type Options struct {
	Width, Height float64 // zero means 600×900
	Padding       float64 // zero means 20
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 600
	}
	if o.Height <= 0 {
		o.Height = 900
	}
	if o.Padding <= 0 {
		o.Padding = 20
	}
	return o
}

// Scene is everything drawn for one step, in canvas coordinates.
type Scene struct {
	W, H       float64
	Background vector.Color
	Field      vector.Rect
	Pitch      []vector.Shape
	Labels     []vector.Text
	Elements   []render.Primitive
	Title      string
	Objective  string
}

// Build lays out the pitch of d and the saved elements of step. Element
// percentages are relative to the fitted field rectangle.
func Build(d *domain.Drill, step domain.DrillStep, opt Options) Scene {
	opt = opt.withDefaults()
	ft, fw, fl := d.Pitch()
	canvas := vector.R(0, 0, opt.Width, opt.Height)
	field := canvas.Fit(fw, fl, opt.Padding)
	sc := Scene{
		W: opt.Width, H: opt.Height,
		Background: vector.White,
		Field:      field,
		Title:      step.Title,
		Objective:  step.Objective,
	}
	sc.Pitch = pitchMarkings(field, ft, fw)
	sc.Labels = append(sc.Labels, vector.Text{
		At:      vector.Pt{X: field.X + field.W/2, Y: field.Y - opt.Padding/2},
		Size:    12,
		Content: fmt.Sprintf("%gm × %gm", fw, fl),
		Color:   LabelColor,
	})
	sc.Elements = render.Layout(step.Elements(), field)
	return sc
}

func pitchMarkings(r vector.Rect, ft domain.FieldType, fieldWidth float64) []vector.Shape {
	s := 1.0
	if fieldWidth > 0 {
		s = r.W / fieldWidth
	}
	line := vector.Line(LineColor, 2)
	cx, cy := r.X+r.W/2, r.Y+r.H/2
	circle := func(rad float64) vector.Path {
		return vector.EllipsePath(vector.R(cx-rad, cy-rad, 2*rad, 2*rad))
	}
	out := []vector.Shape{
		{Path: vector.RectPath(r), Fill: vector.Solid(GrassColor), Stroke: line},
		{Path: vector.OpenPath(vector.Pt{X: r.X, Y: cy}, vector.Pt{X: r.X + r.W, Y: cy}), Stroke: line},
		{Path: circle(CentreCircleRadius * s), Stroke: line},
		{Path: circle(SpotRadius * s), Fill: vector.Solid(LineColor)},
	}
	if ft == domain.Field7v7 {
		return out
	}
	box := func(w, d float64, top bool) vector.Shape {
		y := r.Y
		if !top {
			y = r.Y + r.H - d*s
		}
		return vector.Shape{Path: vector.RectPath(vector.R(cx-w*s/2, y, w*s, d*s)), Stroke: line}
	}
	spot := func(y float64) vector.Shape {
		rad := SpotRadius * s
		return vector.Shape{Path: vector.EllipsePath(vector.R(cx-rad, y-rad, 2*rad, 2*rad)), Fill: vector.Solid(LineColor)}
	}
	out = append(out,
		box(PenaltyAreaWidth, PenaltyAreaDepth, true),
		box(GoalAreaWidth, GoalAreaDepth, true),
		box(PenaltyAreaWidth, PenaltyAreaDepth, false),
		box(GoalAreaWidth, GoalAreaDepth, false),
		spot(r.Y+PenaltySpotDist*s),
		spot(r.Y+r.H-PenaltySpotDist*s),
	)
	return out
}

// asciiOnly reports whether the built-in fonts can draw s.
func asciiOnly(s string) bool {
	for _, r := range s {
		if r >= 0x80 {
			return false
		}
	}
	return true
}

// glyphStandIn is drawn instead of a text the built-in fonts cannot show,
// e.g. the ball emoji.
func glyphStandIn(t vector.Text) vector.Shape {
	rad := t.Size / 2
	return vector.Shape{
		Path:   vector.EllipsePath(vector.R(t.At.X-rad, t.At.Y-rad, 2*rad, 2*rad)),
		Fill:   vector.Solid(vector.White),
		Stroke: vector.Line(vector.Black, 1),
	}
}
