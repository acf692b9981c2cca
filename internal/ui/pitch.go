/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"

	"drilldesigner/internal/domain"
	"drilldesigner/internal/editor"
	"drilldesigner/internal/export"
	"drilldesigner/internal/vector"
)

// Handle geometry in screen units.
const (
	gripSize     = 10.0
	rotateOffset = 24.0
)

type gripKind int

const (
	gripResize gripKind = iota
	gripRotate
)

// grip is one manipulation handle drawn around the selected element.
type grip struct {
	kind gripKind
	dir  editor.Direction
	at   vector.Pt
}

func (g grip) rect() vector.Rect {
	return vector.R(g.at.X-gripSize/2, g.at.Y-gripSize/2, gripSize, gripSize)
}

// pitchLayout is the drawn pitch for a widget of a given size: the scene
// and the container element percentages refer to.
type pitchLayout struct {
	scene export.Scene
	box   editor.Container
}

func layoutPitch(d *domain.Drill, st domain.DrillStep, els []domain.PlacedElement, w, h float64) pitchLayout {
	st.CanvasData = &domain.CanvasData{Elements: els}
	sc := export.Build(d, st, export.Options{Width: w, Height: h})
	f := sc.Field
	return pitchLayout{scene: sc, box: editor.Container{Left: f.X, Top: f.Y, Width: f.W, Height: f.H}}
}

// grips returns the eight resize handles on the rotated frame plus the
// rotation handle above its top edge.
func grips(el domain.PlacedElement, c editor.Container) []grip {
	f := editor.Frame(el, c)
	dirs := []editor.Direction{editor.NW, editor.N, editor.NE, editor.E, editor.SE, editor.S, editor.SW, editor.W}
	out := make([]grip, 0, len(dirs)+1)
	for _, d := range dirs {
		out = append(out, grip{kind: gripResize, dir: d, at: f.Corner(float64(d.X), float64(d.Y))})
	}
	top := f.Transform().Apply(vector.Pt{Y: -f.H/2 - rotateOffset})
	return append(out, grip{kind: gripRotate, at: top})
}

// gripAt returns the topmost grip under p; the rotation handle wins ties.
func gripAt(gs []grip, p vector.Pt) (grip, bool) {
	for i := len(gs) - 1; i >= 0; i-- {
		if gs[i].rect().Inset(-2, -2).Contains(p) {
			return gs[i], true
		}
	}
	return grip{}, false
}

// gestures turns raw pointer drags into editor sessions.
type gestures struct {
	ed   *editor.Editor
	sess *editor.Session
}

// start opens a session for a drag beginning at p. It reports false when
// the pointer is over the background.
func (g *gestures) start(c editor.Container, p vector.Pt) (bool, error) {
	if id, ok := g.ed.Selected(); ok {
		if el, ok := g.ed.Element(id); ok {
			if gr, ok := gripAt(grips(el, c), p); ok {
				var err error
				if gr.kind == gripRotate {
					g.sess, err = g.ed.BeginRotate(id, c, p.X, p.Y)
				} else {
					g.sess, err = g.ed.BeginResize(id, gr.dir, c, p.X, p.Y)
				}
				return err == nil, err
			}
		}
	}
	id, ok := g.ed.HitTest(c, p.X, p.Y)
	if !ok {
		return false, nil
	}
	s, err := g.ed.BeginDrag(id, c, p.X, p.Y)
	if err != nil {
		return false, err
	}
	g.sess = s
	return true, nil
}

func (g *gestures) active() bool { return g.sess != nil && g.sess.Active() }

func (g *gestures) move(p vector.Pt) error {
	if g.sess == nil {
		return nil
	}
	return g.sess.Move(p.X, p.Y)
}

func (g *gestures) end() {
	if g.sess != nil {
		g.sess.End()
		g.sess = nil
	}
}

// stepLabel is the text of one row in the step list.
func stepLabel(i int, st domain.DrillStep) string {
	if st.CanvasData == nil {
		return fmt.Sprintf("%d. %s", i+1, st.Title)
	}
	return fmt.Sprintf("%d. %s (%d items)", i+1, st.Title, len(st.Elements()))
}
