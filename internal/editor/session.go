/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"math"
	"strings"

	"drilldesigner/internal/vector"
)

// Kind is the gesture a session performs.
type Kind int

const (
	KindDrag Kind = iota + 1
	KindResize
	KindRotate
)

func (k Kind) String() string {
	switch k {
	case KindDrag:
		return "drag"
	case KindResize:
		return "resize"
	case KindRotate:
		return "rotate"
	default:
		return "unknown"
	}
}

// Direction selects which axes a resize accumulates: each component is -1, 0
// or +1 and multiplies the pointer displacement on that axis.
type Direction struct{ X, Y int }

var (
	N  = Direction{0, -1}
	NE = Direction{1, -1}
	E  = Direction{1, 0}
	SE = Direction{1, 1}
	S  = Direction{0, 1}
	SW = Direction{-1, 1}
	W  = Direction{-1, 0}
	NW = Direction{-1, -1}
)

// ParseDirection accepts compass names such as "se" or "n".
func ParseDirection(s string) (Direction, error) {
	var d Direction
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return d, fmt.Errorf("empty resize direction")
	}
	for _, r := range s {
		switch r {
		case 'n':
			d.Y = -1
		case 's':
			d.Y = 1
		case 'e':
			d.X = 1
		case 'w':
			d.X = -1
		default:
			return Direction{}, fmt.Errorf("bad resize direction %q", s)
		}
	}
	return d, nil
}

type sessionState int

const (
	stateActive sessionState = iota
	stateEnded
)

// Session is one pointer gesture on one element, from pointer-down to
// pointer-up. At most one session per editor is active; Move applies the
// pointer position, End finishes it. Move after End fails with ErrSessionEnded.
type Session struct {
	ed     *Editor
	kind   Kind
	target int64
	c      Container
	state  sessionState

	start  vector.Pt
	startW float64
	startH float64
	dir    Direction
	anchor vector.Pt
}

// Kind reports the gesture kind.
func (s *Session) Kind() Kind { return s.kind }

// Target is the instance id being manipulated.
func (s *Session) Target() int64 { return s.target }

// Active reports whether the session still accepts moves.
func (s *Session) Active() bool { return s.state == stateActive }

// ActiveSession returns the running session, if any.
func (e *Editor) ActiveSession() (*Session, bool) {
	if e.session != nil && e.session.Active() {
		return e.session, true
	}
	return nil, false
}

func (e *Editor) begin(kind Kind, id int64, c Container, px, py float64) (*Session, error) {
	if cur, ok := e.ActiveSession(); ok {
		return nil, fmt.Errorf("%w: %s on %d", ErrSessionActive, cur.kind, cur.target)
	}
	i := e.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %d", ErrElementNotFound, id)
	}
	el := e.elements[i]
	s := &Session{
		ed:     e,
		kind:   kind,
		target: id,
		c:      c,
		start:  vector.Pt{X: px, Y: py},
		startW: el.Width,
		startH: el.Height,
		anchor: c.Pixel(el.X, el.Y),
	}
	e.session = s
	return s, nil
}

// BeginDrag starts repositioning the element and selects it.
func (e *Editor) BeginDrag(id int64, c Container, px, py float64) (*Session, error) {
	s, err := e.begin(KindDrag, id, c, px, py)
	if err != nil {
		return nil, err
	}
	e.Select(id)
	return s, nil
}

// BeginResize starts resizing the selected element from the handle in direction dir.
func (e *Editor) BeginResize(id int64, dir Direction, c Container, px, py float64) (*Session, error) {
	if err := e.requireSelected(id); err != nil {
		return nil, err
	}
	s, err := e.begin(KindResize, id, c, px, py)
	if err != nil {
		return nil, err
	}
	s.dir = dir
	return s, nil
}

// BeginRotate starts rotating the selected element about its centre. The
// centre is captured now and not re-read during the session.
func (e *Editor) BeginRotate(id int64, c Container, px, py float64) (*Session, error) {
	if err := e.requireSelected(id); err != nil {
		return nil, err
	}
	return e.begin(KindRotate, id, c, px, py)
}

func (e *Editor) requireSelected(id int64) error {
	if e.index(id) < 0 {
		return fmt.Errorf("%w: %d", ErrElementNotFound, id)
	}
	if !e.hasSel || e.selected != id {
		return fmt.Errorf("%w: %d", ErrNotSelected, id)
	}
	return nil
}

func (e *Editor) endSessionFor(id int64) {
	if s, ok := e.ActiveSession(); ok && s.target == id {
		s.End()
	}
}

// Move applies the pointer position to the target element.
func (s *Session) Move(px, py float64) error {
	if s.state != stateActive {
		return ErrSessionEnded
	}
	i := s.ed.index(s.target)
	if i < 0 {
		s.End()
		return fmt.Errorf("%w: %d", ErrElementNotFound, s.target)
	}
	el := &s.ed.elements[i]
	switch s.kind {
	case KindDrag:
		el.X, el.Y = s.c.Percent(px, py)
	case KindResize:
		dx, dy := s.c.Delta(px-s.start.X, py-s.start.Y)
		if s.dir.X != 0 {
			el.Width = math.Max(MinSize, s.startW+float64(s.dir.X)*dx)
		}
		if s.dir.Y != 0 {
			el.Height = math.Max(MinSize, s.startH+float64(s.dir.Y)*dy)
		}
	case KindRotate:
		if a := PointerAngle(s.anchor, vector.Pt{X: px, Y: py}); !math.IsNaN(a) {
			el.Rotation = a
		}
	}
	s.ed.dirty = true
	return nil
}

// End finishes the session. Calling it again has no effect.
func (s *Session) End() {
	if s.state == stateEnded {
		return
	}
	s.state = stateEnded
	if s.ed.session == s {
		s.ed.session = nil
	}
}

// PointerAngle is the rotation, in degrees, that points an element's "up"
// handle from centre towards p: straight up is 0, right is 90.
func PointerAngle(center, p vector.Pt) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X)*180/math.Pi + 90
}
