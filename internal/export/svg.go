/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"strings"

	"drilldesigner/internal/vector"
)

// SVG renders the scene as a standalone SVG document.
func SVG(sc Scene) ([]byte, error) {
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n", sc.W, sc.H, sc.W, sc.H)
	if sc.Title != "" {
		wf("  <title>%s</title>\n", escText(sc.Title))
	}
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", sc.W, sc.H, sc.Background.Hex())
	wf("  <g id=\"pitch\">\n")
	for _, s := range sc.Pitch {
		wf("    %s\n", svgShape(s))
	}
	for _, t := range sc.Labels {
		wf("    %s\n", svgText(t))
	}
	wf("  </g>\n")
	for _, p := range sc.Elements {
		wf("  <g class=\"%s\" data-instance-id=\"%d\">\n", p.Kind, p.InstanceID)
		for _, s := range p.Shapes {
			wf("    %s\n", svgShape(s))
		}
		for _, t := range p.Texts {
			wf("    %s\n", svgText(t))
		}
		wf("  </g>\n")
	}
	wf("</svg>\n")
	if werr != nil {
		return nil, fmt.Errorf("build svg: %w", werr)
	}
	return buf.Bytes(), nil
}

func svgPathData(p vector.Path) string {
	var b strings.Builder
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			fmt.Fprintf(&b, "M%s %s", num(c.Data[0]), num(c.Data[1]))
		case vector.LineTo:
			fmt.Fprintf(&b, "L%s %s", num(c.Data[0]), num(c.Data[1]))
		case vector.CubicTo:
			fmt.Fprintf(&b, "C%s %s %s %s %s %s", num(c.Data[0]), num(c.Data[1]), num(c.Data[2]), num(c.Data[3]), num(c.Data[4]), num(c.Data[5]))
		case vector.Close:
			b.WriteString("Z")
		}
	}
	return b.String()
}

func num(v float64) string { return fmt.Sprintf("%g", vector.Round(v, 3)) }

func svgShape(s vector.Shape) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<path d=\"%s\"", svgPathData(s.Path))
	if s.Fill.Enabled {
		fmt.Fprintf(&b, " fill=\"%s\"", s.Fill.Color.Hex())
		if s.Fill.Color.A < 255 {
			fmt.Fprintf(&b, " fill-opacity=\"%s\"", num(float64(s.Fill.Color.A)/255))
		}
	} else {
		b.WriteString(" fill=\"none\"")
	}
	if s.Stroke.Enabled && s.Stroke.Width > 0 {
		fmt.Fprintf(&b, " stroke=\"%s\" stroke-width=\"%s\"", s.Stroke.Color.Hex(), num(s.Stroke.Width))
		if s.Stroke.Color.A < 255 {
			fmt.Fprintf(&b, " stroke-opacity=\"%s\"", num(float64(s.Stroke.Color.A)/255))
		}
		if len(s.Stroke.Dash) > 0 {
			parts := make([]string, len(s.Stroke.Dash))
			for i, d := range s.Stroke.Dash {
				parts[i] = num(d)
			}
			fmt.Fprintf(&b, " stroke-dasharray=\"%s\"", strings.Join(parts, " "))
		}
	}
	b.WriteString("/>")
	return b.String()
}

func svgText(t vector.Text) string {
	weight := ""
	if t.Bold {
		weight = " font-weight=\"bold\""
	}
	return fmt.Sprintf("<text x=\"%s\" y=\"%s\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"%s\" text-anchor=\"middle\" dominant-baseline=\"central\" fill=\"%s\"%s>%s</text>",
		num(t.At.X), num(t.At.Y), num(t.Size), t.Color.Hex(), weight, escText(t.Content))
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		case '"':
			out = append(out, "&quot;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
