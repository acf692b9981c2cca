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
	"io"
	"strings"

	"drilldesigner/internal/domain"
	"drilldesigner/internal/vector"

	"github.com/jung-kurt/gofpdf"
)

// HeaderHeight is the band above the pitch holding the step title and objective.
const HeaderHeight = 64.0

// PDFOptions controls PDF output. Units are points; the scene is drawn 1:1.
type PDFOptions struct {
	Options
	Steps []int // zero-based; empty means all steps
}

// PDF writes one page per step: title and objective above the step diagram.
func PDF(w io.Writer, d *domain.Drill, opt PDFOptions) error {
	if d == nil {
		return fmt.Errorf("drill is nil")
	}
	o := opt.Options.withDefaults()
	size := gofpdf.SizeType{Wd: o.Width, Ht: o.Height + HeaderHeight}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetTitle(d.Title, true)
	pdf.SetSubject(d.Objective, true)
	pdf.SetCreator("Drill Designer", false)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, i := range stepIndexes(len(d.Steps), opt.Steps) {
		if i < 0 || i >= len(d.Steps) {
			continue
		}
		st := d.Steps[i]
		sc := Build(d, st, o)
		pdf.AddPageFormat("P", size)

		pdf.SetTextColor(15, 23, 42)
		pdf.SetFont("Helvetica", "B", 16)
		pdf.Text(o.Padding, 26, tr(fmt.Sprintf("%d. %s", i+1, st.Title)))
		if obj := strings.TrimSpace(st.Objective); obj != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.Text(o.Padding, 46, tr(obj))
		}

		p := &pdfPainter{pdf: pdf, tr: tr, dy: HeaderHeight}
		for _, s := range sc.Pitch {
			p.shape(s)
		}
		for _, t := range sc.Labels {
			p.text(t)
		}
		for _, el := range sc.Elements {
			for _, s := range el.Shapes {
				p.shape(s)
			}
			for _, t := range el.Texts {
				p.text(t)
			}
		}
	}
	if pdf.PageCount() == 0 {
		// An empty drill still gets a page so the file is valid.
		pdf.AddPageFormat("P", size)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(o.Padding, 26, tr(d.Title))
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type pdfPainter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
	dy  float64
}

func (p *pdfPainter) path(path vector.Path) {
	for _, c := range path.Cmds {
		switch c.Op {
		case vector.MoveTo:
			p.pdf.MoveTo(c.Data[0], c.Data[1]+p.dy)
		case vector.LineTo:
			p.pdf.LineTo(c.Data[0], c.Data[1]+p.dy)
		case vector.CubicTo:
			p.pdf.CurveBezierCubicTo(c.Data[0], c.Data[1]+p.dy, c.Data[2], c.Data[3]+p.dy, c.Data[4], c.Data[5]+p.dy)
		case vector.Close:
			p.pdf.ClosePath()
		}
	}
}

func (p *pdfPainter) shape(s vector.Shape) {
	fill := s.Fill.Enabled && s.Fill.Color.A > 0
	stroke := s.Stroke.Enabled && s.Stroke.Width > 0 && s.Stroke.Color.A > 0
	if !fill && !stroke {
		return
	}
	// Fill and stroke may differ in alpha, so they are painted separately.
	if fill {
		setAlpha(p.pdf, s.Fill.Color.A)
		setFillColor(p.pdf, s.Fill.Color)
		p.path(s.Path)
		p.pdf.DrawPath("F")
	}
	if stroke {
		setAlpha(p.pdf, s.Stroke.Color.A)
		setDrawColor(p.pdf, s.Stroke.Color)
		p.pdf.SetLineWidth(s.Stroke.Width)
		p.pdf.SetDashPattern(s.Stroke.Dash, 0)
		p.path(s.Path)
		p.pdf.DrawPath("D")
		p.pdf.SetDashPattern([]float64{}, 0)
	}
	setAlpha(p.pdf, 255)
}

func (p *pdfPainter) text(t vector.Text) {
	if t.Content == "" {
		return
	}
	if !asciiOnly(strings.ReplaceAll(t.Content, "×", "x")) {
		p.shape(glyphStandIn(t))
		return
	}
	style := ""
	if t.Bold {
		style = "B"
	}
	p.pdf.SetFont("Helvetica", style, t.Size)
	p.pdf.SetTextColor(int(t.Color.R), int(t.Color.G), int(t.Color.B))
	s := p.tr(t.Content)
	w := p.pdf.GetStringWidth(s)
	p.pdf.Text(t.At.X-w/2, t.At.Y+p.dy+t.Size*0.35, s)
}

func stepIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}

func setAlpha(pdf *gofpdf.Fpdf, a uint8) {
	pdf.SetAlpha(float64(a)/255, "Normal")
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
