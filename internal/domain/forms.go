/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format stored on drills.
const DateLayout = "2006-01-02"

// NewID returns a time-ordered identifier for drills and steps.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Today formats now as a drill date.
func Today(now time.Time) string { return now.Format(DateLayout) }

// ValidationErrors maps a form field to its message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v[k]))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// DrillForm is the input of the create-drill flow.
type DrillForm struct {
	Title       string
	Date        string
	Objective   string
	Category    Category
	FieldType   FieldType
	GroundSize  GroundSize
	FieldWidth  float64 // 0 means preset default
	FieldLength float64
}

// Validate checks required fields. A nil result means the form is valid.
func (f DrillForm) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "Title is required"
	}
	if strings.TrimSpace(f.Date) == "" {
		errs["date"] = "Date is required"
	}
	if strings.TrimSpace(f.Objective) == "" {
		errs["objective"] = "Objective is required"
	}
	if f.FieldType != "" && !f.FieldType.Valid() {
		errs["fieldType"] = "Unknown field type"
	}
	if f.GroundSize != "" && !f.GroundSize.Valid() {
		errs["groundSize"] = "Unknown ground size"
	}
	if f.Category != "" && !f.Category.Valid() {
		errs["category"] = "Unknown category"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Build validates f and returns a new drill with an id and no steps.
func (f DrillForm) Build() (*Drill, error) {
	if errs := f.Validate(); errs != nil {
		return nil, errs
	}
	ft := f.FieldType
	if ft == "" {
		ft = FieldFull
	}
	gs := f.GroundSize
	if gs == "" {
		gs = GroundWhole
	}
	p := PresetFor(ft)
	w, l := p.Width, p.Length
	if f.FieldWidth > 0 {
		w = f.FieldWidth
	}
	if f.FieldLength > 0 {
		l = f.FieldLength
	}
	return &Drill{
		ID:          NewID(),
		Title:       f.Title,
		Date:        strings.TrimSpace(f.Date),
		Objective:   f.Objective,
		Category:    f.Category,
		FieldType:   ft,
		GroundSize:  gs,
		FieldWidth:  w,
		FieldLength: l,
		Steps:       []DrillStep{},
	}, nil
}

// StepForm is the input of the create-step flow.
type StepForm struct {
	Title     string
	Objective string
}

// Validate checks required fields. A nil result means the form is valid.
func (f StepForm) Validate() ValidationErrors {
	if strings.TrimSpace(f.Title) == "" {
		return ValidationErrors{"title": "Title is required"}
	}
	return nil
}

// Build validates f and returns a new step without a saved layout.
func (f StepForm) Build() (DrillStep, error) {
	if errs := f.Validate(); errs != nil {
		return DrillStep{}, errs
	}
	return DrillStep{ID: NewID(), Title: f.Title, Objective: f.Objective}, nil
}
