/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDrillFormValidation(t *testing.T) {
	errs := DrillForm{Title: "  ", Date: "", Objective: "\t"}.Validate()
	want := ValidationErrors{"title": "Title is required", "date": "Date is required", "objective": "Objective is required"}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("validation mismatch (-want +got):\n%s", diff)
	}
	if errs := (DrillForm{Title: "Rondo", Date: "2025-05-01", Objective: "Keep the ball"}).Validate(); errs != nil {
		t.Fatalf("expected valid form, got %v", errs)
	}
	if errs := (DrillForm{Title: "x", Date: "d", Objective: "o", FieldType: "futsal"}).Validate(); errs["fieldType"] == "" {
		t.Fatalf("expected fieldType error")
	}
}

func TestDrillFormBuildAppliesPresets(t *testing.T) {
	d, err := DrillForm{Title: "Press", Date: "2025-05-01", Objective: "Win it back", FieldType: Field7v7}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.ID == "" || d.Steps == nil || len(d.Steps) != 0 {
		t.Fatalf("new drill should have id and empty steps: %#v", d)
	}
	if d.FieldWidth != 50 || d.FieldLength != 70 || d.GroundSize != GroundWhole {
		t.Fatalf("7v7 preset not applied: %#v", d)
	}

	d2, err := DrillForm{Title: "Press", Date: "2025-05-01", Objective: "o", FieldLength: 90}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d2.FieldType != FieldFull || d2.FieldWidth != 68 || d2.FieldLength != 90 {
		t.Fatalf("explicit length should override preset: %#v", d2)
	}
	if d.ID == d2.ID {
		t.Fatalf("ids must differ")
	}

	_, err = DrillForm{}.Build()
	var ve ValidationErrors
	if !errors.As(err, &ve) || len(ve) != 3 {
		t.Fatalf("expected 3 validation errors, got %v", err)
	}
	if !strings.Contains(err.Error(), "title: Title is required") {
		t.Fatalf("error text: %q", err.Error())
	}
}

func TestStepFormBuild(t *testing.T) {
	if _, err := (StepForm{Title: " "}).Build(); err == nil {
		t.Fatalf("expected error for blank title")
	}
	s, err := StepForm{Title: "Warm-up", Objective: "Activate"}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.ID == "" || s.CanvasData != nil {
		t.Fatalf("unexpected step: %#v", s)
	}
}

func TestToday(t *testing.T) {
	if got := Today(time.Date(2025, 2, 3, 23, 0, 0, 0, time.UTC)); got != "2025-02-03" {
		t.Fatalf("Today = %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := &Drill{ID: "d", Steps: []DrillStep{{ID: "s", CanvasData: &CanvasData{Elements: []PlacedElement{{InstanceID: 1, X: 10}}}}}}
	c := d.Clone()
	c.Steps[0].CanvasData.Elements[0].X = 99
	c.Steps[0].Title = "changed"
	if d.Steps[0].CanvasData.Elements[0].X != 10 || d.Steps[0].Title != "" {
		t.Fatalf("clone shares state with original")
	}
	if (*Drill)(nil).Clone() != nil {
		t.Fatalf("nil clone should be nil")
	}
	if d.StepIndex("s") != 0 || d.StepIndex("x") != -1 {
		t.Fatalf("StepIndex mismatch")
	}
}

func TestElementJSONShape(t *testing.T) {
	el := PlacedElement{InstanceID: 1700000000000, ID: "ball", Type: TypeIcon, X: 50, Y: 50, Width: 4, Height: 4, Icon: "⚽"}
	b, err := json.Marshal(el)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, k := range []string{`"instanceId":1700000000000`, `"rotation":0`, `"icon":"⚽"`} {
		if !strings.Contains(s, k) {
			t.Fatalf("missing %s in %s", k, s)
		}
	}
	if strings.Contains(s, `"color"`) || strings.Contains(s, `"isGK"`) {
		t.Fatalf("absent optional fields must be omitted: %s", s)
	}
}

func TestPitchFallsBackToPreset(t *testing.T) {
	ft, w, l := (&Drill{FieldType: FieldHalf}).Pitch()
	if ft != FieldHalf || w != 68 || l != 52.5 {
		t.Fatalf("Pitch = %v %v %v", ft, w, l)
	}
	ft, w, l = (*Drill)(nil).Pitch()
	if ft != FieldFull || w != 68 || l != 105 {
		t.Fatalf("nil Pitch = %v %v %v", ft, w, l)
	}
	if len(Categories()) != 3 || !CategoryDefence.Valid() || Category("x").Valid() {
		t.Fatalf("categories mismatch")
	}
}
