/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"strings"
	"testing"
)

func TestValidateDrill(t *testing.T) {
	if err := ValidateDrill(encode(t, sampleDrill())); err != nil {
		t.Fatalf("sample drill should validate: %v", err)
	}
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"missing steps", `{"id":"a","title":"t","date":"d","objective":"o"}`, "steps"},
		{"bad element type", `{"id":"a","title":"t","date":"d","objective":"o","steps":[{"id":"s","title":"t","canvasData":{"elements":[{"instanceId":1,"id":"x","type":"robot","x":1,"y":1,"width":1,"height":1,"rotation":0}]}}]}`, "type"},
		{"x out of range", `{"id":"a","title":"t","date":"d","objective":"o","steps":[{"id":"s","title":"t","canvasData":{"elements":[{"instanceId":1,"id":"x","type":"icon","x":101,"y":1,"width":1,"height":1,"rotation":0}]}}]}`, "x"},
		{"bad field type", `{"id":"a","title":"t","date":"d","objective":"o","fieldType":"beach","steps":[]}`, "fieldType"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDrill([]byte(tc.doc))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateDrillRejectsNonJSON(t *testing.T) {
	if err := ValidateDrill([]byte("nope")); err == nil {
		t.Fatal("expected error for non-JSON input")
	}
}

func TestDrillSchemaIsCopy(t *testing.T) {
	a := DrillSchema()
	a[0] = 'X'
	if DrillSchema()[0] == 'X' {
		t.Fatal("DrillSchema exposes the embedded bytes")
	}
}
