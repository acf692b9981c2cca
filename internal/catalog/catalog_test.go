/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"testing"

	"drilldesigner/internal/domain"
)

func TestDefaultCatalogTabs(t *testing.T) {
	c := Default()
	if n := len(c.All()); n != 18 {
		t.Fatalf("expected 18 templates, got %d", n)
	}
	counts := map[Tab]int{}
	for _, tab := range Tabs() {
		counts[tab] = len(c.Tab(tab))
	}
	if counts[TabPlayers] != 2 || counts[TabEquipment] != 7 || counts[TabShapes] != 9 {
		t.Fatalf("tab counts: %v", counts)
	}
	ball, ok := c.ByID("ball")
	if !ok || !ball.FixedColor || ball.Icon == "" {
		t.Fatalf("ball template: %#v", ball)
	}
}

func TestLookupPrimaryThenSecondary(t *testing.T) {
	c := Default()

	tpl, ok := c.Lookup(domain.PlacedElement{ID: "rect-dash", Type: domain.TypeShape, Variant: "rect"})
	if !ok || tpl.ID != "rect-dash" {
		t.Fatalf("primary lookup: %#v %v", tpl, ok)
	}

	// Unknown id falls back to the first template with the same type and variant.
	tpl, ok = c.Lookup(domain.PlacedElement{ID: "zone-legacy", Type: domain.TypeShape, Variant: "arrow"})
	if !ok || tpl.ID != "arrow" {
		t.Fatalf("secondary lookup: %#v %v", tpl, ok)
	}

	if _, ok := c.Lookup(domain.PlacedElement{ID: "nope", Type: domain.TypeShape, Variant: "zone"}); ok {
		t.Fatalf("expected miss")
	}
}

func TestTemplateSizeFallback(t *testing.T) {
	w, h := Template{Width: 0, Height: 7}.Size()
	if w != DefaultSize || h != 7 {
		t.Fatalf("Size = %v,%v", w, h)
	}
}

func TestResolveColor(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"red", "#ef4444", true},
		{"#3B82F6", "#3b82f6", true},
		{"#123abc", "#123abc", true},
		{"#12", "", false},
		{"purple", "", false},
	}
	for _, tc := range cases {
		got, ok := ResolveColor(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ResolveColor(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
	if DefaultColor() != "#10b981" || len(Palette()) != 6 {
		t.Fatalf("palette defaults")
	}
}
