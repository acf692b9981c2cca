/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"drilldesigner/internal/config"
	"drilldesigner/internal/domain"
	"drilldesigner/internal/store"
)

func sharedStore(t *testing.T, withDrill bool) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, store.NewMemory())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !withDrill {
		return s
	}
	d := &domain.Drill{
		ID: "d1", Title: "Rondo", Date: "2025-03-01", Objective: "Keep the ball",
		FieldType: domain.FieldFull, GroundSize: domain.GroundWhole, FieldWidth: 68, FieldLength: 105,
		Steps: []domain.DrillStep{{ID: "s1", Title: "Warm up", CanvasData: &domain.CanvasData{Elements: []domain.PlacedElement{
			{InstanceID: 1, ID: "player", Type: domain.TypePlayer, X: 50, Y: 50, Width: 5, Height: 5, Color: "#3b82f6"},
		}}}},
	}
	if err := s.SetCurrentDrill(ctx, d); err != nil {
		t.Fatalf("set: %v", err)
	}
	return s
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{Addr: "127.0.0.1:0", AllowedOrigins: []string{"https://club.example"}}
}

func do(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	h := New(sharedStore(t, true), testConfig()).Handler()
	cases := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"/healthz", 200, "text/plain", "ok"},
		{"/version", 200, "text/plain", ""},
		{"/api/drill", 200, "application/json", `"title":"Rondo"`},
		{"/api/drill/steps", 200, "application/json", `"id":"s1"`},
		{"/api/drill/steps/s1", 200, "application/json", `"instanceId":1`},
		{"/api/drill/steps/s1/diagram.svg", 200, "image/svg+xml", "<svg"},
		{"/api/drill/steps/s1/diagram.png?scale=0.5", 200, "image/png", "PNG"},
		{"/api/drill/steps/s1/diagram.png?scale=9", 400, "application/json", "scale"},
		{"/api/drill/steps/nope", 404, "application/json", "unknown step"},
		{"/api/catalog", 200, "application/json", `"id":"ladder"`},
		{"/nowhere", 404, "application/json", "not found"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := do(t, h, tc.path)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.status, rec.Body)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tc.contentType) {
				t.Fatalf("content type = %q, want %q", ct, tc.contentType)
			}
			if !strings.Contains(rec.Body.String(), tc.contains) {
				t.Fatalf("body does not contain %q: %.200s", tc.contains, rec.Body)
			}
		})
	}
}

func TestNoDrillIs404(t *testing.T) {
	h := New(sharedStore(t, false), testConfig()).Handler()
	for _, p := range []string{"/api/drill", "/api/drill/steps", "/api/drill/steps/s1", "/api/drill/steps/s1/diagram.svg"} {
		rec := do(t, h, p)
		var body errorBody
		if rec.Code != http.StatusNotFound || json.Unmarshal(rec.Body.Bytes(), &body) != nil || body.Error != "no current drill" {
			t.Fatalf("%s: status %d body %s", p, rec.Code, rec.Body)
		}
	}
}

func TestCORS(t *testing.T) {
	h := New(sharedStore(t, true), testConfig()).Handler()
	req := httptest.NewRequest(http.MethodGet, "/api/drill", nil)
	req.Header.Set("Origin", "https://club.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://club.example" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/drill", nil)
	req.Header.Set("Origin", "https://other.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS, cfg.RateLimitBurst = 0.001, 2
	h := New(sharedStore(t, true), cfg).Handler()
	for i := 0; i < 2; i++ {
		if rec := do(t, h, "/healthz"); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, rec.Code)
		}
	}
	rec := do(t, h, "/healthz")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newIPLimiter(1, 1, func() time.Time { return now })
	l.get("10.0.0.1")
	l.get("10.0.0.2")

	now = now.Add(limiterIdleTTL / 2)
	l.get("10.0.0.2")
	if n := l.size(); n != 2 {
		t.Fatalf("clients before ttl = %d, want 2", n)
	}

	now = now.Add(limiterIdleTTL/2 + time.Second)
	l.get("10.0.0.3")
	if n := l.size(); n != 2 {
		t.Fatalf("clients after sweep = %d, want 2", n)
	}
	if _, ok := l.clients["10.0.0.1"]; ok {
		t.Fatalf("idle client 10.0.0.1 was kept")
	}
	if _, ok := l.clients["10.0.0.2"]; !ok {
		t.Fatalf("recent client 10.0.0.2 was evicted")
	}
}

func TestClientAgainstServer(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := sharedStore(t, true)
	ts := httptest.NewServer(New(s, testConfig()).Handler())
	defer ts.Close()
	c := NewClient(ts.URL + "/")
	defer c.client.CloseIdleConnections()
	ctx := context.Background()

	got, err := c.Drill(ctx)
	if err != nil {
		t.Fatalf("drill: %v", err)
	}
	if diff := cmp.Diff(s.Current(), got); diff != "" {
		t.Fatalf("drill mismatch (-want +got):\n%s", diff)
	}
	st, err := c.Step(ctx, "s1")
	if err != nil || st.Title != "Warm up" {
		t.Fatalf("step = %+v, %v", st, err)
	}
	svg, err := c.Diagram(ctx, "s1", "svg")
	if err != nil || !strings.Contains(string(svg), "<svg") {
		t.Fatalf("diagram: %v", err)
	}
	cr, err := c.Catalog(ctx)
	if err != nil || len(cr.Templates) != 18 || len(cr.Palette) != 6 {
		t.Fatalf("catalog = %d templates, %d colours, %v", len(cr.Templates), len(cr.Palette), err)
	}
	if _, err := c.Step(ctx, "missing"); !errors.Is(err, ErrNotFound) || !strings.Contains(err.Error(), "unknown step") {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)
	srv := New(sharedStore(t, true), testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}
