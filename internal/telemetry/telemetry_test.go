/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"drilldesigner/internal/config"
)

type recorder struct {
	mu      sync.Mutex
	events  [][]byte
	crashes [][]byte
}

func (r *recorder) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.events = append(r.events, b)
		r.mu.Unlock()
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.crashes = append(r.crashes, b)
		r.mu.Unlock()
	})
	return mux
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events), len(r.crashes)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClient_EventAndUploadCrash(t *testing.T) {
	defer goleak.VerifyNone(t)
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()
	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}

	c.Event(EventDrillCreated, map[string]any{"steps": 0, "category": "attacking", "nested": map[string]any{"x": 1}, "name": "spoof"})
	c.Flush(context.Background())
	waitFor(t, func() bool { e, _ := rec.counts(); return e == 1 })

	rec.mu.Lock()
	var m map[string]any
	err := json.Unmarshal(rec.events[0], &m)
	rec.mu.Unlock()
	if err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m["name"] != EventDrillCreated {
		t.Fatalf("event name = %v", m["name"])
	}
	if _, ok := m["ts"].(string); !ok {
		t.Fatalf("missing ts field")
	}
	if m["category"] != "attacking" {
		t.Fatalf("scalar prop dropped: %v", m)
	}
	if _, ok := m["nested"]; ok {
		t.Fatalf("non-scalar prop kept: %v", m)
	}

	c.UploadCrash([]byte("STACKTRACE"))
	waitFor(t, func() bool { _, n := rec.counts(); return n == 1 })
}

func TestClient_DisabledAndEmptyEventName(t *testing.T) {
	defer goleak.VerifyNone(t)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: time.Second})
	if c.Enabled() {
		t.Fatalf("expected disabled client")
	}
	c.Event("ignored", nil)
	c.UploadCrash([]byte("ignored"))
	c.Close()

	c2 := New(Config{OptIn: true, EventsURL: srv.URL + "/events", Timeout: time.Second})
	c2.Event("", nil)
	c2.Flush(nil)
	c2.Close()

	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestClient_SendErrorsAreSwallowed(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := New(Config{
		OptIn:        true,
		EventsURL:    "http://127.0.0.1:1/events",
		CrashURL:     "http://127.0.0.1:1/crash",
		Timeout:      50 * time.Millisecond,
		DebugLogging: true,
	})
	c.Event("err", map[string]any{"a": 1})
	c.Flush(context.Background())
	c.UploadCrash([]byte("oops"))
	c.Close()
	c.Close()
	c.UploadCrash([]byte("after close"))
}

func TestFromEnvAndConfig(t *testing.T) {
	t.Setenv(config.EnvTelemetryOptIn, "true")
	t.Setenv(EnvURL, " http://127.0.0.1:0 ")
	t.Setenv(EnvCrashURL, "")
	t.Setenv(EnvTimeoutMS, "100")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "http://127.0.0.1:0" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv = %+v", cfg)
	}

	t.Setenv(EnvTimeoutMS, "nope")
	if got := FromEnv().Timeout; got != defaultTimeout {
		t.Fatalf("bad timeout should fall back, got %v", got)
	}

	app := config.Defaults()
	app.General.TelemetryOptIn = false
	if FromConfig(app).OptIn {
		t.Fatalf("app config opt-out must win")
	}
}

func TestDefaultClientLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := SetDefault(Config{OptIn: true, EventsURL: "http://127.0.0.1:1/events", Timeout: 50 * time.Millisecond})
	if Default() != c || !Enabled() {
		t.Fatalf("SetDefault did not install the client")
	}
	SetDefault(Config{})
	if Enabled() {
		t.Fatalf("replacement client should be disabled")
	}
	Event(EventStepCreated, nil)
	UploadCrash([]byte("x"))
	Shutdown(context.Background())
	Shutdown(context.Background())
}
