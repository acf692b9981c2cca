/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package store holds the current drill and persists the whole document
// through a Persister after every change.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"drilldesigner/internal/domain"
	applog "drilldesigner/internal/log"
)

// Key is the storage key of the current drill document.
const Key = "currentDrill"

var (
	// ErrNotFound is returned by persisters for absent keys.
	ErrNotFound = errors.New("store: key not found")
	// ErrNoCurrentDrill means no drill has been created or loaded.
	ErrNoCurrentDrill = errors.New("store: no current drill")
)

// Persister is a durable key/value blob store.
type Persister interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Store owns the current drill. Mutations are applied to a copy, persisted,
// and only then made visible, so a failed write leaves the previous state.
type Store struct {
	mu        sync.RWMutex
	p         Persister
	key       string
	drill     *domain.Drill
	validate  func([]byte) error
	listeners []func(*domain.Drill)
	log       *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(k string) Option { return func(s *Store) { s.key = k } }

// WithValidator runs v over the raw document on load; a failure is treated
// like malformed JSON.
func WithValidator(v func([]byte) error) Option { return func(s *Store) { s.validate = v } }

// Open creates a store over p and loads any previously saved drill. Absent or
// malformed data yields a store without a current drill; only I/O failures
// are returned.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := &Store{p: p, key: Key, log: applog.WithComponent("store")}
	for _, o := range opts {
		o(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the document from the persister and notifies subscribers.
func (s *Store) Reload(ctx context.Context) error {
	d, err := s.read(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.drill = d
	fns := slices.Clone(s.listeners)
	s.mu.Unlock()
	notify(fns, d)
	return nil
}

func (s *Store) read(ctx context.Context) (*domain.Drill, error) {
	b, err := s.p.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	if s.validate != nil {
		if verr := s.validate(b); verr != nil {
			s.log.Warn("stored drill failed validation; starting empty", slog.String("key", s.key), slog.Any("err", verr))
			return nil, nil
		}
	}
	d, err := Decode(b)
	if err != nil {
		s.log.Warn("stored drill is malformed; starting empty", slog.String("key", s.key), slog.Any("err", err))
		return nil, nil
	}
	return d, nil
}

// Subscribe registers fn to be called with a copy of the drill after every
// change. fn runs on the goroutine that made the change.
func (s *Store) Subscribe(fn func(*domain.Drill)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func notify(fns []func(*domain.Drill), d *domain.Drill) {
	for _, fn := range fns {
		fn(d.Clone())
	}
}

// Current returns a copy of the current drill, or nil.
func (s *Store) Current() *domain.Drill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drill.Clone()
}

// Steps returns a copy of the steps, or ErrNoCurrentDrill.
func (s *Store) Steps() ([]domain.DrillStep, error) {
	d := s.Current()
	if d == nil {
		return nil, ErrNoCurrentDrill
	}
	return d.Steps, nil
}

// Step returns a copy of the step with the given id.
func (s *Store) Step(id string) (domain.DrillStep, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.drill.StepIndex(id); i >= 0 {
		return s.drill.Steps[i].Clone(), true
	}
	return domain.DrillStep{}, false
}

// SetCurrentDrill replaces the current drill. nil removes the stored document.
func (s *Store) SetCurrentDrill(ctx context.Context, d *domain.Drill) error {
	s.mu.Lock()
	next := d.Clone()
	if next != nil && next.Steps == nil {
		next.Steps = []domain.DrillStep{}
	}
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.drill = next
	fns := slices.Clone(s.listeners)
	s.mu.Unlock()
	notify(fns, next)
	return nil
}

// AddStep appends step to the current drill. It reports false when there is no current drill.
func (s *Store) AddStep(ctx context.Context, step domain.DrillStep) (bool, error) {
	return s.mutate(ctx, func(d *domain.Drill) bool {
		d.Steps = append(d.Steps, step.Clone())
		return true
	})
}

// UpdateStep merges patch into the step with the given id. It reports false
// when no such step exists.
func (s *Store) UpdateStep(ctx context.Context, id string, patch domain.StepPatch) (bool, error) {
	return s.mutate(ctx, func(d *domain.Drill) bool {
		i := d.StepIndex(id)
		if i < 0 {
			return false
		}
		patch.Apply(&d.Steps[i])
		return true
	})
}

// DeleteStep removes the step with the given id. It reports false when no such step exists.
func (s *Store) DeleteStep(ctx context.Context, id string) (bool, error) {
	return s.mutate(ctx, func(d *domain.Drill) bool {
		i := d.StepIndex(id)
		if i < 0 {
			return false
		}
		d.Steps = append(d.Steps[:i], d.Steps[i+1:]...)
		return true
	})
}

func (s *Store) mutate(ctx context.Context, fn func(*domain.Drill) bool) (bool, error) {
	s.mu.Lock()
	if s.drill == nil {
		s.mu.Unlock()
		return false, nil
	}
	next := s.drill.Clone()
	if !fn(next) {
		s.mu.Unlock()
		return false, nil
	}
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.drill = next
	fns := slices.Clone(s.listeners)
	s.mu.Unlock()
	notify(fns, next)
	return true, nil
}

func (s *Store) persistLocked(ctx context.Context, d *domain.Drill) error {
	if d == nil {
		if err := s.p.Delete(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete %s: %w", s.key, err)
		}
		return nil
	}
	b, err := Encode(d)
	if err != nil {
		return err
	}
	if err := s.p.Set(ctx, s.key, b); err != nil {
		return fmt.Errorf("persist %s: %w", s.key, err)
	}
	s.log.DebugContext(applog.WithDrill(ctx, d.ID), "persisted", slog.Int("steps", len(d.Steps)), slog.Int("bytes", len(b)))
	return nil
}

// Encode renders the drill document as stored.
func Encode(d *domain.Drill) ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode drill: %w", err)
	}
	return append(b, '\n'), nil
}

// Decode parses a stored drill document.
func Decode(b []byte) (*domain.Drill, error) {
	var d domain.Drill
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode drill: %w", err)
	}
	if d.Steps == nil {
		d.Steps = []domain.DrillStep{}
	}
	return &d, nil
}
