/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package server exposes the current drill read-only over HTTP so a coach can
// share diagrams with a browser or another drilldesigner instance.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"drilldesigner/internal/catalog"
	"drilldesigner/internal/config"
	"drilldesigner/internal/domain"
	"drilldesigner/internal/export"
	applog "drilldesigner/internal/log"
	"drilldesigner/internal/store"
	"drilldesigner/internal/version"
)

var (
	errNoDrill     = errors.New("no current drill")
	errUnknownStep = errors.New("unknown step")
)

// Drills is the part of the drill store the server reads.
type Drills interface {
	Current() *domain.Drill
}

type Server struct {
	drills Drills
	cat    *catalog.Catalog
	cfg    config.ServerConfig
	opt    export.Options
	log    *slog.Logger
	router chi.Router
}

// New builds the router. A zero RateLimitRPS disables rate limiting.
func New(drills Drills, cfg config.ServerConfig) *Server {
	s := &Server{
		drills: drills,
		cat:    catalog.Default(),
		cfg:    cfg,
		log:    applog.WithComponent("server"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)
	if s.cfg.RateLimitRPS > 0 {
		r.Use(RateLimit(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(version.String()))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.getCatalog)
		r.Route("/drill", func(r chi.Router) {
			r.Get("/", s.getDrill)
			r.Get("/steps", s.getSteps)
			r.Get("/steps/{stepID}", s.getStep)
			r.Get("/steps/{stepID}/diagram.svg", s.getDiagram(export.FormatSVG, "image/svg+xml"))
			r.Get("/steps/{stepID}/diagram.png", s.getDiagram(export.FormatPNG, "image/png"))
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})
	return r
}

// CatalogResponse is the body of GET /api/catalog.
type CatalogResponse struct {
	Tabs      []catalog.Tab      `json:"tabs"`
	Templates []catalog.Template `json:"templates"`
	Palette   []catalog.Color    `json:"palette"`
}

func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{
		Tabs:      catalog.Tabs(),
		Templates: s.cat.All(),
		Palette:   catalog.Palette(),
	})
}

func (s *Server) getDrill(w http.ResponseWriter, r *http.Request) {
	d := s.drills.Current()
	if d == nil {
		writeError(w, http.StatusNotFound, errNoDrill)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) getSteps(w http.ResponseWriter, r *http.Request) {
	d := s.drills.Current()
	if d == nil {
		writeError(w, http.StatusNotFound, errNoDrill)
		return
	}
	writeJSON(w, http.StatusOK, d.Steps)
}

// step resolves {stepID} against the current drill, writing the 404 itself.
func (s *Server) step(w http.ResponseWriter, r *http.Request) (*domain.Drill, domain.DrillStep, bool) {
	d := s.drills.Current()
	if d == nil {
		writeError(w, http.StatusNotFound, errNoDrill)
		return nil, domain.DrillStep{}, false
	}
	i := d.StepIndex(chi.URLParam(r, "stepID"))
	if i < 0 {
		writeError(w, http.StatusNotFound, errUnknownStep)
		return nil, domain.DrillStep{}, false
	}
	return d, d.Steps[i], true
}

func (s *Server) getStep(w http.ResponseWriter, r *http.Request) {
	if _, st, ok := s.step(w, r); ok {
		writeJSON(w, http.StatusOK, st)
	}
}

func (s *Server) getDiagram(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, st, ok := s.step(w, r)
		if !ok {
			return
		}
		scale := 1.0
		if v := r.URL.Query().Get("scale"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f <= 0 || f > 4 {
				writeError(w, http.StatusBadRequest, errors.New("scale must be in (0,4]"))
				return
			}
			scale = f
		}
		b, err := export.StepBytes(d, st, format, s.opt, scale)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var _ Drills = (*store.Store)(nil)
