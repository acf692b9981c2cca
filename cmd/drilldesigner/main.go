/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command drilldesigner designs football training drills: drills, their
// steps and the pitch layout of each step.
//
// Usage:
//
//	drilldesigner drill create --title "Rondo" --objective "Keep the ball"
//	drilldesigner step add --title "Warm up"
//	drilldesigner element place <step-id> player --x 30 --y 40
//	drilldesigner export --preset print
//	drilldesigner serve
//	drilldesigner ui
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"drilldesigner/internal/config"
	"drilldesigner/internal/crash"
	"drilldesigner/internal/designer"
	"drilldesigner/internal/editor"
	applog "drilldesigner/internal/log"
	"drilldesigner/internal/storage"
	"drilldesigner/internal/store"
	"drilldesigner/internal/telemetry"
	"drilldesigner/internal/version"
)

func main() {
	// .env values never override variables already set in the environment
	_ = config.LoadDotEnv(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "drilldesigner",
		Short:        "Design football training drills step by step",
		SilenceUsage: true,
	}
	root.AddCommand(
		drillCmd(),
		stepCmd(),
		elementCmd(),
		exportCmd(),
		packCmd(),
		pullCmd(),
		serveCmd(),
		uiCmd(),
		configCmd(),
		historyCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Drill Designer")
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// env is what a command needs once configuration and storage are open.
type env struct {
	cfg      config.AppConfig
	dsn      string
	store    *store.Store
	opened   *storage.Opened
	designer *designer.Designer
	log      *slog.Logger
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, dsn, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	telemetry.SetDefault(telemetry.FromConfig(cfg))
	l := applog.WithComponent("cli")

	s, opened, err := storage.OpenStore(ctx, cfg, dsn)
	if err != nil {
		l.Error("open storage failed", slog.String("backend", cfg.Storage.Backend), slog.Any("err", err))
		return nil, fmt.Errorf("open storage: %w", err)
	}
	l.Debug("storage open", slog.String("backend", cfg.Storage.Backend), slog.String("path", cfg.StoragePath()))
	d := designer.New(s, designer.WithEditorOptions(editor.WithColor(cfg.General.DefaultColor)))
	return &env{cfg: cfg, dsn: dsn, store: s, opened: opened, designer: d, log: l}, nil
}

func (e *env) close() {
	if err := e.opened.Close(); err != nil {
		e.log.Warn("close storage", slog.Any("err", err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	telemetry.Shutdown(ctx)
	_ = applog.Close()
}

// withEnv opens the environment around fn. A panic inside fn is turned into
// a crash report with the current drill autosaved next to it.
func withEnv(fn func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(ctxOf(cmd))
		if err != nil {
			return err
		}
		defer e.close()
		defer crash.Recover(e.store, e.cfg.General.DataDir)
		return fn(cmd, e, args)
	}
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
