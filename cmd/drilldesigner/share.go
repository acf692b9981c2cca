/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"drilldesigner/internal/drillpack"
	"drilldesigner/internal/export"
	"drilldesigner/internal/server"
	"drilldesigner/internal/storage"
	"drilldesigner/internal/store"
	"drilldesigner/internal/ui"
)

func exportCmd() *cobra.Command {
	var (
		preset  string
		formats []string
		steps   []int
		out     string
		scale   float64
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write step diagrams (png, svg) and the drill PDF",
		Long: "Writes the current drill with a preset: web (png + svg per step) or print " +
			"(one pdf plus 2x pngs). Relative --out directories resolve under <data dir>/exports.",
		Args: cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			d := e.store.Current()
			if d == nil {
				return store.ErrNoCurrentDrill
			}
			p := export.PresetName(preset)
			if p != export.PresetWeb && p != export.PresetPrint {
				return fmt.Errorf("unknown preset %q", preset)
			}
			idx := make([]int, 0, len(steps))
			for _, n := range steps {
				if n < 1 || n > len(d.Steps) {
					return fmt.Errorf("step %d out of range 1..%d", n, len(d.Steps))
				}
				idx = append(idx, n-1)
			}
			paths, err := export.BatchExport(d, e.cfg.General.DataDir, export.BatchOptions{
				Preset:  p,
				Formats: formats,
				Steps:   idx,
				Scale:   scale,
				OutDir:  out,
			})
			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			if err != nil {
				return err
			}
			e.log.Info("export done", slog.String("preset", preset), slog.Int("files", len(paths)))
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&preset, "preset", string(export.PresetWeb), "web | print")
	f.StringSliceVar(&formats, "format", nil, "Override the preset formats (png, svg, pdf)")
	f.IntSliceVar(&steps, "steps", nil, "Step numbers to export, starting at 1 (default all)")
	f.StringVar(&out, "out", "", "Output directory (default <data dir>/exports/<preset>)")
	f.Float64Var(&scale, "scale", 0, "PNG scale (default from preset)")
	return cmd
}

func packCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Share a drill as a zip drill pack",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "export <file.zip>",
			Short: "Write the current drill with step previews",
			Args:  cobra.ExactArgs(1),
			RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
				d := e.store.Current()
				if d == nil {
					return store.ErrNoCurrentDrill
				}
				abs, _ := filepath.Abs(args[0])
				if err := drillpack.Export(d, abs); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", abs)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "import <file.zip>",
			Short: "Replace the current drill with the one in a drill pack",
			Args:  cobra.ExactArgs(1),
			RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
				d, err := drillpack.Import(args[0])
				if err != nil {
					return err
				}
				if err := e.store.SetCurrentDrill(ctxOf(cmd), d); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %q with %d steps\n", d.Title, len(d.Steps))
				return nil
			}),
		},
	)
	return cmd
}

func pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <base-url>",
		Short: "Copy the drill shared by another drilldesigner serve",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			d, err := server.NewClient(args[0]).Drill(ctxOf(cmd))
			if err != nil {
				return fmt.Errorf("pull: %w", err)
			}
			if err := e.store.SetCurrentDrill(ctxOf(cmd), d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pulled %q with %d steps\n", d.Title, len(d.Steps))
			return nil
		}),
	}
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Share the current drill read-only over HTTP",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cfg := e.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}
			watch(ctx, e)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", cfg.Addr)
			return server.New(e.store, cfg).ListenAndServe(ctx)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

// watch reloads the store whenever the backing file changes on disk.
func watch(ctx context.Context, e *env) {
	if e.opened.WatchPath == "" {
		return
	}
	go func() {
		err := storage.Watch(ctx, e.opened.WatchPath, storage.DefaultDebounce, func() {
			if err := e.store.Reload(ctx); err != nil {
				e.log.Warn("reload after external change failed", slog.Any("err", err))
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			e.log.Warn("watch stopped", slog.Any("err", err))
		}
	}()
}

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Launch the desktop editor (build with -tags fyne)",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(_ *cobra.Command, e *env, _ []string) error {
			return ui.Run(ui.Options{Designer: e.designer, Config: e.cfg, WatchPath: e.opened.WatchPath})
		}),
	}
}
