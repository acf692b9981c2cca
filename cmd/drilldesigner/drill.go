/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"drilldesigner/internal/designer"
	"drilldesigner/internal/domain"
	"drilldesigner/internal/storage"
	"drilldesigner/internal/store"
)

func drillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Create or inspect the current drill",
	}
	cmd.AddCommand(drillCreateCmd(), drillShowCmd(), drillRestoreCmd(), drillCheckCmd())
	return cmd
}

func drillCreateCmd() *cobra.Command {
	var title, date, objective, category, field, ground string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a drill and make it the current one",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			form := e.designer.NewDrillForm()
			if ft := domain.FieldType(e.cfg.General.DefaultFieldType); ft.Valid() {
				form.FieldType = ft
			}
			form.Title, form.Objective = title, objective
			form.Category = domain.Category(category)
			if date != "" {
				form.Date = date
			}
			if field != "" {
				form.FieldType = domain.FieldType(field)
			}
			if ground != "" {
				form.GroundSize = domain.GroundSize(ground)
			}
			d, err := e.designer.CreateDrill(ctxOf(cmd), form)
			if err != nil {
				return formError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created drill %q (%s)\n", d.Title, d.ID)
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "Drill title (required)")
	f.StringVar(&date, "date", "", "Date as YYYY-MM-DD (default today)")
	f.StringVar(&objective, "objective", "", "What the drill trains (required)")
	f.StringVar(&category, "category", "", "attacking | defence | overlapping")
	f.StringVar(&field, "field", "", "full | half | 7v7")
	f.StringVar(&ground, "ground", "", "whole | half")
	return cmd
}

func drillShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current drill",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			d := e.store.Current()
			if d == nil {
				return store.ErrNoCurrentDrill
			}
			if asJSON {
				b, err := store.Encode(d)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return err
			}
			printDrill(cmd.OutOrStdout(), d)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored JSON document")
	return cmd
}

func drillRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Replace the current drill with its newest backup (file backend)",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			fp, ok := e.opened.Persister.(*storage.FilePersister)
			if !ok {
				return errors.New("restoring backups needs the file storage backend")
			}
			ctx := ctxOf(cmd)
			from, err := fp.RestoreLatestBackup(ctx, store.Key)
			if err != nil {
				return fmt.Errorf("restore: %w", err)
			}
			if err := e.store.Reload(ctx); err != nil {
				return err
			}
			title := ""
			if d := e.store.Current(); d != nil {
				title = d.Title
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %q from %s\n", title, filepath.Base(from))
			return nil
		}),
	}
}

func drillCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the storage backend holding the drill",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			w := cmd.OutOrStdout()
			switch p := e.opened.Persister.(type) {
			case *storage.SQLitePersister:
				ctx := ctxOf(cmd)
				if err := p.QuickCheck(ctx); err != nil {
					return err
				}
				v, err := p.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "sqlite %s: ok (schema %d)\n", p.Path(), v)
			case *storage.FilePersister:
				list, err := p.Backups(store.Key)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "file %s: ok (%d backups)\n", p.Path(store.Key), len(list))
			default:
				fmt.Fprintln(w, "ok")
			}
			return nil
		}),
	}
}

func printDrill(w io.Writer, d *domain.Drill) {
	ft, width, length := d.Pitch()
	fmt.Fprintf(w, "Drill:     %s\n", d.Title)
	fmt.Fprintf(w, "ID:        %s\n", d.ID)
	fmt.Fprintf(w, "Date:      %s\n", d.Date)
	fmt.Fprintf(w, "Objective: %s\n", d.Objective)
	if d.Category != "" {
		fmt.Fprintf(w, "Category:  %s\n", d.Category)
	}
	fmt.Fprintf(w, "Field:     %s (%gx%g m, %s)\n", ft, width, length, d.GroundSize)
	fmt.Fprintf(w, "Steps:     %d\n", len(d.Steps))
}

// formError flattens validation errors into one sorted message per line.
func formError(err error) error {
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, verrs[k]))
	}
	return errors.New(strings.Join(lines, "\n"))
}

func stepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Manage the steps of the current drill",
	}
	cmd.AddCommand(stepAddCmd(), stepListCmd(), stepDeleteCmd())
	return cmd
}

func stepAddCmd() *cobra.Command {
	var title, objective string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a step to the current drill",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			st, err := e.designer.CreateStep(ctxOf(cmd), domain.StepForm{Title: title, Objective: objective})
			if err != nil {
				return formError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added step %q (%s)\n", st.Title, st.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "Step title (required)")
	cmd.Flags().StringVar(&objective, "objective", "", "Step objective")
	return cmd
}

func stepListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the steps of the current drill",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			list, err := e.designer.Steps()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, list.Drill.Title)
			if list.Empty() {
				fmt.Fprintln(w, designer.EmptyStepsMessage)
				return nil
			}
			for i, st := range list.Steps {
				n := len(st.Elements())
				fmt.Fprintf(w, "%d. %s  [%s] %d items\n", i+1, st.Title, st.ID, n)
			}
			return nil
		}),
	}
}

func stepDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <step-id>",
		Short: "Delete a step",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if err := e.designer.DeleteStep(ctxOf(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted step %s\n", args[0])
			return nil
		}),
	}
}
