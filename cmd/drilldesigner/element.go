/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"drilldesigner/internal/catalog"
	"drilldesigner/internal/domain"
	"drilldesigner/internal/editor"
)

// cliBox is the container gestures run in on the command line: one pixel per
// percent, so pointer positions are element coordinates.
var cliBox = editor.Box(100, 100)

func elementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "element",
		Aliases: []string{"el"},
		Short:   "Place and edit elements on a step's pitch",
	}
	cmd.AddCommand(
		elementListCmd(),
		elementPlaceCmd(),
		elementMoveCmd(),
		elementResizeCmd(),
		elementRotateCmd(),
		elementResetCmd(),
		elementDeleteCmd(),
		elementClearCmd(),
		catalogCmd(),
	)
	return cmd
}

func parseInstance(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad instance id %q", s)
	}
	return id, nil
}

func lookup(ed *editor.Editor, id int64) (domain.PlacedElement, error) {
	el, ok := ed.Element(id)
	if !ok {
		return el, fmt.Errorf("%w: %d", editor.ErrElementNotFound, id)
	}
	return el, nil
}

// finiteFlags rejects NaN and infinite values for the named float flags.
func finiteFlags(cmd *cobra.Command, names ...string) error {
	for _, n := range names {
		v, err := cmd.Flags().GetFloat64(n)
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("--%s must be a finite number, got %v", n, v)
		}
	}
	return nil
}

func printElement(cmd *cobra.Command, el domain.PlacedElement) {
	fmt.Fprintf(cmd.OutOrStdout(), "%d  %-12s x=%.1f y=%.1f w=%.1f h=%.1f rot=%.1f %s\n",
		el.InstanceID, el.ID, el.X, el.Y, el.Width, el.Height, el.Rotation, el.Color)
}

func elementListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <step-id>",
		Short: "List the saved elements of a step",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			ed, _, err := e.designer.OpenEditor(args[0])
			if err != nil {
				return err
			}
			for _, el := range ed.Elements() {
				printElement(cmd, el)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Players: %d  Items: %d\n", ed.PlayerCount(), ed.Len())
			return nil
		}),
	}
}

func elementPlaceCmd() *cobra.Command {
	var x, y float64
	var color string
	cmd := &cobra.Command{
		Use:   "place <step-id> <asset-id>",
		Short: "Place a catalog asset; without --x/--y it goes to the centre",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if err := finiteFlags(cmd, "x", "y"); err != nil {
				return err
			}
			var placed domain.PlacedElement
			_, err := e.designer.Edit(ctxOf(cmd), args[0], func(ed *editor.Editor) error {
				if color != "" {
					if err := ed.SetColor(color); err != nil {
						return err
					}
				}
				if !cmd.Flags().Changed("x") && !cmd.Flags().Changed("y") {
					tpl, ok := ed.Catalog().ByID(args[1])
					if !ok {
						return fmt.Errorf("%w: %q", editor.ErrUnknownAsset, args[1])
					}
					placed = ed.PlaceCentered(tpl)
					return nil
				}
				var err error
				placed, err = ed.PlaceByID(args[1], x, y)
				return err
			})
			if err != nil {
				return err
			}
			printElement(cmd, placed)
			return nil
		}),
	}
	cmd.Flags().Float64Var(&x, "x", 50, "Horizontal position in percent of the pitch")
	cmd.Flags().Float64Var(&y, "y", 50, "Vertical position in percent of the pitch")
	cmd.Flags().StringVar(&color, "color", "", "Palette colour (hex or name)")
	return cmd
}

// gesture runs one session on the element and saves the step.
func gesture(cmd *cobra.Command, e *env, stepID, instance string, fn func(ed *editor.Editor, el domain.PlacedElement) error) error {
	id, err := parseInstance(instance)
	if err != nil {
		return err
	}
	var out domain.PlacedElement
	_, err = e.designer.Edit(ctxOf(cmd), stepID, func(ed *editor.Editor) error {
		el, err := lookup(ed, id)
		if err != nil {
			return err
		}
		if err := fn(ed, el); err != nil {
			return err
		}
		out, _ = ed.Element(id)
		return nil
	})
	if err != nil {
		return err
	}
	printElement(cmd, out)
	return nil
}

func elementMoveCmd() *cobra.Command {
	var dx, dy float64
	cmd := &cobra.Command{
		Use:   "move <step-id> <instance-id>",
		Short: "Drag an element by a percentage offset",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if err := finiteFlags(cmd, "dx", "dy"); err != nil {
				return err
			}
			return gesture(cmd, e, args[0], args[1], func(ed *editor.Editor, el domain.PlacedElement) error {
				s, err := ed.BeginDrag(el.InstanceID, cliBox, el.X, el.Y)
				if err != nil {
					return err
				}
				defer s.End()
				return s.Move(el.X+dx, el.Y+dy)
			})
		}),
	}
	cmd.Flags().Float64Var(&dx, "dx", 0, "Horizontal offset in percent")
	cmd.Flags().Float64Var(&dy, "dy", 0, "Vertical offset in percent")
	return cmd
}

func elementResizeCmd() *cobra.Command {
	var dx, dy float64
	var dir string
	cmd := &cobra.Command{
		Use:   "resize <step-id> <instance-id>",
		Short: "Pull a resize handle by a percentage offset",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if err := finiteFlags(cmd, "dx", "dy"); err != nil {
				return err
			}
			d, err := editor.ParseDirection(dir)
			if err != nil {
				return err
			}
			return gesture(cmd, e, args[0], args[1], func(ed *editor.Editor, el domain.PlacedElement) error {
				ed.Select(el.InstanceID)
				s, err := ed.BeginResize(el.InstanceID, d, cliBox, 0, 0)
				if err != nil {
					return err
				}
				defer s.End()
				return s.Move(dx, dy)
			})
		}),
	}
	cmd.Flags().StringVar(&dir, "dir", "se", "Handle: n, ne, e, se, s, sw, w or nw")
	cmd.Flags().Float64Var(&dx, "dx", 0, "Horizontal handle offset in percent")
	cmd.Flags().Float64Var(&dy, "dy", 0, "Vertical handle offset in percent")
	return cmd
}

func elementRotateCmd() *cobra.Command {
	var angle float64
	cmd := &cobra.Command{
		Use:   "rotate <step-id> <instance-id>",
		Short: "Point an element's top at the given angle (degrees, 0 is up)",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if err := finiteFlags(cmd, "angle"); err != nil {
				return err
			}
			return gesture(cmd, e, args[0], args[1], func(ed *editor.Editor, el domain.PlacedElement) error {
				ed.Select(el.InstanceID)
				s, err := ed.BeginRotate(el.InstanceID, cliBox, el.X, el.Y-10)
				if err != nil {
					return err
				}
				defer s.End()
				rad := angle * math.Pi / 180
				return s.Move(el.X+10*math.Sin(rad), el.Y-10*math.Cos(rad))
			})
		}),
	}
	cmd.Flags().Float64Var(&angle, "angle", 0, "Target rotation in degrees")
	return cmd
}

func elementResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <step-id> <instance-id>",
		Short: "Restore an element's default size and rotation",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			return gesture(cmd, e, args[0], args[1], func(ed *editor.Editor, el domain.PlacedElement) error {
				ed.Reset(el.InstanceID)
				return nil
			})
		}),
	}
}

func elementDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <step-id> <instance-id>",
		Short: "Remove an element from a step",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			id, err := parseInstance(args[1])
			if err != nil {
				return err
			}
			_, err = e.designer.Edit(ctxOf(cmd), args[0], func(ed *editor.Editor) error {
				if !ed.Delete(id) {
					return fmt.Errorf("%w: %d", editor.ErrElementNotFound, id)
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted element %d\n", id)
			return nil
		}),
	}
}

func elementClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <step-id>",
		Short: "Remove every element from a step",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			_, err := e.designer.Edit(ctxOf(cmd), args[0], func(ed *editor.Editor) error {
				ed.Clear()
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pitch cleared")
			return nil
		}),
	}
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List placeable assets and palette colours",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			cat := catalog.Default()
			for _, tab := range catalog.Tabs() {
				fmt.Fprintf(w, "[%s]\n", tab)
				for _, t := range cat.Tab(tab) {
					tw, th := t.Size()
					fmt.Fprintf(w, "  %-14s %-16s %gx%g\n", t.ID, t.Label, tw, th)
				}
			}
			fmt.Fprintln(w, "[palette]")
			for _, c := range catalog.Palette() {
				fmt.Fprintf(w, "  %-7s %s\n", c.ID, c.Value)
			}
		},
	}
}
