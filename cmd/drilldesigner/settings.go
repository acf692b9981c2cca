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
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"drilldesigner/internal/config"
	"drilldesigner/internal/storage"
)

var configKeys = []string{
	"general.data_dir",
	"general.telemetry_opt_in",
	"storage.backend",
	"storage.path",
	"server.addr",
	"server.allowed_origins",
	"server.rate_limit_rps",
	"logging.level",
	"logging.format",
	"logging.source",
	"logging.file",
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change the configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, dsn, err := config.Load()
				if err != nil {
					return err
				}
				path, _ := config.ConfigPath()
				b, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "# %s\n%s", path, b)
				fmt.Fprintf(w, "# storage path: %s\n", cfg.StoragePath())
				if dsn != "" {
					fmt.Fprintln(w, "# postgres dsn: set")
				}
				for _, k := range configKeys {
					if env, ok := config.EnvOverrideFor(k); ok {
						fmt.Fprintf(w, "# %s overridden by %s\n", k, env)
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "set-dsn <dsn>",
			Short: "Store the Postgres DSN in the OS keyring",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := config.Load()
				if err != nil {
					return err
				}
				if err := config.Save(cfg, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "DSN saved")
				return nil
			},
		},
		&cobra.Command{
			Use:   "forget-dsn",
			Short: "Remove the stored Postgres DSN",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := config.ForgetDSN(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "DSN removed")
				return nil
			},
		},
	)
	return cmd
}

func historyCmd() *cobra.Command {
	var limit, keep int
	cmd := &cobra.Command{
		Use:   "history <step-id>",
		Short: "Show saved layouts of a step (sqlite backend)",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			sp, ok := e.opened.Persister.(*storage.SQLitePersister)
			if !ok {
				return errors.New("layout history needs the sqlite storage backend")
			}
			ctx := ctxOf(cmd)
			if keep > 0 {
				n, err := sp.PruneLayoutHistory(ctx, args[0], keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d snapshots\n", n)
			}
			snaps, err := sp.ListLayoutHistory(ctx, args[0], limit)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved layouts")
				return nil
			}
			for _, s := range snaps {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %d items\n", s.TS.Local().Format(time.DateTime), len(s.Elements))
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum snapshots to show")
	cmd.Flags().IntVar(&keep, "keep", 0, "Prune to the newest N snapshots first")
	return cmd
}
