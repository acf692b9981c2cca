/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"drilldesigner/internal/domain"
	"drilldesigner/internal/store"
)

// language=SQL
// dialect=SQLite
const insertLayoutSQL = `INSERT INTO layout_history(drill_id, step_id, ts, elements) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listLayoutSQL = `SELECT ts, elements FROM layout_history WHERE step_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneLayoutSQL = `DELETE FROM layout_history WHERE step_id = ? AND id NOT IN (
	SELECT id FROM layout_history WHERE step_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// LayoutSnapshot is one saved version of a step's pitch layout.
type LayoutSnapshot struct {
	TS       time.Time
	Elements []domain.PlacedElement
}

func recordLayoutChanges(ctx context.Context, tx *sql.Tx, prev, next []byte, ts time.Time) error {
	nd, err := store.Decode(next)
	if err != nil {
		// Not a drill document; nothing to record.
		return nil
	}
	old := map[string][]byte{}
	if pd, err := store.Decode(prev); err == nil && len(prev) > 0 && pd.ID == nd.ID {
		for _, st := range pd.Steps {
			if st.CanvasData != nil {
				b, _ := json.Marshal(st.CanvasData.Elements)
				old[st.ID] = b
			}
		}
	}
	for _, st := range nd.Steps {
		if st.CanvasData == nil {
			continue
		}
		b, err := json.Marshal(st.CanvasData.Elements)
		if err != nil {
			return fmt.Errorf("encode layout %s: %w", st.ID, err)
		}
		if pb, ok := old[st.ID]; ok && bytes.Equal(pb, b) {
			continue
		}
		if _, err := tx.ExecContext(ctx, insertLayoutSQL, nd.ID, st.ID, ts.Format(tsLayout), b); err != nil {
			return fmt.Errorf("record layout %s: %w", st.ID, err)
		}
	}
	return nil
}

// ListLayoutHistory returns up to limit saved layouts of a step, newest first.
func (s *SQLitePersister) ListLayoutHistory(ctx context.Context, stepID string, limit int) ([]LayoutSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, listLayoutSQL, stepID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []LayoutSnapshot
	for rows.Next() {
		var tsStr string
		var blob []byte
		if err := rows.Scan(&tsStr, &blob); err != nil {
			return nil, err
		}
		var snap LayoutSnapshot
		snap.TS, _ = time.Parse(tsLayout, tsStr)
		if err := json.Unmarshal(blob, &snap.Elements); err != nil {
			return nil, fmt.Errorf("decode layout: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// PruneLayoutHistory keeps the newest keep snapshots of a step.
func (s *SQLitePersister) PruneLayoutHistory(ctx context.Context, stepID string, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, pruneLayoutSQL, stepID, stepID, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
