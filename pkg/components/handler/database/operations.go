/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"encoding/json"
	"time"

	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
)

const selectFromOperationsStatement = "SELECT id, kind, name, app, is_done, is_error, is_canceled, error_text, result, created, completed FROM operations"

func (h *Handler) AppendOperation(ctx context.Context, op models_operation.Operation) error {
	result, err := json.Marshal(op.Result)
	if err != nil {
		return err
	}
	completed := time.Now().UTC()
	if op.Completed != nil {
		completed = op.Completed.UTC()
	}
	_, err = h.sqlDB.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO operations (id, kind, name, app, is_done, is_error, is_canceled, error_text, result, created, completed) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		op.ID,
		op.Kind,
		op.Name,
		op.App,
		op.IsDone,
		op.IsError,
		op.IsCanceled,
		op.ErrorText,
		string(result),
		op.Created.UTC().Format(timeLayout),
		completed.Format(timeLayout),
	)
	return err
}

// ListOperations returns finished operations, newest first.
func (h *Handler) ListOperations(ctx context.Context, filter models_operation.HistoryFilter) ([]models_operation.Operation, error) {
	var fc []string
	var val []any
	if filter.Kind != "" {
		fc = append(fc, "kind = ?")
		val = append(val, filter.Kind)
	}
	stmt := selectFromOperationsStatement + genFilter(fc) + " ORDER BY completed DESC"
	if filter.Limit > 0 {
		stmt += " LIMIT ?"
		val = append(val, filter.Limit)
	}
	rows, err := h.sqlDB.QueryContext(ctx, stmt+";", val...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ops []models_operation.Operation
	for rows.Next() {
		var op models_operation.Operation
		var result, ct, cpt string
		err = rows.Scan(&op.ID, &op.Kind, &op.Name, &op.App, &op.IsDone, &op.IsError, &op.IsCanceled, &op.ErrorText, &result, &ct, &cpt)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal([]byte(result), &op.Result); err != nil {
			return nil, err
		}
		if op.Created, err = time.Parse(timeLayout, ct); err != nil {
			return nil, err
		}
		completed, err := time.Parse(timeLayout, cpt)
		if err != nil {
			return nil, err
		}
		op.Completed = &completed
		if op.IsDone && !op.IsCanceled {
			op.Progress = 1
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// DeleteOperationsBefore removes history entries completed before t.
func (h *Handler) DeleteOperationsBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := h.sqlDB.ExecContext(ctx, "DELETE FROM operations WHERE completed < ?;", t.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
