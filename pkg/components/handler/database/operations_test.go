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
	"path"
	"testing"
	"time"

	"github.com/qavs/qavs-mod-manager/pkg/components/handler/database/schema"
	helper_sql_db "github.com/qavs/qavs-mod-manager/pkg/components/helper/sql_db"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	sqlDB, err := helper_sql_db.NewSQLiteDatabase(path.Join(t.TempDir(), "db", "test.db"), helper_sql_db.Config{MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	h := New(sqlDB)
	require.NoError(t, h.Migrate(context.Background(), schema.Init))
	require.NoError(t, h.Migrate(context.Background(), schema.Init))
	require.NoError(t, h.Ping(context.Background()))
	return h
}

func TestHandler_Operations(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ops := []models_operation.Operation{
		{ID: "1", Kind: models_operation.KindPatch, Name: "patch", App: "app", IsDone: true, Result: map[string]string{models_operation.ResultBackupName: "b1"}},
		{ID: "2", Kind: models_operation.KindDownload, Name: "download", App: "app", IsDone: true, IsCanceled: true},
		{ID: "3", Kind: models_operation.KindPatch, Name: "patch", App: "app", IsError: true, ErrorText: "failed"},
	}
	for i, op := range ops {
		op.Created = base.Add(time.Duration(i) * time.Minute)
		completed := op.Created.Add(time.Second)
		op.Completed = &completed
		require.NoError(t, h.AppendOperation(ctx, op))
	}
	all, err := h.ListOperations(ctx, models_operation.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].ID)
	assert.True(t, all[0].IsError)
	assert.Equal(t, "failed", all[0].ErrorText)
	assert.Equal(t, "1", all[2].ID)
	assert.Equal(t, "b1", all[2].Result[models_operation.ResultBackupName])
	assert.Equal(t, 1.0, all[2].Progress)
	assert.Equal(t, base, all[2].Created)
	patches, err := h.ListOperations(ctx, models_operation.HistoryFilter{Kind: models_operation.KindPatch, Limit: 1})
	require.NoError(t, err)
	require.Len(t, patches, 1)
	assert.Equal(t, "3", patches[0].ID)
	n, err := h.DeleteOperationsBefore(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	all, err = h.ListOperations(ctx, models_operation.HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
