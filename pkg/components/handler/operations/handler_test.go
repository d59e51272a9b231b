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

package operations

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type goQueue struct{}

func (goQueue) Enqueue(job Job) error {
	go job.CallTarget(func() {})
	return nil
}

type holdQueue struct {
	mu   sync.Mutex
	jobs []Job
}

func (q *holdQueue) Enqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *holdQueue) runAll() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		job.CallTarget(func() {})
	}
	q.jobs = nil
}

type failQueue struct{}

func (failQueue) Enqueue(_ Job) error {
	return errors.New("queue full")
}

type historyMock struct {
	mu  sync.Mutex
	ops []models_operation.Operation
}

func (m *historyMock) AppendOperation(_ context.Context, op models_operation.Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, op)
	return nil
}

func (m *historyMock) ListOperations(_ context.Context, _ models_operation.HistoryFilter) ([]models_operation.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models_operation.Operation(nil), m.ops...), nil
}

func (m *historyMock) DeleteOperationsBefore(_ context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []models_operation.Operation
	var n int64
	for _, op := range m.ops {
		if op.Completed != nil && op.Completed.Before(t) {
			n++
			continue
		}
		kept = append(kept, op)
	}
	m.ops = kept
	return n, nil
}

type recorderMock struct {
	mu       sync.Mutex
	started  int
	finished int
}

func (m *recorderMock) OperationStarted(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
}

func (m *recorderMock) OperationFinished(_ models_operation.Operation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished++
}

func waitTerminal(t *testing.T, h *Handler, id string) models_operation.Operation {
	var op models_operation.Operation
	require.Eventually(t, func() bool {
		var err error
		op, err = h.Get(id)
		require.NoError(t, err)
		return op.IsTerminal()
	}, time.Second, time.Millisecond*5)
	return op
}

func TestHandler_Create(t *testing.T) {
	history := &historyMock{}
	recorder := &recorderMock{}
	h := New(context.Background(), goQueue{}, history, recorder)
	t.Run("success", func(t *testing.T) {
		id, err := h.Create(models_operation.KindRestoreData, "app", "restore", func(_ context.Context, r models_operation.Reporter) error {
			r.SetProgress(0.5)
			r.SetProgressString("half")
			r.SetCurrentOperation("extracting")
			r.SetResult(models_operation.ResultBackupName, "b1")
			return nil
		})
		require.NoError(t, err)
		op := waitTerminal(t, h, id)
		assert.True(t, op.IsDone)
		assert.False(t, op.IsError)
		assert.False(t, op.IsCanceled)
		assert.False(t, op.IsCancelable)
		assert.Equal(t, 1.0, op.Progress)
		assert.Equal(t, "half", op.ProgressString)
		assert.Equal(t, "extracting", op.CurrentOperation)
		assert.Equal(t, "b1", op.Result[models_operation.ResultBackupName])
		assert.NotNil(t, op.Started)
		assert.NotNil(t, op.Completed)
	})
	t.Run("failure", func(t *testing.T) {
		id, err := h.Create(models_operation.KindRestoreData, "app", "restore", func(_ context.Context, r models_operation.Reporter) error {
			return errors.New("disk full")
		})
		require.NoError(t, err)
		op := waitTerminal(t, h, id)
		assert.False(t, op.IsDone)
		assert.True(t, op.IsError)
		assert.Equal(t, "disk full", op.ErrorText)
	})
	t.Run("unknown kind", func(t *testing.T) {
		_, err := h.Create("unknown", "app", "x", func(context.Context, models_operation.Reporter) error { return nil })
		var iie *models_error.InvalidInputError
		assert.ErrorAs(t, err, &iie)
	})
	t.Run("queue error", func(t *testing.T) {
		h2 := New(context.Background(), failQueue{}, nil, nil)
		_, err := h2.Create(models_operation.KindPatch, "app", "x", func(context.Context, models_operation.Reporter) error { return nil })
		var ie *models_error.InternalError
		assert.ErrorAs(t, err, &ie)
		assert.Empty(t, h2.List(models_operation.Filter{}))
	})
	require.Eventually(t, func() bool {
		ops, _ := h.History(context.Background(), models_operation.HistoryFilter{})
		return len(ops) == 2
	}, time.Second, time.Millisecond*5)
	recorder.mu.Lock()
	assert.Equal(t, 2, recorder.started)
	assert.Equal(t, 2, recorder.finished)
	recorder.mu.Unlock()
}

func TestHandler_Exclusive(t *testing.T) {
	h := New(context.Background(), goQueue{}, nil, nil)
	release := make(chan struct{})
	task := func(_ context.Context, _ models_operation.Reporter) error {
		<-release
		return nil
	}
	id, err := h.Create(models_operation.KindPatch, "app", "patch", task)
	require.NoError(t, err)
	_, err = h.Create(models_operation.KindPatch, "app", "patch", task)
	var ce *models_error.ConflictError
	assert.ErrorAs(t, err, &ce)
	assert.True(t, h.IsActive(models_operation.KindPatch))
	otherID, err := h.Create(models_operation.KindBackupCreate, "app", "backup", task)
	require.NoError(t, err)
	close(release)
	waitTerminal(t, h, id)
	waitTerminal(t, h, otherID)
	assert.False(t, h.IsActive(models_operation.KindPatch))
	_, err = h.Create(models_operation.KindPatch, "app", "patch", func(context.Context, models_operation.Reporter) error { return nil })
	assert.NoError(t, err)
}

func TestHandler_Cancel(t *testing.T) {
	h := New(context.Background(), goQueue{}, nil, nil)
	started := make(chan struct{})
	id, err := h.Create(models_operation.KindDownload, "app", "download", func(ctx context.Context, r models_operation.Reporter) error {
		close(started)
		<-ctx.Done()
		return fmt.Errorf("download interrupted: %w", ctx.Err())
	})
	require.NoError(t, err)
	<-started
	require.NoError(t, h.Cancel(id))
	op := waitTerminal(t, h, id)
	assert.True(t, op.IsDone)
	assert.True(t, op.IsCanceled)
	assert.False(t, op.IsError)
	require.NoError(t, h.Cancel(id))
	t.Run("not cancelable", func(t *testing.T) {
		id, err := h.Create(models_operation.KindRestoreData, "app", "restore", func(context.Context, models_operation.Reporter) error { return nil })
		require.NoError(t, err)
		var iie *models_error.InvalidInputError
		assert.ErrorAs(t, h.Cancel(id), &iie)
	})
	t.Run("unknown", func(t *testing.T) {
		var nfe *models_error.NotFoundError
		assert.ErrorAs(t, h.Cancel("missing"), &nfe)
	})
	t.Run("pending", func(t *testing.T) {
		q := &holdQueue{}
		h2 := New(context.Background(), q, nil, nil)
		called := false
		id, err := h2.Create(models_operation.KindDownload, "app", "download", func(context.Context, models_operation.Reporter) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		require.NoError(t, h2.Cancel(id))
		op, err := h2.Get(id)
		require.NoError(t, err)
		assert.True(t, op.IsCanceled)
		assert.Nil(t, op.Started)
		q.runAll()
		assert.False(t, called)
	})
}

func TestHandler_TerminalSticky(t *testing.T) {
	h := New(context.Background(), goQueue{}, nil, nil)
	reporters := make(chan models_operation.Reporter, 1)
	id, err := h.Create(models_operation.KindRestoreData, "app", "restore", func(_ context.Context, r models_operation.Reporter) error {
		r.SetProgress(models_operation.ProgressIndeterminate)
		reporters <- r
		return nil
	})
	require.NoError(t, err)
	op := waitTerminal(t, h, id)
	assert.Equal(t, models_operation.ProgressIndeterminate, op.Progress)
	r := <-reporters
	r.SetProgress(0.3)
	r.SetProgressString("late")
	r.SetResult("k", "v")
	op2, err := h.Get(id)
	require.NoError(t, err)
	assert.Equal(t, op, op2)
}

func TestHandler_ListLatest(t *testing.T) {
	q := &holdQueue{}
	h := New(context.Background(), q, nil, nil)
	noop := func(context.Context, models_operation.Reporter) error { return nil }
	_, ok := h.Latest(models_operation.KindDownload)
	assert.False(t, ok)
	id1, err := h.Create(models_operation.KindDownload, "a", "d1", noop)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	id2, err := h.Create(models_operation.KindDownload, "b", "d2", noop)
	require.NoError(t, err)
	_, err = h.Create(models_operation.KindRestoreData, "a", "r", noop)
	require.NoError(t, err)
	latest, ok := h.Latest(models_operation.KindDownload)
	require.True(t, ok)
	assert.Equal(t, id2, latest.ID)
	ops := h.List(models_operation.Filter{Kind: models_operation.KindDownload})
	require.Len(t, ops, 2)
	assert.Equal(t, id1, ops[0].ID)
	assert.Len(t, h.List(models_operation.Filter{App: "a"}), 2)
	assert.Len(t, h.List(models_operation.Filter{Active: true}), 3)
	q.runAll()
	assert.Empty(t, h.List(models_operation.Filter{Active: true}))
	_, err = h.Get("missing")
	var nfe *models_error.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestHandler_PurgeOperations(t *testing.T) {
	q := &holdQueue{}
	h := New(context.Background(), q, nil, nil)
	noop := func(context.Context, models_operation.Reporter) error { return nil }
	_, err := h.Create(models_operation.KindDownload, "a", "d1", noop)
	require.NoError(t, err)
	q.runAll()
	pendingID, err := h.Create(models_operation.KindDownload, "a", "d2", noop)
	require.NoError(t, err)
	assert.Equal(t, 0, h.PurgeOperations(time.Hour))
	assert.Equal(t, 1, h.PurgeOperations(0))
	ops := h.List(models_operation.Filter{})
	require.Len(t, ops, 1)
	assert.Equal(t, pendingID, ops[0].ID)
}

func TestHandler_PurgeHistory(t *testing.T) {
	ctx := context.Background()
	n, err := New(ctx, goQueue{}, nil, nil).PurgeHistory(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	completed := time.Now().UTC().Add(-2 * time.Hour)
	history := &historyMock{ops: []models_operation.Operation{{ID: "old", Completed: &completed}, {ID: "new"}}}
	h := New(ctx, goQueue{}, history, nil)
	n, err = h.PurgeHistory(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	ops, err := h.History(ctx, models_operation.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "new", ops[0].ID)
}
