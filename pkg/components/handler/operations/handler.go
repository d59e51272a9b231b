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
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
)

const historyTimeout = 5 * time.Second

var exclusiveKinds = map[models_operation.Kind]struct{}{
	models_operation.KindPatch:        {},
	models_operation.KindBackupCreate: {},
}

var cancelableKinds = map[models_operation.Kind]struct{}{
	models_operation.KindDownload: {},
}

type Handler struct {
	mu         sync.RWMutex
	ctx        context.Context
	queue      Queue
	history    historyStore
	recorder   metricsRecorder
	operations map[string]*operation
}

// New creates a Handler, history and recorder are optional.
func New(ctx context.Context, queue Queue, history historyStore, recorder metricsRecorder) *Handler {
	return &Handler{
		ctx:        ctx,
		queue:      queue,
		history:    history,
		recorder:   recorder,
		operations: make(map[string]*operation),
	}
}

func (h *Handler) Create(kind models_operation.Kind, app, name string, task Task) (string, error) {
	if _, ok := models_operation.KindMap[kind]; !ok {
		return "", models_error.NewInvalidInputError(fmt.Errorf("unknown operation kind '%s'", kind))
	}
	uid, err := uuid.NewRandom()
	if err != nil {
		return "", models_error.NewInternalError(err)
	}
	id := uid.String()
	ctx, cf := context.WithCancel(h.ctx)
	_, cancelable := cancelableKinds[kind]
	op := &operation{
		meta: models_operation.Operation{
			ID:           id,
			Kind:         kind,
			Name:         name,
			App:          app,
			IsCancelable: cancelable,
			Created:      time.Now().UTC(),
		},
		task:  task,
		ctx:   ctx,
		cFunc: cf,
		onEnd: h.operationEnded,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := exclusiveKinds[kind]; ok {
		for _, o := range h.operations {
			if m := o.Meta(); m.Kind == kind && !m.IsTerminal() {
				cf()
				return "", models_error.NewConflictError(fmt.Errorf("%s operation '%s' still running", kind, m.ID))
			}
		}
	}
	if err = h.queue.Enqueue(op); err != nil {
		cf()
		return "", models_error.NewInternalError(err)
	}
	h.operations[id] = op
	if h.recorder != nil {
		h.recorder.OperationStarted(kind)
	}
	logger.Debug("operation created", slog_attr.OperationIDKey, id, slog_attr.KindKey, kind, slog_attr.AppKey, app)
	return id, nil
}

func (h *Handler) Get(id string) (models_operation.Operation, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	op, ok := h.operations[id]
	if !ok {
		return models_operation.Operation{}, models_error.NewNotFoundError(fmt.Errorf("operation '%s' not found", id))
	}
	return op.Meta(), nil
}

// Latest returns the most recently created operation of a kind.
func (h *Handler) Latest(kind models_operation.Kind) (models_operation.Operation, bool) {
	ops := h.List(models_operation.Filter{Kind: kind, SortDesc: true})
	if len(ops) == 0 {
		return models_operation.Operation{}, false
	}
	return ops[0], true
}

func (h *Handler) List(filter models_operation.Filter) []models_operation.Operation {
	var ops []models_operation.Operation
	h.mu.RLock()
	for _, v := range h.operations {
		if m := v.Meta(); check(filter, m) {
			ops = append(ops, m)
		}
	}
	h.mu.RUnlock()
	if filter.SortDesc {
		sort.Slice(ops, func(i, j int) bool {
			return ops[i].Created.After(ops[j].Created)
		})
	} else {
		sort.Slice(ops, func(i, j int) bool {
			return ops[i].Created.Before(ops[j].Created)
		})
	}
	return ops
}

// IsActive reports whether a non-terminal operation of the kind exists.
func (h *Handler) IsActive(kind models_operation.Kind) bool {
	return len(h.List(models_operation.Filter{Kind: kind, Active: true})) > 0
}

func (h *Handler) Cancel(id string) error {
	h.mu.RLock()
	op, ok := h.operations[id]
	h.mu.RUnlock()
	if !ok {
		return models_error.NewNotFoundError(fmt.Errorf("operation '%s' not found", id))
	}
	m := op.Meta()
	if !m.IsCancelable {
		return models_error.NewInvalidInputError(fmt.Errorf("%s operation can not be canceled", m.Kind))
	}
	if m.IsTerminal() {
		return nil
	}
	op.cancel()
	logger.Info("operation canceled", slog_attr.OperationIDKey, id, slog_attr.KindKey, m.Kind)
	return nil
}

func (h *Handler) History(ctx context.Context, filter models_operation.HistoryFilter) ([]models_operation.Operation, error) {
	if h.history == nil {
		return nil, nil
	}
	return h.history.ListOperations(ctx, filter)
}

// PurgeOperations drops terminal operations completed longer than maxAge ago.
func (h *Handler) PurgeOperations(maxAge time.Duration) int {
	var l []string
	tNow := time.Now().UTC()
	h.mu.RLock()
	for k, v := range h.operations {
		m := v.Meta()
		if m.IsTerminal() && m.Completed != nil && tNow.Sub(*m.Completed) >= maxAge {
			l = append(l, k)
		}
	}
	h.mu.RUnlock()
	h.mu.Lock()
	for _, id := range l {
		delete(h.operations, id)
	}
	h.mu.Unlock()
	return len(l)
}

// PurgeHistory removes history entries completed longer than maxAge ago.
func (h *Handler) PurgeHistory(ctx context.Context, maxAge time.Duration) (int64, error) {
	if h.history == nil {
		return 0, nil
	}
	return h.history.DeleteOperationsBefore(ctx, time.Now().UTC().Add(-maxAge))
}

// RunPurger purges operations and history every interval until ctx is done.
func (h *Handler) RunPurger(ctx context.Context, interval, maxAge, historyMaxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.PurgeOperations(maxAge); n > 0 {
				logger.Debug("operations purged", slog_attr.CountKey, n)
			}
			n, err := h.PurgeHistory(ctx, historyMaxAge)
			if err != nil {
				logger.Error("purging operation history failed", slog_attr.ErrorKey, err)
			} else if n > 0 {
				logger.Debug("operation history purged", slog_attr.CountKey, n)
			}
		}
	}
}

func (h *Handler) operationEnded(m models_operation.Operation) {
	switch {
	case m.IsError:
		logger.Error("operation failed", slog_attr.OperationIDKey, m.ID, slog_attr.KindKey, m.Kind, slog_attr.ErrorKey, m.ErrorText)
	case m.IsCanceled:
		logger.Info("operation ended", slog_attr.OperationIDKey, m.ID, slog_attr.KindKey, m.Kind, "canceled", true)
	default:
		logger.Info("operation ended", slog_attr.OperationIDKey, m.ID, slog_attr.KindKey, m.Kind)
	}
	if h.recorder != nil {
		h.recorder.OperationFinished(m)
	}
	if h.history != nil {
		ctx, cf := context.WithTimeout(context.Background(), historyTimeout)
		defer cf()
		if err := h.history.AppendOperation(ctx, m); err != nil {
			logger.Error("appending operation to history failed", slog_attr.OperationIDKey, m.ID, slog_attr.ErrorKey, err)
		}
	}
}

func check(filter models_operation.Filter, op models_operation.Operation) bool {
	if filter.Kind != "" && op.Kind != filter.Kind {
		return false
	}
	if filter.App != "" && op.App != filter.App {
		return false
	}
	if filter.Active && op.IsTerminal() {
		return false
	}
	return true
}
