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
	"sync"
	"time"

	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
)

type operation struct {
	mu    sync.RWMutex
	meta  models_operation.Operation
	task  Task
	ctx   context.Context
	cFunc context.CancelFunc
	onEnd func(models_operation.Operation)
}

func (o *operation) CallTarget(cbk func()) {
	defer cbk()
	o.mu.Lock()
	if o.meta.IsTerminal() {
		o.mu.Unlock()
		return
	}
	t := time.Now().UTC()
	o.meta.Started = &t
	o.mu.Unlock()
	err := o.task(o.ctx, o)
	o.finish(err)
}

func (o *operation) IsCanceled() bool {
	return o.ctx.Err() != nil
}

// cancel stops the task, an operation that has not started yet ends right away.
func (o *operation) cancel() {
	o.cFunc()
	o.mu.RLock()
	pending := o.meta.Started == nil
	o.mu.RUnlock()
	if pending {
		o.finish(context.Canceled)
	}
}

func (o *operation) finish(err error) {
	o.mu.Lock()
	if o.meta.IsTerminal() {
		o.mu.Unlock()
		return
	}
	o.meta.IsDone = true
	if err != nil {
		if errors.Is(err, context.Canceled) && o.ctx.Err() != nil {
			o.meta.IsCanceled = true
		} else {
			o.meta.IsDone = false
			o.meta.IsError = true
			o.meta.ErrorText = err.Error()
		}
	} else if o.meta.Progress >= 0 {
		o.meta.Progress = 1
	}
	t := time.Now().UTC()
	o.meta.Completed = &t
	meta := o.metaCopy()
	o.mu.Unlock()
	o.cFunc()
	if o.onEnd != nil {
		o.onEnd(meta)
	}
}

func (o *operation) SetProgress(fraction float64) {
	if fraction != models_operation.ProgressIndeterminate {
		fraction = min(max(fraction, 0), 1)
	}
	o.update(func(m *models_operation.Operation) {
		m.Progress = fraction
	})
}

func (o *operation) SetProgressString(s string) {
	o.update(func(m *models_operation.Operation) {
		m.ProgressString = s
	})
}

func (o *operation) SetCurrentOperation(s string) {
	o.update(func(m *models_operation.Operation) {
		m.CurrentOperation = s
	})
}

func (o *operation) SetResult(key, value string) {
	o.update(func(m *models_operation.Operation) {
		if m.Result == nil {
			m.Result = make(map[string]string)
		}
		m.Result[key] = value
	})
}

func (o *operation) update(f func(m *models_operation.Operation)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.meta.IsTerminal() {
		return
	}
	f(&o.meta)
}

func (o *operation) Meta() models_operation.Operation {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.metaCopy()
}

func (o *operation) metaCopy() models_operation.Operation {
	meta := o.meta
	if o.meta.Result != nil {
		meta.Result = make(map[string]string, len(o.meta.Result))
		for k, v := range o.meta.Result {
			meta.Result[k] = v
		}
	}
	return meta
}
