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
	"time"

	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
)

// Job is the unit handed to a Queue, it matches the job contract of the cc job handler.
type Job interface {
	CallTarget(cbk func())
	IsCanceled() bool
}

type Queue interface {
	Enqueue(job Job) error
}

// Task is the work of an operation. Returning an error that wraps context.Canceled after the
// operation was canceled marks it as canceled instead of failed.
type Task func(ctx context.Context, reporter models_operation.Reporter) error

type historyStore interface {
	AppendOperation(ctx context.Context, op models_operation.Operation) error
	ListOperations(ctx context.Context, filter models_operation.HistoryFilter) ([]models_operation.Operation, error)
	DeleteOperationsBefore(ctx context.Context, t time.Time) (int64, error)
}

type metricsRecorder interface {
	OperationStarted(kind string)
	OperationFinished(op models_operation.Operation)
}
