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

package service

import (
	"context"

	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
)

func (s *Service) Operations(_ context.Context, filter models_operation.Filter) []models_operation.Operation {
	return s.operations.List(filter)
}

func (s *Service) Operation(_ context.Context, id string) (models_operation.Operation, error) {
	return s.operations.Get(id)
}

func (s *Service) CancelOperation(_ context.Context, id string) error {
	return s.operations.Cancel(id)
}

func (s *Service) OperationsHistory(ctx context.Context, filter models_operation.HistoryFilter) ([]models_operation.Operation, error) {
	return s.operations.History(ctx, filter)
}
