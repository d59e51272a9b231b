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

// DataRestorer starts app data restore operations for the wizard and the backups api.
type DataRestorer struct {
	operations operationsHandler
	backups    backupsHandler
}

func NewDataRestorer(operations operationsHandler, backups backupsHandler) *DataRestorer {
	return &DataRestorer{
		operations: operations,
		backups:    backups,
	}
}

func (r *DataRestorer) StartRestoreData(app, name string) (string, error) {
	if _, err := r.backups.Info(app, name); err != nil {
		return "", err
	}
	return r.operations.Create(models_operation.KindRestoreData, app, name, func(ctx context.Context, reporter models_operation.Reporter) error {
		return r.backups.RestoreData(ctx, app, name, reporter)
	})
}
