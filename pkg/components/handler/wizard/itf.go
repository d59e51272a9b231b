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

package wizard

import (
	"context"

	models_backup "github.com/qavs/qavs-mod-manager/pkg/models/backup"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
)

type Device interface {
	IsPackageInstalled(ctx context.Context, app string) (bool, error)
	HasStorageAccess(ctx context.Context, app string) (bool, error)
	GrantStorageAccess(ctx context.Context, app string) error
	UninstallPackage(ctx context.Context, app string) (int, error)
	HasFolderAccess(app string) bool
}

type Backups interface {
	Info(app, name string) (models_backup.Info, error)
	RestoreApk(ctx context.Context, app, name string) error
}

type Operations interface {
	IsActive(kind models_operation.Kind) bool
	Get(id string) (models_operation.Operation, error)
}

// DataRestorer starts the operation restoring the app data of a backup.
type DataRestorer interface {
	StartRestoreData(app, name string) (string, error)
}
