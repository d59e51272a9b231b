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

	"github.com/qavs/qavs-mod-manager/pkg/components/handler/operations"
	models_backup "github.com/qavs/qavs-mod-manager/pkg/models/backup"
	models_file_copy "github.com/qavs/qavs-mod-manager/pkg/models/file_copy"
	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	models_patching "github.com/qavs/qavs-mod-manager/pkg/models/patching"
	models_wizard "github.com/qavs/qavs-mod-manager/pkg/models/wizard"
)

type modRegistry interface {
	App() string
	SwitchApp(ctx context.Context, app string) error
	SaveMods() error
	TryParseMod(ctx context.Context, filePath string) (models_mod.Mod, bool, error)
	EnableMod(ctx context.Context, id string) error
	DisableMod(ctx context.Context, id string) error
	DeleteMod(ctx context.Context, id string) error
	DeleteAllMods(ctx context.Context) error
	ModsAndLibs() models_mod.ModsAndLibs
	Mod(id string) (models_mod.Mod, error)
	CoverPath(id string) (string, error)
}

type otherFilesHandler interface {
	Types(app string) []models_file_copy.AvailableType
	TypeForFile(app, fileName string) (models_file_copy.AvailableType, bool)
	InstallFile(app, id, srcPath, fileName string) (string, error)
	ListFiles(app, id string) ([]string, error)
	DeleteFile(app, id, fileName string) error
}

type operationsHandler interface {
	Create(kind models_operation.Kind, app, name string, task operations.Task) (string, error)
	Get(id string) (models_operation.Operation, error)
	List(filter models_operation.Filter) []models_operation.Operation
	IsActive(kind models_operation.Kind) bool
	Cancel(id string) error
	History(ctx context.Context, filter models_operation.HistoryFilter) ([]models_operation.Operation, error)
}

type deviceHandler interface {
	IsPackageInstalled(ctx context.Context, app string) (bool, error)
	PackageApkPath(ctx context.Context, app string) (string, error)
	PackageVersion(ctx context.Context, app string) (string, error)
	HasStorageAccess(ctx context.Context, app string) (bool, error)
	GrantStorageAccess(ctx context.Context, app string) error
	AndroidVersion(ctx context.Context) (string, error)
	AvailableSpace(ctx context.Context) (uint64, error)
}

type backupsHandler interface {
	List(app string) (models_backup.Backups, error)
	Info(app, name string) (models_backup.Info, error)
	Create(ctx context.Context, app, name string, onlyAppData bool, reporter models_operation.Reporter) error
	Finalize(app, name, appVersion string) (models_backup.Info, error)
	Delete(app, name string) error
	RestoreApk(ctx context.Context, app, name string) error
	RestoreData(ctx context.Context, app, name string, reporter models_operation.Reporter) error
	ApkPath(app, name string) string
}

type patcherHandler interface {
	Patch(ctx context.Context, inApk, outApk string, opts models_patching.Options, reporter models_operation.Reporter) error
	IsPatched(apkPath string) (bool, error)
}

type downloadsHandler interface {
	Download(ctx context.Context, app, name, url, appVersion string, reporter models_operation.Reporter) error
}

type stateHandler interface {
	CurrentApp() string
	SetCurrentApp(app string) error
	PatchOptions() models_patching.Options
	SetPatchOptions(opts models_patching.Options) error
}

type wizardController interface {
	Select(app, backup string) error
	Start(ctx context.Context, app string, req models_wizard.StartRequest) (models_wizard.State, error)
	Do(ctx context.Context, action models_wizard.Action) (models_wizard.State, error)
	State() models_wizard.State
	PatchFinished(app, backup string)
}

type modsRecorder interface {
	SetMods(counts map[[2]bool]int)
}
