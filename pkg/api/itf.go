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

package api

import (
	"context"
	"io"
	"net/http"

	srv_info_hdl "github.com/SENERGY-Platform/go-service-base/srv-info-hdl"
	"github.com/gin-gonic/gin"
	models_backup "github.com/qavs/qavs-mod-manager/pkg/models/backup"
	models_download "github.com/qavs/qavs-mod-manager/pkg/models/download"
	models_file_copy "github.com/qavs/qavs-mod-manager/pkg/models/file_copy"
	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	models_patching "github.com/qavs/qavs-mod-manager/pkg/models/patching"
	models_report "github.com/qavs/qavs-mod-manager/pkg/models/report"
	models_wizard "github.com/qavs/qavs-mod-manager/pkg/models/wizard"
)

type serviceItf interface {
	App(ctx context.Context) string
	ChangeApp(ctx context.Context, app string) error
	Mods(ctx context.Context) models_mod.Status
	Mod(ctx context.Context, id string) (models_mod.Mod, error)
	InstallUpload(ctx context.Context, fileName string, r io.Reader) (models_mod.UploadResult, error)
	EnableMod(ctx context.Context, id string) error
	DisableMod(ctx context.Context, id string) error
	DeleteMod(ctx context.Context, id string) error
	DeleteAllMods(ctx context.Context) error
	ModCoverPath(ctx context.Context, id string) (string, error)
	FileCopyTypes(ctx context.Context) ([]models_file_copy.AvailableType, error)
	FileCopyFiles(ctx context.Context, typeID string) ([]string, error)
	DeleteFileCopyFile(ctx context.Context, typeID, fileName string) error
	PatchingStatus(ctx context.Context) (models_patching.Status, error)
	PatchOptions(ctx context.Context) models_patching.Options
	SetPatchOptions(ctx context.Context, opts models_patching.Options) error
	StartPatch(ctx context.Context) (string, error)
	Backups(ctx context.Context) (models_backup.Backups, error)
	Backup(ctx context.Context, name string) (models_backup.Info, error)
	CreateBackup(ctx context.Context, req models_backup.CreateRequest) (string, error)
	DeleteBackup(ctx context.Context, name string) error
	RestoreBackupApk(ctx context.Context, name string) error
	RestoreBackupData(ctx context.Context, name string) (string, error)
	StartDownload(ctx context.Context, req models_download.Request) (string, error)
	Downloads(ctx context.Context) []models_operation.Operation
	Operations(ctx context.Context, filter models_operation.Filter) []models_operation.Operation
	Operation(ctx context.Context, id string) (models_operation.Operation, error)
	CancelOperation(ctx context.Context, id string) error
	OperationsHistory(ctx context.Context, filter models_operation.HistoryFilter) ([]models_operation.Operation, error)
	DeviceStatus(ctx context.Context) (models_patching.Status, error)
	GrantAccess(ctx context.Context) error
	WizardState(ctx context.Context) models_wizard.State
	WizardSelectBackup(ctx context.Context, name string) error
	WizardStart(ctx context.Context, req models_wizard.StartRequest) (models_wizard.State, error)
	WizardAction(ctx context.Context, action models_wizard.Action) (models_wizard.State, error)
	Report(ctx context.Context) models_report.Report
}

type infoHandler interface {
	ServiceInfo() srv_info_hdl.ServiceInfo
	Version() string
	Name() string
}

type metricsHandler interface {
	Middleware() gin.HandlerFunc
	Handler() http.Handler
}
