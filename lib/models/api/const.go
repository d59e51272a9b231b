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

const (
	HeaderRequestID = "X-Request-ID"
	HeaderApiVer    = "X-Api-Version"
	HeaderSrvName   = "X-Service"
)

const (
	InfoPath              = "info"
	ReportPath            = "report"
	MetricsPath           = "metrics"
	AppPath               = "app"
	ModsPath              = "mods"
	ModEnablePath         = "enable"
	ModDisablePath        = "disable"
	ModCoverPath          = "cover"
	FileCopyTypesPath     = "file_copy_types"
	PatchingPath          = "patching"
	PatchingStatusPath    = "status"
	PatchingOptionsPath   = "options"
	PatchingOperationPath = "operation"
	BackupsPath           = "backups"
	BackupRestoreAppPath  = "restore_app"
	BackupRestoreDataPath = "restore_data"
	OperationsPath        = "operations"
	OperationsHistoryPath = "history"
	OperationsCancelPath  = "cancel"
	DownloadsPath         = "downloads"
	DevicePath            = "device"
	DeviceAccessPath      = "access"
	WizardPath            = "wizard"
	WizardStartPath       = "start"
	WizardActionsPath     = "actions"
	WizardAbortPath       = "abort"
	WizardBackupPath      = "backup"
)
