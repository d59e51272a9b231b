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

type Step string

const (
	StepIdle                Step = ""
	StepConfirmUninstall    Step = "1"
	StepUninstallPending    Step = "2"
	StepInstallApk          Step = "3"
	StepRestoreData         Step = "4"
	StepNoAccess            Step = "4.1"
	StepAlreadyPatched      Step = "4.2"
	StepNoAppData           Step = "5"
	StepFinished            Step = "6"
	StepDownloadCredentials Step = "7"
	StepTokenPassword       Step = "8"
	StepLogin               Step = "9"
	StepRestart             Step = "10"
	StepUpdateAvailable     Step = "11"
	StepNoFolderAccess      Step = "12"
)

type Action string

const (
	ActionUninstall          Action = "uninstall"
	ActionConfirmUninstalled Action = "confirm-uninstalled"
	ActionInstallApk         Action = "install-apk"
	ActionGrantAccess        Action = "grant-access"
	ActionRestoreData        Action = "restore-data"
	ActionSkip               Action = "skip"
	ActionFinish             Action = "finish"
	ActionAbort              Action = "abort"
	ActionCheckFolderAccess  Action = "check-folder-access"
	ActionDownloadLogin      Action = "download-login"
	ActionTokenLogin         Action = "token-login"
	ActionLogin              Action = "login"
	ActionRestart            Action = "restart"
	ActionShowUpdate         Action = "show-update"
)

var ActionMap = map[Action]struct{}{
	ActionUninstall:          {},
	ActionConfirmUninstalled: {},
	ActionInstallApk:         {},
	ActionGrantAccess:        {},
	ActionRestoreData:        {},
	ActionSkip:               {},
	ActionFinish:             {},
	ActionAbort:              {},
	ActionCheckFolderAccess:  {},
	ActionDownloadLogin:      {},
	ActionTokenLogin:         {},
	ActionLogin:              {},
	ActionRestart:            {},
	ActionShowUpdate:         {},
}

// UninstallStatusRemoved is reported by the device when the package is gone without a user prompt.
const UninstallStatusRemoved = 230

type State struct {
	Step           Step   `json:"step"`
	App            string `json:"app"`
	SelectedBackup string `json:"selectedBackup"`
	Message        string `json:"message"`
	IsError        bool   `json:"isError"`
	OperationID    string `json:"operationId,omitempty"`
}

type StartRequest struct {
	RestoreAppDataOnly bool `json:"restoreAppDataOnly"`
}
