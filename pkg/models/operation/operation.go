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

package operation

import "time"

type Kind = string

const (
	KindPatch        Kind = "patch"
	KindBackupCreate Kind = "backup-create"
	KindRestoreData  Kind = "restore-data"
	KindDownload     Kind = "download"
)

var KindMap = map[Kind]struct{}{
	KindPatch:        {},
	KindBackupCreate: {},
	KindRestoreData:  {},
	KindDownload:     {},
}

const ProgressIndeterminate = -1.0

const ResultBackupName = "backupName"

type Operation struct {
	ID               string            `json:"id"`
	Kind             Kind              `json:"kind"`
	Name             string            `json:"name"`
	App              string            `json:"app"`
	IsDone           bool              `json:"isDone"`
	IsError          bool              `json:"isError"`
	IsCanceled       bool              `json:"isCanceled"`
	IsCancelable     bool              `json:"isCancelable"`
	ErrorText        string            `json:"errorText"`
	Progress         float64           `json:"progress"`
	ProgressString   string            `json:"progressString"`
	CurrentOperation string            `json:"currentOperation"`
	Result           map[string]string `json:"result,omitempty"`
	Created          time.Time         `json:"created"`
	Started          *time.Time        `json:"started"`
	Completed        *time.Time        `json:"completed"`
}

func (o Operation) IsTerminal() bool {
	return o.IsDone || o.IsError
}

type Filter struct {
	Kind     Kind
	App      string
	Active   bool
	SortDesc bool
}

// Reporter is handed to a running task to publish progress.
type Reporter interface {
	SetProgress(fraction float64)
	SetProgressString(s string)
	SetCurrentOperation(s string)
	SetResult(key, value string)
}

type HistoryFilter struct {
	Kind  Kind
	Limit int
}
