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

package backup

import "time"

type Info struct {
	Name            string    `json:"name" yaml:"-"`
	App             string    `json:"app" yaml:"app"`
	AppVersion      string    `json:"appVersion" yaml:"appVersion"`
	ContainsApk     bool      `json:"containsApk" yaml:"containsApk"`
	ContainsAppData bool      `json:"containsAppData" yaml:"containsAppData"`
	IsPatchedApk    bool      `json:"isPatchedApk" yaml:"isPatchedApk"`
	Created         time.Time `json:"created" yaml:"created"`
	Size            uint64    `json:"size" yaml:"-"`
	SizeString      string    `json:"sizeString" yaml:"-"`
}

type Backups struct {
	App              string `json:"app"`
	Backups          []Info `json:"backups"`
	LastRestored     string `json:"lastRestored"`
	TotalSize        uint64 `json:"totalSize"`
	TotalSizeString  string `json:"totalSizeString"`
	BackupInProgress bool   `json:"backupInProgress"`
}

type CreateRequest struct {
	Name        string `json:"name"`
	OnlyAppData bool   `json:"onlyAppData"`
}
