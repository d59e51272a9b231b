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

package report

import (
	"time"

	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	models_patching "github.com/qavs/qavs-mod-manager/pkg/models/patching"
)

type Report struct {
	ReportID             string                       `json:"reportId"`
	ReportTime           time.Time                    `json:"reportTime"`
	Version              string                       `json:"version"`
	AndroidVersion       string                       `json:"androidVersion"`
	AvailableSpace       uint64                       `json:"availableSpace"`
	AvailableSpaceString string                       `json:"availableSpaceString"`
	AppStatus            models_patching.Status       `json:"appStatus"`
	ModsAndLibs          models_mod.ModsAndLibs       `json:"modsAndLibs"`
	Operations           []models_operation.Operation `json:"operations"`
	Errors               []string                     `json:"errors,omitempty"`
}
