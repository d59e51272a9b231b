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

package patching

type Options struct {
	Permissions         []string `json:"permissions" yaml:"permissions"`
	Debug               bool     `json:"debug" yaml:"debug"`
	HandTracking        bool     `json:"handTracking" yaml:"handTracking"`
	HandTrackingVersion int      `json:"handTrackingVersion" yaml:"handTrackingVersion"`
	ExternalStorage     bool     `json:"externalStorage" yaml:"externalStorage"`
}

type Status struct {
	App          string `json:"app"`
	IsInstalled  bool   `json:"isInstalled"`
	HasAccess    bool   `json:"hasAccess"`
	Version      string `json:"version"`
	IsPatched    bool   `json:"isPatched"`
	CanBePatched bool   `json:"canBePatched"`
}

type Result struct {
	// BackupName names the backup that must be restored to finish patching.
	BackupName string
}
