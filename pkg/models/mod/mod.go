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

package mod

import (
	"path"

	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
)

type Mod struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
	VersionString string   `json:"versionString"`
	IsLibrary     bool     `json:"isLibrary"`
	IsInstalled   bool     `json:"isInstalled"`
	HasCover      bool     `json:"hasCover"`
	FileCopyTypes []string `json:"fileCopyTypes"`
	// Type is the discriminator of the owning provider.
	Type string `json:"type"`
	// Details carries provider specific data and is only read by the owning provider.
	Details any `json:"-"`
}

type AppPaths struct {
	App          string
	ModsPath     string
	LibsPath     string
	ExtractPath  string
	ManifestPath string
}

const ManifestFileName = "mods_status.yaml"

func NewAppPaths(app, androidDataPath, modsDataPath string) AppPaths {
	return AppPaths{
		App:          app,
		ModsPath:     path.Join(androidDataPath, app, "files", "mods"),
		LibsPath:     path.Join(androidDataPath, app, "files", "libs"),
		ExtractPath:  path.Join(modsDataPath, app, "installedMods"),
		ManifestPath: path.Join(modsDataPath, app, ManifestFileName),
	}
}

func (p AppPaths) ModExtractPath(id string) string {
	return path.Join(p.ExtractPath, id)
}

type ModsAndLibs struct {
	Mods []Mod `json:"mods"`
	Libs []Mod `json:"libs"`
}

type Status struct {
	ModsAndLibs
	Operations []models_operation.Operation `json:"operations"`
}

// UploadResult describes what an uploaded file was installed as.
type UploadResult struct {
	IsMod        bool   `json:"isMod"`
	Mod          *Mod   `json:"mod,omitempty"`
	FileCopyType string `json:"fileCopyType,omitempty"`
	FilePath     string `json:"filePath,omitempty"`
}
