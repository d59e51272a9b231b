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

package mod_registry

import (
	"context"

	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	"gopkg.in/yaml.v3"
)

// Provider owns parsing, extraction and deletion for one mod file format.
type Provider interface {
	Type() string
	FileExtension() string
	LoadFromFile(ctx context.Context, paths models_mod.AppPaths, filePath string) (*models_mod.Mod, error)
	LoadLegacyMods(ctx context.Context, paths models_mod.AppPaths) ([]*models_mod.Mod, error)
	// LoadMods reconciles known mods with the disk and returns the mods whose artifacts are gone.
	LoadMods(ctx context.Context, paths models_mod.AppPaths, mods []*models_mod.Mod) ([]*models_mod.Mod, error)
	EnableMod(ctx context.Context, paths models_mod.AppPaths, mod *models_mod.Mod) error
	DisableMod(ctx context.Context, paths models_mod.AppPaths, mod *models_mod.Mod) error
	DeleteMod(ctx context.Context, paths models_mod.AppPaths, mod *models_mod.Mod) error
	// ForgetMod drops a mod from the provider's bookkeeping without touching any files.
	ForgetMod(id string)
	ClearMods()
}

type ConfigProvider interface {
	Provider
	DecodeEntry(yn *yaml.Node) (*models_mod.Mod, error)
	EncodeEntry(mod *models_mod.Mod) (any, error)
}

type CoverProvider interface {
	CoverPath(paths models_mod.AppPaths, mod *models_mod.Mod) (string, bool)
}

type fileCopyRegistrar interface {
	RegisterFileCopy(app, copyType string)
	RemoveFileCopy(app, copyType string)
}

type fileSystem interface {
	MkdirAll(p string) error
	ReadFile(p string) ([]byte, error)
	WriteFile(p string, data []byte) error
	Exists(p string) (bool, error)
}
