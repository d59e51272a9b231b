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

package so

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/qavs/qavs-mod-manager/pkg/components/fs_util"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
	"gopkg.in/yaml.v3"
)

const (
	Type           = "so"
	Extension      = "so"
	elfMimeType    = "application/x-elf"
	unknownVersion = "0.0.0"
	// archiveDescriptor marks a directory extracted from a mod archive.
	archiveDescriptor = "mod.json"
)

type Details struct {
	FileName string
}

type entry struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	IsLibrary bool   `yaml:"isLibrary"`
	Installed bool   `yaml:"installed"`
	FileName  string `yaml:"fileName"`
}

// Provider manages raw native libraries that are dropped into the mods or libs directory.
type Provider struct {
	mods map[string]*models_mod.Mod
	mu   sync.RWMutex
}

func New() *Provider {
	return &Provider{mods: make(map[string]*models_mod.Mod)}
}

func (p *Provider) Type() string {
	return Type
}

func (p *Provider) FileExtension() string {
	return Extension
}

func (p *Provider) LoadFromFile(_ context.Context, paths models_mod.AppPaths, filePath string) (*models_mod.Mod, error) {
	if err := checkElf(filePath); err != nil {
		return nil, models_error.NewParseError(err)
	}
	fileName := path.Base(filePath)
	mod := newMod(fileName, false)
	storePath := paths.ModExtractPath(mod.ID)
	if err := os.RemoveAll(storePath); err != nil {
		return nil, err
	}
	if err := fs_util.CopyLocalFile(path.Join(storePath, fileName), filePath); err != nil {
		return nil, err
	}
	p.set(mod)
	return mod, nil
}

// LoadLegacyMods adopts libraries found in the mods and libs directories that no extracted archive provides.
func (p *Provider) LoadLegacyMods(_ context.Context, paths models_mod.AppPaths) ([]*models_mod.Mod, error) {
	claimed, err := claimedFiles(paths.ExtractPath)
	if err != nil {
		return nil, err
	}
	var mods []*models_mod.Mod
	for _, src := range []struct {
		dir       string
		isLibrary bool
	}{
		{dir: paths.ModsPath},
		{dir: paths.LibsPath, isLibrary: true},
	} {
		dirEntries, err := os.ReadDir(src.dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, dirEntry := range dirEntries {
			name := dirEntry.Name()
			if dirEntry.IsDir() || !strings.EqualFold(path.Ext(name), "."+Extension) {
				continue
			}
			if _, ok := claimed[name]; ok {
				continue
			}
			mod := newMod(name, src.isLibrary)
			if _, ok := p.get(mod.ID); ok {
				continue
			}
			if err = fs_util.CopyLocalFile(path.Join(paths.ModExtractPath(mod.ID), name), path.Join(src.dir, name)); err != nil {
				logger.Warn("adopting legacy library failed", slog_attr.FileKey, name, slog_attr.ErrorKey, err)
				continue
			}
			mod.IsInstalled = true
			p.set(mod)
			mods = append(mods, mod)
		}
	}
	return mods, nil
}

func (p *Provider) LoadMods(_ context.Context, paths models_mod.AppPaths, mods []*models_mod.Mod) ([]*models_mod.Mod, error) {
	var vanished []*models_mod.Mod
	for _, mod := range mods {
		ok, err := fs_util.Exists(storedFile(paths, mod))
		if err != nil {
			return nil, err
		}
		if !ok {
			vanished = append(vanished, mod)
			continue
		}
		p.set(mod)
	}
	return vanished, nil
}

func (p *Provider) EnableMod(_ context.Context, paths models_mod.AppPaths, mod *models_mod.Mod) error {
	return fs_util.CopyLocalFile(installedFile(paths, mod), storedFile(paths, mod))
}

func (p *Provider) DisableMod(_ context.Context, paths models_mod.AppPaths, mod *models_mod.Mod) error {
	if err := os.Remove(installedFile(paths, mod)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *Provider) DeleteMod(ctx context.Context, paths models_mod.AppPaths, mod *models_mod.Mod) error {
	if mod.IsInstalled {
		if err := p.DisableMod(ctx, paths, mod); err != nil {
			return err
		}
	}
	if err := os.RemoveAll(paths.ModExtractPath(mod.ID)); err != nil {
		return err
	}
	p.ForgetMod(mod.ID)
	return nil
}

func (p *Provider) ForgetMod(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.mods, id)
}

func (p *Provider) ClearMods() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mods = make(map[string]*models_mod.Mod)
}

func (p *Provider) DecodeEntry(yn *yaml.Node) (*models_mod.Mod, error) {
	var e entry
	if err := yn.Decode(&e); err != nil {
		return nil, err
	}
	if e.FileName == "" {
		e.FileName = e.ID + "." + Extension
	}
	return &models_mod.Mod{
		ID:            e.ID,
		Name:          e.Name,
		VersionString: e.Version,
		IsLibrary:     e.IsLibrary,
		IsInstalled:   e.Installed,
		Details:       &Details{FileName: e.FileName},
	}, nil
}

func (p *Provider) EncodeEntry(mod *models_mod.Mod) (any, error) {
	return entry{
		ID:        mod.ID,
		Name:      mod.Name,
		Version:   mod.VersionString,
		IsLibrary: mod.IsLibrary,
		Installed: mod.IsInstalled,
		FileName:  fileName(mod),
	}, nil
}

func (p *Provider) set(mod *models_mod.Mod) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mods[mod.ID] = mod
}

func (p *Provider) get(id string) (*models_mod.Mod, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	mod, ok := p.mods[id]
	return mod, ok
}

func newMod(fileName string, isLibrary bool) *models_mod.Mod {
	id := strings.ToLower(strings.TrimSuffix(fileName, path.Ext(fileName)))
	return &models_mod.Mod{
		ID:            id,
		Name:          id,
		VersionString: unknownVersion,
		IsLibrary:     isLibrary,
		Type:          Type,
		Details:       &Details{FileName: fileName},
	}
}

func fileName(mod *models_mod.Mod) string {
	if details, ok := mod.Details.(*Details); ok && details.FileName != "" {
		return details.FileName
	}
	return mod.ID + "." + Extension
}

func storedFile(paths models_mod.AppPaths, mod *models_mod.Mod) string {
	return path.Join(paths.ModExtractPath(mod.ID), fileName(mod))
}

func installedFile(paths models_mod.AppPaths, mod *models_mod.Mod) string {
	if mod.IsLibrary {
		return path.Join(paths.LibsPath, fileName(mod))
	}
	return path.Join(paths.ModsPath, fileName(mod))
}

// claimedFiles lists the file names shipped by extracted archives, identified by their descriptor.
func claimedFiles(extractPath string) (map[string]struct{}, error) {
	claimed := make(map[string]struct{})
	dirEntries, err := os.ReadDir(extractPath)
	if err != nil {
		if os.IsNotExist(err) {
			return claimed, nil
		}
		return nil, err
	}
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		dirPath := path.Join(extractPath, dirEntry.Name())
		if ok, _ := fs_util.Exists(path.Join(dirPath, archiveDescriptor)); !ok {
			continue
		}
		err = filepath.WalkDir(dirPath, func(_ string, de fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !de.IsDir() {
				claimed[de.Name()] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return claimed, nil
}

func checkElf(filePath string) error {
	mType, err := mimetype.DetectFile(filePath)
	if err != nil {
		return err
	}
	for m := mType; m != nil; m = m.Parent() {
		if m.Is(elfMimeType) {
			return nil
		}
	}
	return fmt.Errorf("invalid file type '%s'", mType.String())
}
