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
	"errors"
	"path"
	"strings"
	"sync"

	"github.com/qavs/qavs-mod-manager/pkg/components/fs_util"
	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	"gopkg.in/yaml.v3"
)

type providerMock struct {
	typ       string
	ext       string
	parsed    map[string]*models_mod.Mod
	legacy    []*models_mod.Mod
	vanished  map[string]struct{}
	loaded    map[string]*models_mod.Mod
	enabled   []string
	disabled  []string
	deleted   []string
	forgotten []string
	cleared   int
	parseErr  error
	enableErr error
}

func newProviderMock(typ, ext string) *providerMock {
	return &providerMock{
		typ:      typ,
		ext:      ext,
		parsed:   make(map[string]*models_mod.Mod),
		vanished: make(map[string]struct{}),
		loaded:   make(map[string]*models_mod.Mod),
	}
}

func (p *providerMock) Type() string {
	return p.typ
}

func (p *providerMock) FileExtension() string {
	return p.ext
}

func (p *providerMock) LoadFromFile(_ context.Context, _ models_mod.AppPaths, filePath string) (*models_mod.Mod, error) {
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	name := strings.ToLower(strings.TrimSuffix(path.Base(filePath), path.Ext(filePath)))
	mod, ok := p.parsed[name]
	if !ok {
		return nil, errors.New("invalid file")
	}
	m := *mod
	p.loaded[m.ID] = &m
	return &m, nil
}

func (p *providerMock) LoadLegacyMods(_ context.Context, _ models_mod.AppPaths) ([]*models_mod.Mod, error) {
	var mods []*models_mod.Mod
	for _, mod := range p.legacy {
		m := *mod
		p.loaded[m.ID] = &m
		mods = append(mods, &m)
	}
	return mods, nil
}

func (p *providerMock) LoadMods(_ context.Context, _ models_mod.AppPaths, mods []*models_mod.Mod) ([]*models_mod.Mod, error) {
	var vanished []*models_mod.Mod
	for _, mod := range mods {
		if _, ok := p.vanished[mod.ID]; ok {
			vanished = append(vanished, mod)
			continue
		}
		p.loaded[mod.ID] = mod
	}
	return vanished, nil
}

func (p *providerMock) EnableMod(_ context.Context, _ models_mod.AppPaths, mod *models_mod.Mod) error {
	if p.enableErr != nil {
		return p.enableErr
	}
	p.enabled = append(p.enabled, mod.ID)
	return nil
}

func (p *providerMock) DisableMod(_ context.Context, _ models_mod.AppPaths, mod *models_mod.Mod) error {
	p.disabled = append(p.disabled, mod.ID)
	return nil
}

func (p *providerMock) DeleteMod(_ context.Context, _ models_mod.AppPaths, mod *models_mod.Mod) error {
	p.deleted = append(p.deleted, mod.ID)
	delete(p.loaded, mod.ID)
	return nil
}

func (p *providerMock) ForgetMod(id string) {
	p.forgotten = append(p.forgotten, id)
	delete(p.loaded, id)
}

func (p *providerMock) ClearMods() {
	p.cleared++
	p.loaded = make(map[string]*models_mod.Mod)
}

type entryMock struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Version       string   `yaml:"version"`
	IsLibrary     bool     `yaml:"isLibrary"`
	Installed     bool     `yaml:"installed"`
	FileCopyTypes []string `yaml:"fileCopyTypes"`
}

func (p *providerMock) DecodeEntry(yn *yaml.Node) (*models_mod.Mod, error) {
	var e entryMock
	if err := yn.Decode(&e); err != nil {
		return nil, err
	}
	return &models_mod.Mod{
		ID:            e.ID,
		Name:          e.Name,
		VersionString: e.Version,
		IsLibrary:     e.IsLibrary,
		IsInstalled:   e.Installed,
		FileCopyTypes: e.FileCopyTypes,
	}, nil
}

func (p *providerMock) EncodeEntry(mod *models_mod.Mod) (any, error) {
	return entryMock{
		ID:            mod.ID,
		Name:          mod.Name,
		Version:       mod.VersionString,
		IsLibrary:     mod.IsLibrary,
		Installed:     mod.IsInstalled,
		FileCopyTypes: mod.FileCopyTypes,
	}, nil
}

type fileCopiesMock struct {
	mu       sync.Mutex
	counts   map[string]int
	negative bool
}

func newFileCopiesMock() *fileCopiesMock {
	return &fileCopiesMock{counts: make(map[string]int)}
}

func (m *fileCopiesMock) RegisterFileCopy(app, copyType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[app+"/"+copyType]++
}

func (m *fileCopiesMock) RemoveFileCopy(app, copyType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[app+"/"+copyType]--
	if m.counts[app+"/"+copyType] < 0 {
		m.negative = true
	}
}

func (m *fileCopiesMock) count(app, copyType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[app+"/"+copyType]
}

type countingFS struct {
	fs_util.FileSystem
	writes int
}

func (f *countingFS) WriteFile(p string, data []byte) error {
	f.writes++
	return f.FileSystem.WriteFile(p, data)
}
