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
	"fmt"
	"path"
	"strings"
	"sync"

	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
)

type Config struct {
	AndroidDataPath string `json:"android_data_path" env_var:"ANDROID_DATA_PATH"`
	ModsDataPath    string `json:"mods_data_path" env_var:"MODS_DATA_PATH"`
}

type manifest struct {
	mods []*models_mod.Mod
}

type Registry struct {
	mu            sync.Mutex
	config        Config
	fSys          fileSystem
	fileCopies    fileCopyRegistrar
	converter     *Converter
	providers     map[string]Provider
	providerTypes map[string]Provider
	order         []Provider
	app           string
	paths         models_mod.AppPaths
	manifest      *manifest
	mods          []*models_mod.Mod
	libs          []*models_mod.Mod
	dirty         bool
}

func New(fSys fileSystem, fileCopies fileCopyRegistrar, config Config) *Registry {
	return &Registry{
		config:        config,
		fSys:          fSys,
		fileCopies:    fileCopies,
		converter:     NewConverter(),
		providers:     make(map[string]Provider),
		providerTypes: make(map[string]Provider),
	}
}

func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
}

func (r *Registry) RegisterModProvider(provider Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ext := NormalizeExtension(provider.FileExtension())
	if ext == "" {
		return models_error.NewConfigurationError(fmt.Errorf("provider '%s' claims no extension", provider.Type()))
	}
	if existing, ok := r.providers[ext]; ok {
		return models_error.NewConfigurationError(fmt.Errorf("extension '%s' already claimed by provider '%s'", ext, existing.Type()))
	}
	if _, ok := r.providerTypes[provider.Type()]; ok {
		return models_error.NewConfigurationError(fmt.Errorf("provider type '%s' already registered", provider.Type()))
	}
	if cp, ok := provider.(ConfigProvider); ok {
		if err := r.converter.Register(cp); err != nil {
			return err
		}
	}
	r.providers[ext] = provider
	r.providerTypes[provider.Type()] = provider
	r.order = append(r.order, provider)
	logger.Debug("mod provider registered", slog_attr.ProviderKey, provider.Type(), slog_attr.ExtensionKey, ext)
	return nil
}

func (r *Registry) App() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.app
}

// SwitchApp flushes pending manifest changes, resets all state and loads the mods of app.
func (r *Registry) SwitchApp(ctx context.Context, app string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.saveMods(); err != nil {
		logger.Error("saving manifest before app switch failed", slog_attr.AppKey, r.app, slog_attr.ErrorKey, err)
	}
	r.reset()
	r.app = app
	r.paths = models_mod.NewAppPaths(app, r.config.AndroidDataPath, r.config.ModsDataPath)
	if app == "" {
		return nil
	}
	return r.loadModsForCurrentApp(ctx)
}

func (r *Registry) LoadModsForCurrentApp(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadModsForCurrentApp(ctx)
}

func (r *Registry) SaveMods() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveMods()
}

func (r *Registry) ForceSave() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forceSave()
}

// TryParseMod reports false without error when no provider claims the file's extension.
func (r *Registry) TryParseMod(ctx context.Context, filePath string) (models_mod.Mod, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	provider, ok := r.providers[NormalizeExtension(path.Ext(filePath))]
	if !ok {
		return models_mod.Mod{}, false, nil
	}
	if err := r.checkLoaded(); err != nil {
		return models_mod.Mod{}, false, err
	}
	mod, err := provider.LoadFromFile(ctx, r.paths, filePath)
	if err != nil {
		var pe *models_error.ParseError
		if !errors.As(err, &pe) {
			err = models_error.NewParseError(err)
		}
		return models_mod.Mod{}, false, err
	}
	mod.Type = provider.Type()
	if old, _ := r.find(mod.ID); old != nil {
		if err = r.retire(ctx, old, mod.Type); err != nil {
			logger.Warn("retiring previous mod version failed", slog_attr.ModIDKey, old.ID, slog_attr.ErrorKey, err)
		}
		logger.Info("upgrading mod", slog_attr.ModIDKey, mod.ID, slog_attr.VersionKey, mod.VersionString)
	}
	r.modLoaded(mod)
	return *mod, true, nil
}

func (r *Registry) EnableMod(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mod, provider, err := r.lookup(id)
	if err != nil {
		return err
	}
	if mod.IsInstalled {
		return nil
	}
	if err = provider.EnableMod(ctx, r.paths, mod); err != nil {
		return err
	}
	mod.IsInstalled = true
	r.registerFileCopies(mod)
	r.dirty = true
	return nil
}

func (r *Registry) DisableMod(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mod, provider, err := r.lookup(id)
	if err != nil {
		return err
	}
	if !mod.IsInstalled {
		return nil
	}
	if err = provider.DisableMod(ctx, r.paths, mod); err != nil {
		return err
	}
	mod.IsInstalled = false
	r.removeFileCopies(mod)
	r.dirty = true
	return nil
}

func (r *Registry) DeleteMod(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteMod(ctx, id)
}

func (r *Registry) DeleteAllMods(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkLoaded(); err != nil {
		return err
	}
	var ids []string
	for _, mod := range r.manifest.mods {
		ids = append(ids, mod.ID)
	}
	var errs []error
	for _, id := range ids {
		if err := r.deleteMod(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return models_error.NewMultiError(errs)
	}
	return nil
}

func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

func (r *Registry) Mods() []models_mod.Mod {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyMods(r.mods)
}

func (r *Registry) Libraries() []models_mod.Mod {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyMods(r.libs)
}

func (r *Registry) ModsAndLibs() models_mod.ModsAndLibs {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models_mod.ModsAndLibs{
		Mods: copyMods(r.mods),
		Libs: copyMods(r.libs),
	}
}

func (r *Registry) Mod(id string) (models_mod.Mod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mod, _, err := r.lookup(id)
	if err != nil {
		return models_mod.Mod{}, err
	}
	return *mod, nil
}

func (r *Registry) CoverPath(id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mod, provider, err := r.lookup(id)
	if err != nil {
		return "", err
	}
	if cp, ok := provider.(CoverProvider); ok && mod.HasCover {
		if p, ok := cp.CoverPath(r.paths, mod); ok {
			return p, nil
		}
	}
	return "", models_error.NewNotFoundError(fmt.Errorf("mod '%s' has no cover", id))
}

func (r *Registry) loadModsForCurrentApp(ctx context.Context) error {
	if r.app == "" {
		return models_error.NewPreconditionError(errors.New("no app selected"))
	}
	for _, p := range []string{r.paths.ModsPath, r.paths.LibsPath, r.paths.ExtractPath, path.Dir(r.paths.ManifestPath)} {
		if err := r.fSys.MkdirAll(p); err != nil {
			return err
		}
	}
	ok, err := r.fSys.Exists(r.paths.ManifestPath)
	if err != nil {
		return err
	}
	r.manifest = &manifest{}
	r.mods = nil
	r.libs = nil
	for _, provider := range r.order {
		provider.ClearMods()
	}
	if !ok {
		logger.Info("no manifest found, migrating legacy mods", slog_attr.AppKey, r.app)
		r.loadLegacyMods(ctx)
		if err = r.forceSave(); err != nil {
			logger.Error("saving migrated manifest failed", slog_attr.AppKey, r.app, slog_attr.ErrorKey, err)
		}
	} else {
		r.loadManifest()
	}
	for _, provider := range r.order {
		known := r.modsOfType(provider.Type())
		vanished, err := provider.LoadMods(ctx, r.paths, known)
		if err != nil {
			logger.Error("reconciling mods failed", slog_attr.ProviderKey, provider.Type(), slog_attr.ErrorKey, err)
			continue
		}
		for _, mod := range vanished {
			logger.Warn("mod artifacts missing, removing entry", slog_attr.ModIDKey, mod.ID, slog_attr.ProviderKey, provider.Type())
			r.modRemoved(mod)
		}
	}
	logger.Info("mods loaded", slog_attr.AppKey, r.app, slog_attr.CountKey, len(r.manifest.mods))
	return nil
}

func (r *Registry) loadLegacyMods(ctx context.Context) {
	for _, provider := range r.order {
		mods, err := provider.LoadLegacyMods(ctx, r.paths)
		if err != nil {
			logger.Error("loading legacy mods failed", slog_attr.ProviderKey, provider.Type(), slog_attr.ErrorKey, err)
			continue
		}
		for _, mod := range mods {
			mod.Type = provider.Type()
			r.modLoaded(mod)
		}
	}
}

func (r *Registry) loadManifest() {
	data, err := r.fSys.ReadFile(r.paths.ManifestPath)
	if err != nil {
		logger.Error("reading manifest failed", slog_attr.FilePathKey, r.paths.ManifestPath, slog_attr.ErrorKey, err)
		return
	}
	mods, errs, err := r.converter.Decode(data)
	if err != nil {
		logger.Error("decoding manifest failed", slog_attr.FilePathKey, r.paths.ManifestPath, slog_attr.ErrorKey, err)
		return
	}
	for _, e := range errs {
		logger.Warn("skipping manifest entry", slog_attr.AppKey, r.app, slog_attr.ErrorKey, e)
	}
	for _, mod := range mods {
		r.modLoaded(mod)
	}
	r.dirty = false
}

func (r *Registry) saveMods() error {
	if r.manifest == nil {
		logger.Warn("manifest not loaded, skipping save")
		return nil
	}
	if !r.dirty {
		return nil
	}
	data, err := r.converter.Encode(r.app, r.manifest.mods)
	if err != nil {
		return err
	}
	if err = r.fSys.WriteFile(r.paths.ManifestPath, data); err != nil {
		return err
	}
	r.dirty = false
	return nil
}

func (r *Registry) forceSave() error {
	r.dirty = true
	return r.saveMods()
}

func (r *Registry) deleteMod(ctx context.Context, id string) error {
	mod, provider, err := r.lookup(id)
	if err != nil {
		return err
	}
	if err = provider.DeleteMod(ctx, r.paths, mod); err != nil {
		return err
	}
	r.modRemoved(mod)
	return nil
}

// retire removes the installed files of a mod that is being replaced by a new version.
// The extract directory already holds the new version and is left alone.
func (r *Registry) retire(ctx context.Context, old *models_mod.Mod, newType string) error {
	provider, ok := r.providerTypes[old.Type]
	if !ok {
		return nil
	}
	var err error
	if old.IsInstalled {
		err = provider.DisableMod(ctx, r.paths, old)
	}
	if old.Type != newType {
		provider.ForgetMod(old.ID)
	}
	return err
}

func (r *Registry) reset() {
	for _, provider := range r.order {
		provider.ClearMods()
	}
	if r.manifest != nil {
		for _, mod := range r.manifest.mods {
			if mod.IsInstalled {
				r.removeFileCopies(mod)
			}
		}
	}
	r.manifest = nil
	r.mods = nil
	r.libs = nil
	r.dirty = false
}

func (r *Registry) modLoaded(mod *models_mod.Mod) {
	if old, i := r.find(mod.ID); old != nil {
		if old.IsInstalled {
			r.removeFileCopies(old)
		}
		r.manifest.mods[i] = mod
	} else {
		r.manifest.mods = append(r.manifest.mods, mod)
	}
	if mod.IsInstalled {
		r.registerFileCopies(mod)
	}
	r.rebuildViews()
	r.dirty = true
}

func (r *Registry) modRemoved(mod *models_mod.Mod) {
	old, i := r.find(mod.ID)
	if old == nil {
		return
	}
	if old.IsInstalled {
		r.removeFileCopies(old)
	}
	r.manifest.mods = append(r.manifest.mods[:i], r.manifest.mods[i+1:]...)
	r.rebuildViews()
	r.dirty = true
}

func (r *Registry) rebuildViews() {
	r.mods = nil
	r.libs = nil
	for _, mod := range r.manifest.mods {
		if mod.IsLibrary {
			r.libs = append(r.libs, mod)
		} else {
			r.mods = append(r.mods, mod)
		}
	}
}

func (r *Registry) registerFileCopies(mod *models_mod.Mod) {
	for _, t := range uniqueTypes(mod.FileCopyTypes) {
		r.fileCopies.RegisterFileCopy(r.app, t)
	}
}

func (r *Registry) removeFileCopies(mod *models_mod.Mod) {
	for _, t := range uniqueTypes(mod.FileCopyTypes) {
		r.fileCopies.RemoveFileCopy(r.app, t)
	}
}

func (r *Registry) checkLoaded() error {
	if r.manifest == nil {
		return models_error.NewPreconditionError(errors.New("mods not loaded, select an app first"))
	}
	return nil
}

func (r *Registry) find(id string) (*models_mod.Mod, int) {
	if r.manifest == nil {
		return nil, -1
	}
	for i, mod := range r.manifest.mods {
		if mod.ID == id {
			return mod, i
		}
	}
	return nil, -1
}

func (r *Registry) lookup(id string) (*models_mod.Mod, Provider, error) {
	if err := r.checkLoaded(); err != nil {
		return nil, nil, err
	}
	mod, _ := r.find(id)
	if mod == nil {
		return nil, nil, models_error.NewNotFoundError(fmt.Errorf("mod '%s' not found", id))
	}
	provider, ok := r.providerTypes[mod.Type]
	if !ok {
		return nil, nil, models_error.NewInternalError(fmt.Errorf("no provider for mod type '%s'", mod.Type))
	}
	return mod, provider, nil
}

func (r *Registry) modsOfType(t string) []*models_mod.Mod {
	var mods []*models_mod.Mod
	for _, mod := range r.manifest.mods {
		if mod.Type == t {
			mods = append(mods, mod)
		}
	}
	return mods
}

func uniqueTypes(types []string) []string {
	seen := make(map[string]struct{})
	var l []string
	for _, t := range types {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		l = append(l, t)
	}
	return l
}

func copyMods(mods []*models_mod.Mod) []models_mod.Mod {
	l := make([]models_mod.Mod, 0, len(mods))
	for _, mod := range mods {
		m := *mod
		m.FileCopyTypes = append([]string(nil), mod.FileCopyTypes...)
		l = append(l, m)
	}
	return l
}
