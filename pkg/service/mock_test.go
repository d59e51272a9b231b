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

package service

import (
	"context"
	"errors"
	"path"
	"strconv"
	"sync"

	"github.com/qavs/qavs-mod-manager/pkg/components/handler/operations"
	models_backup "github.com/qavs/qavs-mod-manager/pkg/models/backup"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_file_copy "github.com/qavs/qavs-mod-manager/pkg/models/file_copy"
	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	models_patching "github.com/qavs/qavs-mod-manager/pkg/models/patching"
	models_wizard "github.com/qavs/qavs-mod-manager/pkg/models/wizard"
)

type registryMock struct {
	app      string
	mods     map[string]*models_mod.Mod
	saved    int
	switched []string
}

func newRegistryMock() *registryMock {
	return &registryMock{mods: make(map[string]*models_mod.Mod)}
}

func (m *registryMock) App() string {
	return m.app
}

func (m *registryMock) SwitchApp(_ context.Context, app string) error {
	m.app = app
	m.switched = append(m.switched, app)
	return nil
}

func (m *registryMock) SaveMods() error {
	m.saved++
	return nil
}

func (m *registryMock) TryParseMod(_ context.Context, filePath string) (models_mod.Mod, bool, error) {
	if path.Ext(filePath) != ".qmod" {
		return models_mod.Mod{}, false, nil
	}
	mod := &models_mod.Mod{ID: "test-mod", Name: "Test Mod", VersionString: "1.0.0", Type: "qmod"}
	m.mods[mod.ID] = mod
	return *mod, true, nil
}

func (m *registryMock) EnableMod(_ context.Context, id string) error {
	return m.set(id, true)
}

func (m *registryMock) DisableMod(_ context.Context, id string) error {
	return m.set(id, false)
}

func (m *registryMock) DeleteMod(_ context.Context, id string) error {
	if _, ok := m.mods[id]; !ok {
		return models_error.NewNotFoundError(errors.New("not found"))
	}
	delete(m.mods, id)
	return nil
}

func (m *registryMock) DeleteAllMods(_ context.Context) error {
	m.mods = make(map[string]*models_mod.Mod)
	return nil
}

func (m *registryMock) ModsAndLibs() models_mod.ModsAndLibs {
	var ml models_mod.ModsAndLibs
	for _, mod := range m.mods {
		if mod.IsLibrary {
			ml.Libs = append(ml.Libs, *mod)
		} else {
			ml.Mods = append(ml.Mods, *mod)
		}
	}
	return ml
}

func (m *registryMock) Mod(id string) (models_mod.Mod, error) {
	mod, ok := m.mods[id]
	if !ok {
		return models_mod.Mod{}, models_error.NewNotFoundError(errors.New("not found"))
	}
	return *mod, nil
}

func (m *registryMock) CoverPath(id string) (string, error) {
	if _, ok := m.mods[id]; !ok {
		return "", models_error.NewNotFoundError(errors.New("not found"))
	}
	return "/covers/" + id + ".png", nil
}

func (m *registryMock) set(id string, installed bool) error {
	mod, ok := m.mods[id]
	if !ok {
		return models_error.NewNotFoundError(errors.New("not found"))
	}
	mod.IsInstalled = installed
	return nil
}

type otherFilesMock struct {
	installed map[string]string
}

func (m *otherFilesMock) Types(_ string) []models_file_copy.AvailableType {
	return []models_file_copy.AvailableType{{Type: models_file_copy.Type{ID: "song", Extension: "zip"}, Available: true}}
}

func (m *otherFilesMock) TypeForFile(_ string, fileName string) (models_file_copy.AvailableType, bool) {
	if path.Ext(fileName) == ".zip" {
		return models_file_copy.AvailableType{Type: models_file_copy.Type{ID: "song", Extension: "zip"}, Available: true}, true
	}
	return models_file_copy.AvailableType{}, false
}

func (m *otherFilesMock) InstallFile(_ string, id, _ string, fileName string) (string, error) {
	if m.installed == nil {
		m.installed = make(map[string]string)
	}
	dst := path.Join("/songs", fileName)
	m.installed[id] = dst
	return dst, nil
}

func (m *otherFilesMock) ListFiles(_ string, _ string) ([]string, error) {
	return nil, nil
}

func (m *otherFilesMock) DeleteFile(_ string, _ string, _ string) error {
	return nil
}

type reporterMock struct {
	models_operation.Operation
}

func (r *reporterMock) SetProgress(fraction float64) {
	r.Progress = fraction
}

func (r *reporterMock) SetProgressString(s string) {
	r.ProgressString = s
}

func (r *reporterMock) SetCurrentOperation(s string) {
	r.CurrentOperation = s
}

func (r *reporterMock) SetResult(key, value string) {
	if r.Result == nil {
		r.Result = make(map[string]string)
	}
	r.Result[key] = value
}

// operationsMock runs tasks synchronously.
type operationsMock struct {
	mu     sync.Mutex
	ops    []models_operation.Operation
	active map[models_operation.Kind]bool
}

func (m *operationsMock) Create(kind models_operation.Kind, app, name string, task operations.Task) (string, error) {
	m.mu.Lock()
	id := strconv.Itoa(len(m.ops))
	m.mu.Unlock()
	r := &reporterMock{Operation: models_operation.Operation{ID: id, Kind: kind, App: app, Name: name}}
	if err := task(context.Background(), r); err != nil {
		r.IsError = true
		r.ErrorText = err.Error()
	} else {
		r.IsDone = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, r.Operation)
	return id, nil
}

func (m *operationsMock) Get(id string) (models_operation.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range m.ops {
		if op.ID == id {
			return op, nil
		}
	}
	return models_operation.Operation{}, models_error.NewNotFoundError(errors.New("not found"))
}

func (m *operationsMock) List(filter models_operation.Filter) []models_operation.Operation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var l []models_operation.Operation
	for _, op := range m.ops {
		if filter.Kind != "" && op.Kind != filter.Kind {
			continue
		}
		if filter.Active && op.IsTerminal() {
			continue
		}
		l = append(l, op)
	}
	return l
}

func (m *operationsMock) IsActive(kind models_operation.Kind) bool {
	return m.active[kind]
}

func (m *operationsMock) Cancel(_ string) error {
	return nil
}

func (m *operationsMock) History(_ context.Context, _ models_operation.HistoryFilter) ([]models_operation.Operation, error) {
	return nil, nil
}

type deviceMock struct {
	installed bool
	patched   bool
	granted   []string
}

func (m *deviceMock) IsPackageInstalled(_ context.Context, _ string) (bool, error) {
	return m.installed, nil
}

func (m *deviceMock) PackageApkPath(_ context.Context, app string) (string, error) {
	if !m.installed {
		return "", models_error.NewNotFoundError(errors.New("not installed"))
	}
	return "/data/app/" + app + "/base.apk", nil
}

func (m *deviceMock) PackageVersion(_ context.Context, _ string) (string, error) {
	return "1.2.3", nil
}

func (m *deviceMock) HasStorageAccess(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (m *deviceMock) GrantStorageAccess(_ context.Context, app string) error {
	m.granted = append(m.granted, app)
	return nil
}

func (m *deviceMock) AndroidVersion(_ context.Context) (string, error) {
	return "14", nil
}

func (m *deviceMock) AvailableSpace(_ context.Context) (uint64, error) {
	return 3 << 30, nil
}

type backupsMock struct {
	infos    map[string]models_backup.Info
	created  []string
	deleted  []string
	restored []string
}

func newBackupsMock() *backupsMock {
	return &backupsMock{infos: make(map[string]models_backup.Info)}
}

func (m *backupsMock) List(app string) (models_backup.Backups, error) {
	b := models_backup.Backups{App: app}
	for _, info := range m.infos {
		b.Backups = append(b.Backups, info)
	}
	return b, nil
}

func (m *backupsMock) Info(_ string, name string) (models_backup.Info, error) {
	info, ok := m.infos[name]
	if !ok {
		return models_backup.Info{}, models_error.NewNotFoundError(errors.New("not found"))
	}
	return info, nil
}

func (m *backupsMock) Create(_ context.Context, app, name string, onlyAppData bool, _ models_operation.Reporter) error {
	m.created = append(m.created, name)
	m.infos[name] = models_backup.Info{Name: name, App: app, ContainsApk: !onlyAppData, ContainsAppData: true}
	return nil
}

func (m *backupsMock) Finalize(_ string, name, appVersion string) (models_backup.Info, error) {
	info := m.infos[name]
	info.AppVersion = appVersion
	info.ContainsApk = true
	info.IsPatchedApk = true
	m.infos[name] = info
	return info, nil
}

func (m *backupsMock) Delete(_ string, name string) error {
	m.deleted = append(m.deleted, name)
	delete(m.infos, name)
	return nil
}

func (m *backupsMock) RestoreApk(_ context.Context, _ string, name string) error {
	m.restored = append(m.restored, name)
	return nil
}

func (m *backupsMock) RestoreData(_ context.Context, _ string, name string, _ models_operation.Reporter) error {
	m.restored = append(m.restored, name)
	return nil
}

func (m *backupsMock) ApkPath(app, name string) string {
	return path.Join("/backups", app, name, "app.apk")
}

type patcherMock struct {
	err    error
	inApk  string
	outApk string
}

func (m *patcherMock) Patch(_ context.Context, inApk, outApk string, _ models_patching.Options, reporter models_operation.Reporter) error {
	m.inApk = inApk
	m.outApk = outApk
	reporter.SetProgress(1)
	return m.err
}

func (m *patcherMock) IsPatched(_ string) (bool, error) {
	return false, nil
}

type downloadsMock struct {
	urls []string
}

func (m *downloadsMock) Download(_ context.Context, _ string, _ string, url, _ string, _ models_operation.Reporter) error {
	m.urls = append(m.urls, url)
	return nil
}

type stateMock struct {
	app  string
	opts models_patching.Options
}

func (m *stateMock) CurrentApp() string {
	return m.app
}

func (m *stateMock) SetCurrentApp(app string) error {
	m.app = app
	return nil
}

func (m *stateMock) PatchOptions() models_patching.Options {
	return m.opts
}

func (m *stateMock) SetPatchOptions(opts models_patching.Options) error {
	m.opts = opts
	return nil
}

type wizardMock struct {
	state   models_wizard.State
	actions []models_wizard.Action
}

func (m *wizardMock) Select(app, backup string) error {
	m.state.App = app
	m.state.SelectedBackup = backup
	return nil
}

func (m *wizardMock) Start(_ context.Context, _ string, _ models_wizard.StartRequest) (models_wizard.State, error) {
	m.state.Step = models_wizard.StepConfirmUninstall
	return m.state, nil
}

func (m *wizardMock) Do(_ context.Context, action models_wizard.Action) (models_wizard.State, error) {
	m.actions = append(m.actions, action)
	if action == models_wizard.ActionAbort {
		m.state.Step = models_wizard.StepIdle
	}
	return m.state, nil
}

func (m *wizardMock) State() models_wizard.State {
	return m.state
}

func (m *wizardMock) PatchFinished(app, backup string) {
	m.state = models_wizard.State{Step: models_wizard.StepConfirmUninstall, App: app, SelectedBackup: backup}
}

type recorderMock struct {
	counts map[[2]bool]int
}

func (m *recorderMock) SetMods(counts map[[2]bool]int) {
	m.counts = counts
}

type testHandlers struct {
	registry   *registryMock
	otherFiles *otherFilesMock
	operations *operationsMock
	device     *deviceMock
	backups    *backupsMock
	patcher    *patcherMock
	downloads  *downloadsMock
	state      *stateMock
	wizard     *wizardMock
	recorder   *recorderMock
}

func newTestService(uploadDir string) (*Service, testHandlers) {
	h := testHandlers{
		registry:   newRegistryMock(),
		otherFiles: &otherFilesMock{},
		operations: &operationsMock{active: make(map[models_operation.Kind]bool)},
		device:     &deviceMock{installed: true},
		backups:    newBackupsMock(),
		patcher:    &patcherMock{},
		downloads:  &downloadsMock{},
		state:      &stateMock{app: "com.beatgames.beatsaber"},
		wizard:     &wizardMock{},
		recorder:   &recorderMock{},
	}
	srv := New(Handlers{
		Registry:   h.registry,
		OtherFiles: h.otherFiles,
		Operations: h.operations,
		Device:     h.device,
		Backups:    h.backups,
		Patcher:    h.patcher,
		Downloads:  h.downloads,
		State:      h.state,
		Wizard:     h.wizard,
		Restorer:   NewDataRestorer(h.operations, h.backups),
		Metrics:    h.recorder,
	}, "v1.0.0", Config{UploadDirPath: uploadDir})
	return srv, h
}
