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

package backups

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"code.cloudfoundry.org/bytefmt"
	"github.com/qavs/qavs-mod-manager/pkg/components/fs_util"
	"github.com/qavs/qavs-mod-manager/pkg/components/helper/archive"
	helper_time "github.com/qavs/qavs-mod-manager/pkg/components/helper/time"
	models_backup "github.com/qavs/qavs-mod-manager/pkg/models/backup"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
	"gopkg.in/yaml.v3"
)

const (
	ApkFileName         = "app.apk"
	DataArchiveFileName = "data.tar.gz"
	InfoFileName        = "info.yaml"
	lastRestoredFile    = ".last_restored"
)

type Config struct {
	WorkDirPath string `json:"work_dir_path" env_var:"BACKUPS_WORK_DIR_PATH"`
}

type Handler struct {
	config    Config
	device    deviceHandler
	inspector apkInspector
	fSys      fs_util.FileSystem
	mu        sync.RWMutex
}

func New(config Config, device deviceHandler, inspector apkInspector) *Handler {
	return &Handler{
		config:    config,
		device:    device,
		inspector: inspector,
	}
}

func (h *Handler) List(app string) (models_backup.Backups, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	backups := models_backup.Backups{App: app, Backups: []models_backup.Info{}}
	dirEntries, err := os.ReadDir(h.appPath(app))
	if err != nil && !os.IsNotExist(err) {
		return models_backup.Backups{}, err
	}
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		info, err := h.readInfo(app, dirEntry.Name())
		if err != nil {
			logger.Warn("reading backup info failed", slog_attr.AppKey, app, slog_attr.BackupKey, dirEntry.Name(), slog_attr.ErrorKey, err)
			continue
		}
		backups.Backups = append(backups.Backups, info)
		backups.TotalSize += info.Size
	}
	sort.Slice(backups.Backups, func(i, j int) bool {
		return backups.Backups[i].Created.After(backups.Backups[j].Created)
	})
	backups.TotalSizeString = bytefmt.ByteSize(backups.TotalSize)
	if b, err := os.ReadFile(path.Join(h.appPath(app), lastRestoredFile)); err == nil {
		backups.LastRestored = strings.TrimSpace(string(b))
	}
	return backups, nil
}

func (h *Handler) Info(app, name string) (models_backup.Info, error) {
	if err := ValidateName(name); err != nil {
		return models_backup.Info{}, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.readInfo(app, name)
}

// Prepare creates an empty backup that is filled by the caller.
func (h *Handler) Prepare(app, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.backupPath(app, name)
	ok, err := fs_util.Exists(p)
	if err != nil {
		return "", err
	}
	if ok {
		return "", models_error.NewConflictError(fmt.Errorf("backup '%s' already exists", name))
	}
	if err = os.MkdirAll(p, 0775); err != nil {
		return "", err
	}
	return p, nil
}

// Finalize writes the info file of a prepared backup from its contents.
func (h *Handler) Finalize(app, name, appVersion string) (models_backup.Info, error) {
	p := h.backupPath(app, name)
	info := models_backup.Info{
		Name:       name,
		App:        app,
		AppVersion: appVersion,
		Created:    helper_time.Now(),
	}
	var err error
	if info.ContainsApk, err = fs_util.Exists(path.Join(p, ApkFileName)); err != nil {
		return models_backup.Info{}, err
	}
	if info.ContainsAppData, err = fs_util.Exists(path.Join(p, DataArchiveFileName)); err != nil {
		return models_backup.Info{}, err
	}
	if info.ContainsApk && h.inspector != nil {
		if info.IsPatchedApk, err = h.inspector.IsPatched(path.Join(p, ApkFileName)); err != nil {
			return models_backup.Info{}, err
		}
	}
	data, err := yaml.Marshal(info)
	if err != nil {
		return models_backup.Info{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err = h.fSys.WriteFile(path.Join(p, InfoFileName), data); err != nil {
		return models_backup.Info{}, err
	}
	return h.readInfo(app, name)
}

// Create backs up the installed apk and the app data folder of the app.
func (h *Handler) Create(ctx context.Context, app, name string, onlyAppData bool, reporter models_operation.Reporter) (err error) {
	p, err := h.Prepare(app, name)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rErr := os.RemoveAll(p); rErr != nil {
				logger.Error("removing incomplete backup failed", slog_attr.BackupKey, name, slog_attr.ErrorKey, rErr)
			}
		}
	}()
	version, err := h.device.PackageVersion(ctx, app)
	if err != nil {
		return err
	}
	if !onlyAppData {
		reporter.SetCurrentOperation("backing up apk")
		reporter.SetProgress(models_operation.ProgressIndeterminate)
		apkPath, err := h.device.PackageApkPath(ctx, app)
		if err != nil {
			return err
		}
		if err = fs_util.CopyLocalFile(path.Join(p, ApkFileName), apkPath); err != nil {
			return err
		}
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = h.backupData(app, p, reporter); err != nil {
		return err
	}
	info, err := h.Finalize(app, name, version)
	if err != nil {
		return err
	}
	logger.Info("backup created", slog_attr.AppKey, app, slog_attr.BackupKey, name, "size", info.SizeString)
	return nil
}

func (h *Handler) Delete(app, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.backupPath(app, name)
	ok, err := fs_util.Exists(p)
	if err != nil {
		return err
	}
	if !ok {
		return models_error.NewNotFoundError(fmt.Errorf("backup '%s' not found", name))
	}
	return os.RemoveAll(p)
}

func (h *Handler) RestoreApk(ctx context.Context, app, name string) error {
	info, err := h.Info(app, name)
	if err != nil {
		return err
	}
	if !info.ContainsApk {
		return models_error.NewPreconditionError(fmt.Errorf("backup '%s' contains no apk", name))
	}
	if err = h.device.InstallPackage(ctx, h.ApkPath(app, name)); err != nil {
		return err
	}
	return h.setLastRestored(app, name)
}

// RestoreData replaces the app data folder with the archived one.
func (h *Handler) RestoreData(ctx context.Context, app, name string, reporter models_operation.Reporter) error {
	info, err := h.Info(app, name)
	if err != nil {
		return err
	}
	if !info.ContainsAppData {
		return models_error.NewPreconditionError(fmt.Errorf("backup '%s' contains no app data", name))
	}
	reporter.SetCurrentOperation("restoring app data")
	reporter.SetProgress(models_operation.ProgressIndeterminate)
	file, err := os.Open(path.Join(h.backupPath(app, name), DataArchiveFileName))
	if err != nil {
		return err
	}
	defer file.Close()
	dataPath := h.device.DataPath(app)
	if err = os.RemoveAll(dataPath); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if _, err = archive.ExtractTarGz(file, path.Dir(dataPath)); err != nil {
		return err
	}
	logger.Info("app data restored", slog_attr.AppKey, app, slog_attr.BackupKey, name)
	return h.setLastRestored(app, name)
}

func (h *Handler) ApkPath(app, name string) string {
	return path.Join(h.backupPath(app, name), ApkFileName)
}

func (h *Handler) BackupPath(app, name string) string {
	return h.backupPath(app, name)
}

func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return models_error.NewInvalidInputError(fmt.Errorf("invalid backup name '%s'", name))
	}
	return nil
}

func (h *Handler) backupData(app, backupPath string, reporter models_operation.Reporter) error {
	dataPath := h.device.DataPath(app)
	ok, err := fs_util.Exists(dataPath)
	if err != nil || !ok {
		return err
	}
	total, err := fs_util.DirSize(dataPath)
	if err != nil {
		return err
	}
	reporter.SetCurrentOperation("backing up app data")
	file, err := os.Create(path.Join(backupPath, DataArchiveFileName))
	if err != nil {
		return err
	}
	defer file.Close()
	return archive.CreateTarGz(file, dataPath, app, func(n int64) {
		if total > 0 {
			reporter.SetProgress(float64(n) / float64(total))
		}
		reporter.SetProgressString(bytefmt.ByteSize(uint64(n)) + " / " + bytefmt.ByteSize(total))
	})
}

func (h *Handler) readInfo(app, name string) (models_backup.Info, error) {
	p := h.backupPath(app, name)
	data, err := h.fSys.ReadFile(path.Join(p, InfoFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models_backup.Info{}, models_error.NewNotFoundError(fmt.Errorf("backup '%s' not found", name))
		}
		return models_backup.Info{}, err
	}
	var info models_backup.Info
	if err = yaml.Unmarshal(data, &info); err != nil {
		return models_backup.Info{}, models_error.NewParseError(err)
	}
	info.Name = name
	if info.Size, err = fs_util.DirSize(p); err != nil {
		return models_backup.Info{}, err
	}
	info.SizeString = bytefmt.ByteSize(info.Size)
	return info, nil
}

func (h *Handler) setLastRestored(app, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fSys.WriteFile(path.Join(h.appPath(app), lastRestoredFile), []byte(name))
}

func (h *Handler) appPath(app string) string {
	return path.Join(h.config.WorkDirPath, app)
}

func (h *Handler) backupPath(app, name string) string {
	return path.Join(h.appPath(app), name)
}
