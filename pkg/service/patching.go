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

	helper_time "github.com/qavs/qavs-mod-manager/pkg/components/helper/time"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	models_patching "github.com/qavs/qavs-mod-manager/pkg/models/patching"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
)

const patchBackupSuffix = "_before_patch"

func (s *Service) PatchingStatus(ctx context.Context) (models_patching.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return models_patching.Status{}, err
	}
	return s.appStatus(ctx, app)
}

func (s *Service) PatchOptions(_ context.Context) models_patching.Options {
	return s.state.PatchOptions()
}

func (s *Service) SetPatchOptions(_ context.Context, opts models_patching.Options) error {
	if opts.HandTrackingVersion < 0 {
		return models_error.NewInvalidInputError(errors.New("invalid hand tracking version"))
	}
	return s.state.SetPatchOptions(opts)
}

// StartPatch backs up the app data into a new backup and writes the patched apk into it. The
// restore wizard is opened for the backup once the operation succeeds.
func (s *Service) StartPatch(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return "", err
	}
	status, err := s.appStatus(ctx, app)
	if err != nil {
		return "", err
	}
	if !status.IsInstalled {
		return "", models_error.NewPreconditionError(errors.New("app not installed"))
	}
	opts := s.state.PatchOptions()
	name := helper_time.Now().Format("2006-01-02_15-04-05") + patchBackupSuffix
	return s.operations.Create(models_operation.KindPatch, app, name, func(ctx context.Context, reporter models_operation.Reporter) error {
		if err := s.patch(ctx, app, name, opts, reporter); err != nil {
			return err
		}
		reporter.SetResult(models_operation.ResultBackupName, name)
		s.wizard.PatchFinished(app, name)
		return nil
	})
}

func (s *Service) patch(ctx context.Context, app, name string, opts models_patching.Options, reporter models_operation.Reporter) (err error) {
	version, err := s.device.PackageVersion(ctx, app)
	if err != nil {
		return err
	}
	apkPath, err := s.device.PackageApkPath(ctx, app)
	if err != nil {
		return err
	}
	if err = s.backups.Create(ctx, app, name, true, reporter); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if dErr := s.backups.Delete(app, name); dErr != nil {
				logger.Error("removing backup of failed patch failed", slog_attr.BackupKey, name, slog_attr.ErrorKey, dErr)
			}
		}
	}()
	reporter.SetCurrentOperation("patching apk")
	if err = s.patcher.Patch(ctx, apkPath, s.backups.ApkPath(app, name), opts, reporter); err != nil {
		return err
	}
	info, err := s.backups.Finalize(app, name, version)
	if err != nil {
		return err
	}
	if !info.IsPatchedApk {
		return errors.New("patched apk not recognized as patched")
	}
	logger.Info("apk patched", slog_attr.AppKey, app, slog_attr.BackupKey, name)
	return nil
}

func (s *Service) appStatus(ctx context.Context, app string) (models_patching.Status, error) {
	status := models_patching.Status{App: app}
	var err error
	if status.IsInstalled, err = s.device.IsPackageInstalled(ctx, app); err != nil {
		return models_patching.Status{}, err
	}
	if !status.IsInstalled {
		return status, nil
	}
	if status.HasAccess, err = s.device.HasStorageAccess(ctx, app); err != nil {
		return models_patching.Status{}, err
	}
	if status.Version, err = s.device.PackageVersion(ctx, app); err != nil {
		return models_patching.Status{}, err
	}
	apkPath, err := s.device.PackageApkPath(ctx, app)
	if err != nil {
		return models_patching.Status{}, err
	}
	if status.IsPatched, err = s.patcher.IsPatched(apkPath); err != nil {
		return models_patching.Status{}, err
	}
	status.CanBePatched = !status.IsPatched
	return status, nil
}
