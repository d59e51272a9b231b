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

	"github.com/qavs/qavs-mod-manager/pkg/components/handler/backups"
	models_backup "github.com/qavs/qavs-mod-manager/pkg/models/backup"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
)

func (s *Service) Backups(_ context.Context) (models_backup.Backups, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return models_backup.Backups{}, err
	}
	list, err := s.backups.List(app)
	if err != nil {
		return models_backup.Backups{}, err
	}
	list.BackupInProgress = s.operations.IsActive(models_operation.KindBackupCreate)
	return list, nil
}

func (s *Service) Backup(_ context.Context, name string) (models_backup.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return models_backup.Info{}, err
	}
	return s.backups.Info(app, name)
}

func (s *Service) CreateBackup(ctx context.Context, req models_backup.CreateRequest) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return "", err
	}
	if err = backups.ValidateName(req.Name); err != nil {
		return "", err
	}
	if _, err = s.backups.Info(app, req.Name); err == nil {
		return "", models_error.NewConflictError(errors.New("backup already exists"))
	}
	installed, err := s.device.IsPackageInstalled(ctx, app)
	if err != nil {
		return "", err
	}
	if !installed {
		return "", models_error.NewPreconditionError(errors.New("app not installed"))
	}
	return s.operations.Create(models_operation.KindBackupCreate, app, req.Name, func(ctx context.Context, reporter models_operation.Reporter) error {
		return s.backups.Create(ctx, app, req.Name, req.OnlyAppData, reporter)
	})
}

func (s *Service) DeleteBackup(_ context.Context, name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return err
	}
	return s.backups.Delete(app, name)
}

func (s *Service) RestoreBackupApk(ctx context.Context, name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return err
	}
	return s.backups.RestoreApk(ctx, app, name)
}

func (s *Service) RestoreBackupData(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return "", err
	}
	return s.restorer.StartRestoreData(app, name)
}
