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
	"fmt"
	"io"
	"os"
	"path"

	"github.com/google/uuid"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_file_copy "github.com/qavs/qavs-mod-manager/pkg/models/file_copy"
	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
)

func (s *Service) Mods(_ context.Context) models_mod.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models_mod.Status{
		ModsAndLibs: s.registry.ModsAndLibs(),
		Operations:  s.operations.List(models_operation.Filter{Active: true}),
	}
}

func (s *Service) Mod(_ context.Context, id string) (models_mod.Mod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Mod(id)
}

// InstallUpload installs r as mod if a provider claims fileName, otherwise as file of the matching
// copy type.
func (s *Service) InstallUpload(ctx context.Context, fileName string, r io.Reader) (models_mod.UploadResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return models_mod.UploadResult{}, err
	}
	fileName = path.Base(fileName)
	if fileName == "." || fileName == "/" {
		return models_mod.UploadResult{}, models_error.NewInvalidInputError(fmt.Errorf("invalid file name"))
	}
	tmpPath, err := s.storeUpload(fileName, r)
	if err != nil {
		return models_mod.UploadResult{}, err
	}
	defer func() {
		if err := os.RemoveAll(path.Dir(tmpPath)); err != nil {
			logger.Warn("removing upload failed", slog_attr.FilePathKey, tmpPath, slog_attr.ErrorKey, err)
		}
	}()
	mod, ok, err := s.registry.TryParseMod(ctx, tmpPath)
	if err != nil {
		return models_mod.UploadResult{}, err
	}
	if ok {
		defer s.updateModMetrics()
		if err = s.registry.EnableMod(ctx, mod.ID); err != nil {
			return models_mod.UploadResult{}, err
		}
		if err = s.registry.SaveMods(); err != nil {
			return models_mod.UploadResult{}, err
		}
		if mod, err = s.registry.Mod(mod.ID); err != nil {
			return models_mod.UploadResult{}, err
		}
		logger.Info("mod installed", slog_attr.AppKey, app, slog_attr.ModIDKey, mod.ID, slog_attr.VersionKey, mod.VersionString)
		return models_mod.UploadResult{IsMod: true, Mod: &mod}, nil
	}
	copyType, ok := s.otherFiles.TypeForFile(app, fileName)
	if !ok {
		return models_mod.UploadResult{}, models_error.NewInvalidInputError(fmt.Errorf("unsupported file '%s'", fileName))
	}
	dst, err := s.otherFiles.InstallFile(app, copyType.ID, tmpPath, fileName)
	if err != nil {
		return models_mod.UploadResult{}, err
	}
	logger.Info("file copied", slog_attr.AppKey, app, slog_attr.CopyTypeKey, copyType.ID, slog_attr.FilePathKey, dst)
	return models_mod.UploadResult{FileCopyType: copyType.ID, FilePath: dst}, nil
}

func (s *Service) EnableMod(ctx context.Context, id string) error {
	return s.modAction(ctx, id, s.registry.EnableMod)
}

func (s *Service) DisableMod(ctx context.Context, id string) error {
	return s.modAction(ctx, id, s.registry.DisableMod)
}

func (s *Service) DeleteMod(ctx context.Context, id string) error {
	return s.modAction(ctx, id, s.registry.DeleteMod)
}

func (s *Service) DeleteAllMods(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	defer s.updateModMetrics()
	err := s.registry.DeleteAllMods(ctx)
	if sErr := s.registry.SaveMods(); sErr != nil {
		logger.Error("saving manifest failed", slog_attr.ErrorKey, sErr)
		if err == nil {
			err = sErr
		}
	}
	return err
}

func (s *Service) ModCoverPath(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.CoverPath(id)
}

func (s *Service) FileCopyTypes(_ context.Context) ([]models_file_copy.AvailableType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return nil, err
	}
	return s.otherFiles.Types(app), nil
}

func (s *Service) FileCopyFiles(_ context.Context, typeID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return nil, err
	}
	return s.otherFiles.ListFiles(app, typeID)
}

func (s *Service) DeleteFileCopyFile(_ context.Context, typeID, fileName string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return err
	}
	return s.otherFiles.DeleteFile(app, typeID, fileName)
}

func (s *Service) modAction(ctx context.Context, id string, f func(ctx context.Context, id string) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	defer s.updateModMetrics()
	if err := f(ctx, id); err != nil {
		return err
	}
	return s.registry.SaveMods()
}

func (s *Service) storeUpload(fileName string, r io.Reader) (string, error) {
	dirPath := path.Join(s.config.UploadDirPath, uuid.NewString())
	if err := os.MkdirAll(dirPath, 0775); err != nil {
		return "", err
	}
	p := path.Join(dirPath, fileName)
	file, err := os.Create(p)
	if err != nil {
		return "", err
	}
	defer file.Close()
	if _, err = io.Copy(file, r); err != nil {
		return "", err
	}
	return p, nil
}

func (s *Service) updateModMetrics() {
	if s.metrics == nil {
		return
	}
	counts := map[[2]bool]int{
		{false, false}: 0,
		{false, true}:  0,
		{true, false}:  0,
		{true, true}:   0,
	}
	modsAndLibs := s.registry.ModsAndLibs()
	for _, mod := range append(modsAndLibs.Mods, modsAndLibs.Libs...) {
		counts[[2]bool{mod.IsLibrary, mod.IsInstalled}]++
	}
	s.metrics.SetMods(counts)
}
