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
	"strings"

	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
	models_wizard "github.com/qavs/qavs-mod-manager/pkg/models/wizard"
)

func (s *Service) App(_ context.Context) string {
	return s.state.CurrentApp()
}

// LoadApp loads the mods of the persisted current app.
func (s *Service) LoadApp(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.updateModMetrics()
	return s.registry.SwitchApp(ctx, s.state.CurrentApp())
}

// ChangeApp switches the managed app. Running patch or backup operations block the switch.
func (s *Service) ChangeApp(ctx context.Context, app string) error {
	app = strings.TrimSpace(app)
	if app == "" || strings.ContainsAny(app, `/\`) || strings.HasPrefix(app, ".") {
		return models_error.NewInvalidInputError(errors.New("invalid app id"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if app == s.state.CurrentApp() {
		return nil
	}
	for _, kind := range []models_operation.Kind{models_operation.KindPatch, models_operation.KindBackupCreate, models_operation.KindRestoreData} {
		if s.operations.IsActive(kind) {
			return models_error.NewConflictError(errors.New("operation in progress"))
		}
	}
	if s.wizard.State().Step != models_wizard.StepIdle {
		if _, err := s.wizard.Do(ctx, models_wizard.ActionAbort); err != nil {
			logger.Warn("aborting restore wizard failed", slog_attr.ErrorKey, err)
		}
	}
	defer s.updateModMetrics()
	if err := s.registry.SwitchApp(ctx, app); err != nil {
		return err
	}
	if err := s.state.SetCurrentApp(app); err != nil {
		return err
	}
	logger.Info("app changed", slog_attr.AppKey, app)
	return nil
}
