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

	models_wizard "github.com/qavs/qavs-mod-manager/pkg/models/wizard"
)

func (s *Service) WizardState(_ context.Context) models_wizard.State {
	return s.wizard.State()
}

func (s *Service) WizardSelectBackup(_ context.Context, name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return err
	}
	return s.wizard.Select(app, name)
}

func (s *Service) WizardStart(ctx context.Context, req models_wizard.StartRequest) (models_wizard.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return models_wizard.State{}, err
	}
	return s.wizard.Start(ctx, app, req)
}

func (s *Service) WizardAction(ctx context.Context, action models_wizard.Action) (models_wizard.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wizard.Do(ctx, action)
}
