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

	models_patching "github.com/qavs/qavs-mod-manager/pkg/models/patching"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
)

func (s *Service) DeviceStatus(ctx context.Context) (models_patching.Status, error) {
	return s.PatchingStatus(ctx)
}

func (s *Service) GrantAccess(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return err
	}
	if err = s.device.GrantStorageAccess(ctx, app); err != nil {
		return err
	}
	logger.Info("storage access granted", slog_attr.AppKey, app)
	return nil
}
