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
	"net/url"

	"github.com/qavs/qavs-mod-manager/pkg/components/handler/backups"
	models_download "github.com/qavs/qavs-mod-manager/pkg/models/download"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
)

func (s *Service) StartDownload(_ context.Context, req models_download.Request) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, err := s.currentApp()
	if err != nil {
		return "", err
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		return "", models_error.NewInvalidInputError(err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", models_error.NewInvalidInputError(errors.New("unsupported url scheme"))
	}
	if err = backups.ValidateName(req.Name); err != nil {
		return "", err
	}
	return s.operations.Create(models_operation.KindDownload, app, req.Name, func(ctx context.Context, reporter models_operation.Reporter) error {
		return s.downloads.Download(ctx, app, req.Name, req.URL, req.AppVersion, reporter)
	})
}

func (s *Service) Downloads(_ context.Context) []models_operation.Operation {
	return s.operations.List(models_operation.Filter{Kind: models_operation.KindDownload})
}
