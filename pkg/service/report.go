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

	"code.cloudfoundry.org/bytefmt"
	"github.com/google/uuid"
	helper_time "github.com/qavs/qavs-mod-manager/pkg/components/helper/time"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	models_report "github.com/qavs/qavs-mod-manager/pkg/models/report"
)

func (s *Service) Report(ctx context.Context) models_report.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report := models_report.Report{
		ReportID:    uuid.NewString(),
		ReportTime:  helper_time.Now(),
		Version:     s.version,
		ModsAndLibs: s.registry.ModsAndLibs(),
		Operations:  s.operations.List(models_operation.Filter{}),
	}
	var err error
	if report.AndroidVersion, err = s.device.AndroidVersion(ctx); err != nil {
		report.Errors = append(report.Errors, err.Error())
	}
	if report.AvailableSpace, err = s.device.AvailableSpace(ctx); err != nil {
		report.Errors = append(report.Errors, err.Error())
	} else {
		report.AvailableSpaceString = bytefmt.ByteSize(report.AvailableSpace)
	}
	app, err := s.currentApp()
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}
	if report.AppStatus, err = s.appStatus(ctx, app); err != nil {
		report.AppStatus.App = app
		report.Errors = append(report.Errors, err.Error())
	}
	return report
}
