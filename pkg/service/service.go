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
	"errors"
	"os"
	"sync"

	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
)

type Config struct {
	UploadDirPath string `json:"upload_dir_path" env_var:"UPLOAD_DIR_PATH"`
}

type Service struct {
	mu         sync.RWMutex
	registry   modRegistry
	otherFiles otherFilesHandler
	operations operationsHandler
	device     deviceHandler
	backups    backupsHandler
	patcher    patcherHandler
	downloads  downloadsHandler
	state      stateHandler
	wizard     wizardController
	restorer   *DataRestorer
	metrics    modsRecorder
	version    string
	config     Config
}

type Handlers struct {
	Registry   modRegistry
	OtherFiles otherFilesHandler
	Operations operationsHandler
	Device     deviceHandler
	Backups    backupsHandler
	Patcher    patcherHandler
	Downloads  downloadsHandler
	State      stateHandler
	Wizard     wizardController
	Restorer   *DataRestorer
	Metrics    modsRecorder
}

func New(handlers Handlers, version string, config Config) *Service {
	return &Service{
		registry:   handlers.Registry,
		otherFiles: handlers.OtherFiles,
		operations: handlers.Operations,
		device:     handlers.Device,
		backups:    handlers.Backups,
		patcher:    handlers.Patcher,
		downloads:  handlers.Downloads,
		state:      handlers.State,
		wizard:     handlers.Wizard,
		restorer:   handlers.Restorer,
		metrics:    handlers.Metrics,
		version:    version,
		config:     config,
	}
}

func (s *Service) Init() error {
	if err := os.MkdirAll(s.config.UploadDirPath, 0775); err != nil {
		return err
	}
	s.updateModMetrics()
	return nil
}

func (s *Service) currentApp() (string, error) {
	app := s.state.CurrentApp()
	if app == "" {
		return "", models_error.NewPreconditionError(errors.New("no app selected"))
	}
	return app, nil
}
