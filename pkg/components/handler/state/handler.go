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

package state

import (
	"errors"
	"os"
	"sync"

	models_patching "github.com/qavs/qavs-mod-manager/pkg/models/patching"
	"gopkg.in/yaml.v3"
)

type fileSystem interface {
	ReadFile(p string) ([]byte, error)
	WriteFile(p string, data []byte) error
}

type State struct {
	CurrentApp   string                  `yaml:"currentApp"`
	PatchOptions models_patching.Options `yaml:"patchOptions"`
}

type Config struct {
	FilePath   string `json:"file_path" env_var:"STATE_FILE_PATH"`
	DefaultApp string `json:"default_app" env_var:"STATE_DEFAULT_APP"`
}

// Handler persists the settings that survive restarts.
type Handler struct {
	fSys   fileSystem
	config Config
	state  State
	mu     sync.RWMutex
}

func New(fSys fileSystem, config Config) *Handler {
	return &Handler{
		fSys:   fSys,
		config: config,
		state:  State{CurrentApp: config.DefaultApp},
	}
}

// Load reads the state file, a missing file keeps the defaults.
func (h *Handler) Load() error {
	data, err := h.fSys.ReadFile(h.config.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	state := State{CurrentApp: h.config.DefaultApp}
	if err = yaml.Unmarshal(data, &state); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = state
	return nil
}

func (h *Handler) CurrentApp() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.CurrentApp
}

func (h *Handler) SetCurrentApp(app string) error {
	return h.update(func(s *State) {
		s.CurrentApp = app
	})
}

func (h *Handler) PatchOptions() models_patching.Options {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.PatchOptions
}

func (h *Handler) SetPatchOptions(opts models_patching.Options) error {
	return h.update(func(s *State) {
		s.PatchOptions = opts
	})
}

func (h *Handler) update(f func(s *State)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	state := h.state
	f(&state)
	data, err := yaml.Marshal(state)
	if err != nil {
		return err
	}
	if err = h.fSys.WriteFile(h.config.FilePath, data); err != nil {
		return err
	}
	h.state = state
	return nil
}
