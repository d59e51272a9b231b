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

package other_files

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/qavs/qavs-mod-manager/pkg/components/fs_util"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_file_copy "github.com/qavs/qavs-mod-manager/pkg/models/file_copy"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
	"gopkg.in/yaml.v3"
)

type Config struct {
	CatalogPath string `json:"catalog_path" env_var:"FILE_COPY_CATALOG_PATH"`
	CatalogURL  string `json:"catalog_url" env_var:"FILE_COPY_CATALOG_URL"`
}

type fileSystem interface {
	ReadFile(p string) ([]byte, error)
	WriteFile(p string, data []byte) error
}

// Handler keeps the copy type catalog and counts how many installed mods provide each file extension per app.
type Handler struct {
	fSys       fileSystem
	httpClient *resty.Client
	config     Config
	catalog    models_file_copy.Catalog
	refCounts  map[string]map[string]int
	mu         sync.RWMutex
}

func New(fSys fileSystem, httpClient *resty.Client, config Config) *Handler {
	return &Handler{
		fSys:       fSys,
		httpClient: httpClient,
		config:     config,
		catalog:    make(models_file_copy.Catalog),
		refCounts:  make(map[string]map[string]int),
	}
}

// LoadCatalog reads the catalog file, a missing file yields an empty catalog.
func (h *Handler) LoadCatalog() error {
	if h.config.CatalogPath == "" {
		return nil
	}
	data, err := h.fSys.ReadFile(h.config.CatalogPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	catalog, err := decodeCatalog(data)
	if err != nil {
		return err
	}
	h.setCatalog(catalog)
	return nil
}

// FetchCatalog downloads the catalog and stores it at the configured path.
func (h *Handler) FetchCatalog(ctx context.Context) error {
	if h.config.CatalogURL == "" {
		return nil
	}
	resp, err := h.httpClient.R().SetContext(ctx).Get(h.config.CatalogURL)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("fetching catalog failed: %s", resp.Status())
	}
	catalog, err := decodeCatalog(resp.Body())
	if err != nil {
		return err
	}
	if h.config.CatalogPath != "" {
		if err = h.fSys.WriteFile(h.config.CatalogPath, resp.Body()); err != nil {
			return err
		}
	}
	h.setCatalog(catalog)
	logger.Info("catalog fetched", slog_attr.URLKey, h.config.CatalogURL, slog_attr.CountKey, len(catalog))
	return nil
}

// RegisterFileCopy counts a mod providing copyType, a file extension with or without leading dot.
func (h *Handler) RegisterFileCopy(app, copyType string) {
	copyType = normalizeExtension(copyType)
	h.mu.Lock()
	defer h.mu.Unlock()
	counts, ok := h.refCounts[app]
	if !ok {
		counts = make(map[string]int)
		h.refCounts[app] = counts
	}
	counts[copyType]++
	logger.Debug("file copy registered", slog_attr.AppKey, app, slog_attr.CopyTypeKey, copyType, slog_attr.CountKey, counts[copyType])
}

func (h *Handler) RemoveFileCopy(app, copyType string) {
	copyType = normalizeExtension(copyType)
	h.mu.Lock()
	defer h.mu.Unlock()
	counts, ok := h.refCounts[app]
	if !ok || counts[copyType] == 0 {
		logger.Warn("removing unregistered file copy", slog_attr.AppKey, app, slog_attr.CopyTypeKey, copyType)
		return
	}
	counts[copyType]--
	if counts[copyType] == 0 {
		delete(counts, copyType)
	}
}

func (h *Handler) RefCount(app, copyType string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.refCounts[app][normalizeExtension(copyType)]
}

// Types lists the catalog entries of an app. Extensions provided by mods but not covered by the catalog
// are listed with the extension as id and no destination.
func (h *Handler) Types(app string) []models_file_copy.AvailableType {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var types []models_file_copy.AvailableType
	seen := make(map[string]struct{})
	for _, t := range h.catalog[app] {
		seen[normalizeExtension(t.Extension)] = struct{}{}
		types = append(types, h.availableType(app, t))
	}
	for ext := range h.refCounts[app] {
		if _, ok := seen[ext]; !ok {
			types = append(types, h.availableType(app, models_file_copy.Type{ID: ext, Name: ext, Extension: ext, RequiresModded: true}))
		}
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].ID < types[j].ID
	})
	return types
}

func (h *Handler) Type(app, id string) (models_file_copy.AvailableType, error) {
	for _, t := range h.Types(app) {
		if t.ID == id {
			return t, nil
		}
	}
	return models_file_copy.AvailableType{}, models_error.NewNotFoundError(fmt.Errorf("file copy type '%s' not found", id))
}

// TypeForFile returns the available type matching the extension of a file name.
func (h *Handler) TypeForFile(app, fileName string) (models_file_copy.AvailableType, bool) {
	ext := normalizeExtension(path.Ext(fileName))
	if ext == "" {
		return models_file_copy.AvailableType{}, false
	}
	for _, t := range h.Types(app) {
		if t.Available && t.Destination != "" && normalizeExtension(t.Extension) == ext {
			return t, true
		}
	}
	return models_file_copy.AvailableType{}, false
}

// InstallFile copies a file into the destination of an available type.
func (h *Handler) InstallFile(app, id, srcPath, fileName string) (string, error) {
	t, err := h.availableDestination(app, id)
	if err != nil {
		return "", err
	}
	dstPath, err := fs_util.SafeJoin(t.Destination, path.Base(fileName))
	if err != nil {
		return "", models_error.NewInvalidInputError(err)
	}
	if err = fs_util.CopyLocalFile(dstPath, srcPath); err != nil {
		return "", err
	}
	logger.Info("file installed", slog_attr.AppKey, app, slog_attr.CopyTypeKey, id, slog_attr.FilePathKey, dstPath)
	return dstPath, nil
}

func (h *Handler) ListFiles(app, id string) ([]string, error) {
	t, err := h.availableDestination(app, id)
	if err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(t.Destination)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			files = append(files, dirEntry.Name())
		}
	}
	return files, nil
}

func (h *Handler) DeleteFile(app, id, fileName string) error {
	t, err := h.availableDestination(app, id)
	if err != nil {
		return err
	}
	p, err := fs_util.SafeJoin(t.Destination, fileName)
	if err != nil {
		return models_error.NewInvalidInputError(err)
	}
	if err = os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return models_error.NewNotFoundError(fmt.Errorf("file '%s' not found", fileName))
		}
		return err
	}
	return nil
}

func (h *Handler) availableDestination(app, id string) (models_file_copy.AvailableType, error) {
	t, err := h.Type(app, id)
	if err != nil {
		return models_file_copy.AvailableType{}, err
	}
	if !t.Available {
		return models_file_copy.AvailableType{}, models_error.NewPreconditionError(fmt.Errorf("file copy type '%s' requires a mod providing it", id))
	}
	if t.Destination == "" {
		return models_file_copy.AvailableType{}, models_error.NewPreconditionError(fmt.Errorf("file copy type '%s' has no destination", id))
	}
	return t, nil
}

func (h *Handler) availableType(app string, t models_file_copy.Type) models_file_copy.AvailableType {
	count := h.refCounts[app][normalizeExtension(t.Extension)]
	return models_file_copy.AvailableType{
		Type:      t,
		Available: !t.RequiresModded || count > 0,
		RefCount:  count,
	}
}

func (h *Handler) setCatalog(catalog models_file_copy.Catalog) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.catalog = catalog
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
}

func decodeCatalog(data []byte) (models_file_copy.Catalog, error) {
	var catalog models_file_copy.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, models_error.NewParseError(err)
	}
	for app, types := range catalog {
		var ids []string
		for _, t := range types {
			if t.ID == "" {
				return nil, models_error.NewSchemaError(fmt.Errorf("copy type without id for '%s'", app))
			}
			if slices.Contains(ids, t.ID) {
				return nil, models_error.NewSchemaError(fmt.Errorf("duplicate copy type '%s' for '%s'", t.ID, app))
			}
			ids = append(ids, t.ID)
		}
	}
	if catalog == nil {
		catalog = make(models_file_copy.Catalog)
	}
	return catalog, nil
}
