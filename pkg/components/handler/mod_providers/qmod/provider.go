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

package qmod

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/qavs/qavs-mod-manager/pkg/components/fs_util"
	helper_archive "github.com/qavs/qavs-mod-manager/pkg/components/helper/archive"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
	"gopkg.in/yaml.v3"
)

const (
	Type           = "qmod"
	Extension      = "qmod"
	descriptorFile = "mod.json"
	zipMimeType    = "application/zip"
)

type Provider struct {
	mods map[string]*models_mod.Mod
	mu   sync.RWMutex
}

func New() *Provider {
	return &Provider{mods: make(map[string]*models_mod.Mod)}
}

func (p *Provider) Type() string {
	return Type
}

func (p *Provider) FileExtension() string {
	return Extension
}

func (p *Provider) LoadFromFile(_ context.Context, paths models_mod.AppPaths, filePath string) (mod *models_mod.Mod, err error) {
	if err = checkZip(filePath); err != nil {
		return nil, models_error.NewParseError(err)
	}
	if err = os.MkdirAll(paths.ExtractPath, 0775); err != nil {
		return nil, err
	}
	tmpDir := path.Join(paths.ExtractPath, ".tmp-"+uuid.NewString())
	defer func() {
		if err != nil {
			if e := os.RemoveAll(tmpDir); e != nil {
				logger.Error("removing temporary directory failed", slog_attr.FilePathKey, tmpDir, slog_attr.ErrorKey, e)
			}
		}
	}()
	if err = helper_archive.ExtractZip(filePath, tmpDir); err != nil {
		return nil, models_error.NewParseError(err)
	}
	d, err := readDescriptor(tmpDir)
	if err != nil {
		return nil, models_error.NewParseError(err)
	}
	extractPath := paths.ModExtractPath(d.ID)
	if err = os.RemoveAll(extractPath); err != nil {
		return nil, err
	}
	if err = os.Rename(tmpDir, extractPath); err != nil {
		return nil, err
	}
	mod = newMod(d, extractPath)
	p.set(mod)
	logger.Debug("mod extracted", slog_attr.ModIDKey, mod.ID, slog_attr.FilePathKey, extractPath)
	return mod, nil
}

// LoadLegacyMods picks up extracted archives below the extract path.
// A legacy mod counts as installed when all of its mod files are present.
func (p *Provider) LoadLegacyMods(_ context.Context, paths models_mod.AppPaths) ([]*models_mod.Mod, error) {
	dirEntries, err := os.ReadDir(paths.ExtractPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var mods []*models_mod.Mod
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() || strings.HasPrefix(dirEntry.Name(), ".") {
			continue
		}
		dirPath := path.Join(paths.ExtractPath, dirEntry.Name())
		d, err := readDescriptor(dirPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warn("skipping legacy directory", slog_attr.FilePathKey, dirPath, slog_attr.ErrorKey, err)
			}
			continue
		}
		if d.ID != dirEntry.Name() {
			logger.Warn("legacy directory does not match mod id", slog_attr.FilePathKey, dirPath, slog_attr.ModIDKey, d.ID)
			continue
		}
		mod := newMod(d, dirPath)
		mod.IsInstalled = filesPresent(paths.ModsPath, d.ModFiles)
		p.set(mod)
		mods = append(mods, mod)
	}
	return mods, nil
}

func (p *Provider) LoadMods(_ context.Context, paths models_mod.AppPaths, mods []*models_mod.Mod) ([]*models_mod.Mod, error) {
	var vanished []*models_mod.Mod
	for _, mod := range mods {
		extractPath := paths.ModExtractPath(mod.ID)
		ok, err := fs_util.Exists(path.Join(extractPath, descriptorFile))
		if err != nil {
			return nil, err
		}
		if !ok {
			vanished = append(vanished, mod)
			continue
		}
		details, ok := mod.Details.(*Details)
		if !ok {
			d, err := readDescriptor(extractPath)
			if err != nil {
				logger.Warn("reading descriptor failed", slog_attr.ModIDKey, mod.ID, slog_attr.ErrorKey, err)
				vanished = append(vanished, mod)
				continue
			}
			details = newDetails(d)
			mod.Details = details
		}
		mod.HasCover = coverExists(extractPath, details.CoverImage)
		p.set(mod)
	}
	return vanished, nil
}

func (p *Provider) EnableMod(_ context.Context, paths models_mod.AppPaths, mod *models_mod.Mod) error {
	details, err := p.details(paths, mod)
	if err != nil {
		return err
	}
	extractPath := paths.ModExtractPath(mod.ID)
	var copied []string
	for _, c := range copyPlan(paths, details) {
		src, err := fs_util.SafeJoin(extractPath, c.Name)
		if err == nil {
			err = fs_util.CopyLocalFile(c.Destination, src)
		}
		if err != nil {
			removeFiles(copied)
			return fmt.Errorf("copying '%s' failed: %w", c.Name, err)
		}
		copied = append(copied, c.Destination)
	}
	return nil
}

// DisableMod removes mod files and file copies. Library files stay in place since other mods may link them.
func (p *Provider) DisableMod(_ context.Context, paths models_mod.AppPaths, mod *models_mod.Mod) error {
	details, err := p.details(paths, mod)
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range details.ModFiles {
		if err = removeFile(path.Join(paths.ModsPath, path.Base(name))); err != nil {
			errs = append(errs, err)
		}
	}
	for _, fc := range details.FileCopies {
		if err = removeFile(fc.Destination); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return models_error.NewMultiError(errs)
	}
	return nil
}

func (p *Provider) DeleteMod(ctx context.Context, paths models_mod.AppPaths, mod *models_mod.Mod) error {
	if mod.IsInstalled {
		if err := p.DisableMod(ctx, paths, mod); err != nil {
			logger.Warn("removing installed files failed", slog_attr.ModIDKey, mod.ID, slog_attr.ErrorKey, err)
		}
	}
	if err := os.RemoveAll(paths.ModExtractPath(mod.ID)); err != nil {
		return err
	}
	p.ForgetMod(mod.ID)
	return nil
}

func (p *Provider) ForgetMod(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.mods, id)
}

func (p *Provider) ClearMods() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mods = make(map[string]*models_mod.Mod)
}

func (p *Provider) CoverPath(paths models_mod.AppPaths, mod *models_mod.Mod) (string, bool) {
	details, err := p.details(paths, mod)
	if err != nil || details.CoverImage == "" {
		return "", false
	}
	coverPath, err := fs_util.SafeJoin(paths.ModExtractPath(mod.ID), details.CoverImage)
	if err != nil {
		return "", false
	}
	ok, _ := fs_util.Exists(coverPath)
	return coverPath, ok
}

func (p *Provider) DecodeEntry(yn *yaml.Node) (*models_mod.Mod, error) {
	var e entry
	if err := yn.Decode(&e); err != nil {
		return nil, err
	}
	return &models_mod.Mod{
		ID:            e.ID,
		Name:          e.Name,
		Author:        e.Author,
		Description:   e.Description,
		VersionString: e.Version,
		IsLibrary:     e.IsLibrary,
		IsInstalled:   e.Installed,
		FileCopyTypes: copyTypes(e.CopyExtensions),
		Details: &Details{
			PackageID:      e.PackageID,
			PackageVersion: e.PackageVersion,
			CoverImage:     e.CoverImage,
			ModFiles:       e.ModFiles,
			LibraryFiles:   e.LibraryFiles,
			FileCopies:     e.FileCopies,
			CopyExtensions: e.CopyExtensions,
			Dependencies:   e.Dependencies,
		},
	}, nil
}

func (p *Provider) EncodeEntry(mod *models_mod.Mod) (any, error) {
	e := entry{
		ID:          mod.ID,
		Name:        mod.Name,
		Author:      mod.Author,
		Description: mod.Description,
		Version:     mod.VersionString,
		IsLibrary:   mod.IsLibrary,
		Installed:   mod.IsInstalled,
	}
	if details, ok := mod.Details.(*Details); ok {
		e.CoverImage = details.CoverImage
		e.PackageID = details.PackageID
		e.PackageVersion = details.PackageVersion
		e.ModFiles = details.ModFiles
		e.LibraryFiles = details.LibraryFiles
		e.FileCopies = details.FileCopies
		e.CopyExtensions = details.CopyExtensions
		e.Dependencies = details.Dependencies
	}
	return e, nil
}

func (p *Provider) set(mod *models_mod.Mod) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mods[mod.ID] = mod
}

func (p *Provider) details(paths models_mod.AppPaths, mod *models_mod.Mod) (*Details, error) {
	if details, ok := mod.Details.(*Details); ok {
		return details, nil
	}
	d, err := readDescriptor(paths.ModExtractPath(mod.ID))
	if err != nil {
		return nil, err
	}
	details := newDetails(d)
	mod.Details = details
	return details, nil
}

func checkZip(filePath string) error {
	mType, err := mimetype.DetectFile(filePath)
	if err != nil {
		return err
	}
	for m := mType; m != nil; m = m.Parent() {
		if m.Is(zipMimeType) {
			return nil
		}
	}
	return fmt.Errorf("invalid file type '%s'", mType.String())
}

func readDescriptor(dirPath string) (descriptor, error) {
	file, err := os.Open(path.Join(dirPath, descriptorFile))
	if err != nil {
		return descriptor{}, err
	}
	defer file.Close()
	var d descriptor
	if err = json.NewDecoder(file).Decode(&d); err != nil {
		return descriptor{}, err
	}
	if d.ID == "" {
		return descriptor{}, errors.New("missing mod id")
	}
	if strings.ContainsAny(d.ID, `/\`) || strings.HasPrefix(d.ID, ".") {
		return descriptor{}, fmt.Errorf("invalid mod id '%s'", d.ID)
	}
	return d, nil
}

func newDetails(d descriptor) *Details {
	return &Details{
		PackageID:      d.PackageID,
		PackageVersion: d.PackageVersion,
		CoverImage:     d.CoverImage,
		ModFiles:       d.ModFiles,
		LibraryFiles:   d.LibraryFiles,
		FileCopies:     d.FileCopies,
		CopyExtensions: d.CopyExtensions,
		Dependencies:   d.Dependencies,
	}
}

func newMod(d descriptor, extractPath string) *models_mod.Mod {
	name := d.Name
	if name == "" {
		name = d.ID
	}
	return &models_mod.Mod{
		ID:            d.ID,
		Name:          name,
		Author:        d.Author,
		Description:   d.Description,
		VersionString: d.Version,
		IsLibrary:     d.IsLibrary,
		HasCover:      coverExists(extractPath, d.CoverImage),
		FileCopyTypes: copyTypes(d.CopyExtensions),
		Type:          Type,
		Details:       newDetails(d),
	}
}

func coverExists(extractPath, coverImage string) bool {
	if coverImage == "" {
		return false
	}
	coverPath, err := fs_util.SafeJoin(extractPath, coverImage)
	if err != nil {
		return false
	}
	ok, _ := fs_util.Exists(coverPath)
	return ok
}

func copyTypes(extensions []CopyExtension) []string {
	var types []string
	for _, ce := range extensions {
		if t := strings.ToLower(strings.TrimLeft(ce.Extension, ".")); t != "" {
			types = append(types, t)
		}
	}
	return types
}

func copyPlan(paths models_mod.AppPaths, details *Details) []FileCopy {
	var plan []FileCopy
	for _, name := range details.ModFiles {
		plan = append(plan, FileCopy{Name: name, Destination: path.Join(paths.ModsPath, path.Base(name))})
	}
	for _, name := range details.LibraryFiles {
		plan = append(plan, FileCopy{Name: name, Destination: path.Join(paths.LibsPath, path.Base(name))})
	}
	plan = append(plan, details.FileCopies...)
	return plan
}

func filesPresent(dirPath string, names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, name := range names {
		if ok, _ := fs_util.Exists(path.Join(dirPath, path.Base(name))); !ok {
			return false
		}
	}
	return true
}

func removeFile(p string) error {
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func removeFiles(l []string) {
	for _, p := range l {
		if err := removeFile(p); err != nil {
			logger.Error("removing file failed", slog_attr.FilePathKey, p, slog_attr.ErrorKey, err)
		}
	}
}
