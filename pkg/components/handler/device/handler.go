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

package device

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"strings"

	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
	models_wizard "github.com/qavs/qavs-mod-manager/pkg/models/wizard"
	"github.com/shirou/gopsutil/v4/disk"
)

const (
	storagePermission  = "MANAGE_EXTERNAL_STORAGE"
	pmSuccess          = "Success"
	androidVersionProp = "ro.build.version.release"
)

type Config struct {
	PmCommand     string `json:"pm_command" env_var:"DEVICE_PM_COMMAND"`
	AppOpsCommand string `json:"appops_command" env_var:"DEVICE_APPOPS_COMMAND"`
	PropCommand   string `json:"prop_command" env_var:"DEVICE_PROP_COMMAND"`
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Handler queries and changes package state through the package manager and app ops commands.
type Handler struct {
	config          Config
	androidDataPath string
	run             runFunc
}

func New(config Config, androidDataPath string) *Handler {
	return &Handler{
		config:          config,
		androidDataPath: androidDataPath,
		run:             runCmd,
	}
}

func (h *Handler) IsPackageInstalled(ctx context.Context, app string) (bool, error) {
	_, err := h.PackageApkPath(ctx, app)
	if err != nil {
		var nfe *models_error.NotFoundError
		if errors.As(err, &nfe) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (h *Handler) PackageApkPath(ctx context.Context, app string) (string, error) {
	out, err := h.run(ctx, h.config.PmCommand, "path", app)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", models_error.NewNotFoundError(fmt.Errorf("package '%s' not installed", app))
		}
		return "", err
	}
	for _, line := range lines(out) {
		if p, ok := strings.CutPrefix(line, "package:"); ok && strings.HasSuffix(p, "base.apk") {
			return p, nil
		}
	}
	for _, line := range lines(out) {
		if p, ok := strings.CutPrefix(line, "package:"); ok {
			return p, nil
		}
	}
	return "", models_error.NewNotFoundError(fmt.Errorf("package '%s' not installed", app))
}

func (h *Handler) PackageVersion(ctx context.Context, app string) (string, error) {
	out, err := h.run(ctx, h.config.PmCommand, "dump", app)
	if err != nil {
		return "", err
	}
	for _, line := range lines(out) {
		if v, ok := strings.CutPrefix(line, "versionName="); ok {
			return v, nil
		}
	}
	return "", models_error.NewNotFoundError(fmt.Errorf("version of '%s' not found", app))
}

func (h *Handler) InstallPackage(ctx context.Context, apkPath string) error {
	out, err := h.run(ctx, h.config.PmCommand, "install", "-r", "-d", apkPath)
	if err != nil {
		return fmt.Errorf("installing '%s' failed: %w: %s", apkPath, err, strings.TrimSpace(string(out)))
	}
	if !bytes.Contains(out, []byte(pmSuccess)) {
		return fmt.Errorf("installing '%s' failed: %s", apkPath, strings.TrimSpace(string(out)))
	}
	logger.Info("package installed", slog_attr.FilePathKey, apkPath)
	return nil
}

// UninstallPackage returns models_wizard.UninstallStatusRemoved if the package is already gone.
func (h *Handler) UninstallPackage(ctx context.Context, app string) (int, error) {
	ok, err := h.IsPackageInstalled(ctx, app)
	if err != nil {
		return 0, err
	}
	if !ok {
		return models_wizard.UninstallStatusRemoved, nil
	}
	out, err := h.run(ctx, h.config.PmCommand, "uninstall", app)
	if err != nil {
		return 0, fmt.Errorf("uninstalling '%s' failed: %w: %s", app, err, strings.TrimSpace(string(out)))
	}
	if !bytes.Contains(out, []byte(pmSuccess)) {
		return 0, fmt.Errorf("uninstalling '%s' failed: %s", app, strings.TrimSpace(string(out)))
	}
	logger.Info("package uninstalled", slog_attr.AppKey, app)
	return 0, nil
}

func (h *Handler) HasStorageAccess(ctx context.Context, app string) (bool, error) {
	out, err := h.run(ctx, h.config.AppOpsCommand, "get", app, storagePermission)
	if err != nil {
		return false, err
	}
	return bytes.Contains(out, []byte(": allow")), nil
}

func (h *Handler) GrantStorageAccess(ctx context.Context, app string) error {
	out, err := h.run(ctx, h.config.AppOpsCommand, "set", app, storagePermission, "allow")
	if err != nil {
		return fmt.Errorf("granting storage access to '%s' failed: %w: %s", app, err, strings.TrimSpace(string(out)))
	}
	logger.Info("storage access granted", slog_attr.AppKey, app)
	return nil
}

func (h *Handler) AndroidVersion(ctx context.Context) (string, error) {
	out, err := h.run(ctx, h.config.PropCommand, androidVersionProp)
	if err != nil {
		return "", fmt.Errorf("reading android version failed: %w", err)
	}
	v := strings.TrimSpace(string(out))
	if v == "" {
		return "", models_error.NewNotFoundError(errors.New("android version not set"))
	}
	return v, nil
}

// AvailableSpace returns the free bytes of the volume holding the app data directories.
func (h *Handler) AvailableSpace(ctx context.Context) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, h.androidDataPath)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// HasFolderAccess reports whether the data folder of the app can be listed.
func (h *Handler) HasFolderAccess(app string) bool {
	_, err := os.ReadDir(h.DataPath(app))
	return err == nil
}

func (h *Handler) DataPath(app string) string {
	return path.Join(h.androidDataPath, app)
}

func lines(b []byte) []string {
	var l []string
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			l = append(l, line)
		}
	}
	return l
}

func runCmd(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
