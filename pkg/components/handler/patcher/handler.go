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

package patcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	models_patching "github.com/qavs/qavs-mod-manager/pkg/models/patching"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
)

const (
	progressPrefix = "progress "
	statusPrefix   = "status "
	errorPrefix    = "error "
)

// patchMarkers are archive entries only present in patched apks.
var patchMarkers = []string{
	"modded.json",
	"BMBF.modded",
	"lib/arm64-v8a/libmodloader.so",
}

type Config struct {
	Command string `json:"command" env_var:"PATCHER_COMMAND"`
}

// Handler runs the external patcher. The patcher writes one message per line to stdout, either
// "progress <0..1>", "status <text>" or "error <text>".
type Handler struct {
	config Config
}

func New(config Config) *Handler {
	return &Handler{config: config}
}

func (h *Handler) Patch(ctx context.Context, inApk, outApk string, opts models_patching.Options, reporter models_operation.Reporter) error {
	if h.config.Command == "" {
		return errors.New("no patcher command configured")
	}
	cmd := exec.CommandContext(ctx, h.config.Command, Args(inApk, outApk, opts)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err = cmd.Start(); err != nil {
		return err
	}
	patchErr := readMessages(stdout, reporter)
	if err = cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if patchErr != nil {
			return patchErr
		}
		return fmt.Errorf("patcher failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if patchErr != nil {
		return patchErr
	}
	logger.Info("apk patched", slog_attr.FilePathKey, outApk)
	return nil
}

// IsPatched reports whether the apk contains a modloader marker.
func (h *Handler) IsPatched(apkPath string) (bool, error) {
	r, err := zip.OpenReader(apkPath)
	if err != nil {
		return false, err
	}
	defer r.Close()
	for _, file := range r.File {
		for _, marker := range patchMarkers {
			if file.Name == marker {
				return true, nil
			}
		}
	}
	return false, nil
}

func Args(inApk, outApk string, opts models_patching.Options) []string {
	args := []string{"--in", inApk, "--out", outApk}
	for _, p := range opts.Permissions {
		args = append(args, "--permission", p)
	}
	if opts.Debug {
		args = append(args, "--debug")
	}
	if opts.HandTracking {
		args = append(args, "--hand-tracking", strconv.Itoa(opts.HandTrackingVersion))
	}
	if opts.ExternalStorage {
		args = append(args, "--external-storage")
	}
	return args
}

func readMessages(r io.Reader, reporter models_operation.Reporter) error {
	var patchErr error
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, progressPrefix):
			f, err := strconv.ParseFloat(strings.TrimPrefix(line, progressPrefix), 64)
			if err != nil {
				logger.Warn("invalid patcher progress", "line", line)
				continue
			}
			reporter.SetProgress(f)
		case strings.HasPrefix(line, statusPrefix):
			reporter.SetCurrentOperation(strings.TrimPrefix(line, statusPrefix))
		case strings.HasPrefix(line, errorPrefix):
			patchErr = errors.New(strings.TrimPrefix(line, errorPrefix))
		case line != "":
			logger.Debug("patcher output", "line", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return patchErr
}
