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

package downloads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/go-resty/resty/v2"
	"github.com/qavs/qavs-mod-manager/pkg/components/handler/backups"
	models_backup "github.com/qavs/qavs-mod-manager/pkg/models/backup"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
	"golang.org/x/time/rate"
)

const progressInterval = 500 * time.Millisecond

type backupStore interface {
	Prepare(app, name string) (string, error)
	Finalize(app, name, appVersion string) (models_backup.Info, error)
	Delete(app, name string) error
}

// Handler downloads apks into new backups.
type Handler struct {
	httpClient *resty.Client
	backups    backupStore
}

func New(httpClient *resty.Client, backups backupStore) *Handler {
	return &Handler{
		httpClient: httpClient,
		backups:    backups,
	}
}

// Download stores the file at url as apk of a new backup. The backup is removed if the download
// does not complete.
func (h *Handler) Download(ctx context.Context, app, name, url, appVersion string, reporter models_operation.Reporter) (err error) {
	backupPath, err := h.backups.Prepare(app, name)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if dErr := h.backups.Delete(app, name); dErr != nil {
				logger.Error("removing incomplete download failed", slog_attr.BackupKey, name, slog_attr.ErrorKey, dErr)
			}
		}
	}()
	reporter.SetCurrentOperation("downloading " + path.Base(url))
	reporter.SetProgress(models_operation.ProgressIndeterminate)
	resp, err := h.httpClient.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return err
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status())
	}
	file, err := os.Create(path.Join(backupPath, backups.ApkFileName))
	if err != nil {
		return err
	}
	defer file.Close()
	pw := &progressWriter{
		total:     resp.RawResponse.ContentLength,
		reporter:  reporter,
		sometimes: rate.Sometimes{Interval: progressInterval},
	}
	if _, err = io.Copy(file, io.TeeReader(body, pw)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	pw.report()
	if err = file.Close(); err != nil {
		return err
	}
	if _, err = h.backups.Finalize(app, name, appVersion); err != nil {
		return err
	}
	logger.Info("download finished", slog_attr.URLKey, url, slog_attr.BackupKey, name, "size", bytefmt.ByteSize(uint64(pw.written)))
	return nil
}

type progressWriter struct {
	total     int64
	written   int64
	reporter  models_operation.Reporter
	sometimes rate.Sometimes
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	w.sometimes.Do(w.report)
	return len(p), nil
}

func (w *progressWriter) report() {
	if w.total > 0 {
		w.reporter.SetProgress(float64(w.written) / float64(w.total))
		w.reporter.SetProgressString(bytefmt.ByteSize(uint64(w.written)) + " / " + bytefmt.ByteSize(uint64(w.total)))
		return
	}
	w.reporter.SetProgressString(bytefmt.ByteSize(uint64(w.written)))
}
