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

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	srv_info_hdl "github.com/SENERGY-Platform/go-service-base/srv-info-hdl"
	models_api "github.com/qavs/qavs-mod-manager/lib/models/api"
	helper_metrics "github.com/qavs/qavs-mod-manager/pkg/components/helper/metrics"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	models_wizard "github.com/qavs/qavs-mod-manager/pkg/models/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceMock struct {
	serviceItf
	app      string
	uploaded map[string]string
	err      error
	actions  []models_wizard.Action
}

func (m *serviceMock) App(_ context.Context) string {
	return m.app
}

func (m *serviceMock) ChangeApp(_ context.Context, app string) error {
	if m.err != nil {
		return m.err
	}
	m.app = app
	return nil
}

func (m *serviceMock) Mods(_ context.Context) models_mod.Status {
	return models_mod.Status{ModsAndLibs: models_mod.ModsAndLibs{Mods: []models_mod.Mod{{ID: "test-mod"}}}}
}

func (m *serviceMock) InstallUpload(_ context.Context, fileName string, r io.Reader) (models_mod.UploadResult, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return models_mod.UploadResult{}, err
	}
	m.uploaded[fileName] = string(b)
	return models_mod.UploadResult{IsMod: true, Mod: &models_mod.Mod{ID: "test-mod"}}, nil
}

func (m *serviceMock) EnableMod(_ context.Context, _ string) error {
	return m.err
}

func (m *serviceMock) StartPatch(_ context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "op-1", nil
}

func (m *serviceMock) Operations(_ context.Context, _ models_operation.Filter) []models_operation.Operation {
	return nil
}

func (m *serviceMock) Operation(_ context.Context, id string) (models_operation.Operation, error) {
	if id != "op-1" {
		return models_operation.Operation{}, models_error.NewNotFoundError(errors.New("operation not found"))
	}
	return models_operation.Operation{ID: id, Kind: models_operation.KindPatch}, nil
}

func (m *serviceMock) WizardAction(_ context.Context, action models_wizard.Action) (models_wizard.State, error) {
	m.actions = append(m.actions, action)
	return models_wizard.State{}, m.err
}

func newTestApi(t *testing.T, srv *serviceMock) http.Handler {
	t.Helper()
	return newTestApiWithConfig(t, srv, Config{})
}

func newTestApiWithConfig(t *testing.T, srv *serviceMock, config Config) http.Handler {
	t.Helper()
	a, err := New(srv, srv_info_hdl.New("qavs-mod-manager", "test"), helper_metrics.New(), slog.New(slog.DiscardHandler), config)
	require.NoError(t, err)
	return a.Handler()
}

func doRequest(h http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApi_Headers(t *testing.T) {
	h := newTestApi(t, &serviceMock{app: "com.test"})
	rec := doRequest(h, http.MethodGet, "/app", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"app":"com.test"}`, rec.Body.String())
	assert.Equal(t, "test", rec.Header().Get(models_api.HeaderApiVer))
	assert.Equal(t, "qavs-mod-manager", rec.Header().Get(models_api.HeaderSrvName))
	assert.NotEmpty(t, rec.Header().Get(models_api.HeaderRequestID))
}

func TestApi_ChangeApp(t *testing.T) {
	srv := &serviceMock{}
	h := newTestApi(t, srv)
	rec := doRequest(h, http.MethodPut, "/app", strings.NewReader(`{"app":"com.other"}`), "application/json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "com.other", srv.app)
	rec = doRequest(h, http.MethodPut, "/app", strings.NewReader(`{`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	srv.err = models_error.NewConflictError(errors.New("operation in progress"))
	rec = doRequest(h, http.MethodPut, "/app", strings.NewReader(`{"app":"com.third"}`), "application/json")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApi_Upload(t *testing.T) {
	srv := &serviceMock{uploaded: make(map[string]string)}
	h := newTestApi(t, srv)
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile(uploadFormKey, "test.qmod")
	require.NoError(t, err)
	_, err = fw.Write([]byte("content"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	rec := doRequest(h, http.MethodPost, "/mods", body, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "content", srv.uploaded["test.qmod"])
	assert.Contains(t, rec.Body.String(), `"isMod":true`)
	rec = doRequest(h, http.MethodPost, "/mods", strings.NewReader("x"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApi_UploadLimit(t *testing.T) {
	srv := &serviceMock{uploaded: make(map[string]string)}
	h := newTestApiWithConfig(t, srv, Config{MaxUploadSize: 1024})
	upload := func(size int) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		fw, err := mw.CreateFormFile(uploadFormKey, "big.qmod")
		require.NoError(t, err)
		_, err = fw.Write(bytes.Repeat([]byte("x"), size))
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return doRequest(h, http.MethodPost, "/mods", body, mw.FormDataContentType())
	}
	rec := upload(4096)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, srv.uploaded)
	rec = upload(100)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, srv.uploaded["big.qmod"], 100)
}

func TestApi_MethodNotAllowed(t *testing.T) {
	h := newTestApi(t, &serviceMock{})
	rec := doRequest(h, http.MethodDelete, "/app", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestApi_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", models_error.NewNotFoundError(errors.New("test")), http.StatusNotFound},
		{"invalid input", models_error.NewInvalidInputError(errors.New("test")), http.StatusBadRequest},
		{"body too large", models_error.NewInvalidInputError(&http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge},
		{"parse", models_error.NewParseError(errors.New("test")), http.StatusBadRequest},
		{"schema", models_error.NewSchemaError(errors.New("test")), http.StatusBadRequest},
		{"conflict", models_error.NewConflictError(errors.New("test")), http.StatusConflict},
		{"precondition", models_error.NewPreconditionError(errors.New("test")), http.StatusPreconditionFailed},
		{"internal", models_error.NewInternalError(errors.New("test")), http.StatusInternalServerError},
		{"other", errors.New("test"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestApi(t, &serviceMock{err: tc.err})
			rec := doRequest(h, http.MethodPatch, "/mods/test-mod/enable", nil, "")
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestApi_Operations(t *testing.T) {
	h := newTestApi(t, &serviceMock{})
	rec := doRequest(h, http.MethodPost, "/patching/operation", nil, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "op-1", rec.Body.String())
	rec = doRequest(h, http.MethodGet, "/operations/op-1", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(h, http.MethodGet, "/operations/op-2", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doRequest(h, http.MethodGet, "/operations?kind=download", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
	rec = doRequest(h, http.MethodGet, "/operations?kind=unknown", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApi_Wizard(t *testing.T) {
	srv := &serviceMock{}
	h := newTestApi(t, srv)
	rec := doRequest(h, http.MethodPost, "/wizard/actions/uninstall", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(h, http.MethodPost, "/wizard/abort", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models_wizard.Action{models_wizard.ActionUninstall, models_wizard.ActionAbort}, srv.actions)
	srv.err = models_error.NewPreconditionError(errors.New("test"))
	rec = doRequest(h, http.MethodPost, "/wizard/actions/install-apk", nil, "")
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestApi_Metrics(t *testing.T) {
	h := newTestApi(t, &serviceMock{})
	doRequest(h, http.MethodGet, "/mods", nil, "")
	rec := doRequest(h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "qavs_http_requests_total")
}
