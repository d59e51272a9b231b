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
	"context"
	"errors"
	"os"
	"os/exec"
	"path"
	"strings"
	"testing"

	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_wizard "github.com/qavs/qavs-mod-manager/pkg/models/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testApp = "com.example.game"

type fakeDevice struct {
	installed      bool
	access         bool
	androidVersion string
	calls          []string
}

func (d *fakeDevice) run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := name + " " + strings.Join(args, " ")
	d.calls = append(d.calls, call)
	switch {
	case call == "pm path "+testApp:
		if !d.installed {
			return nil, &exec.ExitError{}
		}
		return []byte("package:/data/app/split_config.apk\npackage:/data/app/" + testApp + "/base.apk\n"), nil
	case call == "pm dump "+testApp:
		return []byte("Packages:\n    versionCode=1 minSdk=29\n    versionName=1.28.0_4124311467\n"), nil
	case strings.HasPrefix(call, "pm install"):
		d.installed = true
		return []byte("Performing Streamed Install\nSuccess\n"), nil
	case call == "pm uninstall "+testApp:
		d.installed = false
		return []byte("Success\n"), nil
	case call == "appops get "+testApp+" "+storagePermission:
		if d.access {
			return []byte(storagePermission + ": allow\n"), nil
		}
		return []byte("No operations.\n"), nil
	case call == "appops set "+testApp+" "+storagePermission+" allow":
		d.access = true
		return nil, nil
	case call == "getprop "+androidVersionProp:
		return []byte(d.androidVersion + "\n"), nil
	}
	return nil, errors.New("unexpected call: " + call)
}

func newTestHandler(t *testing.T, d *fakeDevice) *Handler {
	h := New(Config{PmCommand: "pm", AppOpsCommand: "appops", PropCommand: "getprop"}, t.TempDir())
	h.run = d.run
	return h
}

func TestHandler_Packages(t *testing.T) {
	d := &fakeDevice{}
	h := newTestHandler(t, d)
	ctx := context.Background()
	ok, err := h.IsPackageInstalled(ctx, testApp)
	require.NoError(t, err)
	assert.False(t, ok)
	status, err := h.UninstallPackage(ctx, testApp)
	require.NoError(t, err)
	assert.Equal(t, models_wizard.UninstallStatusRemoved, status)
	require.NoError(t, h.InstallPackage(ctx, "/sdcard/app.apk"))
	ok, err = h.IsPackageInstalled(ctx, testApp)
	require.NoError(t, err)
	assert.True(t, ok)
	apkPath, err := h.PackageApkPath(ctx, testApp)
	require.NoError(t, err)
	assert.Equal(t, "/data/app/"+testApp+"/base.apk", apkPath)
	version, err := h.PackageVersion(ctx, testApp)
	require.NoError(t, err)
	assert.Equal(t, "1.28.0_4124311467", version)
	status, err = h.UninstallPackage(ctx, testApp)
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.False(t, d.installed)
}

func TestHandler_StorageAccess(t *testing.T) {
	d := &fakeDevice{installed: true}
	h := newTestHandler(t, d)
	ctx := context.Background()
	ok, err := h.HasStorageAccess(ctx, testApp)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, h.GrantStorageAccess(ctx, testApp))
	ok, err = h.HasStorageAccess(ctx, testApp)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, h.HasFolderAccess(testApp))
	require.NoError(t, os.MkdirAll(path.Join(h.DataPath(testApp), "files"), 0775))
	assert.True(t, h.HasFolderAccess(testApp))
}

func TestHandler_SystemInfo(t *testing.T) {
	d := &fakeDevice{androidVersion: "14"}
	h := newTestHandler(t, d)
	ctx := context.Background()
	v, err := h.AndroidVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "14", v)
	d.androidVersion = ""
	_, err = h.AndroidVersion(ctx)
	var nfe *models_error.NotFoundError
	assert.ErrorAs(t, err, &nfe)
	free, err := h.AvailableSpace(ctx)
	require.NoError(t, err)
	assert.Greater(t, free, uint64(0))
	h2 := New(Config{}, path.Join(t.TempDir(), "missing"))
	_, err = h2.AvailableSpace(ctx)
	assert.Error(t, err)
}
