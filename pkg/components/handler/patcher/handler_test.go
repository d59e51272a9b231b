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
	"context"
	"os"
	"path"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	models_patching "github.com/qavs/qavs-mod-manager/pkg/models/patching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reporterMock struct {
	mu       sync.Mutex
	progress []float64
	current  []string
}

func (r *reporterMock) SetProgress(f float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, f)
}

func (r *reporterMock) SetProgressString(_ string) {}

func (r *reporterMock) SetCurrentOperation(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = append(r.current, s)
}

func (r *reporterMock) SetResult(_, _ string) {}

func writeScript(t *testing.T, body string) string {
	p := path.Join(t.TempDir(), "patcher.sh")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0755))
	return p
}

func writeApk(t *testing.T, p string, names ...string) {
	file, err := os.Create(p)
	require.NoError(t, err)
	defer file.Close()
	zw := zip.NewWriter(file)
	for _, name := range names {
		_, err := zw.Create(name)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestHandler_Patch(t *testing.T) {
	script := writeScript(t, `echo "status copying"
echo "progress 0.5"
echo "progress nope"
echo "some noise"
cp "$2" "$4"
echo "progress 1"
`)
	h := New(Config{Command: script})
	tmpDir := t.TempDir()
	in := path.Join(tmpDir, "in.apk")
	out := path.Join(tmpDir, "out.apk")
	require.NoError(t, os.WriteFile(in, []byte("apk"), 0664))
	r := &reporterMock{}
	require.NoError(t, h.Patch(context.Background(), in, out, models_patching.Options{}, r))
	assert.Equal(t, []float64{0.5, 1}, r.progress)
	assert.Equal(t, []string{"copying"}, r.current)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "apk", string(b))
	t.Run("error message", func(t *testing.T) {
		h := New(Config{Command: writeScript(t, "echo \"error signing failed\"\nexit 1\n")})
		err := h.Patch(context.Background(), in, out, models_patching.Options{}, &reporterMock{})
		assert.EqualError(t, err, "signing failed")
	})
	t.Run("exit code", func(t *testing.T) {
		h := New(Config{Command: writeScript(t, "echo broken >&2\nexit 3\n")})
		err := h.Patch(context.Background(), in, out, models_patching.Options{}, &reporterMock{})
		assert.ErrorContains(t, err, "broken")
	})
	t.Run("no command", func(t *testing.T) {
		assert.Error(t, New(Config{}).Patch(context.Background(), in, out, models_patching.Options{}, &reporterMock{}))
	})
}

func TestArgs(t *testing.T) {
	args := Args("in.apk", "out.apk", models_patching.Options{
		Permissions:         []string{"android.permission.RECORD_AUDIO"},
		Debug:               true,
		HandTracking:        true,
		HandTrackingVersion: 2,
		ExternalStorage:     true,
	})
	assert.Equal(t, []string{
		"--in", "in.apk", "--out", "out.apk",
		"--permission", "android.permission.RECORD_AUDIO",
		"--debug",
		"--hand-tracking", "2",
		"--external-storage",
	}, args)
}

func TestHandler_IsPatched(t *testing.T) {
	h := New(Config{})
	tmpDir := t.TempDir()
	vanilla := path.Join(tmpDir, "vanilla.apk")
	writeApk(t, vanilla, "AndroidManifest.xml", "lib/arm64-v8a/libil2cpp.so")
	ok, err := h.IsPatched(vanilla)
	require.NoError(t, err)
	assert.False(t, ok)
	patched := path.Join(tmpDir, "patched.apk")
	writeApk(t, patched, "AndroidManifest.xml", "modded.json")
	ok, err = h.IsPatched(patched)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = h.IsPatched(path.Join(tmpDir, "missing.apk"))
	assert.Error(t, err)
}
