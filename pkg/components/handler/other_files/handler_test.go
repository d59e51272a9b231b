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
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/qavs/qavs-mod-manager/pkg/components/fs_util"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testApp = "com.example.game"

func testCatalog(dest string) string {
	return `com.example.game:
  - id: saber
    name: Sabers
    extension: .saber
    destination: ` + dest + `
    requiresModded: true
  - id: png
    name: Backgrounds
    extension: png
    destination: ` + dest + `
`
}

func newTestHandler(t *testing.T, dest string) *Handler {
	catalogPath := path.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog(dest)), 0664))
	h := New(fs_util.FileSystem{}, resty.New(), Config{CatalogPath: catalogPath})
	require.NoError(t, h.LoadCatalog())
	return h
}

func TestHandler_RefCounts(t *testing.T) {
	h := New(fs_util.FileSystem{}, resty.New(), Config{})
	h.RegisterFileCopy(testApp, "saber")
	h.RegisterFileCopy(testApp, "saber")
	assert.Equal(t, 2, h.RefCount(testApp, "saber"))
	h.RemoveFileCopy(testApp, "saber")
	h.RemoveFileCopy(testApp, "saber")
	h.RemoveFileCopy(testApp, "saber")
	assert.Equal(t, 0, h.RefCount(testApp, "saber"))
	h.RegisterFileCopy(testApp, "saber")
	assert.Equal(t, 1, h.RefCount(testApp, "saber"))
	h.RemoveFileCopy("other", "saber")
	assert.Equal(t, 0, h.RefCount("other", "saber"))
	h.RegisterFileCopy(testApp, ".Saber")
	assert.Equal(t, 2, h.RefCount(testApp, "saber"))
}

func TestHandler_Types(t *testing.T) {
	h := newTestHandler(t, t.TempDir())
	types := h.Types(testApp)
	require.Len(t, types, 2)
	assert.Equal(t, "png", types[0].ID)
	assert.True(t, types[0].Available)
	assert.Equal(t, "saber", types[1].ID)
	assert.False(t, types[1].Available)
	h.RegisterFileCopy(testApp, "saber")
	h.RegisterFileCopy(testApp, "qsaber")
	types = h.Types(testApp)
	require.Len(t, types, 3)
	assert.Equal(t, "qsaber", types[1].ID)
	assert.True(t, types[1].Available)
	assert.True(t, types[2].Available)
	assert.Equal(t, 1, types[2].RefCount)
	assert.Empty(t, h.Types("unknown"))
	_, err := h.Type(testApp, "missing")
	var nfe *models_error.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestHandler_TypeKeyedByExtension(t *testing.T) {
	dest := path.Join(t.TempDir(), "sabers")
	catalogPath := path.Join(t.TempDir(), "catalog.yaml")
	catalog := `com.example.game:
  - id: custom-sabers
    name: Custom sabers
    extension: .qsaber
    destination: ` + dest + `
    requiresModded: true
`
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalog), 0664))
	h := New(fs_util.FileSystem{}, resty.New(), Config{CatalogPath: catalogPath})
	require.NoError(t, h.LoadCatalog())
	h.RegisterFileCopy(testApp, "qsaber")
	types := h.Types(testApp)
	require.Len(t, types, 1)
	assert.Equal(t, "custom-sabers", types[0].ID)
	assert.True(t, types[0].Available)
	assert.Equal(t, 1, types[0].RefCount)
	typ, ok := h.TypeForFile(testApp, "blue.qsaber")
	require.True(t, ok)
	assert.Equal(t, "custom-sabers", typ.ID)
	src := path.Join(t.TempDir(), "upload")
	require.NoError(t, os.WriteFile(src, []byte("saber"), 0664))
	dstPath, err := h.InstallFile(testApp, typ.ID, src, "blue.qsaber")
	require.NoError(t, err)
	assert.Equal(t, path.Join(dest, "blue.qsaber"), dstPath)
	h.RemoveFileCopy(testApp, ".QSABER")
	types = h.Types(testApp)
	require.Len(t, types, 1)
	assert.False(t, types[0].Available)
}

func TestHandler_Files(t *testing.T) {
	dest := path.Join(t.TempDir(), "sabers")
	h := newTestHandler(t, dest)
	src := path.Join(t.TempDir(), "upload")
	require.NoError(t, os.WriteFile(src, []byte("saber"), 0664))
	_, ok := h.TypeForFile(testApp, "Blue.SABER")
	assert.False(t, ok)
	_, err := h.InstallFile(testApp, "saber", src, "blue.saber")
	var pe *models_error.PreconditionError
	assert.ErrorAs(t, err, &pe)
	h.RegisterFileCopy(testApp, "saber")
	typ, ok := h.TypeForFile(testApp, "Blue.SABER")
	require.True(t, ok)
	assert.Equal(t, "saber", typ.ID)
	dstPath, err := h.InstallFile(testApp, typ.ID, src, "../blue.saber")
	require.NoError(t, err)
	assert.Equal(t, path.Join(dest, "blue.saber"), dstPath)
	files, err := h.ListFiles(testApp, "saber")
	require.NoError(t, err)
	assert.Equal(t, []string{"blue.saber"}, files)
	require.NoError(t, h.DeleteFile(testApp, "saber", "blue.saber"))
	err = h.DeleteFile(testApp, "saber", "blue.saber")
	var nfe *models_error.NotFoundError
	assert.ErrorAs(t, err, &nfe)
	err = h.DeleteFile(testApp, "saber", "../x")
	var iie *models_error.InvalidInputError
	assert.ErrorAs(t, err, &iie)
}

func TestHandler_LoadCatalog(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		h := New(fs_util.FileSystem{}, resty.New(), Config{CatalogPath: path.Join(t.TempDir(), "none.yaml")})
		assert.NoError(t, h.LoadCatalog())
		assert.Empty(t, h.Types(testApp))
	})
	t.Run("duplicate id", func(t *testing.T) {
		p := path.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(p, []byte("app:\n  - id: a\n  - id: a\n"), 0664))
		h := New(fs_util.FileSystem{}, resty.New(), Config{CatalogPath: p})
		var se *models_error.SchemaError
		assert.ErrorAs(t, h.LoadCatalog(), &se)
	})
	t.Run("malformed", func(t *testing.T) {
		p := path.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(p, []byte("app: [unclosed"), 0664))
		h := New(fs_util.FileSystem{}, resty.New(), Config{CatalogPath: p})
		var pe *models_error.ParseError
		assert.ErrorAs(t, h.LoadCatalog(), &pe)
	})
}

func TestHandler_FetchCatalog(t *testing.T) {
	dest := t.TempDir()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog.yaml" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(testCatalog(dest)))
	}))
	defer srv.Close()
	catalogPath := path.Join(t.TempDir(), "catalog.yaml")
	h := New(fs_util.FileSystem{}, resty.New(), Config{CatalogPath: catalogPath, CatalogURL: srv.URL + "/catalog.yaml"})
	require.NoError(t, h.FetchCatalog(context.Background()))
	assert.Len(t, h.Types(testApp), 2)
	_, err := os.Stat(catalogPath)
	assert.NoError(t, err)
	h2 := New(fs_util.FileSystem{}, resty.New(), Config{CatalogURL: srv.URL + "/missing"})
	assert.Error(t, h2.FetchCatalog(context.Background()))
}
