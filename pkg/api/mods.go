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
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	models_api "github.com/qavs/qavs-mod-manager/lib/models/api"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
)

const (
	modIdParam      = "id"
	copyTypeIdParam = "id"
	uploadFormKey   = "file"
)

type deleteFileCopyFileQuery struct {
	File string `form:"file"`
}

func getModsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, "/" + models_api.ModsPath, func(gc *gin.Context) {
		gc.JSON(http.StatusOK, a.service.Mods(gc.Request.Context()))
	}
}

// postModH godoc
// @Summary Upload mod
// @Description Install an uploaded mod or copy the file to the destination of its file copy type.
// @Tags Mods
// @Accept mpfd
// @Produce	json
// @Param file formData file true "mod or file"
// @Success	200 {object} models_mod.UploadResult "upload result"
// @Failure	400 {string} string "error message"
// @Failure	412 {string} string "error message"
// @Failure	413 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /mods [post]
func postModH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, "/" + models_api.ModsPath, func(gc *gin.Context) {
		a.limitUpload(gc)
		fh, err := gc.FormFile(uploadFormKey)
		if err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		file, err := fh.Open()
		if err != nil {
			_ = gc.Error(err)
			return
		}
		defer file.Close()
		res, err := a.service.InstallUpload(gc.Request.Context(), fh.Filename, file)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, res)
	}
}

func getModH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join("/", models_api.ModsPath, ":"+modIdParam), func(gc *gin.Context) {
		mod, err := a.service.Mod(gc.Request.Context(), gc.Param(modIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, mod)
	}
}

func deleteModH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join("/", models_api.ModsPath, ":"+modIdParam), func(gc *gin.Context) {
		if err := a.service.DeleteMod(gc.Request.Context(), gc.Param(modIdParam)); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func deleteModsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, "/" + models_api.ModsPath, func(gc *gin.Context) {
		if err := a.service.DeleteAllMods(gc.Request.Context()); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func patchModEnableH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join("/", models_api.ModsPath, ":"+modIdParam, models_api.ModEnablePath), func(gc *gin.Context) {
		if err := a.service.EnableMod(gc.Request.Context(), gc.Param(modIdParam)); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func patchModDisableH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join("/", models_api.ModsPath, ":"+modIdParam, models_api.ModDisablePath), func(gc *gin.Context) {
		if err := a.service.DisableMod(gc.Request.Context(), gc.Param(modIdParam)); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func getModCoverH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join("/", models_api.ModsPath, ":"+modIdParam, models_api.ModCoverPath), func(gc *gin.Context) {
		p, err := a.service.ModCoverPath(gc.Request.Context(), gc.Param(modIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.File(p)
	}
}

func getFileCopyTypesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, "/" + models_api.FileCopyTypesPath, func(gc *gin.Context) {
		types, err := a.service.FileCopyTypes(gc.Request.Context())
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, types)
	}
}

func getFileCopyFilesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join("/", models_api.FileCopyTypesPath, ":"+copyTypeIdParam), func(gc *gin.Context) {
		files, err := a.service.FileCopyFiles(gc.Request.Context(), gc.Param(copyTypeIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, files)
	}
}

func deleteFileCopyFileH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join("/", models_api.FileCopyTypesPath, ":"+copyTypeIdParam), func(gc *gin.Context) {
		var query deleteFileCopyFileQuery
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		if err := a.service.DeleteFileCopyFile(gc.Request.Context(), gc.Param(copyTypeIdParam), query.File); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}
