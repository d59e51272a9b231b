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
	models_patching "github.com/qavs/qavs-mod-manager/pkg/models/patching"
)

func getPatchingStatusH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join("/", models_api.PatchingPath, models_api.PatchingStatusPath), func(gc *gin.Context) {
		status, err := a.service.PatchingStatus(gc.Request.Context())
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, status)
	}
}

func getPatchingOptionsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join("/", models_api.PatchingPath, models_api.PatchingOptionsPath), func(gc *gin.Context) {
		gc.JSON(http.StatusOK, a.service.PatchOptions(gc.Request.Context()))
	}
}

func putPatchingOptionsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPut, path.Join("/", models_api.PatchingPath, models_api.PatchingOptionsPath), func(gc *gin.Context) {
		var opts models_patching.Options
		if err := gc.ShouldBindJSON(&opts); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		if err := a.service.SetPatchOptions(gc.Request.Context(), opts); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

// postPatchingOperationH godoc
// @Summary Patch app
// @Description Start patching the current app. The operation result names the backup holding the patched apk.
// @Tags Patching
// @Produce	plain
// @Success	202 {string} string "operation ID"
// @Failure	409 {string} string "error message"
// @Failure	412 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /patching/operation [post]
func postPatchingOperationH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join("/", models_api.PatchingPath, models_api.PatchingOperationPath), func(gc *gin.Context) {
		id, err := a.service.StartPatch(gc.Request.Context())
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusAccepted, id)
	}
}
