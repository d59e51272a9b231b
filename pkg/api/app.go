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

	"github.com/gin-gonic/gin"
	models_api "github.com/qavs/qavs-mod-manager/lib/models/api"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
)

type appRequest struct {
	App string `json:"app"`
}

func getAppH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, "/" + models_api.AppPath, func(gc *gin.Context) {
		gc.JSON(http.StatusOK, appRequest{App: a.service.App(gc.Request.Context())})
	}
}

// putAppH godoc
// @Summary Change app
// @Description Switch the managed app and load its mods.
// @Tags App
// @Accept json
// @Param data body appRequest true "app id"
// @Success	200
// @Failure	400 {string} string "error message"
// @Failure	409 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /app [put]
func putAppH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPut, "/" + models_api.AppPath, func(gc *gin.Context) {
		var req appRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		if err := a.service.ChangeApp(gc.Request.Context(), req.App); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}
