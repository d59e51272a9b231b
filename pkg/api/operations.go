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
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	models_api "github.com/qavs/qavs-mod-manager/lib/models/api"
	models_download "github.com/qavs/qavs-mod-manager/pkg/models/download"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
)

const operationIdParam = "id"

type operationsQuery struct {
	Kind     string `form:"kind"`
	App      string `form:"app"`
	Active   bool   `form:"active"`
	SortDesc bool   `form:"sort_desc"`
}

type operationsHistoryQuery struct {
	Kind  string `form:"kind"`
	Limit int    `form:"limit"`
}

// getOperationsH godoc
// @Summary Get operations
// @Description List tracked operations.
// @Tags Operations
// @Produce	json
// @Param kind query string false "filter by kind" Enums(patch, backup-create, restore-data, download)
// @Param app query string false "filter by app"
// @Param active query bool false "only running or pending operations"
// @Param sort_desc query bool false "sort in descending order"
// @Success	200 {array} models_operation.Operation "operations"
// @Failure	400 {string} string "error message"
// @Router /operations [get]
func getOperationsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, "/" + models_api.OperationsPath, func(gc *gin.Context) {
		var query operationsQuery
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		if err := checkKind(query.Kind); err != nil {
			_ = gc.Error(err)
			return
		}
		ops := a.service.Operations(gc.Request.Context(), models_operation.Filter{
			Kind:     query.Kind,
			App:      query.App,
			Active:   query.Active,
			SortDesc: query.SortDesc,
		})
		if ops == nil {
			ops = []models_operation.Operation{}
		}
		gc.JSON(http.StatusOK, ops)
	}
}

func getOperationsHistoryH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join("/", models_api.OperationsPath, models_api.OperationsHistoryPath), func(gc *gin.Context) {
		var query operationsHistoryQuery
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		if err := checkKind(query.Kind); err != nil {
			_ = gc.Error(err)
			return
		}
		ops, err := a.service.OperationsHistory(gc.Request.Context(), models_operation.HistoryFilter{
			Kind:  query.Kind,
			Limit: query.Limit,
		})
		if err != nil {
			_ = gc.Error(err)
			return
		}
		if ops == nil {
			ops = []models_operation.Operation{}
		}
		gc.JSON(http.StatusOK, ops)
	}
}

func getOperationH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join("/", models_api.OperationsPath, ":"+operationIdParam), func(gc *gin.Context) {
		op, err := a.service.Operation(gc.Request.Context(), gc.Param(operationIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, op)
	}
}

func patchOperationCancelH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join("/", models_api.OperationsPath, ":"+operationIdParam, models_api.OperationsCancelPath), func(gc *gin.Context) {
		if err := a.service.CancelOperation(gc.Request.Context(), gc.Param(operationIdParam)); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func getDownloadsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, "/" + models_api.DownloadsPath, func(gc *gin.Context) {
		ops := a.service.Downloads(gc.Request.Context())
		if ops == nil {
			ops = []models_operation.Operation{}
		}
		gc.JSON(http.StatusOK, ops)
	}
}

// postDownloadH godoc
// @Summary Download apk
// @Description Download an apk into a new backup.
// @Tags Downloads
// @Accept json
// @Produce	plain
// @Param data body models_download.Request true "download request"
// @Success	202 {string} string "operation ID"
// @Failure	400 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /downloads [post]
func postDownloadH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, "/" + models_api.DownloadsPath, func(gc *gin.Context) {
		var req models_download.Request
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		id, err := a.service.StartDownload(gc.Request.Context(), req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusAccepted, id)
	}
}

func checkKind(kind string) error {
	if kind == "" {
		return nil
	}
	if _, ok := models_operation.KindMap[kind]; !ok {
		return models_error.NewInvalidInputError(fmt.Errorf("unknown operation kind '%s'", kind))
	}
	return nil
}
