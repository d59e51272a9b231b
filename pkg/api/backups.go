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
	models_backup "github.com/qavs/qavs-mod-manager/pkg/models/backup"
	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
)

const backupNameParam = "name"

// getBackupsH godoc
// @Summary Get backups
// @Description List the backups of the current app.
// @Tags Backups
// @Produce	json
// @Success	200 {object} models_backup.Backups "backups"
// @Failure	412 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /backups [get]
func getBackupsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, "/" + models_api.BackupsPath, func(gc *gin.Context) {
		list, err := a.service.Backups(gc.Request.Context())
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, list)
	}
}

func postBackupH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, "/" + models_api.BackupsPath, func(gc *gin.Context) {
		var req models_backup.CreateRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		id, err := a.service.CreateBackup(gc.Request.Context(), req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusAccepted, id)
	}
}

func getBackupH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join("/", models_api.BackupsPath, ":"+backupNameParam), func(gc *gin.Context) {
		info, err := a.service.Backup(gc.Request.Context(), gc.Param(backupNameParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, info)
	}
}

func deleteBackupH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join("/", models_api.BackupsPath, ":"+backupNameParam), func(gc *gin.Context) {
		if err := a.service.DeleteBackup(gc.Request.Context(), gc.Param(backupNameParam)); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func postBackupRestoreAppH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join("/", models_api.BackupsPath, ":"+backupNameParam, models_api.BackupRestoreAppPath), func(gc *gin.Context) {
		if err := a.service.RestoreBackupApk(gc.Request.Context(), gc.Param(backupNameParam)); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func postBackupRestoreDataH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join("/", models_api.BackupsPath, ":"+backupNameParam, models_api.BackupRestoreDataPath), func(gc *gin.Context) {
		id, err := a.service.RestoreBackupData(gc.Request.Context(), gc.Param(backupNameParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusAccepted, id)
	}
}
