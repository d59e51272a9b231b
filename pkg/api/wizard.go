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
	models_wizard "github.com/qavs/qavs-mod-manager/pkg/models/wizard"
)

const wizardActionParam = "action"

type wizardBackupRequest struct {
	Name string `json:"name"`
}

func getWizardH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, "/" + models_api.WizardPath, func(gc *gin.Context) {
		gc.JSON(http.StatusOK, a.service.WizardState(gc.Request.Context()))
	}
}

func putWizardBackupH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPut, path.Join("/", models_api.WizardPath, models_api.WizardBackupPath), func(gc *gin.Context) {
		var req wizardBackupRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		if err := a.service.WizardSelectBackup(gc.Request.Context(), req.Name); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func postWizardStartH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join("/", models_api.WizardPath, models_api.WizardStartPath), func(gc *gin.Context) {
		var req models_wizard.StartRequest
		if gc.Request.ContentLength != 0 {
			if err := gc.ShouldBindJSON(&req); err != nil {
				_ = gc.Error(models_error.NewInvalidInputError(err))
				return
			}
		}
		state, err := a.service.WizardStart(gc.Request.Context(), req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, state)
	}
}

// postWizardActionH godoc
// @Summary Wizard action
// @Description Perform an action at the current step of the restore wizard.
// @Tags Wizard
// @Produce	json
// @Param action path string true "action"
// @Success	200 {object} models_wizard.State "wizard state"
// @Failure	400 {string} string "error message"
// @Failure	412 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /wizard/actions/{action} [post]
func postWizardActionH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join("/", models_api.WizardPath, models_api.WizardActionsPath, ":"+wizardActionParam), func(gc *gin.Context) {
		state, err := a.service.WizardAction(gc.Request.Context(), models_wizard.Action(gc.Param(wizardActionParam)))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, state)
	}
}

func postWizardAbortH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join("/", models_api.WizardPath, models_api.WizardAbortPath), func(gc *gin.Context) {
		state, err := a.service.WizardAction(gc.Request.Context(), models_wizard.ActionAbort)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, state)
	}
}
