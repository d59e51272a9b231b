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
)

func getInfoH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, "/" + models_api.InfoPath, func(gc *gin.Context) {
		gc.JSON(http.StatusOK, a.infoHdl.ServiceInfo())
	}
}

// getReportH godoc
// @Summary Get support report
// @Description Collects app status, mods and operations into a report.
// @Tags Info
// @Produce	json
// @Success	200 {object} models_report.Report "report"
// @Router /report [get]
func getReportH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, "/" + models_api.ReportPath, func(gc *gin.Context) {
		gc.JSON(http.StatusOK, a.service.Report(gc.Request.Context()))
	}
}

func getMetricsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, "/" + models_api.MetricsPath, gin.WrapH(a.metricsHdl.Handler())
}
