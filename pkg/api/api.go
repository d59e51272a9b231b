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
	"log/slog"
	"net/http"

	gin_mw "github.com/SENERGY-Platform/gin-middleware"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	models_api "github.com/qavs/qavs-mod-manager/lib/models/api"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

type Config struct {
	AccessLog bool `json:"access_log" env_var:"HTTP_ACCESS_LOG"`
	// MaxUploadSize limits upload request bodies in bytes, zero disables the limit.
	MaxUploadSize int64 `json:"max_upload_size" env_var:"HTTP_MAX_UPLOAD_SIZE"`
	// UploadMemory is the part of a multipart upload kept in memory, the rest is buffered on disk.
	UploadMemory int64 `json:"upload_memory" env_var:"HTTP_UPLOAD_MEMORY"`
}

type Api struct {
	service    serviceItf
	infoHdl    infoHandler
	metricsHdl metricsHandler
	config     Config
	ginEngine  *gin.Engine
}

func New(service serviceItf, infoHdl infoHandler, metricsHdl metricsHandler, logger *slog.Logger, config Config) (*Api, error) {
	ginEngine := gin.New()
	var middleware []gin.HandlerFunc
	if config.AccessLog {
		middleware = append(
			middleware,
			gin_mw.StructLoggerHandler(
				logger.With(slog_attr.LogRecordTypeKey, slog_attr.HttpAccessLogRecordTypeVal),
				slog_attr.Provider,
				nil,
				nil,
				requestIDGenerator,
			),
		)
	}
	// metrics come first so that recovered panics are counted with their final status
	middleware = append(middleware,
		metricsHdl.Middleware(),
		gin_mw.StaticHeaderHandler(map[string]string{
			models_api.HeaderApiVer:  infoHdl.Version(),
			models_api.HeaderSrvName: infoHdl.Name(),
		}),
		requestid.New(requestid.WithCustomHeaderStrKey(models_api.HeaderRequestID)),
		gin_mw.ErrorHandler(getStatusCode, ", "),
		gin_mw.StructRecoveryHandler(logger, gin_mw.DefaultRecoveryFunc),
	)
	ginEngine.Use(middleware...)
	ginEngine.UseRawPath = true
	ginEngine.HandleMethodNotAllowed = true
	if config.UploadMemory > 0 {
		ginEngine.MaxMultipartMemory = config.UploadMemory
	}
	a := &Api{
		service:    service,
		infoHdl:    infoHdl,
		metricsHdl: metricsHdl,
		config:     config,
		ginEngine:  ginEngine,
	}
	setRoutes, err := routes.Set(a, ginEngine)
	if err != nil {
		return nil, err
	}
	for _, route := range setRoutes {
		logger.Debug("http route", slog_attr.MethodKey, route[0], slog_attr.PathKey, route[1])
	}
	return a, nil
}

func (a *Api) Handler() *gin.Engine {
	return a.ginEngine
}

// limitUpload caps the request body of upload routes.
func (a *Api) limitUpload(gc *gin.Context) {
	if a.config.MaxUploadSize > 0 {
		gc.Request.Body = http.MaxBytesReader(gc.Writer, gc.Request.Body, a.config.MaxUploadSize)
	}
}

func requestIDGenerator(gc *gin.Context) (string, any) {
	return slog_attr.RequestIDKey, requestid.Get(gc)
}
