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

package configuration

import (
	"time"

	sb_config_hdl "github.com/SENERGY-Platform/go-service-base/config-hdl"
	struct_logger "github.com/SENERGY-Platform/go-service-base/struct-logger"
	"github.com/qavs/qavs-mod-manager/pkg/api"
	handler_backups "github.com/qavs/qavs-mod-manager/pkg/components/handler/backups"
	handler_device "github.com/qavs/qavs-mod-manager/pkg/components/handler/device"
	handler_mod_registry "github.com/qavs/qavs-mod-manager/pkg/components/handler/mod_registry"
	handler_other_files "github.com/qavs/qavs-mod-manager/pkg/components/handler/other_files"
	handler_patcher "github.com/qavs/qavs-mod-manager/pkg/components/handler/patcher"
	handler_state "github.com/qavs/qavs-mod-manager/pkg/components/handler/state"
	helper_http_client "github.com/qavs/qavs-mod-manager/pkg/components/helper/http_client"
	helper_sql_db "github.com/qavs/qavs-mod-manager/pkg/components/helper/sql_db"
	"github.com/qavs/qavs-mod-manager/pkg/service"
)

type JobsConfig struct {
	BufferSize  int   `json:"buffer_size" env_var:"JOBS_BUFFER_SIZE"`
	MaxNumber   int   `json:"max_number" env_var:"JOBS_MAX_NUMBER"`
	CCHInterval int   `json:"cch_interval" env_var:"JOBS_CCH_INTERVAL"`
	PJHInterval int64 `json:"pjh_interval" env_var:"JOBS_PJH_INTERVAL"`
	MaxAge      int64 `json:"max_age" env_var:"JOBS_MAX_AGE"`
	HistoryAge  int64 `json:"history_age" env_var:"JOBS_HISTORY_AGE"`
}

type DatabaseConfig struct {
	FilePath string `json:"file_path" env_var:"DATABASE_FILE_PATH"`
	SQL      helper_sql_db.Config
}

type Config struct {
	ServerPort    uint                        `json:"server_port" env_var:"SERVER_PORT"`
	ModRegistry   handler_mod_registry.Config `json:"mod_registry"`
	OtherFiles    handler_other_files.Config  `json:"other_files"`
	Device        handler_device.Config       `json:"device"`
	Backups       handler_backups.Config      `json:"backups"`
	Patcher       handler_patcher.Config      `json:"patcher"`
	State         handler_state.Config        `json:"state"`
	Service       service.Config              `json:"service"`
	HttpClient    helper_http_client.Config   `json:"http_client"`
	Logger        struct_logger.Config        `json:"logger"`
	Jobs          JobsConfig                  `json:"jobs"`
	Database      DatabaseConfig              `json:"database"`
	Http          api.Config                  `json:"http"`
	UseUTC        bool                        `json:"use_utc" env_var:"USE_UTC"`
}

func New(path string) (*Config, error) {
	cfg := Config{
		ServerPort: 50002,
		ModRegistry: handler_mod_registry.Config{
			AndroidDataPath: "/sdcard/Android/data",
			ModsDataPath:    "/sdcard/QAVS/mods",
		},
		OtherFiles: handler_other_files.Config{
			CatalogPath: "/sdcard/QAVS/file_copy_types.yaml",
		},
		Device: handler_device.Config{
			PmCommand:     "pm",
			AppOpsCommand: "appops",
			PropCommand:   "getprop",
		},
		Backups: handler_backups.Config{
			WorkDirPath: "/sdcard/QAVS/backups",
		},
		Patcher: handler_patcher.Config{
			Command: "qavs-patcher",
		},
		State: handler_state.Config{
			FilePath:   "/sdcard/QAVS/state.yaml",
			DefaultApp: "com.beatgames.beatsaber",
		},
		Service: service.Config{
			UploadDirPath: "/sdcard/QAVS/uploads",
		},
		HttpClient: helper_http_client.Config{
			Timeout:      int64(time.Second * 30),
			RetryMax:     3,
			RetryWaitMin: int64(time.Second),
			RetryWaitMax: int64(time.Second * 10),
			UserAgent:    "qavs-mod-manager",
		},
		Logger: struct_logger.Config{
			Handler:    struct_logger.TextHandlerSelector,
			Level:      struct_logger.LevelInfo,
			TimeFormat: time.RFC3339Nano,
			TimeUtc:    true,
			AddMeta:    false,
		},
		Http: api.Config{
			MaxUploadSize: 2 << 30,
			UploadMemory:  32 << 20,
		},
		Jobs: JobsConfig{
			BufferSize:  200,
			MaxNumber:   4,
			CCHInterval: 500000,
			PJHInterval: 300000000000,
			MaxAge:      172800000000000,
			HistoryAge:  2592000000000000,
		},
		Database: DatabaseConfig{
			FilePath: "/sdcard/QAVS/data/qavs.db",
			SQL: helper_sql_db.Config{
				MaxOpenConns:    1,
				MaxIdleConns:    1,
				ConnMaxLifetime: int64(time.Minute * 5),
			},
		},
		UseUTC: true,
	}
	err := sb_config_hdl.Load(&cfg, nil, nil, nil, path)
	return &cfg, err
}
