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

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
	sb_config_hdl "github.com/SENERGY-Platform/go-service-base/config-hdl"
	"github.com/SENERGY-Platform/go-service-base/srv-info-hdl"
	struct_logger "github.com/SENERGY-Platform/go-service-base/struct-logger"
	"github.com/qavs/qavs-mod-manager/pkg/api"
	"github.com/qavs/qavs-mod-manager/pkg/components/fs_util"
	handler_backups "github.com/qavs/qavs-mod-manager/pkg/components/handler/backups"
	handler_database "github.com/qavs/qavs-mod-manager/pkg/components/handler/database"
	handler_database_schema "github.com/qavs/qavs-mod-manager/pkg/components/handler/database/schema"
	handler_device "github.com/qavs/qavs-mod-manager/pkg/components/handler/device"
	handler_downloads "github.com/qavs/qavs-mod-manager/pkg/components/handler/downloads"
	provider_qmod "github.com/qavs/qavs-mod-manager/pkg/components/handler/mod_providers/qmod"
	provider_so "github.com/qavs/qavs-mod-manager/pkg/components/handler/mod_providers/so"
	handler_mod_registry "github.com/qavs/qavs-mod-manager/pkg/components/handler/mod_registry"
	handler_operations "github.com/qavs/qavs-mod-manager/pkg/components/handler/operations"
	handler_other_files "github.com/qavs/qavs-mod-manager/pkg/components/handler/other_files"
	handler_patcher "github.com/qavs/qavs-mod-manager/pkg/components/handler/patcher"
	handler_state "github.com/qavs/qavs-mod-manager/pkg/components/handler/state"
	handler_wizard "github.com/qavs/qavs-mod-manager/pkg/components/handler/wizard"
	helper_http_client "github.com/qavs/qavs-mod-manager/pkg/components/helper/http_client"
	helper_metrics "github.com/qavs/qavs-mod-manager/pkg/components/helper/metrics"
	helper_os_signal "github.com/qavs/qavs-mod-manager/pkg/components/helper/os_signal"
	helper_sql_db "github.com/qavs/qavs-mod-manager/pkg/components/helper/sql_db"
	helper_time "github.com/qavs/qavs-mod-manager/pkg/components/helper/time"
	"github.com/qavs/qavs-mod-manager/pkg/configuration"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
	"github.com/qavs/qavs-mod-manager/pkg/service"
	"github.com/spf13/cobra"
)

var version string

func main() {
	ec := 0
	defer func() {
		os.Exit(ec)
	}()

	var confPath string

	rootCmd := &cobra.Command{
		Use:           "qavs-mod-manager",
		Short:         "Mod, backup and patching manager for Android apps",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			ec = run(confPath)
		},
	}
	rootCmd.Flags().StringVar(&confPath, "config", "", "path to config file")

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		ec = 1
	}
}

func run(confPath string) (ec int) {
	srvInfoHdl := srv_info_hdl.New("qavs-mod-manager", version)

	config, err := configuration.New(confPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}

	helper_time.UTC = config.UseUTC

	logger := struct_logger.New(config.Logger, os.Stderr, "", srvInfoHdl.Name())

	logger.Info("starting service", slog_attr.VersionKey, srvInfoHdl.Version(), slog_attr.ConfigValuesKey, sb_config_hdl.StructToMap(config, true))

	ctx, cf := context.WithCancel(context.Background())
	defer cf()

	sqlDB, err := helper_sql_db.NewSQLiteDatabase(config.Database.FilePath, config.Database.SQL)
	if err != nil {
		logger.Error("opening database failed", slog_attr.ErrorKey, err)
		return 1
	}
	defer sqlDB.Close()

	databaseHdl := handler_database.New(sqlDB)
	err = databaseHdl.Migrate(ctx, handler_database_schema.Init)
	if err != nil {
		logger.Error("database migration failed", slog_attr.ErrorKey, err)
		return 1
	}

	handler_operations.InitLogger(logger)
	handler_mod_registry.InitLogger(logger)
	provider_qmod.InitLogger(logger)
	provider_so.InitLogger(logger)
	handler_other_files.InitLogger(logger)
	handler_device.InitLogger(logger)
	handler_backups.InitLogger(logger)
	handler_patcher.InitLogger(logger)
	handler_downloads.InitLogger(logger)
	handler_wizard.InitLogger(logger)
	service.InitLogger(logger)

	fSys := fs_util.FileSystem{}
	metricsHdl := helper_metrics.New()

	ccHandler := ccjh.New(config.Jobs.BufferSize)
	err = ccHandler.RunAsync(config.Jobs.MaxNumber, time.Duration(config.Jobs.CCHInterval*1000))
	if err != nil {
		logger.Error("starting job handler failed", slog_attr.ErrorKey, err)
		return 1
	}
	defer func() {
		ccHandler.Stop()
		logger.Info("job handler stopped")
	}()

	operationsHdl := handler_operations.New(ctx, handler_operations.NewCCQueue(ccHandler), databaseHdl, metricsHdl)

	stateHdl := handler_state.New(fSys, config.State)
	if err = stateHdl.Load(); err != nil {
		logger.Error("loading state failed", slog_attr.ErrorKey, err)
		return 1
	}

	otherFilesHdl := handler_other_files.New(fSys, helper_http_client.NewWithTimeout(config.HttpClient), config.OtherFiles)
	if err = otherFilesHdl.LoadCatalog(); err != nil {
		logger.Error("loading file copy catalog failed", slog_attr.ErrorKey, err)
		return 1
	}
	if config.OtherFiles.CatalogURL != "" {
		go func() {
			if err := otherFilesHdl.FetchCatalog(ctx); err != nil {
				logger.Warn("fetching file copy catalog failed", slog_attr.URLKey, config.OtherFiles.CatalogURL, slog_attr.ErrorKey, err)
			}
		}()
	}

	modRegistry := handler_mod_registry.New(fSys, otherFilesHdl, config.ModRegistry)
	for _, provider := range []handler_mod_registry.Provider{provider_qmod.New(), provider_so.New()} {
		if err = modRegistry.RegisterModProvider(provider); err != nil {
			logger.Error("registering mod provider failed", slog_attr.ProviderKey, provider.Type(), slog_attr.ErrorKey, err)
			return 1
		}
	}

	deviceHdl := handler_device.New(config.Device, config.ModRegistry.AndroidDataPath)
	patcherHdl := handler_patcher.New(config.Patcher)
	backupsHdl := handler_backups.New(config.Backups, deviceHdl, patcherHdl)
	downloadsHdl := handler_downloads.New(helper_http_client.New(config.HttpClient), backupsHdl)

	dataRestorer := service.NewDataRestorer(operationsHdl, backupsHdl)
	wizardCtl := handler_wizard.New(deviceHdl, backupsHdl, operationsHdl, dataRestorer)

	srv := service.New(service.Handlers{
		Registry:   modRegistry,
		OtherFiles: otherFilesHdl,
		Operations: operationsHdl,
		Device:     deviceHdl,
		Backups:    backupsHdl,
		Patcher:    patcherHdl,
		Downloads:  downloadsHdl,
		State:      stateHdl,
		Wizard:     wizardCtl,
		Restorer:   dataRestorer,
		Metrics:    metricsHdl,
	}, srvInfoHdl.Version(), config.Service)

	if err = srv.Init(); err != nil {
		logger.Error("initializing service failed", slog_attr.ErrorKey, err)
		return 1
	}

	if err = srv.LoadApp(ctx); err != nil {
		logger.Error("loading mods failed", slog_attr.AppKey, stateHdl.CurrentApp(), slog_attr.ErrorKey, err)
		return 1
	}
	defer func() {
		if err := modRegistry.SaveMods(); err != nil {
			logger.Error("saving manifest failed", slog_attr.ErrorKey, err)
		}
	}()

	httpApi, err := api.New(
		srv,
		srvInfoHdl,
		metricsHdl,
		logger,
		config.Http,
	)
	if err != nil {
		logger.Error("creating http engine failed", slog_attr.ErrorKey, err)
		return 1
	}

	httpServer := &http.Server{Handler: httpApi.Handler()}
	serverListener, err := net.Listen("tcp", ":"+strconv.FormatInt(int64(config.ServerPort), 10))
	if err != nil {
		logger.Error("creating server listener failed", slog_attr.ErrorKey, err)
		return 1
	}

	go func() {
		helper_os_signal.Wait(ctx, logger, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		cf()
	}()

	go operationsHdl.RunPurger(ctx, time.Duration(config.Jobs.PJHInterval), time.Duration(config.Jobs.MaxAge), time.Duration(config.Jobs.HistoryAge))

	wg := &sync.WaitGroup{}
	var mu sync.Mutex

	go func() {
		logger.Info("starting http server")
		if err := httpServer.Serve(serverListener); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("starting server failed", slog_attr.ErrorKey, err)
			mu.Lock()
			ec = 1
			mu.Unlock()
		}
		cf()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		logger.Info("stopping http server")
		ctxWt, cf2 := context.WithTimeout(context.Background(), time.Second*5)
		defer cf2()
		if err := httpServer.Shutdown(ctxWt); err != nil {
			logger.Error("stopping server failed", slog_attr.ErrorKey, err)
			mu.Lock()
			ec = 1
			mu.Unlock()
		} else {
			logger.Info("http server stopped")
		}
	}()

	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	return ec
}
