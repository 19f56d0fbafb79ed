/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	healthprovider "github.com/wso2/profile-server/internal/health_check/provider"
	"github.com/wso2/profile-server/internal/profile/importer"
	"github.com/wso2/profile-server/internal/profile/provider"
	"github.com/wso2/profile-server/internal/profile/schema"
	"github.com/wso2/profile-server/internal/profile/service"
	"github.com/wso2/profile-server/internal/system/config"
	"github.com/wso2/profile-server/internal/system/constants"
	"github.com/wso2/profile-server/internal/system/log"
	"github.com/wso2/profile-server/internal/system/managers"
)

func main() {
	serverHome := getServerHome()
	logger := log.GetLogger()

	envFiles, err := filepath.Glob(filepath.Join(serverHome, constants.EnvFilesGlob))
	if err != nil || len(envFiles) == 0 {
		logger.Debug("No .env files found in config directory")
	} else {
		_ = godotenv.Load(envFiles...)
	}

	// Load the configuration file
	serverConfig, err := config.LoadConfig(serverHome, constants.DeploymentConfigFile)
	if err != nil {
		logger.Fatal("Failed to load the server configuration", log.Error(err))
	}

	// Initialize runtime configurations.
	if err := config.InitializeRuntime(serverHome, serverConfig); err != nil {
		logger.Fatal("Failed to initialize the runtime", log.Error(err))
	}

	if err := log.Init(serverConfig.Log.LogLevel); err != nil {
		logger.Fatal("Failed to initialize the logger", log.Error(err))
	}
	logger = log.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runtime := config.GetRuntime()
	backend, err := managers.OpenBackend(ctx, runtime.Home, runtime.Config)
	if err != nil {
		logger.Fatal("Failed to open the profile store", log.Error(err))
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("Failed to close the profile store", log.Error(err))
		}
	}()

	validator, err := schema.Default()
	if err != nil {
		logger.Fatal("Failed to compile the profile schema", log.Error(err))
	}
	profilesService := service.NewProfilesService(backend.Repository, backend.Lock, validator, importer.Options{
		ConcurrentBuilds: serverConfig.Import.ConcurrentBuilds,
		LookupCacheTTL:   serverConfig.Import.LookupCacheTTL,
	})

	serviceManager := managers.NewServiceManager(http.NewServeMux(), managers.Dependencies{
		Profiles:   provider.NewProfilesProvider(profilesService),
		Health:     healthprovider.NewHealthCheckProvider(backend.Probes),
		DefaultOrg: serverConfig.Import.DefaultOrg,
	})
	// Register the services.
	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		logger.Fatal("Failed to register the services", log.Error(err))
	}

	serverAddr := fmt.Sprintf("%s:%d", serverConfig.Addr.Host, serverConfig.Addr.Port)
	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.Fatal("Failed to start the listener", log.String("address", serverAddr), log.Error(err))
	}

	server := &http.Server{
		Handler:           enableCORS(serviceManager.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("Profile server started", log.String("address", serverAddr),
		log.String("store", serverConfig.Store.Type))
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to serve requests", log.Error(err))
	}
	logger.Info("Profile server stopped")
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, "+constants.TraceIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getServerHome() string {

	// Parse project directory from command line arguments.
	projectHomeFlag := flag.String("home", "", "Path to the profile server home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		log.GetLogger().Info("Using server home from command line argument", log.String("home", *projectHomeFlag))
		return *projectHomeFlag
	}

	// If no command line argument is provided, use the current working directory.
	dir, err := os.Getwd()
	if err != nil {
		log.GetLogger().Fatal("Failed to get current working directory", log.Error(err))
	}
	return dir
}
