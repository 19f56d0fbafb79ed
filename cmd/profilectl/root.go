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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wso2/profile-server/internal/profile/importer"
	"github.com/wso2/profile-server/internal/profile/schema"
	"github.com/wso2/profile-server/internal/profile/service"
	"github.com/wso2/profile-server/internal/system/config"
	"github.com/wso2/profile-server/internal/system/constants"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
	"github.com/wso2/profile-server/internal/system/managers"
)

type rootOptions struct {
	home     string
	store    string
	logLevel string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "profilectl",
		Short:         "Manage xAPI profiles in the profile store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return log.Init(opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.home, "home", ".", "Profile server home directory")
	cmd.PersistentFlags().StringVar(&opts.store, "store", "", "Override the configured store: memory, postgres or mongo")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "WARN", "Log level")

	cmd.AddCommand(
		newValidateCmd(),
		newImportCmd(&opts),
		newExportCmd(&opts),
		newPublishCmd(&opts),
		newDiscardCmd(&opts),
	)
	return cmd
}

// loadConfig reads the deployment file under the home directory. A missing file yields the
// defaults so the memory store works without any setup.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	envFiles, _ := filepath.Glob(filepath.Join(opts.home, constants.EnvFilesGlob))
	if len(envFiles) > 0 {
		_ = godotenv.Load(envFiles...)
	}

	cfg, err := config.LoadConfig(opts.home, constants.DeploymentConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.ParseConfig(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if opts.store != "" {
		cfg.Store.Type = opts.store
	}
	return cfg, nil
}

// withService opens the configured store for the duration of fn.
func withService(ctx context.Context, opts *rootOptions, fn func(svc service.ProfilesServiceInterface, cfg *config.Config) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	backend, err := managers.OpenBackend(ctx, opts.home, *cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.GetLogger().Warn("Failed to close the profile store", log.Error(err))
		}
	}()

	validator, err := schema.Default()
	if err != nil {
		return err
	}
	svc := service.NewProfilesService(backend.Repository, backend.Lock, validator, importer.Options{
		ConcurrentBuilds: cfg.Import.ConcurrentBuilds,
		LookupCacheTTL:   cfg.Import.LookupCacheTTL,
	})
	return fn(svc, cfg)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describe flattens a client error into its code and description for terminal output.
func describe(err error) error {
	var clientErr *errors2.ClientError
	if errors.As(err, &clientErr) {
		return fmt.Errorf("%s: %s", clientErr.ErrorMessage.Code, clientErr.ErrorMessage.Description)
	}
	return err
}

func readDocument(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
