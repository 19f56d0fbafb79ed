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

package managers

import (
	"context"
	"fmt"

	healthservice "github.com/wso2/profile-server/internal/health_check/service"
	"github.com/wso2/profile-server/internal/profile/store"
	"github.com/wso2/profile-server/internal/system/config"
	"github.com/wso2/profile-server/internal/system/database/lock"
	"github.com/wso2/profile-server/internal/system/database/provider"
	"github.com/wso2/profile-server/internal/system/log"
)

// SchemaScript is the Postgres DDL applied at startup, relative to the server home.
const SchemaScript = "dbscripts/postgres.sql"

// Backend is the persistence stack selected by the store configuration.
type Backend struct {
	Repository store.Repository
	Lock       lock.DistributedLock
	Probes     map[string]healthservice.Probe
	closers    []func() error
}

// Close releases the backend connections.
func (b *Backend) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenBackend connects the configured store. Postgres deployments share an advisory lock
// across replicas; the other stores only serialize imports within the process.
func OpenBackend(ctx context.Context, home string, cfg config.Config) (*Backend, error) {

	logger := log.GetLogger().With(log.String("store", cfg.Store.Type))
	dbProvider := provider.NewDBProviderWithConfig(cfg)

	switch cfg.Store.Type {
	case config.StoreMemory:
		logger.Warn("Using the in-memory profile store. Imported profiles are lost on restart.")
		return &Backend{
			Repository: store.NewMemoryRepository(),
			Lock:       lock.NewLocalLock(),
		}, nil

	case config.StorePostgres:
		dbClient, err := dbProvider.GetDBClient()
		if err != nil {
			return nil, err
		}
		if err := dbClient.InitDatabase(home, SchemaScript); err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		logger.Info("Connected to the Postgres profile store")
		return &Backend{
			Repository: store.NewPostgresRepository(dbClient),
			Lock:       lock.NewPostgresLock(dbClient),
			Probes: map[string]healthservice.Probe{
				"database": func(ctx context.Context) error {
					_, err := dbClient.ExecuteQuery(ctx, "SELECT 1;")
					return err
				},
			},
			closers: []func() error{dbClient.Close},
		}, nil

	case config.StoreMongo:
		db, err := dbProvider.GetMongoDatabase(ctx)
		if err != nil {
			return nil, err
		}
		repo := store.NewMongoRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, err
		}
		logger.Info("Connected to the MongoDB profile store", log.String("database", db.Name()))
		return &Backend{
			Repository: repo,
			Lock:       lock.NewLocalLock(),
			Probes: map[string]healthservice.Probe{
				"mongodb": func(ctx context.Context) error {
					return db.Client().Ping(ctx, nil)
				},
			},
			closers: []func() error{func() error { return db.Client().Disconnect(context.Background()) }},
		}, nil
	}
	return nil, fmt.Errorf("unsupported store type %q", cfg.Store.Type)
}
