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

package provider

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wso2/profile-server/internal/system/config"
	"github.com/wso2/profile-server/internal/system/database/client"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DBConfig represents the local database configuration.
type DBConfig struct {
	dsn        string
	driverName string
}

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBClient() (client.DBClientInterface, error)
	GetMongoDatabase(ctx context.Context) (*mongo.Database, error)
}

// DBProvider is the implementation of DBProviderInterface.
type DBProvider struct {
	cfg config.Config
}

// NewDBProviderWithConfig creates a provider for an explicit configuration.
func NewDBProviderWithConfig(cfg config.Config) DBProviderInterface {

	return &DBProvider{cfg: cfg}
}

// GetDBClient returns a Postgres client for the configured data source.
func (d *DBProvider) GetDBClient() (client.DBClientInterface, error) {

	dbConfig := getDBConfig(d.cfg)

	db, err := sql.Open(dbConfig.driverName, dbConfig.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	// Test the database connection.
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	return client.NewDBClient(db), nil
}

// GetMongoDatabase connects to the configured MongoDB deployment.
func (d *DBProvider) GetMongoDatabase(ctx context.Context) (*mongo.Database, error) {

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(d.cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %v", err)
	}
	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %v", err)
	}
	return mongoClient.Database(d.cfg.Mongo.Database), nil
}

// getDBConfig returns the database configuration based on the provided data source.
func getDBConfig(cfg config.Config) DBConfig {

	var dbConfig DBConfig

	dbConfig.driverName = "postgres"
	dbConfig.dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DataSource.Hostname, cfg.DataSource.Port, cfg.DataSource.Username, cfg.DataSource.Password,
		cfg.DataSource.Name, cfg.DataSource.SSLMode)

	return dbConfig
}
