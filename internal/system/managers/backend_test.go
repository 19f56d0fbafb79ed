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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	healthprovider "github.com/wso2/profile-server/internal/health_check/provider"
	"github.com/wso2/profile-server/internal/profile/importer"
	"github.com/wso2/profile-server/internal/profile/provider"
	"github.com/wso2/profile-server/internal/profile/schema"
	"github.com/wso2/profile-server/internal/profile/service"
	"github.com/wso2/profile-server/internal/profile/store"
	"github.com/wso2/profile-server/internal/system/config"
	"github.com/wso2/profile-server/internal/system/constants"
)

func TestOpenBackendMemory(t *testing.T) {
	backend, err := OpenBackend(context.Background(), t.TempDir(), config.Config{Store: config.StoreConfig{Type: config.StoreMemory}})
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryRepository{}, backend.Repository)
	assert.Empty(t, backend.Probes)
	assert.NoError(t, backend.Close())
}

func TestOpenBackendUnknownStore(t *testing.T) {
	_, err := OpenBackend(context.Background(), t.TempDir(), config.Config{Store: config.StoreConfig{Type: "etcd"}})
	assert.EqualError(t, err, `unsupported store type "etcd"`)
}

func TestServiceManagerRoutes(t *testing.T) {
	backend, err := OpenBackend(context.Background(), t.TempDir(), config.Config{Store: config.StoreConfig{Type: config.StoreMemory}})
	require.NoError(t, err)
	validator, err := schema.Default()
	require.NoError(t, err)

	svc := service.NewProfilesService(backend.Repository, backend.Lock, validator, importer.Options{})
	sm := NewServiceManager(http.NewServeMux(), Dependencies{
		Profiles:   provider.NewProfilesProvider(svc),
		Health:     healthprovider.NewHealthCheckProvider(backend.Probes),
		DefaultOrg: "default",
	})
	require.NoError(t, sm.RegisterServices(constants.ApiBasePath))
	h := sm.Handler()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, constants.ApiBasePath + "/profiles/missing", http.StatusNotFound},
		{http.MethodPut, constants.ApiBasePath + "/profiles/missing", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.status, rec.Code, tt.method+" "+tt.path)
		assert.NotEmpty(t, rec.Header().Get(constants.TraceIDHeader))
	}
}
