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
	"net/http"

	healthprovider "github.com/wso2/profile-server/internal/health_check/provider"
	"github.com/wso2/profile-server/internal/profile/provider"
	"github.com/wso2/profile-server/internal/system/metrics"
	"github.com/wso2/profile-server/internal/system/services"
	"github.com/wso2/profile-server/internal/system/utils"
)

type ServiceManagerInterface interface {
	RegisterServices(apiBasePath string) error
	Handler() http.Handler
}

// Dependencies carries the wired providers the HTTP services are built on.
type Dependencies struct {
	Profiles   provider.ProfilesProviderInterface
	Health     healthprovider.HealthCheckProviderInterface
	DefaultOrg string
}

type ServiceManager struct {
	mux  *http.ServeMux
	deps Dependencies
}

// NewServiceManager creates a new instance of ServiceManager.
func NewServiceManager(mux *http.ServeMux, deps Dependencies) ServiceManagerInterface {

	return &ServiceManager{
		mux:  mux,
		deps: deps,
	}
}

func (sm *ServiceManager) RegisterServices(apiBasePath string) error {

	services.NewProfileService(sm.mux, apiBasePath, sm.deps.Profiles, sm.deps.DefaultOrg)
	services.NewHealthService(sm.mux, sm.deps.Health)

	metrics.Init()
	sm.mux.Handle("GET /metrics", metrics.Handler())
	return nil
}

// Handler wraps the mux with request tracing and metrics.
func (sm *ServiceManager) Handler() http.Handler {

	return utils.WithTraceID(metrics.Instrument(sm.mux))
}
