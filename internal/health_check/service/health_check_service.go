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

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wso2/profile-server/internal/system/log"
)

// Probe checks one backing dependency.
type Probe func(ctx context.Context) error

// HealthCheckServiceInterface defines the service interface.
type HealthCheckServiceInterface interface {
	CheckReadiness(ctx context.Context) error
}

// HealthCheckService runs the configured probes.
type HealthCheckService struct {
	probes  map[string]Probe
	timeout time.Duration
}

// NewHealthCheckService returns a service reporting ready once every probe passes.
// With no probes the service is always ready.
func NewHealthCheckService(probes map[string]Probe) HealthCheckServiceInterface {
	return &HealthCheckService{probes: probes, timeout: 3 * time.Second}
}

func (h *HealthCheckService) CheckReadiness(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			log.GetLogger().Warn("Readiness probe failed", log.String("probe", name), log.Error(err))
			return fmt.Errorf("%s connectivity check failed: %v", name, err)
		}
	}
	return nil
}
