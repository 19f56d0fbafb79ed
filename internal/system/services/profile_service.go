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

package services

import (
	"fmt"
	"net/http"

	"github.com/wso2/profile-server/internal/profile/handler"
	"github.com/wso2/profile-server/internal/profile/provider"
)

type ProfileService struct {
	profileHandler *handler.ProfileHandler
}

func NewProfileService(mux *http.ServeMux, apiBasePath string, profilesProvider provider.ProfilesProviderInterface,
	defaultOrg string) *ProfileService {

	instance := &ProfileService{
		profileHandler: handler.NewProfileHandler(profilesProvider, defaultOrg),
	}
	instance.RegisterRoutes(mux, apiBasePath)

	return instance
}

// RegisterRoutes mounts the profile endpoints. Profile IRIs travel path-escaped in a single segment.
func (s *ProfileService) RegisterRoutes(mux *http.ServeMux, apiBasePath string) {

	mux.HandleFunc(fmt.Sprintf("POST %s/profiles", apiBasePath), s.profileHandler.ImportProfile)
	mux.HandleFunc(fmt.Sprintf("GET %s/profiles/{iri}", apiBasePath), s.profileHandler.GetProfile)
	mux.HandleFunc(fmt.Sprintf("GET %s/profiles/{iri}/export", apiBasePath), s.profileHandler.ExportProfile)
	mux.HandleFunc(fmt.Sprintf("POST %s/profiles/{iri}/publish", apiBasePath), s.profileHandler.PublishDraft)
	mux.HandleFunc(fmt.Sprintf("DELETE %s/profiles/{iri}/draft", apiBasePath), s.profileHandler.DeleteDraft)
}
