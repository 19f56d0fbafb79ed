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

package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/wso2/profile-server/internal/profile/provider"
	"github.com/wso2/profile-server/internal/profile/service"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
	"github.com/wso2/profile-server/internal/system/utils"
)

// maxDocumentSize bounds an uploaded profile document.
const maxDocumentSize = 16 << 20

type ProfileHandler struct {
	provider   provider.ProfilesProviderInterface
	defaultOrg string
}

func NewProfileHandler(profilesProvider provider.ProfilesProviderInterface, defaultOrg string) *ProfileHandler {

	return &ProfileHandler{
		provider:   profilesProvider,
		defaultOrg: defaultOrg,
	}
}

// ImportProfile handles profile document submissions. The version is saved as a draft
// unless the publish query parameter is true.
func (ph *ProfileHandler) ImportProfile(w http.ResponseWriter, r *http.Request) {

	publish := false
	if raw := r.URL.Query().Get("publish"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.HandleError(w, r, badRequest("publish must be a boolean"))
			return
		}
		publish = parsed
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize+1))
	if err != nil {
		utils.HandleError(w, r, badRequest("Failed to read the profile request body."))
		return
	}
	if len(body) == 0 {
		utils.HandleError(w, r, badRequest("Request body for profile is empty."))
		return
	}
	if len(body) > maxDocumentSize {
		utils.HandleError(w, r, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: "Profile document is too large.",
		}, http.StatusRequestEntityTooLarge))
		return
	}

	profilesService := ph.provider.GetProfilesService()
	result, err := profilesService.ImportProfile(r.Context(), service.ImportRequest{
		Document:       body,
		OrganizationID: utils.OrganizationOf(r, ph.defaultOrg),
		Publish:        publish,
	})
	if err != nil {
		log.GetLogger().Debug("Profile import failed", log.Error(err))
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, result)
}

// GetProfile returns the profile root with its version pointers.
func (ph *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {

	profilesService := ph.provider.GetProfilesService()
	profile, err := profilesService.GetProfile(r.Context(), r.PathValue("iri"))
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, profile)
}

// ExportProfile returns a version of the profile as a complete profile document.
func (ph *ProfileHandler) ExportProfile(w http.ResponseWriter, r *http.Request) {

	profilesService := ph.provider.GetProfilesService()
	doc, err := profilesService.ExportProfile(r.Context(), r.PathValue("iri"), r.URL.Query().Get("version"))
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, doc)
}

// PublishDraft promotes the current draft version.
func (ph *ProfileHandler) PublishDraft(w http.ResponseWriter, r *http.Request) {

	profilesService := ph.provider.GetProfilesService()
	profile, err := profilesService.PublishDraft(r.Context(), r.PathValue("iri"))
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, profile)
}

// DeleteDraft discards the current draft version.
func (ph *ProfileHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {

	profilesService := ph.provider.GetProfilesService()
	if _, err := profilesService.DeleteDraft(r.Context(), r.PathValue("iri")); err != nil {
		utils.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func badRequest(description string) error {
	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.BAD_REQUEST.Code,
		Message:     errors2.BAD_REQUEST.Message,
		Description: description,
	}, http.StatusBadRequest)
}
