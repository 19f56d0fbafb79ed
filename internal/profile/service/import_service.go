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
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wso2/profile-server/internal/profile/export"
	"github.com/wso2/profile-server/internal/profile/importer"
	"github.com/wso2/profile-server/internal/profile/model"
	"github.com/wso2/profile-server/internal/profile/schema"
	"github.com/wso2/profile-server/internal/profile/store"
	"github.com/wso2/profile-server/internal/system/constants"
	syscontext "github.com/wso2/profile-server/internal/system/context"
	"github.com/wso2/profile-server/internal/system/database/lock"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
	"github.com/wso2/profile-server/internal/system/metrics"
	"github.com/wso2/profile-server/internal/system/utils"
)

// ProfilesServiceInterface is the profile lifecycle exposed over HTTP and the CLI.
type ProfilesServiceInterface interface {
	ImportProfile(ctx context.Context, req ImportRequest) (*ImportResult, error)
	PublishDraft(ctx context.Context, profileIRI string) (*model.Profile, error)
	DeleteDraft(ctx context.Context, profileIRI string) (*model.Profile, error)
	GetProfile(ctx context.Context, profileIRI string) (*model.Profile, error)
	ExportProfile(ctx context.Context, profileIRI, versionIRI string) (export.Document, error)
}

// ImportRequest is a raw profile document submission.
type ImportRequest struct {
	Document       []byte
	OrganizationID string
	Publish        bool
}

// ImportResult summarizes a committed import.
type ImportResult struct {
	ImportID       string             `json:"import_id"`
	ProfileIRI     string             `json:"profile"`
	VersionIRI     string             `json:"version"`
	Status         model.VersionState `json:"status"`
	OrganizationID string             `json:"organization,omitempty"`
	Concepts       int                `json:"concepts"`
	Templates      int                `json:"templates"`
	Patterns       int                `json:"patterns"`
}

// ProfilesService runs imports one profile at a time and manages the draft lifecycle.
type ProfilesService struct {
	repo        store.Repository
	lock        lock.DistributedLock
	validator   *schema.Validator
	coordinator *importer.ProfileCoordinator
}

func NewProfilesService(repo store.Repository, distributedLock lock.DistributedLock, validator *schema.Validator,
	opts importer.Options) *ProfilesService {
	return &ProfilesService{
		repo:        repo,
		lock:        distributedLock,
		validator:   validator,
		coordinator: importer.NewProfileCoordinator(repo, validator, opts),
	}
}

// ImportProfile decodes the raw document, validates it against the profile schema and imports
// it while holding the profile's import lock.
func (s *ProfilesService) ImportProfile(ctx context.Context, req ImportRequest) (result *ImportResult, err error) {
	start := time.Now()
	importID := uuid.NewString()
	logger := log.GetLogger().With(log.String("importId", importID))
	defer func() {
		metrics.ObserveImport(outcome(err), time.Since(start))
	}()

	doc, err := model.ParseProfileDocument(req.Document)
	if err != nil {
		logger.Debug("Failed to decode profile document", log.Error(err))
		return nil, errors2.NewValidationError(errors2.INVALID_DOCUMENT, utils.HandleDecodeError(err, "profile document"))
	}
	if err := s.validator.ValidateDocument(req.Document); err != nil {
		return nil, err
	}

	release, err := s.acquire(doc.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	logger.Debug("Importing profile", log.String("profile", doc.ID), log.Any("publish", req.Publish))
	imported, err := s.coordinator.Import(ctx, importer.Request{
		ImportID:       importID,
		OrganizationID: req.OrganizationID,
		Document:       doc,
		Publish:        req.Publish,
	})
	if err != nil {
		return nil, err
	}
	audit(ctx, log.ActionImportVersion, imported.Profile.OrganizationID, imported.Version.IRI, map[string]interface{}{
		"importId": importID,
		"profile":  imported.Profile.IRI,
		"state":    imported.Version.State,
	})
	return &ImportResult{
		ImportID:       importID,
		ProfileIRI:     imported.Profile.IRI,
		VersionIRI:     imported.Version.IRI,
		Status:         imported.Version.State,
		OrganizationID: imported.Version.OrganizationID,
		Concepts:       len(imported.Version.Concepts),
		Templates:      len(imported.Version.Templates),
		Patterns:       len(imported.Version.Patterns),
	}, nil
}

// PublishDraft promotes the profile's draft to its published version.
func (s *ProfilesService) PublishDraft(ctx context.Context, profileIRI string) (*model.Profile, error) {
	release, err := s.acquire(profileIRI)
	if err != nil {
		return nil, err
	}
	defer release()

	profile, draft, err := s.draftOf(ctx, profileIRI)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	draft.State = model.StatePublished
	draft.UpdatedAt = now
	profile.CurrentPublishedVersion = draft.IRI
	profile.CurrentDraftVersion = ""
	profile.UpdatedAt = now

	if err := s.repo.Commit(ctx, &model.Batch{
		ImportID: uuid.NewString(),
		Profile:  model.Staged[*model.Profile]{Entity: profile},
		Version:  model.Staged[*model.ProfileVersion]{Entity: draft},
	}); err != nil {
		return nil, err
	}
	log.GetLogger().Info("Published profile version", log.String("profile", profileIRI), log.String("version", draft.IRI))
	audit(ctx, log.ActionPublishVersion, profile.OrganizationID, draft.IRI, map[string]interface{}{"profile": profileIRI})
	return profile, nil
}

// DeleteDraft discards the profile's draft with every entity it owns. A profile that was
// never published is removed as well, in which case nil is returned.
func (s *ProfilesService) DeleteDraft(ctx context.Context, profileIRI string) (*model.Profile, error) {
	release, err := s.acquire(profileIRI)
	if err != nil {
		return nil, err
	}
	defer release()

	profile, draft, err := s.draftOf(ctx, profileIRI)
	if err != nil {
		return nil, err
	}
	profile.CurrentDraftVersion = ""
	profile.UpdatedAt = time.Now().UTC()
	remaining := profile.Versions[:0:0]
	for _, iri := range profile.Versions {
		if iri != draft.IRI {
			remaining = append(remaining, iri)
		}
	}
	profile.Versions = remaining

	discard := model.Discard{VersionIRI: draft.IRI, Profile: profile, DropProfile: !profile.IsPublished()}
	if err := s.repo.DeleteVersion(ctx, discard); err != nil {
		return nil, err
	}
	log.GetLogger().Info("Deleted draft version", log.String("profile", profileIRI), log.String("version", draft.IRI))
	audit(ctx, log.ActionDiscardDraft, profile.OrganizationID, draft.IRI, map[string]interface{}{
		"profile":        profileIRI,
		"profileDropped": discard.DropProfile,
	})
	if discard.DropProfile {
		return nil, nil
	}
	return profile, nil
}

func (s *ProfilesService) GetProfile(ctx context.Context, profileIRI string) (*model.Profile, error) {
	profile, err := s.repo.FindProfile(ctx, profileIRI)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, notFound(profileIRI)
	}
	return profile, nil
}

// ExportProfile renders a version of the profile as a complete document. An empty
// versionIRI selects the published version, or the draft when nothing is published.
func (s *ProfilesService) ExportProfile(ctx context.Context, profileIRI, versionIRI string) (export.Document, error) {
	profile, err := s.GetProfile(ctx, profileIRI)
	if err != nil {
		return nil, err
	}
	if versionIRI == "" {
		versionIRI = profile.CurrentPublishedVersion
		if versionIRI == "" {
			versionIRI = profile.CurrentDraftVersion
		}
	}
	version, err := s.repo.FindProfileVersion(ctx, versionIRI)
	if err != nil {
		return nil, err
	}
	if version == nil || version.ProfileIRI != profile.IRI || version.Shallow {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.PROFILE_NOT_FOUND.Code,
			Message:     errors2.PROFILE_NOT_FOUND.Message,
			Description: fmt.Sprintf("profile %s has no exportable version %s", profileIRI, versionIRI),
		}, http.StatusNotFound)
	}
	return export.Profile(ctx, s.repo, profile, version)
}

// acquire takes the import lock of a profile. Imports, publishes and deletes of the same
// profile never overlap.
func (s *ProfilesService) acquire(profileIRI string) (func(), error) {
	key := constants.ImportLockPrefix + profileIRI
	acquired, err := s.lock.Acquire(key)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, errors2.NewConflictError(errors2.IMPORT_IN_PROGRESS,
			fmt.Sprintf("another operation on profile %s is in progress", profileIRI))
	}
	return func() {
		if err := s.lock.Release(key); err != nil {
			log.GetLogger().Warn("Failed to release import lock", log.String("key", key), log.Error(err))
		}
	}, nil
}

func (s *ProfilesService) draftOf(ctx context.Context, profileIRI string) (*model.Profile, *model.ProfileVersion, error) {
	profile, err := s.GetProfile(ctx, profileIRI)
	if err != nil {
		return nil, nil, err
	}
	if !profile.HasDraft() {
		return nil, nil, errors2.NewConflictError(errors2.NO_DRAFT, fmt.Sprintf("profile %s has no draft version", profileIRI))
	}
	draft, err := s.repo.FindProfileVersion(ctx, profile.CurrentDraftVersion)
	if err != nil {
		return nil, nil, err
	}
	if draft == nil {
		return nil, nil, errors2.NewServerError(errors2.FETCH_ENTITY,
			fmt.Errorf("draft version %s of profile %s is missing", profile.CurrentDraftVersion, profileIRI))
	}
	return profile, draft, nil
}

func audit(ctx context.Context, action, organizationID, versionIRI string, data interface{}) {
	initiatorType := log.InitiatorTypeOrganization
	if organizationID == "" {
		initiatorType = log.InitiatorTypeSystem
	}
	log.GetLogger().Audit(log.AuditEvent{
		InitiatorID:   organizationID,
		InitiatorType: initiatorType,
		TargetID:      versionIRI,
		TargetType:    log.TargetTypeProfileVersion,
		ActionID:      action,
		TraceID:       syscontext.GetTraceID(ctx),
		Data:          data,
	})
}

func notFound(profileIRI string) error {
	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.PROFILE_NOT_FOUND.Code,
		Message:     errors2.PROFILE_NOT_FOUND.Message,
		Description: fmt.Sprintf("profile %s does not exist", profileIRI),
	}, http.StatusNotFound)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors2.IsConflict(err):
		return metrics.ResultConflict
	case errors2.IsValidation(err):
		return metrics.ResultValidation
	default:
		return metrics.ResultError
	}
}
