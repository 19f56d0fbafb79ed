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

package importer

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/wso2/profile-server/internal/profile/diff"
	"github.com/wso2/profile-server/internal/profile/export"
	"github.com/wso2/profile-server/internal/profile/fieldmapper"
	"github.com/wso2/profile-server/internal/profile/model"
	"github.com/wso2/profile-server/internal/profile/schema"
	"github.com/wso2/profile-server/internal/profile/store"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
)

// Request is one profile document submission.
type Request struct {
	ImportID       string
	OrganizationID string
	Document       *model.ProfileDocument
	// Publish commits the version as published instead of as a draft.
	Publish bool
}

// Result is what an import committed.
type Result struct {
	Profile *model.Profile
	Version *model.ProfileVersion
	Batch   *model.Batch
}

// ProfileCoordinator runs whole imports: it checks the submission against the stored
// profile history, then delegates the version to a VersionCoordinator.
type ProfileCoordinator struct {
	repo      store.Repository
	validator *schema.Validator
	opts      Options
	now       func() time.Time
}

func NewProfileCoordinator(repo store.Repository, validator *schema.Validator, opts Options) *ProfileCoordinator {
	return &ProfileCoordinator{
		repo:      repo,
		validator: validator,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Import validates and commits one submission.
func (pc *ProfileCoordinator) Import(ctx context.Context, req Request) (*Result, error) {
	doc := req.Document
	if doc == nil || doc.ID == "" {
		return nil, errors2.NewValidationError(errors2.MISSING_FIELD, "profile id is required")
	}
	current := doc.Current()
	if current == nil || current.ID == "" {
		return nil, errors2.NewValidationError(errors2.MISSING_FIELD, "versions[0].id is required")
	}
	seen := make(map[string]struct{}, len(doc.Versions))
	for _, v := range doc.Versions {
		if _, ok := seen[v.ID]; ok {
			return nil, errors2.NewValidationError(errors2.DUPLICATE_IDENTIFIER,
				fmt.Sprintf("versions lists %s more than once", v.ID))
		}
		seen[v.ID] = struct{}{}
	}
	logger := log.GetLogger().With(log.String("importId", req.ImportID), log.String("profile", doc.ID))

	profile, err := pc.repo.FindProfile(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	isNew := profile == nil
	if isNew {
		profile = &model.Profile{IRI: doc.ID, OrganizationID: req.OrganizationID}
	} else if err := pc.checkHistory(ctx, profile, doc); err != nil {
		return nil, err
	}

	now := pc.now()
	version, err := newVersion(doc, req, now)
	if err != nil {
		return nil, err
	}
	s := newSession(req.ImportID, pc.repo, pc.validator, version, pc.opts, now)
	if err := pc.placeholders(ctx, s, doc); err != nil {
		return nil, err
	}

	vc := newVersionCoordinator(s, doc, pc.opts)
	batch, err := vc.Run(ctx, func(batch *model.Batch) error {
		if isNew {
			profile.CreatedAt = now
			for _, v := range doc.Versions[1:] {
				profile.Versions = append(profile.Versions, v.ID)
			}
		}
		profile.Versions = append([]string{version.IRI}, profile.Versions...)
		if req.Publish {
			profile.CurrentPublishedVersion = version.IRI
			profile.CurrentDraftVersion = ""
		} else {
			profile.CurrentDraftVersion = version.IRI
		}
		profile.UpdatedAt = now
		batch.Profile = model.Staged[*model.Profile]{Entity: profile, New: isNew}
		return nil
	})
	if err != nil {
		logger.Debug("Profile import rejected", log.Error(err))
		return nil, err
	}
	logger.Info("Imported profile version", log.String("version", version.IRI), log.String("state", string(version.State)))
	return &Result{Profile: profile, Version: version, Batch: batch}, nil
}

// checkHistory verifies that a submission for an existing profile continues its published
// history and only changes the profile in allowed ways.
func (pc *ProfileCoordinator) checkHistory(ctx context.Context, profile *model.Profile, doc *model.ProfileDocument) error {
	if profile.HasDraft() {
		return errors2.NewConflictError(errors2.DRAFT_IN_PROGRESS,
			fmt.Sprintf("profile %s already has draft version %s", profile.IRI, profile.CurrentDraftVersion))
	}
	if !profile.IsPublished() {
		return errors2.NewConflictError(errors2.NOT_PUBLISHED,
			fmt.Sprintf("profile %s has no published version to revise", profile.IRI))
	}
	published := profile.CurrentPublishedVersion
	if prior := doc.Prior(); prior == nil || prior.ID != published {
		return errors2.NewConflictError(errors2.VERSION_HISTORY_MISMATCH,
			fmt.Sprintf("versions[1] must be the published version %s", published))
	}
	if !slices.Contains(doc.Current().WasRevisionOf, published) {
		return errors2.NewConflictError(errors2.VERSION_HISTORY_MISMATCH,
			fmt.Sprintf("versions[0].wasRevisionOf must include the published version %s", published))
	}

	history := make([]*model.ProfileVersion, 0, len(profile.Versions))
	var current *model.ProfileVersion
	for _, iri := range profile.Versions {
		v, err := pc.repo.FindProfileVersion(ctx, iri)
		if err != nil {
			return err
		}
		if v == nil {
			continue
		}
		if iri == published {
			current = v
		}
		history = append(history, v)
	}
	if current == nil {
		return errors2.NewServerError(errors2.FETCH_ENTITY,
			fmt.Errorf("published version %s of profile %s is missing", published, profile.IRI))
	}
	return diff.Enforce(diff.KindProfile, profile.IRI,
		export.ProfileSummary(profile, current, history), export.DocumentSummary(doc), diff.DefaultOptions)
}

// placeholders stores shallow versions for history entries and revision sources that were
// never imported in full.
func (pc *ProfileCoordinator) placeholders(ctx context.Context, s *session, doc *model.ProfileDocument) error {
	type entry struct {
		iri, profile  string
		wasRevisionOf []string
		generatedAt   string
	}
	var entries []entry
	for _, v := range doc.Versions[1:] {
		entries = append(entries, entry{v.ID, doc.ID, v.WasRevisionOf, v.GeneratedAtTime})
	}
	for _, iri := range doc.Current().WasRevisionOf {
		if !slices.ContainsFunc(doc.Versions, func(v model.VersionDocument) bool { return v.ID == iri }) {
			entries = append(entries, entry{iri: iri})
		}
	}
	for _, e := range entries {
		if e.iri == "" {
			continue
		}
		existing, err := s.findVersion(ctx, e.iri)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		placeholder := &model.ProfileVersion{
			IRI:             e.iri,
			ProfileIRI:      e.profile,
			State:           model.StatePublished,
			Shallow:         true,
			WasRevisionOf:   e.wasRevisionOf,
			GeneratedAtTime: e.generatedAt,
			CreatedAt:       s.now,
			UpdatedAt:       s.now,
		}
		if err := pc.repo.SaveProfileVersion(ctx, placeholder); err != nil {
			return err
		}
		s.stubCreated(store.KindVersion, e.iri)
	}
	return nil
}

func newVersion(doc *model.ProfileDocument, req Request, now time.Time) (*model.ProfileVersion, error) {
	descriptor, err := fieldmapper.ToDescriptor(doc.PrefLabel, doc.Definition, nil, false)
	if err != nil {
		return nil, err
	}
	current := doc.Current()
	version := &model.ProfileVersion{
		IRI:             current.ID,
		ProfileIRI:      doc.ID,
		OrganizationID:  req.OrganizationID,
		Descriptor:      descriptor,
		Context:         doc.Context,
		ConformsTo:      doc.ConformsTo,
		SeeAlso:         doc.SeeAlso,
		State:           model.StateDraft,
		Version:         len(doc.Versions),
		GeneratedAtTime: current.GeneratedAtTime,
		WasRevisionOf:   current.WasRevisionOf,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Publish {
		version.State = model.StatePublished
	}
	if doc.Author != nil {
		version.Author = &model.Author{Type: doc.Author.Type, Name: doc.Author.Name, URL: doc.Author.URL}
	}
	return version, nil
}
