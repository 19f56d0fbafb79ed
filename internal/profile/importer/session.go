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

// Package importer turns a submitted profile document into a validated, cross-referenced
// object graph and commits it in one batch.
//
// Every entity node gets a builder with two phases. BuildSelf maps the node on its own and
// reconciles it with any stored entity of the same identifier. ResolveReferences runs after
// every builder finished phase one and resolves cross references against the partial
// entities of the same submission first, then the store, creating parentless stubs for
// identifiers found nowhere.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/wso2/profile-server/internal/profile/diff"
	"github.com/wso2/profile-server/internal/profile/export"
	"github.com/wso2/profile-server/internal/profile/model"
	"github.com/wso2/profile-server/internal/profile/schema"
	"github.com/wso2/profile-server/internal/profile/store"
	"github.com/wso2/profile-server/internal/system/cache"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
	"github.com/wso2/profile-server/internal/system/metrics"
)

// Options tunes a coordinator.
type Options struct {
	// ConcurrentBuilds runs phase one of every builder in parallel.
	ConcurrentBuilds bool
	// LookupCacheTTL bounds how long a store lookup is reused within one import.
	LookupCacheTTL time.Duration
}

// session is the state shared by every builder of one import.
type session struct {
	importID  string
	repo      store.Repository
	validator *schema.Validator
	version   *model.ProfileVersion
	memo      *cache.Cache[interface{}]
	now       time.Time
	logger    *log.Logger
}

func newSession(importID string, repo store.Repository, validator *schema.Validator,
	version *model.ProfileVersion, opts Options, now time.Time) *session {
	return &session{
		importID:  importID,
		repo:      repo,
		validator: validator,
		version:   version,
		memo:      cache.NewCache[interface{}](opts.LookupCacheTTL),
		now:       now,
		logger:    log.GetLogger().With(log.String("importId", importID), log.String("version", version.IRI)),
	}
}

// lookup memoizes a store read. Misses are not cached so that stubs created later in the
// same import are found.
func lookup[T any](ctx context.Context, s *session, kind, iri string, find func(context.Context, string) (*T, error)) (*T, error) {
	key := kind + ":" + iri
	if v, ok := s.memo.Get(key); ok {
		return v.(*T), nil
	}
	found, err := find(ctx, iri)
	if err != nil || found == nil {
		return nil, err
	}
	s.memo.Set(key, found)
	return found, nil
}

func (s *session) findConcept(ctx context.Context, iri string) (*model.Concept, error) {
	return lookup(ctx, s, store.KindConcept, iri, s.repo.FindConcept)
}

func (s *session) findTemplate(ctx context.Context, iri string) (*model.Template, error) {
	return lookup(ctx, s, store.KindTemplate, iri, s.repo.FindTemplate)
}

func (s *session) findPattern(ctx context.Context, iri string) (*model.Pattern, error) {
	return lookup(ctx, s, store.KindPattern, iri, s.repo.FindPattern)
}

func (s *session) findVersion(ctx context.Context, iri string) (*model.ProfileVersion, error) {
	return lookup(ctx, s, store.KindVersion, iri, s.repo.FindProfileVersion)
}

// reconcile is how a freshly built entity relates to a stored one with the same identifier.
type reconcile int

const (
	reconcileCreate reconcile = iota
	reconcileAdoptStub
	reconcilePublished
)

// classify decides how to treat an existing entity owned by owner. A nil existing value
// means the identifier is unused. The version being imported never owns stored entities:
// its identifier is checked for collisions first and a profile holds a single draft.
func (s *session) classify(ctx context.Context, kind, iri string, exists bool, owner string) (reconcile, error) {
	if !exists {
		return reconcileCreate, nil
	}
	if owner == "" {
		return reconcileAdoptStub, nil
	}
	ownerVersion, err := s.findVersion(ctx, owner)
	if err != nil {
		return 0, err
	}
	if ownerVersion != nil && ownerVersion.IsPublished() {
		return reconcilePublished, nil
	}
	return 0, errors2.NewConflictError(errors2.ALREADY_EXISTS,
		fmt.Sprintf("%s %s already exists in %s", kind, iri, owner))
}

// enforce checks a change against published content through the kind's policy.
func (s *session) enforce(kind diff.Kind, iri string, existing export.Document, incoming map[string]interface{}) error {
	if err := diff.Enforce(kind, iri, existing, incoming, diff.DefaultOptions); err != nil {
		s.logger.Debug("Rejected change to published content", log.String("iri", iri), log.Error(err))
		return err
	}
	return nil
}

func (s *session) stubCreated(kind, iri string) {
	s.logger.Debug("Created placeholder entity", log.String("kind", kind), log.String("iri", iri))
	metrics.StubCreated(kind)
}
