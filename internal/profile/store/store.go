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

// Package store persists profiles, versions and their entities. Every identifier lives in a
// single global namespace regardless of entity kind.
package store

import (
	"context"
	"fmt"

	"github.com/wso2/profile-server/internal/profile/model"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
)

const (
	KindProfile  = "profile"
	KindVersion  = "version"
	KindConcept  = "concept"
	KindTemplate = "template"
	KindPattern  = "pattern"
)

// Finder looks entities up by identifier. A missing entity is reported as nil, nil.
type Finder interface {
	FindProfile(ctx context.Context, iri string) (*model.Profile, error)
	FindProfileVersion(ctx context.Context, iri string) (*model.ProfileVersion, error)
	FindConcept(ctx context.Context, iri string) (*model.Concept, error)
	FindTemplate(ctx context.Context, iri string) (*model.Template, error)
	FindPattern(ctx context.Context, iri string) (*model.Pattern, error)
}

// Repository is the persistence surface of the import pipeline.
type Repository interface {
	Finder

	// SaveProfileVersion, SaveConcept and SaveTemplate store placeholders eagerly. They are
	// no-ops when the identifier is already taken.
	SaveProfileVersion(ctx context.Context, version *model.ProfileVersion) error
	SaveConcept(ctx context.Context, concept *model.Concept) error
	SaveTemplate(ctx context.Context, template *model.Template) error

	// Commit writes a whole batch atomically. New items are inserted and fail with a conflict
	// when their identifier exists; the rest are updated. An item with Replaces set takes over
	// a parentless placeholder of that kind and fails when none is stored.
	Commit(ctx context.Context, batch *model.Batch) error

	// DeleteVersion removes a draft version with every entity it owns.
	DeleteVersion(ctx context.Context, discard model.Discard) error
}

type record struct {
	iri      string
	kind     string
	parent   string
	entity   interface{}
	isNew    bool
	replaces string
}

// storedKind is the kind the record's row carries before the write.
func (r record) storedKind() string {
	if r.replaces != "" {
		return r.replaces
	}
	return r.kind
}

// records flattens a batch in write order: entities, then the version, then the profile.
func records(batch *model.Batch) []record {
	var out []record
	for _, s := range batch.Concepts {
		out = append(out, record{s.Entity.IRI, KindConcept, s.Entity.ParentProfile, s.Entity, s.New, s.Replaces})
	}
	for _, s := range batch.Templates {
		out = append(out, record{s.Entity.IRI, KindTemplate, s.Entity.ParentProfile, s.Entity, s.New, s.Replaces})
	}
	for _, s := range batch.Patterns {
		out = append(out, record{s.Entity.IRI, KindPattern, s.Entity.ParentProfile, s.Entity, s.New, s.Replaces})
	}
	if v := batch.Version.Entity; v != nil {
		out = append(out, record{v.IRI, KindVersion, v.ProfileIRI, v, batch.Version.New, ""})
	}
	if p := batch.Profile.Entity; p != nil {
		out = append(out, record{p.IRI, KindProfile, "", p, batch.Profile.New, ""})
	}
	return out
}

func alreadyExists(kind, iri string) error {
	return errors2.NewConflictError(errors2.ALREADY_EXISTS, fmt.Sprintf("%s %s already exists", kind, iri))
}

func serverError(msg errors2.ErrorMessage, description string, err error) error {
	return errors2.NewServerError(errors2.ErrorMessage{
		Code:        msg.Code,
		Message:     msg.Message,
		Description: description,
	}, err)
}
