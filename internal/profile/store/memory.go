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

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/wso2/profile-server/internal/profile/model"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
)

// MemoryRepository keeps everything in process memory. Values are copied on the way in and
// out so callers never share state with the store.
type MemoryRepository struct {
	mu        sync.RWMutex
	kinds     map[string]string
	profiles  map[string]*model.Profile
	versions  map[string]*model.ProfileVersion
	concepts  map[string]*model.Concept
	templates map[string]*model.Template
	patterns  map[string]*model.Pattern
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		kinds:     make(map[string]string),
		profiles:  make(map[string]*model.Profile),
		versions:  make(map[string]*model.ProfileVersion),
		concepts:  make(map[string]*model.Concept),
		templates: make(map[string]*model.Template),
		patterns:  make(map[string]*model.Pattern),
	}
}

func (r *MemoryRepository) FindProfile(_ context.Context, iri string) (*model.Profile, error) {
	return find(r, r.profiles, iri)
}

func (r *MemoryRepository) FindProfileVersion(_ context.Context, iri string) (*model.ProfileVersion, error) {
	return find(r, r.versions, iri)
}

func (r *MemoryRepository) FindConcept(_ context.Context, iri string) (*model.Concept, error) {
	return find(r, r.concepts, iri)
}

func (r *MemoryRepository) FindTemplate(_ context.Context, iri string) (*model.Template, error) {
	return find(r, r.templates, iri)
}

func (r *MemoryRepository) FindPattern(_ context.Context, iri string) (*model.Pattern, error) {
	return find(r, r.patterns, iri)
}

func (r *MemoryRepository) SaveProfileVersion(_ context.Context, version *model.ProfileVersion) error {
	return saveIfAbsent(r, r.versions, KindVersion, version.IRI, version)
}

func (r *MemoryRepository) SaveConcept(_ context.Context, concept *model.Concept) error {
	return saveIfAbsent(r, r.concepts, KindConcept, concept.IRI, concept)
}

func (r *MemoryRepository) SaveTemplate(_ context.Context, template *model.Template) error {
	return saveIfAbsent(r, r.templates, KindTemplate, template.IRI, template)
}

func (r *MemoryRepository) Commit(_ context.Context, batch *model.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := records(batch)
	for _, rec := range recs {
		if rec.isNew {
			if _, taken := r.kinds[rec.iri]; taken {
				return alreadyExists(rec.kind, rec.iri)
			}
		}
	}
	for _, rec := range recs {
		kind, taken := r.kinds[rec.iri]
		if rec.replaces != "" {
			if !taken || kind != rec.replaces || !r.placeholder(kind, rec.iri) {
				return serverError(errors2.COMMIT_IMPORT,
					fmt.Sprintf("No placeholder %s with Id: %s to replace", rec.replaces, rec.iri), nil)
			}
			continue
		}
		if taken && kind != rec.kind {
			return alreadyExists(kind, rec.iri)
		}
	}

	for _, rec := range recs {
		if rec.replaces == KindTemplate {
			delete(r.templates, rec.iri)
		} else if rec.replaces == KindConcept {
			delete(r.concepts, rec.iri)
		}
		r.kinds[rec.iri] = rec.kind
		switch e := rec.entity.(type) {
		case *model.Concept:
			r.concepts[rec.iri] = clone(e)
		case *model.Template:
			r.templates[rec.iri] = clone(e)
		case *model.Pattern:
			r.patterns[rec.iri] = clone(e)
		case *model.ProfileVersion:
			r.versions[rec.iri] = clone(e)
		case *model.Profile:
			r.profiles[rec.iri] = clone(e)
		}
	}
	return nil
}

// placeholder reports whether the stored entity of the given kind has no parent.
func (r *MemoryRepository) placeholder(kind, iri string) bool {
	switch kind {
	case KindTemplate:
		t, ok := r.templates[iri]
		return ok && t.IsStub()
	case KindConcept:
		c, ok := r.concepts[iri]
		return ok && c.IsStub()
	}
	return false
}

func (r *MemoryRepository) DeleteVersion(_ context.Context, discard model.Discard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for iri, c := range r.concepts {
		if c.ParentProfile == discard.VersionIRI {
			delete(r.concepts, iri)
			delete(r.kinds, iri)
		}
	}
	for iri, t := range r.templates {
		if t.ParentProfile == discard.VersionIRI {
			delete(r.templates, iri)
			delete(r.kinds, iri)
		}
	}
	for iri, p := range r.patterns {
		if p.ParentProfile == discard.VersionIRI {
			delete(r.patterns, iri)
			delete(r.kinds, iri)
		}
	}
	delete(r.versions, discard.VersionIRI)
	delete(r.kinds, discard.VersionIRI)

	if discard.Profile == nil {
		return nil
	}
	if discard.DropProfile {
		delete(r.profiles, discard.Profile.IRI)
		delete(r.kinds, discard.Profile.IRI)
		return nil
	}
	r.profiles[discard.Profile.IRI] = clone(discard.Profile)
	r.kinds[discard.Profile.IRI] = KindProfile
	return nil
}

func find[T any](r *MemoryRepository, m map[string]*T, iri string) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := m[iri]
	if !ok {
		return nil, nil
	}
	return clone(v), nil
}

func saveIfAbsent[T any](r *MemoryRepository, m map[string]*T, kind, iri string, v *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.kinds[iri]; taken {
		return nil
	}
	r.kinds[iri] = kind
	m[iri] = clone(v)
	return nil
}

func clone[T any](v *T) *T {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	return out
}
