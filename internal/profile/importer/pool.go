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

	"github.com/wso2/profile-server/internal/profile/model"
	"github.com/wso2/profile-server/internal/profile/store"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
)

// Pool holds the partial entities of one submission after phase one, keyed by identifier.
// Phase two resolves references against it before consulting the store, so members may
// refer to siblings declared later in the same document.
type Pool struct {
	concepts  map[string]*model.Concept
	templates map[string]*model.Template
	patterns  map[string]*model.Pattern
}

func newPool() *Pool {
	return &Pool{
		concepts:  make(map[string]*model.Concept),
		templates: make(map[string]*model.Template),
		patterns:  make(map[string]*model.Pattern),
	}
}

func (p *Pool) Concept(iri string) (*model.Concept, bool) {
	c, ok := p.concepts[iri]
	return c, ok
}

func (p *Pool) Template(iri string) (*model.Template, bool) {
	t, ok := p.templates[iri]
	return t, ok
}

func (p *Pool) Pattern(iri string) (*model.Pattern, bool) {
	pt, ok := p.patterns[iri]
	return pt, ok
}

// kindOf names the kind an identifier has within the pool or the store, or "" when unknown.
func (s *session) kindOf(ctx context.Context, pool *Pool, iri string) (string, error) {
	if _, ok := pool.concepts[iri]; ok {
		return store.KindConcept, nil
	}
	if _, ok := pool.templates[iri]; ok {
		return store.KindTemplate, nil
	}
	if _, ok := pool.patterns[iri]; ok {
		return store.KindPattern, nil
	}
	if c, err := s.findConcept(ctx, iri); err != nil || c != nil {
		return store.KindConcept, err
	}
	if t, err := s.findTemplate(ctx, iri); err != nil || t != nil {
		return store.KindTemplate, err
	}
	if pt, err := s.findPattern(ctx, iri); err != nil || pt != nil {
		return store.KindPattern, err
	}
	if v, err := s.findVersion(ctx, iri); err != nil || v != nil {
		return store.KindVersion, err
	}
	return "", nil
}

// resolveConcept finds the concept referenced from slot. Unknown identifiers become stub
// concepts of type guess. Authored concepts must satisfy accept; stubs carry a guessed type
// and are accepted as they are.
func (s *session) resolveConcept(ctx context.Context, pool *Pool, slot, iri string,
	guess model.ConceptType, accept ...model.ConceptType) (*model.Concept, error) {
	concept, ok := pool.concepts[iri]
	if !ok {
		var err error
		if concept, err = s.findConcept(ctx, iri); err != nil {
			return nil, err
		}
	}
	if concept == nil {
		if err := s.ensureUnclaimed(ctx, pool, slot, iri, store.KindConcept); err != nil {
			return nil, err
		}
		return s.stubConcept(ctx, iri, guess)
	}
	if concept.IsStub() || len(accept) == 0 {
		return concept, nil
	}
	for _, t := range accept {
		if concept.Type == t {
			return concept, nil
		}
	}
	return nil, errors2.NewValidationError(errors2.INVALID_REFERENCE,
		fmt.Sprintf("%s: %s is a %s, expected %v", slot, iri, concept.Type, accept))
}

// resolveTemplate finds the template referenced from slot, creating a stub when unknown.
func (s *session) resolveTemplate(ctx context.Context, pool *Pool, slot, iri string) (*model.Template, error) {
	if t, ok := pool.templates[iri]; ok {
		return t, nil
	}
	t, err := s.findTemplate(ctx, iri)
	if err != nil || t != nil {
		return t, err
	}
	if err := s.ensureUnclaimed(ctx, pool, slot, iri, store.KindTemplate); err != nil {
		return nil, err
	}
	return s.stubTemplate(ctx, iri)
}

// resolveMember finds a pattern member among templates and patterns. Unknown members become
// stub templates.
func (s *session) resolveMember(ctx context.Context, pool *Pool, slot, iri string) (model.PatternMember, *model.Pattern, error) {
	if _, ok := pool.templates[iri]; ok {
		return model.PatternMember{Component: iri, ComponentType: model.ComponentTemplate}, nil, nil
	}
	if p, ok := pool.patterns[iri]; ok {
		return model.PatternMember{Component: iri, ComponentType: model.ComponentPattern}, p, nil
	}
	t, err := s.findTemplate(ctx, iri)
	if err != nil {
		return model.PatternMember{}, nil, err
	}
	if t != nil {
		return model.PatternMember{Component: iri, ComponentType: model.ComponentTemplate}, nil, nil
	}
	p, err := s.findPattern(ctx, iri)
	if err != nil {
		return model.PatternMember{}, nil, err
	}
	if p != nil {
		return model.PatternMember{Component: iri, ComponentType: model.ComponentPattern}, p, nil
	}
	if err := s.ensureUnclaimed(ctx, pool, slot, iri, store.KindTemplate); err != nil {
		return model.PatternMember{}, nil, err
	}
	if _, err := s.stubTemplate(ctx, iri); err != nil {
		return model.PatternMember{}, nil, err
	}
	return model.PatternMember{Component: iri, ComponentType: model.ComponentTemplate}, nil, nil
}

// ensureUnclaimed rejects a reference whose identifier belongs to an entity of another kind.
func (s *session) ensureUnclaimed(ctx context.Context, pool *Pool, slot, iri, want string) error {
	kind, err := s.kindOf(ctx, pool, iri)
	if err != nil {
		return err
	}
	if kind == "" || kind == want {
		return nil
	}
	return errors2.NewValidationError(errors2.INVALID_REFERENCE,
		fmt.Sprintf("%s: %s is a %s, expected a %s", slot, iri, kind, want))
}

func (s *session) stubConcept(ctx context.Context, iri string, guess model.ConceptType) (*model.Concept, error) {
	stub := &model.Concept{IRI: iri, Type: guess, CreatedAt: s.now, UpdatedAt: s.now}
	if err := s.repo.SaveConcept(ctx, stub); err != nil {
		return nil, err
	}
	// Another import may have won the race; read back whatever is stored.
	stored, err := s.repo.FindConcept(ctx, iri)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = stub
	}
	s.memo.Set(store.KindConcept+":"+iri, stored)
	s.stubCreated(store.KindConcept, iri)
	return stored, nil
}

func (s *session) stubTemplate(ctx context.Context, iri string) (*model.Template, error) {
	stub := &model.Template{IRI: iri, CreatedAt: s.now, UpdatedAt: s.now}
	if err := s.repo.SaveTemplate(ctx, stub); err != nil {
		return nil, err
	}
	stored, err := s.repo.FindTemplate(ctx, iri)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = stub
	}
	s.memo.Set(store.KindTemplate+":"+iri, stored)
	s.stubCreated(store.KindTemplate, iri)
	return stored, nil
}

// noDuplicates rejects a reference list naming the same identifier twice.
func noDuplicates(slot string, iris []string) error {
	seen := make(map[string]struct{}, len(iris))
	for _, iri := range iris {
		if _, ok := seen[iri]; ok {
			return errors2.NewValidationError(errors2.DUPLICATE_IDENTIFIER,
				fmt.Sprintf("%s lists %s more than once", slot, iri))
		}
		seen[iri] = struct{}{}
	}
	return nil
}
