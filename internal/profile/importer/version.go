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

	"golang.org/x/sync/errgroup"

	"github.com/wso2/profile-server/internal/profile/model"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
)

// VersionState tracks a coordinator through its single run.
type VersionState int

const (
	VersionPending VersionState = iota
	VersionBuilt
	VersionCommitted
	VersionFailed
)

// VersionCoordinator builds every entity of one profile version and commits them together.
type VersionCoordinator struct {
	s          *session
	doc        *model.ProfileDocument
	concurrent bool
	state      VersionState

	concepts  []*ConceptBuilder
	templates []*TemplateBuilder
	patterns  []*PatternBuilder
}

func newVersionCoordinator(s *session, doc *model.ProfileDocument, opts Options) *VersionCoordinator {
	return &VersionCoordinator{s: s, doc: doc, concurrent: opts.ConcurrentBuilds}
}

func (vc *VersionCoordinator) State() VersionState {
	return vc.state
}

// Run builds the version and hands the assembled batch to finalize, which completes the
// profile side of it, before committing. Nothing from the batch is written on error.
func (vc *VersionCoordinator) Run(ctx context.Context, finalize func(*model.Batch) error) (*model.Batch, error) {
	if vc.state != VersionPending {
		return nil, errors2.NewServerError(errors2.COMMIT_IMPORT,
			fmt.Errorf("version %s coordinator already ran", vc.s.version.IRI))
	}
	batch, err := vc.run(ctx, finalize)
	if err != nil {
		vc.state = VersionFailed
		return nil, err
	}
	vc.state = VersionCommitted
	return batch, nil
}

func (vc *VersionCoordinator) run(ctx context.Context, finalize func(*model.Batch) error) (*model.Batch, error) {
	if err := vc.checkIdentifiers(); err != nil {
		return nil, err
	}
	existing, err := vc.s.findVersion(ctx, vc.s.version.IRI)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors2.NewConflictError(errors2.ALREADY_EXISTS,
			fmt.Sprintf("profile version %s already exists", vc.s.version.IRI))
	}
	if err := vc.createBuilders(); err != nil {
		return nil, err
	}
	if err := vc.buildAll(ctx); err != nil {
		return nil, err
	}
	vc.state = VersionBuilt

	pool := vc.pool()
	if err := vc.resolveAll(ctx, pool); err != nil {
		return nil, err
	}

	batch := vc.assemble()
	if err := finalize(batch); err != nil {
		return nil, err
	}
	if err := vc.s.repo.Commit(ctx, batch); err != nil {
		return nil, err
	}
	vc.s.logger.Info("Committed profile version",
		log.Int("concepts", len(batch.Concepts)),
		log.Int("templates", len(batch.Templates)),
		log.Int("patterns", len(batch.Patterns)))
	return batch, nil
}

// checkIdentifiers rejects a submission that declares an identifier twice, across every
// member array and the version itself.
func (vc *VersionCoordinator) checkIdentifiers() error {
	seen := map[string]string{vc.s.version.IRI: "version", vc.doc.ID: "profile"}
	declare := func(kind, iri string) error {
		if iri == "" {
			return nil
		}
		if other, ok := seen[iri]; ok {
			return errors2.NewValidationError(errors2.DUPLICATE_IDENTIFIER,
				fmt.Sprintf("%s %s is already declared as a %s in this document", kind, iri, other))
		}
		seen[iri] = kind
		return nil
	}
	for _, c := range vc.doc.Concepts {
		if err := declare("concept", c.ID); err != nil {
			return err
		}
	}
	for _, t := range vc.doc.Templates {
		if err := declare("template", t.ID); err != nil {
			return err
		}
	}
	for _, p := range vc.doc.Patterns {
		if err := declare("pattern", p.ID); err != nil {
			return err
		}
	}
	return nil
}

func (vc *VersionCoordinator) createBuilders() error {
	for _, doc := range vc.doc.Concepts {
		b, err := newConceptBuilder(vc.s, doc)
		if err != nil {
			return err
		}
		vc.concepts = append(vc.concepts, b)
	}
	for _, doc := range vc.doc.Templates {
		vc.templates = append(vc.templates, newTemplateBuilder(vc.s, doc))
	}
	for _, doc := range vc.doc.Patterns {
		vc.patterns = append(vc.patterns, newPatternBuilder(vc.s, doc))
	}
	return nil
}

// phased is the kind-independent part of Builder.
type phased interface {
	BuildSelf(ctx context.Context) error
	ResolveReferences(ctx context.Context, pool *Pool) error
}

// phases lists every builder's steps in document order: concepts, templates, patterns.
func (vc *VersionCoordinator) phases() []phased {
	var out []phased
	for _, b := range vc.concepts {
		out = append(out, b)
	}
	for _, b := range vc.templates {
		out = append(out, b)
	}
	for _, b := range vc.patterns {
		out = append(out, b)
	}
	return out
}

// buildAll runs phase one. Builders only read the store in this phase, so they may run
// in parallel.
func (vc *VersionCoordinator) buildAll(ctx context.Context) error {
	builders := vc.phases()
	if !vc.concurrent {
		for _, b := range builders {
			if err := b.BuildSelf(ctx); err != nil {
				return err
			}
		}
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, b := range builders {
		g.Go(func() error {
			return b.BuildSelf(gctx)
		})
	}
	return g.Wait()
}

// resolveAll runs phase two sequentially since it may create stubs.
func (vc *VersionCoordinator) resolveAll(ctx context.Context, pool *Pool) error {
	for _, b := range vc.phases() {
		if err := b.ResolveReferences(ctx, pool); err != nil {
			return err
		}
	}
	return nil
}

func (vc *VersionCoordinator) pool() *Pool {
	pool := newPool()
	for _, b := range vc.concepts {
		pool.concepts[b.IRI()] = b.concept
	}
	for _, b := range vc.templates {
		pool.templates[b.IRI()] = b.template
	}
	for _, b := range vc.patterns {
		pool.patterns[b.IRI()] = b.pattern
	}
	return pool
}

func (vc *VersionCoordinator) assemble() *model.Batch {
	version := vc.s.version
	batch := &model.Batch{
		ImportID: vc.s.importID,
		Version:  model.Staged[*model.ProfileVersion]{Entity: version, New: true},
	}
	version.Concepts, version.Templates, version.Patterns = nil, nil, nil
	for _, b := range vc.concepts {
		batch.Concepts = append(batch.Concepts, b.Staged())
		version.Concepts = append(version.Concepts, b.IRI())
	}
	for _, b := range vc.templates {
		batch.Templates = append(batch.Templates, b.Staged())
		version.Templates = append(version.Templates, b.IRI())
	}
	for _, b := range vc.patterns {
		batch.Patterns = append(batch.Patterns, b.Staged())
		version.Patterns = append(version.Patterns, b.IRI())
	}
	return batch
}
