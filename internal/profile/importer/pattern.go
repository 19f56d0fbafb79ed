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
	"time"

	"github.com/wso2/profile-server/internal/profile/diff"
	"github.com/wso2/profile-server/internal/profile/export"
	"github.com/wso2/profile-server/internal/profile/fieldmapper"
	"github.com/wso2/profile-server/internal/profile/model"
	"github.com/wso2/profile-server/internal/profile/store"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
)

// PatternBuilder builds one element of the patterns array. Member kinds are only known
// after resolution, so BuildSelf keeps the raw member identifiers.
type PatternBuilder struct {
	s       *session
	doc     *model.PatternDocument
	pattern *model.Pattern
	members []string
	isNew   bool
	// replaces is set when the pattern takes over a template placeholder.
	replaces string
}

var _ Builder[*model.Pattern] = (*PatternBuilder)(nil)

func newPatternBuilder(s *session, doc *model.PatternDocument) *PatternBuilder {
	return &PatternBuilder{s: s, doc: doc}
}

func (b *PatternBuilder) IRI() string { return b.doc.ID }

func (b *PatternBuilder) BuildSelf(ctx context.Context) error {
	doc := b.doc
	if err := requireID("pattern", doc.ID); err != nil {
		return err
	}
	kind, members, err := fieldmapper.ToPatternType(doc)
	if err != nil {
		return err
	}
	// Only primary patterns must be labelled.
	descriptor, err := fieldmapper.ToDescriptor(doc.PrefLabel, doc.Definition, doc.Deprecated, !doc.IsPrimary())
	if err != nil {
		return err
	}
	p := &model.Pattern{
		IRI:        doc.ID,
		Descriptor: descriptor,
		Primary:    doc.IsPrimary(),
		Kind:       kind,
	}
	// Members are provisionally templates until resolution says otherwise.
	for _, m := range members {
		p.Members = append(p.Members, model.PatternMember{Component: m, ComponentType: model.ComponentTemplate})
	}

	existing, err := b.s.findPattern(ctx, p.IRI)
	if err != nil {
		return err
	}
	if existing == nil {
		adopted, err := b.adoptTemplateStub(ctx, p)
		if err != nil || adopted {
			b.members = members
			return err
		}
	}
	var owner string
	var created time.Time
	if existing != nil {
		owner, created = existing.ParentProfile, existing.CreatedAt
	}
	at, err := b.s.place(ctx, diff.KindPattern, p.IRI, existing != nil, owner, created,
		func() export.Document { return export.Pattern(existing, b.s.version.IRI) }, doc.Tree)
	if err != nil {
		return err
	}
	p.ParentProfile = at.parent
	p.CreatedAt = at.createdAt
	p.UpdatedAt = b.s.now
	b.pattern = p
	b.members = members
	b.isNew = at.isNew
	return nil
}

// adoptTemplateStub takes over a parentless template left behind when an earlier import
// referenced this identifier as a pattern member before anyone authored it.
func (b *PatternBuilder) adoptTemplateStub(ctx context.Context, p *model.Pattern) (bool, error) {
	stub, err := b.s.findTemplate(ctx, p.IRI)
	if err != nil || stub == nil || !stub.IsStub() {
		return false, err
	}
	p.ParentProfile = b.s.version.IRI
	p.CreatedAt = stub.CreatedAt
	p.UpdatedAt = b.s.now
	b.pattern = p
	b.replaces = store.KindTemplate
	b.s.logger.Debug("Replacing template placeholder with pattern", log.String("iri", p.IRI))
	return true, nil
}

func (b *PatternBuilder) ResolveReferences(ctx context.Context, pool *Pool) error {
	p := b.pattern
	slot := string(p.Kind)
	if err := b.checkShape(); err != nil {
		return err
	}
	if p.Kind != model.PatternSequence {
		if err := noDuplicates(slot, b.members); err != nil {
			return err
		}
	}

	resolved := make([]model.PatternMember, 0, len(b.members))
	for _, iri := range b.members {
		if iri == p.IRI {
			return invalidPattern("pattern %s cannot contain itself", p.IRI)
		}
		member, nested, err := b.s.resolveMember(ctx, pool, slot, iri)
		if err != nil {
			return err
		}
		if p.Kind == model.PatternAlternates && nested != nil &&
			(nested.Kind == model.PatternOptional || nested.Kind == model.PatternZeroOrMore) {
			return invalidPattern("pattern %s: alternates member %s is a %s pattern", p.IRI, iri, nested.Kind)
		}
		resolved = append(resolved, member)
	}
	p.Members = resolved

	if p.Kind == model.PatternSequence && len(resolved) == 1 {
		if !p.Primary || resolved[0].ComponentType != model.ComponentTemplate {
			return invalidPattern("pattern %s: a single-member sequence must be primary and contain a template", p.IRI)
		}
	}
	return b.s.validator.ValidatePattern(p)
}

// checkShape enforces the member counts of each kind.
func (b *PatternBuilder) checkShape() error {
	p := b.pattern
	for _, m := range b.members {
		if m == "" {
			return invalidPattern("pattern %s: %s has an empty member", p.IRI, p.Kind)
		}
	}
	switch p.Kind {
	case model.PatternSequence:
		if len(b.members) == 0 {
			return invalidPattern("pattern %s: sequence must have at least one member", p.IRI)
		}
	case model.PatternAlternates:
		if len(b.members) < 2 {
			return invalidPattern("pattern %s: alternates must have at least two members", p.IRI)
		}
	}
	return nil
}

func (b *PatternBuilder) Staged() model.Staged[*model.Pattern] {
	return model.Staged[*model.Pattern]{Entity: b.pattern, New: b.isNew, Replaces: b.replaces}
}

func invalidPattern(format string, args ...interface{}) error {
	return errors2.NewValidationError(errors2.INVALID_PATTERN, fmt.Sprintf(format, args...))
}
