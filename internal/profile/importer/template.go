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
	errors2 "github.com/wso2/profile-server/internal/system/errors"
)

// TemplateBuilder builds one element of the templates array.
type TemplateBuilder struct {
	s        *session
	doc      *model.TemplateDocument
	template *model.Template
	isNew    bool
}

var _ Builder[*model.Template] = (*TemplateBuilder)(nil)

func newTemplateBuilder(s *session, doc *model.TemplateDocument) *TemplateBuilder {
	return &TemplateBuilder{s: s, doc: doc}
}

func (b *TemplateBuilder) IRI() string { return b.doc.ID }

func (b *TemplateBuilder) BuildSelf(ctx context.Context) error {
	doc := b.doc
	if err := requireID("template", doc.ID); err != nil {
		return err
	}
	if doc.ObjectActivityType != "" && len(doc.ObjectStatementRefTemplate) > 0 {
		return errors2.NewValidationError(errors2.MUTUALLY_EXCLUSIVE_FIELDS,
			fmt.Sprintf("template %s: objectActivityType and objectStatementRefTemplate cannot both be set", doc.ID))
	}
	descriptor, err := fieldmapper.ToDescriptor(doc.PrefLabel, doc.Definition, doc.Deprecated, false)
	if err != nil {
		return err
	}
	t := &model.Template{
		IRI:                         doc.ID,
		Descriptor:                  descriptor,
		Verb:                        doc.Verb,
		ObjectActivityType:          doc.ObjectActivityType,
		ContextGroupingActivityType: doc.ContextGroupingActivityType,
		ContextParentActivityType:   doc.ContextParentActivityType,
		ContextOtherActivityType:    doc.ContextOtherActivityType,
		ContextCategoryActivityType: doc.ContextCategoryActivityType,
		AttachmentUsageType:         doc.AttachmentUsageType,
		ObjectStatementRefTemplate:  doc.ObjectStatementRefTemplate,
		ContextStatementRefTemplate: doc.ContextStatementRefTemplate,
		Tags:                        doc.Tags,
		Example:                     doc.Example,
	}
	for _, r := range doc.Rules {
		t.Rules = append(t.Rules, model.Rule{
			Location:  r.Location,
			Selector:  r.Selector,
			Presence:  r.Presence,
			Any:       r.Any,
			All:       r.All,
			None:      r.None,
			ScopeNote: r.ScopeNote,
		})
	}

	existing, err := b.s.findTemplate(ctx, t.IRI)
	if err != nil {
		return err
	}
	var owner string
	var created time.Time
	if existing != nil {
		owner, created = existing.ParentProfile, existing.CreatedAt
	}
	at, err := b.s.place(ctx, diff.KindTemplate, t.IRI, existing != nil, owner, created,
		func() export.Document { return export.Template(existing, b.s.version.IRI) }, doc.Tree)
	if err != nil {
		return err
	}
	t.ParentProfile = at.parent
	t.CreatedAt = at.createdAt
	t.UpdatedAt = b.s.now
	b.template = t
	b.isNew = at.isNew
	return nil
}

func (b *TemplateBuilder) ResolveReferences(ctx context.Context, pool *Pool) error {
	t := b.template
	if t.Verb != "" {
		if _, err := b.s.resolveConcept(ctx, pool, "verb", t.Verb, model.ConceptVerb, model.ConceptVerb); err != nil {
			return err
		}
	}
	if t.ObjectActivityType != "" {
		if _, err := b.s.resolveConcept(ctx, pool, "objectActivityType", t.ObjectActivityType,
			model.ConceptActivityType, model.ConceptActivityType); err != nil {
			return err
		}
	}

	conceptLists := []struct {
		slot string
		iris []string
		want model.ConceptType
	}{
		{"contextGroupingActivityType", t.ContextGroupingActivityType, model.ConceptActivityType},
		{"contextParentActivityType", t.ContextParentActivityType, model.ConceptActivityType},
		{"contextOtherActivityType", t.ContextOtherActivityType, model.ConceptActivityType},
		{"contextCategoryActivityType", t.ContextCategoryActivityType, model.ConceptActivityType},
		{"attachmentUsageType", t.AttachmentUsageType, model.ConceptAttachmentUsageType},
	}
	for _, l := range conceptLists {
		if err := noDuplicates(l.slot, l.iris); err != nil {
			return err
		}
		for _, iri := range l.iris {
			if _, err := b.s.resolveConcept(ctx, pool, l.slot, iri, l.want, l.want); err != nil {
				return err
			}
		}
	}

	templateLists := []struct {
		slot string
		iris []string
	}{
		{"objectStatementRefTemplate", t.ObjectStatementRefTemplate},
		{"contextStatementRefTemplate", t.ContextStatementRefTemplate},
	}
	for _, l := range templateLists {
		if err := noDuplicates(l.slot, l.iris); err != nil {
			return err
		}
		for _, iri := range l.iris {
			if _, err := b.s.resolveTemplate(ctx, pool, l.slot, iri); err != nil {
				return err
			}
		}
	}
	return b.s.validator.ValidateTemplate(t)
}

func (b *TemplateBuilder) Staged() model.Staged[*model.Template] {
	return model.Staged[*model.Template]{Entity: b.template, New: b.isNew}
}
