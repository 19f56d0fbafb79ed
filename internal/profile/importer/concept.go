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

// conceptVariant maps and resolves the fields specific to one concept category.
type conceptVariant interface {
	build(doc *model.ConceptDocument, c *model.Concept) error
	resolve(ctx context.Context, s *session, pool *Pool, c *model.Concept) error
}

var conceptVariants = map[model.ConceptCategory]func() conceptVariant{
	model.CategorySemantic:  func() conceptVariant { return semanticConcept{} },
	model.CategoryDocument:  func() conceptVariant { return documentConcept{} },
	model.CategoryExtension: func() conceptVariant { return extensionConcept{} },
	model.CategoryActivity:  func() conceptVariant { return activityConcept{} },
}

// ConceptBuilder builds one element of the concepts array.
type ConceptBuilder struct {
	s       *session
	doc     *model.ConceptDocument
	variant conceptVariant
	concept *model.Concept
	isNew   bool
}

var _ Builder[*model.Concept] = (*ConceptBuilder)(nil)

// newConceptBuilder picks the variant for the node's declared type.
func newConceptBuilder(s *session, doc *model.ConceptDocument) (*ConceptBuilder, error) {
	category, ok := model.ConceptType(doc.Type).Category()
	if !ok {
		return nil, errors2.NewValidationError(errors2.INVALID_CONCEPT_TYPE,
			fmt.Sprintf("concept %s has unknown type %q", doc.ID, doc.Type))
	}
	return &ConceptBuilder{s: s, doc: doc, variant: conceptVariants[category]()}, nil
}

func (b *ConceptBuilder) IRI() string { return b.doc.ID }

func (b *ConceptBuilder) BuildSelf(ctx context.Context) error {
	if err := requireID("concept", b.doc.ID); err != nil {
		return err
	}
	c := &model.Concept{
		IRI:  b.doc.ID,
		Type: model.ConceptType(b.doc.Type),
	}
	if err := b.variant.build(b.doc, c); err != nil {
		return err
	}

	existing, err := b.s.findConcept(ctx, c.IRI)
	if err != nil {
		return err
	}
	var owner string
	var created time.Time
	if existing != nil {
		owner, created = existing.ParentProfile, existing.CreatedAt
	}
	at, err := b.s.place(ctx, diff.KindConcept, c.IRI, existing != nil, owner, created,
		func() export.Document { return export.Concept(existing, b.s.version.IRI) }, b.doc.Tree)
	if err != nil {
		return err
	}
	c.ParentProfile = at.parent
	c.CreatedAt = at.createdAt
	c.UpdatedAt = b.s.now
	b.concept = c
	b.isNew = at.isNew
	return nil
}

func (b *ConceptBuilder) ResolveReferences(ctx context.Context, pool *Pool) error {
	if err := b.variant.resolve(ctx, b.s, pool, b.concept); err != nil {
		return err
	}
	return b.s.validator.ValidateConcept(b.concept)
}

func (b *ConceptBuilder) Staged() model.Staged[*model.Concept] {
	return model.Staged[*model.Concept]{Entity: b.concept, New: b.isNew}
}

// semanticConcept covers verbs, activity types and attachment usage types.
type semanticConcept struct{}

func (semanticConcept) build(doc *model.ConceptDocument, c *model.Concept) error {
	descriptor, err := fieldmapper.ToDescriptor(doc.PrefLabel, doc.Definition, doc.Deprecated, false)
	if err != nil {
		return err
	}
	c.Descriptor = descriptor
	c.Broader = doc.Broader
	c.Narrower = doc.Narrower
	c.Related = doc.Related
	c.BroadMatch = doc.BroadMatch
	c.NarrowMatch = doc.NarrowMatch
	c.RelatedMatch = doc.RelatedMatch
	c.ExactMatch = doc.ExactMatch
	return nil
}

func (semanticConcept) resolve(ctx context.Context, s *session, pool *Pool, c *model.Concept) error {
	siblings := []struct {
		slot string
		iris []string
	}{
		{"broader", c.Broader},
		{"narrower", c.Narrower},
		{"related", c.Related},
	}
	for _, rel := range siblings {
		if err := noDuplicates(rel.slot, rel.iris); err != nil {
			return err
		}
		for _, iri := range rel.iris {
			sibling, ok := pool.Concept(iri)
			if !ok {
				return errors2.NewValidationError(errors2.INVALID_REFERENCE,
					fmt.Sprintf("%s: %s is not a concept of this profile version", rel.slot, iri))
			}
			if sibling.Type != c.Type {
				return errors2.NewValidationError(errors2.INVALID_REFERENCE,
					fmt.Sprintf("%s: %s is a %s, expected %s", rel.slot, iri, sibling.Type, c.Type))
			}
		}
	}

	matches := []struct {
		slot string
		iris []string
	}{
		{"broadMatch", c.BroadMatch},
		{"narrowMatch", c.NarrowMatch},
		{"relatedMatch", c.RelatedMatch},
		{"exactMatch", c.ExactMatch},
	}
	for _, rel := range matches {
		if err := noDuplicates(rel.slot, rel.iris); err != nil {
			return err
		}
		for _, iri := range rel.iris {
			if _, err := s.resolveConcept(ctx, pool, rel.slot, iri, c.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

// documentConcept covers state, agent profile and activity profile resources.
type documentConcept struct{}

func (documentConcept) build(doc *model.ConceptDocument, c *model.Concept) error {
	descriptor, err := fieldmapper.ToDescriptor(doc.PrefLabel, doc.Definition, doc.Deprecated, false)
	if err != nil {
		return err
	}
	if doc.ContentType == "" {
		return errors2.NewValidationError(errors2.MISSING_FIELD, fmt.Sprintf("concept %s: contentType is required", doc.ID))
	}
	schemaIRI, inline, err := fieldmapper.ToSchema(doc.Schema, doc.InlineSchema)
	if err != nil {
		return err
	}
	if schemaIRI == "" && inline == "" {
		return errors2.NewValidationError(errors2.MISSING_FIELD,
			fmt.Sprintf("concept %s: one of schema and inlineSchema is required", doc.ID))
	}
	c.Descriptor = descriptor
	c.MediaType = doc.ContentType
	c.ContextIRI = doc.Context
	c.SchemaIRI = schemaIRI
	c.InlineSchema = inline
	return nil
}

func (documentConcept) resolve(context.Context, *session, *Pool, *model.Concept) error {
	return nil
}

// extensionConcept covers context, result and activity extensions.
type extensionConcept struct{}

func (extensionConcept) build(doc *model.ConceptDocument, c *model.Concept) error {
	descriptor, err := fieldmapper.ToDescriptor(doc.PrefLabel, doc.Definition, doc.Deprecated, false)
	if err != nil {
		return err
	}
	schemaIRI, inline, err := fieldmapper.ToSchema(doc.Schema, doc.InlineSchema)
	if err != nil {
		return err
	}
	activityExtension := c.Type == model.ConceptActivityExtension
	if activityExtension && len(doc.RecommendedVerbs) > 0 {
		return errors2.NewValidationError(errors2.INVALID_REFERENCE,
			fmt.Sprintf("concept %s: recommendedVerbs is not allowed on an ActivityExtension", doc.ID))
	}
	if !activityExtension && len(doc.RecommendedActivityTypes) > 0 {
		return errors2.NewValidationError(errors2.INVALID_REFERENCE,
			fmt.Sprintf("concept %s: recommendedActivityTypes is only allowed on an ActivityExtension", doc.ID))
	}
	c.Descriptor = descriptor
	c.ContextIRI = doc.Context
	c.SchemaIRI = schemaIRI
	c.InlineSchema = inline
	c.RecommendedVerbs = doc.RecommendedVerbs
	c.RecommendedActivityTypes = doc.RecommendedActivityTypes
	return nil
}

func (extensionConcept) resolve(ctx context.Context, s *session, pool *Pool, c *model.Concept) error {
	if err := noDuplicates("recommendedVerbs", c.RecommendedVerbs); err != nil {
		return err
	}
	for _, iri := range c.RecommendedVerbs {
		if _, err := s.resolveConcept(ctx, pool, "recommendedVerbs", iri, model.ConceptVerb, model.ConceptVerb); err != nil {
			return err
		}
	}
	if err := noDuplicates("recommendedActivityTypes", c.RecommendedActivityTypes); err != nil {
		return err
	}
	for _, iri := range c.RecommendedActivityTypes {
		if _, err := s.resolveConcept(ctx, pool, "recommendedActivityTypes", iri,
			model.ConceptActivityType, model.ConceptActivityType); err != nil {
			return err
		}
	}
	return nil
}

// activityConcept takes its name and description from the activity definition.
type activityConcept struct{}

func (activityConcept) build(doc *model.ConceptDocument, c *model.Concept) error {
	def, err := fieldmapper.ToActivityDefinition(doc.ActivityDefinition)
	if err != nil {
		return err
	}
	descriptor, err := fieldmapper.ToDescriptor(doc.ActivityDefinition.Name, doc.ActivityDefinition.Description,
		doc.Deprecated, true)
	if err != nil {
		return err
	}
	c.Descriptor = descriptor
	c.ActivityDefinition = def
	return nil
}

func (activityConcept) resolve(context.Context, *session, *Pool, *model.Concept) error {
	return nil
}
