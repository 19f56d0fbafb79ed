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

package model

import "time"

// ConceptType is the declared type of a concept.
type ConceptType string

const (
	ConceptVerb                ConceptType = "Verb"
	ConceptActivityType        ConceptType = "ActivityType"
	ConceptAttachmentUsageType ConceptType = "AttachmentUsageType"

	ConceptStateResource           ConceptType = "StateResource"
	ConceptAgentProfileResource    ConceptType = "AgentProfileResource"
	ConceptActivityProfileResource ConceptType = "ActivityProfileResource"

	ConceptContextExtension  ConceptType = "ContextExtension"
	ConceptResultExtension   ConceptType = "ResultExtension"
	ConceptActivityExtension ConceptType = "ActivityExtension"

	ConceptActivity ConceptType = "Activity"
)

// ConceptCategory groups concept types that share a document shape.
type ConceptCategory string

const (
	CategorySemantic  ConceptCategory = "semantic"
	CategoryDocument  ConceptCategory = "document"
	CategoryExtension ConceptCategory = "extension"
	CategoryActivity  ConceptCategory = "activity"
)

var conceptCategories = map[ConceptType]ConceptCategory{
	ConceptVerb:                    CategorySemantic,
	ConceptActivityType:            CategorySemantic,
	ConceptAttachmentUsageType:     CategorySemantic,
	ConceptStateResource:           CategoryDocument,
	ConceptAgentProfileResource:    CategoryDocument,
	ConceptActivityProfileResource: CategoryDocument,
	ConceptContextExtension:        CategoryExtension,
	ConceptResultExtension:         CategoryExtension,
	ConceptActivityExtension:       CategoryExtension,
	ConceptActivity:                CategoryActivity,
}

// Category returns the category of t and false for unknown types.
func (t ConceptType) Category() (ConceptCategory, bool) {
	c, ok := conceptCategories[t]
	return c, ok
}

// InteractionActivityType marks an activity definition as a cmi.interaction.
const InteractionActivityType = "http://adlnet.gov/expapi/activities/cmi.interaction"

type InteractionComponent struct {
	ID          string            `json:"id" bson:"id"`
	Description map[string]string `json:"description,omitempty" bson:"description,omitempty"`
}

type ActivityDefinition struct {
	Context                 string                 `json:"context" bson:"context"`
	Type                    string                 `json:"type,omitempty" bson:"type,omitempty"`
	MoreInfo                string                 `json:"more_info,omitempty" bson:"more_info,omitempty"`
	Extensions              map[string]interface{} `json:"extensions,omitempty" bson:"extensions,omitempty"`
	InteractionType         string                 `json:"interaction_type,omitempty" bson:"interaction_type,omitempty"`
	CorrectResponsesPattern []string               `json:"correct_responses_pattern,omitempty" bson:"correct_responses_pattern,omitempty"`
	Choices                 []InteractionComponent `json:"choices,omitempty" bson:"choices,omitempty"`
	Scale                   []InteractionComponent `json:"scale,omitempty" bson:"scale,omitempty"`
	Source                  []InteractionComponent `json:"source,omitempty" bson:"source,omitempty"`
	Target                  []InteractionComponent `json:"target,omitempty" bson:"target,omitempty"`
	Steps                   []InteractionComponent `json:"steps,omitempty" bson:"steps,omitempty"`
}

// Concept is a vocabulary item. ParentProfile is empty for stub concepts that were
// only ever referenced by IRI.
type Concept struct {
	IRI           string      `json:"iri" bson:"iri"`
	Type          ConceptType `json:"type,omitempty" bson:"type,omitempty"`
	ParentProfile string      `json:"parent_profile,omitempty" bson:"parent_profile,omitempty"`
	Descriptor    `bson:",inline"`

	Broader      []string `json:"broader,omitempty" bson:"broader,omitempty"`
	Narrower     []string `json:"narrower,omitempty" bson:"narrower,omitempty"`
	Related      []string `json:"related,omitempty" bson:"related,omitempty"`
	BroadMatch   []string `json:"broad_match,omitempty" bson:"broad_match,omitempty"`
	NarrowMatch  []string `json:"narrow_match,omitempty" bson:"narrow_match,omitempty"`
	RelatedMatch []string `json:"related_match,omitempty" bson:"related_match,omitempty"`
	ExactMatch   []string `json:"exact_match,omitempty" bson:"exact_match,omitempty"`

	MediaType    string `json:"media_type,omitempty" bson:"media_type,omitempty"`
	ContextIRI   string `json:"context_iri,omitempty" bson:"context_iri,omitempty"`
	SchemaIRI    string `json:"schema_iri,omitempty" bson:"schema_iri,omitempty"`
	InlineSchema string `json:"inline_schema,omitempty" bson:"inline_schema,omitempty"`

	RecommendedVerbs         []string `json:"recommended_verbs,omitempty" bson:"recommended_verbs,omitempty"`
	RecommendedActivityTypes []string `json:"recommended_activity_types,omitempty" bson:"recommended_activity_types,omitempty"`

	ActivityDefinition *ActivityDefinition `json:"activity_definition,omitempty" bson:"activity_definition,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// IsStub reports whether the concept is a parentless placeholder.
func (c *Concept) IsStub() bool {
	return c.ParentProfile == ""
}
