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

import "encoding/json"

const (
	ProfileDocumentType  = "Profile"
	TemplateDocumentType = "StatementTemplate"
	PatternDocumentType  = "Pattern"
)

// LanguageMap maps a language tag to localized text.
type LanguageMap map[string]string

// ProfileDocument is the submitted form of a profile. Versions[0] is the version being imported.
type ProfileDocument struct {
	ID         string              `json:"id"`
	Type       string              `json:"type"`
	Context    string              `json:"@context"`
	ConformsTo string              `json:"conformsTo"`
	PrefLabel  LanguageMap         `json:"prefLabel"`
	Definition LanguageMap         `json:"definition"`
	SeeAlso    string              `json:"seeAlso,omitempty"`
	Author     *AuthorDocument     `json:"author,omitempty"`
	Versions   []VersionDocument   `json:"versions"`
	Concepts   []*ConceptDocument  `json:"concepts,omitempty"`
	Templates  []*TemplateDocument `json:"templates,omitempty"`
	Patterns   []*PatternDocument  `json:"patterns,omitempty"`
}

// Current returns the version entry being submitted.
func (d *ProfileDocument) Current() *VersionDocument {
	if len(d.Versions) == 0 {
		return nil
	}
	return &d.Versions[0]
}

// Prior returns the entry immediately before the submitted one, if any.
func (d *ProfileDocument) Prior() *VersionDocument {
	if len(d.Versions) < 2 {
		return nil
	}
	return &d.Versions[1]
}

type VersionDocument struct {
	ID              string   `json:"id"`
	WasRevisionOf   []string `json:"wasRevisionOf,omitempty"`
	GeneratedAtTime string   `json:"generatedAtTime,omitempty"`
}

type AuthorDocument struct {
	Type string `json:"type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type InteractionComponentDocument struct {
	ID          string      `json:"id"`
	Description LanguageMap `json:"description,omitempty"`
}

type ActivityDefinitionDocument struct {
	Context                 string                         `json:"@context"`
	Name                    LanguageMap                    `json:"name,omitempty"`
	Description             LanguageMap                    `json:"description,omitempty"`
	Type                    string                         `json:"type,omitempty"`
	MoreInfo                string                         `json:"moreInfo,omitempty"`
	Extensions              map[string]interface{}         `json:"extensions,omitempty"`
	InteractionType         string                         `json:"interactionType,omitempty"`
	CorrectResponsesPattern []string                       `json:"correctResponsesPattern,omitempty"`
	Choices                 []InteractionComponentDocument `json:"choices,omitempty"`
	Scale                   []InteractionComponentDocument `json:"scale,omitempty"`
	Source                  []InteractionComponentDocument `json:"source,omitempty"`
	Target                  []InteractionComponentDocument `json:"target,omitempty"`
	Steps                   []InteractionComponentDocument `json:"steps,omitempty"`
}

// ConceptDocument is one element of a profile's concepts array. The applicable fields
// depend on Type.
type ConceptDocument struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	InScheme   string      `json:"inScheme"`
	PrefLabel  LanguageMap `json:"prefLabel,omitempty"`
	Definition LanguageMap `json:"definition,omitempty"`
	Deprecated *bool       `json:"deprecated,omitempty"`

	Broader      []string `json:"broader,omitempty"`
	BroadMatch   []string `json:"broadMatch,omitempty"`
	Narrower     []string `json:"narrower,omitempty"`
	NarrowMatch  []string `json:"narrowMatch,omitempty"`
	Related      []string `json:"related,omitempty"`
	RelatedMatch []string `json:"relatedMatch,omitempty"`
	ExactMatch   []string `json:"exactMatch,omitempty"`

	ContentType  string `json:"contentType,omitempty"`
	Context      string `json:"context,omitempty"`
	Schema       string `json:"schema,omitempty"`
	InlineSchema string `json:"inlineSchema,omitempty"`

	RecommendedActivityTypes []string `json:"recommendedActivityTypes,omitempty"`
	RecommendedVerbs         []string `json:"recommendedVerbs,omitempty"`

	ActivityDefinition *ActivityDefinitionDocument `json:"activityDefinition,omitempty"`

	// Tree is the node exactly as submitted, used as the incoming side of a diff.
	Tree map[string]interface{} `json:"-"`
}

func (d *ConceptDocument) UnmarshalJSON(data []byte) error {
	type plain ConceptDocument
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	tree, err := decodeTree(data)
	if err != nil {
		return err
	}
	*d = ConceptDocument(p)
	d.Tree = tree
	return nil
}

type RuleDocument struct {
	Location  string        `json:"location"`
	Selector  string        `json:"selector,omitempty"`
	Presence  string        `json:"presence,omitempty"`
	Any       []interface{} `json:"any,omitempty"`
	All       []interface{} `json:"all,omitempty"`
	None      []interface{} `json:"none,omitempty"`
	ScopeNote LanguageMap   `json:"scopeNote,omitempty"`
}

type TemplateDocument struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	InScheme   string      `json:"inScheme"`
	PrefLabel  LanguageMap `json:"prefLabel"`
	Definition LanguageMap `json:"definition"`
	Deprecated *bool       `json:"deprecated,omitempty"`

	Verb                        string   `json:"verb,omitempty"`
	ObjectActivityType          string   `json:"objectActivityType,omitempty"`
	ContextGroupingActivityType []string `json:"contextGroupingActivityType,omitempty"`
	ContextParentActivityType   []string `json:"contextParentActivityType,omitempty"`
	ContextOtherActivityType    []string `json:"contextOtherActivityType,omitempty"`
	ContextCategoryActivityType []string `json:"contextCategoryActivityType,omitempty"`
	AttachmentUsageType         []string `json:"attachmentUsageType,omitempty"`
	ObjectStatementRefTemplate  []string `json:"objectStatementRefTemplate,omitempty"`
	ContextStatementRefTemplate []string `json:"contextStatementRefTemplate,omitempty"`

	Rules   []RuleDocument `json:"rules,omitempty"`
	Tags    []string       `json:"tags,omitempty"`
	Example string         `json:"example,omitempty"`

	Tree map[string]interface{} `json:"-"`
}

func (d *TemplateDocument) UnmarshalJSON(data []byte) error {
	type plain TemplateDocument
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	tree, err := decodeTree(data)
	if err != nil {
		return err
	}
	*d = TemplateDocument(p)
	d.Tree = tree
	return nil
}

// PatternDocument carries exactly one of the five kind fields. Presence is tracked by
// nil-ness, so an empty sequence still counts as declared.
type PatternDocument struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	InScheme   string      `json:"inScheme,omitempty"`
	Primary    *bool       `json:"primary,omitempty"`
	PrefLabel  LanguageMap `json:"prefLabel,omitempty"`
	Definition LanguageMap `json:"definition,omitempty"`
	Deprecated *bool       `json:"deprecated,omitempty"`

	Alternates []string `json:"alternates,omitempty"`
	Optional   *string  `json:"optional,omitempty"`
	OneOrMore  *string  `json:"oneOrMore,omitempty"`
	Sequence   []string `json:"sequence,omitempty"`
	ZeroOrMore *string  `json:"zeroOrMore,omitempty"`

	Tree map[string]interface{} `json:"-"`
}

func (d *PatternDocument) UnmarshalJSON(data []byte) error {
	type plain PatternDocument
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	tree, err := decodeTree(data)
	if err != nil {
		return err
	}
	*d = PatternDocument(p)
	d.Tree = tree
	return nil
}

// IsPrimary reports the primary flag, defaulting to false when absent.
func (d *PatternDocument) IsPrimary() bool {
	return d.Primary != nil && *d.Primary
}

func decodeTree(data []byte) (map[string]interface{}, error) {
	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// ParseProfileDocument decodes a raw submission.
func ParseProfileDocument(raw []byte) (*ProfileDocument, error) {
	var doc ProfileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
