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

// Rule constrains one location of a statement matching a template.
type Rule struct {
	Location  string            `json:"location" bson:"location"`
	Selector  string            `json:"selector,omitempty" bson:"selector,omitempty"`
	Presence  string            `json:"presence,omitempty" bson:"presence,omitempty"`
	Any       []interface{}     `json:"any,omitempty" bson:"any,omitempty"`
	All       []interface{}     `json:"all,omitempty" bson:"all,omitempty"`
	None      []interface{}     `json:"none,omitempty" bson:"none,omitempty"`
	ScopeNote map[string]string `json:"scope_note,omitempty" bson:"scope_note,omitempty"`
}

const (
	PresenceIncluded    = "included"
	PresenceExcluded    = "excluded"
	PresenceRecommended = "recommended"
)

// Template is a statement template. Concept roles hold concept IRIs and statement-ref
// roles hold template IRIs.
type Template struct {
	IRI           string `json:"iri" bson:"iri"`
	ParentProfile string `json:"parent_profile,omitempty" bson:"parent_profile,omitempty"`
	Descriptor    `bson:",inline"`

	Verb                        string   `json:"verb,omitempty" bson:"verb,omitempty"`
	ObjectActivityType          string   `json:"object_activity_type,omitempty" bson:"object_activity_type,omitempty"`
	ContextGroupingActivityType []string `json:"context_grouping_activity_type,omitempty" bson:"context_grouping_activity_type,omitempty"`
	ContextParentActivityType   []string `json:"context_parent_activity_type,omitempty" bson:"context_parent_activity_type,omitempty"`
	ContextOtherActivityType    []string `json:"context_other_activity_type,omitempty" bson:"context_other_activity_type,omitempty"`
	ContextCategoryActivityType []string `json:"context_category_activity_type,omitempty" bson:"context_category_activity_type,omitempty"`
	AttachmentUsageType         []string `json:"attachment_usage_type,omitempty" bson:"attachment_usage_type,omitempty"`
	ObjectStatementRefTemplate  []string `json:"object_statement_ref_template,omitempty" bson:"object_statement_ref_template,omitempty"`
	ContextStatementRefTemplate []string `json:"context_statement_ref_template,omitempty" bson:"context_statement_ref_template,omitempty"`

	Rules   []Rule   `json:"rules,omitempty" bson:"rules,omitempty"`
	Tags    []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Example string   `json:"example,omitempty" bson:"example,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (t *Template) IsStub() bool {
	return t.ParentProfile == ""
}
