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

// PatternKind is the composition operator of a pattern.
type PatternKind string

const (
	PatternSequence   PatternKind = "sequence"
	PatternAlternates PatternKind = "alternates"
	PatternOptional   PatternKind = "optional"
	PatternOneOrMore  PatternKind = "oneOrMore"
	PatternZeroOrMore PatternKind = "zeroOrMore"
)

// IsMultiValued reports whether the kind holds an ordered member list.
func (k PatternKind) IsMultiValued() bool {
	return k == PatternSequence || k == PatternAlternates
}

// ComponentKind tells whether a pattern member is a template or a pattern.
type ComponentKind string

const (
	ComponentTemplate ComponentKind = "template"
	ComponentPattern  ComponentKind = "pattern"
)

// PatternMember pairs a member IRI with its resolved kind.
type PatternMember struct {
	Component     string        `json:"component" bson:"component"`
	ComponentType ComponentKind `json:"component_type" bson:"component_type"`
}

type Pattern struct {
	IRI           string `json:"iri" bson:"iri"`
	ParentProfile string `json:"parent_profile,omitempty" bson:"parent_profile,omitempty"`
	Descriptor    `bson:",inline"`

	Primary bool            `json:"primary,omitempty" bson:"primary,omitempty"`
	Kind    PatternKind     `json:"kind" bson:"kind"`
	Members []PatternMember `json:"members,omitempty" bson:"members,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// MemberIRIs returns the member identifiers in order.
func (p *Pattern) MemberIRIs() []string {
	iris := make([]string, len(p.Members))
	for i, m := range p.Members {
		iris[i] = m.Component
	}
	return iris
}
