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

// VersionState is the lifecycle state of a profile version.
type VersionState string

const (
	StateDraft     VersionState = "draft"
	StatePublished VersionState = "published"
)

// Translation pairs a localized name and description sharing one language key.
// Either text may be empty when the document only carried one of them.
type Translation struct {
	Language        string `json:"language" bson:"language"`
	TranslationName string `json:"translation_name,omitempty" bson:"translation_name,omitempty"`
	TranslationDesc string `json:"translation_desc,omitempty" bson:"translation_desc,omitempty"`
}

// Descriptor carries the display metadata shared by every authored entity.
type Descriptor struct {
	Name                string        `json:"name,omitempty" bson:"name,omitempty"`
	NameLanguage        string        `json:"name_language,omitempty" bson:"name_language,omitempty"`
	Description         string        `json:"description,omitempty" bson:"description,omitempty"`
	DescriptionLanguage string        `json:"description_language,omitempty" bson:"description_language,omitempty"`
	Translations        []Translation `json:"translations,omitempty" bson:"translations,omitempty"`
	Deprecated          bool          `json:"deprecated,omitempty" bson:"deprecated,omitempty"`
}

// Profile is the stable root of a profile's version history.
// At most one draft and one published version are current at any time.
type Profile struct {
	IRI                     string    `json:"iri" bson:"iri"`
	OrganizationID          string    `json:"organization_id,omitempty" bson:"organization_id,omitempty"`
	CurrentDraftVersion     string    `json:"current_draft_version,omitempty" bson:"current_draft_version,omitempty"`
	CurrentPublishedVersion string    `json:"current_published_version,omitempty" bson:"current_published_version,omitempty"`
	Versions                []string  `json:"versions,omitempty" bson:"versions,omitempty"`
	CreatedAt               time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt               time.Time `json:"updated_at" bson:"updated_at"`
}

// HasDraft reports whether the profile has an in-flight draft version.
func (p *Profile) HasDraft() bool {
	return p.CurrentDraftVersion != ""
}

// IsPublished reports whether the profile has ever been published.
func (p *Profile) IsPublished() bool {
	return p.CurrentPublishedVersion != ""
}

type Author struct {
	Type string `json:"type,omitempty" bson:"type,omitempty"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	URL  string `json:"url,omitempty" bson:"url,omitempty"`
}

// ProfileVersion is one snapshot of a profile. A shallow version is a placeholder
// for a history entry that was referenced but never submitted in full.
type ProfileVersion struct {
	IRI             string       `json:"iri" bson:"iri"`
	ProfileIRI      string       `json:"profile,omitempty" bson:"profile,omitempty"`
	OrganizationID  string       `json:"organization_id,omitempty" bson:"organization_id,omitempty"`
	Descriptor      `bson:",inline"`
	Context         string       `json:"context,omitempty" bson:"context,omitempty"`
	ConformsTo      string       `json:"conforms_to,omitempty" bson:"conforms_to,omitempty"`
	SeeAlso         string       `json:"see_also,omitempty" bson:"see_also,omitempty"`
	Author          *Author      `json:"author,omitempty" bson:"author,omitempty"`
	State           VersionState `json:"state" bson:"state"`
	Shallow         bool         `json:"shallow,omitempty" bson:"shallow,omitempty"`
	Version         int          `json:"version,omitempty" bson:"version,omitempty"`
	GeneratedAtTime string       `json:"generated_at_time,omitempty" bson:"generated_at_time,omitempty"`
	WasRevisionOf   []string     `json:"was_revision_of,omitempty" bson:"was_revision_of,omitempty"`
	Concepts        []string     `json:"concepts,omitempty" bson:"concepts,omitempty"`
	Templates       []string     `json:"templates,omitempty" bson:"templates,omitempty"`
	Patterns        []string     `json:"patterns,omitempty" bson:"patterns,omitempty"`
	CreatedAt       time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" bson:"updated_at"`
}

func (v *ProfileVersion) IsPublished() bool {
	return v.State == StatePublished
}
