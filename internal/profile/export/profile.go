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

package export

import (
	"context"
	"fmt"

	"github.com/wso2/profile-server/internal/profile/model"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
)

// Finder is the lookup surface needed to expand a version's members.
type Finder interface {
	FindProfileVersion(ctx context.Context, iri string) (*model.ProfileVersion, error)
	FindConcept(ctx context.Context, iri string) (*model.Concept, error)
	FindTemplate(ctx context.Context, iri string) (*model.Template, error)
	FindPattern(ctx context.Context, iri string) (*model.Pattern, error)
}

// ProfileSummary renders a stored version as a profile document whose member arrays hold
// identifiers only. history lists the profile's versions newest first.
func ProfileSummary(profile *model.Profile, version *model.ProfileVersion, history []*model.ProfileVersion) Document {
	doc := versionHeader(profile.IRI, version)
	versions := make([]interface{}, 0, len(history))
	for _, v := range history {
		versions = append(versions, versionEntry(v.IRI, v.WasRevisionOf, v.GeneratedAtTime))
	}
	if len(versions) > 0 {
		doc["versions"] = versions
	}
	setList(doc, "concepts", version.Concepts)
	setList(doc, "templates", version.Templates)
	setList(doc, "patterns", version.Patterns)
	return doc
}

// DocumentSummary renders a submitted document in the same shape as ProfileSummary.
func DocumentSummary(doc *model.ProfileDocument) Document {
	out := Document{
		"id":   doc.ID,
		"type": doc.Type,
	}
	setString(out, "@context", doc.Context)
	setString(out, "conformsTo", doc.ConformsTo)
	setString(out, "seeAlso", doc.SeeAlso)
	setMap(out, "prefLabel", doc.PrefLabel)
	setMap(out, "definition", doc.Definition)
	if doc.Author != nil {
		out["author"] = author(&model.Author{Type: doc.Author.Type, Name: doc.Author.Name, URL: doc.Author.URL})
	}
	versions := make([]interface{}, 0, len(doc.Versions))
	for _, v := range doc.Versions {
		versions = append(versions, versionEntry(v.ID, v.WasRevisionOf, v.GeneratedAtTime))
	}
	if len(versions) > 0 {
		out["versions"] = versions
	}
	concepts := make([]string, 0, len(doc.Concepts))
	for _, c := range doc.Concepts {
		concepts = append(concepts, c.ID)
	}
	templates := make([]string, 0, len(doc.Templates))
	for _, t := range doc.Templates {
		templates = append(templates, t.ID)
	}
	patterns := make([]string, 0, len(doc.Patterns))
	for _, p := range doc.Patterns {
		patterns = append(patterns, p.ID)
	}
	setList(out, "concepts", concepts)
	setList(out, "templates", templates)
	setList(out, "patterns", patterns)
	return out
}

// Profile renders version as a complete profile document with its members expanded.
func Profile(ctx context.Context, finder Finder, profile *model.Profile, version *model.ProfileVersion) (Document, error) {
	doc := versionHeader(profile.IRI, version)

	versions := make([]interface{}, 0, len(profile.Versions))
	for _, iri := range historyFrom(profile.Versions, version.IRI) {
		v, err := finder.FindProfileVersion(ctx, iri)
		if err != nil {
			return nil, err
		}
		if v == nil {
			versions = append(versions, versionEntry(iri, nil, ""))
			continue
		}
		versions = append(versions, versionEntry(v.IRI, v.WasRevisionOf, v.GeneratedAtTime))
	}
	if len(versions) > 0 {
		doc["versions"] = versions
	}

	var concepts, templates, patterns []interface{}
	for _, iri := range version.Concepts {
		c, err := finder.FindConcept(ctx, iri)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, missingMember("concept", iri)
		}
		concepts = append(concepts, Concept(c, version.IRI))
	}
	for _, iri := range version.Templates {
		t, err := finder.FindTemplate(ctx, iri)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, missingMember("template", iri)
		}
		templates = append(templates, Template(t, version.IRI))
	}
	for _, iri := range version.Patterns {
		p, err := finder.FindPattern(ctx, iri)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, missingMember("pattern", iri)
		}
		patterns = append(patterns, Pattern(p, version.IRI))
	}
	if len(concepts) > 0 {
		doc["concepts"] = concepts
	}
	if len(templates) > 0 {
		doc["templates"] = templates
	}
	if len(patterns) > 0 {
		doc["patterns"] = patterns
	}
	return doc, nil
}

func versionHeader(profileIRI string, version *model.ProfileVersion) Document {
	doc := Document{
		"id":   profileIRI,
		"type": model.ProfileDocumentType,
	}
	setString(doc, "@context", version.Context)
	setString(doc, "conformsTo", version.ConformsTo)
	setString(doc, "seeAlso", version.SeeAlso)
	setMap(doc, "prefLabel", languageMap(version.Name, version.NameLanguage, version.Translations, nameOf))
	setMap(doc, "definition", languageMap(version.Description, version.DescriptionLanguage, version.Translations, descOf))
	if version.Author != nil {
		doc["author"] = author(version.Author)
	}
	return doc
}

func author(a *model.Author) Document {
	doc := Document{}
	setString(doc, "type", a.Type)
	setString(doc, "name", a.Name)
	setString(doc, "url", a.URL)
	return doc
}

func versionEntry(iri string, wasRevisionOf []string, generatedAt string) Document {
	entry := Document{"id": iri}
	setList(entry, "wasRevisionOf", wasRevisionOf)
	setString(entry, "generatedAtTime", generatedAt)
	return entry
}

// historyFrom returns the part of a newest-first history starting at iri.
func historyFrom(history []string, iri string) []string {
	for i, v := range history {
		if v == iri {
			return history[i:]
		}
	}
	return append([]string{iri}, history...)
}

func missingMember(kind, iri string) error {
	return errors2.NewServerError(errors2.ErrorMessage{
		Code:        errors2.EXPORT_ENTITY.Code,
		Message:     errors2.EXPORT_ENTITY.Message,
		Description: fmt.Sprintf("%s %s referenced by the version is not stored", kind, iri),
	}, nil)
}
