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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/profile-server/internal/profile/model"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
)

type mapFinder struct {
	versions  map[string]*model.ProfileVersion
	concepts  map[string]*model.Concept
	templates map[string]*model.Template
	patterns  map[string]*model.Pattern
}

func (f *mapFinder) FindProfileVersion(_ context.Context, iri string) (*model.ProfileVersion, error) {
	return f.versions[iri], nil
}

func (f *mapFinder) FindConcept(_ context.Context, iri string) (*model.Concept, error) {
	return f.concepts[iri], nil
}

func (f *mapFinder) FindTemplate(_ context.Context, iri string) (*model.Template, error) {
	return f.templates[iri], nil
}

func (f *mapFinder) FindPattern(_ context.Context, iri string) (*model.Pattern, error) {
	return f.patterns[iri], nil
}

func TestConceptSemantic(t *testing.T) {
	c := &model.Concept{
		IRI:  "http://example.org/verbs/completed",
		Type: model.ConceptVerb,
		Descriptor: model.Descriptor{
			Name: "completed", NameLanguage: "en",
			Description: "finished", DescriptionLanguage: "en",
			Translations: []model.Translation{{Language: "fr", TranslationName: "terminé"}},
		},
		Broader:    []string{"http://example.org/verbs/done"},
		ExactMatch: []string{"http://adlnet.gov/expapi/verbs/completed"},
	}
	doc := Concept(c, "http://example.org/p/v1")
	assert.Equal(t, "Verb", doc["type"])
	assert.Equal(t, "http://example.org/p/v1", doc["inScheme"])
	assert.Equal(t, map[string]string{"en": "completed", "fr": "terminé"}, doc["prefLabel"])
	assert.Equal(t, map[string]string{"en": "finished"}, doc["definition"])
	assert.Equal(t, []string{"http://example.org/verbs/done"}, doc["broader"])
	assert.NotContains(t, doc, "deprecated")
	assert.NotContains(t, doc, "narrower")
}

func TestConceptActivity(t *testing.T) {
	c := &model.Concept{
		IRI:        "http://example.org/activities/a1",
		Type:       model.ConceptActivity,
		Descriptor: model.Descriptor{Name: "Quiz", NameLanguage: "en"},
		ActivityDefinition: &model.ActivityDefinition{
			Context:         "https://w3id.org/xapi/profiles/activity-context",
			Type:            model.InteractionActivityType,
			InteractionType: "choice",
			Choices:         []model.InteractionComponent{{ID: "a", Description: map[string]string{"en": "A"}}},
		},
	}
	doc := Concept(c, "")
	assert.NotContains(t, doc, "prefLabel")
	assert.NotContains(t, doc, "inScheme")
	def := doc["activityDefinition"].(Document)
	assert.Equal(t, map[string]string{"en": "Quiz"}, def["name"])
	assert.Equal(t, "choice", def["interactionType"])
	assert.Len(t, def["choices"], 1)
}

func TestTemplate(t *testing.T) {
	tmpl := &model.Template{
		IRI:        "http://example.org/templates/t1",
		Descriptor: model.Descriptor{Name: "t", NameLanguage: "en", Description: "d", DescriptionLanguage: "en", Deprecated: true},
		Verb:       "http://example.org/verbs/completed",
		Rules: []model.Rule{
			{Location: "$.result.success", Presence: model.PresenceIncluded, Any: []interface{}{true}},
		},
	}
	doc := Template(tmpl, "http://example.org/p/v1")
	assert.Equal(t, model.TemplateDocumentType, doc["type"])
	assert.Equal(t, true, doc["deprecated"])
	rules := doc["rules"].([]interface{})
	require.Len(t, rules, 1)
	rule := rules[0].(Document)
	assert.Equal(t, "$.result.success", rule["location"])
	assert.Equal(t, "included", rule["presence"])
	assert.NotContains(t, rule, "selector")
}

func TestPattern(t *testing.T) {
	seq := &model.Pattern{
		IRI:     "http://example.org/patterns/p1",
		Primary: true,
		Kind:    model.PatternSequence,
		Members: []model.PatternMember{
			{Component: "t1", ComponentType: model.ComponentTemplate},
			{Component: "p2", ComponentType: model.ComponentPattern},
		},
	}
	doc := Pattern(seq, "v1")
	assert.Equal(t, []string{"t1", "p2"}, doc["sequence"])
	assert.Equal(t, true, doc["primary"])

	single := &model.Pattern{
		IRI:     "http://example.org/patterns/p2",
		Kind:    model.PatternOneOrMore,
		Members: []model.PatternMember{{Component: "t1", ComponentType: model.ComponentTemplate}},
	}
	doc = Pattern(single, "v1")
	assert.Equal(t, "t1", doc["oneOrMore"])
	assert.NotContains(t, doc, "primary")
}

func TestSummariesAlign(t *testing.T) {
	profile := &model.Profile{IRI: "http://example.org/p", Versions: []string{"http://example.org/p/v1"}}
	version := &model.ProfileVersion{
		IRI:             "http://example.org/p/v1",
		Descriptor:      model.Descriptor{Name: "P", NameLanguage: "en", Description: "D", DescriptionLanguage: "en"},
		Context:         "https://w3id.org/xapi/profiles/context",
		ConformsTo:      "https://w3id.org/xapi/profiles#1.0",
		GeneratedAtTime: "2024-01-01T00:00:00Z",
		Concepts:        []string{"c1"},
	}
	stored := ProfileSummary(profile, version, []*model.ProfileVersion{version})

	doc := &model.ProfileDocument{
		ID:         "http://example.org/p",
		Type:       model.ProfileDocumentType,
		Context:    "https://w3id.org/xapi/profiles/context",
		ConformsTo: "https://w3id.org/xapi/profiles#1.0",
		PrefLabel:  model.LanguageMap{"en": "P"},
		Definition: model.LanguageMap{"en": "D"},
		Versions: []model.VersionDocument{
			{ID: "http://example.org/p/v1", GeneratedAtTime: "2024-01-01T00:00:00Z"},
		},
		Concepts: []*model.ConceptDocument{{ID: "c1"}},
	}
	assert.Equal(t, stored, DocumentSummary(doc))
}

func TestProfileExpandsMembers(t *testing.T) {
	finder := &mapFinder{
		versions: map[string]*model.ProfileVersion{
			"v2": {IRI: "v2", WasRevisionOf: []string{"v1"}},
			"v1": {IRI: "v1", Shallow: true},
		},
		concepts:  map[string]*model.Concept{"c1": {IRI: "c1", Type: model.ConceptVerb}},
		templates: map[string]*model.Template{"t1": {IRI: "t1", Verb: "c1"}},
		patterns:  map[string]*model.Pattern{},
	}
	profile := &model.Profile{IRI: "p", Versions: []string{"v2", "v1"}}
	version := finder.versions["v2"]
	version.Concepts = []string{"c1"}
	version.Templates = []string{"t1"}

	doc, err := Profile(context.Background(), finder, profile, version)
	require.NoError(t, err)
	assert.Len(t, doc["versions"], 2)
	assert.Len(t, doc["concepts"], 1)
	assert.Len(t, doc["templates"], 1)
	assert.NotContains(t, doc, "patterns")

	version.Patterns = []string{"missing"}
	_, err = Profile(context.Background(), finder, profile, version)
	require.Error(t, err)
	var serverError *errors2.ServerError
	assert.ErrorAs(t, err, &serverError)
}
