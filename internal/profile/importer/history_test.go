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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/profile-server/internal/profile/model"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
)

const v3IRI = profileIRI + "/v3"

func publishedV1(t *testing.T) (*ProfileCoordinator, *countingRepository) {
	t.Helper()
	pc, repo := newCoordinator(t, Options{})
	_, err := importDoc(t, pc, exampleProfile(version(v1IRI)), true)
	require.NoError(t, err)
	return pc, repo
}

func TestNewVersionReusesPublishedContent(t *testing.T) {
	pc, repo := publishedV1(t)
	ctx := context.Background()
	const added = "http://example.org/verbs/added"

	doc := exampleProfile(version(v2IRI, v1IRI), version(v1IRI))
	doc["concepts"] = append(doc["concepts"].([]interface{}), conceptNode(added, "Verb", v2IRI))
	result, err := importDoc(t, pc, doc, false)
	require.NoError(t, err)

	assert.Equal(t, v2IRI, result.Profile.CurrentDraftVersion)
	assert.Equal(t, v1IRI, result.Profile.CurrentPublishedVersion)
	assert.Equal(t, []string{v2IRI, v1IRI}, result.Profile.Versions)
	assert.Equal(t, 2, result.Version.Version)
	assert.Equal(t, []string{verbIRI, added}, result.Version.Concepts)

	verb, err := repo.FindConcept(ctx, verbIRI)
	require.NoError(t, err)
	assert.Equal(t, v1IRI, verb.ParentProfile)

	fresh, err := repo.FindConcept(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, v2IRI, fresh.ParentProfile)

	published, err := repo.FindProfileVersion(ctx, v1IRI)
	require.NoError(t, err)
	assert.Equal(t, model.StatePublished, published.State)
}

func TestPublishedTemplateAcceptsNewLanguage(t *testing.T) {
	pc, repo := publishedV1(t)
	doc := exampleProfile(version(v2IRI, v1IRI), version(v1IRI))
	tmpl := templateNode(templateIRI, v2IRI, verbIRI)
	tmpl["prefLabel"] = node{"en": "template " + templateIRI, "fr": "modèle"}
	doc["templates"] = []interface{}{tmpl}

	_, err := importDoc(t, pc, doc, false)
	require.NoError(t, err)

	stored, err := repo.FindTemplate(context.Background(), templateIRI)
	require.NoError(t, err)
	assert.Equal(t, v1IRI, stored.ParentProfile)
	assert.Equal(t, []model.Translation{{Language: "fr", TranslationName: "modèle"}}, stored.Translations)
	assert.Equal(t, fixedNow, stored.CreatedAt)
}

func TestPublishedTemplateRejectsRuleChange(t *testing.T) {
	pc, repo := publishedV1(t)
	doc := exampleProfile(version(v2IRI, v1IRI), version(v1IRI))
	tmpl := templateNode(templateIRI, v2IRI, verbIRI)
	tmpl["rules"] = []interface{}{node{"location": "$.result.success", "presence": "excluded"}}
	doc["templates"] = []interface{}{tmpl}

	_, err := importDoc(t, pc, doc, false)
	require.Error(t, err)
	assert.True(t, errors2.IsConflict(err))
	assert.Contains(t, err.Error(), "rules")
	assert.Contains(t, err.Error(), templateIRI)

	profile, err := repo.FindProfile(context.Background(), profileIRI)
	require.NoError(t, err)
	assert.Empty(t, profile.CurrentDraftVersion)
	version, err := repo.FindProfileVersion(context.Background(), v2IRI)
	require.NoError(t, err)
	assert.Nil(t, version)
}

func TestPublishedConceptRejectsTypeChange(t *testing.T) {
	pc, _ := publishedV1(t)
	doc := exampleProfile(version(v2IRI, v1IRI), version(v1IRI))
	doc["concepts"] = []interface{}{conceptNode(verbIRI, "ActivityType", v2IRI)}

	_, err := importDoc(t, pc, doc, false)
	require.Error(t, err)
	assert.True(t, errors2.IsConflict(err))
	assert.Contains(t, err.Error(), "type")
}

func TestPublishedPatternMayDeprecate(t *testing.T) {
	pc, repo := publishedV1(t)
	doc := exampleProfile(version(v2IRI, v1IRI), version(v1IRI))
	p := patternNode(patternIRI, v2IRI, true, "oneOrMore", templateIRI)
	p["deprecated"] = true
	doc["patterns"] = []interface{}{p}

	_, err := importDoc(t, pc, doc, false)
	require.NoError(t, err)
	stored, err := repo.FindPattern(context.Background(), patternIRI)
	require.NoError(t, err)
	assert.True(t, stored.Deprecated)
}

func TestHistoryChain(t *testing.T) {
	tests := []struct {
		name     string
		versions []node
		contains string
	}{
		{"wasRevisionOf omits published", []node{version(v2IRI), version(v1IRI)}, "wasRevisionOf"},
		{"prior is not the published version", []node{version(v2IRI, v1IRI), version(profileIRI + "/v0")}, "versions[1]"},
		{"no prior version", []node{version(v2IRI, v1IRI)}, "versions[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, _ := publishedV1(t)
			_, err := importDoc(t, pc, exampleProfile(tt.versions...), false)
			require.Error(t, err)
			assert.True(t, errors2.IsConflict(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestOneDraftAtATime(t *testing.T) {
	pc, _ := publishedV1(t)
	_, err := importDoc(t, pc, exampleProfile(version(v2IRI, v1IRI), version(v1IRI)), false)
	require.NoError(t, err)

	_, err = importDoc(t, pc, exampleProfile(version(v3IRI, v1IRI), version(v1IRI)), false)
	require.Error(t, err)
	assert.True(t, errors2.IsConflict(err))
	assert.Contains(t, err.Error(), v2IRI)
}

func TestRevisingUnpublishedProfile(t *testing.T) {
	pc, _ := newCoordinator(t, Options{})
	_, err := importDoc(t, pc, exampleProfile(version(v1IRI)), false)
	require.NoError(t, err)
	// Clearing the draft pointer leaves a profile that was never published.
	profile, err := pc.repo.FindProfile(context.Background(), profileIRI)
	require.NoError(t, err)
	profile.CurrentDraftVersion = ""
	require.NoError(t, pc.repo.Commit(context.Background(), &model.Batch{
		Profile: model.Staged[*model.Profile]{Entity: profile},
	}))

	_, err = importDoc(t, pc, exampleProfile(version(v2IRI, v1IRI), version(v1IRI)), false)
	require.Error(t, err)
	assert.True(t, errors2.IsConflict(err))
}

func TestProfileMembershipMayOnlyGrow(t *testing.T) {
	pc, _ := publishedV1(t)
	doc := exampleProfile(version(v2IRI, v1IRI), version(v1IRI))
	delete(doc, "concepts")

	_, err := importDoc(t, pc, doc, false)
	require.Error(t, err)
	assert.True(t, errors2.IsConflict(err))
	assert.Contains(t, err.Error(), "concepts")
}

func TestProfileMetadata(t *testing.T) {
	t.Run("changed name", func(t *testing.T) {
		pc, _ := publishedV1(t)
		doc := exampleProfile(version(v2IRI, v1IRI), version(v1IRI))
		doc["prefLabel"] = node{"en": "Renamed"}

		_, err := importDoc(t, pc, doc, false)
		require.Error(t, err)
		assert.True(t, errors2.IsConflict(err))
		assert.Contains(t, err.Error(), "prefLabel")
	})

	t.Run("added seeAlso and language", func(t *testing.T) {
		pc, _ := publishedV1(t)
		doc := exampleProfile(version(v2IRI, v1IRI), version(v1IRI))
		doc["seeAlso"] = "http://example.org/docs"
		doc["definition"] = node{"en": "A test profile", "es": "Un perfil"}

		result, err := importDoc(t, pc, doc, false)
		require.NoError(t, err)
		assert.Equal(t, "http://example.org/docs", result.Version.SeeAlso)
	})
}

func TestVersionIdentifierCollision(t *testing.T) {
	pc, _ := publishedV1(t)
	const other = "http://example.org/profiles/other"
	doc := profileNode(other, version(v1IRI))

	_, err := importDoc(t, pc, doc, false)
	require.Error(t, err)
	assert.True(t, errors2.IsConflict(err))
	assert.Contains(t, err.Error(), v1IRI)
}

func TestShallowPlaceholders(t *testing.T) {
	pc, repo := newCoordinator(t, Options{})
	ctx := context.Background()
	const fork = "http://example.org/profiles/upstream/v9"

	doc := exampleProfile(version(v3IRI, v2IRI, fork), version(v2IRI, v1IRI), version(v1IRI))
	result, err := importDoc(t, pc, doc, true)
	require.NoError(t, err)
	assert.Equal(t, []string{v3IRI, v2IRI, v1IRI}, result.Profile.Versions)
	assert.Equal(t, 3, result.Version.Version)

	v2, err := repo.FindProfileVersion(ctx, v2IRI)
	require.NoError(t, err)
	require.NotNil(t, v2)
	assert.True(t, v2.Shallow)
	assert.Equal(t, profileIRI, v2.ProfileIRI)
	assert.Equal(t, []string{v1IRI}, v2.WasRevisionOf)

	upstream, err := repo.FindProfileVersion(ctx, fork)
	require.NoError(t, err)
	require.NotNil(t, upstream)
	assert.True(t, upstream.Shallow)
	assert.Empty(t, upstream.ProfileIRI)
	assert.EqualValues(t, 3, repo.versionSaves.Load())

	// The next version finds the placeholders instead of recreating them.
	next := exampleProfile(version(profileIRI+"/v4", v3IRI), version(v3IRI, v2IRI, fork), version(v2IRI, v1IRI), version(v1IRI))
	_, err = importDoc(t, pc, next, false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, repo.versionSaves.Load())
}

func TestDuplicateVersionEntries(t *testing.T) {
	pc, _ := newCoordinator(t, Options{})
	_, err := importDoc(t, pc, exampleProfile(version(v2IRI, v1IRI), version(v1IRI), version(v1IRI)), false)
	require.Error(t, err)
	assert.True(t, errors2.IsValidation(err))
}

func TestVersionCoordinatorRunsOnce(t *testing.T) {
	pc, _ := newCoordinator(t, Options{})
	doc := parse(t, exampleProfile(version(v1IRI)))
	v, err := newVersion(doc, Request{}, fixedNow)
	require.NoError(t, err)
	s := newSession("run-once", pc.repo, pc.validator, v, Options{}, fixedNow)
	vc := newVersionCoordinator(s, doc, Options{})

	finalize := func(b *model.Batch) error {
		b.Profile = model.Staged[*model.Profile]{Entity: &model.Profile{IRI: profileIRI, Versions: []string{v1IRI}}, New: true}
		return nil
	}
	batch, err := vc.Run(context.Background(), finalize)
	require.NoError(t, err)
	assert.Equal(t, VersionCommitted, vc.State())
	assert.Len(t, batch.Concepts, 1)
	assert.True(t, batch.Version.New)

	_, err = vc.Run(context.Background(), finalize)
	assert.Error(t, err)
}
