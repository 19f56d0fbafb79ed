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

package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wso2/profile-server/internal/profile/importer"
	"github.com/wso2/profile-server/internal/profile/model"
	"github.com/wso2/profile-server/internal/profile/schema"
	"github.com/wso2/profile-server/internal/profile/store"
	"github.com/wso2/profile-server/internal/system/constants"
	"github.com/wso2/profile-server/internal/system/database/lock"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
)

const (
	profileIRI = "http://example.org/profiles/p"
	v1IRI      = profileIRI + "/v1"
	v2IRI      = profileIRI + "/v2"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

type mockLock struct {
	mock.Mock
}

func (m *mockLock) Acquire(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *mockLock) Release(key string) error {
	return m.Called(key).Error(0)
}

func document(versions ...map[string]interface{}) []byte {
	scheme := versions[0]["id"]
	doc := map[string]interface{}{
		"id":         profileIRI,
		"type":       "Profile",
		"@context":   "https://w3id.org/xapi/profiles/context",
		"conformsTo": "https://w3id.org/xapi/profiles#1.0",
		"prefLabel":  map[string]string{"en": "Profile"},
		"definition": map[string]string{"en": "A profile"},
		"versions":   versions,
		"concepts": []interface{}{map[string]interface{}{
			"id": "http://example.org/verbs/did", "type": "Verb", "inScheme": scheme,
			"prefLabel": map[string]string{"en": "did"}, "definition": map[string]string{"en": "Did"},
		}},
		"templates": []interface{}{map[string]interface{}{
			"id": "http://example.org/templates/t1", "type": "StatementTemplate", "inScheme": scheme,
			"prefLabel": map[string]string{"en": "t"}, "definition": map[string]string{"en": "T"},
			"verb": "http://example.org/verbs/did",
		}},
		"patterns": []interface{}{map[string]interface{}{
			"id": "http://example.org/patterns/p1", "type": "Pattern", "inScheme": scheme, "primary": true,
			"prefLabel": map[string]string{"en": "p"}, "definition": map[string]string{"en": "P"},
			"oneOrMore": "http://example.org/templates/t1",
		}},
	}
	raw, _ := json.Marshal(doc)
	return raw
}

func version(iri string, wasRevisionOf ...string) map[string]interface{} {
	v := map[string]interface{}{"id": iri}
	if len(wasRevisionOf) > 0 {
		v["wasRevisionOf"] = wasRevisionOf
	}
	return v
}

func newService(t *testing.T, l lock.DistributedLock) (*ProfilesService, *store.MemoryRepository) {
	t.Helper()
	validator, err := schema.Default()
	require.NoError(t, err)
	repo := store.NewMemoryRepository()
	if l == nil {
		l = lock.NewLocalLock()
	}
	return NewProfilesService(repo, l, validator, importer.Options{}), repo
}

func TestImportProfile(t *testing.T) {
	svc, _ := newService(t, nil)
	result, err := svc.ImportProfile(context.Background(), ImportRequest{
		Document:       document(version(v1IRI)),
		OrganizationID: "org-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ImportID)
	assert.Equal(t, profileIRI, result.ProfileIRI)
	assert.Equal(t, v1IRI, result.VersionIRI)
	assert.Equal(t, model.StateDraft, result.Status)
	assert.Equal(t, "org-1", result.OrganizationID)
	assert.Equal(t, 1, result.Concepts)
	assert.Equal(t, 1, result.Templates)
	assert.Equal(t, 1, result.Patterns)
}

func TestImportProfileRejectsInvalidDocument(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.ImportProfile(context.Background(), ImportRequest{Document: []byte(`{"id": "x"}`)})
	require.Error(t, err)
	assert.True(t, errors2.IsValidation(err))
}

func TestImportProfileReportsDecodeErrors(t *testing.T) {
	svc, repo := newService(t, nil)
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "empty", doc: ``, want: "The profile document is empty."},
		{name: "malformed", doc: `{"id": `, want: "Malformed JSON in profile document"},
		{name: "array", doc: `[]`, want: "The profile document must be a JSON object, got array."},
		{name: "field type", doc: `{"id": "` + profileIRI + `", "versions": [{"id": 1}]}`,
			want: "Invalid type for field 'versions.id' in profile document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ImportProfile(context.Background(), ImportRequest{Document: []byte(tt.doc)})
			var clientErr *errors2.ClientError
			require.ErrorAs(t, err, &clientErr)
			assert.Equal(t, errors2.INVALID_DOCUMENT.Code, clientErr.Code)
			assert.Contains(t, clientErr.Description, tt.want)
		})
	}

	p, err := repo.FindProfile(context.Background(), profileIRI)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestImportProfileHoldsLock(t *testing.T) {
	l := &mockLock{}
	key := constants.ImportLockPrefix + profileIRI
	l.On("Acquire", key).Return(true, nil).Once()
	l.On("Release", key).Return(nil).Once()

	svc, _ := newService(t, l)
	_, err := svc.ImportProfile(context.Background(), ImportRequest{Document: document(version(v1IRI))})
	require.NoError(t, err)
	l.AssertExpectations(t)
}

func TestImportProfileWhileLocked(t *testing.T) {
	l := &mockLock{}
	l.On("Acquire", constants.ImportLockPrefix+profileIRI).Return(false, nil)

	svc, repo := newService(t, l)
	_, err := svc.ImportProfile(context.Background(), ImportRequest{Document: document(version(v1IRI))})
	require.Error(t, err)
	assert.True(t, errors2.IsConflict(err))
	l.AssertNotCalled(t, "Release", mock.Anything)

	profile, err := repo.FindProfile(context.Background(), profileIRI)
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestImportProfileLockFailure(t *testing.T) {
	l := &mockLock{}
	l.On("Acquire", mock.Anything).Return(false, errors.New("connection refused"))

	svc, _ := newService(t, l)
	_, err := svc.ImportProfile(context.Background(), ImportRequest{Document: document(version(v1IRI))})
	assert.EqualError(t, err, "connection refused")
}

func TestPublishDraft(t *testing.T) {
	svc, repo := newService(t, nil)
	ctx := context.Background()
	_, err := svc.ImportProfile(ctx, ImportRequest{Document: document(version(v1IRI))})
	require.NoError(t, err)

	profile, err := svc.PublishDraft(ctx, profileIRI)
	require.NoError(t, err)
	assert.Equal(t, v1IRI, profile.CurrentPublishedVersion)
	assert.Empty(t, profile.CurrentDraftVersion)

	stored, err := repo.FindProfileVersion(ctx, v1IRI)
	require.NoError(t, err)
	assert.Equal(t, model.StatePublished, stored.State)

	_, err = svc.PublishDraft(ctx, profileIRI)
	require.Error(t, err)
	assert.True(t, errors2.IsConflict(err))

	// The published version can now be revised.
	result, err := svc.ImportProfile(ctx, ImportRequest{Document: document(version(v2IRI, v1IRI), version(v1IRI))})
	require.NoError(t, err)
	assert.Equal(t, v2IRI, result.VersionIRI)
}

func TestDeleteDraftOfUnpublishedProfile(t *testing.T) {
	svc, repo := newService(t, nil)
	ctx := context.Background()
	_, err := svc.ImportProfile(ctx, ImportRequest{Document: document(version(v1IRI))})
	require.NoError(t, err)

	profile, err := svc.DeleteDraft(ctx, profileIRI)
	require.NoError(t, err)
	assert.Nil(t, profile)

	_, err = svc.GetProfile(ctx, profileIRI)
	assert.True(t, errors2.IsNotFound(err))
	template, err := repo.FindTemplate(ctx, "http://example.org/templates/t1")
	require.NoError(t, err)
	assert.Nil(t, template)

	// The identifiers are free again.
	_, err = svc.ImportProfile(ctx, ImportRequest{Document: document(version(v1IRI))})
	assert.NoError(t, err)
}

func TestDeleteDraftKeepsPublishedVersion(t *testing.T) {
	svc, repo := newService(t, nil)
	ctx := context.Background()
	_, err := svc.ImportProfile(ctx, ImportRequest{Document: document(version(v1IRI)), Publish: true})
	require.NoError(t, err)
	_, err = svc.ImportProfile(ctx, ImportRequest{Document: document(version(v2IRI, v1IRI), version(v1IRI))})
	require.NoError(t, err)

	profile, err := svc.DeleteDraft(ctx, profileIRI)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, []string{v1IRI}, profile.Versions)
	assert.Empty(t, profile.CurrentDraftVersion)

	v2, err := repo.FindProfileVersion(ctx, v2IRI)
	require.NoError(t, err)
	assert.Nil(t, v2)
	// Entities owned by the published version survive.
	template, err := repo.FindTemplate(ctx, "http://example.org/templates/t1")
	require.NoError(t, err)
	require.NotNil(t, template)
	assert.Equal(t, v1IRI, template.ParentProfile)
}

func TestDeleteDraftWithoutDraft(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	_, err := svc.DeleteDraft(ctx, profileIRI)
	assert.True(t, errors2.IsNotFound(err))

	_, err = svc.ImportProfile(ctx, ImportRequest{Document: document(version(v1IRI)), Publish: true})
	require.NoError(t, err)
	_, err = svc.DeleteDraft(ctx, profileIRI)
	assert.True(t, errors2.IsConflict(err))
}

func TestExportProfile(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	_, err := svc.ImportProfile(ctx, ImportRequest{Document: document(version(v1IRI)), Publish: true})
	require.NoError(t, err)

	doc, err := svc.ExportProfile(ctx, profileIRI, "")
	require.NoError(t, err)
	assert.Equal(t, profileIRI, doc["id"])
	assert.Len(t, doc["concepts"], 1)
	assert.Len(t, doc["templates"], 1)
	assert.Len(t, doc["patterns"], 1)

	_, err = svc.ExportProfile(ctx, profileIRI, "http://example.org/unknown")
	assert.True(t, errors2.IsNotFound(err))
	_, err = svc.ExportProfile(ctx, "http://example.org/unknown", "")
	assert.True(t, errors2.IsNotFound(err))
}
