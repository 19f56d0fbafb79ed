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

package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/profile-server/internal/profile/model"
	"github.com/wso2/profile-server/internal/system/database/client"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
)

func newMockRepository(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewPostgresRepository(client.NewDBClient(db))
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	return repo, mock
}

func TestPostgresFindConcept(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT document FROM profile_entities").
		WithArgs("c1", KindConcept).
		WillReturnRows(sqlmock.NewRows([]string{"document"}).
			AddRow([]byte(`{"iri":"c1","type":"Verb","parent_profile":"p/v1","name":"completed"}`)))

	c, err := repo.FindConcept(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, model.ConceptVerb, c.Type)
	assert.Equal(t, "completed", c.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindMissing(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT document FROM profile_entities").
		WithArgs("nope", KindProfile).
		WillReturnRows(sqlmock.NewRows([]string{"document"}))

	p, err := repo.FindProfile(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPostgresFindError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT document FROM profile_entities").
		WillReturnError(assert.AnError)

	_, err := repo.FindTemplate(context.Background(), "t1")
	require.Error(t, err)
	var serverError *errors2.ServerError
	assert.ErrorAs(t, err, &serverError)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPostgresSaveConceptIsInsertIfAbsent(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("ON CONFLICT \\(iri\\) DO NOTHING").
		WithArgs("stub", KindConcept, "", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SaveConcept(context.Background(), &model.Concept{IRI: "stub"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommit(t *testing.T) {
	repo, mock := newMockRepository(t)
	batch := sampleBatch()
	batch.Profile.New = false

	mock.ExpectBegin()
	for _, iri := range []string{"c1", "t1", "pt1", "p/v1"} {
		mock.ExpectExec("INSERT INTO profile_entities").
			WithArgs(iri, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("UPDATE profile_entities").
		WithArgs("", sqlmock.AnyArg(), sqlmock.AnyArg(), "p", KindProfile).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Commit(context.Background(), batch))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommitUniqueViolation(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO profile_entities").
		WithArgs("c1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: uniqueViolation})
	mock.ExpectRollback()

	err := repo.Commit(context.Background(), sampleBatch())
	require.Error(t, err)
	assert.True(t, errors2.IsConflict(err))
	assert.Contains(t, err.Error(), "c1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommitUpdateMissingRow(t *testing.T) {
	repo, mock := newMockRepository(t)
	batch := &model.Batch{
		Version: model.Staged[*model.ProfileVersion]{Entity: &model.ProfileVersion{IRI: "p/v1", ProfileIRI: "p"}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE profile_entities").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Commit(context.Background(), batch)
	require.Error(t, err)
	assert.False(t, errors2.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommitReplacesPlaceholder(t *testing.T) {
	repo, mock := newMockRepository(t)
	batch := &model.Batch{
		Patterns: []model.Staged[*model.Pattern]{
			{Entity: &model.Pattern{IRI: "pt1", ParentProfile: "p/v1", Kind: model.PatternOneOrMore}, Replaces: KindTemplate},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE profile_entities SET kind = \\$1").
		WithArgs(KindPattern, "p/v1", sqlmock.AnyArg(), sqlmock.AnyArg(), "pt1", KindTemplate).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Commit(context.Background(), batch))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommitReplaceWithoutPlaceholder(t *testing.T) {
	repo, mock := newMockRepository(t)
	batch := &model.Batch{
		Patterns: []model.Staged[*model.Pattern]{
			{Entity: &model.Pattern{IRI: "pt1", ParentProfile: "p/v1"}, Replaces: KindTemplate},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE profile_entities SET kind = \\$1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Commit(context.Background(), batch)
	var serverError *errors2.ServerError
	require.ErrorAs(t, err, &serverError)
	assert.Equal(t, "No stored template with Id: pt1 to update", serverError.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteVersion(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM profile_entities WHERE parent").
		WithArgs("p/v2").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM profile_entities WHERE iri").
		WithArgs("p/v2", KindVersion).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE profile_entities").
		WithArgs("", sqlmock.AnyArg(), sqlmock.AnyArg(), "p", KindProfile).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteVersion(context.Background(), model.Discard{
		VersionIRI: "p/v2",
		Profile:    &model.Profile{IRI: "p", CurrentPublishedVersion: "p/v1"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
