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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/profile-server/internal/profile/model"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find concept", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + entityCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "c1"},
			{Key: "kind", Value: KindConcept},
			{Key: "parent", Value: "p/v1"},
			{Key: "document", Value: bson.D{
				{Key: "iri", Value: "c1"},
				{Key: "type", Value: "Verb"},
				{Key: "parent_profile", Value: "p/v1"},
			}},
		}))

		c, err := repo.FindConcept(context.Background(), "c1")
		require.NoError(mt, err)
		require.NotNil(mt, c)
		assert.Equal(mt, model.ConceptVerb, c.Type)
		assert.Equal(mt, "p/v1", c.ParentProfile)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + entityCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		p, err := repo.FindPattern(context.Background(), "nope")
		require.NoError(mt, err)
		assert.Nil(mt, p)
	})

	mt.Run("save placeholder", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, repo.SaveTemplate(context.Background(), &model.Template{IRI: "t-stub"}))
	})

	mt.Run("save failure", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad"}))

		err := repo.SaveConcept(context.Background(), &model.Concept{IRI: "c-stub"})
		require.Error(mt, err)
		var serverError *errors2.ServerError
		require.ErrorAs(mt, err, &serverError)
		assert.Contains(mt, serverError.Err.Error(), "insert concept c-stub")
	})

	mt.Run("update of missing entity fails", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.write(context.Background(), record{
			iri:    "t1",
			kind:   KindTemplate,
			parent: "p/v2",
			entity: &model.Template{IRI: "t1", ParentProfile: "p/v2"},
		}, time.Now())
		require.Error(mt, err)
		var serverError *errors2.ServerError
		require.ErrorAs(mt, err, &serverError)
		assert.Equal(mt, errors2.COMMIT_IMPORT.Code, serverError.Code)
		assert.Contains(mt, serverError.Description, "No stored template with Id: t1")
	})

	mt.Run("update failure wraps driver error", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad"}))

		err := repo.write(context.Background(), record{iri: "c1", kind: KindConcept, entity: &model.Concept{IRI: "c1"}},
			time.Now())
		var serverError *errors2.ServerError
		require.ErrorAs(mt, err, &serverError)
		assert.Contains(mt, serverError.Err.Error(), "update concept c1")
	})

	mt.Run("placeholder replacement", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := repo.write(context.Background(), record{
			iri:      "b/patterns/shared",
			kind:     KindPattern,
			parent:   "b/v1",
			entity:   &model.Pattern{IRI: "b/patterns/shared", ParentProfile: "b/v1"},
			replaces: KindTemplate,
		}, time.Now())
		require.NoError(mt, err)
	})

	mt.Run("placeholder replacement without placeholder fails", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.write(context.Background(), record{
			iri:      "b/patterns/shared",
			kind:     KindPattern,
			parent:   "b/v1",
			entity:   &model.Pattern{IRI: "b/patterns/shared", ParentProfile: "b/v1"},
			replaces: KindTemplate,
		}, time.Now())
		var serverError *errors2.ServerError
		require.ErrorAs(mt, err, &serverError)
		assert.Contains(mt, serverError.Description, "No stored template with Id: b/patterns/shared")
	})

	mt.Run("duplicate insert is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := insertRecord(context.Background(), mt.Coll, entityRecord[interface{}]{
			IRI:       "c1",
			Kind:      KindConcept,
			Document:  &model.Concept{IRI: "c1"},
			CreatedAt: time.Now(),
		})
		require.Error(mt, err)
		assert.True(mt, errors2.IsConflict(err))
	})
}
