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
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/wso2/profile-server/internal/profile/model"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const entityCollection = "profile_entities"

type entityRecord[T any] struct {
	IRI       string    `bson:"_id"`
	Kind      string    `bson:"kind"`
	Parent    string    `bson:"parent"`
	Document  T         `bson:"document"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoRepository keeps every entity in one collection keyed by IRI, so the identifier space
// stays global. Commits run inside a session transaction and need a replica set.
type MongoRepository struct {
	Collection *mongo.Collection
	now        func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		Collection: db.Collection(entityCollection),
		now:        time.Now,
	}
}

// EnsureIndexes creates the owner lookup index used by draft deletion.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "parent", Value: 1}, {Key: "kind", Value: 1}},
	})
	return err
}

func (r *MongoRepository) FindProfile(ctx context.Context, iri string) (*model.Profile, error) {
	return findRecord[model.Profile](ctx, r, KindProfile, iri)
}

func (r *MongoRepository) FindProfileVersion(ctx context.Context, iri string) (*model.ProfileVersion, error) {
	return findRecord[model.ProfileVersion](ctx, r, KindVersion, iri)
}

func (r *MongoRepository) FindConcept(ctx context.Context, iri string) (*model.Concept, error) {
	return findRecord[model.Concept](ctx, r, KindConcept, iri)
}

func (r *MongoRepository) FindTemplate(ctx context.Context, iri string) (*model.Template, error) {
	return findRecord[model.Template](ctx, r, KindTemplate, iri)
}

func (r *MongoRepository) FindPattern(ctx context.Context, iri string) (*model.Pattern, error) {
	return findRecord[model.Pattern](ctx, r, KindPattern, iri)
}

func findRecord[T any](ctx context.Context, r *MongoRepository, kind, iri string) (*T, error) {
	var rec entityRecord[T]
	err := r.Collection.FindOne(ctx, bson.M{"_id": iri, "kind": kind}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch %s with Id: %s", kind, iri)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return nil, serverError(errors2.FETCH_ENTITY, errorMsg, errors.Wrapf(err, "select %s %s", kind, iri))
	}
	return &rec.Document, nil
}

func (r *MongoRepository) SaveProfileVersion(ctx context.Context, version *model.ProfileVersion) error {
	return r.insertIfAbsent(ctx, KindVersion, version.IRI, version.ProfileIRI, version)
}

func (r *MongoRepository) SaveConcept(ctx context.Context, concept *model.Concept) error {
	return r.insertIfAbsent(ctx, KindConcept, concept.IRI, concept.ParentProfile, concept)
}

func (r *MongoRepository) SaveTemplate(ctx context.Context, template *model.Template) error {
	return r.insertIfAbsent(ctx, KindTemplate, template.IRI, template.ParentProfile, template)
}

func (r *MongoRepository) insertIfAbsent(ctx context.Context, kind, iri, parent string, entity interface{}) error {
	now := r.now().UTC()
	update := bson.M{"$setOnInsert": bson.M{
		"kind":       kind,
		"parent":     parent,
		"document":   entity,
		"created_at": now,
		"updated_at": now,
	}}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": iri}, update, options.Update().SetUpsert(true))
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to save %s with Id: %s", kind, iri)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return serverError(errors2.SAVE_ENTITY, errorMsg, errors.Wrapf(err, "insert %s %s", kind, iri))
	}
	return nil
}

func (r *MongoRepository) Commit(ctx context.Context, batch *model.Batch) error {
	session, err := r.Collection.Database().Client().StartSession()
	if err != nil {
		return serverError(errors2.COMMIT_IMPORT, "Failed to start session for import commit",
			errors.Wrap(err, "start session"))
	}
	defer session.EndSession(ctx)

	now := r.now().UTC()
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, rec := range records(batch) {
			if err := r.write(sc, rec, now); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err == nil {
		return nil
	}
	var clientErr *errors2.ClientError
	var serverErr *errors2.ServerError
	if errors.As(err, &clientErr) || errors.As(err, &serverErr) {
		return err
	}
	return serverError(errors2.COMMIT_IMPORT, fmt.Sprintf("Failed to commit import %s", batch.ImportID),
		errors.Wrapf(err, "commit import %s", batch.ImportID))
}

func (r *MongoRepository) write(ctx context.Context, rec record, now time.Time) error {
	if rec.isNew {
		return insertRecord(ctx, r.Collection, entityRecord[interface{}]{
			IRI:       rec.iri,
			Kind:      rec.kind,
			Parent:    rec.parent,
			Document:  rec.entity,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	filter := bson.M{"_id": rec.iri, "kind": rec.storedKind()}
	set := bson.M{"parent": rec.parent, "document": rec.entity, "updated_at": now}
	if rec.replaces != "" {
		filter["parent"] = ""
		set["kind"] = rec.kind
	}
	res, err := r.Collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return serverError(errors2.COMMIT_IMPORT, fmt.Sprintf("Failed to update %s with Id: %s", rec.kind, rec.iri),
			errors.Wrapf(err, "update %s %s", rec.kind, rec.iri))
	}
	if res.MatchedCount == 0 {
		errorMsg := fmt.Sprintf("No stored %s with Id: %s to update", rec.storedKind(), rec.iri)
		return serverError(errors2.COMMIT_IMPORT, errorMsg, nil)
	}
	return nil
}

func insertRecord(ctx context.Context, coll *mongo.Collection, rec entityRecord[interface{}]) error {
	_, err := coll.InsertOne(ctx, rec)
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return alreadyExists(rec.Kind, rec.IRI)
	}
	return serverError(errors2.COMMIT_IMPORT, fmt.Sprintf("Failed to insert %s with Id: %s", rec.Kind, rec.IRI),
		errors.Wrapf(err, "insert %s %s", rec.Kind, rec.IRI))
}

func (r *MongoRepository) DeleteVersion(ctx context.Context, discard model.Discard) error {
	session, err := r.Collection.Database().Client().StartSession()
	if err != nil {
		return serverError(errors2.DELETE_VERSION, "Failed to start session for version deletion",
			errors.Wrap(err, "start session"))
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		owned := bson.M{
			"parent": discard.VersionIRI,
			"kind":   bson.M{"$in": bson.A{KindConcept, KindTemplate, KindPattern}},
		}
		if _, err := r.Collection.DeleteMany(sc, owned); err != nil {
			return nil, err
		}
		if _, err := r.Collection.DeleteOne(sc, bson.M{"_id": discard.VersionIRI, "kind": KindVersion}); err != nil {
			return nil, err
		}
		if discard.Profile == nil {
			return nil, nil
		}
		if discard.DropProfile {
			_, err := r.Collection.DeleteOne(sc, bson.M{"_id": discard.Profile.IRI, "kind": KindProfile})
			return nil, err
		}
		_, err := r.Collection.UpdateOne(sc,
			bson.M{"_id": discard.Profile.IRI, "kind": KindProfile},
			bson.M{"$set": bson.M{"document": discard.Profile, "updated_at": r.now().UTC()}})
		return nil, err
	})
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to delete version %s", discard.VersionIRI)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return serverError(errors2.DELETE_VERSION, errorMsg, errors.Wrapf(err, "delete version %s", discard.VersionIRI))
	}
	return nil
}
