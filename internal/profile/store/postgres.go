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
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/wso2/profile-server/internal/profile/model"
	"github.com/wso2/profile-server/internal/system/database/client"
	"github.com/wso2/profile-server/internal/system/database/scripts"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
)

const uniqueViolation = "23505"

// PostgresRepository stores every entity as a JSONB document in one table keyed by IRI.
type PostgresRepository struct {
	dbClient client.DBClientInterface
	now      func() time.Time
}

func NewPostgresRepository(dbClient client.DBClientInterface) *PostgresRepository {
	return &PostgresRepository{dbClient: dbClient, now: time.Now}
}

func (r *PostgresRepository) FindProfile(ctx context.Context, iri string) (*model.Profile, error) {
	return findDocument[model.Profile](ctx, r, KindProfile, iri)
}

func (r *PostgresRepository) FindProfileVersion(ctx context.Context, iri string) (*model.ProfileVersion, error) {
	return findDocument[model.ProfileVersion](ctx, r, KindVersion, iri)
}

func (r *PostgresRepository) FindConcept(ctx context.Context, iri string) (*model.Concept, error) {
	return findDocument[model.Concept](ctx, r, KindConcept, iri)
}

func (r *PostgresRepository) FindTemplate(ctx context.Context, iri string) (*model.Template, error) {
	return findDocument[model.Template](ctx, r, KindTemplate, iri)
}

func (r *PostgresRepository) FindPattern(ctx context.Context, iri string) (*model.Pattern, error) {
	return findDocument[model.Pattern](ctx, r, KindPattern, iri)
}

func findDocument[T any](ctx context.Context, r *PostgresRepository, kind, iri string) (*T, error) {

	logger := log.GetLogger()
	results, err := r.dbClient.ExecuteQuery(ctx, scripts.GetEntity["postgres"], iri, kind)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch %s with Id: %s", kind, iri)
		logger.Debug(errorMsg, log.Error(err))
		return nil, serverError(errors2.FETCH_ENTITY, errorMsg, errors.Wrapf(err, "select %s %s", kind, iri))
	}
	if len(results) == 0 {
		return nil, nil
	}

	var raw []byte
	switch v := results[0]["document"].(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		errorMsg := fmt.Sprintf("Unexpected document column type %T for %s %s", v, kind, iri)
		return nil, serverError(errors2.UNMARSHAL_JSON, errorMsg, nil)
	}

	entity := new(T)
	if err := json.Unmarshal(raw, entity); err != nil {
		errorMsg := fmt.Sprintf("Failed to unmarshal %s with Id: %s", kind, iri)
		logger.Debug(errorMsg, log.Error(err))
		return nil, serverError(errors2.UNMARSHAL_JSON, errorMsg, err)
	}
	return entity, nil
}

func (r *PostgresRepository) SaveProfileVersion(ctx context.Context, version *model.ProfileVersion) error {
	return r.insertIfAbsent(ctx, KindVersion, version.IRI, version.ProfileIRI, version)
}

func (r *PostgresRepository) SaveConcept(ctx context.Context, concept *model.Concept) error {
	return r.insertIfAbsent(ctx, KindConcept, concept.IRI, concept.ParentProfile, concept)
}

func (r *PostgresRepository) SaveTemplate(ctx context.Context, template *model.Template) error {
	return r.insertIfAbsent(ctx, KindTemplate, template.IRI, template.ParentProfile, template)
}

func (r *PostgresRepository) insertIfAbsent(ctx context.Context, kind, iri, parent string, entity interface{}) error {

	document, err := json.Marshal(entity)
	if err != nil {
		return serverError(errors2.MARSHAL_JSON, fmt.Sprintf("Failed to marshal %s %s", kind, iri), err)
	}
	now := r.now().UTC()
	_, err = r.dbClient.ExecuteStatement(ctx, scripts.InsertEntityIfAbsent["postgres"],
		iri, kind, parent, document, now, now)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to save %s with Id: %s", kind, iri)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return serverError(errors2.SAVE_ENTITY, errorMsg, errors.Wrapf(err, "insert %s %s", kind, iri))
	}
	return nil
}

func (r *PostgresRepository) Commit(ctx context.Context, batch *model.Batch) error {

	logger := log.GetLogger()
	tx, err := r.dbClient.BeginTx(ctx)
	if err != nil {
		errorMsg := "Failed to begin transaction for import commit"
		logger.Debug(errorMsg, log.Error(err))
		return serverError(errors2.COMMIT_IMPORT, errorMsg, err)
	}

	now := r.now().UTC()
	for _, rec := range records(batch) {
		if err := r.write(ctx, tx, rec, now); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		errorMsg := fmt.Sprintf("Failed to commit import %s", batch.ImportID)
		logger.Debug(errorMsg, log.Error(err))
		return serverError(errors2.COMMIT_IMPORT, errorMsg, err)
	}
	return nil
}

func (r *PostgresRepository) write(ctx context.Context, tx *sql.Tx, rec record, now time.Time) error {

	document, err := json.Marshal(rec.entity)
	if err != nil {
		return serverError(errors2.MARSHAL_JSON, fmt.Sprintf("Failed to marshal %s %s", rec.kind, rec.iri), err)
	}

	if rec.isNew {
		_, err = tx.ExecContext(ctx, scripts.InsertEntity["postgres"], rec.iri, rec.kind, rec.parent, document, now, now)
		if err != nil {
			if isUniqueViolation(err) {
				return alreadyExists(rec.kind, rec.iri)
			}
			errorMsg := fmt.Sprintf("Failed to insert %s with Id: %s", rec.kind, rec.iri)
			return serverError(errors2.COMMIT_IMPORT, errorMsg, errors.Wrapf(err, "insert %s %s", rec.kind, rec.iri))
		}
		return nil
	}

	var result sql.Result
	if rec.replaces != "" {
		result, err = tx.ExecContext(ctx, scripts.ReplaceEntity["postgres"], rec.kind, rec.parent, document, now,
			rec.iri, rec.replaces)
	} else {
		result, err = tx.ExecContext(ctx, scripts.UpdateEntity["postgres"], rec.parent, document, now, rec.iri, rec.kind)
	}
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to update %s with Id: %s", rec.kind, rec.iri)
		return serverError(errors2.COMMIT_IMPORT, errorMsg, errors.Wrapf(err, "update %s %s", rec.kind, rec.iri))
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		errorMsg := fmt.Sprintf("No stored %s with Id: %s to update", rec.storedKind(), rec.iri)
		return serverError(errors2.COMMIT_IMPORT, errorMsg, nil)
	}
	return nil
}

func (r *PostgresRepository) DeleteVersion(ctx context.Context, discard model.Discard) error {

	logger := log.GetLogger()
	tx, err := r.dbClient.BeginTx(ctx)
	if err != nil {
		return serverError(errors2.DELETE_VERSION, "Failed to begin transaction for version deletion", err)
	}
	fail := func(step string, err error) error {
		_ = tx.Rollback()
		errorMsg := fmt.Sprintf("Failed to %s while deleting version %s", step, discard.VersionIRI)
		logger.Debug(errorMsg, log.Error(err))
		return serverError(errors2.DELETE_VERSION, errorMsg, err)
	}

	if _, err := tx.ExecContext(ctx, scripts.DeleteEntitiesByParent["postgres"], discard.VersionIRI); err != nil {
		return fail("delete owned entities", err)
	}
	if _, err := tx.ExecContext(ctx, scripts.DeleteEntity["postgres"], discard.VersionIRI, KindVersion); err != nil {
		return fail("delete version", err)
	}
	if discard.Profile != nil {
		if discard.DropProfile {
			if _, err := tx.ExecContext(ctx, scripts.DeleteEntity["postgres"], discard.Profile.IRI, KindProfile); err != nil {
				return fail("delete profile", err)
			}
		} else {
			document, err := json.Marshal(discard.Profile)
			if err != nil {
				return fail("marshal profile", err)
			}
			if _, err := tx.ExecContext(ctx, scripts.UpdateEntity["postgres"], "", document, r.now().UTC(),
				discard.Profile.IRI, KindProfile); err != nil {
				return fail("update profile", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fail("commit", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
