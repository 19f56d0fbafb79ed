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

package lock

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv" // For hashing string keys to integers
	"sync"

	"github.com/wso2/profile-server/internal/system/database/client"
	"github.com/wso2/profile-server/internal/system/database/scripts"
	"github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
)

// DistributedLock guards a key across concurrent imports.
type DistributedLock interface {
	Acquire(key string) (bool, error)
	Release(key string) error
}

// PostgresLock implements DistributedLock using PostgreSQL advisory locks. Advisory locks
// belong to a session, so every held key pins its own connection until released.
type PostgresLock struct {
	dbClient client.DBClientInterface
	mu       sync.Mutex
	held     map[string]*sql.Conn
}

func NewPostgresLock(dbClient client.DBClientInterface) *PostgresLock {
	return &PostgresLock{
		dbClient: dbClient,
		held:     make(map[string]*sql.Conn),
	}
}

// PostgreSQL advisory locks use bigint or two integers. We'll use a single bigint.
func generateLockKey(key string) (int64, error) {

	logger := log.GetLogger()
	h := fnv.New64a()
	_, err := h.Write([]byte(key))
	if err != nil {
		errorMsg := fmt.Sprintf("failed to hash lock key '%s'", key)
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_KEY_GEN.Code,
			Message:     errors.LOCK_KEY_GEN.Message,
			Description: errorMsg,
		}, err)
		return 0, serverError
	}
	return int64(h.Sum64()), nil // Cast to int64 for pg_advisory_lock
}

func (l *PostgresLock) Acquire(key string) (bool, error) {

	logger := log.GetLogger()
	ctx := context.Background()

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return false, nil
	}

	lockID, err := generateLockKey(key)
	if err != nil {
		return false, err
	}
	logger.Debug(fmt.Sprintf("Generated lock Id: %d", lockID))

	conn, err := l.dbClient.Conn(ctx)
	if err != nil {
		errorMsg := "Failed to obtain a connection for advisory lock acquiring."
		logger.Error(errorMsg, log.Error(err))
		return false, errors.NewServerError(errors.ErrorMessage{
			Code:        errors.DB_CLIENT_INIT.Code,
			Message:     errors.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}

	results, err := queryConn(ctx, conn, scripts.TryAdvisoryLock["postgres"], lockID)
	if err != nil {
		_ = conn.Close()
		errorMsg := "Failed to execute pg_try_advisory_lock"
		logger.Error(errorMsg, log.Error(err))
		return false, errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_ACQUIRE.Code,
			Message:     errors.LOCK_ACQUIRE.Message,
			Description: errorMsg,
		}, err)
	}

	acquired, ok := boolColumn(results, "pg_try_advisory_lock")
	if !ok {
		_ = conn.Close()
		errorMsg := fmt.Sprintf("pg_try_advisory_lock returned no results or invalid field for "+
			"lock Id %d", lockID)
		logger.Error(errorMsg)
		return false, errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_RESULT_INVALID.Code,
			Message:     errors.LOCK_RESULT_INVALID.Message,
			Description: errorMsg,
		}, nil)
	}
	if !acquired {
		_ = conn.Close()
		return false, nil
	}
	l.held[key] = conn
	return true, nil
}

func (l *PostgresLock) Release(key string) error {

	logger := log.GetLogger()
	ctx := context.Background()

	l.mu.Lock()
	defer l.mu.Unlock()
	conn, ok := l.held[key]
	if !ok {
		return nil
	}
	delete(l.held, key)
	defer conn.Close()

	lockID, err := generateLockKey(key)
	if err != nil {
		return err
	}

	results, err := queryConn(ctx, conn, scripts.AdvisoryUnlock["postgres"], lockID)
	released, valid := boolColumn(results, "pg_advisory_unlock")
	if err != nil || !valid || !released {
		errorMsg := "pg_advisory_unlock failed"
		logger.Error(errorMsg, log.Error(err))
		return errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_RELEASE.Code,
			Message:     errors.LOCK_RELEASE.Message,
			Description: errorMsg,
		}, err)
	}
	logger.Debug(fmt.Sprintf("Advisory lock released for lock id: %d", lockID))
	return nil
}

func queryConn(ctx context.Context, conn *sql.Conn, query string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return client.ScanRows(rows)
}

func boolColumn(results []map[string]interface{}, column string) (bool, bool) {
	if len(results) == 0 {
		return false, false
	}
	v, ok := results[0][column].(bool)
	return v, ok
}

// LocalLock implements DistributedLock within a single process.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]struct{})}
}

func (l *LocalLock) Acquire(key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = struct{}{}
	return true, nil
}

func (l *LocalLock) Release(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
