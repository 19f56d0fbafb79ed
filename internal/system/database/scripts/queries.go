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

package scripts

var GetEntity = map[string]string{
	"postgres": `SELECT document FROM profile_entities WHERE iri = $1 AND kind = $2`,
}

var InsertEntity = map[string]string{
	"postgres": `INSERT INTO profile_entities (iri, kind, parent, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
}

// InsertEntityIfAbsent leaves an existing row untouched. Used for placeholders.
var InsertEntityIfAbsent = map[string]string{
	"postgres": `INSERT INTO profile_entities (iri, kind, parent, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (iri) DO NOTHING`,
}

var UpdateEntity = map[string]string{
	"postgres": `UPDATE profile_entities SET parent = $1, document = $2, updated_at = $3
		WHERE iri = $4 AND kind = $5`,
}

var ReplaceEntity = map[string]string{
	"postgres": `UPDATE profile_entities SET kind = $1, parent = $2, document = $3, updated_at = $4
		WHERE iri = $5 AND kind = $6 AND parent = ''`,
}

var DeleteEntity = map[string]string{
	"postgres": `DELETE FROM profile_entities WHERE iri = $1 AND kind = $2`,
}

var DeleteEntitiesByParent = map[string]string{
	"postgres": `DELETE FROM profile_entities WHERE parent = $1 AND kind IN ('concept', 'template', 'pattern')`,
}

var TryAdvisoryLock = map[string]string{
	"postgres": `SELECT pg_try_advisory_lock($1)`,
}

var AdvisoryUnlock = map[string]string{
	"postgres": `SELECT pg_advisory_unlock($1)`,
}
