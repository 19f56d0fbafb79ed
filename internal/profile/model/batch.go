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

package model

// Staged is an entity ready to be written. New entities are inserted, the rest
// are updated by identifier. Replaces names the kind of a parentless placeholder stored
// under the same identifier that the entity takes over.
type Staged[T any] struct {
	Entity   T
	New      bool
	Replaces string
}

// Batch is everything one import writes in a single commit.
type Batch struct {
	ImportID  string
	Profile   Staged[*Profile]
	Version   Staged[*ProfileVersion]
	Concepts  []Staged[*Concept]
	Templates []Staged[*Template]
	Patterns  []Staged[*Pattern]
}

// Discard describes the removal of a draft version and every entity it owns.
// When DropProfile is set the profile root is deleted as well, otherwise Profile
// is written back with its draft pointer cleared.
type Discard struct {
	VersionIRI  string
	Profile     *Profile
	DropProfile bool
}
