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

package errors

const errorPrefix = "PRS-"

var (
	// Server error codes

	INTERNAL_SERVER_ERROR = ErrorMessage{
		Code:    errorPrefix + "15000",
		Message: "Internal server error.",
	}

	DB_CLIENT_INIT = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Unable to initialize database client.",
	}

	COMMIT_IMPORT = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while committing the imported profile version.",
	}

	SAVE_ENTITY = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while saving the entity.",
	}

	FETCH_ENTITY = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while fetching the entity.",
	}

	DELETE_VERSION = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while deleting the profile version.",
	}

	LOCK_ACQUIRE = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Advisory lock acquisition failed.",
	}

	LOCK_RELEASE = ErrorMessage{
		Code:    errorPrefix + "15008",
		Message: "Error while releasing the lock.",
	}

	LOCK_KEY_GEN = ErrorMessage{
		Code:    errorPrefix + "15009",
		Message: "Error generating advisory lock key.",
	}

	LOCK_RESULT_INVALID = ErrorMessage{
		Code:    errorPrefix + "15010",
		Message: "Invalid response from advisory lock query.",
	}

	MARSHAL_JSON = ErrorMessage{
		Code:    errorPrefix + "15011",
		Message: "Error while marshalling JSON.",
	}

	UNMARSHAL_JSON = ErrorMessage{
		Code:    errorPrefix + "15012",
		Message: "Error while un-marshalling JSON.",
	}

	SCHEMA_COMPILE = ErrorMessage{
		Code:    errorPrefix + "15013",
		Message: "Error while compiling the validation schema.",
	}

	EXPORT_ENTITY = ErrorMessage{
		Code:    errorPrefix + "15014",
		Message: "Error while exporting the entity to its document form.",
	}

	// Client error codes

	BAD_REQUEST = ErrorMessage{
		Code:    errorPrefix + "11001",
		Message: "Invalid body format.",
	}

	PROFILE_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "11002",
		Message: "Profile not found.",
	}

	INVALID_DOCUMENT = ErrorMessage{
		Code:    errorPrefix + "11003",
		Message: "Invalid profile document.",
	}

	MISSING_FIELD = ErrorMessage{
		Code:    errorPrefix + "11004",
		Message: "Required field is missing.",
	}

	MUTUALLY_EXCLUSIVE_FIELDS = ErrorMessage{
		Code:    errorPrefix + "11005",
		Message: "Mutually exclusive fields are both present.",
	}

	INVALID_PATTERN = ErrorMessage{
		Code:    errorPrefix + "11006",
		Message: "Invalid pattern.",
	}

	INVALID_REFERENCE = ErrorMessage{
		Code:    errorPrefix + "11007",
		Message: "Invalid reference.",
	}

	DUPLICATE_IDENTIFIER = ErrorMessage{
		Code:    errorPrefix + "11008",
		Message: "Duplicate identifier.",
	}

	INVALID_CONCEPT_TYPE = ErrorMessage{
		Code:    errorPrefix + "11009",
		Message: "Invalid concept type.",
	}

	INVALID_ACTIVITY_DEFINITION = ErrorMessage{
		Code:    errorPrefix + "11010",
		Message: "Invalid activity definition.",
	}

	SCHEMA_VALIDATION = ErrorMessage{
		Code:    errorPrefix + "11011",
		Message: "Schema validation failed.",
	}

	IMMUTABLE_CONTENT = ErrorMessage{
		Code:    errorPrefix + "11012",
		Message: "Published content cannot be changed.",
	}

	ALREADY_EXISTS = ErrorMessage{
		Code:    errorPrefix + "11013",
		Message: "Entity already exists.",
	}

	VERSION_HISTORY_MISMATCH = ErrorMessage{
		Code:    errorPrefix + "11014",
		Message: "Submitted version history does not match the stored history.",
	}

	DRAFT_IN_PROGRESS = ErrorMessage{
		Code:    errorPrefix + "11015",
		Message: "Profile already has a draft version.",
	}

	NO_DRAFT = ErrorMessage{
		Code:    errorPrefix + "11016",
		Message: "Profile has no draft version.",
	}

	NOT_PUBLISHED = ErrorMessage{
		Code:    errorPrefix + "11017",
		Message: "Profile has no published version.",
	}

	IMPORT_IN_PROGRESS = ErrorMessage{
		Code:    errorPrefix + "11018",
		Message: "Another import for this profile is in progress.",
	}
)
