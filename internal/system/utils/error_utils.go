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

package utils

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// HandleDecodeError interprets JSON decoding errors and returns user-friendly messages.
func HandleDecodeError(err error, resourceName string) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, io.EOF) {
		return fmt.Sprintf("The %s is empty.", resourceName)
	}

	var se *json.SyntaxError
	if errors.As(err, &se) && se != nil {
		// Unmarshal reports empty input as a syntax error at offset zero.
		if se.Offset == 0 {
			return fmt.Sprintf("The %s is empty.", resourceName)
		}
		return fmt.Sprintf("Malformed JSON in %s at offset %d.", resourceName, se.Offset)
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute != nil {
		if ute.Field == "" {
			return fmt.Sprintf("The %s must be a JSON object, got %s.", resourceName, ute.Value)
		}
		return fmt.Sprintf("Invalid type for field '%s' in %s: expected %s, got %s.",
			ute.Field, resourceName, jsonType(ute.Type.Kind().String()), ute.Value)
	}

	return fmt.Sprintf("Invalid JSON in %s.", resourceName)
}

func jsonType(goKind string) string {
	switch goKind {
	case "string":
		return "string"
	case "bool":
		return "boolean"
	case "slice", "array":
		return "array"
	case "map", "struct", "ptr":
		return "object"
	default:
		return "number"
	}
}
