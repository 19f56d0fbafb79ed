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

package diff

import (
	"fmt"

	errors2 "github.com/wso2/profile-server/internal/system/errors"
)

// Kind names the entity kind whose allow-list applies.
type Kind string

const (
	KindConcept  Kind = "concept"
	KindTemplate Kind = "template"
	KindPattern  Kind = "pattern"
	KindProfile  Kind = "profile"
)

// Rule reports whether a single change is permitted.
type Rule func(Change) bool

var commonRules = []Rule{
	addedLanguage("prefLabel"),
	addedLanguage("definition"),
	func(c Change) bool { return c.Path.Key(0) == "deprecated" },
}

// Policies holds the allow-list per kind. Kinds missing from the table permit nothing.
var Policies = map[Kind][]Rule{
	KindConcept: append([]Rule{
		addedLanguage("activityDefinition", "name"),
		addedLanguage("activityDefinition", "description"),
	}, commonRules...),
	KindTemplate: commonRules,
	KindPattern: append([]Rule{
		func(c Change) bool {
			return c.Path.Key(0) == "inScheme" && (c.Action == ActionAdd || c.Action == ActionDelete)
		},
	}, commonRules...),
	KindProfile: append([]Rule{
		additive("seeAlso"),
		additive("concepts"),
		additive("templates"),
		additive("patterns"),
		additive("versions"),
		additive("author"),
	}, commonRules...),
}

// Allowed reports whether kind's policy permits c.
func Allowed(kind Kind, c Change) bool {
	for _, rule := range Policies[kind] {
		if rule(c) {
			return true
		}
	}
	return false
}

// Enforce diffs the exported form of a published entity against an incoming node and fails
// with a conflict on the first change the kind's policy rejects.
func Enforce(kind Kind, iri string, existing, incoming interface{}, opts Options) error {
	a, err := Normalize(existing, opts)
	if err != nil {
		return errors2.NewServerError(errors2.MARSHAL_JSON, err)
	}
	b, err := Normalize(incoming, opts)
	if err != nil {
		return errors2.NewServerError(errors2.MARSHAL_JSON, err)
	}
	if same, err := Equivalent(a, b); err == nil && same {
		return nil
	}
	for c := range Changes(a, b, opts) {
		if Allowed(kind, c) {
			continue
		}
		return errors2.NewConflictError(errors2.IMMUTABLE_CONTENT,
			fmt.Sprintf("%s %s: %s of %s is not allowed on published content", kind, iri, c.Action, c.Path))
	}
	return nil
}

// addedLanguage allows adding a language variant under prefix, or the whole map when absent.
func addedLanguage(prefix ...string) Rule {
	return func(c Change) bool {
		if c.Action != ActionAdd {
			return false
		}
		if len(c.Path) != len(prefix) && len(c.Path) != len(prefix)+1 {
			return false
		}
		for i, key := range prefix {
			if c.Path.Key(i) != key {
				return false
			}
		}
		return true
	}
}

// additive allows any addition at or below the top-level key.
func additive(key string) Rule {
	return func(c Change) bool {
		return c.Action == ActionAdd && c.Path.Key(0) == key
	}
}
