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

// Package schema validates raw profile documents and assembled entities against embedded
// JSON Schemas.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/wso2/profile-server/internal/profile/model"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

const schemaBaseURL = "https://profile-server.local/schemas/"

// Validator holds the compiled document and entity schemas.
type Validator struct {
	document *jsonschema.Schema
	concept  *jsonschema.Schema
	template *jsonschema.Schema
	pattern  *jsonschema.Schema
}

var (
	defaultValidator *Validator
	defaultErr       error
	once             sync.Once
)

// Default returns a process-wide validator compiled on first use.
func Default() (*Validator, error) {
	once.Do(func() {
		defaultValidator, defaultErr = NewValidator()
	})
	return defaultValidator, defaultErr
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	names := []string{"document", "concept", "template", "pattern"}
	for _, name := range names {
		raw, err := schemaFiles.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, compileError(name, err)
		}
		if err := c.AddResource(schemaBaseURL+name+".json", bytes.NewReader(raw)); err != nil {
			return nil, compileError(name, err)
		}
	}

	compiled := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		s, err := c.Compile(schemaBaseURL + name + ".json")
		if err != nil {
			return nil, compileError(name, err)
		}
		compiled[name] = s
	}
	return &Validator{
		document: compiled["document"],
		concept:  compiled["concept"],
		template: compiled["template"],
		pattern:  compiled["pattern"],
	}, nil
}

// ValidateDocument checks a raw submission before it enters the import pipeline.
func (v *Validator) ValidateDocument(raw []byte) error {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors2.NewValidationError(errors2.INVALID_DOCUMENT, fmt.Sprintf("document is not valid JSON: %v", err))
	}
	return validate(v.document, "profile document", doc)
}

func (v *Validator) ValidateConcept(c *model.Concept) error {
	return validateEntity(v.concept, "concept "+c.IRI, c)
}

func (v *Validator) ValidateTemplate(t *model.Template) error {
	return validateEntity(v.template, "template "+t.IRI, t)
}

func (v *Validator) ValidatePattern(p *model.Pattern) error {
	return validateEntity(v.pattern, "pattern "+p.IRI, p)
}

func validateEntity(s *jsonschema.Schema, subject string, entity interface{}) error {
	raw, err := json.Marshal(entity)
	if err != nil {
		return errors2.NewServerError(errors2.MARSHAL_JSON, err)
	}
	var tree interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return errors2.NewServerError(errors2.UNMARSHAL_JSON, err)
	}
	return validate(s, subject, tree)
}

func validate(s *jsonschema.Schema, subject string, tree interface{}) error {
	err := s.Validate(tree)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return errors2.NewValidationError(errors2.SCHEMA_VALIDATION, fmt.Sprintf("%s: %v", subject, err))
	}
	leaf := deepest(ve)
	location := leaf.InstanceLocation
	if location == "" {
		location = "/"
	}
	log.GetLogger().Debug("Schema validation failed", log.String("subject", subject),
		log.String("location", location), log.String("reason", leaf.Message))
	return errors2.NewValidationError(errors2.SCHEMA_VALIDATION,
		fmt.Sprintf("%s at %s: %s", subject, location, strings.TrimSpace(leaf.Message)))
}

// deepest follows the first cause chain down to the most specific failure.
func deepest(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

func compileError(name string, err error) error {
	return errors2.NewServerError(errors2.ErrorMessage{
		Code:        errors2.SCHEMA_COMPILE.Code,
		Message:     errors2.SCHEMA_COMPILE.Message,
		Description: fmt.Sprintf("schema %s", name),
	}, err)
}
