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

// Package fieldmapper translates document-form micro structures into entity attributes.
// Every function is pure and fails with a validation error instead of defaulting.
package fieldmapper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wso2/profile-server/internal/profile/model"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
)

const englishTag = "en"

var interactionFields = map[string][]string{
	"true-false":   nil,
	"choice":       {"choices"},
	"fill-in":      nil,
	"long-fill-in": nil,
	"matching":     {"source", "target"},
	"performance":  {"steps"},
	"sequencing":   {"choices"},
	"likert":       {"scale"},
	"numeric":      nil,
	"other":        nil,
}

// PrimaryLanguage picks the language whose text represents a localized map: "en" if
// present, else the first "en-" variant, else the lexicographically first key.
func PrimaryLanguage(m model.LanguageMap) (string, bool) {
	if len(m) == 0 {
		return "", false
	}
	if _, ok := m[englishTag]; ok {
		return englishTag, true
	}
	keys := sortedKeys(m)
	for _, k := range keys {
		if strings.HasPrefix(strings.ToLower(k), englishTag+"-") {
			return k, true
		}
	}
	return keys[0], true
}

// ToName returns the primary name text and its language.
func ToName(field string, m model.LanguageMap, optional bool) (string, string, error) {
	return primaryText(field, m, optional)
}

// ToDescription returns the primary description text and its language.
func ToDescription(field string, m model.LanguageMap, optional bool) (string, string, error) {
	return primaryText(field, m, optional)
}

func primaryText(field string, m model.LanguageMap, optional bool) (string, string, error) {
	lang, ok := PrimaryLanguage(m)
	if !ok {
		if optional {
			return "", "", nil
		}
		return "", "", missingField(field)
	}
	return m[lang], lang, nil
}

// ToTranslations pairs name and description entries sharing a language key. The primary
// languages already carried by the descriptor are skipped.
func ToTranslations(names, descriptions model.LanguageMap, optional bool) ([]model.Translation, error) {
	if names == nil && descriptions == nil {
		if optional {
			return nil, nil
		}
		return nil, missingField("prefLabel/definition")
	}
	nameLang, _ := PrimaryLanguage(names)
	descLang, _ := PrimaryLanguage(descriptions)

	byLang := make(map[string]*model.Translation)
	order := make([]string, 0, len(names)+len(descriptions))
	entry := func(lang string) *model.Translation {
		t, ok := byLang[lang]
		if !ok {
			t = &model.Translation{Language: lang}
			byLang[lang] = t
			order = append(order, lang)
		}
		return t
	}
	for _, lang := range sortedKeys(names) {
		if lang == nameLang {
			continue
		}
		entry(lang).TranslationName = names[lang]
	}
	for _, lang := range sortedKeys(descriptions) {
		if lang == descLang {
			continue
		}
		entry(lang).TranslationDesc = descriptions[lang]
	}
	if len(order) == 0 {
		return nil, nil
	}
	sort.Strings(order)
	translations := make([]model.Translation, 0, len(order))
	for _, lang := range order {
		translations = append(translations, *byLang[lang])
	}
	return translations, nil
}

// ToDescriptor combines name, description and translations for an authored entity.
func ToDescriptor(names, descriptions model.LanguageMap, deprecated *bool, optional bool) (model.Descriptor, error) {
	var d model.Descriptor
	var err error
	if d.Name, d.NameLanguage, err = ToName("prefLabel", names, optional); err != nil {
		return d, err
	}
	if d.Description, d.DescriptionLanguage, err = ToDescription("definition", descriptions, optional); err != nil {
		return d, err
	}
	if d.Translations, err = ToTranslations(names, descriptions, true); err != nil {
		return d, err
	}
	d.Deprecated = deprecated != nil && *deprecated
	return d, nil
}

// ToSchema returns the external schema reference and the inline schema. At most one may
// be supplied; supplying neither is left to the caller to judge.
func ToSchema(schemaIRI, inlineSchema string) (string, string, error) {
	if schemaIRI != "" && inlineSchema != "" {
		return "", "", errors2.NewValidationError(errors2.MUTUALLY_EXCLUSIVE_FIELDS,
			"only one of schema and inlineSchema may be supplied")
	}
	return schemaIRI, inlineSchema, nil
}

// ToActivityDefinition maps an activity definition block. Interaction sub-fields are only
// read when the activity type is a cmi.interaction.
func ToActivityDefinition(doc *model.ActivityDefinitionDocument) (*model.ActivityDefinition, error) {
	if doc == nil {
		return nil, missingField("activityDefinition")
	}
	if doc.Context == "" {
		return nil, missingField("activityDefinition.@context")
	}
	def := &model.ActivityDefinition{
		Context:    doc.Context,
		Type:       doc.Type,
		MoreInfo:   doc.MoreInfo,
		Extensions: doc.Extensions,
	}
	if doc.Type != model.InteractionActivityType {
		return def, nil
	}

	allowed, ok := interactionFields[doc.InteractionType]
	if !ok {
		return nil, errors2.NewValidationError(errors2.INVALID_ACTIVITY_DEFINITION,
			fmt.Sprintf("unsupported interactionType %q", doc.InteractionType))
	}
	present := map[string][]model.InteractionComponentDocument{
		"choices": doc.Choices,
		"scale":   doc.Scale,
		"source":  doc.Source,
		"target":  doc.Target,
		"steps":   doc.Steps,
	}
	for _, field := range sortedKeys(present) {
		if present[field] == nil || contains(allowed, field) {
			continue
		}
		return nil, errors2.NewValidationError(errors2.INVALID_ACTIVITY_DEFINITION,
			fmt.Sprintf("activityDefinition.%s is not applicable to interactionType %q", field, doc.InteractionType))
	}

	def.InteractionType = doc.InteractionType
	def.CorrectResponsesPattern = doc.CorrectResponsesPattern
	def.Choices = toComponents(doc.Choices)
	def.Scale = toComponents(doc.Scale)
	def.Source = toComponents(doc.Source)
	def.Target = toComponents(doc.Target)
	def.Steps = toComponents(doc.Steps)
	return def, nil
}

func toComponents(docs []model.InteractionComponentDocument) []model.InteractionComponent {
	if docs == nil {
		return nil
	}
	components := make([]model.InteractionComponent, len(docs))
	for i, d := range docs {
		components[i] = model.InteractionComponent{ID: d.ID, Description: d.Description}
	}
	return components
}

// ToPatternType returns the single declared kind of a pattern node with its raw members.
func ToPatternType(doc *model.PatternDocument) (model.PatternKind, []string, error) {
	var kinds []model.PatternKind
	var members []string
	if doc.Alternates != nil {
		kinds = append(kinds, model.PatternAlternates)
		members = doc.Alternates
	}
	if doc.Optional != nil {
		kinds = append(kinds, model.PatternOptional)
		members = []string{*doc.Optional}
	}
	if doc.OneOrMore != nil {
		kinds = append(kinds, model.PatternOneOrMore)
		members = []string{*doc.OneOrMore}
	}
	if doc.Sequence != nil {
		kinds = append(kinds, model.PatternSequence)
		members = doc.Sequence
	}
	if doc.ZeroOrMore != nil {
		kinds = append(kinds, model.PatternZeroOrMore)
		members = []string{*doc.ZeroOrMore}
	}

	switch len(kinds) {
	case 0:
		return "", nil, errors2.NewValidationError(errors2.INVALID_PATTERN,
			fmt.Sprintf("pattern %s declares none of alternates, optional, oneOrMore, sequence, zeroOrMore", doc.ID))
	case 1:
		return kinds[0], members, nil
	default:
		return "", nil, errors2.NewValidationError(errors2.INVALID_PATTERN,
			fmt.Sprintf("pattern %s declares more than one kind: %v", doc.ID, kinds))
	}
}

func missingField(field string) error {
	return errors2.NewValidationError(errors2.MISSING_FIELD, fmt.Sprintf("%s is required", field))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
