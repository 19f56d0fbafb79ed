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

// Package export renders stored entities back into their document form.
package export

import (
	"github.com/wso2/profile-server/internal/profile/model"
)

// Document is a document-form node.
type Document = map[string]interface{}

// Concept exports c as a concepts array element declared in scheme.
func Concept(c *model.Concept, scheme string) Document {
	doc := Document{
		"id":   c.IRI,
		"type": string(c.Type),
	}
	setString(doc, "inScheme", scheme)
	if c.Deprecated {
		doc["deprecated"] = true
	}

	category, _ := c.Type.Category()
	if category != model.CategoryActivity {
		setMap(doc, "prefLabel", languageMap(c.Name, c.NameLanguage, c.Translations, nameOf))
		setMap(doc, "definition", languageMap(c.Description, c.DescriptionLanguage, c.Translations, descOf))
	}

	switch category {
	case model.CategorySemantic:
		setList(doc, "broader", c.Broader)
		setList(doc, "broadMatch", c.BroadMatch)
		setList(doc, "narrower", c.Narrower)
		setList(doc, "narrowMatch", c.NarrowMatch)
		setList(doc, "related", c.Related)
		setList(doc, "relatedMatch", c.RelatedMatch)
		setList(doc, "exactMatch", c.ExactMatch)
	case model.CategoryDocument:
		setString(doc, "contentType", c.MediaType)
		setString(doc, "context", c.ContextIRI)
		setString(doc, "schema", c.SchemaIRI)
		setString(doc, "inlineSchema", c.InlineSchema)
	case model.CategoryExtension:
		setString(doc, "context", c.ContextIRI)
		setString(doc, "schema", c.SchemaIRI)
		setString(doc, "inlineSchema", c.InlineSchema)
		setList(doc, "recommendedVerbs", c.RecommendedVerbs)
		setList(doc, "recommendedActivityTypes", c.RecommendedActivityTypes)
	case model.CategoryActivity:
		if c.ActivityDefinition != nil {
			doc["activityDefinition"] = activityDefinition(c)
		}
	}
	return doc
}

func activityDefinition(c *model.Concept) Document {
	def := c.ActivityDefinition
	doc := Document{"@context": def.Context}
	setMap(doc, "name", languageMap(c.Name, c.NameLanguage, c.Translations, nameOf))
	setMap(doc, "description", languageMap(c.Description, c.DescriptionLanguage, c.Translations, descOf))
	setString(doc, "type", def.Type)
	setString(doc, "moreInfo", def.MoreInfo)
	if len(def.Extensions) > 0 {
		doc["extensions"] = def.Extensions
	}
	setString(doc, "interactionType", def.InteractionType)
	setList(doc, "correctResponsesPattern", def.CorrectResponsesPattern)
	setComponents(doc, "choices", def.Choices)
	setComponents(doc, "scale", def.Scale)
	setComponents(doc, "source", def.Source)
	setComponents(doc, "target", def.Target)
	setComponents(doc, "steps", def.Steps)
	return doc
}

// Template exports t as a templates array element declared in scheme.
func Template(t *model.Template, scheme string) Document {
	doc := Document{
		"id":   t.IRI,
		"type": model.TemplateDocumentType,
	}
	setString(doc, "inScheme", scheme)
	if t.Deprecated {
		doc["deprecated"] = true
	}
	setMap(doc, "prefLabel", languageMap(t.Name, t.NameLanguage, t.Translations, nameOf))
	setMap(doc, "definition", languageMap(t.Description, t.DescriptionLanguage, t.Translations, descOf))
	setString(doc, "verb", t.Verb)
	setString(doc, "objectActivityType", t.ObjectActivityType)
	setList(doc, "contextGroupingActivityType", t.ContextGroupingActivityType)
	setList(doc, "contextParentActivityType", t.ContextParentActivityType)
	setList(doc, "contextOtherActivityType", t.ContextOtherActivityType)
	setList(doc, "contextCategoryActivityType", t.ContextCategoryActivityType)
	setList(doc, "attachmentUsageType", t.AttachmentUsageType)
	setList(doc, "objectStatementRefTemplate", t.ObjectStatementRefTemplate)
	setList(doc, "contextStatementRefTemplate", t.ContextStatementRefTemplate)
	if len(t.Rules) > 0 {
		rules := make([]interface{}, len(t.Rules))
		for i, r := range t.Rules {
			rule := Document{"location": r.Location}
			setString(rule, "selector", r.Selector)
			setString(rule, "presence", r.Presence)
			setValues(rule, "any", r.Any)
			setValues(rule, "all", r.All)
			setValues(rule, "none", r.None)
			if len(r.ScopeNote) > 0 {
				rule["scopeNote"] = r.ScopeNote
			}
			rules[i] = rule
		}
		doc["rules"] = rules
	}
	setList(doc, "tags", t.Tags)
	setString(doc, "example", t.Example)
	return doc
}

// Pattern exports p as a patterns array element declared in scheme.
func Pattern(p *model.Pattern, scheme string) Document {
	doc := Document{
		"id":   p.IRI,
		"type": model.PatternDocumentType,
	}
	setString(doc, "inScheme", scheme)
	if p.Primary {
		doc["primary"] = true
	}
	if p.Deprecated {
		doc["deprecated"] = true
	}
	setMap(doc, "prefLabel", languageMap(p.Name, p.NameLanguage, p.Translations, nameOf))
	setMap(doc, "definition", languageMap(p.Description, p.DescriptionLanguage, p.Translations, descOf))

	members := p.MemberIRIs()
	if p.Kind.IsMultiValued() {
		doc[string(p.Kind)] = members
	} else if len(members) == 1 {
		doc[string(p.Kind)] = members[0]
	}
	return doc
}

func nameOf(t model.Translation) string { return t.TranslationName }
func descOf(t model.Translation) string { return t.TranslationDesc }

func languageMap(primary, lang string, translations []model.Translation, pick func(model.Translation) string) map[string]string {
	m := make(map[string]string)
	if primary != "" && lang != "" {
		m[lang] = primary
	}
	for _, t := range translations {
		if text := pick(t); text != "" {
			m[t.Language] = text
		}
	}
	return m
}

func setString(doc Document, key, value string) {
	if value != "" {
		doc[key] = value
	}
}

func setList(doc Document, key string, values []string) {
	if len(values) > 0 {
		doc[key] = append([]string(nil), values...)
	}
}

func setValues(doc Document, key string, values []interface{}) {
	if len(values) > 0 {
		doc[key] = values
	}
}

func setMap(doc Document, key string, m map[string]string) {
	if len(m) > 0 {
		doc[key] = m
	}
}

func setComponents(doc Document, key string, components []model.InteractionComponent) {
	if len(components) == 0 {
		return
	}
	out := make([]interface{}, len(components))
	for i, c := range components {
		entry := Document{"id": c.ID}
		if len(c.Description) > 0 {
			entry["description"] = c.Description
		}
		out[i] = entry
	}
	doc[key] = out
}
