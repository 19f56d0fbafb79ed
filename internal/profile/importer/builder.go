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

package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/wso2/profile-server/internal/profile/diff"
	"github.com/wso2/profile-server/internal/profile/export"
	"github.com/wso2/profile-server/internal/profile/model"
	errors2 "github.com/wso2/profile-server/internal/system/errors"
)

// Builder turns one document node into a staged entity in two phases.
type Builder[T any] interface {
	IRI() string
	// BuildSelf maps the node without looking at any other node of the submission.
	BuildSelf(ctx context.Context) error
	// ResolveReferences resolves the entity's cross references once every builder of the
	// submission has finished BuildSelf.
	ResolveReferences(ctx context.Context, pool *Pool) error
	// Staged returns the entity with its insert or update disposition.
	Staged() model.Staged[T]
}

// placement is where a built entity lands relative to what is already stored.
type placement struct {
	parent    string
	createdAt time.Time
	isNew     bool
}

// place reconciles a freshly built entity with the stored entity of the same identifier.
// A stored entity owned by a published version keeps its owner and may only change in the
// ways the kind's policy allows.
func (s *session) place(ctx context.Context, kind diff.Kind, iri string, stored bool, owner string,
	createdAt time.Time, exported func() export.Document, incoming map[string]interface{}) (placement, error) {
	mode, err := s.classify(ctx, string(kind), iri, stored, owner)
	if err != nil {
		return placement{}, err
	}
	switch mode {
	case reconcileCreate:
		return placement{parent: s.version.IRI, createdAt: s.now, isNew: true}, nil
	case reconcilePublished:
		if err := s.enforce(kind, iri, exported(), incoming); err != nil {
			return placement{}, err
		}
		return placement{parent: owner, createdAt: createdAt}, nil
	default:
		return placement{parent: s.version.IRI, createdAt: createdAt}, nil
	}
}

func requireID(kind, iri string) error {
	if iri == "" {
		return errors2.NewValidationError(errors2.MISSING_FIELD, fmt.Sprintf("%s id is required", kind))
	}
	return nil
}
