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
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/profile-server/internal/system/constants"
	syscontext "github.com/wso2/profile-server/internal/system/context"
	customerrors "github.com/wso2/profile-server/internal/system/errors"
)

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, customerrors.ErrorMessage) {
	t.Helper()
	h := WithTraceID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleError(w, r, err)
	}))
	req := httptest.NewRequest(http.MethodPost, "/profiles", nil)
	req.Header.Set(constants.TraceIDHeader, "trace-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var msg customerrors.ErrorMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	return rec, msg
}

func TestHandleErrorClientError(t *testing.T) {
	rec, msg := serveError(t, customerrors.NewConflictError(customerrors.DRAFT_IN_PROGRESS, "profile p has a draft"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, customerrors.DRAFT_IN_PROGRESS.Code, msg.Code)
	assert.Equal(t, "profile p has a draft", msg.Description)
	assert.Equal(t, "trace-42", msg.TraceID)
	assert.Equal(t, "trace-42", rec.Header().Get(constants.TraceIDHeader))
}

func TestHandleErrorHidesServerErrors(t *testing.T) {
	rec, msg := serveError(t, customerrors.NewServerError(customerrors.COMMIT_IMPORT, errors.New("pq: connection reset")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, customerrors.INTERNAL_SERVER_ERROR.Code, msg.Code)
	assert.Empty(t, msg.Description)
	assert.Equal(t, "trace-42", msg.TraceID)
}

func TestWithTraceIDGeneratesMissingID(t *testing.T) {
	var seen string
	h := WithTraceID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = syscontext.GetTraceID(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(constants.TraceIDHeader))
}

func TestOrganizationOf(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "default", OrganizationOf(req, "default"))

	req.Header.Set(constants.OrganizationHeader, "org-9")
	assert.Equal(t, "org-9", OrganizationOf(req, "default"))
}

func TestHandleDecodeError(t *testing.T) {
	var target struct {
		ID       string `json:"id"`
		Versions []struct {
			ID string `json:"id"`
		} `json:"versions"`
	}
	emptyErr := json.Unmarshal([]byte(``), &target)
	syntaxErr := json.Unmarshal([]byte(`{"id": }`), &target)
	topLevelErr := json.Unmarshal([]byte(`[1]`), &target)
	fieldErr := json.Unmarshal([]byte(`{"versions": [{"id": 7}]}`), &target)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "eof", err: io.EOF, want: "The profile document is empty."},
		{name: "empty input", err: emptyErr, want: "The profile document is empty."},
		{name: "syntax", err: syntaxErr, want: "Malformed JSON in profile document at offset 8."},
		{name: "not an object", err: topLevelErr, want: "The profile document must be a JSON object, got array."},
		{name: "field type", err: fieldErr,
			want: "Invalid type for field 'versions.id' in profile document: expected string, got number."},
		{name: "other", err: errors.New("unexpected"), want: "Invalid JSON in profile document."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HandleDecodeError(tt.err, "profile document"))
		})
	}
}
