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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveImport(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(importsTotal.WithLabelValues(ResultConflict))
	ObserveImport(ResultConflict, 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(importsTotal.WithLabelValues(ResultConflict)))
}

func TestStubCreated(t *testing.T) {
	before := testutil.ToFloat64(stubEntities.WithLabelValues("concept"))
	StubCreated("concept")
	StubCreated("concept")
	assert.Equal(t, before+2, testutil.ToFloat64(stubEntities.WithLabelValues("concept")))
}

func TestInstrument(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /profiles/{iri}/publish", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	h := Instrument(mux)
	route := "POST /profiles/{iri}/publish"
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodPost, route, "409"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/profiles/abc/publish", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodPost, route, "409")))
}

func TestInstrumentUnmatched(t *testing.T) {
	h := Instrument(http.NewServeMux())
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
}
