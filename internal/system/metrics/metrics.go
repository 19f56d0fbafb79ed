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

// Package metrics exposes Prometheus instruments for the import pipeline and HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess    = "success"
	ResultConflict   = "conflict"
	ResultValidation = "validation"
	ResultError      = "error"
)

var (
	importsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_imports_total",
			Help: "Profile imports by outcome.",
		},
		[]string{"result"},
	)

	importDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "profile_import_duration_seconds",
			Help:    "Profile import latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	stubEntities = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_stub_entities_total",
			Help: "Placeholder entities created for unresolved references.",
		},
		[]string{"kind"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	registerOnce sync.Once
)

// Init registers the instruments in the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(importsTotal, importDuration, stubEntities, httpRequestsTotal)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveImport records one finished import.
func ObserveImport(result string, elapsed time.Duration) {
	importsTotal.WithLabelValues(result).Inc()
	importDuration.Observe(elapsed.Seconds())
}

// StubCreated counts a placeholder entity written during reference resolution.
func StubCreated(kind string) {
	stubEntities.WithLabelValues(kind).Inc()
}

// Instrument counts requests per route and status. Routes are labelled by the mux pattern
// so profile IRIs in the path do not leak into label values.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.code)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
