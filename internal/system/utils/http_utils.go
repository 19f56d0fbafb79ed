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
	"net/http"

	"github.com/wso2/profile-server/internal/system/constants"
	syscontext "github.com/wso2/profile-server/internal/system/context"
	customerrors "github.com/wso2/profile-server/internal/system/errors"
	"github.com/wso2/profile-server/internal/system/log"
)

// HandleError sends an HTTP error response based on the provided error. Errors that are
// neither client nor server errors are reported as internal errors.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := syscontext.GetTraceID(r.Context())

	var clientError *customerrors.ClientError
	if errors.As(err, &clientError) {
		msg := clientError.ErrorMessage
		msg.TraceID = traceID
		WriteJSON(w, clientError.StatusCode, msg)
		return
	}

	logger := log.GetLogger()
	logger.Error("Request failed", log.String("traceId", traceID), log.String("path", r.URL.Path), log.Error(err))
	WriteJSON(w, http.StatusInternalServerError, customerrors.ErrorMessage{
		Code:    customerrors.INTERNAL_SERVER_ERROR.Code,
		Message: customerrors.INTERNAL_SERVER_ERROR.Message,
		TraceID: traceID,
	})
}

// WriteJSON encodes data as the response body.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WithTraceID propagates the caller's trace ID, or a fresh one, through the request context
// and echoes it in the response.
func WithTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(constants.TraceIDHeader)
		if traceID == "" {
			traceID = syscontext.GenerateTraceID()
		}
		w.Header().Set(constants.TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(syscontext.WithTraceID(r.Context(), traceID)))
	})
}

// OrganizationOf returns the organization named in the request header, or fallback.
func OrganizationOf(r *http.Request, fallback string) string {
	if org := r.Header.Get(constants.OrganizationHeader); org != "" {
		return org
	}
	return fallback
}
