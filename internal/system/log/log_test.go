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

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger_BeforeInit_ReturnsDefault(t *testing.T) {
	assert.NotNil(t, GetLogger())
}

func TestInit_ValidLevel(t *testing.T) {
	require.NoError(t, Init("DEBUG"))
	assert.NotNil(t, GetLogger())
	GetLogger().With(String("import", "x")).Debug("debug message", Int("count", 1), Error(errors.New("boom")))
}

func TestInit_InvalidLevel(t *testing.T) {
	assert.Error(t, Init("LOUD"))
}

func TestParseLogLevel(t *testing.T) {
	level, err := parseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestConvertFields(t *testing.T) {
	attrs := convertFields([]Field{String("a", "b"), Any("c", 3)})
	require.Len(t, attrs, 2)
	assert.Equal(t, slog.Any("a", "b"), attrs[0])
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{internal: slog.New(slog.NewJSONHandler(&buf, nil))}
	l.Audit(AuditEvent{
		InitiatorID:   "org-1",
		InitiatorType: InitiatorTypeOrganization,
		TargetID:      "http://example.org/p/v1",
		TargetType:    TargetTypeProfileVersion,
		ActionID:      ActionImportVersion,
	})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "AUDIT", line["msg"])

	var event AuditEvent
	require.NoError(t, json.Unmarshal([]byte(line["audit_event"].(string)), &event))
	assert.Equal(t, ActionImportVersion, event.ActionID)
	assert.NotEmpty(t, event.RecordedAt)
}
