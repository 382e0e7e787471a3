/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{OFF, "OFF"},
		{Level(999), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.String())
	}
}

func TestLoggerFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(DEBUG, &buf)

	l.Info("compiled %d of %d expressions", 3, 4)
	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "compiled 3 of 4 expressions")
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		logger  Level
		message Level
		logged  bool
	}{
		{DEBUG, DEBUG, true},
		{DEBUG, ERROR, true},
		{INFO, DEBUG, false},
		{INFO, WARN, true},
		{WARN, INFO, false},
		{ERROR, WARN, false},
		{ERROR, ERROR, true},
		{OFF, ERROR, false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l := NewLogger(tt.logger, &buf)
		switch tt.message {
		case DEBUG:
			l.Debug("m")
		case INFO:
			l.Info("m")
		case WARN:
			l.Warn("m")
		case ERROR:
			l.Error("m")
		}
		assert.Equal(t, tt.logged, buf.Len() > 0,
			"logger %s, message %s", tt.logger, tt.message)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(DEBUG, &buf)
	l.SetLevel(ERROR)

	l.Debug("dropped")
	l.Warn("dropped")
	assert.Zero(t, buf.Len())

	l.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestDiscardLogger(t *testing.T) {
	l := NewDiscardLogger()
	require.NotNil(t, l)
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")
	l.SetLevel(DEBUG)
}

func TestDefaultLogger(t *testing.T) {
	original := GetDefault()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(NewLogger(DEBUG, &buf))

	Debug("global debug")
	Info("global info")
	Warn("global warn")
	Error("global error")

	out := buf.String()
	for _, msg := range []string{"global debug", "global info", "global warn", "global error"} {
		assert.Contains(t, out, msg)
	}
}
