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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.False(t, c.AnsiMode)
	assert.Equal(t, "UTC", c.TimeZone)
	assert.Equal(t, "en-US", c.Locale)
	assert.True(t, c.CodegenEnabled)
	assert.True(t, c.SubexprElimination)
	assert.Equal(t, 100, c.SubexprCacheSize)
	assert.Equal(t, byte('\\'), c.LikeEscapeChar)
	assert.Equal(t, 32, c.CodegenSplitThreshold)
}

func TestNewWithOptions(t *testing.T) {
	c := New(
		WithAnsiMode(true),
		WithTimeZone("Asia/Shanghai"),
		WithLocale("tr"),
		WithCodegen(false),
		WithSubexprElimination(false, 0),
		WithLikeEscapeChar('#'),
		WithLegacyStatisticalAggregates(true),
		WithAllowZeroArgCount(true),
	)
	assert.True(t, c.AnsiMode)
	assert.Equal(t, "Asia/Shanghai", c.TimeZone)
	assert.Equal(t, "tr", c.Locale)
	assert.False(t, c.CodegenEnabled)
	assert.False(t, c.SubexprElimination)
	assert.Equal(t, 100, c.SubexprCacheSize, "zero cache size keeps the default")
	assert.Equal(t, byte('#'), c.LikeEscapeChar)
	assert.True(t, c.LegacyStatisticalAggregates)
	assert.True(t, c.AllowZeroArgCount)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	content := `
ansi_mode: true
time_zone: Asia/Shanghai
codegen_enabled: false
subexpr_cache_size: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.AnsiMode)
	assert.Equal(t, "Asia/Shanghai", c.TimeZone)
	assert.False(t, c.CodegenEnabled)
	assert.Equal(t, 7, c.SubexprCacheSize)
	// Absent keys keep their defaults.
	assert.Equal(t, "en-US", c.Locale)
	assert.Equal(t, byte('\\'), c.LikeEscapeChar)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ansi_mode: ["), 0o600))
	_, err = Load(path)
	require.Error(t, err)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, Default().Location())
	assert.Equal(t, time.UTC, New(WithTimeZone("")).Location())
	assert.Equal(t, time.UTC, New(WithTimeZone("Not/AZone")).Location())

	loc := New(WithTimeZone("Asia/Shanghai")).Location()
	assert.Equal(t, "Asia/Shanghai", loc.String())
}

func TestLanguageTag(t *testing.T) {
	assert.Equal(t, language.AmericanEnglish, Default().LanguageTag())
	assert.Equal(t, language.Turkish, New(WithLocale("tr")).LanguageTag())
	assert.Equal(t, language.English, New(WithLocale("!!")).LanguageTag())
}
