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
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config carries the evaluation behavior flags consumed by the expression
// engine. The engine never mutates it; one Config may back many evaluators.
type Config struct {
	// AnsiMode makes numeric overflow, division by zero and invalid
	// index/calendar inputs hard errors. When false the offending row
	// evaluates to NULL instead.
	AnsiMode bool `yaml:"ansi_mode"`
	// TimeZone is the IANA name of the session time zone used by date and
	// timestamp expressions.
	TimeZone string `yaml:"time_zone"`
	// Locale is a BCP 47 tag used by locale-sensitive string operations.
	Locale string `yaml:"locale"`
	// CodegenEnabled selects the compiled evaluation path when possible.
	// Compilation failures always fall back to the interpreter.
	CodegenEnabled bool `yaml:"codegen_enabled"`
	// SubexprElimination evaluates repeated deterministic subtrees once per
	// row and reuses the result.
	SubexprElimination bool `yaml:"subexpr_elimination"`
	// SubexprCacheSize bounds the number of memoized subtrees per evaluator.
	SubexprCacheSize int `yaml:"subexpr_cache_size"`
	// LikeEscapeChar is the default LIKE escape character.
	LikeEscapeChar byte `yaml:"like_escape_char"`
	// LegacyStatisticalAggregates makes sample variance/covariance return NaN
	// instead of NULL on divide-by-zero (fewer than two rows).
	LegacyStatisticalAggregates bool `yaml:"legacy_statistical_aggregates"`
	// AllowZeroArgCount permits count() with no arguments.
	AllowZeroArgCount bool `yaml:"allow_zero_arg_count"`
	// CodegenSplitThreshold is the number of operands above which generated
	// code for variadic expressions is split into helper sub-programs.
	CodegenSplitThreshold int `yaml:"codegen_split_threshold"`
}

// Default returns the standard configuration: lenient (non-ANSI) evaluation,
// UTC, codegen and subexpression elimination enabled.
func Default() *Config {
	return &Config{
		AnsiMode:              false,
		TimeZone:              "UTC",
		Locale:                "en-US",
		CodegenEnabled:        true,
		SubexprElimination:    true,
		SubexprCacheSize:      100,
		LikeEscapeChar:        '\\',
		CodegenSplitThreshold: 32,
	}
}

// Option mutates a Config under construction.
type Option func(*Config)

// New builds a Config from Default plus options.
func New(opts ...Option) *Config {
	c := Default()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAnsiMode toggles strict ANSI error behavior.
func WithAnsiMode(on bool) Option { return func(c *Config) { c.AnsiMode = on } }

// WithTimeZone sets the session time zone by IANA name.
func WithTimeZone(name string) Option { return func(c *Config) { c.TimeZone = name } }

// WithLocale sets the BCP 47 locale tag.
func WithLocale(tag string) Option { return func(c *Config) { c.Locale = tag } }

// WithCodegen toggles the compiled evaluation path.
func WithCodegen(on bool) Option { return func(c *Config) { c.CodegenEnabled = on } }

// WithSubexprElimination toggles per-row reuse of repeated subtrees.
func WithSubexprElimination(on bool, cacheSize int) Option {
	return func(c *Config) {
		c.SubexprElimination = on
		if cacheSize > 0 {
			c.SubexprCacheSize = cacheSize
		}
	}
}

// WithLikeEscapeChar sets the default LIKE escape character.
func WithLikeEscapeChar(ch byte) Option { return func(c *Config) { c.LikeEscapeChar = ch } }

// WithLegacyStatisticalAggregates toggles NaN-instead-of-NULL results for
// sample statistics over fewer than two rows.
func WithLegacyStatisticalAggregates(on bool) Option {
	return func(c *Config) { c.LegacyStatisticalAggregates = on }
}

// WithAllowZeroArgCount permits count() with no arguments.
func WithAllowZeroArgCount(on bool) Option {
	return func(c *Config) { c.AllowZeroArgCount = on }
}

// Load reads a yaml Config from path, applying defaults for absent keys.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return c, nil
}

// Location resolves the configured time zone, defaulting to UTC.
func (c *Config) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LanguageTag resolves the configured locale, defaulting to English.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}
