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

package exprsql

import (
	"io"

	"github.com/rulego/exprsql/config"
	"github.com/rulego/exprsql/logger"
)

// Option adjusts an Engine under construction.
type Option func(*Engine)

// WithConfig replaces the engine's whole configuration.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.cfg = cfg
		}
	}
}

// WithAnsiMode toggles strict ANSI error behavior: overflow, division by
// zero and invalid calendar fields become hard errors instead of NULL.
func WithAnsiMode(on bool) Option {
	return func(e *Engine) { e.cfg.AnsiMode = on }
}

// WithTimeZone sets the session time zone by IANA name.
func WithTimeZone(name string) Option {
	return func(e *Engine) { e.cfg.TimeZone = name }
}

// WithLocale sets the BCP 47 locale used by case conversion.
func WithLocale(tag string) Option {
	return func(e *Engine) { e.cfg.Locale = tag }
}

// WithCodegen toggles the compiled evaluation path. With codegen off every
// evaluator interprets, which is slower but byte-for-byte equivalent.
func WithCodegen(on bool) Option {
	return func(e *Engine) { e.cfg.CodegenEnabled = on }
}

// WithSubexprElimination toggles per-row reuse of repeated deterministic
// subtrees.
func WithSubexprElimination(on bool, cacheSize int) Option {
	return func(e *Engine) {
		e.cfg.SubexprElimination = on
		if cacheSize > 0 {
			e.cfg.SubexprCacheSize = cacheSize
		}
	}
}

// WithLogger installs a custom logger for the whole engine.
//
// Example:
//
//	custom := logger.NewLogger(logger.DEBUG, os.Stderr)
//	engine := exprsql.New(exprsql.WithLogger(custom))
func WithLogger(log logger.Logger) Option {
	return func(*Engine) {
		logger.SetDefault(log)
	}
}

// WithLogLevel sets the level on the default logger.
func WithLogLevel(level logger.Level) Option {
	return func(*Engine) {
		logger.GetDefault().SetLevel(level)
	}
}

// WithLogOutput redirects logging to the given writer at the given level.
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(*Engine) {
		logger.SetDefault(logger.NewLogger(level, output))
	}
}

// WithDiscardLog disables all engine logging.
func WithDiscardLog() Option {
	return func(*Engine) {
		logger.SetDefault(logger.NewDiscardLogger())
	}
}
