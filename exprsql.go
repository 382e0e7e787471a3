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
	"github.com/rulego/exprsql/aggregate"
	"github.com/rulego/exprsql/config"
	"github.com/rulego/exprsql/expr"
	"github.com/rulego/exprsql/projection"
	"github.com/rulego/exprsql/types"
)

// Engine bundles one evaluation configuration with the evaluator factories.
// It is the entry point for hosts embedding the expression core.
//
// Example:
//
//	engine := exprsql.New(exprsql.WithAnsiMode(true))
//	pred, err := engine.Predicate(tree, schema)
type Engine struct {
	cfg *config.Config
}

// New creates an Engine with the default configuration modified by the given
// options.
func New(options ...Option) *Engine {
	e := &Engine{cfg: config.Default()}
	for _, option := range options {
		option(e)
	}
	return e
}

// Config returns the engine's evaluation configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// Predicate builds a row filter from a boolean expression over the input
// schema. Attribute references resolve by name; the compiled path is used
// when available, the interpreter otherwise.
func (e *Engine) Predicate(tree expr.Expression, schema *types.StructType) (projection.Predicate, error) {
	return projection.NewPredicate(tree, schema, e.cfg)
}

// Projection builds a row mapper producing one output column per expression.
func (e *Engine) Projection(exprs []expr.Expression, schema *types.StructType) (projection.Projection, error) {
	return projection.NewProjection(exprs, schema, e.cfg)
}

// Aggregator builds the buffer driver for a declarative aggregate.
func (e *Engine) Aggregator(agg aggregate.DeclarativeAggregate) (*aggregate.Evaluator, error) {
	return aggregate.NewEvaluator(agg)
}

// Count builds a count aggregate. The zero-argument form follows the
// engine's AllowZeroArgCount setting.
func (e *Engine) Count(children ...expr.Expression) (*aggregate.Count, error) {
	return aggregate.NewCount(e.cfg.AllowZeroArgCount, children...)
}

// CovSample builds a sample covariance aggregate with the engine's legacy
// NaN policy for single-row groups.
func (e *Engine) CovSample(x, y expr.Expression) (*aggregate.Covariance, error) {
	return aggregate.NewCovSample(x, y, e.cfg.LegacyStatisticalAggregates)
}

// VarSample builds a sample variance aggregate with the engine's legacy NaN
// policy for single-row groups.
func (e *Engine) VarSample(child expr.Expression) (*aggregate.Variance, error) {
	return aggregate.NewVarSample(child, e.cfg.LegacyStatisticalAggregates)
}

// StddevSample builds a sample standard deviation aggregate with the
// engine's legacy NaN policy for single-row groups.
func (e *Engine) StddevSample(child expr.Expression) (*aggregate.Variance, error) {
	return aggregate.NewStddevSample(child, e.cfg.LegacyStatisticalAggregates)
}
