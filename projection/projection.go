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

package projection

import (
	"github.com/pkg/errors"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/config"
	"github.com/rulego/exprsql/expr"
	"github.com/rulego/exprsql/logger"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// Predicate filters rows. A NULL predicate value does not match, per SQL
// WHERE semantics.
type Predicate interface {
	// Initialize re-seeds any per-partition state; call before the first row
	// of each partition.
	Initialize(partitionIndex int)
	Matches(input row.InternalRow) (bool, error)
}

// Projection maps an input row to an output row.
type Projection interface {
	Initialize(partitionIndex int)
	Apply(input row.InternalRow) (row.InternalRow, error)
}

// bind resolves attribute references and type-checks the whole tree.
func bind(e expr.Expression, schema *types.StructType) (expr.Expression, error) {
	bound, err := expr.BindReferences(e, schema)
	if err != nil {
		return nil, err
	}
	if r := expr.CheckAll(bound); !r.OK() {
		return nil, errors.New(r.Message())
	}
	return bound, nil
}

// NewPredicate binds, checks and compiles a boolean expression against the
// input schema. A code generation failure is not an error: it logs and falls
// back to the interpreted form, which has identical semantics.
func NewPredicate(e expr.Expression, schema *types.StructType, cfg *config.Config) (Predicate, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	bound, err := bind(e, schema)
	if err != nil {
		return nil, err
	}
	if dt := bound.DataType(); dt != types.Boolean && dt != types.Null {
		return nil, errors.Errorf("predicate must be boolean, got %s", dt.SimpleString())
	}
	if cfg.CodegenEnabled {
		compiled, err := codegen.Compile(bound, cfg)
		if err == nil {
			return &compiledPredicate{tree: bound, compiled: compiled}, nil
		}
		logger.Warn("predicate codegen failed, falling back to interpreter: %v", err)
	}
	return newInterpretedPredicate(bound, cfg), nil
}

// NewProjection binds, checks and compiles a list of output expressions. As
// with predicates, codegen failure falls back to interpretation.
func NewProjection(exprs []expr.Expression, schema *types.StructType, cfg *config.Config) (Projection, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	bound := make([]expr.Expression, len(exprs))
	for i, e := range exprs {
		b, err := bind(e, schema)
		if err != nil {
			return nil, err
		}
		bound[i] = b
	}
	if cfg.CodegenEnabled {
		p, err := newCompiledProjection(bound, cfg)
		if err == nil {
			return p, nil
		}
		logger.Warn("projection codegen failed, falling back to interpreter: %v", err)
	}
	return newInterpretedProjection(bound, cfg), nil
}

// --- compiled forms --------------------------------------------------------

type compiledPredicate struct {
	tree     expr.Expression
	compiled *codegen.Compiled
}

func (p *compiledPredicate) Initialize(partitionIndex int) {
	p.compiled.Initialize(partitionIndex)
}

func (p *compiledPredicate) Matches(input row.InternalRow) (bool, error) {
	v, err := p.compiled.Eval(input)
	if err != nil {
		return false, err
	}
	return v == true, nil
}

type compiledProjection struct {
	trees    []expr.Expression
	compiled []*codegen.Compiled
}

func newCompiledProjection(bound []expr.Expression, cfg *config.Config) (*compiledProjection, error) {
	compiled := make([]*codegen.Compiled, len(bound))
	for i, e := range bound {
		c, err := codegen.Compile(e, cfg)
		if err != nil {
			return nil, err
		}
		compiled[i] = c
	}
	return &compiledProjection{trees: bound, compiled: compiled}, nil
}

func (p *compiledProjection) Initialize(partitionIndex int) {
	for _, c := range p.compiled {
		c.Initialize(partitionIndex)
	}
}

func (p *compiledProjection) Apply(input row.InternalRow) (row.InternalRow, error) {
	out := row.NewGenericRow(len(p.compiled))
	for i, c := range p.compiled {
		v, err := c.Eval(input)
		if err != nil {
			return nil, err
		}
		out.SetValue(i, v)
	}
	return out, nil
}

// --- interpreted forms -----------------------------------------------------

type interpretedPredicate struct {
	tree expr.Expression
	memo *memoState
}

func newInterpretedPredicate(bound expr.Expression, cfg *config.Config) *interpretedPredicate {
	p := &interpretedPredicate{tree: bound}
	if cfg.SubexprElimination {
		p.memo = newMemoState(cfg.SubexprCacheSize)
		p.tree = instrument([]expr.Expression{bound}, p.memo)[0]
	}
	return p
}

func (p *interpretedPredicate) Initialize(partitionIndex int) {
	expr.Initialize(p.tree, partitionIndex)
}

func (p *interpretedPredicate) Matches(input row.InternalRow) (bool, error) {
	if p.memo != nil {
		p.memo.nextRow()
	}
	v, err := p.tree.Eval(input)
	if err != nil {
		return false, err
	}
	return v == true, nil
}

type interpretedProjection struct {
	trees []expr.Expression
	memo  *memoState
}

func newInterpretedProjection(bound []expr.Expression, cfg *config.Config) *interpretedProjection {
	p := &interpretedProjection{trees: bound}
	if cfg.SubexprElimination {
		p.memo = newMemoState(cfg.SubexprCacheSize)
		p.trees = instrument(bound, p.memo)
	}
	return p
}

func (p *interpretedProjection) Initialize(partitionIndex int) {
	for _, t := range p.trees {
		expr.Initialize(t, partitionIndex)
	}
}

func (p *interpretedProjection) Apply(input row.InternalRow) (row.InternalRow, error) {
	if p.memo != nil {
		p.memo.nextRow()
	}
	out := row.NewGenericRow(len(p.trees))
	for i, t := range p.trees {
		v, err := t.Eval(input)
		if err != nil {
			return nil, err
		}
		out.SetValue(i, v)
	}
	return out, nil
}
