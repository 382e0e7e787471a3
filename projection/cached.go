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
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/expr"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

type memoEntry struct {
	generation uint64
	value      interface{}
}

// memoState is the per-evaluator store behind interpreted subexpression
// elimination. Entries are keyed by semantic hash and valid for one row
// generation; nextRow invalidates everything at once without clearing.
type memoState struct {
	generation uint64
	cache      *lru.Cache[uint64, memoEntry]
}

func newMemoState(size int) *memoState {
	if size <= 0 {
		size = 100
	}
	c, _ := lru.New[uint64, memoEntry](size)
	return &memoState{generation: 1, cache: c}
}

func (m *memoState) nextRow() { m.generation++ }

// CachedExpression wraps a deterministic subtree that occurs more than once
// in an evaluator's expression list, evaluating it at most once per row.
type CachedExpression struct {
	wrapped expr.Expression
	hash    uint64
	state   *memoState
}

func newCachedExpression(wrapped expr.Expression, state *memoState) *CachedExpression {
	return &CachedExpression{
		wrapped: wrapped,
		hash:    expr.SemanticHash(wrapped),
		state:   state,
	}
}

func (c *CachedExpression) DataType() types.DataType { return c.wrapped.DataType() }
func (c *CachedExpression) Nullable() bool           { return c.wrapped.Nullable() }
func (c *CachedExpression) Foldable() bool           { return c.wrapped.Foldable() }
func (c *CachedExpression) Deterministic() bool      { return true }

func (c *CachedExpression) Children() []expr.Expression {
	return []expr.Expression{c.wrapped}
}

func (c *CachedExpression) WithChildren(ch []expr.Expression) expr.Expression {
	return newCachedExpression(ch[0], c.state)
}

func (c *CachedExpression) CheckInputDataTypes() types.TypeCheckResult {
	return types.TypeCheckSuccess
}

func (c *CachedExpression) Eval(r row.InternalRow) (interface{}, error) {
	if e, ok := c.state.cache.Get(c.hash); ok && e.generation == c.state.generation {
		return e.value, nil
	}
	v, err := c.wrapped.Eval(r)
	if err != nil {
		return nil, err
	}
	c.state.cache.Add(c.hash, memoEntry{generation: c.state.generation, value: v})
	return v, nil
}

// GenCode delegates: the compiled path has its own fragment-level reuse.
func (c *CachedExpression) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return c.wrapped.GenCode(ctx)
}

func (c *CachedExpression) String() string { return c.wrapped.String() }

// countSubtrees tallies how often each deterministic non-leaf subtree occurs
// across the expression list.
func countSubtrees(exprs []expr.Expression) map[uint64]int {
	counts := make(map[uint64]int)
	var walk func(e expr.Expression)
	walk = func(e expr.Expression) {
		if e.Deterministic() && len(e.Children()) > 0 {
			counts[expr.SemanticHash(e)]++
		}
		for _, c := range e.Children() {
			walk(c)
		}
	}
	for _, e := range exprs {
		walk(e)
	}
	return counts
}

// instrument wraps repeated deterministic subtrees with a shared memo, so
// the interpreted path evaluates each once per row like the compiled path
// does. Wrapping is top-down and stops at the first (maximal) repeated
// subtree; anything inside it already runs at most once per row.
func instrument(exprs []expr.Expression, state *memoState) []expr.Expression {
	counts := countSubtrees(exprs)
	out := make([]expr.Expression, len(exprs))
	for i, e := range exprs {
		out[i] = wrapRepeated(e, counts, state)
	}
	return out
}

func wrapRepeated(e expr.Expression, counts map[uint64]int, state *memoState) expr.Expression {
	if e.Deterministic() && len(e.Children()) > 0 && counts[expr.SemanticHash(e)] > 1 {
		return newCachedExpression(e, state)
	}
	children := e.Children()
	if len(children) == 0 {
		return e
	}
	rebuilt := make([]expr.Expression, len(children))
	changed := false
	for i, c := range children {
		rebuilt[i] = wrapRepeated(c, counts, state)
		if rebuilt[i] != c {
			changed = true
		}
	}
	if changed {
		return e.WithChildren(rebuilt)
	}
	return e
}
