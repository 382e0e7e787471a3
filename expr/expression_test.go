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

package expr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/config"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// assertBothEval checks that the interpreter and the compiled program agree
// on the expected result.
func assertBothEval(t *testing.T, e Expression, r row.InternalRow, want interface{}) {
	t.Helper()
	got, err := e.Eval(r)
	require.NoError(t, err, "interpreted: %s", e)
	assert.Equal(t, want, got, "interpreted: %s", e)

	compiled, err := codegen.Compile(e, config.Default())
	require.NoError(t, err, "compile: %s", e)
	got, err = compiled.Eval(r)
	require.NoError(t, err, "compiled: %s", e)
	assert.Equal(t, want, got, "compiled: %s", e)
}

// assertBothError checks that both paths fail, with the interpreted error
// carrying the expected kind.
func assertBothError(t *testing.T, e Expression, r row.InternalRow, kind error) {
	t.Helper()
	_, err := e.Eval(r)
	require.Error(t, err, "interpreted: %s", e)
	assert.True(t, errors.Is(err, kind), "interpreted error %v is not %v", err, kind)

	compiled, err := codegen.Compile(e, config.Default())
	require.NoError(t, err, "compile: %s", e)
	_, err = compiled.Eval(r)
	require.Error(t, err, "compiled: %s", e)
}

func emptyRow() row.InternalRow { return row.RowOf() }

func TestTransformRewritesBottomUp(t *testing.T) {
	tree := NewAdd(
		NewBoundReference(0, types.Integer, true),
		NewLiteral(int32(1)),
	)

	rewritten := Transform(tree, func(e Expression) Expression {
		if l, ok := e.(*Literal); ok {
			return NewLiteral(l.Value.(int32) + 1)
		}
		return e
	})

	assertBothEval(t, rewritten, row.RowOf(int32(10)), int32(12))
	// The original tree is untouched.
	assertBothEval(t, tree, row.RowOf(int32(10)), int32(11))
}

func TestCheckAllReportsDeepestFailure(t *testing.T) {
	bad := NewAdd(NewLiteral("x"), NewLiteral("y"))
	tree := NewAnd(NewLiteral(true), NewGreaterThan(bad, NewLiteral("z")))

	res := CheckAll(tree)
	require.False(t, res.OK())
	assert.Contains(t, res.Message(), "+")
}

func TestBindReferences(t *testing.T) {
	schema := types.NewStructType(
		types.StructField{Name: "id", Type: types.Long, Nullable: false},
		types.StructField{Name: "score", Type: types.Double, Nullable: true},
	)
	tree := NewGreaterThan(
		NewAttributeReference("score", types.Double, true),
		NewLiteral(0.5),
	)

	bound, err := BindReferences(tree, schema)
	require.NoError(t, err)
	assertBothEval(t, bound, row.RowOf(int64(1), 0.75), true)
	assertBothEval(t, bound, row.RowOf(int64(2), nil), nil)

	_, err = BindReferences(
		NewAttributeReference("missing", types.Long, true), schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestUnboundAttributeCannotEvaluate(t *testing.T) {
	a := NewAttributeReference("x", types.Integer, true)
	_, err := a.Eval(emptyRow())
	require.Error(t, err)

	_, err = codegen.Compile(a, config.Default())
	require.Error(t, err)
}

func TestSharedSubexpressionCodegen(t *testing.T) {
	// (a+b) appears twice; with elimination on, the compiled program reuses
	// one fragment and must still agree with the interpreter on every row.
	sum := NewAdd(
		NewBoundReference(0, types.Integer, true),
		NewBoundReference(1, types.Integer, true),
	)
	tree := NewAnd(
		NewGreaterThan(sum, NewLiteral(int32(0))),
		NewLessThan(sum, NewLiteral(int32(10))),
	)

	rows := []row.InternalRow{
		row.RowOf(int32(2), int32(3)),
		row.RowOf(int32(-4), int32(1)),
		row.RowOf(int32(7), int32(8)),
		row.RowOf(nil, int32(1)),
	}
	for _, cfg := range []*config.Config{
		config.New(config.WithSubexprElimination(true, 0)),
		config.New(config.WithSubexprElimination(false, 0)),
	} {
		compiled, err := codegen.Compile(tree, cfg)
		require.NoError(t, err)
		for _, r := range rows {
			want, err := tree.Eval(r)
			require.NoError(t, err)
			got, err := compiled.Eval(r)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}
