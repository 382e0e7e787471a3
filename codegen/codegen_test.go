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

package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	// A statement-free fragment assembles to just its value.
	assert.Equal(t, "v1", Assemble(&ExprCode{IsNull: FalseLiteral, Value: "v1"}))

	ec := &ExprCode{
		Stmts:  []string{"let v1 = row[0]", "let v2 = v1 == nil"},
		IsNull: "v2",
		Value:  "v1",
	}
	assert.Equal(t, "let v1 = row[0]; let v2 = v1 == nil; v1", Assemble(ec))
}

func TestRefDropsStatements(t *testing.T) {
	ec := &ExprCode{Stmts: []string{"let v1 = 1"}, IsNull: FalseLiteral, Value: "v1"}
	ref := ec.Ref()
	assert.Empty(t, ref.Stmts)
	assert.Equal(t, ec.IsNull, ref.IsNull)
	assert.Equal(t, ec.Value, ref.Value)
}

func TestFreshNameIsUnique(t *testing.T) {
	ctx := NewContext(nil)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := ctx.FreshName("v")
		assert.False(t, seen[n], "duplicate name %s", n)
		seen[n] = true
	}
}

// Constants must keep their exact Go type so the compiled path sees the same
// runtime representation as the interpreter.
func TestAddConstantPreservesType(t *testing.T) {
	ctx := NewContext(nil)

	name := ctx.AddConstant(int32(7))
	v, ok := ctx.Env()[name]
	require.True(t, ok)
	assert.Equal(t, int32(7), v)

	name = ctx.AddConstant([]byte("ab"))
	assert.Equal(t, []byte("ab"), ctx.Env()[name])
}

func TestRegisterFunc(t *testing.T) {
	ctx := NewContext(nil)
	name := ctx.RegisterFunc("add", func(args ...interface{}) (interface{}, error) {
		return args[0].(int64) + args[1].(int64), nil
	})

	fn, ok := ctx.Env()[name].(Func)
	require.True(t, ok)
	v, err := fn(int64(1), int64(2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestMutableStateInitialization(t *testing.T) {
	ctx := NewContext(nil)
	slot := ctx.AddMutableState(func(partitionIndex int) interface{} {
		return int64(partitionIndex) * 10
	})

	ctx.InitializeStates(3)
	assert.Equal(t, int64(30), slot.Get())

	slot.Set(int64(99))
	assert.Equal(t, int64(99), slot.Get())

	// Re-initialization resets every slot from the partition index alone.
	ctx.InitializeStates(1)
	assert.Equal(t, int64(10), slot.Get())
}

func TestSubexprScopeIsolation(t *testing.T) {
	ctx := NewContext(nil)
	outer := &ExprCode{IsNull: FalseLiteral, Value: "v1"}
	ctx.StoreSubexpr(42, outer)

	restore := ctx.NewSubexprScope()
	_, ok := ctx.LookupSubexpr(42)
	assert.False(t, ok, "inner scope must not see outer bindings")

	inner := &ExprCode{IsNull: FalseLiteral, Value: "v2"}
	ctx.StoreSubexpr(7, inner)
	restore()

	got, ok := ctx.LookupSubexpr(42)
	require.True(t, ok)
	assert.Same(t, outer, got)
	_, ok = ctx.LookupSubexpr(7)
	assert.False(t, ok, "inner bindings must not leak out")
}

func TestCompileAndRunFragment(t *testing.T) {
	ctx := NewContext(nil)
	c := ctx.AddConstant(int64(40))
	ec := &ExprCode{
		Stmts:  []string{"let v1 = " + c + " + 2"},
		IsNull: FalseLiteral,
		Value:  "v1",
	}

	prog, err := ctx.CompileFragment(ec)
	require.NoError(t, err)
	v, err := ctx.RunFragment(prog)
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)
}
