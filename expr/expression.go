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
	"fmt"
	"strings"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// Expression is a node of an immutable, typed expression tree. A well-typed
// tree reports a consistent DataType/Nullable for every node, and
// CheckInputDataTypes must pass on every node before Eval or GenCode is
// called. Rewrites produce new trees (Transform, WithChildren); existing
// nodes are never mutated, with the single exception of Stateful nodes.
type Expression interface {
	fmt.Stringer

	// DataType is the type of the value this expression evaluates to.
	DataType() types.DataType
	// Nullable reports whether evaluation can produce SQL NULL.
	Nullable() bool
	// Children returns the direct child expressions.
	Children() []Expression
	// WithChildren returns a copy of this node with the given children. The
	// slice length must match len(Children()).
	WithChildren(children []Expression) Expression
	// Foldable reports whether the value can be computed at bind time
	// because all inputs are compile-time constants.
	Foldable() bool
	// Deterministic reports whether equal inputs always produce equal
	// output.
	Deterministic() bool
	// CheckInputDataTypes validates the children's types against this
	// node's expectations. Failures are values, not errors.
	CheckInputDataTypes() types.TypeCheckResult

	// Eval evaluates against one row; nil represents SQL NULL.
	Eval(r row.InternalRow) (interface{}, error)
	// GenCode translates this node into a compilable fragment.
	GenCode(ctx *codegen.Context) (*codegen.ExprCode, error)
}

// Stateful is implemented by expressions owning per-partition mutable state
// (random generators, running counters). InitializeInternal re-seeds the
// state as a pure function of the partition index before each evaluation
// pass; this is the sole cross-partition coordination point. A tree holding
// Stateful nodes must not be evaluated by two partitions at once.
type Stateful interface {
	Expression
	InitializeInternal(partitionIndex int)
}

// Transform rewrites a tree bottom-up, applying f to every node of the copy.
func Transform(e Expression, f func(Expression) Expression) Expression {
	children := e.Children()
	if len(children) > 0 {
		newChildren := make([]Expression, len(children))
		changed := false
		for i, c := range children {
			nc := Transform(c, f)
			if nc != c {
				changed = true
			}
			newChildren[i] = nc
		}
		if changed {
			e = e.WithChildren(newChildren)
		}
	}
	return f(e)
}

// CheckAll runs CheckInputDataTypes over the whole tree, children first, and
// returns the first failure.
func CheckAll(e Expression) types.TypeCheckResult {
	for _, c := range e.Children() {
		if r := CheckAll(c); !r.OK() {
			return r
		}
	}
	return e.CheckInputDataTypes()
}

// Initialize walks the tree and seeds every Stateful node for the given
// partition.
func Initialize(e Expression, partitionIndex int) {
	if s, ok := e.(Stateful); ok {
		s.InitializeInternal(partitionIndex)
	}
	for _, c := range e.Children() {
		Initialize(c, partitionIndex)
	}
}

// --- base node kinds -------------------------------------------------------

// The closed set of structural node kinds. Each concrete expression embeds
// one of these for its children plus the derived defaults: foldable when all
// children are foldable, deterministic when all children are deterministic,
// nullable when any child is nullable. Nodes override where their semantics
// differ.

type leaf struct{}

func (leaf) Children() []Expression { return nil }
func (leaf) Foldable() bool         { return false }
func (leaf) Deterministic() bool    { return true }
func (leaf) CheckInputDataTypes() types.TypeCheckResult {
	return types.TypeCheckSuccess
}

type unary struct{ Child Expression }

func (u unary) Children() []Expression { return []Expression{u.Child} }
func (u unary) Foldable() bool         { return u.Child.Foldable() }
func (u unary) Deterministic() bool    { return u.Child.Deterministic() }
func (u unary) Nullable() bool         { return u.Child.Nullable() }

type binary struct{ Left, Right Expression }

func (b binary) Children() []Expression { return []Expression{b.Left, b.Right} }
func (b binary) Foldable() bool         { return b.Left.Foldable() && b.Right.Foldable() }
func (b binary) Deterministic() bool {
	return b.Left.Deterministic() && b.Right.Deterministic()
}
func (b binary) Nullable() bool { return b.Left.Nullable() || b.Right.Nullable() }

type ternary struct{ First, Second, Third Expression }

func (t ternary) Children() []Expression {
	return []Expression{t.First, t.Second, t.Third}
}
func (t ternary) Foldable() bool {
	return t.First.Foldable() && t.Second.Foldable() && t.Third.Foldable()
}
func (t ternary) Deterministic() bool {
	return t.First.Deterministic() && t.Second.Deterministic() && t.Third.Deterministic()
}
func (t ternary) Nullable() bool {
	return t.First.Nullable() || t.Second.Nullable() || t.Third.Nullable()
}

type variadic struct{ Args []Expression }

func (v variadic) Children() []Expression { return v.Args }
func (v variadic) Foldable() bool {
	for _, a := range v.Args {
		if !a.Foldable() {
			return false
		}
	}
	return true
}
func (v variadic) Deterministic() bool {
	for _, a := range v.Args {
		if !a.Deterministic() {
			return false
		}
	}
	return true
}
func (v variadic) Nullable() bool {
	for _, a := range v.Args {
		if a.Nullable() {
			return true
		}
	}
	return false
}

// --- shared evaluation machinery ------------------------------------------

// evalNullIntolerant implements the null-intolerant contract shared by most
// expressions: if any child evaluates to NULL the result is NULL and the
// core logic never runs. The same core closure backs the generated code, so
// the two paths cannot drift apart.
func evalNullIntolerant(r row.InternalRow, children []Expression, core codegen.Func) (interface{}, error) {
	args := make([]interface{}, len(children))
	for i, c := range children {
		v, err := c.Eval(r)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		args[i] = v
	}
	return core(args...)
}

// genChildCode generates a child fragment, reusing an already generated
// fragment when the child is a deterministic repeated subtree.
func genChildCode(ctx *codegen.Context, e Expression) (*codegen.ExprCode, error) {
	if ctx.SubexprEnabled() && e.Deterministic() && len(e.Children()) > 0 {
		h := SemanticHash(e)
		if ec, ok := ctx.LookupSubexpr(h); ok {
			return ec.Ref(), nil
		}
		ec, err := e.GenCode(ctx)
		if err != nil {
			return nil, err
		}
		ctx.StoreSubexpr(h, ec)
		return ec, nil
	}
	return e.GenCode(ctx)
}

// genNullIntolerant is the codegen counterpart of evalNullIntolerant: it
// wraps the core helper call in generated null checks for every child, so
// the compiled path propagates NULL exactly like the interpreter.
func genNullIntolerant(ctx *codegen.Context, hint string, children []Expression, core codegen.Func) (*codegen.ExprCode, error) {
	var stmts []string
	nullChecks := make([]string, 0, len(children))
	args := make([]string, len(children))
	for i, c := range children {
		ec, err := genChildCode(ctx, c)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, ec.Stmts...)
		if ec.IsNull != codegen.FalseLiteral {
			nullChecks = append(nullChecks, ec.IsNull)
		}
		args[i] = ec.Value
	}
	fname := ctx.RegisterFunc(hint, core)
	v := ctx.FreshName("v")
	n := ctx.FreshName("n")
	call := fmt.Sprintf("%s(%s)", fname, strings.Join(args, ", "))
	if len(nullChecks) == 0 {
		stmts = append(stmts, fmt.Sprintf("let %s = %s", v, call))
	} else {
		stmts = append(stmts, fmt.Sprintf("let %s = (%s) ? nil : %s",
			v, strings.Join(nullChecks, " || "), call))
	}
	stmts = append(stmts, fmt.Sprintf("let %s = %s == nil", n, v))
	return &codegen.ExprCode{Stmts: stmts, IsNull: n, Value: v}, nil
}

// genCall generates an unconditional call to a core helper that performs its
// own null handling (three-valued logic, IS NULL and friends).
func genCall(ctx *codegen.Context, hint string, children []Expression, core codegen.Func) (*codegen.ExprCode, error) {
	var stmts []string
	args := make([]string, len(children))
	for i, c := range children {
		ec, err := genChildCode(ctx, c)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, ec.Stmts...)
		args[i] = ec.Value
	}
	fname := ctx.RegisterFunc(hint, core)
	v := ctx.FreshName("v")
	n := ctx.FreshName("n")
	stmts = append(stmts,
		fmt.Sprintf("let %s = %s(%s)", v, fname, strings.Join(args, ", ")),
		fmt.Sprintf("let %s = %s == nil", n, v))
	return &codegen.ExprCode{Stmts: stmts, IsNull: n, Value: v}, nil
}

// checkArgTypes validates children against expected abstract input types.
func checkArgTypes(name string, children []Expression, expected ...types.AbstractType) types.TypeCheckResult {
	if len(children) != len(expected) {
		return types.TypeCheckFailuref("%s requires %d arguments, got %d",
			name, len(expected), len(children))
	}
	for i, c := range children {
		if !expected[i].AcceptsType(c.DataType()) {
			return types.TypeCheckFailuref(
				"%s argument %d requires %s, got %s",
				name, i+1, expected[i].SimpleString(), c.DataType().SimpleString())
		}
	}
	return types.TypeCheckSuccess
}

// sameTypeCheck validates that both sides of a binary operator share one
// type accepted by the expected abstract type.
func sameTypeCheck(name string, left, right Expression, expected types.AbstractType) types.TypeCheckResult {
	lt, rt := left.DataType(), right.DataType()
	if lt != types.Null && rt != types.Null && !lt.Equals(rt) {
		return types.TypeCheckFailuref("%s requires both sides to have the same type, got %s and %s",
			name, lt.SimpleString(), rt.SimpleString())
	}
	if !expected.AcceptsType(lt) || !expected.AcceptsType(rt) {
		return types.TypeCheckFailuref("%s requires %s, got %s and %s",
			name, expected.SimpleString(), lt.SimpleString(), rt.SimpleString())
	}
	return types.TypeCheckSuccess
}
