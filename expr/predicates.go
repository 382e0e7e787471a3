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

	"github.com/expr-lang/expr/vm"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// genLazy compiles a child as a self-contained sub-program and returns a
// call fragment that evaluates it against the current row on demand. This is
// how generated code keeps branches unevaluated until taken.
func genLazy(ctx *codegen.Context, child Expression) (string, error) {
	restore := ctx.NewSubexprScope()
	ec, err := child.GenCode(ctx)
	restore()
	if err != nil {
		return "", err
	}
	prog, err := ctx.CompileFragment(ec)
	if err != nil {
		return "", err
	}
	name := ctx.RegisterFunc("lazy", func(...interface{}) (interface{}, error) {
		return ctx.RunFragment(prog)
	})
	return name + "()", nil
}

// And implements SQL three-valued conjunction. It is not null-intolerant:
// AND(false, NULL) is false. The right side is only evaluated when the left
// side does not already decide the result.
type And struct{ binary }

func NewAnd(left, right Expression) *And { return &And{binary{left, right}} }

func (e *And) DataType() types.DataType { return types.Boolean }

func (e *And) WithChildren(ch []Expression) Expression { return &And{binary{ch[0], ch[1]}} }

func (e *And) CheckInputDataTypes() types.TypeCheckResult {
	return sameTypeCheck("and", e.Left, e.Right, types.ConcreteType{Type: types.Boolean})
}

func (e *And) Eval(r row.InternalRow) (interface{}, error) {
	left, err := e.Left.Eval(r)
	if err != nil {
		return nil, err
	}
	if left == false {
		return false, nil
	}
	right, err := e.Right.Eval(r)
	if err != nil {
		return nil, err
	}
	return combineAnd(left, right), nil
}

func combineAnd(left, right interface{}) interface{} {
	if right == false {
		return false
	}
	if left != nil && right != nil {
		return true
	}
	return nil
}

func (e *And) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genLogical(ctx, e.Left, e.Right, "and", false, func(args ...interface{}) (interface{}, error) {
		return combineAnd(args[0], args[1]), nil
	})
}

func (e *And) String() string { return "(" + e.Left.String() + " AND " + e.Right.String() + ")" }

// Or implements SQL three-valued disjunction: OR(true, NULL) is true.
type Or struct{ binary }

func NewOr(left, right Expression) *Or { return &Or{binary{left, right}} }

func (e *Or) DataType() types.DataType { return types.Boolean }

func (e *Or) WithChildren(ch []Expression) Expression { return &Or{binary{ch[0], ch[1]}} }

func (e *Or) CheckInputDataTypes() types.TypeCheckResult {
	return sameTypeCheck("or", e.Left, e.Right, types.ConcreteType{Type: types.Boolean})
}

func (e *Or) Eval(r row.InternalRow) (interface{}, error) {
	left, err := e.Left.Eval(r)
	if err != nil {
		return nil, err
	}
	if left == true {
		return true, nil
	}
	right, err := e.Right.Eval(r)
	if err != nil {
		return nil, err
	}
	return combineOr(left, right), nil
}

func combineOr(left, right interface{}) interface{} {
	if right == true {
		return true
	}
	if left != nil && right != nil {
		return false
	}
	return nil
}

func (e *Or) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genLogical(ctx, e.Left, e.Right, "or", true, func(args ...interface{}) (interface{}, error) {
		return combineOr(args[0], args[1]), nil
	})
}

func (e *Or) String() string { return "(" + e.Left.String() + " OR " + e.Right.String() + ")" }

// genLogical generates the shared And/Or shape: left inline, right lazy,
// short-circuiting on the deciding value.
func genLogical(ctx *codegen.Context, left, right Expression, hint string, decider bool, combine codegen.Func) (*codegen.ExprCode, error) {
	lec, err := genChildCode(ctx, left)
	if err != nil {
		return nil, err
	}
	rightCall, err := genLazy(ctx, right)
	if err != nil {
		return nil, err
	}
	fname := ctx.RegisterFunc(hint, combine)
	v := ctx.FreshName("v")
	n := ctx.FreshName("n")
	stmts := append([]string{}, lec.Stmts...)
	stmts = append(stmts,
		fmt.Sprintf("let %s = %s == %v ? %v : %s(%s, %s)",
			v, lec.Value, decider, decider, fname, lec.Value, rightCall),
		fmt.Sprintf("let %s = %s == nil", n, v))
	return &codegen.ExprCode{Stmts: stmts, IsNull: n, Value: v}, nil
}

// Not is null-intolerant boolean negation.
type Not struct{ unary }

func NewNot(child Expression) *Not { return &Not{unary{child}} }

func (e *Not) DataType() types.DataType { return types.Boolean }

func (e *Not) WithChildren(ch []Expression) Expression { return &Not{unary{ch[0]}} }

func (e *Not) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("not", e.Children(), types.ConcreteType{Type: types.Boolean})
}

func notCore(args ...interface{}) (interface{}, error) { return !args[0].(bool), nil }

func (e *Not) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), notCore)
}

func (e *Not) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "not", e.Children(), notCore)
}

func (e *Not) String() string { return "(NOT " + e.Child.String() + ")" }

// IsNull tests for SQL NULL; never NULL itself.
type IsNull struct{ unary }

func NewIsNull(child Expression) *IsNull { return &IsNull{unary{child}} }

func (e *IsNull) DataType() types.DataType { return types.Boolean }
func (e *IsNull) Nullable() bool           { return false }

func (e *IsNull) WithChildren(ch []Expression) Expression { return &IsNull{unary{ch[0]}} }

func (e *IsNull) CheckInputDataTypes() types.TypeCheckResult { return types.TypeCheckSuccess }

func (e *IsNull) Eval(r row.InternalRow) (interface{}, error) {
	v, err := e.Child.Eval(r)
	if err != nil {
		return nil, err
	}
	return v == nil, nil
}

func (e *IsNull) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	ec, err := genChildCode(ctx, e.Child)
	if err != nil {
		return nil, err
	}
	v := ctx.FreshName("v")
	stmts := append([]string{}, ec.Stmts...)
	stmts = append(stmts, fmt.Sprintf("let %s = %s == nil", v, ec.Value))
	return &codegen.ExprCode{Stmts: stmts, IsNull: codegen.FalseLiteral, Value: v}, nil
}

func (e *IsNull) String() string { return "(" + e.Child.String() + " IS NULL)" }

// IsNotNull is the complement of IsNull.
type IsNotNull struct{ unary }

func NewIsNotNull(child Expression) *IsNotNull { return &IsNotNull{unary{child}} }

func (e *IsNotNull) DataType() types.DataType { return types.Boolean }
func (e *IsNotNull) Nullable() bool           { return false }

func (e *IsNotNull) WithChildren(ch []Expression) Expression { return &IsNotNull{unary{ch[0]}} }

func (e *IsNotNull) CheckInputDataTypes() types.TypeCheckResult { return types.TypeCheckSuccess }

func (e *IsNotNull) Eval(r row.InternalRow) (interface{}, error) {
	v, err := e.Child.Eval(r)
	if err != nil {
		return nil, err
	}
	return v != nil, nil
}

func (e *IsNotNull) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	ec, err := genChildCode(ctx, e.Child)
	if err != nil {
		return nil, err
	}
	v := ctx.FreshName("v")
	stmts := append([]string{}, ec.Stmts...)
	stmts = append(stmts, fmt.Sprintf("let %s = %s != nil", v, ec.Value))
	return &codegen.ExprCode{Stmts: stmts, IsNull: codegen.FalseLiteral, Value: v}, nil
}

func (e *IsNotNull) String() string { return "(" + e.Child.String() + " IS NOT NULL)" }

// In tests list membership with SQL null semantics: NULL input is NULL; a
// match is true; no match is false unless some list item was NULL, in which
// case the result is NULL. The scan stops at the first match, in both
// evaluation paths.
type In struct {
	Value Expression
	List  []Expression
}

func NewIn(value Expression, list ...Expression) *In {
	return &In{Value: value, List: list}
}

func (e *In) Children() []Expression {
	return append([]Expression{e.Value}, e.List...)
}

func (e *In) WithChildren(ch []Expression) Expression {
	return &In{Value: ch[0], List: ch[1:]}
}

func (e *In) DataType() types.DataType { return types.Boolean }

func (e *In) Nullable() bool {
	if e.Value.Nullable() {
		return true
	}
	for _, item := range e.List {
		if item.Nullable() {
			return true
		}
	}
	return false
}

func (e *In) Foldable() bool {
	for _, c := range e.Children() {
		if !c.Foldable() {
			return false
		}
	}
	return true
}

func (e *In) Deterministic() bool {
	for _, c := range e.Children() {
		if !c.Deterministic() {
			return false
		}
	}
	return true
}

func (e *In) CheckInputDataTypes() types.TypeCheckResult {
	if len(e.List) == 0 {
		return types.TypeCheckFailure("in requires at least one list item")
	}
	vt := e.Value.DataType()
	for _, item := range e.List {
		it := item.DataType()
		if it != types.Null && vt != types.Null && !it.Equals(vt) {
			return types.TypeCheckFailuref("in list item type %s does not match value type %s",
				it.SimpleString(), vt.SimpleString())
		}
	}
	return types.TypeCheckSuccess
}

func (e *In) Eval(r row.InternalRow) (interface{}, error) {
	v, err := e.Value.Eval(r)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	sawNull := false
	for _, item := range e.List {
		iv, err := item.Eval(r)
		if err != nil {
			return nil, err
		}
		if iv == nil {
			sawNull = true
			continue
		}
		if equalValues(v, iv) {
			return true, nil
		}
	}
	if sawNull {
		return nil, nil
	}
	return false, nil
}

func (e *In) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	vec, err := genChildCode(ctx, e.Value)
	if err != nil {
		return nil, err
	}
	// List items are compiled as separate sub-programs so a long list splits
	// across generated-method boundaries while keeping the early exit on the
	// first match.
	programs := make([]*vm.Program, len(e.List))
	for i, item := range e.List {
		restore := ctx.NewSubexprScope()
		iec, err := item.GenCode(ctx)
		restore()
		if err != nil {
			return nil, err
		}
		prog, err := ctx.CompileFragment(iec)
		if err != nil {
			return nil, err
		}
		programs[i] = prog
	}
	scan := ctx.RegisterFunc("in", func(args ...interface{}) (interface{}, error) {
		v := args[0]
		sawNull := false
		for _, prog := range programs {
			iv, err := ctx.RunFragment(prog)
			if err != nil {
				return nil, err
			}
			if iv == nil {
				sawNull = true
				continue
			}
			if equalValues(v, iv) {
				return true, nil
			}
		}
		if sawNull {
			return nil, nil
		}
		return false, nil
	})
	v := ctx.FreshName("v")
	n := ctx.FreshName("n")
	stmts := append([]string{}, vec.Stmts...)
	if vec.IsNull == codegen.FalseLiteral {
		stmts = append(stmts, fmt.Sprintf("let %s = %s(%s)", v, scan, vec.Value))
	} else {
		stmts = append(stmts, fmt.Sprintf("let %s = %s ? nil : %s(%s)", v, vec.IsNull, scan, vec.Value))
	}
	stmts = append(stmts, fmt.Sprintf("let %s = %s == nil", n, v))
	return &codegen.ExprCode{Stmts: stmts, IsNull: n, Value: v}, nil
}

func (e *In) String() string {
	return "(" + e.Value.String() + " IN " + argsString(e.List) + ")"
}
