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

	"github.com/expr-lang/expr/vm"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// If evaluates the taken branch only: a NULL or false predicate takes the
// false branch, and the untaken branch can never raise an error.
type If struct{ ternary }

func NewIf(predicate, trueValue, falseValue Expression) *If {
	return &If{ternary{predicate, trueValue, falseValue}}
}

func (e *If) DataType() types.DataType {
	if e.Second.DataType() == types.Null {
		return e.Third.DataType()
	}
	return e.Second.DataType()
}

func (e *If) Nullable() bool { return e.Second.Nullable() || e.Third.Nullable() }

func (e *If) WithChildren(ch []Expression) Expression {
	return &If{ternary{ch[0], ch[1], ch[2]}}
}

func (e *If) CheckInputDataTypes() types.TypeCheckResult {
	if !(types.ConcreteType{Type: types.Boolean}).AcceptsType(e.First.DataType()) {
		return types.TypeCheckFailuref("if predicate requires boolean, got %s",
			e.First.DataType().SimpleString())
	}
	tt, ft := e.Second.DataType(), e.Third.DataType()
	if tt != types.Null && ft != types.Null && !tt.Equals(ft) {
		return types.TypeCheckFailuref("if branches must have the same type, got %s and %s",
			tt.SimpleString(), ft.SimpleString())
	}
	return types.TypeCheckSuccess
}

func (e *If) Eval(r row.InternalRow) (interface{}, error) {
	cond, err := e.First.Eval(r)
	if err != nil {
		return nil, err
	}
	if cond == true {
		return e.Second.Eval(r)
	}
	return e.Third.Eval(r)
}

func (e *If) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	cec, err := genChildCode(ctx, e.First)
	if err != nil {
		return nil, err
	}
	trueCall, err := genLazy(ctx, e.Second)
	if err != nil {
		return nil, err
	}
	falseCall, err := genLazy(ctx, e.Third)
	if err != nil {
		return nil, err
	}
	v := ctx.FreshName("v")
	n := ctx.FreshName("n")
	stmts := append([]string{}, cec.Stmts...)
	stmts = append(stmts,
		fmt.Sprintf("let %s = %s == true ? %s : %s", v, cec.Value, trueCall, falseCall),
		fmt.Sprintf("let %s = %s == nil", n, v))
	return &codegen.ExprCode{Stmts: stmts, IsNull: n, Value: v}, nil
}

func (e *If) String() string {
	return fmt.Sprintf("if(%s, %s, %s)", e.First, e.Second, e.Third)
}

// CaseBranch is one WHEN/THEN pair of a CaseWhen.
type CaseBranch struct {
	When Expression
	Then Expression
}

// CaseWhen evaluates branch conditions in order and returns the first value
// whose condition is true, the ELSE value otherwise, NULL without an ELSE.
// Conditions and values after the taken branch stay unevaluated.
type CaseWhen struct {
	Branches []CaseBranch
	Else     Expression // may be nil
}

func NewCaseWhen(branches []CaseBranch, elseValue Expression) *CaseWhen {
	return &CaseWhen{Branches: branches, Else: elseValue}
}

func (e *CaseWhen) Children() []Expression {
	ch := make([]Expression, 0, len(e.Branches)*2+1)
	for _, b := range e.Branches {
		ch = append(ch, b.When, b.Then)
	}
	if e.Else != nil {
		ch = append(ch, e.Else)
	}
	return ch
}

func (e *CaseWhen) WithChildren(ch []Expression) Expression {
	branches := make([]CaseBranch, len(e.Branches))
	for i := range branches {
		branches[i] = CaseBranch{When: ch[2*i], Then: ch[2*i+1]}
	}
	var elseValue Expression
	if e.Else != nil {
		elseValue = ch[len(ch)-1]
	}
	return &CaseWhen{Branches: branches, Else: elseValue}
}

func (e *CaseWhen) DataType() types.DataType {
	for _, b := range e.Branches {
		if b.Then.DataType() != types.Null {
			return b.Then.DataType()
		}
	}
	if e.Else != nil {
		return e.Else.DataType()
	}
	return types.Null
}

func (e *CaseWhen) Nullable() bool {
	if e.Else == nil {
		return true
	}
	for _, b := range e.Branches {
		if b.Then.Nullable() {
			return true
		}
	}
	return e.Else.Nullable()
}

func (e *CaseWhen) Foldable() bool {
	for _, c := range e.Children() {
		if !c.Foldable() {
			return false
		}
	}
	return true
}

func (e *CaseWhen) Deterministic() bool {
	for _, c := range e.Children() {
		if !c.Deterministic() {
			return false
		}
	}
	return true
}

func (e *CaseWhen) CheckInputDataTypes() types.TypeCheckResult {
	if len(e.Branches) == 0 {
		return types.TypeCheckFailure("case requires at least one when branch")
	}
	dt := e.DataType()
	for i, b := range e.Branches {
		if !(types.ConcreteType{Type: types.Boolean}).AcceptsType(b.When.DataType()) {
			return types.TypeCheckFailuref("when condition %d requires boolean, got %s",
				i+1, b.When.DataType().SimpleString())
		}
		if bt := b.Then.DataType(); bt != types.Null && !bt.Equals(dt) {
			return types.TypeCheckFailuref("then value %d type %s does not match %s",
				i+1, bt.SimpleString(), dt.SimpleString())
		}
	}
	if e.Else != nil {
		if et := e.Else.DataType(); et != types.Null && !et.Equals(dt) {
			return types.TypeCheckFailuref("else value type %s does not match %s",
				et.SimpleString(), dt.SimpleString())
		}
	}
	return types.TypeCheckSuccess
}

func (e *CaseWhen) Eval(r row.InternalRow) (interface{}, error) {
	for _, b := range e.Branches {
		cond, err := b.When.Eval(r)
		if err != nil {
			return nil, err
		}
		if cond == true {
			return b.Then.Eval(r)
		}
	}
	if e.Else != nil {
		return e.Else.Eval(r)
	}
	return nil, nil
}

func (e *CaseWhen) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	type branchProg struct {
		when *vm.Program
		then *vm.Program
	}
	compile := func(child Expression) (*vm.Program, error) {
		restore := ctx.NewSubexprScope()
		ec, err := child.GenCode(ctx)
		restore()
		if err != nil {
			return nil, err
		}
		return ctx.CompileFragment(ec)
	}
	progs := make([]branchProg, len(e.Branches))
	for i, b := range e.Branches {
		var err error
		if progs[i].when, err = compile(b.When); err != nil {
			return nil, err
		}
		if progs[i].then, err = compile(b.Then); err != nil {
			return nil, err
		}
	}
	var elseProg *vm.Program
	if e.Else != nil {
		var err error
		if elseProg, err = compile(e.Else); err != nil {
			return nil, err
		}
	}
	dispatch := ctx.RegisterFunc("case", func(...interface{}) (interface{}, error) {
		for _, bp := range progs {
			cond, err := ctx.RunFragment(bp.when)
			if err != nil {
				return nil, err
			}
			if cond == true {
				return ctx.RunFragment(bp.then)
			}
		}
		if elseProg != nil {
			return ctx.RunFragment(elseProg)
		}
		return nil, nil
	})
	v := ctx.FreshName("v")
	n := ctx.FreshName("n")
	stmts := []string{
		fmt.Sprintf("let %s = %s()", v, dispatch),
		fmt.Sprintf("let %s = %s == nil", n, v),
	}
	return &codegen.ExprCode{Stmts: stmts, IsNull: n, Value: v}, nil
}

func (e *CaseWhen) String() string {
	var b strings.Builder
	b.WriteString("CASE")
	for _, br := range e.Branches {
		fmt.Fprintf(&b, " WHEN %s THEN %s", br.When, br.Then)
	}
	if e.Else != nil {
		fmt.Fprintf(&b, " ELSE %s", e.Else)
	}
	b.WriteString(" END")
	return b.String()
}

// Coalesce returns its first non-null argument, evaluating later arguments
// only when needed.
type Coalesce struct{ variadic }

func NewCoalesce(args ...Expression) *Coalesce { return &Coalesce{variadic{args}} }

func (e *Coalesce) DataType() types.DataType {
	for _, a := range e.Args {
		if a.DataType() != types.Null {
			return a.DataType()
		}
	}
	return types.Null
}

func (e *Coalesce) Nullable() bool {
	for _, a := range e.Args {
		if !a.Nullable() {
			return false
		}
	}
	return true
}

func (e *Coalesce) WithChildren(ch []Expression) Expression { return &Coalesce{variadic{ch}} }

func (e *Coalesce) CheckInputDataTypes() types.TypeCheckResult {
	if len(e.Args) == 0 {
		return types.TypeCheckFailure("coalesce requires at least one argument")
	}
	dt := e.DataType()
	for i, a := range e.Args {
		if at := a.DataType(); at != types.Null && !at.Equals(dt) {
			return types.TypeCheckFailuref("coalesce argument %d type %s does not match %s",
				i+1, at.SimpleString(), dt.SimpleString())
		}
	}
	return types.TypeCheckSuccess
}

func (e *Coalesce) Eval(r row.InternalRow) (interface{}, error) {
	for _, a := range e.Args {
		v, err := a.Eval(r)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

func (e *Coalesce) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	programs := make([]*vm.Program, len(e.Args))
	for i, a := range e.Args {
		restore := ctx.NewSubexprScope()
		ec, err := a.GenCode(ctx)
		restore()
		if err != nil {
			return nil, err
		}
		if programs[i], err = ctx.CompileFragment(ec); err != nil {
			return nil, err
		}
	}
	pick := ctx.RegisterFunc("coalesce", func(...interface{}) (interface{}, error) {
		for _, prog := range programs {
			v, err := ctx.RunFragment(prog)
			if err != nil {
				return nil, err
			}
			if v != nil {
				return v, nil
			}
		}
		return nil, nil
	})
	v := ctx.FreshName("v")
	n := ctx.FreshName("n")
	stmts := []string{
		fmt.Sprintf("let %s = %s()", v, pick),
		fmt.Sprintf("let %s = %s == nil", n, v),
	}
	return &codegen.ExprCode{Stmts: stmts, IsNull: n, Value: v}, nil
}

func (e *Coalesce) String() string { return "coalesce" + argsString(e.Args) }
