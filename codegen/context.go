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
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rulego/exprsql/config"
)

// Func is the signature of helper functions callable from generated code.
type Func func(args ...interface{}) (interface{}, error)

// StateSlot holds one piece of per-evaluator mutable state (a random
// generator, a running counter, a compiled pattern cache). Slots are created
// during code generation and re-initialized by Initialize before each
// evaluation pass; helper closures capture the slot and read it per row.
// A slot belongs to exactly one evaluator instance and must not be shared
// across partitions.
type StateSlot struct {
	init  func(partitionIndex int) interface{}
	value interface{}
}

// Get returns the current state value.
func (s *StateSlot) Get() interface{} { return s.value }

// Set replaces the current state value.
func (s *StateSlot) Set(v interface{}) { s.value = v }

// Context accumulates everything one compiled evaluator needs: the shared
// runtime environment (row slots, helper closures, constants), mutable state
// slots, fresh-name allocation and the shared-subexpression table. One
// Context produces one evaluator; it is not safe for concurrent use.
type Context struct {
	cfg      *config.Config
	env      map[string]interface{}
	counter  int
	states   []*StateSlot
	subexprs map[uint64]*ExprCode
}

// NewContext creates a Context for one compilation.
func NewContext(cfg *config.Config) *Context {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Context{
		cfg:      cfg,
		env:      make(map[string]interface{}),
		subexprs: make(map[uint64]*ExprCode),
	}
}

// Config returns the evaluation configuration.
func (ctx *Context) Config() *config.Config { return ctx.cfg }

// Env returns the runtime environment map shared by the main program and all
// helper sub-programs. The caller sets the "row" entry before each run.
func (ctx *Context) Env() map[string]interface{} { return ctx.env }

// FreshName allocates a unique variable name with the given prefix.
func (ctx *Context) FreshName(prefix string) string {
	ctx.counter++
	return fmt.Sprintf("%s%d", prefix, ctx.counter)
}

// RegisterFunc installs a helper closure into the environment and returns
// the name generated code must call it by.
func (ctx *Context) RegisterFunc(hint string, fn Func) string {
	name := ctx.FreshName("__" + hint)
	ctx.env[name] = fn
	return name
}

// AddConstant installs a precomputed value into the environment, preserving
// its Go type exactly, and returns its reference name. All non-trivial
// literals go through constants so the compiled path sees the same runtime
// representation as the interpreter.
func (ctx *Context) AddConstant(v interface{}) string {
	name := ctx.FreshName("__c")
	ctx.env[name] = v
	return name
}

// AddMutableState allocates a state slot initialized by init at the start of
// each evaluation pass.
func (ctx *Context) AddMutableState(init func(partitionIndex int) interface{}) *StateSlot {
	slot := &StateSlot{init: init}
	ctx.states = append(ctx.states, slot)
	return slot
}

// InitializeStates seeds every state slot for the given partition. It is a
// pure function of the partition index, the sole cross-partition
// coordination point.
func (ctx *Context) InitializeStates(partitionIndex int) {
	for _, s := range ctx.states {
		s.value = s.init(partitionIndex)
	}
}

// SubexprEnabled reports whether shared deterministic subtrees should be
// generated once and reused.
func (ctx *Context) SubexprEnabled() bool { return ctx.cfg.SubexprElimination }

// LookupSubexpr returns the fragment previously generated for the semantic
// hash h.
func (ctx *Context) LookupSubexpr(h uint64) (*ExprCode, bool) {
	ec, ok := ctx.subexprs[h]
	return ec, ok
}

// StoreSubexpr records the fragment generated for the semantic hash h.
func (ctx *Context) StoreSubexpr(h uint64, ec *ExprCode) {
	ctx.subexprs[h] = ec
}

// NewSubexprScope gives lazily compiled sub-programs a fresh shared
// subexpression table: their `let` bindings are invisible to the enclosing
// program (and vice versa), so cross-program variable reuse must not happen.
// The returned function restores the enclosing scope.
func (ctx *Context) NewSubexprScope() func() {
	saved := ctx.subexprs
	ctx.subexprs = make(map[uint64]*ExprCode)
	return func() { ctx.subexprs = saved }
}

// SplitThreshold is the operand count above which variadic expressions must
// split generated code into helper sub-programs.
func (ctx *Context) SplitThreshold() int {
	if ctx.cfg.CodegenSplitThreshold <= 0 {
		return 32
	}
	return ctx.cfg.CodegenSplitThreshold
}

// CompileFragment assembles and compiles a fragment into a reusable
// sub-program bound to this context's environment. Used both for the final
// program and for lazily evaluated helper branches.
func (ctx *Context) CompileFragment(ec *ExprCode) (*vm.Program, error) {
	return expr.Compile(Assemble(ec), expr.AllowUndefinedVariables())
}

// RunFragment executes a sub-program against the current environment. The
// "row" entry must already refer to the row being evaluated.
func (ctx *Context) RunFragment(prog *vm.Program) (interface{}, error) {
	return vm.Run(prog, ctx.env)
}
