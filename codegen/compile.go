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
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"

	"github.com/rulego/exprsql/config"
	"github.com/rulego/exprsql/row"
)

// CodeGenerator is implemented by expression nodes that can translate
// themselves into a fragment.
type CodeGenerator interface {
	GenCode(ctx *Context) (*ExprCode, error)
}

// Compiled is a reusable compiled evaluator: one program, one environment,
// one set of state slots. It is bound to a single partition at a time via
// Initialize and is not safe for concurrent use; hosts create one instance
// per partition.
type Compiled struct {
	program *vm.Program
	ctx     *Context
}

// Compile generates, assembles and compiles the code for g. Any failure is
// returned to the caller, which is expected to fall back to interpretation.
func Compile(g CodeGenerator, cfg *config.Config) (*Compiled, error) {
	ctx := NewContext(cfg)
	ec, err := g.GenCode(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "generate code")
	}
	program, err := ctx.CompileFragment(ec)
	if err != nil {
		return nil, errors.Wrap(err, "compile generated code")
	}
	c := &Compiled{program: program, ctx: ctx}
	c.Initialize(0)
	return c, nil
}

// Initialize seeds all mutable state for the given partition index. Must be
// called before evaluating rows of a new partition.
func (c *Compiled) Initialize(partitionIndex int) {
	c.ctx.InitializeStates(partitionIndex)
}

// Eval runs the compiled program against one row, returning the resulting
// value or nil for SQL NULL.
func (c *Compiled) Eval(r row.InternalRow) (interface{}, error) {
	c.ctx.env["row"] = r.Values()
	return c.ctx.RunFragment(c.program)
}
