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

/*
Package codegen implements the compiled evaluation path.

Expression nodes translate themselves bottom-up into ExprCode fragments:
`let` binding statements plus a null-flag fragment and a value fragment. The
assembled source is compiled once per evaluator with expr-lang/expr and then
executed per row with vm.Run against a shared environment holding the current
row slots, helper closures and precomputed constants.

# State

Expressions that amortize setup cost across rows (random generators, running
counters, compiled patterns, cached formatters) register StateSlot values on
the Context. Initialize re-seeds every slot as a pure function of the
partition index, so concurrently running partitions coordinate through
nothing but their index. A Compiled evaluator therefore belongs to exactly
one partition at a time and must never be shared across threads.

# Splitting and laziness

Variadic expressions above Context.SplitThreshold, and any construct whose
operands must stay unevaluated (conditional branches, IN list scans), compile
their pieces as separate sub-programs via CompileFragment and drive them from
a helper closure, preserving evaluation order and short-circuit semantics.

Code generation is deterministic for a given tree, and the behavior of the
generated program matches the tree-walking interpreter exactly, including
null propagation, overflow handling and formatting. Compilation failures are
never fatal: callers fall back to the interpreter.
*/
package codegen
