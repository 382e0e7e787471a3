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
Package expr provides the typed expression trees at the heart of the SQL
evaluation core.

# Expression Trees

Expressions form immutable trees. Every node reports its result type,
nullability, foldability and determinism, validates its children's types
through CheckInputDataTypes, and supports two evaluation paths:

  - Eval interprets the node directly against an InternalRow.
  - GenCode translates the node into a fragment compiled by package codegen.

Both paths call the same core closures, so NULL propagation, overflow
handling and error behavior cannot diverge between them.

# Null Semantics

nil is SQL NULL. Most expressions are null-intolerant (one NULL input makes
the result NULL); the exceptions handle NULL explicitly: three-valued AND/OR,
IS NULL, null-safe equality, COALESCE, LEAST/GREATEST and the IN scan.

# Error Modes

Nodes carrying a FailOnError flag capture the ANSI dialect at construction.
Under ANSI, integral overflow, division by zero, malformed input and invalid
calendar fields raise the sentinel errors from errors.go; in lenient mode
they yield NULL (arithmetic wraps). An unsupported charset is fatal in both
modes.

# Stateful Expressions

rand(), uuid() and monotonically_increasing_id() own per-partition state.
Initialize re-seeds every Stateful node as a pure function of the partition
index; a tree holding such nodes must not be shared across partitions.
*/
package expr
