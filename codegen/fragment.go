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

import "strings"

// Literal fragments usable as IsNull expressions.
const (
	FalseLiteral = "false"
	TrueLiteral  = "true"
)

// ExprCode is the generated fragment for one expression node: a list of
// binding statements plus the names (or literal fragments) holding the
// node's null flag and value. Fragments compose bottom-up: a parent appends
// its children's statements before its own and references their IsNull/Value
// names.
type ExprCode struct {
	// Stmts are `let` binding statements, in evaluation order.
	Stmts []string
	// IsNull is a boolean fragment, FalseLiteral when provably non-null.
	IsNull string
	// Value is the fragment holding the result, nil for SQL NULL.
	Value string
}

// Ref returns a statement-free fragment referencing this fragment's
// variables, used when a shared subexpression is reused.
func (c *ExprCode) Ref() *ExprCode {
	return &ExprCode{IsNull: c.IsNull, Value: c.Value}
}

// Assemble splices a fragment into a single compilable source string whose
// result is the fragment's value.
func Assemble(c *ExprCode) string {
	if len(c.Stmts) == 0 {
		return c.Value
	}
	var b strings.Builder
	for _, s := range c.Stmts {
		b.WriteString(s)
		b.WriteString("; ")
	}
	b.WriteString(c.Value)
	return b.String()
}
