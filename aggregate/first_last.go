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

package aggregate

import (
	"github.com/rulego/exprsql/expr"
	"github.com/rulego/exprsql/types"
)

// First returns the first input of the group in encounter order. With
// ignoreNulls it returns the first non-null input instead. The buffer tracks
// the captured value and a valueSet flag so a captured NULL is
// distinguishable from nothing captured.
type First struct {
	child       expr.Expression
	ignoreNulls bool
}

func NewFirst(child expr.Expression, ignoreNulls bool) *First {
	return &First{child: child, ignoreNulls: ignoreNulls}
}

func (a *First) Name() string             { return "first" }
func (a *First) DataType() types.DataType { return a.child.DataType() }
func (a *First) Nullable() bool           { return true }
func (a *First) BufferWidth() int         { return 2 }

func (a *First) InitialValues() []expr.Expression {
	return []expr.Expression{
		expr.NullLiteral(a.DataType()),
		expr.NewLiteral(false),
	}
}

func (a *First) UpdateExpressions() []expr.Expression {
	value := bufferRef(0, a.DataType())
	valueSet := expr.NewBoundReference(1, types.Boolean, false)
	in := shiftReferences(a.child, a.BufferWidth())
	if a.ignoreNulls {
		keep := expr.NewOr(valueSet, expr.NewIsNull(in))
		return []expr.Expression{
			expr.NewIf(keep, value, in),
			expr.NewOr(valueSet, expr.NewIsNotNull(in)),
		}
	}
	return []expr.Expression{
		expr.NewIf(valueSet, value, in),
		expr.NewLiteral(true),
	}
}

func (a *First) MergeExpressions() []expr.Expression {
	value := bufferRef(0, a.DataType())
	valueSet := expr.NewBoundReference(1, types.Boolean, false)
	otherValue := bufferRef(2, a.DataType())
	otherSet := expr.NewBoundReference(3, types.Boolean, false)
	return []expr.Expression{
		expr.NewIf(valueSet, value, otherValue),
		expr.NewOr(valueSet, otherSet),
	}
}

func (a *First) EvaluateExpression() expr.Expression {
	return bufferRef(0, a.DataType())
}

// Last mirrors First for the final input in encounter order.
type Last struct {
	child       expr.Expression
	ignoreNulls bool
}

func NewLast(child expr.Expression, ignoreNulls bool) *Last {
	return &Last{child: child, ignoreNulls: ignoreNulls}
}

func (a *Last) Name() string             { return "last" }
func (a *Last) DataType() types.DataType { return a.child.DataType() }
func (a *Last) Nullable() bool           { return true }
func (a *Last) BufferWidth() int         { return 2 }

func (a *Last) InitialValues() []expr.Expression {
	return []expr.Expression{
		expr.NullLiteral(a.DataType()),
		expr.NewLiteral(false),
	}
}

func (a *Last) UpdateExpressions() []expr.Expression {
	value := bufferRef(0, a.DataType())
	valueSet := expr.NewBoundReference(1, types.Boolean, false)
	in := shiftReferences(a.child, a.BufferWidth())
	if a.ignoreNulls {
		take := expr.NewIsNotNull(in)
		return []expr.Expression{
			expr.NewIf(take, in, value),
			expr.NewOr(valueSet, take),
		}
	}
	return []expr.Expression{
		in,
		expr.NewLiteral(true),
	}
}

func (a *Last) MergeExpressions() []expr.Expression {
	value := bufferRef(0, a.DataType())
	valueSet := expr.NewBoundReference(1, types.Boolean, false)
	otherValue := bufferRef(2, a.DataType())
	otherSet := expr.NewBoundReference(3, types.Boolean, false)
	return []expr.Expression{
		expr.NewIf(otherSet, otherValue, value),
		expr.NewOr(valueSet, otherSet),
	}
}

func (a *Last) EvaluateExpression() expr.Expression {
	return bufferRef(0, a.DataType())
}
