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
	"github.com/pkg/errors"

	"github.com/rulego/exprsql/expr"
	"github.com/rulego/exprsql/types"
)

func zeroLiteral(dt types.DataType) (*expr.Literal, error) {
	switch dt {
	case types.Integer:
		return expr.NewLiteral(int32(0)), nil
	case types.Long:
		return expr.NewLiteral(int64(0)), nil
	case types.Float:
		return expr.NewLiteral(float32(0)), nil
	case types.Double:
		return expr.NewLiteral(float64(0)), nil
	}
	return nil, errors.Errorf("no numeric zero for %s", dt.SimpleString())
}

// Sum adds the non-null inputs, NULL over an all-null (or empty) group. The
// overflow policy of the addition follows failOnError.
type Sum struct {
	child       expr.Expression
	failOnError bool
}

func NewSum(child expr.Expression, failOnError bool) (*Sum, error) {
	if !types.IsNumeric(child.DataType()) {
		return nil, errors.Errorf("sum requires numeric input, got %s",
			child.DataType().SimpleString())
	}
	return &Sum{child: child, failOnError: failOnError}, nil
}

func (a *Sum) Name() string             { return "sum" }
func (a *Sum) DataType() types.DataType { return a.child.DataType() }
func (a *Sum) Nullable() bool           { return true }
func (a *Sum) BufferWidth() int         { return 1 }

func (a *Sum) InitialValues() []expr.Expression {
	return []expr.Expression{expr.NullLiteral(a.DataType())}
}

func (a *Sum) step(other expr.Expression) []expr.Expression {
	sum := bufferRef(0, a.DataType())
	zero, _ := zeroLiteral(a.DataType())
	add := expr.NewArithmetic(expr.OpAdd, expr.NewCoalesce(sum, zero), other, a.failOnError)
	return []expr.Expression{
		expr.NewIf(expr.NewIsNull(other), sum, add),
	}
}

func (a *Sum) UpdateExpressions() []expr.Expression {
	return a.step(shiftReferences(a.child, a.BufferWidth()))
}

func (a *Sum) MergeExpressions() []expr.Expression {
	return a.step(bufferRef(1, a.DataType()))
}

func (a *Sum) EvaluateExpression() expr.Expression {
	return bufferRef(0, a.DataType())
}

// Average is sum/count over double, NULL for an empty group.
type Average struct {
	child       expr.Expression
	failOnError bool
}

func NewAverage(child expr.Expression, failOnError bool) (*Average, error) {
	if !types.IsNumeric(child.DataType()) {
		return nil, errors.Errorf("avg requires numeric input, got %s",
			child.DataType().SimpleString())
	}
	return &Average{child: child, failOnError: failOnError}, nil
}

func (a *Average) Name() string             { return "avg" }
func (a *Average) DataType() types.DataType { return types.Double }
func (a *Average) Nullable() bool           { return true }
func (a *Average) BufferWidth() int         { return 2 }

func (a *Average) InitialValues() []expr.Expression {
	return []expr.Expression{
		expr.NewLiteral(float64(0)),
		expr.NewLiteral(int64(0)),
	}
}

func (a *Average) UpdateExpressions() []expr.Expression {
	sum := bufferRef(0, types.Double)
	count := bufferRef(1, types.Long)
	in := expr.NewCast(shiftReferences(a.child, a.BufferWidth()), types.Double, nil, a.failOnError)
	isNull := expr.NewIsNull(in)
	return []expr.Expression{
		expr.NewIf(isNull, sum, expr.NewAdd(sum, in)),
		expr.NewIf(isNull, count, expr.NewAdd(count, expr.NewLiteral(int64(1)))),
	}
}

func (a *Average) MergeExpressions() []expr.Expression {
	return []expr.Expression{
		expr.NewAdd(bufferRef(0, types.Double), bufferRef(2, types.Double)),
		expr.NewAdd(bufferRef(1, types.Long), bufferRef(3, types.Long)),
	}
}

func (a *Average) EvaluateExpression() expr.Expression {
	sum := bufferRef(0, types.Double)
	count := bufferRef(1, types.Long)
	return expr.NewIf(
		expr.NewEqualTo(count, expr.NewLiteral(int64(0))),
		expr.NullLiteral(types.Double),
		expr.NewDivide(sum, expr.NewCast(count, types.Double, nil, false)))
}

// Min keeps the smallest non-null input.
type Min struct {
	child expr.Expression
}

func NewMin(child expr.Expression) (*Min, error) {
	if !types.IsOrdered(child.DataType()) {
		return nil, errors.Errorf("min does not support ordering on %s",
			child.DataType().SimpleString())
	}
	return &Min{child: child}, nil
}

func (a *Min) Name() string             { return "min" }
func (a *Min) DataType() types.DataType { return a.child.DataType() }
func (a *Min) Nullable() bool           { return true }
func (a *Min) BufferWidth() int         { return 1 }

func (a *Min) InitialValues() []expr.Expression {
	return []expr.Expression{expr.NullLiteral(a.DataType())}
}

func (a *Min) UpdateExpressions() []expr.Expression {
	return []expr.Expression{
		expr.NewLeast(bufferRef(0, a.DataType()), shiftReferences(a.child, a.BufferWidth())),
	}
}

func (a *Min) MergeExpressions() []expr.Expression {
	return []expr.Expression{
		expr.NewLeast(bufferRef(0, a.DataType()), bufferRef(1, a.DataType())),
	}
}

func (a *Min) EvaluateExpression() expr.Expression {
	return bufferRef(0, a.DataType())
}

// Max keeps the largest non-null input.
type Max struct {
	child expr.Expression
}

func NewMax(child expr.Expression) (*Max, error) {
	if !types.IsOrdered(child.DataType()) {
		return nil, errors.Errorf("max does not support ordering on %s",
			child.DataType().SimpleString())
	}
	return &Max{child: child}, nil
}

func (a *Max) Name() string             { return "max" }
func (a *Max) DataType() types.DataType { return a.child.DataType() }
func (a *Max) Nullable() bool           { return true }
func (a *Max) BufferWidth() int         { return 1 }

func (a *Max) InitialValues() []expr.Expression {
	return []expr.Expression{expr.NullLiteral(a.DataType())}
}

func (a *Max) UpdateExpressions() []expr.Expression {
	return []expr.Expression{
		expr.NewGreatest(bufferRef(0, a.DataType()), shiftReferences(a.child, a.BufferWidth())),
	}
}

func (a *Max) MergeExpressions() []expr.Expression {
	return []expr.Expression{
		expr.NewGreatest(bufferRef(0, a.DataType()), bufferRef(1, a.DataType())),
	}
}

func (a *Max) EvaluateExpression() expr.Expression {
	return bufferRef(0, a.DataType())
}
