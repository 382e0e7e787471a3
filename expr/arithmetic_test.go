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
	"math"
	"testing"

	"github.com/rulego/exprsql/types"
)

func TestArithmeticBasics(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want interface{}
	}{
		{"int32 add", NewAdd(NewLiteral(int32(2)), NewLiteral(int32(3))), int32(5)},
		{"int32 subtract", NewSubtract(NewLiteral(int32(2)), NewLiteral(int32(5))), int32(-3)},
		{"int64 multiply", NewMultiply(NewLiteral(int64(6)), NewLiteral(int64(7))), int64(42)},
		{"int64 divide", NewDivide(NewLiteral(int64(7)), NewLiteral(int64(2))), int64(3)},
		{"int64 remainder", NewRemainder(NewLiteral(int64(7)), NewLiteral(int64(3))), int64(1)},
		{"double add", NewAdd(NewLiteral(1.5), NewLiteral(2.25)), 3.75},
		{"double divide by zero is inf", NewDivide(NewLiteral(1.0), NewLiteral(0.0)), math.Inf(1)},
		{"float32 add", NewAdd(NewLiteral(float32(1.5)), NewLiteral(float32(2))), float32(3.5)},
		{"null left", NewAdd(NullLiteral(types.Integer), NewLiteral(int32(1))), nil},
		{"null right", NewMultiply(NewLiteral(int64(3)), NullLiteral(types.Long)), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertBothEval(t, tt.expr, emptyRow(), tt.want)
		})
	}
}

func TestArithmeticOverflow(t *testing.T) {
	maxInt32 := NewLiteral(int32(math.MaxInt32))
	one32 := NewLiteral(int32(1))

	// Lenient mode wraps like the underlying two's complement representation.
	assertBothEval(t, NewAdd(maxInt32, one32), emptyRow(), int32(math.MinInt32))
	assertBothEval(t,
		NewMultiply(NewLiteral(int64(math.MaxInt64)), NewLiteral(int64(2))),
		emptyRow(), int64(-2))

	// ANSI mode fails instead.
	assertBothError(t,
		NewArithmetic(OpAdd, maxInt32, one32, true),
		emptyRow(), ErrOverflow)
	assertBothError(t,
		NewArithmetic(OpMultiply, NewLiteral(int64(math.MaxInt64)), NewLiteral(int64(2)), true),
		emptyRow(), ErrOverflow)
}

func TestArithmeticDivideByZero(t *testing.T) {
	assertBothEval(t,
		NewDivide(NewLiteral(int64(1)), NewLiteral(int64(0))),
		emptyRow(), nil)
	assertBothEval(t,
		NewRemainder(NewLiteral(int32(1)), NewLiteral(int32(0))),
		emptyRow(), nil)

	assertBothError(t,
		NewArithmetic(OpDivide, NewLiteral(int64(1)), NewLiteral(int64(0)), true),
		emptyRow(), ErrDivideByZero)
	assertBothError(t,
		NewArithmetic(OpRemainder, NewLiteral(int32(1)), NewLiteral(int32(0)), true),
		emptyRow(), ErrDivideByZero)
}

func TestArithmeticMinValueDivide(t *testing.T) {
	minLong := NewLiteral(int64(math.MinInt64))
	minusOne := NewLiteral(int64(-1))

	assertBothEval(t, NewDivide(minLong, minusOne), emptyRow(), int64(math.MinInt64))
	assertBothError(t,
		NewArithmetic(OpDivide, minLong, minusOne, true),
		emptyRow(), ErrOverflow)
}

func TestUnaryMinus(t *testing.T) {
	assertBothEval(t, NewUnaryMinus(NewLiteral(int32(5)), false), emptyRow(), int32(-5))
	assertBothEval(t, NewUnaryMinus(NewLiteral(-2.5), false), emptyRow(), 2.5)
	assertBothEval(t, NewUnaryMinus(NullLiteral(types.Long), false), emptyRow(), nil)

	// Negating the minimal value wraps back onto itself in lenient mode.
	assertBothEval(t,
		NewUnaryMinus(NewLiteral(int32(math.MinInt32)), false),
		emptyRow(), int32(math.MinInt32))
	assertBothError(t,
		NewUnaryMinus(NewLiteral(int64(math.MinInt64)), true),
		emptyRow(), ErrOverflow)
}

func TestAbs(t *testing.T) {
	assertBothEval(t, NewAbs(NewLiteral(int64(-3)), false), emptyRow(), int64(3))
	assertBothEval(t, NewAbs(NewLiteral(int64(3)), false), emptyRow(), int64(3))
	assertBothEval(t, NewAbs(NewLiteral(-1.5), false), emptyRow(), 1.5)
	assertBothEval(t,
		NewAbs(NewLiteral(int32(math.MinInt32)), false),
		emptyRow(), int32(math.MinInt32))
	assertBothError(t,
		NewAbs(NewLiteral(int32(math.MinInt32)), true),
		emptyRow(), ErrOverflow)
}

func TestLeastGreatest(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want interface{}
	}{
		{"least ints", NewLeast(NewLiteral(int64(3)), NewLiteral(int64(1)), NewLiteral(int64(2))), int64(1)},
		{"greatest ints", NewGreatest(NewLiteral(int64(3)), NewLiteral(int64(1)), NewLiteral(int64(2))), int64(3)},
		{"least skips null", NewLeast(NullLiteral(types.Long), NewLiteral(int64(5))), int64(5)},
		{"greatest skips null", NewGreatest(NewLiteral(int64(5)), NullLiteral(types.Long)), int64(5)},
		{"all null", NewLeast(NullLiteral(types.Long), NullLiteral(types.Long)), nil},
		{"greatest strings", NewGreatest(NewLiteral("a"), NewLiteral("c"), NewLiteral("b")), "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertBothEval(t, tt.expr, emptyRow(), tt.want)
		})
	}
}
