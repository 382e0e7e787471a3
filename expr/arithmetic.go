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

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// ArithmeticOp selects the operation of a BinaryArithmetic node.
type ArithmeticOp string

const (
	OpAdd       ArithmeticOp = "+"
	OpSubtract  ArithmeticOp = "-"
	OpMultiply  ArithmeticOp = "*"
	OpDivide    ArithmeticOp = "/"
	OpRemainder ArithmeticOp = "%"
)

// BinaryArithmetic is the null-intolerant family +, -, *, /, %. Both sides
// must share one numeric type; the result has the same type. Integral
// overflow wraps in lenient mode and fails with ErrOverflow when FailOnError
// (ANSI mode) is set. Division and remainder by zero yield NULL in lenient
// mode and ErrDivideByZero under ANSI.
type BinaryArithmetic struct {
	binary
	Op          ArithmeticOp
	FailOnError bool
}

// NewArithmetic builds an arithmetic node. failOnError carries the ANSI
// overflow policy captured at analysis time.
func NewArithmetic(op ArithmeticOp, left, right Expression, failOnError bool) *BinaryArithmetic {
	return &BinaryArithmetic{binary: binary{left, right}, Op: op, FailOnError: failOnError}
}

func NewAdd(left, right Expression) *BinaryArithmetic {
	return NewArithmetic(OpAdd, left, right, false)
}

func NewSubtract(left, right Expression) *BinaryArithmetic {
	return NewArithmetic(OpSubtract, left, right, false)
}

func NewMultiply(left, right Expression) *BinaryArithmetic {
	return NewArithmetic(OpMultiply, left, right, false)
}

func NewDivide(left, right Expression) *BinaryArithmetic {
	return NewArithmetic(OpDivide, left, right, false)
}

func NewRemainder(left, right Expression) *BinaryArithmetic {
	return NewArithmetic(OpRemainder, left, right, false)
}

func (e *BinaryArithmetic) DataType() types.DataType {
	if e.Left.DataType() == types.Null {
		return e.Right.DataType()
	}
	return e.Left.DataType()
}

func (e *BinaryArithmetic) Nullable() bool {
	// Division can produce NULL from non-null inputs in lenient mode.
	if (e.Op == OpDivide || e.Op == OpRemainder) && !e.FailOnError {
		return true
	}
	return e.binary.Nullable()
}

func (e *BinaryArithmetic) WithChildren(ch []Expression) Expression {
	return &BinaryArithmetic{binary: binary{ch[0], ch[1]}, Op: e.Op, FailOnError: e.FailOnError}
}

func (e *BinaryArithmetic) CheckInputDataTypes() types.TypeCheckResult {
	return sameTypeCheck(string(e.Op), e.Left, e.Right, types.NumericType)
}

func (e *BinaryArithmetic) core(args ...interface{}) (interface{}, error) {
	switch a := args[0].(type) {
	case int32:
		return arith32(e.Op, a, args[1].(int32), e.FailOnError)
	case int64:
		return arith64(e.Op, a, args[1].(int64), e.FailOnError)
	case float32:
		return arithFloat(e.Op, float64(a), float64(args[1].(float32)), true)
	case float64:
		return arithFloat(e.Op, a, args[1].(float64), false)
	default:
		return nil, overflowErr(string(e.Op))
	}
}

func (e *BinaryArithmetic) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *BinaryArithmetic) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "arith", e.Children(), e.core)
}

func (e *BinaryArithmetic) String() string {
	return "(" + e.Left.String() + " " + string(e.Op) + " " + e.Right.String() + ")"
}

func (e *BinaryArithmetic) canonicalTag() string { return string(e.Op) }

func arith32(op ArithmeticOp, a, b int32, failOnError bool) (interface{}, error) {
	switch op {
	case OpAdd, OpSubtract, OpMultiply:
		var wide int64
		switch op {
		case OpAdd:
			wide = int64(a) + int64(b)
		case OpSubtract:
			wide = int64(a) - int64(b)
		case OpMultiply:
			wide = int64(a) * int64(b)
		}
		if wide < math.MinInt32 || wide > math.MaxInt32 {
			if failOnError {
				return nil, overflowErr(string(op))
			}
		}
		return int32(wide), nil
	case OpDivide:
		if b == 0 {
			if failOnError {
				return nil, divideByZeroErr()
			}
			return nil, nil
		}
		if a == math.MinInt32 && b == -1 {
			if failOnError {
				return nil, overflowErr(string(op))
			}
			return int32(math.MinInt32), nil
		}
		return a / b, nil
	case OpRemainder:
		if b == 0 {
			if failOnError {
				return nil, divideByZeroErr()
			}
			return nil, nil
		}
		return a % b, nil
	}
	return nil, overflowErr(string(op))
}

func arith64(op ArithmeticOp, a, b int64, failOnError bool) (interface{}, error) {
	switch op {
	case OpAdd:
		r := a + b
		if failOnError && ((b > 0 && r < a) || (b < 0 && r > a)) {
			return nil, overflowErr(string(op))
		}
		return r, nil
	case OpSubtract:
		r := a - b
		if failOnError && ((b < 0 && r < a) || (b > 0 && r > a)) {
			return nil, overflowErr(string(op))
		}
		return r, nil
	case OpMultiply:
		r := a * b
		if failOnError && a != 0 && (r/a != b || (a == -1 && b == math.MinInt64)) {
			return nil, overflowErr(string(op))
		}
		return r, nil
	case OpDivide:
		if b == 0 {
			if failOnError {
				return nil, divideByZeroErr()
			}
			return nil, nil
		}
		if a == math.MinInt64 && b == -1 {
			if failOnError {
				return nil, overflowErr(string(op))
			}
			return int64(math.MinInt64), nil
		}
		return a / b, nil
	case OpRemainder:
		if b == 0 {
			if failOnError {
				return nil, divideByZeroErr()
			}
			return nil, nil
		}
		return a % b, nil
	}
	return nil, overflowErr(string(op))
}

func arithFloat(op ArithmeticOp, a, b float64, narrow bool) (interface{}, error) {
	var r float64
	switch op {
	case OpAdd:
		r = a + b
	case OpSubtract:
		r = a - b
	case OpMultiply:
		r = a * b
	case OpDivide:
		// IEEE semantics: x/0 is Inf or NaN, never an error.
		r = a / b
	case OpRemainder:
		r = math.Mod(a, b)
	}
	if narrow {
		return float32(r), nil
	}
	return r, nil
}

// UnaryMinus negates a numeric value. Negating the minimal integral value
// overflows: ANSI mode fails, lenient mode wraps.
type UnaryMinus struct {
	unary
	FailOnError bool
}

func NewUnaryMinus(child Expression, failOnError bool) *UnaryMinus {
	return &UnaryMinus{unary: unary{child}, FailOnError: failOnError}
}

func (e *UnaryMinus) DataType() types.DataType { return e.Child.DataType() }

func (e *UnaryMinus) WithChildren(ch []Expression) Expression {
	return &UnaryMinus{unary: unary{ch[0]}, FailOnError: e.FailOnError}
}

func (e *UnaryMinus) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("negative", e.Children(), types.NumericType)
}

func (e *UnaryMinus) core(args ...interface{}) (interface{}, error) {
	switch v := args[0].(type) {
	case int32:
		if v == math.MinInt32 && e.FailOnError {
			return nil, overflowErr("negative")
		}
		return -v, nil
	case int64:
		if v == math.MinInt64 && e.FailOnError {
			return nil, overflowErr("negative")
		}
		return -v, nil
	case float32:
		return -v, nil
	case float64:
		return -v, nil
	}
	return nil, overflowErr("negative")
}

func (e *UnaryMinus) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *UnaryMinus) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "neg", e.Children(), e.core)
}

func (e *UnaryMinus) String() string { return "(- " + e.Child.String() + ")" }

// Abs is the absolute value, with the same overflow policy as UnaryMinus.
type Abs struct {
	unary
	FailOnError bool
}

func NewAbs(child Expression, failOnError bool) *Abs {
	return &Abs{unary: unary{child}, FailOnError: failOnError}
}

func (e *Abs) DataType() types.DataType { return e.Child.DataType() }

func (e *Abs) WithChildren(ch []Expression) Expression {
	return &Abs{unary: unary{ch[0]}, FailOnError: e.FailOnError}
}

func (e *Abs) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("abs", e.Children(), types.NumericType)
}

func (e *Abs) core(args ...interface{}) (interface{}, error) {
	switch v := args[0].(type) {
	case int32:
		if v == math.MinInt32 && e.FailOnError {
			return nil, overflowErr("abs")
		}
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case int64:
		if v == math.MinInt64 && e.FailOnError {
			return nil, overflowErr("abs")
		}
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case float32:
		return float32(math.Abs(float64(v))), nil
	case float64:
		return math.Abs(v), nil
	}
	return nil, overflowErr("abs")
}

func (e *Abs) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *Abs) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "abs", e.Children(), e.core)
}

func (e *Abs) String() string { return "abs(" + e.Child.String() + ")" }

// Least returns the smallest non-null argument, NULL only when every
// argument is NULL. It is explicitly null-tolerant.
type Least struct{ variadic }

func NewLeast(args ...Expression) *Least { return &Least{variadic{args}} }

func (e *Least) DataType() types.DataType { return e.Args[0].DataType() }

func (e *Least) Nullable() bool {
	for _, a := range e.Args {
		if !a.Nullable() {
			return false
		}
	}
	return true
}

func (e *Least) WithChildren(ch []Expression) Expression { return &Least{variadic{ch}} }

func (e *Least) CheckInputDataTypes() types.TypeCheckResult {
	return checkExtremum("least", e.Args)
}

func (e *Least) Eval(r row.InternalRow) (interface{}, error) {
	return evalExtremum(r, e.Args, -1)
}

func (e *Least) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genCall(ctx, "least", e.Args, func(args ...interface{}) (interface{}, error) {
		return extremum(args, -1)
	})
}

func (e *Least) String() string { return "least" + argsString(e.Args) }

// Greatest mirrors Least for the largest argument.
type Greatest struct{ variadic }

func NewGreatest(args ...Expression) *Greatest { return &Greatest{variadic{args}} }

func (e *Greatest) DataType() types.DataType { return e.Args[0].DataType() }

func (e *Greatest) Nullable() bool {
	for _, a := range e.Args {
		if !a.Nullable() {
			return false
		}
	}
	return true
}

func (e *Greatest) WithChildren(ch []Expression) Expression { return &Greatest{variadic{ch}} }

func (e *Greatest) CheckInputDataTypes() types.TypeCheckResult {
	return checkExtremum("greatest", e.Args)
}

func (e *Greatest) Eval(r row.InternalRow) (interface{}, error) {
	return evalExtremum(r, e.Args, 1)
}

func (e *Greatest) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genCall(ctx, "greatest", e.Args, func(args ...interface{}) (interface{}, error) {
		return extremum(args, 1)
	})
}

func (e *Greatest) String() string { return "greatest" + argsString(e.Args) }

func checkExtremum(name string, args []Expression) types.TypeCheckResult {
	if len(args) < 2 {
		return types.TypeCheckFailuref("%s requires at least 2 arguments", name)
	}
	dt := args[0].DataType()
	if !types.IsOrdered(dt) {
		return types.TypeCheckFailuref("%s does not support ordering on %s", name, dt.SimpleString())
	}
	for _, a := range args[1:] {
		if a.DataType() != types.Null && !a.DataType().Equals(dt) {
			return types.TypeCheckFailuref("%s requires all arguments to have the same type", name)
		}
	}
	return types.TypeCheckSuccess
}

func evalExtremum(r row.InternalRow, args []Expression, sign int) (interface{}, error) {
	values := make([]interface{}, len(args))
	for i, a := range args {
		v, err := a.Eval(r)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return extremum(values, sign)
}

func extremum(values []interface{}, sign int) (interface{}, error) {
	var best interface{}
	for _, v := range values {
		if v == nil {
			continue
		}
		if best == nil {
			best = v
			continue
		}
		c, err := compareSameType(v, best)
		if err != nil {
			return nil, err
		}
		if c*sign > 0 {
			best = v
		}
	}
	return best, nil
}

func argsString(args []Expression) string {
	s := "("
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}
