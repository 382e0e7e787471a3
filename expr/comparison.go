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
	"bytes"

	"github.com/pkg/errors"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// ComparisonOp selects the operation of a BinaryComparison node.
type ComparisonOp string

const (
	OpEqualTo            ComparisonOp = "="
	OpLessThan           ComparisonOp = "<"
	OpLessThanOrEqual    ComparisonOp = "<="
	OpGreaterThan        ComparisonOp = ">"
	OpGreaterThanOrEqual ComparisonOp = ">="
)

// compareSameType orders two non-nil values of the same runtime type.
func compareSameType(a, b interface{}) (int, error) {
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0, nil
		case !av:
			return -1, nil
		default:
			return 1, nil
		}
	case int32:
		return cmpOrdered(av, b.(int32)), nil
	case int64:
		return cmpOrdered(av, b.(int64)), nil
	case float32:
		return cmpOrdered(av, b.(float32)), nil
	case float64:
		return cmpOrdered(av, b.(float64)), nil
	case string:
		return cmpOrdered(av, b.(string)), nil
	case []byte:
		return bytes.Compare(av, b.([]byte)), nil
	default:
		return 0, errors.Errorf("unordered type %T", a)
	}
}

func cmpOrdered[T int32 | int64 | float32 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// equalValues is shared by =, IN and the canonical equality paths.
func equalValues(a, b interface{}) bool {
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ab, bb)
	}
	return a == b
}

// BinaryComparison is the null-intolerant family =, <, <=, >, >=.
type BinaryComparison struct {
	binary
	Op ComparisonOp
}

func NewComparison(op ComparisonOp, left, right Expression) *BinaryComparison {
	return &BinaryComparison{binary: binary{left, right}, Op: op}
}

func NewEqualTo(left, right Expression) *BinaryComparison {
	return NewComparison(OpEqualTo, left, right)
}

func NewLessThan(left, right Expression) *BinaryComparison {
	return NewComparison(OpLessThan, left, right)
}

func NewLessThanOrEqual(left, right Expression) *BinaryComparison {
	return NewComparison(OpLessThanOrEqual, left, right)
}

func NewGreaterThan(left, right Expression) *BinaryComparison {
	return NewComparison(OpGreaterThan, left, right)
}

func NewGreaterThanOrEqual(left, right Expression) *BinaryComparison {
	return NewComparison(OpGreaterThanOrEqual, left, right)
}

func (e *BinaryComparison) DataType() types.DataType { return types.Boolean }

func (e *BinaryComparison) WithChildren(ch []Expression) Expression {
	return &BinaryComparison{binary: binary{ch[0], ch[1]}, Op: e.Op}
}

func (e *BinaryComparison) CheckInputDataTypes() types.TypeCheckResult {
	lt, rt := e.Left.DataType(), e.Right.DataType()
	if lt != types.Null && rt != types.Null && !lt.Equals(rt) {
		return types.TypeCheckFailuref("%s requires both sides to have the same type, got %s and %s",
			string(e.Op), lt.SimpleString(), rt.SimpleString())
	}
	if e.Op != OpEqualTo && lt != types.Null && !types.IsOrdered(lt) {
		return types.TypeCheckFailuref("%s does not support ordering on %s",
			string(e.Op), lt.SimpleString())
	}
	return types.TypeCheckSuccess
}

func (e *BinaryComparison) core(args ...interface{}) (interface{}, error) {
	if e.Op == OpEqualTo {
		return equalValues(args[0], args[1]), nil
	}
	c, err := compareSameType(args[0], args[1])
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case OpLessThan:
		return c < 0, nil
	case OpLessThanOrEqual:
		return c <= 0, nil
	case OpGreaterThan:
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

func (e *BinaryComparison) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *BinaryComparison) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "cmp", e.Children(), e.core)
}

func (e *BinaryComparison) String() string {
	return "(" + e.Left.String() + " " + string(e.Op) + " " + e.Right.String() + ")"
}

func (e *BinaryComparison) canonicalTag() string { return string(e.Op) }

// EqualNullSafe is <=>: never NULL, treats two NULLs as equal and NULL
// versus a value as unequal.
type EqualNullSafe struct{ binary }

func NewEqualNullSafe(left, right Expression) *EqualNullSafe {
	return &EqualNullSafe{binary{left, right}}
}

func (e *EqualNullSafe) DataType() types.DataType { return types.Boolean }
func (e *EqualNullSafe) Nullable() bool           { return false }

func (e *EqualNullSafe) WithChildren(ch []Expression) Expression {
	return &EqualNullSafe{binary{ch[0], ch[1]}}
}

func (e *EqualNullSafe) CheckInputDataTypes() types.TypeCheckResult {
	lt, rt := e.Left.DataType(), e.Right.DataType()
	if lt != types.Null && rt != types.Null && !lt.Equals(rt) {
		return types.TypeCheckFailuref("<=> requires both sides to have the same type, got %s and %s",
			lt.SimpleString(), rt.SimpleString())
	}
	return types.TypeCheckSuccess
}

func (e *EqualNullSafe) core(args ...interface{}) (interface{}, error) {
	a, b := args[0], args[1]
	if a == nil || b == nil {
		return a == nil && b == nil, nil
	}
	return equalValues(a, b), nil
}

func (e *EqualNullSafe) Eval(r row.InternalRow) (interface{}, error) {
	a, err := e.Left.Eval(r)
	if err != nil {
		return nil, err
	}
	b, err := e.Right.Eval(r)
	if err != nil {
		return nil, err
	}
	return e.core(a, b)
}

func (e *EqualNullSafe) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genCall(ctx, "eqns", e.Children(), e.core)
}

func (e *EqualNullSafe) String() string {
	return "(" + e.Left.String() + " <=> " + e.Right.String() + ")"
}
