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
	"fmt"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// Literal is a compile-time constant. Value nil with any type is the typed
// NULL literal.
type Literal struct {
	leaf
	Value interface{}
	Type  types.DataType
}

// NewLiteral builds a literal, inferring the type from the Go value.
func NewLiteral(value interface{}) *Literal {
	switch value.(type) {
	case nil:
		return &Literal{Value: nil, Type: types.Null}
	case bool:
		return &Literal{Value: value, Type: types.Boolean}
	case int32:
		return &Literal{Value: value, Type: types.Integer}
	case int:
		return &Literal{Value: int64(value.(int)), Type: types.Long}
	case int64:
		return &Literal{Value: value, Type: types.Long}
	case float32:
		return &Literal{Value: value, Type: types.Float}
	case float64:
		return &Literal{Value: value, Type: types.Double}
	case string:
		return &Literal{Value: value, Type: types.String}
	case []byte:
		return &Literal{Value: value, Type: types.Binary}
	default:
		panic(fmt.Sprintf("unsupported literal type %T", value))
	}
}

// NewTypedLiteral builds a literal with an explicit type, used for Date and
// Timestamp values and typed NULLs.
func NewTypedLiteral(value interface{}, dt types.DataType) *Literal {
	return &Literal{Value: value, Type: dt}
}

// NullLiteral is a typed NULL.
func NullLiteral(dt types.DataType) *Literal {
	return &Literal{Value: nil, Type: dt}
}

func (l *Literal) DataType() types.DataType { return l.Type }
func (l *Literal) Nullable() bool           { return l.Value == nil }
func (l *Literal) Foldable() bool           { return true }

func (l *Literal) WithChildren([]Expression) Expression {
	return &Literal{Value: l.Value, Type: l.Type}
}

func (l *Literal) Eval(row.InternalRow) (interface{}, error) { return l.Value, nil }

func (l *Literal) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	if l.Value == nil {
		return &codegen.ExprCode{IsNull: codegen.TrueLiteral, Value: "nil"}, nil
	}
	// Constants go through the environment so the compiled path sees the
	// exact runtime representation the interpreter uses.
	name := ctx.AddConstant(l.Value)
	return &codegen.ExprCode{IsNull: codegen.FalseLiteral, Value: name}, nil
}

func (l *Literal) String() string {
	if l.Value == nil {
		return "null"
	}
	if l.Type == types.String {
		return fmt.Sprintf("%q", l.Value)
	}
	return fmt.Sprintf("%v", l.Value)
}
