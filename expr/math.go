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

// Sqrt is the square root over double; a negative input yields NaN under
// IEEE semantics.
type Sqrt struct{ unary }

func NewSqrt(child Expression) *Sqrt { return &Sqrt{unary{child}} }

func (e *Sqrt) DataType() types.DataType { return types.Double }

func (e *Sqrt) WithChildren(ch []Expression) Expression { return &Sqrt{unary{ch[0]}} }

func (e *Sqrt) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("sqrt", e.Children(), types.ConcreteType{Type: types.Double})
}

func sqrtCore(args ...interface{}) (interface{}, error) {
	return math.Sqrt(args[0].(float64)), nil
}

func (e *Sqrt) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), sqrtCore)
}

func (e *Sqrt) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "sqrt", e.Children(), sqrtCore)
}

func (e *Sqrt) String() string { return "sqrt(" + e.Child.String() + ")" }
