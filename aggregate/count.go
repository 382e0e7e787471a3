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

// Count counts the rows where every argument is non-null. count() with no
// arguments counts all rows; it is only legal when the zero-argument form is
// enabled, count(*) should be rewritten to count(1) otherwise.
type Count struct {
	children []expr.Expression
}

// NewCount builds a count aggregate over the given bound argument
// expressions.
func NewCount(allowZeroArg bool, children ...expr.Expression) (*Count, error) {
	if len(children) == 0 && !allowZeroArg {
		return nil, errors.New("count requires at least one argument, use count(1) for count(*)")
	}
	return &Count{children: children}, nil
}

func (a *Count) Name() string             { return "count" }
func (a *Count) DataType() types.DataType { return types.Long }
func (a *Count) Nullable() bool           { return false }
func (a *Count) BufferWidth() int         { return 1 }

func (a *Count) InitialValues() []expr.Expression {
	return []expr.Expression{expr.NewLiteral(int64(0))}
}

func (a *Count) UpdateExpressions() []expr.Expression {
	count := bufferRef(0, types.Long)
	bumped := expr.NewAdd(count, expr.NewLiteral(int64(1)))
	if len(a.children) == 0 {
		return []expr.Expression{bumped}
	}
	var allSet expr.Expression
	for _, c := range a.children {
		notNull := expr.NewIsNotNull(shiftReferences(c, a.BufferWidth()))
		if allSet == nil {
			allSet = notNull
		} else {
			allSet = expr.NewAnd(allSet, notNull)
		}
	}
	return []expr.Expression{expr.NewIf(allSet, bumped, count)}
}

func (a *Count) MergeExpressions() []expr.Expression {
	return []expr.Expression{
		expr.NewAdd(bufferRef(0, types.Long), bufferRef(1, types.Long)),
	}
}

func (a *Count) EvaluateExpression() expr.Expression {
	return bufferRef(0, types.Long)
}
