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
	"testing"

	"github.com/rulego/exprsql/types"
)

// ansiBoom raises under ANSI mode whenever it is evaluated, which makes it a
// tripwire for branches that must stay untaken.
func ansiBoom() Expression {
	return NewArithmetic(OpDivide, NewLiteral(int64(1)), NewLiteral(int64(0)), true)
}

func TestIf(t *testing.T) {
	one := NewLiteral(int64(1))
	two := NewLiteral(int64(2))

	assertBothEval(t, NewIf(NewLiteral(true), one, two), emptyRow(), int64(1))
	assertBothEval(t, NewIf(NewLiteral(false), one, two), emptyRow(), int64(2))
	// A NULL predicate takes the false branch.
	assertBothEval(t, NewIf(NullLiteral(types.Boolean), one, two), emptyRow(), int64(2))
}

func TestIfUntakenBranchNeverRaises(t *testing.T) {
	one := NewLiteral(int64(1))

	assertBothEval(t, NewIf(NewLiteral(true), one, ansiBoom()), emptyRow(), int64(1))
	assertBothEval(t, NewIf(NewLiteral(false), ansiBoom(), one), emptyRow(), int64(1))
}

func TestCaseWhen(t *testing.T) {
	c := NewCaseWhen([]CaseBranch{
		{When: NewLiteral(false), Then: NewLiteral("a")},
		{When: NewLiteral(true), Then: NewLiteral("b")},
		{When: NewLiteral(true), Then: NewLiteral("c")},
	}, NewLiteral("z"))
	assertBothEval(t, c, emptyRow(), "b")

	noMatch := NewCaseWhen([]CaseBranch{
		{When: NewLiteral(false), Then: NewLiteral("a")},
	}, NewLiteral("z"))
	assertBothEval(t, noMatch, emptyRow(), "z")

	noElse := NewCaseWhen([]CaseBranch{
		{When: NewLiteral(false), Then: NewLiteral("a")},
		{When: NullLiteral(types.Boolean), Then: NewLiteral("b")},
	}, nil)
	assertBothEval(t, noElse, emptyRow(), nil)
}

func TestCaseWhenStopsAtTakenBranch(t *testing.T) {
	boomCond := NewLessThan(ansiBoom(), NewLiteral(int64(1)))
	c := NewCaseWhen([]CaseBranch{
		{When: NewLiteral(true), Then: NewLiteral(int64(7))},
		{When: boomCond, Then: ansiBoom()},
	}, ansiBoom())
	assertBothEval(t, c, emptyRow(), int64(7))
}

func TestCoalesce(t *testing.T) {
	null := NullLiteral(types.Long)

	assertBothEval(t, NewCoalesce(null, NewLiteral(int64(5))), emptyRow(), int64(5))
	assertBothEval(t, NewCoalesce(NewLiteral(int64(1)), NewLiteral(int64(2))), emptyRow(), int64(1))
	assertBothEval(t, NewCoalesce(null, null), emptyRow(), nil)
	// Arguments after the first non-null stay unevaluated.
	assertBothEval(t, NewCoalesce(NewLiteral(int64(1)), ansiBoom()), emptyRow(), int64(1))
}
