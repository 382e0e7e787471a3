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

	"github.com/stretchr/testify/require"

	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

func strp(s string) *string { return &s }

func TestLike(t *testing.T) {
	like := func(s, pattern string) Expression {
		return NewLike(NewLiteral(s), NewLiteral(pattern), '\\')
	}
	tests := []struct {
		name string
		expr Expression
		want interface{}
	}{
		{"prefix", like("abc", "a%"), true},
		{"no match", like("abc", "b%"), false},
		{"underscore", like("hello", "h_llo"), true},
		{"exact", like("abc", "abc"), true},
		{"percent spans newline", like("a\nb", "a%b"), true},
		{"escaped percent", like("100%", `100\%`), true},
		{"escaped percent no match", like("1000", `100\%`), false},
		{"escaped escape", like(`a\b`, `a\\b`), true},
		{"regex metachars are literal", like("a.c", "a.c"), true},
		{"regex metachars not wildcards", like("abc", "a.c"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertBothEval(t, tt.expr, emptyRow(), tt.want)
		})
	}

	assertBothEval(t,
		NewLike(NullLiteral(types.String), NewLiteral("a%"), '\\'),
		emptyRow(), nil)
	assertBothEval(t,
		NewLike(NewLiteral("a"), NullLiteral(types.String), '\\'),
		emptyRow(), nil)
}

func TestLikeMalformedEscape(t *testing.T) {
	// The escape may only precede %, _ or itself.
	assertBothError(t,
		NewLike(NewLiteral("ab"), NewLiteral(`a\b`), '\\'),
		emptyRow(), ErrParse)
	assertBothError(t,
		NewLike(NewLiteral("a"), NewLiteral(`a\`), '\\'),
		emptyRow(), ErrParse)
}

func TestLikeNonFoldablePattern(t *testing.T) {
	e := NewLike(
		NewBoundReference(0, types.String, true),
		NewBoundReference(1, types.String, true), '\\')
	assertBothEval(t, e, row.RowOf("hello", "h%"), true)
	assertBothEval(t, e, row.RowOf("hello", "x%"), false)
	assertBothEval(t, e, row.RowOf("hello", nil), nil)
}

func TestRLike(t *testing.T) {
	assertBothEval(t,
		NewRLike(NewLiteral("hello"), NewLiteral("^h.*o$")),
		emptyRow(), true)
	assertBothEval(t,
		NewRLike(NewLiteral("hello"), NewLiteral("^x")),
		emptyRow(), false)
	assertBothError(t,
		NewRLike(NewLiteral("a"), NewLiteral("(")),
		emptyRow(), ErrParse)
}

func TestMultiLike(t *testing.T) {
	value := NewBoundReference(0, types.String, true)
	foo := row.RowOf("foo")

	tests := []struct {
		name     string
		build    func(Expression, []*string, byte) (*MultiLike, error)
		patterns []*string
		want     interface{}
	}{
		{"all match", NewLikeAll, []*string{strp("f%"), strp("%o")}, true},
		{"all one miss", NewLikeAll, []*string{strp("f%"), strp("x%")}, false},
		{"all null undecided", NewLikeAll, []*string{strp("f%"), nil}, nil},
		// A decisive miss is reached after the NULL and still wins.
		{"all miss beats null", NewLikeAll, []*string{nil, strp("x%")}, false},
		{"any match", NewLikeAny, []*string{strp("x%"), strp("f%")}, true},
		{"any null undecided", NewLikeAny, []*string{strp("x%"), nil}, nil},
		{"any all miss", NewLikeAny, []*string{strp("x%"), strp("y%")}, false},
		{"any match beats null", NewLikeAny, []*string{nil, strp("f%")}, true},
		{"not all", NewNotLikeAll, []*string{strp("x%"), strp("y%")}, true},
		{"not all one match", NewNotLikeAll, []*string{strp("x%"), strp("f%")}, false},
		{"not any", NewNotLikeAny, []*string{strp("f%"), strp("x%")}, true},
		{"not any all match", NewNotLikeAny, []*string{strp("f%"), strp("%o")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.build(value, tt.patterns, '\\')
			require.NoError(t, err)
			assertBothEval(t, e, foo, tt.want)
		})
	}

	e, err := NewLikeAll(value, []*string{strp("f%")}, '\\')
	require.NoError(t, err)
	assertBothEval(t, e, row.RowOf(nil), nil)
}

func TestMultiLikeRejectsMalformedPattern(t *testing.T) {
	_, err := NewLikeAny(
		NewBoundReference(0, types.String, true),
		[]*string{strp(`a\b`)}, '\\')
	require.Error(t, err)
}

func TestRegExpExtract(t *testing.T) {
	extract := func(s, pattern string, idx int32) Expression {
		return NewRegExpExtract(NewLiteral(s), NewLiteral(pattern), NewLiteral(idx))
	}

	assertBothEval(t, extract("100-200", `(\d+)-(\d+)`, 1), emptyRow(), "100")
	assertBothEval(t, extract("100-200", `(\d+)-(\d+)`, 2), emptyRow(), "200")
	assertBothEval(t, extract("100-200", `(\d+)-(\d+)`, 0), emptyRow(), "100-200")
	// No match yields the empty string, not NULL.
	assertBothEval(t, extract("abc", `(\d+)`, 1), emptyRow(), "")
	// A group index out of range is an error regardless of mode.
	assertBothError(t, extract("100-200", `(\d+)-(\d+)`, 3), emptyRow(), ErrInvalidIndex)
	assertBothError(t, extract("100-200", `(\d+)-(\d+)`, -1), emptyRow(), ErrInvalidIndex)
}

func TestRegExpReplace(t *testing.T) {
	replace := func(s, pattern, repl string, pos int32) Expression {
		return NewRegExpReplace(
			NewLiteral(s), NewLiteral(pattern), NewLiteral(repl), NewLiteral(pos))
	}

	assertBothEval(t, replace("hello world", "o", "0", 1), emptyRow(), "hell0 w0rld")
	// The prefix before the start position is untouched.
	assertBothEval(t, replace("hello world", "o", "0", 6), emptyRow(), "hello w0rld")
	assertBothEval(t, replace("hello", "x", "y", 1), emptyRow(), "hello")
	assertBothEval(t, replace("abc", "(a)(b)", "$2$1", 1), emptyRow(), "bac")
	// A start past the end leaves the subject alone.
	assertBothEval(t, replace("abc", "a", "x", 10), emptyRow(), "abc")

	assertBothError(t, replace("abc", "a", "x", 0), emptyRow(), ErrInvalidIndex)
	assertBothEval(t,
		NewRegExpReplace(NullLiteral(types.String), NewLiteral("a"),
			NewLiteral("x"), NewLiteral(int32(1))),
		emptyRow(), nil)
}
