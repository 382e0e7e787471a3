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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

func TestUpperLower(t *testing.T) {
	assertBothEval(t, NewUpper(NewLiteral("Hello"), language.English), emptyRow(), "HELLO")
	assertBothEval(t, NewLower(NewLiteral("Hello"), language.English), emptyRow(), "hello")
	assertBothEval(t, NewUpper(NullLiteral(types.String), language.English), emptyRow(), nil)

	// Locale-sensitive casing: Turkish maps I to dotless lowercase.
	assertBothEval(t, NewLower(NewLiteral("I"), language.Turkish), emptyRow(), "ı")
}

func TestLength(t *testing.T) {
	// Characters for strings, bytes for binary.
	assertBothEval(t, NewLength(NewLiteral("héllo")), emptyRow(), int32(5))
	assertBothEval(t, NewLength(NewLiteral([]byte("héllo"))), emptyRow(), int32(6))
	assertBothEval(t, NewLength(NewLiteral("")), emptyRow(), int32(0))
	assertBothEval(t, NewLength(NullLiteral(types.String)), emptyRow(), nil)
}

func TestConcat(t *testing.T) {
	assertBothEval(t,
		NewConcat(NewLiteral("a"), NewLiteral("b"), NewLiteral("c")),
		emptyRow(), "abc")
	// Concat is null-intolerant.
	assertBothEval(t,
		NewConcat(NewLiteral("a"), NullLiteral(types.String)),
		emptyRow(), nil)
}

func TestConcatWs(t *testing.T) {
	sep := NewLiteral(",")
	assertBothEval(t,
		NewConcatWs(sep, NewLiteral("a"), NewLiteral("b")),
		emptyRow(), "a,b")
	// NULL arguments are skipped, a NULL separator nulls the result.
	assertBothEval(t,
		NewConcatWs(sep, NewLiteral("a"), NullLiteral(types.String), NewLiteral("c")),
		emptyRow(), "a,c")
	assertBothEval(t,
		NewConcatWs(NullLiteral(types.String), NewLiteral("a")),
		emptyRow(), nil)
	assertBothEval(t, NewConcatWs(sep), emptyRow(), "")
}

// Wide argument lists cross the codegen split threshold and must still agree
// with the interpreter.
func TestConcatWsSplitsWideArgumentLists(t *testing.T) {
	args := make([]Expression, 80)
	parts := make([]string, 80)
	for i := range args {
		parts[i] = fmt.Sprintf("p%d", i)
		args[i] = NewLiteral(parts[i])
	}
	args[40] = NullLiteral(types.String)
	want := strings.Join(append(parts[:40:40], parts[41:]...), "|")

	assertBothEval(t, NewConcatWs(NewLiteral("|"), args...), emptyRow(), want)
}

func TestStringTrim(t *testing.T) {
	assertBothEval(t, NewStringTrim(NewLiteral("  hi  ")), emptyRow(), "hi")
	assertBothEval(t, NewStringTrimLeft(NewLiteral("  hi  ")), emptyRow(), "hi  ")
	assertBothEval(t, NewStringTrimRight(NewLiteral("  hi  ")), emptyRow(), "  hi")
	assertBothEval(t, NewStringTrim(NullLiteral(types.String)), emptyRow(), nil)
}

func TestStringTrimIdempotent(t *testing.T) {
	for _, s := range []string{"", "   ", " a b ", "a", "\ta "} {
		once, err := NewStringTrim(NewLiteral(s)).Eval(emptyRow())
		require.NoError(t, err)
		twice, err := NewStringTrim(NewStringTrim(NewLiteral(s))).Eval(emptyRow())
		require.NoError(t, err)
		require.Equal(t, once, twice, "trim not idempotent for %q", s)
	}
}

func TestSubstring(t *testing.T) {
	sub := func(s string, pos, length int32) Expression {
		return NewSubstring(NewLiteral(s), NewLiteral(pos), NewLiteral(length))
	}
	tests := []struct {
		expr Expression
		want interface{}
	}{
		{sub("hello", 2, 3), "ell"},
		{sub("hello", 1, 99), "hello"},
		{sub("hello", -3, 2), "ll"},
		{sub("hello", -99, 2), "he"},
		{sub("hello", 6, 1), ""},
		{sub("hello", 2, 0), ""},
		{sub("héllo", 2, 2), "él"},
	}
	for _, tt := range tests {
		assertBothEval(t, tt.expr, emptyRow(), tt.want)
	}
	assertBothEval(t,
		NewSubstring(NullLiteral(types.String), NewLiteral(int32(1)), NewLiteral(int32(1))),
		emptyRow(), nil)
}

func TestBase64RoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x10, 0xff, 0x42}
	encoded := NewBase64(NewLiteral(payload))
	assertBothEval(t, NewUnBase64(encoded, false), emptyRow(), payload)
	assertBothEval(t, NewBase64(NewLiteral([]byte("any"))), emptyRow(), "YW55")
}

func TestUnBase64Malformed(t *testing.T) {
	bad := NewLiteral("not base64!!!")
	assertBothEval(t, NewUnBase64(bad, false), emptyRow(), nil)

	_, err := NewUnBase64(bad, true).Eval(emptyRow())
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	assertBothEval(t,
		NewDecode(NewLiteral([]byte("héllo")), NewLiteral("UTF-8")),
		emptyRow(), "héllo")
	assertBothEval(t,
		NewDecode(NewLiteral([]byte{0xe9}), NewLiteral("ISO-8859-1")),
		emptyRow(), "é")
	assertBothEval(t,
		NewDecode(NewLiteral([]byte{0x00, 0x68, 0x00, 0x69}), NewLiteral("UTF-16BE")),
		emptyRow(), "hi")
}

func TestDecodeUnsupportedCharsetIsAlwaysFatal(t *testing.T) {
	e := NewDecode(NewLiteral([]byte("x")), NewLiteral("KOI8-R"))
	assertBothError(t, e, emptyRow(), ErrUnsupportedCharset)
}

func TestStringTranslate(t *testing.T) {
	tr := func(src, from, to string) Expression {
		return NewStringTranslate(NewLiteral(src), NewLiteral(from), NewLiteral(to))
	}
	tests := []struct {
		expr Expression
		want interface{}
	}{
		// Characters beyond the to-set are deleted.
		{tr("abcba", "ab", "1"), "1c1"},
		{tr("hello", "el", "ip"), "hippo"},
		{tr("hello", "", ""), "hello"},
		// The first occurrence in the from-set wins for duplicates.
		{tr("aaa", "aa", "bc"), "bbb"},
	}
	for _, tt := range tests {
		assertBothEval(t, tt.expr, emptyRow(), tt.want)
	}
}

func TestStringTranslateNonFoldableSets(t *testing.T) {
	e := NewStringTranslate(
		NewBoundReference(0, types.String, true),
		NewBoundReference(1, types.String, true),
		NewBoundReference(2, types.String, true))
	assertBothEval(t, e, row.RowOf("abc", "b", "x"), "axc")
	assertBothEval(t, e, row.RowOf("abc", nil, "x"), nil)
}

func TestElt(t *testing.T) {
	a, b := NewLiteral("a"), NewLiteral("b")
	idx := func(n int32) Expression { return NewLiteral(n) }

	assertBothEval(t, NewElt(idx(1), false, a, b), emptyRow(), "a")
	assertBothEval(t, NewElt(idx(2), false, a, b), emptyRow(), "b")
	assertBothEval(t, NewElt(NullLiteral(types.Integer), false, a, b), emptyRow(), nil)

	// Out of range: NULL in lenient mode, an error under ANSI.
	assertBothEval(t, NewElt(idx(0), false, a, b), emptyRow(), nil)
	assertBothEval(t, NewElt(idx(3), false, a, b), emptyRow(), nil)
	assertBothError(t, NewElt(idx(3), true, a, b), emptyRow(), ErrInvalidIndex)
}

func TestEltTakenInputOnly(t *testing.T) {
	boom := NewLessThan(ansiBoom(), NewLiteral(int64(1)))
	e := NewElt(NewLiteral(int32(1)), true, NewLiteral(true), boom)
	assertBothEval(t, e, emptyRow(), true)
}

func TestFormatString(t *testing.T) {
	assertBothEval(t,
		NewFormatString(NewLiteral("%s=%d"), NewLiteral("a"), NewLiteral(int64(7))),
		emptyRow(), "a=7")
	// NULL arguments render as "null"; a NULL format is NULL.
	assertBothEval(t,
		NewFormatString(NewLiteral("%s!"), NullLiteral(types.String)),
		emptyRow(), "null!")
	assertBothEval(t,
		NewFormatString(NullLiteral(types.String), NewLiteral("a")),
		emptyRow(), nil)
}
