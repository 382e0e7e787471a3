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
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// Upper converts to upper case under the session locale.
type Upper struct {
	unary
	Tag language.Tag
}

func NewUpper(child Expression, tag language.Tag) *Upper {
	return &Upper{unary: unary{child}, Tag: tag}
}

func (e *Upper) DataType() types.DataType { return types.String }

func (e *Upper) WithChildren(ch []Expression) Expression {
	return &Upper{unary: unary{ch[0]}, Tag: e.Tag}
}

func (e *Upper) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("upper", e.Children(), types.ConcreteType{Type: types.String})
}

func (e *Upper) core(args ...interface{}) (interface{}, error) {
	return cases.Upper(e.Tag).String(args[0].(string)), nil
}

func (e *Upper) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *Upper) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "upper", e.Children(), e.core)
}

func (e *Upper) String() string { return "upper(" + e.Child.String() + ")" }

// Lower converts to lower case under the session locale.
type Lower struct {
	unary
	Tag language.Tag
}

func NewLower(child Expression, tag language.Tag) *Lower {
	return &Lower{unary: unary{child}, Tag: tag}
}

func (e *Lower) DataType() types.DataType { return types.String }

func (e *Lower) WithChildren(ch []Expression) Expression {
	return &Lower{unary: unary{ch[0]}, Tag: e.Tag}
}

func (e *Lower) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("lower", e.Children(), types.ConcreteType{Type: types.String})
}

func (e *Lower) core(args ...interface{}) (interface{}, error) {
	return cases.Lower(e.Tag).String(args[0].(string)), nil
}

func (e *Lower) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *Lower) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "lower", e.Children(), e.core)
}

func (e *Lower) String() string { return "lower(" + e.Child.String() + ")" }

// Length counts characters of a string or bytes of a binary value.
type Length struct{ unary }

func NewLength(child Expression) *Length { return &Length{unary{child}} }

func (e *Length) DataType() types.DataType { return types.Integer }

func (e *Length) WithChildren(ch []Expression) Expression { return &Length{unary{ch[0]}} }

func (e *Length) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("length", e.Children(), types.StringOrBinary)
}

func lengthCore(args ...interface{}) (interface{}, error) {
	switch v := args[0].(type) {
	case string:
		return int32(utf8.RuneCountInString(v)), nil
	case []byte:
		return int32(len(v)), nil
	}
	return nil, errors.Errorf("length: unsupported type %T", args[0])
}

func (e *Length) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), lengthCore)
}

func (e *Length) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "length", e.Children(), lengthCore)
}

func (e *Length) String() string { return "length(" + e.Child.String() + ")" }

// Concat joins strings and is null-intolerant: one NULL input nulls the
// whole result.
type Concat struct{ variadic }

func NewConcat(args ...Expression) *Concat { return &Concat{variadic{args}} }

func (e *Concat) DataType() types.DataType { return types.String }

func (e *Concat) WithChildren(ch []Expression) Expression { return &Concat{variadic{ch}} }

func (e *Concat) CheckInputDataTypes() types.TypeCheckResult {
	for i, a := range e.Args {
		if !(types.ConcreteType{Type: types.String}).AcceptsType(a.DataType()) {
			return types.TypeCheckFailuref("concat argument %d requires string, got %s",
				i+1, a.DataType().SimpleString())
		}
	}
	return types.TypeCheckSuccess
}

func concatCore(args ...interface{}) (interface{}, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.(string))
	}
	return b.String(), nil
}

func (e *Concat) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Args, concatCore)
}

func (e *Concat) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "concat", e.Args, concatCore)
}

func (e *Concat) String() string { return "concat" + argsString(e.Args) }

// ConcatWs joins with a separator, skipping NULL arguments. Only a NULL
// separator makes the result NULL. Long argument lists split into chunked
// sub-programs with the partial result folded across chunk boundaries.
type ConcatWs struct {
	Sep  Expression
	Args []Expression
}

func NewConcatWs(sep Expression, args ...Expression) *ConcatWs {
	return &ConcatWs{Sep: sep, Args: args}
}

func (e *ConcatWs) Children() []Expression {
	return append([]Expression{e.Sep}, e.Args...)
}

func (e *ConcatWs) WithChildren(ch []Expression) Expression {
	return &ConcatWs{Sep: ch[0], Args: ch[1:]}
}

func (e *ConcatWs) DataType() types.DataType { return types.String }

func (e *ConcatWs) Nullable() bool { return e.Sep.Nullable() }

func (e *ConcatWs) Foldable() bool {
	for _, c := range e.Children() {
		if !c.Foldable() {
			return false
		}
	}
	return true
}

func (e *ConcatWs) Deterministic() bool {
	for _, c := range e.Children() {
		if !c.Deterministic() {
			return false
		}
	}
	return true
}

func (e *ConcatWs) CheckInputDataTypes() types.TypeCheckResult {
	for i, c := range e.Children() {
		if !(types.ConcreteType{Type: types.String}).AcceptsType(c.DataType()) {
			return types.TypeCheckFailuref("concat_ws argument %d requires string, got %s",
				i+1, c.DataType().SimpleString())
		}
	}
	return types.TypeCheckSuccess
}

func (e *ConcatWs) Eval(r row.InternalRow) (interface{}, error) {
	sep, err := e.Sep.Eval(r)
	if err != nil {
		return nil, err
	}
	if sep == nil {
		return nil, nil
	}
	parts := make([]string, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := a.Eval(r)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		parts = append(parts, v.(string))
	}
	return strings.Join(parts, sep.(string)), nil
}

func (e *ConcatWs) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	sec, err := genChildCode(ctx, e.Sep)
	if err != nil {
		return nil, err
	}
	// Chunked splitting: each chunk is one sub-program yielding the chunk's
	// non-null parts, folded into the accumulated result in order.
	chunkSize := ctx.SplitThreshold()
	var chunks [][]*vm.Program
	for start := 0; start < len(e.Args); start += chunkSize {
		end := start + chunkSize
		if end > len(e.Args) {
			end = len(e.Args)
		}
		var chunk []*vm.Program
		for _, a := range e.Args[start:end] {
			restore := ctx.NewSubexprScope()
			aec, err := a.GenCode(ctx)
			restore()
			if err != nil {
				return nil, err
			}
			prog, err := ctx.CompileFragment(aec)
			if err != nil {
				return nil, err
			}
			chunk = append(chunk, prog)
		}
		chunks = append(chunks, chunk)
	}
	join := ctx.RegisterFunc("concatws", func(args ...interface{}) (interface{}, error) {
		sep := args[0].(string)
		var parts []string
		for _, chunk := range chunks {
			for _, prog := range chunk {
				v, err := ctx.RunFragment(prog)
				if err != nil {
					return nil, err
				}
				if v == nil {
					continue
				}
				parts = append(parts, v.(string))
			}
		}
		return strings.Join(parts, sep), nil
	})
	v := ctx.FreshName("v")
	n := ctx.FreshName("n")
	stmts := append([]string{}, sec.Stmts...)
	if sec.IsNull == codegen.FalseLiteral {
		stmts = append(stmts, fmt.Sprintf("let %s = %s(%s)", v, join, sec.Value))
	} else {
		stmts = append(stmts, fmt.Sprintf("let %s = %s ? nil : %s(%s)", v, sec.IsNull, join, sec.Value))
	}
	stmts = append(stmts, fmt.Sprintf("let %s = %s == nil", n, v))
	return &codegen.ExprCode{Stmts: stmts, IsNull: n, Value: v}, nil
}

func (e *ConcatWs) String() string {
	return "concat_ws(" + e.Sep.String() + ", " + strings.TrimPrefix(argsString(e.Args), "(")
}

// TrimSide selects which end StringTrim operates on.
type TrimSide int

const (
	TrimBoth TrimSide = iota
	TrimLeft
	TrimRight
)

// StringTrim removes leading/trailing spaces (or an explicit cutset). Trim
// is idempotent: trim(trim(s)) == trim(s).
type StringTrim struct {
	unary
	Side   TrimSide
	Cutset string
}

func NewStringTrim(child Expression) *StringTrim {
	return &StringTrim{unary: unary{child}, Side: TrimBoth, Cutset: " "}
}

func NewStringTrimLeft(child Expression) *StringTrim {
	return &StringTrim{unary: unary{child}, Side: TrimLeft, Cutset: " "}
}

func NewStringTrimRight(child Expression) *StringTrim {
	return &StringTrim{unary: unary{child}, Side: TrimRight, Cutset: " "}
}

func (e *StringTrim) DataType() types.DataType { return types.String }

func (e *StringTrim) WithChildren(ch []Expression) Expression {
	return &StringTrim{unary: unary{ch[0]}, Side: e.Side, Cutset: e.Cutset}
}

func (e *StringTrim) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("trim", e.Children(), types.ConcreteType{Type: types.String})
}

func (e *StringTrim) core(args ...interface{}) (interface{}, error) {
	s := args[0].(string)
	switch e.Side {
	case TrimLeft:
		return strings.TrimLeft(s, e.Cutset), nil
	case TrimRight:
		return strings.TrimRight(s, e.Cutset), nil
	default:
		return strings.Trim(s, e.Cutset), nil
	}
}

func (e *StringTrim) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *StringTrim) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "trim", e.Children(), e.core)
}

func (e *StringTrim) String() string {
	switch e.Side {
	case TrimLeft:
		return "ltrim(" + e.Child.String() + ")"
	case TrimRight:
		return "rtrim(" + e.Child.String() + ")"
	default:
		return "trim(" + e.Child.String() + ")"
	}
}

func (e *StringTrim) canonicalTag() string {
	return fmt.Sprintf("trim:%d:%s", e.Side, e.Cutset)
}

// Substring extracts a 1-based substring; a negative position counts from
// the end, as in SQL.
type Substring struct{ ternary }

func NewSubstring(str, pos, length Expression) *Substring {
	return &Substring{ternary{str, pos, length}}
}

func (e *Substring) DataType() types.DataType { return types.String }

func (e *Substring) WithChildren(ch []Expression) Expression {
	return &Substring{ternary{ch[0], ch[1], ch[2]}}
}

func (e *Substring) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("substring", e.Children(),
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.Integer},
		types.ConcreteType{Type: types.Integer})
}

func substringCore(args ...interface{}) (interface{}, error) {
	runes := []rune(args[0].(string))
	pos := int(args[1].(int32))
	length := int(args[2].(int32))
	n := len(runes)
	start := 0
	switch {
	case pos > 0:
		start = pos - 1
	case pos < 0:
		start = n + pos
	}
	if start < 0 {
		start = 0
	}
	if start >= n || length <= 0 {
		return "", nil
	}
	end := start + length
	if end > n {
		end = n
	}
	return string(runes[start:end]), nil
}

func (e *Substring) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), substringCore)
}

func (e *Substring) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "substr", e.Children(), substringCore)
}

func (e *Substring) String() string {
	return fmt.Sprintf("substring(%s, %s, %s)", e.First, e.Second, e.Third)
}

// Base64 encodes binary data to its base64 text form.
type Base64 struct{ unary }

func NewBase64(child Expression) *Base64 { return &Base64{unary{child}} }

func (e *Base64) DataType() types.DataType { return types.String }

func (e *Base64) WithChildren(ch []Expression) Expression { return &Base64{unary{ch[0]}} }

func (e *Base64) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("base64", e.Children(), types.ConcreteType{Type: types.Binary})
}

func base64Core(args ...interface{}) (interface{}, error) {
	return base64.StdEncoding.EncodeToString(args[0].([]byte)), nil
}

func (e *Base64) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), base64Core)
}

func (e *Base64) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "b64", e.Children(), base64Core)
}

func (e *Base64) String() string { return "base64(" + e.Child.String() + ")" }

// UnBase64 decodes base64 text. Malformed input is NULL in lenient mode and
// an error when FailOnError is set.
type UnBase64 struct {
	unary
	FailOnError bool
}

func NewUnBase64(child Expression, failOnError bool) *UnBase64 {
	return &UnBase64{unary: unary{child}, FailOnError: failOnError}
}

func (e *UnBase64) DataType() types.DataType { return types.Binary }
func (e *UnBase64) Nullable() bool           { return true }

func (e *UnBase64) WithChildren(ch []Expression) Expression {
	return &UnBase64{unary: unary{ch[0]}, FailOnError: e.FailOnError}
}

func (e *UnBase64) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("unbase64", e.Children(), types.ConcreteType{Type: types.String})
}

func (e *UnBase64) core(args ...interface{}) (interface{}, error) {
	b, err := base64.StdEncoding.DecodeString(args[0].(string))
	if err != nil {
		if e.FailOnError {
			return nil, errors.Wrap(err, "unbase64")
		}
		return nil, nil
	}
	return b, nil
}

func (e *UnBase64) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *UnBase64) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "unb64", e.Children(), e.core)
}

func (e *UnBase64) String() string { return "unbase64(" + e.Child.String() + ")" }

// Decode converts binary data to a string in the named charset. An
// unsupported charset is a fatal error with no lenient form.
type Decode struct{ binary }

func NewDecode(bin, charset Expression) *Decode { return &Decode{binary{bin, charset}} }

func (e *Decode) DataType() types.DataType { return types.String }

func (e *Decode) WithChildren(ch []Expression) Expression {
	return &Decode{binary{ch[0], ch[1]}}
}

func (e *Decode) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("decode", e.Children(),
		types.ConcreteType{Type: types.Binary},
		types.ConcreteType{Type: types.String})
}

func decodeCore(args ...interface{}) (interface{}, error) {
	data := args[0].([]byte)
	charset := strings.ToUpper(args[1].(string))
	switch charset {
	case "UTF-8", "UTF8":
		return string(data), nil
	case "US-ASCII", "ASCII":
		return string(data), nil
	case "ISO-8859-1", "LATIN1":
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, errors.Wrap(err, "decode iso-8859-1")
		}
		return string(out), nil
	case "UTF-16BE":
		out, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
		if err != nil {
			return nil, errors.Wrap(err, "decode utf-16be")
		}
		return string(out), nil
	case "UTF-16LE":
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
		if err != nil {
			return nil, errors.Wrap(err, "decode utf-16le")
		}
		return string(out), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedCharset, "%s", charset)
	}
}

func (e *Decode) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), decodeCore)
}

func (e *Decode) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "decode", e.Children(), decodeCore)
}

func (e *Decode) String() string {
	return fmt.Sprintf("decode(%s, %s)", e.Left, e.Right)
}

// StringTranslate replaces characters of the source by position pairing the
// from and to sets; from-characters beyond the to set are deleted. When both
// sets are foldable the dictionary builds once and is reused for every row.
type StringTranslate struct {
	ternary
	dict map[rune]rune // cached when From/To are foldable
}

func NewStringTranslate(src, from, to Expression) *StringTranslate {
	return &StringTranslate{ternary: ternary{src, from, to}}
}

func (e *StringTranslate) DataType() types.DataType { return types.String }

func (e *StringTranslate) WithChildren(ch []Expression) Expression {
	return &StringTranslate{ternary: ternary{ch[0], ch[1], ch[2]}}
}

func (e *StringTranslate) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("translate", e.Children(),
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.String})
}

func buildTranslateDict(from, to string) map[rune]rune {
	dict := make(map[rune]rune, len(from))
	toRunes := []rune(to)
	for i, f := range []rune(from) {
		if _, ok := dict[f]; ok {
			continue
		}
		if i < len(toRunes) {
			dict[f] = toRunes[i]
		} else {
			dict[f] = -1 // delete
		}
	}
	return dict
}

func translateWith(dict map[rune]rune, src string) string {
	var b strings.Builder
	for _, r := range src {
		t, ok := dict[r]
		if !ok {
			b.WriteRune(r)
			continue
		}
		if t != -1 {
			b.WriteRune(t)
		}
	}
	return b.String()
}

func (e *StringTranslate) foldableSets() bool {
	return e.Second.Foldable() && e.Third.Foldable()
}

func (e *StringTranslate) core(args ...interface{}) (interface{}, error) {
	src := args[0].(string)
	if e.dict != nil {
		return translateWith(e.dict, src), nil
	}
	dict := buildTranslateDict(args[1].(string), args[2].(string))
	if e.foldableSets() {
		e.dict = dict
	}
	return translateWith(dict, src), nil
}

func (e *StringTranslate) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *StringTranslate) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	if e.foldableSets() {
		// Constant specialization: build the dictionary at compile time.
		from, err := e.Second.Eval(nil)
		if err != nil {
			return nil, err
		}
		to, err := e.Third.Eval(nil)
		if err != nil {
			return nil, err
		}
		if from != nil && to != nil {
			dict := buildTranslateDict(from.(string), to.(string))
			return genNullIntolerant(ctx, "translate", e.Children(),
				func(args ...interface{}) (interface{}, error) {
					return translateWith(dict, args[0].(string)), nil
				})
		}
	}
	return genNullIntolerant(ctx, "translate", e.Children(),
		func(args ...interface{}) (interface{}, error) {
			dict := buildTranslateDict(args[1].(string), args[2].(string))
			return translateWith(dict, args[0].(string)), nil
		})
}

func (e *StringTranslate) String() string {
	return fmt.Sprintf("translate(%s, %s, %s)", e.First, e.Second, e.Third)
}

// Elt picks the n-th (1-based) of its inputs. An out-of-range index is NULL
// in lenient mode and ErrInvalidIndex when FailOnError is set.
type Elt struct {
	Index       Expression
	Inputs      []Expression
	FailOnError bool
}

func NewElt(index Expression, failOnError bool, inputs ...Expression) *Elt {
	return &Elt{Index: index, Inputs: inputs, FailOnError: failOnError}
}

func (e *Elt) Children() []Expression {
	return append([]Expression{e.Index}, e.Inputs...)
}

func (e *Elt) WithChildren(ch []Expression) Expression {
	return &Elt{Index: ch[0], Inputs: ch[1:], FailOnError: e.FailOnError}
}

func (e *Elt) DataType() types.DataType { return e.Inputs[0].DataType() }

func (e *Elt) Nullable() bool { return true }

func (e *Elt) Foldable() bool {
	for _, c := range e.Children() {
		if !c.Foldable() {
			return false
		}
	}
	return true
}

func (e *Elt) Deterministic() bool {
	for _, c := range e.Children() {
		if !c.Deterministic() {
			return false
		}
	}
	return true
}

func (e *Elt) CheckInputDataTypes() types.TypeCheckResult {
	if len(e.Inputs) == 0 {
		return types.TypeCheckFailure("elt requires at least one input")
	}
	if !(types.ConcreteType{Type: types.Integer}).AcceptsType(e.Index.DataType()) {
		return types.TypeCheckFailuref("elt index requires int, got %s",
			e.Index.DataType().SimpleString())
	}
	dt := e.Inputs[0].DataType()
	for _, in := range e.Inputs[1:] {
		if it := in.DataType(); it != types.Null && !it.Equals(dt) {
			return types.TypeCheckFailure("elt inputs must all have the same type")
		}
	}
	return types.TypeCheckSuccess
}

func (e *Elt) Eval(r row.InternalRow) (interface{}, error) {
	idx, err := e.Index.Eval(r)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, nil
	}
	n := idx.(int32)
	if n < 1 || int(n) > len(e.Inputs) {
		if e.FailOnError {
			return nil, errors.Wrapf(ErrInvalidIndex, "elt index %d out of range [1, %d]", n, len(e.Inputs))
		}
		return nil, nil
	}
	return e.Inputs[n-1].Eval(r)
}

func (e *Elt) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	iec, err := genChildCode(ctx, e.Index)
	if err != nil {
		return nil, err
	}
	programs := make([]*vm.Program, len(e.Inputs))
	for i, in := range e.Inputs {
		restore := ctx.NewSubexprScope()
		ec, err := in.GenCode(ctx)
		restore()
		if err != nil {
			return nil, err
		}
		if programs[i], err = ctx.CompileFragment(ec); err != nil {
			return nil, err
		}
	}
	failOnError := e.FailOnError
	pick := ctx.RegisterFunc("elt", func(args ...interface{}) (interface{}, error) {
		n := args[0].(int32)
		if n < 1 || int(n) > len(programs) {
			if failOnError {
				return nil, errors.Wrapf(ErrInvalidIndex, "elt index %d out of range [1, %d]", n, len(programs))
			}
			return nil, nil
		}
		return ctx.RunFragment(programs[n-1])
	})
	v := ctx.FreshName("v")
	n := ctx.FreshName("n")
	stmts := append([]string{}, iec.Stmts...)
	if iec.IsNull == codegen.FalseLiteral {
		stmts = append(stmts, fmt.Sprintf("let %s = %s(%s)", v, pick, iec.Value))
	} else {
		stmts = append(stmts, fmt.Sprintf("let %s = %s ? nil : %s(%s)", v, iec.IsNull, pick, iec.Value))
	}
	stmts = append(stmts, fmt.Sprintf("let %s = %s == nil", n, v))
	return &codegen.ExprCode{Stmts: stmts, IsNull: n, Value: v}, nil
}

func (e *Elt) String() string {
	return "elt(" + e.Index.String() + ", " + strings.TrimPrefix(argsString(e.Inputs), "(")
}

// FormatString renders a printf-style format; NULL arguments print as
// "null". A NULL format string is NULL.
type FormatString struct{ variadic }

func NewFormatString(format Expression, args ...Expression) *FormatString {
	return &FormatString{variadic{append([]Expression{format}, args...)}}
}

func (e *FormatString) DataType() types.DataType { return types.String }

func (e *FormatString) Nullable() bool { return e.Args[0].Nullable() }

func (e *FormatString) WithChildren(ch []Expression) Expression {
	return &FormatString{variadic{ch}}
}

func (e *FormatString) CheckInputDataTypes() types.TypeCheckResult {
	if len(e.Args) == 0 {
		return types.TypeCheckFailure("format_string requires a format argument")
	}
	if !(types.ConcreteType{Type: types.String}).AcceptsType(e.Args[0].DataType()) {
		return types.TypeCheckFailuref("format_string format requires string, got %s",
			e.Args[0].DataType().SimpleString())
	}
	return types.TypeCheckSuccess
}

func formatCore(args ...interface{}) (interface{}, error) {
	format := args[0].(string)
	rest := make([]interface{}, len(args)-1)
	for i, a := range args[1:] {
		if a == nil {
			rest[i] = "null"
			continue
		}
		rest[i] = a
	}
	return fmt.Sprintf(format, rest...), nil
}

func (e *FormatString) Eval(r row.InternalRow) (interface{}, error) {
	format, err := e.Args[0].Eval(r)
	if err != nil {
		return nil, err
	}
	if format == nil {
		return nil, nil
	}
	values := make([]interface{}, len(e.Args))
	values[0] = format
	for i, a := range e.Args[1:] {
		if values[i+1], err = a.Eval(r); err != nil {
			return nil, err
		}
	}
	return formatCore(values...)
}

func (e *FormatString) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	fec, err := genChildCode(ctx, e.Args[0])
	if err != nil {
		return nil, err
	}
	rest := e.Args[1:]
	programs := make([]*vm.Program, len(rest))
	for i, a := range rest {
		restore := ctx.NewSubexprScope()
		ec, err := a.GenCode(ctx)
		restore()
		if err != nil {
			return nil, err
		}
		if programs[i], err = ctx.CompileFragment(ec); err != nil {
			return nil, err
		}
	}
	render := ctx.RegisterFunc("format", func(args ...interface{}) (interface{}, error) {
		values := make([]interface{}, len(programs)+1)
		values[0] = args[0]
		for i, prog := range programs {
			v, err := ctx.RunFragment(prog)
			if err != nil {
				return nil, err
			}
			values[i+1] = v
		}
		return formatCore(values...)
	})
	v := ctx.FreshName("v")
	n := ctx.FreshName("n")
	stmts := append([]string{}, fec.Stmts...)
	if fec.IsNull == codegen.FalseLiteral {
		stmts = append(stmts, fmt.Sprintf("let %s = %s(%s)", v, render, fec.Value))
	} else {
		stmts = append(stmts, fmt.Sprintf("let %s = %s ? nil : %s(%s)", v, fec.IsNull, render, fec.Value))
	}
	stmts = append(stmts, fmt.Sprintf("let %s = %s == nil", n, v))
	return &codegen.ExprCode{Stmts: stmts, IsNull: n, Value: v}, nil
}

func (e *FormatString) String() string { return "format_string" + argsString(e.Args) }
