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

	"github.com/grafana/regexp"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// likeToRegexp translates a SQL LIKE pattern into an anchored regular
// expression. The escape character may precede %, _ or itself; anything else
// is a malformed pattern.
func likeToRegexp(pattern string, escape byte) (string, error) {
	var b strings.Builder
	b.WriteString("(?s)^")
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == rune(escape) {
			if i+1 >= len(runes) {
				return "", errors.Wrapf(ErrParse, "like pattern %q ends with the escape character", pattern)
			}
			next := runes[i+1]
			if next != '%' && next != '_' && next != rune(escape) {
				return "", errors.Wrapf(ErrParse, "like pattern %q escapes %q", pattern, string(next))
			}
			b.WriteString(regexp.QuoteMeta(string(next)))
			i++
			continue
		}
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String(), nil
}

// patternCache memoizes compiled patterns for the non-foldable case, keyed
// by the source text. One cache per node, never shared across partitions.
type patternCache struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

func newPatternCache() *patternCache {
	c, _ := lru.New[string, *regexp.Regexp](64)
	return &patternCache{cache: c}
}

func (p *patternCache) get(src string) (*regexp.Regexp, error) {
	if re, ok := p.cache.Get(src); ok {
		return re, nil
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, errors.Wrap(ErrParse, err.Error())
	}
	p.cache.Add(src, re)
	return re, nil
}

// Like matches a string against a SQL LIKE pattern. A foldable pattern
// compiles once and is reused for every row.
type Like struct {
	binary
	Escape byte

	compiled *regexp.Regexp
	cache    *patternCache
}

func NewLike(str, pattern Expression, escape byte) *Like {
	return &Like{binary: binary{str, pattern}, Escape: escape, cache: newPatternCache()}
}

func (e *Like) DataType() types.DataType { return types.Boolean }

func (e *Like) WithChildren(ch []Expression) Expression {
	return NewLike(ch[0], ch[1], e.Escape)
}

func (e *Like) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("like", e.Children(),
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.String})
}

func (e *Like) pattern(src string) (*regexp.Regexp, error) {
	if e.compiled != nil {
		return e.compiled, nil
	}
	reSrc, err := likeToRegexp(src, e.Escape)
	if err != nil {
		return nil, err
	}
	re, err := e.cache.get(reSrc)
	if err != nil {
		return nil, err
	}
	if e.Right.Foldable() {
		e.compiled = re
	}
	return re, nil
}

func (e *Like) core(args ...interface{}) (interface{}, error) {
	re, err := e.pattern(args[1].(string))
	if err != nil {
		return nil, err
	}
	return re.MatchString(args[0].(string)), nil
}

func (e *Like) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *Like) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "like", e.Children(), e.core)
}

func (e *Like) String() string {
	return "(" + e.Left.String() + " LIKE " + e.Right.String() + ")"
}

func (e *Like) canonicalTag() string { return fmt.Sprintf("like:%c", e.Escape) }

// RLike matches a string against a regular expression.
type RLike struct {
	binary

	compiled *regexp.Regexp
	cache    *patternCache
}

func NewRLike(str, pattern Expression) *RLike {
	return &RLike{binary: binary{str, pattern}, cache: newPatternCache()}
}

func (e *RLike) DataType() types.DataType { return types.Boolean }

func (e *RLike) WithChildren(ch []Expression) Expression {
	return NewRLike(ch[0], ch[1])
}

func (e *RLike) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("rlike", e.Children(),
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.String})
}

func (e *RLike) pattern(src string) (*regexp.Regexp, error) {
	if e.compiled != nil {
		return e.compiled, nil
	}
	re, err := e.cache.get(src)
	if err != nil {
		return nil, err
	}
	if e.Right.Foldable() {
		e.compiled = re
	}
	return re, nil
}

func (e *RLike) core(args ...interface{}) (interface{}, error) {
	re, err := e.pattern(args[1].(string))
	if err != nil {
		return nil, err
	}
	return re.MatchString(args[0].(string)), nil
}

func (e *RLike) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *RLike) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "rlike", e.Children(), e.core)
}

func (e *RLike) String() string {
	return "(" + e.Left.String() + " RLIKE " + e.Right.String() + ")"
}

// MultiLike is the shared engine of LIKE ALL/ANY and their negations. The
// pattern list is constant and compiles once at construction. Matching scans
// the patterns in order, short-circuits on the first decisive one and
// remembers NULL patterns:
//
//	LIKE ALL:     one non-match decides false; otherwise NULL wins over true.
//	LIKE ANY:     one match decides true; otherwise NULL wins over false.
//
// The negated forms swap the decisive outcome.
type MultiLike struct {
	unary
	Patterns []string
	All      bool
	Negated  bool
	Escape   byte

	compiled []*regexp.Regexp // nil entry marks a NULL pattern
}

func newMultiLike(value Expression, patterns []*string, all, negated bool, escape byte) (*MultiLike, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	texts := make([]string, len(patterns))
	for i, p := range patterns {
		if p == nil {
			texts[i] = "<null>"
			continue
		}
		texts[i] = *p
		src, err := likeToRegexp(*p, escape)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, errors.Wrap(ErrParse, err.Error())
		}
		compiled[i] = re
	}
	return &MultiLike{
		unary:    unary{value},
		Patterns: texts,
		All:      all,
		Negated:  negated,
		Escape:   escape,
		compiled: compiled,
	}, nil
}

// NewLikeAll builds v LIKE ALL (p1, p2, ...). A nil pattern is a NULL
// pattern literal.
func NewLikeAll(value Expression, patterns []*string, escape byte) (*MultiLike, error) {
	return newMultiLike(value, patterns, true, false, escape)
}

func NewNotLikeAll(value Expression, patterns []*string, escape byte) (*MultiLike, error) {
	return newMultiLike(value, patterns, true, true, escape)
}

func NewLikeAny(value Expression, patterns []*string, escape byte) (*MultiLike, error) {
	return newMultiLike(value, patterns, false, false, escape)
}

func NewNotLikeAny(value Expression, patterns []*string, escape byte) (*MultiLike, error) {
	return newMultiLike(value, patterns, false, true, escape)
}

func (e *MultiLike) DataType() types.DataType { return types.Boolean }
func (e *MultiLike) Nullable() bool           { return true }

func (e *MultiLike) WithChildren(ch []Expression) Expression {
	clone := *e
	clone.unary = unary{ch[0]}
	return &clone
}

func (e *MultiLike) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes(e.name(), e.Children(), types.ConcreteType{Type: types.String})
}

func (e *MultiLike) name() string {
	switch {
	case e.All && e.Negated:
		return "not like all"
	case e.All:
		return "like all"
	case e.Negated:
		return "not like any"
	default:
		return "like any"
	}
}

func (e *MultiLike) core(args ...interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	s := args[0].(string)
	sawNull := false
	for _, re := range e.compiled {
		if re == nil {
			sawNull = true
			continue
		}
		matched := re.MatchString(s)
		if e.Negated {
			matched = !matched
		}
		if e.All {
			if !matched {
				return false, nil
			}
		} else if matched {
			return true, nil
		}
	}
	if sawNull {
		return nil, nil
	}
	return e.All, nil
}

func (e *MultiLike) Eval(r row.InternalRow) (interface{}, error) {
	v, err := e.Child.Eval(r)
	if err != nil {
		return nil, err
	}
	return e.core(v)
}

func (e *MultiLike) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genCall(ctx, "multilike", e.Children(), e.core)
}

func (e *MultiLike) String() string {
	quoted := make([]string, len(e.Patterns))
	for i, p := range e.Patterns {
		quoted[i] = "'" + p + "'"
	}
	return fmt.Sprintf("(%s %s (%s))", e.Child, strings.ToUpper(e.name()), strings.Join(quoted, ", "))
}

func (e *MultiLike) canonicalTag() string {
	return fmt.Sprintf("%s:%s", e.name(), strings.Join(e.Patterns, "\x00"))
}

// RegExpExtract returns the idx-th capture group of the first match, the
// empty string when nothing matches. An index outside the pattern's group
// range is always an error.
type RegExpExtract struct {
	ternary

	cache *patternCache
}

func NewRegExpExtract(str, pattern, idx Expression) *RegExpExtract {
	return &RegExpExtract{ternary: ternary{str, pattern, idx}, cache: newPatternCache()}
}

func (e *RegExpExtract) DataType() types.DataType { return types.String }

func (e *RegExpExtract) WithChildren(ch []Expression) Expression {
	return NewRegExpExtract(ch[0], ch[1], ch[2])
}

func (e *RegExpExtract) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("regexp_extract", e.Children(),
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.Integer})
}

func (e *RegExpExtract) core(args ...interface{}) (interface{}, error) {
	re, err := e.cache.get(args[1].(string))
	if err != nil {
		return nil, err
	}
	idx := int(args[2].(int32))
	if idx < 0 || idx > re.NumSubexp() {
		return nil, errors.Wrapf(ErrInvalidIndex,
			"regexp_extract group %d out of range [0, %d]", idx, re.NumSubexp())
	}
	m := re.FindStringSubmatch(args[0].(string))
	if m == nil {
		return "", nil
	}
	return m[idx], nil
}

func (e *RegExpExtract) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *RegExpExtract) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "reextract", e.Children(), e.core)
}

func (e *RegExpExtract) String() string {
	return fmt.Sprintf("regexp_extract(%s, %s, %s)", e.First, e.Second, e.Third)
}

// RegExpReplace rewrites every match at or after the 1-based position,
// leaving the prefix untouched. Group references in the replacement use the
// $1 form.
type RegExpReplace struct {
	Subject     Expression
	Pattern     Expression
	Replacement Expression
	Pos         Expression

	cache *patternCache
}

func NewRegExpReplace(subject, pattern, replacement, pos Expression) *RegExpReplace {
	return &RegExpReplace{
		Subject: subject, Pattern: pattern, Replacement: replacement, Pos: pos,
		cache: newPatternCache(),
	}
}

func (e *RegExpReplace) Children() []Expression {
	return []Expression{e.Subject, e.Pattern, e.Replacement, e.Pos}
}

func (e *RegExpReplace) WithChildren(ch []Expression) Expression {
	return NewRegExpReplace(ch[0], ch[1], ch[2], ch[3])
}

func (e *RegExpReplace) DataType() types.DataType { return types.String }

func (e *RegExpReplace) Nullable() bool {
	for _, c := range e.Children() {
		if c.Nullable() {
			return true
		}
	}
	return false
}

func (e *RegExpReplace) Foldable() bool {
	for _, c := range e.Children() {
		if !c.Foldable() {
			return false
		}
	}
	return true
}

func (e *RegExpReplace) Deterministic() bool {
	for _, c := range e.Children() {
		if !c.Deterministic() {
			return false
		}
	}
	return true
}

func (e *RegExpReplace) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("regexp_replace", e.Children(),
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.Integer})
}

func (e *RegExpReplace) core(args ...interface{}) (interface{}, error) {
	re, err := e.cache.get(args[1].(string))
	if err != nil {
		return nil, err
	}
	subject := args[0].(string)
	replacement := args[2].(string)
	pos := int(args[3].(int32))
	if pos < 1 {
		return nil, errors.Wrapf(ErrInvalidIndex, "regexp_replace position %d must be positive", pos)
	}
	runes := []rune(subject)
	if pos > len(runes)+1 {
		return subject, nil
	}
	prefix := string(runes[:pos-1])
	return prefix + re.ReplaceAllString(string(runes[pos-1:]), replacement), nil
}

func (e *RegExpReplace) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *RegExpReplace) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "rereplace", e.Children(), e.core)
}

func (e *RegExpReplace) String() string {
	return fmt.Sprintf("regexp_replace(%s, %s, %s, %s)",
		e.Subject, e.Pattern, e.Replacement, e.Pos)
}
