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
	"time"

	"github.com/pkg/errors"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// Date values count days since the Unix epoch; timestamp values count
// microseconds. Dates are timezone-free, timestamps render and decompose in
// the session timezone.

const (
	secondsPerDay = 86400
	microsPerSec  = 1_000_000
)

func daysToTime(days int32) time.Time {
	return time.Unix(int64(days)*secondsPerDay, 0).UTC()
}

func timeToDays(t time.Time) int32 {
	return int32(t.Unix() / secondsPerDay)
}

func microsToTime(us int64, loc *time.Location) time.Time {
	return time.Unix(us/microsPerSec, (us%microsPerSec)*1000).In(loc)
}

func timeToMicros(t time.Time) int64 {
	return t.Unix()*microsPerSec + int64(t.Nanosecond())/1000
}

// convertTimeFormat rewrites a SQL datetime pattern (yyyy-MM-dd style) into
// a Go reference layout. Single-quoted runs pass through as literals.
func convertTimeFormat(pattern string) string {
	replacements := []struct{ from, to string }{
		{"yyyy", "2006"},
		{"yy", "06"},
		{"MM", "01"},
		{"dd", "02"},
		{"HH", "15"},
		{"hh", "03"},
		{"mm", "04"},
		{"ss", "05"},
		{"SSS", "000"},
		{"a", "PM"},
		{"XXX", "Z07:00"},
		{"zzz", "MST"},
	}
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		if runes[i] == '\'' {
			j := i + 1
			for j < len(runes) && runes[j] != '\'' {
				b.WriteRune(runes[j])
				j++
			}
			i = j + 1
			continue
		}
		matched := false
		for _, r := range replacements {
			if strings.HasPrefix(string(runes[i:]), r.from) {
				b.WriteString(r.to)
				i += len([]rune(r.from))
				matched = true
				break
			}
		}
		if !matched {
			b.WriteRune(runes[i])
			i++
		}
	}
	return b.String()
}

// CurrentDate is the query start date, fixed at construction so every row of
// one evaluation pass sees the same value.
type CurrentDate struct {
	leaf
	days int32
}

func NewCurrentDate(loc *time.Location) *CurrentDate {
	now := time.Now().In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return &CurrentDate{days: timeToDays(midnight)}
}

func (e *CurrentDate) DataType() types.DataType { return types.Date }
func (e *CurrentDate) Nullable() bool           { return false }
func (e *CurrentDate) Foldable() bool           { return true }

func (e *CurrentDate) WithChildren([]Expression) Expression { return e }

func (e *CurrentDate) Eval(row.InternalRow) (interface{}, error) { return e.days, nil }

func (e *CurrentDate) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return &codegen.ExprCode{IsNull: codegen.FalseLiteral, Value: ctx.AddConstant(e.days)}, nil
}

func (e *CurrentDate) String() string { return "current_date()" }

// CurrentTimestamp is the query start instant, fixed at construction.
type CurrentTimestamp struct {
	leaf
	micros int64
}

func NewCurrentTimestamp() *CurrentTimestamp {
	return &CurrentTimestamp{micros: timeToMicros(time.Now())}
}

func (e *CurrentTimestamp) DataType() types.DataType { return types.Timestamp }
func (e *CurrentTimestamp) Nullable() bool           { return false }
func (e *CurrentTimestamp) Foldable() bool           { return true }

func (e *CurrentTimestamp) WithChildren([]Expression) Expression { return e }

func (e *CurrentTimestamp) Eval(row.InternalRow) (interface{}, error) { return e.micros, nil }

func (e *CurrentTimestamp) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return &codegen.ExprCode{IsNull: codegen.FalseLiteral, Value: ctx.AddConstant(e.micros)}, nil
}

func (e *CurrentTimestamp) String() string { return "current_timestamp()" }

// DateAdd shifts a date by a day count. Pure day arithmetic, no calendar
// normalization: 2021-01-31 plus one day is 2021-02-01.
type DateAdd struct{ binary }

func NewDateAdd(start, days Expression) *DateAdd { return &DateAdd{binary{start, days}} }

func (e *DateAdd) DataType() types.DataType { return types.Date }

func (e *DateAdd) WithChildren(ch []Expression) Expression { return &DateAdd{binary{ch[0], ch[1]}} }

func (e *DateAdd) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("date_add", e.Children(),
		types.ConcreteType{Type: types.Date},
		types.ConcreteType{Type: types.Integer})
}

func dateAddCore(args ...interface{}) (interface{}, error) {
	return args[0].(int32) + args[1].(int32), nil
}

func (e *DateAdd) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), dateAddCore)
}

func (e *DateAdd) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "dateadd", e.Children(), dateAddCore)
}

func (e *DateAdd) String() string {
	return fmt.Sprintf("date_add(%s, %s)", e.Left, e.Right)
}

// DateSub shifts a date backwards by a day count.
type DateSub struct{ binary }

func NewDateSub(start, days Expression) *DateSub { return &DateSub{binary{start, days}} }

func (e *DateSub) DataType() types.DataType { return types.Date }

func (e *DateSub) WithChildren(ch []Expression) Expression { return &DateSub{binary{ch[0], ch[1]}} }

func (e *DateSub) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("date_sub", e.Children(),
		types.ConcreteType{Type: types.Date},
		types.ConcreteType{Type: types.Integer})
}

func dateSubCore(args ...interface{}) (interface{}, error) {
	return args[0].(int32) - args[1].(int32), nil
}

func (e *DateSub) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), dateSubCore)
}

func (e *DateSub) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "datesub", e.Children(), dateSubCore)
}

func (e *DateSub) String() string {
	return fmt.Sprintf("date_sub(%s, %s)", e.Left, e.Right)
}

// MakeDate builds a date from year, month and day fields. An impossible
// calendar combination is NULL in lenient mode, ErrInvalidCalendar under
// ANSI.
type MakeDate struct {
	ternary
	FailOnError bool
}

func NewMakeDate(year, month, day Expression, failOnError bool) *MakeDate {
	return &MakeDate{ternary: ternary{year, month, day}, FailOnError: failOnError}
}

func (e *MakeDate) DataType() types.DataType { return types.Date }
func (e *MakeDate) Nullable() bool           { return true }

func (e *MakeDate) WithChildren(ch []Expression) Expression {
	return &MakeDate{ternary: ternary{ch[0], ch[1], ch[2]}, FailOnError: e.FailOnError}
}

func (e *MakeDate) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("make_date", e.Children(),
		types.ConcreteType{Type: types.Integer},
		types.ConcreteType{Type: types.Integer},
		types.ConcreteType{Type: types.Integer})
}

func (e *MakeDate) core(args ...interface{}) (interface{}, error) {
	y, m, d := int(args[0].(int32)), int(args[1].(int32)), int(args[2].(int32))
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range fields; a changed field means the
	// combination was not a real calendar date.
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		if e.FailOnError {
			return nil, errors.Wrapf(ErrInvalidCalendar, "make_date(%d, %d, %d)", y, m, d)
		}
		return nil, nil
	}
	return timeToDays(t), nil
}

func (e *MakeDate) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *MakeDate) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "makedate", e.Children(), e.core)
}

func (e *MakeDate) String() string {
	return fmt.Sprintf("make_date(%s, %s, %s)", e.First, e.Second, e.Third)
}

// MakeTimestamp builds a timestamp in the session timezone from six fields,
// with the same calendar policy as MakeDate.
type MakeTimestamp struct {
	Fields      []Expression // year, month, day, hour, minute, second
	Loc         *time.Location
	FailOnError bool
}

func NewMakeTimestamp(year, month, day, hour, minute, second Expression, loc *time.Location, failOnError bool) *MakeTimestamp {
	return &MakeTimestamp{
		Fields:      []Expression{year, month, day, hour, minute, second},
		Loc:         loc,
		FailOnError: failOnError,
	}
}

func (e *MakeTimestamp) Children() []Expression { return e.Fields }

func (e *MakeTimestamp) WithChildren(ch []Expression) Expression {
	return &MakeTimestamp{Fields: ch, Loc: e.Loc, FailOnError: e.FailOnError}
}

func (e *MakeTimestamp) DataType() types.DataType { return types.Timestamp }
func (e *MakeTimestamp) Nullable() bool           { return true }

func (e *MakeTimestamp) Foldable() bool {
	for _, f := range e.Fields {
		if !f.Foldable() {
			return false
		}
	}
	return true
}

func (e *MakeTimestamp) Deterministic() bool {
	for _, f := range e.Fields {
		if !f.Deterministic() {
			return false
		}
	}
	return true
}

func (e *MakeTimestamp) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("make_timestamp", e.Children(),
		types.ConcreteType{Type: types.Integer},
		types.ConcreteType{Type: types.Integer},
		types.ConcreteType{Type: types.Integer},
		types.ConcreteType{Type: types.Integer},
		types.ConcreteType{Type: types.Integer},
		types.ConcreteType{Type: types.Integer})
}

func (e *MakeTimestamp) core(args ...interface{}) (interface{}, error) {
	y, mo, d := int(args[0].(int32)), int(args[1].(int32)), int(args[2].(int32))
	h, mi, s := int(args[3].(int32)), int(args[4].(int32)), int(args[5].(int32))
	t := time.Date(y, time.Month(mo), d, h, mi, s, 0, e.Loc)
	valid := t.Year() == y && int(t.Month()) == mo && t.Day() == d &&
		h >= 0 && h < 24 && mi >= 0 && mi < 60 && s >= 0 && s < 60
	if !valid {
		if e.FailOnError {
			return nil, errors.Wrapf(ErrInvalidCalendar,
				"make_timestamp(%d, %d, %d, %d, %d, %d)", y, mo, d, h, mi, s)
		}
		return nil, nil
	}
	return timeToMicros(t), nil
}

func (e *MakeTimestamp) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *MakeTimestamp) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "makets", e.Children(), e.core)
}

func (e *MakeTimestamp) String() string {
	return "make_timestamp" + argsString(e.Fields)
}

// ToTimestamp parses a string into a timestamp with the given pattern.
// Unparseable input is NULL in lenient mode, ErrParse under ANSI.
type ToTimestamp struct {
	binary
	Loc         *time.Location
	FailOnError bool

	layout string // cached when the pattern is foldable
}

func NewToTimestamp(str, pattern Expression, loc *time.Location, failOnError bool) *ToTimestamp {
	return &ToTimestamp{binary: binary{str, pattern}, Loc: loc, FailOnError: failOnError}
}

func (e *ToTimestamp) DataType() types.DataType { return types.Timestamp }
func (e *ToTimestamp) Nullable() bool           { return true }

func (e *ToTimestamp) WithChildren(ch []Expression) Expression {
	return NewToTimestamp(ch[0], ch[1], e.Loc, e.FailOnError)
}

func (e *ToTimestamp) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("to_timestamp", e.Children(),
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.String})
}

func (e *ToTimestamp) parse(s, pattern string) (interface{}, error) {
	layout := e.layout
	if layout == "" {
		layout = convertTimeFormat(pattern)
		if e.Right.Foldable() {
			e.layout = layout
		}
	}
	t, err := time.ParseInLocation(layout, s, e.Loc)
	if err != nil {
		if e.FailOnError {
			return nil, errors.Wrapf(ErrParse, "to_timestamp %q with pattern %q", s, pattern)
		}
		return nil, nil
	}
	return timeToMicros(t), nil
}

func (e *ToTimestamp) core(args ...interface{}) (interface{}, error) {
	return e.parse(args[0].(string), args[1].(string))
}

func (e *ToTimestamp) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *ToTimestamp) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "tots", e.Children(), e.core)
}

func (e *ToTimestamp) String() string {
	return fmt.Sprintf("to_timestamp(%s, %s)", e.Left, e.Right)
}

// UnixTimestamp parses like ToTimestamp but yields whole epoch seconds.
type UnixTimestamp struct {
	binary
	Loc         *time.Location
	FailOnError bool

	layout string
}

func NewUnixTimestamp(str, pattern Expression, loc *time.Location, failOnError bool) *UnixTimestamp {
	return &UnixTimestamp{binary: binary{str, pattern}, Loc: loc, FailOnError: failOnError}
}

func (e *UnixTimestamp) DataType() types.DataType { return types.Long }
func (e *UnixTimestamp) Nullable() bool           { return true }

func (e *UnixTimestamp) WithChildren(ch []Expression) Expression {
	return NewUnixTimestamp(ch[0], ch[1], e.Loc, e.FailOnError)
}

func (e *UnixTimestamp) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("unix_timestamp", e.Children(),
		types.ConcreteType{Type: types.String},
		types.ConcreteType{Type: types.String})
}

func (e *UnixTimestamp) core(args ...interface{}) (interface{}, error) {
	s, pattern := args[0].(string), args[1].(string)
	layout := e.layout
	if layout == "" {
		layout = convertTimeFormat(pattern)
		if e.Right.Foldable() {
			e.layout = layout
		}
	}
	t, err := time.ParseInLocation(layout, s, e.Loc)
	if err != nil {
		if e.FailOnError {
			return nil, errors.Wrapf(ErrParse, "unix_timestamp %q with pattern %q", s, pattern)
		}
		return nil, nil
	}
	return t.Unix(), nil
}

func (e *UnixTimestamp) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *UnixTimestamp) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "unixts", e.Children(), e.core)
}

func (e *UnixTimestamp) String() string {
	return fmt.Sprintf("unix_timestamp(%s, %s)", e.Left, e.Right)
}

// DateFormat renders a timestamp with a SQL datetime pattern in the session
// timezone. A foldable pattern converts to a Go layout once.
type DateFormat struct {
	binary
	Loc *time.Location

	layout string
}

func NewDateFormat(ts, pattern Expression, loc *time.Location) *DateFormat {
	return &DateFormat{binary: binary{ts, pattern}, Loc: loc}
}

func (e *DateFormat) DataType() types.DataType { return types.String }

func (e *DateFormat) WithChildren(ch []Expression) Expression {
	return NewDateFormat(ch[0], ch[1], e.Loc)
}

func (e *DateFormat) CheckInputDataTypes() types.TypeCheckResult {
	return checkArgTypes("date_format", e.Children(),
		types.ConcreteType{Type: types.Timestamp},
		types.ConcreteType{Type: types.String})
}

func (e *DateFormat) core(args ...interface{}) (interface{}, error) {
	layout := e.layout
	if layout == "" {
		layout = convertTimeFormat(args[1].(string))
		if e.Right.Foldable() {
			e.layout = layout
		}
	}
	return microsToTime(args[0].(int64), e.Loc).Format(layout), nil
}

func (e *DateFormat) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *DateFormat) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "datefmt", e.Children(), e.core)
}

func (e *DateFormat) String() string {
	return fmt.Sprintf("date_format(%s, %s)", e.Left, e.Right)
}

// ExtractField selects the field an Extract node pulls out.
type ExtractField string

const (
	FieldYear       ExtractField = "year"
	FieldMonth      ExtractField = "month"
	FieldDayOfMonth ExtractField = "dayofmonth"
	FieldHour       ExtractField = "hour"
	FieldMinute     ExtractField = "minute"
	FieldSecond     ExtractField = "second"
)

// Extract pulls one calendar field out of a date or timestamp. Date fields
// (year, month, dayofmonth) accept dates and timestamps; time-of-day fields
// require a timestamp and decompose in the session timezone.
type Extract struct {
	unary
	Field ExtractField
	Loc   *time.Location
}

func NewYear(child Expression, loc *time.Location) *Extract {
	return &Extract{unary: unary{child}, Field: FieldYear, Loc: loc}
}

func NewMonth(child Expression, loc *time.Location) *Extract {
	return &Extract{unary: unary{child}, Field: FieldMonth, Loc: loc}
}

func NewDayOfMonth(child Expression, loc *time.Location) *Extract {
	return &Extract{unary: unary{child}, Field: FieldDayOfMonth, Loc: loc}
}

func NewHour(child Expression, loc *time.Location) *Extract {
	return &Extract{unary: unary{child}, Field: FieldHour, Loc: loc}
}

func NewMinute(child Expression, loc *time.Location) *Extract {
	return &Extract{unary: unary{child}, Field: FieldMinute, Loc: loc}
}

func NewSecond(child Expression, loc *time.Location) *Extract {
	return &Extract{unary: unary{child}, Field: FieldSecond, Loc: loc}
}

func (e *Extract) DataType() types.DataType { return types.Integer }

func (e *Extract) WithChildren(ch []Expression) Expression {
	return &Extract{unary: unary{ch[0]}, Field: e.Field, Loc: e.Loc}
}

func (e *Extract) dateField() bool {
	switch e.Field {
	case FieldYear, FieldMonth, FieldDayOfMonth:
		return true
	}
	return false
}

func (e *Extract) CheckInputDataTypes() types.TypeCheckResult {
	if e.dateField() {
		return checkArgTypes(string(e.Field), e.Children(),
			types.NewTypeCollection(
				types.ConcreteType{Type: types.Date},
				types.ConcreteType{Type: types.Timestamp}))
	}
	return checkArgTypes(string(e.Field), e.Children(),
		types.ConcreteType{Type: types.Timestamp})
}

func (e *Extract) core(args ...interface{}) (interface{}, error) {
	var t time.Time
	switch v := args[0].(type) {
	case int32:
		t = daysToTime(v)
	case int64:
		t = microsToTime(v, e.Loc)
	default:
		return nil, errors.Errorf("%s: unsupported type %T", e.Field, args[0])
	}
	switch e.Field {
	case FieldYear:
		return int32(t.Year()), nil
	case FieldMonth:
		return int32(t.Month()), nil
	case FieldDayOfMonth:
		return int32(t.Day()), nil
	case FieldHour:
		return int32(t.Hour()), nil
	case FieldMinute:
		return int32(t.Minute()), nil
	default:
		return int32(t.Second()), nil
	}
}

func (e *Extract) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *Extract) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, string(e.Field), e.Children(), e.core)
}

func (e *Extract) String() string {
	return string(e.Field) + "(" + e.Child.String() + ")"
}

func (e *Extract) canonicalTag() string { return string(e.Field) }
