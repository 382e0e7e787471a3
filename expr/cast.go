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
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// Cast converts a value to the target type. A conversion that cannot
// represent the input (unparseable string, out-of-range integral) is NULL in
// lenient mode and an error under ANSI; integral narrowing wraps in lenient
// mode like arithmetic does.
type Cast struct {
	unary
	To          types.DataType
	Loc         *time.Location
	FailOnError bool
}

func NewCast(child Expression, to types.DataType, loc *time.Location, failOnError bool) *Cast {
	if loc == nil {
		loc = time.UTC
	}
	return &Cast{unary: unary{child}, To: to, Loc: loc, FailOnError: failOnError}
}

func (e *Cast) DataType() types.DataType { return e.To }

func (e *Cast) Nullable() bool {
	if !e.FailOnError && !e.Child.DataType().Equals(e.To) {
		return true
	}
	return e.Child.Nullable()
}

func (e *Cast) WithChildren(ch []Expression) Expression {
	return &Cast{unary: unary{ch[0]}, To: e.To, Loc: e.Loc, FailOnError: e.FailOnError}
}

func (e *Cast) CheckInputDataTypes() types.TypeCheckResult {
	from := e.Child.DataType()
	if from == types.Null || from.Equals(e.To) {
		return types.TypeCheckSuccess
	}
	if !castable(from, e.To) {
		return types.TypeCheckFailuref("cannot cast %s to %s",
			from.SimpleString(), e.To.SimpleString())
	}
	return types.TypeCheckSuccess
}

func castable(from, to types.DataType) bool {
	if to == types.String {
		return true
	}
	switch {
	case types.IsNumeric(to):
		return types.IsNumeric(from) || from == types.String || from == types.Boolean
	case to == types.Boolean:
		return types.IsNumeric(from) || from == types.String || from == types.Boolean
	case to == types.Binary:
		return from == types.String
	case to == types.Date:
		return from == types.String || from == types.Timestamp
	case to == types.Timestamp:
		return from == types.String || from == types.Date
	}
	return false
}

func (e *Cast) fail(v interface{}, err error) (interface{}, error) {
	if e.FailOnError {
		if err == nil {
			err = errors.Wrapf(ErrParse, "cannot cast %v to %s", v, e.To.SimpleString())
		}
		return nil, err
	}
	return nil, nil
}

func (e *Cast) core(args ...interface{}) (interface{}, error) {
	v := args[0]
	switch e.To {
	case types.String:
		return e.toString(v)
	case types.Boolean:
		return e.toBoolean(v)
	case types.Integer:
		return e.toIntegral(v, math.MinInt32, math.MaxInt32, true)
	case types.Long:
		return e.toIntegral(v, math.MinInt64, math.MaxInt64, false)
	case types.Float:
		f, err := e.toFloat(v)
		if err != nil || f == nil {
			return f, err
		}
		return float32(f.(float64)), nil
	case types.Double:
		return e.toFloat(v)
	case types.Binary:
		return []byte(v.(string)), nil
	case types.Date:
		return e.toDate(v)
	case types.Timestamp:
		return e.toTimestamp(v)
	}
	return nil, errors.Errorf("cast: unsupported target %s", e.To.SimpleString())
}

func (e *Cast) toString(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case int64:
		if e.Child.DataType() == types.Timestamp {
			return microsToTime(t, e.Loc).Format(timestampLayout), nil
		}
		return strconv.FormatInt(t, 10), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case []byte:
		return string(t), nil
	}
	if e.Child.DataType() == types.Date {
		return daysToTime(v.(int32)).Format(dateLayout), nil
	}
	return cast.ToStringE(v)
}

func (e *Cast) toBoolean(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := cast.ToBoolE(strings.TrimSpace(t))
		if err != nil {
			return e.fail(v, nil)
		}
		return b, nil
	case int32:
		return t != 0, nil
	case int64:
		return t != 0, nil
	case float32:
		return t != 0, nil
	case float64:
		return t != 0, nil
	}
	return e.fail(v, nil)
}

func (e *Cast) toIntegral(v interface{}, lo, hi int64, narrow bool) (interface{}, error) {
	var wide int64
	switch t := v.(type) {
	case bool:
		if t {
			wide = 1
		}
	case int32:
		wide = int64(t)
	case int64:
		wide = t
	case float32:
		return e.floatToIntegral(float64(t), lo, hi, narrow)
	case float64:
		return e.floatToIntegral(t, lo, hi, narrow)
	case string:
		parsed, err := cast.ToInt64E(strings.TrimSpace(t))
		if err != nil {
			return e.fail(v, nil)
		}
		wide = parsed
	default:
		return e.fail(v, nil)
	}
	if wide < lo || wide > hi {
		if e.FailOnError {
			return nil, overflowErr("cast")
		}
	}
	if narrow {
		return int32(wide), nil
	}
	return wide, nil
}

func (e *Cast) floatToIntegral(f float64, lo, hi int64, narrow bool) (interface{}, error) {
	if math.IsNaN(f) || f < float64(lo) || f > float64(hi) {
		if e.FailOnError {
			return nil, overflowErr("cast")
		}
		if math.IsNaN(f) {
			f = 0
		}
	}
	wide := int64(f)
	if narrow {
		return int32(wide), nil
	}
	return wide, nil
}

func (e *Cast) toFloat(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return float64(1), nil
		}
		return float64(0), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case float32:
		return float64(t), nil
	case float64:
		return t, nil
	case string:
		f, err := cast.ToFloat64E(strings.TrimSpace(t))
		if err != nil {
			return e.fail(v, nil)
		}
		return f, nil
	}
	return e.fail(v, nil)
}

func (e *Cast) toDate(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case int32:
		return t, nil
	case int64:
		return timeToDays(microsToTime(t, e.Loc).Truncate(24 * time.Hour)), nil
	case string:
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(t))
		if err != nil {
			return e.fail(v, nil)
		}
		return timeToDays(parsed), nil
	}
	return e.fail(v, nil)
}

func (e *Cast) toTimestamp(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t) * secondsPerDay * microsPerSec, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range []string{timestampLayout, dateLayout, time.RFC3339} {
			if parsed, err := time.ParseInLocation(layout, s, e.Loc); err == nil {
				return timeToMicros(parsed), nil
			}
		}
		return e.fail(v, nil)
	}
	return e.fail(v, nil)
}

func (e *Cast) Eval(r row.InternalRow) (interface{}, error) {
	return evalNullIntolerant(r, e.Children(), e.core)
}

func (e *Cast) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	return genNullIntolerant(ctx, "cast", e.Children(), e.core)
}

func (e *Cast) String() string {
	return fmt.Sprintf("cast(%s as %s)", e.Child, e.To.SimpleString())
}

func (e *Cast) canonicalTag() string {
	tag := "cast:" + e.To.SimpleString()
	if e.FailOnError {
		tag += "!"
	}
	return tag
}
