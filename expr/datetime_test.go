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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/exprsql/types"
)

func days(year int, month time.Month, day int) int32 {
	return int32(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

func micros(year int, month time.Month, day, hour, min, sec int) int64 {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC).Unix() * microsPerSec
}

func dateLit(d int32) Expression { return NewTypedLiteral(d, types.Date) }

func tsLit(us int64) Expression { return NewTypedLiteral(us, types.Timestamp) }

func TestDateAddSub(t *testing.T) {
	// Day arithmetic, no calendar clamping: the last of January plus one day
	// is the first of February.
	assertBothEval(t,
		NewDateAdd(dateLit(days(2021, time.January, 31)), NewLiteral(int32(1))),
		emptyRow(), days(2021, time.February, 1))
	assertBothEval(t,
		NewDateAdd(dateLit(days(2020, time.February, 28)), NewLiteral(int32(1))),
		emptyRow(), days(2020, time.February, 29))
	assertBothEval(t,
		NewDateSub(dateLit(days(2021, time.March, 1)), NewLiteral(int32(1))),
		emptyRow(), days(2021, time.February, 28))
	assertBothEval(t,
		NewDateAdd(NullLiteral(types.Date), NewLiteral(int32(1))),
		emptyRow(), nil)
}

func TestMakeDate(t *testing.T) {
	md := func(y, m, d int32, ansi bool) Expression {
		return NewMakeDate(NewLiteral(y), NewLiteral(m), NewLiteral(d), ansi)
	}

	assertBothEval(t, md(2021, 2, 28, false), emptyRow(), days(2021, time.February, 28))
	assertBothEval(t, md(2020, 2, 29, false), emptyRow(), days(2020, time.February, 29))

	// Impossible calendar fields: NULL in lenient mode, an error under ANSI.
	assertBothEval(t, md(2021, 2, 30, false), emptyRow(), nil)
	assertBothEval(t, md(2021, 13, 1, false), emptyRow(), nil)
	assertBothError(t, md(2021, 2, 30, true), emptyRow(), ErrInvalidCalendar)
}

func TestMakeTimestamp(t *testing.T) {
	mts := func(y, mo, d, h, mi, s int32, ansi bool) Expression {
		return NewMakeTimestamp(
			NewLiteral(y), NewLiteral(mo), NewLiteral(d),
			NewLiteral(h), NewLiteral(mi), NewLiteral(s),
			time.UTC, ansi)
	}

	assertBothEval(t, mts(2021, 3, 4, 5, 6, 7, false), emptyRow(),
		micros(2021, time.March, 4, 5, 6, 7))
	assertBothEval(t, mts(2021, 2, 30, 0, 0, 0, false), emptyRow(), nil)
	assertBothEval(t, mts(2021, 3, 4, 24, 0, 0, false), emptyRow(), nil)
	assertBothError(t, mts(2021, 3, 4, 0, 61, 0, true), emptyRow(), ErrInvalidCalendar)
}

func TestToTimestamp(t *testing.T) {
	tots := func(s string, ansi bool) Expression {
		return NewToTimestamp(
			NewLiteral(s), NewLiteral("yyyy-MM-dd HH:mm:ss"), time.UTC, ansi)
	}

	assertBothEval(t, tots("2021-03-04 05:06:07", false), emptyRow(),
		micros(2021, time.March, 4, 5, 6, 7))
	assertBothEval(t, tots("garbage", false), emptyRow(), nil)
	assertBothError(t, tots("garbage", true), emptyRow(), ErrParse)
}

func TestUnixTimestamp(t *testing.T) {
	e := NewUnixTimestamp(
		NewLiteral("2021-03-04 05:06:07"), NewLiteral("yyyy-MM-dd HH:mm:ss"),
		time.UTC, false)
	assertBothEval(t, e, emptyRow(),
		time.Date(2021, time.March, 4, 5, 6, 7, 0, time.UTC).Unix())

	bad := NewUnixTimestamp(
		NewLiteral("x"), NewLiteral("yyyy-MM-dd"), time.UTC, false)
	assertBothEval(t, bad, emptyRow(), nil)
}

func TestDateFormat(t *testing.T) {
	ts := tsLit(micros(2021, time.March, 4, 5, 6, 7))

	assertBothEval(t,
		NewDateFormat(ts, NewLiteral("yyyy-MM-dd HH:mm:ss"), time.UTC),
		emptyRow(), "2021-03-04 05:06:07")
	assertBothEval(t,
		NewDateFormat(ts, NewLiteral("dd/MM/yyyy"), time.UTC),
		emptyRow(), "04/03/2021")
	assertBothEval(t,
		NewDateFormat(NullLiteral(types.Timestamp), NewLiteral("yyyy"), time.UTC),
		emptyRow(), nil)
}

func TestDateFormatSessionTimeZone(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	ts := tsLit(micros(2021, time.March, 4, 23, 0, 0))
	assertBothEval(t,
		NewDateFormat(ts, NewLiteral("yyyy-MM-dd HH"), loc),
		emptyRow(), "2021-03-05 07")
}

func TestExtract(t *testing.T) {
	d := dateLit(days(2021, time.March, 4))
	ts := tsLit(micros(2021, time.March, 4, 5, 6, 7))

	// Date fields work on both dates and timestamps.
	assertBothEval(t, NewYear(d, time.UTC), emptyRow(), int32(2021))
	assertBothEval(t, NewMonth(d, time.UTC), emptyRow(), int32(3))
	assertBothEval(t, NewDayOfMonth(d, time.UTC), emptyRow(), int32(4))
	assertBothEval(t, NewYear(ts, time.UTC), emptyRow(), int32(2021))

	assertBothEval(t, NewHour(ts, time.UTC), emptyRow(), int32(5))
	assertBothEval(t, NewMinute(ts, time.UTC), emptyRow(), int32(6))
	assertBothEval(t, NewSecond(ts, time.UTC), emptyRow(), int32(7))

	// Time-of-day fields decompose in the session timezone.
	loc := time.FixedZone("UTC+8", 8*3600)
	assertBothEval(t, NewHour(ts, loc), emptyRow(), int32(13))

	// Time-of-day fields reject dates.
	res := NewHour(d, time.UTC).CheckInputDataTypes()
	assert.False(t, res.OK())
	res = NewYear(d, time.UTC).CheckInputDataTypes()
	assert.True(t, res.OK())
}

func TestCurrentDateAndTimestampAreFixed(t *testing.T) {
	cd := NewCurrentDate(time.UTC)
	first, err := cd.Eval(emptyRow())
	require.NoError(t, err)
	second, err := cd.Eval(emptyRow())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cts := NewCurrentTimestamp()
	v, err := cts.Eval(emptyRow())
	require.NoError(t, err)
	assert.InDelta(t, float64(timeToMicros(time.Now())), float64(v.(int64)),
		float64(time.Minute.Microseconds()))
	assertBothEval(t, cts, emptyRow(), v)
}

func TestConvertTimeFormat(t *testing.T) {
	tests := []struct {
		pattern string
		layout  string
	}{
		{"yyyy-MM-dd", "2006-01-02"},
		{"yyyy-MM-dd HH:mm:ss", "2006-01-02 15:04:05"},
		{"HH:mm:ss.SSS", "15:04:05.000"},
		{"yyyy'T'MM", "2006T01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.layout, convertTimeFormat(tt.pattern), "pattern %s", tt.pattern)
	}
}
