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

import "github.com/pkg/errors"

// Runtime evaluation error kinds. Strict (ANSI) mode surfaces these as hard
// errors; lenient mode turns most of them into NULL for the offending row.
// Callers discriminate with errors.Is.
var (
	// ErrOverflow is integer arithmetic overflow under ANSI mode.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrDivideByZero is division or remainder by zero under ANSI mode.
	ErrDivideByZero = errors.New("division by zero")
	// ErrInvalidIndex is an out-of-range index (elt, regexp group).
	ErrInvalidIndex = errors.New("index out of range")
	// ErrInvalidCalendar is an invalid date/time field combination.
	ErrInvalidCalendar = errors.New("invalid calendar field")
	// ErrParse is a datetime parse failure under a strict parse policy.
	ErrParse = errors.New("parse failure")
	// ErrUnsupportedCharset is a fatal decode error with no lenient form.
	ErrUnsupportedCharset = errors.New("unsupported charset")
)

func overflowErr(op string) error {
	return errors.Wrapf(ErrOverflow, "%s caused overflow", op)
}

func divideByZeroErr() error {
	return errors.WithStack(ErrDivideByZero)
}
