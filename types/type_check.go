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

package types

import "fmt"

// TypeCheckResult is the outcome of an expression's input type check. It is a
// value, never a panic or error: the analyzer collects failures across the
// whole tree before anything is evaluated.
type TypeCheckResult struct {
	ok      bool
	message string
}

// TypeCheckSuccess is the shared success result.
var TypeCheckSuccess = TypeCheckResult{ok: true}

// TypeCheckFailure builds a failed result with the given message.
func TypeCheckFailure(message string) TypeCheckResult {
	return TypeCheckResult{message: message}
}

// TypeCheckFailuref builds a failed result with a formatted message.
func TypeCheckFailuref(format string, args ...interface{}) TypeCheckResult {
	return TypeCheckResult{message: fmt.Sprintf(format, args...)}
}

// OK reports whether the check passed.
func (r TypeCheckResult) OK() bool { return r.ok }

// Message returns the failure message, empty on success.
func (r TypeCheckResult) Message() string { return r.message }

func (r TypeCheckResult) String() string {
	if r.ok {
		return "success"
	}
	return "failure: " + r.message
}
