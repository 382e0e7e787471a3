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

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirst(t *testing.T) {
	rows := longRows(nil, int64(1), int64(2))

	// Respecting nulls, the first input wins even when it is NULL.
	assert.Nil(t, runAggregate(t, NewFirst(longInput(), false), rows))
	assert.Equal(t, int64(1), runAggregate(t, NewFirst(longInput(), true), rows))

	assert.Nil(t, runAggregate(t, NewFirst(longInput(), true), longRows(nil, nil)))
	assert.Nil(t, runAggregate(t, NewFirst(longInput(), false), nil))
}

func TestLast(t *testing.T) {
	rows := longRows(int64(1), int64(2), nil)

	assert.Nil(t, runAggregate(t, NewLast(longInput(), false), rows))
	assert.Equal(t, int64(2), runAggregate(t, NewLast(longInput(), true), rows))

	assert.Nil(t, runAggregate(t, NewLast(longInput(), true), longRows(nil)))
}

// Merge keeps encounter order across partial buffers: first prefers the
// left buffer once it captured anything, last prefers the right.
func TestFirstLastMerge(t *testing.T) {
	rows := longRows(nil, int64(7), int64(8), nil)

	for at := 0; at <= len(rows); at++ {
		assert.Equal(t, int64(7),
			runSplit(t, NewFirst(longInput(), true), rows, at), "first split at %d", at)
		assert.Equal(t, int64(8),
			runSplit(t, NewLast(longInput(), true), rows, at), "last split at %d", at)
	}

	// A left buffer that captured a NULL still shadows the right one.
	assert.Nil(t, runSplit(t, NewFirst(longInput(), false), rows, 1))
}
