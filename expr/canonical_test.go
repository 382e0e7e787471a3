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

	"github.com/stretchr/testify/assert"

	"github.com/rulego/exprsql/types"
)

func TestCanonicalCommutativity(t *testing.T) {
	a := NewBoundReference(0, types.Integer, true)
	b := NewBoundReference(1, types.Integer, true)

	assert.Equal(t, Canonical(NewAdd(a, b)), Canonical(NewAdd(b, a)))
	assert.Equal(t, Canonical(NewMultiply(a, b)), Canonical(NewMultiply(b, a)))
	assert.Equal(t, Canonical(NewEqualTo(a, b)), Canonical(NewEqualTo(b, a)))
	assert.Equal(t, Canonical(NewEqualNullSafe(a, b)), Canonical(NewEqualNullSafe(b, a)))
	assert.Equal(t, Canonical(NewAnd(a, b)), Canonical(NewAnd(b, a)))
	assert.Equal(t, Canonical(NewOr(a, b)), Canonical(NewOr(b, a)))

	// Non-commutative operators keep their operand order.
	assert.NotEqual(t, Canonical(NewSubtract(a, b)), Canonical(NewSubtract(b, a)))
	assert.NotEqual(t, Canonical(NewDivide(a, b)), Canonical(NewDivide(b, a)))
}

func TestCanonicalComparisonFlip(t *testing.T) {
	a := NewBoundReference(0, types.Integer, true)
	b := NewBoundReference(1, types.Integer, true)

	// a > b and b < a are the same computation, likewise >= and <=.
	assert.True(t, SemanticEquals(NewGreaterThan(a, b), NewLessThan(b, a)))
	assert.True(t, SemanticEquals(NewGreaterThanOrEqual(a, b), NewLessThanOrEqual(b, a)))
	assert.False(t, SemanticEquals(NewGreaterThan(a, b), NewLessThan(a, b)))
}

func TestCanonicalInIsUnordered(t *testing.T) {
	v := NewBoundReference(0, types.Long, true)
	one, two := NewLiteral(int64(1)), NewLiteral(int64(2))

	assert.True(t, SemanticEquals(NewIn(v, one, two), NewIn(v, two, one)))
	assert.False(t, SemanticEquals(NewIn(v, one), NewIn(v, two)))
}

func TestCanonicalDistinguishesErrorMode(t *testing.T) {
	a := NewBoundReference(0, types.Long, true)
	b := NewBoundReference(1, types.Long, true)

	lenient := NewArithmetic(OpAdd, a, b, false)
	ansi := NewArithmetic(OpAdd, a, b, true)
	assert.NotEqual(t, Canonical(lenient), Canonical(ansi))
	assert.NotEqual(t, SemanticHash(lenient), SemanticHash(ansi))
}

func TestCanonicalIgnoresCosmeticNames(t *testing.T) {
	// Bound references render by ordinal; nullability and name do not matter
	// for identity.
	assert.Equal(t,
		Canonical(NewBoundReference(2, types.Long, true)),
		Canonical(NewBoundReference(2, types.Integer, false)))
}

func TestSemanticEqualsRefusesNondeterminism(t *testing.T) {
	r := NewRand(42)
	assert.False(t, SemanticEquals(r, r))
	assert.False(t, SemanticEquals(NewRand(42), NewRand(42)))
	assert.False(t, SemanticEquals(
		NewAdd(NewRand(1), NewLiteral(1.0)),
		NewAdd(NewRand(1), NewLiteral(1.0))))

	// Deterministic trees with equal canonical forms do compare equal.
	a := NewBoundReference(0, types.Double, true)
	assert.True(t, SemanticEquals(NewAdd(a, NewLiteral(1.0)), NewAdd(NewLiteral(1.0), a)))
}

func TestSemanticHashStability(t *testing.T) {
	a := NewBoundReference(0, types.Integer, true)
	b := NewBoundReference(1, types.Integer, true)
	e1 := NewGreaterThan(NewAdd(a, b), NewLiteral(int32(0)))
	e2 := NewGreaterThan(NewAdd(b, a), NewLiteral(int32(0)))

	assert.Equal(t, SemanticHash(e1), SemanticHash(e2))
	assert.Equal(t, SemanticHash(e1), SemanticHash(e1))
}
