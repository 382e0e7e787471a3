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

import "strings"

// AbstractType stands for a set of concrete types during input type checking.
// Expressions declare expected input types as AbstractType values; the checker
// calls AcceptsType against the actual child type.
type AbstractType interface {
	// AcceptsType reports whether a value of the concrete type dt satisfies
	// this abstract type.
	AcceptsType(dt DataType) bool
	// DefaultConcreteType returns the preferred concrete type used when an
	// implicit coercion target must be picked.
	DefaultConcreteType() DataType
	// SimpleString returns a readable description for error messages.
	SimpleString() string
}

// ConcreteType adapts a DataType for use as an expected input type.
type ConcreteType struct{ Type DataType }

func (c ConcreteType) AcceptsType(dt DataType) bool  { return c.Type.Equals(dt) || dt == Null }
func (c ConcreteType) DefaultConcreteType() DataType { return c.Type }
func (c ConcreteType) SimpleString() string          { return c.Type.SimpleString() }

// anyType accepts every concrete type.
type anyType struct{}

func (anyType) AcceptsType(DataType) bool      { return true }
func (anyType) DefaultConcreteType() DataType  { return String }
func (anyType) SimpleString() string           { return "any" }

// numericType accepts all numeric types.
type numericType struct{}

func (numericType) AcceptsType(dt DataType) bool { return IsNumeric(dt) || dt == Null }
func (numericType) DefaultConcreteType() DataType {
	return Double
}
func (numericType) SimpleString() string { return "numeric" }

// integralType accepts fixed-point numeric types.
type integralType struct{}

func (integralType) AcceptsType(dt DataType) bool  { return IsIntegral(dt) || dt == Null }
func (integralType) DefaultConcreteType() DataType { return Long }
func (integralType) SimpleString() string          { return "integral" }

// fractionalType accepts floating-point numeric types.
type fractionalType struct{}

func (fractionalType) AcceptsType(dt DataType) bool  { return IsFractional(dt) || dt == Null }
func (fractionalType) DefaultConcreteType() DataType { return Double }
func (fractionalType) SimpleString() string          { return "fractional" }

var (
	// AnyType accepts every input type.
	AnyType AbstractType = anyType{}
	// NumericType accepts int, bigint, float and double.
	NumericType AbstractType = numericType{}
	// IntegralType accepts int and bigint.
	IntegralType AbstractType = integralType{}
	// FractionalType accepts float and double.
	FractionalType AbstractType = fractionalType{}
)

// TypeCollection accepts any of its member types. Order matters: the first
// member that accepts a candidate wins, and the first member is the preferred
// implicit coercion target. TypeCollection(String, Binary) therefore prefers
// String when both are viable.
type TypeCollection struct {
	members []AbstractType
}

// NewTypeCollection builds a TypeCollection from concrete or abstract types.
func NewTypeCollection(members ...AbstractType) *TypeCollection {
	return &TypeCollection{members: members}
}

func (t *TypeCollection) AcceptsType(dt DataType) bool {
	for _, m := range t.members {
		if m.AcceptsType(dt) {
			return true
		}
	}
	return false
}

func (t *TypeCollection) DefaultConcreteType() DataType {
	return t.members[0].DefaultConcreteType()
}

func (t *TypeCollection) SimpleString() string {
	parts := make([]string, len(t.members))
	for i, m := range t.members {
		parts[i] = m.SimpleString()
	}
	return "(" + strings.Join(parts, " or ") + ")"
}

// StringOrBinary is the common expected type of byte-string functions.
var StringOrBinary = NewTypeCollection(ConcreteType{String}, ConcreteType{Binary})
