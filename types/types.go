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

import (
	"fmt"
	"strings"
)

// DataType describes the runtime representation of a value. Nullability is
// tracked separately (on StructField and on expressions), never on the type
// itself. Atomic types are package-level singletons; container types compare
// structurally via Equals.
type DataType interface {
	// DefaultSize returns the default size in bytes of a value of this type,
	// used for cost estimation.
	DefaultSize() int
	// SimpleString returns the compact, user-facing name, e.g. "int".
	SimpleString() string
	// CatalogString returns the name used in catalog metadata.
	CatalogString() string
	// SQL returns the uppercase SQL name, e.g. "INT".
	SQL() string
	// Equals reports structural type equality.
	Equals(other DataType) bool
}

// atomicType is the shared implementation of all non-container types.
type atomicType struct {
	name        string
	defaultSize int
}

func (t *atomicType) DefaultSize() int      { return t.defaultSize }
func (t *atomicType) SimpleString() string  { return t.name }
func (t *atomicType) CatalogString() string { return t.name }
func (t *atomicType) SQL() string           { return strings.ToUpper(t.name) }
func (t *atomicType) Equals(other DataType) bool {
	o, ok := other.(*atomicType)
	return ok && o.name == t.name
}
func (t *atomicType) String() string { return t.name }

// Atomic type singletons. Runtime representations:
//
//	Boolean   bool
//	Integer   int32
//	Long      int64
//	Float     float32
//	Double    float64
//	String    string
//	Binary    []byte
//	Date      int32 (days since Unix epoch)
//	Timestamp int64 (microseconds since Unix epoch, UTC)
//	Null      untyped nil
var (
	Boolean   DataType = &atomicType{name: "boolean", defaultSize: 1}
	Integer   DataType = &atomicType{name: "int", defaultSize: 4}
	Long      DataType = &atomicType{name: "bigint", defaultSize: 8}
	Float     DataType = &atomicType{name: "float", defaultSize: 4}
	Double    DataType = &atomicType{name: "double", defaultSize: 8}
	String    DataType = &atomicType{name: "string", defaultSize: 20}
	Binary    DataType = &atomicType{name: "binary", defaultSize: 100}
	Date      DataType = &atomicType{name: "date", defaultSize: 4}
	Timestamp DataType = &atomicType{name: "timestamp", defaultSize: 8}
	Null      DataType = &atomicType{name: "void", defaultSize: 1}
)

// ArrayType is a sequence of elements of a single type.
type ArrayType struct {
	Element      DataType
	ContainsNull bool
}

func NewArrayType(element DataType, containsNull bool) *ArrayType {
	return &ArrayType{Element: element, ContainsNull: containsNull}
}

func (t *ArrayType) DefaultSize() int      { return t.Element.DefaultSize() }
func (t *ArrayType) SimpleString() string  { return "array<" + t.Element.SimpleString() + ">" }
func (t *ArrayType) CatalogString() string { return "array<" + t.Element.CatalogString() + ">" }
func (t *ArrayType) SQL() string           { return "ARRAY<" + t.Element.SQL() + ">" }
func (t *ArrayType) Equals(other DataType) bool {
	o, ok := other.(*ArrayType)
	return ok && o.ContainsNull == t.ContainsNull && o.Element.Equals(t.Element)
}
func (t *ArrayType) String() string { return t.SimpleString() }

// MapType is an association from keys of one type to values of another.
type MapType struct {
	Key               DataType
	Value             DataType
	ValueContainsNull bool
}

func NewMapType(key, value DataType, valueContainsNull bool) *MapType {
	return &MapType{Key: key, Value: value, ValueContainsNull: valueContainsNull}
}

func (t *MapType) DefaultSize() int { return t.Key.DefaultSize() + t.Value.DefaultSize() }
func (t *MapType) SimpleString() string {
	return fmt.Sprintf("map<%s,%s>", t.Key.SimpleString(), t.Value.SimpleString())
}
func (t *MapType) CatalogString() string {
	return fmt.Sprintf("map<%s,%s>", t.Key.CatalogString(), t.Value.CatalogString())
}
func (t *MapType) SQL() string {
	return fmt.Sprintf("MAP<%s, %s>", t.Key.SQL(), t.Value.SQL())
}
func (t *MapType) Equals(other DataType) bool {
	o, ok := other.(*MapType)
	return ok && o.ValueContainsNull == t.ValueContainsNull &&
		o.Key.Equals(t.Key) && o.Value.Equals(t.Value)
}
func (t *MapType) String() string { return t.SimpleString() }

// IsNumeric reports whether dt is one of the numeric atomic types.
func IsNumeric(dt DataType) bool {
	switch dt {
	case Integer, Long, Float, Double:
		return true
	}
	return false
}

// IsIntegral reports whether dt is a fixed-point numeric type.
func IsIntegral(dt DataType) bool {
	return dt == Integer || dt == Long
}

// IsFractional reports whether dt is a floating-point numeric type.
func IsFractional(dt DataType) bool {
	return dt == Float || dt == Double
}

// IsAtomic reports whether dt is a non-container type.
func IsAtomic(dt DataType) bool {
	_, ok := dt.(*atomicType)
	return ok
}

// IsPrimitive reports whether values of dt are passed by value. Non-primitive
// values must be defensively copied when an evaluator retains them across
// rows.
func IsPrimitive(dt DataType) bool {
	switch dt {
	case Boolean, Integer, Long, Float, Double, Date, Timestamp:
		return true
	}
	return false
}

// IsOrdered reports whether values of dt support < comparisons.
func IsOrdered(dt DataType) bool {
	switch dt {
	case Integer, Long, Float, Double, String, Binary, Date, Timestamp, Boolean:
		return true
	}
	return false
}
