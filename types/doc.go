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

/*
Package types defines the data type system used by the expression engine.

Types are immutable tags describing runtime value representations. Atomic
types (Boolean, Integer, Long, Float, Double, String, Binary, Date,
Timestamp, Null) are package-level singletons; container types (ArrayType,
MapType, StructType) compare structurally, so two independently constructed
StructTypes with identical fields are equal.

# Schemas

StructType is the schema type: an ordered list of named, typed, nullable
fields with O(1) name lookup built eagerly at construction. Mutation is by
reconstruction only: Add and Merge return new instances. Merge combines two
schemas field-wise and returns a SchemaMergeError on a type conflict.
FindNestedField descends through nested structs, arrays and maps under a
caller-supplied Resolver and rejects ambiguous matches.

# Type checking

AbstractType values (AnyType, NumericType, IntegralType, FractionalType,
TypeCollection) describe sets of acceptable input types. Expressions report
input type problems as TypeCheckResult values rather than errors so the
analyzer can aggregate every failure before execution begins.
*/
package types
