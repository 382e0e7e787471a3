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
Package exprsql is an embeddable SQL expression evaluation core: typed
expression trees with two interchangeable execution paths, an interpreter
and a code generator, guaranteed to produce identical results.

# Core Features

  - Typed expression trees with SQL three-valued NULL semantics
  - Interpreted and compiled evaluation with a silent compile-time fallback
  - ANSI and lenient error modes captured per node at analysis time
  - Declarative aggregates (count, sum, avg, min/max, first/last, variance,
    stddev, covariance) with exact parallel merge
  - Shared-subexpression elimination on both evaluation paths
  - Session time zone and locale aware datetime and string functions

# Getting Started

Build a tree, bind it against a schema and evaluate rows:

	schema := types.NewStructType(
		types.StructField{Name: "temperature", Type: types.Double, Nullable: true},
	)
	tree := expr.NewGreaterThan(
		expr.NewAttributeReference("temperature", types.Double, true),
		expr.NewLiteral(30.0),
	)

	engine := exprsql.New()
	pred, err := engine.Predicate(tree, schema)
	if err != nil {
		log.Fatal(err)
	}
	ok, err := pred.Matches(row.RowOf(31.5))

The factories prefer compiled evaluators and fall back to interpretation
when code generation fails; callers never need to care which path they got.
*/
package exprsql
