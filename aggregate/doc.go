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
Package aggregate implements SQL aggregate functions over expression trees.

Most aggregates are declarative: their initialization, per-row update,
partial-buffer merge and final projection are all expressed as package expr
expressions over an aggregation buffer row. That keeps every aggregate on the
same dual evaluation paths (interpreted or compiled) as scalar expressions,
with identical NULL and overflow behavior.

Update expressions evaluate against JoinedRow(buffer, input) and merge
expressions against JoinedRow(buffer, otherBuffer); input and right-buffer
references are shifted past the buffer slots. The Evaluator assigns all slots
after evaluating them, so one slot's expression never reads another slot
mid-update.

The statistical aggregates (variance, stddev, covariance) maintain central
moments in Welford form. Merging two partial states is exact, so the result
does not depend on how rows were split across partial buffers, only on the
multiset of inputs per group.

CollectList is imperative: its buffer is a growing slice, not a fixed row.
*/
package aggregate
