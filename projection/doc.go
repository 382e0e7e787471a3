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
Package projection builds row-level evaluators (predicates and projections)
from expression trees.

The factories bind attribute references against the input schema, type-check
the whole tree, and then prefer the compiled path: the tree is translated by
package codegen into one program per output expression. When code generation
fails for any reason the factory logs the failure and silently falls back to
the interpreted form. The two forms are semantically identical, so callers
never observe which one they got beyond throughput.

The interpreted form carries its own shared-subexpression elimination:
repeated deterministic subtrees are wrapped so they evaluate once per row,
mirroring the fragment reuse the compiled path performs at generation time.
*/
package projection
