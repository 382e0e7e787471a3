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
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// canonicalTagger lets a node contribute its operator tag to the canonical
// form. Nodes without it fall back to their Go type name, which is stable
// within one build.
type canonicalTagger interface {
	canonicalTag() string
}

// Canonical renders an expression in a normalized textual form so that
// semantically equal trees render identically:
//
//   - commutative operators (+, *, =, <=>, AND, OR) order their operands by
//     hash, so a+b and b+a agree;
//   - > and >= rewrite to < and <= with the operands swapped;
//   - bound references render by ordinal only, dropping cosmetic names.
//
// The canonical form is only meaningful for deterministic expressions; two
// rand() calls render identically yet must never be unified, which is why
// SemanticEquals refuses nondeterministic input.
func Canonical(e Expression) string {
	switch n := e.(type) {
	case *Literal:
		if n.Value == nil {
			return "null:" + n.Type.SimpleString()
		}
		return fmt.Sprintf("%s:%v", n.Type.SimpleString(), n.Value)
	case *BoundReference:
		return fmt.Sprintf("input[%d]", n.Ordinal)
	case *AttributeReference:
		return "attr:" + n.Name
	case *BinaryArithmetic:
		l, r := Canonical(n.Left), Canonical(n.Right)
		if n.Op == OpAdd || n.Op == OpMultiply {
			l, r = orderPair(l, r)
		}
		tag := string(n.Op)
		if n.FailOnError {
			tag += "!"
		}
		return fmt.Sprintf("(%s %s %s)", l, tag, r)
	case *BinaryComparison:
		l, r := Canonical(n.Left), Canonical(n.Right)
		op := n.Op
		switch op {
		case OpEqualTo:
			l, r = orderPair(l, r)
		case OpGreaterThan:
			op = OpLessThan
			l, r = r, l
		case OpGreaterThanOrEqual:
			op = OpLessThanOrEqual
			l, r = r, l
		}
		return fmt.Sprintf("(%s %s %s)", l, string(op), r)
	case *EqualNullSafe:
		l, r := orderPair(Canonical(n.Left), Canonical(n.Right))
		return fmt.Sprintf("(%s <=> %s)", l, r)
	case *And:
		l, r := orderPair(Canonical(n.Left), Canonical(n.Right))
		return fmt.Sprintf("(%s and %s)", l, r)
	case *Or:
		l, r := orderPair(Canonical(n.Left), Canonical(n.Right))
		return fmt.Sprintf("(%s or %s)", l, r)
	case *In:
		// IN is an unordered membership test over its list.
		items := make([]string, len(n.List))
		for i, it := range n.List {
			items[i] = Canonical(it)
		}
		sort.Slice(items, func(i, j int) bool {
			return xxhash.Sum64String(items[i]) < xxhash.Sum64String(items[j])
		})
		return fmt.Sprintf("(%s in (%s))", Canonical(n.Value), strings.Join(items, ", "))
	}

	tag := fmt.Sprintf("%T", e)
	if t, ok := e.(canonicalTagger); ok {
		tag = t.canonicalTag()
	}
	children := e.Children()
	if len(children) == 0 {
		return tag
	}
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = Canonical(c)
	}
	return tag + "(" + strings.Join(parts, ", ") + ")"
}

func orderPair(a, b string) (string, string) {
	if xxhash.Sum64String(a) > xxhash.Sum64String(b) {
		return b, a
	}
	return a, b
}

// SemanticHash is the 64-bit hash of the canonical form, used to key the
// shared subexpression tables.
func SemanticHash(e Expression) uint64 {
	return xxhash.Sum64String(Canonical(e))
}

// SemanticEquals reports whether two deterministic expressions are
// structurally the same computation up to commutativity and cosmetic naming.
// Nondeterministic expressions never compare equal, themselves included.
func SemanticEquals(a, b Expression) bool {
	if !a.Deterministic() || !b.Deterministic() {
		return false
	}
	return Canonical(a) == Canonical(b)
}
