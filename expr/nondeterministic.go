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
	"math/rand"

	"github.com/google/uuid"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// The nondeterministic leaves own per-partition mutable state. Interpretation
// keeps the state on the node, seeded by InitializeInternal; generated code
// keeps an equivalent state slot on the codegen context, seeded by
// Initialize on the compiled evaluator. Both derive the state purely from
// the seed and the partition index, so the two paths emit identical
// sequences for identical row orders.

// Rand draws uniform float64 values in [0, 1) from a stream seeded by
// seed + partitionIndex.
type Rand struct {
	leaf
	Seed int64

	rng *rand.Rand
}

func NewRand(seed int64) *Rand { return &Rand{Seed: seed} }

func (e *Rand) DataType() types.DataType { return types.Double }
func (e *Rand) Nullable() bool           { return false }
func (e *Rand) Deterministic() bool      { return false }

func (e *Rand) WithChildren([]Expression) Expression {
	return &Rand{Seed: e.Seed}
}

func (e *Rand) InitializeInternal(partitionIndex int) {
	e.rng = rand.New(rand.NewSource(e.Seed + int64(partitionIndex)))
}

func (e *Rand) Eval(row.InternalRow) (interface{}, error) {
	if e.rng == nil {
		e.InitializeInternal(0)
	}
	return e.rng.Float64(), nil
}

func (e *Rand) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	seed := e.Seed
	slot := ctx.AddMutableState(func(partitionIndex int) interface{} {
		return rand.New(rand.NewSource(seed + int64(partitionIndex)))
	})
	name := ctx.RegisterFunc("rand", func(...interface{}) (interface{}, error) {
		return slot.Get().(*rand.Rand).Float64(), nil
	})
	v := ctx.FreshName("v")
	return &codegen.ExprCode{
		Stmts:  []string{fmt.Sprintf("let %s = %s()", v, name)},
		IsNull: codegen.FalseLiteral,
		Value:  v,
	}, nil
}

func (e *Rand) String() string { return fmt.Sprintf("rand(%d)", e.Seed) }

// randomUUID draws 16 bytes from the stream and stamps the RFC 4122
// version 4 and variant bits before formatting.
func randomUUID(rng *rand.Rand) string {
	var b [16]byte
	rng.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return uuid.UUID(b).String()
}

// Uuid produces version 4 UUID strings from a seeded stream, so a fixed seed
// and partition replay the same identifiers.
type Uuid struct {
	leaf
	Seed int64

	rng *rand.Rand
}

func NewUuid(seed int64) *Uuid { return &Uuid{Seed: seed} }

func (e *Uuid) DataType() types.DataType { return types.String }
func (e *Uuid) Nullable() bool           { return false }
func (e *Uuid) Deterministic() bool      { return false }

func (e *Uuid) WithChildren([]Expression) Expression {
	return &Uuid{Seed: e.Seed}
}

func (e *Uuid) InitializeInternal(partitionIndex int) {
	e.rng = rand.New(rand.NewSource(e.Seed + int64(partitionIndex)))
}

func (e *Uuid) Eval(row.InternalRow) (interface{}, error) {
	if e.rng == nil {
		e.InitializeInternal(0)
	}
	return randomUUID(e.rng), nil
}

func (e *Uuid) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	seed := e.Seed
	slot := ctx.AddMutableState(func(partitionIndex int) interface{} {
		return rand.New(rand.NewSource(seed + int64(partitionIndex)))
	})
	name := ctx.RegisterFunc("uuid", func(...interface{}) (interface{}, error) {
		return randomUUID(slot.Get().(*rand.Rand)), nil
	})
	v := ctx.FreshName("v")
	return &codegen.ExprCode{
		Stmts:  []string{fmt.Sprintf("let %s = %s()", v, name)},
		IsNull: codegen.FalseLiteral,
		Value:  v,
	}, nil
}

func (e *Uuid) String() string { return "uuid()" }

type midState struct {
	base  int64
	count int64
}

func (s *midState) next() int64 {
	v := s.base + s.count
	s.count++
	return v
}

// MonotonicallyIncreasingID hands out 64-bit ids unique across partitions:
// the partition index in the upper 31 bits, a per-partition counter in the
// lower 33. Ids are monotonic within a partition, not consecutive across
// partitions.
type MonotonicallyIncreasingID struct {
	leaf

	state *midState
}

func NewMonotonicallyIncreasingID() *MonotonicallyIncreasingID {
	return &MonotonicallyIncreasingID{}
}

func (e *MonotonicallyIncreasingID) DataType() types.DataType { return types.Long }
func (e *MonotonicallyIncreasingID) Nullable() bool           { return false }
func (e *MonotonicallyIncreasingID) Deterministic() bool      { return false }

func (e *MonotonicallyIncreasingID) WithChildren([]Expression) Expression {
	return &MonotonicallyIncreasingID{}
}

func (e *MonotonicallyIncreasingID) InitializeInternal(partitionIndex int) {
	e.state = &midState{base: int64(partitionIndex) << 33}
}

func (e *MonotonicallyIncreasingID) Eval(row.InternalRow) (interface{}, error) {
	if e.state == nil {
		e.InitializeInternal(0)
	}
	return e.state.next(), nil
}

func (e *MonotonicallyIncreasingID) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	slot := ctx.AddMutableState(func(partitionIndex int) interface{} {
		return &midState{base: int64(partitionIndex) << 33}
	})
	name := ctx.RegisterFunc("mid", func(...interface{}) (interface{}, error) {
		return slot.Get().(*midState).next(), nil
	})
	v := ctx.FreshName("v")
	return &codegen.ExprCode{
		Stmts:  []string{fmt.Sprintf("let %s = %s()", v, name)},
		IsNull: codegen.FalseLiteral,
		Value:  v,
	}, nil
}

func (e *MonotonicallyIncreasingID) String() string {
	return "monotonically_increasing_id()"
}

// InputFileName reports the file feeding the current rows, the empty string
// when the source is not file-backed. The evaluation driver publishes the
// name through SetInputFileName before each batch.
type InputFileName struct {
	leaf

	name string
}

func NewInputFileName() *InputFileName { return &InputFileName{} }

// SetInputFileName records the file the next rows come from.
func (e *InputFileName) SetInputFileName(name string) { e.name = name }

func (e *InputFileName) DataType() types.DataType { return types.String }
func (e *InputFileName) Nullable() bool           { return false }
func (e *InputFileName) Deterministic() bool      { return false }

func (e *InputFileName) WithChildren([]Expression) Expression { return e }

func (e *InputFileName) Eval(row.InternalRow) (interface{}, error) {
	return e.name, nil
}

func (e *InputFileName) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	node := e
	name := ctx.RegisterFunc("inputfile", func(...interface{}) (interface{}, error) {
		return node.name, nil
	})
	v := ctx.FreshName("v")
	return &codegen.ExprCode{
		Stmts:  []string{fmt.Sprintf("let %s = %s()", v, name)},
		IsNull: codegen.FalseLiteral,
		Value:  v,
	}, nil
}

func (e *InputFileName) String() string { return "input_file_name()" }
