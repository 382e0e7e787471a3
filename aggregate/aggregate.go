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
	"github.com/pkg/errors"

	"github.com/rulego/exprsql/expr"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// DeclarativeAggregate describes an aggregate purely as expressions over its
// aggregation buffer, so update and merge run through the same dual-path
// evaluation machinery as any other expression.
//
// Buffer slots occupy ordinals [0, BufferWidth). Update expressions see
// JoinedRow(buffer, input): buffer slots keep their ordinals and input
// references must be pre-shifted by BufferWidth (the constructors in this
// package do that). Merge expressions see JoinedRow(buffer, otherBuffer)
// with the other buffer's slots shifted likewise.
type DeclarativeAggregate interface {
	Name() string
	DataType() types.DataType
	Nullable() bool
	BufferWidth() int
	// InitialValues yields one foldable expression per buffer slot.
	InitialValues() []expr.Expression
	// UpdateExpressions yields the new value of each buffer slot for one
	// input row.
	UpdateExpressions() []expr.Expression
	// MergeExpressions folds a second partial buffer into the first.
	MergeExpressions() []expr.Expression
	// EvaluateExpression computes the final result from the buffer.
	EvaluateExpression() expr.Expression
}

// ImperativeAggregate is the escape hatch for aggregates whose buffer does
// not fit a fixed row of scalar slots.
type ImperativeAggregate interface {
	Name() string
	DataType() types.DataType
	Nullable() bool
	NewBuffer() interface{}
	Update(buffer interface{}, input row.InternalRow) (interface{}, error)
	Merge(buffer, other interface{}) (interface{}, error)
	Final(buffer interface{}) (interface{}, error)
}

// bufferRef reads buffer slot i; valid in update, merge and evaluate
// positions alike.
func bufferRef(i int, dt types.DataType) *expr.BoundReference {
	return expr.NewBoundReference(i, dt, true)
}

// shiftReferences moves every bound reference in e up by offset, placing an
// input-schema expression behind the buffer slots of a JoinedRow.
func shiftReferences(e expr.Expression, offset int) expr.Expression {
	return expr.Transform(e, func(n expr.Expression) expr.Expression {
		if b, ok := n.(*expr.BoundReference); ok {
			return expr.NewBoundReference(b.Ordinal+offset, b.Type, b.CanBeNull)
		}
		return n
	})
}

// Evaluator drives one declarative aggregate over buffers. Update and merge
// evaluate all slot expressions against the joined view first and assign
// afterwards, so a slot expression never observes a half-updated buffer.
type Evaluator struct {
	agg      DeclarativeAggregate
	initial  []expr.Expression
	update   []expr.Expression
	merge    []expr.Expression
	evaluate expr.Expression
	scratch  []interface{}
}

// NewEvaluator validates the aggregate's expression shapes and returns a
// driver for it.
func NewEvaluator(agg DeclarativeAggregate) (*Evaluator, error) {
	ev := &Evaluator{
		agg:      agg,
		initial:  agg.InitialValues(),
		update:   agg.UpdateExpressions(),
		merge:    agg.MergeExpressions(),
		evaluate: agg.EvaluateExpression(),
		scratch:  make([]interface{}, agg.BufferWidth()),
	}
	w := agg.BufferWidth()
	if len(ev.initial) != w || len(ev.update) != w || len(ev.merge) != w {
		return nil, errors.Errorf("aggregate %s: expression counts %d/%d/%d do not match buffer width %d",
			agg.Name(), len(ev.initial), len(ev.update), len(ev.merge), w)
	}
	return ev, nil
}

// NewBuffer allocates and initializes an aggregation buffer.
func (ev *Evaluator) NewBuffer() (*row.GenericRow, error) {
	buf := row.NewGenericRow(ev.agg.BufferWidth())
	for i, init := range ev.initial {
		v, err := init.Eval(nil)
		if err != nil {
			return nil, err
		}
		buf.SetValue(i, v)
	}
	return buf, nil
}

func (ev *Evaluator) apply(exprs []expr.Expression, joined row.InternalRow, buf *row.GenericRow) error {
	for i, e := range exprs {
		v, err := e.Eval(joined)
		if err != nil {
			return err
		}
		ev.scratch[i] = v
	}
	for i, v := range ev.scratch {
		buf.SetValue(i, v)
	}
	return nil
}

// Update folds one input row into the buffer.
func (ev *Evaluator) Update(buf *row.GenericRow, input row.InternalRow) error {
	return ev.apply(ev.update, row.NewJoinedRow(buf, input), buf)
}

// Merge folds a second partial buffer into the first. Other is not modified.
func (ev *Evaluator) Merge(buf, other *row.GenericRow) error {
	return ev.apply(ev.merge, row.NewJoinedRow(buf, other), buf)
}

// Final computes the aggregate result from a buffer.
func (ev *Evaluator) Final(buf *row.GenericRow) (interface{}, error) {
	return ev.evaluate.Eval(buf)
}
