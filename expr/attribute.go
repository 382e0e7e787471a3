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

	"github.com/pkg/errors"

	"github.com/rulego/exprsql/codegen"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// AttributeReference is a column reference by name, produced by the analyzer
// before binding. It cannot be evaluated; BindReferences rewrites it into a
// BoundReference against a concrete schema.
type AttributeReference struct {
	leaf
	Name     string
	Type     types.DataType
	CanBeNull bool
}

// NewAttributeReference creates an unresolved column reference.
func NewAttributeReference(name string, dt types.DataType, nullable bool) *AttributeReference {
	return &AttributeReference{Name: name, Type: dt, CanBeNull: nullable}
}

func (a *AttributeReference) DataType() types.DataType { return a.Type }
func (a *AttributeReference) Nullable() bool           { return a.CanBeNull }

func (a *AttributeReference) WithChildren([]Expression) Expression {
	return &AttributeReference{Name: a.Name, Type: a.Type, CanBeNull: a.CanBeNull}
}

func (a *AttributeReference) Eval(row.InternalRow) (interface{}, error) {
	return nil, errors.Errorf("unbound attribute %q cannot be evaluated", a.Name)
}

func (a *AttributeReference) GenCode(*codegen.Context) (*codegen.ExprCode, error) {
	return nil, errors.Errorf("unbound attribute %q cannot be compiled", a.Name)
}

func (a *AttributeReference) String() string { return a.Name }

// BoundReference reads the value at a fixed row ordinal.
type BoundReference struct {
	leaf
	Ordinal  int
	Type     types.DataType
	CanBeNull bool
}

// NewBoundReference creates a reference to row slot ordinal.
func NewBoundReference(ordinal int, dt types.DataType, nullable bool) *BoundReference {
	return &BoundReference{Ordinal: ordinal, Type: dt, CanBeNull: nullable}
}

func (b *BoundReference) DataType() types.DataType { return b.Type }
func (b *BoundReference) Nullable() bool           { return b.CanBeNull }

func (b *BoundReference) WithChildren([]Expression) Expression {
	return &BoundReference{Ordinal: b.Ordinal, Type: b.Type, CanBeNull: b.CanBeNull}
}

func (b *BoundReference) Eval(r row.InternalRow) (interface{}, error) {
	if b.CanBeNull && r.IsNullAt(b.Ordinal) {
		return nil, nil
	}
	return r.Get(b.Ordinal), nil
}

func (b *BoundReference) GenCode(ctx *codegen.Context) (*codegen.ExprCode, error) {
	v := ctx.FreshName("v")
	stmt := fmt.Sprintf("let %s = row[%d]", v, b.Ordinal)
	if !b.CanBeNull {
		return &codegen.ExprCode{Stmts: []string{stmt}, IsNull: codegen.FalseLiteral, Value: v}, nil
	}
	n := ctx.FreshName("n")
	return &codegen.ExprCode{
		Stmts:  []string{stmt, fmt.Sprintf("let %s = %s == nil", n, v)},
		IsNull: n,
		Value:  v,
	}, nil
}

func (b *BoundReference) String() string {
	return fmt.Sprintf("input[%d, %s]", b.Ordinal, b.Type.SimpleString())
}

// BindReferences rewrites every AttributeReference in the tree into a
// BoundReference resolved against the input schema. Unknown names fail.
func BindReferences(e Expression, schema *types.StructType) (Expression, error) {
	var bindErr error
	bound := Transform(e, func(node Expression) Expression {
		a, ok := node.(*AttributeReference)
		if !ok {
			return node
		}
		idx, found := schema.FieldIndex(a.Name)
		if !found {
			if bindErr == nil {
				bindErr = errors.Errorf("cannot resolve column %q against schema %s",
					a.Name, schema.SimpleString())
			}
			return node
		}
		f := schema.Field(idx)
		return NewBoundReference(idx, f.Type, f.Nullable)
	})
	if bindErr != nil {
		return nil, bindErr
	}
	return bound, nil
}
