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

	"github.com/pkg/errors"
)

// StructField is a named, typed, nullable slot of a StructType.
type StructField struct {
	Name     string
	Type     DataType
	Nullable bool
}

func (f StructField) String() string {
	return fmt.Sprintf("%s:%s", f.Name, f.Type.SimpleString())
}

// Resolver decides whether a requested field name matches a schema field
// name. The analyzer supplies case-sensitive or case-insensitive resolution.
type Resolver func(requested, fieldName string) bool

// CaseSensitiveResolution matches names exactly.
func CaseSensitiveResolution(a, b string) bool { return a == b }

// CaseInsensitiveResolution matches names ignoring ASCII case.
func CaseInsensitiveResolution(a, b string) bool { return strings.EqualFold(a, b) }

// SchemaMergeError reports an irreconcilable field type conflict between two
// schemas being merged.
type SchemaMergeError struct {
	Field     string
	LeftType  DataType
	RightType DataType
}

func (e *SchemaMergeError) Error() string {
	return fmt.Sprintf("failed to merge field %q: incompatible types %s and %s",
		e.Field, e.LeftType.SimpleString(), e.RightType.SimpleString())
}

// StructType is an ordered sequence of fields with eager name lookup maps.
// Instances are immutable: Add and Merge return new values. Field names are
// not required to be unique; lookups assume the analyzer already validated
// uniqueness within its resolution scope.
type StructType struct {
	fields     []StructField
	nameToIdx  map[string]int
	nameToFld  map[string]StructField
}

// NewStructType builds a StructType and its lookup maps. On duplicate names
// the first occurrence wins in the maps.
func NewStructType(fields ...StructField) *StructType {
	st := &StructType{
		fields:    fields,
		nameToIdx: make(map[string]int, len(fields)),
		nameToFld: make(map[string]StructField, len(fields)),
	}
	for i, f := range fields {
		if _, ok := st.nameToIdx[f.Name]; !ok {
			st.nameToIdx[f.Name] = i
			st.nameToFld[f.Name] = f
		}
	}
	return st
}

// Fields returns the ordered field slice. Callers must not mutate it.
func (st *StructType) Fields() []StructField { return st.fields }

// NumFields returns the number of fields.
func (st *StructType) NumFields() int { return len(st.fields) }

// Field returns the field at ordinal i.
func (st *StructType) Field(i int) StructField { return st.fields[i] }

// FieldIndex returns the ordinal of the named field.
func (st *StructType) FieldIndex(name string) (int, bool) {
	i, ok := st.nameToIdx[name]
	return i, ok
}

// FieldByName returns the named field.
func (st *StructType) FieldByName(name string) (StructField, bool) {
	f, ok := st.nameToFld[name]
	return f, ok
}

// Add returns a new StructType with an extra field appended.
func (st *StructType) Add(name string, dt DataType, nullable bool) *StructType {
	fields := make([]StructField, 0, len(st.fields)+1)
	fields = append(fields, st.fields...)
	fields = append(fields, StructField{Name: name, Type: dt, Nullable: nullable})
	return NewStructType(fields...)
}

// Merge combines two schemas field-wise. A field present on both sides must
// have a compatible type and becomes nullable if either side is nullable;
// struct-typed fields merge recursively. A field present on one side only is
// carried through. A type conflict returns a SchemaMergeError, never a silent
// pick.
func (st *StructType) Merge(other *StructType) (*StructType, error) {
	if other == nil {
		return st, nil
	}
	merged := make([]StructField, 0, len(st.fields)+len(other.fields))
	seen := make(map[string]bool, len(st.fields))
	for _, lf := range st.fields {
		seen[lf.Name] = true
		rf, ok := other.nameToFld[lf.Name]
		if !ok {
			merged = append(merged, lf)
			continue
		}
		ls, lok := lf.Type.(*StructType)
		rs, rok := rf.Type.(*StructType)
		switch {
		case lok && rok:
			sub, err := ls.Merge(rs)
			if err != nil {
				return nil, errors.Wrapf(err, "in field %q", lf.Name)
			}
			merged = append(merged, StructField{
				Name: lf.Name, Type: sub, Nullable: lf.Nullable || rf.Nullable,
			})
		case lf.Type.Equals(rf.Type):
			merged = append(merged, StructField{
				Name: lf.Name, Type: lf.Type, Nullable: lf.Nullable || rf.Nullable,
			})
		default:
			return nil, &SchemaMergeError{Field: lf.Name, LeftType: lf.Type, RightType: rf.Type}
		}
	}
	for _, rf := range other.fields {
		if !seen[rf.Name] {
			merged = append(merged, rf)
		}
	}
	return NewStructType(merged...), nil
}

// FindNestedField descends through nested structs, arrays and maps following
// the given name path, resolving each step with the supplied resolver. It
// fails when a step matches more than one field (ambiguous under the
// resolver) or matches none. Array steps descend into the element type and
// map steps into the value type without consuming a path element beyond the
// field name itself.
func (st *StructType) FindNestedField(path []string, resolver Resolver) (StructField, error) {
	if len(path) == 0 {
		return StructField{}, errors.New("empty field path")
	}
	if resolver == nil {
		resolver = CaseSensitiveResolution
	}
	var match StructField
	found := 0
	for _, f := range st.fields {
		if resolver(path[0], f.Name) {
			match = f
			found++
		}
	}
	if found == 0 {
		return StructField{}, errors.Errorf("no such field %q in %s", path[0], st.SimpleString())
	}
	if found > 1 {
		return StructField{}, errors.Errorf("ambiguous field %q: %d matches", path[0], found)
	}
	rest := path[1:]
	if len(rest) == 0 {
		return match, nil
	}
	return descend(match, rest, resolver)
}

func descend(f StructField, rest []string, resolver Resolver) (StructField, error) {
	switch t := f.Type.(type) {
	case *StructType:
		sub, err := t.FindNestedField(rest, resolver)
		if err != nil {
			return StructField{}, errors.Wrapf(err, "in field %q", f.Name)
		}
		// A step through a nullable parent yields a nullable result.
		if f.Nullable {
			sub.Nullable = true
		}
		return sub, nil
	case *ArrayType:
		elem := StructField{Name: f.Name, Type: t.Element, Nullable: f.Nullable || t.ContainsNull}
		return descend(elem, rest, resolver)
	case *MapType:
		val := StructField{Name: f.Name, Type: t.Value, Nullable: f.Nullable || t.ValueContainsNull}
		return descend(val, rest, resolver)
	default:
		return StructField{}, errors.Errorf("field %q of type %s has no nested field %q",
			f.Name, f.Type.SimpleString(), rest[0])
	}
}

func (st *StructType) DefaultSize() int {
	size := 0
	for _, f := range st.fields {
		size += f.Type.DefaultSize()
	}
	return size
}

func (st *StructType) SimpleString() string {
	parts := make([]string, len(st.fields))
	for i, f := range st.fields {
		parts[i] = f.Name + ":" + f.Type.SimpleString()
	}
	return "struct<" + strings.Join(parts, ",") + ">"
}

func (st *StructType) CatalogString() string {
	parts := make([]string, len(st.fields))
	for i, f := range st.fields {
		parts[i] = f.Name + ":" + f.Type.CatalogString()
	}
	return "struct<" + strings.Join(parts, ",") + ">"
}

func (st *StructType) SQL() string {
	parts := make([]string, len(st.fields))
	for i, f := range st.fields {
		parts[i] = f.Name + ": " + f.Type.SQL()
	}
	return "STRUCT<" + strings.Join(parts, ", ") + ">"
}

// Equals reports structural equality: same field names, types and
// nullability in the same order, regardless of how each side was built.
func (st *StructType) Equals(other DataType) bool {
	o, ok := other.(*StructType)
	if !ok || len(o.fields) != len(st.fields) {
		return false
	}
	for i, f := range st.fields {
		of := o.fields[i]
		if of.Name != f.Name || of.Nullable != f.Nullable || !of.Type.Equals(f.Type) {
			return false
		}
	}
	return true
}

func (st *StructType) String() string { return st.SimpleString() }
