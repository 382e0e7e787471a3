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

package row

// InternalRow is a positional, nullable, heterogeneous tuple. A nil slot
// represents SQL NULL; IsNullAt must be consulted before trusting a typed
// getter on a nullable column. Rows are produced at high frequency, so
// evaluators must not retain references to a row beyond the values they
// explicitly copy.
type InternalRow interface {
	NumFields() int
	IsNullAt(i int) bool
	// Get returns the untyped value at ordinal i, nil for NULL.
	Get(i int) interface{}
	GetBool(i int) bool
	GetInt32(i int) int32
	GetInt64(i int) int64
	GetFloat64(i int) float64
	GetString(i int) string
	GetBytes(i int) []byte
	// SetValue stores a value (nil for NULL) at ordinal i.
	SetValue(i int, v interface{})
	// Values exposes the backing slots for the current row. The slice is
	// only valid until the row is reused.
	Values() []interface{}
	// Copy returns a row that does not share mutable state with this one.
	Copy() InternalRow
}

// GenericRow is the slice-backed InternalRow used throughout the interpreter
// and as aggregation buffer storage.
type GenericRow struct {
	values []interface{}
}

// NewGenericRow creates a row with n null slots.
func NewGenericRow(n int) *GenericRow {
	return &GenericRow{values: make([]interface{}, n)}
}

// RowOf wraps the given values in a row. The slice is used directly.
func RowOf(values ...interface{}) *GenericRow {
	return &GenericRow{values: values}
}

func (r *GenericRow) NumFields() int             { return len(r.values) }
func (r *GenericRow) IsNullAt(i int) bool        { return r.values[i] == nil }
func (r *GenericRow) Get(i int) interface{}      { return r.values[i] }
func (r *GenericRow) GetBool(i int) bool         { return r.values[i].(bool) }
func (r *GenericRow) GetInt32(i int) int32       { return r.values[i].(int32) }
func (r *GenericRow) GetInt64(i int) int64       { return r.values[i].(int64) }
func (r *GenericRow) GetFloat64(i int) float64   { return r.values[i].(float64) }
func (r *GenericRow) GetString(i int) string     { return r.values[i].(string) }
func (r *GenericRow) GetBytes(i int) []byte      { return r.values[i].([]byte) }
func (r *GenericRow) SetValue(i int, v interface{}) { r.values[i] = v }
func (r *GenericRow) Values() []interface{}      { return r.values }

func (r *GenericRow) Copy() InternalRow {
	values := make([]interface{}, len(r.values))
	for i, v := range r.values {
		if b, ok := v.([]byte); ok {
			c := make([]byte, len(b))
			copy(c, b)
			values[i] = c
			continue
		}
		values[i] = v
	}
	return &GenericRow{values: values}
}

// JoinedRow presents two rows as one, left fields first. Aggregate update
// sees JoinedRow(buffer, input) and aggregate merge sees
// JoinedRow(leftBuffer, rightBuffer), so buffer slots keep their ordinals and
// the right side is shifted by the left width.
type JoinedRow struct {
	left  InternalRow
	right InternalRow
}

func NewJoinedRow(left, right InternalRow) *JoinedRow {
	return &JoinedRow{left: left, right: right}
}

func (r *JoinedRow) resolve(i int) (InternalRow, int) {
	n := r.left.NumFields()
	if i < n {
		return r.left, i
	}
	return r.right, i - n
}

func (r *JoinedRow) NumFields() int { return r.left.NumFields() + r.right.NumFields() }

func (r *JoinedRow) IsNullAt(i int) bool {
	row, j := r.resolve(i)
	return row.IsNullAt(j)
}

func (r *JoinedRow) Get(i int) interface{} {
	row, j := r.resolve(i)
	return row.Get(j)
}

func (r *JoinedRow) GetBool(i int) bool       { return r.Get(i).(bool) }
func (r *JoinedRow) GetInt32(i int) int32     { return r.Get(i).(int32) }
func (r *JoinedRow) GetInt64(i int) int64     { return r.Get(i).(int64) }
func (r *JoinedRow) GetFloat64(i int) float64 { return r.Get(i).(float64) }
func (r *JoinedRow) GetString(i int) string   { return r.Get(i).(string) }
func (r *JoinedRow) GetBytes(i int) []byte    { return r.Get(i).([]byte) }

func (r *JoinedRow) SetValue(i int, v interface{}) {
	row, j := r.resolve(i)
	row.SetValue(j, v)
}

func (r *JoinedRow) Values() []interface{} {
	values := make([]interface{}, 0, r.NumFields())
	values = append(values, r.left.Values()...)
	values = append(values, r.right.Values()...)
	return values
}

func (r *JoinedRow) Copy() InternalRow {
	values := r.Values()
	return (&GenericRow{values: values}).Copy()
}
