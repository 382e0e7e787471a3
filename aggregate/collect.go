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
	"github.com/rulego/exprsql/expr"
	"github.com/rulego/exprsql/row"
	"github.com/rulego/exprsql/types"
)

// CollectList gathers the non-null inputs into an array in encounter order.
// Its buffer grows with the group, which is why it is imperative rather than
// declarative. Captured values are defensively copied: rows are reused by
// the caller and a retained []byte would alias the next row's bytes.
type CollectList struct {
	child expr.Expression
}

func NewCollectList(child expr.Expression) *CollectList {
	return &CollectList{child: child}
}

func (a *CollectList) Name() string { return "collect_list" }

func (a *CollectList) DataType() types.DataType {
	return types.NewArrayType(a.child.DataType(), a.child.Nullable())
}

func (a *CollectList) Nullable() bool { return false }

func (a *CollectList) NewBuffer() interface{} {
	return []interface{}{}
}

func (a *CollectList) Update(buffer interface{}, input row.InternalRow) (interface{}, error) {
	v, err := a.child.Eval(input)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return buffer, nil
	}
	if b, ok := v.([]byte); ok {
		c := make([]byte, len(b))
		copy(c, b)
		v = c
	}
	return append(buffer.([]interface{}), v), nil
}

func (a *CollectList) Merge(buffer, other interface{}) (interface{}, error) {
	return append(buffer.([]interface{}), other.([]interface{})...), nil
}

func (a *CollectList) Final(buffer interface{}) (interface{}, error) {
	return buffer.([]interface{}), nil
}
