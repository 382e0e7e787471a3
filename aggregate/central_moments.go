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
	"math"

	"github.com/pkg/errors"

	"github.com/rulego/exprsql/expr"
	"github.com/rulego/exprsql/types"
)

// The statistical aggregates keep running central moments in Welford form,
// which is numerically stable and admits an exact parallel merge. Counts
// live in the buffer as double so all slot arithmetic stays in one type.

func dbl(v float64) *expr.Literal { return expr.NewLiteral(v) }

func castDouble(e expr.Expression) (expr.Expression, error) {
	if !types.IsNumeric(e.DataType()) {
		return nil, errors.Errorf("statistical aggregate requires numeric input, got %s",
			e.DataType().SimpleString())
	}
	if e.DataType() == types.Double {
		return e, nil
	}
	return expr.NewCast(e, types.Double, nil, false), nil
}

// emptyResult is NULL; the one-row sample case follows the legacy flag: NaN
// when set, NULL otherwise.
func sampleResult(n, value expr.Expression, legacyNaN bool) expr.Expression {
	single := expr.Expression(expr.NullLiteral(types.Double))
	if legacyNaN {
		single = dbl(math.NaN())
	}
	return expr.NewIf(expr.NewEqualTo(n, dbl(0)),
		expr.NullLiteral(types.Double),
		expr.NewIf(expr.NewEqualTo(n, dbl(1)), single, value))
}

// Covariance is the sample or population covariance of two numeric columns.
// Rows where either side is NULL are skipped entirely.
type Covariance struct {
	x, y      expr.Expression
	sample    bool
	legacyNaN bool
}

// NewCovPopulation builds covar_pop(x, y).
func NewCovPopulation(x, y expr.Expression) (*Covariance, error) {
	return newCovariance(x, y, false, false)
}

// NewCovSample builds covar_samp(x, y); legacyNaN selects NaN over NULL for
// a single-row group.
func NewCovSample(x, y expr.Expression, legacyNaN bool) (*Covariance, error) {
	return newCovariance(x, y, true, legacyNaN)
}

func newCovariance(x, y expr.Expression, sample, legacyNaN bool) (*Covariance, error) {
	cx, err := castDouble(x)
	if err != nil {
		return nil, err
	}
	cy, err := castDouble(y)
	if err != nil {
		return nil, err
	}
	return &Covariance{x: cx, y: cy, sample: sample, legacyNaN: legacyNaN}, nil
}

func (a *Covariance) Name() string {
	if a.sample {
		return "covar_samp"
	}
	return "covar_pop"
}

func (a *Covariance) DataType() types.DataType { return types.Double }
func (a *Covariance) Nullable() bool           { return true }
func (a *Covariance) BufferWidth() int         { return 4 }

// Buffer layout: n, xAvg, yAvg, ck (the running co-moment).

func (a *Covariance) InitialValues() []expr.Expression {
	return []expr.Expression{dbl(0), dbl(0), dbl(0), dbl(0)}
}

func (a *Covariance) UpdateExpressions() []expr.Expression {
	n := bufferRef(0, types.Double)
	xAvg := bufferRef(1, types.Double)
	yAvg := bufferRef(2, types.Double)
	ck := bufferRef(3, types.Double)
	x := shiftReferences(a.x, a.BufferWidth())
	y := shiftReferences(a.y, a.BufferWidth())

	bothSet := expr.NewAnd(expr.NewIsNotNull(x), expr.NewIsNotNull(y))
	newN := expr.NewAdd(n, dbl(1))
	dx := expr.NewSubtract(x, xAvg)
	dy := expr.NewSubtract(y, yAvg)
	newXAvg := expr.NewAdd(xAvg, expr.NewDivide(dx, newN))
	newYAvg := expr.NewAdd(yAvg, expr.NewDivide(dy, newN))
	newCk := expr.NewAdd(ck, expr.NewMultiply(dx, expr.NewSubtract(y, newYAvg)))

	return []expr.Expression{
		expr.NewIf(bothSet, newN, n),
		expr.NewIf(bothSet, newXAvg, xAvg),
		expr.NewIf(bothSet, newYAvg, yAvg),
		expr.NewIf(bothSet, newCk, ck),
	}
}

func (a *Covariance) MergeExpressions() []expr.Expression {
	n1 := bufferRef(0, types.Double)
	xAvg1 := bufferRef(1, types.Double)
	yAvg1 := bufferRef(2, types.Double)
	ck1 := bufferRef(3, types.Double)
	n2 := bufferRef(4, types.Double)
	xAvg2 := bufferRef(5, types.Double)
	yAvg2 := bufferRef(6, types.Double)
	ck2 := bufferRef(7, types.Double)

	nTot := expr.NewAdd(n1, n2)
	empty := expr.NewEqualTo(nTot, dbl(0))
	dx := expr.NewSubtract(xAvg2, xAvg1)
	dy := expr.NewSubtract(yAvg2, yAvg1)
	weight := expr.NewDivide(expr.NewMultiply(n1, n2), nTot)

	return []expr.Expression{
		nTot,
		expr.NewIf(empty, dbl(0),
			expr.NewAdd(xAvg1, expr.NewDivide(expr.NewMultiply(dx, n2), nTot))),
		expr.NewIf(empty, dbl(0),
			expr.NewAdd(yAvg1, expr.NewDivide(expr.NewMultiply(dy, n2), nTot))),
		expr.NewIf(empty, dbl(0),
			expr.NewAdd(expr.NewAdd(ck1, ck2),
				expr.NewMultiply(expr.NewMultiply(dx, dy), weight))),
	}
}

func (a *Covariance) EvaluateExpression() expr.Expression {
	n := bufferRef(0, types.Double)
	ck := bufferRef(3, types.Double)
	if a.sample {
		return sampleResult(n, expr.NewDivide(ck, expr.NewSubtract(n, dbl(1))), a.legacyNaN)
	}
	return expr.NewIf(expr.NewEqualTo(n, dbl(0)),
		expr.NullLiteral(types.Double),
		expr.NewDivide(ck, n))
}

// Variance is the sample or population variance, optionally reported as its
// square root (stddev).
type Variance struct {
	child     expr.Expression
	sample    bool
	stddev    bool
	legacyNaN bool
}

func NewVarPopulation(child expr.Expression) (*Variance, error) {
	return newVariance(child, false, false, false)
}

func NewVarSample(child expr.Expression, legacyNaN bool) (*Variance, error) {
	return newVariance(child, true, false, legacyNaN)
}

func NewStddevPopulation(child expr.Expression) (*Variance, error) {
	return newVariance(child, false, true, false)
}

func NewStddevSample(child expr.Expression, legacyNaN bool) (*Variance, error) {
	return newVariance(child, true, true, legacyNaN)
}

func newVariance(child expr.Expression, sample, stddev, legacyNaN bool) (*Variance, error) {
	c, err := castDouble(child)
	if err != nil {
		return nil, err
	}
	return &Variance{child: c, sample: sample, stddev: stddev, legacyNaN: legacyNaN}, nil
}

func (a *Variance) Name() string {
	switch {
	case a.stddev && a.sample:
		return "stddev_samp"
	case a.stddev:
		return "stddev_pop"
	case a.sample:
		return "var_samp"
	default:
		return "var_pop"
	}
}

func (a *Variance) DataType() types.DataType { return types.Double }
func (a *Variance) Nullable() bool           { return true }
func (a *Variance) BufferWidth() int         { return 3 }

// Buffer layout: n, avg, m2 (sum of squared deviations).

func (a *Variance) InitialValues() []expr.Expression {
	return []expr.Expression{dbl(0), dbl(0), dbl(0)}
}

func (a *Variance) UpdateExpressions() []expr.Expression {
	n := bufferRef(0, types.Double)
	avg := bufferRef(1, types.Double)
	m2 := bufferRef(2, types.Double)
	x := shiftReferences(a.child, a.BufferWidth())

	set := expr.NewIsNotNull(x)
	newN := expr.NewAdd(n, dbl(1))
	delta := expr.NewSubtract(x, avg)
	newAvg := expr.NewAdd(avg, expr.NewDivide(delta, newN))
	newM2 := expr.NewAdd(m2, expr.NewMultiply(delta, expr.NewSubtract(x, newAvg)))

	return []expr.Expression{
		expr.NewIf(set, newN, n),
		expr.NewIf(set, newAvg, avg),
		expr.NewIf(set, newM2, m2),
	}
}

func (a *Variance) MergeExpressions() []expr.Expression {
	n1 := bufferRef(0, types.Double)
	avg1 := bufferRef(1, types.Double)
	m21 := bufferRef(2, types.Double)
	n2 := bufferRef(3, types.Double)
	avg2 := bufferRef(4, types.Double)
	m22 := bufferRef(5, types.Double)

	nTot := expr.NewAdd(n1, n2)
	empty := expr.NewEqualTo(nTot, dbl(0))
	delta := expr.NewSubtract(avg2, avg1)

	return []expr.Expression{
		nTot,
		expr.NewIf(empty, dbl(0),
			expr.NewAdd(avg1, expr.NewDivide(expr.NewMultiply(delta, n2), nTot))),
		expr.NewIf(empty, dbl(0),
			expr.NewAdd(expr.NewAdd(m21, m22),
				expr.NewDivide(
					expr.NewMultiply(expr.NewMultiply(delta, delta), expr.NewMultiply(n1, n2)),
					nTot))),
	}
}

func (a *Variance) EvaluateExpression() expr.Expression {
	n := bufferRef(0, types.Double)
	m2 := bufferRef(2, types.Double)
	var result expr.Expression
	if a.sample {
		value := expr.Expression(expr.NewDivide(m2, expr.NewSubtract(n, dbl(1))))
		if a.stddev {
			value = expr.NewSqrt(value)
		}
		return sampleResult(n, value, a.legacyNaN)
	}
	result = expr.NewDivide(m2, n)
	if a.stddev {
		result = expr.NewSqrt(result)
	}
	return expr.NewIf(expr.NewEqualTo(n, dbl(0)),
		expr.NullLiteral(types.Double), result)
}
