// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bnb

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	lpEps     = 1e-9
	feasTol   = 1e-6
	cutoffEps = 1e-9
	infinity  = 1e20
)

// isInf reports whether v is an infinite bound.
func isInf(v float64) bool {
	return v >= infinity || v <= -infinity
}

type lpStatus uint8

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpUnbounded
	// lpIterLimit: the iteration limit forbade solving the relaxation.
	lpIterLimit
	// lpFailed: the simplex gave up for numerical reasons.
	lpFailed
)

type lpResult struct {
	y      []float64
	obj    float64
	status lpStatus
}

// lpSolve minimizes c·y subject to A·y <= b and y >= 0.
//
// Every row gets its own slack column, so the equality form handed to
// lp.Simplex has full row rank. Columns without coefficients are settled
// here since lp.Simplex rejects them.
func lpSolve(c []float64, a [][]float64, b []float64) lpResult {
	n, rows := len(c), len(a)
	y := make([]float64, n)
	var keep []int
	unbounded := false
	for j := 0; j < n; j++ {
		used := false
		for _, row := range a {
			if math.Abs(row[j]) > lpEps {
				used = true
				break
			}
		}
		switch {
		case used:
			keep = append(keep, j)
		case c[j] < -lpEps:
			unbounded = true
		}
	}
	if rows == 0 {
		if unbounded {
			return lpResult{status: lpUnbounded}
		}
		return lpResult{y: y, status: lpOptimal}
	}

	cols := len(keep) + rows
	std := mat.NewDense(rows, cols, nil)
	cost := make([]float64, cols)
	for k, j := range keep {
		cost[k] = c[j]
		for i, row := range a {
			std.Set(i, k, row[j])
		}
	}
	for i := 0; i < rows; i++ {
		std.Set(i, len(keep)+i, 1)
	}

	obj, x, err := lp.Simplex(cost, std, b, lpEps, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return lpResult{status: lpInfeasible}
	case errors.Is(err, lp.ErrUnbounded):
		return lpResult{status: lpUnbounded}
	case err != nil:
		return lpResult{status: lpFailed}
	case unbounded:
		return lpResult{status: lpUnbounded}
	}
	for k, j := range keep {
		y[j] = math.Max(x[k], 0)
	}
	return lpResult{y: y, obj: obj, status: lpOptimal}
}

// column maps one model variable onto one or two nonnegative LP columns:
// x = off + sign*y[col], or x = y[col] - y[col+1] for free variables.
type column struct {
	col  int
	off  float64
	sign float64
	free bool
}

// relaxation solves the LP relaxation of the model under bounds lb, ub.
// It returns x in model space and the internal (minimization) objective.
// An iteration limit of zero stops the relaxation before its first pivot;
// a negative limit lets the simplex run to completion.
func (m *Model) relaxation(lb, ub []float64, iterLimit int) (x []float64, obj float64, st lpStatus) {
	if iterLimit == 0 {
		return nil, 0, lpIterLimit
	}
	nv := len(m.vars)
	cost := m.internalCosts()
	cols := make([]column, nv)
	ncol := 0
	var c []float64
	var a [][]float64
	var b []float64
	constant := 0.0

	for j := 0; j < nv; j++ {
		if !isInf(lb[j]) && !isInf(ub[j]) && lb[j] > ub[j]+feasTol {
			return nil, 0, lpInfeasible
		}
	}
	for j := 0; j < nv; j++ {
		switch {
		case !isInf(lb[j]):
			cols[j] = column{col: ncol, off: lb[j], sign: 1}
			ncol++
		case !isInf(ub[j]):
			cols[j] = column{col: ncol, off: ub[j], sign: -1}
			ncol++
		default:
			cols[j] = column{col: ncol, free: true}
			ncol += 2
		}
	}
	c = make([]float64, ncol)
	for j, cl := range cols {
		if cl.free {
			c[cl.col] = cost[j]
			c[cl.col+1] = -cost[j]
			continue
		}
		c[cl.col] = cl.sign * cost[j]
		constant += cost[j] * cl.off
		if cl.sign > 0 && !isInf(ub[j]) {
			row := make([]float64, ncol)
			row[cl.col] = 1
			a = append(a, row)
			b = append(b, math.Max(ub[j]-lb[j], 0))
		}
	}
	for _, cons := range m.conss {
		row := make([]float64, ncol)
		shift := 0.0
		for j, coef := range cons.Coefs {
			cl := cols[j]
			if cl.free {
				row[cl.col] += coef
				row[cl.col+1] -= coef
				continue
			}
			row[cl.col] += coef * cl.sign
			shift += coef * cl.off
		}
		if !isInf(cons.Rhs) {
			a = append(a, row)
			b = append(b, cons.Rhs-shift)
		}
		if !isInf(cons.Lhs) {
			neg := make([]float64, ncol)
			for k, v := range row {
				neg[k] = -v
			}
			a = append(a, neg)
			b = append(b, shift-cons.Lhs)
		}
	}

	res := lpSolve(c, a, b)
	if res.status != lpOptimal {
		return nil, 0, res.status
	}
	x = make([]float64, nv)
	for j, cl := range cols {
		if cl.free {
			x[j] = res.y[cl.col] - res.y[cl.col+1]
			continue
		}
		x[j] = cl.off + cl.sign*res.y[cl.col]
	}
	return x, res.obj + constant, lpOptimal
}
