// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bnb

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/steer/internal/logging"
)

// Var is a decision variable. Infinite bounds are given as ±math.Inf(1)
// or any magnitude of at least 1e20.
type Var struct {
	Name    string
	Lb, Ub  float64
	Obj     float64
	Integer bool
}

// Cons is a linear constraint Lhs <= Σ Coefs[j]·x[j] <= Rhs.
type Cons struct {
	Name     string
	Coefs    map[int]float64
	Lhs, Rhs float64
}

// Model is a mixed-integer linear program together with its included
// plugins and the state of its search.
//
// A Model is not safe for concurrent use, except Stage, Interrupt and the
// read-only Copy routines as documented on each.
type Model struct {
	logger   *slog.Logger
	stage    atomix.Uint32
	name     string
	maximize bool
	vars     []Var
	conss    []Cons
	params   paramTable

	branchrules []*branchruleEntry
	heuristics  []*heuristicEntry
	plugins     map[string]struct{}

	interrupt atomix.Uint32
	search    *search
}

// Option configures a [Model].
type Option func(*Model)

// WithLogger sets the logger. A nil logger discards.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// New returns a model in [StageInit].
func New(opts ...Option) *Model {
	m := &Model{
		params:  defaultParams(),
		plugins: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrNop(m.logger)
	return m
}

// Stage returns the model's life-cycle stage. Safe for concurrent use.
func (m *Model) Stage() Stage { return Stage(m.stage.Load()) }

func (m *Model) setStage(s Stage) { m.stage.Store(uint32(s)) }

// Name returns the problem name.
func (m *Model) Name() string { return m.name }

// Logger returns the model's logger.
func (m *Model) Logger() *slog.Logger { return m.logger }

// CreateProb creates an empty problem, moving the model to [StageProblem].
func (m *Model) CreateProb(name string) error {
	if st := m.Stage(); st != StageInit {
		return fmt.Errorf("%w: CreateProb in stage %s", ErrWrongStage, st)
	}
	m.name = name
	m.setStage(StageProblem)
	return nil
}

func (m *Model) building(op string) error {
	switch st := m.Stage(); st {
	case StageProblem:
		return nil
	case StageInit:
		return ErrNoProblem
	default:
		return fmt.Errorf("%w: %s in stage %s", ErrWrongStage, op, st)
	}
}

// AddVar adds a variable and returns its index. Bounds of integer
// variables are rounded inward.
func (m *Model) AddVar(name string, lb, ub, obj float64, integer bool) (int, error) {
	if err := m.building("AddVar"); err != nil {
		return -1, err
	}
	lb, ub = normBound(lb), normBound(ub)
	if integer {
		if !isInf(lb) {
			lb = math.Ceil(lb - feasTol)
		}
		if !isInf(ub) {
			ub = math.Floor(ub + feasTol)
		}
	}
	if lb > ub {
		return -1, fmt.Errorf("bnb: variable %q: lower bound %g exceeds upper bound %g", name, lb, ub)
	}
	m.vars = append(m.vars, Var{Name: name, Lb: lb, Ub: ub, Obj: obj, Integer: integer})
	return len(m.vars) - 1, nil
}

// AddCons adds a linear constraint and returns its index.
func (m *Model) AddCons(name string, coefs map[int]float64, lhs, rhs float64) (int, error) {
	if err := m.building("AddCons"); err != nil {
		return -1, err
	}
	for j := range coefs {
		if j < 0 || j >= len(m.vars) {
			return -1, fmt.Errorf("%w: index %d in constraint %q", ErrUnknownVar, j, name)
		}
	}
	lhs, rhs = normBound(lhs), normBound(rhs)
	if lhs > rhs {
		return -1, fmt.Errorf("bnb: constraint %q: lhs %g exceeds rhs %g", name, lhs, rhs)
	}
	m.conss = append(m.conss, Cons{Name: name, Coefs: maps.Clone(coefs), Lhs: lhs, Rhs: rhs})
	return len(m.conss) - 1, nil
}

// SetMaximize sets the objective sense.
func (m *Model) SetMaximize(maximize bool) error {
	if err := m.building("SetMaximize"); err != nil {
		return err
	}
	m.maximize = maximize
	return nil
}

// Maximize reports whether the objective is maximized.
func (m *Model) Maximize() bool { return m.maximize }

// NVars returns the number of variables.
func (m *Model) NVars() int { return len(m.vars) }

// NConss returns the number of constraints.
func (m *Model) NConss() int { return len(m.conss) }

// Vars returns a copy of the variables as added.
func (m *Model) Vars() []Var { return slices.Clone(m.vars) }

func normBound(v float64) float64 {
	switch {
	case v >= infinity:
		return math.Inf(1)
	case v <= -infinity:
		return math.Inf(-1)
	}
	return v
}

func (m *Model) sense() float64 {
	if m.maximize {
		return -1
	}
	return 1
}

// internalCosts returns the objective in minimization form.
func (m *Model) internalCosts() []float64 {
	s := m.sense()
	c := make([]float64, len(m.vars))
	for j, v := range m.vars {
		c[j] = s * v.Obj
	}
	return c
}

// GetParam returns the value of the named parameter.
func (m *Model) GetParam(name string) (any, error) {
	v, ok := m.params[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return v, nil
}

// SetParam sets the named parameter. The value is converted to the
// parameter's type; integers are accepted for real parameters and
// one-byte strings for char parameters.
func (m *Model) SetParam(name string, v any) error {
	if st := m.Stage(); st == StageSolving {
		return fmt.Errorf("%w: SetParam in stage %s", ErrWrongStage, st)
	}
	if err := m.params.set(name, v); err != nil {
		return err
	}
	m.logger.Debug("param set", "name", name, "value", m.params[name])
	return nil
}

// ApplyParams sets every parameter of ps. Nothing is changed if any
// assignment is invalid.
func (m *Model) ApplyParams(ps ParamSet) error {
	if st := m.Stage(); st == StageSolving {
		return fmt.Errorf("%w: ApplyParams in stage %s", ErrWrongStage, st)
	}
	staged := m.params.clone()
	for _, name := range slices.Sorted(maps.Keys(ps)) {
		if err := staged.set(name, ps[name]); err != nil {
			return err
		}
	}
	m.params = staged
	return nil
}

func typedParam[T any](m *Model, name string, typ ParamType) (T, error) {
	var zero T
	def, ok := paramDefs[name]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if def.typ != typ {
		return zero, fmt.Errorf("%w: %q is %s, not %s", ErrParamType, name, def.typ, typ)
	}
	return m.params[name].(T), nil
}

// BoolParam returns a bool parameter.
func (m *Model) BoolParam(name string) (bool, error) { return typedParam[bool](m, name, ParamBool) }

// IntParam returns an int parameter.
func (m *Model) IntParam(name string) (int, error) { return typedParam[int](m, name, ParamInt) }

// LongParam returns a long parameter.
func (m *Model) LongParam(name string) (int64, error) { return typedParam[int64](m, name, ParamLong) }

// RealParam returns a real parameter.
func (m *Model) RealParam(name string) (float64, error) {
	return typedParam[float64](m, name, ParamReal)
}

// CharParam returns a char parameter.
func (m *Model) CharParam(name string) (byte, error) { return typedParam[byte](m, name, ParamChar) }

// StringParam returns a string parameter.
func (m *Model) StringParam(name string) (string, error) {
	return typedParam[string](m, name, ParamString)
}

// copyScratch stages variable bounds during Copy and CopyOrig. It is
// shared by every model, so the copy routines must not run concurrently
// with each other.
var copyScratch []float64

// Copy returns an independent model holding the problem with the global
// bounds found by the search so far, its parameters and no plugins.
// Copying a model in [StageInit] returns a fresh model.
//
// Copy reads m without modifying it but is not reentrant: concurrent
// calls to Copy or CopyOrig on any models must be serialized by the caller.
func (m *Model) Copy() *Model { return m.copy(true) }

// CopyOrig is like Copy but keeps the bounds the variables were added with.
func (m *Model) CopyOrig() *Model { return m.copy(false) }

func (m *Model) copy(transformed bool) *Model {
	c := New(WithLogger(m.logger))
	if m.Stage() == StageInit {
		return c
	}
	c.name = m.name
	c.maximize = m.maximize
	c.params = m.params.clone()

	n := len(m.vars)
	copyScratch = slices.Grow(copyScratch[:0], 2*n)[:2*n]
	lb, ub := copyScratch[:n], copyScratch[n:]
	for j, v := range m.vars {
		lb[j], ub[j] = v.Lb, v.Ub
	}
	if transformed && m.search != nil {
		copy(lb, m.search.glb)
		copy(ub, m.search.gub)
	}
	c.vars = make([]Var, n)
	for j, v := range m.vars {
		v.Lb, v.Ub = lb[j], ub[j]
		c.vars[j] = v
	}
	c.conss = make([]Cons, len(m.conss))
	for i, cons := range m.conss {
		cons.Coefs = maps.Clone(cons.Coefs)
		c.conss[i] = cons
	}
	c.setStage(StageProblem)
	return c
}

// FreeTransform discards the search state of a solved model and returns
// it to [StageProblem], so that it can be modified and solved again.
func (m *Model) FreeTransform() error {
	switch st := m.Stage(); st {
	case StageSolved:
	case StageProblem:
		return nil
	default:
		return fmt.Errorf("%w: FreeTransform in stage %s", ErrWrongStage, st)
	}
	m.search = nil
	m.setStage(StageProblem)
	return nil
}
