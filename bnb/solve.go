// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bnb

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"
)

type node struct {
	id     int64
	depth  int
	lb, ub []float64
	bound  float64 // internal (minimization) lower bound
}

type externCand struct {
	j   int
	val float64
}

// search is the state of one Solve.
type search struct {
	log    *slog.Logger
	status Status
	start  time.Time

	glb, gub []float64
	open     []*node
	nextID   int64
	nnodes   int64
	nlps     int64

	focus       *node
	lpSol       []float64
	lpSolved    bool
	branching   bool
	children    int
	domReduced  bool
	externCands []externCand

	best    []float64
	bestObj float64
	hasBest bool
}

func (s *search) newNode(parent *node, lb, ub []float64) *node {
	n := &node{id: s.nextID, lb: lb, ub: ub, bound: math.Inf(-1)}
	s.nextID++
	if parent != nil {
		n.depth = parent.depth + 1
		n.bound = parent.bound
	}
	s.open = append(s.open, n)
	return n
}

// lowerBound is the smallest bound over the open nodes and the focus node.
func (s *search) lowerBound() float64 {
	lower := math.Inf(1)
	if s.focus != nil {
		lower = s.focus.bound
	}
	for _, n := range s.open {
		lower = math.Min(lower, n.bound)
	}
	if s.hasBest {
		lower = math.Min(lower, s.bestObj)
	}
	return lower
}

func (s *search) selectNode(strategy byte) *node {
	k := 0
	for i, n := range s.open[1:] {
		o := s.open[k]
		switch strategy {
		case 'd':
			if n.depth > o.depth || (n.depth == o.depth && n.id > o.id) {
				k = i + 1
			}
		default:
			if n.bound < o.bound || (n.bound == o.bound && n.id < o.id) {
				k = i + 1
			}
		}
	}
	n := s.open[k]
	s.open = slices.Delete(s.open, k, k+1)
	return n
}

func (s *search) cutoff(bound float64) bool {
	return s.hasBest && bound >= s.bestObj-cutoffEps
}

// Solve runs branch and bound until the search completes, a limit is hit,
// or Interrupt is called. Plugins are called on the calling goroutine.
//
// Solving a model that is already solved returns nil at once without
// calling any plugin. A plugin failure stops the search; Solve then
// returns a *PluginError and the model is still moved to StageSolved.
func (m *Model) Solve() error {
	switch st := m.Stage(); st {
	case StageInit:
		return ErrNoProblem
	case StageSolving:
		return fmt.Errorf("%w: Solve in stage %s", ErrWrongStage, st)
	case StageSolved:
		return nil
	}
	log := m.logger
	if tag := m.params.getString("display/tag"); tag != "" {
		log = log.With("tag", tag)
	}
	s := &search{
		log:     log,
		start:   time.Now(),
		glb:     make([]float64, len(m.vars)),
		gub:     make([]float64, len(m.vars)),
		bestObj: math.Inf(1),
	}
	for j, v := range m.vars {
		s.glb[j], s.gub[j] = v.Lb, v.Ub
	}
	for _, b := range m.branchrules {
		b.calls = 0
	}
	for _, h := range m.heuristics {
		h.calls, h.found = 0, 0
	}
	m.search = s
	m.interrupt.Store(0)
	m.setStage(StageSolving)
	s.log.Debug("solve started", "problem", m.name, "vars", len(m.vars), "conss", len(m.conss))

	err := m.runSearch()

	m.setStage(StageSolved)
	if err != nil {
		s.log.Debug("solve failed", "error", err, "nodes", s.nnodes)
		return err
	}
	s.log.Debug("solve finished", "status", s.status, "nodes", s.nnodes, "lps", s.nlps)
	return nil
}

func (m *Model) interrupted() bool { return m.interrupt.Load() != 0 }

// Interrupt asks a running Solve to stop before the next node. It is safe
// to call from a plugin or from another goroutine.
func (m *Model) Interrupt() error {
	if m.Stage() != StageSolving {
		return ErrNotSolving
	}
	m.interrupt.Store(1)
	return nil
}

func (m *Model) runSearch() error {
	s := m.search
	nodeLimit := m.params.getLong("limits/nodes")
	timeLimit := m.params.getReal("limits/time")
	gapLimit := m.params.getReal("limits/gap")
	strategy := m.params.getChar("nodeselection/strategy")

	s.newNode(nil, slices.Clone(s.glb), slices.Clone(s.gub))
	for len(s.open) > 0 {
		switch {
		case m.interrupted():
			s.status = StatusUserInterrupt
		case nodeLimit >= 0 && s.nnodes >= nodeLimit:
			s.status = StatusNodeLimit
		case time.Since(s.start).Seconds() >= timeLimit:
			s.status = StatusTimeLimit
		case gapLimit > 0 && s.hasBest && m.Gap() <= gapLimit:
			s.status = StatusGapLimit
		}
		if s.status != StatusUnknown {
			return nil
		}
		n := s.selectNode(strategy)
		s.nnodes++
		if err := m.processNode(n); err != nil {
			return err
		}
		if s.status == StatusUnbounded {
			return nil
		}
	}
	switch {
	case m.interrupted():
		s.status = StatusUserInterrupt
	case s.hasBest:
		s.status = StatusOptimal
	default:
		s.status = StatusInfeasible
	}
	return nil
}

func (m *Model) processNode(n *node) error {
	s := m.search
	s.focus = n
	s.externCands = s.externCands[:0]
	defer func() {
		s.focus, s.lpSol, s.lpSolved = nil, nil, false
	}()

	if s.cutoff(n.bound) {
		return nil
	}
	if err := m.runHeuristics(BeforeNode, false); err != nil {
		return err
	}
	for {
		s.lpSol, s.lpSolved = nil, false
		fixed := m.integersFixed(n)
		infeasible := false
		timing := AfterPseudoNode
		if m.params.getInt("lp/solvefreq") >= 0 || fixed {
			limit := m.params.getInt("lp/iterlim")
			if fixed {
				limit = -1
			}
			x, obj, st := m.relaxation(n.lb, n.ub, limit)
			if st != lpIterLimit {
				s.nlps++
			}
			switch st {
			case lpOptimal:
				s.lpSol, s.lpSolved = x, true
				timing = AfterLPNode
				n.bound = math.Max(n.bound, obj)
			case lpInfeasible:
				infeasible = true
			case lpUnbounded:
				s.status = StatusUnbounded
				s.log.Debug("relaxation unbounded", "node", n.id)
				return nil
			case lpIterLimit:
				s.log.Debug("lp iteration limit", "node", n.id)
			case lpFailed:
				s.log.Debug("relaxation failed", "node", n.id)
			}
		}
		if !s.lpSolved && !infeasible {
			n.bound = math.Max(n.bound, m.pseudoBound(n))
		}
		s.log.Debug("node", "id", n.id, "depth", n.depth, "bound", n.bound, "lp", s.lpSolved, "infeasible", infeasible)

		if infeasible || s.cutoff(n.bound) {
			return m.runHeuristics(timing, true)
		}
		if s.lpSolved && m.integral(s.lpSol) {
			m.trySol(s.lpSol, "relaxation")
			return m.runHeuristics(timing, false)
		}
		if err := m.runHeuristics(timing, false); err != nil {
			return err
		}
		if s.cutoff(n.bound) {
			return nil
		}
		res, err := m.branch(n)
		if err != nil {
			return err
		}
		if res != ReducedDom {
			return nil
		}
	}
}

func (m *Model) runHeuristics(timing HeurTiming, nodeInfeasible bool) error {
	s := m.search
	for _, h := range m.heuristics {
		if h.Timing&timing == 0 || !h.due(s.focus.depth) {
			continue
		}
		if m.interrupted() {
			return nil
		}
		h.calls++
		res, err := h.heur.Exec(m, timing, nodeInfeasible)
		if err != nil {
			return &PluginError{Plugin: h.Name, Err: err}
		}
		switch res {
		case Found:
			h.found++
		case DidNotRun, DidNotFind, Delayed:
		default:
			return &PluginError{Plugin: h.Name, Err: fmt.Errorf("%w: %s from heuristic", ErrInvalidResult, res)}
		}
		s.log.Debug("heuristic called", "name", h.Name, "timing", timing, "result", res)
	}
	return nil
}

func (m *Model) withinBoundDist(n *node, maxDist float64) bool {
	s := m.search
	if maxDist >= 1 || !s.hasBest {
		return true
	}
	lower := s.lowerBound()
	span := s.bestObj - lower
	if span <= cutoffEps {
		return true
	}
	return (n.bound-lower)/span <= maxDist+cutoffEps
}

func (m *Model) branch(n *node) (Result, error) {
	s := m.search
	s.branching = true
	defer func() { s.branching = false }()

	for _, br := range m.branchrules {
		if br.MaxDepth >= 0 && n.depth > br.MaxDepth {
			continue
		}
		if !m.withinBoundDist(n, br.MaxBoundDist) {
			continue
		}
		if m.interrupted() {
			break
		}
		s.children, s.domReduced = 0, false
		br.calls++
		var res Result
		var err error
		switch {
		case s.lpSolved:
			res, err = br.rule.ExecLP(m, true)
		case len(s.externCands) > 0:
			res, err = br.rule.ExecExt(m, true)
		default:
			res, err = br.rule.ExecPs(m, true)
		}
		if err != nil {
			return 0, &PluginError{Plugin: br.Name, Err: err}
		}
		s.log.Debug("branchrule called", "name", br.Name, "result", res, "children", s.children)
		if s.children > 0 && res != Branched {
			return 0, &PluginError{Plugin: br.Name, Err: fmt.Errorf("%w: %s after creating children", ErrInvalidResult, res)}
		}
		switch res {
		case DidNotRun:
			continue
		case Branched:
			if s.children == 0 {
				return 0, &PluginError{Plugin: br.Name, Err: ErrNoBranching}
			}
			return Branched, nil
		case CutOff:
			return CutOff, nil
		case ReducedDom:
			if !s.domReduced {
				return 0, &PluginError{Plugin: br.Name, Err: fmt.Errorf("%w: reduceddom without a bound change", ErrInvalidResult)}
			}
			return ReducedDom, nil
		default:
			return 0, &PluginError{Plugin: br.Name, Err: fmt.Errorf("%w: %s from branchrule", ErrInvalidResult, res)}
		}
	}

	j, val := m.defaultCandidate(n)
	if j < 0 {
		return DidNotRun, nil
	}
	m.branchOn(j, val)
	return Branched, nil
}

// defaultCandidate picks the most fractional LP candidate, else the first
// external candidate, else the first unfixed integer variable.
func (m *Model) defaultCandidate(n *node) (int, float64) {
	s := m.search
	preferBinary := m.params.getBool("branching/preferbinary")
	if s.lpSolved {
		cands, vals := m.BranchCands()
		best, bestJ, bestVal, bestBin := -1.0, -1, 0.0, false
		for k, j := range cands {
			f := vals[k] - math.Floor(vals[k])
			score := math.Min(f, 1-f)
			bin := preferBinary && m.vars[j].Lb == 0 && m.vars[j].Ub == 1
			if (bin && !bestBin) || (bin == bestBin && score > best) {
				best, bestJ, bestVal, bestBin = score, j, vals[k], bin
			}
		}
		return bestJ, bestVal
	}
	for _, c := range s.externCands {
		if n.ub[c.j]-n.lb[c.j] >= 0.5 {
			return c.j, c.val
		}
	}
	cands := m.PseudoCands()
	if len(cands) == 0 {
		return -1, 0
	}
	pick := cands[0]
	if preferBinary {
		for _, j := range cands {
			if m.vars[j].Lb == 0 && m.vars[j].Ub == 1 {
				pick = j
				break
			}
		}
	}
	return pick, m.pseudoValue(n, pick)
}

func (m *Model) branchOn(j int, val float64) {
	s := m.search
	n := s.focus
	var down float64
	if f := val - math.Floor(val); f > feasTol && f < 1-feasTol {
		down = math.Floor(val)
	} else {
		down = math.Round(val)
		if !isInf(n.ub[j]) && down >= n.ub[j] {
			down = n.ub[j] - 1
		}
		if !isInf(n.lb[j]) && down < n.lb[j] {
			down = n.lb[j]
		}
	}
	dub := slices.Clone(n.ub)
	dub[j] = down
	s.newNode(n, slices.Clone(n.lb), dub)
	ulb := slices.Clone(n.lb)
	ulb[j] = down + 1
	s.newNode(n, ulb, slices.Clone(n.ub))
	s.children += 2
	s.log.Debug("branched", "node", n.id, "var", m.vars[j].Name, "value", val, "down", down)
}

func (m *Model) integersFixed(n *node) bool {
	for j, v := range m.vars {
		if v.Integer && (isInf(n.lb[j]) || isInf(n.ub[j]) || n.ub[j]-n.lb[j] >= 0.5) {
			return false
		}
	}
	return true
}

func (m *Model) integral(x []float64) bool {
	for j, v := range m.vars {
		if v.Integer && math.Abs(x[j]-math.Round(x[j])) > feasTol {
			return false
		}
	}
	return true
}

// pseudoValue is the bound of variable j at node n that is best for the
// objective, or the other bound when that one is infinite.
func (m *Model) pseudoValue(n *node, j int) float64 {
	c := m.sense() * m.vars[j].Obj
	lo, hi := n.lb[j], n.ub[j]
	if c < 0 {
		lo, hi = hi, lo
	}
	switch {
	case !isInf(lo):
		return lo
	case !isInf(hi):
		return hi
	}
	return 0
}

// pseudoBound is the objective of the best bounds, ignoring constraints.
func (m *Model) pseudoBound(n *node) float64 {
	bound := 0.0
	for j, c := range m.internalCosts() {
		switch {
		case c > 0:
			if isInf(n.lb[j]) {
				return math.Inf(-1)
			}
			bound += c * n.lb[j]
		case c < 0:
			if isInf(n.ub[j]) {
				return math.Inf(-1)
			}
			bound += c * n.ub[j]
		}
	}
	return bound
}

// feasible reports whether x satisfies the global bounds, integrality and
// every constraint.
func (m *Model) feasible(x []float64) bool {
	s := m.search
	for j, v := range m.vars {
		if x[j] < s.glb[j]-feasTol || x[j] > s.gub[j]+feasTol {
			return false
		}
		if v.Integer && math.Abs(x[j]-math.Round(x[j])) > feasTol {
			return false
		}
	}
	for _, c := range m.conss {
		act := 0.0
		for j, a := range c.Coefs {
			act += a * x[j]
		}
		if act < c.Lhs-feasTol || act > c.Rhs+feasTol {
			return false
		}
	}
	return true
}

func (m *Model) trySol(x []float64, source string) bool {
	s := m.search
	if !m.feasible(x) {
		return false
	}
	sol := slices.Clone(x)
	obj := 0.0
	for j, c := range m.internalCosts() {
		if m.vars[j].Integer {
			sol[j] = math.Round(sol[j])
		}
		obj += c * sol[j]
	}
	if s.hasBest && obj >= s.bestObj-cutoffEps {
		return false
	}
	s.best, s.bestObj, s.hasBest = sol, obj, true
	s.log.Debug("incumbent", "source", source, "obj", m.sense()*obj)
	return true
}

func (m *Model) solving() (*search, error) {
	if m.Stage() != StageSolving || m.search == nil {
		return nil, ErrNotSolving
	}
	return m.search, nil
}

func (m *Model) focused() (*search, error) {
	s, err := m.solving()
	if err != nil {
		return nil, err
	}
	if s.focus == nil {
		return nil, ErrNoFocusNode
	}
	return s, nil
}

func (m *Model) checkVar(j int) error {
	if j < 0 || j >= len(m.vars) {
		return fmt.Errorf("%w: index %d", ErrUnknownVar, j)
	}
	return nil
}

// TrySol submits a primal solution. It reports whether x was feasible and
// improved the incumbent.
func (m *Model) TrySol(x []float64) (bool, error) {
	if _, err := m.solving(); err != nil {
		return false, err
	}
	if len(x) != len(m.vars) {
		return false, fmt.Errorf("bnb: solution has %d values, model has %d variables", len(x), len(m.vars))
	}
	return m.trySol(x, "plugin"), nil
}

// BranchCands returns the integer variables with a fractional value in the
// LP solution of the focus node, with those values. Both are nil when the
// focus node has no LP solution.
func (m *Model) BranchCands() ([]int, []float64) {
	s, err := m.focused()
	if err != nil || !s.lpSolved {
		return nil, nil
	}
	var cands []int
	var vals []float64
	for j, v := range m.vars {
		x := s.lpSol[j]
		if v.Integer && math.Abs(x-math.Round(x)) > feasTol {
			cands = append(cands, j)
			vals = append(vals, x)
		}
	}
	return cands, vals
}

// PseudoCands returns the unfixed integer variables of the focus node.
func (m *Model) PseudoCands() []int {
	s, err := m.focused()
	if err != nil {
		return nil
	}
	var cands []int
	for j, v := range m.vars {
		if v.Integer && s.focus.ub[j]-s.focus.lb[j] >= 0.5 {
			cands = append(cands, j)
		}
	}
	return cands
}

// ExternCands returns the external branching candidates registered at the
// focus node.
func (m *Model) ExternCands() ([]int, []float64) {
	s, err := m.focused()
	if err != nil {
		return nil, nil
	}
	cands := make([]int, len(s.externCands))
	vals := make([]float64, len(s.externCands))
	for k, c := range s.externCands {
		cands[k], vals[k] = c.j, c.val
	}
	return cands, vals
}

// AddExternBranchCand registers variable j with value val as an external
// branching candidate of the focus node. Branching rules are then called
// through ExecExt whenever the node has no LP solution.
func (m *Model) AddExternBranchCand(j int, val float64) error {
	s, err := m.focused()
	if err != nil {
		return err
	}
	if err := m.checkVar(j); err != nil {
		return err
	}
	s.externCands = append(s.externCands, externCand{j: j, val: val})
	return nil
}

// Branch splits the focus node on integer variable j: at its LP or
// candidate value when fractional, around it otherwise. It is valid only
// inside a branching rule.
func (m *Model) Branch(j int) error {
	s, err := m.focused()
	if err != nil || !s.branching {
		return ErrNotBranching
	}
	if err := m.checkVar(j); err != nil {
		return err
	}
	n := s.focus
	if !m.vars[j].Integer || n.ub[j]-n.lb[j] < 0.5 {
		return fmt.Errorf("%w: %q", ErrCannotBranch, m.vars[j].Name)
	}
	val := m.pseudoValue(n, j)
	if s.lpSolved {
		val = s.lpSol[j]
	} else {
		for _, c := range s.externCands {
			if c.j == j {
				val = c.val
				break
			}
		}
	}
	m.branchOn(j, val)
	return nil
}

// ChgVarLbNode tightens the lower bound of variable j at the focus node.
// Looser bounds are ignored. Changes at the root are global.
func (m *Model) ChgVarLbNode(j int, v float64) error {
	s, err := m.focused()
	if err != nil {
		return err
	}
	if err := m.checkVar(j); err != nil {
		return err
	}
	if m.vars[j].Integer {
		v = math.Ceil(v - feasTol)
	}
	if v > s.focus.lb[j] {
		s.focus.lb[j] = v
		s.domReduced = true
		if s.focus.depth == 0 {
			s.glb[j] = v
		}
	}
	return nil
}

// ChgVarUbNode tightens the upper bound of variable j at the focus node.
func (m *Model) ChgVarUbNode(j int, v float64) error {
	s, err := m.focused()
	if err != nil {
		return err
	}
	if err := m.checkVar(j); err != nil {
		return err
	}
	if m.vars[j].Integer {
		v = math.Floor(v + feasTol)
	}
	if v < s.focus.ub[j] {
		s.focus.ub[j] = v
		s.domReduced = true
		if s.focus.depth == 0 {
			s.gub[j] = v
		}
	}
	return nil
}

// NodeDepth returns the depth of the focus node, or -1 without one.
func (m *Model) NodeDepth() int {
	s, err := m.focused()
	if err != nil {
		return -1
	}
	return s.focus.depth
}

// NodeBounds returns the bounds of variable j at the focus node.
func (m *Model) NodeBounds(j int) (lb, ub float64, err error) {
	s, err := m.focused()
	if err != nil {
		return 0, 0, err
	}
	if err := m.checkVar(j); err != nil {
		return 0, 0, err
	}
	return s.focus.lb[j], s.focus.ub[j], nil
}

// LPSol returns a copy of the focus node's LP solution, or nil.
func (m *Model) LPSol() []float64 {
	s, err := m.focused()
	if err != nil || !s.lpSolved {
		return nil
	}
	return slices.Clone(s.lpSol)
}

// Status returns how the last Solve ended.
func (m *Model) Status() Status {
	if m.search == nil {
		return StatusUnknown
	}
	return m.search.status
}

// ObjVal returns the objective of the incumbent, or the infinity of the
// wrong direction when there is none.
func (m *Model) ObjVal() float64 {
	if m.search == nil || !m.search.hasBest {
		return m.sense() * math.Inf(1)
	}
	return m.sense() * m.search.bestObj
}

// BestSol returns a copy of the incumbent, or nil.
func (m *Model) BestSol() []float64 {
	if m.search == nil || !m.search.hasBest {
		return nil
	}
	return slices.Clone(m.search.best)
}

// DualBound returns the proven bound on the optimal objective.
func (m *Model) DualBound() float64 {
	if m.search == nil {
		return m.sense() * math.Inf(-1)
	}
	s := m.search
	lower := s.lowerBound()
	if s.status == StatusOptimal || s.status == StatusInfeasible {
		lower = s.bestObj
	}
	return m.sense() * lower
}

// Gap returns the relative primal-dual gap, or +Inf.
func (m *Model) Gap() float64 {
	if m.search == nil || !m.search.hasBest {
		return math.Inf(1)
	}
	p, d := m.search.bestObj, m.search.lowerBound()
	switch {
	case math.Abs(p-d) <= cutoffEps:
		return 0
	case isInf(d) || p*d < 0:
		return math.Inf(1)
	}
	return math.Abs(p-d) / math.Min(math.Abs(p), math.Abs(d))
}

// NNodes returns the number of nodes processed by the last Solve.
func (m *Model) NNodes() int64 {
	if m.search == nil {
		return 0
	}
	return m.search.nnodes
}

// NLPs returns the number of LP relaxations solved by the last Solve.
func (m *Model) NLPs() int64 {
	if m.search == nil {
		return 0
	}
	return m.search.nlps
}
