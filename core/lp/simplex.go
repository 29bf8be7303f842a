package lp

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/energylp/core/logger"
)

var (
	// ErrUnbounded indicates the objective can decrease without limit.
	ErrUnbounded = errors.New("lp: problem is unbounded")
	// ErrIterationLimit indicates a relaxation needed more pivots than
	// allowed.
	ErrIterationLimit = errors.New("lp: simplex iteration limit reached")
	// ErrTimeLimit indicates the time limit expired before any integral
	// solution was found.
	ErrTimeLimit = errors.New("lp: time limit reached")
)

const (
	defaultTolerance      = 1e-9
	defaultIntegralityTol = 1e-6
	defaultMaxNodes       = 5000
	feasibilityTol        = 1e-9
	presolvePasses        = 20
)

// SimplexSolver solves mixed-integer programs with a bounded-variable
// simplex for every linear relaxation and depth-first branch-and-bound over
// binary variables. Child nodes restart from their parent's tableau with the
// dual simplex.
type SimplexSolver struct {
	// Tolerance is the reduced cost tolerance of the simplex.
	Tolerance float64
	// IntegralityTol is how far from 0/1 a binary may be and still count as
	// integral.
	IntegralityTol float64
	// MaxNodes bounds the number of relaxations. When reached the best
	// incumbent is returned.
	MaxNodes int
	// MaxIterations bounds the pivots of one relaxation. Zero derives the
	// limit from the problem size.
	MaxIterations int
	// TimeLimit bounds the whole solve. When it expires the best incumbent
	// is returned. Zero disables it.
	TimeLimit time.Duration
	Log       logger.Logger
}

// NewSimplexSolver returns a solver with default tolerances.
func NewSimplexSolver(log logger.Logger) *SimplexSolver {
	if log == nil {
		log = logger.Nop()
	}
	return &SimplexSolver{
		Tolerance:      defaultTolerance,
		IntegralityTol: defaultIntegralityTol,
		MaxNodes:       defaultMaxNodes,
		Log:            log,
	}
}

type node struct {
	lower []float64
	upper []float64
	// warm is a solved tableau of the parent, nil for a cold start.
	warm *tableau
}

func (n node) branch(col int, v float64, warm *tableau) node {
	c := node{
		lower: append([]float64(nil), n.lower...),
		upper: append([]float64(nil), n.upper...),
		warm:  warm,
	}
	c.lower[col], c.upper[col] = v, v
	return c
}

// Solve implements Solver. It is safe for concurrent use.
func (s *SimplexSolver) Solve(p *Problem) (Solution, error) {
	if err := p.Err(); err != nil {
		return Solution{}, err
	}
	c := *s
	c.setDefaults()
	return c.branchAndBound(p)
}

func (s *SimplexSolver) branchAndBound(p *Problem) (Solution, error) {
	var deadline time.Time
	if s.TimeLimit > 0 {
		deadline = time.Now().Add(s.TimeLimit)
	}

	sf, ok, err := s.presolve(p)
	if err != nil {
		return Solution{}, err
	}
	if !ok {
		return Infeasible(), nil
	}

	best := math.Inf(1)
	var bestX []float64
	nodes := 0
	timedOut := false
	stack := []node{{lower: sf.lower, upper: sf.upper}}
	for len(stack) > 0 {
		if nodes >= s.MaxNodes {
			s.Log.Warnf("branch and bound stopped after %d nodes, %d open", nodes, len(stack))
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			timedOut = true
			break
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		t, err := s.relax(sf, n, deadline)
		if errors.Is(err, ErrTimeLimit) {
			timedOut = true
			break
		}
		if err != nil {
			return Solution{}, err
		}
		if t == nil {
			continue
		}
		x := sf.point(t)
		obj := evaluate(p.objective, x)
		if obj >= best-s.Tolerance*math.Max(1, math.Abs(best)) {
			continue
		}
		j := s.branchVariable(p, x)
		if j < 0 {
			best, bestX = obj, x
			continue
		}
		col := sf.colOf[j]
		var sibling *tableau
		if t.size()*(len(stack)+1) <= maxWarmFloats {
			sibling = t.clone()
		}
		// the up branch is explored first
		stack = append(stack, n.branch(col, 0, sibling), n.branch(col, 1, t))
	}
	if timedOut {
		if bestX == nil {
			return Solution{}, fmt.Errorf("%w after %s and %d nodes", ErrTimeLimit, s.TimeLimit, nodes)
		}
		s.Log.Warnf("time limit %s reached after %d nodes, returning best solution", s.TimeLimit, nodes)
	}

	if bestX == nil {
		sol := Infeasible()
		sol.Nodes = nodes
		return sol, nil
	}
	for i, v := range p.vars {
		if v.Kind == Binary {
			bestX[i] = math.Round(bestX[i])
		}
	}
	sol := NewSolution(best, bestX)
	sol.Nodes = nodes
	s.Log.Debugw("mip solved", map[string]any{"objective": best, "nodes": nodes, "rows": len(sf.rows), "columns": len(sf.cols)})
	return sol, nil
}

func (s *SimplexSolver) setDefaults() {
	if s.Tolerance <= 0 {
		s.Tolerance = defaultTolerance
	}
	if s.IntegralityTol <= 0 {
		s.IntegralityTol = defaultIntegralityTol
	}
	if s.MaxNodes <= 0 {
		s.MaxNodes = defaultMaxNodes
	}
	if s.Log == nil {
		s.Log = logger.Nop()
	}
}

// branchVariable returns the most fractional binary or -1 when all binaries
// are integral.
func (s *SimplexSolver) branchVariable(p *Problem, x []float64) int {
	idx, dist := -1, s.IntegralityTol
	for i, v := range p.vars {
		if v.Kind != Binary {
			continue
		}
		frac := math.Abs(x[i] - math.Round(x[i]))
		if frac > dist {
			idx, dist = i, frac
		}
	}
	return idx
}

func (s *SimplexSolver) budget(t *tableau, deadline time.Time) *budget {
	limit := s.MaxIterations
	if limit <= 0 {
		limit = 50*(t.m+t.n) + 1000
	}
	return &budget{left: limit, deadline: deadline}
}

// relax solves the linear relaxation of a node. A nil tableau means the
// node is infeasible. Warm starts that fail fall back to a cold start.
func (s *SimplexSolver) relax(sf *standardForm, n node, deadline time.Time) (*tableau, error) {
	for j := range n.lower {
		if n.upper[j] < n.lower[j]-feasibilityTol {
			return nil, nil
		}
	}
	if n.warm != nil {
		t := n.warm
		t.rebound(n.lower, n.upper)
		b := s.budget(t, deadline)
		ok, err := t.dual(b)
		if err == nil && ok {
			err = t.primal(s.Tolerance, b)
		}
		switch {
		case err == nil && !ok:
			return nil, nil
		case err == nil:
			return t, nil
		case errors.Is(err, ErrTimeLimit):
			return nil, err
		}
		s.Log.Debugf("warm start failed, solving from scratch: %v", err)
	}

	t := newTableau(sf, n.lower, n.upper)
	ok, err := t.solve(s.Tolerance, s.budget(t, deadline))
	if err != nil {
		return nil, fmt.Errorf("simplex: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return t, nil
}

func evaluate(e Expr, x []float64) float64 {
	total := e.Const
	for _, t := range e.Terms {
		total += t.Coef * x[t.Var.id]
	}
	return total
}

func constantHolds(sense Sense, rhs float64) bool {
	switch sense {
	case LessEq:
		return rhs >= -feasibilityTol
	case GreaterEq:
		return rhs <= feasibilityTol
	default:
		return math.Abs(rhs) <= feasibilityTol
	}
}
