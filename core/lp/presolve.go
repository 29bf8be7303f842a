package lp

import (
	"fmt"
	"math"
)

type sparseRow struct {
	cols  []int
	coefs []float64
	sense Sense
	rhs   float64
}

// standardForm is the problem handed to the tableau: constraints with at
// least two free variables over columns, with every other variable fixed.
type standardForm struct {
	cols  []int // variable id of each column
	colOf []int // column of each variable, -1 when fixed
	rows  []sparseRow
	cost  []float64
	// fixed holds the value of every variable that is not a column.
	fixed []float64
	// lower and upper are the root bounds of the columns.
	lower []float64
	upper []float64
}

type mergedRow struct {
	ids   []int
	coefs []float64
	sense Sense
	rhs   float64
	done  bool
}

// presolve turns single-variable constraints into bounds, substitutes fixed
// variables and drops variables no constraint uses. It reports false when
// the bounds alone are contradictory.
//
//gocyclo:ignore
func (s *SimplexSolver) presolve(p *Problem) (*standardForm, bool, error) {
	nv := len(p.vars)
	lo, up := make([]float64, nv), make([]float64, nv)
	for i, v := range p.vars {
		if math.IsInf(v.Lower, -1) {
			return nil, false, fmt.Errorf("lp: variable %q needs a finite lower bound", v.Name)
		}
		lo[i], up[i] = v.Lower, v.Upper
	}
	round := func(i int) bool {
		if p.vars[i].Kind == Binary {
			lo[i] = math.Max(0, math.Ceil(lo[i]-s.IntegralityTol))
			up[i] = math.Min(1, math.Floor(up[i]+s.IntegralityTol))
		}
		if up[i] < lo[i] {
			if lo[i]-up[i] > feasibilityTol {
				return false
			}
			up[i] = lo[i]
		}
		return true
	}
	for i := range p.vars {
		if !round(i) {
			return nil, false, nil
		}
	}
	isFixed := func(i int) bool { return up[i]-lo[i] <= feasibilityTol }

	rows := make([]mergedRow, len(p.constraints))
	at := make(map[int]int)
	for r, c := range p.constraints {
		clear(at)
		mr := mergedRow{sense: c.Sense, rhs: c.RHS}
		for _, t := range c.Expr.Terms {
			if k, ok := at[t.Var.id]; ok {
				mr.coefs[k] += t.Coef
				continue
			}
			at[t.Var.id] = len(mr.ids)
			mr.ids = append(mr.ids, t.Var.id)
			mr.coefs = append(mr.coefs, t.Coef)
		}
		rows[r] = mr
	}

	for pass := 0; pass < presolvePasses; pass++ {
		changed := false
		for r := range rows {
			mr := &rows[r]
			if mr.done {
				continue
			}
			rhs, free, coef := mr.rhs, -1, 0.0
			count := 0
			for k, id := range mr.ids {
				switch {
				case mr.coefs[k] == 0:
				case isFixed(id):
					rhs -= mr.coefs[k] * lo[id]
				default:
					count++
					free, coef = id, mr.coefs[k]
				}
			}
			switch count {
			case 0:
				if !constantHolds(mr.sense, rhs) {
					return nil, false, nil
				}
				mr.done = true
			case 1:
				v := rhs / coef
				switch {
				case mr.sense == Equal:
					lo[free], up[free] = math.Max(lo[free], v), math.Min(up[free], v)
				case (mr.sense == LessEq) == (coef > 0):
					up[free] = math.Min(up[free], v)
				default:
					lo[free] = math.Max(lo[free], v)
				}
				if !round(free) {
					return nil, false, nil
				}
				mr.done, changed = true, true
			}
		}
		if !changed {
			break
		}
	}

	sf := &standardForm{colOf: make([]int, nv), fixed: make([]float64, nv)}
	for i := range sf.colOf {
		sf.colOf[i] = -1
	}
	for r := range rows {
		mr := &rows[r]
		if mr.done {
			continue
		}
		row := sparseRow{sense: mr.sense, rhs: mr.rhs}
		for k, id := range mr.ids {
			switch {
			case mr.coefs[k] == 0:
			case isFixed(id):
				row.rhs -= mr.coefs[k] * lo[id]
			default:
				if sf.colOf[id] < 0 {
					sf.colOf[id] = len(sf.cols)
					sf.cols = append(sf.cols, id)
				}
				row.cols = append(row.cols, sf.colOf[id])
				row.coefs = append(row.coefs, mr.coefs[k])
			}
		}
		if len(row.cols) == 0 {
			if !constantHolds(row.sense, row.rhs) {
				return nil, false, nil
			}
			continue
		}
		sf.rows = append(sf.rows, row)
	}

	cost := make([]float64, nv)
	for _, t := range p.objective.Terms {
		cost[t.Var.id] += t.Coef
	}
	sf.cost = make([]float64, len(sf.cols))
	sf.lower = make([]float64, len(sf.cols))
	sf.upper = make([]float64, len(sf.cols))
	for col, id := range sf.cols {
		sf.cost[col] = cost[id]
		sf.lower[col], sf.upper[col] = lo[id], up[id]
	}
	for id := range p.vars {
		if sf.colOf[id] >= 0 {
			continue
		}
		switch {
		case isFixed(id) || cost[id] >= 0:
			sf.fixed[id] = lo[id]
		case math.IsInf(up[id], 1):
			return nil, false, fmt.Errorf("%w: variable %s", ErrUnbounded, p.vars[id].Name)
		default:
			sf.fixed[id] = up[id]
		}
	}
	return sf, true, nil
}

// point returns the value of every variable at the tableau's solution.
func (sf *standardForm) point(t *tableau) []float64 {
	x := append([]float64(nil), sf.fixed...)
	for col, id := range sf.cols {
		x[id] = math.Min(math.Max(t.value(col), t.lower[col]), t.upper[col])
	}
	return x
}
