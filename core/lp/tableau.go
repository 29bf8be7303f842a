package lp

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	pivotTol    = 1e-9
	primalTol   = 1e-8
	dropTol     = 1e-12
	phaseOneTol = 1e-9
	ratioTieTol = 1e-12
	// blandAfter is the number of consecutive degenerate pivots after which
	// pricing falls back to Bland's rule.
	blandAfter = 50
	// maxWarmFloats caps the tableau entries kept alive for warm starts.
	maxWarmFloats = 1 << 24
)

// tableau is a dense simplex tableau over bounded columns. Columns are the
// structural variables followed by one slack per inequality row and one
// artificial per row that starts without a feasible slack. Nonbasic columns
// sit at their lower or upper bound; beta holds the values of the basic ones.
type tableau struct {
	m, n    int
	k       int // structural columns
	art     int // first artificial column
	a       *mat.Dense
	d       []float64
	beta    []float64
	basis   []int
	pos     []int
	lower   []float64
	upper   []float64
	atUpper []bool
	cost    []float64
}

// newTableau builds the phase one tableau of sf under the given structural
// bounds. Every nonbasic column starts at its lower bound.
func newTableau(sf *standardForm, lower, upper []float64) *tableau {
	m, k := len(sf.rows), len(sf.cols)
	resid := make([]float64, m)
	sign := make([]float64, m)
	needArt := make([]bool, m)
	slacks, arts := 0, 0
	for i, r := range sf.rows {
		v := r.rhs
		for p, col := range r.cols {
			v -= r.coefs[p] * lower[col]
		}
		resid[i] = v
		switch r.sense {
		case LessEq:
			slacks++
			sign[i] = 1
			if v < 0 {
				sign[i], needArt[i] = -1, true
			}
		case GreaterEq:
			slacks++
			sign[i] = -1
			if v > 0 {
				sign[i], needArt[i] = 1, true
			}
		default:
			sign[i], needArt[i] = 1, true
			if v < 0 {
				sign[i] = -1
			}
		}
		if needArt[i] {
			arts++
		}
	}

	n := k + slacks + arts
	t := &tableau{
		m: m, n: n, k: k, art: k + slacks,
		d:       make([]float64, n),
		beta:    make([]float64, m),
		basis:   make([]int, m),
		pos:     make([]int, n),
		lower:   make([]float64, n),
		upper:   make([]float64, n),
		atUpper: make([]bool, n),
		cost:    make([]float64, n),
	}
	if m > 0 {
		t.a = mat.NewDense(m, n, nil)
	}
	copy(t.lower, lower)
	copy(t.upper, upper)
	copy(t.cost, sf.cost)
	for j := k; j < n; j++ {
		t.upper[j] = math.Inf(1)
	}
	for j := range t.pos {
		t.pos[j] = -1
	}

	slack, art := k, t.art
	for i, r := range sf.rows {
		row := t.row(i)
		for p, col := range r.cols {
			row[col] += sign[i] * r.coefs[p]
		}
		t.beta[i] = sign[i] * resid[i]
		basic := -1
		switch r.sense {
		case LessEq:
			row[slack] = sign[i]
			if !needArt[i] {
				basic = slack
			}
			slack++
		case GreaterEq:
			row[slack] = -sign[i]
			if !needArt[i] {
				basic = slack
			}
			slack++
		}
		if needArt[i] {
			row[art] = 1
			basic = art
			art++
		}
		t.basis[i] = basic
		t.pos[basic] = i
	}
	return t
}

func (t *tableau) clone() *tableau {
	c := *t
	if t.a != nil {
		c.a = mat.DenseCopyOf(t.a)
	}
	c.d = append([]float64(nil), t.d...)
	c.beta = append([]float64(nil), t.beta...)
	c.basis = append([]int(nil), t.basis...)
	c.pos = append([]int(nil), t.pos...)
	c.lower = append([]float64(nil), t.lower...)
	c.upper = append([]float64(nil), t.upper...)
	c.atUpper = append([]bool(nil), t.atUpper...)
	return &c
}

func (t *tableau) size() int { return t.m * t.n }

func (t *tableau) row(i int) []float64 { return t.a.RawRowView(i) }

func (t *tableau) value(j int) float64 {
	if r := t.pos[j]; r >= 0 {
		return t.beta[r]
	}
	if t.atUpper[j] {
		return t.upper[j]
	}
	return t.lower[j]
}

func (t *tableau) fixed(j int) bool { return t.upper[j]-t.lower[j] <= feasibilityTol }

// price sets the reduced costs of the columns for costs c.
func (t *tableau) price(c []float64) {
	copy(t.d, c)
	for i, b := range t.basis {
		if cb := c[b]; cb != 0 {
			floats.AddScaled(t.d, -cb, t.row(i))
		}
	}
	for _, b := range t.basis {
		t.d[b] = 0
	}
}

// pivot makes column q basic in row r.
func (t *tableau) pivot(r, q int) {
	prow := t.row(r)
	floats.Scale(1/prow[q], prow)
	prow[q] = 1
	for i := 0; i < t.m; i++ {
		if i == r {
			continue
		}
		eliminate(t.row(i), prow, q)
	}
	eliminate(t.d, prow, q)
	t.pos[t.basis[r]] = -1
	t.basis[r] = q
	t.pos[q] = r
}

// eliminate subtracts row[q] × prow from row, skipping the zeros of prow.
func eliminate(row, prow []float64, q int) {
	f := row[q]
	if f == 0 {
		return
	}
	for j, v := range prow {
		if v == 0 {
			continue
		}
		x := row[j] - f*v
		if math.Abs(x) < dropTol {
			x = 0
		}
		row[j] = x
	}
	row[q] = 0
}

// move shifts every basic value by the change delta of nonbasic column q.
func (t *tableau) move(q int, delta float64) {
	if delta == 0 {
		return
	}
	for i := 0; i < t.m; i++ {
		if v := t.row(i)[q]; v != 0 {
			t.beta[i] -= v * delta
		}
	}
}

type budget struct {
	left     int
	deadline time.Time
}

func (b *budget) spend() error {
	b.left--
	if b.left < 0 {
		return ErrIterationLimit
	}
	if !b.deadline.IsZero() && b.left%256 == 0 && time.Now().After(b.deadline) {
		return ErrTimeLimit
	}
	return nil
}

// primal runs the bounded primal simplex from a primal feasible basis until
// no column prices out.
func (t *tableau) primal(tol float64, b *budget) error {
	degenerate := 0
	for {
		if err := b.spend(); err != nil {
			return err
		}
		bland := degenerate > blandAfter
		q, dir := t.entering(tol, bland)
		if q < 0 {
			return nil
		}

		step := t.upper[q] - t.lower[q]
		r, leaveUpper, best := -1, false, 0.0
		for i := 0; i < t.m; i++ {
			alpha := dir * t.row(i)[q]
			if math.Abs(alpha) <= pivotTol {
				continue
			}
			bv := t.basis[i]
			var lim float64
			toUpper := false
			switch {
			case alpha > 0:
				lim = (t.beta[i] - t.lower[bv]) / alpha
			case !math.IsInf(t.upper[bv], 1):
				lim = (t.upper[bv] - t.beta[i]) / -alpha
				toUpper = true
			default:
				continue
			}
			lim = math.Max(lim, 0)
			take := false
			switch {
			case r < 0:
				take = lim < step
			case lim < step-ratioTieTol:
				take = true
			case lim <= step+ratioTieTol:
				if bland {
					take = bv < t.basis[r]
				} else {
					take = math.Abs(alpha) > best
				}
			}
			if take {
				r, leaveUpper, step, best = i, toUpper, lim, math.Abs(alpha)
			}
		}
		if math.IsInf(step, 1) {
			return ErrUnbounded
		}
		if step <= primalTol {
			degenerate++
		} else {
			degenerate = 0
		}

		entered := t.value(q) + dir*step
		t.move(q, dir*step)
		if r < 0 {
			t.atUpper[q] = !t.atUpper[q]
			continue
		}
		leaving := t.basis[r]
		t.atUpper[leaving] = leaveUpper
		t.pivot(r, q)
		t.beta[r] = entered
	}
}

// entering picks the nonbasic column whose reduced cost improves the
// objective, with its direction of travel.
func (t *tableau) entering(tol float64, bland bool) (int, float64) {
	q, dir, score := -1, 0.0, tol
	for j := 0; j < t.n; j++ {
		if t.pos[j] >= 0 || t.fixed(j) {
			continue
		}
		dj := t.d[j]
		var s, dj2 float64
		switch {
		case !t.atUpper[j] && dj < -tol:
			s, dj2 = -dj, 1
		case t.atUpper[j] && dj > tol:
			s, dj2 = dj, -1
		default:
			continue
		}
		if bland {
			return j, dj2
		}
		if s > score {
			q, dir, score = j, dj2, s
		}
	}
	return q, dir
}

// dual runs the bounded dual simplex from a dual feasible basis. It reports
// false when the bounds leave no feasible point.
func (t *tableau) dual(b *budget) (bool, error) {
	for {
		if err := b.spend(); err != nil {
			return false, err
		}
		r, worst, target := -1, primalTol, 0.0
		for i, bv := range t.basis {
			if v := t.lower[bv] - t.beta[i]; v > worst {
				r, worst, target = i, v, t.lower[bv]
			}
			if v := t.beta[i] - t.upper[bv]; v > worst {
				r, worst, target = i, v, t.upper[bv]
			}
		}
		if r < 0 {
			return true, nil
		}
		increase := t.beta[r] < target

		row := t.row(r)
		q, ratio, best := -1, math.Inf(1), 0.0
		for j, alpha := range row {
			if t.pos[j] >= 0 || math.Abs(alpha) <= pivotTol || t.fixed(j) {
				continue
			}
			dir := 1.0
			if t.atUpper[j] {
				dir = -1
			}
			if (-alpha*dir > 0) != increase {
				continue
			}
			v := math.Abs(t.d[j] / alpha)
			if v < ratio-ratioTieTol || (v <= ratio+ratioTieTol && math.Abs(alpha) > best) {
				q, ratio, best = j, v, math.Abs(alpha)
			}
		}
		if q < 0 {
			return false, nil
		}

		delta := (t.beta[r] - target) / row[q]
		entered := t.value(q) + delta
		t.move(q, delta)
		leaving := t.basis[r]
		t.atUpper[leaving] = !increase
		t.pivot(r, q)
		t.beta[r] = entered
	}
}

// rebound applies new structural bounds to a solved tableau. Nonbasic
// columns move to the bound matching the sign of their reduced cost so the
// basis stays dual feasible.
func (t *tableau) rebound(lower, upper []float64) {
	for j := 0; j < t.k; j++ {
		old := t.value(j)
		t.lower[j], t.upper[j] = lower[j], upper[j]
		if t.pos[j] >= 0 {
			continue
		}
		switch {
		case t.fixed(j) || math.IsInf(upper[j], 1):
			t.atUpper[j] = false
		case t.d[j] < -dropTol:
			t.atUpper[j] = true
		case t.d[j] > dropTol:
			t.atUpper[j] = false
		}
		t.move(j, t.value(j)-old)
	}
}

// infeasibility is the phase one objective.
func (t *tableau) infeasibility() float64 {
	var sum float64
	for j := t.art; j < t.n; j++ {
		sum += math.Abs(t.value(j))
	}
	return sum
}

// solve runs phase one when artificials are present, pins them at zero and
// optimises the real costs. It reports false for an infeasible program.
func (t *tableau) solve(tol float64, b *budget) (bool, error) {
	if t.art < t.n {
		c := make([]float64, t.n)
		for j := t.art; j < t.n; j++ {
			c[j] = 1
		}
		t.price(c)
		if err := t.primal(tol, b); err != nil {
			return false, err
		}
		scale := 1.0
		for _, v := range t.beta {
			scale = math.Max(scale, math.Abs(v))
		}
		if t.infeasibility() > phaseOneTol*scale {
			return false, nil
		}
		for j := t.art; j < t.n; j++ {
			t.upper[j] = 0
			t.atUpper[j] = false
		}
	}
	t.price(t.cost)
	if err := t.primal(tol, b); err != nil {
		return false, err
	}
	return true, nil
}
