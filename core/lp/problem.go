package lp

import (
	"fmt"
	"math"
)

// Kind distinguishes continuous from binary decision variables.
type Kind int

const (
	Continuous Kind = iota
	Binary
)

func (k Kind) String() string {
	if k == Binary {
		return "binary"
	}
	return "continuous"
}

// Variable is a decision variable owned by a Problem. A nil *Variable stands
// for the constant zero.
type Variable struct {
	id    int
	Name  string
	Kind  Kind
	Lower float64
	Upper float64
}

// ID returns the column index of the variable inside its problem.
func (v *Variable) ID() int { return v.id }

// DuplicateVariableError reports a variable name registered twice.
type DuplicateVariableError struct {
	Name string
}

func (e *DuplicateVariableError) Error() string {
	return fmt.Sprintf("lp: duplicate variable name %q", e.Name)
}

// Problem collects variables, constraints and the objective of one program.
// Variable creation errors are sticky and reported by Err.
type Problem struct {
	vars        []*Variable
	names       map[string]*Variable
	constraints []Constraint
	objective   Expr
	err         error
}

// NewProblem returns an empty minimisation problem.
func NewProblem() *Problem {
	return &Problem{names: make(map[string]*Variable)}
}

// Continuous adds a continuous variable bounded by [lower, upper]. Use
// math.Inf(1) for an unbounded variable.
func (p *Problem) Continuous(name string, lower, upper float64) *Variable {
	return p.add(name, Continuous, lower, upper)
}

// Binary adds a {0,1} variable.
func (p *Problem) Binary(name string) *Variable {
	return p.add(name, Binary, 0, 1)
}

func (p *Problem) add(name string, kind Kind, lower, upper float64) *Variable {
	if prev, ok := p.names[name]; ok {
		if p.err == nil {
			p.err = &DuplicateVariableError{Name: name}
		}
		return prev
	}
	if upper < lower && p.err == nil {
		p.err = fmt.Errorf("lp: variable %q has upper bound %v below lower bound %v", name, upper, lower)
	}
	v := &Variable{id: len(p.vars), Name: name, Kind: kind, Lower: lower, Upper: upper}
	p.vars = append(p.vars, v)
	p.names[name] = v
	return v
}

// Constrain adds a constraint to the problem.
func (p *Problem) Constrain(c Constraint) {
	p.constraints = append(p.constraints, c)
}

// Eq adds lhs == rhs.
func (p *Problem) Eq(name string, lhs, rhs Expr) { p.Constrain(NewConstraint(name, lhs, Equal, rhs)) }

// Le adds lhs <= rhs.
func (p *Problem) Le(name string, lhs, rhs Expr) { p.Constrain(NewConstraint(name, lhs, LessEq, rhs)) }

// Ge adds lhs >= rhs.
func (p *Problem) Ge(name string, lhs, rhs Expr) { p.Constrain(NewConstraint(name, lhs, GreaterEq, rhs)) }

// ConstrainMax adds continuous <= binary * max.
func (p *Problem) ConstrainMax(name string, continuous, binary *Variable, max float64) {
	p.Le(name, Sum(continuous), Term(binary, max))
}

// ConstrainMin adds continuous >= binary * min.
func (p *Problem) ConstrainMin(name string, continuous, binary *Variable, min float64) {
	p.Ge(name, Sum(continuous), Term(binary, min))
}

// SetObjective sets the expression to minimise.
func (p *Problem) SetObjective(e Expr) { p.objective = e }

// Objective returns the expression to minimise.
func (p *Problem) Objective() Expr { return p.objective }

// Variables returns the variables in creation order.
func (p *Problem) Variables() []*Variable { return p.vars }

// Variable looks a variable up by name.
func (p *Problem) Variable(name string) (*Variable, bool) {
	v, ok := p.names[name]
	return v, ok
}

// Constraints returns the constraints in insertion order.
func (p *Problem) Constraints() []Constraint { return p.constraints }

// Err returns the first error recorded while building the problem.
func (p *Problem) Err() error { return p.err }

// Solution holds the solver outcome. Values are indexed by variable ID.
type Solution struct {
	Feasible  bool
	Objective float64
	// Nodes is the number of relaxations solved.
	Nodes  int
	values []float64
}

// NewSolution builds a feasible solution from values indexed by variable ID.
func NewSolution(objective float64, values []float64) Solution {
	return Solution{Feasible: true, Objective: objective, values: values}
}

// Infeasible returns a solution with no values.
func Infeasible() Solution {
	return Solution{Objective: math.NaN()}
}

// Value returns the solved value of v. The nil variable is zero; an
// infeasible solution yields NaN.
func (s Solution) Value(v *Variable) float64 {
	if v == nil {
		return 0
	}
	if !s.Feasible || v.id >= len(s.values) {
		return math.NaN()
	}
	return s.values[v.id]
}

// Eval evaluates an expression against the solution.
func (s Solution) Eval(e Expr) float64 {
	total := e.Const
	for _, t := range e.Terms {
		total += t.Coef * s.Value(t.Var)
	}
	return total
}

// Solver solves a problem. Infeasibility is reported through
// Solution.Feasible, not as an error.
type Solver interface {
	Solve(p *Problem) (Solution, error)
}
