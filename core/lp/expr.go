package lp

// LinearTerm is coef * variable.
type LinearTerm struct {
	Var  *Variable
	Coef float64
}

// Expr is a linear expression: Σ coef·var + Const.
type Expr struct {
	Terms []LinearTerm
	Const float64
}

// Sum returns the sum of the given variables. Nil variables are skipped.
func Sum(vars ...*Variable) Expr {
	var b Builder
	for _, v := range vars {
		b.Add(v, 1)
	}
	return b.Expr()
}

// Term returns coef * v.
func Term(v *Variable, coef float64) Expr {
	return Expr{}.Add(v, coef)
}

// Constant returns an expression without variables.
func Constant(c float64) Expr { return Expr{Const: c} }

// Builder accumulates an expression in place. Expr methods copy their
// terms on every call, so long sums such as objectives go through a Builder.
type Builder struct {
	terms []LinearTerm
	c     float64
}

// Add appends coef*v. A nil variable or zero coefficient is a no-op.
func (b *Builder) Add(v *Variable, coef float64) {
	if v == nil || coef == 0 {
		return
	}
	b.terms = append(b.terms, LinearTerm{Var: v, Coef: coef})
}

// AddExpr appends the terms and constant of e.
func (b *Builder) AddExpr(e Expr) {
	b.terms = append(b.terms, e.Terms...)
	b.c += e.Const
}

// Len returns the number of terms collected so far.
func (b *Builder) Len() int { return len(b.terms) }

// Expr returns the collected expression. The builder must not be used
// afterwards.
func (b *Builder) Expr() Expr { return Expr{Terms: b.terms, Const: b.c} }

// Add returns e + coef*v. A nil variable or zero coefficient is a no-op.
func (e Expr) Add(v *Variable, coef float64) Expr {
	if v == nil || coef == 0 {
		return e
	}
	terms := make([]LinearTerm, len(e.Terms), len(e.Terms)+1)
	copy(terms, e.Terms)
	return Expr{Terms: append(terms, LinearTerm{Var: v, Coef: coef}), Const: e.Const}
}

// AddExpr returns e + o.
func (e Expr) AddExpr(o Expr) Expr {
	terms := make([]LinearTerm, 0, len(e.Terms)+len(o.Terms))
	terms = append(terms, e.Terms...)
	terms = append(terms, o.Terms...)
	return Expr{Terms: terms, Const: e.Const + o.Const}
}

// Sub returns e - o.
func (e Expr) Sub(o Expr) Expr { return e.AddExpr(o.Scale(-1)) }

// Scale returns k*e.
func (e Expr) Scale(k float64) Expr {
	terms := make([]LinearTerm, 0, len(e.Terms))
	for _, t := range e.Terms {
		if t.Coef*k != 0 {
			terms = append(terms, LinearTerm{Var: t.Var, Coef: t.Coef * k})
		}
	}
	return Expr{Terms: terms, Const: e.Const * k}
}

// AddConst returns e + c.
func (e Expr) AddConst(c float64) Expr {
	return Expr{Terms: e.Terms, Const: e.Const + c}
}

// IsZero reports whether e has neither terms nor a constant.
func (e Expr) IsZero() bool { return len(e.Terms) == 0 && e.Const == 0 }

// Sense is the relation of a constraint.
type Sense int

const (
	LessEq Sense = iota
	Equal
	GreaterEq
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	default:
		return "=="
	}
}

// Constraint is Expr (sense) RHS. Constants of Expr are folded into RHS by
// NewConstraint.
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// NewConstraint normalises lhs (sense) rhs into terms on the left and a
// constant on the right.
func NewConstraint(name string, lhs Expr, sense Sense, rhs Expr) Constraint {
	e := lhs.Sub(rhs)
	return Constraint{
		Name:  name,
		Expr:  Expr{Terms: e.Terms},
		Sense: sense,
		RHS:   -e.Const,
	}
}
