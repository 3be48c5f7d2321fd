// Package refinement implements refinement-type predicates and subtyping
// (spec §4.7): {ν : base | φ} types where φ is an arithmetic/logical
// predicate language, evaluated under a variable binding, with a static
// decision table for common comparison-implication subtyping judgments.
package refinement

import "fmt"

// ExprKind discriminates predicate-expression node variants.
type ExprKind string

const (
	ExprConst ExprKind = "const"
	ExprVar   ExprKind = "var"
	ExprLen   ExprKind = "len"
	ExprAdd   ExprKind = "add"
	ExprSub   ExprKind = "sub"
	ExprMul   ExprKind = "mul"
	ExprDiv   ExprKind = "div"
	ExprMod   ExprKind = "mod"
	ExprNeg   ExprKind = "neg"
)

// Expr is an arithmetic expression node.
type Expr struct {
	Kind  ExprKind
	Const float64
	Var   string
	A, B  *Expr // operands for binary kinds; A only for ExprLen/ExprNeg
}

func Const(v float64) *Expr       { return &Expr{Kind: ExprConst, Const: v} }
func Var(name string) *Expr       { return &Expr{Kind: ExprVar, Var: name} }
func Len(e *Expr) *Expr           { return &Expr{Kind: ExprLen, A: e} }
func Add(a, b *Expr) *Expr        { return &Expr{Kind: ExprAdd, A: a, B: b} }
func Sub(a, b *Expr) *Expr        { return &Expr{Kind: ExprSub, A: a, B: b} }
func Mul(a, b *Expr) *Expr        { return &Expr{Kind: ExprMul, A: a, B: b} }
func Div(a, b *Expr) *Expr        { return &Expr{Kind: ExprDiv, A: a, B: b} }
func Mod(a, b *Expr) *Expr        { return &Expr{Kind: ExprMod, A: a, B: b} }
func Neg(e *Expr) *Expr           { return &Expr{Kind: ExprNeg, A: e} }

// Binding maps a variable name to a numeric value, or to a length for the
// len() operator when the variable denotes a collection/string.
type Binding struct {
	Values  map[string]float64
	Lengths map[string]float64
}

// Eval evaluates an arithmetic expression under binding. It returns
// (value, false) for division by zero (spec §4.7: "None for division by
// zero"), propagated by the caller as an unknown.
func Eval(e *Expr, b Binding) (float64, bool) {
	if e == nil {
		return 0, false
	}
	switch e.Kind {
	case ExprConst:
		return e.Const, true
	case ExprVar:
		v, ok := b.Values[e.Var]
		return v, ok
	case ExprLen:
		if e.A.Kind != ExprVar {
			return 0, false
		}
		v, ok := b.Lengths[e.A.Var]
		return v, ok
	case ExprNeg:
		v, ok := Eval(e.A, b)
		return -v, ok
	case ExprAdd, ExprSub, ExprMul, ExprDiv, ExprMod:
		a, aok := Eval(e.A, b)
		c, cok := Eval(e.B, b)
		if !aok || !cok {
			return 0, false
		}
		switch e.Kind {
		case ExprAdd:
			return a + c, true
		case ExprSub:
			return a - c, true
		case ExprMul:
			return a * c, true
		case ExprDiv:
			if c == 0 {
				return 0, false
			}
			return a / c, true
		case ExprMod:
			if c == 0 {
				return 0, false
			}
			return float64(int64(a) % int64(c)), true
		}
	}
	return 0, false
}

// CompareOp enumerates the comparison operators a Predicate's Compare node
// may use.
type CompareOp string

const (
	Lt CompareOp = "<"
	Le CompareOp = "<="
	Gt CompareOp = ">"
	Ge CompareOp = ">="
	Eq CompareOp = "="
	Ne CompareOp = "!="
)

// PredKind discriminates predicate-node variants.
type PredKind string

const (
	PredCompare PredKind = "compare"
	PredAnd     PredKind = "and"
	PredOr      PredKind = "or"
	PredNot     PredKind = "not"
	PredImplies PredKind = "implies"
)

// Predicate is a node in the refinement predicate language φ.
type Predicate struct {
	Kind PredKind

	// PredCompare
	Left, Right *Expr
	Op          CompareOp

	// PredAnd / PredOr: Operands; PredNot: Operand; PredImplies: Left/Right predicates.
	Operands []*Predicate
	Operand  *Predicate
	LeftP    *Predicate
	RightP   *Predicate
}

func Compare(left *Expr, op CompareOp, right *Expr) *Predicate {
	return &Predicate{Kind: PredCompare, Left: left, Op: op, Right: right}
}
func And(operands ...*Predicate) *Predicate { return &Predicate{Kind: PredAnd, Operands: operands} }
func Or(operands ...*Predicate) *Predicate  { return &Predicate{Kind: PredOr, Operands: operands} }
func Not(p *Predicate) *Predicate           { return &Predicate{Kind: PredNot, Operand: p} }
func Implies(l, r *Predicate) *Predicate    { return &Predicate{Kind: PredImplies, LeftP: l, RightP: r} }

// EvalPredicate evaluates φ under binding, returning nil if any sub-term
// is unknown (e.g. division by zero).
func EvalPredicate(p *Predicate, b Binding) *bool {
	if p == nil {
		return nil
	}
	switch p.Kind {
	case PredCompare:
		l, lok := Eval(p.Left, b)
		r, rok := Eval(p.Right, b)
		if !lok || !rok {
			return nil
		}
		var result bool
		switch p.Op {
		case Lt:
			result = l < r
		case Le:
			result = l <= r
		case Gt:
			result = l > r
		case Ge:
			result = l >= r
		case Eq:
			result = l == r
		case Ne:
			result = l != r
		default:
			return nil
		}
		return &result
	case PredAnd:
		acc := true
		for _, o := range p.Operands {
			v := EvalPredicate(o, b)
			if v == nil {
				return nil
			}
			acc = acc && *v
		}
		return &acc
	case PredOr:
		acc := false
		for _, o := range p.Operands {
			v := EvalPredicate(o, b)
			if v == nil {
				return nil
			}
			acc = acc || *v
		}
		return &acc
	case PredNot:
		v := EvalPredicate(p.Operand, b)
		if v == nil {
			return nil
		}
		neg := !*v
		return &neg
	case PredImplies:
		l := EvalPredicate(p.LeftP, b)
		if l == nil {
			return nil
		}
		if !*l {
			t := true
			return &t
		}
		return EvalPredicate(p.RightP, b)
	default:
		return nil
	}
}

func (p *Predicate) String() string {
	return fmt.Sprintf("%v", p.Kind)
}
