package smt

import (
	"math"
	"strconv"
	"time"

	"github.com/viant/codegraph/lattice"
)

// MockBackend is a deterministic, dependency-free Backend implementation.
// It reasons precisely over the Simple and single-term LinearArithmetic
// theories using interval arithmetic, treats ArrayBounds/StringLength as
// bounds on synthetic pseudo-variables, and reports Unknown for anything
// it cannot fully reason about (multi-term linear arithmetic, array
// element values, string concatenation/substring relations) rather than
// guessing. Its models hold one integer sample per bounded variable (a
// string's length under the string's name); array element samples
// (arr[i]) are never reported. It exists so path-feasibility pruning (spec §4.4) has a
// correct, always-available backend even when no real SMT solver
// (e.g. Z3) is configured.
type MockBackend struct {
	timeout time.Duration
	frames  [][]Constraint
}

// NewMockBackend creates a backend with the spec default timeout.
func NewMockBackend() *MockBackend {
	return &MockBackend{timeout: DefaultTimeout, frames: [][]Constraint{nil}}
}

func (b *MockBackend) Name() string { return "mock" }

func (b *MockBackend) SupportedTheories() []Theory {
	return []Theory{TheorySimple, TheoryLinear, TheoryArray, TheoryString}
}

func (b *MockBackend) Push() {
	b.frames = append(b.frames, nil)
}

func (b *MockBackend) Pop() {
	if len(b.frames) > 1 {
		b.frames = b.frames[:len(b.frames)-1]
	}
}

func (b *MockBackend) Reset() {
	b.frames = [][]Constraint{nil}
}

func (b *MockBackend) SetTimeout(d time.Duration) {
	b.timeout = d
}

func (b *MockBackend) Solve(c Constraint) SolveResult {
	return b.SolveConjunction([]Constraint{c})
}

func (b *MockBackend) SolveConjunction(cs []Constraint) SolveResult {
	all := make([]Constraint, 0, len(cs))
	for _, frame := range b.frames {
		all = append(all, frame...)
	}
	all = append(all, cs...)

	bounds := map[string]lattice.Interval{}
	arraySamples := map[string]map[int64]float64{}
	unknown := false

	sample := func(array string, index int64, value float64) {
		row, ok := arraySamples[array]
		if !ok {
			row = map[int64]float64{}
			arraySamples[array] = row
		}
		row[index] = value
	}

	bound := func(key string) lattice.Interval {
		if iv, ok := bounds[key]; ok {
			return iv
		}
		return lattice.TopInterval()
	}
	intersect := func(key string, low, high int64, lowInf, highInf bool) {
		next := lattice.Interval{Low: low, High: high, LowInf: lowInf, HighInf: highInf}
		bounds[key] = bound(key).Meet(next)
	}

	for _, c := range all {
		if c.Op == OpNe {
			// a "hole" cannot be expressed in an interval
			unknown = true
		}
		switch c.Kind {
		case KindSimple:
			v, err := strconv.ParseFloat(c.Value, 64)
			if err != nil {
				unknown = true
				continue
			}
			applyCompare(intersect, c.Var, c.Op, v)
		case KindLinearArith:
			if len(c.Terms) != 1 {
				unknown = true
				continue
			}
			term := c.Terms[0]
			if term.Coefficient == 0 {
				unknown = true
				continue
			}
			// c0*x + k op 0  =>  x op -k/c0 (flip op if c0 < 0)
			threshold := -c.Constant / term.Coefficient
			op := c.Op
			if term.Coefficient < 0 {
				op = flip(op)
			}
			applyCompare(intersect, term.Variable, op, threshold)
		case KindArrayBounds:
			intersect(c.Index, c.Lower, c.Upper-1, false, false)
		case KindStringLength:
			applyCompare(intersect, "len:"+c.Var, c.Op, float64(c.Length))
		case KindArraySelect:
			// arr[i] op value: when i is a literal index and op pins an
			// exact value, the value is recorded in arraySamples; the query
			// still reports Unknown since element equality isn't tracked as
			// a hard constraint, and an Unknown result carries no model.
			if idx, err := strconv.ParseInt(c.Index, 10, 64); err == nil && c.Op == OpEq {
				if v, err := strconv.ParseFloat(c.Value, 64); err == nil {
					sample(c.Array, idx, v)
				}
			}
			unknown = true
		case KindArrayStore:
			if idx, err := strconv.ParseInt(c.Index, 10, 64); err == nil {
				if v, err := strconv.ParseFloat(c.Value, 64); err == nil {
					sample(c.Result, idx, v)
				}
			}
			unknown = true
		case KindStringConcat, KindSubstring:
			unknown = true
		default:
			unknown = true
		}
	}

	for _, iv := range bounds {
		if iv.Empty {
			return SolveResult{Outcome: Unsat}
		}
	}

	if unknown {
		return SolveResult{Outcome: Unknown}
	}
	return SolveResult{Outcome: Sat, Model: buildModel(bounds)}
}

func flip(op CompareOp) CompareOp {
	switch op {
	case OpLt:
		return OpGt
	case OpLe:
		return OpGe
	case OpGt:
		return OpLt
	case OpGe:
		return OpLe
	default:
		return op
	}
}

func applyCompare(intersect func(key string, low, high int64, lowInf, highInf bool), key string, op CompareOp, v float64) {
	switch op {
	case OpLt:
		intersect(key, 0, ceilMinusOne(v), true, false)
	case OpLe:
		intersect(key, 0, floorInt(v), true, false)
	case OpGt:
		intersect(key, floorPlusOne(v), 0, false, true)
	case OpGe:
		intersect(key, ceilInt(v), 0, false, true)
	case OpEq:
		i := int64(v)
		intersect(key, i, i, false, false)
	case OpNe:
		// cannot express a "hole" in an interval; left unconstrained here,
		// and SolveConjunction reports the query as Unknown.
	}
}

func floorInt(v float64) int64     { return int64(math.Floor(v)) }
func ceilInt(v float64) int64      { return int64(math.Ceil(v)) }
func ceilMinusOne(v float64) int64 { return ceilInt(v) - 1 }
func floorPlusOne(v float64) int64 { return floorInt(v) + 1 }

func buildModel(bounds map[string]lattice.Interval) Model {
	m := Model{}
	for key, iv := range bounds {
		var sample int64
		switch {
		case !iv.LowInf:
			sample = iv.Low
		case !iv.HighInf:
			sample = iv.High
		default:
			sample = 0
		}
		name := key
		if len(key) > 4 && key[:4] == "len:" {
			name = key[4:]
		}
		m[name] = ModelValue{Kind: ValueInt, Int: sample}
	}
	return m
}
