package smt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockBackendSimpleSat(t *testing.T) {
	b := NewMockBackend()
	result := b.Solve(Constraint{Kind: KindSimple, Var: "x", Op: OpGt, Value: "0"})
	assert.Equal(t, Sat, result.Outcome)
}

func TestMockBackendConjunctionUnsat(t *testing.T) {
	b := NewMockBackend()
	result := b.SolveConjunction([]Constraint{
		{Kind: KindSimple, Var: "x", Op: OpGt, Value: "10"},
		{Kind: KindSimple, Var: "x", Op: OpLt, Value: "5"},
	})
	assert.Equal(t, Unsat, result.Outcome)
}

func TestMockBackendLinearArithmeticSingleTerm(t *testing.T) {
	b := NewMockBackend()
	// 2x - 10 >= 0  =>  x >= 5
	result := b.SolveConjunction([]Constraint{
		{Kind: KindLinearArith, Terms: []Term{{Coefficient: 2, Variable: "x"}}, Constant: -10, Op: OpGe},
		{Kind: KindSimple, Var: "x", Op: OpLt, Value: "4"},
	})
	assert.Equal(t, Unsat, result.Outcome)
}

func TestMockBackendArrayBoundsFeasible(t *testing.T) {
	b := NewMockBackend()
	result := b.Solve(Constraint{Kind: KindArrayBounds, Index: "i", Lower: 0, Upper: 10})
	assert.Equal(t, Sat, result.Outcome)
	_, ok := result.Model["i"]
	assert.True(t, ok)
}

func TestMockBackendStringLengthUnsat(t *testing.T) {
	b := NewMockBackend()
	result := b.SolveConjunction([]Constraint{
		{Kind: KindStringLength, Var: "s", Op: OpGe, Length: 5},
		{Kind: KindStringLength, Var: "s", Op: OpLe, Length: 2},
	})
	assert.Equal(t, Unsat, result.Outcome)
}

func TestMockBackendUnsupportedKindReportsUnknown(t *testing.T) {
	b := NewMockBackend()
	result := b.Solve(Constraint{Kind: KindArraySelect, Array: "arr", Index: "i", Op: OpEq, Value: "7"})
	assert.Equal(t, Unknown, result.Outcome)
}

func TestMockBackendPushPopScopesAssertions(t *testing.T) {
	b := NewMockBackend()
	b.Solve(Constraint{Kind: KindSimple, Var: "x", Op: OpGt, Value: "0"}) // not retained; Solve doesn't push

	b.Push()
	// simulate an asserted background fact by pushing then solving with it
	// included in every subsequent query via a direct frame mutation.
	b.frames[len(b.frames)-1] = append(b.frames[len(b.frames)-1], Constraint{Kind: KindSimple, Var: "x", Op: OpGt, Value: "10"})

	result := b.Solve(Constraint{Kind: KindSimple, Var: "x", Op: OpLt, Value: "5"})
	assert.Equal(t, Unsat, result.Outcome)

	b.Pop()
	result = b.Solve(Constraint{Kind: KindSimple, Var: "x", Op: OpLt, Value: "5"})
	assert.Equal(t, Sat, result.Outcome)
}

func TestMockBackendSetTimeoutDoesNotPanic(t *testing.T) {
	b := NewMockBackend()
	b.SetTimeout(10 * time.Millisecond)
	result := b.Solve(Constraint{Kind: KindSimple, Var: "x", Op: OpEq, Value: "1"})
	assert.Equal(t, Sat, result.Outcome)
}

func TestMockBackendSupportedTheoriesIncludesAllFour(t *testing.T) {
	b := NewMockBackend()
	assert.ElementsMatch(t, []Theory{TheorySimple, TheoryLinear, TheoryArray, TheoryString}, b.SupportedTheories())
}
