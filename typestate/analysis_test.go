package typestate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fileProtocol() *Protocol {
	p := NewProtocol("file", "unopened")
	p.AddState("open", false)
	p.AddState("closed", true)
	p.AddTransition("unopened", "open", "open")
	p.AddTransition("open", "read", "open")
	p.AddTransition("open", "write", "open")
	p.AddTransition("open", "close", "closed")
	return p
}

func TestUseAfterCloseExactlyOneViolation(t *testing.T) {
	cfg := &CFG{
		Entry: "b0",
		Blocks: map[string]*Block{
			"b0": {ID: "b0", Actions: []Action{
				{Variable: "f", Method: "open", Line: 1},
				{Variable: "f", Method: "read", Line: 2},
				{Variable: "f", Method: "close", Line: 3},
				{Variable: "f", Method: "read", Line: 4},
			}},
		},
	}
	violations := Analyze(fileProtocol(), cfg)
	require.Len(t, violations, 1)
	require.Equal(t, UseAfterClose, violations[0].Kind)
	require.Equal(t, 4, violations[0].Line)
}

func TestResourceLeakAtReturn(t *testing.T) {
	cfg := &CFG{
		Entry: "b0",
		Blocks: map[string]*Block{
			"b0": {ID: "b0", Actions: []Action{
				{Variable: "f", Method: "open", Line: 1},
			}},
		},
	}
	violations := Analyze(fileProtocol(), cfg)
	require.Len(t, violations, 1)
	require.Equal(t, ResourceLeak, violations[0].Kind)
}

func TestInvalidTransitionBeforeOpen(t *testing.T) {
	cfg := &CFG{
		Entry: "b0",
		Blocks: map[string]*Block{
			"b0": {ID: "b0", Actions: []Action{
				{Variable: "f", Method: "read", Line: 1},
			}},
		},
	}
	violations := Analyze(fileProtocol(), cfg)
	require.Len(t, violations, 1)
	require.Equal(t, InvalidTransition, violations[0].Kind)
}

func TestJoinDisagreementYieldsInvalidState(t *testing.T) {
	// b0 branches to b1 (closes f) and b2 (leaves f open); b3 joins and
	// reads f, which should be InvalidTransition since the merged state
	// disagrees.
	cfg := &CFG{
		Entry: "b0",
		Blocks: map[string]*Block{
			"b0": {ID: "b0", Actions: []Action{{Variable: "f", Method: "open", Line: 1}}, Successors: []string{"b1", "b2"}},
			"b1": {ID: "b1", Actions: []Action{{Variable: "f", Method: "close", Line: 2}}, Successors: []string{"b3"}},
			"b2": {ID: "b2", Successors: []string{"b3"}},
			"b3": {ID: "b3", Actions: []Action{{Variable: "f", Method: "read", Line: 4}}},
		},
	}
	violations := Analyze(fileProtocol(), cfg)
	require.Len(t, violations, 1)
	require.Equal(t, InvalidTransition, violations[0].Kind)
	require.Equal(t, InvalidState, violations[0].ActualState)
}
