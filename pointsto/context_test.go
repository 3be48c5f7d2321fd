package pointsto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKCallSiteTruncatesAtLimit(t *testing.T) {
	s := KCallSite{K: 2}
	ctx := s.PushCall(nil, "cs1")
	ctx = s.PushCall(ctx, "cs2")
	ctx = s.PushCall(ctx, "cs3")
	assert.Equal(t, []string{"cs2", "cs3"}, ctx)
}

func TestInsensitiveAlwaysEmpty(t *testing.T) {
	s := Insensitive{}
	assert.Empty(t, s.PushCall([]string{"x"}, "cs1"))
	assert.False(t, s.AllowsHeapCloning())
}

func TestContextSensitiveDivergence(t *testing.T) {
	// Scenario test 2 (spec §8): allocation site A reached via call-site 1
	// vs call-site 2 under 1-CFA yields distinct heap objects; the
	// insensitive baseline merges them.
	strategy := KCallSite{K: 1}
	ctx1 := strategy.PushCall(nil, "cs1")
	ctx2 := strategy.PushCall(nil, "cs2")

	h1 := NewHeapObject("A", ctx1, strategy)
	h2 := NewHeapObject("A", ctx2, strategy)
	assert.NotEqual(t, h1.Key(), h2.Key())

	insensitive := Insensitive{}
	i1 := NewHeapObject("A", nil, insensitive)
	i2 := NewHeapObject("A", nil, insensitive)
	assert.Equal(t, i1.Key(), i2.Key())
}
