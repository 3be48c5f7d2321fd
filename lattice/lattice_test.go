package lattice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowerSetJoinCommutativeAssociativeIdempotent(t *testing.T) {
	a := NewPowerSet("x", "y")
	b := NewPowerSet("y", "z")
	c := NewPowerSet("z", "w")

	assert.True(t, a.Join(b).Equal(b.Join(a)))
	assert.True(t, a.Join(b).Join(c).Equal(a.Join(b.Join(c))))
	assert.True(t, a.Join(a).Equal(a))
	bottom := BottomPowerSet[string]()
	assert.True(t, a.Join(bottom).Equal(a))
}

func TestPowerSetOrder(t *testing.T) {
	a := NewPowerSet("x")
	b := NewPowerSet("x", "y")
	assert.True(t, a.LessEqual(b))
	assert.False(t, b.LessEqual(a))
}

func TestFlatLatticeOrder(t *testing.T) {
	bottom := BottomFlat[int]()
	c1 := ConstantFlat(1)
	c2 := ConstantFlat(2)
	top := TopFlat[int]()

	assert.True(t, bottom.LessEqual(c1))
	assert.True(t, c1.LessEqual(top))
	assert.False(t, c1.LessEqual(c2))
	assert.Equal(t, top, c1.Join(c2))
	assert.Equal(t, c1, c1.Join(c1))
	assert.Equal(t, c1, c1.Join(bottom))
}

func TestIntervalWidenExtendsOutwardBound(t *testing.T) {
	a := NewInterval(0, 10)
	b := NewInterval(0, 15)
	widened := a.Widen(b)
	assert.True(t, widened.HighInf)
	assert.False(t, widened.LowInf)
	assert.Equal(t, int64(0), widened.Low)
}

func TestIntervalMeetWithBottomIsBottom(t *testing.T) {
	empty := BottomInterval()
	iv := NewInterval(1, 5)
	got := empty.Meet(iv)
	assert.True(t, got.Empty)
}

func TestIntervalTopIsEffectiveMinMax(t *testing.T) {
	top := TopInterval()
	assert.Equal(t, int64(math.MinInt64), top.low())
	assert.Equal(t, int64(math.MaxInt64), top.high())
}

func TestIntervalJoinCommutativeAssociativeIdempotent(t *testing.T) {
	a := NewInterval(0, 5)
	b := NewInterval(3, 9)
	c := NewInterval(-2, 1)

	assert.Equal(t, a.Join(b), b.Join(a))
	assert.Equal(t, a.Join(b).Join(c), a.Join(b.Join(c)))
	assert.Equal(t, a, a.Join(a))
}
