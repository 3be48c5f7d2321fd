package lattice

// FlatState distinguishes the three points of a flat lattice.
type FlatState int

const (
	FlatBottom FlatState = iota
	FlatConstant
	FlatTop
)

// Flat is the flat lattice {⊥, Constant(v), ⊤} with the standard
// three-point order: ⊥ ⊑ Constant(v) ⊑ ⊤ for any v, and two distinct
// constants are incomparable (spec §4.1 (ii)).
type Flat[T comparable] struct {
	State FlatState
	Value T
}

// BottomFlat returns the bottom element.
func BottomFlat[T comparable]() Flat[T] {
	return Flat[T]{State: FlatBottom}
}

// TopFlat returns the top element.
func TopFlat[T comparable]() Flat[T] {
	return Flat[T]{State: FlatTop}
}

// ConstantFlat wraps a concrete value.
func ConstantFlat[T comparable](v T) Flat[T] {
	return Flat[T]{State: FlatConstant, Value: v}
}

// LessEqual implements the flat order.
func (f Flat[T]) LessEqual(other Flat[T]) bool {
	if f.State == FlatBottom || other.State == FlatTop {
		return true
	}
	if f.State == FlatTop {
		return other.State == FlatTop
	}
	// f is Constant(v)
	if other.State == FlatBottom {
		return false
	}
	return other.State == FlatConstant && f.Value == other.Value
}

// Join merges two flat values: equal constants stay constant, anything
// else conflicting collapses to top.
func (f Flat[T]) Join(other Flat[T]) Flat[T] {
	if f.State == FlatBottom {
		return other
	}
	if other.State == FlatBottom {
		return f
	}
	if f.State == FlatTop || other.State == FlatTop {
		return TopFlat[T]()
	}
	if f.Value == other.Value {
		return f
	}
	return TopFlat[T]()
}

// Meet is the dual of Join: equal constants stay constant, otherwise
// bottom.
func (f Flat[T]) Meet(other Flat[T]) Flat[T] {
	if f.State == FlatTop {
		return other
	}
	if other.State == FlatTop {
		return f
	}
	if f.State == FlatBottom || other.State == FlatBottom {
		return BottomFlat[T]()
	}
	if f.Value == other.Value {
		return f
	}
	return BottomFlat[T]()
}

// Widen defaults to Join: the flat lattice has height 3, so no widening is
// needed to guarantee termination.
func (f Flat[T]) Widen(other Flat[T]) Flat[T] {
	return f.Join(other)
}

// Narrow defaults to Meet.
func (f Flat[T]) Narrow(other Flat[T]) Flat[T] {
	return f.Meet(other)
}
