// Package lattice defines the generic complete-lattice contract the
// fixed-point engine (package dataflow) solves over, plus three built-in
// lattices: power-set, flat and integer-interval (spec §4.1).
package lattice

// Value is the contract a lattice element must satisfy. Join must be
// commutative, associative and idempotent, with Bottom as its identity.
// Widen/Narrow default to Join/Meet for finite-height lattices; types with
// infinite height (e.g. Interval) must override them to guarantee
// termination.
type Value[T any] interface {
	// LessEqual tests the partial order a ⊑ b.
	LessEqual(other T) bool
	// Join computes the least upper bound a ⊔ b.
	Join(other T) T
	// Meet computes the greatest lower bound a ⊓ b.
	Meet(other T) T
}

// Widener is implemented by lattices with unbounded height that need
// widening to guarantee fixed-point convergence.
type Widener[T any] interface {
	Widen(other T) T
}

// Narrower is implemented by lattices that support a narrowing phase after
// widening to recover precision.
type Narrower[T any] interface {
	Narrow(other T) T
}

// Bottom/Top are provided per concrete lattice as constructor functions
// rather than as a single generic contract member, since Go generics have
// no notion of "static" interface methods; see BottomPowerSet,
// BottomFlat/TopFlat and BottomInterval/TopInterval.
