package pointsto

import "strings"

// Strategy abstracts the context-sensitivity policy (spec §4.2): how a
// caller context and call-site information combine into a callee context,
// subject to a k-limit, and whether heap cloning is enabled.
type Strategy interface {
	// Name identifies the strategy for diagnostics.
	Name() string
	// PushCall produces the callee context reached from callerContext via
	// callSite, truncating to the strategy's k-limit.
	PushCall(callerContext []string, callSite string) []string
	// AllowsHeapCloning reports whether allocations should be cloned per
	// context.
	AllowsHeapCloning() bool
}

// ContextKey renders a context element slice into the string suffix used
// by pointsto.Var; the empty slice renders to the insensitive baseline.
func ContextKey(ctx []string) string {
	if len(ctx) == 0 {
		return ""
	}
	return strings.Join(ctx, "/")
}

// Insensitive is the context-insensitive baseline: every call collapses to
// the empty context.
type Insensitive struct{}

func (Insensitive) Name() string                                     { return "insensitive" }
func (Insensitive) PushCall(caller []string, callSite string) []string { return nil }
func (Insensitive) AllowsHeapCloning() bool                           { return false }

// KCallSite implements k-CFA: the context is the k most recent call sites,
// oldest dropped first once the limit is exceeded.
type KCallSite struct {
	K int
}

func (s KCallSite) Name() string { return "k-call-site" }

func (s KCallSite) PushCall(caller []string, callSite string) []string {
	return pushBounded(caller, callSite, s.K)
}

func (s KCallSite) AllowsHeapCloning() bool { return true }

// ObjectSensitive uses the receiver's allocation site as the context
// element, at a configurable depth d.
type ObjectSensitive struct {
	Depth int
}

func (s ObjectSensitive) Name() string { return "object-sensitive" }

func (s ObjectSensitive) PushCall(caller []string, receiverSite string) []string {
	return pushBounded(caller, receiverSite, s.Depth)
}

func (s ObjectSensitive) AllowsHeapCloning() bool { return true }

// TwoObject is ObjectSensitive fixed at depth 2, named separately per spec
// §4.2's explicit "2-object" strategy.
func TwoObject() ObjectSensitive { return ObjectSensitive{Depth: 2} }

// TypeSensitive uses the receiver's static type as the context element.
type TypeSensitive struct {
	K int
}

func (s TypeSensitive) Name() string { return "type-sensitive" }

func (s TypeSensitive) PushCall(caller []string, receiverType string) []string {
	return pushBounded(caller, receiverType, s.K)
}

func (s TypeSensitive) AllowsHeapCloning() bool { return true }

// Hybrid combines an object-sensitive receiver element with a call-string
// suffix, concatenating the receiver site and the pushed call-site history.
type Hybrid struct {
	ObjectDepth int
	CallK       int
}

func (s Hybrid) Name() string { return "hybrid" }

func (s Hybrid) PushCall(caller []string, callSite string) []string {
	// caller is interpreted as [objectElems..., callElems...]; split by
	// ObjectDepth to push independently into each half.
	objLen := s.ObjectDepth
	if objLen > len(caller) {
		objLen = len(caller)
	}
	objPart := caller[:objLen]
	callPart := caller[objLen:]
	newCall := pushBounded(callPart, callSite, s.CallK)
	out := make([]string, 0, len(objPart)+len(newCall))
	out = append(out, objPart...)
	out = append(out, newCall...)
	return out
}

func (s Hybrid) AllowsHeapCloning() bool { return true }

// Selective applies a delegate strategy only to nodes flagged by a
// heuristic predicate; flagged nodes get full sensitivity, the rest fall
// back to the context-insensitive baseline.
type Selective struct {
	Delegate Strategy
	Flagged  map[string]bool
}

func (s Selective) Name() string { return "selective/" + s.Delegate.Name() }

func (s Selective) PushCallFor(node string, caller []string, callSite string) []string {
	if s.Flagged[node] {
		return s.Delegate.PushCall(caller, callSite)
	}
	return nil
}

func (s Selective) PushCall(caller []string, callSite string) []string {
	return s.Delegate.PushCall(caller, callSite)
}

func (s Selective) AllowsHeapCloning() bool { return s.Delegate.AllowsHeapCloning() }

func pushBounded(caller []string, elem string, k int) []string {
	if k <= 0 {
		return nil
	}
	out := make([]string, 0, k)
	out = append(out, caller...)
	out = append(out, elem)
	if len(out) > k {
		out = out[len(out)-k:]
	}
	return out
}
