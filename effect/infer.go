package effect

import lru "github.com/hashicorp/golang-lru/v2"

// FunctionInput is the per-function data the inference engine needs: its
// body hash (for cache keying), the contained-variable/call names scanned
// by the name heuristics, and the functions it calls.
type FunctionInput struct {
	FunctionID  string
	BodyHash    string // level-2 hash, used as the cache key
	Contained   []string
	Calls       []string
}

// Engine infers effect summaries with bi-abduction-style composition:
// a name-heuristic first pass, then propagation through call edges so a
// caller inherits its callees' effects. Summaries are cached by body hash
// (spec §9 summary caching) in an LRU of bounded size.
type Engine struct {
	cache *lru.Cache[string, Summary]
}

// DefaultCacheSize is the spec-recommended summary-cache size.
const DefaultCacheSize = 10000

// NewEngine creates an inference engine with the given cache size (use
// DefaultCacheSize if unsure).
func NewEngine(cacheSize int) *Engine {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	c, _ := lru.New[string, Summary](cacheSize)
	return &Engine{cache: c}
}

// Infer computes effect summaries for every function in inputs,
// compositionally propagating callee effects to callers until a round
// produces no changes (round cap matches the taint engine's bottom-up
// phase, spec §4.3/§4.7).
func (e *Engine) Infer(inputs []FunctionInput) map[string]Summary {
	byID := make(map[string]FunctionInput, len(inputs))
	summaries := make(map[string]Summary, len(inputs))

	for _, in := range inputs {
		byID[in.FunctionID] = in
		if cached, ok := e.cache.Get(in.BodyHash); ok {
			summaries[in.FunctionID] = cached
			continue
		}
		eff := ScanNames(in.Contained)
		s := Summary{FunctionID: in.FunctionID, Effects: eff, Confidence: baseConfidence}
		s.Idempotent = s.Effects.IsIdempotent()
		summaries[in.FunctionID] = s
	}

	const roundCap = 10
	for round := 0; round < roundCap; round++ {
		changed := false
		for _, in := range inputs {
			cur := summaries[in.FunctionID]
			merged := Set{}
			for k := range cur.Effects {
				merged[k] = true
			}
			for _, callee := range in.Calls {
				calleeSummary, ok := summaries[callee]
				if !ok {
					continue
				}
				for k := range calleeSummary.Effects {
					if !merged[k] {
						merged[k] = true
						changed = true
					}
				}
			}
			if len(merged) != len(cur.Effects) {
				conf := cur.Confidence
				if conf > inheritedConfidence {
					conf = inheritedConfidence
				}
				summaries[in.FunctionID] = Summary{
					FunctionID: in.FunctionID,
					Effects:    merged,
					Confidence: conf,
					Idempotent: merged.IsIdempotent(),
				}
			}
		}
		if !changed {
			break
		}
	}

	for _, s := range summaries {
		e.cache.Add(byID[s.FunctionID].BodyHash, s)
	}
	return summaries
}
