package effect

import "strings"

// namePattern maps a substring found in a contained variable/call name to
// the effect it implies (spec §4.7: "well-known patterns: print,
// db_query, http_request, logger, raise_exception, field accesses").
var namePatterns = []struct {
	substr string
	effect Kind
}{
	{"print", Io},
	{"write", WriteState},
	{"read", ReadState},
	{"db_query", DbRead},
	{"db_read", DbRead},
	{"db_write", DbWrite},
	{"db_insert", DbWrite},
	{"db_update", DbWrite},
	{"db_delete", DbWrite},
	{"query", DbRead},
	{"http_request", Network},
	{"http_get", Network},
	{"http_post", Network},
	{"fetch", Network},
	{"socket", Network},
	{"logger", Log},
	{"log", Log},
	{"raise_exception", Throws},
	{"panic", Throws},
	{"throw", Throws},
}

// ScanNames inspects a function's contained variable/call names and
// returns the effect set the name heuristics imply. An empty result
// implies Pure, pending call-graph composition.
func ScanNames(names []string) Set {
	out := Set{}
	for _, n := range names {
		lower := strings.ToLower(n)
		for _, p := range namePatterns {
			if strings.Contains(lower, p.substr) {
				out[p.effect] = true
			}
		}
	}
	return out
}

// baseConfidence is the confidence assigned to a purely name-heuristic
// first pass, before call-graph composition may add Io-class effects with
// lower confidence (spec §4.7 design note: name heuristics are a stand-in
// for semantic analysis, preserved as a first pass).
const baseConfidence = 0.70

// inheritedConfidence is used when an effect is inherited from a callee
// rather than observed directly.
const inheritedConfidence = 0.55
