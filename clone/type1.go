package clone

import (
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"
)

// Type-1 exact-clone detection stays on the standard library's hash/fnv:
// spec §4.7 names FNV-1a explicitly for this hash (see DESIGN.md), unlike
// the keyed highwayhash used by impact's Level-1..4 hierarchy.

var (
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	hashCommentRe  = regexp.MustCompile(`#[^\n]*`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// Normalize strips comments and collapses whitespace, the Type-1
// normalization spec §4.7 requires.
func Normalize(raw string) string {
	s := blockCommentRe.ReplaceAllString(raw, " ")
	s = lineCommentRe.ReplaceAllString(s, " ")
	s = hashCommentRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FNV1a hashes normalized content.
func FNV1a(s string) string {
	h := fnv.New64a()
	h.Write([]byte(s))
	return strconv.FormatUint(h.Sum64(), 16)
}

// Type1Config tunes the minimum-threshold filter.
type Type1Config struct {
	MinTokens int
	MinLOC    int
}

// DetectType1 finds exact clones: normalize every fragment, group by
// normalized hash, and emit a pair for every same-hash group, re-verifying
// equal normalized content before emitting to defeat hash collisions
// (spec §8 invariant 7).
func DetectType1(fragments []Fragment, cfg Type1Config) []Pair {
	groups := map[string][]Fragment{}
	for _, f := range fragments {
		if !f.MeetsThreshold(cfg.MinTokens, cfg.MinLOC) {
			continue
		}
		if f.Normalized == "" {
			f.Normalized = Normalize(f.Raw)
		}
		if f.NormalizedHash == "" {
			f.NormalizedHash = FNV1a(f.Normalized)
		}
		groups[f.NormalizedHash] = append(groups[f.NormalizedHash], f)
	}

	var pairs []Pair
	for _, group := range groups {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.Normalized != b.Normalized {
					// Hash collision, not a true clone; skip.
					continue
				}
				pairs = append(pairs, Pair{
					A: a, B: b, Class: 1,
					Metrics: Metrics{TokenOverlap: 1.0, LOCOverlap: 1.0, Similarity: 1.0},
					Info:    DetectionInfo{Algorithm: "type1-exact-fnv1a", Confidence: 1.0},
				})
			}
		}
	}
	return pairs
}
