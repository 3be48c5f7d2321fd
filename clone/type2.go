package clone

import (
	"regexp"
	"strings"
)

var (
	identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	numberRe     = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	stringLitRe  = regexp.MustCompile(`^(".*"|'.*')$`)
	tokenizeRe   = regexp.MustCompile(`"[^"]*"|'[^']*'|[A-Za-z_][A-Za-z0-9_]*|[0-9]+(\.[0-9]+)?|[{}()\[\];,.+\-*/%=<>!&|^~]|\S`)

	keywords = map[string]bool{
		"if": true, "else": true, "for": true, "while": true, "return": true,
		"func": true, "function": true, "def": true, "class": true, "import": true,
		"package": true, "var": true, "let": true, "const": true, "switch": true,
		"case": true, "break": true, "continue": true, "struct": true, "interface": true,
		"true": true, "false": true, "nil": true, "null": true, "new": true,
	}
)

// Tokenize splits source into a token slice used by both the Type-2
// normalizer and the Type-3 statement-level edit distance.
func Tokenize(s string) []string {
	return tokenizeRe.FindAllString(s, -1)
}

// NormalizeTokens replaces identifiers with ID and literals with NUM/STR,
// preserving keywords and operators verbatim (spec §4.7 Type-2).
func NormalizeTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case keywords[tok]:
			out = append(out, tok)
		case stringLitRe.MatchString(tok):
			out = append(out, "STR")
		case numberRe.MatchString(tok):
			out = append(out, "NUM")
		case identifierRe.MatchString(tok):
			out = append(out, "ID")
		default:
			out = append(out, tok)
		}
	}
	return out
}

// Type2Config tunes the minimum-threshold filter.
type Type2Config struct {
	MinTokens int
	MinLOC    int
}

// DetectType2 finds renamed clones: tokenize and normalize each fragment,
// hash the normalized token stream with FNV-1a, and group by hash.
func DetectType2(fragments []Fragment, cfg Type2Config) []Pair {
	type entry struct {
		frag  Fragment
		norm  string
		hash  string
	}
	groups := map[string][]entry{}
	for _, f := range fragments {
		if !f.MeetsThreshold(cfg.MinTokens, cfg.MinLOC) {
			continue
		}
		normTokens := NormalizeTokens(Tokenize(f.Raw))
		norm := strings.Join(normTokens, " ")
		hash := FNV1a(norm)
		groups[hash] = append(groups[hash], entry{frag: f, norm: norm, hash: hash})
	}

	var pairs []Pair
	for _, group := range groups {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i].norm != group[j].norm {
					continue
				}
				pairs = append(pairs, Pair{
					A: group[i].frag, B: group[j].frag, Class: 2,
					Metrics: Metrics{TokenOverlap: 1.0, LOCOverlap: lengthOverlap(group[i].frag, group[j].frag), Similarity: 1.0},
					Info:    DetectionInfo{Algorithm: "type2-renamed-token-hash", Confidence: 0.95},
				})
			}
		}
	}
	return pairs
}

func lengthOverlap(a, b Fragment) float64 {
	if a.LOC == 0 || b.LOC == 0 {
		return 0
	}
	small, big := a.LOC, b.LOC
	if small > big {
		small, big = big, small
	}
	return float64(small) / float64(big)
}
