// Package impact implements change-impact analysis (spec §4.5): the
// 4-level Merkle hash hierarchy, multi-graph BFS impact propagation, and
// the index-update cost model driving incremental re-analysis decisions.
package impact

import (
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/minio/highwayhash"
	"github.com/viant/codegraph/ir"
)

// hashKey is the keyed-hash key used for the Level-1..4 hierarchy, mirroring
// the teacher's inspector/graph.Hash use of highwayhash. It is 32 bytes, the
// key length highwayhash requires.
var hashKey = []byte("codegraph-impact-level4-hash-key")

func sum(parts ...string) string {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// highwayhash.New64 only errors on a key of the wrong length; the
		// key above is fixed at compile time, so this is unreachable.
		panic(err)
	}
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NodeHashes bundles the 4-level hierarchy for a single node. Each level's
// hash depends structurally on the previous level's hash (spec §4.5), so
// equal Level-N hashes imply equal Level-(N-1) hashes.
type NodeHashes struct {
	Signature string // Level 1
	Body      string // Level 2
	Doc       string // Level 3
	Format    string // Level 4
}

// Compute derives the 4-level hash hierarchy for a node.
func Compute(n *ir.Node) NodeHashes {
	mods := make([]string, 0, len(n.Modifiers))
	for m := range n.Modifiers {
		mods = append(mods, m)
	}
	sort.Strings(mods)

	signature := sum(
		string(n.Kind), n.FQN,
		strings.Join(n.Params, ","),
		n.ReturnType,
		strings.Join(n.Decorators, ","),
		strings.Join(mods, ","),
	)
	body := sum(signature,
		strconv.Itoa(n.Span.StartLine), strconv.Itoa(n.Span.StartCol),
		strconv.Itoa(n.Span.EndLine), strconv.Itoa(n.Span.EndCol),
		strconv.FormatBool(n.HasModifier("async")),
		strconv.FormatBool(n.HasModifier("generator")),
	)
	doc := sum(body, n.Docstring)
	format := sum(doc, n.FQN)

	return NodeHashes{Signature: signature, Body: body, Doc: doc, Format: format}
}

// ChangeFlags reports which level first differs between an old and a new
// hash set. By construction at most one of these is true for a given
// comparison: the highest differing level (spec §4.5).
type ChangeFlags struct {
	SignatureChanged bool
	BodyChanged      bool
	DocChanged       bool
	FormatChanged    bool
}

// Diff compares old and next hash sets and reports the single highest
// level that changed.
func Diff(old, next NodeHashes) ChangeFlags {
	if old.Signature != next.Signature {
		return ChangeFlags{SignatureChanged: true}
	}
	if old.Body != next.Body {
		return ChangeFlags{BodyChanged: true}
	}
	if old.Doc != next.Doc {
		return ChangeFlags{DocChanged: true}
	}
	if old.Format != next.Format {
		return ChangeFlags{FormatChanged: true}
	}
	return ChangeFlags{}
}

// RequiresReembedding reports whether a node needs re-embedding: signature
// or body changed. Doc-only or format-only changes skip re-embedding
// (spec §4.5 re-embedding policy).
func (f ChangeFlags) RequiresReembedding() bool {
	return f.SignatureChanged || f.BodyChanged
}

// AnyChange reports whether any level differed.
func (f ChangeFlags) AnyChange() bool {
	return f.SignatureChanged || f.BodyChanged || f.DocChanged || f.FormatChanged
}
