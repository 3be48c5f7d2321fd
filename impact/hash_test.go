package impact

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/ir"
)

func sampleNode() *ir.Node {
	return &ir.Node{
		ID: "n1", Kind: ir.KindFunction, FQN: "pkg.Foo",
		Params: []string{"a", "b"}, ReturnType: "int",
		Span: ir.Span{StartLine: 1, EndLine: 5},
		Docstring: "does foo",
	}
}

func TestHashLayering(t *testing.T) {
	n := sampleNode()
	h := Compute(n)

	doc := n.Clone()
	doc.Docstring = "different doc"
	hDoc := Compute(doc)
	require.Equal(t, h.Signature, hDoc.Signature)
	require.Equal(t, h.Body, hDoc.Body)
	require.NotEqual(t, h.Doc, hDoc.Doc)

	body := n.Clone()
	body.Span.EndLine = 50
	hBody := Compute(body)
	require.Equal(t, h.Signature, hBody.Signature)
	require.NotEqual(t, h.Body, hBody.Body)
	require.NotEqual(t, h.Doc, hBody.Doc)

	sig := n.Clone()
	sig.ReturnType = "string"
	hSig := Compute(sig)
	require.NotEqual(t, h.Signature, hSig.Signature)
	require.NotEqual(t, h.Body, hSig.Body)
}

func TestDiffAtMostOneHighestFlag(t *testing.T) {
	n := sampleNode()
	h := Compute(n)

	docOnly := n.Clone()
	docOnly.Docstring = "x"
	flags := Diff(h, Compute(docOnly))
	require.True(t, flags.DocChanged)
	require.False(t, flags.SignatureChanged)
	require.False(t, flags.BodyChanged)
	require.False(t, flags.RequiresReembedding())
}

func TestReembeddingPolicy(t *testing.T) {
	n := sampleNode()
	h := Compute(n)

	sigChange := n.Clone()
	sigChange.Params = []string{"a"}
	require.True(t, Diff(h, Compute(sigChange)).RequiresReembedding())

	formatOnly := n.Clone()
	flagsFormatOnly := Diff(h, Compute(formatOnly))
	require.False(t, flagsFormatOnly.AnyChange())
}
