package query

import (
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrNaN is returned by Canonicalize when a float literal is NaN; spec §4.4
// requires NaN to be rejected rather than silently normalized.
var ErrNaN = fmt.Errorf("query: NaN literal cannot be canonicalized")

// Canonicalize returns a deterministically-ordered copy of e: and/or
// operand lists are sorted by the canonical serialization of each operand,
// object literal keys are already map-ordered (serialized in lexicographic
// key order), and float -0.0 normalizes to 0.0. It returns ErrNaN if any
// float literal (scalar, or nested in a list/object) is NaN.
func Canonicalize(e *Expr) (*Expr, error) {
	if e == nil {
		return nil, nil
	}
	out := *e
	if err := canonicalizeLiteral(&out.Literal); err != nil {
		return nil, err
	}
	var err error
	if out.Left, err = Canonicalize(e.Left); err != nil {
		return nil, err
	}
	if out.Right, err = Canonicalize(e.Right); err != nil {
		return nil, err
	}
	if out.Operand, err = Canonicalize(e.Operand); err != nil {
		return nil, err
	}
	if e.Operands != nil {
		ops := make([]*Expr, len(e.Operands))
		for i, o := range e.Operands {
			if ops[i], err = Canonicalize(o); err != nil {
				return nil, err
			}
		}
		sort.Slice(ops, func(i, j int) bool {
			return serialize(ops[i]) < serialize(ops[j])
		})
		out.Operands = ops
	}
	return &out, nil
}

func canonicalizeLiteral(lit *Literal) error {
	switch lit.LitKind {
	case LitFloat:
		if math.IsNaN(lit.Float) {
			return ErrNaN
		}
		if lit.Float == 0 {
			lit.Float = 0 // normalizes -0.0 to 0.0
		}
	case LitList:
		for i := range lit.List {
			if err := canonicalizeLiteral(&lit.List[i]); err != nil {
				return err
			}
		}
	case LitObject:
		for k := range lit.Object {
			v := lit.Object[k]
			if err := canonicalizeLiteral(&v); err != nil {
				return err
			}
			lit.Object[k] = v
		}
	}
	return nil
}

// serialize renders e into a deterministic string form used both to sort
// and/or operands and to compute the canonical hash. Object keys are
// emitted in lexicographic order.
func serialize(e *Expr) string {
	if e == nil {
		return "_"
	}
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e *Expr) {
	b.WriteString(string(e.Kind))
	b.WriteByte('(')
	switch e.Kind {
	case KindField:
		b.WriteString(e.Field)
	case KindLiteral:
		writeLiteral(b, e.Literal)
	case KindCompare:
		writeExpr(b, e.Left)
		b.WriteByte(',')
		b.WriteString(string(e.CompareOp))
		b.WriteByte(',')
		writeExpr(b, e.Right)
	case KindStringOp:
		writeExpr(b, e.Left)
		b.WriteByte(',')
		b.WriteString(string(e.StringOp))
		b.WriteByte(',')
		b.WriteString(e.Pattern)
	case KindAnd, KindOr:
		for i, o := range e.Operands {
			if i > 0 {
				b.WriteByte(';')
			}
			writeExpr(b, o)
		}
	case KindNot:
		writeExpr(b, e.Operand)
	case KindIsNull, KindIsNotNull:
		writeExpr(b, e.Left)
	}
	b.WriteByte(')')
}

func writeLiteral(b *strings.Builder, lit Literal) {
	b.WriteString(string(lit.LitKind))
	b.WriteByte(':')
	switch lit.LitKind {
	case LitNull:
	case LitInt:
		b.WriteString(strconv.FormatInt(lit.Int, 10))
	case LitFloat:
		b.WriteString(strconv.FormatFloat(lit.Float, 'g', -1, 64))
	case LitString:
		b.WriteString(strconv.Quote(lit.Str))
	case LitBool:
		b.WriteString(strconv.FormatBool(lit.Bool))
	case LitBytes:
		b.WriteString(fmt.Sprintf("%x", lit.Bytes))
	case LitTime:
		b.WriteString(strconv.FormatInt(lit.Micros, 10))
	case LitList:
		b.WriteByte('[')
		for i, v := range lit.List {
			if i > 0 {
				b.WriteByte(',')
			}
			writeLiteral(b, v)
		}
		b.WriteByte(']')
	case LitObject:
		keys := make([]string, 0, len(lit.Object))
		for k := range lit.Object {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			v := lit.Object[k]
			writeLiteral(b, v)
		}
		b.WriteByte('}')
	}
}

// CanonicalHash canonicalizes e and returns its 256-bit digest. Two
// expressions differing only by and/or operand order or -0.0 vs 0.0 hash
// identically (spec §8 invariant 5).
func CanonicalHash(e *Expr) ([32]byte, error) {
	canon, err := Canonicalize(e)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256([]byte(serialize(canon))), nil
}
