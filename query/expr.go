// Package query implements the filter/query expression algebra used to
// interrogate analysis results (spec §4.4): an AST of field references,
// literals, comparisons, string operations and boolean logic, plus
// canonicalization for deterministic hashing and evaluation against a
// string-keyed field map.
package query

// Kind discriminates the expression node variants.
type Kind string

const (
	KindField      Kind = "field"
	KindLiteral    Kind = "literal"
	KindCompare    Kind = "compare"
	KindStringOp   Kind = "string-op"
	KindAnd        Kind = "and"
	KindOr         Kind = "or"
	KindNot        Kind = "not"
	KindIsNull     Kind = "is-null"
	KindIsNotNull  Kind = "is-not-null"
)

// CompareOp enumerates the supported comparison operators.
type CompareOp string

const (
	Eq CompareOp = "eq"
	Ne CompareOp = "ne"
	Lt CompareOp = "lt"
	Le CompareOp = "le"
	Gt CompareOp = "gt"
	Ge CompareOp = "ge"
)

// StringOp enumerates the supported string operators.
type StringOp string

const (
	Contains   StringOp = "contains"
	Regex      StringOp = "regex"
	StartsWith StringOp = "starts-with"
	EndsWith   StringOp = "ends-with"
)

// LiteralKind discriminates the typed literal payload.
type LiteralKind string

const (
	LitNull   LiteralKind = "null"
	LitInt    LiteralKind = "int"
	LitFloat  LiteralKind = "float"
	LitString LiteralKind = "string"
	LitBool   LiteralKind = "bool"
	LitList   LiteralKind = "list"
	LitObject LiteralKind = "object"
	LitBytes  LiteralKind = "bytes"
	LitTime   LiteralKind = "time" // microsecond timestamp
)

// Literal is a typed constant. Exactly one of the payload fields is
// meaningful, selected by LitKind.
type Literal struct {
	LitKind LiteralKind
	Int     int64
	Float   float64
	Str     string
	Bool    bool
	List    []Literal
	Object  map[string]Literal
	Bytes   []byte
	Micros  int64 // microsecond timestamp, for LitTime
}

// Expr is a node in the filter/query AST. Which fields are meaningful
// depends on Kind.
type Expr struct {
	Kind Kind

	// KindField
	Field string

	// KindLiteral
	Literal Literal

	// KindCompare / KindStringOp / KindIsNull / KindIsNotNull: Left is the
	// operand being tested (typically a field reference).
	Left  *Expr
	Right *Expr // KindCompare's comparand; unused by string-op/null checks

	CompareOp CompareOp
	StringOp  StringOp
	Pattern   string // KindStringOp operand, e.g. literal substring or regex

	// KindAnd / KindOr
	Operands []*Expr

	// KindNot
	Operand *Expr
}

// Field builds a field-reference expression.
func Field(name string) *Expr { return &Expr{Kind: KindField, Field: name} }

// Compare builds a comparison expression.
func Compare(left *Expr, op CompareOp, right *Expr) *Expr {
	return &Expr{Kind: KindCompare, Left: left, CompareOp: op, Right: right}
}

// And builds an n-ary conjunction.
func And(operands ...*Expr) *Expr { return &Expr{Kind: KindAnd, Operands: operands} }

// Or builds an n-ary disjunction.
func Or(operands ...*Expr) *Expr { return &Expr{Kind: KindOr, Operands: operands} }

// Not negates operand.
func Not(operand *Expr) *Expr { return &Expr{Kind: KindNot, Operand: operand} }

// IsNull and IsNotNull build null-check expressions over left.
func IsNull(left *Expr) *Expr    { return &Expr{Kind: KindIsNull, Left: left} }
func IsNotNull(left *Expr) *Expr { return &Expr{Kind: KindIsNotNull, Left: left} }

// StringExpr builds a string-operation expression (contains, regex,
// starts-with, ends-with) testing left against pattern.
func StringExpr(left *Expr, op StringOp, pattern string) *Expr {
	return &Expr{Kind: KindStringOp, Left: left, StringOp: op, Pattern: pattern}
}

// IntLit, FloatLit, StringLit, BoolLit and NullLit build literal leaves.
func IntLit(v int64) *Expr    { return &Expr{Kind: KindLiteral, Literal: Literal{LitKind: LitInt, Int: v}} }
func FloatLit(v float64) *Expr {
	return &Expr{Kind: KindLiteral, Literal: Literal{LitKind: LitFloat, Float: v}}
}
func StringLit(v string) *Expr {
	return &Expr{Kind: KindLiteral, Literal: Literal{LitKind: LitString, Str: v}}
}
func BoolLit(v bool) *Expr { return &Expr{Kind: KindLiteral, Literal: Literal{LitKind: LitBool, Bool: v}} }
func NullLit() *Expr       { return &Expr{Kind: KindLiteral, Literal: Literal{LitKind: LitNull}} }
