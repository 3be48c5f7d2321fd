package query

import (
	"regexp"
	"strconv"
	"strings"
)

// Row is a string-keyed field map an expression is evaluated against.
type Row map[string]string

// Evaluate tests e against row. Numeric comparisons attempt decimal
// parsing; non-parseable operands yield false rather than an error.
// Regex compilation errors yield false. A bare field reference used
// outside a comparison evaluates to false (spec §4.4).
func Evaluate(e *Expr, row Row) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindField, KindLiteral:
		return false
	case KindCompare:
		return evalCompare(e, row)
	case KindStringOp:
		return evalStringOp(e, row)
	case KindAnd:
		for _, o := range e.Operands {
			if !Evaluate(o, row) {
				return false
			}
		}
		return true
	case KindOr:
		for _, o := range e.Operands {
			if Evaluate(o, row) {
				return true
			}
		}
		return false
	case KindNot:
		return !Evaluate(e.Operand, row)
	case KindIsNull:
		_, ok := resolveString(e.Left, row)
		return !ok
	case KindIsNotNull:
		_, ok := resolveString(e.Left, row)
		return ok
	default:
		return false
	}
}

// resolveString reduces a field-reference or literal to a string value,
// reporting whether it resolved (a missing field is "not present").
func resolveString(e *Expr, row Row) (string, bool) {
	if e == nil {
		return "", false
	}
	switch e.Kind {
	case KindField:
		v, ok := row[e.Field]
		return v, ok
	case KindLiteral:
		return literalAsString(e.Literal), true
	default:
		return "", false
	}
}

func literalAsString(lit Literal) string {
	switch lit.LitKind {
	case LitString:
		return lit.Str
	case LitInt:
		return strconv.FormatInt(lit.Int, 10)
	case LitFloat:
		return strconv.FormatFloat(lit.Float, 'g', -1, 64)
	case LitBool:
		return strconv.FormatBool(lit.Bool)
	default:
		return ""
	}
}

func evalCompare(e *Expr, row Row) bool {
	left, leftOK := resolveString(e.Left, row)
	right, rightOK := resolveString(e.Right, row)
	if !leftOK || !rightOK {
		return false
	}
	// Attempt numeric comparison first for ordered operators and eq/ne.
	lf, lerr := strconv.ParseFloat(left, 64)
	rf, rerr := strconv.ParseFloat(right, 64)
	if lerr == nil && rerr == nil {
		switch e.CompareOp {
		case Eq:
			return lf == rf
		case Ne:
			return lf != rf
		case Lt:
			return lf < rf
		case Le:
			return lf <= rf
		case Gt:
			return lf > rf
		case Ge:
			return lf >= rf
		}
	}
	switch e.CompareOp {
	case Eq:
		return left == right
	case Ne:
		return left != right
	default:
		// Ordered comparisons are numeric only.
		return false
	}
}

func evalStringOp(e *Expr, row Row) bool {
	left, ok := resolveString(e.Left, row)
	if !ok {
		return false
	}
	switch e.StringOp {
	case Contains:
		return strings.Contains(left, e.Pattern)
	case StartsWith:
		return strings.HasPrefix(left, e.Pattern)
	case EndsWith:
		return strings.HasSuffix(left, e.Pattern)
	case Regex:
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			return false
		}
		return re.MatchString(left)
	default:
		return false
	}
}
