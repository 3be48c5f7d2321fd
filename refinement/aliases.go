package refinement

// Aliases is the registry of common refinement-type aliases spec §4.7
// names explicitly: Nat, Pos, NonZero, Byte, Port, Percentage, NonEmptyStr.
var Aliases = map[string]Type{
	"Nat":         {Base: "int", Phi: Compare(Var("nu"), Ge, Const(0))},
	"Pos":         {Base: "int", Phi: Compare(Var("nu"), Gt, Const(0))},
	"NonZero":     {Base: "int", Phi: Not(Compare(Var("nu"), Eq, Const(0)))},
	"Byte":        {Base: "int", Phi: And(Compare(Var("nu"), Ge, Const(0)), Compare(Var("nu"), Le, Const(255)))},
	"Port":        {Base: "int", Phi: And(Compare(Var("nu"), Ge, Const(0)), Compare(Var("nu"), Le, Const(65535)))},
	"Percentage":  {Base: "float", Phi: And(Compare(Var("nu"), Ge, Const(0)), Compare(Var("nu"), Le, Const(100)))},
	"NonEmptyStr": {Base: "string", Phi: Compare(Len(Var("nu")), Gt, Const(0))},
}

// Lookup returns the registered alias type, and whether it was found.
func Lookup(name string) (Type, bool) {
	t, ok := Aliases[name]
	return t, ok
}
