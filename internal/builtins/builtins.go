// Package builtins declares the runtime library functions available to every
// Latte program. The public five are callable from source; the two internal
// helpers are reachable only through string operators.
package builtins

import (
	"latte/internal/ast"
	"latte/internal/types"
)

// Decls returns fresh declaration nodes for the whole runtime library, in
// the order they are prepended to every program.
func Decls() []ast.FunDecl {
	return []ast.FunDecl{
		&ast.BuiltinFunc{Ret: types.Void, Name: "error"},
		&ast.BuiltinFunc{Ret: types.Void, Name: "printInt", Params: []*types.Type{types.Int}},
		&ast.BuiltinFunc{Ret: types.Void, Name: "printString", Params: []*types.Type{types.Str}},
		&ast.BuiltinFunc{Ret: types.Int, Name: "readInt"},
		&ast.BuiltinFunc{Ret: types.Str, Name: "readString"},
		&ast.BuiltinFunc{Ret: types.Bool, Name: ast.CompareStringsFunc, Params: []*types.Type{types.Int, types.Str, types.Str}},
		&ast.BuiltinFunc{Ret: types.Str, Name: ast.AddStringsFunc, Params: []*types.Type{types.Str, types.Str}},
	}
}
