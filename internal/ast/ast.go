package ast

import "latte/internal/types"

// The AST is a closed set of tagged variants. The semantic analyzer and the
// IR translator switch over the concrete node types; nodes themselves carry
// no behavior beyond accessors and printing.

// Names of the internal runtime helpers that string operations lower to.
// The '$' prefix keeps them out of the source-level namespace (the lexer
// does not accept '$' in identifiers).
const (
	AddStringsFunc     = "$addStrings"
	CompareStringsFunc = "$compareStrings"
)

type Node interface {
	NodeLine() int
}

// Expr is a typed expression. Type returns nil before semantic analysis
// (except on literals and `.length`, whose type is fixed).
type Expr interface {
	Node
	Type() *types.Type
	String() string
	exprNode()
}

type UnaryExpr struct {
	Line int
	Op   string // "-" or "!"
	X    Expr
	Typ  *types.Type
}

type BinaryExpr struct {
	Line int
	Op   string
	X, Y Expr
	Typ  *types.Type
}

type VarExpr struct {
	Line int
	Name string
	Typ  *types.Type
}

type IntLit struct {
	Line  int
	Value int64
}

// StrLit holds the literal text exactly as written in the source, with
// escape sequences left unexpanded. The string pool and the emitted IR
// constants are keyed on this raw form.
type StrLit struct {
	Line  int
	Value string
}

type BoolLit struct {
	Line  int
	Value bool
}

type CallExpr struct {
	Line int
	Name string
	Args []Expr
	Typ  *types.Type
}

// IndexExpr is a[i] where a names an array variable.
type IndexExpr struct {
	Line  int
	Name  string
	Index Expr
	Typ   *types.Type
}

// AttrExpr is a.length. ArrayType records the type of the subject variable
// for the translator.
type AttrExpr struct {
	Line      int
	Name      string
	Attr      string
	ArrayType *types.Type
}

type NewArrayExpr struct {
	Line int
	Elem *types.Type
	Len  Expr
	Typ  *types.Type
}

// Lhs is an assignment target.
type Lhs interface {
	Node
	Type() *types.Type
	String() string
	lhsNode()
}

type VarLhs struct {
	Line int
	Name string
	Typ  *types.Type
}

type IndexLhs struct {
	Line  int
	Name  string
	Index Expr
	Typ   *types.Type
}

type Stmt interface {
	Node
	String() string
	stmtNode()
}

type EmptyStmt struct {
	Line int
}

type DeclStmt struct {
	Line     int
	DeclType *types.Type
	Name     string
}

type DeclInitStmt struct {
	Line     int
	DeclType *types.Type
	Name     string
	Init     Expr
}

type AssignStmt struct {
	Line   int
	Target Lhs
	Value  Expr
}

type ReturnStmt struct {
	Line  int
	Value Expr
}

type VoidReturnStmt struct {
	Line int
}

type IfStmt struct {
	Line int
	Cond Expr
	Then *BlockStmt
}

type IfElseStmt struct {
	Line int
	Cond Expr
	Then *BlockStmt
	Else *BlockStmt
}

type WhileStmt struct {
	Line int
	Cond Expr
	Body *BlockStmt
}

// LoopStmt is an unconditional loop. The analyzer synthesizes it from
// `while (c)` whose condition folds to true; it never comes from the parser.
type LoopStmt struct {
	Line int
	Body *BlockStmt
}

type ExprStmt struct {
	Line int
	X    Expr
}

type BlockStmt struct {
	Line  int
	Stmts []Stmt
}

type Param struct {
	Line int
	Type *types.Type
	Name string
}

// FunDecl is either a user-defined function with a body or a declaration-only
// runtime builtin.
type FunDecl interface {
	Node
	FuncName() string
	RetType() *types.Type
	NumParams() int
	ParamType(i int) *types.Type
	String() string
}

type UserFunc struct {
	Line   int
	Ret    *types.Type
	Name   string
	Params []Param
	Body   *BlockStmt
}

type BuiltinFunc struct {
	Ret    *types.Type
	Name   string
	Params []*types.Type
}

type Program struct {
	Line  int
	Funcs []FunDecl
}

// AsBlock wraps a statement in a block unless it already is one. Branch and
// loop bodies are always blocks so that scoping and lowering treat them
// uniformly.
func AsBlock(s Stmt) *BlockStmt {
	if b, ok := s.(*BlockStmt); ok {
		return b
	}
	return &BlockStmt{Line: s.NodeLine(), Stmts: []Stmt{s}}
}
