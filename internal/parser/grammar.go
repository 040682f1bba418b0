package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// The surface grammar, written as participle struct tags. The raw tree is
// only a parse artifact; conversion into internal/ast happens in parser.go
// where `x++`, multi-declarator statements and for-each loops are desugared.

var latteLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Line comments (// and #) and block comments
		{Name: "Comment", Pattern: `//[^\n]*|#[^\n]*|/\*(?s:.*?)\*/`},

		{Name: "String", Pattern: `"(\\.|[^"\\\n])*"`},
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

		// Multi-character operators must come before their prefixes
		{Name: "Operator", Pattern: `\+\+|--|\|\||&&|==|!=|<=|>=|[-+*/%!<>=]`},
		{Name: "Punct", Pattern: `[(){}\[\];,.:]`},

		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	},
})

type rawProgram struct {
	Pos   lexer.Position
	Funcs []*rawFunc `@@*`
}

type rawFunc struct {
	Pos    lexer.Position
	Ret    *rawType    `@@`
	Name   string      `@Ident`
	Params []*rawParam `"(" [ @@ { "," @@ } ] ")"`
	Body   *rawBlock   `@@`
}

type rawType struct {
	Pos   lexer.Position
	Name  string `@Ident`
	Array bool   `[ @"[" "]" ]`
}

type rawParam struct {
	Pos  lexer.Position
	Type *rawType `@@`
	Name string   `@Ident`
}

type rawBlock struct {
	Pos   lexer.Position
	Stmts []*rawStmt `"{" @@* "}"`
}

type rawStmt struct {
	Pos    lexer.Position
	Empty  bool         `  @";"`
	Block  *rawBlock    `| @@`
	If     *rawIf       `| @@`
	While  *rawWhile    `| @@`
	For    *rawFor      `| @@`
	Return *rawReturn   `| @@`
	Decl   *rawDecl     `| @@`
	Incr   *rawIncr     `| @@`
	Assign *rawAssign   `| @@`
	Expr   *rawExprStmt `| @@`
}

type rawIf struct {
	Pos  lexer.Position
	Cond *rawExpr `"if" "(" @@ ")"`
	Then *rawStmt `@@`
	Else *rawStmt `[ "else" @@ ]`
}

type rawWhile struct {
	Pos  lexer.Position
	Cond *rawExpr `"while" "(" @@ ")"`
	Body *rawStmt `@@`
}

type rawFor struct {
	Pos  lexer.Position
	Type *rawType `"for" "(" @@`
	Name string   `@Ident ":"`
	Seq  *rawExpr `@@ ")"`
	Body *rawStmt `@@`
}

type rawReturn struct {
	Pos   lexer.Position
	Value *rawExpr `"return" [ @@ ] ";"`
}

type rawDecl struct {
	Pos   lexer.Position
	Type  *rawType             `@@`
	Items []*rawDeclarator     `@@ { "," @@ } ";"`
}

type rawDeclarator struct {
	Pos  lexer.Position
	Name string   `@Ident`
	Init *rawExpr `[ "=" @@ ]`
}

type rawIncr struct {
	Pos  lexer.Position
	Name string `@Ident`
	Op   string `@("++" | "--") ";"`
}

type rawAssign struct {
	Pos   lexer.Position
	Name  string   `@Ident`
	Index *rawExpr `[ "[" @@ "]" ]`
	Value *rawExpr `"=" @@ ";"`
}

type rawExprStmt struct {
	Pos  lexer.Position
	Expr *rawExpr `@@ ";"`
}

// Expression grammar, one level per precedence tier. || and && associate to
// the right; comparisons and arithmetic to the left.

type rawExpr struct {
	Pos lexer.Position
	Or  *rawOr `@@`
}

type rawOr struct {
	Pos   lexer.Position
	Left  *rawAnd `@@`
	Right *rawOr  `[ "||" @@ ]`
}

type rawAnd struct {
	Pos   lexer.Position
	Left  *rawRel `@@`
	Right *rawAnd `[ "&&" @@ ]`
}

type rawRel struct {
	Pos  lexer.Position
	Left *rawAdd     `@@`
	Ops  []*rawRelOp `@@*`
}

type rawRelOp struct {
	Op    string  `@("==" | "!=" | "<=" | ">=" | "<" | ">")`
	Right *rawAdd `@@`
}

type rawAdd struct {
	Pos  lexer.Position
	Left *rawMul     `@@`
	Ops  []*rawAddOp `@@*`
}

type rawAddOp struct {
	Op    string  `@("+" | "-")`
	Right *rawMul `@@`
}

type rawMul struct {
	Pos  lexer.Position
	Left *rawUnary   `@@`
	Ops  []*rawMulOp `@@*`
}

type rawMulOp struct {
	Op    string    `@("*" | "/" | "%")`
	Right *rawUnary `@@`
}

type rawUnary struct {
	Pos     lexer.Position
	Op      string      `  @("!" | "-")`
	Expr    *rawUnary   `  @@`
	Primary *rawPrimary `| @@`
}

type rawPrimary struct {
	Pos   lexer.Position
	New   *rawNew   `  @@`
	Call  *rawCall  `| @@`
	Index *rawIndex `| @@`
	Attr  *rawAttr  `| @@`
	Int   *string   `| @Int`
	Str   *string   `| @String`
	True  bool      `| @"true"`
	False bool      `| @"false"`
	Var   *string   `| @Ident`
	Paren *rawExpr  `| "(" @@ ")"`
}

type rawNew struct {
	Pos  lexer.Position
	Elem string   `"new" @Ident`
	Len  *rawExpr `"[" @@ "]"`
}

type rawCall struct {
	Pos  lexer.Position
	Name string     `@Ident`
	Args []*rawExpr `"(" [ @@ { "," @@ } ] ")"`
}

type rawIndex struct {
	Pos   lexer.Position
	Name  string   `@Ident`
	Index *rawExpr `"[" @@ "]"`
}

type rawAttr struct {
	Pos  lexer.Position
	Name string `@Ident`
	Attr string `"." @Ident`
}
