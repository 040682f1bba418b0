package parser

import (
	stderrors "errors"
	"strconv"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"latte/internal/ast"
	"latte/internal/builtins"
	"latte/internal/errors"
	"latte/internal/types"
)

var latteParser = participle.MustBuild[rawProgram](
	participle.Lexer(latteLexer),
	participle.Elide("Whitespace", "Comment"),
	// Declarations need to see past `T [ ]` before the declared name shows up
	participle.UseLookahead(4),
)

// Hidden names used by the for-each desugaring. The lexer rejects '$' in
// identifiers, so these can never collide with source variables.
const (
	forIndexVar = "$i"
	forArrayVar = "$arr"
)

// ParseSource parses a whole translation unit and returns the AST with the
// runtime builtin declarations prepended.
func ParseSource(filename, source string) (*ast.Program, error) {
	raw, err := latteParser.ParseString(filename, source)
	if err != nil {
		return nil, convertParseError(source, err)
	}
	return convertProgram(raw)
}

func convertParseError(source string, err error) error {
	var lexErr *lexer.Error
	if stderrors.As(err, &lexErr) {
		pos := lexErr.Pos
		char := "?"
		if pos.Offset >= 0 && pos.Offset < len(source) {
			r, _ := utf8.DecodeRuneInString(source[pos.Offset:])
			char = string(r)
		}
		return errors.IllegalCharacter(pos.Line, char)
	}
	var parseErr participle.Error
	if stderrors.As(err, &parseErr) {
		return errors.Parsing(parseErr.Position().Line)
	}
	return errors.Parsing(0)
}

func convertProgram(raw *rawProgram) (*ast.Program, error) {
	funcs := builtins.Decls()
	for _, rf := range raw.Funcs {
		f, err := convFunc(rf)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, f)
	}
	return &ast.Program{Line: raw.Pos.Line, Funcs: funcs}, nil
}

func convFunc(rf *rawFunc) (*ast.UserFunc, error) {
	ret, err := convType(rf.Ret)
	if err != nil {
		return nil, err
	}
	params := make([]ast.Param, 0, len(rf.Params))
	for _, rp := range rf.Params {
		pt, err := convType(rp.Type)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Line: rp.Pos.Line, Type: pt, Name: rp.Name})
	}
	body, err := convBlock(rf.Body)
	if err != nil {
		return nil, err
	}
	return &ast.UserFunc{Line: rf.Pos.Line, Ret: ret, Name: rf.Name, Params: params, Body: body}, nil
}

func convType(rt *rawType) (*types.Type, error) {
	t, ok := types.ByName(rt.Name)
	if !ok {
		return nil, errors.InvalidType(rt.Pos.Line, rt.Name)
	}
	if rt.Array {
		a := types.ArrayOf(t)
		if a == nil {
			return nil, errors.InvalidType(rt.Pos.Line, rt.Name+"[]")
		}
		return a, nil
	}
	return t, nil
}

func convBlock(rb *rawBlock) (*ast.BlockStmt, error) {
	block := &ast.BlockStmt{Line: rb.Pos.Line}
	for _, rs := range rb.Stmts {
		stmts, err := convStmt(rs)
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmts...)
	}
	return block, nil
}

// convStmt returns a slice because a multi-declarator statement expands into
// one declaration per name.
func convStmt(rs *rawStmt) ([]ast.Stmt, error) {
	line := rs.Pos.Line
	switch {
	case rs.Empty:
		return []ast.Stmt{&ast.EmptyStmt{Line: line}}, nil

	case rs.Block != nil:
		b, err := convBlock(rs.Block)
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{b}, nil

	case rs.If != nil:
		return convIf(rs.If)

	case rs.While != nil:
		cond, err := convExpr(rs.While.Cond)
		if err != nil {
			return nil, err
		}
		body, err := convBodyStmt(rs.While.Body)
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.WhileStmt{Line: rs.While.Pos.Line, Cond: cond, Body: body}}, nil

	case rs.For != nil:
		return convFor(rs.For)

	case rs.Return != nil:
		if rs.Return.Value == nil {
			return []ast.Stmt{&ast.VoidReturnStmt{Line: rs.Return.Pos.Line}}, nil
		}
		v, err := convExpr(rs.Return.Value)
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.ReturnStmt{Line: rs.Return.Pos.Line, Value: v}}, nil

	case rs.Decl != nil:
		return convDecl(rs.Decl)

	case rs.Incr != nil:
		op := "+"
		if rs.Incr.Op == "--" {
			op = "-"
		}
		l := rs.Incr.Pos.Line
		return []ast.Stmt{&ast.AssignStmt{
			Line:   l,
			Target: &ast.VarLhs{Line: l, Name: rs.Incr.Name},
			Value: &ast.BinaryExpr{
				Line: l,
				Op:   op,
				X:    &ast.VarExpr{Line: l, Name: rs.Incr.Name},
				Y:    &ast.IntLit{Line: l, Value: 1},
			},
		}}, nil

	case rs.Assign != nil:
		return convAssign(rs.Assign)

	case rs.Expr != nil:
		e, err := convExpr(rs.Expr.Expr)
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.ExprStmt{Line: rs.Expr.Pos.Line, X: e}}, nil
	}
	return nil, errors.Parsing(line)
}

// convBodyStmt converts a branch or loop body and wraps it in a block.
func convBodyStmt(rs *rawStmt) (*ast.BlockStmt, error) {
	stmts, err := convStmt(rs)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 1 {
		return ast.AsBlock(stmts[0]), nil
	}
	return &ast.BlockStmt{Line: rs.Pos.Line, Stmts: stmts}, nil
}

func convIf(ri *rawIf) ([]ast.Stmt, error) {
	cond, err := convExpr(ri.Cond)
	if err != nil {
		return nil, err
	}
	then, err := convBodyStmt(ri.Then)
	if err != nil {
		return nil, err
	}
	if ri.Else == nil {
		return []ast.Stmt{&ast.IfStmt{Line: ri.Pos.Line, Cond: cond, Then: then}}, nil
	}
	els, err := convBodyStmt(ri.Else)
	if err != nil {
		return nil, err
	}
	return []ast.Stmt{&ast.IfElseStmt{Line: ri.Pos.Line, Cond: cond, Then: then, Else: els}}, nil
}

func convDecl(rd *rawDecl) ([]ast.Stmt, error) {
	t, err := convType(rd.Type)
	if err != nil {
		return nil, err
	}
	var out []ast.Stmt
	for _, item := range rd.Items {
		if item.Init == nil {
			out = append(out, &ast.DeclStmt{Line: item.Pos.Line, DeclType: t, Name: item.Name})
			continue
		}
		init, err := convExpr(item.Init)
		if err != nil {
			return nil, err
		}
		out = append(out, &ast.DeclInitStmt{Line: item.Pos.Line, DeclType: t, Name: item.Name, Init: init})
	}
	return out, nil
}

func convAssign(ra *rawAssign) ([]ast.Stmt, error) {
	value, err := convExpr(ra.Value)
	if err != nil {
		return nil, err
	}
	line := ra.Pos.Line
	var target ast.Lhs
	if ra.Index == nil {
		target = &ast.VarLhs{Line: line, Name: ra.Name}
	} else {
		idx, err := convExpr(ra.Index)
		if err != nil {
			return nil, err
		}
		target = &ast.IndexLhs{Line: line, Name: ra.Name, Index: idx}
	}
	return []ast.Stmt{&ast.AssignStmt{Line: line, Target: target, Value: value}}, nil
}

// convFor desugars `for (T x : a)` into an index-based while loop:
//
//	{ int $i = 0; T[] $arr = a;
//	  while ($i < $arr.length) { T x = $arr[$i]; { body } $i = $i + 1; } }
func convFor(rf *rawFor) ([]ast.Stmt, error) {
	elem, err := convType(rf.Type)
	if err != nil {
		return nil, err
	}
	arrType := types.ArrayOf(elem)
	if arrType == nil {
		return nil, errors.InvalidType(rf.Type.Pos.Line, rf.Type.Name+"[]")
	}
	seq, err := convExpr(rf.Seq)
	if err != nil {
		return nil, err
	}
	body, err := convBodyStmt(rf.Body)
	if err != nil {
		return nil, err
	}
	l := rf.Pos.Line

	loopBody := &ast.BlockStmt{Line: l, Stmts: []ast.Stmt{
		&ast.DeclInitStmt{Line: l, DeclType: elem, Name: rf.Name,
			Init: &ast.IndexExpr{Line: l, Name: forArrayVar, Index: &ast.VarExpr{Line: l, Name: forIndexVar}}},
		body,
		&ast.AssignStmt{Line: l,
			Target: &ast.VarLhs{Line: l, Name: forIndexVar},
			Value: &ast.BinaryExpr{Line: l, Op: "+",
				X: &ast.VarExpr{Line: l, Name: forIndexVar},
				Y: &ast.IntLit{Line: l, Value: 1}}},
	}}

	wrapper := &ast.BlockStmt{Line: l, Stmts: []ast.Stmt{
		&ast.DeclInitStmt{Line: l, DeclType: types.Int, Name: forIndexVar, Init: &ast.IntLit{Line: l, Value: 0}},
		&ast.DeclInitStmt{Line: l, DeclType: arrType, Name: forArrayVar, Init: seq},
		&ast.WhileStmt{Line: l,
			Cond: &ast.BinaryExpr{Line: l, Op: "<",
				X: &ast.VarExpr{Line: l, Name: forIndexVar},
				Y: &ast.AttrExpr{Line: l, Name: forArrayVar, Attr: "length"}},
			Body: loopBody},
	}}
	return []ast.Stmt{wrapper}, nil
}

func convExpr(re *rawExpr) (ast.Expr, error) {
	return convOr(re.Or)
}

func convOr(ro *rawOr) (ast.Expr, error) {
	left, err := convAnd(ro.Left)
	if err != nil {
		return nil, err
	}
	if ro.Right == nil {
		return left, nil
	}
	right, err := convOr(ro.Right)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Line: ro.Pos.Line, Op: "||", X: left, Y: right}, nil
}

func convAnd(ra *rawAnd) (ast.Expr, error) {
	left, err := convRel(ra.Left)
	if err != nil {
		return nil, err
	}
	if ra.Right == nil {
		return left, nil
	}
	right, err := convAnd(ra.Right)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Line: ra.Pos.Line, Op: "&&", X: left, Y: right}, nil
}

func convRel(rr *rawRel) (ast.Expr, error) {
	e, err := convAdd(rr.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range rr.Ops {
		right, err := convAdd(op.Right)
		if err != nil {
			return nil, err
		}
		e = &ast.BinaryExpr{Line: rr.Pos.Line, Op: op.Op, X: e, Y: right}
	}
	return e, nil
}

func convAdd(ra *rawAdd) (ast.Expr, error) {
	e, err := convMul(ra.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range ra.Ops {
		right, err := convMul(op.Right)
		if err != nil {
			return nil, err
		}
		e = &ast.BinaryExpr{Line: ra.Pos.Line, Op: op.Op, X: e, Y: right}
	}
	return e, nil
}

func convMul(rm *rawMul) (ast.Expr, error) {
	e, err := convUnary(rm.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range rm.Ops {
		right, err := convUnary(op.Right)
		if err != nil {
			return nil, err
		}
		e = &ast.BinaryExpr{Line: rm.Pos.Line, Op: op.Op, X: e, Y: right}
	}
	return e, nil
}

func convUnary(ru *rawUnary) (ast.Expr, error) {
	if ru.Primary != nil {
		return convPrimary(ru.Primary)
	}
	inner, err := convUnary(ru.Expr)
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{Line: ru.Pos.Line, Op: ru.Op, X: inner}, nil
}

func convPrimary(rp *rawPrimary) (ast.Expr, error) {
	line := rp.Pos.Line
	switch {
	case rp.New != nil:
		elem, ok := types.ByName(rp.New.Elem)
		if !ok || types.ArrayOf(elem) == nil {
			return nil, errors.InvalidType(rp.New.Pos.Line, rp.New.Elem)
		}
		n, err := convExpr(rp.New.Len)
		if err != nil {
			return nil, err
		}
		return &ast.NewArrayExpr{Line: rp.New.Pos.Line, Elem: elem, Len: n}, nil

	case rp.Call != nil:
		args := make([]ast.Expr, 0, len(rp.Call.Args))
		for _, ra := range rp.Call.Args {
			a, err := convExpr(ra)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return &ast.CallExpr{Line: rp.Call.Pos.Line, Name: rp.Call.Name, Args: args}, nil

	case rp.Index != nil:
		idx, err := convExpr(rp.Index.Index)
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{Line: rp.Index.Pos.Line, Name: rp.Index.Name, Index: idx}, nil

	case rp.Attr != nil:
		return &ast.AttrExpr{Line: rp.Attr.Pos.Line, Name: rp.Attr.Name, Attr: rp.Attr.Attr}, nil

	case rp.Int != nil:
		v, err := strconv.ParseInt(*rp.Int, 10, 64)
		if err != nil {
			return nil, errors.Parsing(line)
		}
		return &ast.IntLit{Line: line, Value: v}, nil

	case rp.Str != nil:
		raw := *rp.Str
		return &ast.StrLit{Line: line, Value: raw[1 : len(raw)-1]}, nil

	case rp.True:
		return &ast.BoolLit{Line: line, Value: true}, nil

	case rp.False:
		return &ast.BoolLit{Line: line, Value: false}, nil

	case rp.Var != nil:
		return &ast.VarExpr{Line: line, Name: *rp.Var}, nil

	case rp.Paren != nil:
		return convExpr(rp.Paren)
	}
	return nil, errors.Parsing(line)
}
