package semantic

import (
	"math"

	"latte/internal/ast"
	"latte/internal/errors"
	"latte/internal/types"
)

var arithOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}

var compareOps = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}

// checkExpr types an expression against the environment and returns the
// possibly folded replacement node.
func (a *Analyzer) checkExpr(expr ast.Expr, e env) (ast.Expr, error) {
	switch n := expr.(type) {
	case *ast.IntLit, *ast.StrLit, *ast.BoolLit:
		return expr, nil

	case *ast.UnaryExpr:
		return a.checkUnary(n, e)

	case *ast.BinaryExpr:
		return a.checkBinary(n, e)

	case *ast.VarExpr:
		t, ok := e.vars[n.Name]
		if !ok {
			return nil, errors.UndefinedVariable(n.Line, n.Name)
		}
		n.Typ = t
		return n, nil

	case *ast.CallExpr:
		f, ok := a.funcs[n.Name]
		if !ok {
			return nil, errors.UndefinedFunction(n.Line, n.Name)
		}
		if len(n.Args) != f.NumParams() {
			return nil, errors.InvalidCall(n.Line, n.Name)
		}
		for i, arg := range n.Args {
			na, err := a.checkExpr(arg, e)
			if err != nil {
				return nil, err
			}
			if na.Type() != f.ParamType(i) {
				return nil, errors.TypeMismatch(n.Line)
			}
			n.Args[i] = na
		}
		n.Typ = f.RetType()
		return n, nil

	case *ast.IndexExpr:
		idx, err := a.checkExpr(n.Index, e)
		if err != nil {
			return nil, err
		}
		if idx.Type() != types.Int {
			return nil, errors.TypeMismatch(n.Line)
		}
		t, ok := e.vars[n.Name]
		if !ok {
			return nil, errors.UndefinedVariable(n.Line, n.Name)
		}
		if !t.IsArray() {
			return nil, errors.TypeMismatch(n.Line)
		}
		n.Index = idx
		n.Typ = t.Elem()
		return n, nil

	case *ast.AttrExpr:
		t, ok := e.vars[n.Name]
		if !ok {
			return nil, errors.UndefinedVariable(n.Line, n.Name)
		}
		if !t.IsArray() || n.Attr != "length" {
			return nil, errors.InvalidAttribute(n.Line, t.String(), n.Attr)
		}
		n.ArrayType = t
		return n, nil

	case *ast.NewArrayExpr:
		length, err := a.checkExpr(n.Len, e)
		if err != nil {
			return nil, err
		}
		if length.Type() != types.Int {
			return nil, errors.TypeMismatch(n.Line)
		}
		n.Len = length
		n.Typ = types.ArrayOf(n.Elem)
		return n, nil
	}
	return nil, errors.NotImplemented(expr.NodeLine())
}

func (a *Analyzer) checkUnary(n *ast.UnaryExpr, e env) (ast.Expr, error) {
	x, err := a.checkExpr(n.X, e)
	if err != nil {
		return nil, err
	}
	n.X = x
	switch {
	case n.Op == "-" && x.Type() == types.Int:
		if c, ok := x.(*ast.IntLit); ok {
			return &ast.IntLit{Line: n.Line, Value: -c.Value}, nil
		}
		n.Typ = types.Int
	case n.Op == "!" && x.Type() == types.Bool:
		if c, ok := x.(*ast.BoolLit); ok {
			return &ast.BoolLit{Line: n.Line, Value: !c.Value}, nil
		}
		n.Typ = types.Bool
	default:
		return nil, errors.TypeMismatch(n.Line)
	}
	return n, nil
}

func (a *Analyzer) checkBinary(n *ast.BinaryExpr, e env) (ast.Expr, error) {
	x, err := a.checkExpr(n.X, e)
	if err != nil {
		return nil, err
	}
	y, err := a.checkExpr(n.Y, e)
	if err != nil {
		return nil, err
	}
	n.X, n.Y = x, y
	tx, ty := x.Type(), y.Type()
	if tx == types.Void || ty == types.Void {
		return nil, errors.TypeMismatch(n.Line)
	}

	switch {
	case arithOps[n.Op] && tx == types.Int && ty == types.Int:
		cx, okx := x.(*ast.IntLit)
		cy, oky := y.(*ast.IntLit)
		if okx && oky {
			if v, folded := foldIntArith(n.Op, cx.Value, cy.Value); folded {
				return &ast.IntLit{Line: n.Line, Value: v}, nil
			}
		}
		n.Typ = types.Int

	case n.Op == "+" && tx == types.Str && ty == types.Str:
		cx, okx := x.(*ast.StrLit)
		cy, oky := y.(*ast.StrLit)
		if okx && oky {
			return &ast.StrLit{Line: n.Line, Value: cx.Value + cy.Value}, nil
		}
		n.Typ = types.Str

	case (n.Op == "||" || n.Op == "&&") && tx == types.Bool && ty == types.Bool:
		if folded := foldShortCircuit(n); folded != nil {
			return folded, nil
		}
		n.Typ = types.Bool

	case compareOps[n.Op] && tx == ty && tx.Scalar():
		if folded := foldComparison(n); folded != nil {
			return folded, nil
		}
		n.Typ = types.Bool

	default:
		return nil, errors.TypeMismatch(n.Line)
	}
	return n, nil
}

// foldIntArith evaluates integer arithmetic at compile time. Division and
// remainder truncate toward zero, matching the sdiv/srem instructions the
// translator emits; folding a zero divisor is left to the runtime.
func foldIntArith(op string, x, y int64) (int64, bool) {
	switch op {
	case "+":
		return x + y, true
	case "-":
		return x - y, true
	case "*":
		return x * y, true
	case "/":
		if y == 0 || (x == math.MinInt64 && y == -1) {
			return 0, false
		}
		return x / y, true
	case "%":
		if y == 0 || (x == math.MinInt64 && y == -1) {
			return 0, false
		}
		return x % y, true
	}
	return 0, false
}

// foldShortCircuit folds && and || when the left operand alone decides the
// result, or when both operands are constant.
func foldShortCircuit(n *ast.BinaryExpr) ast.Expr {
	cx, okx := n.X.(*ast.BoolLit)
	if okx {
		if n.Op == "||" && cx.Value {
			return &ast.BoolLit{Line: n.Line, Value: true}
		}
		if n.Op == "&&" && !cx.Value {
			return &ast.BoolLit{Line: n.Line, Value: false}
		}
	}
	cy, oky := n.Y.(*ast.BoolLit)
	if okx && oky {
		if n.Op == "||" {
			return &ast.BoolLit{Line: n.Line, Value: cx.Value || cy.Value}
		}
		return &ast.BoolLit{Line: n.Line, Value: cx.Value && cy.Value}
	}
	return nil
}

func foldComparison(n *ast.BinaryExpr) ast.Expr {
	if cx, ok := n.X.(*ast.IntLit); ok {
		if cy, ok := n.Y.(*ast.IntLit); ok {
			return &ast.BoolLit{Line: n.Line, Value: compareOrdered(n.Op, cx.Value, cy.Value)}
		}
		return nil
	}
	if cx, ok := n.X.(*ast.StrLit); ok {
		if cy, ok := n.Y.(*ast.StrLit); ok {
			return &ast.BoolLit{Line: n.Line, Value: compareOrdered(n.Op, cx.Value, cy.Value)}
		}
		return nil
	}
	if cx, ok := n.X.(*ast.BoolLit); ok {
		if cy, ok := n.Y.(*ast.BoolLit); ok {
			return &ast.BoolLit{Line: n.Line, Value: compareOrdered(n.Op, boolOrd(cx.Value), boolOrd(cy.Value))}
		}
	}
	return nil
}

func boolOrd(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func compareOrdered[T int64 | string](op string, x, y T) bool {
	switch op {
	case "==":
		return x == y
	case "!=":
		return x != y
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	case ">=":
		return x >= y
	}
	return false
}
