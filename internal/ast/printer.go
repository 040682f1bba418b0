package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// The pretty printer renders the checked AST in source-like form. It is the
// output of the driver's default mode, so the format is pinned by tests.

func (e *UnaryExpr) String() string {
	return e.Op + e.X.String()
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.X, e.Op, e.Y)
}

func (e *VarExpr) String() string { return e.Name }

func (e *IntLit) String() string { return strconv.FormatInt(e.Value, 10) }

func (e *StrLit) String() string { return `"` + e.Value + `"` }

func (e *BoolLit) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}

func (e *CallExpr) String() string {
	return e.Name + "(" + joinExprs(e.Args) + ")"
}

func (e *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", e.Name, e.Index)
}

func (e *AttrExpr) String() string {
	return e.Name + "." + e.Attr
}

func (e *NewArrayExpr) String() string {
	return fmt.Sprintf("new %s[%s]", e.Elem, e.Len)
}

func (l *VarLhs) String() string { return l.Name }

func (l *IndexLhs) String() string {
	return fmt.Sprintf("%s[%s]", l.Name, l.Index)
}

func (s *EmptyStmt) String() string { return ";" }

func (s *DeclStmt) String() string {
	return fmt.Sprintf("%s %s;", s.DeclType, s.Name)
}

func (s *DeclInitStmt) String() string {
	return fmt.Sprintf("%s %s = %s;", s.DeclType, s.Name, s.Init)
}

func (s *AssignStmt) String() string {
	return fmt.Sprintf("%s = %s;", s.Target, s.Value)
}

func (s *ReturnStmt) String() string {
	return fmt.Sprintf("return %s;", s.Value)
}

func (s *VoidReturnStmt) String() string { return "return;" }

func (s *IfStmt) String() string {
	return fmt.Sprintf("if (%s) %s", s.Cond, s.Then)
}

func (s *IfElseStmt) String() string {
	return fmt.Sprintf("if (%s) %s else %s", s.Cond, s.Then, s.Else)
}

func (s *WhileStmt) String() string {
	return fmt.Sprintf("while (%s) %s", s.Cond, s.Body)
}

func (s *LoopStmt) String() string {
	return fmt.Sprintf("while (true) %s", s.Body)
}

func (s *ExprStmt) String() string { return s.X.String() + ";" }

func (s *BlockStmt) String() string {
	var b strings.Builder
	b.WriteString("{")
	for _, st := range s.Stmts {
		for _, line := range strings.Split(st.String(), "\n") {
			b.WriteString("\n  ")
			b.WriteString(line)
		}
	}
	b.WriteString("\n}")
	return b.String()
}

func (f *UserFunc) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s %s", p.Type, p.Name)
	}
	return fmt.Sprintf("%s %s(%s) %s", f.Ret, f.Name, strings.Join(params, ", "), f.Body)
}

func (f *BuiltinFunc) String() string {
	params := make([]string, len(f.Params))
	for i, t := range f.Params {
		params[i] = t.String()
	}
	return fmt.Sprintf("// %s %s(%s)", f.Ret, f.Name, strings.Join(params, ", "))
}

func (p *Program) String() string {
	decls := make([]string, len(p.Funcs))
	for i, f := range p.Funcs {
		decls[i] = f.String()
	}
	return strings.Join(decls, "\n")
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
