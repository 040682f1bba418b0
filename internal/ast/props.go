package ast

import "latte/internal/types"

// Returns reports whether every execution path through s ends in an explicit
// return. A LoopStmt returns by definition: an unconditional loop without
// break cannot fall through, which is what lets `while (true) { ... }`
// terminate a non-void function.
func Returns(s Stmt) bool {
	switch n := s.(type) {
	case *ReturnStmt, *VoidReturnStmt:
		return true
	case *LoopStmt:
		return true
	case *IfElseStmt:
		return Returns(n.Then) && Returns(n.Else)
	case *BlockStmt:
		for _, st := range n.Stmts {
			if Returns(st) {
				return true
			}
		}
		return false
	}
	return false
}

// CalledFunctions collects the names of functions a declaration calls,
// including the internal string helpers implied by string concatenation and
// comparison. It is meaningful only after semantic analysis, when expression
// types are known. The result preserves first-occurrence order so that the
// reachability walk is deterministic.
func CalledFunctions(f FunDecl) []string {
	c := &callCollector{seen: map[string]bool{}}
	if u, ok := f.(*UserFunc); ok {
		c.stmt(u.Body)
	}
	return c.names
}

type callCollector struct {
	names []string
	seen  map[string]bool
}

func (c *callCollector) add(name string) {
	if !c.seen[name] {
		c.seen[name] = true
		c.names = append(c.names, name)
	}
}

func (c *callCollector) stmt(s Stmt) {
	switch n := s.(type) {
	case *DeclInitStmt:
		c.expr(n.Init)
	case *AssignStmt:
		if lhs, ok := n.Target.(*IndexLhs); ok {
			c.expr(lhs.Index)
		}
		c.expr(n.Value)
	case *ReturnStmt:
		c.expr(n.Value)
	case *IfStmt:
		c.expr(n.Cond)
		c.stmt(n.Then)
	case *IfElseStmt:
		c.expr(n.Cond)
		c.stmt(n.Then)
		c.stmt(n.Else)
	case *WhileStmt:
		c.expr(n.Cond)
		c.stmt(n.Body)
	case *LoopStmt:
		c.stmt(n.Body)
	case *ExprStmt:
		c.expr(n.X)
	case *BlockStmt:
		for _, st := range n.Stmts {
			c.stmt(st)
		}
	}
}

func (c *callCollector) expr(e Expr) {
	switch n := e.(type) {
	case *UnaryExpr:
		c.expr(n.X)
	case *BinaryExpr:
		c.expr(n.X)
		c.expr(n.Y)
		if n.X.Type() == types.Str && n.Y.Type() == types.Str {
			switch n.Op {
			case "+":
				c.add(AddStringsFunc)
			case "==", "!=", "<", "<=", ">", ">=":
				c.add(CompareStringsFunc)
			}
		}
	case *CallExpr:
		for _, a := range n.Args {
			c.expr(a)
		}
		c.add(n.Name)
	case *IndexExpr:
		c.expr(n.Index)
	case *NewArrayExpr:
		c.expr(n.Len)
	}
}
