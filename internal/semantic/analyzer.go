package semantic

import (
	"github.com/tliron/commonlog"

	"latte/internal/ast"
	"latte/internal/errors"
	"latte/internal/types"
)

var log = commonlog.GetLogger("latte.semantic")

// Analyzer checks and simplifies a program in place: expressions are
// replaced by folded equivalents, statically decided branches collapse,
// blocks are truncated at the first returning statement, and functions
// unreachable from main are dropped. After a successful Check the program
// satisfies the invariants the IR translator relies on.
type Analyzer struct {
	funcs map[string]ast.FunDecl
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{funcs: make(map[string]ast.FunDecl)}
}

// env carries the variable bindings and the expected return type of the
// function being checked. Maps are copied on extension, the way statement
// checking threads a fresh environment to the statement suffix.
type env struct {
	vars map[string]*types.Type
	ret  *types.Type
}

func (e env) clone() env {
	vars := make(map[string]*types.Type, len(e.vars))
	for k, v := range e.vars {
		vars[k] = v
	}
	return env{vars: vars, ret: e.ret}
}

func (e env) bind(name string, t *types.Type) env {
	n := e.clone()
	n.vars[name] = t
	return n
}

// Check validates prog and applies every AST-level simplification. On
// success prog contains only functions reachable from main.
func (a *Analyzer) Check(prog *ast.Program) error {
	for _, f := range prog.Funcs {
		if _, ok := a.funcs[f.FuncName()]; ok {
			return errors.DuplicateFunction(f.NodeLine(), f.FuncName())
		}
		a.funcs[f.FuncName()] = f
	}

	mainFn, ok := a.funcs["main"]
	if !ok {
		return errors.MissingMain(prog.Line)
	}
	if mainFn.RetType() != types.Int || mainFn.NumParams() != 0 {
		return errors.InvalidMain(mainFn.NodeLine())
	}

	for _, f := range prog.Funcs {
		u, ok := f.(*ast.UserFunc)
		if !ok {
			continue
		}
		if err := a.checkFunction(u); err != nil {
			return err
		}
	}

	a.pruneUnreachable(prog)
	log.Debugf("checked program: %d reachable functions", len(prog.Funcs))
	return nil
}

func (a *Analyzer) checkFunction(f *ast.UserFunc) error {
	e := env{vars: make(map[string]*types.Type), ret: f.Ret}
	for _, p := range f.Params {
		if _, dup := e.vars[p.Name]; dup {
			return errors.DuplicateVariable(p.Line, p.Name)
		}
		if p.Type == types.Void {
			return errors.InvalidType(p.Line, p.Type.String())
		}
		e.vars[p.Name] = p.Type
	}

	body, _, err := a.checkBlock(f.Body, e)
	if err != nil {
		return err
	}
	f.Body = body

	if !ast.Returns(f.Body) {
		if f.Ret != types.Void {
			return errors.MissingReturn(f.Line)
		}
		f.Body.Stmts = append(f.Body.Stmts, &ast.VoidReturnStmt{Line: f.Body.Line})
	}
	return nil
}

// checkBlock opens a scope: declarations extend the environment for the
// statements that follow, duplicates within the same block are rejected,
// and everything after the first returning statement is dropped.
func (a *Analyzer) checkBlock(b *ast.BlockStmt, e env) (*ast.BlockStmt, env, error) {
	local := make(map[string]bool)
	cur := e.clone()
	var stmts []ast.Stmt
	for _, s := range b.Stmts {
		ns, ne, err := a.checkStmt(s, cur)
		if err != nil {
			return nil, e, err
		}
		switch d := ns.(type) {
		case *ast.DeclStmt:
			if local[d.Name] {
				return nil, e, errors.DuplicateVariable(d.Line, d.Name)
			}
			local[d.Name] = true
		case *ast.DeclInitStmt:
			if local[d.Name] {
				return nil, e, errors.DuplicateVariable(d.Line, d.Name)
			}
			local[d.Name] = true
		}
		cur = ne
		stmts = append(stmts, ns)
		if ast.Returns(ns) {
			break
		}
	}
	b.Stmts = stmts
	return b, e, nil
}

func (a *Analyzer) checkStmt(s ast.Stmt, e env) (ast.Stmt, env, error) {
	switch n := s.(type) {
	case *ast.EmptyStmt:
		return n, e, nil

	case *ast.DeclStmt:
		if n.DeclType == types.Void {
			return nil, e, errors.InvalidType(n.Line, n.DeclType.String())
		}
		return n, e.bind(n.Name, n.DeclType), nil

	case *ast.DeclInitStmt:
		if n.DeclType == types.Void {
			return nil, e, errors.InvalidType(n.Line, n.DeclType.String())
		}
		init, err := a.checkExpr(n.Init, e)
		if err != nil {
			return nil, e, err
		}
		if init.Type() != n.DeclType {
			return nil, e, errors.TypeMismatch(n.Line)
		}
		n.Init = init
		return n, e.bind(n.Name, n.DeclType), nil

	case *ast.AssignStmt:
		value, err := a.checkExpr(n.Value, e)
		if err != nil {
			return nil, e, err
		}
		target, err := a.checkLhs(n.Target, e)
		if err != nil {
			return nil, e, err
		}
		if target.Type() != value.Type() {
			return nil, e, errors.TypeMismatch(n.Line)
		}
		n.Value = value
		n.Target = target
		return n, e, nil

	case *ast.ReturnStmt:
		value, err := a.checkExpr(n.Value, e)
		if err != nil {
			return nil, e, err
		}
		if value.Type() != e.ret {
			return nil, e, errors.TypeMismatch(n.Line)
		}
		n.Value = value
		return n, e, nil

	case *ast.VoidReturnStmt:
		if e.ret != types.Void {
			return nil, e, errors.TypeMismatch(n.Line)
		}
		return n, e, nil

	case *ast.IfStmt:
		cond, err := a.checkCond(n.Cond, e)
		if err != nil {
			return nil, e, err
		}
		then, _, err := a.checkBlock(n.Then, e)
		if err != nil {
			return nil, e, err
		}
		if c, constant := cond.(*ast.BoolLit); constant {
			if c.Value {
				return then, e, nil
			}
			return &ast.EmptyStmt{Line: n.Line}, e, nil
		}
		n.Cond, n.Then = cond, then
		return n, e, nil

	case *ast.IfElseStmt:
		cond, err := a.checkCond(n.Cond, e)
		if err != nil {
			return nil, e, err
		}
		then, _, err := a.checkBlock(n.Then, e)
		if err != nil {
			return nil, e, err
		}
		els, _, err := a.checkBlock(n.Else, e)
		if err != nil {
			return nil, e, err
		}
		if c, constant := cond.(*ast.BoolLit); constant {
			if c.Value {
				return then, e, nil
			}
			return els, e, nil
		}
		n.Cond, n.Then, n.Else = cond, then, els
		return n, e, nil

	case *ast.WhileStmt:
		cond, err := a.checkCond(n.Cond, e)
		if err != nil {
			return nil, e, err
		}
		body, _, err := a.checkBlock(n.Body, e)
		if err != nil {
			return nil, e, err
		}
		if c, constant := cond.(*ast.BoolLit); constant {
			if c.Value {
				return &ast.LoopStmt{Line: n.Line, Body: body}, e, nil
			}
			return &ast.EmptyStmt{Line: n.Line}, e, nil
		}
		n.Cond, n.Body = cond, body
		return n, e, nil

	case *ast.LoopStmt:
		body, _, err := a.checkBlock(n.Body, e)
		if err != nil {
			return nil, e, err
		}
		n.Body = body
		return n, e, nil

	case *ast.ExprStmt:
		x, err := a.checkExpr(n.X, e)
		if err != nil {
			return nil, e, err
		}
		n.X = x
		return n, e, nil

	case *ast.BlockStmt:
		return a.checkBlockStmt(n, e)
	}
	return nil, e, errors.NotImplemented(s.NodeLine())
}

// checkBlockStmt adapts checkBlock to the Stmt-returning shape.
func (a *Analyzer) checkBlockStmt(b *ast.BlockStmt, e env) (ast.Stmt, env, error) {
	nb, ne, err := a.checkBlock(b, e)
	if err != nil {
		return nil, e, err
	}
	return nb, ne, nil
}

// checkCond checks a branch condition, which must be boolean.
func (a *Analyzer) checkCond(c ast.Expr, e env) (ast.Expr, error) {
	cond, err := a.checkExpr(c, e)
	if err != nil {
		return nil, err
	}
	if cond.Type() != types.Bool {
		return nil, errors.TypeMismatch(c.NodeLine())
	}
	return cond, nil
}

func (a *Analyzer) checkLhs(l ast.Lhs, e env) (ast.Lhs, error) {
	switch n := l.(type) {
	case *ast.VarLhs:
		t, ok := e.vars[n.Name]
		if !ok {
			return nil, errors.UndefinedVariable(n.Line, n.Name)
		}
		n.Typ = t
		return n, nil

	case *ast.IndexLhs:
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
	}
	return nil, errors.NotImplemented(l.NodeLine())
}

// pruneUnreachable retains exactly the transitive closure of calls from
// main. Builtin declarations are kept only when something reachable calls
// them.
func (a *Analyzer) pruneUnreachable(prog *ast.Program) {
	reachable := map[string]bool{"main": true}
	queue := []string{"main"}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		f, ok := a.funcs[name]
		if !ok {
			continue
		}
		for _, callee := range ast.CalledFunctions(f) {
			if !reachable[callee] {
				reachable[callee] = true
				queue = append(queue, callee)
			}
		}
	}

	var kept []ast.FunDecl
	for _, f := range prog.Funcs {
		if reachable[f.FuncName()] {
			kept = append(kept, f)
		}
	}
	prog.Funcs = kept
}
