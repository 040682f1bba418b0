package ast

import "latte/internal/types"

func (e *UnaryExpr) NodeLine() int    { return e.Line }
func (e *BinaryExpr) NodeLine() int   { return e.Line }
func (e *VarExpr) NodeLine() int      { return e.Line }
func (e *IntLit) NodeLine() int       { return e.Line }
func (e *StrLit) NodeLine() int       { return e.Line }
func (e *BoolLit) NodeLine() int      { return e.Line }
func (e *CallExpr) NodeLine() int     { return e.Line }
func (e *IndexExpr) NodeLine() int    { return e.Line }
func (e *AttrExpr) NodeLine() int     { return e.Line }
func (e *NewArrayExpr) NodeLine() int { return e.Line }

func (l *VarLhs) NodeLine() int   { return l.Line }
func (l *IndexLhs) NodeLine() int { return l.Line }

func (s *EmptyStmt) NodeLine() int      { return s.Line }
func (s *DeclStmt) NodeLine() int       { return s.Line }
func (s *DeclInitStmt) NodeLine() int   { return s.Line }
func (s *AssignStmt) NodeLine() int     { return s.Line }
func (s *ReturnStmt) NodeLine() int     { return s.Line }
func (s *VoidReturnStmt) NodeLine() int { return s.Line }
func (s *IfStmt) NodeLine() int         { return s.Line }
func (s *IfElseStmt) NodeLine() int     { return s.Line }
func (s *WhileStmt) NodeLine() int      { return s.Line }
func (s *LoopStmt) NodeLine() int       { return s.Line }
func (s *ExprStmt) NodeLine() int       { return s.Line }
func (s *BlockStmt) NodeLine() int      { return s.Line }

func (p *Param) NodeLine() int       { return p.Line }
func (f *UserFunc) NodeLine() int    { return f.Line }
func (f *BuiltinFunc) NodeLine() int { return 0 }
func (p *Program) NodeLine() int     { return p.Line }

func (e *UnaryExpr) Type() *types.Type    { return e.Typ }
func (e *BinaryExpr) Type() *types.Type   { return e.Typ }
func (e *VarExpr) Type() *types.Type      { return e.Typ }
func (e *IntLit) Type() *types.Type       { return types.Int }
func (e *StrLit) Type() *types.Type       { return types.Str }
func (e *BoolLit) Type() *types.Type      { return types.Bool }
func (e *CallExpr) Type() *types.Type     { return e.Typ }
func (e *IndexExpr) Type() *types.Type    { return e.Typ }
func (e *AttrExpr) Type() *types.Type     { return types.Int }
func (e *NewArrayExpr) Type() *types.Type { return e.Typ }

func (l *VarLhs) Type() *types.Type   { return l.Typ }
func (l *IndexLhs) Type() *types.Type { return l.Typ }

func (*UnaryExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*VarExpr) exprNode()      {}
func (*IntLit) exprNode()       {}
func (*StrLit) exprNode()       {}
func (*BoolLit) exprNode()      {}
func (*CallExpr) exprNode()     {}
func (*IndexExpr) exprNode()    {}
func (*AttrExpr) exprNode()     {}
func (*NewArrayExpr) exprNode() {}

func (*VarLhs) lhsNode()   {}
func (*IndexLhs) lhsNode() {}

func (*EmptyStmt) stmtNode()      {}
func (*DeclStmt) stmtNode()       {}
func (*DeclInitStmt) stmtNode()   {}
func (*AssignStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode()     {}
func (*VoidReturnStmt) stmtNode() {}
func (*IfStmt) stmtNode()         {}
func (*IfElseStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()      {}
func (*LoopStmt) stmtNode()       {}
func (*ExprStmt) stmtNode()       {}
func (*BlockStmt) stmtNode()      {}

func (f *UserFunc) FuncName() string     { return f.Name }
func (f *UserFunc) RetType() *types.Type { return f.Ret }
func (f *UserFunc) NumParams() int       { return len(f.Params) }
func (f *UserFunc) ParamType(i int) *types.Type {
	return f.Params[i].Type
}

func (f *BuiltinFunc) FuncName() string     { return f.Name }
func (f *BuiltinFunc) RetType() *types.Type { return f.Ret }
func (f *BuiltinFunc) NumParams() int       { return len(f.Params) }
func (f *BuiltinFunc) ParamType(i int) *types.Type {
	return f.Params[i]
}
