package ir

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"latte/internal/ast"
	"latte/internal/types"
)

var log = commonlog.GetLogger("latte.ir")

// Builder accumulates the blocks of one function. Emitting a branch to an
// existing block (a back edge) wires the predecessor/successor pair at once;
// a branch to a label not created yet is recorded on the current block and
// resolved when NewBlock sees the label. Either way the CFG is correct
// regardless of the order statements visit their labels.
type Builder struct {
	cur     *Block
	blocks  []*Block
	byLabel map[string]*Block
}

func (b *Builder) Add(ins Instr) {
	b.cur.Instrs = append(b.cur.Instrs, ins)
	switch t := ins.(type) {
	case *Br:
		b.branchTo(t.Label)
	case *CondBr:
		b.branchTo(t.True)
		b.branchTo(t.False)
	}
}

func (b *Builder) branchTo(label string) {
	if target, ok := b.byLabel[label]; ok {
		target.Preds = append(target.Preds, b.cur)
		b.cur.Succs = append(b.cur.Succs, target)
		return
	}
	b.cur.succLabels[label] = true
}

func (b *Builder) NewBlock(label string) *Block {
	nb := &Block{Label: label, succLabels: make(map[string]bool)}
	for _, blk := range b.blocks {
		if blk.succLabels[label] {
			nb.Preds = append(nb.Preds, blk)
			delete(blk.succLabels, label)
			blk.Succs = append(blk.Succs, nb)
		}
	}
	if b.byLabel == nil {
		b.byLabel = make(map[string]*Block)
	}
	b.byLabel[label] = nb
	b.cur = nb
	b.blocks = append(b.blocks, nb)
	return nb
}

// compareOpID maps a comparison operator to the op_id argument of the
// runtime's string comparison helper.
var compareOpID = map[string]int64{
	"==": 0, "!=": 1, "<": 2, "<=": 3, ">": 4, ">=": 5,
}

var intBinOps = map[string]string{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpRem,
	"==": OpEq, "!=": OpNe, "<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe,
}

// Translator lowers a checked program to the IR. The id generator restarts
// per function; the string pool and the global-name counter live for one
// Translator, so reusing a Translator across programs keeps pooled literals
// distinct per compilation only if a fresh Translator is constructed.
type Translator struct {
	nextID   int
	globalID int
	strs     map[string]*GlobalDef
	globals  []*GlobalDef
	b        *Builder
}

func NewTranslator() *Translator {
	return &Translator{strs: make(map[string]*GlobalDef)}
}

// Translate lowers every function of a checked program.
func Translate(prog *ast.Program) *Program {
	return NewTranslator().Translate(prog)
}

func (t *Translator) Translate(prog *ast.Program) *Program {
	out := &Program{}
	for _, f := range prog.Funcs {
		switch fn := f.(type) {
		case *ast.BuiltinFunc:
			out.Funcs = append(out.Funcs, t.declareBuiltin(fn))
		case *ast.UserFunc:
			out.Funcs = append(out.Funcs, t.translateFunc(fn))
		}
	}
	out.Globals = t.globals
	return out
}

func (t *Translator) freshLabel() string {
	t.nextID++
	return fmt.Sprintf("L%d", t.nextID)
}

func (t *Translator) freshTemp() Reg {
	t.nextID++
	return Reg(fmt.Sprintf("%%t%d", t.nextID))
}

func (t *Translator) freshLoc() Reg {
	t.nextID++
	return Reg(fmt.Sprintf("%%loc%d", t.nextID))
}

func (t *Translator) freshGlobal() Reg {
	t.globalID++
	return Reg(fmt.Sprintf("@G%d", t.globalID))
}

// strGlobal pools a string literal by its raw content.
func (t *Translator) strGlobal(raw string) *GlobalDef {
	if g, ok := t.strs[raw]; ok {
		return g
	}
	g := &GlobalDef{Addr: t.freshGlobal(), Lit: StrConst{Raw: raw}}
	t.strs[raw] = g
	t.globals = append(t.globals, g)
	return g
}

// mangle rewrites the internal '$' helper prefix into the runtime's '_'.
func mangle(name string) string {
	return strings.ReplaceAll(name, "$", "_")
}

func llType(t *types.Type) string {
	switch t {
	case types.Int:
		return I64
	case types.Bool:
		return I1
	case types.Str:
		return I8Ptr
	case types.Void:
		return Void
	}
	return arrayLLType(t.Elem())
}

// arrayLLType is the by-value struct carried for an array: length plus a
// pointer to the elements.
func arrayLLType(elem *types.Type) string {
	return fmt.Sprintf("{ %s, %s* }", I64, llType(elem))
}

func (t *Translator) declareBuiltin(f *ast.BuiltinFunc) *BuiltinDecl {
	args := make([]string, len(f.Params))
	for i, p := range f.Params {
		args[i] = llType(p)
	}
	return &BuiltinDecl{Type: llType(f.Ret), Name: mangle(f.Name), ArgTypes: args}
}

// venv maps variable names to their stack slot addresses.
type venv map[string]Reg

func (e venv) clone() venv {
	n := make(venv, len(e))
	for k, v := range e {
		n[k] = v
	}
	return n
}

func (t *Translator) translateFunc(f *ast.UserFunc) *FuncDef {
	t.nextID = 0
	t.b = &Builder{}
	t.b.NewBlock(t.freshLabel())

	env := make(venv)
	args := make([]Arg, len(f.Params))
	for i, p := range f.Params {
		tmp := t.freshTemp()
		loc := t.freshLoc()
		lt := llType(p.Type)
		noopt := p.Type.IsArray()
		t.b.Add(&Alloc{Addr: loc, Type: lt, NoOpt: noopt})
		t.b.Add(&Store{Type: lt, Val: tmp, Addr: loc, NoOpt: noopt})
		env[p.Name] = loc
		args[i] = Arg{Type: lt, Val: tmp}
	}

	t.translateBlock(f.Body, env)
	if !ast.Returns(f.Body) {
		t.b.Add(&RetVoid{})
	}

	log.Debugf("translated %s: %d blocks", f.Name, len(t.b.blocks))
	return &FuncDef{Type: llType(f.Ret), Name: f.Name, Args: args, Blocks: t.b.blocks}
}

func (t *Translator) translateBlock(b *ast.BlockStmt, env venv) {
	local := env.clone()
	for _, s := range b.Stmts {
		local = t.translateStmt(s, local)
		if ast.Returns(s) {
			break
		}
	}
}

func (t *Translator) translateStmt(s ast.Stmt, env venv) venv {
	switch n := s.(type) {
	case *ast.EmptyStmt:
		return env

	case *ast.DeclStmt:
		return t.translateDecl(n, env)

	case *ast.DeclInitStmt:
		v := t.translateExpr(n.Init, env)
		loc := t.freshLoc()
		lt := llType(n.DeclType)
		noopt := n.DeclType.IsArray()
		t.b.Add(&Alloc{Addr: loc, Type: lt, NoOpt: noopt})
		t.b.Add(&Store{Type: lt, Val: v, Addr: loc, NoOpt: noopt})
		ne := env.clone()
		ne[n.Name] = loc
		return ne

	case *ast.AssignStmt:
		v := t.translateExpr(n.Value, env)
		t.translateStore(n.Target, v, env)
		return env

	case *ast.ReturnStmt:
		v := t.translateExpr(n.Value, env)
		if n.Value.Type() == types.Void {
			// `return g();` in a void function: evaluate for effect only.
			t.b.Add(&RetVoid{})
			return env
		}
		t.b.Add(&Ret{Type: llType(n.Value.Type()), Val: v})
		return env

	case *ast.VoidReturnStmt:
		t.b.Add(&RetVoid{})
		return env

	case *ast.IfStmt:
		ltrue := t.freshLabel()
		lfalse := t.freshLabel()
		cond := t.translateExpr(n.Cond, env)
		t.b.Add(&CondBr{Cond: cond, True: ltrue, False: lfalse})
		t.b.NewBlock(ltrue)
		t.translateBlock(n.Then, env)
		if !ast.Returns(n.Then) {
			t.b.Add(&Br{Label: lfalse})
		}
		t.b.NewBlock(lfalse)
		return env

	case *ast.IfElseStmt:
		ltrue := t.freshLabel()
		lfalse := t.freshLabel()
		lend := t.freshLabel()
		cond := t.translateExpr(n.Cond, env)
		t.b.Add(&CondBr{Cond: cond, True: ltrue, False: lfalse})
		t.b.NewBlock(ltrue)
		t.translateBlock(n.Then, env)
		thenReturns := ast.Returns(n.Then)
		if !thenReturns {
			t.b.Add(&Br{Label: lend})
		}
		t.b.NewBlock(lfalse)
		t.translateBlock(n.Else, env)
		elseReturns := ast.Returns(n.Else)
		if !elseReturns {
			t.b.Add(&Br{Label: lend})
		}
		if !(thenReturns && elseReturns) {
			t.b.NewBlock(lend)
		}
		return env

	case *ast.WhileStmt:
		lcond := t.freshLabel()
		ltrue := t.freshLabel()
		lfalse := t.freshLabel()
		t.b.Add(&Br{Label: lcond})
		t.b.NewBlock(lcond)
		cond := t.translateExpr(n.Cond, env)
		t.b.Add(&CondBr{Cond: cond, True: ltrue, False: lfalse})
		t.b.NewBlock(ltrue)
		t.translateBlock(n.Body, env)
		if !ast.Returns(n.Body) {
			t.b.Add(&Br{Label: lcond})
		}
		t.b.NewBlock(lfalse)
		return env

	case *ast.LoopStmt:
		lbody := t.freshLabel()
		t.b.Add(&Br{Label: lbody})
		t.b.NewBlock(lbody)
		t.translateBlock(n.Body, env)
		if !ast.Returns(n.Body) {
			t.b.Add(&Br{Label: lbody})
		}
		return env

	case *ast.ExprStmt:
		t.translateExpr(n.X, env)
		return env

	case *ast.BlockStmt:
		t.translateBlock(n, env)
		return env
	}
	return env
}

// translateDecl lowers a declaration without initializer: scalars get their
// default value, array slots stay uninitialized until assigned.
func (t *Translator) translateDecl(n *ast.DeclStmt, env venv) venv {
	loc := t.freshLoc()
	lt := llType(n.DeclType)
	ne := env.clone()
	ne[n.Name] = loc

	if n.DeclType.IsArray() {
		t.b.Add(&Alloc{Addr: loc, Type: lt, NoOpt: true})
		return ne
	}

	var def Value
	switch n.DeclType {
	case types.Int, types.Bool:
		def = IntConst(0)
	case types.Str:
		def = t.stringPtr("")
	}
	t.b.Add(&Alloc{Addr: loc, Type: lt})
	t.b.Add(&Store{Type: lt, Val: def, Addr: loc})
	return ne
}

// translateStore lowers an assignment target to an address and stores v.
func (t *Translator) translateStore(lhs ast.Lhs, v Value, env venv) {
	switch n := lhs.(type) {
	case *ast.VarLhs:
		lt := llType(n.Typ)
		t.b.Add(&Store{Type: lt, Val: v, Addr: env[n.Name], NoOpt: n.Typ.IsArray()})

	case *ast.IndexLhs:
		elemAddr := t.elementAddr(env[n.Name], n.Typ, n.Index, env)
		t.b.Add(&Store{Type: llType(n.Typ), Val: v, Addr: elemAddr, NoOpt: true})
	}
}

// elementAddr computes the address of slot's i-th element: load the elements
// pointer out of the array struct, then index it.
func (t *Translator) elementAddr(slot Reg, elem *types.Type, index ast.Expr, env venv) Reg {
	structT := arrayLLType(elem)
	elemT := llType(elem)

	pElems := t.freshTemp()
	t.b.Add(&GetElementPtr{Dst: pElems, Type: structT, Addr: slot,
		Idx: []Arg{{I64, IntConst(0)}, {I32, IntConst(1)}}})
	elems := t.freshTemp()
	t.b.Add(&Load{Dst: elems, Type: elemT + "*", Addr: pElems, NoOpt: true})

	iv := t.translateExpr(index, env)
	pElem := t.freshTemp()
	t.b.Add(&GetElementPtr{Dst: pElem, Type: elemT, Addr: elems,
		Idx: []Arg{{I64, iv}}})
	return pElem
}

// stringPtr returns an i8* register pointing at the pooled literal.
func (t *Translator) stringPtr(raw string) Reg {
	g := t.strGlobal(raw)
	dst := t.freshTemp()
	t.b.Add(&GetElementPtr{Dst: dst, Type: g.Lit.Type(), Addr: g.Addr,
		Idx: []Arg{{I64, IntConst(0)}, {I64, IntConst(0)}}})
	return dst
}

func (t *Translator) translateExpr(e ast.Expr, env venv) Value {
	switch n := e.(type) {
	case *ast.IntLit:
		return IntConst(n.Value)

	case *ast.BoolLit:
		if n.Value {
			return IntConst(1)
		}
		return IntConst(0)

	case *ast.StrLit:
		return t.stringPtr(n.Value)

	case *ast.VarExpr:
		dst := t.freshTemp()
		t.b.Add(&Load{Dst: dst, Type: llType(n.Typ), Addr: env[n.Name], NoOpt: n.Typ.IsArray()})
		return dst

	case *ast.UnaryExpr:
		v := t.translateExpr(n.X, env)
		dst := t.freshTemp()
		if n.Op == "-" {
			t.b.Add(&BinOp{Dst: dst, Op: OpSub, Type: I64, X: IntConst(0), Y: v})
		} else {
			t.b.Add(&BinOp{Dst: dst, Op: OpEq, Type: I1, X: v, Y: IntConst(0)})
		}
		return dst

	case *ast.BinaryExpr:
		return t.translateBinary(n, env)

	case *ast.CallExpr:
		args := make([]Arg, len(n.Args))
		for i, a := range n.Args {
			args[i] = Arg{Type: llType(a.Type()), Val: t.translateExpr(a, env)}
		}
		var dst Reg
		if n.Typ != types.Void {
			dst = t.freshTemp()
		}
		t.b.Add(&Call{Dst: dst, Type: llType(n.Typ), Fn: mangle(n.Name), Args: args})
		return dst

	case *ast.IndexExpr:
		elemAddr := t.elementAddr(env[n.Name], n.Typ, n.Index, env)
		dst := t.freshTemp()
		t.b.Add(&Load{Dst: dst, Type: llType(n.Typ), Addr: elemAddr, NoOpt: true})
		return dst

	case *ast.AttrExpr:
		structT := arrayLLType(n.ArrayType.Elem())
		pLen := t.freshTemp()
		t.b.Add(&GetElementPtr{Dst: pLen, Type: structT, Addr: env[n.Name],
			Idx: []Arg{{I64, IntConst(0)}, {I32, IntConst(0)}}})
		dst := t.freshTemp()
		t.b.Add(&Load{Dst: dst, Type: I64, Addr: pLen, NoOpt: true})
		return dst

	case *ast.NewArrayExpr:
		return t.translateNewArray(n, env)
	}
	return IntConst(0)
}

func (t *Translator) translateBinary(n *ast.BinaryExpr, env venv) Value {
	if n.Op == "&&" || n.Op == "||" {
		return t.translateShortCircuit(n, env)
	}

	x := t.translateExpr(n.X, env)
	y := t.translateExpr(n.Y, env)
	dst := t.freshTemp()

	if n.X.Type() == types.Str {
		if n.Op == "+" {
			t.b.Add(&Call{Dst: dst, Type: I8Ptr, Fn: mangle(ast.AddStringsFunc),
				Args: []Arg{{I8Ptr, x}, {I8Ptr, y}}})
		} else {
			t.b.Add(&Call{Dst: dst, Type: I1, Fn: mangle(ast.CompareStringsFunc),
				Args: []Arg{{I64, IntConst(compareOpID[n.Op])}, {I8Ptr, x}, {I8Ptr, y}}})
		}
		return dst
	}

	t.b.Add(&BinOp{Dst: dst, Op: intBinOps[n.Op], Type: llType(n.X.Type()), X: x, Y: y})
	return dst
}

// translateShortCircuit lowers && and || with a conditional branch around
// the right operand and a two-way phi at the join.
func (t *Translator) translateShortCircuit(n *ast.BinaryExpr, env venv) Value {
	x := t.translateExpr(n.X, env)
	leftLabel := t.b.cur.Label
	lnext := t.freshLabel()
	lend := t.freshLabel()

	short := IntConst(0)
	if n.Op == "||" {
		short = IntConst(1)
		t.b.Add(&CondBr{Cond: x, True: lend, False: lnext})
	} else {
		t.b.Add(&CondBr{Cond: x, True: lnext, False: lend})
	}

	t.b.NewBlock(lnext)
	y := t.translateExpr(n.Y, env)
	rightLabel := t.b.cur.Label
	t.b.Add(&Br{Label: lend})

	t.b.NewBlock(lend)
	dst := t.freshTemp()
	t.b.Add(&Phi{Dst: dst, Type: I1, Edges: []PhiEdge{
		{Val: short, Label: leftLabel},
		{Val: y, Label: rightLabel},
	}})
	return dst
}

// translateNewArray materializes the array struct: element storage, then a
// struct slot whose fields are filled and loaded out by value.
func (t *Translator) translateNewArray(n *ast.NewArrayExpr, env venv) Value {
	count := t.translateExpr(n.Len, env)
	elemT := llType(n.Elem)
	structT := arrayLLType(n.Elem)

	arr := t.freshLoc()
	t.b.Add(&AllocArray{Addr: arr, Type: elemT, Count: count})
	st := t.freshLoc()
	t.b.Add(&Alloc{Addr: st, Type: structT, NoOpt: true})

	pLen := t.freshTemp()
	t.b.Add(&GetElementPtr{Dst: pLen, Type: structT, Addr: st,
		Idx: []Arg{{I64, IntConst(0)}, {I32, IntConst(0)}}})
	t.b.Add(&Store{Type: I64, Val: count, Addr: pLen, NoOpt: true})

	pElems := t.freshTemp()
	t.b.Add(&GetElementPtr{Dst: pElems, Type: structT, Addr: st,
		Idx: []Arg{{I64, IntConst(0)}, {I32, IntConst(1)}}})
	t.b.Add(&Store{Type: elemT + "*", Val: arr, Addr: pElems, NoOpt: true})

	dst := t.freshTemp()
	t.b.Add(&Load{Dst: dst, Type: structT, Addr: st, NoOpt: true})
	return dst
}
