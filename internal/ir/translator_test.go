package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latte/internal/parser"
	"latte/internal/semantic"
)

func compile(t *testing.T, source string, optimize bool) *Program {
	t.Helper()
	prog, err := parser.ParseSource("test.lat", source)
	require.NoError(t, err)
	require.NoError(t, semantic.NewAnalyzer().Check(prog))
	m := Translate(prog)
	if optimize {
		Optimize(m)
	}
	return m
}

func getFunc(t *testing.T, m *Program, name string) *FuncDef {
	t.Helper()
	for _, f := range m.Funcs {
		if fd, ok := f.(*FuncDef); ok && fd.Name == name {
			return fd
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}

func declNames(m *Program) []string {
	var names []string
	for _, f := range m.Funcs {
		if d, ok := f.(*BuiltinDecl); ok {
			names = append(names, d.Name)
		}
	}
	return names
}

func allInstrs(f *FuncDef) []Instr {
	var out []Instr
	for _, b := range f.Blocks {
		out = append(out, b.Instrs...)
	}
	return out
}

func TestBuilderWiresForwardReferences(t *testing.T) {
	b := &Builder{}
	b.NewBlock("L1")
	b.Add(&Br{Label: "L2"})
	b2 := b.NewBlock("L2")

	require.Len(t, b2.Preds, 1)
	assert.Equal(t, "L1", b2.Preds[0].Label)
	require.Len(t, b.blocks[0].Succs, 1)
	assert.Equal(t, "L2", b.blocks[0].Succs[0].Label)
}

func TestBuilderWiresCondBranches(t *testing.T) {
	b := &Builder{}
	b.NewBlock("L1")
	b.Add(&CondBr{Cond: Reg("%t1"), True: "L2", False: "L3"})
	b2 := b.NewBlock("L2")
	b.Add(&Br{Label: "L3"})
	b3 := b.NewBlock("L3")

	assert.Len(t, b2.Preds, 1)
	require.Len(t, b3.Preds, 2)
	assert.Equal(t, "L1", b3.Preds[0].Label)
	assert.Equal(t, "L2", b3.Preds[1].Label)
}

func TestStringProgram(t *testing.T) {
	// Runtime string traffic: one pooled global per distinct literal, a
	// concatenation call, and only reachable builtins declared.
	m := compile(t, `int main() { string a = "hi"; printString(a + "!"); return 0; }`, false)

	require.Len(t, m.Globals, 2)
	assert.Equal(t, "hi", m.Globals[0].Lit.Raw)
	assert.Equal(t, "!", m.Globals[1].Lit.Raw)

	decls := declNames(m)
	assert.ElementsMatch(t, []string{"printString", "_addStrings"}, decls)

	var addCall, printCall *Call
	for _, ins := range allInstrs(getFunc(t, m, "main")) {
		if c, ok := ins.(*Call); ok {
			switch c.Fn {
			case "_addStrings":
				addCall = c
			case "printString":
				printCall = c
			}
		}
	}
	require.NotNil(t, addCall)
	assert.Equal(t, I8Ptr, addCall.Type)
	require.Len(t, addCall.Args, 2)
	require.NotNil(t, printCall)
	assert.Equal(t, Void, printCall.Type)
	assert.Equal(t, Reg(""), printCall.Dst)
}

func TestStringLiteralsArePooled(t *testing.T) {
	m := compile(t, `int main() { printString("x"); printString("x"); return 0; }`, false)
	assert.Len(t, m.Globals, 1)
}

func TestStringComparisonOpIDs(t *testing.T) {
	m := compile(t, `int main() {
		string a = readString();
		if (a <= "m") return 1;
		return 0;
	}`, false)
	var cmp *Call
	for _, ins := range allInstrs(getFunc(t, m, "main")) {
		if c, ok := ins.(*Call); ok && c.Fn == "_compareStrings" {
			cmp = c
		}
	}
	require.NotNil(t, cmp)
	require.Len(t, cmp.Args, 3)
	// "<=" is position 3 in [==, !=, <, <=, >, >=]
	assert.Equal(t, IntConst(3), cmp.Args[0].Val)
	assert.Equal(t, I1, cmp.Type)
}

func TestDefaultInitialization(t *testing.T) {
	m := compile(t, `int main() { int x; boolean b; string s; printString(s); if (b) return x; return 0; }`, false)
	f := getFunc(t, m, "main")

	var stores []*Store
	for _, ins := range allInstrs(f) {
		if s, ok := ins.(*Store); ok {
			stores = append(stores, s)
		}
	}
	require.Len(t, stores, 3)
	assert.Equal(t, IntConst(0), stores[0].Val, "int defaults to 0")
	assert.Equal(t, IntConst(0), stores[1].Val, "boolean defaults to false")
	_, isReg := stores[2].Val.(Reg)
	assert.True(t, isReg, "string defaults to the pooled empty literal")
	require.Len(t, m.Globals, 1)
	assert.Equal(t, "", m.Globals[0].Lit.Raw)
}

func TestArrayLowering(t *testing.T) {
	m := compile(t, `int main() {
		int[] a = new int[3];
		a[0] = 7;
		return a[0] + a.length;
	}`, true)
	f := getFunc(t, m, "main")
	instrs := allInstrs(f)

	var allocArray *AllocArray
	var noOptAllocs, noOptStores, noOptLoads, geps int
	var add *BinOp
	for _, ins := range instrs {
		switch s := ins.(type) {
		case *AllocArray:
			allocArray = s
		case *Alloc:
			require.True(t, s.NoOpt, "only array slots survive the optimizer")
			noOptAllocs++
		case *Store:
			require.True(t, s.NoOpt)
			noOptStores++
		case *Load:
			require.True(t, s.NoOpt)
			noOptLoads++
		case *GetElementPtr:
			geps++
		case *BinOp:
			if s.Op == OpAdd {
				add = s
			}
		}
	}

	require.NotNil(t, allocArray)
	assert.Equal(t, IntConst(3), allocArray.Count)
	assert.Equal(t, I64, allocArray.Type)
	assert.Equal(t, 2, noOptAllocs, "struct slot at the creation site plus the variable slot")
	assert.GreaterOrEqual(t, geps, 4)
	assert.Greater(t, noOptLoads, 0)
	assert.Greater(t, noOptStores, 0)

	// Array loads are noopt, so the final sum cannot constant-fold.
	require.NotNil(t, add, "the sum of two array-backed loads must survive")
	_, xIsReg := add.X.(Reg)
	_, yIsReg := add.Y.(Reg)
	assert.True(t, xIsReg && yIsReg)

	last := f.Blocks[len(f.Blocks)-1].Instrs
	ret, ok := last[len(last)-1].(*Ret)
	require.True(t, ok)
	assert.Equal(t, I64, ret.Type)
}

func TestRecursivePrograms(t *testing.T) {
	m := compile(t, `
		int f(int n) { if (n <= 1) return 1; return n * f(n - 1); }
		int main() { return f(5); }
	`, true)

	f := getFunc(t, m, "f")
	rets := 0
	for _, ins := range allInstrs(f) {
		if _, ok := ins.(*Ret); ok {
			rets++
		}
	}
	assert.Equal(t, 2, rets, "f has an early return and a recursive one")

	var call *Call
	for _, ins := range allInstrs(getFunc(t, m, "main")) {
		if c, ok := ins.(*Call); ok && c.Fn == "f" {
			call = c
		}
	}
	require.NotNil(t, call)
	require.Len(t, call.Args, 1)
	assert.Equal(t, Arg{Type: I64, Val: IntConst(5)}, call.Args[0])
}

func TestFunctionArgumentsGetSlots(t *testing.T) {
	m := compile(t, `int add(int a, int b) { return a + b; } int main() { return add(2, 3); }`, false)
	f := getFunc(t, m, "add")
	require.Len(t, f.Args, 2)
	assert.Equal(t, I64, f.Args[0].Type)

	// Before optimization each argument is spilled to a slot.
	allocs := 0
	for _, ins := range f.Blocks[0].Instrs {
		if _, ok := ins.(*Alloc); ok {
			allocs++
		}
	}
	assert.Equal(t, 2, allocs)
}

func TestIfElseBothReturningHasNoJoinBlock(t *testing.T) {
	m := compile(t, `int main() {
		if (readInt() > 0) { return 1; } else { return 2; }
	}`, false)
	f := getFunc(t, m, "main")
	// entry, then-block, else-block; no join is materialized
	assert.Len(t, f.Blocks, 3)
	for _, b := range f.Blocks {
		if len(b.Instrs) > 0 {
			_, isBr := b.Instrs[len(b.Instrs)-1].(*Br)
			assert.False(t, isBr, "no block should branch to a dead join")
		}
	}
}

func TestShortCircuitLowering(t *testing.T) {
	m := compile(t, `int main() {
		boolean a = readInt() > 0;
		boolean b = readInt() > 1;
		if (a && b) return 1;
		return 0;
	}`, false)
	f := getFunc(t, m, "main")

	var phi *Phi
	for _, ins := range allInstrs(f) {
		if p, ok := ins.(*Phi); ok {
			phi = p
		}
	}
	require.NotNil(t, phi, "&& lowers through a phi join")
	assert.Equal(t, I1, phi.Type)
	require.Len(t, phi.Edges, 2)
	assert.Equal(t, IntConst(0), phi.Edges[0].Val, "short-circuit value of && is 0")
	assert.Equal(t, Reg(""), phi.Slot, "translator phis carry no slot")
}

func TestWhileLoopShape(t *testing.T) {
	m := compile(t, `int main() {
		int i = 0;
		while (i < 10) i++;
		return i;
	}`, false)
	f := getFunc(t, m, "main")
	require.Len(t, f.Blocks, 4, "entry, condition, body, exit")

	cond := f.Blocks[1]
	require.Len(t, cond.Preds, 2, "condition joins entry and the back edge")
	body := f.Blocks[2]
	require.Len(t, body.Succs, 1)
	assert.Equal(t, cond.Label, body.Succs[0].Label)
}

func TestTranslatorStateIsPerInstance(t *testing.T) {
	src := `int main() { printString("pool"); return 0; }`
	compileOnce := func() *Program {
		return compile(t, src, false)
	}
	m1 := compileOnce()
	m2 := compileOnce()
	require.Len(t, m1.Globals, 1)
	require.Len(t, m2.Globals, 1)
	assert.Equal(t, m1.Globals[0].Addr, m2.Globals[0].Addr, "global counter restarts per translator")
}
