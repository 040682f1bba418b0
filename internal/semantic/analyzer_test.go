package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latte/internal/ast"
	"latte/internal/errors"
	"latte/internal/parser"
)

func check(t *testing.T, source string) (*ast.Program, error) {
	t.Helper()
	prog, err := parser.ParseSource("test.lat", source)
	require.NoError(t, err, "test source should parse")
	return prog, NewAnalyzer().Check(prog)
}

func checkErr(t *testing.T, source string) *errors.CompilerError {
	t.Helper()
	_, err := check(t, source)
	require.Error(t, err)
	cerr, ok := err.(*errors.CompilerError)
	require.True(t, ok)
	return cerr
}

func mainFunc(t *testing.T, prog *ast.Program) *ast.UserFunc {
	t.Helper()
	for _, f := range prog.Funcs {
		if u, ok := f.(*ast.UserFunc); ok && u.Name == "main" {
			return u
		}
	}
	t.Fatal("no main function in checked program")
	return nil
}

func TestValidProgram(t *testing.T) {
	_, err := check(t, `
		int add(int a, int b) { return a + b; }
		int main() { return add(2, 3); }
	`)
	assert.NoError(t, err)
}

func TestDuplicateFunction(t *testing.T) {
	cerr := checkErr(t, `
		int f() { return 1; }
		int f() { return 2; }
		int main() { return 0; }
	`)
	assert.Equal(t, errors.CodeDuplicateFunction, cerr.Code)
}

func TestMissingMain(t *testing.T) {
	cerr := checkErr(t, `int f() { return 1; }`)
	assert.Equal(t, errors.CodeMissingMain, cerr.Code)
}

func TestInvalidMainSignature(t *testing.T) {
	cerr := checkErr(t, `string main() { return "x"; }`)
	assert.Equal(t, errors.CodeInvalidMain, cerr.Code)
	assert.Equal(t, "invalid main() definition (line 1)", cerr.Error())

	cerr = checkErr(t, `int main(int argc) { return 0; }`)
	assert.Equal(t, errors.CodeInvalidMain, cerr.Code)
}

func TestDuplicateVariableInBlock(t *testing.T) {
	cerr := checkErr(t, `int main() { int x = 1; int x = 2; return x; }`)
	assert.Equal(t, errors.CodeDuplicateVariable, cerr.Code)
}

func TestShadowingInNestedBlockIsAllowed(t *testing.T) {
	_, err := check(t, `int main() { int x = 1; { int x = 2; printInt(x); } return x; }`)
	assert.NoError(t, err)
}

func TestDuplicateParameter(t *testing.T) {
	cerr := checkErr(t, `int f(int a, int a) { return a; } int main() { return f(1, 2); }`)
	assert.Equal(t, errors.CodeDuplicateVariable, cerr.Code)
}

func TestVoidParameter(t *testing.T) {
	cerr := checkErr(t, `int f(void x) { return 0; } int main() { return f(); }`)
	assert.Equal(t, errors.CodeInvalidType, cerr.Code)
}

func TestVoidDeclaration(t *testing.T) {
	cerr := checkErr(t, `int main() { void x; return 0; }`)
	assert.Equal(t, errors.CodeInvalidType, cerr.Code)
}

func TestUndefinedVariable(t *testing.T) {
	cerr := checkErr(t, `int main() { return x; }`)
	assert.Equal(t, errors.CodeUndefinedVariable, cerr.Code)
}

func TestUndefinedFunction(t *testing.T) {
	cerr := checkErr(t, `int main() { return g(); }`)
	assert.Equal(t, errors.CodeUndefinedFunction, cerr.Code)
}

func TestArityMismatch(t *testing.T) {
	cerr := checkErr(t, `int f(int a) { return a; } int main() { return f(1, 2); }`)
	assert.Equal(t, errors.CodeInvalidCall, cerr.Code)
}

func TestArgumentTypeMismatch(t *testing.T) {
	cerr := checkErr(t, `int f(int a) { return a; } int main() { return f(true); }`)
	assert.Equal(t, errors.CodeTypeMismatch, cerr.Code)
}

func TestReturnTypeMismatch(t *testing.T) {
	cerr := checkErr(t, `int main() { return true; }`)
	assert.Equal(t, errors.CodeTypeMismatch, cerr.Code)
}

func TestConditionMustBeBoolean(t *testing.T) {
	cerr := checkErr(t, `int main() { if (1) return 1; return 0; }`)
	assert.Equal(t, errors.CodeTypeMismatch, cerr.Code)
}

func TestMissingReturn(t *testing.T) {
	cerr := checkErr(t, `int main() { printInt(1); }`)
	assert.Equal(t, errors.CodeMissingReturn, cerr.Code)
}

func TestVoidFunctionGetsImplicitReturn(t *testing.T) {
	prog, err := check(t, `void f() { printInt(1); } int main() { f(); return 0; }`)
	require.NoError(t, err)
	for _, fn := range prog.Funcs {
		if u, ok := fn.(*ast.UserFunc); ok && u.Name == "f" {
			last := u.Body.Stmts[len(u.Body.Stmts)-1]
			_, isRet := last.(*ast.VoidReturnStmt)
			assert.True(t, isRet, "void function body should end in return;")
			return
		}
	}
	t.Fatal("f not retained")
}

func TestDeadCodeAfterReturnIsDropped(t *testing.T) {
	prog, err := check(t, `int main() { return 0; printInt(1); }`)
	require.NoError(t, err)
	assert.Len(t, mainFunc(t, prog).Body.Stmts, 1)
}

func TestIfElseBothReturningSatisfiesCoverage(t *testing.T) {
	_, err := check(t, `int main(){ if (readInt() > 0) { return 1; } else { return 2; } }`)
	assert.NoError(t, err)
}

func TestWhileTrueSatisfiesCoverage(t *testing.T) {
	prog, err := check(t, `int main() { while (true) {} }`)
	require.NoError(t, err)
	_, isLoop := mainFunc(t, prog).Body.Stmts[0].(*ast.LoopStmt)
	assert.True(t, isLoop, "while (true) should become the unconditional loop form")
}

func TestWhileFalseIsDroppedAndBreaksCoverage(t *testing.T) {
	cerr := checkErr(t, `int main() { while (false) { return 1; } }`)
	assert.Equal(t, errors.CodeMissingReturn, cerr.Code)
}

func TestConstantTrueIfCollapses(t *testing.T) {
	prog, err := check(t, `int main() { if (true) return 1; return 0; }`)
	require.NoError(t, err)
	stmts := mainFunc(t, prog).Body.Stmts
	require.Len(t, stmts, 1, "trailing return is dead once the branch is static")
	block, ok := stmts[0].(*ast.BlockStmt)
	require.True(t, ok)
	_, isRet := block.Stmts[0].(*ast.ReturnStmt)
	assert.True(t, isRet)
}

func TestConstantFalseIfElsePicksElse(t *testing.T) {
	prog, err := check(t, `int main() { if (2 > 3) { return 1; } else { return 2; } }`)
	require.NoError(t, err)
	stmts := mainFunc(t, prog).Body.Stmts
	require.Len(t, stmts, 1)
	block := stmts[0].(*ast.BlockStmt)
	ret := block.Stmts[0].(*ast.ReturnStmt)
	assert.Equal(t, int64(2), ret.Value.(*ast.IntLit).Value)
}

func TestArrayTyping(t *testing.T) {
	_, err := check(t, `int main() {
		int[] a = new int[3];
		a[0] = 7;
		return a[0] + a.length;
	}`)
	assert.NoError(t, err)
}

func TestArrayElementTypeMismatch(t *testing.T) {
	cerr := checkErr(t, `int main() { int[] a = new int[3]; a[0] = true; return 0; }`)
	assert.Equal(t, errors.CodeTypeMismatch, cerr.Code)
}

func TestIndexMustBeInt(t *testing.T) {
	cerr := checkErr(t, `int main() { int[] a = new int[3]; return a[true]; }`)
	assert.Equal(t, errors.CodeTypeMismatch, cerr.Code)
}

func TestIndexingNonArray(t *testing.T) {
	cerr := checkErr(t, `int main() { int a = 1; return a[0]; }`)
	assert.Equal(t, errors.CodeTypeMismatch, cerr.Code)
}

func TestInvalidAttribute(t *testing.T) {
	cerr := checkErr(t, `int main() { int[] a = new int[3]; return a.len; }`)
	assert.Equal(t, errors.CodeInvalidAttribute, cerr.Code)
}

func TestForEachChecks(t *testing.T) {
	_, err := check(t, `int main() {
		int[] a = new int[4];
		int s = 0;
		for (int x : a) s = s + x;
		return s;
	}`)
	assert.NoError(t, err)
}

func TestForEachElementTypeMismatch(t *testing.T) {
	cerr := checkErr(t, `int main() {
		int[] a = new int[4];
		for (boolean x : a) printInt(1);
		return 0;
	}`)
	assert.Equal(t, errors.CodeTypeMismatch, cerr.Code)
}
