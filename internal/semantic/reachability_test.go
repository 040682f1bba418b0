package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latte/internal/ast"
)

func funcNames(prog *ast.Program) []string {
	names := make([]string, len(prog.Funcs))
	for i, f := range prog.Funcs {
		names[i] = f.FuncName()
	}
	return names
}

func TestUnusedFunctionsArePruned(t *testing.T) {
	prog, err := check(t, `
		int unused() { return 42; }
		int main() { return 0; }
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, funcNames(prog))
}

func TestUnusedBuiltinsArePruned(t *testing.T) {
	prog, err := check(t, `int main() { printInt(7); return 0; }`)
	require.NoError(t, err)
	assert.Equal(t, []string{"printInt", "main"}, funcNames(prog))
}

func TestTransitiveCallsAreKept(t *testing.T) {
	prog, err := check(t, `
		int h() { return readInt(); }
		int g() { return h(); }
		int main() { return g(); }
	`)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"readInt", "h", "g", "main"}, funcNames(prog))
}

func TestRecursionIsKept(t *testing.T) {
	prog, err := check(t, `
		int f(int n) { if (n <= 1) return 1; return n * f(n - 1); }
		int main() { return f(5); }
	`)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"f", "main"}, funcNames(prog))
}

func TestStringConcatKeepsHelper(t *testing.T) {
	prog, err := check(t, `int main() { string a = "x"; printString(a + "y"); return 0; }`)
	require.NoError(t, err)
	assert.Equal(t, []string{"printString", ast.AddStringsFunc, "main"}, funcNames(prog))
}

func TestStringCompareKeepsHelper(t *testing.T) {
	prog, err := check(t, `int main() {
		string a = readString();
		if (a == "quit") return 1;
		return 0;
	}`)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"readString", ast.CompareStringsFunc, "main"}, funcNames(prog))
}

func TestFoldedStringOpsNeedNoHelper(t *testing.T) {
	// A fully constant concatenation folds away before reachability runs.
	prog, err := check(t, `int main() { printString("hi" + "!"); return 0; }`)
	require.NoError(t, err)
	assert.Equal(t, []string{"printString", "main"}, funcNames(prog))
}

func TestCallsFromDeadBranchesDoNotCount(t *testing.T) {
	// Dead-branch pruning runs before reachability, so a call that only
	// exists under `if (false)` does not retain its callee.
	prog, err := check(t, `
		int g() { return 1; }
		int main() { if (false) { return g(); } return 0; }
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, funcNames(prog))
}
