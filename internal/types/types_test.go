package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByName(t *testing.T) {
	for name, want := range map[string]*Type{
		"int":     Int,
		"boolean": Bool,
		"string":  Str,
		"void":    Void,
	} {
		got, ok := ByName(name)
		assert.True(t, ok, "ByName(%q) should resolve", name)
		assert.Same(t, want, got)
	}

	_, ok := ByName("float")
	assert.False(t, ok, "unknown type names should not resolve")
}

func TestArrayInterning(t *testing.T) {
	a := ArrayOf(Int)
	b := ArrayOf(Int)
	assert.Same(t, a, b, "array types must be interned for identity comparison")
	assert.True(t, a.IsArray())
	assert.Same(t, Int, a.Elem())
	assert.Equal(t, "int[]", a.String())
}

func TestNoVoidOrNestedArrays(t *testing.T) {
	assert.Nil(t, ArrayOf(Void), "void[] is not a type")
	assert.Nil(t, ArrayOf(ArrayOf(Int)), "arrays are one-dimensional")
}

func TestScalar(t *testing.T) {
	assert.True(t, Int.Scalar())
	assert.True(t, Bool.Scalar())
	assert.True(t, Str.Scalar())
	assert.False(t, Void.Scalar())
	assert.False(t, ArrayOf(Bool).Scalar())
}
