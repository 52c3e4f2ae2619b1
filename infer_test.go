package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestCommonType(t *testing.T) {
	tests := []struct {
		candidates []*TypeNode
		want       string
	}{
		{nil, "void"},
		{[]*TypeNode{TypeInt}, "int"},
		{[]*TypeNode{TypeInt, TypeInt}, "int"},
		{[]*TypeNode{TypeInt, TypeFloat}, "float"},
		{[]*TypeNode{TypeFloat, TypeInt}, "float"},
		{[]*TypeNode{primitiveNames["i8"], primitiveNames["i32"]}, "int"},
		{[]*TypeNode{TypeInt, TypeStr}, "int | str"},
		{[]*TypeNode{TypeStr, TypeInt, TypeStr}, "str | int"},
		{[]*TypeNode{TypeInt, TypeStr, TypeBool}, "int | str | bool"},
		{[]*TypeNode{arrayOf(TypeInt), arrayOf(TypeInt)}, "int[]"},
	}

	for _, tt := range tests {
		be.Equal(t, TypeToString(CommonType(tt.candidates)), tt.want)
	}
}

func TestOverlayStack(t *testing.T) {
	ie := NewInferenceEngine(NewSymbolTable())
	be.Equal(t, ie.NarrowingDepth(), 0)

	ie.PushNarrowingScope()
	ie.SetNarrowedType("x", TypeStr)
	be.Equal(t, ie.NarrowingDepth(), 1)

	typ, ok := ie.NarrowedType("x")
	be.True(t, ok)
	be.Equal(t, typ, TypeStr)

	ie.PopNarrowingScope()
	_, ok = ie.NarrowedType("x")
	be.True(t, !ok)
	be.Equal(t, ie.NarrowingDepth(), 0)

	// Popping an empty stack is harmless.
	ie.PopNarrowingScope()
	be.Equal(t, ie.NarrowingDepth(), 0)
}

func TestNarrowedTypeInnermostWins(t *testing.T) {
	ie := NewInferenceEngine(NewSymbolTable())
	ie.PushNarrowingScope()
	ie.SetNarrowedType("x", TypeStr)
	ie.PushNarrowingScope()
	ie.SetNarrowedType("x", TypeInt)

	typ, ok := ie.NarrowedType("x")
	be.True(t, ok)
	be.Equal(t, typ, TypeInt)

	ie.PopNarrowingScope()
	typ, _ = ie.NarrowedType("x")
	be.Equal(t, typ, TypeStr)
}

func TestSetNarrowedTypeWithoutScope(t *testing.T) {
	ie := NewInferenceEngine(NewSymbolTable())
	// No frame open: the write is dropped, not panicking.
	ie.SetNarrowedType("x", TypeStr)
	_, ok := ie.NarrowedType("x")
	be.True(t, !ok)
}

func TestEffectiveType(t *testing.T) {
	st := NewSymbolTable()
	st.Define("x", SymbolVariable, nullableOf(TypeStr), false, nil)
	ie := NewInferenceEngine(st)

	// Falls back to the declared type.
	be.Equal(t, TypeToString(ie.EffectiveType("x")), "str?")

	// The overlay shadows the declaration without mutating it.
	ie.PushNarrowingScope()
	ie.SetNarrowedType("x", TypeStr)
	be.Equal(t, ie.EffectiveType("x"), TypeStr)
	be.Equal(t, TypeToString(st.Lookup("x").Type), "str?")

	ie.PopNarrowingScope()
	be.Equal(t, TypeToString(ie.EffectiveType("x")), "str?")

	var nilType *TypeNode
	be.Equal(t, ie.EffectiveType("ghost"), nilType)
}
