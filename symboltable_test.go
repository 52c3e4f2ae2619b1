package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestBuiltinsPreSeeded(t *testing.T) {
	st := NewSymbolTable()

	intSym := st.Lookup("int")
	be.Equal(t, intSym.Kind, SymbolTypeAlias)
	be.Equal(t, intSym.Type, TypeInt)

	be.Equal(t, st.Lookup("f64").Type, primitiveNames["f64"])
	be.Equal(t, st.Lookup("Date").Type, TypeDate)
	be.Equal(t, st.Lookup("Regex").Type, TypeRegex)
	be.Equal(t, st.Lookup("Error").Type, TypeErr)

	var missing *Symbol
	be.Equal(t, st.Lookup("nope"), missing)
}

func TestDefineAndLookup(t *testing.T) {
	st := NewSymbolTable()
	st.Define("x", SymbolVariable, TypeInt, false, nil)

	sym := st.Lookup("x")
	be.Equal(t, sym.Name, "x")
	be.Equal(t, sym.Kind, SymbolVariable)
	be.Equal(t, sym.Type, TypeInt)
	be.True(t, !sym.Constant)
}

func TestScopeShadowing(t *testing.T) {
	st := NewSymbolTable()
	st.Define("x", SymbolVariable, TypeInt, false, nil)

	st.EnterScope()
	st.Define("x", SymbolVariable, TypeStr, false, nil)
	be.Equal(t, st.Lookup("x").Type, TypeStr)

	st.ExitScope()
	be.Equal(t, st.Lookup("x").Type, TypeInt)
}

func TestLookupCurrentScope(t *testing.T) {
	st := NewSymbolTable()
	st.Define("outer", SymbolVariable, TypeInt, false, nil)

	st.EnterScope()
	st.Define("inner", SymbolVariable, TypeStr, false, nil)

	// Only the innermost scope is visible.
	var missing *Symbol
	be.Equal(t, st.LookupCurrentScope("outer"), missing)
	be.Equal(t, st.LookupCurrentScope("inner").Type, TypeStr)

	// Regular lookup still sees both.
	be.Equal(t, st.Lookup("outer").Type, TypeInt)
}

func TestDepthAndRootScope(t *testing.T) {
	st := NewSymbolTable()
	be.Equal(t, st.Depth(), 1)

	st.EnterScope()
	st.EnterScope()
	be.Equal(t, st.Depth(), 3)

	st.ExitScope()
	st.ExitScope()
	be.Equal(t, st.Depth(), 1)

	// The root scope survives extra pops.
	st.ExitScope()
	be.Equal(t, st.Depth(), 1)
	be.Equal(t, st.Lookup("int").Type, TypeInt)
}

func TestUpdate(t *testing.T) {
	st := NewSymbolTable()
	st.Define("x", SymbolVariable, TypeInt, false, nil)

	err := st.Update("x", TypeFloat)
	be.Err(t, err, nil)
	be.Equal(t, st.Lookup("x").Type, TypeFloat)
}

func TestUpdateConstant(t *testing.T) {
	st := NewSymbolTable()
	st.Define("limit", SymbolVariable, TypeInt, true, nil)

	err := st.Update("limit", TypeFloat)
	be.Equal(t, err.Error(), "cannot reassign constant 'limit'")
	be.Equal(t, st.Lookup("limit").Type, TypeInt)
}

func TestUpdateUndefined(t *testing.T) {
	st := NewSymbolTable()
	err := st.Update("ghost", TypeInt)
	be.Equal(t, err.Error(), "undefined symbol 'ghost'")
}

func TestUpdateValue(t *testing.T) {
	st := NewSymbolTable()
	st.Define("x", SymbolVariable, TypeInt, false, nil)

	err := st.UpdateValue("x", int64(42))
	be.Err(t, err, nil)
	be.Equal[any](t, st.Lookup("x").Value, int64(42))

	st.Define("c", SymbolVariable, TypeInt, true, nil)
	err = st.UpdateValue("c", int64(1))
	be.Equal(t, err.Error(), "cannot reassign constant 'c'")
}

func TestUpdateFindsNearest(t *testing.T) {
	st := NewSymbolTable()
	st.Define("x", SymbolVariable, TypeInt, false, nil)

	st.EnterScope()
	st.Define("x", SymbolVariable, TypeStr, false, nil)

	err := st.Update("x", TypeBool)
	be.Err(t, err, nil)
	be.Equal(t, st.Lookup("x").Type, TypeBool)

	st.ExitScope()
	be.Equal(t, st.Lookup("x").Type, TypeInt)
}
