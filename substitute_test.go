package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func tparam(name string) *TypeNode { return &TypeNode{Kind: TypeParam, String: name} }

func TestSubstituteLeaf(t *testing.T) {
	s := NewSubstitutor(map[string]*TypeNode{"T": TypeInt})

	be.Equal(t, s.Substitute(tparam("T")), TypeInt)
	// Unbound parameters survive unchanged.
	be.Equal(t, s.Substitute(tparam("U")), tparam("U"))
	// Primitives are untouched.
	be.Equal(t, s.Substitute(TypeStr), TypeStr)
	var nilType *TypeNode
	be.Equal(t, s.Substitute(nil), nilType)
}

func TestSubstituteComposites(t *testing.T) {
	s := NewSubstitutor(map[string]*TypeNode{"T": TypeInt, "U": TypeStr})

	tests := []struct {
		typ  *TypeNode
		want string
	}{
		{arrayOf(tparam("T")), "int[]"},
		{nullableOf(tparam("T")), "int?"},
		{&TypeNode{Kind: TypeMap, Key: tparam("U"), Value: tparam("T")}, "map<str, int>"},
		{&TypeNode{Kind: TypeFuture, Child: tparam("T")}, "future<int>"},
		{&TypeNode{Kind: TypeUnion, Members: []*TypeNode{tparam("T"), TypeNull}}, "int | null"},
		{&TypeNode{Kind: TypeFunc, Params: []*TypeNode{tparam("T")}, Return: tparam("U")}, "(int) => str"},
		{&TypeNode{Kind: TypeGeneric, Base: &TypeNode{Kind: TypeRef, String: "Box"}, Args: []*TypeNode{tparam("T")}}, "Box<int>"},
	}

	for _, tt := range tests {
		be.Equal(t, TypeToString(s.Substitute(tt.typ)), tt.want)
	}
}

func TestSubstituteClosesClass(t *testing.T) {
	box := &TypeNode{
		Kind:       TypeClass,
		String:     "Box",
		TypeParams: []string{"T"},
		Fields:     []TypeField{{Name: "value", Type: tparam("T")}},
		Methods: []TypeField{{
			Name: "get",
			Type: &TypeNode{Kind: TypeFunc, Return: tparam("T")},
		}},
		Ctor: &TypeNode{Kind: TypeFunc, Params: []*TypeNode{tparam("T")}, Return: TypeVoid},
	}

	s := NewSubstitutor(map[string]*TypeNode{"T": TypeInt})
	closed := s.Substitute(box)

	be.Equal(t, closed.String, "Box")
	be.Equal(t, len(closed.TypeParams), 0)
	be.Equal(t, closed.Fields[0].Type, TypeInt)
	be.Equal(t, closed.Methods[0].Type.Return, TypeInt)
	be.Equal(t, closed.Ctor.Params[0], TypeInt)

	// The open template is untouched.
	be.Equal(t, box.TypeParams, []string{"T"})
	be.Equal(t, box.Fields[0].Type, tparam("T"))
}

func TestSubstituteClosedClassPassesThrough(t *testing.T) {
	cat := &TypeNode{Kind: TypeClass, String: "Cat", Fields: []TypeField{{Name: "name", Type: TypeStr}}}
	s := NewSubstitutor(map[string]*TypeNode{"T": TypeInt})
	be.Equal(t, s.Substitute(cat), cat)
}

func TestSubstitutorFromParams(t *testing.T) {
	s := NewSubstitutorFromParams([]string{"K", "V"}, []*TypeNode{TypeStr, TypeInt})
	be.Equal(t, s.Substitute(tparam("K")), TypeStr)
	be.Equal(t, s.Substitute(tparam("V")), TypeInt)

	// Missing arguments leave trailing parameters unbound.
	partial := NewSubstitutorFromParams([]string{"K", "V"}, []*TypeNode{TypeStr})
	be.Equal(t, partial.Substitute(tparam("K")), TypeStr)
	be.Equal(t, partial.Substitute(tparam("V")), tparam("V"))
}
