package main

import "strings"

// TypeKind discriminates TypeNode variants
type TypeKind string

const (
	TypePrimitive TypeKind = "TypePrimitive"
	TypeArray     TypeKind = "TypeArray"
	TypeMap       TypeKind = "TypeMap"
	TypeNullable  TypeKind = "TypeNullable"
	TypeUnion     TypeKind = "TypeUnion"
	TypeFunc      TypeKind = "TypeFunc"
	TypeFuture    TypeKind = "TypeFuture"
	TypeGeneric   TypeKind = "TypeGeneric"
	TypeParam     TypeKind = "TypeParam"
	TypeRef       TypeKind = "TypeRef"
	TypeClass     TypeKind = "TypeClass"
	TypeInterface TypeKind = "TypeInterface"
	TypeEnum      TypeKind = "TypeEnum"
)

// TypeField is a named member of a class or interface.
type TypeField struct {
	Name string
	Type *TypeNode
}

// TypeNode represents a type expression or a fully resolved type.
// Trees are built top-down once and never form cycles, so plain pointers
// with unique ownership are enough.
type TypeNode struct {
	Kind   TypeKind
	String string // primitive name, ref/param name, or class/interface/enum name

	Child *TypeNode // TypeArray element, TypeNullable/TypeFuture inner
	Key   *TypeNode // TypeMap key
	Value *TypeNode // TypeMap value

	Members []*TypeNode // TypeUnion members (insertion order preserved)

	Params   []*TypeNode // TypeFunc parameter types
	Return   *TypeNode   // TypeFunc return type
	Variadic bool

	Base *TypeNode   // TypeGeneric base
	Args []*TypeNode // TypeGeneric type arguments

	Super      *TypeNode   // TypeClass superclass
	Fields     []TypeField // TypeClass/TypeInterface properties
	Methods    []TypeField // TypeClass/TypeInterface methods (TypeFunc each)
	Ctor       *TypeNode   // TypeClass constructor signature (TypeFunc)
	TypeParams []string    // open generic parameters; empty once instantiated

	EnumMembers []string // TypeEnum member names
}

// Built-in primitive types. Shared singletons; never mutated.
var (
	TypeInt     = &TypeNode{Kind: TypePrimitive, String: "int"}
	TypeFloat   = &TypeNode{Kind: TypePrimitive, String: "float"}
	TypeDecimal = &TypeNode{Kind: TypePrimitive, String: "decimal"}
	TypeStr     = &TypeNode{Kind: TypePrimitive, String: "str"}
	TypeBool    = &TypeNode{Kind: TypePrimitive, String: "bool"}
	TypeNull    = &TypeNode{Kind: TypePrimitive, String: "null"}
	TypeVoid    = &TypeNode{Kind: TypePrimitive, String: "void"}
	TypeAny     = &TypeNode{Kind: TypePrimitive, String: "any"}
	TypeUnk     = &TypeNode{Kind: TypePrimitive, String: "unknown"}
	TypeSymbol  = &TypeNode{Kind: TypePrimitive, String: "symbol"}
	TypeDate    = &TypeNode{Kind: TypePrimitive, String: "date"}
	TypeRegex   = &TypeNode{Kind: TypePrimitive, String: "regex"}
	TypeErr     = &TypeNode{Kind: TypePrimitive, String: "error"}
)

// sizedNumericNames lists the sized numeric primitives (i8..u64, f32/f64).
var sizedNumericNames = []string{"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64"}

// primitiveNames maps every primitive type name to its singleton.
var primitiveNames = buildPrimitiveNames()

func buildPrimitiveNames() map[string]*TypeNode {
	m := map[string]*TypeNode{
		"int": TypeInt, "float": TypeFloat, "decimal": TypeDecimal,
		"str": TypeStr, "bool": TypeBool, "null": TypeNull, "void": TypeVoid,
		"any": TypeAny, "unknown": TypeUnk, "symbol": TypeSymbol,
		"date": TypeDate, "regex": TypeRegex, "error": TypeErr,
	}
	for _, name := range sizedNumericNames {
		m[name] = &TypeNode{Kind: TypePrimitive, String: name}
	}
	return m
}

// TypesEqual reports structural equality. Union members compare set-like:
// order does not matter, duplicates have already been collapsed by MakeUnion.
func TypesEqual(a, b *TypeNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TypePrimitive, TypeRef, TypeParam:
		return a.String == b.String
	case TypeArray, TypeNullable, TypeFuture:
		return TypesEqual(a.Child, b.Child)
	case TypeMap:
		return TypesEqual(a.Key, b.Key) && TypesEqual(a.Value, b.Value)
	case TypeUnion:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for _, m := range a.Members {
			if !unionContains(b, m) {
				return false
			}
		}
		return true
	case TypeFunc:
		if len(a.Params) != len(b.Params) || a.Variadic != b.Variadic {
			return false
		}
		for i := range a.Params {
			if !TypesEqual(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return TypesEqual(a.Return, b.Return)
	case TypeGeneric:
		if len(a.Args) != len(b.Args) || !TypesEqual(a.Base, b.Base) {
			return false
		}
		for i := range a.Args {
			if !TypesEqual(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case TypeClass, TypeInterface, TypeEnum:
		// Nominal: declarations are unique per name.
		return a.String == b.String
	}
	return false
}

func unionContains(u *TypeNode, t *TypeNode) bool {
	for _, m := range u.Members {
		if TypesEqual(m, t) {
			return true
		}
	}
	return false
}

// MakeUnion builds a union from candidates, collapsing structural duplicates
// and preserving first-appearance order. A single distinct member is returned
// as itself, not wrapped.
func MakeUnion(members []*TypeNode) *TypeNode {
	var distinct []*TypeNode
	for _, m := range members {
		// Flatten nested unions so membership stays set-like.
		if m.Kind == TypeUnion {
			for _, inner := range m.Members {
				if !containsType(distinct, inner) {
					distinct = append(distinct, inner)
				}
			}
			continue
		}
		if !containsType(distinct, m) {
			distinct = append(distinct, m)
		}
	}
	if len(distinct) == 1 {
		return distinct[0]
	}
	return &TypeNode{Kind: TypeUnion, Members: distinct}
}

func containsType(list []*TypeNode, t *TypeNode) bool {
	for _, m := range list {
		if TypesEqual(m, t) {
			return true
		}
	}
	return false
}

// TypeToString renders a type for diagnostics.
func TypeToString(t *TypeNode) string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TypePrimitive, TypeRef, TypeParam, TypeEnum:
		return t.String
	case TypeArray:
		return typeToStringChild(t.Child) + "[]"
	case TypeMap:
		return "map<" + TypeToString(t.Key) + ", " + TypeToString(t.Value) + ">"
	case TypeNullable:
		return typeToStringChild(t.Child) + "?"
	case TypeUnion:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = TypeToString(m)
		}
		return strings.Join(parts, " | ")
	case TypeFunc:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = TypeToString(p)
		}
		s := "(" + strings.Join(parts, ", ")
		if t.Variadic {
			s += "..."
		}
		return s + ") => " + TypeToString(t.Return)
	case TypeFuture:
		return "future<" + TypeToString(t.Child) + ">"
	case TypeGeneric:
		parts := make([]string, len(t.Args))
		for i, arg := range t.Args {
			parts[i] = TypeToString(arg)
		}
		return TypeToString(t.Base) + "<" + strings.Join(parts, ", ") + ">"
	case TypeClass, TypeInterface:
		if len(t.TypeParams) > 0 {
			return t.String + "<" + strings.Join(t.TypeParams, ", ") + ">"
		}
		return t.String
	}
	return string(t.Kind)
}

// typeToStringChild parenthesizes a union under a postfix constructor so
// (int | str)[] stays distinct from int | str[].
func typeToStringChild(t *TypeNode) string {
	s := TypeToString(t)
	if t != nil && t.Kind == TypeUnion {
		return "(" + s + ")"
	}
	return s
}

// numericRank orders numeric primitives for widening: any pairing that
// involves a float-family type widens to float.
func isNumericType(t *TypeNode) bool {
	if t == nil || t.Kind != TypePrimitive {
		return false
	}
	switch t.String {
	case "int", "float", "decimal", "i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64":
		return true
	}
	return false
}

func isFloatType(t *TypeNode) bool {
	if t == nil || t.Kind != TypePrimitive {
		return false
	}
	switch t.String {
	case "float", "f32", "f64", "decimal":
		return true
	}
	return false
}

func isAnyType(t *TypeNode) bool {
	return t != nil && t.Kind == TypePrimitive && (t.String == "any" || t.String == "unknown")
}

func isNullType(t *TypeNode) bool {
	return t != nil && t.Kind == TypePrimitive && t.String == "null"
}

// containsNull reports whether t can hold null: it is null itself, a
// nullable, or a union with a null member.
func containsNull(t *TypeNode) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TypeNullable:
		return true
	case TypePrimitive:
		return t.String == "null"
	case TypeUnion:
		for _, m := range t.Members {
			if containsNull(m) {
				return true
			}
		}
	}
	return false
}

// nonNullType strips the null possibility from t: T? yields T, a union
// drops its null members (collapsing to a single member when one remains).
func nonNullType(t *TypeNode) *TypeNode {
	switch t.Kind {
	case TypeNullable:
		return t.Child
	case TypeUnion:
		var rest []*TypeNode
		for _, m := range t.Members {
			if !isNullType(m) {
				rest = append(rest, m)
			}
		}
		if len(rest) == 0 {
			return TypeNull
		}
		return MakeUnion(rest)
	}
	return t
}

// typeofKind returns the runtime kind string a typeof expression would
// produce for values of type t, or "" when t has no single kind.
func typeofKind(t *TypeNode) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypePrimitive:
		switch t.String {
		case "any", "unknown", "void":
			return ""
		case "i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64":
			return "int"
		case "f32", "f64":
			return "float"
		}
		return t.String
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	case TypeFunc:
		return "function"
	case TypeClass:
		return "object"
	}
	return ""
}

// typeofKindType maps a typeof kind string to the primitive it denotes.
// Compound kinds (array, map, function, object) have no standalone type and
// return nil; they only narrow by selecting a matching union member.
func typeofKindType(kind string) *TypeNode {
	switch kind {
	case "int":
		return TypeInt
	case "float":
		return TypeFloat
	case "decimal":
		return TypeDecimal
	case "str":
		return TypeStr
	case "bool":
		return TypeBool
	case "null":
		return TypeNull
	case "symbol":
		return TypeSymbol
	case "date":
		return TypeDate
	case "regex":
		return TypeRegex
	case "error":
		return TypeErr
	}
	return nil
}

// typeAssignable reports whether a value of type src may inhabit dst.
// Deliberately permissive where the runtime stays dynamic: any/unknown are
// compatible in both directions.
func typeAssignable(dst, src *TypeNode) bool {
	if dst == nil || src == nil {
		return true
	}
	if isAnyType(dst) || isAnyType(src) {
		return true
	}
	// Unconstrained type parameters accept anything.
	if dst.Kind == TypeParam || src.Kind == TypeParam {
		return true
	}
	if TypesEqual(dst, src) {
		return true
	}
	// int widens to float on assignment.
	if isFloatType(dst) && isNumericType(src) {
		return true
	}
	switch dst.Kind {
	case TypeNullable:
		return isNullType(src) || typeAssignable(dst.Child, src)
	case TypeUnion:
		for _, m := range dst.Members {
			if typeAssignable(m, src) {
				return true
			}
		}
		return false
	case TypeArray:
		if src.Kind == TypeArray {
			return typeAssignable(dst.Child, src.Child)
		}
	case TypeMap:
		if src.Kind == TypeMap {
			return typeAssignable(dst.Key, src.Key) && typeAssignable(dst.Value, src.Value)
		}
	case TypeFuture:
		if src.Kind == TypeFuture {
			return typeAssignable(dst.Child, src.Child)
		}
	case TypeInterface:
		return satisfiesInterface(dst, src)
	case TypeClass:
		// A subclass inhabits its superclass type.
		for c := src; c != nil && c.Kind == TypeClass; c = c.Super {
			if c.String == dst.String {
				return true
			}
		}
	}
	return false
}

// satisfiesInterface checks that src carries every property and method the
// interface declares, with assignable types. Structural, shallow.
func satisfiesInterface(iface, src *TypeNode) bool {
	if src.Kind != TypeClass && src.Kind != TypeInterface {
		return false
	}
	for _, want := range iface.Fields {
		got := findField(src.Fields, want.Name)
		if got == nil || !typeAssignable(want.Type, got.Type) {
			return false
		}
	}
	for _, want := range iface.Methods {
		got := findField(src.Methods, want.Name)
		if got == nil || !typeAssignable(want.Type, got.Type) {
			return false
		}
	}
	return true
}

func findField(fields []TypeField, name string) *TypeField {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

// findMember looks up a property or method on a class/interface, walking the
// superclass chain for classes.
func findMember(t *TypeNode, name string) *TypeNode {
	for cur := t; cur != nil; {
		if f := findField(cur.Fields, name); f != nil {
			return f.Type
		}
		if m := findField(cur.Methods, name); m != nil {
			return m.Type
		}
		if cur.Kind == TypeClass {
			cur = cur.Super
		} else {
			break
		}
	}
	return nil
}
