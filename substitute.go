package main

// Substitutor rewrites type trees, replacing type parameters with concrete
// types. Substituting into a class or interface that still carries type
// parameters closes it: the result has an empty type-parameter list and is a
// monomorphic instantiation, independently checkable per instantiation site.
type Substitutor struct {
	bindings map[string]*TypeNode
}

// NewSubstitutor builds a substitutor from an explicit name -> type mapping.
func NewSubstitutor(bindings map[string]*TypeNode) *Substitutor {
	return &Substitutor{bindings: bindings}
}

// NewSubstitutorFromParams zips type parameters with type arguments
// positionally. Parameters without a matching argument stay unbound.
func NewSubstitutorFromParams(params []string, args []*TypeNode) *Substitutor {
	bindings := make(map[string]*TypeNode, len(params))
	for i, name := range params {
		if i < len(args) {
			bindings[name] = args[i]
		}
	}
	return &Substitutor{bindings: bindings}
}

// Substitute rewrites t, replacing every bound TypeParam leaf.
func (s *Substitutor) Substitute(t *TypeNode) *TypeNode {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TypeParam:
		if bound, ok := s.bindings[t.String]; ok {
			return bound
		}
		return t

	case TypeArray:
		return &TypeNode{Kind: TypeArray, Child: s.Substitute(t.Child)}

	case TypeMap:
		return &TypeNode{Kind: TypeMap, Key: s.Substitute(t.Key), Value: s.Substitute(t.Value)}

	case TypeNullable:
		return &TypeNode{Kind: TypeNullable, Child: s.Substitute(t.Child)}

	case TypeFuture:
		return &TypeNode{Kind: TypeFuture, Child: s.Substitute(t.Child)}

	case TypeUnion:
		members := make([]*TypeNode, len(t.Members))
		for i, m := range t.Members {
			members[i] = s.Substitute(m)
		}
		return &TypeNode{Kind: TypeUnion, Members: members}

	case TypeFunc:
		params := make([]*TypeNode, len(t.Params))
		for i, p := range t.Params {
			params[i] = s.Substitute(p)
		}
		return &TypeNode{Kind: TypeFunc, Params: params, Return: s.Substitute(t.Return), Variadic: t.Variadic}

	case TypeGeneric:
		args := make([]*TypeNode, len(t.Args))
		for i, arg := range t.Args {
			args[i] = s.Substitute(arg)
		}
		return &TypeNode{Kind: TypeGeneric, Base: s.Substitute(t.Base), Args: args}

	case TypeClass, TypeInterface:
		if len(t.TypeParams) == 0 {
			// Already closed; nothing inside can mention a type parameter.
			return t
		}
		out := &TypeNode{
			Kind:        t.Kind,
			String:      t.String,
			Super:       t.Super,
			EnumMembers: t.EnumMembers,
			// Closed: an empty parameter list marks this as a monomorphic
			// instantiation, not an open template.
			TypeParams: nil,
		}
		out.Fields = make([]TypeField, len(t.Fields))
		for i, f := range t.Fields {
			out.Fields[i] = TypeField{Name: f.Name, Type: s.Substitute(f.Type)}
		}
		out.Methods = make([]TypeField, len(t.Methods))
		for i, m := range t.Methods {
			out.Methods[i] = TypeField{Name: m.Name, Type: s.Substitute(m.Type)}
		}
		out.Ctor = s.Substitute(t.Ctor)
		return out
	}

	// Primitives, enums, refs: no type-parameter dependency.
	return t
}
