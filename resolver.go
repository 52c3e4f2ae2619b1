package main

// ResolveType converts a possibly-unresolved type expression into a fully
// resolved type tree: after it returns successfully, the result contains no
// TypeRef nodes. Alias targets are resolved on first use and the resolved
// tree is stored back on the alias symbol, so a forward alias chain settles
// no matter which end is resolved first.
func ResolveType(st *SymbolTable, t *TypeNode, line, col int) (*TypeNode, error) {
	return resolveType(st, t, line, col, nil)
}

func resolveType(st *SymbolTable, t *TypeNode, line, col int, visiting map[string]bool) (*TypeNode, error) {
	if t == nil {
		return nil, nil
	}
	switch t.Kind {
	case TypeRef:
		sym := st.Lookup(t.String)
		if sym == nil {
			return nil, undefinedTypeError(t.String, line, col)
		}
		switch sym.Kind {
		case SymbolTypeAlias:
			if containsTypeRef(sym.Type) {
				// The alias still holds its raw target: it is declared after
				// the reference. Resolve it now and memoize, guarding against
				// aliases that form a cycle.
				if visiting[t.String] {
					return nil, semErrorf(line, col, "type alias cycle through '%s'", t.String)
				}
				if visiting == nil {
					visiting = map[string]bool{}
				}
				visiting[t.String] = true
				resolved, err := resolveType(st, sym.Type, line, col, visiting)
				delete(visiting, t.String)
				if err != nil {
					return nil, err
				}
				sym.Type = resolved
			}
			return sym.Type, nil
		case SymbolClass, SymbolInterface, SymbolEnum:
			// The stored node is shared and fixed up in place during
			// hoisting; return it verbatim rather than recursing.
			return sym.Type, nil
		}
		return nil, notATypeError(t.String, line, col)

	case TypeArray:
		elem, err := resolveType(st, t.Child, line, col, visiting)
		if err != nil {
			return nil, err
		}
		return &TypeNode{Kind: TypeArray, Child: elem}, nil

	case TypeMap:
		key, err := resolveType(st, t.Key, line, col, visiting)
		if err != nil {
			return nil, err
		}
		value, err := resolveType(st, t.Value, line, col, visiting)
		if err != nil {
			return nil, err
		}
		return &TypeNode{Kind: TypeMap, Key: key, Value: value}, nil

	case TypeNullable:
		inner, err := resolveType(st, t.Child, line, col, visiting)
		if err != nil {
			return nil, err
		}
		return &TypeNode{Kind: TypeNullable, Child: inner}, nil

	case TypeFuture:
		inner, err := resolveType(st, t.Child, line, col, visiting)
		if err != nil {
			return nil, err
		}
		return &TypeNode{Kind: TypeFuture, Child: inner}, nil

	case TypeUnion:
		// Members resolve independently; deduplication is a comparison and
		// display concern, not a resolution concern.
		members := make([]*TypeNode, len(t.Members))
		for i, m := range t.Members {
			resolved, err := resolveType(st, m, line, col, visiting)
			if err != nil {
				return nil, err
			}
			members[i] = resolved
		}
		return &TypeNode{Kind: TypeUnion, Members: members}, nil

	case TypeFunc:
		params := make([]*TypeNode, len(t.Params))
		for i, p := range t.Params {
			resolved, err := resolveType(st, p, line, col, visiting)
			if err != nil {
				return nil, err
			}
			params[i] = resolved
		}
		ret, err := resolveType(st, t.Return, line, col, visiting)
		if err != nil {
			return nil, err
		}
		return &TypeNode{Kind: TypeFunc, Params: params, Return: ret, Variadic: t.Variadic}, nil

	case TypeGeneric:
		// Resolved but not instantiated: substitution is an explicit,
		// separate step so a generic declaration's own body can still refer
		// to its type parameters abstractly.
		base, err := resolveType(st, t.Base, line, col, visiting)
		if err != nil {
			return nil, err
		}
		args := make([]*TypeNode, len(t.Args))
		for i, arg := range t.Args {
			resolved, err := resolveType(st, arg, line, col, visiting)
			if err != nil {
				return nil, err
			}
			args[i] = resolved
		}
		return &TypeNode{Kind: TypeGeneric, Base: base, Args: args}, nil
	}

	// Already concrete: primitives, classes, interfaces, enums, type params.
	return t, nil
}

// containsTypeRef reports whether a type expression still carries unresolved
// name references. Class and interface nodes are fixed up in place during
// hoisting and never nest inside a raw type expression, so only the
// expression shapes are walked.
func containsTypeRef(t *TypeNode) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TypeRef:
		return true
	case TypeArray, TypeNullable, TypeFuture:
		return containsTypeRef(t.Child)
	case TypeMap:
		return containsTypeRef(t.Key) || containsTypeRef(t.Value)
	case TypeUnion:
		for _, m := range t.Members {
			if containsTypeRef(m) {
				return true
			}
		}
	case TypeFunc:
		for _, p := range t.Params {
			if containsTypeRef(p) {
				return true
			}
		}
		return containsTypeRef(t.Return)
	case TypeGeneric:
		if containsTypeRef(t.Base) {
			return true
		}
		for _, arg := range t.Args {
			if containsTypeRef(arg) {
				return true
			}
		}
	}
	return false
}
