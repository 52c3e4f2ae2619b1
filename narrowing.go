package main

// NarrowingResult carries the types a boolean condition implies for each
// branch. Both maps empty means the condition has no narrowable form.
type NarrowingResult struct {
	Then map[string]*TypeNode
	Else map[string]*TypeNode
}

func emptyNarrowing() NarrowingResult {
	return NarrowingResult{Then: map[string]*TypeNode{}, Else: map[string]*TypeNode{}}
}

// AnalyzeNarrowing inspects the shape of a condition expression and derives
// the narrowing each branch can assume. Unrecognized shapes yield an empty
// result, never an error: narrowing is a precision aid, not a correctness
// requirement.
//
// Recognized forms:
//
//	typeof x == "kind" / typeof x != "kind"
//	x instanceof C
//	x == null / x != null
func (ie *InferenceEngine) AnalyzeNarrowing(cond *ASTNode) NarrowingResult {
	result := emptyNarrowing()
	if cond == nil || cond.Kind != NodeBinary {
		return result
	}

	switch cond.Op {
	case "==", "!=":
		lhs, rhs := cond.Children[0], cond.Children[1]

		// typeof x == "kind" (either operand order)
		if name, kind, ok := typeofComparison(lhs, rhs); ok {
			narrowed := ie.narrowToKind(name, kind)
			if narrowed == nil {
				return result
			}
			if cond.Op == "==" {
				// The else branch stays unnarrowed: the complement of a
				// single type is not always representable.
				result.Then[name] = narrowed
			} else {
				result.Else[name] = narrowed
			}
			return result
		}

		// x == null / x != null (either operand order)
		if name, ok := nullComparison(lhs, rhs); ok {
			declared := ie.EffectiveType(name)
			if declared == nil || !containsNull(declared) {
				return result
			}
			nonNull := nonNullType(declared)
			if cond.Op == "!=" {
				result.Then[name] = nonNull
				result.Else[name] = TypeNull
			} else {
				result.Then[name] = TypeNull
				result.Else[name] = nonNull
			}
			return result
		}

	case "instanceof":
		lhs, rhs := cond.Children[0], cond.Children[1]
		if lhs.Kind != NodeIdent || rhs.Kind != NodeIdent {
			return result
		}
		sym := ie.symbols.Lookup(rhs.String)
		if sym == nil || sym.Kind != SymbolClass {
			return result
		}
		result.Then[lhs.String] = sym.Type
		return result
	}

	return result
}

// typeofComparison matches `typeof <ident>` against a string literal on
// either side and returns the variable name and kind string.
func typeofComparison(a, b *ASTNode) (name, kind string, ok bool) {
	if isTypeofIdent(a) && b.Kind == NodeString {
		return a.Children[0].String, b.String, true
	}
	if isTypeofIdent(b) && a.Kind == NodeString {
		return b.Children[0].String, a.String, true
	}
	return "", "", false
}

func isTypeofIdent(n *ASTNode) bool {
	return n.Kind == NodeUnary && n.Op == "typeof" &&
		len(n.Children) == 1 && n.Children[0].Kind == NodeIdent
}

// nullComparison matches `<ident> == null` with the literal on either side.
func nullComparison(a, b *ASTNode) (name string, ok bool) {
	if a.Kind == NodeIdent && b.Kind == NodeNull {
		return a.String, true
	}
	if b.Kind == NodeIdent && a.Kind == NodeNull {
		return b.String, true
	}
	return "", false
}

// narrowToKind computes the type `name` takes on when typeof reports `kind`.
// When the declared type is a union, the member matching the kind wins;
// otherwise the kind maps to its primitive. Compound kinds (array, map,
// function) only narrow by union-member selection.
func (ie *InferenceEngine) narrowToKind(name, kind string) *TypeNode {
	declared := ie.EffectiveType(name)
	if declared != nil {
		base := declared
		if base.Kind == TypeNullable {
			base = &TypeNode{Kind: TypeUnion, Members: []*TypeNode{base.Child, TypeNull}}
		}
		if base.Kind == TypeUnion {
			for _, m := range base.Members {
				if typeofKind(m) == kind {
					return m
				}
			}
		}
	}
	return typeofKindType(kind)
}
