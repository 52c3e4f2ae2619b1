package main

// InferenceEngine owns the narrowing-overlay stack and the common-type
// computation. The overlay is scoped independently of the symbol table's
// declaration scopes: narrowing shadows a declaration for the duration of a
// branch, it never mutates it.
type InferenceEngine struct {
	symbols  *SymbolTable
	overlays []map[string]*TypeNode
}

func NewInferenceEngine(symbols *SymbolTable) *InferenceEngine {
	return &InferenceEngine{symbols: symbols}
}

// PushNarrowingScope opens a new overlay frame.
func (ie *InferenceEngine) PushNarrowingScope() {
	ie.overlays = append(ie.overlays, map[string]*TypeNode{})
}

// PopNarrowingScope discards the innermost overlay frame.
func (ie *InferenceEngine) PopNarrowingScope() {
	if len(ie.overlays) > 0 {
		ie.overlays = ie.overlays[:len(ie.overlays)-1]
	}
}

// NarrowingDepth returns the number of open overlay frames.
func (ie *InferenceEngine) NarrowingDepth() int {
	return len(ie.overlays)
}

// SetNarrowedType records a narrowed type in the innermost overlay frame.
func (ie *InferenceEngine) SetNarrowedType(name string, typ *TypeNode) {
	if len(ie.overlays) > 0 {
		ie.overlays[len(ie.overlays)-1][name] = typ
	}
}

// NarrowedType looks up a narrowed type, innermost frame first.
func (ie *InferenceEngine) NarrowedType(name string) (*TypeNode, bool) {
	for i := len(ie.overlays) - 1; i >= 0; i-- {
		if typ, ok := ie.overlays[i][name]; ok {
			return typ, true
		}
	}
	return nil, false
}

// EffectiveType is the narrowing-aware view of a name: the overlay stack is
// consulted before falling back to the symbol table's declared type.
func (ie *InferenceEngine) EffectiveType(name string) *TypeNode {
	if typ, ok := ie.NarrowedType(name); ok {
		return typ
	}
	if sym := ie.symbols.Lookup(name); sym != nil {
		return sym.Type
	}
	return nil
}

// CommonType computes a single representative type for a list of candidates
// (every return expression's type across a function body). Empty list means
// void. Structurally identical candidates collapse; numeric candidates widen
// pairwise (int,int -> int, anything involving float -> float); otherwise the
// distinct candidates form a union, first-appearance order preserved.
func CommonType(candidates []*TypeNode) *TypeNode {
	if len(candidates) == 0 {
		return TypeVoid
	}
	result := candidates[0]
	for _, next := range candidates[1:] {
		result = widenPair(result, next)
	}
	return result
}

func widenPair(a, b *TypeNode) *TypeNode {
	if TypesEqual(a, b) {
		return a
	}
	if isNumericType(a) && isNumericType(b) {
		if isFloatType(a) || isFloatType(b) {
			return TypeFloat
		}
		return TypeInt
	}
	return MakeUnion([]*TypeNode{a, b})
}
