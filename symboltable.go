package main

// SymbolKind classifies what a name denotes.
type SymbolKind string

const (
	SymbolVariable  SymbolKind = "variable"
	SymbolFunction  SymbolKind = "function"
	SymbolClass     SymbolKind = "class"
	SymbolInterface SymbolKind = "interface"
	SymbolEnum      SymbolKind = "enum"
	SymbolTypeAlias SymbolKind = "type alias"
	SymbolParameter SymbolKind = "parameter"
	SymbolProperty  SymbolKind = "property"
	SymbolMethod    SymbolKind = "method"
)

// Symbol is one named entry in the symbol table.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Type     *TypeNode
	Constant bool
	Decl     *ASTNode    // defining statement, when there is one
	Value    interface{} // optionally bound compile-time value
}

// SymbolTable is a stack of scopes, innermost last. The root scope is
// created at construction, pre-seeded with every built-in type name, and is
// never popped.
type SymbolTable struct {
	scopes []map[string]*Symbol
}

func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{scopes: []map[string]*Symbol{{}}}
	for name, prim := range primitiveNames {
		st.Define(name, SymbolTypeAlias, prim, false, nil)
	}
	// Capitalized aliases for the non-numeric runtime types.
	st.Define("Date", SymbolTypeAlias, TypeDate, false, nil)
	st.Define("Regex", SymbolTypeAlias, TypeRegex, false, nil)
	st.Define("Error", SymbolTypeAlias, TypeErr, false, nil)
	return st
}

// EnterScope pushes a new innermost scope.
func (st *SymbolTable) EnterScope() {
	st.scopes = append(st.scopes, map[string]*Symbol{})
}

// ExitScope pops the innermost scope. The root scope is never popped.
func (st *SymbolTable) ExitScope() {
	if len(st.scopes) > 1 {
		st.scopes = st.scopes[:len(st.scopes)-1]
	}
}

// Depth returns the number of live scopes (1 = root only).
func (st *SymbolTable) Depth() int {
	return len(st.scopes)
}

// Define inserts a symbol into the current scope. Redefinition shadows
// silently: block scoping legitimately reuses names, and same-scope
// duplicate detection is the analyzer's job via LookupCurrentScope.
func (st *SymbolTable) Define(name string, kind SymbolKind, typ *TypeNode, constant bool, decl *ASTNode) *Symbol {
	sym := &Symbol{Name: name, Kind: kind, Type: typ, Constant: constant, Decl: decl}
	st.scopes[len(st.scopes)-1][name] = sym
	return sym
}

// Lookup walks scopes innermost to outermost and returns the first match.
func (st *SymbolTable) Lookup(name string) *Symbol {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i][name]; ok {
			return sym
		}
	}
	return nil
}

// LookupCurrentScope restricts lookup to the innermost scope.
func (st *SymbolTable) LookupCurrentScope(name string) *Symbol {
	sym := st.scopes[len(st.scopes)-1][name]
	return sym
}

// Update changes the declared type of the nearest symbol with this name.
func (st *SymbolTable) Update(name string, typ *TypeNode) error {
	sym := st.Lookup(name)
	if sym == nil {
		return undefinedSymbolError(name)
	}
	if sym.Constant {
		return constReassignmentError(name)
	}
	sym.Type = typ
	return nil
}

// UpdateValue changes the bound value of the nearest symbol with this name.
func (st *SymbolTable) UpdateValue(name string, value interface{}) error {
	sym := st.Lookup(name)
	if sym == nil {
		return undefinedSymbolError(name)
	}
	if sym.Constant {
		return constReassignmentError(name)
	}
	sym.Value = value
	return nil
}
