package main

// Analyzer validates a parsed program before execution: scoped symbol
// resolution, type resolution, common-type inference, and flow-sensitive
// narrowing. Two passes: hoisting registers every top-level declaration's
// shape so forward references resolve, then the checking pass walks every
// statement. The first error aborts the whole pass.
type Analyzer struct {
	symbols   *SymbolTable
	inference *InferenceEngine
	file      string // diagnostic messages only

	currentFunc  *ASTNode
	currentClass *TypeNode
	inLoop       bool
	inAsync      bool

	returnAnnot *TypeNode   // declared return type of the current function
	returns     []*TypeNode // collected return types when unannotated
}

// NewAnalyzer builds an analyzer with a fresh, fully independent symbol
// table and inference engine. The file name is used only in diagnostics.
func NewAnalyzer(file string) *Analyzer {
	symbols := NewSymbolTable()
	return &Analyzer{
		symbols:   symbols,
		inference: NewInferenceEngine(symbols),
		file:      file,
	}
}

// AnalyzeSource parses and analyzes a null-terminated source buffer.
func AnalyzeSource(input []byte, file string) error {
	prog, err := ParseProgram(input)
	if err != nil {
		return stampFile(err, file)
	}
	return NewAnalyzer(file).Analyze(prog)
}

// Analyze checks a whole program. On success the execution stage may run the
// same AST; on failure it must not.
func (a *Analyzer) Analyze(program *ASTNode) error {
	for _, stmt := range program.Children {
		if err := a.registerDecl(unwrapExport(stmt)); err != nil {
			return stampFile(err, a.file)
		}
	}
	for _, stmt := range program.Children {
		if err := a.resolveDecl(unwrapExport(stmt)); err != nil {
			return stampFile(err, a.file)
		}
	}
	for _, stmt := range program.Children {
		if err := a.checkStatement(stmt); err != nil {
			return stampFile(err, a.file)
		}
	}
	return nil
}

// CheckChunk analyzes a program fragment against the analyzer's existing
// state, so a sequence of chunks shares one set of declarations. It returns
// the type of the trailing top-level expression statement, if any, which is
// what an interactive session reports back.
func (a *Analyzer) CheckChunk(prog *ASTNode) (*TypeNode, error) {
	for _, stmt := range prog.Children {
		if err := a.registerDecl(unwrapExport(stmt)); err != nil {
			return nil, stampFile(err, a.file)
		}
	}
	for _, stmt := range prog.Children {
		if err := a.resolveDecl(unwrapExport(stmt)); err != nil {
			return nil, stampFile(err, a.file)
		}
	}
	var last *TypeNode
	for i, stmt := range prog.Children {
		if i == len(prog.Children)-1 && isExpressionNode(stmt) {
			t, err := a.checkExpression(stmt)
			if err != nil {
				return nil, stampFile(err, a.file)
			}
			last = t
			break
		}
		if err := a.checkStatement(stmt); err != nil {
			return nil, stampFile(err, a.file)
		}
	}
	return last, nil
}

func isExpressionNode(n *ASTNode) bool {
	switch n.Kind {
	case NodeIdent, NodeInteger, NodeFloat, NodeString, NodeBool, NodeNull,
		NodeArrayLit, NodeMapLit, NodeBinary, NodeUnary, NodeCall,
		NodeIndex, NodeMember, NodeNew:
		return true
	}
	return false
}

func stampFile(err error, file string) error {
	if se, ok := err.(*SemanticError); ok && se.File == "" {
		se.File = file
	}
	return err
}

// errAt stamps a position-less error (from the symbol table) with the
// offending node's position.
func errAt(err error, node *ASTNode) error {
	if se, ok := err.(*SemanticError); ok && se.Line == 0 {
		se.Line, se.Col = node.Line, node.Col
	}
	return err
}

func unwrapExport(stmt *ASTNode) *ASTNode {
	if stmt.Kind == NodeExport && len(stmt.Children) == 1 {
		return stmt.Children[0]
	}
	return stmt
}

// ---------------------------------------------------------------------------
// hoisting pass
// ---------------------------------------------------------------------------

// registerDecl records a top-level declaration's shape without checking any
// body. Member and signature types may still contain TypeRef nodes here;
// resolveDecl fixes them up once every top-level name exists.
func (a *Analyzer) registerDecl(stmt *ASTNode) error {
	switch stmt.Kind {
	case NodeFunc:
		if err := a.checkRedeclaration(stmt.String, stmt); err != nil {
			return err
		}
		sig := funcSignature(stmt, stmt.TypeParams)
		a.symbols.Define(stmt.String, SymbolFunction, sig, false, stmt)

	case NodeClass:
		if err := a.checkRedeclaration(stmt.String, stmt); err != nil {
			return err
		}
		class := &TypeNode{Kind: TypeClass, String: stmt.String, TypeParams: stmt.TypeParams}
		for _, member := range stmt.Children {
			switch member.Kind {
			case NodeProperty:
				class.Fields = append(class.Fields, TypeField{
					Name: member.String,
					Type: markTypeParams(member.TypeExpr, stmt.TypeParams),
				})
			case NodeFunc:
				scope := make([]string, 0, len(stmt.TypeParams)+len(member.TypeParams))
				scope = append(scope, stmt.TypeParams...)
				scope = append(scope, member.TypeParams...)
				class.Methods = append(class.Methods, TypeField{
					Name: member.String,
					Type: funcSignature(member, scope),
				})
			case NodeCtor:
				ctor := funcSignature(member, stmt.TypeParams)
				ctor.Return = TypeVoid
				class.Ctor = ctor
			}
		}
		a.symbols.Define(stmt.String, SymbolClass, class, false, stmt)

	case NodeInterface:
		if err := a.checkRedeclaration(stmt.String, stmt); err != nil {
			return err
		}
		iface := &TypeNode{Kind: TypeInterface, String: stmt.String, TypeParams: stmt.TypeParams}
		for _, member := range stmt.Children {
			switch member.Kind {
			case NodeProperty:
				iface.Fields = append(iface.Fields, TypeField{
					Name: member.String,
					Type: markTypeParams(member.TypeExpr, stmt.TypeParams),
				})
			case NodeFunc:
				iface.Methods = append(iface.Methods, TypeField{
					Name: member.String,
					Type: funcSignature(member, stmt.TypeParams),
				})
			}
		}
		a.symbols.Define(stmt.String, SymbolInterface, iface, false, stmt)

	case NodeEnum:
		if err := a.checkRedeclaration(stmt.String, stmt); err != nil {
			return err
		}
		enum := &TypeNode{Kind: TypeEnum, String: stmt.String, EnumMembers: stmt.Names}
		a.symbols.Define(stmt.String, SymbolEnum, enum, false, stmt)

	case NodeTypeAlias:
		if err := a.checkRedeclaration(stmt.String, stmt); err != nil {
			return err
		}
		// Alias target stored raw; resolveDecl replaces it so that later
		// lookups return an already-resolved type verbatim.
		a.symbols.Define(stmt.String, SymbolTypeAlias, stmt.TypeExpr, false, stmt)
	}
	return nil
}

// resolveDecl materializes the stored types of hoisted declarations now that
// every top-level name is registered.
func (a *Analyzer) resolveDecl(stmt *ASTNode) error {
	sym := a.symbols.Lookup(stmt.String)
	switch stmt.Kind {
	case NodeTypeAlias:
		resolved, err := a.resolveAnnotation(sym.Type, stmt)
		if err != nil {
			return err
		}
		sym.Type = resolved

	case NodeFunc:
		return a.resolveSignature(sym.Type, stmt)

	case NodeClass:
		class := sym.Type
		if stmt.TypeExpr != nil {
			superSym := a.symbols.Lookup(stmt.TypeExpr.String)
			if superSym == nil {
				return undefinedTypeError(stmt.TypeExpr.String, stmt.Line, stmt.Col)
			}
			if superSym.Kind != SymbolClass {
				return notATypeError(stmt.TypeExpr.String, stmt.Line, stmt.Col)
			}
			class.Super = superSym.Type
		}
		if err := a.resolveMembers(class, stmt); err != nil {
			return err
		}
		if class.Ctor != nil {
			return a.resolveSignature(class.Ctor, stmt)
		}

	case NodeInterface:
		return a.resolveMembers(sym.Type, stmt)
	}
	return nil
}

func (a *Analyzer) resolveMembers(t *TypeNode, stmt *ASTNode) error {
	for i := range t.Fields {
		resolved, err := ResolveType(a.symbols, t.Fields[i].Type, stmt.Line, stmt.Col)
		if err != nil {
			return err
		}
		t.Fields[i].Type = resolved
	}
	for i := range t.Methods {
		if err := a.resolveSignature(t.Methods[i].Type, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) resolveSignature(sig *TypeNode, stmt *ASTNode) error {
	for i := range sig.Params {
		resolved, err := ResolveType(a.symbols, sig.Params[i], stmt.Line, stmt.Col)
		if err != nil {
			return err
		}
		sig.Params[i] = resolved
	}
	ret, err := ResolveType(a.symbols, sig.Return, stmt.Line, stmt.Col)
	if err != nil {
		return err
	}
	sig.Return = ret
	return nil
}

func (a *Analyzer) checkRedeclaration(name string, stmt *ASTNode) error {
	if existing := a.symbols.LookupCurrentScope(name); existing != nil && existing.Decl != nil {
		return semErrorf(stmt.Line, stmt.Col, "'%s' already declared", name)
	}
	return nil
}

// funcSignature builds a function type from a declaration. Unannotated
// parameters and returns default to any; an unannotated return is refined by
// common-type inference once the body is checked.
func funcSignature(fn *ASTNode, typeParams []string) *TypeNode {
	sig := &TypeNode{Kind: TypeFunc, Variadic: fn.Variadic}
	for _, p := range fn.Params {
		pt := p.Type
		if pt == nil {
			pt = TypeAny
		}
		sig.Params = append(sig.Params, markTypeParams(pt, typeParams))
	}
	if fn.TypeExpr != nil {
		sig.Return = markTypeParams(fn.TypeExpr, typeParams)
	} else {
		sig.Return = TypeAny
	}
	return sig
}

// markTypeParams rewrites TypeRef leaves that name a type parameter of the
// enclosing declaration into TypeParam placeholders.
func markTypeParams(t *TypeNode, params []string) *TypeNode {
	if t == nil || len(params) == 0 {
		return t
	}
	switch t.Kind {
	case TypeRef:
		for _, p := range params {
			if t.String == p {
				return &TypeNode{Kind: TypeParam, String: p}
			}
		}
		return t
	case TypeArray:
		return &TypeNode{Kind: TypeArray, Child: markTypeParams(t.Child, params)}
	case TypeMap:
		return &TypeNode{Kind: TypeMap, Key: markTypeParams(t.Key, params), Value: markTypeParams(t.Value, params)}
	case TypeNullable:
		return &TypeNode{Kind: TypeNullable, Child: markTypeParams(t.Child, params)}
	case TypeFuture:
		return &TypeNode{Kind: TypeFuture, Child: markTypeParams(t.Child, params)}
	case TypeUnion:
		members := make([]*TypeNode, len(t.Members))
		for i, m := range t.Members {
			members[i] = markTypeParams(m, params)
		}
		return &TypeNode{Kind: TypeUnion, Members: members}
	case TypeFunc:
		out := &TypeNode{Kind: TypeFunc, Variadic: t.Variadic, Return: markTypeParams(t.Return, params)}
		for _, p := range t.Params {
			out.Params = append(out.Params, markTypeParams(p, params))
		}
		return out
	case TypeGeneric:
		out := &TypeNode{Kind: TypeGeneric, Base: markTypeParams(t.Base, params)}
		for _, arg := range t.Args {
			out.Args = append(out.Args, markTypeParams(arg, params))
		}
		return out
	}
	return t
}

// ---------------------------------------------------------------------------
// checking pass: statements
// ---------------------------------------------------------------------------

func (a *Analyzer) checkStatements(stmts []*ASTNode) error {
	for _, stmt := range stmts {
		if stmt == nil {
			continue
		}
		if err := a.checkStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkStatement(stmt *ASTNode) error {
	switch stmt.Kind {
	case NodeBlock:
		a.symbols.EnterScope()
		err := a.checkStatements(stmt.Children)
		a.symbols.ExitScope()
		return err

	case NodeLet:
		return a.checkVarDecl(stmt)

	case NodeFunc:
		return a.checkFuncDecl(stmt)

	case NodeClass:
		return a.checkClassDecl(stmt)

	case NodeInterface, NodeEnum, NodeTypeAlias:
		// Shapes only; hoisted declarations are already registered, nested
		// ones register here.
		if sym := a.symbols.LookupCurrentScope(stmt.String); sym == nil || sym.Decl != stmt {
			if err := a.registerDecl(stmt); err != nil {
				return err
			}
			return a.resolveDecl(stmt)
		}
		return nil

	case NodeExport:
		return a.checkExport(stmt)

	case NodeIf:
		return a.checkIf(stmt)

	case NodeWhile:
		if err := a.requireBoolCondition(stmt.Children[0], "while condition"); err != nil {
			return err
		}
		return a.checkLoopBody(stmt.Children[1])

	case NodeDoWhile:
		// Body runs before the condition is evaluated.
		if err := a.checkLoopBody(stmt.Children[1]); err != nil {
			return err
		}
		return a.requireBoolCondition(stmt.Children[0], "do-while condition")

	case NodeFor:
		return a.checkFor(stmt)

	case NodeForIn, NodeForOf:
		return a.checkForEach(stmt)

	case NodeSwitch:
		return a.checkSwitch(stmt)

	case NodeBreak:
		if !a.inLoop {
			return breakOutsideLoopError(stmt.Line, stmt.Col)
		}
		return nil

	case NodeContinue:
		if !a.inLoop {
			return continueOutsideLoopError(stmt.Line, stmt.Col)
		}
		return nil

	case NodeReturn:
		return a.checkReturn(stmt)

	case NodeTry:
		return a.checkTry(stmt)

	default:
		_, err := a.checkExpression(stmt)
		return err
	}
}

func (a *Analyzer) checkVarDecl(stmt *ASTNode) error {
	if err := a.checkRedeclaration(stmt.String, stmt); err != nil {
		return err
	}
	var declared *TypeNode
	if stmt.TypeExpr != nil {
		resolved, err := a.resolveAnnotation(stmt.TypeExpr, stmt)
		if err != nil {
			return err
		}
		declared = resolved
	}
	var initType *TypeNode
	if len(stmt.Children) > 0 {
		t, err := a.checkExpression(stmt.Children[0])
		if err != nil {
			return err
		}
		initType = t
	}
	if declared != nil && initType != nil && !typeAssignable(declared, initType) {
		return typeMismatchError(stmt.Line, stmt.Col,
			"cannot assign %s to '%s' of type %s", TypeToString(initType), stmt.String, TypeToString(declared))
	}
	typ := declared
	if typ == nil {
		typ = initType
	}
	if typ == nil {
		typ = TypeAny
	}
	a.symbols.Define(stmt.String, SymbolVariable, typ, stmt.IsConst, stmt)
	return nil
}

// resolveAnnotation resolves a type expression and closes generic
// applications: Box<int> becomes a monomorphic instantiation.
func (a *Analyzer) resolveAnnotation(t *TypeNode, node *ASTNode) (*TypeNode, error) {
	resolved, err := ResolveType(a.symbols, t, node.Line, node.Col)
	if err != nil {
		return nil, err
	}
	return a.instantiateGenerics(resolved), nil
}

// instantiateGenerics closes every generic application in a resolved tree.
func (a *Analyzer) instantiateGenerics(t *TypeNode) *TypeNode {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TypeGeneric:
		base := t.Base
		if base.Kind != TypeClass && base.Kind != TypeInterface {
			return t
		}
		args := make([]*TypeNode, len(t.Args))
		for i, arg := range t.Args {
			args[i] = a.instantiateGenerics(arg)
		}
		return NewSubstitutorFromParams(base.TypeParams, args).Substitute(base)
	case TypeArray:
		return &TypeNode{Kind: TypeArray, Child: a.instantiateGenerics(t.Child)}
	case TypeMap:
		return &TypeNode{Kind: TypeMap, Key: a.instantiateGenerics(t.Key), Value: a.instantiateGenerics(t.Value)}
	case TypeNullable:
		return &TypeNode{Kind: TypeNullable, Child: a.instantiateGenerics(t.Child)}
	case TypeFuture:
		return &TypeNode{Kind: TypeFuture, Child: a.instantiateGenerics(t.Child)}
	case TypeUnion:
		members := make([]*TypeNode, len(t.Members))
		for i, m := range t.Members {
			members[i] = a.instantiateGenerics(m)
		}
		return &TypeNode{Kind: TypeUnion, Members: members}
	case TypeFunc:
		out := &TypeNode{Kind: TypeFunc, Variadic: t.Variadic, Return: a.instantiateGenerics(t.Return)}
		for _, p := range t.Params {
			out.Params = append(out.Params, a.instantiateGenerics(p))
		}
		return out
	}
	return t
}

func (a *Analyzer) checkFuncDecl(stmt *ASTNode) error {
	sym := a.symbols.LookupCurrentScope(stmt.String)
	if sym == nil || sym.Decl != stmt {
		// Nested function: not hoisted, register here.
		if err := a.checkRedeclaration(stmt.String, stmt); err != nil {
			return err
		}
		sig := funcSignature(stmt, stmt.TypeParams)
		if err := a.resolveSignature(sig, stmt); err != nil {
			return err
		}
		sym = a.symbols.Define(stmt.String, SymbolFunction, sig, false, stmt)
	}
	return a.checkFunctionBody(stmt, sym.Type, nil)
}

// checkFunctionBody checks a function or method body with its own analysis
// context. Loop and async flags are saved and restored, never stacked: a
// function body starts outside any loop regardless of where it is declared.
func (a *Analyzer) checkFunctionBody(fn *ASTNode, sig *TypeNode, class *TypeNode) error {
	savedFunc, savedClass := a.currentFunc, a.currentClass
	savedLoop, savedAsync := a.inLoop, a.inAsync
	savedAnnot, savedReturns := a.returnAnnot, a.returns

	a.currentFunc = fn
	a.inLoop = false
	a.inAsync = fn.IsAsync
	a.returns = nil
	if fn.TypeExpr != nil {
		a.returnAnnot = sig.Return
	} else {
		a.returnAnnot = nil
	}
	if class != nil {
		a.currentClass = class
	}

	a.symbols.EnterScope()
	for _, tp := range fn.TypeParams {
		a.symbols.Define(tp, SymbolTypeAlias, &TypeNode{Kind: TypeParam, String: tp}, false, nil)
	}
	if class != nil {
		for _, tp := range class.TypeParams {
			a.symbols.Define(tp, SymbolTypeAlias, &TypeNode{Kind: TypeParam, String: tp}, false, nil)
		}
		a.symbols.Define("this", SymbolVariable, class, true, nil)
	}
	for i, p := range fn.Params {
		var pt *TypeNode
		if i < len(sig.Params) {
			pt = sig.Params[i]
		} else {
			pt = TypeAny
		}
		a.symbols.Define(p.Name, SymbolParameter, pt, false, nil)
	}

	var err error
	if len(fn.Children) > 0 && fn.Children[0] != nil {
		err = a.checkStatement(fn.Children[0])
	}
	a.symbols.ExitScope()

	if err == nil && fn.TypeExpr == nil {
		sig.Return = CommonType(a.returns)
	}

	a.currentFunc, a.currentClass = savedFunc, savedClass
	a.inLoop, a.inAsync = savedLoop, savedAsync
	a.returnAnnot, a.returns = savedAnnot, savedReturns
	return err
}

func (a *Analyzer) checkClassDecl(stmt *ASTNode) error {
	sym := a.symbols.LookupCurrentScope(stmt.String)
	if sym == nil || sym.Decl != stmt {
		// Nested class declaration.
		if err := a.registerDecl(stmt); err != nil {
			return err
		}
		if err := a.resolveDecl(stmt); err != nil {
			return err
		}
		sym = a.symbols.LookupCurrentScope(stmt.String)
	}
	class := sym.Type
	for _, member := range stmt.Children {
		switch member.Kind {
		case NodeFunc:
			if f := findField(class.Methods, member.String); f != nil {
				if err := a.checkFunctionBody(member, f.Type, class); err != nil {
					return err
				}
			}
		case NodeCtor:
			if class.Ctor != nil {
				if err := a.checkFunctionBody(member, class.Ctor, class); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (a *Analyzer) checkExport(stmt *ASTNode) error {
	if len(stmt.Names) > 0 {
		for _, name := range stmt.Names {
			if a.symbols.Lookup(name) == nil {
				return exportNotFoundError(name, stmt.Line, stmt.Col)
			}
		}
		return nil
	}
	return a.checkStatement(stmt.Children[0])
}

func (a *Analyzer) requireBoolCondition(cond *ASTNode, what string) error {
	t, err := a.checkExpression(cond)
	if err != nil {
		return err
	}
	if !isBoolish(t) {
		return typeMismatchError(cond.Line, cond.Col, "%s must be bool, got %s", what, TypeToString(t))
	}
	return nil
}

func isBoolish(t *TypeNode) bool {
	return t != nil && (isAnyType(t) || TypesEqual(t, TypeBool))
}

func (a *Analyzer) checkLoopBody(body *ASTNode) error {
	savedLoop := a.inLoop
	a.inLoop = true
	err := a.checkStatement(body)
	a.inLoop = savedLoop
	return err
}

func (a *Analyzer) checkIf(stmt *ASTNode) error {
	cond := stmt.Children[0]
	if err := a.requireBoolCondition(cond, "if condition"); err != nil {
		return err
	}
	narrowing := a.inference.AnalyzeNarrowing(cond)

	a.inference.PushNarrowingScope()
	for name, typ := range narrowing.Then {
		a.inference.SetNarrowedType(name, typ)
	}
	err := a.checkStatement(stmt.Children[1])
	a.inference.PopNarrowingScope()
	if err != nil {
		return err
	}

	if len(stmt.Children) > 2 {
		a.inference.PushNarrowingScope()
		for name, typ := range narrowing.Else {
			a.inference.SetNarrowedType(name, typ)
		}
		err = a.checkStatement(stmt.Children[2])
		a.inference.PopNarrowingScope()
	}
	return err
}

func (a *Analyzer) checkFor(stmt *ASTNode) error {
	init, cond, incr, body := stmt.Children[0], stmt.Children[1], stmt.Children[2], stmt.Children[3]
	a.symbols.EnterScope()
	err := a.checkForParts(init, cond, incr, body)
	a.symbols.ExitScope()
	return err
}

func (a *Analyzer) checkForParts(init, cond, incr, body *ASTNode) error {
	if init != nil {
		if err := a.checkStatement(init); err != nil {
			return err
		}
	}
	if cond != nil {
		if err := a.requireBoolCondition(cond, "for condition"); err != nil {
			return err
		}
	}
	if incr != nil {
		if _, err := a.checkExpression(incr); err != nil {
			return err
		}
	}
	return a.checkLoopBody(body)
}

func (a *Analyzer) checkForEach(stmt *ASTNode) error {
	iterType, err := a.checkExpression(stmt.Children[0])
	if err != nil {
		return err
	}
	var elem *TypeNode
	switch {
	case iterType.Kind == TypeArray:
		elem = iterType.Child
	case TypesEqual(iterType, TypeStr):
		elem = TypeStr
	case isAnyType(iterType):
		elem = TypeAny
	default:
		return cannotIterateError(iterType, stmt.Children[0].Line, stmt.Children[0].Col)
	}

	a.symbols.EnterScope()
	a.symbols.Define(stmt.String, SymbolVariable, elem, false, stmt)
	err = a.checkLoopBody(stmt.Children[1])
	a.symbols.ExitScope()
	return err
}

// checkSwitch checks the discriminant and every case test, but deliberately
// never compares their types: case matching stays dynamic.
func (a *Analyzer) checkSwitch(stmt *ASTNode) error {
	if _, err := a.checkExpression(stmt.Children[0]); err != nil {
		return err
	}
	for _, caseNode := range stmt.Children[1:] {
		if test := caseNode.Children[0]; test != nil {
			if _, err := a.checkExpression(test); err != nil {
				return err
			}
		}
		if err := a.checkStatements(caseNode.Children[1:]); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkReturn(stmt *ASTNode) error {
	if a.currentFunc == nil {
		return returnOutsideFunctionError(stmt.Line, stmt.Col)
	}
	valueType := TypeVoid
	if len(stmt.Children) > 0 {
		t, err := a.checkExpression(stmt.Children[0])
		if err != nil {
			return err
		}
		valueType = t
	}
	if a.returnAnnot != nil && !typeAssignable(a.returnAnnot, valueType) {
		return typeMismatchError(stmt.Line, stmt.Col,
			"cannot return %s from function declared to return %s",
			TypeToString(valueType), TypeToString(a.returnAnnot))
	}
	a.returns = append(a.returns, valueType)
	return nil
}

func (a *Analyzer) checkTry(stmt *ASTNode) error {
	if err := a.checkStatement(stmt.Children[0]); err != nil {
		return err
	}
	if catchNode := stmt.Children[1]; catchNode != nil {
		catchType := TypeAny
		if catchNode.TypeExpr != nil {
			resolved, err := a.resolveAnnotation(catchNode.TypeExpr, catchNode)
			if err != nil {
				return err
			}
			catchType = resolved
		}
		a.symbols.EnterScope()
		a.symbols.Define(catchNode.String, SymbolVariable, catchType, false, catchNode)
		err := a.checkStatements(catchNode.Children)
		a.symbols.ExitScope()
		if err != nil {
			return err
		}
	}
	if finallyBlock := stmt.Children[2]; finallyBlock != nil {
		return a.checkStatement(finallyBlock)
	}
	return nil
}

// ---------------------------------------------------------------------------
// checking pass: expressions
// ---------------------------------------------------------------------------

func (a *Analyzer) checkExpression(expr *ASTNode) (*TypeNode, error) {
	switch expr.Kind {
	case NodeInteger:
		return TypeInt, nil
	case NodeFloat:
		return TypeFloat, nil
	case NodeString:
		return TypeStr, nil
	case NodeBool:
		return TypeBool, nil
	case NodeNull:
		return TypeNull, nil

	case NodeIdent:
		// The narrowing overlay shadows the declaration inside branches.
		if t, ok := a.inference.NarrowedType(expr.String); ok {
			return t, nil
		}
		sym := a.symbols.Lookup(expr.String)
		if sym == nil {
			return nil, errAt(undefinedSymbolError(expr.String), expr)
		}
		if sym.Kind == SymbolTypeAlias {
			return nil, typeMismatchError(expr.Line, expr.Col, "'%s' is a type, not a value", expr.String)
		}
		return sym.Type, nil

	case NodeArrayLit:
		var elems []*TypeNode
		for _, child := range expr.Children {
			t, err := a.checkExpression(child)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		elem := TypeAny
		if len(elems) > 0 {
			elem = CommonType(elems)
		}
		return &TypeNode{Kind: TypeArray, Child: elem}, nil

	case NodeMapLit:
		var values []*TypeNode
		for i := 1; i < len(expr.Children); i += 2 {
			t, err := a.checkExpression(expr.Children[i])
			if err != nil {
				return nil, err
			}
			values = append(values, t)
		}
		value := TypeAny
		if len(values) > 0 {
			value = CommonType(values)
		}
		return &TypeNode{Kind: TypeMap, Key: TypeStr, Value: value}, nil

	case NodeUnary:
		return a.checkUnary(expr)

	case NodeBinary:
		return a.checkBinary(expr)

	case NodeCall:
		return a.checkCall(expr)

	case NodeIndex:
		return a.checkIndex(expr)

	case NodeMember:
		return a.checkMember(expr)

	case NodeNew:
		return a.checkNew(expr)
	}
	return nil, typeMismatchError(expr.Line, expr.Col, "cannot check expression of kind %s", string(expr.Kind))
}

func (a *Analyzer) checkUnary(expr *ASTNode) (*TypeNode, error) {
	operand, err := a.checkExpression(expr.Children[0])
	if err != nil {
		return nil, err
	}
	switch expr.Op {
	case "!":
		if !isBoolish(operand) {
			return nil, typeMismatchError(expr.Line, expr.Col, "operator '!' requires bool, got %s", TypeToString(operand))
		}
		return TypeBool, nil
	case "-":
		if isAnyType(operand) {
			return TypeAny, nil
		}
		if !isNumericType(operand) {
			return nil, typeMismatchError(expr.Line, expr.Col, "operator '-' requires a numeric operand, got %s", TypeToString(operand))
		}
		return operand, nil
	case "typeof":
		return TypeStr, nil
	case "await":
		if !a.inAsync {
			return nil, typeMismatchError(expr.Line, expr.Col, "'await' outside of an async function")
		}
		if operand.Kind == TypeFuture {
			return operand.Child, nil
		}
		return operand, nil
	}
	return nil, typeMismatchError(expr.Line, expr.Col, "unknown unary operator '%s'", expr.Op)
}

func (a *Analyzer) checkBinary(expr *ASTNode) (*TypeNode, error) {
	if expr.Op == "=" {
		return a.checkAssignment(expr)
	}
	if expr.Op == "instanceof" {
		return a.checkInstanceof(expr)
	}

	lhs, err := a.checkExpression(expr.Children[0])
	if err != nil {
		return nil, err
	}
	rhs, err := a.checkExpression(expr.Children[1])
	if err != nil {
		return nil, err
	}

	switch expr.Op {
	case "+", "-", "*", "/", "%":
		if isAnyType(lhs) || isAnyType(rhs) {
			return TypeAny, nil
		}
		if expr.Op == "+" && TypesEqual(lhs, TypeStr) && TypesEqual(rhs, TypeStr) {
			return TypeStr, nil
		}
		if isNumericType(lhs) && isNumericType(rhs) {
			if isFloatType(lhs) || isFloatType(rhs) {
				return TypeFloat, nil
			}
			return TypeInt, nil
		}
		return nil, typeMismatchError(expr.Line, expr.Col,
			"operator '%s' cannot be applied to %s and %s", expr.Op, TypeToString(lhs), TypeToString(rhs))

	case "<", ">", "<=", ">=":
		ordered := func(t *TypeNode) bool {
			return isAnyType(t) || isNumericType(t) || TypesEqual(t, TypeStr)
		}
		if !ordered(lhs) || !ordered(rhs) {
			return nil, typeMismatchError(expr.Line, expr.Col,
				"operator '%s' cannot be applied to %s and %s", expr.Op, TypeToString(lhs), TypeToString(rhs))
		}
		return TypeBool, nil

	case "==", "!=":
		// Equality stays dynamic; any two values compare.
		return TypeBool, nil

	case "&&", "||":
		if !isBoolish(lhs) || !isBoolish(rhs) {
			return nil, typeMismatchError(expr.Line, expr.Col,
				"operator '%s' requires bool operands, got %s and %s", expr.Op, TypeToString(lhs), TypeToString(rhs))
		}
		return TypeBool, nil
	}
	return nil, typeMismatchError(expr.Line, expr.Col, "unknown operator '%s'", expr.Op)
}

func (a *Analyzer) checkAssignment(expr *ASTNode) (*TypeNode, error) {
	lhs, rhs := expr.Children[0], expr.Children[1]
	rhsType, err := a.checkExpression(rhs)
	if err != nil {
		return nil, err
	}

	switch lhs.Kind {
	case NodeIdent:
		sym := a.symbols.Lookup(lhs.String)
		if sym == nil {
			return nil, errAt(undefinedSymbolError(lhs.String), lhs)
		}
		annotated := sym.Decl != nil && sym.Decl.Kind == NodeLet && sym.Decl.TypeExpr != nil
		if annotated {
			if sym.Constant {
				return nil, errAt(constReassignmentError(lhs.String), expr)
			}
			if !typeAssignable(sym.Type, rhsType) {
				return nil, typeMismatchError(expr.Line, expr.Col,
					"cannot assign %s to '%s' of type %s", TypeToString(rhsType), lhs.String, TypeToString(sym.Type))
			}
			return sym.Type, nil
		}
		// Unannotated declarations widen on reassignment.
		widened := widenPair(sym.Type, rhsType)
		if err := a.symbols.Update(lhs.String, widened); err != nil {
			return nil, errAt(err, expr)
		}
		return widened, nil

	case NodeIndex:
		containerType, err := a.checkIndex(lhs)
		if err != nil {
			return nil, err
		}
		if !typeAssignable(containerType, rhsType) {
			return nil, typeMismatchError(expr.Line, expr.Col,
				"cannot assign %s to element of type %s", TypeToString(rhsType), TypeToString(containerType))
		}
		return containerType, nil

	case NodeMember:
		memberType, err := a.checkMember(lhs)
		if err != nil {
			return nil, err
		}
		if !typeAssignable(memberType, rhsType) {
			return nil, typeMismatchError(expr.Line, expr.Col,
				"cannot assign %s to member '%s' of type %s", TypeToString(rhsType), lhs.String, TypeToString(memberType))
		}
		return memberType, nil
	}
	return nil, typeMismatchError(expr.Line, expr.Col, "invalid assignment target")
}

func (a *Analyzer) checkInstanceof(expr *ASTNode) (*TypeNode, error) {
	if _, err := a.checkExpression(expr.Children[0]); err != nil {
		return nil, err
	}
	rhs := expr.Children[1]
	if rhs.Kind != NodeIdent {
		return nil, typeMismatchError(rhs.Line, rhs.Col, "right-hand side of instanceof must be a class name")
	}
	sym := a.symbols.Lookup(rhs.String)
	if sym == nil {
		return nil, errAt(undefinedSymbolError(rhs.String), rhs)
	}
	if sym.Kind != SymbolClass && sym.Kind != SymbolInterface {
		return nil, typeMismatchError(rhs.Line, rhs.Col, "right-hand side of instanceof must be a class name")
	}
	return TypeBool, nil
}

func (a *Analyzer) checkCall(expr *ASTNode) (*TypeNode, error) {
	calleeType, err := a.checkExpression(expr.Children[0])
	if err != nil {
		return nil, err
	}
	args := expr.Children[1:]

	if isAnyType(calleeType) {
		for _, arg := range args {
			if _, err := a.checkExpression(arg); err != nil {
				return nil, err
			}
		}
		return TypeAny, nil
	}
	if calleeType.Kind != TypeFunc {
		return nil, typeMismatchError(expr.Line, expr.Col, "type %s is not callable", TypeToString(calleeType))
	}

	params := calleeType.Params
	if calleeType.Variadic {
		if len(args) < len(params)-1 {
			return nil, typeMismatchError(expr.Line, expr.Col,
				"expected at least %d arguments, got %d", len(params)-1, len(args))
		}
	} else if len(args) != len(params) {
		return nil, typeMismatchError(expr.Line, expr.Col,
			"expected %d arguments, got %d", len(params), len(args))
	}

	for i, arg := range args {
		argType, err := a.checkExpression(arg)
		if err != nil {
			return nil, err
		}
		paramType := variadicParamType(calleeType, i)
		if paramType != nil && !typeAssignable(paramType, argType) {
			return nil, typeMismatchError(arg.Line, arg.Col,
				"argument %d: cannot use %s as %s", i+1, TypeToString(argType), TypeToString(paramType))
		}
	}
	return calleeType.Return, nil
}

// variadicParamType selects the parameter type for argument i, unrolling a
// trailing variadic array parameter.
func variadicParamType(fn *TypeNode, i int) *TypeNode {
	if i < len(fn.Params) && !(fn.Variadic && i == len(fn.Params)-1) {
		return fn.Params[i]
	}
	if !fn.Variadic || len(fn.Params) == 0 {
		return nil
	}
	last := fn.Params[len(fn.Params)-1]
	if last.Kind == TypeArray {
		return last.Child
	}
	return last
}

func (a *Analyzer) checkIndex(expr *ASTNode) (*TypeNode, error) {
	containerType, err := a.checkExpression(expr.Children[0])
	if err != nil {
		return nil, err
	}
	indexType, err := a.checkExpression(expr.Children[1])
	if err != nil {
		return nil, err
	}

	switch {
	case isAnyType(containerType):
		return TypeAny, nil
	case containerType.Kind == TypeArray:
		if !isAnyType(indexType) && !isNumericType(indexType) {
			return nil, typeMismatchError(expr.Line, expr.Col, "array index must be numeric, got %s", TypeToString(indexType))
		}
		return containerType.Child, nil
	case containerType.Kind == TypeMap:
		if !typeAssignable(containerType.Key, indexType) {
			return nil, typeMismatchError(expr.Line, expr.Col,
				"map key must be %s, got %s", TypeToString(containerType.Key), TypeToString(indexType))
		}
		return containerType.Value, nil
	case TypesEqual(containerType, TypeStr):
		return TypeStr, nil
	}
	return nil, typeMismatchError(expr.Line, expr.Col, "type %s cannot be indexed", TypeToString(containerType))
}

func (a *Analyzer) checkMember(expr *ASTNode) (*TypeNode, error) {
	objType, err := a.checkExpression(expr.Children[0])
	if err != nil {
		return nil, err
	}
	name := expr.String

	switch {
	case isAnyType(objType):
		return TypeAny, nil
	case objType.Kind == TypeNullable:
		return nil, typeMismatchError(expr.Line, expr.Col,
			"cannot access member '%s': value of type %s may be null", name, TypeToString(objType))
	case objType.Kind == TypeEnum:
		for _, member := range objType.EnumMembers {
			if member == name {
				return objType, nil
			}
		}
		return nil, typeMismatchError(expr.Line, expr.Col, "enum %s has no member '%s'", objType.String, name)
	case objType.Kind == TypeClass || objType.Kind == TypeInterface:
		if member := findMember(objType, name); member != nil {
			return member, nil
		}
		return nil, typeMismatchError(expr.Line, expr.Col, "type %s has no member '%s'", TypeToString(objType), name)
	case objType.Kind == TypeArray, TypesEqual(objType, TypeStr):
		if name == "length" {
			return TypeInt, nil
		}
		return nil, typeMismatchError(expr.Line, expr.Col, "type %s has no member '%s'", TypeToString(objType), name)
	case objType.Kind == TypeMap:
		return objType.Value, nil
	}
	return nil, typeMismatchError(expr.Line, expr.Col, "type %s has no members", TypeToString(objType))
}

func (a *Analyzer) checkNew(expr *ASTNode) (*TypeNode, error) {
	sym := a.symbols.Lookup(expr.String)
	if sym == nil {
		return nil, errAt(undefinedSymbolError(expr.String), expr)
	}
	if sym.Kind != SymbolClass {
		return nil, typeMismatchError(expr.Line, expr.Col, "'%s' is not a class", expr.String)
	}
	class := sym.Type

	if len(class.TypeParams) > 0 {
		args := make([]*TypeNode, len(class.TypeParams))
		for i := range args {
			if i < len(expr.TypeArgs) {
				resolved, err := a.resolveAnnotation(expr.TypeArgs[i], expr)
				if err != nil {
					return nil, err
				}
				args[i] = resolved
			} else {
				args[i] = TypeAny
			}
		}
		class = NewSubstitutorFromParams(class.TypeParams, args).Substitute(class)
	}

	if class.Ctor != nil {
		params := class.Ctor.Params
		if !class.Ctor.Variadic && len(expr.Children) != len(params) {
			return nil, typeMismatchError(expr.Line, expr.Col,
				"constructor of %s expects %d arguments, got %d", class.String, len(params), len(expr.Children))
		}
		for i, arg := range expr.Children {
			argType, err := a.checkExpression(arg)
			if err != nil {
				return nil, err
			}
			paramType := variadicParamType(class.Ctor, i)
			if paramType != nil && !typeAssignable(paramType, argType) {
				return nil, typeMismatchError(arg.Line, arg.Col,
					"argument %d: cannot use %s as %s", i+1, TypeToString(argType), TypeToString(paramType))
			}
		}
	} else {
		for _, arg := range expr.Children {
			if _, err := a.checkExpression(arg); err != nil {
				return nil, err
			}
		}
	}
	return class, nil
}
