package main

import (
	"fmt"
	"strings"
)

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	NodeProgram   NodeKind = "NodeProgram"
	NodeLet       NodeKind = "NodeLet" // also const declarations (IsConst)
	NodeFunc      NodeKind = "NodeFunc"
	NodeClass     NodeKind = "NodeClass"
	NodeInterface NodeKind = "NodeInterface"
	NodeEnum      NodeKind = "NodeEnum"
	NodeTypeAlias NodeKind = "NodeTypeAlias"
	NodeProperty  NodeKind = "NodeProperty" // class/interface member
	NodeCtor      NodeKind = "NodeCtor"
	NodeExport    NodeKind = "NodeExport"

	NodeBlock    NodeKind = "NodeBlock"
	NodeIf       NodeKind = "NodeIf"
	NodeWhile    NodeKind = "NodeWhile"
	NodeDoWhile  NodeKind = "NodeDoWhile"
	NodeFor      NodeKind = "NodeFor"
	NodeForIn    NodeKind = "NodeForIn"
	NodeForOf    NodeKind = "NodeForOf"
	NodeSwitch   NodeKind = "NodeSwitch"
	NodeCase     NodeKind = "NodeCase"
	NodeBreak    NodeKind = "NodeBreak"
	NodeContinue NodeKind = "NodeContinue"
	NodeReturn   NodeKind = "NodeReturn"
	NodeTry      NodeKind = "NodeTry"
	NodeCatch    NodeKind = "NodeCatch"

	NodeIdent    NodeKind = "NodeIdent"
	NodeInteger  NodeKind = "NodeInteger"
	NodeFloat    NodeKind = "NodeFloat"
	NodeString   NodeKind = "NodeString"
	NodeBool     NodeKind = "NodeBool"
	NodeNull     NodeKind = "NodeNull"
	NodeArrayLit NodeKind = "NodeArrayLit"
	NodeMapLit   NodeKind = "NodeMapLit" // Children alternate key, value
	NodeBinary   NodeKind = "NodeBinary"
	NodeUnary    NodeKind = "NodeUnary" // ops: ! - typeof await
	NodeCall     NodeKind = "NodeCall"
	NodeIndex    NodeKind = "NodeIndex"
	NodeMember   NodeKind = "NodeMember" // String holds the member name
	NodeNew      NodeKind = "NodeNew"
)

// Param is a declared function parameter.
type Param struct {
	Name string
	Type *TypeNode // nil means unannotated (any)
}

// ASTNode represents a node in the Abstract Syntax Tree
type ASTNode struct {
	Kind NodeKind
	// NodeIdent, NodeString, NodeMember (member name), declarations (name):
	String string
	// NodeInteger, NodeBool (0/1):
	Integer int64
	// NodeFloat:
	Float float64
	// NodeBinary, NodeUnary:
	Op       string
	Children []*ASTNode
	// Declarations and annotated expressions:
	TypeExpr   *TypeNode // unresolved annotation / alias target / catch type
	TypeParams []string  // generic declarations
	TypeArgs   []*TypeNode
	Params     []Param // NodeFunc, NodeCtor
	Variadic   bool
	IsAsync    bool
	IsConst    bool
	// NodeEnum members, NodeExport re-export specifiers:
	Names []string

	Line, Col int
}

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node *ASTNode) string {
	if node == nil {
		return "()"
	}
	switch node.Kind {
	case NodeProgram:
		return sexprList("program", node.Children)
	case NodeLet:
		head := "let"
		if node.IsConst {
			head = "const"
		}
		s := "(" + head + " \"" + node.String + "\""
		if node.TypeExpr != nil {
			s += " " + TypeToString(node.TypeExpr)
		}
		if len(node.Children) > 0 {
			s += " " + ToSExpr(node.Children[0])
		}
		return s + ")"
	case NodeFunc:
		s := "(fn \"" + node.String + "\""
		for _, p := range node.Params {
			s += " \"" + p.Name + "\""
		}
		for _, child := range node.Children {
			s += " " + ToSExpr(child)
		}
		return s + ")"
	case NodeClass:
		return "(class \"" + node.String + "\"" + childSexprs(node.Children) + ")"
	case NodeInterface:
		return "(interface \"" + node.String + "\"" + childSexprs(node.Children) + ")"
	case NodeEnum:
		return "(enum \"" + node.String + "\" " + strings.Join(quoteAll(node.Names), " ") + ")"
	case NodeTypeAlias:
		return "(type \"" + node.String + "\" " + TypeToString(node.TypeExpr) + ")"
	case NodeProperty:
		return "(property \"" + node.String + "\" " + TypeToString(node.TypeExpr) + ")"
	case NodeCtor:
		return "(constructor" + childSexprs(node.Children) + ")"
	case NodeExport:
		if len(node.Names) > 0 {
			return "(export " + strings.Join(quoteAll(node.Names), " ") + ")"
		}
		return "(export " + ToSExpr(node.Children[0]) + ")"
	case NodeBlock:
		return sexprList("block", node.Children)
	case NodeIf:
		return sexprList("if", node.Children)
	case NodeWhile:
		return sexprList("while", node.Children)
	case NodeDoWhile:
		return sexprList("do-while", node.Children)
	case NodeFor:
		return sexprList("for", node.Children)
	case NodeForIn:
		return "(for-in \"" + node.String + "\"" + childSexprs(node.Children) + ")"
	case NodeForOf:
		return "(for-of \"" + node.String + "\"" + childSexprs(node.Children) + ")"
	case NodeSwitch:
		return sexprList("switch", node.Children)
	case NodeCase:
		return sexprList("case", node.Children)
	case NodeBreak:
		return "(break)"
	case NodeContinue:
		return "(continue)"
	case NodeReturn:
		return sexprList("return", node.Children)
	case NodeTry:
		return sexprList("try", node.Children)
	case NodeCatch:
		return "(catch \"" + node.String + "\"" + childSexprs(node.Children) + ")"
	case NodeIdent:
		return "(ident \"" + node.String + "\")"
	case NodeInteger:
		return fmt.Sprintf("(integer %d)", node.Integer)
	case NodeFloat:
		return fmt.Sprintf("(float %g)", node.Float)
	case NodeString:
		return "(string \"" + node.String + "\")"
	case NodeBool:
		if node.Integer != 0 {
			return "(bool true)"
		}
		return "(bool false)"
	case NodeNull:
		return "(null)"
	case NodeArrayLit:
		return sexprList("array", node.Children)
	case NodeMapLit:
		return sexprList("map", node.Children)
	case NodeBinary:
		return "(binary \"" + node.Op + "\"" + childSexprs(node.Children) + ")"
	case NodeUnary:
		return "(unary \"" + node.Op + "\"" + childSexprs(node.Children) + ")"
	case NodeCall:
		return sexprList("call", node.Children)
	case NodeIndex:
		return sexprList("idx", node.Children)
	case NodeMember:
		return "(member " + ToSExpr(node.Children[0]) + " \"" + node.String + "\")"
	case NodeNew:
		return "(new \"" + node.String + "\"" + childSexprs(node.Children) + ")"
	default:
		return ""
	}
}

func sexprList(head string, children []*ASTNode) string {
	return "(" + head + childSexprs(children) + ")"
}

func childSexprs(children []*ASTNode) string {
	var b strings.Builder
	for _, child := range children {
		if child == nil {
			b.WriteString(" ()")
			continue
		}
		b.WriteString(" ")
		b.WriteString(ToSExpr(child))
	}
	return b.String()
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "\"" + n + "\""
	}
	return out
}
