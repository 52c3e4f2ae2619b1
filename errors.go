package main

import "fmt"

// SemanticError is the only error type produced by the front end. Every
// failure is terminal: the first error anywhere aborts the whole pass.
type SemanticError struct {
	Message string
	Line    int
	Col     int
	File    string
}

func (e *SemanticError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Message)
	}
	return e.Message
}

func semErrorf(line, col int, format string, args ...interface{}) *SemanticError {
	return &SemanticError{Message: fmt.Sprintf(format, args...), Line: line, Col: col}
}

func undefinedTypeError(name string, line, col int) *SemanticError {
	return semErrorf(line, col, "undefined type '%s'", name)
}

func notATypeError(name string, line, col int) *SemanticError {
	return semErrorf(line, col, "'%s' is not a type", name)
}

func undefinedSymbolError(name string) *SemanticError {
	return semErrorf(0, 0, "undefined symbol '%s'", name)
}

func constReassignmentError(name string) *SemanticError {
	return semErrorf(0, 0, "cannot reassign constant '%s'", name)
}

func typeMismatchError(line, col int, format string, args ...interface{}) *SemanticError {
	return semErrorf(line, col, format, args...)
}

func cannotIterateError(typ *TypeNode, line, col int) *SemanticError {
	return semErrorf(line, col, "cannot iterate over type %s", TypeToString(typ))
}

func breakOutsideLoopError(line, col int) *SemanticError {
	return semErrorf(line, col, "'break' outside of a loop")
}

func continueOutsideLoopError(line, col int) *SemanticError {
	return semErrorf(line, col, "'continue' outside of a loop")
}

func returnOutsideFunctionError(line, col int) *SemanticError {
	return semErrorf(line, col, "'return' outside of a function")
}

func exportNotFoundError(name string, line, col int) *SemanticError {
	return semErrorf(line, col, "cannot export undeclared name '%s'", name)
}
