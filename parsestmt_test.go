package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func parseProg(t *testing.T, input string) *ASTNode {
	t.Helper()
	prog, err := ParseProgram([]byte(input + "\x00"))
	be.Err(t, err, nil)
	return prog
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"let x: int = 1;", "(program (let \"x\" int (integer 1)))"},
		{"let x = 1;", "(program (let \"x\" (integer 1)))"},
		{"let x: str;", "(program (let \"x\" str))"},
		{"const c = 2;", "(program (const \"c\" (integer 2)))"},

		{"if (x) { }", "(program (if (ident \"x\") (block)))"},
		{"if (x) { } else { y; }", "(program (if (ident \"x\") (block) (block (ident \"y\"))))"},
		{"if (a) b; else if (c) d;",
			"(program (if (ident \"a\") (ident \"b\") (if (ident \"c\") (ident \"d\"))))"},

		{"while (true) { break; }", "(program (while (bool true) (block (break))))"},
		{"do { x; } while (false);", "(program (do-while (bool false) (block (ident \"x\"))))"},

		{"for (let i = 0; i < 3; i = i + 1) { }",
			"(program (for (let \"i\" (integer 0)) (binary \"<\" (ident \"i\") (integer 3)) (binary \"=\" (ident \"i\") (binary \"+\" (ident \"i\") (integer 1))) (block)))"},
		{"for (;;) { }", "(program (for () () () (block)))"},
		{"for (x of xs) { }", "(program (for-of \"x\" (ident \"xs\") (block)))"},
		{"for (k in m) { }", "(program (for-in \"k\" (ident \"m\") (block)))"},

		{"switch (v) { case 1: break; default: v; }",
			"(program (switch (ident \"v\") (case (integer 1) (break)) (case () (ident \"v\"))))"},

		{"try { } catch (e) { }", "(program (try (block) (catch \"e\" (block)) ()))"},
		{"try { } finally { }", "(program (try (block) () (block)))"},
		{"try { } catch (e: error) { } finally { }",
			"(program (try (block) (catch \"e\" (block)) (block)))"},

		{"fn f() { return 1; }", "(program (fn \"f\" (block (return (integer 1)))))"},
		{"fn f() { return; }", "(program (fn \"f\" (block (return))))"},
		{"fn add(a: int, b: int): int { }", "(program (fn \"add\" \"a\" \"b\" (block)))"},

		{"export {a, b};", "(program (export \"a\" \"b\"))"},
		{"export fn f() { }", "(program (export (fn \"f\" (block))))"},

		{"{ 1; 2; }", "(program (block (integer 1) (integer 2)))"},
	}

	for _, tt := range tests {
		prog := parseProg(t, tt.input)
		be.Equal(t, ToSExpr(prog), tt.want)
	}
}

func TestParseTryRequiresHandler(t *testing.T) {
	_, err := ParseProgram([]byte("try { }\x00"))
	if err == nil {
		t.Fatal("expected error for try without catch or finally")
	}
	be.Equal(t, err.Error(), "1:8: try statement requires catch or finally")
}

func TestParseAsyncFunc(t *testing.T) {
	prog := parseProg(t, "async fn f() { }")
	fn := prog.Children[0]
	be.Equal(t, fn.Kind, NodeFunc)
	be.True(t, fn.IsAsync)
}

func TestParseVariadicFunc(t *testing.T) {
	prog := parseProg(t, "fn log(prefix: str, ...rest: int[]) { }")
	fn := prog.Children[0]
	be.True(t, fn.Variadic)
	be.Equal(t, len(fn.Params), 2)
	be.Equal(t, fn.Params[0].Name, "prefix")
	be.Equal(t, fn.Params[1].Name, "rest")
	be.Equal(t, TypeToString(fn.Params[1].Type), "int[]")
}

func TestParseFuncTypeParams(t *testing.T) {
	prog := parseProg(t, "fn id<T>(x: T): T { return x; }")
	fn := prog.Children[0]
	be.Equal(t, fn.TypeParams, []string{"T"})
	be.Equal(t, TypeToString(fn.Params[0].Type), "T")
	be.Equal(t, TypeToString(fn.TypeExpr), "T")
}

func TestParseStatementErrors(t *testing.T) {
	inputs := []string{
		"let = 1;",
		"if x { }",
		"while (true",
		"fn () { }",
		"async let x;",
	}
	for _, input := range inputs {
		_, err := ParseProgram([]byte(input + "\x00"))
		if err == nil {
			t.Errorf("expected parse error for %q", input)
		}
	}
}
