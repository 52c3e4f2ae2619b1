package mdtest

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Variable checks

## Test: annotated let
` + "```raccoon" + `
let x: int = 42;
` + "```" + `
` + "```check-ok" + `
` + "```" + `

## Test: mismatched let
` + "```raccoon" + `
let x: int = "hi";
` + "```" + `
` + "```check-error" + `
1:1: cannot assign str to 'x' of type int
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "annotated let")
	be.Equal(t, tc1.Input, "let x: int = 42;")
	be.Equal(t, tc1.InputType, InputTypeProgram)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeOK)

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "mismatched let")
	be.Equal(t, len(tc2.Assertions), 1)
	be.Equal(t, tc2.Assertions[0].Type, AssertionTypeError)
	be.Equal(t, tc2.Assertions[0].Content, "1:1: cannot assign str to 'x' of type int")
}

func TestExtractTestCases_MultipleAssertions(t *testing.T) {
	markdown := `## Test: expression type
` + "```raccoon-expr" + `
1 + 2
` + "```" + `
` + "```ast" + `
(binary "+" (integer 1) (integer 2))
` + "```" + `
` + "```type" + `
int
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, tc.Name, "expression type")
	be.Equal(t, tc.Input, "1 + 2")
	be.Equal(t, tc.InputType, InputTypeExpr)
	be.Equal(t, len(tc.Assertions), 2)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc.Assertions[1].Type, AssertionTypeType)
	be.Equal(t, tc.Assertions[1].Content, "int")
}

func TestExtractTestCases_NoInputFence(t *testing.T) {
	markdown := `## Test: missing input
` + "```check-ok" + `
` + "```"

	_, err := ExtractTestCases(markdown)
	if err == nil {
		t.Fatal("expected error for test with no input fence")
	}
	be.True(t, strings.Contains(err.Error(), "no input fence"))
}

func TestExtractTestCases_NoAssertions(t *testing.T) {
	markdown := `## Test: missing assertions
` + "```raccoon" + `
let x = 1;
` + "```"

	_, err := ExtractTestCases(markdown)
	if err == nil {
		t.Fatal("expected error for test with no assertion fences")
	}
	be.True(t, strings.Contains(err.Error(), "no assertion fences"))
}

func TestExtractTestCases_UnknownFence(t *testing.T) {
	markdown := `## Test: bad fence
` + "```raccoon" + `
let x = 1;
` + "```" + `
` + "```wat" + `
?
` + "```"

	_, err := ExtractTestCases(markdown)
	if err == nil {
		t.Fatal("expected error for unknown fence language")
	}
	be.True(t, strings.Contains(err.Error(), "unknown fence language 'wat'"))
}

func TestExtractTestCases_FenceOutsideTest(t *testing.T) {
	markdown := `# No heading here
` + "```raccoon" + `
let x = 1;
` + "```"

	_, err := ExtractTestCases(markdown)
	if err == nil {
		t.Fatal("expected error for fence outside a test case")
	}
	be.True(t, strings.Contains(err.Error(), "outside of test case"))
}

func TestExtractTestCases_MultipleInputFences(t *testing.T) {
	markdown := `## Test: two inputs
` + "```raccoon" + `
let x = 1;
` + "```" + `
` + "```raccoon" + `
let y = 2;
` + "```" + `
` + "```check-ok" + `
` + "```"

	_, err := ExtractTestCases(markdown)
	if err == nil {
		t.Fatal("expected error for multiple input fences")
	}
	be.True(t, strings.Contains(err.Error(), "multiple input fences"))
}

func TestExtractTestCases_ProseFencesIgnored(t *testing.T) {
	markdown := "Some documentation.\n\n```\nplain fence, no language\n```\n\n## Test: after prose\n```raccoon\nlet x = 1;\n```\n```check-ok\n```\n"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, testCases[0].Name, "after prose")
}
