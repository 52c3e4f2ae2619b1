package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestBlockShadowing(t *testing.T) {
	err := analyzeSrc(t, `
let x: int = 1;
{
  let x: str = "a";
  x + "b";
}
x + 1;
`)
	be.Err(t, err, nil)
}

func TestSameScopeRedeclarationRejected(t *testing.T) {
	err := analyzeSrc(t, "let x = 1;\nlet x = 2;")
	be.Equal(t, err.Error(), "2:1: 'x' already declared")
}

func TestParameterShadowsGlobal(t *testing.T) {
	err := analyzeSrc(t, `
let x: str = "s";
fn double(x: int): int {
  return x + x;
}
`)
	be.Err(t, err, nil)
}

func TestLocalShadowsParameter(t *testing.T) {
	err := analyzeSrc(t, `
fn f(x: int): str {
  {
    let x: str = "inner";
    return x;
  }
}
`)
	be.Err(t, err, nil)
}

func TestForEachVariableScopeEndsWithLoop(t *testing.T) {
	err := analyzeSrc(t, "for (x of [1]) {\n}\nx;")
	be.Equal(t, err.Error(), "3:1: undefined symbol 'x'")
}

func TestForInitScopeEndsWithLoop(t *testing.T) {
	err := analyzeSrc(t, "for (let i = 0; i < 1; i = i + 1) {\n}\ni;")
	be.Equal(t, err.Error(), "3:1: undefined symbol 'i'")
}

func TestCatchVariableShadowsOuter(t *testing.T) {
	err := analyzeSrc(t, `
let e: int = 1;
try {
  2;
} catch (e) {
  e;
}
e + 1;
`)
	be.Err(t, err, nil)
}

func TestFunctionScopeEndsAtBody(t *testing.T) {
	err := analyzeSrc(t, `
fn f(n: int): int {
  return n;
}
n;
`)
	be.Equal(t, err.Error(), "5:1: undefined symbol 'n'")
}

func TestTypeAliasShadowedByBlock(t *testing.T) {
	// Block-level declarations may reuse a top-level type name as a value.
	err := analyzeSrc(t, `
type ID = int | str;
{
  let ID: int = 1;
  ID + 1;
}
let x: ID = 2;
`)
	be.Err(t, err, nil)
}
