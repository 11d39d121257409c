// Copyright 2026 The Derp Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package derp

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func tok(kind Kind, value ParseTree) Token {
	return Token{Kind: kind, Value: value}
}

// containsTree checks forest membership with ==, not cmp.Equal: every
// tree a grammar in this file builds is a plain comparable value
// (string, Pair, the local expr type, or ListEnd), and cmp.Equal would
// panic walking into expr's unexported fields.
func containsTree(f Forest, want ParseTree) bool {
	for t := range f {
		if t == want {
			return true
		}
	}

	return false
}

func TestParse_EmptyLanguageShortCircuits(t *testing.T) {
	t.Parallel()

	forest, err := Parse(Empty, []Token{tok("x", "x")})
	if diff := cmp.Diff(nil, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("err (-want +got):\n%s", diff)
	}

	if len(forest) != 0 {
		t.Fatalf("forest: want empty, got %d trees", len(forest))
	}
}

func TestParse_Star(t *testing.T) {
	t.Parallel()

	const digit Kind = "DIGIT"

	root := Star(Lit(digit))

	tokens := []Token{tok(digit, "1"), tok(digit, "1"), tok(digit, "1")}

	forest, err := Parse(root, tokens)
	if diff := cmp.Diff(nil, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("err (-want +got):\n%s", diff)
	}

	if len(forest) != 1 {
		t.Fatalf("forest: want exactly 1 tree, got %d", len(forest))
	}

	var got ParseTree
	for t := range forest {
		got = t
	}

	if diff := cmp.Diff([]ParseTree{"1", "1", "1"}, ToSlice(got)); diff != "" {
		t.Errorf("ToSlice (-want +got):\n%s", diff)
	}
}

func TestParse_StarEmptyMatch(t *testing.T) {
	t.Parallel()

	const digit Kind = "DIGIT"

	forest, err := Parse(Star(Lit(digit)), nil)
	if diff := cmp.Diff(nil, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("err (-want +got):\n%s", diff)
	}

	if !containsTree(forest, ListEnd) {
		t.Fatalf("forest %v: want the empty-repetition tree ListEnd", forest)
	}
}

// expr is a minimal comparable AST stand-in used only by this test
// file, built by the reduction in TestParse_LeftRecursion.
type expr struct {
	op          string
	left, right ParseTree
}

func TestParse_LeftRecursion(t *testing.T) {
	t.Parallel()

	const (
		num  Kind = "NUM"
		plus Kind = "PLUS"
	)

	g := NewGrammar("arith")

	e, err := g.Rule("E")
	if err != nil {
		t.Fatalf("Rule(E): %v", err)
	}

	n := Lit(num)

	add := Red(Cat(Cat(e, Lit(plus)), n), func(t ParseTree) ParseTree {
		outer := t.(Pair)
		left := outer.First.(Pair).First

		return expr{op: "+", left: left, right: outer.Second}
	}, "add")

	if err := g.Define("E", Alt(add, n)); err != nil {
		t.Fatalf("Define(E): %v", err)
	}

	if err := g.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	root, err := g.Root("E")
	if err != nil {
		t.Fatalf("Root(E): %v", err)
	}

	tokens := []Token{
		tok(num, "1"), tok(plus, "+"),
		tok(num, "2"), tok(plus, "+"),
		tok(num, "3"),
	}

	forest, err := Parse(root, tokens)
	if diff := cmp.Diff(nil, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("err (-want +got):\n%s", diff)
	}

	want := expr{op: "+", left: expr{op: "+", left: "1", right: "2"}, right: "3"}
	if !containsTree(forest, want) {
		t.Fatalf("forest %+v: want it to contain %+v", forest, want)
	}
}

func TestParse_AmbiguousGrammarCatalanCount(t *testing.T) {
	t.Parallel()

	const a Kind = "a"

	g := NewGrammar("amb")

	s, err := g.Rule("S")
	if err != nil {
		t.Fatalf("Rule(S): %v", err)
	}

	if err := g.Define("S", Alt(Cat(s, s), Lit(a))); err != nil {
		t.Fatalf("Define(S): %v", err)
	}

	if err := g.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	root, err := g.Root("S")
	if err != nil {
		t.Fatalf("Root(S): %v", err)
	}

	tokens := []Token{tok(a, "a"), tok(a, "a"), tok(a, "a")}

	forest, err := Parse(root, tokens)
	if diff := cmp.Diff(nil, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("err (-want +got):\n%s", diff)
	}

	// S ::= S S | 'a' over "aaa" has exactly Catalan(2) = 2 parses:
	// a(aa) and (aa)a.
	if len(forest) != 2 {
		t.Fatalf("forest: want 2 parses (Catalan(2), for 3 tokens), got %d: %v", len(forest), forest)
	}
}

func TestGrammar_FreezeReportsUndefinedRule(t *testing.T) {
	t.Parallel()

	g := NewGrammar("bad")

	if _, err := g.Rule("X"); err != nil {
		t.Fatalf("Rule(X): %v", err)
	}

	err := g.Freeze()

	var gerr *GrammarError
	if !errors.As(err, &gerr) {
		t.Fatalf("Freeze error: want *GrammarError, got %T (%v)", err, err)
	}

	if gerr.Rule != "X" {
		t.Errorf("Freeze error rule: want %q, got %q", "X", gerr.Rule)
	}
}

func TestGrammar_DoubleDefineIsError(t *testing.T) {
	t.Parallel()

	g := NewGrammar("g")

	if err := g.Define("X", Empty); err != nil {
		t.Fatalf("first Define(X): %v", err)
	}

	err := g.Define("X", Empty)

	var gerr *GrammarError
	if !errors.As(err, &gerr) {
		t.Fatalf("second Define(X): want *GrammarError, got %T (%v)", err, err)
	}
}

func TestGrammar_DefineAfterFreezeIsError(t *testing.T) {
	t.Parallel()

	g := NewGrammar("g")

	if err := g.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	err := g.Define("X", Empty)

	var gerr *GrammarError
	if !errors.As(err, &gerr) {
		t.Fatalf("Define after freeze: want *GrammarError, got %T (%v)", err, err)
	}
}

func TestGrammar_RuleOnFrozenUnknownIsError(t *testing.T) {
	t.Parallel()

	g := NewGrammar("g")

	if err := g.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	_, err := g.Rule("nope")

	var gerr *GrammarError
	if !errors.As(err, &gerr) {
		t.Fatalf("Rule on frozen grammar: want *GrammarError, got %T (%v)", err, err)
	}
}

func TestParse_SemanticActionFailurePropagates(t *testing.T) {
	t.Parallel()

	const num Kind = "NUM"

	sentinel := errors.New("boom")

	root := RedE(Lit(num), func(ParseTree) (ParseTree, error) {
		return nil, sentinel
	}, "always-fails")

	_, err := Parse(root, []Token{tok(num, "1")})
	if diff := cmp.Diff(sentinel, err, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("err (-want +got):\n%s", diff)
	}
}

func TestParse_Opt(t *testing.T) {
	t.Parallel()

	const a Kind = "a"

	root := Cat(Opt(Lit(a)), Lit(a))

	forest, err := Parse(root, []Token{tok(a, "a")})
	if diff := cmp.Diff(nil, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("err (-want +got):\n%s", diff)
	}

	want := Pair{First: "", Second: "a"}
	if !containsTree(forest, want) {
		t.Fatalf("forest %v: want it to contain %+v (the unmatched-opt branch)", forest, want)
	}
}
