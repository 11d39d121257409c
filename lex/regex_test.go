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

package lex

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/corvidae/derp"
)

const (
	kindNum   derp.Kind = "NUM"
	kindPlus  derp.Kind = "PLUS"
	kindSpace derp.Kind = "SPACE"
	kindIdent derp.Kind = "IDENT"
)

func arithTokenizer() *RegexTokenizer {
	return &RegexTokenizer{
		Rules: []Rule{
			{Kind: kindSpace, Pattern: `[ \t]+`},
			{Kind: kindNum, Pattern: `[0-9]+`},
			{Kind: kindIdent, Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
			{Kind: kindPlus, Pattern: `\+`},
		},
		Keywords: map[string]bool{"if": true},
		Handlers: map[derp.Kind]HandlerFunc{
			kindSpace: func(string, derp.Position) (any, bool) { return nil, false },
		},
	}
}

func TestRegexTokenizer_Tokenize(t *testing.T) {
	t.Parallel()

	toks, err := arithTokenizer().Tokenize("12 + 3")
	if diff := cmp.Diff(nil, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Tokenize err (-want +got):\n%s", diff)
	}

	var kinds []derp.Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}

	want := []derp.Kind{kindNum, kindPlus, kindNum, derp.ENDMARKER}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds (-want +got):\n%s", diff)
	}

	if toks[0].Value != "12" {
		t.Errorf("toks[0].Value: want %q, got %q", "12", toks[0].Value)
	}
}

func TestRegexTokenizer_KeywordOverride(t *testing.T) {
	t.Parallel()

	toks, err := arithTokenizer().Tokenize("if")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	if toks[0].Kind != derp.Kind("if") {
		t.Errorf("toks[0].Kind: want keyword kind %q, got %q", "if", toks[0].Kind)
	}
}

func TestRegexTokenizer_InnerCapturingGroupDoesNotShiftRuleIndex(t *testing.T) {
	t.Parallel()

	const (
		kindFloat derp.Kind = "FLOAT"
		kindInt   derp.Kind = "INT"
	)

	tz := &RegexTokenizer{
		Rules: []Rule{
			// Pattern has its own capturing groups, which would shift
			// every later rule's submatch index under a positional
			// (2+2i) scheme.
			{Kind: kindFloat, Pattern: `([0-9]+)\.([0-9]+)`},
			{Kind: kindInt, Pattern: `[0-9]+`},
			{Kind: kindPlus, Pattern: `\+`},
		},
	}

	toks, err := tz.Tokenize("3.14+2")
	if diff := cmp.Diff(nil, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Tokenize err (-want +got):\n%s", diff)
	}

	var kinds []derp.Kind

	var values []any

	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
		values = append(values, tk.Value)
	}

	wantKinds := []derp.Kind{kindFloat, kindPlus, kindInt, derp.ENDMARKER}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Errorf("kinds (-want +got):\n%s", diff)
	}

	wantValues := []any{"3.14", "+", "2", derp.ENDMARKER}
	if diff := cmp.Diff(wantValues, values); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
}

func TestRegexTokenizer_SyntaxErrorOnUnmatchedInput(t *testing.T) {
	t.Parallel()

	_, err := arithTokenizer().Tokenize("12 @ 3")

	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("Tokenize: want *SyntaxError, got %T (%v)", err, err)
	}

	if synErr.Text != "@" {
		t.Errorf("SyntaxError.Text: want %q, got %q", "@", synErr.Text)
	}
}
