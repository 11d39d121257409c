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

// Package lex provides the tokenizer substrate that feeds tokens to a
// derp.Parser: a priority-ordered regex table lexer (this file) and a
// stack-of-sub-tokenizers state machine (stack.go), per §4.6–4.7.
package lex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/corvidae/derp"
)

// Rule is one (kind, pattern) entry in a RegexTokenizer's table,
// checked in priority order (highest first).
type Rule struct {
	Kind    derp.Kind
	Pattern string
}

// HandlerFunc post-processes a raw match for its Rule's kind. It
// returns the value to emit as the token's Value, or ok=false to skip
// the match (formatting,
// comments). The default handler emits the matched text verbatim.
type HandlerFunc func(match string, pos derp.Position) (value any, ok bool)

// SyntaxError is raised by a tokenizer when no rule matches the input
// at the current position (§7, kind 2).
type SyntaxError struct {
	Pos  derp.Position
	Text string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("lex: %s: no token matches %q", e.Pos, e.Text)
}

// RegexTokenizer is a reusable lexer parameterized by a priority-ordered
// table of (kind, regex) pairs plus a keyword set, grounded in the
// original implementation's Tokenizer.create_pattern/tokenize_text.
// Construction compiles a single alternation regex with named groups;
// tokenizing steps a match cursor across the input, and on each match
// the matching group's name selects a handler.
type RegexTokenizer struct {
	Rules    []Rule
	Keywords map[string]bool
	Handlers map[derp.Kind]HandlerFunc

	pattern *regexp.Regexp
	names   []string
}

// Compile builds the tokenizer's backing regular expression. It must
// be called (directly, or via the first Tokenize call) after Rules is
// populated and before tokenizing; it is idempotent.
func (t *RegexTokenizer) Compile() error {
	if t.pattern != nil {
		return nil
	}

	groupNames := make([]string, len(t.Rules))
	parts := make([]string, len(t.Rules))

	for i, r := range t.Rules {
		name := fmt.Sprintf("k%d", i)
		groupNames[i] = name
		parts[i] = fmt.Sprintf("(?P<%s>%s)", name, r.Pattern)
	}

	re, err := regexp.Compile(strings.Join(parts, "|"))
	if err != nil {
		return fmt.Errorf("lex: compiling tokenizer pattern: %w", err)
	}

	t.pattern = re
	t.names = groupNames

	return nil
}

// Tokenize lexes src in full, returning the token stream terminated by
// an ENDMARKER token, or a *SyntaxError at the first unmatched
// character.
func (t *RegexTokenizer) Tokenize(src string) ([]derp.Token, error) {
	if err := t.Compile(); err != nil {
		return nil, err
	}

	var (
		tokens []derp.Token
		offset int
		line   = 1
		column = 1
	)

	advance := func(s string) derp.Position {
		pos := derp.Position{Offset: offset, Line: line, Column: column}

		for _, r := range s {
			offset++

			if r == '\n' {
				line++
				column = 1
			} else {
				column++
			}
		}

		return pos
	}

	for offset < len(src) {
		loc := t.pattern.FindStringSubmatchIndex(src[offset:])
		if loc == nil || loc[0] != 0 {
			return nil, &SyntaxError{
				Pos:  derp.Position{Offset: offset, Line: line, Column: column},
				Text: string(src[offset]),
			}
		}

		matched := src[offset : offset+loc[1]]

		ruleIndex, kind := t.matchedRule(loc)
		if ruleIndex < 0 {
			return nil, &SyntaxError{
				Pos:  derp.Position{Offset: offset, Line: line, Column: column},
				Text: matched,
			}
		}

		start := advance(matched)

		value, ok := any(matched), true
		if t.Keywords[matched] {
			kind = derp.Kind(matched)
		}

		if h, exists := t.Handlers[kind]; exists {
			value, ok = h(matched, start)
		}

		if ok {
			tokens = append(tokens, derp.Token{
				Kind:  kind,
				Value: value,
				Start: start,
				End:   derp.Position{Offset: offset, Line: line, Column: column},
			})
		}
	}

	tokens = append(tokens, derp.Token{Kind: derp.ENDMARKER, Value: derp.ENDMARKER})

	return tokens, nil
}

// matchedRule returns the index into t.Rules of the named group that
// matched, and the corresponding Kind, or (-1, "") if none did (should
// not happen given the pattern is a total alternation, but regexp's API
// requires checking).
//
// The matched group is found by name via SubexpNames, not by a
// positional offset: a rule Pattern containing its own capturing group
// (e.g. a float `([0-9]+)\.([0-9]+)`) adds unnamed submatches that
// shift every later rule's group index, so assuming rule i occupies
// submatch slots [2+2i, 2+2i+1] breaks as soon as any earlier rule has
// inner groups. Looking up the name directly is immune to that shift,
// mirroring the original tokenizer's match.lastgroup dispatch.
func (t *RegexTokenizer) matchedRule(loc []int) (int, derp.Kind) {
	for g, name := range t.pattern.SubexpNames() {
		if name == "" || loc[2*g] == -1 {
			continue
		}

		i, err := strconv.Atoi(strings.TrimPrefix(name, "k"))
		if err != nil || i < 0 || i >= len(t.Rules) {
			continue
		}

		return i, t.Rules[i].Kind
	}

	return -1, ""
}
