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

import "sort"

// Grammar is a named map from rule names to parser references,
// supporting forward references through Rec so that mutually-recursive
// rules can be written in natural order (§4.2).
type Grammar struct {
	name       string
	rules      map[string]Parser
	recurrence map[string]*recT
	frozen     bool
}

// NewGrammar creates an empty, unfrozen grammar namespace.
func NewGrammar(name string) *Grammar {
	return &Grammar{
		name:       name,
		rules:      make(map[string]Parser),
		recurrence: make(map[string]*recT),
	}
}

// Rule reads a rule by name. If the rule has not yet been assigned, a
// fresh Rec is allocated and returned so the grammar can be written
// with forward and mutual references. Reading an unknown rule from a
// frozen grammar is a GrammarError.
func (g *Grammar) Rule(name string) (Parser, error) {
	if p, ok := g.rules[name]; ok {
		return p, nil
	}

	if g.frozen {
		return nil, &GrammarError{Rule: name, Reason: "unknown rule in frozen grammar"}
	}

	rec := NewRec(name)
	g.rules[name] = rec
	g.recurrence[name] = rec

	return rec, nil
}

// Define assigns parser to name. If name was previously read before
// being defined, the Rec allocated by that read is tied to parser;
// double-assignment is a GrammarError, as is defining after freeze.
func (g *Grammar) Define(name string, parser Parser) error {
	if g.frozen {
		return &GrammarError{Rule: name, Reason: "grammar is frozen"}
	}

	if parser == nil {
		return &GrammarError{Rule: name, Reason: "cannot assign a nil parser"}
	}

	if rec, ok := g.recurrence[name]; ok {
		if err := rec.Tie(parser); err != nil {
			return err
		}

		delete(g.recurrence, name)

		return nil
	}

	if _, exists := g.rules[name]; exists {
		return &GrammarError{Rule: name, Reason: "rule already assigned"}
	}

	g.rules[name] = parser

	return nil
}

// Freeze checks that every Rec allocated by a forward reference has
// since been tied, and rejects the grammar otherwise. After Freeze
// succeeds, Define fails, and Rule fails for any name not already in
// the grammar.
func (g *Grammar) Freeze() error {
	if g.frozen {
		return nil
	}

	names := make([]string, 0, len(g.recurrence))
	for name := range g.recurrence {
		names = append(names, name)
	}

	sort.Strings(names)

	if len(names) > 0 {
		return &GrammarError{Rule: names[0], Reason: "recursion point never defined"}
	}

	g.frozen = true

	return nil
}

// Frozen reports whether Freeze has succeeded.
func (g *Grammar) Frozen() bool {
	return g.frozen
}

// Rules returns the grammar's rule names in sorted order, for
// diagnostics and tests.
func (g *Grammar) Rules() []string {
	names := make([]string, 0, len(g.rules))
	for name := range g.rules {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Root returns the parser currently assigned to name, whether or not
// the grammar is frozen. It does not allocate a Rec for an unknown
// name; use Rule during grammar construction instead.
func (g *Grammar) Root(name string) (Parser, error) {
	p, ok := g.rules[name]
	if !ok {
		return nil, &GrammarError{Rule: name, Reason: "no such rule"}
	}

	return p, nil
}
