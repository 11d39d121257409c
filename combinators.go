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

// EmptyString is the parser for the language {ε} carrying a single
// empty-string tree, the building block Opt/Star/Plus are defined
// from.
var EmptyString = EpsFrom("")

// Opt builds `ε | p`: p, or nothing.
func Opt(p Parser) Parser {
	return Alt(EmptyString, p)
}

// listEnd terminates a Star/Plus tuple chain. Forests are Go maps
// keyed on ParseTree, so every tree the engine builds internally must
// be a comparable value — a Go slice is not, which is why a repetition
// is folded right into a cons-style Pair chain (the literal reading of
// §6's "folded right into a tuple") rather than collected into a
// slice. ToSlice unpacks the chain for callers once it has left the
// forest.
type listEnd struct{}

// ListEnd is the sentinel terminating a folded Star/Plus tuple.
var ListEnd ParseTree = listEnd{}

// ToSlice unpacks a Star/Plus tuple (a right-nested chain of Pair
// terminated by ListEnd) into a plain slice, in matched order. Any
// other Pair chain is unpacked the same way, with its final non-Pair
// tree as the last element; a tree that is not a Pair is returned as a
// single-element slice.
func ToSlice(t ParseTree) []ParseTree {
	var out []ParseTree

	for {
		if t == ListEnd {
			return out
		}

		pair, ok := t.(Pair)
		if !ok {
			return append(out, t)
		}

		out = append(out, pair.First)
		t = pair.Second
	}
}

// Star builds zero-or-more repetitions of p, via a Rec tied to
// `Red(ε, nil-case) | Cat(p, rec)`: the empty match, or one p followed
// by the same rule again.
func Star(p Parser) Parser {
	rec := NewRec("star")

	nilCase := Red(EmptyString, func(ParseTree) ParseTree {
		return ListEnd
	}, "star-nil")

	consCase := Cat(p, rec)

	_ = rec.Tie(Alt(nilCase, consCase))

	return rec
}

// Plus builds one-or-more repetitions of p: `p & Star(p)`. Cat's own
// product-of-forests equation already yields the Pair{match, rest}
// shape the chain needs, so no separate Rec or fold is required here —
// unlike Star, Plus has no nullable branch, so it correctly rejects
// zero matches instead of accepting the empty string.
func Plus(p Parser) Parser {
	return Cat(p, Star(p))
}

// RedE wraps a fallible reduction: if fn returns a non-nil error, the
// engine panics with that error, which Parse recovers and returns
// unchanged (§4.8 kind 5, "semantic action failure"). Use this instead
// of a bare ReduceFunc when a semantic action needs to reject input it
// cannot build a tree from.
func RedE(p Parser, fn func(ParseTree) (ParseTree, error), name string) Parser {
	return Red(p, func(t ParseTree) ParseTree {
		tree, err := fn(t)
		if err != nil {
			panic(err)
		}

		return tree
	}, name)
}
