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

// ParseTree is a single derivation produced by a grammar. It is opaque
// to the engine: a Token value, a Pair built by Cat, or whatever a Red
// function returns. Go's comparable constraint admits interface types
// (with a runtime panic for non-comparable dynamic values), so trees
// may be used directly as Forest/map keys as long as callers never put
// a slice or map inside one; use a Pair or an ast.Node instead.
type ParseTree = any

// Pair is the forest contribution of a Cat node: one tree from the left
// sub-parser and one from the right.
type Pair struct {
	First  ParseTree
	Second ParseTree
}

// Forest is the set of parse trees a parser contributes for a given
// remaining input. Forests are sets: duplicate derivations coalesce.
type Forest map[ParseTree]struct{}

// NewForest builds a Forest containing exactly the given trees.
func NewForest(trees ...ParseTree) Forest {
	f := make(Forest, len(trees))
	for _, t := range trees {
		f[t] = struct{}{}
	}

	return f
}

// Trees returns the forest's members as a slice, in no particular
// order.
func (f Forest) Trees() []ParseTree {
	out := make([]ParseTree, 0, len(f))
	for t := range f {
		out = append(out, t)
	}

	return out
}

func (f Forest) union(other Forest) Forest {
	if len(f) == 0 {
		return other
	}

	if len(other) == 0 {
		return f
	}

	out := make(Forest, len(f)+len(other))

	for t := range f {
		out[t] = struct{}{}
	}

	for t := range other {
		out[t] = struct{}{}
	}

	return out
}

// product returns { Pair{a, b} : a in f, b in other }, the Cat node's
// nullability equation.
func (f Forest) product(other Forest) Forest {
	if len(f) == 0 || len(other) == 0 {
		return Forest{}
	}

	out := make(Forest, len(f)*len(other))

	for a := range f {
		for b := range other {
			out[Pair{First: a, Second: b}] = struct{}{}
		}
	}

	return out
}

// mapTrees returns { f(t) : t in trees }, the Red node's nullability
// equation. The reduction function is treated as opaque; panics are not
// recovered (see ReduceFunc).
func (f Forest) mapTrees(fn ReduceFunc) Forest {
	if len(f) == 0 {
		return Forest{}
	}

	out := make(Forest, len(f))

	for t := range f {
		out[fn(t)] = struct{}{}
	}

	return out
}

// equal reports whether two forests have the same members. Used by the
// nullability fixed-point loop to detect convergence.
func (f Forest) equal(other Forest) bool {
	if len(f) != len(other) {
		return false
	}

	for t := range f {
		if _, ok := other[t]; !ok {
			return false
		}
	}

	return true
}
