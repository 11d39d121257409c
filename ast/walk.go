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

package ast

import (
	"fmt"
	"strings"
)

// Children returns n's field values that are themselves AST nodes,
// recursing into tuple ([]*Node) fields — the "iterate child nodes"
// primitive.
func (n *Node) Children() []*Node {
	var out []*Node

	for _, v := range n.values {
		switch x := v.(type) {
		case *Node:
			out = append(out, x)
		case []*Node:
			out = append(out, x...)
		}
	}

	return out
}

// Walk returns root and all of its descendants as a slice, in
// breadth-first order.
func Walk(root *Node) []*Node {
	if root == nil {
		return nil
	}

	var (
		out   []*Node
		queue = []*Node{root}
	)

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		out = append(out, n)
		queue = append(queue, n.Children()...)
	}

	return out
}

// Visitor dispatches on a node's concrete class name to a registered
// function, falling back to a generic recursive walk that visits every
// child but builds nothing.
type Visitor struct {
	// byKind maps a Kind's Name() to its handler.
	byKind map[string]func(*Node)
}

// NewVisitor creates an empty Visitor. Use On to register per-kind
// handlers before calling Visit.
func NewVisitor() *Visitor {
	return &Visitor{byKind: make(map[string]func(*Node))}
}

// On registers fn as the handler for nodes of kind k's class name.
// Returns the Visitor for chaining.
func (v *Visitor) On(k *Kind, fn func(*Node)) *Visitor {
	v.byKind[k.Name()] = fn
	return v
}

// Visit dispatches to the registered handler for n's class, or to
// GenericVisit if none is registered.
func (v *Visitor) Visit(n *Node) {
	if fn, ok := v.byKind[n.kind.name]; ok {
		fn(n)
		return
	}

	v.GenericVisit(n)
}

// GenericVisit recursively visits every child of n without acting on n
// itself.
func (v *Visitor) GenericVisit(n *Node) {
	for _, child := range n.Children() {
		v.Visit(child)
	}
}

// TransformFunc rewrites a node during a Transformer pass. Returning
// nil drops the node from its parent's tuple field (a no-op for a
// singular *Node field, which cannot be dropped — see
// Transformer.GenericTransform).
type TransformFunc func(*Node) *Node

// Transformer dispatches like Visitor, but each handler returns a
// replacement node (or nil, to drop it from a tuple field). Original
// nodes are never mutated: if any child changed, a new parent is
// constructed with the replacements.
type Transformer struct {
	byKind map[string]TransformFunc
}

// NewTransformer creates an empty Transformer.
func NewTransformer() *Transformer {
	return &Transformer{byKind: make(map[string]TransformFunc)}
}

// On registers fn as the handler for nodes of kind k's class name.
// Returns the Transformer for chaining.
func (t *Transformer) On(k *Kind, fn TransformFunc) *Transformer {
	t.byKind[k.Name()] = fn
	return t
}

// Transform rewrites n, dispatching to the registered handler for its
// class, or to GenericTransform (rebuild children, keep n's class) if
// none is registered.
func (t *Transformer) Transform(n *Node) *Node {
	if n == nil {
		return nil
	}

	if fn, ok := t.byKind[n.kind.name]; ok {
		return fn(n)
	}

	return t.GenericTransform(n)
}

// GenericTransform rebuilds n from its transformed children. *Node
// fields are replaced in place (dropping one is not possible — a
// singular field can't become absent, so a nil replacement keeps the
// original child); []*Node tuple fields are
// rebuilt element by element, dropping any child whose handler
// returned nil. If nothing changed, n itself is returned unmodified.
func (t *Transformer) GenericTransform(n *Node) *Node {
	changed := false
	newValues := make([]any, len(n.values))

	for i, v := range n.values {
		switch x := v.(type) {
		case *Node:
			replacement := t.Transform(x)
			if replacement == nil {
				replacement = x
			}

			if replacement != x {
				changed = true
			}

			newValues[i] = replacement

		case []*Node:
			var rebuilt []*Node

			tupleChanged := false

			for _, child := range x {
				replacement := t.Transform(child)
				if replacement != child {
					tupleChanged = true
				}

				if replacement != nil {
					rebuilt = append(rebuilt, replacement)
				}
			}

			if tupleChanged || len(rebuilt) != len(x) {
				changed = true
			}

			newValues[i] = rebuilt

		default:
			newValues[i] = v
		}
	}

	if !changed {
		return n
	}

	return n.kind.MustNew(newValues...)
}

// Print renders node as an indented tree, in the box-drawing style
// (├── / └──) used throughout the teacher's parse-tree printer.
func Print(node *Node) string {
	var b strings.Builder

	writeNode(&b, node, nil)

	return b.String()
}

func writeNode(b *strings.Builder, node *Node, lastRank []bool) {
	for i := 0; i < len(lastRank)-1; i++ {
		if lastRank[i] {
			b.WriteString("    ")
		} else {
			b.WriteString("│   ")
		}
	}

	if len(lastRank) > 0 {
		if lastRank[len(lastRank)-1] {
			b.WriteString("└── ")
		} else {
			b.WriteString("├── ")
		}
	}

	fmt.Fprintf(b, "%s\n", node.String())

	children := node.Children()
	for i, child := range children {
		next := make([]bool, len(lastRank)+1)
		copy(next, lastRank)
		next[len(lastRank)] = i == len(children)-1

		writeNode(b, child, next)
	}
}
