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

// Package ast is the generic AST substrate: a factory for named, typed
// tree-node classes (§4.5), grounded in the original implementation's
// declarative node maker (_make_ast_node) but expressed without runtime
// class synthesis, which Go doesn't have.
package ast

import (
	"fmt"
	"hash/fnv"
	"reflect"
)

// Kind is a declared node class: a name, an optional parent class, and
// an ordered list of field names. A subclass inherits its parent's
// fields and appends its own; field names across the full chain must
// be unique.
type Kind struct {
	name   string
	parent *Kind
	own    []string
	all    []string

	intern map[uint64][]*Node
}

// Define declares a new node Kind. parent may be nil for a root class.
func Define(name string, parent *Kind, fields ...string) (*Kind, error) {
	seen := make(map[string]bool)

	var all []string

	if parent != nil {
		all = append(all, parent.all...)

		for _, f := range all {
			seen[f] = true
		}
	}

	for _, f := range fields {
		if seen[f] {
			return nil, fmt.Errorf("ast: duplicate field %q declared for %s", f, name)
		}

		seen[f] = true

		all = append(all, f)
	}

	return &Kind{
		name:   name,
		parent: parent,
		own:    fields,
		all:    all,
		intern: make(map[uint64][]*Node),
	}, nil
}

// MustDefine is Define, panicking on error. Intended for package-level
// grammar AST declarations where a duplicate field name is a coding
// mistake, not a runtime condition.
func MustDefine(name string, parent *Kind, fields ...string) *Kind {
	k, err := Define(name, parent, fields...)
	if err != nil {
		panic(err)
	}

	return k
}

// Name returns the class name.
func (k *Kind) Name() string { return k.name }

// Fields returns the full, ordered field-name tuple: inherited fields
// first, then this class's own fields.
func (k *Kind) Fields() []string { return k.all }

// Parent returns the class this Kind was declared as a subclass of, or
// nil.
func (k *Kind) Parent() *Kind { return k.parent }

// IsA reports whether k is other or a subclass of other.
func (k *Kind) IsA(other *Kind) bool {
	for c := k; c != nil; c = c.parent {
		if c == other {
			return true
		}
	}

	return false
}

// Node is an instance of a Kind: one value per declared field.
// Equality is class-tag + field-tuple equality; hash is a precomputed
// tuple hash, both computed once at construction (New interns nodes by
// structural equality, so two New calls building the same tree return
// the same *Node — this is what lets a derp.Forest, a native Go map,
// deduplicate parse trees built from AST nodes purely by pointer
// identity).
type Node struct {
	kind   *Kind
	values []any
	hash   uint64
}

// New constructs a Node of kind k from values, given in field order.
// Children may themselves be *Node, a []*Node tuple, or an opaque
// scalar. New returns an error if the argument count does not match
// len(k.Fields()).
func (k *Kind) New(values ...any) (*Node, error) {
	if len(values) != len(k.all) {
		return nil, fmt.Errorf("ast: %s expects %d field(s), got %d", k.name, len(k.all), len(values))
	}

	h := hashNode(k.name, values)

	for _, candidate := range k.intern[h] {
		if nodeValuesEqual(candidate.values, values) {
			return candidate, nil
		}
	}

	n := &Node{kind: k, values: append([]any(nil), values...), hash: h}
	k.intern[h] = append(k.intern[h], n)

	return n, nil
}

// MustNew is New, panicking on error.
func (k *Kind) MustNew(values ...any) *Node {
	n, err := k.New(values...)
	if err != nil {
		panic(err)
	}

	return n
}

// Kind returns n's class.
func (n *Node) Kind() *Kind { return n.kind }

// Hash returns n's precomputed structural hash.
func (n *Node) Hash() uint64 { return n.hash }

// Equal reports whether n and other have the same class tag and field
// tuple.
func (n *Node) Equal(other *Node) bool {
	if n == other {
		return true
	}

	if other == nil || n.kind != other.kind {
		return false
	}

	return nodeValuesEqual(n.values, other.values)
}

// Field returns the value of the named field and whether it exists.
func (n *Node) Field(name string) (any, bool) {
	for i, f := range n.kind.all {
		if f == name {
			return n.values[i], true
		}
	}

	return nil, false
}

// FieldValue is one (name, value) pair of a Node, in declaration order.
type FieldValue struct {
	Name  string
	Value any
}

// FieldValues iterates the node's fields as (name, value) pairs, in
// declaration order — the AST substrate's "iterate fields" primitive.
func (n *Node) FieldValues() []FieldValue {
	out := make([]FieldValue, len(n.kind.all))

	for i, f := range n.kind.all {
		out[i] = FieldValue{Name: f, Value: n.values[i]}
	}

	return out
}

func (n *Node) String() string {
	fields := n.FieldValues()
	if len(fields) == 0 {
		return n.kind.name + "()"
	}

	out := n.kind.name + "("

	for i, f := range fields {
		if i != 0 {
			out += ", "
		}

		out += fmt.Sprintf("%s=%v", f.Name, f.Value)
	}

	return out + ")"
}

func hashNode(kindName string, values []any) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(kindName))

	for _, v := range values {
		hashValue(h, v)
	}

	return h.Sum64()
}

func hashValue(h interface{ Write([]byte) (int, error) }, v any) {
	switch x := v.(type) {
	case *Node:
		_, _ = h.Write([]byte{0, 1})
		var buf [8]byte
		putUint64(buf[:], x.hash)
		_, _ = h.Write(buf[:])

	case []*Node:
		_, _ = h.Write([]byte{0, 2})

		for _, e := range x {
			hashValue(h, e)
		}

	default:
		_, _ = h.Write([]byte{0, 3})
		_, _ = h.Write([]byte(fmt.Sprintf("%#v", v)))
	}
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func nodeValuesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !valueEqual(a[i], b[i]) {
			return false
		}
	}

	return true
}

func valueEqual(a, b any) bool {
	an, aok := a.(*Node)
	bn, bok := b.(*Node)

	if aok || bok {
		if !aok || !bok {
			return false
		}

		return an.Equal(bn)
	}

	at, atok := a.([]*Node)
	bt, btok := b.([]*Node)

	if atok || btok {
		if !atok || !btok || len(at) != len(bt) {
			return false
		}

		for i := range at {
			if !valueEqual(at[i], bt[i]) {
				return false
			}
		}

		return true
	}

	return reflect.DeepEqual(a, b)
}
