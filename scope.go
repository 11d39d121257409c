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

// derivKey is the derivative cache key: a parser identity paired with a
// token's (kind, value) pair. Position is deliberately excluded, since
// Token equality for the purposes of the algebra is pair equality.
type derivKey struct {
	p     Parser
	kind  Kind
	value any
}

// scope is a parse context: the three cache families of §4.4, all
// keyed by parser identity, all bound to one top-level Parse call and
// discarded at its end. Parser nodes never hold their own caches, which
// is what lets independent Parse calls share one frozen grammar
// concurrently (§5).
type scope struct {
	// derivative cache: (parser, token) -> parser.
	deriveCache map[derivKey]Parser

	// nullability cache: parser -> its stabilized nullability set.
	nullCache map[Parser]Forest

	// nullGuess holds the in-progress Kleene-iteration guess for a
	// parser currently being stabilized. A recursive re-entry into the
	// same parser's nullability equation reads this guess instead of
	// recursing again, which is what terminates the fixed point.
	nullGuess map[Parser]Forest
}

// newScope opens a fresh parse context.
func newScope() *scope {
	return &scope{
		deriveCache: make(map[derivKey]Parser),
		nullCache:   make(map[Parser]Forest),
		nullGuess:   make(map[Parser]Forest),
	}
}
