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

// deriveNull computes the set of parse trees p contributes for the
// empty remaining input. For the non-recursive variants it is a direct
// structural computation; for Rec and Lazy it is the least fixed point
// over the Forest lattice ordered by inclusion, computed by Kleene
// iteration (§4.1).
func deriveNull(s *scope, p Parser) Forest {
	if cached, ok := s.nullCache[p]; ok {
		return cached
	}

	switch n := p.(type) {
	case *emptyParser:
		return s.memoNull(p, Forest{})

	case *epsT:
		return s.memoNull(p, n.trees)

	case *litT:
		return s.memoNull(p, Forest{})

	case *altT:
		return s.memoNull(p, deriveNull(s, n.left).union(deriveNull(s, n.right)))

	case *catT:
		return s.memoNull(p, deriveNull(s, n.left).product(deriveNull(s, n.right)))

	case *redT:
		return s.memoNull(p, deriveNull(s, n.parser).mapTrees(n.fn))

	case *deltaT:
		return s.memoNull(p, deriveNull(s, n.parser))

	case *recT:
		return fixedPointNull(s, p, func() Forest { return deriveNull(s, n.inner) })

	case *lazyT:
		return fixedPointNull(s, p, func() Forest { return deriveNull(s, n.force(s)) })

	default:
		panic("derp: unknown parser variant in deriveNull")
	}
}

// memoNull caches a nullability result and returns it. While any
// fixed point is still in progress the result may depend on a guess,
// so it is returned without being cached.
func (s *scope) memoNull(p Parser, f Forest) Forest {
	if len(s.nullGuess) == 0 {
		s.nullCache[p] = f
	}

	return f
}

// fixedPointNull computes the least fixed point of step, the
// nullability equation for a node that may recursively depend on its
// own nullability (Rec, Lazy). If p is already mid-computation (a
// cyclic re-entry), the current guess is returned instead of
// recursing again — that guess, read by the caller one level up the
// call stack, is exactly what lets the Kleene iteration converge
// instead of looping forever.
func fixedPointNull(s *scope, p Parser, step func() Forest) Forest {
	if guess, inProgress := s.nullGuess[p]; inProgress {
		return guess
	}

	guess := Forest{}

	for {
		s.nullGuess[p] = guess

		next := step()
		if guess.equal(next) {
			delete(s.nullGuess, p)

			return s.memoNull(p, next)
		}

		guess = next
	}
}
