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

// Parse drives root across tokens one token at a time: compute the
// derivative wrt the current token, compact, and short-circuit as soon
// as the parser becomes Empty. After the stream is exhausted, the
// current parser's nullability set is the returned forest.
//
// The returned error is non-nil only when a panic whose value is an
// error is raised during the parse. This is how a reduction built with
// RedE reports a semantic-action failure (§4.8 kind 5); an error-valued
// panic from a plain Red function, or a runtime error raised during the
// parse, is returned the same way, since Parse does not tell them
// apart. An empty forest is not an error — callers decide whether "the
// grammar rejected this input" is a failure condition for them. A panic
// whose value is not an error re-panics unchanged.
func Parse(root Parser, tokens []Token) (forest Forest, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e

				return
			}

			panic(r)
		}
	}()

	s := newScope()

	parser := root

	for _, tok := range tokens {
		parser = compact(s, derive(s, parser, tok), newCompactionScope())

		if parser == Empty {
			break
		}
	}

	return deriveNull(s, parser), nil
}
