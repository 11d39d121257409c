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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ianlewis/runeio"

	"github.com/corvidae/derp"
)

// EOF is the rune returned by Peek/NextRune at end of input, adapted
// from the teacher's CustomLexer sentinel of the same name.
const EOF rune = -1

// SubState is one of the three states a SubTokenizer can be in, per
// §4.7.
type SubState int

const (
	// Running means the sub-tokenizer wants to keep consuming input.
	Running SubState = iota

	// Handled means the sub-tokenizer emitted a token (via
	// StackContext.Emit) and is releasing control.
	Handled

	// Unhandled means the current character does not belong to this
	// sub-tokenizer; it is popped and its parent retries the
	// character.
	Unhandled
)

// SubTokenizer is one level of a StackTokenizer's stack: a
// self-contained lexing state that recognizes a sub-language of the
// input (e.g. a string literal body) and, per step, reports whether it
// wants more input, has emitted a token, or has hit input it doesn't
// recognize.
type SubTokenizer interface {
	// Step runs one unit of work and reports the state reached.
	// Returning io.EOF indicates the sub-tokenizer is finished and
	// should be popped, same as reaching end of input while Running.
	Step(ctx *StackContext) (SubState, error)
}

// SubTokenizerFunc adapts a function to a SubTokenizer.
type SubTokenizerFunc func(ctx *StackContext) (SubState, error)

// Step implements SubTokenizer.
func (f SubTokenizerFunc) Step(ctx *StackContext) (SubState, error) { return f(ctx) }

// StackContext is passed to a SubTokenizer's Step method, mirroring the
// teacher's CustomLexerContext: it exposes the underlying reader,
// cursor, and token buffer without exposing the StackTokenizer's
// internals directly.
type StackContext struct {
	l *StackTokenizer
}

// Push installs sub as the new top of the stack: subsequent Step calls
// go to it until it reaches Handled (and pops itself, since nested
// sub-tokenizers are one-shot) or Unhandled (also popped, letting the
// parent retry).
func (ctx *StackContext) Push(sub SubTokenizer) {
	ctx.l.stack = append(ctx.l.stack, sub)
}

// Advance attempts to advance the reader one rune without updating the
// token cursor, returning true if it actually advanced.
func (ctx *StackContext) Advance() bool { return ctx.l.advance(1, false) == 1 }

// Discard attempts to discard the next rune, advancing the token
// cursor, returning true if it actually discarded.
func (ctx *StackContext) Discard() bool { return ctx.l.advance(1, true) == 1 }

// Peek returns the next rune without advancing the reader or cursor,
// or EOF at end of input.
func (ctx *StackContext) Peek() rune {
	p := ctx.l.peekN(1)
	if len(p) < 1 {
		return EOF
	}

	return p[0]
}

// PeekN returns up to n runes without advancing the reader or cursor.
func (ctx *StackContext) PeekN(n int) []rune { return ctx.l.peekN(n) }

// NextRune returns the next rune, advancing the reader but not the
// token cursor.
func (ctx *StackContext) NextRune() rune { return ctx.l.nextRune() }

// Find searches for one of query, advancing the reader but not the
// token cursor, stopping when found. Returns the empty string if no
// match is found before end of input.
func (ctx *StackContext) Find(query []string) string { return ctx.l.find(query) }

// DiscardTo is Find, but also advances the token cursor past the
// discarded prefix.
func (ctx *StackContext) DiscardTo(query []string) string { return ctx.l.discardTo(query) }

// Ignore discards the pending token text and resets the cursor to the
// reader's current position.
func (ctx *StackContext) Ignore() { ctx.l.ignore() }

// Emit emits a token of the given kind spanning from the cursor to the
// reader's current position, and resets the cursor.
func (ctx *StackContext) Emit(kind derp.Kind) derp.Token { return ctx.l.emit(kind) }

// Token returns the pending token text accumulated since the last
// Ignore/Emit.
func (ctx *StackContext) Token() string { return ctx.l.b.String() }

// Cursor returns the start position of the token currently being
// built.
func (ctx *StackContext) Cursor() derp.Position { return ctx.l.cursor }

// Pos returns the reader's current position.
func (ctx *StackContext) Pos() derp.Position { return ctx.l.pos }

// StackTokenizer lexes a byte stream via a stack of SubTokenizer
// states, the explicit realization of §4.7's running/handled/unhandled
// state machine. It is adapted from the teacher's CustomLexer, reusing
// its rune-at-a-time runeio-backed reading, but generalized from one
// persistent lexing state to a stack so a sub-tokenizer can delegate to
// a nested one (e.g. the root tokenizer pushing a string-literal
// sub-tokenizer) and have control return automatically.
type StackTokenizer struct {
	stack []SubTokenizer

	r   *runeio.RuneReader
	b   strings.Builder
	buf []derp.Token

	pos    derp.Position
	cursor derp.Position

	err error
}

// NewStackTokenizer creates a tokenizer reading from reader, with root
// as the bottom (persistent) sub-tokenizer on the stack.
func NewStackTokenizer(reader io.Reader, root SubTokenizer) *StackTokenizer {
	var filename string

	if f, ok := reader.(*os.File); ok {
		filename = f.Name()
	}

	start := derp.Position{Filename: filename, Offset: 0, Line: 1, Column: 1}

	br, isBuf := reader.(*bufio.Reader)
	if !isBuf {
		br = bufio.NewReader(reader)
	}

	return &StackTokenizer{
		stack:  []SubTokenizer{root},
		r:      runeio.NewReader(br),
		pos:    start,
		cursor: start,
	}
}

// Tokenize lexes the entire stream, returning tokens terminated by an
// ENDMARKER, or the first error a SubTokenizer or the reader produced.
func (l *StackTokenizer) Tokenize() ([]derp.Token, error) {
	var tokens []derp.Token

	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)

		if tok.Kind == derp.ENDMARKER {
			return tokens, nil
		}
	}
}

// NextToken runs the stack machine until a token is ready, the stream
// is exhausted (an ENDMARKER token is returned), or an error occurs.
func (l *StackTokenizer) NextToken() (derp.Token, error) {
	if l.err != nil {
		return derp.Token{}, l.err
	}

	ctx := &StackContext{l: l}

	for len(l.buf) == 0 {
		if len(l.stack) == 0 {
			return l.newToken(derp.ENDMARKER), nil
		}

		top := l.stack[len(l.stack)-1]

		state, err := top.Step(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				l.stack = l.stack[:len(l.stack)-1]

				continue
			}

			l.err = err

			return derp.Token{}, err
		}

		switch state {
		case Running:
			// Keep feeding the same sub-tokenizer.

		case Handled:
			// A nested sub-tokenizer's job (emit one token) is done;
			// the root stays on the stack so the machine keeps
			// producing tokens for the rest of the input.
			if len(l.stack) > 1 {
				l.stack = l.stack[:len(l.stack)-1]
			}

		case Unhandled:
			l.stack = l.stack[:len(l.stack)-1]

			if len(l.stack) == 0 {
				err := fmt.Errorf("lex: unhandled input at %s with no parent tokenizer", l.pos)
				l.err = err

				return derp.Token{}, err
			}
		}
	}

	tok := l.buf[0]
	l.buf = l.buf[1:]

	return tok, nil
}

func (l *StackTokenizer) nextRune() rune {
	if l.err != nil {
		return EOF
	}

	r, _, err := l.r.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			l.err = err
		}

		return EOF
	}

	l.pos.Offset++
	l.pos.Column++

	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	}

	_, _ = l.b.WriteRune(r)

	return r
}

func (l *StackTokenizer) advance(n int, discard bool) int {
	if l.err != nil {
		return 0
	}

	var advanced int

	if discard {
		defer l.ignore()
	}

	for i := 0; i < n; i++ {
		r, _, err := l.r.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.err = err
			}

			return advanced
		}

		advanced++
		l.pos.Offset++
		l.pos.Column++

		if r == '\n' {
			l.pos.Line++
			l.pos.Column = 1
		}

		if !discard {
			_, _ = l.b.WriteRune(r)
		}
	}

	return advanced
}

func (l *StackTokenizer) peekN(n int) []rune {
	if l.err != nil {
		return nil
	}

	p, err := l.r.Peek(n)
	if err != nil && !errors.Is(err, io.EOF) {
		l.err = err
	}

	return p
}

func (l *StackTokenizer) find(query []string) string {
	maxLen := longestOf(query)
	if maxLen == 0 {
		return ""
	}

	for {
		rns := l.peekN(maxLen)
		if len(rns) == 0 {
			return ""
		}

		if m := matchPrefix(string(rns), query); m != "" {
			return m
		}

		_ = l.nextRune()
	}
}

func (l *StackTokenizer) discardTo(query []string) string {
	maxLen := longestOf(query)
	if maxLen == 0 {
		return ""
	}

	for {
		rns := l.peekN(maxLen)
		if len(rns) == 0 {
			return ""
		}

		if m := matchPrefix(string(rns), query); m != "" {
			return m
		}

		_ = l.advance(1, true)
	}
}

func longestOf(query []string) int {
	max := 0

	for _, q := range query {
		if len(q) > max {
			max = len(q)
		}
	}

	return max
}

func matchPrefix(s string, query []string) string {
	for _, q := range query {
		if strings.HasPrefix(s, q) {
			return q
		}
	}

	return ""
}

func (l *StackTokenizer) ignore() {
	l.cursor = l.pos
	l.b.Reset()
}

func (l *StackTokenizer) emit(kind derp.Kind) derp.Token {
	tok := l.newToken(kind)
	l.buf = append(l.buf, tok)
	l.ignore()

	return tok
}

func (l *StackTokenizer) newToken(kind derp.Kind) derp.Token {
	return derp.Token{
		Kind:  kind,
		Value: l.b.String(),
		Start: l.cursor,
		End:   l.pos,
	}
}
