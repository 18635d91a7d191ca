package scanner

import (
	"github.com/npillmayer/paredros"
)

// TokenStream is a buffered token source for parsers. It pulls tokens lazily
// from a Tokenizer and keeps all of them, so parsers may look ahead
// arbitrarily far and rewind to earlier positions.
//
// After the end of input has been reached, every further lookahead yields
// the EOF token, with an empty span at the end of the input.
type TokenStream struct {
	src       Tokenizer
	tokens    []paredros.Token
	pos       int // index of the next token to consume
	eof       bool
	lexErrors []error
}

// NewTokenStream wraps a tokenizer. Scanner errors are collected and may be
// retrieved with LexErrors().
func NewTokenStream(src Tokenizer) *TokenStream {
	ts := &TokenStream{
		src:    src,
		tokens: make([]paredros.Token, 0, 64),
	}
	src.SetErrorHandler(func(err error) {
		tracer().Errorf("scanner error: %v", err)
		ts.lexErrors = append(ts.lexErrors, err)
	})
	return ts
}

// fill reads tokens until index i is buffered or the end of input is reached.
func (ts *TokenStream) fill(i int) {
	for !ts.eof && len(ts.tokens) <= i {
		tok := ts.src.NextToken()
		ts.tokens = append(ts.tokens, tok)
		if tok.TokType() == EOF {
			ts.eof = true
		}
	}
}

// Token returns the token with index i. If i is behind the end of input,
// the EOF token is returned.
func (ts *TokenStream) Token(i int) paredros.Token {
	ts.fill(i)
	if i >= len(ts.tokens) {
		return ts.tokens[len(ts.tokens)-1]
	}
	if i < 0 {
		i = 0
	}
	return ts.tokens[i]
}

// LA returns the k-th token of lookahead, starting with k = 1 for the token
// to be consumed next.
func (ts *TokenStream) LA(k int) paredros.Token {
	if k < 1 {
		panic("scanner.TokenStream.LA() called with k < 1")
	}
	return ts.Token(ts.pos + k - 1)
}

// Consume advances the stream by one token and returns the token consumed.
// Consuming the EOF token is possible, but will not move the stream any further.
func (ts *TokenStream) Consume() paredros.Token {
	tok := ts.LA(1)
	if ts.pos < len(ts.tokens) {
		ts.pos++
	}
	return tok
}

// Index returns the index of the next token to consume.
func (ts *TokenStream) Index() int {
	return ts.pos
}

// Mark returns a marker for the current position. Use it for Rewind.
func (ts *TokenStream) Mark() int {
	return ts.pos
}

// Rewind resets the stream to a position previously returned by Mark.
func (ts *TokenStream) Rewind(mark int) {
	ts.Seek(mark)
}

// Seek sets the position of the stream to token index i.
func (ts *TokenStream) Seek(i int) {
	if i < 0 || i > len(ts.tokens) {
		panic("scanner.TokenStream.Seek() to a position not yet read")
	}
	ts.pos = i
}

// Len returns the number of tokens read so far, including EOF if it has been
// reached.
func (ts *TokenStream) Len() int {
	return len(ts.tokens)
}

// Tokens returns all tokens read so far. Clients must treat the result as
// read-only.
func (ts *TokenStream) Tokens() []paredros.Token {
	return ts.tokens
}

// Offset returns the input offset where the next token starts.
func (ts *TokenStream) Offset() uint64 {
	return ts.LA(1).Span().From()
}

// Consumed returns the input offset just behind the last token consumed. If
// nothing has been consumed yet, the start of the first token is returned.
func (ts *TokenStream) Consumed() uint64 {
	if ts.pos == 0 {
		return ts.Offset()
	}
	return ts.tokens[ts.pos-1].Span().To()
}

// LexErrors returns all errors the scanner reported so far.
func (ts *TokenStream) LexErrors() []error {
	return ts.lexErrors
}
