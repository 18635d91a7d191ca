/*
Package scanner defines an interface for scanners to be used with the parsers of
paredros.

Two default scanner implementations are provided: (1) a thin wrapper over the Go std lib
'text/scanner', and (2) an adapter for lexmachine, living in sub-package `lexmach`.

Parsers do not read from scanners directly, but from a TokenStream. A token
stream remembers every token it has read. This allows for arbitrary lookahead,
for backtracking, and for looking up tokens after a parse is done.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"fmt"
	"io"
	"text/scanner"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paredros.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("paredros.scanner")
}

// EOF is identical to text/scanner.EOF.
// Token types are replicated here for practical reasons.
const (
	EOF       = scanner.EOF
	Ident     = scanner.Ident
	Int       = scanner.Int
	Float     = scanner.Float
	Char      = scanner.Char
	String    = scanner.String
	RawString = scanner.RawString
	Comment   = scanner.Comment
)

// Tokenizer is a scanner interface.
type Tokenizer interface {
	NextToken() paredros.Token
	SetErrorHandler(func(error))
}

// DefaultTokenizer reads tokens of the Go language, using text/scanner.
// Create one with GoTokenizer.
type DefaultTokenizer struct {
	sc           scanner.Scanner
	onError      func(error)
	unifyStrings bool
}

var _ Tokenizer = (*DefaultTokenizer)(nil)

func logError(e error) {
	tracer().Errorf("scanner error: %v", e)
}

// GoTokenizer creates a tokenizer for Go-like input. Comments are skipped
// unless option KeepComments is given. Token types are the ones of
// text/scanner, or the character code for single-character tokens.
func GoTokenizer(sourceID string, input io.Reader, opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{onError: logError}
	t.sc.Init(input)
	t.sc.Filename = sourceID
	t.sc.Error = func(sc *scanner.Scanner, msg string) {
		t.onError(fmt.Errorf("%s: %s", sc.Pos(), msg))
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetErrorHandler is part of interface Tokenizer. A nil handler resets
// error handling to logging.
func (t *DefaultTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		h = logError
	}
	t.onError = h
}

// NextToken is part of interface Tokenizer. At the end of input it returns
// an EOF token with an empty span.
func (t *DefaultTokenizer) NextToken() paredros.Token {
	typ := t.sc.Scan()
	end := uint64(t.sc.Pos().Offset)
	if typ == scanner.EOF {
		tracer().Debugf("%s: end of input at %d", t.sc.Filename, end)
		return DefaultToken{kind: EOF, span: paredros.Span{end, end}}
	}
	if t.unifyStrings && (typ == scanner.RawString || typ == scanner.Char) {
		typ = scanner.String
	}
	return DefaultToken{
		kind:   paredros.TokType(typ),
		lexeme: t.sc.TokenText(),
		span:   paredros.Span{uint64(t.sc.Position.Offset), end},
	}
}

// Option configures a Go tokenizer.
type Option func(t *DefaultTokenizer)

// KeepComments makes comments tokens of type Comment instead of skipping
// them.
func KeepComments(keep bool) Option {
	return func(t *DefaultTokenizer) {
		if keep {
			t.sc.Mode &^= scanner.SkipComments
		} else {
			t.sc.Mode |= scanner.SkipComments
		}
	}
}

// UnifyStrings reports raw strings and character literals as tokens of
// type String, so a grammar needs a single terminal for all of them.
func UnifyStrings(unify bool) Option {
	return func(t *DefaultTokenizer) {
		t.unifyStrings = unify
	}
}

// --- Default tokens --------------------------------------------------------

// DefaultToken is a simple token type, used by the Go tokenizer as well as
// by the lexmachine adapter. Spans are byte offsets.
type DefaultToken struct {
	kind   paredros.TokType
	lexeme string
	Val    interface{}
	span   paredros.Span
}

// MakeDefaultToken creates a token from its components.
func MakeDefaultToken(typ paredros.TokType, lexeme string, span paredros.Span) DefaultToken {
	return DefaultToken{
		kind:   typ,
		lexeme: lexeme,
		span:   span,
	}
}

// TokType is part of interface paredros.Token.
func (t DefaultToken) TokType() paredros.TokType {
	return t.kind
}

// Value is part of interface paredros.Token.
func (t DefaultToken) Value() interface{} {
	return t.Val
}

// Lexeme is part of interface paredros.Token.
func (t DefaultToken) Lexeme() string {
	return t.lexeme
}

// Span is part of interface paredros.Token.
func (t DefaultToken) Span() paredros.Span {
	return t.span
}

// TokenString returns a printable form of a token: its lexeme, or the name
// of its token type for tokens without a lexeme (like EOF). names may be
// nil.
func TokenString(tok paredros.Token, names paredros.TokTypeStringer) string {
	if tok == nil {
		return ""
	}
	if lexeme := tok.Lexeme(); lexeme != "" {
		return lexeme
	}
	if names != nil {
		if name := names(tok.TokType()); name != "" {
			return name
		}
	}
	if tok.TokType() == EOF {
		return "#eof"
	}
	return fmt.Sprintf("<%d>", tok.TokType())
}
