/*
Package session orchestrates parse-and-trace runs.

A Session holds a compiled grammar. Every call of Run parses an input text
with a fresh parser, attaches a fresh debug.Interceptor and
traversal.Builder, and returns the finalized traversal of the parse:

    s := session.New(session.WithMaxLookahead(3))
    if err := s.LoadGrammar("expr", grammarText); err != nil {
        return err // *paredros.GrammarError
    }
    result, err := s.Run("input", inputText)
    // result is non-nil even if err is a *paredros.ParseError

Sessions share no mutable state. Any number of them may run concurrently.
A single session must not be used concurrently, but the results it returns
may be shared freely.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package session

import (
	"errors"
	"fmt"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/debug"
	"github.com/npillmayer/paredros/lang"
	"github.com/npillmayer/paredros/lr/ll"
	"github.com/npillmayer/paredros/lr/scanner"
	"github.com/npillmayer/paredros/traversal"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paredros.session'.
func tracer() tracing.Trace {
	return tracing.Select("paredros.session")
}

// Session is a parse session for a grammar.
type Session struct {
	maxK     int
	start    string
	eventLog debug.EventSink
	tracing  bool
	lang     *lang.Language
}

// Option configures a session.
type Option func(*Session)

// WithMaxLookahead sets the maximum lookahead of the parser.
func WithMaxLookahead(k int) Option {
	return func(s *Session) {
		s.maxK = k
	}
}

// WithStart sets the start production of grammars loaded with LoadGrammar.
func WithStart(production string) Option {
	return func(s *Session) {
		s.start = production
	}
}

// WithEventLog adds an event sink receiving every event of every run, in
// addition to the traversal builder.
func WithEventLog(sink debug.EventSink) Option {
	return func(s *Session) {
		s.eventLog = sink
	}
}

// WithTracing switches tracing of every event on or off. The default is
// taken from configuration key 'paredros.trace-events'.
func WithTracing(on bool) Option {
	return func(s *Session) {
		s.tracing = on
	}
}

// New creates a session without a grammar.
func New(opts ...Option) *Session {
	s := &Session{
		tracing: gconf.GetBool("paredros.trace-events"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadGrammar compiles a grammar in EBNF notation and makes it the grammar
// of the session. Errors are of type *paredros.GrammarError.
func (s *Session) LoadGrammar(name, source string) error {
	var opts []lang.Option
	if s.start != "" {
		opts = append(opts, lang.StartProduction(s.start))
	}
	L, err := lang.Compile(name, source, opts...)
	if err != nil {
		tracer().Errorf("cannot load grammar %s: %v", name, err)
		return err
	}
	s.lang = L
	return nil
}

// UseLanguage sets a pre-compiled language as the grammar of the session.
func (s *Session) UseLanguage(L *lang.Language) {
	s.lang = L
}

// Language returns the grammar of the session, or nil.
func (s *Session) Language() *lang.Language {
	return s.lang
}

// ErrNoGrammar is reported by Run if no grammar has been loaded.
var ErrNoGrammar = errors.New("no grammar loaded")

// Run parses an input text and returns the trace of the parse. If the
// parser cannot recover from a syntax error, Run returns the partial result
// together with a *paredros.ParseError.
func (s *Session) Run(sourceID, input string) (*Result, error) {
	if s.lang == nil {
		return nil, &paredros.GrammarError{Err: ErrNoGrammar}
	}
	tok, err := s.lang.Tokenizer(sourceID, input)
	if err != nil {
		return nil, fmt.Errorf("cannot tokenize %s: %w", sourceID, err)
	}
	stream := scanner.NewTokenStream(tok)
	builder := traversal.NewBuilder()
	sink := debug.EventSink(builder)
	if s.eventLog != nil || s.tracing {
		var trace debug.EventSink
		if s.tracing {
			trace = debug.TraceSink{}
		}
		sink = debug.Tee(builder, s.eventLog, trace)
	}
	ic := debug.NewInterceptor(sink, s.lang.TokenName)
	opts := []ll.Option{ll.WithObserver(ic), ll.WithTokenNames(s.lang.TokenName)}
	if s.maxK > 0 {
		opts = append(opts, ll.MaxLookahead(s.maxK))
	}
	p := ll.NewParser(s.lang.Analysis(), s.lang.Table(), opts...)
	tracer().Infof("running grammar %s on %s", s.lang.Name(), sourceID)
	accepted, err := p.Parse(stream)
	ic.Finish(p.Furthest())
	result := &Result{
		Traversal:    builder.Finalize(p.Furthest()),
		SyntaxErrors: p.Errors(),
		LexErrors:    stream.LexErrors(),
		Tokens:       stream.Tokens(),
		lang:         s.lang,
		input:        input,
	}
	result.Accepted = accepted && len(result.LexErrors) == 0
	tracer().Infof("%s: accepted=%v, %d nodes, %d syntax errors", sourceID, result.Accepted,
		result.Traversal.Size(), len(result.SyntaxErrors))
	return result, err
}

// Debug is a shortcut for creating a session, loading a grammar and running
// it on an input text.
func Debug(grammarName, grammarSource, sourceID, input string, opts ...Option) (*Result, error) {
	s := New(opts...)
	if err := s.LoadGrammar(grammarName, grammarSource); err != nil {
		return nil, err
	}
	return s.Run(sourceID, input)
}
