package ll

import (
	"fmt"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/lr"
	"github.com/npillmayer/paredros/lr/scanner"
	"github.com/npillmayer/schuko/gconf"
)

// Default values for parser options.
const (
	DefaultMaxLookahead  = 4
	DefaultMaxRecoveries = 16
)

// Parser is a grammar-interpreting LL(*) parser. A parser may be used for
// more than one parse, but not concurrently.
type Parser struct {
	g           *lr.Grammar
	ga          *lr.LLAnalysis
	table       *lr.LLTable
	observer    Observer
	tokenName   func(paredros.TokType) string
	maxK        int
	maxRecov    int
	stream      *scanner.TokenStream
	frames      []*frame // rules currently being parsed, innermost last
	speculating int      // > 0 while trying alternatives
	errors      []*SyntaxError
	failed      *paredros.ParseError
	furthest    uint64
}

// frame is a rule being parsed. dot is the position behind the symbol
// currently being matched; rule.RHS()[dot:] is what the rule expects
// afterwards.
type frame struct {
	rule *lr.Rule
	dot  int
}

// Option configures a parser.
type Option func(p *Parser)

// MaxLookahead sets the maximum number of tokens the parser will look ahead
// to predict an alternative.
func MaxLookahead(k int) Option {
	return func(p *Parser) {
		if k > 0 {
			p.maxK = k
		}
	}
}

// MaxRecoveries sets the maximum number of syntax errors the parser will
// recover from. Subsequent errors stop the parse.
func MaxRecoveries(n int) Option {
	return func(p *Parser) {
		if n >= 0 {
			p.maxRecov = n
		}
	}
}

// WithObserver sets an observer for the parse.
func WithObserver(o Observer) Option {
	return func(p *Parser) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithTokenNames sets a function to display token types in error messages.
// By default the names of the grammar's terminals are used.
func WithTokenNames(f func(paredros.TokType) string) Option {
	return func(p *Parser) {
		p.tokenName = f
	}
}

// NewParser creates a parser for an analysed grammar. If table is nil, the
// LL(1) prediction table is constructed from the analysis.
func NewParser(ga *lr.LLAnalysis, table *lr.LLTable, opts ...Option) *Parser {
	if table == nil {
		table = lr.BuildLLTable(ga)
	}
	p := &Parser{
		g:        ga.Grammar(),
		ga:       ga,
		table:    table,
		observer: nopObserver{},
		maxK:     DefaultMaxLookahead,
		maxRecov: DefaultMaxRecoveries,
	}
	if k := gconf.GetInt("paredros.max-lookahead"); k > 0 {
		p.maxK = k
	}
	if gconf.IsSet("paredros.max-recoveries") {
		p.maxRecov = gconf.GetInt("paredros.max-recoveries")
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tokenName == nil {
		p.tokenName = func(t paredros.TokType) string {
			if A := p.g.Terminal(int(t)); A != nil {
				return A.Name
			}
			return fmt.Sprintf("token(%d)", t)
		}
	}
	return p
}

// Parse runs the parser on a token stream. It returns true if the input has
// been accepted without any syntax errors. Syntax errors the parser could
// recover from are available with Errors(). If the parser cannot recover
// from an error, it stops and returns a *paredros.ParseError.
func (p *Parser) Parse(stream *scanner.TokenStream) (bool, error) {
	p.stream = stream
	p.frames = p.frames[:0]
	p.speculating = 0
	p.errors = nil
	p.failed = nil
	p.furthest = stream.Offset()
	tracer().Infof("parsing with grammar %s, max. lookahead %d", p.g.Name, p.maxK)
	ok := p.sequence(p.g.Rule(0)) // S' ➞ S #eof
	if p.failed != nil {
		tracer().Errorf("%v", p.failed)
		return false, p.failed
	}
	if !ok { // cannot happen if not speculating, but be safe
		return false, &paredros.ParseError{Offset: stream.Offset(), Rule: p.g.StartSymbol().Name}
	}
	tracer().Infof("parse done, %d syntax errors", len(p.errors))
	return len(p.errors) == 0, nil
}

// Errors returns the syntax errors the parser recovered from.
func (p *Parser) Errors() []*SyntaxError {
	return p.errors
}

// Furthest returns the furthest input offset the parser consumed tokens up
// to, including tokens consumed speculatively.
func (p *Parser) Furthest() uint64 {
	return p.furthest
}

// --- Recursive descent -----------------------------------------------------

// sequence matches the right hand side of a rule.
func (p *Parser) sequence(r *lr.Rule) bool {
	f := &frame{rule: r}
	p.frames = append(p.frames, f)
	defer func() {
		p.frames = p.frames[:len(p.frames)-1]
	}()
	loopStart := p.stream.Index()
	for i := 0; i < r.Len(); i++ {
		X := r.Symbol(i)
		f.dot = i + 1
		if X.IsTerminal() {
			if !p.match(X) {
				return false
			}
			continue
		}
		if r.IsLoop() && i == r.Len()-1 && p.stream.Index() == loopStart {
			return stuck(fmt.Sprintf("no progress in %s of rule %s at offset %d",
				X, X.Rule(), p.stream.Offset()))
		}
		if !p.nonTerminal(X) {
			return false
		}
	}
	return true
}

// nonTerminal parses a non-terminal, reporting rule invocations for all
// but auxiliary symbols.
func (p *Parser) nonTerminal(N *lr.Symbol) bool {
	if N.IsAux() {
		return p.expand(N)
	}
	start := p.stream.Offset()
	p.observer.EnterRule(N, start)
	ok := p.expand(N)
	end := p.stream.Consumed()
	if end < start {
		end = start
	}
	if p.failed != nil && p.failed.Offset > end {
		end = p.failed.Offset // rules open at an irrecoverable error end there
	}
	p.observer.ExitRule(N, end, ok)
	return ok
}

func (p *Parser) expand(N *lr.Symbol) bool {
	alts := p.g.Alternatives(N)
	if len(alts) == 1 {
		return p.sequence(alts[0])
	}
	return p.decide(N, alts)
}

// decide predicts an alternative for N and follows it. If more than one
// alternative is left after prediction, all of them except the last one
// are tried speculatively.
func (p *Parser) decide(N *lr.Symbol, alts []*lr.Rule) bool {
	pred := p.predict(N, alts, 0)
	if len(pred.candidates) == 0 {
		if p.recoverPrediction(N, alts) {
			return p.decide(N, alts)
		}
		return false
	}
	mark := p.stream.Mark()
	for attempt, c := range pred.candidates {
		p.report(N, alts, pred, c, attempt)
		if attempt == len(pred.candidates)-1 {
			return p.sequence(alts[c])
		}
		p.speculating++
		ok := p.sequence(alts[c])
		p.speculating--
		if ok {
			return true
		}
		tracer().Debugf("alternative %d of %s failed, backtracking", c, N)
		p.stream.Rewind(mark)
	}
	return false
}

func (p *Parser) report(N *lr.Symbol, alts []*lr.Rule, pred prediction, chosen, attempt int) {
	d := &Decision{
		Rule:         N.Rule(),
		NonTerminal:  N,
		Index:        N.Decision,
		Alternatives: alts,
		Viable:       pred.viable,
		Chosen:       chosen,
		Ambiguous:    pred.ambiguous,
		Depth:        pred.depth,
		Lookahead:    pred.lookahead,
		Span:         pred.span,
		Attempt:      attempt,
	}
	tracer().Debugf("%v", d)
	p.observer.Decide(d)
}

// match matches a terminal against the next token.
func (p *Parser) match(X *lr.Symbol) bool {
	if p.stream.LA(1).TokType() == X.TokenType() {
		p.consume()
		return true
	}
	if p.speculating > 0 {
		return false
	}
	return p.recoverMismatch(X)
}

func (p *Parser) consume() paredros.Token {
	tok := p.stream.Consume()
	if end := tok.Span().To(); end > p.furthest {
		p.furthest = end
	}
	return tok
}

// currentRule is the grammar rule of the innermost frame.
func (p *Parser) currentRule() *lr.Symbol {
	if len(p.frames) == 0 {
		return p.g.StartSymbol()
	}
	r := p.frames[len(p.frames)-1].rule
	if r.Serial == 0 {
		return p.g.StartSymbol()
	}
	return r.LHS.Rule()
}
