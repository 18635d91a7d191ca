package ll

import (
	"fmt"
	"strings"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/lr"
	"github.com/npillmayer/schuko/gconf"
)

// SyntaxError is a syntax error the parser has recovered from.
type SyntaxError struct {
	Offset   uint64   // input offset of the offending token
	Token    string   // lexeme of the offending token, empty at end of input
	Rule     string   // rule active at the error
	Expected []string // names of acceptable tokens
	Repair   Strategy // how the error has been repaired
}

func (e *SyntaxError) Error() string {
	tok := "end of input"
	if e.Token != "" {
		tok = "'" + e.Token + "'"
	}
	return fmt.Sprintf("syntax error at offset %d in rule %s: unexpected %s, expected %s (%s)",
		e.Offset, e.Rule, tok, strings.Join(e.Expected, " "), e.Repair)
}

// recoverMismatch tries to repair the input if the next token does not
// match terminal X. It either deletes the next token, if the token after it
// matches X, or it pretends X to be present, if the next token may follow X.
func (p *Parser) recoverMismatch(X *lr.Symbol) bool {
	la := p.stream.LA(1)
	expected := []string{p.tokenName(X.TokenType())}
	if len(p.errors) < p.maxRecov {
		if !p.isEOF(la) && p.stream.LA(2).TokType() == X.TokenType() {
			p.recovered(p.currentRule(), DeleteToken, la, expected)
			p.consume() // skip offending token
			p.consume() // X
			return true
		}
		if p.canFollow(la) {
			p.recovered(p.currentRule(), InsertToken, la, expected)
			return true
		}
	}
	p.fail(p.currentRule(), la, expected)
	return false
}

// recoverPrediction tries to repair the input if no alternative of N may
// start with the next token. The only repair is to delete the next token,
// if the token after it lets some alternative match. The caller is expected
// to re-decide afterwards.
func (p *Parser) recoverPrediction(N *lr.Symbol, alts []*lr.Rule) bool {
	la := p.stream.LA(1)
	expected := p.expectedFor(N)
	if p.speculating > 0 {
		return false
	}
	if len(p.errors) < p.maxRecov && !p.isEOF(la) {
		if pred := p.predict(N, alts, 1); len(pred.candidates) > 0 {
			p.recovered(N.Rule(), DeleteToken, la, expected)
			p.consume()
			return true
		}
	}
	p.fail(N.Rule(), la, expected)
	return false
}

// canFollow checks if a token may be matched by what the rules currently
// being parsed expect next.
func (p *Parser) canFollow(tok paredros.Token) bool {
	for i := len(p.frames) - 1; i >= 0; i-- {
		f := p.frames[i]
		for _, X := range f.rule.RHS()[f.dot:] {
			if X.IsTerminal() {
				return X.TokenType() == tok.TokType()
			}
			if p.ga.First(X).Has(int(tok.TokType())) {
				return true
			}
			if !p.ga.DerivesEpsilon(X) {
				return false
			}
		}
	}
	return false
}

// expectedFor lists the names of all tokens the prediction table accepts
// for N.
func (p *Parser) expectedFor(N *lr.Symbol) []string {
	var expected []string
	for _, A := range p.g.Terminals() {
		if len(p.table.Predict(N, A.TokenType())) > 0 {
			expected = append(expected, p.tokenName(A.TokenType()))
		}
	}
	return expected
}

func (p *Parser) recovered(rule *lr.Symbol, strategy Strategy, tok paredros.Token, expected []string) {
	err := &SyntaxError{
		Offset:   tok.Span().From(),
		Token:    p.lexeme(tok),
		Rule:     rule.Name,
		Expected: expected,
		Repair:   strategy,
	}
	tracer().Infof("%v", err)
	p.errors = append(p.errors, err)
	p.observer.Recover(&Recovery{
		Rule:     rule,
		Strategy: strategy,
		Token:    tok,
		Expected: expected,
		Span:     tok.Span(),
	})
}

func (p *Parser) fail(rule *lr.Symbol, tok paredros.Token, expected []string) {
	p.failed = &paredros.ParseError{
		Offset:   tok.Span().From(),
		Token:    p.lexeme(tok),
		Rule:     rule.Name,
		Expected: expected,
	}
	p.observer.Recover(&Recovery{
		Rule:     rule,
		Strategy: Fail,
		Token:    tok,
		Expected: expected,
		Span:     tok.Span(),
	})
}

func (p *Parser) isEOF(tok paredros.Token) bool {
	return tok.TokType() == p.g.EOF().TokenType()
}

func (p *Parser) lexeme(tok paredros.Token) string {
	if p.isEOF(tok) {
		return ""
	}
	return tok.Lexeme()
}

// stuck is called if a repetition does not make any progress. The parser
// leaves the repetition, unless configuration flag panic-on-parser-stuck
// is set.
func stuck(msg string) bool {
	tracer().Errorf(msg)
	if gconf.GetBool("panic-on-parser-stuck") {
		panic(`LL-parser is stuck.

Configuration flag panic-on-parser-stuck is set to true. It is aimed at helping
to debug a grammar and do a post-mortem of why the parser got stuck. However,
if this is a production environment and you did not expect this to panic,
please unset panic-on-parser-stuck to its default (false).

` + msg)
	}
	return true
}
