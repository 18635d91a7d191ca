package ll

import (
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/lr"
	"golang.org/x/tools/container/intsets"
)

// prediction is the outcome of predicting an alternative.
type prediction struct {
	candidates []int  // alternatives to try, in order
	viable     []bool // alternatives viable on the first lookahead token
	ambiguous  bool
	depth      int
	lookahead  []paredros.Token
	span       paredros.Span
}

// predict computes the alternatives of N which are compatible with the
// upcoming input. skip is the number of tokens to ignore before the first
// lookahead token.
func (p *Parser) predict(N *lr.Symbol, alts []*lr.Rule, skip int) prediction {
	la := p.stream.LA(skip + 1)
	pred := prediction{viable: make([]bool, len(alts))}
	if skip == 0 {
		if rules := p.table.Predict(N, la.TokType()); len(rules) == 1 {
			for i, r := range alts {
				if r == rules[0] {
					pred.viable[i] = true
					pred.candidates = []int{i}
					pred.depth = 1
					pred.lookahead = []paredros.Token{la}
					pred.span = la.Span()
					return pred
				}
			}
		}
	}
	return p.simulate(alts, skip, pred)
}

// config is a configuration of the full-context simulation: an alternative,
// the symbols it still has to match, and the index of the caller frame to
// continue with once syms is exhausted.
type config struct {
	alt   int
	syms  []*lr.Symbol
	frame int
}

func (c config) key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(c.alt))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(c.frame))
	for _, A := range c.syms {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(A.Value))
	}
	return b.String()
}

// simulate runs all alternatives on the lookahead tokens, until at most one
// of them survives, the end of input is reached or the maximum lookahead is
// exhausted.
func (p *Parser) simulate(alts []*lr.Rule, skip int, pred prediction) prediction {
	var configs []config
	for i, r := range alts {
		configs = append(configs, config{alt: i, syms: r.RHS(), frame: len(p.frames) - 1})
	}
	var alive *intsets.Sparse
	for k := 1; k <= p.maxK; k++ {
		tok := p.stream.LA(skip + k)
		next, survivors := p.advance(p.closure(configs), tok)
		if k == 1 {
			for _, a := range survivors.AppendTo(nil) {
				pred.viable[a] = true
			}
			pred.ambiguous = survivors.Len() > 1
			pred.span = tok.Span()
		}
		pred.depth = k
		pred.lookahead = append(pred.lookahead, tok)
		pred.span = pred.span.Extend(tok.Span())
		if survivors.IsEmpty() {
			break // keep alternatives alive at k-1, if any
		}
		alive = survivors
		if alive.Len() <= 1 || tok.TokType() == p.g.EOF().TokenType() {
			break
		}
		configs = next
	}
	if alive != nil {
		pred.candidates = alive.AppendTo(nil)
	}
	tracer().Debugf("simulation: candidates %v at depth %d", pred.candidates, pred.depth)
	return pred
}

// closure expands leading non-terminals of configurations until every
// configuration starts with a terminal or has reached the end of input.
func (p *Parser) closure(configs []config) []config {
	seen := hashset.New()
	var closed []config
	work := append([]config{}, configs...)
	for len(work) > 0 {
		c := work[len(work)-1]
		work = work[:len(work)-1]
		for len(c.syms) == 0 && c.frame >= 0 { // continue with caller
			f := p.frames[c.frame]
			c = config{alt: c.alt, syms: f.rule.RHS()[f.dot:], frame: c.frame - 1}
		}
		key := c.key()
		if seen.Contains(key) {
			continue
		}
		seen.Add(key)
		if len(c.syms) == 0 || c.syms[0].IsTerminal() {
			closed = append(closed, c)
			continue
		}
		rest := c.syms[1:]
		for _, r := range p.g.Alternatives(c.syms[0]) {
			syms := make([]*lr.Symbol, 0, r.Len()+len(rest))
			syms = append(syms, r.RHS()...)
			syms = append(syms, rest...)
			work = append(work, config{alt: c.alt, syms: syms, frame: c.frame})
		}
	}
	return closed
}

// advance moves all configurations over a token and returns the surviving
// configurations together with the set of alternatives still alive.
func (p *Parser) advance(configs []config, tok paredros.Token) ([]config, *intsets.Sparse) {
	alive := &intsets.Sparse{}
	var next []config
	for _, c := range configs {
		if len(c.syms) > 0 && c.syms[0].TokenType() == tok.TokType() {
			next = append(next, config{alt: c.alt, syms: c.syms[1:], frame: c.frame})
			alive.Insert(c.alt)
		}
	}
	return next, alive
}
