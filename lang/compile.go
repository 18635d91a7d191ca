package lang

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/lr"
	"github.com/npillmayer/paredros/lr/scanner/lexmach"
	"github.com/timtadh/lexmachine"
	"golang.org/x/exp/ebnf"
)

// Names of lexical productions which are skipped by the lexer.
const (
	WhitespaceProduction = "whitespace"
	CommentProduction    = "comment"
)

const defaultWhitespace = `( |\t|\n|\r)+`

// Compile parses, verifies and compiles a grammar text. name is used as the
// grammar name and as the file name in error positions.
//
// All errors returned are of type *paredros.GrammarError.
func Compile(name string, source string, opts ...Option) (*Language, error) {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	tracer().Infof("compiling grammar %s", name)
	grammar, err := ebnf.Parse(name, strings.NewReader(source))
	if err != nil {
		return nil, &paredros.GrammarError{Grammar: name, Err: err}
	}
	comp := newCompiler(name, grammar)
	start := c.start
	if start == "" {
		if start = comp.firstSyntactic(); start == "" {
			return nil, comp.error(nil, errors.New("no syntactic production"))
		}
	} else if p, ok := grammar[start]; ok && isLexical(start) {
		return nil, comp.error(p, fmt.Errorf("start production %s is lexical", start))
	}
	if err := comp.verify(start); err != nil {
		return nil, err
	}
	g, err := comp.compileSyntax(start)
	if err != nil {
		return nil, err
	}
	L := &Language{
		name:      name,
		source:    source,
		g:         g,
		tokNames:  comp.tokNames,
		locations: locate(source, grammar),
		tokenizer: c.tokenizer,
	}
	if L.tokenizer == nil {
		if L.lexer, err = comp.compileLexer(); err != nil {
			return nil, err
		}
	}
	if err := L.analyse(); err != nil {
		return nil, err
	}
	return L, nil
}

// isLexical follows the convention of package ebnf: every production not
// starting with an upper case letter is lexical.
func isLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

// --- Compiler --------------------------------------------------------------

type compiler struct {
	name     string
	grammar  ebnf.Grammar
	prods    []*ebnf.Production // in order of appearance
	b        *lr.GrammarBuilder
	tokIds   map[string]int // literal or token class → token type
	tokNames map[paredros.TokType]string
	literals []string // quoted literals in order of appearance
	classes  []string // lexical productions used as token classes
	pending  []auxDef
}

// auxDef is an auxiliary non-terminal waiting for its rules to be defined.
type auxDef struct {
	name string
	expr ebnf.Expression
}

func newCompiler(name string, grammar ebnf.Grammar) *compiler {
	comp := &compiler{
		name:     name,
		grammar:  grammar,
		b:        lr.NewGrammarBuilder(name),
		tokIds:   make(map[string]int),
		tokNames: make(map[paredros.TokType]string),
	}
	for _, p := range grammar {
		comp.prods = append(comp.prods, p)
	}
	sort.Slice(comp.prods, func(i, j int) bool {
		return comp.prods[i].Pos().Offset < comp.prods[j].Pos().Offset
	})
	return comp
}

func (comp *compiler) error(at ebnf.Expression, err error) *paredros.GrammarError {
	gerr := &paredros.GrammarError{Grammar: comp.name, Err: err}
	if at != nil {
		gerr.Pos = at.Pos().String()
	}
	tracer().Errorf(gerr.Error())
	return gerr
}

func (comp *compiler) firstSyntactic() string {
	for _, p := range comp.prods {
		if !isLexical(p.Name.String) {
			return p.Name.String
		}
	}
	return ""
}

// verify checks the grammar with package ebnf. Skipped lexical productions
// are never referenced, so we verify from a synthetic root which refers to
// the start production and to the skipped productions.
func (comp *compiler) verify(start string) error {
	if _, ok := comp.grammar[start]; !ok {
		return comp.error(nil, fmt.Errorf("no start production %s", start))
	}
	root := start
	var seq ebnf.Sequence
	for _, skip := range []string{WhitespaceProduction, CommentProduction} {
		if p, ok := comp.grammar[skip]; ok {
			seq = append(seq, &ebnf.Name{StringPos: p.Pos(), String: skip})
		}
	}
	grammar := comp.grammar
	if len(seq) > 0 {
		root = start + "'"
		grammar = make(ebnf.Grammar, len(comp.grammar)+1)
		for k, p := range comp.grammar {
			grammar[k] = p
		}
		pos := comp.grammar[start].Pos()
		seq = append(ebnf.Sequence{&ebnf.Name{StringPos: pos, String: start}}, seq...)
		grammar[root] = &ebnf.Production{Name: &ebnf.Name{StringPos: pos, String: root}, Expr: seq}
	}
	if err := ebnf.Verify(grammar, root); err != nil {
		return comp.error(nil, err)
	}
	return nil
}

// --- Syntax ----------------------------------------------------------------

// compileSyntax translates all syntactic productions to grammar rules,
// starting with the start production.
func (comp *compiler) compileSyntax(start string) (*lr.Grammar, error) {
	comp.collectTokens()
	if err := comp.production(comp.grammar[start]); err != nil {
		return nil, err
	}
	for _, p := range comp.prods {
		if p.Name.String == start || isLexical(p.Name.String) {
			continue
		}
		if err := comp.production(p); err != nil {
			return nil, err
		}
	}
	g, err := comp.b.Grammar()
	if err != nil {
		return nil, comp.error(nil, err)
	}
	return g, nil
}

// collectTokens assigns token types to literals and token classes, in order
// of appearance within syntactic productions.
func (comp *compiler) collectTokens() {
	var walk func(ebnf.Expression)
	walk = func(expr ebnf.Expression) {
		switch x := expr.(type) {
		case ebnf.Alternative:
			for _, e := range x {
				walk(e)
			}
		case ebnf.Sequence:
			for _, e := range x {
				walk(e)
			}
		case *ebnf.Group:
			walk(x.Body)
		case *ebnf.Option:
			walk(x.Body)
		case *ebnf.Repetition:
			walk(x.Body)
		case *ebnf.Name:
			if isLexical(x.String) && comp.newToken(x.String) {
				comp.classes = append(comp.classes, x.String)
			}
		case *ebnf.Token:
			if lit := strconv.Quote(x.String); comp.newToken(lit) {
				comp.literals = append(comp.literals, lit)
			}
		}
	}
	for _, p := range comp.prods {
		if !isLexical(p.Name.String) {
			walk(p.Expr)
		}
	}
}

func (comp *compiler) newToken(name string) bool {
	if _, ok := comp.tokIds[name]; ok {
		return false
	}
	id := len(comp.tokIds) + 1
	comp.tokIds[name] = id
	comp.tokNames[paredros.TokType(id)] = name
	return true
}

// production creates the rules for a syntactic production, followed by the
// rules of all auxiliary non-terminals it introduces.
func (comp *compiler) production(p *ebnf.Production) error {
	name := p.Name.String
	for _, alt := range alternatives(p.Expr) {
		rb := comp.b.LHS(name)
		if err := comp.sequence(rb, name, alt); err != nil {
			return err
		}
		rb.End()
	}
	for len(comp.pending) > 0 {
		aux := comp.pending[0]
		comp.pending = comp.pending[1:]
		if err := comp.auxRules(aux); err != nil {
			return err
		}
	}
	return nil
}

// Rules for auxiliary non-terminals:
//
//     ( X | Y )  ➞  N ➞ X | Y
//     [ X ]      ➞  N ➞ X | ε
//     { X }      ➞  N ➞ X N | ε
//
func (comp *compiler) auxRules(aux auxDef) error {
	var body ebnf.Expression
	loop, optional := false, false
	switch x := aux.expr.(type) {
	case *ebnf.Group:
		body = x.Body
	case *ebnf.Option:
		body, optional = x.Body, true
	case *ebnf.Repetition:
		body, loop, optional = x.Body, true, true
	default:
		body = x
	}
	for _, alt := range alternatives(body) {
		rb := comp.b.LHS(aux.name)
		if err := comp.sequence(rb, aux.name, alt); err != nil {
			return err
		}
		if loop {
			rb.N(aux.name)
		}
		rb.End()
	}
	if optional {
		comp.b.LHS(aux.name).Epsilon()
	}
	return nil
}

// sequence appends the symbols for an expression to a rule.
func (comp *compiler) sequence(rb *lr.RuleBuilder, owner string, expr ebnf.Expression) error {
	switch x := expr.(type) {
	case nil:
	case ebnf.Sequence:
		for _, e := range x {
			if err := comp.sequence(rb, owner, e); err != nil {
				return err
			}
		}
	case *ebnf.Name:
		if isLexical(x.String) {
			rb.T(x.String, comp.tokIds[x.String])
		} else {
			rb.N(x.String)
		}
	case *ebnf.Token:
		if x.String == "" {
			return comp.error(x, errors.New("empty literal"))
		}
		lit := strconv.Quote(x.String)
		rb.T(lit, comp.tokIds[lit])
	case *ebnf.Group:
		if len(alternatives(x.Body)) == 1 {
			return comp.sequence(rb, owner, x.Body)
		}
		rb.N(comp.aux(owner, x))
	case *ebnf.Option, *ebnf.Repetition, ebnf.Alternative:
		rb.N(comp.aux(owner, x))
	case *ebnf.Range:
		return comp.error(x, errors.New("character range in syntactic production"))
	case *ebnf.Bad:
		return comp.error(x, errors.New(x.Error))
	default:
		return comp.error(x, fmt.Errorf("unexpected expression %T", x))
	}
	return nil
}

func (comp *compiler) aux(owner string, expr ebnf.Expression) string {
	name := comp.b.Aux(owner, Describe(expr))
	tracer().Debugf("aux symbol %s for %s", name, Describe(expr))
	comp.pending = append(comp.pending, auxDef{name: name, expr: expr})
	return name
}

func alternatives(expr ebnf.Expression) []ebnf.Expression {
	if alt, ok := expr.(ebnf.Alternative); ok {
		return alt
	}
	return []ebnf.Expression{expr}
}

// --- Lexer -----------------------------------------------------------------

// compileLexer creates a lexmachine lexer for the literals and token classes
// of the grammar.
func (comp *compiler) compileLexer() (*lexmach.LMAdapter, error) {
	rc := newRegexCompiler(comp.grammar)
	patterns := make([]string, len(comp.classes))
	for i, class := range comp.classes {
		re, err := rc.production(class)
		if err != nil {
			return nil, comp.error(comp.grammar[class], err)
		}
		patterns[i] = re
	}
	var skips []string
	for _, skip := range []string{WhitespaceProduction, CommentProduction} {
		if _, ok := comp.grammar[skip]; !ok {
			if skip == WhitespaceProduction {
				skips = append(skips, defaultWhitespace)
			}
			continue
		}
		re, err := rc.production(skip)
		if err != nil {
			return nil, comp.error(comp.grammar[skip], err)
		}
		skips = append(skips, re)
	}
	literals := make([]string, len(comp.literals))
	ids := make(map[string]int, len(comp.literals))
	for i, lit := range comp.literals {
		literals[i], _ = strconv.Unquote(lit)
		ids[literals[i]] = comp.tokIds[lit]
	}
	init := func(lexer *lexmachine.Lexer) {
		for i, class := range comp.classes {
			tracer().Debugf("token class %s = /%s/", class, patterns[i])
			lexer.Add([]byte(patterns[i]), lexmach.MakeToken(class, comp.tokIds[class]))
		}
		for _, re := range skips {
			lexer.Add([]byte(re), lexmach.Skip)
		}
	}
	adapter, err := lexmach.NewLMAdapter(init, literals, nil, ids)
	if err != nil {
		return nil, comp.error(nil, fmt.Errorf("cannot construct lexer: %w", err))
	}
	return adapter, nil
}
