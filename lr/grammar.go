package lr

import (
	"bytes"
	"fmt"
	"text/scanner"

	"github.com/npillmayer/paredros"
)

// NonTermOffset is added to the serial number of non-terminals to get their
// symbol value. This way symbol values of terminals (which are token types)
// and non-terminals will not collide.
const NonTermOffset = 10000

// --- Symbols ---------------------------------------------------------------

// Symbol is a grammar symbol, either a terminal or a non-terminal.
type Symbol struct {
	Name     string  // name of the symbol, unique within a grammar
	Value    int     // token type for terminals, NonTermOffset+serial for non-terminals
	Owner    *Symbol // auxiliary non-terminals are owned by a grammar rule
	Decision int     // decision index of an auxiliary non-terminal within its owner
	Label    string  // display text for auxiliary non-terminals
	terminal bool
}

// IsTerminal returns true if this symbol represents a terminal.
func (A *Symbol) IsTerminal() bool {
	return A.terminal
}

// IsAux returns true for non-terminals which have been introduced for groups,
// options and repetitions of a grammar rule.
func (A *Symbol) IsAux() bool {
	return A.Owner != nil
}

// Rule returns the symbol of the grammar rule this symbol belongs to. For
// all symbols but auxiliary ones this is the symbol itself.
func (A *Symbol) Rule() *Symbol {
	if A.Owner != nil {
		return A.Owner
	}
	return A
}

// TokenType returns a terminal's token type.
func (A *Symbol) TokenType() paredros.TokType {
	return paredros.TokType(A.Value)
}

func (A *Symbol) String() string {
	if A == nil {
		return "<nil>"
	}
	if A.Label != "" {
		return A.Label
	}
	return A.Name
}

// EOFName is the name of the end-of-input terminal.
const EOFName = "#eof"

// --- Rules -----------------------------------------------------------------

// Rule is a type for rules of a grammar. Rules cannot be shared between grammars.
type Rule struct {
	Serial int       // order number of this rule within a grammar
	LHS    *Symbol   // symbol of left hand side
	rhs    []*Symbol // right hand side symbols
}

func newRule() *Rule {
	return &Rule{
		Serial: -1,
		rhs:    make([]*Symbol, 0, 5),
	}
}

// RHS gets the right hand side of a rule as a shallow copy. Clients should
// treat it as read-only.
func (r *Rule) RHS() []*Symbol {
	dup := make([]*Symbol, len(r.rhs))
	copy(dup, r.rhs)
	return dup
}

// Len returns the length of the right hand side of a rule.
func (r *Rule) Len() int {
	return len(r.rhs)
}

// Symbol returns the RHS symbol at position i.
func (r *Rule) Symbol(i int) *Symbol {
	if i < 0 || i >= len(r.rhs) {
		return nil
	}
	return r.rhs[i]
}

// IsEps returns true for epsilon-productions.
func (r *Rule) IsEps() bool {
	return len(r.rhs) == 0
}

// IsLoop returns true for the iterating rule of an auxiliary repetition,
// i.e. N ➞ X N.
func (r *Rule) IsLoop() bool {
	n := len(r.rhs)
	return n > 0 && r.LHS.IsAux() && r.rhs[n-1] == r.LHS
}

// Describe returns the right hand side as a space separated list of symbols.
// Epsilon-productions are described as "ε".
func (r *Rule) Describe() string {
	if r.IsEps() {
		return "ε"
	}
	var b bytes.Buffer
	for i, sym := range r.rhs {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(sym.String())
	}
	return b.String()
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s ➞ %s", r.LHS, r.Describe())
}

// --- Grammar ---------------------------------------------------------------

// Grammar is a type for a grammar. Usually created using a GrammarBuilder.
type Grammar struct {
	Name         string
	rules        []*Rule
	symbols      []*Symbol // all symbols in order of creation
	terminals    map[int]*Symbol
	nonterminals map[string]*Symbol
	byName       map[string]*Symbol
	alternatives map[*Symbol][]*Rule
	eof          *Symbol
}

func newGrammar(name string) *Grammar {
	return &Grammar{
		Name:         name,
		rules:        make([]*Rule, 0, 32),
		symbols:      make([]*Symbol, 0, 32),
		terminals:    make(map[int]*Symbol),
		nonterminals: make(map[string]*Symbol),
		byName:       make(map[string]*Symbol),
		alternatives: make(map[*Symbol][]*Rule),
	}
}

// Size returns the number of rules of a grammar, including the synthetic
// start rule.
func (g *Grammar) Size() int {
	return len(g.rules)
}

// Rule gets a grammar rule.
func (g *Grammar) Rule(no int) *Rule {
	if no < 0 || no >= len(g.rules) {
		return nil
	}
	return g.rules[no]
}

// StartSymbol returns the start symbol of the grammar, i.e. the LHS of the
// first rule a client has defined.
func (g *Grammar) StartSymbol() *Symbol {
	return g.rules[0].rhs[0]
}

// EOF returns the end-of-input terminal.
func (g *Grammar) EOF() *Symbol {
	return g.eof
}

// SymbolByName gets a symbol for a given name, if found in the grammar.
func (g *Grammar) SymbolByName(name string) *Symbol {
	return g.byName[name]
}

// Terminal returns the terminal symbol for a given token value, if it
// is defined in the grammar.
func (g *Grammar) Terminal(tokval int) *Symbol {
	return g.terminals[tokval]
}

// Alternatives returns all the rules with LHS N, in order of definition.
// Clients should treat the result as read-only.
func (g *Grammar) Alternatives(N *Symbol) []*Rule {
	return g.alternatives[N]
}

// IsDecision is true if non-terminal N has more than one alternative.
func (g *Grammar) IsDecision(N *Symbol) bool {
	return len(g.alternatives[N]) > 1
}

// Terminals returns all terminals of the grammar in order of appearance.
func (g *Grammar) Terminals() []*Symbol {
	return g.filter(func(A *Symbol) bool { return A.IsTerminal() })
}

// NonTerminals returns all non-terminals of the grammar in order of appearance.
func (g *Grammar) NonTerminals() []*Symbol {
	return g.filter(func(A *Symbol) bool { return !A.IsTerminal() })
}

func (g *Grammar) filter(pred func(*Symbol) bool) []*Symbol {
	syms := make([]*Symbol, 0, len(g.symbols))
	for _, A := range g.symbols {
		if pred(A) {
			syms = append(syms, A)
		}
	}
	return syms
}

// EachSymbol iterates over all symbols of the grammar, applying a mapper
// function. Non-nil results of the mapper are collected and returned.
func (g *Grammar) EachSymbol(mapper func(*Symbol) interface{}) []interface{} {
	return eachOf(g.symbols, mapper)
}

// EachNonTerminal iterates over all non-terminal symbols of the grammar.
// Non-nil results of the mapper are collected and returned.
func (g *Grammar) EachNonTerminal(mapper func(*Symbol) interface{}) []interface{} {
	return eachOf(g.NonTerminals(), mapper)
}

// EachTerminal iterates over all terminals of the grammar.
// Non-nil results of the mapper are collected and returned.
func (g *Grammar) EachTerminal(mapper func(*Symbol) interface{}) []interface{} {
	return eachOf(g.Terminals(), mapper)
}

func eachOf(syms []*Symbol, mapper func(*Symbol) interface{}) []interface{} {
	var r []interface{}
	for _, A := range syms {
		if v := mapper(A); v != nil {
			r = append(r, v)
		}
	}
	return r
}

// Dump is a debugging helper, printing all rules with the debug tracer.
func (g *Grammar) Dump() {
	tracer().Debugf("--- %s --------------------------------------------", g.Name)
	for _, r := range g.rules {
		tracer().Debugf("%3d: %s", r.Serial, r)
	}
	tracer().Debugf("-------------------------------------------------------")
}

// --- Grammar Builder -------------------------------------------------------

// GrammarBuilder is a builder type for grammars. Use it like this:
//
//     b := lr.NewGrammarBuilder("G")
//     b.LHS("S").N("A").T("a", 1).End()
//     b.LHS("A").Epsilon()
//     g, err := b.Grammar()
//
type GrammarBuilder struct {
	g         *Grammar
	auxcount  map[string]int
	owners    map[string]string
	labels    map[string]string
	decisions map[string]int
	err       error
}

// NewGrammarBuilder gets a new grammar builder, given the name of the grammar to build.
func NewGrammarBuilder(gname string) *GrammarBuilder {
	return &GrammarBuilder{
		g:         newGrammar(gname),
		auxcount:  make(map[string]int),
		owners:    make(map[string]string),
		labels:    make(map[string]string),
		decisions: make(map[string]int),
	}
}

// RuleBuilder is a builder type for a single grammar rule.
type RuleBuilder struct {
	gb   *GrammarBuilder
	rule *Rule
}

// LHS starts a rule given the left hand side symbol (non-terminal).
func (gb *GrammarBuilder) LHS(s string) *RuleBuilder {
	rb := &RuleBuilder{gb: gb, rule: newRule()}
	rb.rule.LHS = gb.nonterminal(s)
	return rb
}

// Aux creates the name of a new auxiliary non-terminal, owned by the rule
// for non-terminal owner. label is a display text for the auxiliary
// symbol, usually the source text of a sub-expression. Clients use the
// returned name for LHS(…) and N(…) as with any other non-terminal.
func (gb *GrammarBuilder) Aux(owner string, label string) string {
	for top, ok := gb.owners[owner]; ok; top, ok = gb.owners[owner] {
		owner = top // aux symbols nested in aux symbols belong to the top-level rule
	}
	gb.auxcount[owner]++
	n := gb.auxcount[owner]
	name := fmt.Sprintf("%s~%d", owner, n)
	gb.owners[name] = owner
	gb.labels[name] = label
	gb.decisions[name] = n
	return name
}

func (gb *GrammarBuilder) nonterminal(name string) *Symbol {
	if A, ok := gb.g.byName[name]; ok {
		if A.IsTerminal() && gb.err == nil {
			gb.err = fmt.Errorf("symbol %q used as terminal and non-terminal", name)
		}
		return A
	}
	A := &Symbol{Name: name, Value: NonTermOffset + len(gb.g.nonterminals)}
	gb.g.nonterminals[name] = A
	gb.g.byName[name] = A
	gb.g.symbols = append(gb.g.symbols, A)
	return A
}

func (gb *GrammarBuilder) terminal(name string, tokval int) *Symbol {
	if A, ok := gb.g.terminals[tokval]; ok {
		return A
	}
	if A, ok := gb.g.byName[name]; ok {
		if !A.IsTerminal() && gb.err == nil {
			gb.err = fmt.Errorf("symbol %q used as terminal and non-terminal", name)
		}
		return A
	}
	A := &Symbol{Name: name, Value: tokval, terminal: true}
	gb.g.terminals[tokval] = A
	gb.g.byName[name] = A
	gb.g.symbols = append(gb.g.symbols, A)
	return A
}

// N appends a non-terminal to the builder.
func (rb *RuleBuilder) N(s string) *RuleBuilder {
	rb.rule.rhs = append(rb.rule.rhs, rb.gb.nonterminal(s))
	return rb
}

// T appends a terminal to the builder.
// The symbol's name and token value must be given.
func (rb *RuleBuilder) T(s string, tokval int) *RuleBuilder {
	rb.rule.rhs = append(rb.rule.rhs, rb.gb.terminal(s, tokval))
	return rb
}

// End a grammar rule.
func (rb *RuleBuilder) End() *Rule {
	rb.gb.appendRule(rb.rule)
	return rb.rule
}

// Epsilon sets epsilon as the RHS of a production.
// This must be called directly after LHS(…).
// It closes the rule, thus no call to End() or EOF() must follow.
func (rb *RuleBuilder) Epsilon() *Rule {
	rb.rule.rhs = rb.rule.rhs[:0]
	rb.gb.appendRule(rb.rule)
	return rb.rule
}

func (gb *GrammarBuilder) appendRule(r *Rule) {
	r.Serial = len(gb.g.rules) + 1 // rule 0 is reserved for S'
	gb.g.rules = append(gb.g.rules, r)
}

// Grammar returns the (completed) grammar. An error is returned for empty
// grammars and for grammars referencing non-terminals without rules.
func (gb *GrammarBuilder) Grammar() (*Grammar, error) {
	if gb.err != nil {
		return nil, gb.err
	}
	g := gb.g
	if len(g.rules) == 0 {
		return nil, fmt.Errorf("grammar %s is empty", g.Name)
	}
	if g.eof != nil { // already completed
		return g, nil
	}
	start := g.rules[0].LHS
	g.eof = gb.terminal(EOFName, scanner.EOF)
	sprime := &Symbol{Name: start.Name + "'", Value: NonTermOffset - 1}
	r0 := &Rule{Serial: 0, LHS: sprime, rhs: []*Symbol{start, g.eof}}
	g.rules = append([]*Rule{r0}, g.rules...)
	for _, r := range g.rules {
		g.alternatives[r.LHS] = append(g.alternatives[r.LHS], r)
	}
	for name, A := range g.nonterminals {
		if owner, ok := gb.owners[name]; ok {
			A.Owner = g.nonterminals[owner]
			A.Label = gb.labels[name]
			A.Decision = gb.decisions[name]
		}
		if len(g.alternatives[A]) == 0 {
			return nil, fmt.Errorf("grammar %s: non-terminal %s has no rules", g.Name, name)
		}
	}
	return g, nil
}
