package lang

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/lr"
	"github.com/npillmayer/paredros/lr/scanner"
	"github.com/npillmayer/paredros/lr/scanner/lexmach"
)

// TokenizerFactory creates a tokenizer for an input text.
type TokenizerFactory func(sourceID, input string) (scanner.Tokenizer, error)

// Language is a compiled grammar, ready to be used for parsing. A Language
// is immutable and may be shared between concurrent parse runs.
type Language struct {
	name      string
	source    string
	g         *lr.Grammar
	ga        *lr.LLAnalysis
	table     *lr.LLTable
	lexer     *lexmach.LMAdapter
	tokenizer TokenizerFactory
	tokNames  map[paredros.TokType]string
	locations map[string]RuleLocation
}

// Option configures the compilation of a language.
type Option func(*config)

type config struct {
	start     string
	tokenizer TokenizerFactory
	goTokens  []scanner.Option
}

// StartProduction names the start production of a grammar. Without this
// option, the first syntactic production of the grammar text is the start
// production.
func StartProduction(name string) Option {
	return func(c *config) {
		c.start = name
	}
}

// WithTokenizer sets a tokenizer factory, replacing the lexer derived from
// the grammar. Languages created by FromGrammar default to the Go tokenizer.
func WithTokenizer(f TokenizerFactory) Option {
	return func(c *config) {
		c.tokenizer = f
	}
}

// GoTokens configures the Go tokenizer of languages created by FromGrammar,
// e.g. with scanner.KeepComments or scanner.UnifyStrings.
func GoTokens(opts ...scanner.Option) Option {
	return func(c *config) {
		c.goTokens = append(c.goTokens, opts...)
	}
}

// RuleLocation locates a production within the grammar text. Lines are
// 1-based, positions are byte offsets. EndPos is the offset just behind
// the terminating period.
type RuleLocation struct {
	Name      string
	Content   string
	StartLine int
	EndLine   int
	StartPos  int
	EndPos    int
}

func (loc RuleLocation) String() string {
	return fmt.Sprintf("%s@%d-%d", loc.Name, loc.StartLine, loc.EndLine)
}

// FromGrammar wraps a grammar created with an lr.GrammarBuilder. Unless
// option WithTokenizer is given, the language will use the Go tokenizer,
// and the grammar's terminals have to use the token types of text/scanner.
//
// The grammar is analysed; left recursive grammars are rejected with a
// *paredros.GrammarError.
func FromGrammar(g *lr.Grammar, opts ...Option) (*Language, error) {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	L := &Language{
		name:      g.Name,
		g:         g,
		tokNames:  make(map[paredros.TokType]string),
		locations: make(map[string]RuleLocation),
		tokenizer: c.tokenizer,
	}
	if L.tokenizer == nil {
		goTokens := c.goTokens
		L.tokenizer = func(sourceID, input string) (scanner.Tokenizer, error) {
			return scanner.GoTokenizer(sourceID, strings.NewReader(input), goTokens...), nil
		}
	}
	g.EachTerminal(func(A *lr.Symbol) interface{} {
		L.tokNames[A.TokenType()] = A.Name
		return nil
	})
	if err := L.analyse(); err != nil {
		return nil, err
	}
	return L, nil
}

func (L *Language) analyse() error {
	L.ga = lr.Analysis(L.g)
	if err := L.ga.Check(); err != nil {
		tracer().Errorf("grammar %s: %v", L.name, err)
		return &paredros.GrammarError{Grammar: L.name, Err: err}
	}
	L.table = lr.BuildLLTable(L.ga)
	if L.table.HasConflicts {
		tracer().Infof("grammar %s is not LL(1), %d conflicts", L.name, len(L.table.Conflicts()))
	}
	return nil
}

// Name returns the name of the language.
func (L *Language) Name() string {
	return L.name
}

// Source returns the grammar text a language has been compiled from.
// For languages created with FromGrammar it is empty.
func (L *Language) Source() string {
	return L.source
}

// Grammar returns the grammar of the language.
func (L *Language) Grammar() *lr.Grammar {
	return L.g
}

// Analysis returns the grammar analysis (FIRST, FOLLOW, …) of the language.
func (L *Language) Analysis() *lr.LLAnalysis {
	return L.ga
}

// Table returns the LL(1) prediction table of the language.
func (L *Language) Table() *lr.LLTable {
	return L.table
}

// Tokenizer creates a tokenizer for an input text.
func (L *Language) Tokenizer(sourceID, input string) (scanner.Tokenizer, error) {
	if L.tokenizer != nil {
		return L.tokenizer(sourceID, input)
	}
	tracer().Debugf("creating lexer for %s", sourceID)
	return L.lexer.Scanner(input)
}

// TokenName returns a display name for a token type: the quoted text for
// literal tokens and the production name for token classes.
func (L *Language) TokenName(t paredros.TokType) string {
	if t == scanner.EOF {
		return lr.EOFName
	}
	if name, ok := L.tokNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", t)
}

// Location returns the location of a production in the grammar text.
// Auxiliary non-terminals are located by the production owning them.
func (L *Language) Location(rule string) (RuleLocation, bool) {
	if A := L.g.SymbolByName(rule); A != nil {
		rule = A.Rule().Name
	}
	loc, ok := L.locations[rule]
	return loc, ok
}

// Rules returns the locations of all productions, in order of appearance
// in the grammar text.
func (L *Language) Rules() []RuleLocation {
	locs := make([]RuleLocation, 0, len(L.locations))
	for _, loc := range L.locations {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool {
		return locs[i].StartPos < locs[j].StartPos
	})
	return locs
}
