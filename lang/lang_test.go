package lang

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/lr"
	"github.com/npillmayer/paredros/lr/scanner"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const exprGrammar = `Expr   = Term { ( "+" | "-" ) Term } .
Term   = number | ident
       | "(" Expr ")" .
number = "0" … "9" { "0" … "9" } .
ident  = ( "a" … "z" | "A" … "Z" ) { "a" … "z" | "A" … "Z" | "0" … "9" } .
`

func TestCompileExpr(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.lang")
	defer teardown()
	//
	L, err := Compile("expr", exprGrammar)
	if err != nil {
		t.Fatal(err)
	}
	g := L.Grammar()
	g.Dump()
	if g.StartSymbol().Name != "Expr" {
		t.Errorf("Expected start symbol to be Expr, is %s", g.StartSymbol())
	}
	term := g.SymbolByName("Term")
	if len(g.Alternatives(term)) != 3 {
		t.Errorf("Expected Term to have 3 alternatives, has %d", len(g.Alternatives(term)))
	}
	rep := g.SymbolByName("Expr~1")
	if rep == nil || !rep.IsAux() || rep.Rule().Name != "Expr" || rep.Decision != 1 {
		t.Fatalf("Expected Expr~1 to be the repetition of Expr, is %v", rep)
	}
	if rep.String() != `{ ( "+" | "-" ) Term }` {
		t.Errorf("Expected repetition to print as its EBNF text, is %s", rep)
	}
	if !g.Alternatives(rep)[0].IsLoop() || !g.Alternatives(rep)[1].IsEps() {
		t.Errorf("Expected repetition to loop or derive epsilon")
	}
	group := g.SymbolByName("Expr~2")
	if group == nil || group.Rule().Name != "Expr" || len(g.Alternatives(group)) != 2 {
		t.Errorf("Expected nested group to be owned by Expr with 2 alternatives")
	}
	if L.TokenName(1) != `"+"` || L.TokenName(3) != "number" {
		t.Errorf("Expected token names \"+\" and number, are %s and %s", L.TokenName(1), L.TokenName(3))
	}
	if L.TokenName(scanner.EOF) != lr.EOFName {
		t.Errorf("Expected EOF to be named %s, is %s", lr.EOFName, L.TokenName(scanner.EOF))
	}
	if L.Table() == nil || L.Table().HasConflicts {
		t.Errorf("Expected expression grammar to be LL(1)")
	}
}

func TestTokenizer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.lang")
	defer teardown()
	//
	L, err := Compile("expr", exprGrammar)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := L.Tokenizer("input", "a1 + (42-b)")
	if err != nil {
		t.Fatal(err)
	}
	expected := []paredros.TokType{4, 1, 5, 3, 2, 4, 6}
	for i, typ := range expected {
		token := tok.NextToken()
		if token.TokType() != typ {
			t.Errorf("Expected token #%d (%q) to be of type %d, is %d", i, token.Lexeme(), typ, token.TokType())
		}
	}
	if eof := tok.NextToken(); eof.TokType() != scanner.EOF || eof.Span().From() != 11 {
		t.Errorf("Expected EOF at offset 11, have %v at %d", eof.TokType(), eof.Span().From())
	}
}

func TestSkippedProductions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.lang")
	defer teardown()
	//
	source := `List = { item } .
item = "a" … "z" { "a" … "z" } .
comment = "#" { "a" … "z" | " " } .
`
	L, err := Compile("list", source)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := L.Tokenizer("input", "ab # note\ncd")
	if err != nil {
		t.Fatal(err)
	}
	ts := scanner.NewTokenStream(tok)
	if ts.LA(1).Lexeme() != "ab" || ts.LA(2).Lexeme() != "cd" || ts.LA(3).TokType() != scanner.EOF {
		t.Errorf("Expected comment to be skipped, tokens are %v", ts.Tokens())
	}
	if len(ts.LexErrors()) != 0 {
		t.Errorf("Expected no scanner errors, have %v", ts.LexErrors())
	}
}

func TestRuleLocations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.lang")
	defer teardown()
	//
	L, err := Compile("expr", exprGrammar)
	if err != nil {
		t.Fatal(err)
	}
	loc, ok := L.Location("Term")
	if !ok {
		t.Fatalf("Expected to find location of Term")
	}
	if loc.StartLine != 2 || loc.EndLine != 3 {
		t.Errorf("Expected Term to span lines 2-3, is %d-%d", loc.StartLine, loc.EndLine)
	}
	if !strings.HasPrefix(loc.Content, "Term") || !strings.HasSuffix(loc.Content, `")" .`) {
		t.Errorf("Expected content of Term to be its production, is %q", loc.Content)
	}
	if exprGrammar[loc.StartPos:loc.EndPos] != loc.Content {
		t.Errorf("Expected positions to delimit the content")
	}
	if loc, _ := L.Location("Expr~2"); loc.Name != "Expr" {
		t.Errorf("Expected aux symbol to be located at its owner, is %s", loc.Name)
	}
	rules := L.Rules()
	if len(rules) != 4 || rules[0].Name != "Expr" || rules[3].Name != "ident" {
		t.Errorf("Expected 4 rule locations in source order, have %v", rules)
	}
	if _, ok := L.Location("Factor"); ok {
		t.Errorf("Expected no location for unknown rule")
	}
}

func TestGrammarErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.lang")
	defer teardown()
	//
	sources := map[string]string{
		"syntax":     `A = "x" `,
		"undefined":  `A = B .`,
		"unreached":  `A = "x" . B = "y" .`,
		"leftrec":    `A = A "x" | "y" .`,
		"range":      `A = "a" … "z" .`,
		"recursive":  `A = b . b = "x" b .`,
		"no-syntax":  `a = "x" .`,
		"empty-lit":  `A = "" .`,
		"start-lex":  `A = b . b = "x" .`,
		"no-start-x": `A = "x" .`,
	}
	opts := map[string][]Option{
		"start-lex":  {StartProduction("b")},
		"no-start-x": {StartProduction("X")},
	}
	for name, source := range sources {
		_, err := Compile(name, source, opts[name]...)
		var gerr *paredros.GrammarError
		if !errors.As(err, &gerr) {
			t.Errorf("Expected grammar %s to fail with a GrammarError, is %v", name, err)
			continue
		}
		if gerr.Grammar != name {
			t.Errorf("Expected error to name grammar %s, is %s", name, gerr.Grammar)
		}
		t.Logf("%s: %v", name, err)
	}
}

func TestFromGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.lang")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("Sum")
	b.LHS("S").T("id", scanner.Ident).T("+", '+').T("id", scanner.Ident).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	L, err := FromGrammar(g)
	if err != nil {
		t.Fatal(err)
	}
	tok, _ := L.Tokenizer("input", "a+b")
	if typ := tok.NextToken().TokType(); typ != scanner.Ident {
		t.Errorf("Expected Go tokenizer to produce an identifier, is %d", typ)
	}
	if L.TokenName('+') != "+" {
		t.Errorf("Expected token name of '+' to be +, is %s", L.TokenName('+'))
	}
	if len(L.Rules()) != 0 || L.Source() != "" {
		t.Errorf("Expected programmatic grammar to have no rule locations")
	}
	b = lr.NewGrammarBuilder("LeftRec")
	b.LHS("S").N("S").T("+", '+').End()
	b.LHS("S").T("id", scanner.Ident).End()
	g, _ = b.Grammar()
	if _, err := FromGrammar(g); err == nil {
		t.Errorf("Expected left recursive grammar to be rejected")
	}
}

func TestFromGrammarGoTokens(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.lang")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("Strings")
	b.LHS("S").T("string", scanner.String).T("comment", scanner.Comment).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	L, err := FromGrammar(g, GoTokens(scanner.UnifyStrings(true), scanner.KeepComments(true)))
	if err != nil {
		t.Fatal(err)
	}
	tok, _ := L.Tokenizer("input", "`raw` // note")
	if typ := tok.NextToken().TokType(); typ != scanner.String {
		t.Errorf("Expected raw string to be tokenized as string, is %d", typ)
	}
	if typ := tok.NextToken().TokType(); typ != scanner.Comment {
		t.Errorf("Expected comment to be kept, is %d", typ)
	}
}
