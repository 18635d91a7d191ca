package lexmach

import (
	"testing"

	"github.com/npillmayer/paredros/lr/scanner"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/timtadh/lexmachine"
)

var inputStrings = []string{
	"1",
	"1+12",
	"Hello #World",
	`x="mystring" // commented `,
	"1,22,333",
}

var TokenCounts = []int{1, 3, 2, 3, 3}

func TestLM(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.scanner")
	defer teardown()
	//
	initTokens()
	init := func(lexer *lexmachine.Lexer) {
		lexer.Add([]byte(`//[^\n]*\n?`), Skip)
		lexer.Add([]byte(`\"[^"]*\"`), MakeToken("STRING", tokenIds["STRING"]))
		lexer.Add([]byte(`#?([a-z]|[A-Z])([a-z]|[A-Z]|[0-9]|_|-)*[!\?]?`), MakeToken("ID", tokenIds["ID"]))
		lexer.Add([]byte(`[1-9][0-9]*`), MakeToken("NUM", tokenIds["NUM"]))
		lexer.Add([]byte(`( |\,|\t|\n|\r)+`), Skip)
	}
	LM, err := NewLMAdapter(init, literals, keywords, tokenIds)
	if err != nil {
		t.Error(err)
	}
	for i, input := range inputStrings {
		t.Logf("------+-----------------+--------")
		sc, err := LM.Scanner(input)
		if err != nil {
			t.Error(err)
		}
		token := sc.NextToken()
		count := 0
		for token.TokType() != scanner.EOF {
			if lexeme := input[token.Span().From():token.Span().To()]; lexeme != token.Lexeme() {
				t.Errorf("Expected span of %q to cover its lexeme, covers %q", token.Lexeme(), lexeme)
			}
			t.Logf(" %4d | %15s | @%5d", token.TokType(), token.Lexeme(), token.Span().From())
			token = sc.NextToken()
			count++
		}
		if count != TokenCounts[i] {
			t.Errorf("Expected token count for #%d to be %d, is %d", i, TokenCounts[i], count)
		}
		if token.Span().From() != uint64(len(input)) {
			t.Errorf("Expected EOF of #%d at offset %d, is %d", i, len(input), token.Span().From())
		}
	}
	t.Logf("------+-----------------+--------")
}

func TestKeywordPrecedence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.scanner")
	defer teardown()
	//
	ids := map[string]int{"if": 1, "ID": 2, ":=": 3}
	init := func(lexer *lexmachine.Lexer) {
		lexer.Add([]byte(`([a-z]|[A-Z])+`), MakeToken("ID", ids["ID"]))
		lexer.Add([]byte(`( |\t|\n)+`), Skip)
	}
	LM, err := NewLMAdapter(init, []string{":="}, []string{"if"}, ids)
	if err != nil {
		t.Fatal(err)
	}
	sc, _ := LM.Scanner("if iffy := x")
	expected := []int{1, 2, 3, 2}
	for i, typ := range expected {
		token := sc.NextToken()
		if int(token.TokType()) != typ {
			t.Errorf("Expected token #%d (%q) to be of type %d, is %d", i, token.Lexeme(), typ, token.TokType())
		}
	}
	var errcnt int
	sc, _ = LM.Scanner("a ? b")
	sc.SetErrorHandler(func(error) { errcnt++ })
	for token := sc.NextToken(); token.TokType() != scanner.EOF; token = sc.NextToken() {
	}
	if errcnt == 0 {
		t.Errorf("Expected a scanner error for '?'")
	}
}

func TestQuoteLiteral(t *testing.T) {
	for _, pair := range [][2]string{
		{"nil", "nil"},
		{":=", `\:\=`},
		{"a.b", `a\.b`},
		{"else if", "else if"},
	} {
		if q := QuoteLiteral(pair[0]); q != pair[1] {
			t.Errorf("Expected %q to be quoted as %q, is %q", pair[0], pair[1], q)
		}
	}
}

var literals []string       // The tokens representing literal strings
var keywords []string       // The keyword tokens
var tokens []string         // All of the tokens (including literals and keywords)
var tokenIds map[string]int // A map from the token names to their int ids

func initTokens() {
	literals = []string{
		"'",
		"(",
		")",
		"[",
		"]",
		"=",
		"+",
		"-",
		"*",
		"/",
	}
	keywords = []string{
		"nil",
		"t",
	}
	tokens = []string{
		"COMMENT",
		"ID",
		"NUM",
		"STRING",
	}
	tokens = append(tokens, keywords...)
	tokens = append(tokens, literals...)
	tokenIds = make(map[string]int)
	tokenIds["COMMENT"] = scanner.Comment
	tokenIds["ID"] = scanner.Ident
	tokenIds["NUM"] = scanner.Int
	tokenIds["STRING"] = int(scanner.String)
	for i, tok := range tokens[4:] {
		tokenIds[tok] = i + 10
	}
}
