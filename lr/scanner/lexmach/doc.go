/*
Package lexmach wraps lexmachine DFAs as scanner.Tokenizers.

Package lang builds the lexer of every grammar compiled from EBNF with this
adapter: string literals of syntactic rules become literal patterns,
lexical productions become regular expressions, and the productions for
whitespace and comments are registered with action Skip:

	init := func(lexer *lexmachine.Lexer) {
		lexer.Add([]byte(`[a-z]+`), lexmach.MakeToken("ident", identID))
		lexer.Add([]byte(`( |\t|\n|\r)+`), lexmach.Skip)
	}
	lm, err := lexmach.NewLMAdapter(init, []string{"(", ")"}, nil, tokenIds)

Literals and keywords are added ahead of the patterns of init, escaped with
QuoteLiteral, so they win over patterns matching input of the same length.
A DFA is compiled once per grammar; every parse run creates its own
LMScanner with Scanner(input).

Token spans are byte offsets into the input, taken from lexmachine's text
counter. This is what traversal nodes and session snippets rely on. Input
no pattern matches is reported to the error handler and skipped; at the
end of input NextToken returns an EOF token with an empty span at
len(input).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lexmach
