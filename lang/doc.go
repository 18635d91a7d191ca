/*
Package lang compiles grammar descriptions into languages a parser can run.

Grammars are written in the EBNF notation of golang.org/x/exp/ebnf:

    Production  = name "=" [ Expression ] "." .
    Expression  = Alternative { "|" Alternative } .
    Alternative = Term { Term } .
    Term        = name | token [ "…" token ] | Group | Option | Repetition .
    Group       = "(" Expression ")" .
    Option      = "[" Expression "]" .
    Repetition  = "{" Expression "}" .

Productions with a capitalized name are syntactic rules, all others are
lexical token classes. String literals appearing in syntactic rules are
literal tokens. Lexical productions named "whitespace" and "comment" are
skipped by the lexer. If there is no production "whitespace", blanks, tabs
and line breaks are skipped.

Groups, options and repetitions of syntactic rules are translated into
auxiliary non-terminals owned by the enclosing rule. Their decisions are
reported under the name of the rule they belong to.

A compiled Language carries the analysed grammar, its LL(1) prediction
table, a lexer and the location of every production in the grammar text.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lang

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paredros.lang'.
func tracer() tracing.Trace {
	return tracing.Select("paredros.lang")
}
