/*
Package ll implements a grammar-interpreting top-down parser with adaptive
lookahead.

The parser walks the rules of an analysed grammar in recursive descent
manner. Whenever a non-terminal with more than one alternative is to be
expanded, the parser predicts which alternative to follow. Prediction first
consults the LL(1) table of the grammar. If the table is not conclusive,
the parser simulates all alternatives on the upcoming tokens, using the
actual continuation of the rules currently being parsed (full context),
until at most one alternative remains or the maximum lookahead is
exhausted. If more than one alternative survives, they are tried in order,
with the token stream rewound after every failed attempt.

Clients may watch the parser with an Observer. The parser reports entering
and exiting grammar rules, every decision and every error recovery.
Observers cannot influence the parse.

Error Recovery

Syntax errors are recovered by deleting a single token or by pretending a
missing token to be present. Recovery is never applied while the parser
tries alternatives speculatively. If no recovery is possible, the parse
stops with a *paredros.ParseError.

Configuration

The following configuration keys are consulted if no corresponding option
is given:

    paredros.max-lookahead   maximum number of lookahead tokens (default 4)
    paredros.max-recoveries  maximum number of recovered errors (default 16)
    panic-on-parser-stuck    panic if a repetition makes no progress

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ll

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paredros.ll'.
func tracer() tracing.Trace {
	return tracing.Select("paredros.ll")
}
