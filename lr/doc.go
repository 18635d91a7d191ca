/*
Package lr implements grammars and static grammar analysis for the
parsers of paredros.

Building a Grammar

Grammars are specified using a grammar builder object. Clients add
rules, consisting of non-terminal symbols and terminals. Terminals
carry a token value of type int. Grammars may contain epsilon-productions.

Example:

    b := lr.NewGrammarBuilder("G")
    b.LHS("S").N("A").T("a", 1).End()  // S  ->  A a
    b.LHS("A").N("B").N("D").End()     // A  ->  B D
    b.LHS("B").T("b", 2).End()         // B  ->  b
    b.LHS("B").Epsilon()               // B  ->
    b.LHS("D").T("d", 3).End()         // D  ->  d
    b.LHS("D").Epsilon()               // D  ->

This results in the following trivial grammar:

   g, _ := b.Grammar()
   g.Dump()

   0: [S'] ::= [S #eof]
   1: [S] ::= [A a]
   2: [A] ::= [B D]
   3: [B] ::= [b]
   4: [B] ::= []
   5: [D] ::= [d]
   6: [D] ::= []

Rule 0 is always a synthetic start rule, wrapping the start symbol
(the LHS of the first rule) and end of input.

Grammars compiled from EBNF will contain auxiliary non-terminals for
groups, options and repetitions. Auxiliary non-terminals are owned by the
grammar rule they occur in, and each of them is a separate decision point
of its owner. Parsers do not report rule invocations for them.

Static Grammar Analysis

After the grammar is complete, it has to be analysed. For this end, the
grammar is subjected to an LLAnalysis object, which computes FIRST and
FOLLOW sets for the grammar, determines all epsilon-derivable
non-terminals and finds left recursion.

    ga := lr.Analysis(g)  // analyser for grammar above
    ga.Grammar().EachNonTerminal(
        func(N *lr.Symbol) interface{} {                    // ad-hoc mapper function
            fmt.Printf("FIRST(%s) = %v", N, ga.First(N))    // get FIRST-set for N
            return nil
        })

    // Output:
    FIRST(S) = {1 2 3}         // terminal token values as int, 1 = 'a'
    FIRST(A) = {2 3}           // A derives epsilon, too
    FIRST(B) = {2}             // 2 = 'b'
    FIRST(D) = {3}             // 3 = 'd'

A top-down parser cannot handle left recursive grammars. Analysis.Check()
reports them as grammar errors.

Prediction Tables

From FIRST and FOLLOW sets an LL(1) prediction table is constructed. Cells
with more than one entry mark LL(1) conflicts, i.e. places where a parser
will need more than one token of lookahead, or has to backtrack.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paredros.lr'.
func tracer() tracing.Trace {
	return tracing.Select("paredros.lr")
}
