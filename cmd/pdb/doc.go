/*
Package pdb/main provides an interactive command line debugger for grammars
(pdb). pdb compiles a grammar in EBNF notation, parses an input file with
it, and lets users step through the recorded traversal of the parse:
rule invocations, the decisions taken at every choice point, ambiguities
and error recoveries.

    pdb -grammar expr.ebnf -input example.txt -trace Info

Enter 'help' at the prompt for a list of commands. Quit with <ctrl>D.


License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paredros.pdb'
func tracer() tracing.Trace {
	return tracing.Select("paredros.pdb")
}
