/*
Package debug intercepts the decisions of a parser and turns them into a
stream of events.

The parser of package lr/ll calls an Observer at every rule entry, rule exit,
decision and error recovery. Type Interceptor implements this interface. It
mirrors the parser's rule invocation stack with a CallStack, tags every
decision with the rule nesting active at the time it occured, and forwards
RuleInvocations and DecisionEvents, in temporal order, to an EventSink.
The Interceptor never influences the parse.

Decisions are reported even if prediction found a single viable
alternative. A decision is flagged as ambiguous if more than one alternative
was viable on the first token of lookahead. Syntax errors the parser
recovered from, as well as a final failure, are reported as decisions
flagged as error recoveries; their alternatives name the repair strategy
(or are empty, if the parser gave up).

Rules abandoned by backtracking are closed with Succeeded=false. When a
parse stops with rules still open, Finish closes them at the furthest input
offset reached, so consumers always see a well-formed event stream.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package debug

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paredros.debug'.
func tracer() tracing.Trace {
	return tracing.Select("paredros.debug")
}
