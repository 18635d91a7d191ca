package debug

import (
	"fmt"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/lr"
	"github.com/npillmayer/paredros/lr/ll"
	"github.com/npillmayer/paredros/lr/scanner"
)

// Interceptor watches a parse and emits events to an EventSink. It
// implements interface ll.Observer.
//
// An Interceptor is used for a single parse and is not safe for concurrent
// use.
type Interceptor struct {
	sink      EventSink
	calls     *CallStack
	tokenName paredros.TokTypeStringer
	seq       int    // next decision event ID
	furthest  uint64 // furthest offset seen in rule events
	finished  bool
}

var _ ll.Observer = &Interceptor{}

// NewInterceptor creates an interceptor forwarding events to sink.
// tokenName, if not nil, is used to name tokens without lexeme (i.e., end of
// input) in the lookahead of decision events.
func NewInterceptor(sink EventSink, tokenName paredros.TokTypeStringer) *Interceptor {
	if sink == nil {
		panic("debug.NewInterceptor: event sink may not be nil")
	}
	return &Interceptor{
		sink:      sink,
		calls:     NewCallStack(),
		tokenName: tokenName,
	}
}

// CallStack returns the call stack tracker of the interceptor.
func (ic *Interceptor) CallStack() *CallStack {
	return ic.calls
}

// Decisions returns the number of decision events emitted so far.
func (ic *Interceptor) Decisions() int {
	return ic.seq
}

// EnterRule is part of interface ll.Observer.
func (ic *Interceptor) EnterRule(rule *lr.Symbol, start uint64) {
	ic.checkFinished("EnterRule")
	ic.reach(start)
	inv := ic.calls.Push(rule.Name, start)
	ic.sink.EnterRule(inv)
}

// ExitRule is part of interface ll.Observer. It panics if rule is not the
// innermost open rule.
func (ic *Interceptor) ExitRule(rule *lr.Symbol, end uint64, ok bool) {
	ic.checkFinished("ExitRule")
	top := ic.calls.Top()
	if top == nil || top.RuleName != rule.Name {
		panic(fmt.Sprintf("debug.Interceptor: exit of rule %s does not match open invocation %v",
			rule.Name, top))
	}
	ic.reach(end)
	inv := ic.calls.Pop(end, ok)
	ic.sink.ExitRule(inv)
}

// Decide is part of interface ll.Observer.
func (ic *Interceptor) Decide(d *ll.Decision) {
	ic.checkFinished("Decide")
	alts := make([]Alternative, len(d.Alternatives))
	for i, r := range d.Alternatives {
		alts[i] = Alternative{
			Description: r.Describe(),
			Viable:      i < len(d.Viable) && d.Viable[i],
		}
	}
	lookahead := make([]string, len(d.Lookahead))
	for i, tok := range d.Lookahead {
		lookahead[i] = ic.tokenString(tok)
	}
	ic.emit(DecisionEvent{
		RuleName:       d.Rule.Name,
		DecisionIndex:  d.Index,
		Alternatives:   alts,
		Chosen:         d.Chosen,
		InputStart:     d.Span.From(),
		InputEnd:       d.Span.To(),
		IsAmbiguous:    d.Ambiguous,
		LookaheadDepth: d.Depth,
		Lookahead:      lookahead,
		Attempt:        d.Attempt,
	})
}

// Recover is part of interface ll.Observer. A repaired syntax error is
// recorded as a decision with the repair strategy as its only alternative.
// A failure is recorded without alternatives.
func (ic *Interceptor) Recover(r *ll.Recovery) {
	ic.checkFinished("Recover")
	var alts []Alternative
	if r.Strategy != ll.Fail {
		desc := fmt.Sprintf("%s %s", r.Strategy, ic.tokenString(r.Token))
		if r.Strategy == ll.InsertToken && len(r.Expected) > 0 {
			desc = fmt.Sprintf("%s %s", r.Strategy, r.Expected[0])
		}
		alts = []Alternative{{Description: desc, Viable: true}}
	}
	ic.emit(DecisionEvent{
		RuleName:        r.Rule.Name,
		Alternatives:    alts,
		InputStart:      r.Span.From(),
		InputEnd:        r.Span.To(),
		IsErrorRecovery: true,
		LookaheadDepth:  1,
		Lookahead:       []string{ic.tokenString(r.Token)},
	})
}

// Finish ends interception. Rules still open are closed as failed at
// offset furthest, or at the furthest offset any rule reached, whichever
// is greater. Finish returns the invocations it closed, innermost first.
// Further events will panic.
func (ic *Interceptor) Finish(furthest uint64) []*RuleInvocation {
	ic.checkFinished("Finish")
	ic.finished = true
	if furthest < ic.furthest {
		furthest = ic.furthest
	}
	closed := ic.calls.Unwind(furthest)
	for _, inv := range closed {
		tracer().Infof("force-closing %s", inv)
		ic.sink.ExitRule(inv)
	}
	return closed
}

func (ic *Interceptor) emit(e DecisionEvent) {
	e.ID = ic.seq
	e.InvocationID = NoInvocation
	if top := ic.calls.Top(); top != nil {
		e.InvocationID = top.InvocationID
	} else {
		e.RuleName = OutsideRules
	}
	e.RuleStack = ic.calls.Names()
	event, err := NewDecisionEvent(e)
	if err != nil {
		panic(fmt.Sprintf("debug.Interceptor: %v", err))
	}
	ic.seq++
	ic.sink.Decision(event)
}

func (ic *Interceptor) reach(offset uint64) {
	if offset > ic.furthest {
		ic.furthest = offset
	}
}

func (ic *Interceptor) tokenString(tok paredros.Token) string {
	return scanner.TokenString(tok, ic.tokenName)
}

func (ic *Interceptor) checkFinished(op string) {
	if ic.finished {
		panic(fmt.Sprintf("debug.Interceptor: %s called after Finish", op))
	}
}
