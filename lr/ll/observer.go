package ll

import (
	"fmt"
	"strings"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/lr"
)

// Observer is an interface for watching a parse. Observers are called
// synchronously from the parser's goroutine.
//
// EnterRule and ExitRule are called for grammar rules only, never for
// auxiliary non-terminals. ok is false for rules which failed to match,
// including rules abandoned during speculative parsing.
type Observer interface {
	EnterRule(rule *lr.Symbol, start uint64)
	ExitRule(rule *lr.Symbol, end uint64, ok bool)
	Decide(d *Decision)
	Recover(r *Recovery)
}

// Decision describes the prediction of an alternative for a non-terminal.
type Decision struct {
	Rule         *lr.Symbol       // grammar rule the decision belongs to
	NonTerminal  *lr.Symbol       // non-terminal to expand, may be auxiliary
	Index        int              // decision index within Rule, 0 for the rule itself
	Alternatives []*lr.Rule       // all alternatives of NonTerminal
	Viable       []bool           // viable after the first lookahead token
	Chosen       int              // index of the alternative the parser follows
	Ambiguous    bool             // more than one alternative viable on LA(1)
	Depth        int              // number of lookahead tokens examined
	Lookahead    []paredros.Token // tokens examined
	Span         paredros.Span    // input covered by the lookahead tokens
	Attempt      int              // 0 for the first try, incremented on backtracking
}

func (d *Decision) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "decision %s/%d: chose %d of %d, depth %d", d.Rule, d.Index,
		d.Chosen, len(d.Alternatives), d.Depth)
	if d.Ambiguous {
		b.WriteString(", ambiguous")
	}
	if d.Attempt > 0 {
		fmt.Fprintf(&b, ", attempt %d", d.Attempt+1)
	}
	return b.String()
}

// Strategy is a type for error recovery strategies.
type Strategy int

// Recovery strategies.
const (
	DeleteToken Strategy = iota // skip an unexpected token
	InsertToken                 // pretend a missing token to be present
	Fail                        // no recovery possible, parse stops
)

func (s Strategy) String() string {
	switch s {
	case DeleteToken:
		return "delete"
	case InsertToken:
		return "insert"
	}
	return "fail"
}

// Recovery describes a syntax error and the parser's reaction to it.
type Recovery struct {
	Rule     *lr.Symbol     // grammar rule active at the error
	Strategy Strategy       // how the parser reacted
	Token    paredros.Token // offending token
	Expected []string       // names of acceptable tokens
	Span     paredros.Span  // input span of the offending token
}

func (r *Recovery) String() string {
	return fmt.Sprintf("%s %q in %s at %s, expected %s", r.Strategy,
		r.Token.Lexeme(), r.Rule, r.Span, strings.Join(r.Expected, " "))
}

type nopObserver struct{}

func (nopObserver) EnterRule(*lr.Symbol, uint64)     {}
func (nopObserver) ExitRule(*lr.Symbol, uint64, bool) {}
func (nopObserver) Decide(*Decision)                 {}
func (nopObserver) Recover(*Recovery)                {}
