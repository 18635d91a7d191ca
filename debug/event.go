package debug

import (
	"fmt"
	"strings"
)

// NoInvocation is the parent invocation ID of the start rule's invocation.
const NoInvocation = -1

// OutsideRules is the rule name of decisions taken while no rule invocation
// is open, e.g. when recovering from trailing input after the start rule.
const OutsideRules = "<root>"

// Alternative describes one alternative of a decision.
type Alternative struct {
	Description string `yaml:"description"`
	Viable      bool   `yaml:"viable"`
}

// DecisionEvent is the record of a single decision of the parser.
// DecisionEvents are immutable once they have been handed to an EventSink.
type DecisionEvent struct {
	ID              int           `yaml:"id"`
	RuleName        string        `yaml:"rule"`
	DecisionIndex   int           `yaml:"decision"`
	Alternatives    []Alternative `yaml:"alternatives"`
	Chosen          int           `yaml:"chosen"`
	InputStart      uint64        `yaml:"start"`
	InputEnd        uint64        `yaml:"end"`
	IsAmbiguous     bool          `yaml:"ambiguous"`
	IsErrorRecovery bool          `yaml:"recovery"`
	LookaheadDepth  int           `yaml:"depth"`
	InvocationID    int           `yaml:"invocation"`
	RuleStack       []string      `yaml:"stack,flow"`
	Lookahead       []string      `yaml:"lookahead,flow"`
	Attempt         int           `yaml:"attempt,omitempty"`
}

// NewDecisionEvent checks the invariants of a decision event and returns a
// copy of it. The chosen alternative has to be a valid index into the
// alternatives, and the input range must not be inverted. Only error
// recoveries may come without alternatives, and have to set Chosen to 0
// in this case.
func NewDecisionEvent(e DecisionEvent) (*DecisionEvent, error) {
	if e.InputStart > e.InputEnd {
		return nil, fmt.Errorf("decision %d in %s: input range %d…%d inverted",
			e.ID, e.RuleName, e.InputStart, e.InputEnd)
	}
	if len(e.Alternatives) == 0 {
		if !e.IsErrorRecovery {
			return nil, fmt.Errorf("decision %d in %s: no alternatives", e.ID, e.RuleName)
		}
		if e.Chosen != 0 {
			return nil, fmt.Errorf("decision %d in %s: chosen %d without alternatives",
				e.ID, e.RuleName, e.Chosen)
		}
	} else if e.Chosen < 0 || e.Chosen >= len(e.Alternatives) {
		return nil, fmt.Errorf("decision %d in %s: chosen %d out of range 0…%d",
			e.ID, e.RuleName, e.Chosen, len(e.Alternatives)-1)
	}
	return &e, nil
}

// ChosenAlternative returns the alternative the parser followed, if any.
func (e *DecisionEvent) ChosenAlternative() (Alternative, bool) {
	if len(e.Alternatives) == 0 {
		return Alternative{}, false
	}
	return e.Alternatives[e.Chosen], true
}

func (e *DecisionEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "decision #%d %s/%d (%d…%d)", e.ID, e.RuleName, e.DecisionIndex,
		e.InputStart, e.InputEnd)
	if alt, ok := e.ChosenAlternative(); ok {
		fmt.Fprintf(&b, " chose [%d] %s", e.Chosen, alt.Description)
	}
	if e.IsAmbiguous {
		fmt.Fprintf(&b, " ambiguous, k=%d", e.LookaheadDepth)
	}
	if e.IsErrorRecovery {
		b.WriteString(" recovery")
	}
	return b.String()
}

// RuleInvocation records the entry into and the exit from a grammar rule.
// InputEnd and Succeeded are valid only after the invocation has been
// closed.
type RuleInvocation struct {
	RuleName           string `yaml:"rule"`
	InvocationID       int    `yaml:"id"`
	InputStart         uint64 `yaml:"start"`
	InputEnd           uint64 `yaml:"end"`
	ParentInvocationID int    `yaml:"parent"`
	Succeeded          bool   `yaml:"succeeded"`
	Closed             bool   `yaml:"closed"`
}

func (inv *RuleInvocation) String() string {
	state := "open"
	if inv.Closed {
		state = "failed"
		if inv.Succeeded {
			state = "ok"
		}
	}
	return fmt.Sprintf("%s#%d (%d…%d) %s", inv.RuleName, inv.InvocationID,
		inv.InputStart, inv.InputEnd, state)
}
