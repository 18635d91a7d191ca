package debug

import (
	"io"

	"gopkg.in/yaml.v3"
)

// EventSink receives the events of a parse in temporal order.
//
// ExitRule receives the same *RuleInvocation EnterRule received, now
// closed. Events are shared between all sinks of a Tee and must not be
// modified. Sinks which need to adjust them work on copies.
type EventSink interface {
	EnterRule(inv *RuleInvocation)
	ExitRule(inv *RuleInvocation)
	Decision(e *DecisionEvent)
}

// Tee creates an event sink which hands every event to each of sinks, in
// the order given. Nil sinks are ignored.
func Tee(sinks ...EventSink) EventSink {
	t := tee{}
	for _, s := range sinks {
		if s != nil {
			t = append(t, s)
		}
	}
	return t
}

type tee []EventSink

func (t tee) EnterRule(inv *RuleInvocation) {
	for _, s := range t {
		s.EnterRule(inv)
	}
}

func (t tee) ExitRule(inv *RuleInvocation) {
	for _, s := range t {
		s.ExitRule(inv)
	}
}

func (t tee) Decision(e *DecisionEvent) {
	for _, s := range t {
		s.Decision(e)
	}
}

// TraceSink is an event sink writing every event to the tracer of this
// package. Ambiguities and error recoveries are traced on level Info,
// everything else on level Debug.
type TraceSink struct{}

// EnterRule is part of interface EventSink.
func (TraceSink) EnterRule(inv *RuleInvocation) {
	tracer().Debugf("> %s", inv)
}

// ExitRule is part of interface EventSink.
func (TraceSink) ExitRule(inv *RuleInvocation) {
	tracer().Debugf("< %s", inv)
}

// Decision is part of interface EventSink.
func (TraceSink) Decision(e *DecisionEvent) {
	if e.IsAmbiguous || e.IsErrorRecovery {
		tracer().Infof("? %s", e)
		return
	}
	tracer().Debugf("? %s", e)
}

// --- Recorder --------------------------------------------------------------

// EventType tells the kind of a recorded event.
type EventType int

// Types of recorded events.
const (
	EnterRuleEvent EventType = iota
	ExitRuleEvent
	DecideEvent
)

func (t EventType) String() string {
	switch t {
	case EnterRuleEvent:
		return "enter"
	case ExitRuleEvent:
		return "exit"
	}
	return "decision"
}

// Event is an entry of a Recorder's event log. For rule events, Rule is a
// snapshot of the invocation at the time of the event.
type Event struct {
	Type     EventType
	Rule     *RuleInvocation
	Decision *DecisionEvent
}

// Recorder is an event sink keeping the raw event log of a parse.
type Recorder struct {
	events []Event
}

// EnterRule is part of interface EventSink.
func (r *Recorder) EnterRule(inv *RuleInvocation) {
	snapshot := *inv
	r.events = append(r.events, Event{Type: EnterRuleEvent, Rule: &snapshot})
}

// ExitRule is part of interface EventSink.
func (r *Recorder) ExitRule(inv *RuleInvocation) {
	snapshot := *inv
	r.events = append(r.events, Event{Type: ExitRuleEvent, Rule: &snapshot})
}

// Decision is part of interface EventSink.
func (r *Recorder) Decision(e *DecisionEvent) {
	r.events = append(r.events, Event{Type: DecideEvent, Decision: e})
}

// Events returns the recorded events in temporal order.
func (r *Recorder) Events() []Event {
	return r.events
}

// Decisions returns the recorded decision events in temporal order.
func (r *Recorder) Decisions() []*DecisionEvent {
	var decisions []*DecisionEvent
	for _, e := range r.events {
		if e.Type == DecideEvent {
			decisions = append(decisions, e.Decision)
		}
	}
	return decisions
}

// Reset clears the event log.
func (r *Recorder) Reset() {
	r.events = r.events[:0]
}

type eventRecord struct {
	Event    string          `yaml:"event"`
	Rule     *RuleInvocation `yaml:"invocation,omitempty"`
	Decision *DecisionEvent  `yaml:"decision,omitempty"`
}

// WriteYAML writes the event log as a YAML sequence.
func (r *Recorder) WriteYAML(w io.Writer) error {
	records := make([]eventRecord, len(r.events))
	for i, e := range r.events {
		records[i] = eventRecord{Event: e.Type.String(), Rule: e.Rule, Decision: e.Decision}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}
