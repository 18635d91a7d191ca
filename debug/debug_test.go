package debug

import (
	"bytes"
	"strings"
	"testing"

	"github.com/npillmayer/paredros/lang"
	"github.com/npillmayer/paredros/lr/ll"
	"github.com/npillmayer/paredros/lr/scanner"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"gopkg.in/yaml.v3"
)

func TestCallStack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.debug")
	defer teardown()
	//
	cs := NewCallStack()
	a := cs.Push("A", 0)
	b := cs.Push("B", 2)
	if a.ParentInvocationID != NoInvocation || b.ParentInvocationID != a.InvocationID {
		t.Errorf("Expected B to be called by A, and A to have no caller, have %d and %d",
			b.ParentInvocationID, a.ParentInvocationID)
	}
	if cs.Depth() != 2 || strings.Join(cs.Names(), " ") != "A B" {
		t.Errorf("Expected stack to be [A B], is %v", cs.Names())
	}
	if inv := cs.Pop(1, true); inv != b || inv.InputEnd != 2 || !inv.Closed {
		t.Errorf("Expected B to be closed with end clamped to 2, is %v", inv)
	}
	c := cs.Push("C", 3)
	if c.InvocationID != 2 {
		t.Errorf("Expected invocation IDs to be allocated in order, C is %d", c.InvocationID)
	}
	closed := cs.Unwind(7)
	if len(closed) != 2 || closed[0] != c || closed[1] != a {
		t.Fatalf("Expected C and A to be unwound, have %v", closed)
	}
	if a.Succeeded || a.InputEnd != 7 {
		t.Errorf("Expected A to be closed as failed at 7, is %v", a)
	}
	if cs.Top() != nil {
		t.Errorf("Expected stack to be empty")
	}
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected underflow to panic")
		}
	}()
	cs.Pop(0, true)
}

func TestDecisionEventInvariants(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.debug")
	defer teardown()
	//
	alts := []Alternative{{Description: "a"}, {Description: "b"}}
	if _, err := NewDecisionEvent(DecisionEvent{Alternatives: alts, Chosen: 1}); err != nil {
		t.Errorf("Expected valid event, have error %v", err)
	}
	bad := []DecisionEvent{
		{Alternatives: alts, Chosen: 2},
		{Alternatives: alts, Chosen: -1},
		{Alternatives: alts, InputStart: 3, InputEnd: 2},
		{},
		{IsErrorRecovery: true, Chosen: 1},
	}
	for i, e := range bad {
		if _, err := NewDecisionEvent(e); err == nil {
			t.Errorf("Expected event #%d to be rejected", i)
		}
	}
	if _, err := NewDecisionEvent(DecisionEvent{IsErrorRecovery: true}); err != nil {
		t.Errorf("Expected recovery without alternatives to be valid, have error %v", err)
	}
}

func intercept(t *testing.T, grammar, input string) (*Recorder, *Interceptor, error) {
	L, err := lang.Compile("test", grammar)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := L.Tokenizer("input", input)
	if err != nil {
		t.Fatal(err)
	}
	rec := &Recorder{}
	ic := NewInterceptor(Tee(rec, TraceSink{}, nil), L.TokenName)
	p := ll.NewParser(L.Analysis(), L.Table(), ll.WithObserver(ic), ll.MaxRecoveries(1))
	_, err = p.Parse(scanner.NewTokenStream(tok))
	ic.Finish(p.Furthest())
	return rec, ic, err
}

func TestInterceptAmbiguity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.debug")
	defer teardown()
	//
	grammar := `S = A A .
A = "x" | "x" "y" .`
	rec, ic, err := intercept(t, grammar, "x y x")
	if err != nil {
		t.Fatal(err)
	}
	if ic.Decisions() != 2 {
		t.Fatalf("Expected 2 decisions, have %d", ic.Decisions())
	}
	d := rec.Decisions()
	if d[0].Chosen != 1 || !d[0].IsAmbiguous || d[0].LookaheadDepth != 2 {
		t.Errorf("Expected 1st decision to choose 'x y' at depth 2, is %v", d[0])
	}
	if d[1].Chosen != 0 || d[1].InputStart != 4 {
		t.Errorf("Expected 2nd decision to choose 'x' at 4, is %v", d[1])
	}
	if d[0].Alternatives[1].Description != `"x" "y"` {
		t.Errorf("Expected alternative to be described as \"x\" \"y\", is %s", d[0].Alternatives[1].Description)
	}
	if strings.Join(d[1].RuleStack, " ") != "S A" || d[1].RuleName != "A" {
		t.Errorf("Expected decision to be made in A called by S, stack is %v", d[1].RuleStack)
	}
	if d[1].Lookahead[1] != "#eof" {
		t.Errorf("Expected lookahead to end with #eof, is %v", d[1].Lookahead)
	}
	if d[0].ID != 0 || d[1].ID != 1 {
		t.Errorf("Expected decision IDs to be sequential")
	}
	events := rec.Events()
	if events[0].Type != EnterRuleEvent || events[0].Rule.RuleName != "S" {
		t.Errorf("Expected first event to enter S, is %v", events[0])
	}
	last := events[len(events)-1]
	if last.Type != ExitRuleEvent || !last.Rule.Succeeded || last.Rule.InputEnd != 5 {
		t.Errorf("Expected last event to close S at 5, is %v", last.Rule)
	}
}

func TestInterceptFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.debug")
	defer teardown()
	//
	grammar := `S = "a" B .
B = "b" "c" .`
	rec, _, err := intercept(t, grammar, "a a a")
	if err == nil {
		t.Fatalf("Expected parse to fail")
	}
	var recoveries []*DecisionEvent
	for _, d := range rec.Decisions() {
		if d.IsErrorRecovery {
			recoveries = append(recoveries, d)
		}
	}
	if len(recoveries) != 1 || len(recoveries[0].Alternatives) != 0 || recoveries[0].RuleName != "B" {
		t.Errorf("Expected single failure in B, have %v", recoveries)
	}
	for _, e := range rec.Events() {
		if e.Type == ExitRuleEvent && e.Rule.Succeeded {
			t.Errorf("Expected no rule to succeed, %s did", e.Rule)
		}
	}
}

func TestRecoveryOutsideRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.debug")
	defer teardown()
	//
	rec, _, err := intercept(t, `S = "a" .`, "a a")
	if err != nil {
		t.Fatal(err)
	}
	d := rec.Decisions()
	if len(d) != 1 || !d[0].IsErrorRecovery {
		t.Fatalf("Expected a single recovery for trailing input, have %v", d)
	}
	if d[0].RuleName != OutsideRules || d[0].InvocationID != NoInvocation || len(d[0].RuleStack) != 0 {
		t.Errorf("Expected recovery outside of any rule, is %v in %v", d[0], d[0].RuleStack)
	}
	if d[0].InputStart != 2 {
		t.Errorf("Expected trailing 'a' at 2 to be deleted, is %d", d[0].InputStart)
	}
}

func TestInterceptorContract(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.debug")
	defer teardown()
	//
	rec := &Recorder{}
	ic := NewInterceptor(rec, nil)
	L, err := lang.Compile("contract", `S = A . A = "a" .`)
	if err != nil {
		t.Fatal(err)
	}
	S := L.Grammar().SymbolByName("S")
	A := L.Grammar().SymbolByName("A")
	ic.EnterRule(S, 0)
	ic.EnterRule(A, 0)
	closed := ic.Finish(1)
	if len(closed) != 2 || closed[1].RuleName != "S" || closed[1].InputEnd != 1 {
		t.Errorf("Expected A and S to be force-closed at 1, have %v", closed)
	}
	if len(rec.Events()) != 4 {
		t.Errorf("Expected 4 events, have %d", len(rec.Events()))
	}
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected event after Finish to panic")
		}
	}()
	ic.EnterRule(S, 1)
}

func TestRecorderYAML(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.debug")
	defer teardown()
	//
	rec, _, err := intercept(t, `A = "x" | "x" "y" .`, "xy")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := rec.WriteYAML(&buf); err != nil {
		t.Fatal(err)
	}
	t.Logf("\n%s", buf.String())
	var records []map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 || records[1]["event"] != "decision" {
		t.Errorf("Expected enter, decision, exit, have %v", records)
	}
	rec.Reset()
	if len(rec.Events()) != 0 {
		t.Errorf("Expected event log to be empty after reset")
	}
}
