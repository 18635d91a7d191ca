package traversal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/debug"
	"github.com/npillmayer/paredros/lang"
	"github.com/npillmayer/paredros/lr/ll"
	"github.com/npillmayer/paredros/lr/scanner"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"gopkg.in/yaml.v3"
)

func trace(t *testing.T, grammar, input string, opts ...ll.Option) (*Traversal, error) {
	L, err := lang.Compile("test", grammar)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := L.Tokenizer("input", input)
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder()
	ic := debug.NewInterceptor(b, L.TokenName)
	p := ll.NewParser(L.Analysis(), L.Table(), append(opts, ll.WithObserver(ic))...)
	_, err = p.Parse(scanner.NewTokenStream(tok))
	ic.Finish(p.Furthest())
	return b.Finalize(p.Furthest()), err
}

// checkProperties verifies properties every finalized traversal has to
// fulfil.
func checkProperties(t *testing.T, tr *Traversal) {
	tr.Each(func(n *Node) {
		if n.ID != 0 {
			steps := 0
			for p := n.ID; p != 0; steps++ {
				parent, err := tr.Parent(p)
				if err != nil || parent == None || steps > tr.Size() {
					t.Fatalf("Expected node %d to reach the root, stuck at %d", n.ID, p)
				}
				p = parent
			}
			siblings, _ := tr.Children(n.Parent)
			count := 0
			for _, s := range siblings {
				if s == n.ID {
					count++
				}
			}
			if count != 1 {
				t.Errorf("Expected node %d to be child of its parent exactly once, is %d", n.ID, count)
			}
		}
		span := n.Span()
		if span.From() > span.To() {
			t.Errorf("Expected start <= end for node %v", n)
		}
		switch n.Kind {
		case RuleNode:
			parent, _ := tr.Node(n.Parent)
			if span.To() > parent.Span().To() {
				t.Errorf("Expected end of %v not to exceed end of parent %v", n, parent)
			}
			if !n.Rule.Closed {
				t.Errorf("Expected rule node %v to be closed", n)
			}
		case DecisionNode:
			d := n.Decision
			if len(d.Alternatives) == 0 && !d.IsErrorRecovery {
				t.Errorf("Expected decision %v to have alternatives", n)
			}
			if len(d.Alternatives) > 0 && (d.Chosen < 0 || d.Chosen >= len(d.Alternatives)) {
				t.Errorf("Expected decision %v to choose a valid alternative", n)
			}
			parent, _ := tr.Node(n.Parent)
			if parent.RuleName() != d.RuleName {
				t.Errorf("Expected decision %v to be attached to its rule, is below %v", n, parent)
			}
		}
	})
	var ambiguous []NodeID
	tr.Each(func(n *Node) {
		if n.IsAmbiguous() {
			ambiguous = append(ambiguous, n.ID)
		}
	})
	if flagged := tr.FlaggedNodes(Ambiguous); !equalIDs(flagged, ambiguous) {
		t.Errorf("Expected ambiguous nodes to be %v, are %v", ambiguous, flagged)
	}
	for offset := uint64(0); offset <= tr.Root().Span().To(); offset++ {
		ids, err := tr.NodesAt(offset)
		if err != nil || len(ids) == 0 || ids[0] != 0 {
			t.Errorf("Expected offset %d to be covered by the root, is %v / %v", offset, ids, err)
		}
		var covering []NodeID
		tr.Each(func(n *Node) {
			if n.Covers(offset) {
				covering = append(covering, n.ID)
			}
		})
		if !equalIDs(ids, covering) {
			t.Errorf("Expected nodes at %d to be %v, are %v", offset, covering, ids)
		}
	}
}

func equalIDs(a, b []NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSingleRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	tr, err := trace(t, `A = "x" .`, "x")
	if err != nil {
		t.Fatal(err)
	}
	checkProperties(t, tr)
	children, _ := tr.Children(0)
	if len(children) != 1 {
		t.Fatalf("Expected root to have 1 child, has %d", len(children))
	}
	A, _ := tr.Node(children[0])
	if A.Kind != RuleNode || A.RuleName() != "A" || !A.Rule.Succeeded {
		t.Errorf("Expected successful invocation of A, is %v", A)
	}
	if A.Span() != (paredros.Span{0, 1}) || len(A.Children) != 0 {
		t.Errorf("Expected A to span 0…1 without decisions, is %v", A)
	}
	if !tr.Root().Rule.Succeeded {
		t.Errorf("Expected root to be marked as succeeded")
	}
}

func TestAmbiguousDecision(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	tr, err := trace(t, `A = "x" | "x" "y" .`, "xy")
	if err != nil {
		t.Fatal(err)
	}
	checkProperties(t, tr)
	flagged := tr.FlaggedNodes(Ambiguous)
	if len(flagged) != 1 {
		t.Fatalf("Expected 1 ambiguous decision, have %d", len(flagged))
	}
	d, _ := tr.Node(flagged[0])
	if len(d.Decision.Alternatives) != 2 || d.Decision.Chosen != 1 || d.Decision.LookaheadDepth < 1 {
		t.Errorf("Expected decision for 2nd of 2 alternatives, is %v", d)
	}
	parent, _ := tr.Node(d.Parent)
	if parent.RuleName() != "A" {
		t.Errorf("Expected decision to be attached to A, is attached to %v", parent)
	}
	path, _ := tr.Path(d.ID)
	if !equalIDs(path, []NodeID{0, parent.ID, d.ID}) {
		t.Errorf("Expected path root ➞ A ➞ decision, is %v", path)
	}
	if len(tr.FlaggedNodes(ErrorRecovery)) != 0 || len(tr.FlaggedNodes(Both)) != 1 {
		t.Errorf("Expected no error recoveries")
	}
}

func TestFailingStartRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	tr, err := trace(t, `S = "a" "c" | "b" "c" .`, "c")
	var perr *paredros.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected ParseError, is %v", err)
	}
	checkProperties(t, tr)
	children, _ := tr.Children(0)
	S, _ := tr.Node(children[0])
	if S.RuleName() != "S" || S.Rule.Succeeded || S.Rule.InputEnd != perr.Offset {
		t.Errorf("Expected failed S ending at %d, is %v", perr.Offset, S)
	}
	if tr.Root().Rule.Succeeded {
		t.Errorf("Expected root not to be marked as succeeded")
	}
	if errs := tr.FlaggedNodes(ErrorRecovery); len(errs) != 1 {
		t.Errorf("Expected 1 error recovery node, have %v", errs)
	}
}

func TestTrailingInputRecovery(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	tr, err := trace(t, `S = "a" .`, "a a")
	if err != nil {
		t.Fatal(err)
	}
	checkProperties(t, tr)
	errs := tr.FlaggedNodes(ErrorRecovery)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error recovery node, have %v", errs)
	}
	n, _ := tr.Node(errs[0])
	if n.Parent != 0 || n.RuleName() != RootName || n.RuleName() != tr.Root().RuleName() {
		t.Errorf("Expected recovery to belong to the root, is %v with parent %d", n, n.Parent)
	}
}

func TestBacktrackedChildren(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	grammar := `S = P "a" "y" .
P = A | "a" .
A = "a" "a" "x" .`
	tr, err := trace(t, grammar, "a a y", ll.MaxLookahead(1))
	if err != nil {
		t.Fatal(err)
	}
	checkProperties(t, tr)
	var A, P *Node
	tr.Each(func(n *Node) {
		switch n.RuleName() {
		case "A":
			A = n
		case "P":
			if n.Kind == RuleNode {
				P = n
			}
		}
	})
	if A == nil || A.Rule.Succeeded || A.Rule.InputEnd != 3 {
		t.Fatalf("Expected abandoned invocation of A ending at 3, is %v", A)
	}
	if !P.Rule.Succeeded || P.Rule.InputEnd != 3 {
		t.Errorf("Expected end of P to be raised to 3, is %v", P)
	}
	decisions := 0
	for _, ch := range P.Children {
		if n, _ := tr.Node(ch); n.Kind == DecisionNode {
			decisions++
		}
	}
	if decisions != 2 {
		t.Errorf("Expected 2 decisions (one retry) for P, have %d", decisions)
	}
}

func TestIdempotence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	grammar := `Expr = Term { ( "+" | "-" ) Term } .
Term = number | "(" Expr ")" .
number = "0" … "9" { "0" … "9" } .`
	t1, _ := trace(t, grammar, "1 + (2 - 3) - 4")
	t2, _ := trace(t, grammar, "1 + (2 - 3) - 4")
	checkProperties(t, t1)
	if t1.Fingerprint() != t2.Fingerprint() || !t1.Equal(t2) {
		t.Errorf("Expected two runs to produce identical traversals")
	}
	t3, _ := trace(t, grammar, "1 + (2 - 3)")
	if t1.Fingerprint() == t3.Fingerprint() || t1.Equal(t3) {
		t.Errorf("Expected different inputs to produce different traversals")
	}
}

func TestLookupErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	tr, _ := trace(t, `A = "x" .`, "x")
	if _, err := tr.Node(NodeID(tr.Size())); !errors.Is(err, paredros.ErrNotFound) {
		t.Errorf("Expected lookup error for unknown ID, is %v", err)
	}
	if _, err := tr.Path(-2); err == nil {
		t.Errorf("Expected lookup error for negative ID")
	}
	_, err := tr.NodesAt(tr.Root().Span().To() + 1)
	var lerr *paredros.LookupError
	if !errors.As(err, &lerr) || lerr.Kind != "offset" {
		t.Errorf("Expected lookup error for offset beyond input, is %v", err)
	}
	if p, err := tr.Parent(0); p != None || err != nil {
		t.Errorf("Expected root to have no parent")
	}
}

func TestBuilderContract(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	b := NewBuilder()
	cs := debug.NewCallStack()
	b.EnterRule(cs.Push("S", 0))
	b.EnterRule(cs.Push("T", 2))
	b.Decision(&debug.DecisionEvent{RuleName: "T", Alternatives: []debug.Alternative{{}}, InputStart: 2, InputEnd: 3})
	tr := b.Finalize(4)
	checkProperties(t, tr)
	S, _ := tr.Node(1)
	T, _ := tr.Node(2)
	if S.Rule.Succeeded || S.Rule.InputEnd != 4 || T.Rule.InputEnd != 4 || !T.Rule.Closed {
		t.Errorf("Expected S and T to be force-closed at 4, are %v and %v", S, T)
	}
	if tr.Root().Span().To() != 4 {
		t.Errorf("Expected root to span up to 4, is %v", tr.Root().Span())
	}
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected mutation after Finalize to panic")
		}
	}()
	b.Decision(&debug.DecisionEvent{})
}

func TestBuilderKeepsEventsUnchanged(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	b := NewBuilder()
	cs := debug.NewCallStack()
	S := cs.Push("S", 0)
	b.EnterRule(S)
	A := cs.Push("A", 0)
	b.EnterRule(A)
	b.ExitRule(cs.Pop(3, false)) // abandoned after reading ahead
	b.ExitRule(cs.Pop(1, true))
	tr := b.Finalize(1)
	checkProperties(t, tr)
	if S.InputEnd != 1 || A.InputEnd != 3 {
		t.Errorf("Expected invocations to keep their ends, are %v and %v", S, A)
	}
	n, _ := tr.Node(1)
	if n.Rule == S || n.Rule.InputEnd != 3 || !n.Rule.Succeeded {
		t.Errorf("Expected node of S to cover A by a copy of its invocation, is %v", n)
	}
	if root := tr.Root(); root.Span().To() != 3 {
		t.Errorf("Expected root to span up to 3, is %v", root.Span())
	}
}

func TestBuilderMismatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	b := NewBuilder()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected exit without open rule to panic")
		}
	}()
	b.ExitRule(&debug.RuleInvocation{RuleName: "X", Closed: true})
}

type printer struct {
	b strings.Builder
}

func (p *printer) EnterRule(n *Node, level int) bool {
	p.b.WriteString(strings.Repeat(" ", level) + n.RuleName() + "\n")
	return n.RuleName() != "Term"
}

func (p *printer) ExitRule(n *Node, level int) {}

func (p *printer) Decision(n *Node, level int) {
	p.b.WriteString(strings.Repeat(" ", level) + "?\n")
}

func TestCursorAndSteps(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	grammar := `S = A A .
A = "x" | "x" "y" .`
	tr, err := trace(t, grammar, "x y x")
	if err != nil {
		t.Fatal(err)
	}
	c, _ := tr.Cursor(0)
	p := &printer{}
	c.Walk(p)
	t.Logf("\n%s", p.b.String())
	if p.b.String() != "<root>\n S\n  A\n   ?\n  A\n   ?\n" {
		t.Errorf("Expected walk to print the tree, is\n%s", p.b.String())
	}
	if c.Node().ID != 0 {
		t.Errorf("Expected cursor to be back at root after walk")
	}
	c.Down() // S
	c.Down() // A
	n, ok := c.Sibling()
	if !ok || n.RuleName() != "A" || n.Span().From() != 4 {
		t.Errorf("Expected cursor at second A, is %v", n)
	}
	if _, ok := c.Sibling(); ok {
		t.Errorf("Expected second A to be the last child of S")
	}
	//
	s := tr.Steps()
	step, ok := s.Forward()
	if !ok || step.Node.RuleName() != "S" || len(step.Stack) != 1 {
		t.Errorf("Expected first step to enter S, is %v", step.Node)
	}
	step, ok = s.NextFlagged(Ambiguous)
	if !ok || strings.Join(step.Stack, " ") != "S A" {
		t.Errorf("Expected first ambiguity within S A, stack is %v", step.Stack)
	}
	second, ok := s.NextFlagged(Ambiguous)
	if !ok || second.Node.ID <= step.Node.ID {
		t.Errorf("Expected second ambiguity after first one")
	}
	if _, ok := s.NextFlagged(Ambiguous); ok {
		t.Errorf("Expected 2 ambiguities only")
	}
	back, ok := s.PreviousFlagged(Ambiguous)
	if !ok || back.Node.ID != step.Node.ID {
		t.Errorf("Expected to step back to first ambiguity")
	}
	if _, err := s.GoTo(0); err != nil {
		t.Error(err)
	}
	if _, ok := s.Backward(); ok {
		t.Errorf("Expected no step before root")
	}
}

func TestExport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paredros.traversal")
	defer teardown()
	//
	tr, _ := trace(t, `A = "x" | "x" "y" .`, "xy")
	var buf bytes.Buffer
	if err := tr.WriteYAML(&buf); err != nil {
		t.Fatal(err)
	}
	t.Logf("\n%s", buf.String())
	var records []Record
	if err := yaml.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 || records[2].Kind != "decision" || *records[2].Chosen != 1 {
		t.Errorf("Expected root, rule and decision records, have %v", records)
	}
	if records[1].Succeeded == nil || records[1].Chosen != nil {
		t.Errorf("Expected rule record without decision fields")
	}
	buf.Reset()
	if err := tr.WriteDot(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "digraph") || !strings.Contains(buf.String(), "n1 -> n2;") {
		t.Errorf("Expected GraphViz output, is\n%s", buf.String())
	}
}
