package traversal

import (
	"fmt"

	"github.com/npillmayer/paredros/debug"
)

// Builder assembles a traversal from the events of a parse. It implements
// debug.EventSink.
//
// Nodes hold copies of the rule invocations received, so the builder never
// modifies invocations other sinks may share.
//
// A Builder is not safe for concurrent use. Once Finalize has been called,
// any further event panics.
type Builder struct {
	nodes []Node
	open  []openRule // innermost last
	final bool
}

type openRule struct {
	id  NodeID
	src *debug.RuleInvocation // invocation as received with EnterRule
}

var _ debug.EventSink = &Builder{}

// NewBuilder creates a builder holding nothing but the root node.
func NewBuilder() *Builder {
	b := &Builder{
		nodes: make([]Node, 0, 256),
		open:  make([]openRule, 0, 64),
	}
	b.nodes = append(b.nodes, Node{
		ID:     0,
		Kind:   RootNode,
		Parent: None,
		Rule: &debug.RuleInvocation{
			RuleName:           RootName,
			InvocationID:       debug.NoInvocation,
			ParentInvocationID: debug.NoInvocation,
		},
	})
	return b
}

// EnterRule is part of interface debug.EventSink.
func (b *Builder) EnterRule(inv *debug.RuleInvocation) {
	b.checkMutable("EnterRule")
	own := *inv
	id := b.add(Node{Kind: RuleNode, Rule: &own})
	b.open = append(b.open, openRule{id: id, src: inv})
}

// ExitRule is part of interface debug.EventSink. It panics if inv is not the
// innermost open invocation.
func (b *Builder) ExitRule(inv *debug.RuleInvocation) {
	b.checkMutable("ExitRule")
	if len(b.open) == 0 {
		panic(fmt.Sprintf("traversal.Builder: exit of %v without open rule", inv))
	}
	top := b.open[len(b.open)-1]
	if top.src != inv {
		panic(fmt.Sprintf("traversal.Builder: exit of %v does not match open rule %v",
			inv, top.src))
	}
	b.open = b.open[:len(b.open)-1]
	own := b.nodes[top.id].Rule
	own.InputEnd, own.Succeeded, own.Closed = inv.InputEnd, inv.Succeeded, inv.Closed
	b.close(top.id)
}

// Decision is part of interface debug.EventSink.
func (b *Builder) Decision(e *debug.DecisionEvent) {
	b.checkMutable("Decision")
	b.add(Node{Kind: DecisionNode, Decision: e})
}

// Size returns the number of nodes built so far, including the root.
func (b *Builder) Size() int {
	return len(b.nodes)
}

// Finalize ends construction and returns the finished traversal. Rules
// still open are closed as failed with their end set to offset furthest.
// The root will span the input from 0 up to the furthest offset reached
// by any node, lookahead of decisions included.
func (b *Builder) Finalize(furthest uint64) *Traversal {
	b.checkMutable("Finalize")
	for len(b.open) > 0 {
		id := b.open[len(b.open)-1].id
		b.open = b.open[:len(b.open)-1]
		if inv := b.nodes[id].Rule; !inv.Closed {
			tracer().Infof("force-closing %s", inv)
			inv.InputEnd = furthest
			if inv.InputEnd < inv.InputStart {
				inv.InputEnd = inv.InputStart
			}
			inv.Succeeded = false
			inv.Closed = true
		}
		b.close(id)
	}
	root := b.nodes[0].Rule
	root.InputEnd = furthest
	for i := 1; i < len(b.nodes); i++ {
		if end := b.nodes[i].Span().To(); end > root.InputEnd {
			root.InputEnd = end
		}
	}
	for _, ch := range b.nodes[0].Children {
		if n := &b.nodes[ch]; n.Kind == RuleNode {
			root.Succeeded = n.Rule.Succeeded
		}
	}
	root.Closed = true
	b.final = true
	tracer().Debugf("traversal finalized with %d nodes", len(b.nodes))
	return newTraversal(b.nodes)
}

// add appends a node as the last child of the innermost open rule, or of
// the root.
func (b *Builder) add(n Node) NodeID {
	parent := NodeID(0)
	if len(b.open) > 0 {
		parent = b.open[len(b.open)-1].id
	}
	n.ID = NodeID(len(b.nodes))
	n.Parent = parent
	b.nodes = append(b.nodes, n)
	b.nodes[parent].Children = append(b.nodes[parent].Children, n.ID)
	return n.ID
}

// close raises the end of a rule's input range to cover the ranges of all
// its child invocations. Children may have consumed more input than their
// parent if they have been abandoned by backtracking.
func (b *Builder) close(id NodeID) {
	inv := b.nodes[id].Rule
	for _, ch := range b.nodes[id].Children {
		if child := b.nodes[ch]; child.Kind == RuleNode && child.Rule.InputEnd > inv.InputEnd {
			inv.InputEnd = child.Rule.InputEnd
		}
	}
}

func (b *Builder) checkMutable(op string) {
	if b.final {
		panic(fmt.Sprintf("traversal.Builder: %s called after Finalize", op))
	}
}
