package traversal

import (
	"fmt"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/debug"
)

// NodeID addresses a node of a traversal.
type NodeID int

// None is the parent of the root node.
const None NodeID = -1

// RootName is the rule name of the root node. Decisions attached to the
// root carry the same rule name.
const RootName = debug.OutsideRules

// Kind is the type of a node.
type Kind int

// Kinds of nodes.
const (
	RootNode Kind = iota
	RuleNode
	DecisionNode
)

func (k Kind) String() string {
	switch k {
	case RootNode:
		return "root"
	case RuleNode:
		return "rule"
	}
	return "decision"
}

// Node is a node of a traversal. Rule nodes (and the root node) carry a
// rule invocation, decision nodes carry a decision event.
//
// Nodes handed out by a Traversal must be treated as read-only.
type Node struct {
	ID       NodeID
	Kind     Kind
	Parent   NodeID
	Children []NodeID
	Rule     *debug.RuleInvocation
	Decision *debug.DecisionEvent
}

// RuleName returns the name of the rule the node belongs to.
func (n *Node) RuleName() string {
	if n.Kind == DecisionNode {
		return n.Decision.RuleName
	}
	return n.Rule.RuleName
}

// Span returns the input range of the node, which has to be read as the
// closed interval [From(), To()].
func (n *Node) Span() paredros.Span {
	if n.Kind == DecisionNode {
		return paredros.Span{n.Decision.InputStart, n.Decision.InputEnd}
	}
	return paredros.Span{n.Rule.InputStart, n.Rule.InputEnd}
}

// Covers is true if offset lies within the closed input range of the node.
func (n *Node) Covers(offset uint64) bool {
	span := n.Span()
	return span.From() <= offset && offset <= span.To()
}

// IsAmbiguous is true for ambiguous decisions.
func (n *Node) IsAmbiguous() bool {
	return n.Kind == DecisionNode && n.Decision.IsAmbiguous
}

// IsErrorRecovery is true for decisions recording a syntax error.
func (n *Node) IsErrorRecovery() bool {
	return n.Kind == DecisionNode && n.Decision.IsErrorRecovery
}

func (n *Node) String() string {
	span := n.Span()
	switch n.Kind {
	case DecisionNode:
		return fmt.Sprintf("[%d] %s", n.ID, n.Decision)
	case RuleNode:
		state := "failed"
		if n.Rule.Succeeded {
			state = "ok"
		}
		return fmt.Sprintf("[%d] rule %s (%d…%d) %s", n.ID, n.Rule.RuleName,
			span.From(), span.To(), state)
	}
	return fmt.Sprintf("[%d] %s (%d…%d)", n.ID, RootName, span.From(), span.To())
}
