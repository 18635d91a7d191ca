package traversal

import (
	"sort"
)

// A Cursor is a movable mark within a traversal, intended for navigating the
// tree of nodes.
type Cursor struct {
	t       *Traversal
	current NodeID
}

// Cursor sets up a cursor at a given node.
func (t *Traversal) Cursor(id NodeID) (*Cursor, error) {
	if _, err := t.Node(id); err != nil {
		return nil, err
	}
	return &Cursor{t: t, current: id}, nil
}

// Node returns the node the cursor is positioned at.
func (c *Cursor) Node() *Node {
	return &c.t.nodes[c.current]
}

// Up moves the cursor up to the parent node of the current node, if any.
func (c *Cursor) Up() (*Node, bool) {
	if parent := c.Node().Parent; parent != None {
		c.current = parent
		return c.Node(), true
	}
	return c.Node(), false
}

// Down moves the cursor down to the first child of the current node, if any.
func (c *Cursor) Down() (*Node, bool) {
	if children := c.Node().Children; len(children) > 0 {
		c.current = children[0]
		return c.Node(), true
	}
	return c.Node(), false
}

// Sibling moves the cursor to the next sibling of the current node, if any.
func (c *Cursor) Sibling() (*Node, bool) {
	parent := c.Node().Parent
	if parent == None {
		return c.Node(), false
	}
	siblings := c.t.nodes[parent].Children
	i := sort.Search(len(siblings), func(i int) bool { return siblings[i] > c.current })
	if i == len(siblings) {
		return c.Node(), false
	}
	c.current = siblings[i]
	return c.Node(), true
}

// --- Walking ---------------------------------------------------------------

// Listener is a type for walking a traversal.
//
// EnterRule is called for rule nodes and the root, and returns a boolean
// value indicating if the walk should continue to the children of this
// node. ExitRule is called after all children have been visited (or
// skipped). Decision is called for every decision node.
type Listener interface {
	EnterRule(n *Node, level int) bool
	ExitRule(n *Node, level int)
	Decision(n *Node, level int)
}

// Walk traverses the sub-tree below the cursor's node top-down, calling
// listener methods for all nodes encountered. The cursor is positioned at
// its original node afterwards.
func (c *Cursor) Walk(listener Listener) {
	start := c.current
	c.walk(listener, 0)
	c.current = start
}

func (c *Cursor) walk(listener Listener, level int) {
	n := c.Node()
	if n.Kind == DecisionNode {
		listener.Decision(n, level)
		return
	}
	if listener.EnterRule(n, level) {
		if _, ok := c.Down(); ok {
			for ; ok; _, ok = c.Sibling() {
				c.walk(listener, level+1)
			}
			c.Up()
		}
	}
	listener.ExitRule(n, level)
}
