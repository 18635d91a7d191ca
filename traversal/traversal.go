package traversal

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/paredros"
)

// Traversal is the finished trace tree of a parse run. It is immutable and
// safe for concurrent readers.
type Traversal struct {
	nodes      []Node
	offsets    *treemap.Map // segment start ➞ *segment
	ambiguous  []NodeID
	recoveries []NodeID
	flagged    []NodeID
}

// segment is an elementary interval [start, end) of input offsets, all of
// which are covered by the same set of nodes.
type segment struct {
	end uint64
	ids []NodeID
}

func newTraversal(nodes []Node) *Traversal {
	t := &Traversal{nodes: nodes}
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.IsAmbiguous() {
			t.ambiguous = append(t.ambiguous, n.ID)
		}
		if n.IsErrorRecovery() {
			t.recoveries = append(t.recoveries, n.ID)
		}
		if n.IsAmbiguous() || n.IsErrorRecovery() {
			t.flagged = append(t.flagged, n.ID)
		}
	}
	t.indexOffsets()
	return t
}

// indexOffsets splits the input into elementary intervals by sweeping over
// the start and end points of all nodes. Node ranges are closed, thus a node
// [s, e] opens a segment at s and leaves the segments from e+1 on.
func (t *Traversal) indexOffsets() {
	type bounds struct {
		starting, ending []NodeID
	}
	points := treemap.NewWithIntComparator()
	at := func(offset uint64) *bounds {
		if b, found := points.Get(int(offset)); found {
			return b.(*bounds)
		}
		b := &bounds{}
		points.Put(int(offset), b)
		return b
	}
	for i := range t.nodes {
		span := t.nodes[i].Span()
		at(span.From()).starting = append(at(span.From()).starting, t.nodes[i].ID)
		at(span.To()+1).ending = append(at(span.To()+1).ending, t.nodes[i].ID)
	}
	t.offsets = treemap.NewWithIntComparator()
	active := treeset.NewWithIntComparator()
	keys := points.Keys()
	for i, k := range keys {
		b, _ := points.Get(k)
		for _, id := range b.(*bounds).ending {
			active.Remove(int(id))
		}
		for _, id := range b.(*bounds).starting {
			active.Add(int(id))
		}
		if i+1 == len(keys) || active.Empty() {
			continue
		}
		seg := &segment{end: uint64(keys[i+1].(int))}
		for _, id := range active.Values() {
			seg.ids = append(seg.ids, NodeID(id.(int)))
		}
		t.offsets.Put(k, seg)
	}
	tracer().Debugf("offset index holds %d segments", t.offsets.Size())
}

// Size returns the number of nodes, including the root.
func (t *Traversal) Size() int {
	return len(t.nodes)
}

// Root returns the root node.
func (t *Traversal) Root() *Node {
	return &t.nodes[0]
}

// Node returns the node with a given ID.
func (t *Traversal) Node(id NodeID) (*Node, error) {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil, &paredros.LookupError{Kind: "id", Key: id}
	}
	return &t.nodes[id], nil
}

// Children returns the IDs of the children of a node, in temporal order.
func (t *Traversal) Children(id NodeID) ([]NodeID, error) {
	n, err := t.Node(id)
	if err != nil {
		return nil, err
	}
	return append([]NodeID(nil), n.Children...), nil
}

// Parent returns the ID of the parent of a node, or None for the root.
func (t *Traversal) Parent(id NodeID) (NodeID, error) {
	n, err := t.Node(id)
	if err != nil {
		return None, err
	}
	return n.Parent, nil
}

// NodesAt returns the IDs of all nodes covering an input offset, in
// temporal order. Every offset of the input reached by the parse is at least
// covered by the root. Offsets beyond are reported as a LookupError.
func (t *Traversal) NodesAt(offset uint64) ([]NodeID, error) {
	if offset > t.Root().Span().To() {
		return nil, &paredros.LookupError{Kind: "offset", Key: offset}
	}
	k, v := t.offsets.Floor(int(offset))
	if k == nil {
		return nil, &paredros.LookupError{Kind: "offset", Key: offset}
	}
	seg := v.(*segment)
	if offset >= seg.end {
		return []NodeID{}, nil
	}
	return append([]NodeID(nil), seg.ids...), nil
}

// Filter selects flagged nodes.
type Filter int

// Filters for FlaggedNodes. Both selects nodes carrying either of the flags.
const (
	Ambiguous Filter = 1 << iota
	ErrorRecovery
	Both = Ambiguous | ErrorRecovery
)

// FlaggedNodes returns the IDs of ambiguous decisions, error recoveries, or
// both, in temporal order.
func (t *Traversal) FlaggedNodes(filter Filter) []NodeID {
	var ids []NodeID
	switch filter {
	case Ambiguous:
		ids = t.ambiguous
	case ErrorRecovery:
		ids = t.recoveries
	case Both:
		ids = t.flagged
	}
	return append([]NodeID{}, ids...)
}

// Path returns the IDs of all ancestors of a node, starting at the root, and
// including the node itself.
func (t *Traversal) Path(id NodeID) ([]NodeID, error) {
	if _, err := t.Node(id); err != nil {
		return nil, err
	}
	depth := 0
	for p := id; p != None; p = t.nodes[p].Parent {
		depth++
	}
	path := make([]NodeID, depth)
	for p := id; p != None; p = t.nodes[p].Parent {
		depth--
		path[depth] = p
	}
	return path, nil
}

// RuleStack returns the names of the rules invoked on the path to a node,
// outermost first. For a rule node, its own rule is the last entry.
func (t *Traversal) RuleStack(id NodeID) ([]string, error) {
	path, err := t.Path(id)
	if err != nil {
		return nil, err
	}
	var stack []string
	for _, p := range path {
		if n := &t.nodes[p]; n.Kind == RuleNode {
			stack = append(stack, n.Rule.RuleName)
		}
	}
	return stack, nil
}

// Each calls f for every node in temporal order.
func (t *Traversal) Each(f func(n *Node)) {
	for i := range t.nodes {
		f(&t.nodes[i])
	}
}
