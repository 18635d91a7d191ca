/*
Package traversal builds and queries the trace tree of a parse run.

A Builder consumes the ordered stream of rule invocations and decisions
emitted by a debug.Interceptor and assembles them into a tree: every rule
invocation becomes a node, nested below the invocation which called it;
every decision becomes a leaf below the rule invocation it occured in.
Rules abandoned by backtracking are part of the tree, marked as not
succeeded. Siblings are ordered by time of occurence.

Nodes are kept in an arena and addressed by NodeID. IDs are allocated in
temporal order, which for a tree built from a well-nested event stream is
identical to pre-order. Node 0 is a synthetic root spanning the whole input
reached by the parse; the invocation of the start rule is a child of it.

When the parse is done, Finalize closes rules left open, builds the lookup
indices and returns an immutable Traversal. A Traversal may be queried
concurrently by any number of readers:

    t.Node(id)             // node with a given ID
    t.Children(id)         // children in temporal order
    t.Parent(id)           // parent, None for the root
    t.NodesAt(offset)      // nodes covering an input offset
    t.FlaggedNodes(filter) // ambiguous decisions and/or error recoveries
    t.Path(id)             // IDs from root to a node

Input ranges of nodes are treated as closed intervals [start, end], with
offsets being byte offsets into the input. An empty rule invocation thus
still covers the offset it occured at.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package traversal

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paredros.traversal'.
func tracer() tracing.Trace {
	return tracing.Select("paredros.traversal")
}
