package debug

import "fmt"

// CallStack mirrors the rule invocation stack of a parser. Invocation IDs
// are allocated in order of rule entry, starting at 0.
//
// A CallStack is not safe for concurrent use.
type CallStack struct {
	open []*RuleInvocation
	next int
}

// NewCallStack creates an empty call stack.
func NewCallStack() *CallStack {
	return &CallStack{open: make([]*RuleInvocation, 0, 64)}
}

// Push opens a new invocation of a rule. Its parent is the invocation
// currently on top of the stack, or NoInvocation for an empty stack.
func (cs *CallStack) Push(name string, start uint64) *RuleInvocation {
	parent := NoInvocation
	if top := cs.Top(); top != nil {
		parent = top.InvocationID
	}
	inv := &RuleInvocation{
		RuleName:           name,
		InvocationID:       cs.next,
		InputStart:         start,
		InputEnd:           start,
		ParentInvocationID: parent,
	}
	cs.next++
	cs.open = append(cs.open, inv)
	return inv
}

// Pop closes the invocation on top of the stack. An end offset before the
// start of the invocation is clamped to the start.
//
// Pop panics if the stack is empty.
func (cs *CallStack) Pop(end uint64, ok bool) *RuleInvocation {
	if len(cs.open) == 0 {
		panic(fmt.Sprintf("debug.CallStack: pop on empty call stack (end=%d)", end))
	}
	inv := cs.open[len(cs.open)-1]
	cs.open = cs.open[:len(cs.open)-1]
	if end < inv.InputStart {
		end = inv.InputStart
	}
	inv.InputEnd = end
	inv.Succeeded = ok
	inv.Closed = true
	return inv
}

// Top returns the innermost open invocation, or nil.
func (cs *CallStack) Top() *RuleInvocation {
	if len(cs.open) == 0 {
		return nil
	}
	return cs.open[len(cs.open)-1]
}

// Depth returns the number of open invocations.
func (cs *CallStack) Depth() int {
	return len(cs.open)
}

// Names returns the rule names of all open invocations, outermost first.
func (cs *CallStack) Names() []string {
	names := make([]string, len(cs.open))
	for i, inv := range cs.open {
		names[i] = inv.RuleName
	}
	return names
}

// Unwind closes all open invocations, innermost first, as failed at
// offset end. It returns the closed invocations in the order they have been
// closed.
func (cs *CallStack) Unwind(end uint64) []*RuleInvocation {
	closed := make([]*RuleInvocation, 0, len(cs.open))
	for len(cs.open) > 0 {
		closed = append(closed, cs.Pop(end, false))
	}
	return closed
}
