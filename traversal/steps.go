package traversal

import (
	"sort"
)

// Step is a position in the temporal sequence of events of a parse, i.e. a
// node together with the rule call stack active at that point.
type Step struct {
	Node  *Node
	Stack []string
}

// Stepper moves through a traversal in temporal order, much like single
// stepping in a debugger. Every node other than the root is a step. A new
// Stepper is positioned at the root, before the first step.
//
// A Stepper is not safe for concurrent use, but any number of Steppers may
// operate on the same traversal.
type Stepper struct {
	t   *Traversal
	pos NodeID
}

// Steps creates a stepper for the traversal.
func (t *Traversal) Steps() *Stepper {
	return &Stepper{t: t}
}

// Current returns the current step.
func (s *Stepper) Current() Step {
	return s.step(s.pos)
}

// Forward moves to the next step. It returns false if there is none.
func (s *Stepper) Forward() (Step, bool) {
	if int(s.pos)+1 >= s.t.Size() {
		return s.Current(), false
	}
	s.pos++
	return s.Current(), true
}

// Backward moves to the previous step. It returns false if the stepper is
// positioned at the root.
func (s *Stepper) Backward() (Step, bool) {
	if s.pos == 0 {
		return s.Current(), false
	}
	s.pos--
	return s.Current(), true
}

// GoTo moves to the step of a given node.
func (s *Stepper) GoTo(id NodeID) (Step, error) {
	if _, err := s.t.Node(id); err != nil {
		return s.Current(), err
	}
	s.pos = id
	return s.Current(), nil
}

// NextFlagged moves to the next node after the current one which is selected
// by filter. It returns false if there is none.
func (s *Stepper) NextFlagged(filter Filter) (Step, bool) {
	ids := s.t.FlaggedNodes(filter)
	i := sort.Search(len(ids), func(i int) bool { return ids[i] > s.pos })
	if i == len(ids) {
		return s.Current(), false
	}
	s.pos = ids[i]
	return s.Current(), true
}

// PreviousFlagged moves to the last node before the current one which is
// selected by filter. It returns false if there is none.
func (s *Stepper) PreviousFlagged(filter Filter) (Step, bool) {
	ids := s.t.FlaggedNodes(filter)
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= s.pos })
	if i == 0 {
		return s.Current(), false
	}
	s.pos = ids[i-1]
	return s.Current(), true
}

func (s *Stepper) step(id NodeID) Step {
	stack, _ := s.t.RuleStack(id)
	return Step{Node: &s.t.nodes[id], Stack: stack}
}
