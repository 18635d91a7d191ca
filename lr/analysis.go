package lr

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/tools/container/intsets"
)

// LLAnalysis is an object for grammar analysis (compute FIRST and FOLLOW sets,
// find epsilon-derivable non-terminals and left recursion).
type LLAnalysis struct {
	g          *Grammar
	derivesEps map[*Symbol]bool
	firstSets  map[*Symbol]*intsets.Sparse
	followSets map[*Symbol]*intsets.Sparse
	leftRec    []*Symbol
}

// Analysis creates an analyser for a grammar. The analyser immediately
// starts its work and computes FIRST and FOLLOW.
func Analysis(g *Grammar) *LLAnalysis {
	ga := &LLAnalysis{
		g:          g,
		derivesEps: make(map[*Symbol]bool),
		firstSets:  make(map[*Symbol]*intsets.Sparse),
		followSets: make(map[*Symbol]*intsets.Sparse),
	}
	ga.analyse()
	return ga
}

// Grammar returns the grammar this analyser operates on.
func (ga *LLAnalysis) Grammar() *Grammar {
	return ga.g
}

// DerivesEpsilon returns true if there are rules in the grammar which let
// non-terminal A derive epsilon. Terminals never derive epsilon.
func (ga *LLAnalysis) DerivesEpsilon(A *Symbol) bool {
	return ga.derivesEps[A]
}

// First returns the FIRST set for a non-terminal. For terminals FIRST(a) = {a}.
// Returns a copy of the FIRST set.
func (ga *LLAnalysis) First(A *Symbol) *intsets.Sparse {
	set := &intsets.Sparse{}
	if A.IsTerminal() {
		set.Insert(A.Value)
		return set
	}
	if f := ga.firstSets[A]; f != nil {
		set.Copy(f)
	}
	return set
}

// Follow returns the FOLLOW set for a non-terminal.
// Returns a copy of the FOLLOW set.
func (ga *LLAnalysis) Follow(A *Symbol) *intsets.Sparse {
	set := &intsets.Sparse{}
	if f := ga.followSets[A]; f != nil {
		set.Copy(f)
	}
	return set
}

// FirstOfSequence computes FIRST for a sequence of symbols. The second return
// value is true if the complete sequence derives epsilon.
func (ga *LLAnalysis) FirstOfSequence(syms []*Symbol) (*intsets.Sparse, bool) {
	set := &intsets.Sparse{}
	for _, X := range syms {
		if X.IsTerminal() {
			set.Insert(X.Value)
			return set, false
		}
		if f := ga.firstSets[X]; f != nil {
			set.UnionWith(f)
		}
		if !ga.derivesEps[X] {
			return set, false
		}
	}
	return set, true
}

// LeftRecursive returns all non-terminals which are part of a left recursive
// derivation cycle, in order of appearance in the grammar.
func (ga *LLAnalysis) LeftRecursive() []*Symbol {
	return ga.leftRec
}

// Check returns an error if the grammar cannot be run by a top-down parser,
// i.e. if it contains left recursion.
func (ga *LLAnalysis) Check() error {
	if len(ga.leftRec) == 0 {
		return nil
	}
	names := make([]string, len(ga.leftRec))
	for i, A := range ga.leftRec {
		names[i] = A.Rule().Name
	}
	return fmt.Errorf("left recursion for non-terminals %s", strings.Join(unique(names), ", "))
}

// === Analysis ==============================================================

func (ga *LLAnalysis) analyse() {
	tracer().Debugf("=== analysing grammar %s ====================", ga.g.Name)
	ga.markEps()
	ga.computeFirst()
	ga.computeFollow()
	ga.findLeftRecursion()
	if tracer().GetTraceLevel() >= tracing.LevelDebug {
		for _, A := range ga.g.NonTerminals() {
			tracer().Debugf("FIRST(%s) = %v, FOLLOW(%s) = %v, ε=%v", A, ga.firstSets[A],
				A, ga.followSets[A], ga.derivesEps[A])
		}
	}
}

// Fixpoint iteration over all rules: a non-terminal derives epsilon if one of
// its rules has a RHS consisting of epsilon-deriving non-terminals only.
func (ga *LLAnalysis) markEps() {
	for changed := true; changed; {
		changed = false
		for _, r := range ga.g.rules {
			if ga.derivesEps[r.LHS] {
				continue
			}
			eps := true
			for _, X := range r.rhs {
				if X.IsTerminal() || !ga.derivesEps[X] {
					eps = false
					break
				}
			}
			if eps {
				ga.derivesEps[r.LHS] = true
				changed = true
			}
		}
	}
}

func (ga *LLAnalysis) computeFirst() {
	for _, r := range ga.g.rules {
		ga.firstSets[r.LHS] = &intsets.Sparse{}
	}
	for changed := true; changed; {
		changed = false
		for _, r := range ga.g.rules {
			f, _ := ga.FirstOfSequence(r.rhs)
			if ga.firstSets[r.LHS].UnionWith(f) {
				changed = true
			}
		}
	}
}

func (ga *LLAnalysis) computeFollow() {
	for _, r := range ga.g.rules {
		ga.followSets[r.LHS] = &intsets.Sparse{}
	}
	for changed := true; changed; {
		changed = false
		for _, r := range ga.g.rules {
			for i, B := range r.rhs {
				if B.IsTerminal() {
					continue
				}
				f, eps := ga.FirstOfSequence(r.rhs[i+1:])
				if ga.followSets[B].UnionWith(f) {
					changed = true
				}
				if eps && ga.followSets[B].UnionWith(ga.followSets[r.LHS]) {
					changed = true
				}
			}
		}
	}
}

// Left recursion exists if a non-terminal A may derive A β, where A is
// reached through a prefix of epsilon-deriving symbols. We construct the
// graph of left-corner edges and search it for cycles.
//
// The trailing self-reference of an auxiliary repetition (N ➞ X N) is not
// an edge: if X derives epsilon, the parser detects the loop at runtime
// as being stuck.
func (ga *LLAnalysis) findLeftRecursion() {
	corners := make(map[*Symbol][]*Symbol)
	for _, r := range ga.g.rules {
		for i, X := range r.rhs {
			if X.IsTerminal() || (X == r.LHS && X.IsAux() && i == len(r.rhs)-1) {
				break
			}
			corners[r.LHS] = append(corners[r.LHS], X)
			if !ga.derivesEps[X] {
				break
			}
		}
	}
	onCycle := make(map[*Symbol]bool)
	for _, A := range ga.g.NonTerminals() {
		if reaches(corners, A, A) {
			onCycle[A] = true
		}
	}
	for _, A := range ga.g.NonTerminals() {
		if onCycle[A] {
			tracer().Infof("non-terminal %s is left recursive", A.Name)
			ga.leftRec = append(ga.leftRec, A)
		}
	}
}

// reaches finds out if target is reachable from start through at least one edge.
func reaches(edges map[*Symbol][]*Symbol, start, target *Symbol) bool {
	seen := make(map[*Symbol]bool)
	stack := append([]*Symbol{}, edges[start]...)
	for len(stack) > 0 {
		X := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if X == target {
			return true
		}
		if seen[X] {
			continue
		}
		seen[X] = true
		stack = append(stack, edges[X]...)
	}
	return false
}

func unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
