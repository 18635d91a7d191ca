package lr

import (
	"fmt"
	"io"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/lr/sparse"
)

// === LL(1) Prediction Table ================================================

// Refer to "Crafting A Compiler" by Charles N. Fisher & Richard J. LeBlanc, Jr.
// Section 5.3 LL(1) Parse Tables

// LLTable is an LL(1) prediction table for a grammar. Rows are non-terminals,
// columns are terminals (token types). Every cell holds the serial number of
// the rule to predict. Cells holding two rules mark LL(1) conflicts; if more
// than two rules compete for a cell, only the first two are stored.
type LLTable struct {
	ga           *LLAnalysis
	table        *Table
	rows         map[*Symbol]int
	nonterms     []*Symbol
	HasConflicts bool
}

// BuildLLTable constructs the prediction table for an analysed grammar.
//
// For every rule A ➞ α we produce an entry in row A for each terminal
// in FIRST(α). If α derives epsilon, we produce an entry for each terminal
// in FOLLOW(A) as well.
func BuildLLTable(ga *LLAnalysis) *LLTable {
	g := ga.Grammar()
	lltab := &LLTable{ga: ga, rows: make(map[*Symbol]int)}
	lltab.nonterms = append(lltab.nonterms, g.Rule(0).LHS)
	lltab.nonterms = append(lltab.nonterms, g.NonTerminals()...)
	for i, A := range lltab.nonterms {
		lltab.rows[A] = i
	}
	var maxtok paredros.TokType
	var mintok paredros.TokType
	g.EachTerminal(func(A *Symbol) interface{} {
		if A.TokenType() > maxtok { // find minimum and maximum token value
			maxtok = A.TokenType()
		} else if A.TokenType() < mintok {
			mintok = A.TokenType()
		}
		return nil
	})
	extent := int(maxtok - mintok + 1)
	tracer().Infof("LL(1) table of size %d x (%d-%d=%d)", len(lltab.nonterms), maxtok, mintok, extent)
	lltab.table = &Table{
		matrix: sparse.NewIntMatrix(len(lltab.nonterms), extent, sparse.DefaultNullValue),
		mincol: mintok,
	}
	for i := 0; i < g.Size(); i++ {
		r := g.Rule(i)
		first, eps := ga.FirstOfSequence(r.rhs)
		lookaheads := first.AppendTo(nil)
		if eps {
			lookaheads = ga.Follow(r.LHS).AppendTo(lookaheads)
		}
		row := lltab.rows[r.LHS]
		for _, la := range lookaheads {
			lltab.addEntry(row, paredros.TokType(la), r)
		}
	}
	return lltab
}

func (lltab *LLTable) addEntry(row int, la paredros.TokType, r *Rule) {
	a1, a2 := lltab.table.Values(row, la)
	if a1 == int32(r.Serial) || a2 == int32(r.Serial) {
		return // FIRST and FOLLOW may overlap for the same rule
	}
	if a1 != lltab.table.NullValue() {
		tracer().Debugf("LL(1) conflict for %s on %d: rules %d and %d", r.LHS, la, a1, r.Serial)
		lltab.HasConflicts = true
	}
	lltab.table.add(row, la, int32(r.Serial))
}

// Predict returns the rules predicted for non-terminal A with lookahead la.
// It returns nil if no rule is predicted, one rule for unambiguous cells,
// and two rules for conflicting cells.
func (lltab *LLTable) Predict(A *Symbol, la paredros.TokType) []*Rule {
	row, ok := lltab.rows[A]
	if !ok || !lltab.table.inRange(la) {
		return nil
	}
	a1, a2 := lltab.table.Values(row, la)
	var rules []*Rule
	for _, a := range []int32{a1, a2} {
		if a != lltab.table.NullValue() {
			rules = append(rules, lltab.ga.Grammar().Rule(int(a)))
		}
	}
	return rules
}

// Conflict is a cell of a prediction table with more than one rule predicted.
type Conflict struct {
	NonTerminal *Symbol
	Lookahead   *Symbol
	Rules       [2]*Rule
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s on %s: %d/%d", c.NonTerminal, c.Lookahead, c.Rules[0].Serial, c.Rules[1].Serial)
}

// Conflicts returns all conflicting cells of the prediction table, ordered by
// non-terminal and token type.
func (lltab *LLTable) Conflicts() []Conflict {
	var conflicts []Conflict
	g := lltab.ga.Grammar()
	null := lltab.table.NullValue()
	lltab.table.matrix.Each(func(i, j int, a, b int32) {
		if b == null {
			return
		}
		conflicts = append(conflicts, Conflict{
			NonTerminal: lltab.nonterms[i],
			Lookahead:   g.Terminal(j + int(lltab.table.mincol)),
			Rules:       [2]*Rule{g.Rule(int(a)), g.Rule(int(b))},
		})
	})
	return conflicts
}

// TableAsHTML exports the prediction table in HTML-format.
func (lltab *LLTable) TableAsHTML(w io.Writer) {
	terminals := lltab.ga.Grammar().Terminals()
	table := lltab.table
	io.WriteString(w, "<html><body>\n")
	io.WriteString(w, fmt.Sprintf("LL(1) table for %s, entries = %d<p>",
		lltab.ga.Grammar().Name, table.matrix.ValueCount()))
	io.WriteString(w, "<table border=1 cellspacing=0 cellpadding=5>\n")
	io.WriteString(w, "<tr bgcolor=#cccccc><td></td>\n")
	for _, a := range terminals {
		io.WriteString(w, fmt.Sprintf("<td>%s</td>", a))
	}
	io.WriteString(w, "</tr>\n")
	var td string // table cell
	for _, A := range lltab.nonterms {
		io.WriteString(w, fmt.Sprintf("<tr><td>%s</td>\n", A.Name))
		for _, a := range terminals {
			v1, v2 := table.Values(lltab.rows[A], a.TokenType())
			if v1 == table.NullValue() {
				td = "&nbsp;"
			} else if v2 == table.NullValue() {
				td = fmt.Sprintf("%d", v1)
			} else {
				td = fmt.Sprintf("<b>%d/%d</b>", v1, v2)
			}
			io.WriteString(w, "<td>")
			io.WriteString(w, td)
			io.WriteString(w, "</td>\n")
		}
		io.WriteString(w, "</tr>\n")
	}
	io.WriteString(w, "</table></body></html>\n")
}

// --- Table -----------------------------------------------------------------

// Table is a sparse matrix with columns indexed by token type.
type Table struct {
	matrix *sparse.IntMatrix
	mincol paredros.TokType // lowest value for index j => offset for access
}

func (t *Table) inRange(tt paredros.TokType) bool {
	j := int(tt - t.mincol)
	return j >= 0 && j < t.matrix.N()
}

func (t *Table) add(i int, tt paredros.TokType, val int32) {
	j := tt - t.mincol
	if j < 0 {
		panic(fmt.Sprintf("lr.Table.add() with index < 0: %d", j))
	}
	t.matrix.Add(i, int(j), val)
}

// NullValue is the value of empty cells.
func (t *Table) NullValue() int32 {
	return t.matrix.NullValue()
}

// Value returns the primary value of a cell.
func (t *Table) Value(i int, tt paredros.TokType) int32 {
	if !t.inRange(tt) {
		return t.matrix.NullValue()
	}
	return t.matrix.Value(i, int(tt-t.mincol))
}

// Values returns both values of a cell.
func (t *Table) Values(i int, tt paredros.TokType) (int32, int32) {
	if !t.inRange(tt) {
		return t.matrix.NullValue(), t.matrix.NullValue()
	}
	return t.matrix.Values(i, int(tt-t.mincol))
}
