package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/paredros/session"
	"github.com/npillmayer/paredros/traversal"
	"github.com/pterm/pterm"
)

// Intp is our command interpreter. It holds the result of a parse run and
// a stepper positioned within its traversal.
type Intp struct {
	result  *session.Result
	stepper *traversal.Stepper
	repl    *readline.Instance
}

// NewIntp creates an interpreter for the result of a parse run.
func NewIntp(result *session.Result) *Intp {
	return &Intp{
		result:  result,
		stepper: result.Traversal.Steps(),
	}
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.Execute(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	println("Good bye!")
}

type command func(intp *Intp, args []string) error

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":     (*Intp).help,
		"step":     (*Intp).step,
		"s":        (*Intp).step,
		"back":     (*Intp).back,
		"b":        (*Intp).back,
		"goto":     (*Intp).gotoNode,
		"next":     (*Intp).next,
		"prev":     (*Intp).prev,
		"where":    (*Intp).where,
		"node":     (*Intp).node,
		"children": (*Intp).children,
		"path":     (*Intp).path,
		"at":       (*Intp).at,
		"flagged":  (*Intp).flagged,
		"tree":     (*Intp).tree,
		"rule":     (*Intp).rule,
		"snippet":  (*Intp).snippet,
		"token":    (*Intp).token,
		"dump":     (*Intp).dump,
	}
}

// Execute interprets a command line. It returns true if the user wants to
// quit.
func (intp *Intp) Execute(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	if args[0] == "quit" || args[0] == "q" {
		return true, nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return false, fmt.Errorf("unknown command %q, try 'help'", args[0])
	}
	tracer().Debugf("command %s %v", args[0], args[1:])
	return false, cmd(intp, args[1:])
}

const usage = `step [n]                 step forward n nodes (default 1)
back [n]                 step backward n nodes
goto ID                  step to node ID
next|prev [FILTER]       step to next/previous flagged node
where                    show current step
node [ID]                show a node
children [ID]            list children of a node
path [ID]                list ancestors of a node
at OFFSET                list nodes covering an input offset
flagged [FILTER]         list flagged nodes
tree [ID]                display a sub-tree
rule [ID]                show grammar rule of a node
snippet [ID] [CONTEXT]   show input covered by a node
token INDEX              show an input token
dump yaml|dot FILE       export the traversal
quit                     leave pdb

FILTER is one of ambiguous, errors, both (default).`

func (intp *Intp) help(args []string) error {
	pterm.Println(usage)
	return nil
}

// --- Stepping --------------------------------------------------------------

func (intp *Intp) step(args []string) error {
	n, err := count(args)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, ok := intp.stepper.Forward(); !ok {
			pterm.Info.Println("end of traversal")
			break
		}
	}
	return intp.where(nil)
}

func (intp *Intp) back(args []string) error {
	n, err := count(args)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, ok := intp.stepper.Backward(); !ok {
			pterm.Info.Println("start of traversal")
			break
		}
	}
	return intp.where(nil)
}

func (intp *Intp) gotoNode(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: goto ID")
	}
	id, err := nodeID(args[0])
	if err != nil {
		return err
	}
	if _, err = intp.stepper.GoTo(id); err != nil {
		return err
	}
	return intp.where(nil)
}

func (intp *Intp) next(args []string) error {
	filter, err := flagFilter(args)
	if err != nil {
		return err
	}
	if _, ok := intp.stepper.NextFlagged(filter); !ok {
		pterm.Info.Println("no further flagged node")
	}
	return intp.where(nil)
}

func (intp *Intp) prev(args []string) error {
	filter, err := flagFilter(args)
	if err != nil {
		return err
	}
	if _, ok := intp.stepper.PreviousFlagged(filter); !ok {
		pterm.Info.Println("no preceding flagged node")
	}
	return intp.where(nil)
}

func (intp *Intp) where(args []string) error {
	step := intp.stepper.Current()
	pterm.Info.Println(step.Node.String())
	if len(step.Stack) > 0 {
		pterm.Println("  stack: " + strings.Join(step.Stack, " > "))
	}
	return nil
}

// --- Inspection ------------------------------------------------------------

func (intp *Intp) node(args []string) error {
	n, err := intp.nodeArg(args)
	if err != nil {
		return err
	}
	pterm.Println(n.String())
	if n.Kind != traversal.DecisionNode {
		return nil
	}
	d := n.Decision
	for i, alt := range d.Alternatives {
		mark := " "
		if i == d.Chosen {
			mark = "*"
		}
		viable := ""
		if !alt.Viable {
			viable = " (not viable)"
		}
		pterm.Println(fmt.Sprintf("  %s %d: %s%s", mark, i, alt.Description, viable))
	}
	pterm.Println(fmt.Sprintf("  lookahead %d: %s", d.LookaheadDepth, strings.Join(d.Lookahead, " ")))
	return nil
}

func (intp *Intp) children(args []string) error {
	n, err := intp.nodeArg(args)
	if err != nil {
		return err
	}
	ids, _ := intp.result.Traversal.Children(n.ID)
	return intp.list(ids)
}

func (intp *Intp) path(args []string) error {
	n, err := intp.nodeArg(args)
	if err != nil {
		return err
	}
	ids, _ := intp.result.Traversal.Path(n.ID)
	return intp.list(ids)
}

func (intp *Intp) at(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: at OFFSET")
	}
	offset, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("illegal offset %q", args[0])
	}
	ids, err := intp.result.Traversal.NodesAt(offset)
	if err != nil {
		return err
	}
	return intp.list(ids)
}

func (intp *Intp) flagged(args []string) error {
	filter, err := flagFilter(args)
	if err != nil {
		return err
	}
	return intp.list(intp.result.Traversal.FlaggedNodes(filter))
}

func (intp *Intp) rule(args []string) error {
	n, err := intp.nodeArg(args)
	if err != nil {
		return err
	}
	loc, err := intp.result.Location(n.ID)
	if err != nil {
		return err
	}
	pterm.Info.Println(fmt.Sprintf("rule %s, lines %d…%d", loc.Name, loc.StartLine, loc.EndLine))
	pterm.Println(loc.Content)
	return nil
}

func (intp *Intp) snippet(args []string) error {
	context := 20
	if len(args) == 2 {
		c, err := strconv.Atoi(args[1])
		if err != nil || c < 0 {
			return fmt.Errorf("illegal context %q", args[1])
		}
		context = c
		args = args[:1]
	}
	n, err := intp.nodeArg(args)
	if err != nil {
		return err
	}
	s, err := intp.result.Snippet(n.ID, context)
	if err != nil {
		return err
	}
	pterm.Println(s)
	return nil
}

func (intp *Intp) token(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: token INDEX")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("illegal token index %q", args[0])
	}
	tok, err := intp.result.TokenAt(index)
	if err != nil {
		return err
	}
	span := tok.Span()
	pterm.Println(fmt.Sprintf("%q at %d…%d", tok.Lexeme(), span.From(), span.To()))
	return nil
}

// --- Tree display ----------------------------------------------------------

func (intp *Intp) tree(args []string) error {
	n, err := intp.nodeArg(args)
	if err != nil {
		return err
	}
	c, _ := intp.result.Traversal.Cursor(n.ID)
	ll := &leveledList{}
	c.Walk(ll)
	root := pterm.NewTreeFromLeveledList(ll.items)
	pterm.DefaultTree.WithRoot(root).Render()
	return nil
}

// leveledList collects tree nodes for display with pterm.
type leveledList struct {
	items pterm.LeveledList
}

func (l *leveledList) EnterRule(n *traversal.Node, level int) bool {
	l.items = append(l.items, pterm.LeveledListItem{Level: level, Text: label(n)})
	return true
}

func (l *leveledList) ExitRule(n *traversal.Node, level int) {}

func (l *leveledList) Decision(n *traversal.Node, level int) {
	l.items = append(l.items, pterm.LeveledListItem{Level: level, Text: label(n)})
}

func label(n *traversal.Node) string {
	span := n.Span()
	switch n.Kind {
	case traversal.DecisionNode:
		d := n.Decision
		flags := ""
		if d.IsAmbiguous {
			flags += " ambiguous"
		}
		if d.IsErrorRecovery {
			flags += " error"
		}
		choice := "none"
		if alt, ok := d.ChosenAlternative(); ok {
			choice = alt.Description
		}
		return fmt.Sprintf("[%d] ? %s%s", n.ID, choice, flags)
	case traversal.RuleNode:
		if !n.Rule.Succeeded {
			return fmt.Sprintf("[%d] %s %d…%d failed", n.ID, n.RuleName(), span.From(), span.To())
		}
	}
	return fmt.Sprintf("[%d] %s %d…%d", n.ID, n.RuleName(), span.From(), span.To())
}

// --- Export ----------------------------------------------------------------

func (intp *Intp) dump(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: dump yaml|dot FILE")
	}
	var write func(io.Writer) error
	switch args[0] {
	case "yaml":
		write = intp.result.Traversal.WriteYAML
	case "dot":
		write = intp.result.Traversal.WriteDot
	default:
		return fmt.Errorf("unknown export format %q", args[0])
	}
	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer f.Close()
	if err = write(f); err != nil {
		return err
	}
	pterm.Info.Println("traversal written to " + args[1])
	return nil
}

// --- Helpers ---------------------------------------------------------------

func (intp *Intp) list(ids []traversal.NodeID) error {
	for _, id := range ids {
		n, err := intp.result.Traversal.Node(id)
		if err != nil {
			return err
		}
		pterm.Println(n.String())
	}
	return nil
}

// nodeArg returns the node given as the single argument, or the node of
// the current step.
func (intp *Intp) nodeArg(args []string) (*traversal.Node, error) {
	if len(args) == 0 {
		return intp.stepper.Current().Node, nil
	}
	id, err := nodeID(args[0])
	if err != nil {
		return nil, err
	}
	return intp.result.Traversal.Node(id)
}

func nodeID(arg string) (traversal.NodeID, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return traversal.None, fmt.Errorf("illegal node id %q", arg)
	}
	return traversal.NodeID(id), nil
}

func count(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("illegal count %q", args[0])
	}
	return n, nil
}

func flagFilter(args []string) (traversal.Filter, error) {
	if len(args) == 0 {
		return traversal.Both, nil
	}
	switch args[0] {
	case "ambiguous":
		return traversal.Ambiguous, nil
	case "errors":
		return traversal.ErrorRecovery, nil
	case "both":
		return traversal.Both, nil
	}
	return 0, fmt.Errorf("unknown filter %q", args[0])
}
