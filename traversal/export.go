package traversal

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/cnf/structhash"
	"gopkg.in/yaml.v3"
)

// Record is the exported form of a node, suitable for serialization.
// Fields specific to rule nodes or to decision nodes are nil for the other
// kind of node.
type Record struct {
	ID              int       `yaml:"id"`
	Kind            string    `yaml:"kind"`
	RuleName        string    `yaml:"ruleName"`
	InputStart      uint64    `yaml:"inputStart"`
	InputEnd        uint64    `yaml:"inputEnd"`
	Succeeded       *bool     `yaml:"succeeded,omitempty"`
	DecisionIndex   *int      `yaml:"decisionIndex,omitempty"`
	Alternatives    []AltInfo `yaml:"alternatives,omitempty"`
	Chosen          *int      `yaml:"chosen,omitempty"`
	IsAmbiguous     *bool     `yaml:"isAmbiguous,omitempty"`
	IsErrorRecovery *bool     `yaml:"isErrorRecovery,omitempty"`
	LookaheadDepth  *int      `yaml:"lookaheadDepth,omitempty"`
	Children        []int     `yaml:"children,flow"`
}

// AltInfo describes an alternative of a decision record.
type AltInfo struct {
	Description string `yaml:"description"`
}

// Records exports all nodes in temporal order. The root is exported as a
// rule record.
func (t *Traversal) Records() []Record {
	records := make([]Record, len(t.nodes))
	for i := range t.nodes {
		records[i] = t.record(&t.nodes[i])
	}
	return records
}

func (t *Traversal) record(n *Node) Record {
	span := n.Span()
	r := Record{
		ID:         int(n.ID),
		Kind:       n.Kind.String(),
		RuleName:   n.RuleName(),
		InputStart: span.From(),
		InputEnd:   span.To(),
		Children:   make([]int, len(n.Children)),
	}
	for i, ch := range n.Children {
		r.Children[i] = int(ch)
	}
	if n.Kind != DecisionNode {
		succeeded := n.Rule.Succeeded
		r.Succeeded = &succeeded
		return r
	}
	d := n.Decision
	index, chosen, depth := d.DecisionIndex, d.Chosen, d.LookaheadDepth
	ambiguous, recovery := d.IsAmbiguous, d.IsErrorRecovery
	r.DecisionIndex, r.Chosen, r.LookaheadDepth = &index, &chosen, &depth
	r.IsAmbiguous, r.IsErrorRecovery = &ambiguous, &recovery
	r.Alternatives = make([]AltInfo, len(d.Alternatives))
	for i, alt := range d.Alternatives {
		r.Alternatives[i] = AltInfo{Description: alt.Description}
	}
	return r
}

// WriteYAML writes all node records as a YAML sequence.
func (t *Traversal) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t.Records()); err != nil {
		return err
	}
	return enc.Close()
}

// WriteDot writes the traversal as a GraphViz digraph. Failed rules are
// drawn dashed, flagged decisions are filled.
func (t *Traversal) WriteDot(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("digraph traversal {\nnode [fontname=\"Helvetica\",fontsize=10];\n")
	for i := range t.nodes {
		n := &t.nodes[i]
		span := n.Span()
		switch n.Kind {
		case RootNode:
			fmt.Fprintf(bw, "n%d [label=\"%s\\n%d…%d\",shape=plaintext];\n", n.ID,
				dotEscape(RootName), span.From(), span.To())
		case RuleNode:
			style := "solid"
			if !n.Rule.Succeeded {
				style = "dashed"
			}
			fmt.Fprintf(bw, "n%d [label=\"%s\\n%d…%d\",shape=box,style=%s];\n", n.ID,
				dotEscape(n.Rule.RuleName), span.From(), span.To(), style)
		case DecisionNode:
			label := fmt.Sprintf("%d/%d", n.Decision.DecisionIndex, n.Decision.Chosen)
			if alt, ok := n.Decision.ChosenAlternative(); ok {
				label += "\\n" + dotEscape(alt.Description)
			}
			style, color := "solid", "black"
			if n.IsAmbiguous() {
				style, color = "filled", "gold"
			}
			if n.IsErrorRecovery() {
				style, color = "filled", "tomato"
			}
			fmt.Fprintf(bw, "n%d [label=\"%s\",shape=ellipse,style=%s,fillcolor=%s];\n",
				n.ID, label, style, color)
		}
		for _, ch := range n.Children {
			fmt.Fprintf(bw, "n%d -> n%d;\n", n.ID, ch)
		}
	}
	bw.WriteString("}\n")
	return bw.Flush()
}

func dotEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// Fingerprint returns a hash of the structure and content of the traversal.
// Two runs of the same grammar on the same input produce identical
// fingerprints.
func (t *Traversal) Fingerprint() string {
	h, err := structhash.Hash(t.Records(), 1)
	if err != nil { // structhash reports errors for malformed tags only
		panic(fmt.Sprintf("traversal.Fingerprint: %v", err))
	}
	return h
}

// Equal compares two traversals structurally: same tree shape, node kinds,
// rule names, input ranges, choices and flags.
func (t *Traversal) Equal(other *Traversal) bool {
	if other == nil || t.Size() != other.Size() {
		return false
	}
	return reflect.DeepEqual(t.Records(), other.Records())
}
