package session

import (
	"strings"

	"github.com/npillmayer/paredros"
	"github.com/npillmayer/paredros/lang"
	"github.com/npillmayer/paredros/lr/ll"
	"github.com/npillmayer/paredros/traversal"
)

// Result is the outcome of a parse run.
type Result struct {
	Traversal    *traversal.Traversal
	SyntaxErrors []*ll.SyntaxError // errors the parser recovered from
	LexErrors    []error           // errors reported by the tokenizer
	Accepted     bool              // input parsed without any error
	Tokens       []paredros.Token  // tokens read by the parser, EOF included
	lang         *lang.Language
	input        string
}

// TokenAt returns the token with a given index.
func (r *Result) TokenAt(index int) (paredros.Token, error) {
	if index < 0 || index >= len(r.Tokens) {
		return nil, &paredros.LookupError{Kind: "token", Key: index}
	}
	return r.Tokens[index], nil
}

// Location returns the location of the grammar rule of a node within the
// grammar text.
func (r *Result) Location(id traversal.NodeID) (lang.RuleLocation, error) {
	n, err := r.Traversal.Node(id)
	if err != nil {
		return lang.RuleLocation{}, err
	}
	loc, ok := r.lang.Location(n.RuleName())
	if !ok {
		return lang.RuleLocation{}, &paredros.LookupError{Kind: "rule", Key: n.RuleName()}
	}
	return loc, nil
}

// Snippet returns the input covered by a node, together with up to context
// bytes of input before and after it. The covered part is enclosed in
// guillemets.
func (r *Result) Snippet(id traversal.NodeID, context int) (string, error) {
	n, err := r.Traversal.Node(id)
	if err != nil {
		return "", err
	}
	start, end := clamp(n.Span().From(), len(r.input)), clamp(n.Span().To(), len(r.input))
	before, after := start-context, end+context
	if before < 0 {
		before = 0
	}
	if after > len(r.input) {
		after = len(r.input)
	}
	var b strings.Builder
	b.WriteString(r.input[before:start])
	b.WriteString("»")
	b.WriteString(r.input[start:end])
	b.WriteString("«")
	b.WriteString(r.input[end:after])
	return b.String(), nil
}

func clamp(offset uint64, limit int) int {
	if offset > uint64(limit) {
		return limit
	}
	return int(offset)
}
