package lang

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/paredros/lr/scanner/lexmach"
	"golang.org/x/exp/ebnf"
)

// regexCompiler translates lexical productions into lexmachine patterns.
// References to other lexical productions are expanded in place.
type regexCompiler struct {
	grammar  ebnf.Grammar
	done     map[string]string
	visiting map[string]bool
}

func newRegexCompiler(grammar ebnf.Grammar) *regexCompiler {
	return &regexCompiler{
		grammar:  grammar,
		done:     make(map[string]string),
		visiting: make(map[string]bool),
	}
}

func (rc *regexCompiler) production(name string) (string, error) {
	if re, ok := rc.done[name]; ok {
		return re, nil
	}
	if rc.visiting[name] {
		return "", fmt.Errorf("lexical production %s is recursive", name)
	}
	p, ok := rc.grammar[name]
	if !ok {
		return "", fmt.Errorf("missing production %s", name)
	}
	if p.Expr == nil {
		return "", fmt.Errorf("lexical production %s is empty", name)
	}
	rc.visiting[name] = true
	defer delete(rc.visiting, name)
	var b strings.Builder
	if err := rc.expr(&b, p.Expr); err != nil {
		return "", err
	}
	rc.done[name] = b.String()
	return rc.done[name], nil
}

func (rc *regexCompiler) expr(b *strings.Builder, expr ebnf.Expression) error {
	switch x := expr.(type) {
	case ebnf.Alternative:
		b.WriteString("(")
		for i, e := range x {
			if i > 0 {
				b.WriteString("|")
			}
			if err := rc.expr(b, e); err != nil {
				return err
			}
		}
		b.WriteString(")")
	case ebnf.Sequence:
		for _, e := range x {
			if err := rc.expr(b, e); err != nil {
				return err
			}
		}
	case *ebnf.Name:
		re, err := rc.production(x.String)
		if err != nil {
			return err
		}
		b.WriteString("(" + re + ")")
	case *ebnf.Token:
		if x.String == "" {
			return errors.New("empty literal in lexical production")
		}
		b.WriteString(quote(x.String))
	case *ebnf.Range:
		b.WriteString("[" + quoteClassChar(x.Begin.String) + "-" + quoteClassChar(x.End.String) + "]")
	case *ebnf.Group:
		return rc.wrap(b, x.Body, ")")
	case *ebnf.Option:
		return rc.wrap(b, x.Body, ")?")
	case *ebnf.Repetition:
		return rc.wrap(b, x.Body, ")*")
	case *ebnf.Bad:
		return errors.New(x.Error)
	case nil:
		return errors.New("empty expression in lexical production")
	default:
		return fmt.Errorf("unexpected expression %T", x)
	}
	return nil
}

func (rc *regexCompiler) wrap(b *strings.Builder, body ebnf.Expression, closing string) error {
	b.WriteString("(")
	if err := rc.expr(b, body); err != nil {
		return err
	}
	b.WriteString(closing)
	return nil
}

// quote makes a literal a pattern matching itself. Control characters are
// written as escape sequences.
func quote(lit string) string {
	var b strings.Builder
	for _, r := range lit {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case ' ':
			b.WriteRune(r)
		default:
			b.WriteString(lexmach.QuoteLiteral(string(r)))
		}
	}
	return b.String()
}

func quoteClassChar(c string) string {
	switch c {
	case "\n", "\t", "\r":
		return quote(c)
	case "]", "[", "-", "^", "\\":
		return `\` + c
	}
	return c
}

// --- Printing ---------------------------------------------------------------

// Describe prints an EBNF expression. It is used for the display labels of
// auxiliary non-terminals.
func Describe(expr ebnf.Expression) string {
	var b strings.Builder
	describe(&b, expr)
	return b.String()
}

func describe(b *strings.Builder, expr ebnf.Expression) {
	switch x := expr.(type) {
	case ebnf.Alternative:
		for i, e := range x {
			if i > 0 {
				b.WriteString(" | ")
			}
			describe(b, e)
		}
	case ebnf.Sequence:
		for i, e := range x {
			if i > 0 {
				b.WriteString(" ")
			}
			describe(b, e)
		}
	case *ebnf.Name:
		b.WriteString(x.String)
	case *ebnf.Token:
		b.WriteString(strconv.Quote(x.String))
	case *ebnf.Range:
		b.WriteString(strconv.Quote(x.Begin.String) + " … " + strconv.Quote(x.End.String))
	case *ebnf.Group:
		b.WriteString("( ")
		describe(b, x.Body)
		b.WriteString(" )")
	case *ebnf.Option:
		b.WriteString("[ ")
		describe(b, x.Body)
		b.WriteString(" ]")
	case *ebnf.Repetition:
		b.WriteString("{ ")
		describe(b, x.Body)
		b.WriteString(" }")
	}
}
