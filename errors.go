package paredros

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is the error wrapped by every LookupError.
var ErrNotFound = errors.New("not found")

// GrammarError is reported if a grammar cannot be loaded or compiled. A parse
// will never be attempted for a grammar in error.
type GrammarError struct {
	Grammar string // name of the grammar
	Pos     string // position within the grammar description, if known
	Err     error  // underlying error
}

func (e *GrammarError) Error() string {
	if e.Pos != "" {
		return fmt.Sprintf("grammar %s: %s: %v", e.Grammar, e.Pos, e.Err)
	}
	return fmt.Sprintf("grammar %s: %v", e.Grammar, e.Err)
}

func (e *GrammarError) Unwrap() error {
	return e.Err
}

// ParseError describes an irrecoverable failure of a parse run. Partial
// traces are returned alongside of it.
type ParseError struct {
	Offset   uint64   // input offset where matching failed
	Token    string   // lexeme of the offending token
	Rule     string   // rule active at the point of failure
	Expected []string // names of tokens which would have been acceptable
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse error at offset %d: unexpected ", e.Offset)
	if e.Token == "" {
		b.WriteString("end of input")
	} else {
		fmt.Fprintf(&b, "'%s'", e.Token)
	}
	if e.Rule != "" {
		fmt.Fprintf(&b, " in rule %s", e.Rule)
	}
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, ", expected one of %s", strings.Join(e.Expected, " "))
	}
	return b.String()
}

// LookupError is reported for queries using an id, input offset, token index
// or rule name which does not exist.
type LookupError struct {
	Kind string      // "id", "offset", "token" or "rule"
	Key  interface{} // the key looked up
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Kind, e.Key, ErrNotFound)
}

func (e *LookupError) Unwrap() error {
	return ErrNotFound
}
