package lang

import (
	"strings"

	"golang.org/x/exp/ebnf"
)

// locate finds every production of a grammar within the grammar text.
func locate(source string, grammar ebnf.Grammar) map[string]RuleLocation {
	locs := make(map[string]RuleLocation, len(grammar))
	for name, p := range grammar {
		pos := p.Pos()
		end := productionEnd(source, pos.Offset)
		locs[name] = RuleLocation{
			Name:      name,
			Content:   source[pos.Offset:end],
			StartLine: pos.Line,
			EndLine:   pos.Line + strings.Count(source[pos.Offset:end], "\n"),
			StartPos:  pos.Offset,
			EndPos:    end,
		}
	}
	return locs
}

// productionEnd returns the offset just behind the period terminating the
// production starting at offset from. Periods inside of literals and
// comments are ignored.
func productionEnd(src string, from int) int {
	for i := from; i < len(src); i++ {
		switch src[i] {
		case '.':
			return i + 1
		case '"':
			i = skipQuoted(src, i, '"')
		case '`':
			i = skipQuoted(src, i, '`')
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
					i += j
				} else {
					i = len(src)
				}
			} else if i+1 < len(src) && src[i+1] == '*' {
				if j := strings.Index(src[i+2:], "*/"); j >= 0 {
					i += j + 3
				} else {
					i = len(src)
				}
			}
		}
	}
	return len(src)
}

// skipQuoted returns the offset of the closing quote for a literal
// starting at offset i.
func skipQuoted(src string, i int, q byte) int {
	for j := i + 1; j < len(src); j++ {
		if src[j] == '\\' && q == '"' {
			j++
		} else if src[j] == q {
			return j
		}
	}
	return len(src)
}
