package caps

import (
	"strings"

	"github.com/flowgraph/core/value"
)

// Parse parses the textual grammar from spec.md §6: "ANY", "EMPTY", or one
// or more structure descriptions separated by "; ".
func Parse(text string) (*Caps, error) {
	text = strings.TrimSpace(text)
	switch text {
	case "ANY":
		return Any(), nil
	case "", "EMPTY":
		return New(), nil
	}
	out := New()
	for _, part := range splitStructures(text) {
		s, err := value.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out.AppendStructure(s)
	}
	return out, nil
}

// splitStructures splits on top-level "; " separators, respecting bracket
// and quote nesting the same way value.Parse's internal splitter does.
func splitStructures(s string) []string {
	var parts []string
	depth, start := 0, 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' && (i == 0 || s[i-1] != '\\'):
			inQuote = !inQuote
		case inQuote:
		case c == '(' || c == '[' || c == '{' || c == '<':
			depth++
		case c == ')' || c == ']' || c == '}' || c == '>':
			depth--
		case depth == 0 && c == ';':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
