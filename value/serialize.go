package value

import (
	"fmt"
	"strconv"
	"strings"
)

// formatTyped renders a value with its `(type)` prefix as spec.md §6's
// textual grammar requires for Structure serialization, e.g.
// "rate=(int)48000". Range/list/array container syntax is unprefixed by
// convention (the member kind is unambiguous from the bracket shape).
func formatTyped(v Value) string {
	switch v.Kind() {
	case KindIntRange, KindIntList, KindDoubleRange, KindDoubleList,
		KindFractionRange, KindList, KindArray, KindStruct:
		return v.String()
	default:
		alias := AliasForKind(v.Kind())
		if alias == "" {
			return v.String()
		}
		return fmt.Sprintf("(%s)%s", alias, v.String())
	}
}

// Serialize renders s using spec.md §6's textual grammar:
// "name, key=(type)value, key2=(type){v1,v2}, ...".
func Serialize(s *Structure) string { return s.String() }

// quoteString wraps a string in double quotes, escaping embedded quotes,
// backslashes and control bytes as \ooo octal escapes per spec.md §6.
func quoteString(s string) string {
	var b strings.Builder
	needsQuote := s == "" || strings.ContainsAny(s, " ,;()[]{}<>\"\\")
	if !needsQuote {
		return s
	}
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c >= 0x7f:
			b.WriteString(fmt.Sprintf("\\%03o", c))
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// unquoteString reverses quoteString: strips surrounding quotes and
// resolves \ooo octal escapes and \c single-char escapes.
func unquoteString(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s, nil
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(inner) {
			return "", fmt.Errorf("value: unterminated escape in %q", s)
		}
		if isOctal(inner[i]) && i+2 < len(inner) && isOctal(inner[i+1]) && isOctal(inner[i+2]) {
			n, err := strconv.ParseUint(inner[i:i+3], 8, 8)
			if err != nil {
				return "", err
			}
			b.WriteByte(byte(n))
			i += 2
			continue
		}
		b.WriteByte(inner[i])
	}
	return b.String(), nil
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }

// Parse parses the textual grammar from spec.md §6 back into a Structure.
// Parse(Serialize(s)) must equal s for any Structure s built from this
// package's registered kinds (spec.md §8).
func Parse(text string) (*Structure, error) {
	p := &parser{s: text}
	return p.parseStructure()
}

type parser struct {
	s   string
	pos int
}

func (p *parser) parseStructure() (*Structure, error) {
	name, err := p.readToken(",")
	if err != nil {
		return nil, err
	}
	st := NewStructure(strings.TrimSpace(name))
	for p.more() {
		p.skipComma()
		if !p.more() {
			break
		}
		key, err := p.readToken("=")
		if err != nil {
			return nil, err
		}
		if err := p.expect('='); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		st.Set(strings.TrimSpace(key), v)
	}
	return st, nil
}

func (p *parser) more() bool { return p.pos < len(p.s) }

func (p *parser) skipComma() {
	for p.more() && (p.s[p.pos] == ',' || p.s[p.pos] == ' ') {
		p.pos++
	}
}

func (p *parser) expect(c byte) error {
	if !p.more() || p.s[p.pos] != c {
		return fmt.Errorf("value: expected %q at position %d in %q", c, p.pos, p.s)
	}
	p.pos++
	return nil
}

// readToken reads up to (not including) the first unescaped byte in stop,
// respecting quoted strings and bracket nesting so embedded commas inside
// "..."/{...}/[...]/<...> do not terminate the token early.
func (p *parser) readToken(stop string) (string, error) {
	start := p.pos
	depth := 0
	inQuote := false
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '"' && (p.pos == start || p.s[p.pos-1] != '\\'):
			inQuote = !inQuote
		case inQuote:
			// consume quoted content verbatim
		case c == '(' || c == '[' || c == '{' || c == '<':
			depth++
		case c == ')' || c == ']' || c == '}' || c == '>':
			depth--
		case depth == 0 && strings.IndexByte(stop, c) >= 0:
			return p.s[start:p.pos], nil
		}
		p.pos++
	}
	return p.s[start:p.pos], nil
}

func (p *parser) parseValue() (Value, error) {
	var typeAlias string
	if p.more() && p.s[p.pos] == '(' {
		end := strings.IndexByte(p.s[p.pos:], ')')
		if end < 0 {
			return nil, fmt.Errorf("value: unterminated type tag at %d", p.pos)
		}
		typeAlias = p.s[p.pos+1 : p.pos+end]
		p.pos += end + 1
	}
	raw, err := p.readToken(",")
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	return parseRaw(typeAlias, raw)
}

func parseRaw(typeAlias, raw string) (Value, error) {
	switch {
	case strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
		return parseRange(typeAlias, raw[1:len(raw)-1])
	case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		return parseList(typeAlias, raw[1:len(raw)-1])
	case strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">"):
		return parseArray(raw[1 : len(raw)-1])
	default:
		return parseScalar(typeAlias, raw)
	}
}

func splitTopLevel(s string) []string {
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
		case depth == 0 && c == ',':
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if start < len(s) {
		parts = append(parts, strings.TrimSpace(s[start:]))
	}
	return parts
}

func parseScalar(typeAlias, raw string) (Value, error) {
	kind, hasAlias := KindFromAlias(typeAlias)
	if !hasAlias {
		// No explicit type: infer (bool, then int, then float, else string).
		if raw == "true" || raw == "false" {
			return Bool(raw == "true"), nil
		}
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Int(i), nil
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Double(f), nil
		}
		s, err := unquoteString(raw)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	}
	switch kind {
	case KindInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return Int(i), nil
	case KindDouble:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return Double(f), nil
	case KindBool:
		return Bool(raw == "true" || raw == "1"), nil
	case KindFourCC:
		if len(raw) != 4 {
			return nil, fmt.Errorf("value: fourcc %q must be 4 bytes", raw)
		}
		var v uint32
		for i := 0; i < 4; i++ {
			v |= uint32(raw[i]) << (8 * i)
		}
		return FourCC(v), nil
	case KindString:
		s, err := unquoteString(raw)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case KindFraction:
		n, d, err := parseFractionText(raw)
		if err != nil {
			return nil, err
		}
		return NewFraction(n, d), nil
	default:
		return nil, fmt.Errorf("value: unsupported scalar type alias %q", typeAlias)
	}
}

func parseFractionText(raw string) (int64, int64, error) {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("value: malformed fraction %q", raw)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	d, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return n, d, nil
}

func parseRange(typeAlias, inner string) (Value, error) {
	parts := splitTopLevel(inner)
	if len(parts) < 2 {
		return nil, fmt.Errorf("value: malformed range [%s]", inner)
	}
	kind, _ := KindFromAlias(typeAlias)
	if kind == KindFraction {
		nMin, dMin, err := parseFractionText(parts[0])
		if err != nil {
			return nil, err
		}
		nMax, dMax, err := parseFractionText(parts[1])
		if err != nil {
			return nil, err
		}
		return FractionRange{Min: NewFraction(nMin, dMin), Max: NewFraction(nMax, dMax)}, nil
	}
	if strings.Contains(parts[0], ".") || strings.Contains(parts[1], ".") {
		min, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, err
		}
		max, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, err
		}
		return DoubleRange{Min: min, Max: max}, nil
	}
	min, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, err
	}
	max, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, err
	}
	var step int64
	if len(parts) == 3 {
		step, err = strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, err
		}
	}
	return IntRange{Min: min, Max: max, Step: step}, nil
}

func parseList(typeAlias, inner string) (Value, error) {
	parts := splitTopLevel(inner)
	if len(parts) == 0 {
		return List{}, nil
	}
	if isAllIntLiterals(parts) && typeAlias == "" {
		out := make(IntList, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	out := make(List, len(parts))
	for i, p := range parts {
		v, err := parseRaw(typeAlias, p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func isAllIntLiterals(parts []string) bool {
	for _, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err != nil {
			return false
		}
	}
	return true
}

func parseArray(inner string) (Value, error) {
	parts := splitTopLevel(inner)
	out := make(Array, len(parts))
	for i, p := range parts {
		v, err := parseRaw("", p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
