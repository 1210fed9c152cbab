package javasrc

import (
	"regexp"
	"strings"
)

var stringLiteral = regexp.MustCompile(`^"((?:[^"\\\n]|\\.)*)"$`)

// Unquote decodes a single Java string literal. ok is false when expr is
// anything other than exactly one literal, such as a concatenation or a variable.
func Unquote(expr string) (string, bool) {
	m := stringLiteral.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return "", false
	}
	return unescape(m[1]), true
}

// SplitArgs splits a call's argument list on its top-level commas. Commas inside
// literals, comments and nested brackets do not split. Arguments come back trimmed.
func SplitArgs(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	l := Classify(list)
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(list); i++ {
		if !l.IsCode(i) {
			continue
		}
		switch list[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(list[start:]))
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '0':
			b.WriteByte(0)
		default:
			// \" \' \\ and anything unknown keep the escaped byte.
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
