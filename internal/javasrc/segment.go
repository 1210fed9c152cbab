package javasrc

import (
	"regexp"
	"strconv"
)

// testMarker matches the annotations that introduce a test method.
// The word boundary keeps @TestFactory and @TestInstance out.
var testMarker = regexp.MustCompile(`@(?:Test|ParameterizedTest|RepeatedTest)\b`)

// Method is one segmented test method.
type Method struct {
	Name string
	// Body runs from the opening brace to the matching closing brace, inclusive.
	Body string
	// Marker is the offset of the test annotation.
	Marker int
	// Start and End delimit Body within the source, End exclusive.
	Start int
	End   int
	// Complete is false when the closing brace was never found.
	Complete bool
}

// Segment extracts every test method from src in source order.
func Segment(src string) []Method {
	return SegmentLayout(Classify(src))
}

// SegmentLayout is Segment over an already classified source.
func SegmentLayout(l *Layout) []Method {
	code := l.CodeOnly()
	var methods []Method
	lastEnd := 0
	for _, loc := range testMarker.FindAllStringIndex(code, -1) {
		if loc[0] < lastEnd {
			continue
		}
		m, ok := l.methodAt(loc[0], loc[1])
		if !ok {
			continue
		}
		if m.Name == "" {
			m.Name = "method" + strconv.Itoa(len(methods)+1)
		}
		methods = append(methods, m)
		lastEnd = m.End
	}
	return methods
}

// CountTestMarkers returns the number of test annotations appearing in code.
func CountTestMarkers(l *Layout) int {
	return len(testMarker.FindAllStringIndex(l.CodeOnly(), -1))
}

func (l *Layout) methodAt(marker, after int) (Method, bool) {
	src := l.src
	p := l.skipParens(after)
	for {
		p = l.skipSpace(p)
		if p >= len(src) || src[p] != '@' {
			break
		}
		p = l.skipParens(l.skipIdent(p + 1))
	}

	open := -1
	paren := -1
	for i := p; i < len(src); i++ {
		if !l.IsCode(i) {
			continue
		}
		c := src[i]
		if c == '(' && paren < 0 {
			paren = i
		}
		if c == '{' {
			open = i
			break
		}
		// A ';' before any body means a declaration without one.
		if c == ';' {
			return Method{}, false
		}
	}
	if open < 0 {
		return Method{}, false
	}

	m := Method{Marker: marker, Start: open}
	if paren >= 0 {
		m.Name = l.identBefore(paren)
	}
	if end, ok := l.MatchBrace(open); ok {
		m.End = end + 1
		m.Complete = true
	} else {
		m.End = len(src)
	}
	m.Body = src[m.Start:m.End]
	return m, true
}

func (l *Layout) skipSpace(p int) int {
	for p < len(l.src) && (isSpace(l.src[p]) || !l.IsCode(p)) {
		p++
	}
	return p
}

func (l *Layout) skipIdent(p int) int {
	for p < len(l.src) && (isIdent(l.src[p]) || l.src[p] == '.') {
		p++
	}
	return p
}

// skipParens skips an optional balanced argument list starting at or after p.
func (l *Layout) skipParens(p int) int {
	q := l.skipSpace(p)
	if q >= len(l.src) || l.src[q] != '(' {
		return p
	}
	depth := 0
	for i := q; i < len(l.src); i++ {
		if !l.IsCode(i) {
			continue
		}
		switch l.src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(l.src)
}

func (l *Layout) identBefore(p int) string {
	end := p
	for end > 0 && isSpace(l.src[end-1]) {
		end--
	}
	start := end
	for start > 0 && isIdent(l.src[start-1]) {
		start--
	}
	return l.src[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdent(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
