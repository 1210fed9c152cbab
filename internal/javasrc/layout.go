// Package javasrc provides the literal- and comment-aware scanning primitive shared by
// every component that needs to find structure in Java test source without parsing it.
package javasrc

import (
	"fmt"
	"sort"
	"strings"
)

// Region classifies a byte of source text.
type Region uint8

const (
	RegionCode Region = iota
	RegionLineComment
	RegionBlockComment
	RegionString
	RegionTextBlock
	RegionChar
)

// Issue is a structural problem found while scanning, anchored to a 1-based line.
type Issue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s", i.Line, i.Message)
}

// Layout is the byte-level classification of one source text.
type Layout struct {
	src        string
	regions    []Region
	lineStarts []int
	issues     []Issue
	code       string
}

// Classify scans src once and records which bytes are code, comments or literals.
// It never fails; unterminated literals and comments are kept as issues.
func Classify(src string) *Layout {
	l := &Layout{src: src, regions: make([]Region, len(src))}
	l.lineStarts = append(l.lineStarts, 0)
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			l.lineStarts = append(l.lineStarts, i+1)
		}
	}

	i := 0
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src)
			} else {
				end += i
			}
			l.mark(i, end, RegionLineComment)
			i = end
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				l.mark(i, len(src), RegionBlockComment)
				l.issue(i, "unterminated block comment")
				i = len(src)
				continue
			}
			end = i + 2 + end + 2
			l.mark(i, end, RegionBlockComment)
			i = end
		case strings.HasPrefix(src[i:], `"""`):
			i = l.scanTextBlock(i)
		case src[i] == '"' || src[i] == '\'':
			i = l.scanQuoted(i, src[i])
		default:
			i++
		}
	}
	l.code = l.blankNonCode()
	return l
}

func (l *Layout) scanTextBlock(start int) int {
	j := start + 3
	for j < len(l.src) {
		if l.src[j] == '\\' {
			j += 2
			continue
		}
		if strings.HasPrefix(l.src[j:], `"""`) {
			l.mark(start, j+3, RegionTextBlock)
			return j + 3
		}
		j++
	}
	l.mark(start, len(l.src), RegionTextBlock)
	l.issue(start, "unterminated text block")
	return len(l.src)
}

func (l *Layout) scanQuoted(start int, quote byte) int {
	region, kind := RegionString, "string literal"
	if quote == '\'' {
		region, kind = RegionChar, "character literal"
	}
	j := start + 1
	for j < len(l.src) {
		switch l.src[j] {
		case '\\':
			j += 2
			continue
		case quote:
			l.mark(start, j+1, region)
			return j + 1
		case '\n':
			l.mark(start, j, region)
			l.issue(start, "unterminated "+kind)
			return j
		}
		j++
	}
	l.mark(start, len(l.src), region)
	l.issue(start, "unterminated "+kind)
	return len(l.src)
}

func (l *Layout) mark(from, to int, r Region) {
	if to > len(l.regions) {
		to = len(l.regions)
	}
	for k := from; k < to; k++ {
		l.regions[k] = r
	}
}

func (l *Layout) issue(offset int, msg string) {
	l.issues = append(l.issues, Issue{Line: l.Line(offset), Message: msg})
}

// Source returns the text the layout was built from.
func (l *Layout) Source() string { return l.src }

// Len returns the length of the source in bytes.
func (l *Layout) Len() int { return len(l.src) }

// RegionAt returns the classification of byte i.
func (l *Layout) RegionAt(i int) Region {
	if i < 0 || i >= len(l.regions) {
		return RegionCode
	}
	return l.regions[i]
}

// IsCode reports whether byte i is outside every literal and comment.
func (l *Layout) IsCode(i int) bool {
	return i >= 0 && i < len(l.regions) && l.regions[i] == RegionCode
}

// IsComment reports whether byte i belongs to a line or block comment.
func (l *Layout) IsComment(i int) bool {
	r := l.RegionAt(i)
	return i >= 0 && i < len(l.regions) && (r == RegionLineComment || r == RegionBlockComment)
}

// Line returns the 1-based line number of byte offset i.
func (l *Layout) Line(i int) int {
	return sort.Search(len(l.lineStarts), func(k int) bool { return l.lineStarts[k] > i })
}

// CodeOnly returns the source with every non-code byte replaced by a space.
// Newlines and offsets are preserved so matches map back onto the original text.
func (l *Layout) CodeOnly() string { return l.code }

func (l *Layout) blankNonCode() string {
	b := []byte(l.src)
	for i := range b {
		if l.regions[i] != RegionCode && b[i] != '\n' {
			b[i] = ' '
		}
	}
	return string(b)
}

// Slice returns the subset of [from, to) that is code, with other bytes blanked.
func (l *Layout) Slice(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(l.src) {
		to = len(l.src)
	}
	if from >= to {
		return ""
	}
	return l.code[from:to]
}

// MatchBrace finds the '}' closing the '{' at offset open. Only code bytes are counted.
// When depth never returns to zero it returns (-1, false); the scan never runs past the text.
func (l *Layout) MatchBrace(open int) (int, bool) {
	if open < 0 || open >= len(l.src) || l.src[open] != '{' || !l.IsCode(open) {
		return -1, false
	}
	depth := 0
	for i := open; i < len(l.src); i++ {
		if l.regions[i] != RegionCode {
			continue
		}
		switch l.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return -1, false
}

// NextCode returns the offset of the first code byte c at or after from, or -1.
func (l *Layout) NextCode(from int, c byte) int {
	for i := from; i < len(l.src); i++ {
		if l.src[i] == c && l.regions[i] == RegionCode {
			return i
		}
	}
	return -1
}

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

// Balance reports unterminated literals and comments plus mismatched braces,
// brackets and parentheses, ordered by line.
func (l *Layout) Balance() []Issue {
	issues := append([]Issue(nil), l.issues...)

	type open struct {
		c   byte
		pos int
	}
	var stack []open
	for i := 0; i < len(l.src); i++ {
		if l.regions[i] != RegionCode {
			continue
		}
		c := l.src[i]
		switch c {
		case '{', '(', '[':
			stack = append(stack, open{c, i})
		case '}', ')', ']':
			want := closers[c]
			depth := -1
			for k := len(stack) - 1; k >= 0; k-- {
				if stack[k].c == want {
					depth = k
					break
				}
			}
			if depth < 0 {
				issues = append(issues, Issue{Line: l.Line(i), Message: fmt.Sprintf("unexpected '%c'", c)})
				continue
			}
			for k := len(stack) - 1; k > depth; k-- {
				issues = append(issues, Issue{Line: l.Line(stack[k].pos), Message: fmt.Sprintf("unclosed '%c'", stack[k].c)})
			}
			stack = stack[:depth]
		}
	}
	for _, o := range stack {
		issues = append(issues, Issue{Line: l.Line(o.pos), Message: fmt.Sprintf("unclosed '%c'", o.c)})
	}

	sort.SliceStable(issues, func(a, b int) bool { return issues[a].Line < issues[b].Line })
	return issues
}
