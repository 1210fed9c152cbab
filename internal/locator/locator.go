// Package locator converts Selenium By expressions into canonical selectors and back
// into readable phrases for plan notes.
package locator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xkilldash9x/seleniumshift/internal/javasrc"
)

// Expr matches a locator argument as it appears in source: a By factory call with a
// literal, or a plain identifier holding a By built elsewhere.
const Expr = `By\s*\.\s*\w+\s*\(\s*"(?:[^"\\\n]|\\.)*"\s*\)|[A-Za-z_$][\w$.]*`

var byCall = regexp.MustCompile(`^By\s*\.\s*(\w+)\s*\(\s*("(?:[^"\\\n]|\\.)*")\s*\)$`)

// XPathPrefix marks a canonical selector holding an XPath expression.
const XPathPrefix = "xpath="

type rule struct {
	strategy string
	build    func(v string) string
}

// rules are tried in order; the first strategy that matches wins.
var rules = []rule{
	{"id", func(v string) string { return "#" + v }},
	{"name", func(v string) string { return fmt.Sprintf(`[name="%s"]`, v) }},
	{"cssSelector", func(v string) string { return v }},
	{"xpath", func(v string) string { return XPathPrefix + v }},
	{"className", func(v string) string { return "." + v }},
	{"tagName", func(v string) string { return v }},
	{"linkText", func(v string) string { return fmt.Sprintf(`text="%s"`, v) }},
}

// Normalize maps a locator expression to its canonical selector.
// Input it does not recognize is returned unchanged.
func Normalize(expr string) string {
	trimmed := strings.TrimSpace(expr)
	m := byCall.FindStringSubmatch(trimmed)
	if m == nil {
		return expr
	}
	value, ok := javasrc.Unquote(m[2])
	if !ok {
		return expr
	}
	for _, r := range rules {
		if r.strategy == m[1] {
			return r.build(value)
		}
	}
	return expr
}

var (
	idSelector    = regexp.MustCompile(`^#([\w-]+)$`)
	classSelector = regexp.MustCompile(`^\.([\w-]+)$`)
	nameSelector  = regexp.MustCompile(`^\[name="(.*)"\]$`)
	textSelector  = regexp.MustCompile(`^text="(.*)"$`)
	tagSelector   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)
)

// Describe turns a canonical selector into a phrase for step notes. It mirrors the
// Normalize table so the raw locator value always appears in the result.
func Describe(selector string) string {
	switch {
	case selector == "":
		return "unspecified element"
	case strings.HasPrefix(selector, XPathPrefix):
		return fmt.Sprintf("element matching XPath %q", strings.TrimPrefix(selector, XPathPrefix))
	}
	if m := textSelector.FindStringSubmatch(selector); m != nil {
		return fmt.Sprintf("link with text %q", m[1])
	}
	if m := nameSelector.FindStringSubmatch(selector); m != nil {
		return fmt.Sprintf(`element with name="%s"`, m[1])
	}
	if m := idSelector.FindStringSubmatch(selector); m != nil {
		return fmt.Sprintf(`element with id="%s"`, m[1])
	}
	if m := classSelector.FindStringSubmatch(selector); m != nil {
		return fmt.Sprintf(`element with class="%s"`, m[1])
	}
	if tagSelector.MatchString(selector) {
		return fmt.Sprintf("<%s> element", selector)
	}
	return fmt.Sprintf("element matching CSS %q", selector)
}

// CountExpression returns an in-page function counting the elements a canonical
// selector matches, written in terms the browser evaluates natively.
func CountExpression(selector string) string {
	if strings.HasPrefix(selector, XPathPrefix) {
		xpath := strconv.Quote(strings.TrimPrefix(selector, XPathPrefix))
		return fmt.Sprintf("() => document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null).snapshotLength", xpath)
	}
	if m := textSelector.FindStringSubmatch(selector); m != nil {
		return fmt.Sprintf("() => Array.from(document.querySelectorAll('a')).filter(a => a.textContent.trim() === %s).length", strconv.Quote(m[1]))
	}
	return fmt.Sprintf("() => document.querySelectorAll(%s).length", strconv.Quote(selector))
}
