// Package extract recognizes Selenium API call shapes in JUnit test methods and turns
// them into semantic actions.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/xkilldash9x/seleniumshift/api/schemas"
	"github.com/xkilldash9x/seleniumshift/internal/javasrc"
	"github.com/xkilldash9x/seleniumshift/internal/locator"
)

// Order selects how recognized actions are sequenced within a method.
type Order string

const (
	// OrderSource sorts every match by its position in the method body.
	OrderSource Order = "source"
	// OrderGrouped emits all matches of one construct kind before the next kind,
	// each kind in textual order.
	OrderGrouped Order = "grouped"
)

// ParseOrder validates an order name. The empty string selects OrderSource.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderSource:
		return OrderSource, nil
	case OrderGrouped:
		return OrderGrouped, nil
	default:
		return "", fmt.Errorf("unknown action order %q (want %q or %q)", s, OrderSource, OrderGrouped)
	}
}

const (
	loc = `(` + locator.Expr + `)`
	// arg is one call argument: string literals may hold ';', anything else stops at it.
	arg      = `((?:"(?:[^"\\\n]|\\.)*"|[^;"])+?)`
	literal  = `("(?:[^"\\\n]|\\.)*")`
	find     = `\bfindElement\s*\(\s*` + loc + `\s*\)\s*\.\s*`
	asserted = `\b(?:Assert\s*\.\s*|Assertions\s*\.\s*)?`
)

// construct is one recognizable call shape. build receives the submatch texts.
type construct struct {
	kind    schemas.ActionType
	pattern *regexp.Regexp
	build   func(g []string, body string, end int) (schemas.SemanticAction, bool)
}

// constructs is ordered by kind; that order is the grouping order of OrderGrouped.
// New shapes are added here rather than special-cased in Recognize.
var constructs = []construct{
	{
		kind:    schemas.ActionNavigate,
		pattern: regexp.MustCompile(`\b\w*[Dd]river\s*\.\s*(?:get|navigate\s*\(\s*\)\s*\.\s*to)\s*\(\s*` + arg + `\s*\)\s*;`),
		build: func(g []string, _ string, _ int) (schemas.SemanticAction, bool) {
			return schemas.SemanticAction{Type: schemas.ActionNavigate, URL: literalOrDeferred(g[1])}, true
		},
	},
	{
		kind:    schemas.ActionFill,
		pattern: regexp.MustCompile(find + `sendKeys\s*\(\s*` + arg + `\s*\)\s*;`),
		build: func(g []string, _ string, _ int) (schemas.SemanticAction, bool) {
			return schemas.SemanticAction{Type: schemas.ActionFill, Selector: locator.Normalize(g[1]), Value: literalOrDeferred(g[2])}, true
		},
	},
	{
		kind:    schemas.ActionClear,
		pattern: regexp.MustCompile(find + `clear\s*\(\s*\)`),
		build:   selectorOnly(schemas.ActionClear),
	},
	{
		kind:    schemas.ActionClick,
		pattern: regexp.MustCompile(find + `click\s*\(\s*\)`),
		build:   selectorOnly(schemas.ActionClick),
	},
	{
		kind:    schemas.ActionGetText,
		pattern: regexp.MustCompile(find + `getText\s*\(\s*\)`),
		build:   selectorOnly(schemas.ActionGetText),
	},
	{
		kind: schemas.ActionAssertText,
		pattern: regexp.MustCompile(asserted + `assertEquals\s*\(\s*` + literal + `\s*,\s*[\w$.]*?` +
			`\bfindElement\s*\(\s*` + loc + `\s*\)\s*\.\s*getText\s*\(\s*\)\s*\)`),
		build: func(g []string, _ string, _ int) (schemas.SemanticAction, bool) {
			expected, _ := javasrc.Unquote(g[1])
			return schemas.SemanticAction{Type: schemas.ActionAssertText, Expected: expected, Selector: locator.Normalize(g[2])}, true
		},
	},
	{
		kind:    schemas.ActionAssertTrue,
		pattern: regexp.MustCompile(asserted + `assertTrue\s*\(\s*` + arg + `\s*\)\s*;`),
		build: func(g []string, _ string, _ int) (schemas.SemanticAction, bool) {
			expr := condition(g[1])
			if expr == "" || expr == "true" {
				return schemas.SemanticAction{}, false
			}
			return schemas.SemanticAction{Type: schemas.ActionAssertTrue, Expression: expr}, true
		},
	},
	{
		kind:    schemas.ActionAssertFalse,
		pattern: regexp.MustCompile(asserted + `assertFalse\s*\(\s*` + arg + `\s*\)\s*;`),
		build: func(g []string, _ string, _ int) (schemas.SemanticAction, bool) {
			expr := condition(g[1])
			if expr == "" {
				return schemas.SemanticAction{}, false
			}
			return schemas.SemanticAction{Type: schemas.ActionAssertFalse, Expression: expr}, true
		},
	},
	{
		kind:    schemas.ActionWait,
		pattern: regexp.MustCompile(`\.\s*until\s*\(\s*(?:ExpectedConditions\s*\.\s*)?(\w+)\s*\(\s*` + loc),
		build: func(g []string, _ string, _ int) (schemas.SemanticAction, bool) {
			return schemas.SemanticAction{Type: schemas.ActionWait, Condition: g[1], Selector: locator.Normalize(g[2])}, true
		},
	},
	{
		kind:    schemas.ActionCountElements,
		pattern: regexp.MustCompile(`\bfindElements\s*\(\s*` + loc + `\s*\)\s*\.\s*size\s*\(\s*\)`),
		build:   selectorOnly(schemas.ActionCountElements),
	},
	{
		// A list variable assigned from findElements counts only when its size is read later.
		kind:    schemas.ActionCountElements,
		pattern: regexp.MustCompile(`\b([A-Za-z_$][\w$]*)\s*=\s*[\w$.]*?\bfindElements\s*\(\s*` + loc + `\s*\)\s*;`),
		build: func(g []string, body string, end int) (schemas.SemanticAction, bool) {
			sizeRead := regexp.MustCompile(`\b` + regexp.QuoteMeta(g[1]) + `\s*\.\s*size\s*\(\s*\)`)
			if !sizeRead.MatchString(body[end:]) {
				return schemas.SemanticAction{}, false
			}
			return schemas.SemanticAction{Type: schemas.ActionCountElements, Selector: locator.Normalize(g[2])}, true
		},
	},
}

var kindRank = func() map[schemas.ActionType]int {
	rank := make(map[schemas.ActionType]int)
	for _, c := range constructs {
		if _, ok := rank[c.kind]; !ok {
			rank[c.kind] = len(rank)
		}
	}
	return rank
}()

type match struct {
	pos    int
	rank   int
	action schemas.SemanticAction
}

// Recognize returns the semantic actions found in one method body. A body with no
// recognized construct yields an empty, non-nil slice.
func Recognize(body string, order Order) []schemas.SemanticAction {
	layout := javasrc.Classify(body)
	code := layout.CodeOnly()

	var found []match
	for _, c := range constructs {
		for _, idx := range c.pattern.FindAllStringSubmatchIndex(body, -1) {
			if !layout.IsCode(idx[0]) {
				continue
			}
			action, ok := c.build(groups(body, idx), code, idx[1])
			if !ok {
				continue
			}
			found = append(found, match{pos: idx[0], rank: kindRank[c.kind], action: action})
		}
	}

	sort.SliceStable(found, func(a, b int) bool {
		if order == OrderGrouped && found[a].rank != found[b].rank {
			return found[a].rank < found[b].rank
		}
		if found[a].pos != found[b].pos {
			return found[a].pos < found[b].pos
		}
		return found[a].rank < found[b].rank
	})

	actions := make([]schemas.SemanticAction, 0, len(found))
	for _, m := range found {
		actions = append(actions, m.action)
	}
	return actions
}

func groups(s string, idx []int) []string {
	g := make([]string, len(idx)/2)
	for k := range g {
		if idx[2*k] >= 0 {
			g[k] = s[idx[2*k]:idx[2*k+1]]
		}
	}
	return g
}

func selectorOnly(kind schemas.ActionType) func([]string, string, int) (schemas.SemanticAction, bool) {
	return func(g []string, _ string, _ int) (schemas.SemanticAction, bool) {
		return schemas.SemanticAction{Type: kind, Selector: locator.Normalize(g[1])}, true
	}
}

// literalOrDeferred copies a string literal and wraps anything else. Literals that
// would read as a placeholder are escaped.
func literalOrDeferred(expr string) string {
	if v, ok := javasrc.Unquote(expr); ok {
		return schemas.Literal(v)
	}
	return schemas.Deferred(collapse(expr))
}

// condition picks the asserted expression out of an assertTrue/assertFalse argument
// list. JUnit 4 takes an optional leading message, JUnit 5 a trailing one.
func condition(list string) string {
	args := javasrc.SplitArgs(list)
	switch {
	case len(args) == 0:
		return ""
	case len(args) > 1:
		if _, ok := javasrc.Unquote(args[0]); ok {
			return collapse(args[len(args)-1])
		}
	}
	return collapse(args[0])
}

var whitespace = regexp.MustCompile(`\s+`)

func collapse(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}
