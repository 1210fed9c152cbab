// Package planner compiles extracted semantic actions into an execution plan for a
// snapshot/ref based browser backend.
package planner

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/xkilldash9x/seleniumshift/api/schemas"
	"github.com/xkilldash9x/seleniumshift/internal/locator"
)

// State is the snapshot bookkeeping for one method: the page the backend is on and,
// per page URL, whether the last snapshot can still be used to resolve element refs.
// A State is never changed in place; Apply returns the successor.
type State struct {
	CurrentURL string
	fresh      map[string]bool
}

// NewState returns the empty state a method starts from.
func NewState() State {
	return State{}
}

// IsFresh reports whether the snapshot for u is still usable.
func (s State) IsFresh(u string) bool {
	return s.fresh[u]
}

// FreshURLs lists the URLs currently holding a usable snapshot.
func (s State) FreshURLs() []string {
	var out []string
	for u, ok := range s.fresh {
		if ok {
			out = append(out, u)
		}
	}
	return out
}

func (s State) mark(u string, fresh bool) State {
	next := State{CurrentURL: s.CurrentURL, fresh: make(map[string]bool, len(s.fresh)+1)}
	for k, v := range s.fresh {
		next.fresh[k] = v
	}
	next.fresh[u] = fresh
	return next
}

func (s State) at(u string) State {
	s.CurrentURL = u
	return s
}

// Apply lowers one action against s. It returns the successor state and the steps
// the action produces, unnumbered. Action types it cannot lower become a single
// skipped step.
func (s State) Apply(a schemas.SemanticAction, opts Options) (State, []schemas.PlanStep) {
	switch a.Type {
	case schemas.ActionNavigate:
		target := resolveURL(a.URL, opts.BaseURL)
		next := s.at(target).mark(target, true)
		return next, []schemas.PlanStep{navigateStep(target, origin(a), false), snapshotStep(target, false)}

	case schemas.ActionClick, schemas.ActionFill, schemas.ActionClear, schemas.ActionGetText:
		var steps []schemas.PlanStep
		next := s
		if !next.IsFresh(next.CurrentURL) {
			steps = append(steps, snapshotStep(next.CurrentURL, false))
			next = next.mark(next.CurrentURL, true)
		}
		steps = append(steps, elementStep(a))
		if a.Type == schemas.ActionClick {
			next = next.mark(next.CurrentURL, false)
		}
		return next, steps

	case schemas.ActionWait:
		return s.mark(s.CurrentURL, false), []schemas.PlanStep{waitStep(a, opts.WaitSeconds)}

	case schemas.ActionAssertText:
		return s, []schemas.PlanStep{{
			Tool:           schemas.ToolVerifyTextVisible,
			Args:           map[string]any{"text": a.Expected},
			Note:           fmt.Sprintf("Verify text %q is visible on %s", a.Expected, locator.Describe(a.Selector)),
			SelectorHint:   a.Selector,
			OriginalAction: origin(a),
		}}

	case schemas.ActionAssertTrue, schemas.ActionAssertFalse:
		expected := a.Type == schemas.ActionAssertTrue
		return s, []schemas.PlanStep{{
			Tool:           schemas.ToolEvaluate,
			Args:           map[string]any{"function": "() => (" + a.Expression + ")", "expected": expected},
			Note:           fmt.Sprintf("Evaluate %s and expect %t", a.Expression, expected),
			OriginalAction: origin(a),
		}}

	case schemas.ActionCountElements:
		return s, []schemas.PlanStep{{
			Tool:           schemas.ToolEvaluate,
			Args:           map[string]any{"function": locator.CountExpression(a.Selector)},
			Note:           fmt.Sprintf("Count each %s", locator.Describe(a.Selector)),
			SelectorHint:   a.Selector,
			OriginalAction: origin(a),
		}}

	default:
		return s, []schemas.PlanStep{{
			Tool:           schemas.ToolUnhandled,
			Note:           fmt.Sprintf("Unhandled action type %q, skipped", a.Type),
			OriginalAction: origin(a),
			Skipped:        true,
		}}
	}
}

func origin(a schemas.SemanticAction) *schemas.SemanticAction {
	return &a
}

func navigateStep(target string, a *schemas.SemanticAction, synthetic bool) schemas.PlanStep {
	note := "Navigate to " + target
	if synthetic {
		note = "Navigate to the base URL " + target + " (no navigation in the test)"
	} else if a != nil && schemas.IsDeferred(a.URL) {
		note = fmt.Sprintf("Navigate to %s (runtime value %s)", target, schemas.DeferredExpr(a.URL))
	}
	return schemas.PlanStep{
		Tool:           schemas.ToolNavigate,
		Args:           map[string]any{"url": target},
		Note:           note,
		OriginalAction: a,
		Synthetic:      synthetic,
	}
}

func snapshotStep(page string, synthetic bool) schemas.PlanStep {
	note := "Capture an accessibility snapshot of the current page"
	if page != "" {
		note = "Capture an accessibility snapshot of " + page
	}
	return schemas.PlanStep{Tool: schemas.ToolSnapshot, Args: map[string]any{}, Note: note, Synthetic: synthetic}
}

func elementStep(a schemas.SemanticAction) schemas.PlanStep {
	desc := locator.Describe(a.Selector)
	tmpl := map[string]any{"element": desc, "ref": schemas.RefPlaceholder}
	step := schemas.PlanStep{
		ArgsTemplate:   tmpl,
		SelectorHint:   a.Selector,
		LocatorStatus:  schemas.LocatorPending,
		OriginalAction: origin(a),
	}
	switch a.Type {
	case schemas.ActionClick:
		step.Tool = schemas.ToolClick
		step.Note = "Click " + desc
	case schemas.ActionFill:
		step.Tool = schemas.ToolType
		text := schemas.LiteralValue(a.Value)
		tmpl["text"] = text
		step.Note = fmt.Sprintf("Type %q into %s", text, desc)
	case schemas.ActionClear:
		step.Tool = schemas.ToolType
		tmpl["text"] = ""
		step.Note = "Clear " + desc
	case schemas.ActionGetText:
		step.Tool = schemas.ToolEvaluate
		tmpl["function"] = "(element) => element.textContent"
		step.Note = "Read the text of " + desc
	}
	return step
}

func waitStep(a schemas.SemanticAction, seconds int) schemas.PlanStep {
	note := fmt.Sprintf("Wait %ds", seconds)
	switch {
	case a.Condition != "" && a.Selector != "":
		note = fmt.Sprintf("Wait %ds for %s (%s)", seconds, locator.Describe(a.Selector), a.Condition)
	case a.Selector != "":
		note = fmt.Sprintf("Wait %ds for %s", seconds, locator.Describe(a.Selector))
	}
	return schemas.PlanStep{
		Tool:           schemas.ToolWaitFor,
		Args:           map[string]any{"time": seconds},
		Note:           note,
		SelectorHint:   a.Selector,
		OriginalAction: origin(a),
	}
}

// resolveURL maps a navigation target to a concrete URL. Deferred values and empty
// targets resolve to base; root-relative literals are joined to it.
func resolveURL(raw, base string) string {
	if raw == "" || schemas.IsDeferred(raw) {
		return base
	}
	raw = schemas.LiteralValue(raw)
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") && base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return raw
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return raw
		}
		return b.ResolveReference(ref).String()
	}
	return raw
}
