package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xkilldash9x/seleniumshift/api/schemas"
)

var (
	ErrMethodNotFound = errors.New("method not found")
	ErrStepNotFound   = errors.New("step not found")
	ErrNoLocator      = errors.New("step has no locator to resolve")
)

// RecordLocator stores the host's resolution of one pending step. A resolved step
// gets concrete Args built from its template with the ref substituted.
func RecordLocator(plan *schemas.ExecutionPlan, method string, seq int, status schemas.LocatorStatus, ref string) error {
	ref = strings.TrimSpace(ref)
	switch status {
	case schemas.LocatorResolved:
		if ref == "" {
			return fmt.Errorf("a resolved locator needs a ref")
		}
	case schemas.LocatorNotFound:
		ref = ""
	default:
		return fmt.Errorf("invalid locator status %q (want %q or %q)", status, schemas.LocatorResolved, schemas.LocatorNotFound)
	}

	step, err := findStep(plan, method, seq)
	if err != nil {
		return err
	}
	if step.LocatorStatus == "" {
		return fmt.Errorf("%w: %s step %d", ErrNoLocator, method, seq)
	}

	step.LocatorStatus = status
	step.ResolvedRef = ref
	step.Args = nil
	if status == schemas.LocatorResolved {
		step.Args = bind(step.ArgsTemplate, ref)
	}
	Summarize(plan)
	return nil
}

// Summarize recomputes the counts in plan.Summary. The resolution rate stays nil
// until at least one locator has been decided.
func Summarize(plan *schemas.ExecutionPlan) {
	var steps, locators, pending, resolved int
	for _, m := range plan.Methods {
		for _, s := range m.Steps {
			steps++
			switch s.LocatorStatus {
			case "":
			case schemas.LocatorPending:
				locators++
				pending++
			case schemas.LocatorResolved:
				locators++
				resolved++
			default:
				locators++
			}
		}
	}
	plan.Summary.TotalMethods = len(plan.Methods)
	plan.Summary.TotalSteps = steps
	plan.Summary.PendingLocators = pending
	plan.Summary.LocatorResolutionRate = nil
	if locators > 0 && pending < locators {
		rate := float64(resolved) / float64(locators)
		plan.Summary.LocatorResolutionRate = &rate
	}
}

func findStep(plan *schemas.ExecutionPlan, method string, seq int) (*schemas.PlanStep, error) {
	for i := range plan.Methods {
		m := &plan.Methods[i]
		if m.Name != method {
			continue
		}
		for j := range m.Steps {
			if m.Steps[j].Seq == seq {
				return &m.Steps[j], nil
			}
		}
		return nil, fmt.Errorf("%w: %s step %d", ErrStepNotFound, method, seq)
	}
	return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
}

func bind(tmpl map[string]any, ref string) map[string]any {
	out := make(map[string]any, len(tmpl))
	for k, v := range tmpl {
		if s, ok := v.(string); ok && s == schemas.RefPlaceholder {
			v = ref
		}
		out[k] = v
	}
	return out
}
