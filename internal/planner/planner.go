package planner

import (
	"time"

	"github.com/google/uuid"

	"github.com/xkilldash9x/seleniumshift/api/schemas"
	"github.com/xkilldash9x/seleniumshift/internal/extract"
)

const (
	// DefaultWaitSeconds is the fixed duration of a compiled explicit wait.
	DefaultWaitSeconds = 2
	// StatusNotExecuted is the overall status of a plan no host has run yet.
	StatusNotExecuted = "not_executed"
	defaultGenerator  = "seleniumshift"
)

// Options configures compilation. The zero value is usable: no base URL, the
// default wait, source ordering, the wall clock and random plan ids.
type Options struct {
	BaseURL     string
	WaitSeconds int
	Order       extract.Order
	Generator   string
	Now         func() time.Time
	NewID       func() string
}

func (o Options) withDefaults() Options {
	if o.WaitSeconds <= 0 {
		o.WaitSeconds = DefaultWaitSeconds
	}
	if o.Order == "" {
		o.Order = extract.OrderSource
	}
	if o.Generator == "" {
		o.Generator = defaultGenerator
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// executionGuide is addressed to the host that runs the plan.
var executionGuide = []string{
	"Run the methods in order; within a method run the steps in seq order.",
	"Call each step's tool with its args. Steps carrying args_template need an element ref first.",
	"To resolve a ref, find the element described by args_template.element in the most recent browser_snapshot output, then replace {{ref}} with its ref.",
	"Use selector_hint only to disambiguate between candidate elements; never pass it to the backend.",
	"Record each resolution by setting locator_status to resolved or not_found and storing resolved_ref.",
	"Steps flagged skipped were not understood by the compiler; report them and move on.",
	"A step that fails marks its method failed; continue with the next method.",
	"When finished, fill in the summary: overall_status, locator_resolution_rate, executed, passed and failed.",
}

// CompileMethod folds State.Apply over the method's actions. A method with actions
// but no navigation is prefixed by a synthetic navigate and snapshot of the base URL.
// Steps are numbered densely from 1 once the list is complete.
func CompileMethod(m schemas.TestMethod, opts Options) (schemas.MethodPlan, State) {
	opts = opts.withDefaults()
	state := NewState()
	steps := make([]schemas.PlanStep, 0, 2*len(m.Actions))
	navigated := false
	for _, a := range m.Actions {
		if a.Type == schemas.ActionNavigate {
			navigated = true
		}
		var out []schemas.PlanStep
		state, out = state.Apply(a, opts)
		steps = append(steps, out...)
	}
	if len(m.Actions) > 0 && !navigated {
		bootstrap := []schemas.PlanStep{
			navigateStep(opts.BaseURL, nil, true),
			snapshotStep(opts.BaseURL, true),
		}
		steps = append(bootstrap, steps...)
	}
	for i := range steps {
		steps[i].Seq = i + 1
	}
	return schemas.MethodPlan{Name: m.Name, Steps: steps, Status: schemas.MethodPending}, state
}

// Build compiles every method of ex into one plan. source names the input the
// extraction came from.
func Build(ex *schemas.Extraction, source string, opts Options) *schemas.ExecutionPlan {
	opts = opts.withDefaults()
	plan := &schemas.ExecutionPlan{
		Metadata: schemas.PlanMetadata{
			PlanID:      opts.NewID(),
			GeneratedAt: opts.Now().UTC(),
			Source:      source,
			BaseURL:     opts.BaseURL,
			ActionOrder: string(opts.Order),
			Generator:   opts.Generator,
		},
		ExecutionGuide: append([]string(nil), executionGuide...),
		Methods:        []schemas.MethodPlan{},
	}
	if ex != nil {
		for _, m := range ex.TestMethods {
			mp, _ := CompileMethod(m, opts)
			plan.Methods = append(plan.Methods, mp)
		}
	}
	plan.Summary.OverallStatus = StatusNotExecuted
	Summarize(plan)
	return plan
}
