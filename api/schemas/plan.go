package schemas

import "time"

// -- Execution Plan Schemas --

// LocatorStatus tracks run-time resolution of a step's element reference.
type LocatorStatus string

const (
	LocatorPending  LocatorStatus = "pending"
	LocatorResolved LocatorStatus = "resolved"
	LocatorNotFound LocatorStatus = "not_found"
)

// Backend tool names understood by the snapshot/ref automation host.
const (
	ToolNavigate          = "browser_navigate"
	ToolSnapshot          = "browser_snapshot"
	ToolClick             = "browser_click"
	ToolType              = "browser_type"
	ToolWaitFor           = "browser_wait_for"
	ToolEvaluate          = "browser_evaluate"
	ToolVerifyTextVisible = "browser_verify_text_visible"
	ToolUnhandled         = "unhandled"
)

// RefPlaceholder marks an argument the host must fill from the latest snapshot.
const RefPlaceholder = "{{ref}}"

// PlanStep is one instruction addressed to the automation backend.
// Args holds fully known arguments; ArgsTemplate holds arguments that still
// contain RefPlaceholder and need run-time resolution.
type PlanStep struct {
	Seq            int             `json:"seq"`
	Tool           string          `json:"tool"`
	Args           map[string]any  `json:"args,omitempty"`
	ArgsTemplate   map[string]any  `json:"args_template,omitempty"`
	Note           string          `json:"note"`
	SelectorHint   string          `json:"selector_hint,omitempty"`
	LocatorStatus  LocatorStatus   `json:"locator_status,omitempty"`
	ResolvedRef    string          `json:"resolved_ref,omitempty"`
	OriginalAction *SemanticAction `json:"original_action,omitempty"`
	Skipped        bool            `json:"skipped,omitempty"`
	Synthetic      bool            `json:"synthetic,omitempty"`
}

// MethodStatus is the execution status of one compiled method.
type MethodStatus string

const (
	MethodPending MethodStatus = "pending"
	MethodPassed  MethodStatus = "passed"
	MethodFailed  MethodStatus = "failed"
)

// MethodPlan is the compiled step list for a single test method.
type MethodPlan struct {
	Name   string       `json:"name"`
	Steps  []PlanStep   `json:"steps"`
	Status MethodStatus `json:"status"`
}

// PlanMetadata describes where and how a plan was generated.
type PlanMetadata struct {
	PlanID      string    `json:"plan_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
	BaseURL     string    `json:"base_url"`
	ActionOrder string    `json:"action_order"`
	Generator   string    `json:"generator"`
}

// PlanSummary carries statistics. Fields left nil are filled in by the
// executing host after it runs the plan.
type PlanSummary struct {
	TotalMethods          int      `json:"total_methods"`
	TotalSteps            int      `json:"total_steps"`
	PendingLocators       int      `json:"pending_locators"`
	OverallStatus         string   `json:"overall_status"`
	LocatorResolutionRate *float64 `json:"locator_resolution_rate"`
	Executed              *int     `json:"executed"`
	Passed                *int     `json:"passed"`
	Failed                *int     `json:"failed"`
}

// ExecutionPlan is the sole externally visible artifact of compilation.
type ExecutionPlan struct {
	Metadata       PlanMetadata `json:"metadata"`
	ExecutionGuide []string     `json:"execution_guide"`
	Methods        []MethodPlan `json:"methods"`
	Summary        PlanSummary  `json:"summary"`
}
