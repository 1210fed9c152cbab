package schemas

import "strings"

// -- Semantic Action Schemas --

// ActionType identifies the browser interaction a SemanticAction describes.
type ActionType string

const (
	ActionNavigate      ActionType = "navigate"
	ActionClick         ActionType = "click"
	ActionFill          ActionType = "fill"
	ActionClear         ActionType = "clear"
	ActionWait          ActionType = "wait"
	ActionAssertText    ActionType = "assert_text"
	ActionAssertTrue    ActionType = "assert_true"
	ActionAssertFalse   ActionType = "assert_false"
	ActionGetText       ActionType = "get_text"
	ActionCountElements ActionType = "count_elements"
	ActionUnknown       ActionType = "unknown"
)

// SemanticAction is one backend-agnostic browser intent recovered from test source.
// Only the fields relevant to Type are populated. Selector is always canonical.
type SemanticAction struct {
	Type       ActionType `json:"type"`
	URL        string     `json:"url,omitempty"`
	Selector   string     `json:"selector,omitempty"`
	Value      string     `json:"value,omitempty"`
	Expected   string     `json:"expected,omitempty"`
	Expression string     `json:"expression,omitempty"`
	Condition  string     `json:"condition,omitempty"`
}

// TestMethod pairs a segmented test method with the actions recognized in its body.
type TestMethod struct {
	Name    string           `json:"name"`
	Actions []SemanticAction `json:"actions"`
}

// Extraction is the interchange document produced by the extraction stage and
// consumed by the plan compiler. Its shape is a stable contract.
type Extraction struct {
	TestMethods []TestMethod `json:"testMethods"`
}

// -- Deferred Values --

const (
	deferredPrefix = "${"
	deferredSuffix = "}"
)

// Deferred wraps a source-level expression whose value is unknown at extraction time.
func Deferred(expr string) string {
	return deferredPrefix + strings.TrimSpace(expr) + deferredSuffix
}

// IsDeferred reports whether v is a deferred-value placeholder rather than a literal.
func IsDeferred(v string) bool {
	return len(v) > len(deferredPrefix) && strings.HasPrefix(v, deferredPrefix) && strings.HasSuffix(v, deferredSuffix)
}

// Literal escapes a source literal that would otherwise read as a placeholder by
// doubling its leading '$'. Values already starting with "$$" are escaped too so
// LiteralValue can always undo it.
func Literal(v string) string {
	if strings.HasPrefix(v, deferredPrefix) || strings.HasPrefix(v, "$$") {
		return "$" + v
	}
	return v
}

// LiteralValue returns the text a literal value stands for. Placeholders are
// returned unchanged.
func LiteralValue(v string) string {
	if strings.HasPrefix(v, "$$") {
		return v[1:]
	}
	return v
}

// DeferredExpr returns the expression inside a placeholder, or "" for literals.
func DeferredExpr(v string) string {
	if !IsDeferred(v) {
		return ""
	}
	return v[len(deferredPrefix) : len(v)-len(deferredSuffix)]
}
