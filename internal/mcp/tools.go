// File: internal/mcp/tools.go
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/seleniumshift/api/schemas"
	"github.com/xkilldash9x/seleniumshift/internal/config"
	"github.com/xkilldash9x/seleniumshift/internal/coverage"
	"github.com/xkilldash9x/seleniumshift/internal/extract"
	"github.com/xkilldash9x/seleniumshift/internal/javac"
	"github.com/xkilldash9x/seleniumshift/internal/planner"
	"github.com/xkilldash9x/seleniumshift/internal/reportcheck"
	"github.com/xkilldash9x/seleniumshift/internal/store"
	"github.com/xkilldash9x/seleniumshift/internal/syntaxcheck"
)

var (
	// ErrFileNotFound is returned when a tool is pointed at a missing file.
	ErrFileNotFound  = errors.New("file not found")
	ErrUnknownTool   = errors.New("unknown tool")
	ErrInvalidParams = errors.New("invalid parameters")
)

// ExecuteFunc runs a tool against its raw JSON parameters.
type ExecuteFunc func(ctx context.Context, params jsoniter.RawMessage) (interface{}, error)

// Tool is one named operation exposed to a tool-calling host.
type Tool struct {
	Name        string
	Description string
	// Parameters is the JSON schema of the argument record.
	Parameters map[string]interface{}
	Execute    ExecuteFunc
}

// Deps are the services the built-in tools run against.
type Deps struct {
	Config config.Interface
	Runner javac.Runner
	Store  store.Store
}

// Registry holds the tools a host can call.
type Registry struct {
	log   *zap.Logger
	tools map[string]Tool
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{log: logger.Named("mcp_tools"), tools: make(map[string]Tool)}
}

// Register adds or replaces a tool.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name] = t
}

// Tools lists the registered tools sorted by name.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call runs the named tool. A panicking tool is reported as an error.
func (r *Registry) Call(ctx context.Context, name string, params jsoniter.RawMessage) (result interface{}, err error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Tool panicked", zap.String("tool", name), zap.Any("panic", p), zap.ByteString("stack", debug.Stack()))
			result, err = nil, fmt.Errorf("tool %s failed: internal error", name)
		}
	}()
	r.log.Debug("Calling tool", zap.String("tool", name))
	return t.Execute(ctx, params)
}

// Invoke is Call with failures folded into an ErrorRecord.
func (r *Registry) Invoke(ctx context.Context, name string, params jsoniter.RawMessage) interface{} {
	res, err := r.Call(ctx, name, params)
	if err != nil {
		return ErrorRecord{Error: err.Error()}
	}
	return res
}

// NewDefaultRegistry registers the built-in tools.
func NewDefaultRegistry(deps Deps, logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	t := &toolset{deps: deps, log: r.log}

	r.Register(Tool{
		Name:        "check_syntax",
		Description: "Check a Java test file for structural problems and missing test scaffolding without compiling it.",
		Parameters:  objectSchema(map[string]interface{}{"file_path": stringProp("Path of the .java file.")}, "file_path"),
		Execute:     t.checkSyntax,
	})
	r.Register(Tool{
		Name:        "compile_java",
		Description: "Compile Java files with the configured compiler. A missing compiler yields status skipped.",
		Parameters: objectSchema(map[string]interface{}{
			"file_paths": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Paths of the .java files."},
			"classpath":  stringProp("Classpath override."),
		}, "file_paths"),
		Execute: t.compileJava,
	})
	r.Register(Tool{
		Name:        "check_feature_coverage",
		Description: "Estimate whether a test file exercises a named feature.",
		Parameters: objectSchema(map[string]interface{}{
			"file_path": stringProp("Path of the .java file."),
			"feature":   stringProp("Feature name, e.g. \"shopping cart checkout\"."),
			"threshold": map[string]interface{}{"type": "number", "description": "Keyword share needed, 0 to 1."},
		}, "file_path", "feature"),
		Execute: t.checkCoverage,
	})
	r.Register(Tool{
		Name:        "extract_plan",
		Description: "Extract the browser actions of every test method and compile them into a stored execution plan.",
		Parameters: objectSchema(map[string]interface{}{
			"file_path": stringProp("Path of the .java file."),
			"base_url":  stringProp("Base URL for bootstrap and deferred navigation."),
		}, "file_path"),
		Execute: t.extractPlan,
	})
	r.Register(Tool{
		Name:        "record_locator",
		Description: "Record the element ref found for a pending plan step, or that it was not found.",
		Parameters: objectSchema(map[string]interface{}{
			"plan":   stringProp("Plan name returned by extract_plan."),
			"method": stringProp("Test method name."),
			"seq":    map[string]interface{}{"type": "integer", "description": "Step seq."},
			"status": map[string]interface{}{"type": "string", "enum": []string{"resolved", "not_found"}},
			"ref":    stringProp("Element ref from the latest snapshot."),
		}, "plan", "method", "seq", "status"),
		Execute: t.recordLocator,
	})
	r.Register(Tool{
		Name:        "list_plans",
		Description: "List stored execution plans.",
		Parameters:  objectSchema(map[string]interface{}{}),
		Execute:     t.listPlans,
	})
	r.Register(Tool{
		Name:        "validate_report",
		Description: "Validate a test report against the configured report rules.",
		Parameters:  objectSchema(map[string]interface{}{"file_path": stringProp("Path of the report.")}, "file_path"),
		Execute:     t.validateReport,
	})
	return r
}

type toolset struct {
	deps Deps
	log  *zap.Logger

	// planMu serializes writes to stored plans so concurrent locator updates
	// do not overwrite each other.
	planMu sync.Mutex
}

func (t *toolset) checkSyntax(_ context.Context, raw jsoniter.RawMessage) (interface{}, error) {
	p, err := decodeParams[FileParams](raw)
	if err != nil {
		return nil, err
	}
	src, err := readSource(p.FilePath)
	if err != nil {
		return nil, err
	}
	return syntaxcheck.Check(src), nil
}

func (t *toolset) compileJava(ctx context.Context, raw jsoniter.RawMessage) (interface{}, error) {
	p, err := decodeParams[CompileParams](raw)
	if err != nil {
		return nil, err
	}
	if len(p.FilePaths) == 0 {
		return nil, fmt.Errorf("%w: file_paths is required", ErrInvalidParams)
	}
	for _, f := range p.FilePaths {
		if err := checkExists(f); err != nil {
			return nil, err
		}
	}
	return t.deps.Runner.Run(ctx, javac.Request{Files: p.FilePaths, Classpath: p.Classpath}), nil
}

func (t *toolset) checkCoverage(_ context.Context, raw jsoniter.RawMessage) (interface{}, error) {
	p, err := decodeParams[CoverageParams](raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Feature) == "" {
		return nil, fmt.Errorf("%w: feature is required", ErrInvalidParams)
	}
	src, err := readSource(p.FilePath)
	if err != nil {
		return nil, err
	}
	threshold := t.deps.Config.Coverage().Threshold
	if p.Threshold != nil {
		threshold = *p.Threshold
	}
	return coverage.Check(src, p.Feature, threshold), nil
}

// ExtractResult is returned by "extract_plan".
type ExtractResult struct {
	Extraction *schemas.Extraction    `json:"extraction"`
	Plan       *schemas.ExecutionPlan `json:"plan"`
	PlanName   string                 `json:"plan_name,omitempty"`
}

func (t *toolset) extractPlan(ctx context.Context, raw jsoniter.RawMessage) (interface{}, error) {
	p, err := decodeParams[ExtractParams](raw)
	if err != nil {
		return nil, err
	}
	src, err := readSource(p.FilePath)
	if err != nil {
		return nil, err
	}

	pc := t.deps.Config.Planner()
	order, err := extract.ParseOrder(pc.ActionOrder)
	if err != nil {
		return nil, err
	}
	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = pc.BaseURL
	}

	ex := extract.File(src, order)
	plan := planner.Build(ex, filepath.Base(p.FilePath), planner.Options{
		BaseURL:     baseURL,
		WaitSeconds: pc.WaitSeconds,
		Order:       order,
	})
	res := ExtractResult{Extraction: ex, Plan: plan}

	if t.deps.Store != nil {
		name := store.PlanName(p.FilePath)
		t.planMu.Lock()
		err := t.putPlan(ctx, name, plan)
		t.planMu.Unlock()
		if err != nil {
			return nil, err
		}
		res.PlanName = name
	}
	return res, nil
}

func (t *toolset) recordLocator(ctx context.Context, raw jsoniter.RawMessage) (interface{}, error) {
	p, err := decodeParams[RecordParams](raw)
	if err != nil {
		return nil, err
	}
	if t.deps.Store == nil {
		return nil, errors.New("no plan store configured")
	}

	t.planMu.Lock()
	defer t.planMu.Unlock()
	data, err := t.deps.Store.Get(ctx, p.Plan)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("plan not found: %s", p.Plan)
		}
		return nil, err
	}
	plan, err := schemas.DecodePlan(data)
	if err != nil {
		return nil, err
	}
	if err := planner.RecordLocator(plan, p.Method, p.Seq, schemas.LocatorStatus(p.Status), p.Ref); err != nil {
		return nil, err
	}
	if err := t.putPlan(ctx, p.Plan, plan); err != nil {
		return nil, err
	}
	return plan.Summary, nil
}

func (t *toolset) listPlans(ctx context.Context, _ jsoniter.RawMessage) (interface{}, error) {
	if t.deps.Store == nil {
		return []string{}, nil
	}
	return t.deps.Store.List(ctx, "plans/")
}

func (t *toolset) validateReport(_ context.Context, raw jsoniter.RawMessage) (interface{}, error) {
	p, err := decodeParams[FileParams](raw)
	if err != nil {
		return nil, err
	}
	text, err := readSource(p.FilePath)
	if err != nil {
		return nil, err
	}
	rules, err := reportcheck.LoadRules(t.deps.Config.Report().RulesFile)
	if err != nil {
		return nil, err
	}
	return rules.Validate(text), nil
}

func (t *toolset) putPlan(ctx context.Context, name string, plan *schemas.ExecutionPlan) error {
	data, err := schemas.EncodeJSON(plan)
	if err != nil {
		return err
	}
	if err := t.deps.Store.Put(ctx, name, data); err != nil {
		t.log.Error("Failed to store plan", zap.String("name", name), zap.Error(err))
		return fmt.Errorf("failed to store plan: %w", err)
	}
	return nil
}

// decodeParams converts the raw argument record into its typed form.
func decodeParams[T any](raw jsoniter.RawMessage) (T, error) {
	var p T
	if len(raw) == 0 || string(raw) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return p, nil
}

func checkExists(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: file_path is required", ErrInvalidParams)
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return err
}

func readSource(path string) (string, error) {
	if err := checkExists(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	s := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func stringProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}
