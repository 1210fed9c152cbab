// Package pipeline runs generated test files through the full workflow: syntax
// check, compile, action extraction, plan compilation and plan storage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/seleniumshift/api/schemas"
	"github.com/xkilldash9x/seleniumshift/internal/config"
	"github.com/xkilldash9x/seleniumshift/internal/extract"
	"github.com/xkilldash9x/seleniumshift/internal/javac"
	"github.com/xkilldash9x/seleniumshift/internal/planner"
	"github.com/xkilldash9x/seleniumshift/internal/store"
	"github.com/xkilldash9x/seleniumshift/internal/syntaxcheck"
)

// ErrNoCodeBlocks is returned by Ingest when the output holds no java block.
var ErrNoCodeBlocks = errors.New("no java code blocks found")

// FileStatus is the per-file verdict of a batch.
type FileStatus string

const (
	FileOK       FileStatus = "ok"
	FileFailed   FileStatus = "failed"
	FileNotFound FileStatus = "not_found"
)

// FileResult is the outcome of one file.
type FileResult struct {
	File     string              `json:"file"`
	Status   FileStatus          `json:"status"`
	Syntax   *syntaxcheck.Result `json:"syntax,omitempty"`
	Compile  *javac.Outcome      `json:"compile,omitempty"`
	Methods  int                 `json:"methods"`
	Actions  int                 `json:"actions"`
	Steps    int                 `json:"steps"`
	PlanName string              `json:"plan,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// Report summarizes a batch. Files keeps the order the files were given in.
type Report struct {
	BatchID   string       `json:"batch_id"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	NotFound  int          `json:"not_found"`
	Files     []FileResult `json:"files"`
}

// Pipeline processes batches of generated test files.
type Pipeline struct {
	cfg     config.Interface
	runner  javac.Runner
	store   store.Store
	limiter *rate.Limiter
	log     *zap.Logger

	readFile func(name string) ([]byte, error)
	opts     planner.Options
}

// New wires a pipeline. A zero compiler.rate_limit disables throttling.
func New(cfg config.Interface, runner javac.Runner, st store.Store, logger *zap.Logger) *Pipeline {
	cc := cfg.Compiler()
	limit := rate.Inf
	if cc.RateLimit > 0 {
		limit = rate.Limit(cc.RateLimit)
	}
	burst := cc.Burst
	if burst <= 0 {
		burst = 1
	}

	pc := cfg.Planner()
	order, err := extract.ParseOrder(pc.ActionOrder)
	if err != nil {
		order = extract.OrderSource
	}

	return &Pipeline{
		cfg:      cfg,
		runner:   runner,
		store:    st,
		limiter:  rate.NewLimiter(limit, burst),
		log:      logger.Named("pipeline"),
		readFile: os.ReadFile,
		opts: planner.Options{
			BaseURL:     pc.BaseURL,
			WaitSeconds: pc.WaitSeconds,
			Order:       order,
		},
	}
}

// Run processes every file and reports them in input order. One file failing
// never stops the others; only a cancelled context ends the batch early.
func (p *Pipeline) Run(ctx context.Context, files []string) (*Report, error) {
	report := &Report{
		BatchID: uuid.NewString(),
		Total:   len(files),
		Files:   make([]FileResult, len(files)),
	}
	log := p.log.With(zap.String("batch_id", report.BatchID))
	log.Info("Starting batch", zap.Int("files", len(files)))

	concurrency := p.cfg.Pipeline().Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	names := store.PlanNames(files)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Files[i] = p.processFile(gctx, file, names[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s interrupted: %w", report.BatchID, err)
	}

	for _, fr := range report.Files {
		switch fr.Status {
		case FileOK:
			report.Succeeded++
		case FileNotFound:
			report.NotFound++
		default:
			report.Failed++
		}
	}
	log.Info("Batch finished",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("not_found", report.NotFound),
	)
	return report, nil
}

func (p *Pipeline) processFile(ctx context.Context, file, name string) FileResult {
	res := FileResult{File: file, Status: FileFailed}
	log := p.log.With(zap.String("file", file))

	data, err := p.readFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Status = FileNotFound
			res.Error = "file not found: " + file
		} else {
			res.Error = fmt.Sprintf("failed to read file: %v", err)
		}
		log.Warn("Skipping unreadable file", zap.Error(err))
		return res
	}
	src := string(data)

	// Syntax findings are advisory; compilation is the authority.
	syntax := syntaxcheck.Check(src)
	res.Syntax = &syntax

	if err := p.limiter.Wait(ctx); err != nil {
		res.Error = fmt.Sprintf("compile throttle: %v", err)
		return res
	}
	outcome := p.runner.Run(ctx, javac.Request{Files: []string{file}})
	res.Compile = &outcome
	if outcome.Status == javac.StatusFailure {
		res.Error = fmt.Sprintf("compilation failed with %d error(s)", len(outcome.Errors))
		log.Info("Compilation failed", zap.Strings("errors", outcome.Errors))
		return res
	}

	ex := extract.File(src, p.opts.Order)
	res.Methods = len(ex.TestMethods)
	res.Actions = extract.CountActions(ex)
	if res.Methods == 0 {
		res.Error = "no test methods found"
		return res
	}

	plan := planner.Build(ex, filepath.Base(file), p.opts)
	for _, m := range plan.Methods {
		res.Steps += len(m.Steps)
	}
	encoded, err := schemas.EncodeJSON(plan)
	if err != nil {
		res.Error = fmt.Sprintf("failed to encode plan: %v", err)
		return res
	}
	if err := p.store.Put(ctx, name, encoded); err != nil {
		res.Error = fmt.Sprintf("failed to store plan: %v", err)
		log.Error("Failed to store plan", zap.String("name", name), zap.Error(err))
		return res
	}
	res.PlanName = name
	res.Status = FileOK
	log.Debug("File processed", zap.Int("methods", res.Methods), zap.Int("steps", res.Steps))
	return res
}

// Ingest persists raw model output under id, then stores each fenced java
// block as a source file named after its class. It returns the stored source
// names in block order.
func (p *Pipeline) Ingest(ctx context.Context, id, raw string) ([]string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if err := p.store.Put(ctx, store.RawName(id), []byte(raw)); err != nil {
		return nil, fmt.Errorf("failed to store raw output: %w", err)
	}

	blocks := store.ExtractCodeBlocks(raw)
	if len(blocks) == 0 {
		return nil, ErrNoCodeBlocks
	}
	names := make([]string, 0, len(blocks))
	for i, code := range blocks {
		class := store.ClassName(code)
		if class == "" {
			class = fmt.Sprintf("Generated%d", i+1)
		}
		name := store.SourceName(class)
		if err := p.store.Put(ctx, name, []byte(code)); err != nil {
			return names, fmt.Errorf("failed to store %s: %w", name, err)
		}
		names = append(names, name)
	}
	p.log.Info("Ingested model output", zap.String("id", id), zap.Strings("sources", names))
	return names, nil
}
