// Package javac runs the external Java compiler behind a small capability interface
// so callers can tell a skipped compile from a failed one.
package javac

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/seleniumshift/internal/config"
)

// Status is the coarse result of a compile.
type Status string

const (
	// StatusSkipped means no verdict: the compiler was missing, timed out or was cancelled.
	StatusSkipped Status = "skipped"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Request names the sources to compile. An empty Classpath falls back to the
// runner's configured one.
type Request struct {
	Files     []string
	Classpath string
}

// Outcome is what a Runner reports. Errors holds one entry per compiler diagnostic.
type Outcome struct {
	Status     Status   `json:"status"`
	Errors     []string `json:"errors"`
	Reason     string   `json:"reason,omitempty"`
	Output     string   `json:"output,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

// Runner compiles Java sources.
type Runner interface {
	Run(ctx context.Context, req Request) Outcome
}

// ExecRunner shells out to a javac-compatible binary.
type ExecRunner struct {
	log       *zap.Logger
	binary    string
	timeout   time.Duration
	classpath string

	// Replaced in tests.
	commandContext func(ctx context.Context, name string, args ...string) *exec.Cmd
	lookPath       func(file string) (string, error)
}

// NewExecRunner builds a runner from the compiler configuration.
func NewExecRunner(cfg config.CompilerConfig, logger *zap.Logger) *ExecRunner {
	binary := cfg.Binary
	if binary == "" {
		binary = "javac"
	}
	return &ExecRunner{
		log:            logger.Named("javac"),
		binary:         binary,
		timeout:        cfg.Timeout,
		classpath:      cfg.Classpath,
		commandContext: exec.CommandContext,
		lookPath:       exec.LookPath,
	}
}

// Run compiles req.Files into a throwaway output directory.
func (r *ExecRunner) Run(ctx context.Context, req Request) Outcome {
	start := time.Now()
	done := func(o Outcome) Outcome {
		if o.Errors == nil {
			o.Errors = []string{}
		}
		o.DurationMS = time.Since(start).Milliseconds()
		r.log.Debug("Compile finished", zap.String("status", string(o.Status)), zap.Int("errors", len(o.Errors)), zap.Int64("duration_ms", o.DurationMS))
		return o
	}

	if len(req.Files) == 0 {
		return done(Outcome{Status: StatusFailure, Errors: []string{"no source files given"}})
	}

	path, err := r.locate()
	if err != nil {
		r.log.Warn("Compiler not available, skipping compilation", zap.String("binary", r.binary), zap.Error(err))
		return done(Outcome{Status: StatusSkipped, Reason: fmt.Sprintf("compiler %q not found", r.binary)})
	}

	outDir, err := os.MkdirTemp("", "seleniumshift-javac-")
	if err != nil {
		return done(Outcome{Status: StatusSkipped, Reason: fmt.Sprintf("failed to create output directory: %v", err)})
	}
	defer os.RemoveAll(outDir)

	args := []string{"-d", outDir}
	classpath := req.Classpath
	if classpath == "" {
		classpath = r.classpath
	}
	if classpath != "" {
		args = append(args, "-cp", classpath)
	}
	args = append(args, req.Files...)

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.log.Info("Invoking compiler", zap.String("path", path), zap.Strings("files", req.Files))
	var out bytes.Buffer
	cmd := r.commandContext(runCtx, path, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	err = cmd.Run()
	output := out.String()

	switch {
	case ctx.Err() != nil:
		return done(Outcome{Status: StatusSkipped, Reason: "compilation cancelled", Output: output})
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		r.log.Warn("Compiler timed out", zap.Duration("timeout", r.timeout))
		return done(Outcome{Status: StatusSkipped, Reason: fmt.Sprintf("compiler timed out after %s", r.timeout), Output: output})
	case err == nil:
		return done(Outcome{Status: StatusSuccess, Output: output})
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		// The binary could not be started at all.
		return done(Outcome{Status: StatusSkipped, Reason: fmt.Sprintf("failed to start compiler: %v", err), Output: output})
	}
	diagnostics := SplitErrors(output)
	if len(diagnostics) == 0 {
		diagnostics = []string{fmt.Sprintf("compiler exited with code %d", exitErr.ExitCode())}
	}
	return done(Outcome{Status: StatusFailure, Errors: diagnostics, Output: output})
}

func (r *ExecRunner) locate() (string, error) {
	path, err := r.lookPath(r.binary)
	if err == nil {
		return path, nil
	}
	// JAVA_HOME installs are often not on PATH.
	if home := os.Getenv("JAVA_HOME"); home != "" && filepath.Base(r.binary) == r.binary {
		if p, homeErr := r.lookPath(filepath.Join(home, "bin", r.binary)); homeErr == nil {
			return p, nil
		}
	}
	return "", err
}

var (
	diagnosticHeader = regexp.MustCompile(`^\S.*\.java:\d+: error: .+`)
	errorTally       = regexp.MustCompile(`^\d+ errors?$`)
)

// SplitErrors breaks compiler output into one entry per diagnostic. When the output
// carries javac's "File.java:N: error:" headers only those lines are kept; otherwise
// every non-empty line is an entry.
func SplitErrors(output string) []string {
	var headers, lines []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" || errorTally.MatchString(strings.TrimSpace(line)) {
			continue
		}
		if diagnosticHeader.MatchString(line) {
			headers = append(headers, line)
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	if len(headers) > 0 {
		return headers
	}
	return lines
}
