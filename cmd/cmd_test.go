// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/seleniumshift/api/schemas"
	"github.com/xkilldash9x/seleniumshift/internal/config"
	"github.com/xkilldash9x/seleniumshift/internal/extract"
	"github.com/xkilldash9x/seleniumshift/internal/mocks"
	"github.com/xkilldash9x/seleniumshift/internal/store"
)

const searchTest = `package com.example;

import org.junit.jupiter.api.*;
import org.openqa.selenium.WebDriver;
import org.openqa.selenium.chrome.ChromeDriver;
import org.openqa.selenium.support.ui.WebDriverWait;

public class SearchTest {
    private WebDriver driver;

    @BeforeEach
    void setUp() { driver = new ChromeDriver(); }

    @AfterEach
    void tearDown() { driver.quit(); }

    @Test
    void opensHome() { driver.get("/"); }

    @Test
    void searchesCatalog() {
        new WebDriverWait(driver, java.time.Duration.ofSeconds(3));
        driver.findElement(By.id("q")).sendKeys("lamp");
        driver.findElement(By.cssSelector("button.go")).click();
    }

    @Test
    void filters() { driver.findElement(By.id("filter")).click(); }
}
`

const goodReport = `# Summary
The generated suite exercises catalog search from the home page through result filtering.

## Test Cases
opensHome loads the storefront. searchesCatalog types a query and submits the search form.
filters narrows the results using the filter control on the results page.

## Coverage
Search, submission and filtering are covered. Checkout and account flows are out of scope for
this suite and are tracked separately.

## Results
All three tests compiled. Execution happens on the automation host using the compiled plan,
which resolves every element against a fresh accessibility snapshot before interacting with it.
No compiler errors were reported and every locator in the plan started out pending, as expected
before the host has taken its first snapshot of the storefront. The next run should add coverage
for pagination and for the empty result message shown when a query matches nothing.
`

type env struct {
	dir      string
	cfgFile  string
	storeDir string
	source   string
}

// newEnv writes a config pointing the store at a temp dir and the compiler at a
// binary that does not exist, so compiles are skipped.
func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{dir: t.TempDir()}
	e.storeDir = filepath.Join(e.dir, "store")
	e.source = filepath.Join(e.dir, "SearchTest.java")
	require.NoError(t, os.WriteFile(e.source, []byte(searchTest), 0o644))

	e.cfgFile = filepath.Join(e.dir, "config.yaml")
	cfg := "logger:\n  level: error\n" +
		"compiler:\n  binary: seleniumshift-no-such-javac\n" +
		"planner:\n  base_url: https://shop.example\n" +
		"store:\n  type: file\n  path: " + filepath.ToSlash(e.storeDir) + "\n"
	require.NoError(t, os.WriteFile(e.cfgFile, []byte(cfg), 0o644))
	t.Setenv("JAVA_HOME", "")
	return e
}

func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", e.cfgFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "seleniumshift "+Version))

	out, err = e.run(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestCheckCmd(t *testing.T) {
	e := newEnv(t)

	t.Run("should pass a well formed class", func(t *testing.T) {
		out, err := e.run(t, "", "check", e.source)
		require.NoError(t, err)
		res := decode[map[string]interface{}](t, out)
		assert.Equal(t, true, res["valid"])
		assert.Equal(t, float64(3), res["testCount"])
	})

	t.Run("should fail an invalid class", func(t *testing.T) {
		broken := filepath.Join(e.dir, "Broken.java")
		require.NoError(t, os.WriteFile(broken, []byte("public class Broken {"), 0o644))
		out, err := e.run(t, "", "check", broken)
		assert.ErrorIs(t, err, ErrCheckFailed)
		assert.Contains(t, out, `"valid": false`)
	})

	t.Run("should report a missing file", func(t *testing.T) {
		_, err := e.run(t, "", "check", filepath.Join(e.dir, "Nope.java"))
		assert.ErrorContains(t, err, "file not found")
	})

	t.Run("should require an argument", func(t *testing.T) {
		_, err := e.run(t, "", "check")
		assert.ErrorContains(t, err, "accepts 1 arg(s), received 0")
	})
}

func TestCompileCmd(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "", "compile", e.source)
	require.NoError(t, err, "a missing compiler is not a failure")
	res := decode[map[string]interface{}](t, out)
	assert.Equal(t, "skipped", res["status"])
	assert.Contains(t, res["reason"], "not found")
}

func TestCoverageCmd(t *testing.T) {
	e := newEnv(t)

	t.Run("should require a feature", func(t *testing.T) {
		_, err := e.run(t, "", "coverage", e.source)
		assert.ErrorContains(t, err, `required flag(s) "feature" not set`)
	})

	t.Run("should report coverage", func(t *testing.T) {
		out, err := e.run(t, "", "coverage", e.source, "--feature", "catalog search")
		require.NoError(t, err)
		assert.Equal(t, true, decode[map[string]interface{}](t, out)["covered"])
	})

	t.Run("should fail an uncovered feature", func(t *testing.T) {
		_, err := e.run(t, "", "coverage", e.source, "-f", "checkout payment")
		assert.ErrorIs(t, err, ErrCheckFailed)
	})

	t.Run("should reject a bad threshold", func(t *testing.T) {
		_, err := e.run(t, "", "coverage", e.source, "-f", "search", "--threshold", "2")
		assert.ErrorContains(t, err, "threshold must be between 0 and 1")
	})
}

func TestExtractAndPlanCmd(t *testing.T) {
	e := newEnv(t)
	extraction := filepath.Join(e.dir, "search.json")

	_, err := e.run(t, "", "extract", e.source, "-o", extraction)
	require.NoError(t, err)
	data, err := os.ReadFile(extraction)
	require.NoError(t, err)
	ex, err := schemas.DecodeExtraction(data)
	require.NoError(t, err)
	require.Len(t, ex.TestMethods, 3)
	assert.Equal(t, "searchesCatalog", ex.TestMethods[1].Name)

	t.Run("should plan from source and store it", func(t *testing.T) {
		out, err := e.run(t, "", "plan", e.source, "--save")
		require.NoError(t, err)
		plan, err := schemas.DecodePlan([]byte(out))
		require.NoError(t, err)
		assert.Equal(t, "https://shop.example", plan.Metadata.BaseURL)
		assert.Equal(t, "https://shop.example/", plan.Methods[0].Steps[0].Args["url"])
		assert.FileExists(t, filepath.Join(e.storeDir, "plans", "SearchTest.plan.json"))
	})

	t.Run("should plan from an extraction with a base URL override", func(t *testing.T) {
		out, err := e.run(t, "", "plan", extraction, "--base-url", "https://staging.example")
		require.NoError(t, err)
		plan, err := schemas.DecodePlan([]byte(out))
		require.NoError(t, err)
		assert.Equal(t, "search.json", plan.Metadata.Source)
		assert.Equal(t, "https://staging.example/", plan.Methods[0].Steps[0].Args["url"])
		assert.Equal(t, 3, plan.Summary.TotalMethods)
	})

	t.Run("should take the base URL from the environment", func(t *testing.T) {
		t.Setenv("SHIFT_PLANNER_BASE_URL", "https://env.example")
		out, err := e.run(t, "", "plan", e.source)
		require.NoError(t, err)
		plan, err := schemas.DecodePlan([]byte(out))
		require.NoError(t, err)
		assert.Equal(t, "https://env.example", plan.Metadata.BaseURL)
	})

	t.Run("should reject an unknown order", func(t *testing.T) {
		_, err := e.run(t, "", "plan", e.source, "--order", "random")
		assert.Error(t, err)
	})
}

func TestBatchCmd(t *testing.T) {
	e := newEnv(t)
	missing := filepath.Join(e.dir, "Missing.java")

	out, err := e.run(t, "", "batch", e.source, missing, "-j", "2")
	assert.ErrorIs(t, err, ErrCheckFailed)

	report := decode[map[string]interface{}](t, out)
	assert.Equal(t, float64(2), report["total"])
	assert.Equal(t, float64(1), report["succeeded"])
	assert.Equal(t, float64(1), report["not_found"])
	assert.FileExists(t, filepath.Join(e.storeDir, "plans", "SearchTest.plan.json"))

	_, err = e.run(t, "", "batch", e.source, "-j", "0")
	assert.ErrorContains(t, err, "concurrency must be a positive integer")
}

func TestIngestCmd(t *testing.T) {
	e := newEnv(t)
	raw := "Sure, here you go:\n```java\n" + searchTest + "```\n"

	out, err := e.run(t, raw, "ingest", "-", "--id", "gen-1")
	require.NoError(t, err)
	res := decode[ingestResult](t, out)
	assert.Equal(t, []string{"code/SearchTest.java"}, res.Sources)
	assert.FileExists(t, filepath.Join(e.storeDir, "raw", "gen-1.txt"))
	assert.FileExists(t, filepath.Join(e.storeDir, "code", "SearchTest.java"))

	_, err = e.run(t, "no code", "ingest", "-")
	assert.ErrorContains(t, err, "no java code blocks")
}

func TestReportCmd(t *testing.T) {
	e := newEnv(t)
	good := filepath.Join(e.dir, "good.md")
	bad := filepath.Join(e.dir, "bad.md")
	require.NoError(t, os.WriteFile(good, []byte(goodReport), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("# Summary\nTBD\n"), 0o644))

	out, err := e.run(t, "", "validate-report", good)
	require.NoError(t, err, out)

	out, err = e.run(t, "", "validate-report", bad)
	assert.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, out, "TBD")

	rules := filepath.Join(e.dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("required_sections: [Summary]\nmin_words: 1\n"), 0o644))
	_, err = e.run(t, "", "validate-report", bad, "--rules", rules)
	assert.NoError(t, err)
}

func TestServeStdioCmd(t *testing.T) {
	e := newEnv(t)
	in := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"extract_plan","arguments":{"file_path":"` + filepath.ToSlash(e.source) + `"}}}` + "\n"

	out, err := e.run(t, in, "serve", "--stdio")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"check_syntax"`)
	assert.NotContains(t, lines[1], `"isError":true`)
	assert.FileExists(t, filepath.Join(e.storeDir, "plans", "SearchTest.plan.json"))
}

func TestInvalidConfig(t *testing.T) {
	e := newEnv(t)
	bad := filepath.Join(e.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("planner:\n  action_order: random\n"), 0o644))

	root := NewRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{"--config", bad, "check", e.source})
	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "failed to load or validate config")

	root = NewRootCommand()
	root.SetArgs([]string{"--config", filepath.Join(e.dir, "absent.yaml"), "check", e.source})
	assert.Error(t, root.ExecuteContext(context.Background()), "an explicit config file must exist")
}

// memoryProvider hands out one in-memory store.
type memoryProvider struct {
	st  *mocks.MemoryStore
	err error
}

func (p *memoryProvider) Create(context.Context, config.Interface) (store.Store, func(), error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	return p.st, func() {}, nil
}

func TestRunFunctions(t *testing.T) {
	e := newEnv(t)
	cfg := config.NewDefaultConfig()
	cfg.CompilerCfg.Binary = "seleniumshift-no-such-javac"
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	t.Run("runPlan should save through the provider", func(t *testing.T) {
		p := &memoryProvider{st: mocks.NewMemoryStore()}
		var out bytes.Buffer
		require.NoError(t, runPlan(ctx, &out, logger, cfg, e.source, extract.OrderGrouped, planOptions{save: true}, p))
		_, err := p.st.Get(ctx, "plans/SearchTest.plan.json")
		assert.NoError(t, err)
		assert.Contains(t, out.String(), `"action_order": "grouped"`)
	})

	t.Run("runBatch should surface store errors", func(t *testing.T) {
		p := &memoryProvider{err: errors.New("postgres unreachable")}
		err := runBatch(ctx, new(bytes.Buffer), logger, cfg, []string{e.source}, p)
		assert.ErrorContains(t, err, "postgres unreachable")
	})

	t.Run("runIngest should read files", func(t *testing.T) {
		raw := filepath.Join(e.dir, "out.txt")
		require.NoError(t, os.WriteFile(raw, []byte("```java\nclass A {}\n```"), 0o644))
		p := &memoryProvider{st: mocks.NewMemoryStore()}
		var out bytes.Buffer
		require.NoError(t, runIngest(ctx, nil, &out, logger, cfg, raw, "r1", p))
		assert.Equal(t, []string{"code/A.java"}, decode[ingestResult](t, out.String()).Sources)

		err := runIngest(ctx, nil, &out, logger, cfg, filepath.Join(e.dir, "none.txt"), "", p)
		assert.ErrorContains(t, err, "file not found")
	})

	t.Run("getConfigFromContext needs a loaded config", func(t *testing.T) {
		_, err := getConfigFromContext(context.Background())
		assert.Error(t, err)
	})
}
