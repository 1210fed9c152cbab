package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/seleniumshift/api/schemas"
	"github.com/xkilldash9x/seleniumshift/internal/config"
	"github.com/xkilldash9x/seleniumshift/internal/javac"
	"github.com/xkilldash9x/seleniumshift/internal/mocks"
	"github.com/xkilldash9x/seleniumshift/internal/store"
)

const loginTest = `import org.junit.jupiter.api.Test;

public class LoginTest {
    @Test
    void logsIn() {
        driver.get("https://shop.example/login");
        driver.findElement(By.id("user")).sendKeys("ada");
        driver.findElement(By.id("submit")).click();
    }
}
`

const emptyTest = `public class Empty {
    void helper() {}
}
`

func writeJava(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func newPipeline(t *testing.T, runner javac.Runner, st store.Store) *Pipeline {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.SetPipelineConcurrency(2)
	return New(cfg, runner, st, zaptest.NewLogger(t))
}

func TestRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	login := writeJava(t, dir, "LoginTest.java", loginTest)
	broken := writeJava(t, dir, "Broken.java", loginTest)
	empty := writeJava(t, dir, "Empty.java", emptyTest)
	missing := filepath.Join(dir, "Missing.java")

	runner := new(mocks.MockRunner)
	runner.On("Run", mock.Anything, javac.Request{Files: []string{broken}}).
		Return(javac.Outcome{Status: javac.StatusFailure, Errors: []string{"Broken.java:3: error: ';' expected"}})
	runner.On("Run", mock.Anything, mock.Anything).
		Return(javac.Outcome{Status: javac.StatusSkipped, Errors: []string{}, Reason: "compiler \"javac\" not found"})

	st := mocks.NewMemoryStore()
	p := newPipeline(t, runner, st)

	report, err := p.Run(context.Background(), []string{login, broken, missing, empty})
	require.NoError(t, err)

	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 1, report.NotFound)
	require.Len(t, report.Files, 4)

	t.Run("should keep input order", func(t *testing.T) {
		for i, f := range []string{login, broken, missing, empty} {
			assert.Equal(t, f, report.Files[i].File)
		}
	})

	t.Run("should treat a skipped compile as success", func(t *testing.T) {
		fr := report.Files[0]
		assert.Equal(t, FileOK, fr.Status)
		assert.Equal(t, javac.StatusSkipped, fr.Compile.Status)
		assert.Equal(t, 1, fr.Methods)
		assert.Equal(t, 3, fr.Actions)
		assert.Equal(t, "plans/LoginTest.plan.json", fr.PlanName)

		data, err := st.Get(context.Background(), fr.PlanName)
		require.NoError(t, err)
		plan, err := schemas.DecodePlan(data)
		require.NoError(t, err)
		assert.Equal(t, "LoginTest.java", plan.Metadata.Source)
		assert.Equal(t, fr.Steps, plan.Summary.TotalSteps)
	})

	t.Run("should fail on compiler errors", func(t *testing.T) {
		fr := report.Files[1]
		assert.Equal(t, FileFailed, fr.Status)
		assert.Contains(t, fr.Error, "compilation failed")
		assert.Empty(t, fr.PlanName)
	})

	t.Run("should report missing files", func(t *testing.T) {
		fr := report.Files[2]
		assert.Equal(t, FileNotFound, fr.Status)
		assert.Equal(t, "file not found: "+missing, fr.Error)
	})

	t.Run("should fail a file without test methods", func(t *testing.T) {
		fr := report.Files[3]
		assert.Equal(t, FileFailed, fr.Status)
		assert.Equal(t, "no test methods found", fr.Error)
	})
}

func TestRunStoreFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	login := writeJava(t, dir, "LoginTest.java", loginTest)

	runner := new(mocks.MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return(javac.Outcome{Status: javac.StatusSuccess, Errors: []string{}})
	st := mocks.NewMemoryStore()
	st.PutErr = errors.New("disk full")

	report, err := newPipeline(t, runner, st).Run(context.Background(), []string{login})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Files[0].Error, "disk full")
}

func TestRunCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := new(mocks.MockRunner)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline(t, runner, mocks.NewMemoryStore()).Run(ctx, []string{"A.java", "B.java"})
	assert.ErrorIs(t, err, context.Canceled)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestRunWithFileStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	login := writeJava(t, dir, "LoginTest.java", loginTest)
	fs, err := store.NewFileStore(filepath.Join(dir, "out"), zaptest.NewLogger(t))
	require.NoError(t, err)

	runner := new(mocks.MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return(javac.Outcome{Status: javac.StatusSuccess, Errors: []string{}})

	report, err := newPipeline(t, runner, fs).Run(context.Background(), []string{login})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.FileExists(t, filepath.Join(dir, "out", "plans", "LoginTest.plan.json"))
	runner.AssertNumberOfCalls(t, "Run", 1)
}

func TestRunSameBaseName(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b"), 0o755))
	first := writeJava(t, filepath.Join(dir, "a"), "LoginTest.java", loginTest)
	second := writeJava(t, filepath.Join(dir, "b"), "LoginTest.java", loginTest)

	runner := new(mocks.MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return(javac.Outcome{Status: javac.StatusSuccess, Errors: []string{}})
	st := mocks.NewMemoryStore()

	report, err := newPipeline(t, runner, st).Run(context.Background(), []string{first, second})
	require.NoError(t, err)
	require.Equal(t, 2, report.Succeeded)
	assert.NotEqual(t, report.Files[0].PlanName, report.Files[1].PlanName)

	names, err := st.List(context.Background(), "plans/")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestIngest(t *testing.T) {
	raw := "Here are the tests.\n\n```java\npublic class CartTest {\n}\n```\n\nand a helper:\n\n```Java\nclass {\n}\n```\n"

	t.Run("should store raw output and each block", func(t *testing.T) {
		st := mocks.NewMemoryStore()
		p := newPipeline(t, new(mocks.MockRunner), st)

		names, err := p.Ingest(context.Background(), "run-1", raw)
		require.NoError(t, err)
		assert.Equal(t, []string{"code/CartTest.java", "code/Generated2.java"}, names)

		stored, err := st.Get(context.Background(), "raw/run-1.txt")
		require.NoError(t, err)
		assert.Equal(t, raw, string(stored))

		code, err := st.Get(context.Background(), "code/CartTest.java")
		require.NoError(t, err)
		assert.Equal(t, "public class CartTest {\n}\n", string(code))
	})

	t.Run("should reject output without code", func(t *testing.T) {
		st := mocks.NewMemoryStore()
		_, err := newPipeline(t, new(mocks.MockRunner), st).Ingest(context.Background(), "run-2", "no code here")
		assert.ErrorIs(t, err, ErrNoCodeBlocks)

		_, err = st.Get(context.Background(), "raw/run-2.txt")
		assert.NoError(t, err, "raw output is kept even without code")
	})

	t.Run("should surface store errors", func(t *testing.T) {
		runner := new(mocks.MockRunner)
		st := new(mocks.MockStore)
		st.On("Put", mock.Anything, "raw/run-3.txt", mock.Anything).Return(errors.New("read-only"))

		_, err := newPipeline(t, runner, st).Ingest(context.Background(), "run-3", raw)
		assert.ErrorContains(t, err, "read-only")
		st.AssertExpectations(t)
	})
}
