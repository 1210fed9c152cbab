// Package syntaxcheck reports structural and convention problems in a JUnit +
// Selenium test class without compiling it.
package syntaxcheck

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/xkilldash9x/seleniumshift/internal/javasrc"
)

// MinTests is the number of test methods below which a class draws a warning.
const MinTests = 3

// Result is the outcome of Check. Valid is true exactly when Errors is empty.
type Result struct {
	Valid     bool     `json:"valid"`
	TestCount int      `json:"testCount"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
}

// requirement is a construct whose absence from code is an error.
type requirement struct {
	pattern *regexp.Regexp
	missing string
}

var requirements = []requirement{
	{regexp.MustCompile(`\bpublic\s+(?:(?:final|abstract|static)\s+)*class\s+[A-Za-z_$][\w$]*`), "missing public class declaration"},
	{regexp.MustCompile(`\bimport\s+org\s*\.\s*junit\s*\.\s*(?:jupiter\s*\.\s*api\s*\.\s*)?(?:Test|\*)\s*;`), "missing JUnit Test import"},
	{regexp.MustCompile(`@(?:BeforeEach|Before|BeforeAll|BeforeClass)\b`), "missing setup hook (@BeforeEach, @Before, @BeforeAll or @BeforeClass)"},
	{regexp.MustCompile(`@(?:AfterEach|After|AfterAll|AfterClass)\b`), "missing teardown hook (@AfterEach, @After, @AfterAll or @AfterClass)"},
	{regexp.MustCompile(`\b(?:WebDriver|ChromeDriver|FirefoxDriver|EdgeDriver|SafariDriver|RemoteWebDriver)\b`), "missing WebDriver reference"},
}

var (
	explicitWait = regexp.MustCompile(`\b(?:WebDriverWait|FluentWait|ExpectedConditions)\b`)
	fixedDelay   = regexp.MustCompile(`\bThread\s*\.\s*sleep\s*\(`)
	trivialBool  = regexp.MustCompile(`\b(?:assertTrue\s*\(\s*true|assertFalse\s*\(\s*false)\s*\)`)
	sameEquals   = regexp.MustCompile(`\bassertEquals\s*\(\s*([^,;()]+?)\s*,\s*([^,;()]+?)\s*\)`)
)

// Check inspects src and always returns a full result, however malformed src is.
func Check(src string) Result {
	layout := javasrc.Classify(src)
	code := layout.CodeOnly()

	res := Result{Errors: []string{}, Warnings: []string{}}
	for _, issue := range layout.Balance() {
		res.Errors = append(res.Errors, "unbalanced source: "+issue.String())
	}

	res.TestCount = javasrc.CountTestMarkers(layout)
	if res.TestCount == 0 {
		res.Errors = append(res.Errors, "no test methods found")
	}
	for _, req := range requirements {
		if !req.pattern.MatchString(code) {
			res.Errors = append(res.Errors, req.missing)
		}
	}

	if !explicitWait.MatchString(code) {
		res.Warnings = append(res.Warnings, "no explicit wait (WebDriverWait, FluentWait or ExpectedConditions)")
	}
	if lines := matchLines(layout, code, fixedDelay); len(lines) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Thread.sleep used on %s; prefer explicit waits", joinLines(lines)))
	}
	if lines := dummyAssertions(layout, code); len(lines) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("always-true assertion on %s", joinLines(lines)))
	}
	for _, m := range javasrc.SegmentLayout(layout) {
		if m.Complete && strings.TrimSpace(code[m.Start+1:m.End-1]) == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("test method %s has an empty body", m.Name))
		}
	}
	if res.TestCount < MinTests {
		res.Warnings = append(res.Warnings, fmt.Sprintf("only %d test methods found, at least %d expected", res.TestCount, MinTests))
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func matchLines(layout *javasrc.Layout, text string, re *regexp.Regexp) []int {
	var lines []int
	for _, loc := range re.FindAllStringIndex(text, -1) {
		lines = append(lines, layout.Line(loc[0]))
	}
	return lines
}

// dummyAssertions runs on the raw source so literal arguments can be compared,
// keeping only matches that start in code.
func dummyAssertions(layout *javasrc.Layout, code string) []int {
	src := layout.Source()
	lines := matchLines(layout, code, trivialBool)
	for _, idx := range sameEquals.FindAllStringSubmatchIndex(src, -1) {
		if !layout.IsCode(idx[0]) {
			continue
		}
		if src[idx[2]:idx[3]] == src[idx[4]:idx[5]] {
			lines = append(lines, layout.Line(idx[0]))
		}
	}
	sort.Ints(lines)
	return slices.Compact(lines)
}

func joinLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, n := range lines {
		parts[i] = fmt.Sprint(n)
	}
	if len(parts) == 1 {
		return "line " + parts[0]
	}
	return "lines " + strings.Join(parts, ", ")
}
