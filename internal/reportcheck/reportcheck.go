// Package reportcheck validates generated test reports against a small set of
// structural rules loaded from YAML.
package reportcheck

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultRules []byte

// Rules describes what a report must and must not contain.
type Rules struct {
	RequiredSections []string `yaml:"required_sections"`
	MinWords         int      `yaml:"min_words"`
	ForbiddenPhrases []string `yaml:"forbidden_phrases"`
}

// Result is the verdict for one report.
type Result struct {
	Valid     bool     `json:"valid"`
	Reasons   []string `json:"reasons"`
	WordCount int      `json:"word_count"`
}

// DefaultRules returns the embedded rule set.
func DefaultRules() Rules {
	r, err := ParseRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded report rules are invalid: %v", err))
	}
	return r
}

// ParseRules decodes a YAML rule set.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("failed to parse report rules: %w", err)
	}
	if r.MinWords < 0 {
		return Rules{}, fmt.Errorf("min_words must not be negative")
	}
	return r, nil
}

// LoadRules reads rules from path; an empty path yields DefaultRules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read report rules %s: %w", path, err)
	}
	return ParseRules(data)
}

var heading = regexp.MustCompile(`(?m)^\s*(?:#{1,6}\s*|\*\*)?([^\n#*:]+?)(?:\*\*)?\s*:?\s*$`)

// Validate checks text against r and lists every rule it breaks.
func (r Rules) Validate(text string) Result {
	res := Result{Reasons: []string{}, WordCount: len(strings.Fields(text))}

	if strings.TrimSpace(text) == "" {
		res.Reasons = append(res.Reasons, "report is empty")
	}

	headings := make(map[string]bool)
	for _, m := range heading.FindAllStringSubmatch(text, -1) {
		headings[strings.ToLower(strings.TrimSpace(m[1]))] = true
	}
	for _, section := range r.RequiredSections {
		if !headings[strings.ToLower(strings.TrimSpace(section))] {
			res.Reasons = append(res.Reasons, fmt.Sprintf("missing section %q", section))
		}
	}

	if res.WordCount < r.MinWords {
		res.Reasons = append(res.Reasons, fmt.Sprintf("report has %d words, at least %d required", res.WordCount, r.MinWords))
	}

	lower := strings.ToLower(text)
	for _, phrase := range r.ForbiddenPhrases {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			res.Reasons = append(res.Reasons, fmt.Sprintf("contains forbidden phrase %q", phrase))
		}
	}

	res.Valid = len(res.Reasons) == 0
	return res
}
