// Package coverage estimates whether a test class exercises a named feature by
// looking for the feature's keywords in method names, literals and comments.
package coverage

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/xkilldash9x/seleniumshift/internal/javasrc"
)

// DefaultThreshold is the keyword share a class must reach to count as covering.
const DefaultThreshold = 0.6

// Result reports keyword coverage for one feature.
type Result struct {
	Feature  string   `json:"feature"`
	Keywords []string `json:"keywords"`
	Matched  []string `json:"matched"`
	Missing  []string `json:"missing"`
	Coverage float64  `json:"coverage"`
	Covered  bool     `json:"covered"`
	// Methods lists test methods whose names mention at least one keyword.
	Methods []string `json:"methods"`
	Reason  string   `json:"reason,omitempty"`
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true, "this": true,
	"from": true, "into": true, "when": true, "then": true, "should": true, "can": true,
	"user": true, "users": true, "page": true, "test": true, "tests": true, "feature": true,
	"able": true, "are": true, "was": true, "has": true, "have": true, "not": true,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Keywords derives the search terms of a feature name: lowercased, split on
// anything that is not a letter or digit, without stop words, short tokens or repeats.
func Keywords(feature string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range nonAlnum.Split(strings.ToLower(feature), -1) {
		if len(tok) < 3 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Check scores src against feature. The class is covered when the matched share of
// keywords reaches threshold and it has at least one test method.
func Check(src, feature string, threshold float64) Result {
	res := Result{
		Feature:  feature,
		Keywords: Keywords(feature),
		Matched:  []string{},
		Missing:  []string{},
		Methods:  []string{},
	}
	if res.Keywords == nil {
		res.Keywords = []string{}
	}

	layout := javasrc.Classify(src)
	methods := javasrc.SegmentLayout(layout)

	names := make([]string, len(methods))
	var corpus strings.Builder
	for i, m := range methods {
		names[i] = strings.Join(splitCamel(m.Name), " ")
		corpus.WriteString(names[i])
		corpus.WriteByte(' ')
	}
	corpus.WriteString(strings.ToLower(prose(layout)))
	text := corpus.String()

	for _, kw := range res.Keywords {
		if strings.Contains(text, kw) {
			res.Matched = append(res.Matched, kw)
		} else {
			res.Missing = append(res.Missing, kw)
		}
	}
	for i, m := range methods {
		for _, kw := range res.Keywords {
			if strings.Contains(names[i], kw) {
				res.Methods = append(res.Methods, m.Name)
				break
			}
		}
	}

	switch {
	case len(res.Keywords) == 0:
		res.Reason = "feature name has no usable keywords"
	case len(methods) == 0:
		res.Reason = "no test methods found"
	}
	if len(res.Keywords) > 0 {
		res.Coverage = float64(len(res.Matched)) / float64(len(res.Keywords))
	}
	res.Covered = len(res.Keywords) > 0 && len(methods) > 0 && res.Coverage >= threshold
	return res
}

// prose keeps only the literal and comment text of a source, one region per line.
func prose(l *javasrc.Layout) string {
	src := l.Source()
	var b strings.Builder
	inProse := false
	for i := 0; i < l.Len(); i++ {
		if l.IsCode(i) {
			if inProse {
				b.WriteByte('\n')
				inProse = false
			}
			continue
		}
		inProse = true
		b.WriteByte(src[i])
	}
	return b.String()
}

// splitCamel lowercases an identifier and splits it on case changes, digits and '_'.
func splitCamel(ident string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(ident)
	for i, r := range runes {
		switch {
		case r == '_' || r == '$':
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				flush()
			}
		case unicode.IsDigit(r) && len(cur) > 0 && !unicode.IsDigit(runes[i-1]):
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
