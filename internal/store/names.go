package store

import (
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/xkilldash9x/seleniumshift/internal/javasrc"
)

var (
	javaFence   = regexp.MustCompile("(?is)```java[^\\n]*\\n(.*?)```")
	publicClass = regexp.MustCompile(`\bpublic\s+(?:(?:final|abstract)\s+)*class\s+([A-Za-z_$][\w$]*)`)
	anyClass    = regexp.MustCompile(`\bclass\s+([A-Za-z_$][\w$]*)`)
)

// ExtractCodeBlocks returns the bodies of the fenced java blocks in raw model
// output, in order, skipping empty ones.
func ExtractCodeBlocks(raw string) []string {
	var blocks []string
	for _, m := range javaFence.FindAllStringSubmatch(raw, -1) {
		if body := strings.TrimSpace(m[1]); body != "" {
			blocks = append(blocks, body+"\n")
		}
	}
	return blocks
}

// ClassName returns the public class declared in code, falling back to the first
// class of any visibility. Declarations in comments and literals are ignored.
func ClassName(code string) string {
	text := javasrc.Classify(code).CodeOnly()
	if m := publicClass.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := anyClass.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func SourceName(class string) string { return "code/" + class + ".java" }

func RawName(id string) string { return "raw/" + id + ".txt" }

// PlanName derives the plan artifact for a source file path from its base name.
func PlanName(source string) string {
	return "plans/" + stem(source) + ".plan.json"
}

// PlanNames derives plan artifacts for a batch of sources. Distinct paths that
// share a base name get a suffix derived from the full path so they never
// overwrite each other; the same path always maps to the same name.
func PlanNames(sources []string) []string {
	paths := make(map[string]map[string]bool)
	for _, src := range sources {
		s := stem(src)
		if paths[s] == nil {
			paths[s] = make(map[string]bool)
		}
		paths[s][cleanPath(src)] = true
	}
	names := make([]string, len(sources))
	for i, src := range sources {
		s := stem(src)
		if len(paths[s]) == 1 {
			names[i] = PlanName(src)
			continue
		}
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(cleanPath(src))).String()
		names[i] = "plans/" + s + "-" + id[:8] + ".plan.json"
	}
	return names
}

func cleanPath(source string) string {
	return path.Clean(strings.ReplaceAll(source, `\`, "/"))
}

func stem(source string) string {
	base := path.Base(cleanPath(source))
	return strings.TrimSuffix(base, path.Ext(base))
}
