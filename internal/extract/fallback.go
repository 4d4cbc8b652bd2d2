package extract

import (
	"regexp"
	"sort"
	"strings"
)

// fallbackExtractor is the generic parser used when the structural extractor
// is unavailable or fails for a file. It scans Python sources line by line
// and emits one component per top-level function or class definition.
// Non-Python files yield zero components in fallback mode.
type fallbackExtractor struct{}

var (
	defRe   = regexp.MustCompile(`^(?:async\s+)?def\s+([A-Za-z_][A-Za-z0-9_]*)`)
	classRe = regexp.MustCompile(`^class\s+([A-Za-z_][A-Za-z0-9_]*)`)
	identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*`)
)

var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true, "elif": true,
	"else": true, "except": true, "finally": true, "for": true, "from": true,
	"global": true, "if": true, "import": true, "in": true, "is": true,
	"lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true, "with": true,
	"yield": true,
}

// extractFile scans Python source for top-level def/class blocks. A block
// spans from its definition line to the last indented line before the next
// top-level statement.
func (f *fallbackExtractor) extractFile(path string, source []byte, lang Language) []Component {
	if lang != LangPython {
		return nil
	}

	lines := strings.Split(string(source), "\n")
	var components []Component

	i := 0
	for i < len(lines) {
		line := lines[i]
		var name string
		var kind Kind
		if m := defRe.FindStringSubmatch(line); m != nil {
			name, kind = m[1], KindFunction
		} else if m := classRe.FindStringSubmatch(line); m != nil {
			name, kind = m[1], KindClass
		} else {
			i++
			continue
		}

		end := i + 1
		lastContent := i
		for end < len(lines) {
			l := lines[end]
			trimmed := strings.TrimSpace(l)
			if trimmed == "" {
				end++
				continue
			}
			if !strings.HasPrefix(l, " ") && !strings.HasPrefix(l, "\t") {
				break
			}
			lastContent = end
			end++
		}

		source := strings.Join(lines[i:lastContent+1], "\n")
		components = append(components, Component{
			ID:           path + ":" + name,
			Name:         name,
			Kind:         kind,
			FilePath:     path,
			LineStart:    i + 1,
			LineEnd:      lastContent + 1,
			SourceText:   source,
			Dependencies: fallbackDependencies(source),
			Complexity:   fallbackComplexity(source),
			ExtractedBy:  ByFallback,
		})
		i = lastContent + 1
	}

	return components
}

// fallbackDependencies collects identifier and attribute-access names from a
// component body. Heuristic only: deduplicated, keyword-filtered, sorted.
func fallbackDependencies(source string) []string {
	seen := make(map[string]bool)
	for _, match := range identRe.FindAllString(source, -1) {
		head := match
		if dot := strings.IndexByte(match, '.'); dot >= 0 {
			head = match[:dot]
		}
		if pythonKeywords[head] {
			continue
		}
		seen[match] = true
	}

	deps := make([]string, 0, len(seen))
	for dep := range seen {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// fallbackComplexity approximates the parse-subtree node count by counting
// identifier-like tokens. Monotonic with size, comparable only relatively.
func fallbackComplexity(source string) int {
	return len(identRe.FindAllString(source, -1))
}
