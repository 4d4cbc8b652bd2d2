//go:build cgo

package extract

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	tsc "github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// NativeAvailable reports whether the tree-sitter extractor is compiled in.
func NativeAvailable() bool {
	return true
}

type nativeExtractor struct{}

func newNativeExtractor() *nativeExtractor {
	return &nativeExtractor{}
}

func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangPython:
		return python.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangGo:
		return golang.GetLanguage(), nil
	case LangCPP:
		return cpp.GetLanguage(), nil
	case LangC:
		return tsc.GetLanguage(), nil
	case LangRuby:
		return ruby.GetLanguage(), nil
	case LangPHP:
		return php.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// functionNodeTypes returns node types for function definitions.
func functionNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"function_definition"}
	case LangJavaScript:
		return []string{"function_declaration", "generator_function_declaration"}
	case LangTypeScript:
		return []string{"function_declaration", "generator_function_declaration"}
	case LangJava:
		// Java has no standalone functions; methods live in class bodies.
		return nil
	case LangGo:
		return []string{"function_declaration", "method_declaration"}
	case LangCPP, LangC:
		return []string{"function_definition"}
	case LangRuby:
		return []string{"method"}
	case LangPHP:
		return []string{"function_definition"}
	default:
		return nil
	}
}

// classNodeTypes returns node types for class-like definitions.
func classNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"class_definition"}
	case LangJavaScript:
		return []string{"class_declaration"}
	case LangTypeScript:
		return []string{"class_declaration", "interface_declaration"}
	case LangJava:
		return []string{"class_declaration", "interface_declaration", "enum_declaration"}
	case LangGo:
		return []string{"type_declaration"}
	case LangCPP:
		return []string{"class_specifier", "struct_specifier"}
	case LangC:
		return []string{"struct_specifier"}
	case LangRuby:
		return []string{"class", "module"}
	case LangPHP:
		return []string{"class_declaration"}
	default:
		return nil
	}
}

// dependencyNodeTypes returns node types collected as heuristic dependencies:
// plain identifiers and attribute/member accesses.
func dependencyNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"identifier", "attribute"}
	case LangJavaScript, LangTypeScript:
		return []string{"identifier", "member_expression"}
	case LangJava:
		return []string{"identifier", "field_access"}
	case LangGo:
		return []string{"identifier", "selector_expression"}
	case LangCPP, LangC:
		return []string{"identifier", "field_expression"}
	case LangRuby:
		return []string{"identifier", "constant"}
	case LangPHP:
		return []string{"name", "member_access_expression"}
	default:
		return nil
	}
}

// extractFile parses source and emits components: every class not nested in
// another class, and every standalone function (not nested in any class or
// function). Capturing standalone helpers is a correctness requirement, not
// an optimization.
func (n *nativeExtractor) extractFile(ctx context.Context, path string, source []byte, lang Language) ([]Component, error) {
	parser := sitter.NewParser()
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}
	parser.SetLanguage(tsLang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	root := tree.RootNode()

	funcTypes := toSet(functionNodeTypes(lang))
	classTypes := toSet(classNodeTypes(lang))
	depTypes := toSet(dependencyNodeTypes(lang))

	var components []Component
	var walk func(node *sitter.Node, insideClass, insideFunction bool)
	walk = func(node *sitter.Node, insideClass, insideFunction bool) {
		nodeType := node.Type()
		switch {
		case classTypes[nodeType] && !insideClass:
			if c := n.buildComponent(node, source, path, lang, KindClass, depTypes); c != nil {
				components = append(components, *c)
			}
			insideClass = true
		case funcTypes[nodeType] && !insideClass && !insideFunction:
			if c := n.buildComponent(node, source, path, lang, KindFunction, depTypes); c != nil {
				components = append(components, *c)
			}
			insideFunction = true
		case classTypes[nodeType]:
			insideClass = true
		case funcTypes[nodeType]:
			insideFunction = true
		}

		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child != nil {
				walk(child, insideClass, insideFunction)
			}
		}
	}
	walk(root, false, false)

	return components, nil
}

func (n *nativeExtractor) buildComponent(node *sitter.Node, source []byte, path string, lang Language, kind Kind, depTypes map[string]bool) *Component {
	name := nodeName(node, source)
	if name == "" {
		return nil
	}

	return &Component{
		ID:           path + ":" + name,
		Name:         name,
		Kind:         kind,
		FilePath:     path,
		LineStart:    int(node.StartPoint().Row) + 1,
		LineEnd:      int(node.EndPoint().Row) + 1,
		SourceText:   string(source[node.StartByte():node.EndByte()]),
		Dependencies: collectDependencies(node, source, depTypes),
		Complexity:   countNodes(node),
		ExtractedBy:  ByNative,
	}
}

// nodeName resolves a definition's name: the "name" field when the grammar
// provides one, otherwise the first identifier-like descendant.
func nodeName(node *sitter.Node, source []byte) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return nodeText(nameNode, source)
	}

	identTypes := map[string]bool{
		"identifier":      true,
		"type_identifier": true,
		"constant":        true,
		"name":            true,
		"field_identifier": true,
	}
	var find func(n *sitter.Node) string
	find = func(n *sitter.Node) string {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child == nil {
				continue
			}
			if identTypes[child.Type()] {
				return nodeText(child, source)
			}
			if got := find(child); got != "" {
				return got
			}
		}
		return ""
	}
	return find(node)
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// collectDependencies gathers the deduplicated identifier and attribute
// names referenced in the component body. Heuristic: callers must not assume
// a complete dependency graph.
func collectDependencies(node *sitter.Node, source []byte, depTypes map[string]bool) []string {
	seen := make(map[string]bool)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if depTypes[n.Type()] {
			seen[nodeText(n, source)] = true
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if child := n.NamedChild(i); child != nil {
				walk(child)
			}
		}
	}
	walk(node)

	deps := make([]string, 0, len(seen))
	for dep := range seen {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// countNodes counts all named sub-nodes in the subtree. This proxy is
// monotonic with size, not cyclomatic complexity; use only for relative
// comparison.
func countNodes(node *sitter.Node) int {
	count := 1
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child != nil {
			count += countNodes(child)
		}
	}
	return count
}

// checkSyntax reports whether source parses without ERROR nodes.
func (n *nativeExtractor) checkSyntax(ctx context.Context, path string, content []byte, lang Language) (bool, string) {
	parser := sitter.NewParser()
	tsLang, err := getLanguage(lang)
	if err != nil {
		return true, "" // unsupported language, assume valid
	}
	parser.SetLanguage(tsLang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return false, fmt.Sprintf("parse failed: %v", err)
	}
	root := tree.RootNode()
	if !root.HasError() {
		return true, ""
	}
	if errNode := firstErrorNode(root); errNode != nil {
		return false, fmt.Sprintf("syntax error at line %d", errNode.StartPoint().Row+1)
	}
	return false, "syntax error"
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if got := firstErrorNode(child); got != nil {
			return got
		}
	}
	return nil
}

func toSet(types []string) map[string]bool {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}
