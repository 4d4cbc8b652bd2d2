// Package extract parses discovered source files into flat lists of named
// components (functions and classes) with source spans, heuristic dependency
// sets, and a size-proportional complexity proxy.
package extract

// ExtractedBy identifies which extraction path produced a component.
type ExtractedBy string

const (
	// ByNative marks components produced by the tree-sitter extractor.
	ByNative ExtractedBy = "native"
	// ByFallback marks components produced by the generic line parser.
	ByFallback ExtractedBy = "fallback"
)

// Kind is the component kind.
type Kind string

const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
)

// Component is one extracted function or class. Components are read-only
// after extraction; IDs are unique within one analysis run.
type Component struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Kind         Kind        `json:"kind"`
	FilePath     string      `json:"file_path"`
	LineStart    int         `json:"line_start"`
	LineEnd      int         `json:"line_end"`
	SourceText   string      `json:"source_text"`
	Dependencies []string    `json:"dependencies"`
	Complexity   int         `json:"complexity"`
	ExtractedBy  ExtractedBy `json:"extracted_by"`
}

// FileError records a recovered per-file extraction failure.
type FileError struct {
	Path    string `json:"path"`
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

// Result is the outcome of extracting a batch of files. Per-file parse
// errors never abort the batch; they are recorded here.
type Result struct {
	Components []Component `json:"components"`
	Errors     []FileError `json:"errors"`
}

// Language identifies a supported source language.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJava       Language = "java"
	LangGo         Language = "go"
	LangCPP        Language = "cpp"
	LangC          Language = "c"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
)

// LanguageFromExtension maps a file extension to its language.
func LanguageFromExtension(ext string) (Language, bool) {
	switch ext {
	case ".py":
		return LangPython, true
	case ".js":
		return LangJavaScript, true
	case ".ts":
		return LangTypeScript, true
	case ".java":
		return LangJava, true
	case ".go":
		return LangGo, true
	case ".cpp", ".cc", ".cxx", ".hpp":
		return LangCPP, true
	case ".c", ".h":
		return LangC, true
	case ".rb":
		return LangRuby, true
	case ".php":
		return LangPHP, true
	default:
		return "", false
	}
}
