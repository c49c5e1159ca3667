package markup

import (
	"path"
	"strings"
)

// PlainLanguage is used for snippets without a recognised language.
const PlainLanguage = "text"

// supportedLanguages is the set the code macro highlights.
var supportedLanguages = map[string]bool{
	"actionscript3": true,
	"applescript":   true,
	"bash":          true,
	"c":             true,
	"cpp":           true,
	"csharp":        true,
	"css":           true,
	"diff":          true,
	"dockerfile":    true,
	"erlang":        true,
	"go":            true,
	"groovy":        true,
	"html":          true,
	"java":          true,
	"javascript":    true,
	"json":          true,
	"kotlin":        true,
	"perl":          true,
	"php":           true,
	"powershell":    true,
	"python":        true,
	"ruby":          true,
	"rust":          true,
	"scala":         true,
	"sql":           true,
	"swift":         true,
	"text":          true,
	"toml":          true,
	"typescript":    true,
	"vb":            true,
	"xml":           true,
	"yaml":          true,
}

var languageAliases = map[string]string{
	"c#":         "csharp",
	"cs":         "csharp",
	"c++":        "cpp",
	"docker":     "dockerfile",
	"golang":     "go",
	"js":         "javascript",
	"node":       "javascript",
	"plain":      "text",
	"plaintext":  "text",
	"ps1":        "powershell",
	"py":         "python",
	"python3":    "python",
	"rb":         "ruby",
	"rs":         "rust",
	"sh":         "bash",
	"shell":      "bash",
	"console":    "bash",
	"zsh":        "bash",
	"ts":         "typescript",
	"yml":        "yaml",
	"patch":      "diff",
	"none":       "text",
}

// NormalizeLanguage maps a caller supplied tag onto the supported set.
// Unknown or empty tags yield PlainLanguage.
func NormalizeLanguage(tag string) string {
	t := strings.ToLower(strings.TrimSpace(tag))
	if alias, ok := languageAliases[t]; ok {
		t = alias
	}
	if supportedLanguages[t] {
		return t
	}
	return PlainLanguage
}

// IsSupportedLanguage reports whether tag highlights without falling back.
func IsSupportedLanguage(tag string) bool {
	return NormalizeLanguage(tag) != PlainLanguage || strings.EqualFold(strings.TrimSpace(tag), PlainLanguage)
}

var extensionLanguages = map[string]string{
	".js":         "javascript",
	".mjs":        "javascript",
	".ts":         "typescript",
	".py":         "python",
	".go":         "go",
	".java":       "java",
	".rs":         "rust",
	".rb":         "ruby",
	".php":        "php",
	".c":          "cpp",
	".cpp":        "cpp",
	".h":          "cpp",
	".hpp":        "cpp",
	".cs":         "csharp",
	".yml":        "yaml",
	".yaml":       "yaml",
	".json":       "json",
	".xml":        "xml",
	".toml":       "toml",
	".sh":         "bash",
	".env":        "bash",
	".sql":        "sql",
	".kt":         "kotlin",
	".swift":      "swift",
	".dockerfile": "dockerfile",
}

// DetectLanguage guesses a language from a file name.
func DetectLanguage(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if strings.EqualFold(base, "Dockerfile") {
		return "dockerfile"
	}
	if base == ".env" {
		return "bash"
	}
	if lang, ok := extensionLanguages[strings.ToLower(path.Ext(base))]; ok {
		return lang
	}
	return PlainLanguage
}
