package tokenizer

import "errors"

// Language is a closed set of supported token grammars. Adding a language
// means adding a variant and a lexer for it, not an open plugin registry.
type Language string

const (
	LangC      Language = "c"
	LangJava   Language = "java"
	LangPython Language = "python"
)

// ErrUnsupportedLanguage is returned for language tags outside the closed set.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ParseLanguage validates a caller-supplied language tag.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LangC, LangJava, LangPython:
		return Language(s), nil
	default:
		return "", ErrUnsupportedLanguage
	}
}

// Tokenize converts source text into a normalized token sequence for the
// given language. Tokens are produced in source order with non-overlapping,
// monotonically increasing spans.
func Tokenize(content string, lang Language) ([]Token, error) {
	switch lang {
	case LangC:
		return newCFamilyLexer(content, cKeywords).run()
	case LangJava:
		return newCFamilyLexer(content, javaKeywords).run()
	case LangPython:
		return newPythonLexer(content).run()
	default:
		return nil, ErrUnsupportedLanguage
	}
}

// IsTypeKeyword reports whether a normalized token value names a builtin
// type in any of the supported grammars. The semantic abstraction collapses
// these together with identifiers and literals.
func IsTypeKeyword(value string) bool {
	return typeKeywords[value]
}

var typeKeywords = map[string]bool{
	// C
	"int": true, "long": true, "short": true, "char": true, "float": true,
	"double": true, "void": true, "unsigned": true, "signed": true,
	"struct": true, "union": true, "enum": true,
	// Java additions
	"boolean": true, "byte": true,
	// Python builtins used as annotations
	"str": true, "bool": true, "bytes": true,
}
