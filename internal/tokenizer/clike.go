package tokenizer

import "strings"

var cKeywords = keywordSet(
	"auto", "break", "case", "char", "const", "continue", "default", "do",
	"double", "else", "enum", "extern", "float", "for", "goto", "if",
	"inline", "int", "long", "register", "restrict", "return", "short",
	"signed", "sizeof", "static", "struct", "switch", "typedef", "union",
	"unsigned", "void", "volatile", "while",
)

var javaKeywords = keywordSet(
	"abstract", "assert", "boolean", "break", "byte", "case", "catch",
	"char", "class", "const", "continue", "default", "do", "double", "else",
	"enum", "extends", "final", "finally", "float", "for", "goto", "if",
	"implements", "import", "instanceof", "int", "interface", "long",
	"native", "new", "package", "private", "protected", "public", "return",
	"short", "static", "strictfp", "super", "switch", "synchronized",
	"this", "throw", "throws", "transient", "try", "var", "void",
	"volatile", "while", "true", "false", "null",
)

func keywordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// multi-character operators, longest first so maximal munch works
var cFamilyOperators = []string{
	">>>=", "<<=", ">>=", ">>>", "...", "->", "++", "--", "<<", ">>",
	"<=", ">=", "==", "!=", "&&", "||", "+=", "-=", "*=", "/=", "%=",
	"&=", "|=", "^=", "::",
}

// cFamilyLexer lexes C and Java source, which differ only in keyword tables
// at the granularity this engine needs.
type cFamilyLexer struct {
	src      string
	keywords map[string]bool
	pos      int
	row      int
	col      int
	tokens   []Token
}

func newCFamilyLexer(src string, keywords map[string]bool) *cFamilyLexer {
	return &cFamilyLexer{src: src, keywords: keywords, row: 1, col: 1}
}

func (l *cFamilyLexer) run() ([]Token, error) {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peek(1) == '/':
			l.skipLineComment()
		case ch == '/' && l.peek(1) == '*':
			if err := l.skipBlockComment(); err != nil {
				return nil, err
			}
		case ch == '"':
			if err := l.scanString('"', KindStrLit, normStr); err != nil {
				return nil, err
			}
		case ch == '\'':
			if err := l.scanString('\'', KindCharLit, normChar); err != nil {
				return nil, err
			}
		case isDigit(ch):
			l.scanNumber()
		case isIdentStart(ch):
			l.scanIdent()
		default:
			if err := l.scanOperator(); err != nil {
				return nil, err
			}
		}
	}
	return l.tokens, nil
}

func (l *cFamilyLexer) peek(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *cFamilyLexer) advance() {
	if l.src[l.pos] == '\n' {
		l.row++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *cFamilyLexer) emit(kind Kind, value string, startRow, startCol int) {
	l.tokens = append(l.tokens, Token{
		Kind:     kind,
		Value:    value,
		StartRow: startRow,
		StartCol: startCol,
		EndRow:   l.row,
		EndCol:   l.col,
	})
}

func (l *cFamilyLexer) skipLineComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance()
	}
}

func (l *cFamilyLexer) skipBlockComment() error {
	startRow, startCol := l.row, l.col
	l.advance() // '/'
	l.advance() // '*'
	for l.pos < len(l.src) {
		if l.src[l.pos] == '*' && l.peek(1) == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return &TokenizeError{Line: startRow, Col: startCol, Reason: "unterminated block comment"}
}

func (l *cFamilyLexer) scanString(quote byte, kind Kind, norm string) error {
	startRow, startCol := l.row, l.col
	l.advance() // opening quote
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == '\\' && l.pos+1 < len(l.src) {
			l.advance()
			l.advance()
			continue
		}
		if ch == '\n' {
			break
		}
		if ch == quote {
			l.advance()
			l.emit(kind, norm, startRow, startCol)
			return nil
		}
		l.advance()
	}
	return &TokenizeError{Line: startRow, Col: startCol, Reason: "unterminated string literal"}
}

func (l *cFamilyLexer) scanNumber() {
	startRow, startCol := l.row, l.col
	isFloat := false

	if l.src[l.pos] == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X') {
		l.advance()
		l.advance()
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.advance()
		}
	} else {
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.advance()
		}
		if l.pos < len(l.src) && l.src[l.pos] == '.' && isDigit(l.peek(1)) {
			isFloat = true
			l.advance()
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.advance()
			}
		}
		if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
			next := l.peek(1)
			if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peek(2))) {
				isFloat = true
				l.advance()
				if l.src[l.pos] == '+' || l.src[l.pos] == '-' {
					l.advance()
				}
				for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
					l.advance()
				}
			}
		}
	}

	// type suffixes: 1L, 2.5f, 0xFFu
	for l.pos < len(l.src) && isNumberSuffix(l.src[l.pos]) {
		if l.src[l.pos] == 'f' || l.src[l.pos] == 'F' {
			isFloat = true
		}
		l.advance()
	}

	if isFloat {
		l.emit(KindFloatLit, normFloat, startRow, startCol)
	} else {
		l.emit(KindIntLit, normInt, startRow, startCol)
	}
}

func (l *cFamilyLexer) scanIdent() {
	startRow, startCol := l.row, l.col
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.advance()
	}
	word := l.src[start:l.pos]
	if l.keywords[word] {
		l.emit(KindKeyword, word, startRow, startCol)
	} else {
		l.emit(KindIdent, normIdent, startRow, startCol)
	}
}

func (l *cFamilyLexer) scanOperator() error {
	startRow, startCol := l.row, l.col
	rest := l.src[l.pos:]

	for _, op := range cFamilyOperators {
		if strings.HasPrefix(rest, op) {
			for range op {
				l.advance()
			}
			l.emit(KindOperator, op, startRow, startCol)
			return nil
		}
	}

	ch := l.src[l.pos]
	if ch < 0x20 || ch >= 0x7f {
		return &TokenizeError{Line: startRow, Col: startCol, Reason: "unexpected character"}
	}
	l.advance()
	switch ch {
	case '(', ')', '{', '}', '[', ']', ';', ',':
		l.emit(KindPunct, string(ch), startRow, startCol)
	default:
		l.emit(KindOperator, string(ch), startRow, startCol)
	}
	return nil
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }

func isNumberSuffix(ch byte) bool {
	switch ch {
	case 'l', 'L', 'u', 'U', 'f', 'F', 'd', 'D':
		return true
	}
	return false
}
