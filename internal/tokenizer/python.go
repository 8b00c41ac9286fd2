package tokenizer

import "strings"

var pythonKeywords = keywordSet(
	"and", "as", "assert", "async", "await", "break", "class", "continue",
	"def", "del", "elif", "else", "except", "finally", "for", "from",
	"global", "if", "import", "in", "is", "lambda", "nonlocal", "not",
	"or", "pass", "raise", "return", "try", "while", "with", "yield",
	"True", "False", "None",
)

var pythonOperators = []string{
	"**=", "//=", ">>=", "<<=", "...", "->", ":=", "**", "//", "<<", ">>",
	"<=", ">=", "==", "!=", "+=", "-=", "*=", "/=", "%=", "&=", "|=",
	"^=", "@=",
}

// pythonLexer lexes Python source. Leading whitespace changes are encoded as
// explicit INDENT/DEDENT tokens; all other whitespace and comments are
// dropped. Indentation is ignored inside bracket nesting (implicit line
// joining), matching the language's logical-line rules.
type pythonLexer struct {
	src         string
	pos         int
	row         int
	col         int
	tokens      []Token
	indents     []int
	depth       int // () [] {} nesting
	atLineStart bool
}

func newPythonLexer(src string) *pythonLexer {
	return &pythonLexer{src: src, row: 1, col: 1, indents: []int{0}, atLineStart: true}
}

func (l *pythonLexer) run() ([]Token, error) {
	for l.pos < len(l.src) {
		if l.atLineStart && l.depth == 0 {
			if err := l.handleIndentation(); err != nil {
				return nil, err
			}
			if l.pos >= len(l.src) {
				break
			}
		}

		ch := l.src[l.pos]
		switch {
		case ch == '\n':
			l.advance()
			l.atLineStart = true
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.advance()
		case ch == '#':
			l.skipComment()
		case ch == '\\' && l.peek(1) == '\n':
			l.advance()
			l.advance()
		case ch == '"' || ch == '\'':
			if err := l.scanString(); err != nil {
				return nil, err
			}
		case isDigit(ch):
			l.scanNumber()
		case isIdentStart(ch):
			if err := l.scanIdentOrPrefixedString(); err != nil {
				return nil, err
			}
		default:
			if err := l.scanOperator(); err != nil {
				return nil, err
			}
		}
	}

	// close any open indentation levels
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(KindDedent, normDedent, l.row, l.col)
	}
	return l.tokens, nil
}

// handleIndentation measures leading whitespace of a logical line and emits
// INDENT/DEDENT tokens. Blank and comment-only lines do not affect the stack.
func (l *pythonLexer) handleIndentation() error {
	startRow, startCol := l.row, l.col
	width := 0
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == ' ' {
			width++
			l.advance()
		} else if ch == '\t' {
			width += 8 - width%8
			l.advance()
		} else {
			break
		}
	}
	l.atLineStart = false

	if l.pos >= len(l.src) {
		return nil
	}
	ch := l.src[l.pos]
	if ch == '\n' || ch == '\r' || ch == '#' {
		return nil // blank or comment-only line
	}

	current := l.indents[len(l.indents)-1]
	if width > current {
		l.indents = append(l.indents, width)
		l.emit(KindIndent, normIndent, startRow, startCol)
		return nil
	}
	for width < l.indents[len(l.indents)-1] {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(KindDedent, normDedent, startRow, startCol)
	}
	if width != l.indents[len(l.indents)-1] {
		return &TokenizeError{Line: startRow, Col: startCol, Reason: "inconsistent dedentation"}
	}
	return nil
}

func (l *pythonLexer) peek(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *pythonLexer) advance() {
	if l.src[l.pos] == '\n' {
		l.row++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *pythonLexer) emit(kind Kind, value string, startRow, startCol int) {
	l.tokens = append(l.tokens, Token{
		Kind:     kind,
		Value:    value,
		StartRow: startRow,
		StartCol: startCol,
		EndRow:   l.row,
		EndCol:   l.col,
	})
}

func (l *pythonLexer) skipComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance()
	}
}

func (l *pythonLexer) scanString() error {
	startRow, startCol := l.row, l.col
	quote := l.src[l.pos]

	if l.peek(1) == quote && l.peek(2) == quote {
		l.advance()
		l.advance()
		l.advance()
		for l.pos < len(l.src) {
			if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
				l.advance()
				l.advance()
				continue
			}
			if l.src[l.pos] == quote && l.peek(1) == quote && l.peek(2) == quote {
				l.advance()
				l.advance()
				l.advance()
				l.emit(KindStrLit, normStr, startRow, startCol)
				return nil
			}
			l.advance()
		}
		return &TokenizeError{Line: startRow, Col: startCol, Reason: "unterminated triple-quoted string"}
	}

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
			l.emit(KindStrLit, normStr, startRow, startCol)
			return nil
		}
		l.advance()
	}
	return &TokenizeError{Line: startRow, Col: startCol, Reason: "unterminated string literal"}
}

func (l *pythonLexer) scanNumber() {
	startRow, startCol := l.row, l.col
	isFloat := false

	if l.src[l.pos] == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X' || l.peek(1) == 'b' || l.peek(1) == 'B' || l.peek(1) == 'o' || l.peek(1) == 'O') {
		l.advance()
		l.advance()
		for l.pos < len(l.src) && (isHexDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.advance()
		}
	} else {
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.advance()
		}
		if l.pos < len(l.src) && l.src[l.pos] == '.' && isDigit(l.peek(1)) {
			isFloat = true
			l.advance()
			for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
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
		if l.pos < len(l.src) && (l.src[l.pos] == 'j' || l.src[l.pos] == 'J') {
			isFloat = true
			l.advance()
		}
	}

	if isFloat {
		l.emit(KindFloatLit, normFloat, startRow, startCol)
	} else {
		l.emit(KindIntLit, normInt, startRow, startCol)
	}
}

func (l *pythonLexer) scanIdentOrPrefixedString() error {
	// string prefixes like r"...", rb'...', f"..."
	if isStringPrefix(l.src[l.pos:]) {
		offset := 1
		if isPrefixLetter(l.peek(1)) {
			offset = 2
		}
		for i := 0; i < offset; i++ {
			l.advance()
		}
		return l.scanString()
	}

	startRow, startCol := l.row, l.col
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.advance()
	}
	word := l.src[start:l.pos]
	if pythonKeywords[word] {
		l.emit(KindKeyword, word, startRow, startCol)
	} else {
		l.emit(KindIdent, normIdent, startRow, startCol)
	}
	return nil
}

func (l *pythonLexer) scanOperator() error {
	startRow, startCol := l.row, l.col
	rest := l.src[l.pos:]

	for _, op := range pythonOperators {
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
	case '(', '[', '{':
		l.depth++
		l.emit(KindPunct, string(ch), startRow, startCol)
	case ')', ']', '}':
		if l.depth > 0 {
			l.depth--
		}
		l.emit(KindPunct, string(ch), startRow, startCol)
	case ';', ',':
		l.emit(KindPunct, string(ch), startRow, startCol)
	default:
		l.emit(KindOperator, string(ch), startRow, startCol)
	}
	return nil
}

func isStringPrefix(s string) bool {
	if len(s) < 2 || !isPrefixLetter(s[0]) {
		return false
	}
	if s[1] == '"' || s[1] == '\'' {
		return true
	}
	return len(s) >= 3 && isPrefixLetter(s[1]) && (s[2] == '"' || s[2] == '\'')
}

func isPrefixLetter(ch byte) bool {
	switch ch {
	case 'r', 'R', 'b', 'B', 'f', 'F', 'u', 'U':
		return true
	}
	return false
}
