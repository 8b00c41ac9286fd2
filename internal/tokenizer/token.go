package tokenizer

import "fmt"

// Kind classifies a token. Identifiers and literals are collapsed into
// category kinds so renamed variables and changed literal values still match.
type Kind string

const (
	KindKeyword  Kind = "KEYWORD"
	KindIdent    Kind = "IDENT"
	KindIntLit   Kind = "INT_LIT"
	KindFloatLit Kind = "FLOAT_LIT"
	KindStrLit   Kind = "STR_LIT"
	KindCharLit  Kind = "CHAR_LIT"
	KindOperator Kind = "OP"
	KindPunct    Kind = "PUNCT"
	KindIndent   Kind = "INDENT"
	KindDedent   Kind = "DEDENT"
)

// Token is one normalized lexical unit. Value is the normalized form used for
// matching (category tag for identifiers/literals, literal text otherwise).
// Rows and columns are 1-based; spans are inclusive of the start position and
// exclusive of the end column.
type Token struct {
	Kind     Kind   `json:"kind"`
	Value    string `json:"value"`
	StartRow int    `json:"startRow"`
	StartCol int    `json:"startCol"`
	EndRow   int    `json:"endRow"`
	EndCol   int    `json:"endCol"`
}

// TokenizeError reports an unrecoverable lexical error with its position.
type TokenizeError struct {
	Line   int
	Col    int
	Reason string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("tokenize error at line %d, col %d: %s", e.Line, e.Col, e.Reason)
}

// normalized category values
const (
	normIdent  = "IDENT"
	normInt    = "INT"
	normFloat  = "FLOAT"
	normStr    = "STR"
	normChar   = "CHAR"
	normIndent = "INDENT"
	normDedent = "DEDENT"
)
