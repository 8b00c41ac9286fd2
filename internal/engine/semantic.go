package engine

import (
	"github.com/nithyasree/veritas/internal/tokenizer"
)

// abstractCategory is the single category all identifiers, literals and type
// keywords collapse to in the semantic pass.
const abstractCategory = "V"

// AbstractTokens produces the coarser token stream used for the semantic
// score: operators, punctuation and control-flow keywords survive; every
// identifier, literal and builtin type collapses to one generic category.
// This catches logic-equivalent code that structural matching misses
// (reordered declarations, renamed helpers) at the cost of more false
// positives, which is why it stays a separate signal.
func AbstractTokens(tokens []tokenizer.Token) []tokenizer.Token {
	out := make([]tokenizer.Token, len(tokens))
	for i, tok := range tokens {
		switch tok.Kind {
		case tokenizer.KindIdent, tokenizer.KindIntLit, tokenizer.KindFloatLit,
			tokenizer.KindStrLit, tokenizer.KindCharLit:
			tok.Value = abstractCategory
		case tokenizer.KindKeyword:
			if tokenizer.IsTypeKeyword(tok.Value) {
				tok.Value = abstractCategory
			}
		}
		out[i] = tok
	}
	return out
}

// SemanticKGramLength derives the anchor length of the semantic pass from
// the structural k. The abstracted alphabet is tiny, so short runs coincide
// between any two imperative programs; doubling the anchor keeps accidental
// shape overlap from registering at all.
func SemanticKGramLength(k int) int {
	return 2 * k
}

// minSemanticRun is the shortest abstracted run that counts toward the
// semantic score. Anchoring alone is not selective enough on the collapsed
// alphabet.
func minSemanticRun(semK int) int {
	return 2 * semK
}

// SemanticOverlap runs the fingerprint+tiling pipeline on the abstracted
// streams and returns matched-token coverage of the smaller file. Only
// substantial runs that retain at least one control-flow keyword count:
// keyword-free abstract runs (declaration blocks, literal tables, signature
// shapes) recur in unrelated code and carry no evidence of copied logic.
// Files shorter than the semantic anchor produce no signal; structural
// matching already covers short files via its direct-tiling fallback.
func SemanticOverlap(left, right []tokenizer.Token, k, windowSize int) float64 {
	minLen := len(left)
	if len(right) < minLen {
		minLen = len(right)
	}
	semK := SemanticKGramLength(k)
	if minLen < semK {
		return 0.0
	}

	absLeft := AbstractTokens(left)
	absRight := AbstractTokens(right)

	leftFp, err := WinnowFingerprints(absLeft, semK, windowSize)
	if err != nil {
		return 0.0
	}
	rightFp, err := WinnowFingerprints(absRight, semK, windowSize)
	if err != nil {
		return 0.0
	}

	fragments := Match(absLeft, absRight, leftFp, rightFp, semK)
	matched := 0
	for _, f := range fragments {
		if f.Length < minSemanticRun(semK) {
			continue
		}
		if !retainsControlFlow(absLeft, f.LeftTokenStart, f.LeftTokenEnd) {
			continue
		}
		matched += f.Length
	}

	overlap := float64(matched) / float64(minLen)
	if overlap > 1.0 {
		overlap = 1.0
	}
	return overlap
}

// retainsControlFlow reports whether the abstracted range kept at least one
// keyword (if/for/while/return and friends survive abstraction; type
// keywords do not).
func retainsControlFlow(tokens []tokenizer.Token, start, end int) bool {
	for i := start; i < end; i++ {
		if tokens[i].Kind == tokenizer.KindKeyword && tokens[i].Value != abstractCategory {
			return true
		}
	}
	return false
}
