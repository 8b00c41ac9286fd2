package engine

import (
	"testing"

	"github.com/nithyasree/veritas/internal/models"
	"github.com/nithyasree/veritas/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchAndScore(t *testing.T, left, right []tokenizer.Token, k int) Scores {
	t.Helper()
	lfp, err := WinnowFingerprints(left, k, DefaultWindowSize)
	require.NoError(t, err)
	rfp, err := WinnowFingerprints(right, k, DefaultWindowSize)
	require.NoError(t, err)
	fragments := Match(left, right, lfp, rfp, k)
	return Score(left, right, fragments, k, DefaultWindowSize)
}

func TestScore_IdenticalFiles(t *testing.T) {
	tokens := tokenizeC(t, "int fib(int n) { if (n < 2) return n; return fib(n-1) + fib(n-2); }")
	s := matchAndScore(t, tokens, tokens, DefaultKGramLength)

	assert.Equal(t, 1.0, s.Structural)
	assert.Equal(t, 1.0, s.Hybrid)
	assert.Equal(t, 1.0, s.Overlap)
	assert.Equal(t, len(tokens), s.Longest)
}

func TestScore_EmptyInput(t *testing.T) {
	s := Score(nil, seqTokens(10), nil, DefaultKGramLength, DefaultWindowSize)
	assert.Equal(t, Scores{}, s)
}

func TestScore_LongestTracksLargestFragment(t *testing.T) {
	fragments := []models.Fragment{
		{Length: 5}, {Length: 12}, {Length: 7},
	}
	s := Score(seqTokens(50), seqTokens(50), fragments, DefaultKGramLength, DefaultWindowSize)
	assert.Equal(t, 12, s.Longest)
	assert.InDelta(t, 24.0/50.0, s.Structural, 1e-9)
}

func TestScore_HybridTakesMaxOfSignals(t *testing.T) {
	// Same control flow with different builtin types and literal kinds: the
	// structural pass sees distinct token values, the semantic pass collapses
	// them all to one category.
	left := tokenizeC(t,
		"int f(int n) { if (n > 1) { return n + 1; } if (n > 2) { return n + 2; } if (n > 3) { return n + 3; } return 0; }")
	right := tokenizeC(t,
		"float g(float x) { if (x > 1.5) { return x + 1.5; } if (x > 2.5) { return x + 2.5; } if (x > 3.5) { return x + 3.5; } return 0.5; }")

	s := matchAndScore(t, left, right, DefaultKGramLength)
	assert.Equal(t, 1.0, s.Semantic)
	assert.Greater(t, s.Semantic, s.Structural)
	assert.Equal(t, s.Semantic, s.Hybrid)
}

func TestAbstractTokens(t *testing.T) {
	tokens := tokenizeC(t, `if (x > 10) { printf("hi"); return 2.5; }`)
	abs := AbstractTokens(tokens)
	require.Len(t, abs, len(tokens))

	var vals []string
	for _, tok := range abs {
		vals = append(vals, tok.Value)
	}
	assert.Equal(t,
		[]string{"if", "(", "V", ">", "V", ")", "{", "V", "(", "V", ")", ";", "return", "V", ";", "}"},
		vals)

	// original stream is untouched
	assert.Equal(t, "IDENT", tokens[2].Value)
}

func TestAbstractTokens_TypeKeywordsCollapse(t *testing.T) {
	tokens := tokenizeC(t, "unsigned long n = 0;")
	abs := AbstractTokens(tokens)
	for _, i := range []int{0, 1, 2, 4} { // unsigned, long, n, 0
		assert.Equal(t, "V", abs[i].Value, "token %d", i)
	}
	assert.Equal(t, "=", abs[3].Value)
	// control-flow keywords survive abstraction
	ret := AbstractTokens(tokenizeC(t, "return;"))
	assert.Equal(t, "return", ret[0].Value)
}

func TestSemanticKGramLength(t *testing.T) {
	assert.Equal(t, 4, SemanticKGramLength(2))
	assert.Equal(t, 6, SemanticKGramLength(3))
	assert.Equal(t, 10, SemanticKGramLength(5))
	assert.Equal(t, 16, SemanticKGramLength(8))
}

func TestSemanticOverlap_CapsAtOne(t *testing.T) {
	tokens := tokenizeC(t, "while (i < n) { s += a[i]; i += 1; } return s;")
	overlap := SemanticOverlap(tokens, tokens, DefaultKGramLength, DefaultWindowSize)
	assert.Equal(t, 1.0, overlap)
}

func TestSemanticOverlap_DeclarationRunsExcluded(t *testing.T) {
	// A declaration block abstracts to pure categories and punctuation; even
	// an exact copy carries no control flow and must not register.
	tokens := tokenizeC(t, "int a = 1; int b = 2; int c = 3; int d = 4; int e = 5;")
	overlap := SemanticOverlap(tokens, tokens, DefaultKGramLength, DefaultWindowSize)
	assert.Equal(t, 0.0, overlap)
}

func TestSemanticOverlap_ShortFilesNoSignal(t *testing.T) {
	tokens := tokenizeC(t, "return x + 1;")
	overlap := SemanticOverlap(tokens, tokens, DefaultKGramLength, DefaultWindowSize)
	assert.Equal(t, 0.0, overlap)
}

func TestSemanticOverlap_BriefSharedShapeExcluded(t *testing.T) {
	// Both functions contain the same short if-shape, a coincidence any two
	// imperative programs can produce. The shared abstract run stays well
	// under the counted-run minimum and contributes nothing.
	left := tokenizeC(t,
		"int m(int a, int b) { int r = 0; if (a > b) { r = a + b; } return r; }")
	right := tokenizeC(t,
		"void p(float q, float w) { float z = q * w; if (q > w) { z = q + w; } while (z > 0.5) { z -= 0.25; } }")

	overlap := SemanticOverlap(left, right, DefaultKGramLength, DefaultWindowSize)
	assert.Equal(t, 0.0, overlap)
}
