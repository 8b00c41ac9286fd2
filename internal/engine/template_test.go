package engine

import (
	"testing"

	"github.com/nithyasree/veritas/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenizeC(t *testing.T, src string) []tokenizer.Token {
	t.Helper()
	tokens, err := tokenizer.Tokenize(src, tokenizer.LangC)
	require.NoError(t, err)
	return tokens
}

func TestFilterTemplate_RemovesBoilerplate(t *testing.T) {
	template := tokenizeC(t, "int main(int argc, char **argv) {")
	file := tokenizeC(t, `
int main(int argc, char **argv) {
	int secret = magic(42);
	return secret;
}
`)

	filtered := FilterTemplate(file, template, 5)
	assert.Less(t, len(filtered), len(file))

	// the student's own body survives
	vals := make(map[string]int)
	for _, tok := range filtered {
		vals[tok.Value]++
	}
	assert.Greater(t, vals["return"], 0)
}

func TestFilterTemplate_NoTemplateOverlapIsNoop(t *testing.T) {
	template := tokenizeC(t, "void helper(double d) { d += 1.5; }")
	file := tokenizeC(t, "int sum(int a, int b) { return a + b; }")

	filtered := FilterTemplate(file, template, 5)
	// the template shares no k-length run with this file except what any two
	// C files share; those runs must survive verification against values
	assert.Equal(t, file, filtered)
}

func TestFilterTemplate_ShortInputsUnchanged(t *testing.T) {
	file := tokenizeC(t, "int x = 1;")
	template := tokenizeC(t, "x;")

	assert.Equal(t, file, FilterTemplate(file, template, 5))
	assert.Equal(t, template, FilterTemplate(template, file, 5))
}

func TestFilterTemplate_ReducesPairScore(t *testing.T) {
	k := DefaultKGramLength
	boilerplate := "int main(int argc, char **argv) { init(argc); setup(argv); "
	left := tokenizeC(t, boilerplate+"int a = f(1); return a; }")
	right := tokenizeC(t, boilerplate+"double z = g(2.5); emit(z); return 0; }")
	template := tokenizeC(t, boilerplate+"}")

	scoreOf := func(l, r []tokenizer.Token) float64 {
		lfp, err := WinnowFingerprints(l, k, DefaultWindowSize)
		require.NoError(t, err)
		rfp, err := WinnowFingerprints(r, k, DefaultWindowSize)
		require.NoError(t, err)
		fragments := Match(l, r, lfp, rfp, k)
		return Score(l, r, fragments, k, DefaultWindowSize).Structural
	}

	raw := scoreOf(left, right)
	filtered := scoreOf(
		FilterTemplate(left, template, k),
		FilterTemplate(right, template, k),
	)
	assert.Less(t, filtered, raw)
}
