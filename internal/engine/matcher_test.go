package engine

import (
	"testing"

	"github.com/nithyasree/veritas/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fingerprintsOf(t *testing.T, tokens []tokenizer.Token, k int) []Fingerprint {
	t.Helper()
	fps, err := WinnowFingerprints(tokens, k, DefaultWindowSize)
	require.NoError(t, err)
	return fps
}

func TestMatch_IdenticalFiles(t *testing.T) {
	k := 5
	tokens := seqTokens(30)
	fps := fingerprintsOf(t, tokens, k)

	fragments := Match(tokens, tokens, fps, fps, k)
	require.Len(t, fragments, 1)

	f := fragments[0]
	assert.Equal(t, 0, f.LeftTokenStart)
	assert.Equal(t, 30, f.LeftTokenEnd)
	assert.Equal(t, 0, f.RightTokenStart)
	assert.Equal(t, 30, f.RightTokenEnd)
	assert.Equal(t, 30, f.Length)

	// selection spans the tokens' stored positions
	assert.Equal(t, 1, f.LeftSelection.StartRow)
	assert.Equal(t, 1, f.LeftSelection.StartCol)
	assert.Equal(t, 31, f.LeftSelection.EndCol)
}

func TestMatch_UnrelatedFiles(t *testing.T) {
	k := 5
	left := seqTokens(20)
	right := mkTokens(
		"z0", "z1", "z2", "z3", "z4", "z5", "z6", "z7", "z8", "z9",
		"z10", "z11", "z12", "z13", "z14", "z15", "z16", "z17", "z18", "z19",
	)

	fragments := Match(left, right,
		fingerprintsOf(t, left, k), fingerprintsOf(t, right, k), k)
	assert.Empty(t, fragments)
}

func TestMatch_SharedRunExtendsToMaximal(t *testing.T) {
	k := 5
	shared := []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"}

	leftVals := append([]string{"a0", "a1", "a2", "a3", "a4", "a5"}, shared...)
	leftVals = append(leftVals, "a6", "a7", "a8", "a9", "a10")
	rightVals := append([]string{"b0", "b1", "b2"}, shared...)
	rightVals = append(rightVals, "b3", "b4", "b5", "b6", "b7", "b8", "b9")

	left := mkTokens(leftVals...)
	right := mkTokens(rightVals...)

	fragments := Match(left, right,
		fingerprintsOf(t, left, k), fingerprintsOf(t, right, k), k)
	require.Len(t, fragments, 1)

	f := fragments[0]
	assert.Equal(t, 6, f.LeftTokenStart)
	assert.Equal(t, 3, f.RightTokenStart)
	assert.Equal(t, len(shared), f.Length)
}

func TestMatch_FragmentsDoNotOverlap(t *testing.T) {
	k := 3
	// motif repeated on both sides with different separators; long enough
	// (k+w-1) that winnowing is guaranteed to anchor each occurrence
	motif := []string{"m0", "m1", "m2", "m3", "m4", "m5"}
	leftVals := append(append([]string{}, motif...), "a0", "a1")
	leftVals = append(leftVals, motif...)
	rightVals := append(append([]string{}, motif...), "b0", "b1", "b2")
	rightVals = append(rightVals, motif...)

	left := mkTokens(leftVals...)
	right := mkTokens(rightVals...)

	fragments := Match(left, right,
		fingerprintsOf(t, left, k), fingerprintsOf(t, right, k), k)
	require.NotEmpty(t, fragments)

	claimedL := make([]bool, len(left))
	claimedR := make([]bool, len(right))
	for _, f := range fragments {
		for i := f.LeftTokenStart; i < f.LeftTokenEnd; i++ {
			assert.False(t, claimedL[i], "left token %d claimed twice", i)
			claimedL[i] = true
		}
		for i := f.RightTokenStart; i < f.RightTokenEnd; i++ {
			assert.False(t, claimedR[i], "right token %d claimed twice", i)
			claimedR[i] = true
		}
	}
}

func TestMatch_SortedByLeftStart(t *testing.T) {
	k := 3
	runA := []string{"a0", "a1", "a2", "a3", "a4", "a5"}
	runB := []string{"b0", "b1", "b2", "b3", "b4", "b5"}

	leftVals := append(append([]string{}, runA...), "x0")
	leftVals = append(leftVals, runB...)
	// swapped order on the right
	rightVals := append(append([]string{}, runB...), "y0", "y1")
	rightVals = append(rightVals, runA...)

	left := mkTokens(leftVals...)
	right := mkTokens(rightVals...)

	fragments := Match(left, right,
		fingerprintsOf(t, left, k), fingerprintsOf(t, right, k), k)
	require.Len(t, fragments, 2)
	assert.Less(t, fragments[0].LeftTokenStart, fragments[1].LeftTokenStart)
}

func TestMatch_Symmetry(t *testing.T) {
	k := 5
	shared := []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7"}
	leftVals := append([]string{"a0", "a1", "a2", "a3", "a4"}, shared...)
	rightVals := append(append([]string{"b0", "b1"}, shared...), "b2", "b3", "b4")

	left := mkTokens(leftVals...)
	right := mkTokens(rightVals...)
	leftFp := fingerprintsOf(t, left, k)
	rightFp := fingerprintsOf(t, right, k)

	forward := Match(left, right, leftFp, rightFp, k)
	backward := Match(right, left, rightFp, leftFp, k)
	require.Equal(t, len(forward), len(backward))

	for i := range forward {
		assert.Equal(t, forward[i].LeftTokenStart, backward[i].RightTokenStart)
		assert.Equal(t, forward[i].RightTokenStart, backward[i].LeftTokenStart)
		assert.Equal(t, forward[i].Length, backward[i].Length)
	}
}

func TestMatch_ShortFileFallback(t *testing.T) {
	k := 5
	// left has fewer tokens than k, so no fingerprints exist for it
	left := mkTokens("s0", "s1", "s2")
	right := mkTokens("b0", "s0", "s1", "s2", "b1", "b2", "b3", "b4")

	fragments := Match(left, right, nil, fingerprintsOf(t, right, k), k)
	require.Len(t, fragments, 1)
	assert.Equal(t, 3, fragments[0].Length)
	assert.Equal(t, 0, fragments[0].LeftTokenStart)
	assert.Equal(t, 1, fragments[0].RightTokenStart)
}

func TestMatch_RunsShorterThanKDiscarded(t *testing.T) {
	k := 5
	// shared run of 4 < k between two files long enough to fingerprint
	leftVals := []string{"a0", "a1", "s0", "s1", "s2", "s3", "a2", "a3"}
	rightVals := []string{"b0", "s0", "s1", "s2", "s3", "b1", "b2", "b3"}

	left := mkTokens(leftVals...)
	right := mkTokens(rightVals...)

	fragments := Match(left, right,
		fingerprintsOf(t, left, k), fingerprintsOf(t, right, k), k)
	assert.Empty(t, fragments)
}

func TestMatch_EmptyInputs(t *testing.T) {
	tokens := seqTokens(10)
	assert.Nil(t, Match(nil, tokens, nil, nil, 5))
	assert.Nil(t, Match(tokens, nil, nil, nil, 5))
}
