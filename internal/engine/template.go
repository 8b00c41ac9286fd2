package engine

import (
	"github.com/nithyasree/veritas/internal/tokenizer"
)

// FilterTemplate removes from a file's token stream any maximal run that
// exactly matches a run in the tokenized template, anchored by template
// k-grams. Removal is computed once per file, before fingerprinting, so
// shared starter code never reaches the pairwise stage.
func FilterTemplate(tokens, templateTokens []tokenizer.Token, k int) []tokenizer.Token {
	if len(templateTokens) < k || len(tokens) < k {
		return tokens
	}

	index := make(map[uint64][]int)
	for i, h := range kgramHashes(templateTokens, k) {
		index[h] = append(index[h], i)
	}

	masked := make([]bool, len(tokens))
	for i, h := range kgramHashes(tokens, k) {
		for _, j := range index[h] {
			if !equalRun(tokens, templateTokens, i, j, k) {
				continue // hash collision
			}
			for t := i; t < i+k; t++ {
				masked[t] = true
			}
			break
		}
	}

	filtered := make([]tokenizer.Token, 0, len(tokens))
	for i, tok := range tokens {
		if !masked[i] {
			filtered = append(filtered, tok)
		}
	}
	return filtered
}

func equalRun(a, b []tokenizer.Token, ai, bi, length int) bool {
	for t := 0; t < length; t++ {
		if a[ai+t].Value != b[bi+t].Value {
			return false
		}
	}
	return true
}
