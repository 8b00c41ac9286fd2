package engine

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/nithyasree/veritas/internal/tokenizer"
)

const (
	// DefaultKGramLength matches the minimum tile length used for matching.
	DefaultKGramLength = 5
	// DefaultWindowSize gives ~2/(w+1) fingerprint density and guarantees
	// detection of any match of length >= k + w - 1 tokens.
	DefaultWindowSize = 4
)

// ErrInvalidParameter is returned for out-of-range tuning parameters.
var ErrInvalidParameter = errors.New("invalid parameter")

// Fingerprint is a retained k-gram hash mapping back to exactly one
// contiguous token range [Start, End).
type Fingerprint struct {
	Hash  uint64
	Start int
	End   int
}

const hashBase uint64 = 1_000_003

// tokenHash hashes a single normalized token value.
func tokenHash(value string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(value))
	return h.Sum64()
}

// kgramHashes computes the rolling polynomial hash of every contiguous
// window of k tokens' normalized values. Returns nil when len(tokens) < k.
func kgramHashes(tokens []tokenizer.Token, k int) []uint64 {
	n := len(tokens) - k + 1
	if n <= 0 {
		return nil
	}

	// pow = hashBase^(k-1), for removing the outgoing token
	pow := uint64(1)
	for i := 0; i < k-1; i++ {
		pow *= hashBase
	}

	hashes := make([]uint64, n)
	var h uint64
	for i := 0; i < k; i++ {
		h = h*hashBase + tokenHash(tokens[i].Value)
	}
	hashes[0] = h
	for i := 1; i < n; i++ {
		h = (h - tokenHash(tokens[i-1].Value)*pow) * hashBase
		h += tokenHash(tokens[i+k-1].Value)
		hashes[i] = h
	}
	return hashes
}

// WinnowFingerprints selects one representative fingerprint per sliding
// window of windowSize consecutive k-gram hashes: the minimal hash, ties
// broken by rightmost position. Files shorter than k tokens produce zero
// fingerprints; callers fall back to direct matching for those.
func WinnowFingerprints(tokens []tokenizer.Token, k, windowSize int) ([]Fingerprint, error) {
	if k < 2 {
		return nil, fmt.Errorf("%w: kgramLength must be >= 2, got %d", ErrInvalidParameter, k)
	}
	if windowSize < 1 {
		return nil, fmt.Errorf("%w: windowSize must be >= 1, got %d", ErrInvalidParameter, windowSize)
	}

	hashes := kgramHashes(tokens, k)
	if len(hashes) == 0 {
		return nil, nil
	}

	limit := windowSize
	if len(hashes) < limit {
		limit = len(hashes)
	}

	// ring buffer over the last windowSize hashes keeps the hot loop free of
	// per-window allocations
	ring := make([]uint64, windowSize)
	fps := make([]Fingerprint, 0, 2*len(hashes)/(windowSize+1)+1)
	last := -1

	for i, h := range hashes {
		ring[i%windowSize] = h
		if i+1 < limit {
			continue
		}

		bestIdx := i - limit + 1
		bestHash := ring[bestIdx%windowSize]
		for j := bestIdx + 1; j <= i; j++ {
			if hj := ring[j%windowSize]; hj <= bestHash {
				bestHash = hj
				bestIdx = j
			}
		}
		if bestIdx != last {
			fps = append(fps, Fingerprint{Hash: bestHash, Start: bestIdx, End: bestIdx + k})
			last = bestIdx
		}
	}
	return fps, nil
}

// SharedHashRatio is the fraction of the smaller fingerprint set that also
// appears in the other. Used as a cheap prefilter before full tiling.
func SharedHashRatio(a, b []Fingerprint) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	setA := make(map[uint64]bool, len(a))
	for _, fp := range a {
		setA[fp.Hash] = true
	}
	setB := make(map[uint64]bool, len(b))
	for _, fp := range b {
		setB[fp.Hash] = true
	}

	shared := 0
	for h := range setA {
		if setB[h] {
			shared++
		}
	}

	minTotal := len(setA)
	if len(setB) < minTotal {
		minTotal = len(setB)
	}
	return float64(shared) / float64(minTotal)
}
