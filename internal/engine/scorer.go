package engine

import (
	"github.com/nithyasree/veritas/internal/models"
	"github.com/nithyasree/veritas/internal/tokenizer"
)

// Scores holds all similarity signals for one pair.
type Scores struct {
	Structural float64
	Semantic   float64
	Hybrid     float64
	Overlap    float64
	Longest    int
}

// Score converts matched-fragment coverage into the pair's score set.
// Overlap (and the structural score, which equals it) is matched token count
// over the smaller file's length. The semantic score reruns the pipeline on
// the abstracted streams. Hybrid takes the max of the two: either signal
// alone is sufficient evidence of copying, so the hybrid must not be diluted
// by averaging. Always returns a well-formed result, all zeros when there is
// nothing to score.
func Score(left, right []tokenizer.Token, fragments []models.Fragment, k, windowSize int) Scores {
	minLen := len(left)
	if len(right) < minLen {
		minLen = len(right)
	}
	if minLen == 0 {
		return Scores{}
	}

	matched := 0
	longest := 0
	for _, f := range fragments {
		matched += f.Length
		if f.Length > longest {
			longest = f.Length
		}
	}

	overlap := float64(matched) / float64(minLen)
	if overlap > 1.0 {
		overlap = 1.0
	}

	semantic := SemanticOverlap(left, right, k, windowSize)

	hybrid := overlap
	if semantic > hybrid {
		hybrid = semantic
	}

	return Scores{
		Structural: overlap,
		Semantic:   semantic,
		Hybrid:     hybrid,
		Overlap:    overlap,
		Longest:    longest,
	}
}
