package engine

import (
	"sort"

	"github.com/nithyasree/veritas/internal/models"
	"github.com/nithyasree/veritas/internal/tokenizer"
)

// anchor is a candidate alignment between a left and a right token position.
type anchor struct {
	left  int
	right int
}

// Match finds maximal matching token runs between two files using shared
// fingerprints as anchors (greedy tiling). Runs shorter than k are discarded
// as noise, except when either file is shorter than k tokens: those fall
// back to direct small-sequence matching so short files are never silently
// dropped from the report.
//
// Fragments are non-overlapping in token-index space on both sides and are
// returned sorted by left-file start position.
func Match(left, right []tokenizer.Token, leftFp, rightFp []Fingerprint, k int) []models.Fragment {
	if len(left) == 0 || len(right) == 0 {
		return nil
	}

	var anchors []anchor
	minLen := k
	if len(left) < k || len(right) < k {
		anchors = directAnchors(left, right)
		minLen = 1
	} else {
		anchors = fingerprintAnchors(left, right, leftFp, rightFp, k)
	}
	if len(anchors) == 0 {
		return nil
	}

	fragments := tile(left, right, anchors, minLen)
	sort.Slice(fragments, func(i, j int) bool {
		return fragments[i].LeftTokenStart < fragments[j].LeftTokenStart
	})
	return fragments
}

// fingerprintAnchors pairs up equal-hash fingerprints, verifying token
// equality to rule out hash collisions.
func fingerprintAnchors(left, right []tokenizer.Token, leftFp, rightFp []Fingerprint, k int) []anchor {
	index := make(map[uint64][]Fingerprint, len(rightFp))
	for _, fp := range rightFp {
		index[fp.Hash] = append(index[fp.Hash], fp)
	}

	seen := make(map[anchor]bool)
	var anchors []anchor
	for _, lfp := range leftFp {
		for _, rfp := range index[lfp.Hash] {
			if !equalAt(left, right, lfp.Start, rfp.Start, k) {
				continue
			}
			a := anchor{left: lfp.Start, right: rfp.Start}
			if !seen[a] {
				seen[a] = true
				anchors = append(anchors, a)
			}
		}
	}
	return anchors
}

// directAnchors pairs every equal token position; only used for files too
// short to fingerprint.
func directAnchors(left, right []tokenizer.Token) []anchor {
	var anchors []anchor
	for i := range left {
		for j := range right {
			if left[i].Value == right[j].Value {
				anchors = append(anchors, anchor{left: i, right: j})
			}
		}
	}
	return anchors
}

// tile repeatedly takes the longest unclaimed maximal extension among all
// anchors and marks its tokens used. Equal-length ties prefer the earliest
// left start, then the earliest right start, so output is reproducible
// regardless of anchor order.
func tile(left, right []tokenizer.Token, anchors []anchor, minLen int) []models.Fragment {
	claimedL := make([]bool, len(left))
	claimedR := make([]bool, len(right))
	var fragments []models.Fragment

	for {
		bestLen := 0
		var bestL, bestR int

		for _, a := range anchors {
			l, r, n := extend(left, right, claimedL, claimedR, a.left, a.right)
			if n == 0 {
				continue
			}
			if n > bestLen || (n == bestLen && (l < bestL || (l == bestL && r < bestR))) {
				bestLen, bestL, bestR = n, l, r
			}
		}

		if bestLen < minLen || bestLen == 0 {
			break
		}

		for t := 0; t < bestLen; t++ {
			claimedL[bestL+t] = true
			claimedR[bestR+t] = true
		}
		fragments = append(fragments, newFragment(left, right, bestL, bestR, bestLen))
	}
	return fragments
}

// extend grows the run containing the anchor in both directions while token
// values stay equal and neither side is claimed. Returns the run's start
// positions and length; length 0 when the anchor itself is unusable.
func extend(left, right []tokenizer.Token, claimedL, claimedR []bool, li, ri int) (int, int, int) {
	if claimedL[li] || claimedR[ri] || left[li].Value != right[ri].Value {
		return 0, 0, 0
	}

	start := 0
	for li-start-1 >= 0 && ri-start-1 >= 0 &&
		!claimedL[li-start-1] && !claimedR[ri-start-1] &&
		left[li-start-1].Value == right[ri-start-1].Value {
		start++
	}
	length := 1
	for li+length < len(left) && ri+length < len(right) &&
		!claimedL[li+length] && !claimedR[ri+length] &&
		left[li+length].Value == right[ri+length].Value {
		length++
	}
	return li - start, ri - start, start + length
}

func equalAt(left, right []tokenizer.Token, li, ri, length int) bool {
	for t := 0; t < length; t++ {
		if left[li+t].Value != right[ri+t].Value {
			return false
		}
	}
	return true
}

// newFragment converts token index ranges to source selections via the
// tokens' stored spans.
func newFragment(left, right []tokenizer.Token, l, r, length int) models.Fragment {
	return models.Fragment{
		LeftSelection:   selectionOf(left, l, l+length),
		RightSelection:  selectionOf(right, r, r+length),
		LeftTokenStart:  l,
		LeftTokenEnd:    l + length,
		RightTokenStart: r,
		RightTokenEnd:   r + length,
		Length:          length,
	}
}

func selectionOf(tokens []tokenizer.Token, start, end int) models.Selection {
	return models.Selection{
		StartRow: tokens[start].StartRow,
		StartCol: tokens[start].StartCol,
		EndRow:   tokens[end-1].EndRow,
		EndCol:   tokens[end-1].EndCol,
	}
}
