package search

import "sort"

const defaultAlpha = 0.7

// minMaxNormalize rescales scores to [0, 1] over the candidate set. A
// degenerate set (all scores equal) maps every score to 0, matching the
// "normalize over the candidate set" instruction without dividing by
// zero.
func minMaxNormalize(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	spread := max - min
	if spread == 0 {
		return out
	}
	for i, s := range scores {
		out[i] = (s - min) / spread
	}
	return out
}

// sortCandidates orders by score descending, tie-broken by (document id
// ascending, chunk index ascending), per spec.
func sortCandidates(cands []candidate, score func(candidate) float64) {
	sort.SliceStable(cands, func(i, j int) bool {
		si, sj := score(cands[i]), score(cands[j])
		if si != sj {
			return si > sj
		}
		if cands[i].documentID != cands[j].documentID {
			return cands[i].documentID < cands[j].documentID
		}
		return cands[i].chunkIndex < cands[j].chunkIndex
	})
}
