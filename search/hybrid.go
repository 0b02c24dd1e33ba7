package search

import (
	"math"
	"strings"
)

const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// tokenizeQuery whitespace-splits and lowercase-folds s, the same query
// normalization bm25Scores applies to each candidate's chunk text.
func tokenizeQuery(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// bm25Scores computes a BM25 lexical score for queryTerms against each
// chunk's text in docs, with document frequency computed over chunks
// (not documents), matching spec's "document frequency computed over
// chunks" clause.
func bm25Scores(queryTerms []string, docs []candidate) []float64 {
	n := len(docs)
	scores := make([]float64, n)
	if n == 0 || len(queryTerms) == 0 {
		return scores
	}

	termFreqs := make([]map[string]int, n)
	docLens := make([]int, n)
	var totalLen int
	for i, d := range docs {
		terms := tokenizeQuery(d.text)
		tf := make(map[string]int, len(terms))
		for _, t := range terms {
			tf[t]++
		}
		termFreqs[i] = tf
		docLens[i] = len(terms)
		totalLen += len(terms)
	}
	avgDocLen := float64(totalLen) / float64(n)
	if avgDocLen == 0 {
		avgDocLen = 1
	}

	docFreq := make(map[string]int)
	for _, term := range queryTerms {
		if _, seen := docFreq[term]; seen {
			continue
		}
		count := 0
		for _, tf := range termFreqs {
			if tf[term] > 0 {
				count++
			}
		}
		docFreq[term] = count
	}

	for i := range docs {
		var score float64
		dl := float64(docLens[i])
		for _, term := range queryTerms {
			df := docFreq[term]
			if df == 0 {
				continue
			}
			idf := bm25IDF(n, df)
			f := float64(termFreqs[i][term])
			if f == 0 {
				continue
			}
			numerator := f * (bm25K1 + 1)
			denominator := f + bm25K1*(1-bm25B+bm25B*dl/avgDocLen)
			score += idf * (numerator / denominator)
		}
		scores[i] = score
	}
	return scores
}

// bm25IDF is the standard BM25 inverse document frequency term, floored
// at 0 so a term appearing in every chunk never contributes a negative
// score, plus 1e-10 so a matching term always adds a small positive
// amount.
func bm25IDF(n, df int) float64 {
	idf := math.Log(float64(n-df)+0.5) - math.Log(float64(df)+0.5)
	if idf < 0 {
		idf = 0
	}
	return idf + 1e-10
}
