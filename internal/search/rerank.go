package search

import (
	"regexp"
	"sort"
	"strings"

	"docquery-go/internal/model"
)

// Default weights favor the vector signal.
const (
	DefaultVectorWeight  = 0.7
	DefaultLexicalWeight = 0.3
)

var tokenSplit = regexp.MustCompile(`\W+`)

// Tokenize splits text into lowercase word tokens.
func Tokenize(text string) []string {
	parts := tokenSplit.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// Rank combines vector similarity and lexical overlap into a final ranked
// list bounded by topK. The lexical score of a candidate is the fraction of
// distinct query tokens present in its text, case-insensitive. Vector scores
// are min-max normalized within the candidate set so the weights stay
// comparable across queries.
//
// Ties in combined score break by higher raw vector score, then more recent
// document date, then chunk ID, so repeated runs over identical input
// produce identical orderings.
func Rank(candidates []model.Candidate, queryTokens []string, wVec, wLex float64, topK int) []model.RetrievalResult {
	if len(candidates) == 0 {
		return nil
	}

	querySet := make(map[string]bool, len(queryTokens))
	for _, t := range queryTokens {
		querySet[t] = true
	}

	minVec, maxVec := candidates[0].VectorScore, candidates[0].VectorScore
	for _, c := range candidates[1:] {
		if c.VectorScore < minVec {
			minVec = c.VectorScore
		}
		if c.VectorScore > maxVec {
			maxVec = c.VectorScore
		}
	}

	type scored struct {
		result model.RetrievalResult
		rawVec float64
		dateTS int64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		normVec := 0.0
		if maxVec > minVec {
			normVec = (c.VectorScore - minVec) / (maxVec - minVec)
		} else if maxVec > 0 {
			normVec = 1.0
		}
		lex := lexicalOverlap(querySet, c.Entry.Content)
		combined := wVec*normVec + wLex*lex
		ranked = append(ranked, scored{
			result: model.RetrievalResult{
				ChunkID:      c.Entry.ChunkID,
				DocumentID:   c.Entry.DocumentID,
				Content:      c.Entry.Content,
				PageStart:    c.Entry.PageStart,
				PageEnd:      c.Entry.PageEnd,
				Score:        combined,
				VectorScore:  c.VectorScore,
				LexicalScore: lex,
			},
			rawVec: c.VectorScore,
			dateTS: c.Entry.DateTS,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.result.Score != b.result.Score {
			return a.result.Score > b.result.Score
		}
		if a.rawVec != b.rawVec {
			return a.rawVec > b.rawVec
		}
		if a.dateTS != b.dateTS {
			return a.dateTS > b.dateTS
		}
		return a.result.ChunkID < b.result.ChunkID
	})

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}

	results := make([]model.RetrievalResult, len(ranked))
	for i, r := range ranked {
		results[i] = r.result
	}
	return results
}

// lexicalOverlap is the fraction of query tokens present in the text.
func lexicalOverlap(querySet map[string]bool, text string) float64 {
	if len(querySet) == 0 {
		return 0
	}
	present := make(map[string]bool, len(querySet))
	for _, t := range Tokenize(text) {
		if querySet[t] {
			present[t] = true
		}
	}
	return float64(len(present)) / float64(len(querySet))
}
