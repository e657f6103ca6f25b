package search

import (
	"testing"

	"docquery-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredCandidate(chunkID, content string, vectorScore float64) model.Candidate {
	return model.Candidate{
		Entry:       model.VectorEntry{ChunkID: chunkID, Content: content},
		VectorScore: vectorScore,
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"solar", "energy", "2026"}, Tokenize("Solar, energy: 2026!"))
	assert.Empty(t, Tokenize("  ...  "))
}

func TestRankCombinesVectorAndLexical(t *testing.T) {
	candidates := []model.Candidate{
		scoredCandidate("c-vec", "nothing relevant here", 0.9),
		scoredCandidate("c-lex", "solar energy output rising", 0.1),
		scoredCandidate("c-mid", "solar installations grew", 0.5),
	}
	query := Tokenize("solar energy")

	results := Rank(candidates, query, 0.7, 0.3, 10)

	require.Len(t, results, 3)
	// c-vec: norm 1.0, lex 0   -> 0.70
	// c-lex: norm 0.0, lex 1.0 -> 0.30
	// c-mid: norm 0.5, lex 0.5 -> 0.50
	assert.Equal(t, "c-vec", results[0].ChunkID)
	assert.Equal(t, "c-mid", results[1].ChunkID)
	assert.Equal(t, "c-lex", results[2].ChunkID)

	assert.InDelta(t, 0.70, results[0].Score, 1e-9)
	assert.InDelta(t, 0.50, results[1].Score, 1e-9)
	assert.InDelta(t, 0.30, results[2].Score, 1e-9)

	assert.InDelta(t, 1.0, results[2].LexicalScore, 1e-9)
	assert.InDelta(t, 0.5, results[1].LexicalScore, 1e-9)
}

func TestRankLexicalOnlyWeights(t *testing.T) {
	candidates := []model.Candidate{
		scoredCandidate("c1", "wind turbines offshore", 0),
		scoredCandidate("c2", "solar panels and more solar", 0),
	}

	results := Rank(candidates, Tokenize("solar"), 0, 1, 10)

	require.Len(t, results, 2)
	assert.Equal(t, "c2", results[0].ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.0, results[1].Score, 1e-9)
}

func TestRankEqualVectorScoresNormalization(t *testing.T) {
	// All equal and non-zero: everyone gets the full vector weight.
	equal := []model.Candidate{
		scoredCandidate("c1", "", 0.4),
		scoredCandidate("c2", "", 0.4),
	}
	results := Rank(equal, nil, 1, 0, 10)
	require.Len(t, results, 2)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 1.0, results[1].Score, 1e-9)

	// All zero: no vector signal at all.
	zero := []model.Candidate{
		scoredCandidate("c1", "", 0),
		scoredCandidate("c2", "", 0),
	}
	results = Rank(zero, nil, 1, 0, 10)
	require.Len(t, results, 2)
	assert.InDelta(t, 0.0, results[0].Score, 1e-9)
}

func TestRankTieBreakDeterministic(t *testing.T) {
	mk := func(chunkID string, vec float64, dateTS int64) model.Candidate {
		return model.Candidate{
			Entry:       model.VectorEntry{ChunkID: chunkID, Content: "same text", DateTS: dateTS},
			VectorScore: vec,
		}
	}

	// Lexical-only ranking makes the combined scores identical; the raw
	// vector score, the document date and finally the chunk ID decide.
	candidates := []model.Candidate{
		mk("b-old", 0.2, 100),
		mk("a-new", 0.2, 200),
		mk("c-strong", 0.8, 50),
		mk("a-twin", 0.2, 200),
	}

	results := Rank(candidates, Tokenize("same"), 0, 1, 10)

	require.Len(t, results, 4)
	assert.Equal(t, "c-strong", results[0].ChunkID)
	assert.Equal(t, "a-new", results[1].ChunkID)
	assert.Equal(t, "a-twin", results[2].ChunkID)
	assert.Equal(t, "b-old", results[3].ChunkID)
}

func TestRankVectorWeightMonotonicity(t *testing.T) {
	// Among candidates with equal lexical scores, raising the vector weight
	// must never demote the one with the highest raw vector score.
	candidates := []model.Candidate{
		scoredCandidate("c-top", "shared words", 0.9),
		scoredCandidate("c-mid", "shared words", 0.5),
		scoredCandidate("c-low", "shared words", 0.1),
	}
	query := Tokenize("shared words")

	var prevRank int
	for i, wVec := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		results := Rank(candidates, query, wVec, 0.3, 10)
		rank := -1
		for pos, r := range results {
			if r.ChunkID == "c-top" {
				rank = pos
			}
		}
		require.NotEqual(t, -1, rank)
		if i > 0 {
			assert.LessOrEqual(t, rank, prevRank)
		}
		prevRank = rank
	}
}

func TestRankTruncatesToTopK(t *testing.T) {
	candidates := []model.Candidate{
		scoredCandidate("c1", "", 0.9),
		scoredCandidate("c2", "", 0.5),
		scoredCandidate("c3", "", 0.1),
	}

	results := Rank(candidates, nil, 1, 0, 2)

	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].ChunkID)
	assert.Equal(t, "c2", results[1].ChunkID)
}

func TestRankEmptyInput(t *testing.T) {
	assert.Nil(t, Rank(nil, Tokenize("anything"), 0.7, 0.3, 5))
}
