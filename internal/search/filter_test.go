package search

import (
	"testing"

	"docquery-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(chunkID string, industries, countries []string, dateTS int64) model.Candidate {
	return model.Candidate{
		Entry: model.VectorEntry{
			ChunkID:      chunkID,
			Industries:   industries,
			CountryCodes: countries,
			DateTS:       dateTS,
		},
	}
}

func TestApplyAllConstraintsMustPass(t *testing.T) {
	jan1 := int64(1767225600) // 2026-01-01
	jun1 := int64(1780272000) // 2026-06-01
	candidates := []model.Candidate{
		candidate("c1", []string{"energy"}, []string{"US"}, jan1+100),
		candidate("c2", []string{"energy", "utilities"}, []string{"DE"}, jun1-100),
		candidate("c3", []string{"tech"}, []string{"US"}, jan1+100),
		candidate("c4", []string{"energy"}, []string{"US"}, jun1+100),
		candidate("c5", []string{"energy"}, []string{"US"}, 0),
	}

	out := Apply(candidates, model.QueryFilter{
		Industries: []string{"Energy"},
		DateFrom:   jan1,
		DateTo:     jun1,
	})

	require.Len(t, out, 2)
	assert.Equal(t, "c1", out[0].Entry.ChunkID)
	assert.Equal(t, "c2", out[1].Entry.ChunkID)
}

func TestApplyEmptyFilterPassesThrough(t *testing.T) {
	candidates := []model.Candidate{
		candidate("c1", nil, nil, 0),
		candidate("c2", []string{"energy"}, []string{"US"}, 42),
	}

	out := Apply(candidates, model.QueryFilter{})

	assert.Equal(t, candidates, out)
}

func TestApplyDateBoundsInclusive(t *testing.T) {
	candidates := []model.Candidate{
		candidate("exact-from", nil, nil, 100),
		candidate("exact-to", nil, nil, 200),
		candidate("before", nil, nil, 99),
		candidate("after", nil, nil, 201),
	}

	out := Apply(candidates, model.QueryFilter{DateFrom: 100, DateTo: 200})

	require.Len(t, out, 2)
	assert.Equal(t, "exact-from", out[0].Entry.ChunkID)
	assert.Equal(t, "exact-to", out[1].Entry.ChunkID)
}

func TestApplyUnknownDateExcludedByUpperBound(t *testing.T) {
	candidates := []model.Candidate{candidate("no-date", nil, nil, 0)}

	assert.Len(t, Apply(candidates, model.QueryFilter{DateTo: 200}), 0)
	assert.Len(t, Apply(candidates, model.QueryFilter{Industries: []string{"x"}}), 0)
}

func TestApplySetIntersectionCaseInsensitive(t *testing.T) {
	candidates := []model.Candidate{
		candidate("c1", []string{"Energy"}, []string{"us"}, 0),
	}

	out := Apply(candidates, model.QueryFilter{
		Industries:   []string{"energy", "mining"},
		CountryCodes: []string{"US"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "c1", out[0].Entry.ChunkID)
}
