// internal/game/results_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelparty/reelparty/internal/models"
)

func TestComputeResultsOrdering(t *testing.T) {
	movies := testMovies(3)
	p1, p2 := uuid.New(), uuid.New()
	votes := map[string]map[uuid.UUID]models.VoteType{
		"m1": {p1: models.VoteDown, p2: models.VoteDown},
		"m2": {p1: models.VoteUp, p2: models.VoteUp},
		"m3": {p1: models.VoteUp, p2: models.VotePass},
	}

	res := ComputeResults(movies, votes)
	require.Len(t, res.Results, 3)

	assert.Equal(t, "m2", res.Results[0].ID)
	assert.Equal(t, 2, res.Results[0].Score)
	assert.Equal(t, "m3", res.Results[1].ID)
	assert.Equal(t, 1, res.Results[1].Score)
	assert.Equal(t, "m1", res.Results[2].ID)
	assert.Equal(t, -2, res.Results[2].Score)

	assert.Equal(t, models.VoteCounts{Up: 1, Pass: 1}, res.Results[1].Votes)
	assert.Equal(t, models.VoteDown, res.Votes["m1"][p1.String()])
}

func TestComputeResultsTiesKeepMovieOrder(t *testing.T) {
	movies := testMovies(3)
	p := uuid.New()
	votes := map[string]map[uuid.UUID]models.VoteType{
		"m1": {p: models.VotePass},
		"m3": {p: models.VotePass},
	}

	res := ComputeResults(movies, votes)
	require.Len(t, res.Results, 3)
	// All three score zero; the original movie ordering holds.
	assert.Equal(t, "m1", res.Results[0].ID)
	assert.Equal(t, "m2", res.Results[1].ID)
	assert.Equal(t, "m3", res.Results[2].ID)
}

func TestComputeResultsIncludesUnvotedMovies(t *testing.T) {
	movies := testMovies(2)
	res := ComputeResults(movies, nil)

	require.Len(t, res.Results, 2)
	for _, r := range res.Results {
		assert.Zero(t, r.Score)
		assert.Equal(t, models.VoteCounts{}, r.Votes)
	}
}

func TestComputeResultsIsPure(t *testing.T) {
	movies := testMovies(2)
	p := uuid.New()
	votes := map[string]map[uuid.UUID]models.VoteType{
		"m2": {p: models.VoteUp},
	}

	first := ComputeResults(movies, votes)
	second := ComputeResults(movies, votes)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, "m1", movies[0].ID, "input slice must not be reordered")
}
