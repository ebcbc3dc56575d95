package game

import (
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/reelparty/reelparty/internal/models"
)

// ComputeResults tallies votes for every movie in the selection, including
// ones nobody voted on, and orders them by net score descending. The sort
// is stable: equal scores keep the original movie order. Pure function;
// identical inputs always produce identical output.
func ComputeResults(movies []models.Movie, votes map[string]map[uuid.UUID]models.VoteType) models.RoundResults {
	results := lo.Map(movies, func(m models.Movie, _ int) models.MovieResult {
		var counts models.VoteCounts
		for _, v := range votes[m.ID] {
			switch v {
			case models.VoteUp:
				counts.Up++
			case models.VoteDown:
				counts.Down++
			case models.VotePass:
				counts.Pass++
			}
		}
		return models.MovieResult{
			Movie: m,
			Votes: counts,
			Score: counts.Up - counts.Down,
		}
	})

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	raw := make(map[string]map[string]models.VoteType, len(votes))
	for movieID, byPlayer := range votes {
		entry := make(map[string]models.VoteType, len(byPlayer))
		for playerID, v := range byPlayer {
			entry[playerID.String()] = v
		}
		raw[movieID] = entry
	}

	return models.RoundResults{Results: results, Votes: raw}
}
