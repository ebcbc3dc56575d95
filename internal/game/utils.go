package game

import (
	"math/rand"
	"slices"

	"github.com/reelparty/reelparty/internal/models"
)

// SampleMovies draws n movies uniformly without replacement from pool,
// or all of them when the pool is smaller. The pool itself is untouched.
func SampleMovies(pool []models.Movie, n int) []models.Movie {
	shuffled := slices.Clone(pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
