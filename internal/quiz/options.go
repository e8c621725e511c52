package quiz

import (
	"math/rand"

	"github.com/stemsi/exstem-quiz/internal/model"
)

// GenerateMatchingOptions builds the answer pool of every matching question:
// the distinct right-hand values (first occurrence wins), shuffled with rng.
// The result is keyed by question index.
func GenerateMatchingOptions(questions []model.Question, rng *rand.Rand) map[int][]string {
	options := make(map[int][]string)
	for i, q := range questions {
		m, ok := q.Body.(*model.Matching)
		if !ok {
			continue
		}

		seen := make(map[string]struct{}, len(m.Pairs))
		pool := make([]string, 0, len(m.Pairs))
		for _, p := range m.Pairs {
			if _, dup := seen[p.Right]; dup {
				continue
			}
			seen[p.Right] = struct{}{}
			pool = append(pool, p.Right)
		}

		rng.Shuffle(len(pool), func(a, b int) {
			pool[a], pool[b] = pool[b], pool[a]
		})
		options[i] = pool
	}
	return options
}
