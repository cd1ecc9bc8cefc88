// Package selection ranks scored candidate windows and picks one per
// persona, deterministically or by seeded random draw from the top of the
// ranking.
package selection

import (
	"fmt"
	"math/rand"
	"sort"

	personas "github.com/lifesnaps/persona-extract"
)

// Selection methods.
const (
	MethodBest       = "best"
	MethodRandomTopK = "random-of-top-k"
)

// NoViableCandidateError means a persona's candidate pool is empty after
// threshold filtering. It is reported per persona and does not abort
// processing of other personas.
type NoViableCandidateError struct {
	Persona    string
	Threshold  float64
	Candidates int
}

func (e *NoViableCandidateError) Error() string {
	return fmt.Sprintf("persona %s: no viable candidates (threshold=%.2f, scored=%d)",
		e.Persona, e.Threshold, e.Candidates)
}

// Selection is the terminal artifact of a run for one persona. Its score is
// >= the persona's viability threshold by construction.
type Selection struct {
	Persona   string
	Candidate personas.ScoredCandidate
	Method    string
	PoolSize  int
	Seed      *int64
}

// Rank returns the candidates sorted descending by score. Ties break by
// participant id, then window start date, so the ranking is deterministic
// regardless of scoring order.
func Rank(cands []personas.ScoredCandidate) []personas.ScoredCandidate {
	ranked := make([]personas.ScoredCandidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Window.ParticipantID != ranked[j].Window.ParticipantID {
			return ranked[i].Window.ParticipantID < ranked[j].Window.ParticipantID
		}
		return ranked[i].Window.Start.Before(ranked[j].Window.Start)
	})
	return ranked
}

// Select filters one persona's candidates by the viability threshold, ranks
// the survivors, and picks the winner: the top candidate when k = 1, or a
// uniform draw among the top k otherwise. The caller supplies a single rng
// per run so that identical seed plus identical viable set reproduces the
// same selection; seed is recorded for the run manifest only.
func Select(cands []personas.ScoredCandidate, persona string, threshold float64, k int, rng *rand.Rand, seed *int64) (Selection, error) {
	if k < 1 {
		return Selection{}, fmt.Errorf("pool size k must be at least 1, got %d", k)
	}

	viable := make([]personas.ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		if c.Score >= threshold {
			viable = append(viable, c)
		}
	}
	if len(viable) == 0 {
		return Selection{}, &NoViableCandidateError{Persona: persona, Threshold: threshold, Candidates: len(cands)}
	}

	ranked := Rank(viable)
	if k == 1 {
		return Selection{Persona: persona, Candidate: ranked[0], Method: MethodBest, PoolSize: 1}, nil
	}

	pool := ranked
	if len(pool) > k {
		pool = pool[:k]
	}
	return Selection{
		Persona:   persona,
		Candidate: pool[rng.Intn(len(pool))],
		Method:    MethodRandomTopK,
		PoolSize:  len(pool),
		Seed:      seed,
	}, nil
}
